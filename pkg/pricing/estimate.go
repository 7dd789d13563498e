package pricing

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/opscart/azure-vm-rightsizer/pkg/models"
)

// Annotate attaches a cost estimate to every result whose VM size could be
// priced. Lookup failures are logged and leave Cost nil.
func Annotate(ctx context.Context, provider Provider, results []models.Result, logger zerolog.Logger) {
	for i := range results {
		if ctx.Err() != nil {
			return
		}
		vm := results[i].VM

		estimate, err := provider.HourlyPrice(ctx, vm.Location, vm.Size)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("vm", vm.Name).
				Str("size", vm.Size).
				Str("location", vm.Location).
				Msg("Could not estimate VM cost")
			continue
		}
		results[i].Cost = estimate
	}
}

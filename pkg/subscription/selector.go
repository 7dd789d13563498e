package subscription

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/rs/zerolog"

	"github.com/opscart/azure-vm-rightsizer/pkg/models"
)

// Client is the part of armsubscriptions.Client used here
type Client interface {
	NewListPager(options *armsubscriptions.ClientListOptions) *runtime.Pager[armsubscriptions.ClientListResponse]
}

// Selector resolves which subscription the analysis runs under
type Selector struct {
	client Client
	in     io.Reader
	out    io.Writer
	logger zerolog.Logger
}

func NewSelector(client Client, in io.Reader, out io.Writer, logger zerolog.Logger) *Selector {
	return &Selector{
		client: client,
		in:     in,
		out:    out,
		logger: logger,
	}
}

// List returns every subscription visible to the authenticated identity
func (s *Selector) List(ctx context.Context) ([]models.Subscription, error) {
	var subs []models.Subscription

	pager := s.client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: error listing subscriptions: %w", models.ErrSubscriptionResolution, err)
		}
		for _, sub := range page.Value {
			if sub == nil || sub.SubscriptionID == nil {
				continue
			}
			item := models.Subscription{ID: *sub.SubscriptionID}
			if sub.DisplayName != nil {
				item.DisplayName = *sub.DisplayName
			}
			if sub.State != nil {
				item.State = string(*sub.State)
			}
			subs = append(subs, item)
		}
	}

	return subs, nil
}

// Select picks the subscription to analyze. An explicit id wins; a single
// visible subscription is used as is; otherwise the user is prompted.
func (s *Selector) Select(ctx context.Context, requestedID string) (models.Subscription, error) {
	subs, err := s.List(ctx)
	if err != nil {
		return models.Subscription{}, err
	}

	if len(subs) == 0 {
		return models.Subscription{}, fmt.Errorf("%w: no subscriptions found for the authenticated account", models.ErrSubscriptionResolution)
	}

	if requestedID != "" {
		sub, err := Resolve(subs, requestedID)
		if err != nil {
			return models.Subscription{}, err
		}
		s.logger.Info().Str("subscription", sub.ID).Msgf("Using subscription: %s", sub.DisplayName)
		return sub, nil
	}

	if len(subs) == 1 {
		s.logger.Info().Str("subscription", subs[0].ID).Msgf("Using the only available subscription: %s", subs[0].DisplayName)
		return subs[0], nil
	}

	index, err := Prompt(s.in, s.out, subs)
	if err != nil {
		return models.Subscription{}, err
	}

	sub, err := Pick(subs, index)
	if err != nil {
		return models.Subscription{}, err
	}
	s.logger.Info().Str("subscription", sub.ID).Msgf("Selected subscription: %s", sub.DisplayName)
	return sub, nil
}

// Resolve finds a subscription by id
func Resolve(subs []models.Subscription, id string) (models.Subscription, error) {
	for _, sub := range subs {
		if sub.ID == id {
			return sub, nil
		}
	}
	return models.Subscription{}, fmt.Errorf("%w: subscription ID %s not found", models.ErrSubscriptionResolution, id)
}

// Pick returns the subscription at a 1-based index
func Pick(subs []models.Subscription, index int) (models.Subscription, error) {
	if index < 1 || index > len(subs) {
		return models.Subscription{}, fmt.Errorf("%w: invalid selection %d, expected 1-%d", models.ErrSubscriptionResolution, index, len(subs))
	}
	return subs[index-1], nil
}

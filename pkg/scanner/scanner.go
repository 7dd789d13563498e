package scanner

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v6"
	"github.com/rs/zerolog"

	"github.com/opscart/azure-vm-rightsizer/pkg/azure"
	"github.com/opscart/azure-vm-rightsizer/pkg/models"
)

const unknownSize = "Unknown"

// VMClient is the part of armcompute.VirtualMachinesClient used by the scanner
type VMClient interface {
	NewListAllPager(options *armcompute.VirtualMachinesClientListAllOptions) *runtime.Pager[armcompute.VirtualMachinesClientListAllResponse]
	InstanceView(ctx context.Context, resourceGroupName string, vmName string, options *armcompute.VirtualMachinesClientInstanceViewOptions) (armcompute.VirtualMachinesClientInstanceViewResponse, error)
}

// Scanner enumerates the virtual machines of one subscription
type Scanner struct {
	client VMClient
	logger zerolog.Logger
}

func New(client VMClient, logger zerolog.Logger) *Scanner {
	return &Scanner{
		client: client,
		logger: logger,
	}
}

// ListVirtualMachines returns every VM in the subscription, in API order,
// with the power state read from its instance view. Any failure is fatal.
func (s *Scanner) ListVirtualMachines(ctx context.Context) ([]models.VirtualMachine, error) {
	s.logger.Info().Msg("Retrieving virtual machines")

	var vms []models.VirtualMachine

	pager := s.client.NewListAllPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, enumerationError("error listing virtual machines", err)
		}

		for _, item := range page.Value {
			if item == nil {
				continue
			}
			vm, err := s.describe(ctx, item)
			if err != nil {
				return nil, err
			}
			vms = append(vms, vm)
		}
	}

	s.logInventory(vms)
	return vms, nil
}

func (s *Scanner) describe(ctx context.Context, item *armcompute.VirtualMachine) (models.VirtualMachine, error) {
	vm := models.VirtualMachine{
		Size:       unknownSize,
		PowerState: models.PowerStateUnknown,
	}
	if item.ID != nil {
		vm.ID = *item.ID
	}
	if item.Name != nil {
		vm.Name = *item.Name
	}
	if item.Location != nil {
		vm.Location = *item.Location
	}
	if item.Properties != nil && item.Properties.HardwareProfile != nil && item.Properties.HardwareProfile.VMSize != nil {
		vm.Size = string(*item.Properties.HardwareProfile.VMSize)
	}

	id, err := arm.ParseResourceID(vm.ID)
	if err != nil {
		return vm, fmt.Errorf("%w: cannot parse resource id of %s: %w", models.ErrResourceEnumeration, vm.Name, err)
	}
	vm.ResourceGroup = id.ResourceGroupName

	view, err := s.client.InstanceView(ctx, vm.ResourceGroup, vm.Name, nil)
	if err != nil {
		return vm, enumerationError(fmt.Sprintf("error reading instance view of %s", vm.Name), err)
	}

	for _, status := range view.Statuses {
		if status == nil || status.Code == nil {
			continue
		}
		if state, ok := models.ParsePowerState(*status.Code); ok {
			vm.PowerState = state
			break
		}
	}

	s.logger.Debug().
		Str("vm", vm.Name).
		Str("resource_group", vm.ResourceGroup).
		Str("size", vm.Size).
		Str("power_state", string(vm.PowerState)).
		Msg("Found virtual machine")

	return vm, nil
}

func (s *Scanner) logInventory(vms []models.VirtualMachine) {
	byState := make(map[models.PowerState][]string)
	for _, vm := range vms {
		byState[vm.PowerState] = append(byState[vm.PowerState], vm.Name)
	}

	s.logger.Info().
		Int("total", len(vms)).
		Int("running", len(byState[models.PowerStateRunning])).
		Int("stopped", len(byState[models.PowerStateStopped])).
		Int("deallocated", len(byState[models.PowerStateDeallocated])).
		Msgf("Found %d virtual machines", len(vms))

	for _, state := range []models.PowerState{
		models.PowerStateRunning,
		models.PowerStateStopped,
		models.PowerStateDeallocated,
		models.PowerStateUnknown,
	} {
		if names := byState[state]; len(names) > 0 {
			s.logger.Info().Strs("vms", names).Msgf("%s VMs: %d", state.Title(), len(names))
		}
	}
}

func enumerationError(msg string, err error) error {
	if azure.IsAuthorizationError(err) {
		return fmt.Errorf("%w: %s: not authorized, check the role assignments of the signed-in identity: %w", models.ErrResourceEnumeration, msg, err)
	}
	return fmt.Errorf("%w: %s: %w", models.ErrResourceEnumeration, msg, err)
}

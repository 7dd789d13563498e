package scanner

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v6"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscart/azure-vm-rightsizer/pkg/models"
)

const vmIDPrefix = "/subscriptions/00000000-0000-0000-0000-000000000001/resourceGroups/"

type fakeVMClient struct {
	pages    [][]*armcompute.VirtualMachine
	listErr  error
	statuses map[string][]string
	viewErr  map[string]error
	views    []string
}

func (f *fakeVMClient) NewListAllPager(options *armcompute.VirtualMachinesClientListAllOptions) *runtime.Pager[armcompute.VirtualMachinesClientListAllResponse] {
	i := 0
	return runtime.NewPager(runtime.PagingHandler[armcompute.VirtualMachinesClientListAllResponse]{
		More: func(armcompute.VirtualMachinesClientListAllResponse) bool {
			return i < len(f.pages)
		},
		Fetcher: func(ctx context.Context, _ *armcompute.VirtualMachinesClientListAllResponse) (armcompute.VirtualMachinesClientListAllResponse, error) {
			if f.listErr != nil {
				return armcompute.VirtualMachinesClientListAllResponse{}, f.listErr
			}
			if i >= len(f.pages) {
				return armcompute.VirtualMachinesClientListAllResponse{}, nil
			}
			page := f.pages[i]
			i++
			return armcompute.VirtualMachinesClientListAllResponse{
				VirtualMachineListResult: armcompute.VirtualMachineListResult{Value: page},
			}, nil
		},
	})
}

func (f *fakeVMClient) InstanceView(ctx context.Context, resourceGroupName string, vmName string, options *armcompute.VirtualMachinesClientInstanceViewOptions) (armcompute.VirtualMachinesClientInstanceViewResponse, error) {
	f.views = append(f.views, resourceGroupName+"/"+vmName)
	if err := f.viewErr[vmName]; err != nil {
		return armcompute.VirtualMachinesClientInstanceViewResponse{}, err
	}

	var statuses []*armcompute.InstanceViewStatus
	for _, code := range f.statuses[vmName] {
		statuses = append(statuses, &armcompute.InstanceViewStatus{Code: to.Ptr(code)})
	}
	return armcompute.VirtualMachinesClientInstanceViewResponse{
		VirtualMachineInstanceView: armcompute.VirtualMachineInstanceView{Statuses: statuses},
	}, nil
}

func azureVM(rg, name, size string) *armcompute.VirtualMachine {
	vm := &armcompute.VirtualMachine{
		ID:       to.Ptr(vmIDPrefix + rg + "/providers/Microsoft.Compute/virtualMachines/" + name),
		Name:     to.Ptr(name),
		Location: to.Ptr("eastus"),
	}
	if size != "" {
		vm.Properties = &armcompute.VirtualMachineProperties{
			HardwareProfile: &armcompute.HardwareProfile{
				VMSize: to.Ptr(armcompute.VirtualMachineSizeTypes(size)),
			},
		}
	}
	return vm
}

func TestListVirtualMachines(t *testing.T) {
	client := &fakeVMClient{
		pages: [][]*armcompute.VirtualMachine{
			{azureVM("rg-web", "webserver01", "Standard_D4s_v3"), nil},
			{azureVM("rg-data", "dbserver02", "Standard_E8s_v5"), azureVM("rg-web", "builder03", "")},
		},
		statuses: map[string][]string{
			"webserver01": {"ProvisioningState/succeeded", "PowerState/running"},
			"dbserver02":  {"ProvisioningState/succeeded", "PowerState/deallocated"},
			"builder03":   {"ProvisioningState/succeeded", "PowerState/stopped"},
		},
	}

	vms, err := New(client, zerolog.Nop()).ListVirtualMachines(context.Background())
	require.NoError(t, err)
	require.Len(t, vms, 3)

	assert.Equal(t, models.VirtualMachine{
		ID:            vmIDPrefix + "rg-web/providers/Microsoft.Compute/virtualMachines/webserver01",
		Name:          "webserver01",
		ResourceGroup: "rg-web",
		Location:      "eastus",
		Size:          "Standard_D4s_v3",
		PowerState:    models.PowerStateRunning,
	}, vms[0])

	assert.Equal(t, "dbserver02", vms[1].Name)
	assert.Equal(t, "rg-data", vms[1].ResourceGroup)
	assert.Equal(t, models.PowerStateDeallocated, vms[1].PowerState)

	assert.Equal(t, "Unknown", vms[2].Size, "missing hardware profile reports Unknown size")
	assert.Equal(t, models.PowerStateStopped, vms[2].PowerState)

	assert.Equal(t, []string{"rg-web/webserver01", "rg-data/dbserver02", "rg-web/builder03"}, client.views)
}

func TestListVirtualMachinesTransitionalState(t *testing.T) {
	client := &fakeVMClient{
		pages: [][]*armcompute.VirtualMachine{
			{azureVM("rg", "booting01", "Standard_B2s"), azureVM("rg", "nostatus01", "Standard_B2s")},
		},
		statuses: map[string][]string{
			"booting01": {"PowerState/starting"},
		},
	}

	vms, err := New(client, zerolog.Nop()).ListVirtualMachines(context.Background())
	require.NoError(t, err)
	require.Len(t, vms, 2)
	assert.Equal(t, models.PowerStateUnknown, vms[0].PowerState)
	assert.Equal(t, models.PowerStateUnknown, vms[1].PowerState)
}

func TestListVirtualMachinesEmptySubscription(t *testing.T) {
	vms, err := New(&fakeVMClient{}, zerolog.Nop()).ListVirtualMachines(context.Background())
	require.NoError(t, err)
	assert.Empty(t, vms)
}

func TestListVirtualMachinesListError(t *testing.T) {
	client := &fakeVMClient{listErr: errors.New("connection reset")}

	_, err := New(client, zerolog.Nop()).ListVirtualMachines(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrResourceEnumeration)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestListVirtualMachinesInstanceViewForbidden(t *testing.T) {
	client := &fakeVMClient{
		pages:   [][]*armcompute.VirtualMachine{{azureVM("rg", "locked01", "Standard_B2s")}},
		viewErr: map[string]error{"locked01": forbidden(t)},
	}

	_, err := New(client, zerolog.Nop()).ListVirtualMachines(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrResourceEnumeration)
	assert.Contains(t, err.Error(), "not authorized")
	assert.Contains(t, err.Error(), "locked01")
}

func TestListVirtualMachinesBadResourceID(t *testing.T) {
	client := &fakeVMClient{
		pages: [][]*armcompute.VirtualMachine{{{ID: to.Ptr("not-an-id"), Name: to.Ptr("odd01")}}},
	}

	_, err := New(client, zerolog.Nop()).ListVirtualMachines(context.Background())
	assert.ErrorIs(t, err, models.ErrResourceEnumeration)
	assert.Empty(t, client.views)
}

func forbidden(t *testing.T) error {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "https://management.azure.com/subscriptions/x/providers/Microsoft.Compute/virtualMachines", nil)
	resp := &http.Response{
		Status:     "403 Forbidden",
		StatusCode: http.StatusForbidden,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(`{"error":{"code":"AuthorizationFailed","message":"denied"}}`)),
		Request:    req,
	}
	return runtime.NewResponseError(resp)
}

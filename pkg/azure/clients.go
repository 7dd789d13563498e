package azure

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v6"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/monitor/armmonitor"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
)

const applicationID = "vm-rightsizer"

// Clients creates ARM clients that share one credential
type Clients struct {
	cred    azcore.TokenCredential
	options *arm.ClientOptions
}

func NewClients(cred azcore.TokenCredential) *Clients {
	return &Clients{
		cred: cred,
		options: &arm.ClientOptions{
			ClientOptions: policy.ClientOptions{
				Telemetry: policy.TelemetryOptions{ApplicationID: applicationID},
			},
		},
	}
}

func (c *Clients) Subscriptions() (*armsubscriptions.Client, error) {
	client, err := armsubscriptions.NewClient(c.cred, c.options)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscriptions client: %w", err)
	}
	return client, nil
}

func (c *Clients) VirtualMachines(subscriptionID string) (*armcompute.VirtualMachinesClient, error) {
	client, err := armcompute.NewVirtualMachinesClient(subscriptionID, c.cred, c.options)
	if err != nil {
		return nil, fmt.Errorf("failed to create compute client: %w", err)
	}
	return client, nil
}

func (c *Clients) Metrics(subscriptionID string) (*armmonitor.MetricsClient, error) {
	client, err := armmonitor.NewMetricsClient(subscriptionID, c.cred, c.options)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics client: %w", err)
	}
	return client, nil
}

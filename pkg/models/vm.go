package models

import "strings"

// PowerState represents the provider-reported execution status of a VM
type PowerState string

const (
	PowerStateRunning     PowerState = "running"
	PowerStateStopped     PowerState = "stopped"
	PowerStateDeallocated PowerState = "deallocated"
	PowerStateUnknown     PowerState = "unknown"
)

const powerStatePrefix = "PowerState/"

// ParsePowerState maps an instance view status code such as
// "PowerState/deallocated" to a PowerState. Transitional states
// (starting, stopping, deallocating) are reported as unknown.
func ParsePowerState(code string) (PowerState, bool) {
	if !strings.HasPrefix(code, powerStatePrefix) {
		return PowerStateUnknown, false
	}

	switch strings.ToLower(strings.TrimPrefix(code, powerStatePrefix)) {
	case "running":
		return PowerStateRunning, true
	case "stopped":
		return PowerStateStopped, true
	case "deallocated":
		return PowerStateDeallocated, true
	default:
		return PowerStateUnknown, true
	}
}

// IsStopped reports whether the VM is stopped or deallocated
func (p PowerState) IsStopped() bool {
	return p == PowerStateStopped || p == PowerStateDeallocated
}

// Title returns the capitalized state for display
func (p PowerState) Title() string {
	if p == "" {
		return "Unknown"
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

// VirtualMachine is a VM as listed from the subscription inventory
type VirtualMachine struct {
	ID            string     `json:"id" yaml:"id"`
	Name          string     `json:"name" yaml:"name"`
	ResourceGroup string     `json:"resource_group" yaml:"resource_group"`
	Location      string     `json:"location" yaml:"location"`
	Size          string     `json:"size" yaml:"size"`
	PowerState    PowerState `json:"power_state" yaml:"power_state"`
}

// Subscription is an Azure subscription visible to the authenticated identity
type Subscription struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	State       string `json:"state,omitempty" yaml:"state,omitempty"`
}

package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/opscart/azure-vm-rightsizer/pkg/models"
)

// ManagementScope is the token scope for Azure Resource Manager
const ManagementScope = "https://management.azure.com/.default"

// NewCredential builds the default Azure credential chain (environment,
// workload identity, managed identity, Azure CLI, ...).
func NewCredential() (azcore.TokenCredential, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrAuthentication, err)
	}
	return cred, nil
}

// Authenticate checks that the credential can mint a management token, so
// that login problems surface before any listing.
func Authenticate(ctx context.Context, cred azcore.TokenCredential) error {
	_, err := cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{ManagementScope},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrAuthentication, err)
	}
	return nil
}

// IsAuthorizationError reports whether err carries a 401 or 403 response
func IsAuthorizationError(err error) bool {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return false
	}
	return respErr.StatusCode == http.StatusUnauthorized || respErr.StatusCode == http.StatusForbidden
}

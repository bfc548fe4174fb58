// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package auth

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/juju/errors"
)

// Managed identity is offered automatically only when the platform
// exposes an identity endpoint (App Service, Functions, Cloud Shell).
func managedIdentitySource() Source {
	return Source{
		Method: ManagedIdentity,
		Available: func(req Request) bool {
			return req.Explicit ||
				req.Getenv("IDENTITY_ENDPOINT") != "" ||
				req.Getenv("MSI_ENDPOINT") != ""
		},
		Retrieve: func(_ context.Context, req Request) (*Credential, error) {
			env := req.TargetEnvironment()
			opts := &azidentity.ManagedIdentityCredentialOptions{ClientOptions: clientOptions(env)}
			identity := "system assigned"
			if req.Config.ClientID != "" {
				opts.ID = azidentity.ClientID(req.Config.ClientID)
				identity = Mask(req.Config.ClientID)
			}
			token, err := azidentity.NewManagedIdentityCredential(opts)
			if err != nil {
				return nil, errors.Trace(err)
			}
			return &Credential{
				Token:       token,
				Environment: env,
				TenantID:    req.Config.TenantID,
				Identity:    identity,
			}, nil
		},
	}
}

// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/juju/errors"

	coreerrors "github.com/juju/webappdeploy/core/errors"
)

// cliProfile is the part of azureProfile.json written by "az login"
// that is needed here.
type cliProfile struct {
	Subscriptions []cliSubscription `json:"subscriptions"`
}

type cliSubscription struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	TenantID        string `json:"tenantId"`
	IsDefault       bool   `json:"isDefault"`
	EnvironmentName string `json:"environmentName"`
	User            struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"user"`
}

// CLIProfilePath returns the location of the Azure CLI profile.
func CLIProfilePath(req Request) string {
	dir := req.Getenv("AZURE_CONFIG_DIR")
	if dir == "" {
		dir = filepath.Join(req.HomeDir, ".azure")
	}
	return filepath.Join(dir, "azureProfile.json")
}

// readCLIProfile reads the default subscription from an Azure CLI
// profile. It returns a NotFound error if nobody is signed in.
func readCLIProfile(path string) (cliSubscription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cliSubscription{}, errors.Annotate(err, "reading Azure CLI profile")
	}
	// The CLI writes the profile with a byte order mark.
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	var profile cliProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return cliSubscription{}, errors.Annotatef(err, "parsing Azure CLI profile %q", path)
	}
	for _, sub := range profile.Subscriptions {
		if sub.IsDefault {
			return sub, nil
		}
	}
	return cliSubscription{}, errors.NotFoundf("default subscription in Azure CLI profile %q", path)
}

func azureCLISource() Source {
	return Source{
		Method: AzureCLI,
		Available: func(req Request) bool {
			_, err := readCLIProfile(CLIProfilePath(req))
			if err != nil {
				logger.Tracef("Azure CLI profile unavailable: %v", err)
			}
			return err == nil
		},
		Retrieve: retrieveAzureCLI,
	}
}

func retrieveAzureCLI(_ context.Context, req Request) (*Credential, error) {
	sub, err := readCLIProfile(CLIProfilePath(req))
	if err != nil {
		return nil, errors.Trace(err)
	}
	env, err := ParseEnvironment(sub.EnvironmentName)
	if err != nil {
		return nil, errors.Annotate(err, "Azure CLI profile")
	}
	if req.Environment != nil && !req.Environment.Equal(env) {
		return nil, coreerrors.LoginFailuref(
			"the Azure CLI is signed in to %s but %s is configured, run \"az cloud set --name %s\" and sign in again",
			env.CLIName, req.Environment.Name, req.Environment.CLIName,
		)
	}
	token, err := azidentity.NewAzureCLICredential(&azidentity.AzureCLICredentialOptions{
		TenantID: sub.TenantID,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Credential{
		Token:               token,
		Environment:         env,
		TenantID:            sub.TenantID,
		DefaultSubscription: sub.ID,
		Identity:            Mask(sub.User.Name),
	}, nil
}

// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package auth

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/juju/errors"
	"github.com/tailscale/hujson"

	coreerrors "github.com/juju/webappdeploy/core/errors"
)

const (
	vsCodeCloudKey  = "azure.cloud"
	vsCodeFilterKey = "azure.resourceFilter"
)

// vsCodeSettings is the Azure part of the VS Code user settings.
type vsCodeSettings struct {
	Cloud string
	// Filter holds "<tenant>/<subscription>" entries.
	Filter []string
}

// VSCodeSettingsPath returns the location of the VS Code user settings.
func VSCodeSettingsPath(req Request) string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(req.Getenv("APPDATA"), "Code", "User", "settings.json")
	case "darwin":
		return filepath.Join(req.HomeDir, "Library", "Application Support", "Code", "User", "settings.json")
	}
	dir := req.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(req.HomeDir, ".config")
	}
	return filepath.Join(dir, "Code", "User", "settings.json")
}

// readVSCodeSettings returns a NotFound error when the settings carry
// no Azure account configuration.
func readVSCodeSettings(path string) (vsCodeSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vsCodeSettings{}, errors.Annotate(err, "reading VS Code settings")
	}
	// VS Code settings allow comments and trailing commas.
	data, err = hujson.Standardize(data)
	if err != nil {
		return vsCodeSettings{}, errors.Annotatef(err, "parsing VS Code settings %q", path)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return vsCodeSettings{}, errors.Annotatef(err, "parsing VS Code settings %q", path)
	}
	var settings vsCodeSettings
	cloud, hasCloud := raw[vsCodeCloudKey]
	if hasCloud {
		if err := json.Unmarshal(cloud, &settings.Cloud); err != nil {
			return vsCodeSettings{}, errors.Annotatef(err, "parsing %s", vsCodeCloudKey)
		}
	}
	filter, hasFilter := raw[vsCodeFilterKey]
	if hasFilter {
		if err := json.Unmarshal(filter, &settings.Filter); err != nil {
			return vsCodeSettings{}, errors.Annotatef(err, "parsing %s", vsCodeFilterKey)
		}
	}
	if !hasCloud && !hasFilter {
		return vsCodeSettings{}, errors.NotFoundf("Azure account settings in %q", path)
	}
	return settings, nil
}

// tenantAndSubscriptions splits the resource filter entries.
func (s vsCodeSettings) tenantAndSubscriptions() (string, []string) {
	var (
		tenant string
		subs   []string
	)
	for _, entry := range s.Filter {
		parts := strings.SplitN(entry, "/", 2)
		if len(parts) != 2 {
			continue
		}
		if tenant == "" {
			tenant = parts[0]
		}
		subs = append(subs, parts[1])
	}
	return tenant, subs
}

// The VS Code Azure account extension keeps its tokens in the system
// keychain. The cloud and the subscription filter come from the user
// settings; tokens are obtained through the Azure CLI sign in on the
// same machine.
func vsCodeSource() Source {
	return Source{
		Method: VSCode,
		Available: func(req Request) bool {
			_, err := readVSCodeSettings(VSCodeSettingsPath(req))
			if err != nil {
				logger.Tracef("VS Code settings unavailable: %v", err)
			}
			return err == nil
		},
		Retrieve: retrieveVSCode,
	}
}

func retrieveVSCode(_ context.Context, req Request) (*Credential, error) {
	settings, err := readVSCodeSettings(VSCodeSettingsPath(req))
	if err != nil {
		return nil, errors.Trace(err)
	}
	env, err := ParseEnvironment(settings.Cloud)
	if err != nil {
		return nil, errors.Annotate(err, "VS Code settings")
	}
	if req.Environment != nil && !req.Environment.Equal(env) {
		return nil, coreerrors.LoginFailuref(
			"VS Code is signed in to %s but %s is configured, change %q in the VS Code settings",
			env.CLIName, req.Environment.Name, vsCodeCloudKey,
		)
	}
	tenant, subs := settings.tenantAndSubscriptions()
	if req.Config.TenantID != "" {
		tenant = req.Config.TenantID
	}
	token, err := azidentity.NewAzureCLICredential(&azidentity.AzureCLICredentialOptions{
		TenantID: tenant,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Credential{
		Token:              token,
		Environment:        env,
		TenantID:           tenant,
		SubscriptionFilter: subs,
		Identity:           Mask(tenant),
	}, nil
}

// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package auth

import (
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/juju/errors"

	// Registers the resource manager endpoints of the sovereign clouds.
	_ "github.com/Azure/azure-sdk-for-go/sdk/azcore/arm/runtime"
)

// Environment is an Azure cloud: the public cloud or one of the
// sovereign clouds.
type Environment struct {
	// Name is the name used in deployment configuration.
	Name string
	// CLIName is the name the Azure CLI and VS Code use.
	CLIName string
	Cloud   cloud.Configuration
}

var (
	AzurePublic = Environment{
		Name:    "azure",
		CLIName: "AzureCloud",
		Cloud:   cloud.AzurePublic,
	}
	AzureChina = Environment{
		Name:    "azure_china",
		CLIName: "AzureChinaCloud",
		Cloud:   cloud.AzureChina,
	}
	AzureUSGovernment = Environment{
		Name:    "azure_us_government",
		CLIName: "AzureUSGovernment",
		Cloud:   cloud.AzureGovernment,
	}
)

var environments = []Environment{AzurePublic, AzureChina, AzureUSGovernment}

// ParseEnvironment returns the environment with the given configuration
// or CLI name. The empty string is the public cloud.
func ParseEnvironment(name string) (Environment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return AzurePublic, nil
	}
	for _, env := range environments {
		if strings.EqualFold(name, env.Name) || strings.EqualFold(name, env.CLIName) {
			return env, nil
		}
	}
	return Environment{}, errors.NotValidf("cloud environment %q", name)
}

// IsPublic reports whether this is the public Azure cloud.
func (e Environment) IsPublic() bool {
	return e.Name == AzurePublic.Name
}

// Equal reports whether both values name the same cloud.
func (e Environment) Equal(other Environment) bool {
	return e.Name == other.Name
}

// ResourceManagerEndpoint is the base URL of the management API.
func (e Environment) ResourceManagerEndpoint() string {
	return e.Cloud.Services[cloud.ResourceManager].Endpoint
}

// ManagementScope is the token scope for the management API and the
// deployment endpoints of the apps it manages.
func (e Environment) ManagementScope() string {
	audience := strings.TrimSuffix(e.Cloud.Services[cloud.ResourceManager].Audience, "/")
	return audience + "/.default"
}

func (e Environment) String() string {
	return e.Name
}

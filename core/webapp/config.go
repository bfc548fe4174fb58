// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package webapp

import (
	"fmt"

	"github.com/samber/lo"
)

// PlanNamePrefix is prepended to the app name to name a plan created
// for it when no plan name is configured.
const PlanNamePrefix = "asp-"

// SlotConfig names the deployment slot to deploy to.
type SlotConfig struct {
	Name string
	// ConfigurationSource is "parent" (the default), "new", or the
	// name of another slot whose configuration is cloned on create.
	ConfigurationSource string
}

const (
	SlotSourceParent = "parent"
	SlotSourceNew    = "new"
)

// AuthConfig selects and configures the credential sources.
type AuthConfig struct {
	// Type is "auto" or the name of a single credential source.
	Type string
	// Environment is the cloud environment explicitly configured, if
	// any.
	Environment string

	TenantID            string
	ClientID            string
	ClientSecret        string
	CertificatePath     string
	CertificatePassword string
}

// Config is the normalised description of one web app deployment. It
// is produced once per run and treated as read-only.
type Config struct {
	SubscriptionID string
	Auth           AuthConfig

	ResourceGroup string
	AppName       string
	Region        string
	PricingTier   PricingTier

	// PlanName and PlanResourceGroup override the hosting plan used.
	PlanName          string
	PlanResourceGroup string

	// Runtime is nil when the configuration does not specify one.
	Runtime *Runtime
	Docker  *DockerConfig

	AppSettings map[string]string
	Slot        *SlotConfig

	Artifacts []Artifact
	Resources []Resource

	StopAppDuringDeployment bool

	// BuildDirectory is where the staging directory is created.
	BuildDirectory string
	// FinalName is the build's final artifact name without extension.
	FinalName string

	Skip bool
}

// ResolvedPlanName returns the configured plan name, or the default
// name derived from the app name.
func (c Config) ResolvedPlanName() string {
	if c.PlanName != "" {
		return c.PlanName
	}
	return fmt.Sprintf("%s%s", PlanNamePrefix, c.AppName)
}

// ResolvedPlanResourceGroup returns the configured plan resource
// group, or the app's resource group.
func (c Config) ResolvedPlanResourceGroup() string {
	if c.PlanResourceGroup != "" {
		return c.PlanResourceGroup
	}
	return c.ResourceGroup
}

// ExternalResources returns the resources pushed over the secondary
// transfer channel.
func (c Config) ExternalResources() []Resource {
	return lo.Filter(c.Resources, func(r Resource, _ int) bool {
		return r.IsExternal()
	})
}

// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package webapp

// Site is a web app or one of its deployment slots, as it exists in
// the cloud.
type Site struct {
	ID            string
	Name          string
	ResourceGroup string
	// Slot is empty for the production site.
	Slot     string
	Region   string
	PlanID   string
	Runtime  Runtime
	HostName string
	// SCMHostName is the host of the deployment (Kudu) endpoint.
	SCMHostName string
	AppSettings map[string]string
}

// IsSlot reports whether the site is a deployment slot.
func (s Site) IsSlot() bool {
	return s.Slot != ""
}

// DisplayName names the site for log messages.
func (s Site) DisplayName() string {
	if s.IsSlot() {
		return s.Name + "/" + s.Slot
	}
	return s.Name
}

// SiteSpec is the desired shape of a web app.
type SiteSpec struct {
	Name          string
	ResourceGroup string
	Region        string
	PlanID        string
	// Runtime is nil to leave the current runtime untouched on update.
	Runtime     *Runtime
	Docker      *DockerConfig
	AppSettings map[string]string
}

// SlotSpec is the desired shape of a new deployment slot.
type SlotSpec struct {
	Name                string
	ConfigurationSource string
	AppSettings         map[string]string
}

// PlanSpec is the desired shape of a new hosting plan.
type PlanSpec struct {
	Name          string
	ResourceGroup string
	Region        string
	PricingTier   PricingTier
	OS            OperatingSystem
}

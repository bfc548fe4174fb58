// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azure

import (
	"context"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/juju/errors"

	"github.com/juju/webappdeploy/core/webapp"
	"github.com/juju/webappdeploy/internal/provider/azure/internal/errorutils"
)

const slotResourceType = "Microsoft.Web/sites/slots"

// GetSite returns the named web app, or a NotFound error.
func (p *Provider) GetSite(ctx context.Context, resourceGroup, name string) (webapp.Site, error) {
	resp, err := p.webApps.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		return webapp.Site{}, errorutils.MaybeNotFound(err, "web app %q in resource group %q", name, resourceGroup)
	}
	if resp.ID == nil {
		return webapp.Site{}, errors.NotFoundf("web app %q in resource group %q", name, resourceGroup)
	}
	cfg, err := p.webApps.GetConfiguration(ctx, resourceGroup, name, nil)
	if err != nil {
		return webapp.Site{}, errors.Annotatef(err, "getting configuration of web app %q", name)
	}
	return siteFromARM(resp.Site, cfg.Properties), nil
}

// GetSlot returns the named deployment slot of a web app, or a
// NotFound error.
func (p *Provider) GetSlot(ctx context.Context, parent webapp.Site, name string) (webapp.Site, error) {
	resp, err := p.webApps.GetSlot(ctx, parent.ResourceGroup, parent.Name, name, nil)
	if err != nil {
		return webapp.Site{}, errorutils.MaybeNotFound(err, "deployment slot %q of web app %q", name, parent.Name)
	}
	if resp.ID == nil {
		return webapp.Site{}, errors.NotFoundf("deployment slot %q of web app %q", name, parent.Name)
	}
	cfg, err := p.webApps.GetConfigurationSlot(ctx, parent.ResourceGroup, parent.Name, name, nil)
	if err != nil {
		return webapp.Site{}, errors.Annotatef(err, "getting configuration of deployment slot %q", name)
	}
	return siteFromARM(resp.Site, cfg.Properties), nil
}

// CreateSite creates a web app on an existing plan.
func (p *Provider) CreateSite(ctx context.Context, spec webapp.SiteSpec) (webapp.Site, error) {
	if spec.Runtime == nil {
		return webapp.Site{}, errors.NotValidf("web app %q without a runtime", spec.Name)
	}
	if err := validateResourceName("web app", spec.Name); err != nil {
		return webapp.Site{}, errors.Trace(err)
	}
	rt := *spec.Runtime
	settings := mergeSettings(spec.AppSettings, dockerAppSettings(spec.Docker))
	siteConfig := runtimeSiteConfig(rt)
	siteConfig.AppSettings = nameValuePairs(settings)

	envelope := armappservice.Site{
		Location: to.Ptr(canonicalLocation(spec.Region)),
		Kind:     to.Ptr(siteKind(rt.OS)),
		Properties: &armappservice.SiteProperties{
			ServerFarmID: to.Ptr(spec.PlanID),
			Reserved:     to.Ptr(rt.OS != webapp.Windows),
			SiteConfig:   siteConfig,
		},
	}
	poller, err := p.webApps.BeginCreateOrUpdate(ctx, spec.ResourceGroup, spec.Name, envelope, nil)
	if err != nil {
		return webapp.Site{}, errors.Annotatef(err, "creating web app %q", spec.Name)
	}
	resp, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return webapp.Site{}, errors.Annotatef(err, "creating web app %q", spec.Name)
	}
	site := siteFromARM(resp.Site, siteConfig)
	site.AppSettings = settings
	return site, nil
}

// UpdateSite moves a web app to the requested plan and switches its
// runtime when one is given. The requested app settings are merged into
// the existing ones.
func (p *Provider) UpdateSite(ctx context.Context, site webapp.Site, spec webapp.SiteSpec) (webapp.Site, error) {
	updated := site
	if spec.PlanID != "" && !strings.EqualFold(spec.PlanID, site.PlanID) {
		if err := p.movePlan(ctx, site, spec.PlanID); err != nil {
			return webapp.Site{}, errors.Annotatef(err, "moving %s to plan %q", site.DisplayName(), spec.PlanID)
		}
		updated.PlanID = spec.PlanID
	}
	if spec.Runtime != nil {
		if err := p.updateRuntime(ctx, site, *spec.Runtime); err != nil {
			return webapp.Site{}, errors.Annotatef(err, "updating runtime of %s", site.DisplayName())
		}
		updated.Runtime = *spec.Runtime
	}
	settings := mergeSettings(spec.AppSettings, dockerAppSettings(spec.Docker))
	if len(settings) > 0 {
		merged, err := p.mergeAppSettings(ctx, site, settings)
		if err != nil {
			return webapp.Site{}, errors.Annotatef(err, "updating app settings of %s", site.DisplayName())
		}
		updated.AppSettings = merged
	}
	return updated, nil
}

func (p *Provider) movePlan(ctx context.Context, site webapp.Site, planID string) error {
	patch := armappservice.SitePatchResource{
		Properties: &armappservice.SitePatchResourceProperties{
			ServerFarmID: to.Ptr(planID),
		},
	}
	var err error
	if site.IsSlot() {
		_, err = p.webApps.UpdateSlot(ctx, site.ResourceGroup, site.Name, site.Slot, patch, nil)
	} else {
		_, err = p.webApps.Update(ctx, site.ResourceGroup, site.Name, patch, nil)
	}
	return errors.Trace(err)
}

func (p *Provider) updateRuntime(ctx context.Context, site webapp.Site, rt webapp.Runtime) error {
	cfg := armappservice.SiteConfigResource{Properties: runtimeSiteConfig(rt)}
	var err error
	if site.IsSlot() {
		_, err = p.webApps.UpdateConfigurationSlot(ctx, site.ResourceGroup, site.Name, site.Slot, cfg, nil)
	} else {
		_, err = p.webApps.UpdateConfiguration(ctx, site.ResourceGroup, site.Name, cfg, nil)
	}
	return errors.Trace(err)
}

func (p *Provider) appSettings(ctx context.Context, site webapp.Site) (map[string]string, error) {
	if site.IsSlot() {
		resp, err := p.webApps.ListApplicationSettingsSlot(ctx, site.ResourceGroup, site.Name, site.Slot, nil)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return settingsFromDictionary(resp.Properties), nil
	}
	resp, err := p.webApps.ListApplicationSettings(ctx, site.ResourceGroup, site.Name, nil)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return settingsFromDictionary(resp.Properties), nil
}

func (p *Provider) mergeAppSettings(ctx context.Context, site webapp.Site, settings map[string]string) (map[string]string, error) {
	current, err := p.appSettings(ctx, site)
	if err != nil {
		return nil, errors.Trace(err)
	}
	merged := mergeSettings(current, settings)
	dict := armappservice.StringDictionary{Properties: dictionaryFromSettings(merged)}
	if site.IsSlot() {
		_, err = p.webApps.UpdateApplicationSettingsSlot(ctx, site.ResourceGroup, site.Name, site.Slot, dict, nil)
	} else {
		_, err = p.webApps.UpdateApplicationSettings(ctx, site.ResourceGroup, site.Name, dict, nil)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	return merged, nil
}

// CreateSlot creates a deployment slot of a web app. The runtime
// configuration and app settings are cloned from the parent, from
// another slot, or not at all, depending on the configuration source.
func (p *Provider) CreateSlot(ctx context.Context, parent webapp.Site, spec webapp.SlotSpec) (webapp.Site, error) {
	sourceConfig, sourceSettings, err := p.slotSource(ctx, parent, spec.ConfigurationSource)
	if err != nil {
		return webapp.Site{}, errors.Trace(err)
	}
	settings := mergeSettings(sourceSettings, spec.AppSettings)
	siteConfig := cloneRuntimeConfig(sourceConfig)
	siteConfig.AppSettings = nameValuePairs(settings)

	envelope := armappservice.Site{
		Location: to.Ptr(parent.Region),
		Kind:     to.Ptr(siteKind(parent.Runtime.OS)),
		Properties: &armappservice.SiteProperties{
			ServerFarmID: to.Ptr(parent.PlanID),
			SiteConfig:   siteConfig,
		},
	}
	poller, err := p.webApps.BeginCreateOrUpdateSlot(ctx, parent.ResourceGroup, parent.Name, spec.Name, envelope, nil)
	if err != nil {
		return webapp.Site{}, errors.Annotatef(err, "creating deployment slot %q", spec.Name)
	}
	resp, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return webapp.Site{}, errors.Annotatef(err, "creating deployment slot %q", spec.Name)
	}
	slot := siteFromARM(resp.Site, siteConfig)
	if slot.Slot == "" {
		slot.Name, slot.Slot = parent.Name, spec.Name
	}
	slot.AppSettings = settings
	return slot, nil
}

func (p *Provider) slotSource(ctx context.Context, parent webapp.Site, source string) (*armappservice.SiteConfig, map[string]string, error) {
	switch {
	case strings.EqualFold(source, webapp.SlotSourceNew):
		return nil, nil, nil
	case source == "" || strings.EqualFold(source, webapp.SlotSourceParent) || strings.EqualFold(source, parent.Name):
		cfg, err := p.webApps.GetConfiguration(ctx, parent.ResourceGroup, parent.Name, nil)
		if err != nil {
			return nil, nil, errors.Annotatef(err, "getting configuration of web app %q", parent.Name)
		}
		settings, err := p.appSettings(ctx, parent)
		if err != nil {
			return nil, nil, errors.Annotatef(err, "getting app settings of web app %q", parent.Name)
		}
		return cfg.Properties, settings, nil
	}
	cfg, err := p.webApps.GetConfigurationSlot(ctx, parent.ResourceGroup, parent.Name, source, nil)
	if err != nil {
		return nil, nil, errorutils.MaybeNotFound(err, "deployment slot %q to clone the configuration from", source)
	}
	sourceSlot := parent
	sourceSlot.Slot = source
	settings, err := p.appSettings(ctx, sourceSlot)
	if err != nil {
		return nil, nil, errors.Annotatef(err, "getting app settings of deployment slot %q", source)
	}
	return cfg.Properties, settings, nil
}

func siteFromARM(s armappservice.Site, cfg *armappservice.SiteConfig) webapp.Site {
	site := webapp.Site{
		ID:     deref(s.ID),
		Name:   deref(s.Name),
		Region: deref(s.Location),
	}
	if id, err := arm.ParseResourceID(site.ID); err == nil {
		site.ResourceGroup = id.ResourceGroupName
		site.Name = id.Name
		if strings.EqualFold(id.ResourceType.String(), slotResourceType) && id.Parent != nil {
			site.Name, site.Slot = id.Parent.Name, id.Name
		}
	}
	if s.Properties == nil {
		site.Runtime = runtimeFromSiteConfig(deref(s.Kind), cfg)
		return site
	}
	if cfg == nil {
		cfg = s.Properties.SiteConfig
	}
	site.Runtime = runtimeFromSiteConfig(deref(s.Kind), cfg)
	site.PlanID = deref(s.Properties.ServerFarmID)
	site.HostName = deref(s.Properties.DefaultHostName)
	for _, state := range s.Properties.HostNameSSLStates {
		if state != nil && deref(state.HostType) == armappservice.HostTypeRepository {
			site.SCMHostName = deref(state.Name)
		}
	}
	if site.SCMHostName == "" {
		site.SCMHostName = scmHostName(site.HostName)
	}
	return site
}

// scmHostName derives the deployment endpoint host from the default
// host name: "shop.azurewebsites.net" becomes
// "shop.scm.azurewebsites.net".
func scmHostName(host string) string {
	name, domain, ok := strings.Cut(host, ".")
	if !ok {
		return ""
	}
	return name + ".scm." + domain
}

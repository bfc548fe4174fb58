// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package reconcile brings the resource group, hosting plan and web app
// (or deployment slot) of a deployment into the configured shape.
package reconcile

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	coreerrors "github.com/juju/webappdeploy/core/errors"
	"github.com/juju/webappdeploy/core/webapp"
)

var logger = loggo.GetLogger("webappdeploy.reconcile")

// Reconciler creates or updates the resources a web app deployment
// needs. Resources are never deleted.
type Reconciler struct {
	ResourceGroups ResourceGroups
	Plans          Plans
	Sites          Sites
}

// Reconcile returns the site to deploy to, creating or updating it and
// its dependencies first.
func (r *Reconciler) Reconcile(ctx context.Context, cfg webapp.Config) (webapp.Site, error) {
	if cfg.Slot != nil && cfg.Slot.Name != "" {
		return r.reconcileSlot(ctx, cfg)
	}
	site, err := r.Sites.GetSite(ctx, cfg.ResourceGroup, cfg.AppName)
	if errors.Is(err, errors.NotFound) {
		return r.createSite(ctx, cfg)
	} else if err != nil {
		return webapp.Site{}, errors.Annotatef(err, "getting web app %q", cfg.AppName)
	}
	return r.updateSite(ctx, cfg, site)
}

func (r *Reconciler) reconcileSlot(ctx context.Context, cfg webapp.Config) (webapp.Site, error) {
	parent, err := r.Sites.GetSite(ctx, cfg.ResourceGroup, cfg.AppName)
	if errors.Is(err, errors.NotFound) {
		return webapp.Site{}, coreerrors.Configurationf(
			"cannot deploy to slot %q: web app %q does not exist in resource group %q",
			cfg.Slot.Name, cfg.AppName, cfg.ResourceGroup,
		)
	} else if err != nil {
		return webapp.Site{}, errors.Annotatef(err, "getting web app %q", cfg.AppName)
	}

	slot, err := r.Sites.GetSlot(ctx, parent, cfg.Slot.Name)
	if err == nil {
		// Existing slots are deployed to as they are.
		logger.Infof("Deployment slot %s already exists, its configuration is not updated", slot.DisplayName())
		return slot, nil
	} else if !errors.Is(err, errors.NotFound) {
		return webapp.Site{}, errors.Annotatef(err, "getting deployment slot %q", cfg.Slot.Name)
	}

	source := cfg.Slot.ConfigurationSource
	if source == "" {
		source = webapp.SlotSourceParent
	}
	logger.Infof("Creating deployment slot %s/%s (configuration from %s)", parent.Name, cfg.Slot.Name, source)
	slot, err = r.Sites.CreateSlot(ctx, parent, webapp.SlotSpec{
		Name:                cfg.Slot.Name,
		ConfigurationSource: source,
		AppSettings:         cfg.AppSettings,
	})
	if err != nil {
		return webapp.Site{}, errors.Annotatef(err, "creating deployment slot %q", cfg.Slot.Name)
	}
	logger.Infof("Successfully created deployment slot %s", slot.DisplayName())
	return slot, nil
}

func (r *Reconciler) createSite(ctx context.Context, cfg webapp.Config) (webapp.Site, error) {
	if cfg.Runtime == nil {
		return webapp.Site{}, coreerrors.Configurationf(
			"web app %q does not exist and no runtime is configured to create it", cfg.AppName)
	}
	if _, err := r.ensureResourceGroup(ctx, cfg.ResourceGroup, cfg.Region); err != nil {
		return webapp.Site{}, errors.Trace(err)
	}
	plan, err := r.ensurePlan(ctx, cfg)
	if err != nil {
		return webapp.Site{}, errors.Trace(err)
	}

	logger.Infof("Creating web app %s (%s) in resource group %s", cfg.AppName, cfg.Runtime, cfg.ResourceGroup)
	site, err := r.Sites.CreateSite(ctx, webapp.SiteSpec{
		Name:          cfg.AppName,
		ResourceGroup: cfg.ResourceGroup,
		Region:        cfg.Region,
		PlanID:        plan.ID,
		Runtime:       cfg.Runtime,
		Docker:        cfg.Docker,
		AppSettings:   cfg.AppSettings,
	})
	if err != nil {
		return webapp.Site{}, errors.Annotatef(err, "creating web app %q", cfg.AppName)
	}
	logger.Infof("Successfully created web app %s", site.Name)
	return site, nil
}

func (r *Reconciler) updateSite(ctx context.Context, cfg webapp.Config, site webapp.Site) (webapp.Site, error) {
	plan, err := r.updateTargetPlan(ctx, cfg, site)
	if err != nil {
		return webapp.Site{}, errors.Trace(err)
	}

	logger.Infof("Updating web app %s", site.Name)
	updated, err := r.Sites.UpdateSite(ctx, site, webapp.SiteSpec{
		Name:          site.Name,
		ResourceGroup: site.ResourceGroup,
		Region:        site.Region,
		PlanID:        plan.ID,
		Runtime:       cfg.Runtime,
		Docker:        cfg.Docker,
		AppSettings:   cfg.AppSettings,
	})
	if err != nil {
		return webapp.Site{}, errors.Annotatef(err, "updating web app %q", site.Name)
	}
	logger.Infof("Successfully updated web app %s", updated.Name)
	return updated, nil
}

// updateTargetPlan returns the plan an existing app should be bound to.
// Without a configured plan name the current plan is kept; a configured
// pricing tier is applied to it in place.
func (r *Reconciler) updateTargetPlan(ctx context.Context, cfg webapp.Config, site webapp.Site) (webapp.Plan, error) {
	if cfg.PlanName == "" {
		plan, err := r.Plans.GetPlanByID(ctx, site.PlanID)
		if err != nil {
			return webapp.Plan{}, errors.Annotatef(err, "getting app service plan of web app %q", site.Name)
		}
		return r.updatePricingTier(ctx, cfg, plan)
	}

	plan, err := r.Plans.GetPlan(ctx, cfg.ResolvedPlanResourceGroup(), cfg.PlanName)
	if errors.Is(err, errors.NotFound) {
		return r.createPlan(ctx, cfg)
	} else if err != nil {
		return webapp.Plan{}, errors.Annotatef(err, "getting app service plan %q", cfg.PlanName)
	}
	return r.updatePricingTier(ctx, cfg, plan)
}

func (r *Reconciler) updatePricingTier(ctx context.Context, cfg webapp.Config, plan webapp.Plan) (webapp.Plan, error) {
	if cfg.PricingTier.IsZero() || plan.PricingTier.Equal(cfg.PricingTier) {
		logger.Debugf("app service plan %s keeps pricing tier %s", plan.Name, plan.PricingTier)
		return plan, nil
	}
	logger.Infof("Updating pricing tier of app service plan %s from %s to %s", plan.Name, plan.PricingTier, cfg.PricingTier)
	updated, err := r.Plans.UpdatePricingTier(ctx, plan, cfg.PricingTier)
	if err != nil {
		return webapp.Plan{}, errors.Annotatef(err, "updating app service plan %q", plan.Name)
	}
	return updated, nil
}

// ensurePlan returns the plan a new app is created in.
func (r *Reconciler) ensurePlan(ctx context.Context, cfg webapp.Config) (webapp.Plan, error) {
	name := cfg.ResolvedPlanName()
	plan, err := r.Plans.GetPlan(ctx, cfg.ResolvedPlanResourceGroup(), name)
	if errors.Is(err, errors.NotFound) {
		return r.createPlan(ctx, cfg)
	} else if err != nil {
		return webapp.Plan{}, errors.Annotatef(err, "getting app service plan %q", name)
	}
	want := cfg.Runtime.OS.PlanOperatingSystem()
	if plan.OS != "" && plan.OS != want {
		return webapp.Plan{}, coreerrors.Configurationf(
			"app service plan %q runs %s and cannot host a %s web app", plan.Name, plan.OS, cfg.Runtime.OS)
	}
	return plan, nil
}

func (r *Reconciler) createPlan(ctx context.Context, cfg webapp.Config) (webapp.Plan, error) {
	name := cfg.ResolvedPlanName()
	if cfg.Runtime == nil {
		return webapp.Plan{}, coreerrors.Configurationf(
			"app service plan %q does not exist and no runtime is configured to create it", name)
	}
	resourceGroup := cfg.ResolvedPlanResourceGroup()
	if _, err := r.ensureResourceGroup(ctx, resourceGroup, cfg.Region); err != nil {
		return webapp.Plan{}, errors.Trace(err)
	}
	tier := cfg.PricingTier
	if tier.IsZero() {
		tier = webapp.DefaultPricingTier
	}
	spec := webapp.PlanSpec{
		Name:          name,
		ResourceGroup: resourceGroup,
		Region:        cfg.Region,
		PricingTier:   tier,
		OS:            cfg.Runtime.OS.PlanOperatingSystem(),
	}
	logger.Infof("Creating app service plan %s (%s, %s) in resource group %s", spec.Name, spec.OS, spec.PricingTier, spec.ResourceGroup)
	plan, err := r.Plans.CreatePlan(ctx, spec)
	if err != nil {
		return webapp.Plan{}, errors.Annotatef(err, "creating app service plan %q", name)
	}
	logger.Infof("Successfully created app service plan %s", plan.Name)
	return plan, nil
}

func (r *Reconciler) ensureResourceGroup(ctx context.Context, name, region string) (webapp.ResourceGroup, error) {
	group, err := r.ResourceGroups.GetResourceGroup(ctx, name)
	if err == nil {
		return group, nil
	} else if !errors.Is(err, errors.NotFound) {
		return webapp.ResourceGroup{}, errors.Annotatef(err, "getting resource group %q", name)
	}
	logger.Infof("Creating resource group %s in region %s", name, region)
	group, err = r.ResourceGroups.CreateResourceGroup(ctx, name, region)
	if err != nil {
		return webapp.ResourceGroup{}, errors.Annotatef(err, "creating resource group %q", name)
	}
	logger.Infof("Successfully created resource group %s", name)
	return group, nil
}

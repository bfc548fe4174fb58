// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package reconcile

import (
	"context"

	"github.com/juju/webappdeploy/core/webapp"
)

// Lookups return an error satisfying errors.Is(err, errors.NotFound)
// when the resource does not exist.

// ResourceGroups manages resource groups.
type ResourceGroups interface {
	GetResourceGroup(ctx context.Context, name string) (webapp.ResourceGroup, error)
	CreateResourceGroup(ctx context.Context, name, region string) (webapp.ResourceGroup, error)
}

// Plans manages hosting plans.
type Plans interface {
	GetPlan(ctx context.Context, resourceGroup, name string) (webapp.Plan, error)
	GetPlanByID(ctx context.Context, id string) (webapp.Plan, error)
	CreatePlan(ctx context.Context, spec webapp.PlanSpec) (webapp.Plan, error)
	UpdatePricingTier(ctx context.Context, plan webapp.Plan, tier webapp.PricingTier) (webapp.Plan, error)
}

// Sites manages web apps and their deployment slots.
type Sites interface {
	GetSite(ctx context.Context, resourceGroup, name string) (webapp.Site, error)
	CreateSite(ctx context.Context, spec webapp.SiteSpec) (webapp.Site, error)
	UpdateSite(ctx context.Context, site webapp.Site, spec webapp.SiteSpec) (webapp.Site, error)
	GetSlot(ctx context.Context, parent webapp.Site, name string) (webapp.Site, error)
	CreateSlot(ctx context.Context, parent webapp.Site, spec webapp.SlotSpec) (webapp.Site, error)
}

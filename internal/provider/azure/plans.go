// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/juju/errors"

	"github.com/juju/webappdeploy/core/webapp"
	"github.com/juju/webappdeploy/internal/provider/azure/internal/errorutils"
)

// GetPlan returns the named hosting plan, or a NotFound error.
func (p *Provider) GetPlan(ctx context.Context, resourceGroup, name string) (webapp.Plan, error) {
	resp, err := p.plans.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		return webapp.Plan{}, errorutils.MaybeNotFound(err, "app service plan %q in resource group %q", name, resourceGroup)
	}
	// The plans API answers a lookup of a missing plan with an empty
	// body.
	if resp.ID == nil {
		return webapp.Plan{}, errors.NotFoundf("app service plan %q in resource group %q", name, resourceGroup)
	}
	return planFromARM(resp.Plan), nil
}

// GetPlanByID returns the hosting plan with the resource id.
func (p *Provider) GetPlanByID(ctx context.Context, id string) (webapp.Plan, error) {
	resourceID, err := arm.ParseResourceID(id)
	if err != nil {
		return webapp.Plan{}, errors.Annotatef(err, "parsing app service plan id %q", id)
	}
	plan, err := p.GetPlan(ctx, resourceID.ResourceGroupName, resourceID.Name)
	return plan, errors.Trace(err)
}

// CreatePlan creates a hosting plan and waits for it to be ready.
func (p *Provider) CreatePlan(ctx context.Context, spec webapp.PlanSpec) (webapp.Plan, error) {
	if err := validateResourceName("app service plan", spec.Name); err != nil {
		return webapp.Plan{}, errors.Trace(err)
	}
	envelope := planEnvelope(canonicalLocation(spec.Region), spec.OS, spec.PricingTier)
	plan, err := p.putPlan(ctx, spec.ResourceGroup, spec.Name, envelope)
	return plan, errors.Annotatef(err, "creating app service plan %q", spec.Name)
}

// UpdatePricingTier moves the plan to another SKU.
func (p *Provider) UpdatePricingTier(ctx context.Context, plan webapp.Plan, tier webapp.PricingTier) (webapp.Plan, error) {
	envelope := planEnvelope(plan.Region, plan.OS, tier)
	updated, err := p.putPlan(ctx, plan.ResourceGroup, plan.Name, envelope)
	return updated, errors.Annotatef(err, "updating pricing tier of app service plan %q", plan.Name)
}

func (p *Provider) putPlan(ctx context.Context, resourceGroup, name string, envelope armappservice.Plan) (webapp.Plan, error) {
	poller, err := p.plans.BeginCreateOrUpdate(ctx, resourceGroup, name, envelope, nil)
	if err != nil {
		return webapp.Plan{}, errors.Trace(err)
	}
	resp, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return webapp.Plan{}, errors.Trace(err)
	}
	return planFromARM(resp.Plan), nil
}

func planEnvelope(region string, os webapp.OperatingSystem, tier webapp.PricingTier) armappservice.Plan {
	linux := os.PlanOperatingSystem() == webapp.Linux
	kind := "app"
	if linux {
		kind = "linux"
	}
	return armappservice.Plan{
		Location: to.Ptr(region),
		Kind:     to.Ptr(kind),
		SKU: &armappservice.SKUDescription{
			Name: to.Ptr(tier.Size),
			Tier: to.Ptr(tier.Tier),
		},
		Properties: &armappservice.PlanProperties{
			// Reserved marks a Linux plan.
			Reserved: to.Ptr(linux),
		},
	}
}

func planFromARM(plan armappservice.Plan) webapp.Plan {
	result := webapp.Plan{
		ID:     deref(plan.ID),
		Name:   deref(plan.Name),
		Region: deref(plan.Location),
		OS:     webapp.Windows,
	}
	if id, err := arm.ParseResourceID(result.ID); err == nil {
		result.ResourceGroup = id.ResourceGroupName
	}
	if plan.SKU != nil {
		result.PricingTier = webapp.PricingTier{
			Tier: deref(plan.SKU.Tier),
			Size: deref(plan.SKU.Name),
		}
	}
	if plan.Properties != nil && deref(plan.Properties.Reserved) {
		result.OS = webapp.Linux
	}
	return result
}

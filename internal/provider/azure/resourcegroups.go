// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/juju/errors"

	"github.com/juju/webappdeploy/core/webapp"
	"github.com/juju/webappdeploy/internal/provider/azure/internal/errorutils"
)

// GetResourceGroup returns the named resource group, or a NotFound
// error.
func (p *Provider) GetResourceGroup(ctx context.Context, name string) (webapp.ResourceGroup, error) {
	resp, err := p.groups.Get(ctx, name, nil)
	if err != nil {
		return webapp.ResourceGroup{}, errorutils.MaybeNotFound(err, "resource group %q", name)
	}
	return resourceGroupFromARM(resp.ResourceGroup), nil
}

// CreateResourceGroup creates a resource group in the region.
func (p *Provider) CreateResourceGroup(ctx context.Context, name, region string) (webapp.ResourceGroup, error) {
	if err := validateResourceName("resource group", name); err != nil {
		return webapp.ResourceGroup{}, errors.Trace(err)
	}
	resp, err := p.groups.CreateOrUpdate(ctx, name, armresources.ResourceGroup{
		Location: to.Ptr(canonicalLocation(region)),
	}, nil)
	if err != nil {
		return webapp.ResourceGroup{}, errors.Annotatef(err, "creating resource group %q", name)
	}
	return resourceGroupFromARM(resp.ResourceGroup), nil
}

func resourceGroupFromARM(group armresources.ResourceGroup) webapp.ResourceGroup {
	return webapp.ResourceGroup{
		Name:   deref(group.Name),
		Region: deref(group.Location),
	}
}

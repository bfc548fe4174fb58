// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package azure manages web apps, their hosting plans and resource
// groups through Azure Resource Manager, and deploys to them through
// the web app deployment endpoints.
package azure

import (
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/juju/errors"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("webappdeploy.provider.azure")

// Provider manages the resources of one subscription. It implements
// the resource operations used to reconcile a web app and the
// operations used to deploy to it.
type Provider struct {
	config Config

	groups  *armresources.ResourceGroupsClient
	plans   *armappservice.PlansClient
	webApps *armappservice.WebAppsClient
	kudu    *kuduClient
}

// NewProvider returns a Provider for the configured subscription.
func NewProvider(cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if err := cfg.validateSubscription(); err != nil {
		return nil, errors.Trace(err)
	}
	opts := cfg.clientOptions()
	groups, err := armresources.NewResourceGroupsClient(cfg.SubscriptionID, cfg.Credential, opts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	plans, err := armappservice.NewPlansClient(cfg.SubscriptionID, cfg.Credential, opts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	webApps, err := armappservice.NewWebAppsClient(cfg.SubscriptionID, cfg.Credential, opts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Provider{
		config:  cfg,
		groups:  groups,
		plans:   plans,
		webApps: webApps,
		kudu:    newKuduClient(cfg),
	}, nil
}

// FileTransfer returns the FTPS channel used to push external
// resources.
func (p *Provider) FileTransfer() *FTPTransfer {
	return &FTPTransfer{
		profiles: p,
		dial:     p.config.DialFTP,
	}
}

func deref[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

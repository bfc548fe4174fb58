// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azure

import (
	"context"

	"github.com/juju/errors"

	"github.com/juju/webappdeploy/core/webapp"
)

// Start starts the web app or slot.
func (p *Provider) Start(ctx context.Context, site webapp.Site) error {
	var err error
	if site.IsSlot() {
		_, err = p.webApps.StartSlot(ctx, site.ResourceGroup, site.Name, site.Slot, nil)
	} else {
		_, err = p.webApps.Start(ctx, site.ResourceGroup, site.Name, nil)
	}
	return errors.Trace(err)
}

// Stop stops the web app or slot.
func (p *Provider) Stop(ctx context.Context, site webapp.Site) error {
	var err error
	if site.IsSlot() {
		_, err = p.webApps.StopSlot(ctx, site.ResourceGroup, site.Name, site.Slot, nil)
	} else {
		_, err = p.webApps.Stop(ctx, site.ResourceGroup, site.Name, nil)
	}
	return errors.Trace(err)
}

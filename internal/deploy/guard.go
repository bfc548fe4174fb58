// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package deploy

import (
	"context"

	"github.com/juju/errors"

	"github.com/juju/webappdeploy/core/webapp"
)

// runningGuard keeps a site running across a deployment: the site is
// started when the guard is released, whether or not it was stopped
// and whether or not the deployment succeeded.
type runningGuard struct {
	apps AppService
	site webapp.Site
}

func newRunningGuard(apps AppService, site webapp.Site) *runningGuard {
	return &runningGuard{apps: apps, site: site}
}

// Stop stops the site until the guard is released.
func (g *runningGuard) Stop(ctx context.Context) error {
	logger.Infof("Stopping %s", g.site.DisplayName())
	err := g.apps.Stop(ctx, g.site)
	return errors.Annotatef(err, "stopping %s", g.site.DisplayName())
}

// Release starts the site. It runs even when ctx is done.
func (g *runningGuard) Release(ctx context.Context) error {
	logger.Infof("Starting %s", g.site.DisplayName())
	err := g.apps.Start(context.WithoutCancel(ctx), g.site)
	return errors.Annotatef(err, "starting %s", g.site.DisplayName())
}

// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package deploy

import (
	"context"

	"github.com/juju/webappdeploy/core/webapp"
)

// AppService runs and deploys to a web app or slot.
type AppService interface {
	Start(ctx context.Context, site webapp.Site) error
	Stop(ctx context.Context, site webapp.Site) error
	// Deploy pushes a single artifact to its target path.
	Deploy(ctx context.Context, site webapp.Site, artifact webapp.Artifact) error
	// ZipDeploy replaces the application content with the archive.
	ZipDeploy(ctx context.Context, site webapp.Site, zipFile string) error
}

// FileTransfer pushes resources outside the deployment API.
type FileTransfer interface {
	Upload(ctx context.Context, site webapp.Site, resources []webapp.Resource) error
}

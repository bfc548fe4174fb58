// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package deploy pushes build artifacts to a reconciled web app, picking
// the deployment path from the shape of the artifact list.
package deploy

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/samber/lo"

	"github.com/juju/webappdeploy/core/webapp"
)

var logger = loggo.GetLogger("webappdeploy.deploy")

// Strategist deploys artifacts and external resources to a site.
type Strategist struct {
	Apps  AppService
	Files FileTransfer
}

// Deploy deploys everything the configuration lists to site, using
// stagingDir as scratch space for packaging. Container apps are skipped.
// Otherwise the app is started on every return path, after being
// stopped for the deployment if the configuration asks for it.
func (s *Strategist) Deploy(ctx context.Context, site webapp.Site, cfg webapp.Config, stagingDir string) (err error) {
	if site.Runtime.IsDocker() {
		logger.Infof("Skipping artifact deployment to docker web app %s", site.DisplayName())
		return nil
	}
	guard := newRunningGuard(s.Apps, site)
	defer func() {
		startErr := guard.Release(ctx)
		if startErr == nil {
			return
		}
		if err == nil {
			err = startErr
			return
		}
		logger.Errorf("starting %s after failed deployment: %v", site.DisplayName(), startErr)
	}()

	if cfg.StopAppDuringDeployment {
		if err := guard.Stop(ctx); err != nil {
			return errors.Trace(err)
		}
	}
	if err := s.deployArtifacts(ctx, site, cfg, stagingDir); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(s.deployExternalResources(ctx, site, cfg))
}

func (s *Strategist) deployArtifacts(ctx context.Context, site webapp.Site, cfg webapp.Config, stagingDir string) error {
	st := SelectStrategy(site, cfg.Artifacts)
	logger.Debugf("deploying %d artifacts to %s with the %s strategy", len(cfg.Artifacts), site.DisplayName(), st.Name)
	return st.deploy(ctx, s, site, cfg, stagingDir)
}

func (s *Strategist) deployExternalResources(ctx context.Context, site webapp.Site, cfg webapp.Config) error {
	external := cfg.ExternalResources()
	if len(external) == 0 {
		return nil
	}
	if s.Files == nil {
		return errors.NotSupportedf("external resources")
	}
	logger.Infof("Uploading %d external resources to %s", len(external), site.DisplayName())
	return errors.Annotate(s.Files.Upload(ctx, site, external), "uploading external resources")
}

// Strategy is one way of deploying an artifact list.
type Strategy struct {
	Name    string
	applies func(site webapp.Site, artifacts []webapp.Artifact) bool
	deploy  func(ctx context.Context, s *Strategist, site webapp.Site, cfg webapp.Config, stagingDir string) error
}

// strategies are tried in order; the last always applies.
var strategies = []Strategy{{
	Name: "none",
	applies: func(_ webapp.Site, artifacts []webapp.Artifact) bool {
		return len(artifacts) == 0
	},
	deploy: func(_ context.Context, _ *Strategist, site webapp.Site, _ webapp.Config, _ string) error {
		logger.Infof("No artifacts to deploy to %s", site.DisplayName())
		return nil
	},
}, {
	Name: "single artifact",
	applies: func(_ webapp.Site, artifacts []webapp.Artifact) bool {
		return len(artifacts) == 1
	},
	deploy: deploySingle,
}, {
	Name:    "web archives",
	applies: distinctWebArchives,
	deploy:  deployEach,
}, {
	Name: "zip package",
	applies: func(webapp.Site, []webapp.Artifact) bool {
		return true
	},
	deploy: deployPackage,
}}

// SelectStrategy returns the strategy used for the artifacts.
func SelectStrategy(site webapp.Site, artifacts []webapp.Artifact) Strategy {
	for _, st := range strategies {
		if st.applies(site, artifacts) {
			return st
		}
	}
	panic("no deployment strategy")
}

func artifactType(a webapp.Artifact) webapp.DeployType {
	if a.Type != "" {
		return a.Type
	}
	return webapp.DeployTypeForFile(a.File)
}

func normalisePath(p string) string {
	return strings.Trim(path.Clean("/"+strings.ReplaceAll(p, "\\", "/")), "/")
}

func distinctWebArchives(_ webapp.Site, artifacts []webapp.Artifact) bool {
	allWars := lo.EveryBy(artifacts, func(a webapp.Artifact) bool {
		return artifactType(a).IsWebArchive()
	})
	if !allWars {
		return false
	}
	paths := lo.Map(artifacts, func(a webapp.Artifact, _ int) string {
		return normalisePath(a.Path)
	})
	return len(lo.Uniq(paths)) == len(paths)
}

func deploySingle(ctx context.Context, s *Strategist, site webapp.Site, cfg webapp.Config, _ string) error {
	artifact := cfg.Artifacts[0]
	artifact.Type = artifactType(artifact)
	if site.Runtime.WebContainer.EnterpriseArchiveOnly() {
		artifact.Type = webapp.DeployEar
	}
	return errors.Trace(s.deployOne(ctx, site, artifact))
}

func deployEach(ctx context.Context, s *Strategist, site webapp.Site, cfg webapp.Config, _ string) error {
	for _, artifact := range cfg.Artifacts {
		artifact.Type = artifactType(artifact)
		if err := s.deployOne(ctx, site, artifact); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (s *Strategist) deployOne(ctx context.Context, site webapp.Site, artifact webapp.Artifact) error {
	logger.Infof("Deploying %s (%s) to %s", filepath.Base(artifact.File), artifact.Type, site.DisplayName())
	if err := s.Apps.Deploy(ctx, site, artifact); err != nil {
		return errors.Annotatef(err, "deploying %q", artifact.File)
	}
	return nil
}

func deployPackage(ctx context.Context, s *Strategist, site webapp.Site, cfg webapp.Config, stagingDir string) error {
	if err := stageArtifacts(stagingDir, cfg.Artifacts); err != nil {
		return errors.Trace(err)
	}
	if site.Runtime.WebContainer.IsJavaSE() {
		if err := renameJavaSEJar(stagingDir, cfg.FinalName); err != nil {
			return errors.Trace(err)
		}
	}
	zipFile, err := zipDirectory(stagingDir)
	if err != nil {
		return errors.Trace(err)
	}
	defer removeQuietly(zipFile)

	size := "unknown size"
	if info, err := os.Stat(zipFile); err == nil {
		size = humanize.IBytes(uint64(info.Size()))
	}
	logger.Infof("Deploying %d artifacts to %s as a zip package (%s)", len(cfg.Artifacts), site.DisplayName(), size)
	if err := s.Apps.ZipDeploy(ctx, site, zipFile); err != nil {
		return errors.Annotate(err, "deploying zip package")
	}
	return nil
}

// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package orchestrator runs one deployment: it signs in, selects the
// subscription, reconciles the web app and deploys the artifacts.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	coreerrors "github.com/juju/webappdeploy/core/errors"
	"github.com/juju/webappdeploy/core/webapp"
	"github.com/juju/webappdeploy/internal/auth"
	"github.com/juju/webappdeploy/internal/deploy"
	"github.com/juju/webappdeploy/internal/reconcile"
	"github.com/juju/webappdeploy/internal/subscription"
)

var logger = loggo.GetLogger("webappdeploy.orchestrator")

// stagingParent is the directory below the build directory that holds
// the per run staging directories.
const stagingParent = "azure-webapp"

// Authenticator obtains a credential for the configured account.
type Authenticator interface {
	Authenticate(ctx context.Context, cfg webapp.AuthConfig) (*auth.Credential, error)
}

// Cloud groups the operations a run needs in the selected
// subscription.
type Cloud struct {
	ResourceGroups reconcile.ResourceGroups
	Plans          reconcile.Plans
	Sites          reconcile.Sites
	Apps           deploy.AppService
	// Files is nil when external resources cannot be pushed.
	Files deploy.FileTransfer
}

// Config holds the dependencies of an Orchestrator.
type Config struct {
	Authenticator Authenticator
	// Prompter is nil when no user can be asked to choose a
	// subscription.
	Prompter subscription.Prompter
	// NewLister returns the subscription lister for a credential.
	NewLister func(cred *auth.Credential) (subscription.Lister, error)
	// NewCloud returns the cloud operations bound to a subscription.
	NewCloud func(cred *auth.Credential, subscriptionID string) (*Cloud, error)
}

// Validate returns an error if the config cannot be used to run
// deployments.
func (c Config) Validate() error {
	if c.Authenticator == nil {
		return errors.NotValidf("nil Authenticator")
	}
	if c.NewLister == nil {
		return errors.NotValidf("nil NewLister")
	}
	if c.NewCloud == nil {
		return errors.NotValidf("nil NewCloud")
	}
	return nil
}

// Orchestrator runs deployments.
type Orchestrator struct {
	config Config
}

// New returns an Orchestrator with the given dependencies.
func New(config Config) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &Orchestrator{config: config}, nil
}

// Result describes a completed run.
type Result struct {
	// Skipped is true when the configuration asked to skip the run.
	Skipped bool
	Site    webapp.Site
	// URL is the address the deployed app is served on.
	URL string
}

// Run deploys the web app described by cfg.
func (o *Orchestrator) Run(ctx context.Context, cfg webapp.Config) (Result, error) {
	if cfg.Skip {
		logger.Infof("Skipping deployment of %s", cfg.AppName)
		return Result{Skipped: true}, nil
	}
	if err := validateTarget(cfg); err != nil {
		return Result{}, errors.Trace(err)
	}

	cred, err := o.config.Authenticator.Authenticate(ctx, cfg.Auth)
	if err != nil {
		return Result{}, errors.Trace(err)
	}
	subscriptionID, err := o.selectSubscription(ctx, cred, cfg)
	if err != nil {
		return Result{}, errors.Trace(err)
	}
	cloud, err := o.config.NewCloud(cred, subscriptionID)
	if err != nil {
		return Result{}, errors.Trace(err)
	}

	reconciler := &reconcile.Reconciler{
		ResourceGroups: cloud.ResourceGroups,
		Plans:          cloud.Plans,
		Sites:          cloud.Sites,
	}
	site, err := reconciler.Reconcile(ctx, cfg)
	if err != nil {
		return Result{}, errors.Trace(err)
	}

	stagingDir, err := createStagingDir(cfg)
	if err != nil {
		return Result{}, errors.Trace(err)
	}
	defer removeStagingDir(stagingDir)

	strategist := &deploy.Strategist{Apps: cloud.Apps, Files: cloud.Files}
	if err := strategist.Deploy(ctx, site, cfg, stagingDir); err != nil {
		return Result{}, errors.Trace(err)
	}

	result := Result{Site: site}
	if site.HostName != "" {
		result.URL = fmt.Sprintf("https://%s", site.HostName)
	}
	logger.Infof("Successfully deployed %s", site.DisplayName())
	if result.URL != "" {
		logger.Infof("URL: %s", result.URL)
	}
	return result, nil
}

func validateTarget(cfg webapp.Config) error {
	if cfg.AppName == "" {
		return coreerrors.Configurationf("no web app name is configured")
	}
	if cfg.ResourceGroup == "" {
		return coreerrors.Configurationf("no resource group is configured for web app %q", cfg.AppName)
	}
	return nil
}

func (o *Orchestrator) selectSubscription(ctx context.Context, cred *auth.Credential, cfg webapp.Config) (string, error) {
	lister, err := o.config.NewLister(cred)
	if err != nil {
		return "", errors.Trace(err)
	}
	resolver := &subscription.Resolver{
		Lister:   lister,
		Prompter: o.config.Prompter,
	}
	id, err := resolver.Resolve(ctx, subscription.Hints{
		Explicit: cfg.SubscriptionID,
		Default:  cred.DefaultSubscription,
		Filter:   cred.SubscriptionFilter,
	})
	return id, errors.Trace(err)
}

// createStagingDir returns a fresh directory private to this run.
func createStagingDir(cfg webapp.Config) (string, error) {
	base := cfg.BuildDirectory
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, stagingParent, fmt.Sprintf("%s-%s", cfg.AppName, uuid.NewString()))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", coreerrors.Packaging(err, "creating staging directory")
	}
	return dir, nil
}

func removeStagingDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		logger.Warningf("cannot remove staging directory %s: %v", dir, err)
	}
}

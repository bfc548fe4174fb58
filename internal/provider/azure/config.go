// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azure

import (
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/juju/clock"
	"github.com/juju/errors"

	coreerrors "github.com/juju/webappdeploy/core/errors"
	"github.com/juju/webappdeploy/version"
)

const (
	// resourceNameLengthMax is the maximum length of resource
	// names in Azure.
	resourceNameLengthMax = 80

	defaultPollDelay         = 5 * time.Second
	defaultDeploymentTimeout = 10 * time.Minute
	defaultFTPTimeout        = 30 * time.Second
)

// Config holds what is needed to talk to Azure Resource Manager and to
// the deployment endpoints of web apps.
type Config struct {
	// SubscriptionID is the subscription every resource is managed in.
	// It is not needed to list subscriptions.
	SubscriptionID string

	Credential azcore.TokenCredential
	Cloud      cloud.Configuration

	// Transport, if set, replaces the HTTP client used for every
	// request.
	Transport policy.Transporter
	// Retry, if set, replaces the default retry policy.
	Retry *policy.RetryOptions

	// Clock is used to pace deployment status polling.
	Clock clock.Clock
	// PollDelay is the interval between deployment status checks.
	PollDelay time.Duration
	// DeploymentTimeout bounds the wait for an asynchronous deployment.
	DeploymentTimeout time.Duration

	// DialFTP opens the file transfer session used for external
	// resources. It defaults to an explicit TLS FTP connection.
	DialFTP FTPDialer
}

// Validate checks the configuration and fills in defaults.
func (cfg *Config) Validate() error {
	if cfg.Credential == nil {
		return errors.NotValidf("nil Credential")
	}
	if _, ok := cfg.Cloud.Services[cloud.ResourceManager]; !ok {
		return errors.NotValidf("cloud configuration without a resource manager endpoint")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.PollDelay <= 0 {
		cfg.PollDelay = defaultPollDelay
	}
	if cfg.DeploymentTimeout <= 0 {
		cfg.DeploymentTimeout = defaultDeploymentTimeout
	}
	if cfg.DialFTP == nil {
		cfg.DialFTP = DialFTPS
	}
	return nil
}

func (cfg Config) validateSubscription() error {
	if cfg.SubscriptionID == "" {
		return coreerrors.Configurationf("no subscription is selected, set subscriptionId or sign in to an account with access to a subscription")
	}
	return nil
}

// clientOptions returns the options shared by the resource manager
// clients.
func (cfg Config) clientOptions() *arm.ClientOptions {
	opts := &arm.ClientOptions{
		ClientOptions: cfg.coreOptions(),
	}
	return opts
}

func (cfg Config) coreOptions() policy.ClientOptions {
	opts := policy.ClientOptions{Cloud: cfg.Cloud}
	opts.Telemetry.ApplicationID = version.UserAgent()
	if cfg.Transport != nil {
		opts.Transport = cfg.Transport
	}
	if cfg.Retry != nil {
		opts.Retry = *cfg.Retry
	}
	return opts
}

// managementScope is the token scope for resource manager and the
// deployment endpoints.
func (cfg Config) managementScope() string {
	audience := cfg.Cloud.Services[cloud.ResourceManager].Audience
	return strings.TrimSuffix(audience, "/") + "/.default"
}

// canonicalLocation returns the canonicalized location string. This involves
// stripping whitespace, and lowercasing. The ARM APIs do not support embedded
// whitespace; we allow the user to provide either form and canonicalize it.
func canonicalLocation(s string) string {
	s = strings.Replace(s, " ", "", -1)
	return strings.ToLower(s)
}

func validateResourceName(kind, name string) error {
	if len(name) > resourceNameLengthMax {
		return coreerrors.Configurationf(
			"%s name %q is too long, choose a name of no more than %d characters",
			kind, name, resourceNameLengthMax,
		)
	}
	return nil
}

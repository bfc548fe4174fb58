// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package auth obtains an Azure credential from the first available of
// an ordered list of credential sources.
package auth

import (
	"context"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/mattn/go-isatty"

	coreerrors "github.com/juju/webappdeploy/core/errors"
	"github.com/juju/webappdeploy/core/webapp"
)

var logger = loggo.GetLogger("webappdeploy.auth")

// Method names a credential source.
type Method string

const (
	// Auto tries every source in order.
	Auto             Method = "auto"
	ServicePrincipal Method = "service-principal"
	ManagedIdentity  Method = "managed-identity"
	AzureCLI         Method = "azure-cli"
	VSCode           Method = "vscode"
	OAuth2           Method = "oauth2"
	DeviceCode       Method = "device-code"
)

// Credential is an authenticated token source scoped to one cloud.
type Credential struct {
	Method Method
	Token  azcore.TokenCredential

	Environment Environment
	TenantID    string

	// DefaultSubscription is the subscription the source marks as
	// the default, if any.
	DefaultSubscription string
	// SubscriptionFilter lists the subscriptions the source restricts
	// the account to, if any.
	SubscriptionFilter []string

	// Identity is the masked client or user name, for display.
	Identity string
}

// Request is what a source is asked to produce a credential for.
type Request struct {
	Config webapp.AuthConfig
	// Environment is set when a cloud environment is explicitly
	// configured.
	Environment *Environment
	// Explicit is true when the source was selected by name.
	Explicit bool

	Getenv  func(string) string
	HomeDir string
	Stderr  io.Writer
	// Interactive is true when a user can answer prompts.
	Interactive bool
	// BrowserAvailable is true when a web browser can be opened.
	BrowserAvailable bool
}

// TargetEnvironment returns the configured environment, or the public
// cloud.
func (r Request) TargetEnvironment() Environment {
	if r.Environment != nil {
		return *r.Environment
	}
	return AzurePublic
}

// Source is one way of obtaining a credential.
type Source struct {
	Method Method
	// Available reports whether the source is configured. An
	// unavailable source is skipped.
	Available func(Request) bool
	// Retrieve builds the credential. Any failure is fatal.
	Retrieve func(context.Context, Request) (*Credential, error)
}

// DefaultSources returns the credential sources in priority order.
func DefaultSources() []Source {
	return []Source{
		servicePrincipalSource(),
		managedIdentitySource(),
		azureCLISource(),
		vsCodeSource(),
		oauth2Source(),
		deviceCodeSource(),
	}
}

// Chain resolves a credential from an ordered list of sources.
type Chain struct {
	Sources []Source

	Getenv           func(string) string
	HomeDir          string
	Stderr           io.Writer
	Interactive      bool
	BrowserAvailable bool

	// Validate checks that a retrieved credential works. It defaults to
	// requesting a management token.
	Validate func(context.Context, *Credential) error
}

// NewChain returns a chain over the default sources, using the process
// environment to decide which interactive sources can be offered.
func NewChain(stderr io.Writer) *Chain {
	home, err := os.UserHomeDir()
	if err != nil {
		logger.Debugf("cannot determine home directory: %v", err)
	}
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	return &Chain{
		Sources:          DefaultSources(),
		Getenv:           os.Getenv,
		HomeDir:          home,
		Stderr:           stderr,
		Interactive:      interactive,
		BrowserAvailable: interactive && browserAvailable(os.Getenv),
	}
}

func browserAvailable(getenv func(string) string) bool {
	switch runtime.GOOS {
	case "windows", "darwin":
		return true
	}
	return getenv("DISPLAY") != "" || getenv("WAYLAND_DISPLAY") != ""
}

// Authenticate returns the credential of the first available source. A
// source that is available but fails is a LoginFailure; later sources
// are not tried.
func (c *Chain) Authenticate(ctx context.Context, cfg webapp.AuthConfig) (*Credential, error) {
	req := Request{
		Config:           cfg,
		Getenv:           c.Getenv,
		HomeDir:          c.HomeDir,
		Stderr:           c.Stderr,
		Interactive:      c.Interactive,
		BrowserAvailable: c.BrowserAvailable,
	}
	if req.Getenv == nil {
		req.Getenv = os.Getenv
	}
	if req.Stderr == nil {
		req.Stderr = io.Discard
	}
	if cfg.Environment != "" {
		env, err := ParseEnvironment(cfg.Environment)
		if err != nil {
			return nil, coreerrors.Configurationf("%v", err)
		}
		req.Environment = &env
	}

	sources := c.Sources
	method := Method(strings.ToLower(strings.TrimSpace(cfg.Type)))
	if method != "" && method != Auto {
		source, ok := c.source(method)
		if !ok {
			return nil, coreerrors.Configurationf("auth type %q not supported", cfg.Type)
		}
		sources = []Source{source}
		req.Explicit = true
	}

	for _, source := range sources {
		if !source.Available(req) {
			if req.Explicit {
				return nil, coreerrors.LoginFailuref("auth type %q requested but its credentials are not available", source.Method)
			}
			logger.Debugf("skipping unavailable credential source %q", source.Method)
			continue
		}
		cred, err := source.Retrieve(ctx, req)
		if err != nil {
			return nil, loginFailure(err, source.Method)
		}
		cred.Method = source.Method
		if err := c.validate(ctx, cred); err != nil {
			return nil, loginFailure(err, source.Method)
		}
		logger.Infof("Auth type: %s", cred.Method)
		if cred.Identity != "" {
			logger.Infof("Identity: %s", cred.Identity)
		}
		if !cred.Environment.IsPublic() {
			logger.Infof("Cloud environment: %s", cred.Environment.Name)
		}
		return cred, nil
	}
	return nil, coreerrors.LoginFailuref(
		"no credentials found: sign in with the Azure CLI (az login) or configure a service principal",
	)
}

func (c *Chain) source(method Method) (Source, bool) {
	for _, source := range c.Sources {
		if source.Method == method {
			return source, true
		}
	}
	return Source{}, false
}

func (c *Chain) validate(ctx context.Context, cred *Credential) error {
	if c.Validate != nil {
		return c.Validate(ctx, cred)
	}
	_, err := cred.Token.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{cred.Environment.ManagementScope()},
	})
	return errors.Annotate(err, "requesting management token")
}

func loginFailure(err error, method Method) error {
	if errors.Is(err, coreerrors.LoginFailure) {
		return err
	}
	return errors.WithType(errors.Annotatef(err, "%s", method), coreerrors.LoginFailure)
}

// Mask hides all but the first few characters of an identity.
func Mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}

func clientOptions(env Environment) azcore.ClientOptions {
	return azcore.ClientOptions{Cloud: env.Cloud}
}

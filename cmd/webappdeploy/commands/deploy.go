// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/juju/webappdeploy/config"
	"github.com/juju/webappdeploy/core/webapp"
	"github.com/juju/webappdeploy/internal/auth"
	"github.com/juju/webappdeploy/internal/orchestrator"
	"github.com/juju/webappdeploy/internal/subscription"
)

var deployDoc = `
Creates or updates the web app described by the deployment
configuration and deploys its artifacts.

The configuration is read from webapp.yaml in the current directory
unless another file is given with --config. Flags override the values
in the file.

Credentials are taken from the first available source: a service
principal, a managed identity, the Azure CLI, VS Code, or an
interactive sign in. Use --auth-type to use a single source.

When the account has access to several subscriptions and none is
configured, the subscription is chosen interactively. Use --no-prompt
to fail instead.

Examples:

    webappdeploy deploy
    webappdeploy deploy --config staging.yaml --stop-app
    webappdeploy deploy --subscription 00000000-0000-0000-0000-000000000000 --auth-type azure-cli
`

// Runner runs one deployment.
type Runner interface {
	Run(ctx context.Context, cfg webapp.Config) (orchestrator.Result, error)
}

// NewDeployCommand returns a command that deploys a web app.
func NewDeployCommand() cmd.Command {
	return &deployCommand{
		loadConfig:      config.Load,
		newOrchestrator: newAzureOrchestrator,
	}
}

type deployCommand struct {
	cmd.CommandBase

	loadConfig      func(path string) (webapp.Config, error)
	newOrchestrator func(ctx *cmd.Context, prompt bool) (Runner, error)

	configFile     string
	subscriptionID string
	authType       string
	environment    string
	stopApp        bool
	noPrompt       bool
}

// Info implements cmd.Command.
func (c *deployCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "deploy",
		Purpose: "Deploys a web app to Azure App Service.",
		Doc:     deployDoc,
	}
}

// SetFlags implements cmd.Command.
func (c *deployCommand) SetFlags(f *gnuflag.FlagSet) {
	c.CommandBase.SetFlags(f)
	f.StringVar(&c.configFile, "f", config.DefaultFile, "Deployment configuration file")
	f.StringVar(&c.configFile, "config", config.DefaultFile, "")
	f.StringVar(&c.subscriptionID, "subscription", "", "Subscription to deploy to")
	f.StringVar(&c.authType, "auth-type", "", "Credential source to use (auto, service-principal, managed-identity, azure-cli, vscode, oauth2, device-code)")
	f.StringVar(&c.environment, "environment", "", "Azure cloud environment (azure, azure_china, azure_us_government)")
	f.BoolVar(&c.stopApp, "stop-app", false, "Stop the web app while artifacts are deployed")
	f.BoolVar(&c.noPrompt, "no-prompt", false, "Never ask for input")
}

// Init implements cmd.Command.
func (c *deployCommand) Init(args []string) error {
	if c.configFile == "" {
		return errors.New("--config cannot be empty")
	}
	return cmd.CheckEmpty(args)
}

// Run implements cmd.Command.
func (c *deployCommand) Run(ctx *cmd.Context) error {
	cfg, err := c.loadConfig(ctx.AbsPath(c.configFile))
	if err != nil {
		return errors.Trace(err)
	}
	c.applyOverrides(&cfg)

	runner, err := c.newOrchestrator(ctx, !c.noPrompt)
	if err != nil {
		return errors.Trace(err)
	}

	// Ctrl-C cancels the remote operations in flight.
	interrupted := make(chan os.Signal, 1)
	defer close(interrupted)
	ctx.InterruptNotify(interrupted)
	defer ctx.StopInterruptNotify(interrupted)

	stdCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		for range interrupted {
			ctx.Infof("Interrupted, cancelling the deployment")
			cancel()
		}
	}()

	result, err := runner.Run(stdCtx, cfg)
	if err != nil {
		return errors.Trace(err)
	}
	if result.Skipped {
		ctx.Infof("Deployment of %s skipped", cfg.AppName)
		return nil
	}
	if result.URL != "" {
		fmt.Fprintln(ctx.Stdout, result.URL)
	}
	return nil
}

func (c *deployCommand) applyOverrides(cfg *webapp.Config) {
	if c.subscriptionID != "" {
		cfg.SubscriptionID = c.subscriptionID
	}
	if c.authType != "" {
		cfg.Auth.Type = c.authType
	}
	if c.environment != "" {
		cfg.Auth.Environment = c.environment
	}
	if c.stopApp {
		cfg.StopAppDuringDeployment = true
	}
}

// newAzureOrchestrator wires the Azure provider into an orchestrator.
func newAzureOrchestrator(ctx *cmd.Context, prompt bool) (Runner, error) {
	chain := auth.NewChain(ctx.Stderr)
	if !prompt {
		chain.Interactive = false
		chain.BrowserAvailable = false
	}
	var prompter subscription.Prompter
	if chain.Interactive {
		prompter = subscription.SurveyPrompter{}
	}
	o, err := orchestrator.New(orchestrator.Config{
		Authenticator: chain,
		Prompter:      prompter,
		NewLister:     orchestrator.NewAzureLister,
		NewCloud:      orchestrator.NewAzureCloud,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return o, nil
}

// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package commands

import (
	"fmt"
	"os"

	"github.com/juju/cmd/v3"

	webappcmd "github.com/juju/webappdeploy/cmd"
)

var webappdeployDoc = `
webappdeploy creates or updates an Azure web app from a deployment
description and deploys the build artifacts it lists.

The web app, its App Service plan and resource group are created when
they do not exist. An existing web app is updated in place.
`

// Main registers subcommands for the webappdeploy executable, and hands
// over control to the cmd package.
func Main(args []string) {
	ctx, err := cmd.DefaultContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	os.Exit(cmd.Main(NewWebAppDeployCommand(), ctx, args[1:]))
}

// NewWebAppDeployCommand returns the top level command.
func NewWebAppDeployCommand() cmd.Command {
	super := webappcmd.NewSuperCommand(cmd.SuperCommandParams{
		Name: "webappdeploy",
		Doc:  webappdeployDoc,
	})
	super.Register(NewDeployCommand())
	return super
}

// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package commands

import (
	"github.com/juju/cmd/v3"

	"github.com/juju/webappdeploy/core/webapp"
)

func NewDeployCommandForTest(
	loadConfig func(string) (webapp.Config, error),
	newRunner func(ctx *cmd.Context, prompt bool) (Runner, error),
) cmd.Command {
	return &deployCommand{
		loadConfig:      loadConfig,
		newOrchestrator: newRunner,
	}
}

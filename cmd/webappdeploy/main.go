// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"os"

	"github.com/juju/webappdeploy/cmd/webappdeploy/commands"
)

func main() {
	commands.Main(os.Args)
}

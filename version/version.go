// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package version holds the version of the webappdeploy tool.
package version

import (
	"runtime"

	"github.com/juju/version/v2"
)

// The presence and format of this constant is very important.
// Release tooling rewrites it when a new version is tagged.
const number = "1.0.0"

// Current gives the current version of the tool.
var Current = version.MustParse(number)

// UserAgent is the product token sent with management API requests.
func UserAgent() string {
	return "webappdeploy/" + Current.String()
}

// CurrentBinary returns the version of the running binary, including
// the host operating system and architecture.
func CurrentBinary() version.Binary {
	return version.Binary{
		Number:  Current,
		Release: runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
}

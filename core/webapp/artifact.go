// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package webapp

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/ryanuber/go-glob"
)

// DeployType is the kind of artifact pushed through the deployment API.
type DeployType string

const (
	DeployJar     DeployType = "jar"
	DeployWar     DeployType = "war"
	DeployEar     DeployType = "ear"
	DeployZip     DeployType = "zip"
	DeployLib     DeployType = "lib"
	DeployStatic  DeployType = "static"
	DeployStartup DeployType = "startup"
	DeployScript  DeployType = "script"
)

var deployTypes = []DeployType{
	DeployJar, DeployWar, DeployEar, DeployZip,
	DeployLib, DeployStatic, DeployStartup, DeployScript,
}

// ParseDeployType returns the DeployType named by s.
func ParseDeployType(s string) (DeployType, error) {
	t := DeployType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range deployTypes {
		if t == known {
			return t, nil
		}
	}
	return "", errors.NotValidf("deploy type %q", s)
}

// DeployTypeForFile infers a deploy type from a file extension. Files
// without a recognised archive extension are deployed as static content.
func DeployTypeForFile(name string) DeployType {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "jar":
		return DeployJar
	case "war":
		return DeployWar
	case "ear":
		return DeployEar
	case "zip":
		return DeployZip
	}
	return DeployStatic
}

// IsWebArchive reports whether the type is a web archive, which can be
// deployed directly to a context path.
func (t DeployType) IsWebArchive() bool {
	return t == DeployWar
}

// Artifact is a single file to deploy.
type Artifact struct {
	// File is the local path of the artifact.
	File string
	// Type is the deploy type declared for the artifact.
	Type DeployType
	// Path is the target path relative to the application root. An
	// empty path means the root.
	Path string
}

// ResourceTypeExternal marks a resource that is pushed over the
// secondary file transfer channel rather than the deployment API.
const ResourceTypeExternal = "external"

// Resource is a directory of files to deploy, as written in the
// deployment configuration.
type Resource struct {
	Directory  string
	TargetPath string
	Includes   []string
	Excludes   []string
	// Type is a DeployType, or ResourceTypeExternal.
	Type string
}

// IsExternal reports whether the resource is pushed over the secondary
// file transfer channel.
func (r Resource) IsExternal() bool {
	return strings.EqualFold(r.Type, ResourceTypeExternal)
}

// Matches reports whether a path relative to the resource directory is
// selected by the include and exclude patterns. A resource without
// includes selects every file. Patterns use "*" as a wildcard that
// also spans directories; a leading "**/" matches at any depth,
// including the root.
func (r Resource) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	included := len(r.Includes) == 0
	for _, pattern := range r.Includes {
		if matchPattern(pattern, rel) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pattern := range r.Excludes {
		if matchPattern(pattern, rel) {
			return false
		}
	}
	return true
}

func matchPattern(pattern, rel string) bool {
	pattern = filepath.ToSlash(strings.TrimSpace(pattern))
	if glob.Glob(pattern, rel) {
		return true
	}
	trimmed := strings.TrimPrefix(pattern, "**/")
	return trimmed != pattern && glob.Glob(trimmed, rel)
}

// Files walks the resource directory and returns the selected files as
// slash separated paths relative to it, in lexical order.
func (r Resource) Files() ([]string, error) {
	var files []string
	err := filepath.Walk(r.Directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(r.Directory, path)
		if err != nil {
			return err
		}
		if r.Matches(rel) {
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Annotatef(err, "listing resource directory %q", r.Directory)
	}
	return files, nil
}

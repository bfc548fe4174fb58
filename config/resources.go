// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package config

import (
	"path"
	"path/filepath"

	coreerrors "github.com/juju/webappdeploy/core/errors"
	"github.com/juju/webappdeploy/core/webapp"
)

// expandResources returns the artifacts selected by the resource
// directories, and the resources themselves. External resources are
// not expanded; they are pushed as whole directories.
func expandResources(baseDir string, in []resourceConfig) ([]webapp.Artifact, []webapp.Resource, error) {
	var (
		artifacts []webapp.Artifact
		resources []webapp.Resource
	)
	for i, rc := range in {
		if rc.Directory == "" {
			return nil, nil, coreerrors.Configurationf("resource %d without a directory", i+1)
		}
		res := webapp.Resource{
			Directory:  resolvePath(baseDir, rc.Directory),
			TargetPath: rc.TargetPath,
			Includes:   rc.Includes,
			Excludes:   rc.Excludes,
			Type:       rc.Type,
		}
		resources = append(resources, res)
		if res.IsExternal() {
			continue
		}

		var deployType webapp.DeployType
		if rc.Type != "" {
			t, err := webapp.ParseDeployType(rc.Type)
			if err != nil {
				return nil, nil, coreerrors.Configurationf("resource %q: %v", rc.Directory, err)
			}
			deployType = t
		}
		files, err := res.Files()
		if err != nil {
			return nil, nil, coreerrors.Configurationf("resource %q: %v", rc.Directory, err)
		}
		if len(files) == 0 {
			logger.Warningf("resource directory %s matches no files", res.Directory)
		}
		for _, rel := range files {
			artifacts = append(artifacts, webapp.Artifact{
				File: filepath.Join(res.Directory, filepath.FromSlash(rel)),
				Type: deployType,
				Path: path.Join("/", rc.TargetPath, path.Dir(rel)),
			})
		}
	}
	return artifacts, resources, nil
}

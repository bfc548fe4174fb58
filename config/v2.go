// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package config

import (
	"strings"

	"gopkg.in/yaml.v3"

	coreerrors "github.com/juju/webappdeploy/core/errors"
	"github.com/juju/webappdeploy/core/webapp"
)

type v2Config struct {
	commonConfig `yaml:",inline"`
	Runtime      *v2Runtime   `yaml:"runtime"`
	Deployment   v2Deployment `yaml:"deployment"`
}

type v2Runtime struct {
	OS           string `yaml:"os"`
	JavaVersion  string `yaml:"javaVersion"`
	WebContainer string `yaml:"webContainer"`
	Image        string `yaml:"image"`
	RegistryURL  string `yaml:"registryUrl"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
}

type v2Deployment struct {
	Resources []resourceConfig `yaml:"resources"`
}

func translateV2(node *yaml.Node, baseDir string) (webapp.Config, error) {
	var doc v2Config
	if err := decodeStrict(node, &doc); err != nil {
		return webapp.Config{}, err
	}
	cfg, err := doc.normalise(baseDir)
	if err != nil {
		return webapp.Config{}, err
	}
	if doc.Runtime != nil {
		runtime, docker, err := doc.Runtime.normalise()
		if err != nil {
			return webapp.Config{}, err
		}
		cfg.Runtime = runtime
		cfg.Docker = docker
	}
	cfg.Artifacts, cfg.Resources, err = expandResources(baseDir, doc.Deployment.Resources)
	if err != nil {
		return webapp.Config{}, err
	}
	return cfg, nil
}

func (r v2Runtime) normalise() (*webapp.Runtime, *webapp.DockerConfig, error) {
	if strings.TrimSpace(r.OS) == "" {
		return nil, nil, coreerrors.Configurationf("runtime.os is required")
	}
	os, err := webapp.ParseOperatingSystem(r.OS)
	if err != nil {
		return nil, nil, coreerrors.Configurationf("runtime.os: %v", err)
	}
	if os == webapp.Docker {
		if r.Image == "" {
			return nil, nil, coreerrors.Configurationf("runtime.image is required for a docker runtime")
		}
		docker := &webapp.DockerConfig{
			Image:       r.Image,
			RegistryURL: r.RegistryURL,
			Username:    r.Username,
			Password:    r.Password,
		}
		return &webapp.Runtime{OS: os, Image: r.Image}, docker, nil
	}
	if r.Image != "" {
		return nil, nil, coreerrors.Configurationf("runtime.image is only valid for a docker runtime")
	}
	if strings.TrimSpace(r.JavaVersion) == "" {
		return nil, nil, coreerrors.Configurationf("runtime.javaVersion is required for a %s runtime", os)
	}
	container := webapp.JavaSE
	if r.WebContainer != "" {
		container, err = webapp.ParseWebContainer(r.WebContainer)
		if err != nil {
			return nil, nil, coreerrors.Configurationf("runtime.webContainer: %v", err)
		}
	}
	return &webapp.Runtime{
		OS:           os,
		JavaVersion:  webapp.ParseJavaVersion(r.JavaVersion),
		WebContainer: container,
	}, nil, nil
}

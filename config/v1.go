// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package config

import (
	"strings"

	"gopkg.in/yaml.v3"

	coreerrors "github.com/juju/webappdeploy/core/errors"
	"github.com/juju/webappdeploy/core/webapp"
)

// defaultWindowsContainer is the legacy default javaWebContainer.
const defaultWindowsContainer = "tomcat 8.5"

// v1Config is the legacy document. The runtime is given by exactly one
// of javaVersion (Windows), linuxRuntime or containerSettings.
type v1Config struct {
	commonConfig      `yaml:",inline"`
	JavaVersion       string               `yaml:"javaVersion"`
	JavaWebContainer  string               `yaml:"javaWebContainer"`
	LinuxRuntime      string               `yaml:"linuxRuntime"`
	ContainerSettings *v1ContainerSettings `yaml:"containerSettings"`
	WarFile           string               `yaml:"warFile"`
	JarFile           string               `yaml:"jarFile"`
	Path              string               `yaml:"path"`
	Resources         []resourceConfig     `yaml:"resources"`
}

type v1ContainerSettings struct {
	ImageName   string `yaml:"imageName"`
	RegistryURL string `yaml:"registryUrl"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
}

func translateV1(node *yaml.Node, baseDir string) (webapp.Config, error) {
	var doc v1Config
	if err := decodeStrict(node, &doc); err != nil {
		return webapp.Config{}, err
	}
	cfg, err := doc.normalise(baseDir)
	if err != nil {
		return webapp.Config{}, err
	}
	if cfg.Runtime, cfg.Docker, err = doc.runtime(); err != nil {
		return webapp.Config{}, err
	}

	if doc.WarFile != "" && doc.JarFile != "" {
		return webapp.Config{}, coreerrors.Configurationf("warFile and jarFile cannot both be set")
	}
	switch {
	case doc.WarFile != "":
		cfg.Artifacts = append(cfg.Artifacts, webapp.Artifact{
			File: resolvePath(baseDir, doc.WarFile),
			Type: webapp.DeployWar,
			Path: doc.Path,
		})
	case doc.JarFile != "":
		cfg.Artifacts = append(cfg.Artifacts, webapp.Artifact{
			File: resolvePath(baseDir, doc.JarFile),
			Type: webapp.DeployJar,
			Path: doc.Path,
		})
	}
	artifacts, resources, err := expandResources(baseDir, doc.Resources)
	if err != nil {
		return webapp.Config{}, err
	}
	cfg.Artifacts = append(cfg.Artifacts, artifacts...)
	cfg.Resources = resources
	return cfg, nil
}

func (c v1Config) runtime() (*webapp.Runtime, *webapp.DockerConfig, error) {
	var set []string
	if c.JavaVersion != "" {
		set = append(set, "javaVersion")
	}
	if c.LinuxRuntime != "" {
		set = append(set, "linuxRuntime")
	}
	if c.ContainerSettings != nil && c.ContainerSettings.ImageName != "" {
		set = append(set, "containerSettings")
	}
	if len(set) > 1 {
		return nil, nil, coreerrors.Configurationf("conflicting runtime settings: %s", strings.Join(set, ", "))
	}

	switch {
	case c.JavaVersion != "":
		name := c.JavaWebContainer
		if name == "" {
			name = defaultWindowsContainer
		}
		container, err := webapp.ParseWebContainer(name)
		if err != nil {
			return nil, nil, coreerrors.Configurationf("javaWebContainer: %v", err)
		}
		return &webapp.Runtime{
			OS:           webapp.Windows,
			JavaVersion:  webapp.ParseJavaVersion(c.JavaVersion),
			WebContainer: container,
		}, nil, nil
	case c.LinuxRuntime != "":
		runtime, err := parseLinuxRuntime(c.LinuxRuntime)
		if err != nil {
			return nil, nil, err
		}
		return runtime, nil, nil
	case len(set) == 1:
		s := c.ContainerSettings
		return &webapp.Runtime{OS: webapp.Docker, Image: s.ImageName}, &webapp.DockerConfig{
			Image:       s.ImageName,
			RegistryURL: s.RegistryURL,
			Username:    s.Username,
			Password:    s.Password,
		}, nil
	}
	return nil, nil, nil
}

// parseLinuxRuntime parses the legacy Linux runtime names, such as
// "tomcat 9.0-java11", "tomcat 8.5-jre8" and "jre8".
func parseLinuxRuntime(s string) (*webapp.Runtime, error) {
	value := strings.TrimSpace(s)
	i := strings.LastIndex(value, "-")
	if i < 0 {
		if !strings.HasPrefix(strings.ToLower(value), "j") {
			return nil, coreerrors.Configurationf("linuxRuntime %q not valid", s)
		}
		return &webapp.Runtime{
			OS:           webapp.Linux,
			JavaVersion:  webapp.ParseJavaVersion(value),
			WebContainer: webapp.JavaSE,
		}, nil
	}
	container, err := webapp.ParseWebContainer(value[:i])
	if err != nil {
		return nil, coreerrors.Configurationf("linuxRuntime: %v", err)
	}
	version := webapp.ParseJavaVersion(value[i+1:])
	if version == "" {
		return nil, coreerrors.Configurationf("linuxRuntime %q without a java version", s)
	}
	return &webapp.Runtime{
		OS:           webapp.Linux,
		JavaVersion:  version,
		WebContainer: container,
	}, nil
}

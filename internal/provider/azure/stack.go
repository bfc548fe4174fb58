// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azure

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/samber/lo"

	"github.com/juju/webappdeploy/core/webapp"
)

const (
	dockerStackPrefix = "DOCKER|"

	dockerRegistryURLSetting      = "DOCKER_REGISTRY_SERVER_URL"
	dockerRegistryUsernameSetting = "DOCKER_REGISTRY_SERVER_USERNAME"
	dockerRegistryPasswordSetting = "DOCKER_REGISTRY_SERVER_PASSWORD"

	defaultDockerRegistry = "https://index.docker.io"
)

// linuxFxVersion returns the Linux runtime stack of a runtime, such as
// "TOMCAT|9.0-java11" or "JAVA|17-java17".
func linuxFxVersion(rt webapp.Runtime) string {
	if rt.IsDocker() {
		return dockerStackPrefix + rt.Image
	}
	container := rt.WebContainer
	if container.IsZero() {
		container = webapp.JavaSE
	}
	version := container.Version
	if container.IsJavaSE() {
		version = string(rt.JavaVersion)
	}
	return fmt.Sprintf("%s|%s-%s", container.Name, version, rt.JavaVersion.LinuxSuffix())
}

// parseLinuxFxVersion is the inverse of linuxFxVersion.
func parseLinuxFxVersion(fx string) webapp.Runtime {
	if strings.HasPrefix(strings.ToUpper(fx), dockerStackPrefix) {
		return webapp.Runtime{OS: webapp.Docker, Image: fx[len(dockerStackPrefix):]}
	}
	rt := webapp.Runtime{OS: webapp.Linux}
	name, rest, _ := strings.Cut(fx, "|")
	version, suffix := rest, ""
	if i := strings.LastIndex(rest, "-"); i >= 0 {
		version, suffix = rest[:i], rest[i+1:]
	}
	rt.JavaVersion = webapp.ParseJavaVersion(suffix)
	switch name = strings.ToUpper(name); name {
	case webapp.ContainerJavaSE:
		rt.WebContainer = webapp.JavaSE
		if rt.JavaVersion == "" {
			rt.JavaVersion = webapp.ParseJavaVersion(version)
		}
	default:
		rt.WebContainer = webapp.WebContainer{Name: name, Version: version}
	}
	return rt
}

// runtimeSiteConfig returns the site configuration selecting the
// runtime.
func runtimeSiteConfig(rt webapp.Runtime) *armappservice.SiteConfig {
	if rt.OS != webapp.Windows {
		return &armappservice.SiteConfig{
			LinuxFxVersion: to.Ptr(linuxFxVersion(rt)),
		}
	}
	container := rt.WebContainer
	if container.IsZero() {
		container = webapp.JavaSE
	}
	return &armappservice.SiteConfig{
		JavaVersion:          to.Ptr(rt.JavaVersion.WindowsVersion()),
		JavaContainer:        to.Ptr(container.Name),
		JavaContainerVersion: to.Ptr(container.Version),
	}
}

// runtimeFromSiteConfig reads the runtime of an existing site.
func runtimeFromSiteConfig(kind string, cfg *armappservice.SiteConfig) webapp.Runtime {
	os := operatingSystemFromKind(kind)
	if cfg == nil {
		return webapp.Runtime{OS: os}
	}
	if fx := deref(cfg.LinuxFxVersion); fx != "" {
		return parseLinuxFxVersion(fx)
	}
	rt := webapp.Runtime{
		OS:          os,
		JavaVersion: webapp.ParseJavaVersion(deref(cfg.JavaVersion)),
	}
	switch name := strings.ToUpper(deref(cfg.JavaContainer)); name {
	case "":
	case webapp.ContainerJavaSE:
		rt.WebContainer = webapp.JavaSE
	default:
		rt.WebContainer = webapp.WebContainer{Name: name, Version: deref(cfg.JavaContainerVersion)}
	}
	return rt
}

// cloneRuntimeConfig copies the runtime part of a site configuration,
// leaving out everything bound to the source site.
func cloneRuntimeConfig(cfg *armappservice.SiteConfig) *armappservice.SiteConfig {
	if cfg == nil {
		return &armappservice.SiteConfig{}
	}
	return &armappservice.SiteConfig{
		LinuxFxVersion:       cfg.LinuxFxVersion,
		WindowsFxVersion:     cfg.WindowsFxVersion,
		JavaVersion:          cfg.JavaVersion,
		JavaContainer:        cfg.JavaContainer,
		JavaContainerVersion: cfg.JavaContainerVersion,
		AlwaysOn:             cfg.AlwaysOn,
		AppCommandLine:       cfg.AppCommandLine,
	}
}

func operatingSystemFromKind(kind string) webapp.OperatingSystem {
	kind = strings.ToLower(kind)
	switch {
	case strings.Contains(kind, "container") && strings.Contains(kind, "linux"):
		return webapp.Docker
	case strings.Contains(kind, "linux"):
		return webapp.Linux
	}
	return webapp.Windows
}

func siteKind(os webapp.OperatingSystem) string {
	switch os {
	case webapp.Docker:
		return "app,linux,container"
	case webapp.Linux:
		return "app,linux"
	}
	return "app"
}

// dockerAppSettings returns the registry credentials of a private
// image as app settings.
func dockerAppSettings(docker *webapp.DockerConfig) map[string]string {
	if docker == nil || !docker.IsPrivate() {
		return nil
	}
	registry := docker.RegistryURL
	if registry == "" {
		registry = defaultDockerRegistry
	}
	return map[string]string{
		dockerRegistryURLSetting:      registry,
		dockerRegistryUsernameSetting: docker.Username,
		dockerRegistryPasswordSetting: docker.Password,
	}
}

func mergeSettings(layers ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}
	return merged
}

func nameValuePairs(settings map[string]string) []*armappservice.NameValuePair {
	if len(settings) == 0 {
		return nil
	}
	pairs := make([]*armappservice.NameValuePair, 0, len(settings))
	for _, name := range sortedKeys(settings) {
		pairs = append(pairs, &armappservice.NameValuePair{
			Name:  to.Ptr(name),
			Value: to.Ptr(settings[name]),
		})
	}
	return pairs
}

func settingsFromPairs(pairs []*armappservice.NameValuePair) map[string]string {
	settings := make(map[string]string)
	for _, pair := range pairs {
		if pair != nil && pair.Name != nil {
			settings[*pair.Name] = deref(pair.Value)
		}
	}
	return settings
}

func settingsFromDictionary(props map[string]*string) map[string]string {
	settings := make(map[string]string, len(props))
	for k, v := range props {
		settings[k] = deref(v)
	}
	return settings
}

func dictionaryFromSettings(settings map[string]string) map[string]*string {
	props := make(map[string]*string, len(settings))
	for k, v := range settings {
		props[k] = to.Ptr(v)
	}
	return props
}

func sortedKeys(settings map[string]string) []string {
	keys := lo.Keys(settings)
	sort.Strings(keys)
	return keys
}

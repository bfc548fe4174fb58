// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package webapp

import (
	"fmt"
	"strings"

	"github.com/juju/errors"
)

// OperatingSystem is the operating system a web app and its hosting
// plan run on.
type OperatingSystem string

const (
	Windows OperatingSystem = "windows"
	Linux   OperatingSystem = "linux"
	// Docker is a Linux plan running a custom container image.
	Docker OperatingSystem = "docker"
)

// ParseOperatingSystem returns the OperatingSystem named by s.
func ParseOperatingSystem(s string) (OperatingSystem, error) {
	switch os := OperatingSystem(strings.ToLower(strings.TrimSpace(s))); os {
	case Windows, Linux, Docker:
		return os, nil
	}
	return "", errors.NotValidf("operating system %q", s)
}

// PlanOperatingSystem returns the operating system a hosting plan must
// have to host an app with this operating system.
func (os OperatingSystem) PlanOperatingSystem() OperatingSystem {
	if os == Docker {
		return Linux
	}
	return os
}

// JavaVersion is a normalised Java major version, e.g. "8", "11", "17".
type JavaVersion string

// ParseJavaVersion accepts the forms used by the Azure portal and the
// legacy configuration ("Java 11", "java11", "11", "1.8", "jre8").
func ParseJavaVersion(s string) JavaVersion {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "java")
	v = strings.TrimPrefix(v, "jre")
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "1.")
	if i := strings.IndexAny(v, "._"); i > 0 {
		v = v[:i]
	}
	return JavaVersion(v)
}

// LinuxSuffix is the java suffix used in Linux runtime stacks.
func (v JavaVersion) LinuxSuffix() string {
	if v == "8" {
		return "jre8"
	}
	return "java" + string(v)
}

// WindowsVersion is the value App Service expects in a Windows site
// config's javaVersion.
func (v JavaVersion) WindowsVersion() string {
	if v == "8" {
		return "1.8"
	}
	return string(v)
}

// WebContainer is the web container (or Java SE for a single process
// jar) hosting the application.
type WebContainer struct {
	// Name is the container family, one of the Container* constants.
	Name string
	// Version is the container version, e.g. "9.0". Empty for Java SE.
	Version string
}

const (
	ContainerJavaSE   = "JAVA"
	ContainerTomcat   = "TOMCAT"
	ContainerJBossEAP = "JBOSSEAP"
)

var (
	// JavaSE runs a single executable jar.
	JavaSE = WebContainer{Name: ContainerJavaSE, Version: "SE"}
	// JBossEAP7 only accepts enterprise archives.
	JBossEAP7 = WebContainer{Name: ContainerJBossEAP, Version: "7"}
)

// ParseWebContainer parses "Tomcat 9.0", "tomcat 8.5", "Java SE",
// "JBossEAP 7" and similar.
func ParseWebContainer(s string) (WebContainer, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return WebContainer{}, nil
	}
	fields := strings.Fields(strings.ReplaceAll(s, "|", " "))
	name := strings.ToUpper(fields[0])
	version := ""
	if len(fields) > 1 {
		version = fields[1]
	}
	switch name {
	case "JAVA":
		return JavaSE, nil
	case "TOMCAT", "JETTY":
		if version == "" {
			return WebContainer{}, errors.NotValidf("web container %q without a version", s)
		}
		return WebContainer{Name: name, Version: version}, nil
	case "JBOSSEAP", "JBOSS":
		if version == "" {
			version = "7"
		}
		return WebContainer{Name: ContainerJBossEAP, Version: strings.Split(version, ".")[0]}, nil
	}
	return WebContainer{}, errors.NotValidf("web container %q", s)
}

// IsZero reports whether no container is set.
func (w WebContainer) IsZero() bool {
	return w.Name == ""
}

// IsJavaSE reports whether the container runs a single executable jar.
func (w WebContainer) IsJavaSE() bool {
	return w.Name == ContainerJavaSE
}

// EnterpriseArchiveOnly reports whether the container only accepts EAR
// deployments.
func (w WebContainer) EnterpriseArchiveOnly() bool {
	return w == JBossEAP7
}

func (w WebContainer) String() string {
	if w.IsJavaSE() {
		return "Java SE"
	}
	if w.Version == "" {
		return w.Name
	}
	return w.Name + " " + w.Version
}

// Runtime describes what a web app runs.
type Runtime struct {
	OS           OperatingSystem
	JavaVersion  JavaVersion
	WebContainer WebContainer
	// Image is only set for Docker runtimes.
	Image string
}

// IsDocker reports whether the runtime is a custom container image.
func (r Runtime) IsDocker() bool {
	return r.OS == Docker
}

func (r Runtime) String() string {
	if r.IsDocker() {
		return fmt.Sprintf("docker (%s)", r.Image)
	}
	return fmt.Sprintf("%s, java %s, %s", r.OS, r.JavaVersion, r.WebContainer)
}

// DockerConfig holds the image and registry credentials for a Docker
// runtime.
type DockerConfig struct {
	Image       string
	RegistryURL string
	Username    string
	Password    string
}

// IsPrivate reports whether registry credentials are supplied.
func (d DockerConfig) IsPrivate() bool {
	return d.Password != ""
}

// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package config reads a web app deployment description and normalises
// it into a webapp.Config.
//
// The file carries a schemaVersion. Each version has its own document
// shape and translator; all of them produce the same webapp.Config.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gopkg.in/yaml.v3"

	coreerrors "github.com/juju/webappdeploy/core/errors"
	"github.com/juju/webappdeploy/core/webapp"
)

var logger = loggo.GetLogger("webappdeploy.config")

// DefaultFile is the deployment description read when no file is
// named.
const DefaultFile = "webapp.yaml"

const (
	SchemaV1 = "v1"
	SchemaV2 = "v2"
)

// translator decodes one schema version and normalises it. Relative
// paths in the document are resolved against baseDir.
type translator func(node *yaml.Node, baseDir string) (webapp.Config, error)

var translators = map[string]translator{
	SchemaV1: translateV1,
	SchemaV2: translateV2,
}

// Load reads the deployment description at path.
func Load(path string) (webapp.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return webapp.Config{}, coreerrors.Configurationf("deployment configuration %q not found", path)
		}
		return webapp.Config{}, errors.Annotate(err, "reading deployment configuration")
	}
	baseDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return webapp.Config{}, errors.Trace(err)
	}
	cfg, err := Parse(data, baseDir)
	return cfg, errors.Annotatef(err, "%s", path)
}

// header is the part of the document read before the schema version
// is known.
type header struct {
	SchemaVersion string `yaml:"schemaVersion"`
}

// Parse normalises a deployment description. Relative paths are
// resolved against baseDir.
func Parse(data []byte, baseDir string) (webapp.Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return webapp.Config{}, coreerrors.Configurationf("deployment configuration is empty")
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return webapp.Config{}, coreerrors.Configurationf("cannot parse deployment configuration: %v", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return webapp.Config{}, coreerrors.Configurationf("deployment configuration must be a mapping")
	}
	root := doc.Content[0]

	var h header
	if err := root.Decode(&h); err != nil {
		return webapp.Config{}, coreerrors.Configurationf("cannot parse deployment configuration: %v", err)
	}
	version := strings.ToLower(strings.TrimSpace(h.SchemaVersion))
	if version == "" {
		version = SchemaV2
	}
	translate, ok := translators[version]
	if !ok {
		return webapp.Config{}, coreerrors.Configurationf(
			"schema version %q not supported, expected one of %s",
			h.SchemaVersion, strings.Join(knownVersions(), ", "),
		)
	}
	logger.Debugf("reading deployment configuration with schema %s", version)
	return translate(root, baseDir)
}

func knownVersions() []string {
	versions := make([]string, 0, len(translators))
	for v := range translators {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

// decodeStrict decodes node into out, rejecting keys out does not
// declare.
func decodeStrict(node *yaml.Node, out interface{}) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return errors.Trace(err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return coreerrors.Configurationf("cannot parse deployment configuration: %v", err)
	}
	return nil
}

// commonConfig holds the keys shared by every schema version.
type commonConfig struct {
	SchemaVersion               string            `yaml:"schemaVersion"`
	SubscriptionID              string            `yaml:"subscriptionId"`
	ResourceGroup               string            `yaml:"resourceGroup"`
	AppName                     string            `yaml:"appName"`
	Region                      string            `yaml:"region"`
	PricingTier                 string            `yaml:"pricingTier"`
	AppServicePlanName          string            `yaml:"appServicePlanName"`
	AppServicePlanResourceGroup string            `yaml:"appServicePlanResourceGroup"`
	DeploymentSlot              *slotConfig       `yaml:"deploymentSlot"`
	AppSettings                 map[string]string `yaml:"appSettings"`
	StopAppDuringDeployment     bool              `yaml:"stopAppDuringDeployment"`
	BuildDirectory              string            `yaml:"buildDirectory"`
	FinalName                   string            `yaml:"finalName"`
	Skip                        bool              `yaml:"skip"`
	Auth                        authConfig        `yaml:"auth"`
}

type slotConfig struct {
	Name                string `yaml:"name"`
	ConfigurationSource string `yaml:"configurationSource"`
}

type authConfig struct {
	Type                string `yaml:"type"`
	Environment         string `yaml:"environment"`
	Tenant              string `yaml:"tenant"`
	Client              string `yaml:"client"`
	Key                 string `yaml:"key"`
	Certificate         string `yaml:"certificate"`
	CertificatePassword string `yaml:"certificatePassword"`
}

// resourceConfig is a directory of files to deploy.
type resourceConfig struct {
	Directory  string   `yaml:"directory"`
	TargetPath string   `yaml:"targetPath"`
	Includes   []string `yaml:"includes"`
	Excludes   []string `yaml:"excludes"`
	Type       string   `yaml:"type"`
}

// normalise translates the shared keys.
func (c commonConfig) normalise(baseDir string) (webapp.Config, error) {
	cfg := webapp.Config{
		SubscriptionID:          strings.TrimSpace(c.SubscriptionID),
		ResourceGroup:           strings.TrimSpace(c.ResourceGroup),
		AppName:                 strings.TrimSpace(c.AppName),
		Region:                  strings.TrimSpace(c.Region),
		PlanName:                strings.TrimSpace(c.AppServicePlanName),
		PlanResourceGroup:       strings.TrimSpace(c.AppServicePlanResourceGroup),
		AppSettings:             c.AppSettings,
		StopAppDuringDeployment: c.StopAppDuringDeployment,
		FinalName:               c.FinalName,
		Skip:                    c.Skip,
		Auth: webapp.AuthConfig{
			Type:                c.Auth.Type,
			Environment:         c.Auth.Environment,
			TenantID:            c.Auth.Tenant,
			ClientID:            c.Auth.Client,
			ClientSecret:        c.Auth.Key,
			CertificatePath:     resolvePath(baseDir, c.Auth.Certificate),
			CertificatePassword: c.Auth.CertificatePassword,
		},
	}
	if c.BuildDirectory != "" {
		cfg.BuildDirectory = resolvePath(baseDir, c.BuildDirectory)
	}
	if c.PricingTier != "" {
		tier, err := webapp.ParsePricingTier(c.PricingTier)
		if err != nil {
			return webapp.Config{}, coreerrors.Configurationf("%v", err)
		}
		cfg.PricingTier = tier
	}
	if c.DeploymentSlot != nil {
		if strings.TrimSpace(c.DeploymentSlot.Name) == "" {
			return webapp.Config{}, coreerrors.Configurationf("deploymentSlot without a name")
		}
		cfg.Slot = &webapp.SlotConfig{
			Name:                strings.TrimSpace(c.DeploymentSlot.Name),
			ConfigurationSource: strings.TrimSpace(c.DeploymentSlot.ConfigurationSource),
		}
	}
	return cfg, nil
}

// resolvePath makes a relative path in the document relative to the
// document's directory.
func resolvePath(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, filepath.FromSlash(p))
}

// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package orchestrator_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	coreerrors "github.com/juju/webappdeploy/core/errors"
	"github.com/juju/webappdeploy/core/webapp"
	"github.com/juju/webappdeploy/internal/auth"
	"github.com/juju/webappdeploy/internal/orchestrator"
	"github.com/juju/webappdeploy/internal/subscription"
)

var existingSite = webapp.Site{
	Name:          "shop",
	ResourceGroup: "rg",
	PlanID:        "plan-id",
	HostName:      "shop.azurewebsites.net",
	SCMHostName:   "shop.scm.azurewebsites.net",
	Runtime: webapp.Runtime{
		OS:           webapp.Linux,
		JavaVersion:  "17",
		WebContainer: webapp.WebContainer{Name: webapp.ContainerTomcat, Version: "10.0"},
	},
}

type fakeAuthenticator struct {
	*testing.Stub
	cred *auth.Credential
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, cfg webapp.AuthConfig) (*auth.Credential, error) {
	f.AddCall("Authenticate", cfg.Type)
	return f.cred, f.NextErr()
}

type fakeLister struct {
	*testing.Stub
	subs []webapp.Subscription
}

func (f *fakeLister) ListSubscriptions(context.Context) ([]webapp.Subscription, error) {
	f.AddCall("ListSubscriptions")
	return f.subs, f.NextErr()
}

// fakeCloud knows one existing web app.
type fakeCloud struct {
	*testing.Stub
	// zipFile is the package passed to the last ZipDeploy call.
	zipFile string
}

func (f *fakeCloud) GetResourceGroup(_ context.Context, name string) (webapp.ResourceGroup, error) {
	f.AddCall("GetResourceGroup", name)
	return webapp.ResourceGroup{Name: name}, f.NextErr()
}

func (f *fakeCloud) CreateResourceGroup(_ context.Context, name, region string) (webapp.ResourceGroup, error) {
	f.AddCall("CreateResourceGroup", name, region)
	return webapp.ResourceGroup{Name: name, Region: region}, f.NextErr()
}

func (f *fakeCloud) GetPlan(_ context.Context, resourceGroup, name string) (webapp.Plan, error) {
	f.AddCall("GetPlan", resourceGroup, name)
	return webapp.Plan{}, errors.NotFoundf("plan %q", name)
}

func (f *fakeCloud) GetPlanByID(_ context.Context, id string) (webapp.Plan, error) {
	f.AddCall("GetPlanByID", id)
	return webapp.Plan{ID: id, Name: "asp-shop", OS: webapp.Linux}, f.NextErr()
}

func (f *fakeCloud) CreatePlan(_ context.Context, spec webapp.PlanSpec) (webapp.Plan, error) {
	f.AddCall("CreatePlan", spec)
	return webapp.Plan{ID: "new-plan", Name: spec.Name, OS: spec.OS}, f.NextErr()
}

func (f *fakeCloud) UpdatePricingTier(_ context.Context, plan webapp.Plan, tier webapp.PricingTier) (webapp.Plan, error) {
	f.AddCall("UpdatePricingTier", plan.Name, tier)
	plan.PricingTier = tier
	return plan, f.NextErr()
}

func (f *fakeCloud) GetSite(_ context.Context, resourceGroup, name string) (webapp.Site, error) {
	f.AddCall("GetSite", resourceGroup, name)
	return existingSite, f.NextErr()
}

func (f *fakeCloud) CreateSite(_ context.Context, spec webapp.SiteSpec) (webapp.Site, error) {
	f.AddCall("CreateSite", spec.Name)
	return existingSite, f.NextErr()
}

func (f *fakeCloud) UpdateSite(_ context.Context, site webapp.Site, spec webapp.SiteSpec) (webapp.Site, error) {
	f.AddCall("UpdateSite", site.Name, spec.PlanID)
	return site, f.NextErr()
}

func (f *fakeCloud) GetSlot(_ context.Context, parent webapp.Site, name string) (webapp.Site, error) {
	f.AddCall("GetSlot", parent.Name, name)
	return webapp.Site{}, errors.NotFoundf("slot %q", name)
}

func (f *fakeCloud) CreateSlot(_ context.Context, parent webapp.Site, spec webapp.SlotSpec) (webapp.Site, error) {
	f.AddCall("CreateSlot", parent.Name, spec.Name)
	slot := parent
	slot.Slot = spec.Name
	return slot, f.NextErr()
}

func (f *fakeCloud) Start(_ context.Context, site webapp.Site) error {
	f.AddCall("Start", site.DisplayName())
	return f.NextErr()
}

func (f *fakeCloud) Stop(_ context.Context, site webapp.Site) error {
	f.AddCall("Stop", site.DisplayName())
	return f.NextErr()
}

func (f *fakeCloud) Deploy(_ context.Context, site webapp.Site, artifact webapp.Artifact) error {
	f.AddCall("Deploy", site.DisplayName(), filepath.Base(artifact.File))
	return f.NextErr()
}

func (f *fakeCloud) ZipDeploy(_ context.Context, site webapp.Site, zipFile string) error {
	f.AddCall("ZipDeploy", site.DisplayName())
	f.zipFile = zipFile
	return f.NextErr()
}

type OrchestratorSuite struct {
	testing.IsolationSuite

	stub     *testing.Stub
	cloud    *fakeCloud
	cred     *auth.Credential
	buildDir string
	config   orchestrator.Config
	appDir   string
}

var _ = gc.Suite(&OrchestratorSuite{})

func (s *OrchestratorSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.stub = &testing.Stub{}
	s.cloud = &fakeCloud{Stub: s.stub}
	s.cred = &auth.Credential{
		Method:              auth.AzureCLI,
		Environment:         auth.AzurePublic,
		DefaultSubscription: "sub-1",
	}
	s.buildDir = c.MkDir()
	s.appDir = c.MkDir()
	s.config = orchestrator.Config{
		Authenticator: &fakeAuthenticator{Stub: s.stub, cred: s.cred},
		NewLister: func(cred *auth.Credential) (subscription.Lister, error) {
			s.stub.AddCall("NewLister", cred.Method)
			return &fakeLister{Stub: s.stub, subs: []webapp.Subscription{
				{ID: "sub-1", DisplayName: "Production"},
				{ID: "sub-2", DisplayName: "Staging"},
			}}, nil
		},
		NewCloud: func(cred *auth.Credential, subscriptionID string) (*orchestrator.Cloud, error) {
			s.stub.AddCall("NewCloud", subscriptionID)
			return &orchestrator.Cloud{
				ResourceGroups: s.cloud,
				Plans:          s.cloud,
				Sites:          s.cloud,
				Apps:           s.cloud,
			}, nil
		},
	}
}

func (s *OrchestratorSuite) writeArtifact(c *gc.C, name string) string {
	path := filepath.Join(s.appDir, name)
	c.Assert(os.WriteFile(path, []byte(name), 0644), jc.ErrorIsNil)
	return path
}

func (s *OrchestratorSuite) newConfig(c *gc.C) webapp.Config {
	return webapp.Config{
		AppName:        "shop",
		ResourceGroup:  "rg",
		BuildDirectory: s.buildDir,
		Artifacts:      []webapp.Artifact{{File: s.writeArtifact(c, "shop.war")}},
	}
}

func (s *OrchestratorSuite) run(c *gc.C, cfg webapp.Config) (orchestrator.Result, error) {
	o, err := orchestrator.New(s.config)
	c.Assert(err, jc.ErrorIsNil)
	return o.Run(context.Background(), cfg)
}

func (s *OrchestratorSuite) assertStagingRemoved(c *gc.C) {
	entries, err := os.ReadDir(filepath.Join(s.buildDir, "azure-webapp"))
	if os.IsNotExist(err) {
		return
	}
	c.Assert(err, jc.ErrorIsNil)
	c.Check(entries, gc.HasLen, 0)
}

func (s *OrchestratorSuite) TestNewValidatesConfig(c *gc.C) {
	s.config.NewCloud = nil
	_, err := orchestrator.New(s.config)
	c.Check(err, gc.ErrorMatches, "nil NewCloud not valid")
}

func (s *OrchestratorSuite) TestRun(c *gc.C) {
	result, err := s.run(c, s.newConfig(c))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(result.URL, gc.Equals, "https://shop.azurewebsites.net")
	c.Check(result.Site.Name, gc.Equals, "shop")
	c.Check(result.Skipped, jc.IsFalse)

	s.stub.CheckCalls(c, []testing.StubCall{
		{FuncName: "Authenticate", Args: []interface{}{""}},
		{FuncName: "NewLister", Args: []interface{}{auth.AzureCLI}},
		{FuncName: "ListSubscriptions"},
		{FuncName: "NewCloud", Args: []interface{}{"sub-1"}},
		{FuncName: "GetSite", Args: []interface{}{"rg", "shop"}},
		{FuncName: "GetPlanByID", Args: []interface{}{"plan-id"}},
		{FuncName: "UpdateSite", Args: []interface{}{"shop", "plan-id"}},
		{FuncName: "Deploy", Args: []interface{}{"shop", "shop.war"}},
		{FuncName: "Start", Args: []interface{}{"shop"}},
	})
	s.assertStagingRemoved(c)
}

func (s *OrchestratorSuite) TestRunSkipped(c *gc.C) {
	cfg := s.newConfig(c)
	cfg.Skip = true
	result, err := s.run(c, cfg)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(result.Skipped, jc.IsTrue)
	s.stub.CheckNoCalls(c)
}

func (s *OrchestratorSuite) TestRunWithoutAppName(c *gc.C) {
	cfg := s.newConfig(c)
	cfg.AppName = ""
	_, err := s.run(c, cfg)
	c.Check(errors.Is(err, coreerrors.ConfigurationError), jc.IsTrue)
	s.stub.CheckNoCalls(c)
}

func (s *OrchestratorSuite) TestRunConfiguredSubscription(c *gc.C) {
	cfg := s.newConfig(c)
	cfg.SubscriptionID = "sub-2"
	_, err := s.run(c, cfg)
	c.Assert(err, jc.ErrorIsNil)
	s.stub.CheckCall(c, 3, "NewCloud", "sub-2")
}

func (s *OrchestratorSuite) TestRunUnknownSubscription(c *gc.C) {
	cfg := s.newConfig(c)
	cfg.SubscriptionID = "sub-9"
	_, err := s.run(c, cfg)
	c.Check(errors.Is(err, coreerrors.SubscriptionNotFound), jc.IsTrue)
	s.stub.CheckCallNames(c, "Authenticate", "NewLister", "ListSubscriptions")
}

func (s *OrchestratorSuite) TestRunLoginFailure(c *gc.C) {
	s.stub.SetErrors(coreerrors.LoginFailuref("no credentials found"))
	_, err := s.run(c, s.newConfig(c))
	c.Check(errors.Is(err, coreerrors.LoginFailure), jc.IsTrue)
	s.stub.CheckCallNames(c, "Authenticate")
}

func (s *OrchestratorSuite) TestRunDeployFailureRemovesStaging(c *gc.C) {
	cfg := s.newConfig(c)
	cfg.Artifacts = append(cfg.Artifacts, webapp.Artifact{File: s.writeArtifact(c, "app.jar")})
	s.stub.SetErrors(
		nil, // Authenticate
		nil, // ListSubscriptions
		nil, // GetSite
		nil, // GetPlanByID
		nil, // UpdateSite
		errors.New("boom"),
	)
	_, err := s.run(c, cfg)
	c.Check(err, gc.ErrorMatches, "deploying zip package: boom")
	c.Check(strings.HasPrefix(s.cloud.zipFile, filepath.Join(s.buildDir, "azure-webapp", "shop-")), jc.IsTrue)
	s.stub.CheckCallNames(c,
		"Authenticate", "NewLister", "ListSubscriptions", "NewCloud",
		"GetSite", "GetPlanByID", "UpdateSite", "ZipDeploy", "Start",
	)
	s.assertStagingRemoved(c)
}

func (s *OrchestratorSuite) TestRunStopsApp(c *gc.C) {
	cfg := s.newConfig(c)
	cfg.StopAppDuringDeployment = true
	_, err := s.run(c, cfg)
	c.Assert(err, jc.ErrorIsNil)
	s.stub.CheckCallNames(c,
		"Authenticate", "NewLister", "ListSubscriptions", "NewCloud",
		"GetSite", "GetPlanByID", "UpdateSite", "Stop", "Deploy", "Start",
	)
}

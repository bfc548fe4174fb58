// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package reconcile_test

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	coreerrors "github.com/juju/webappdeploy/core/errors"
	"github.com/juju/webappdeploy/core/webapp"
	"github.com/juju/webappdeploy/internal/reconcile"
)

type ReconcilerSuite struct {
	testing.IsolationSuite
	cloud      *fakeCloud
	reconciler *reconcile.Reconciler
	cfg        webapp.Config
}

var _ = gc.Suite(&ReconcilerSuite{})

var (
	tierB1 = webapp.PricingTier{Tier: "Basic", Size: "B1"}
	tierS1 = webapp.PricingTier{Tier: "Standard", Size: "S1"}

	javaSE17 = &webapp.Runtime{
		OS:           webapp.Linux,
		JavaVersion:  "17",
		WebContainer: webapp.JavaSE,
	}
)

func (s *ReconcilerSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.cloud = newFakeCloud()
	s.reconciler = &reconcile.Reconciler{
		ResourceGroups: s.cloud,
		Plans:          s.cloud,
		Sites:          s.cloud,
	}
	s.cfg = webapp.Config{
		ResourceGroup: "rg1",
		AppName:       "demo-app",
		Region:        "eastus",
		PricingTier:   tierB1,
		Runtime:       javaSE17,
		AppSettings:   map[string]string{"JAVA_OPTS": "-Xmx512m"},
	}
}

func (s *ReconcilerSuite) reconcile(c *gc.C) webapp.Site {
	site, err := s.reconciler.Reconcile(context.Background(), s.cfg)
	c.Assert(err, jc.ErrorIsNil)
	return site
}

func (s *ReconcilerSuite) TestCreateEverything(c *gc.C) {
	site := s.reconcile(c)
	c.Assert(site.Name, gc.Equals, "demo-app")
	c.Assert(site.HostName, gc.Equals, "demo-app.azurewebsites.net")
	c.Assert(site.PlanID, gc.Equals, planID("rg1", "asp-demo-app"))

	s.cloud.CheckCallNames(c,
		"GetSite",
		"GetResourceGroup", "CreateResourceGroup",
		"GetPlan",
		"GetResourceGroup",
		"CreatePlan",
		"CreateSite",
	)
	s.cloud.CheckCall(c, 2, "CreateResourceGroup", "rg1", "eastus")
	s.cloud.CheckCall(c, 5, "CreatePlan", webapp.PlanSpec{
		Name:          "asp-demo-app",
		ResourceGroup: "rg1",
		Region:        "eastus",
		PricingTier:   tierB1,
		OS:            webapp.Linux,
	})
	s.cloud.CheckCall(c, 6, "CreateSite", webapp.SiteSpec{
		Name:          "demo-app",
		ResourceGroup: "rg1",
		Region:        "eastus",
		PlanID:        planID("rg1", "asp-demo-app"),
		Runtime:       javaSE17,
		AppSettings:   map[string]string{"JAVA_OPTS": "-Xmx512m"},
	})
}

func (s *ReconcilerSuite) TestSecondRunTakesUpdatePath(c *gc.C) {
	first := s.reconcile(c)
	s.cloud.ResetCalls()

	second := s.reconcile(c)
	c.Assert(second.ID, gc.Equals, first.ID)
	c.Assert(second.PlanID, gc.Equals, first.PlanID)
	s.cloud.CheckCallNames(c, "GetSite", "GetPlanByID", "UpdateSite")
	c.Assert(s.cloud.plans, gc.HasLen, 1)
	c.Assert(s.cloud.sites, gc.HasLen, 1)
	c.Assert(s.cloud.groups, gc.HasLen, 1)
}

func (s *ReconcilerSuite) TestUpdateChangesTierOnReusedPlan(c *gc.C) {
	s.reconcile(c)
	s.cloud.ResetCalls()

	s.cfg.PricingTier = tierS1
	site := s.reconcile(c)
	c.Assert(site.PlanID, gc.Equals, planID("rg1", "asp-demo-app"))
	s.cloud.CheckCallNames(c, "GetSite", "GetPlanByID", "UpdatePricingTier", "UpdateSite")
	s.cloud.CheckCall(c, 2, "UpdatePricingTier", "asp-demo-app", tierS1)
	c.Assert(s.cloud.plans, gc.HasLen, 1)
	c.Assert(s.cloud.plans[site.PlanID].PricingTier, gc.Equals, tierS1)
}

func (s *ReconcilerSuite) TestUpdateWithoutTierKeepsPlan(c *gc.C) {
	s.reconcile(c)
	s.cloud.ResetCalls()

	s.cfg.PricingTier = webapp.PricingTier{}
	s.reconcile(c)
	s.cloud.CheckCallNames(c, "GetSite", "GetPlanByID", "UpdateSite")
}

func (s *ReconcilerSuite) TestUpdateSameTierIsNoop(c *gc.C) {
	s.reconcile(c)
	s.cloud.ResetCalls()

	s.cfg.PricingTier = webapp.PricingTier{Tier: "Basic", Size: "b1"}
	s.reconcile(c)
	s.cloud.CheckCallNames(c, "GetSite", "GetPlanByID", "UpdateSite")
}

func (s *ReconcilerSuite) TestUpdateWithNamedExistingPlan(c *gc.C) {
	s.reconcile(c)
	_, err := s.cloud.CreatePlan(context.Background(), webapp.PlanSpec{
		Name: "shared-plan", ResourceGroup: "plans", Region: "eastus", PricingTier: tierB1, OS: webapp.Linux,
	})
	c.Assert(err, jc.ErrorIsNil)
	s.cloud.ResetCalls()

	s.cfg.PlanName = "shared-plan"
	s.cfg.PlanResourceGroup = "plans"
	s.cfg.PricingTier = tierS1
	site := s.reconcile(c)
	c.Assert(site.PlanID, gc.Equals, planID("plans", "shared-plan"))
	s.cloud.CheckCallNames(c, "GetSite", "GetPlan", "UpdatePricingTier", "UpdateSite")
	s.cloud.CheckCall(c, 1, "GetPlan", "plans", "shared-plan")
}

func (s *ReconcilerSuite) TestUpdateWithNamedMissingPlanCreatesIt(c *gc.C) {
	s.reconcile(c)
	s.cloud.ResetCalls()

	s.cfg.PlanName = "new-plan"
	site := s.reconcile(c)
	c.Assert(site.PlanID, gc.Equals, planID("rg1", "new-plan"))
	s.cloud.CheckCallNames(c, "GetSite", "GetPlan", "GetResourceGroup", "CreatePlan", "UpdateSite")
	c.Assert(s.cloud.plans, gc.HasLen, 2)
}

func (s *ReconcilerSuite) TestUpdateWithoutRuntimeKeepsRuntime(c *gc.C) {
	s.reconcile(c)
	s.cloud.ResetCalls()

	s.cfg.Runtime = nil
	site := s.reconcile(c)
	c.Assert(site.Runtime, jc.DeepEquals, *javaSE17)
}

func (s *ReconcilerSuite) TestUpdateMissingPlanWithoutRuntime(c *gc.C) {
	s.reconcile(c)
	s.cfg.Runtime = nil
	s.cfg.PlanName = "new-plan"
	_, err := s.reconciler.Reconcile(context.Background(), s.cfg)
	c.Assert(err, gc.ErrorMatches, `app service plan "new-plan" does not exist and no runtime is configured to create it`)
	c.Assert(errors.Is(err, coreerrors.ConfigurationError), jc.IsTrue)
}

func (s *ReconcilerSuite) TestCreateWithoutRuntime(c *gc.C) {
	s.cfg.Runtime = nil
	_, err := s.reconciler.Reconcile(context.Background(), s.cfg)
	c.Assert(err, gc.ErrorMatches, `web app "demo-app" does not exist and no runtime is configured to create it`)
	c.Assert(errors.Is(err, coreerrors.ConfigurationError), jc.IsTrue)
	s.cloud.CheckCallNames(c, "GetSite")
}

func (s *ReconcilerSuite) TestCreateInExistingPlanOfOtherOS(c *gc.C) {
	_, err := s.cloud.CreatePlan(context.Background(), webapp.PlanSpec{
		Name: "asp-demo-app", ResourceGroup: "rg1", Region: "eastus", PricingTier: tierB1, OS: webapp.Windows,
	})
	c.Assert(err, jc.ErrorIsNil)

	_, err = s.reconciler.Reconcile(context.Background(), s.cfg)
	c.Assert(err, gc.ErrorMatches, `app service plan "asp-demo-app" runs windows and cannot host a linux web app`)
	c.Assert(errors.Is(err, coreerrors.ConfigurationError), jc.IsTrue)
}

func (s *ReconcilerSuite) TestCreateDockerAppUsesLinuxPlan(c *gc.C) {
	s.cfg.Runtime = &webapp.Runtime{OS: webapp.Docker, Image: "nginx:latest"}
	s.cfg.Docker = &webapp.DockerConfig{Image: "nginx:latest"}
	s.cfg.PricingTier = webapp.PricingTier{}
	s.reconcile(c)
	s.cloud.CheckCall(c, 5, "CreatePlan", webapp.PlanSpec{
		Name:          "asp-demo-app",
		ResourceGroup: "rg1",
		Region:        "eastus",
		PricingTier:   webapp.DefaultPricingTier,
		OS:            webapp.Linux,
	})
}

func (s *ReconcilerSuite) TestCreatePlanInOtherResourceGroup(c *gc.C) {
	s.cloud.groups["rg1"] = webapp.ResourceGroup{Name: "rg1", Region: "eastus"}
	s.cfg.PlanResourceGroup = "plans"
	s.reconcile(c)
	s.cloud.CheckCallNames(c,
		"GetSite",
		"GetResourceGroup",
		"GetPlan",
		"GetResourceGroup", "CreateResourceGroup",
		"CreatePlan",
		"CreateSite",
	)
	s.cloud.CheckCall(c, 4, "CreateResourceGroup", "plans", "eastus")
}

func (s *ReconcilerSuite) TestResourceGroupErrorPropagates(c *gc.C) {
	s.cloud.SetErrors(nil, errors.New("throttled"))
	_, err := s.reconciler.Reconcile(context.Background(), s.cfg)
	c.Assert(err, gc.ErrorMatches, `getting resource group "rg1": throttled`)
	s.cloud.CheckCallNames(c, "GetSite", "GetResourceGroup")
}

func (s *ReconcilerSuite) TestGetSiteErrorPropagates(c *gc.C) {
	s.cloud.SetErrors(errors.New("forbidden"))
	_, err := s.reconciler.Reconcile(context.Background(), s.cfg)
	c.Assert(err, gc.ErrorMatches, `getting web app "demo-app": forbidden`)
	c.Assert(errors.Is(err, errors.NotFound), jc.IsFalse)
}

func (s *ReconcilerSuite) TestSlotWithoutParent(c *gc.C) {
	s.cfg.Slot = &webapp.SlotConfig{Name: "staging"}
	_, err := s.reconciler.Reconcile(context.Background(), s.cfg)
	c.Assert(err, gc.ErrorMatches, `cannot deploy to slot "staging": web app "demo-app" does not exist in resource group "rg1"`)
	c.Assert(errors.Is(err, coreerrors.ConfigurationError), jc.IsTrue)
	s.cloud.CheckCallNames(c, "GetSite")
}

func (s *ReconcilerSuite) TestCreateSlot(c *gc.C) {
	s.reconcile(c)
	s.cloud.ResetCalls()

	s.cfg.Slot = &webapp.SlotConfig{Name: "staging"}
	slot := s.reconcile(c)
	c.Assert(slot.Slot, gc.Equals, "staging")
	c.Assert(slot.DisplayName(), gc.Equals, "demo-app/staging")
	s.cloud.CheckCallNames(c, "GetSite", "GetSlot", "CreateSlot")
	s.cloud.CheckCall(c, 2, "CreateSlot", "demo-app", webapp.SlotSpec{
		Name:                "staging",
		ConfigurationSource: webapp.SlotSourceParent,
		AppSettings:         map[string]string{"JAVA_OPTS": "-Xmx512m"},
	})
}

func (s *ReconcilerSuite) TestExistingSlotIsNotUpdated(c *gc.C) {
	s.reconcile(c)
	s.cfg.Slot = &webapp.SlotConfig{Name: "staging", ConfigurationSource: "new"}
	first := s.reconcile(c)
	s.cloud.ResetCalls()

	s.cfg.Runtime = &webapp.Runtime{OS: webapp.Linux, JavaVersion: "21", WebContainer: webapp.JavaSE}
	s.cfg.PricingTier = tierS1
	second := s.reconcile(c)
	c.Assert(second, jc.DeepEquals, first)
	s.cloud.CheckCallNames(c, "GetSite", "GetSlot")
}

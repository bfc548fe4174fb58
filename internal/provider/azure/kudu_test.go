// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azure_test

import (
	"net/http"
	"os"
	"path/filepath"

	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/webappdeploy/core/webapp"
	"github.com/juju/webappdeploy/internal/provider/azure/internal/azuretesting"
)

type kuduSuite struct {
	baseSuite
	site webapp.Site
	file string
}

var _ = gc.Suite(&kuduSuite{})

func (s *kuduSuite) SetUpTest(c *gc.C) {
	s.baseSuite.SetUpTest(c)
	s.site = webapp.Site{
		Name:          "shop",
		ResourceGroup: "rg",
		HostName:      "shop.azurewebsites.net",
		SCMHostName:   "shop.scm.azurewebsites.net",
	}
	s.file = filepath.Join(c.MkDir(), "shop.war")
	c.Assert(os.WriteFile(s.file, []byte("war content"), 0644), jc.ErrorIsNil)
}

func (s *kuduSuite) TestDeployPublishesArtifact(c *gc.C) {
	s.sender.AppendResponse(azuretesting.NewResponseWithStatus(http.StatusOK))
	err := s.provider.Deploy(ctx, s.site, webapp.Artifact{File: s.file, Type: webapp.DeployWar, Path: "/shop/"})
	c.Assert(err, jc.ErrorIsNil)

	req := s.lastRequest(c)
	c.Check(req.Method, gc.Equals, http.MethodPost)
	c.Check(req.URL, gc.Equals, "https://shop.scm.azurewebsites.net/api/publish?path=shop&type=war")
	c.Check(req.Header.Get("Authorization"), gc.Equals, "Bearer fake-token")
	c.Check(string(req.Body), gc.Equals, "war content")
}

func (s *kuduSuite) TestDeployInfersType(c *gc.C) {
	s.sender.AppendResponse(azuretesting.NewResponseWithStatus(http.StatusOK))
	err := s.provider.Deploy(ctx, s.site, webapp.Artifact{File: s.file})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(s.lastRequest(c).URL, gc.Equals, "https://shop.scm.azurewebsites.net/api/publish?type=war")
}

func (s *kuduSuite) TestDeployError(c *gc.C) {
	s.sender.AppendResponse(azuretesting.NewResponseWithBodyAndStatus(
		azuretesting.NewBody(`{"error": {"code": "BadRequest", "message": "invalid package"}}`), http.StatusBadRequest, ""))
	err := s.provider.Deploy(ctx, s.site, webapp.Artifact{File: s.file, Type: webapp.DeployWar})
	c.Check(err, gc.ErrorMatches, `(?s).*400.*`)
}

func (s *kuduSuite) TestDeployWithoutEndpoint(c *gc.C) {
	s.site.SCMHostName = ""
	err := s.provider.Deploy(ctx, s.site, webapp.Artifact{File: s.file, Type: webapp.DeployWar})
	c.Check(err, gc.ErrorMatches, `shop without a deployment endpoint not valid`)
}

func (s *kuduSuite) TestZipDeployWaitsForCompletion(c *gc.C) {
	s.sender.AppendResponse(azuretesting.NewResponseWithStatus(http.StatusAccepted))
	s.sender.AppendResponse(azuretesting.NewResponseWithContent(`{"id": "d1", "status": 1, "complete": false}`))
	s.sender.AppendResponse(azuretesting.NewResponseWithContent(`{"id": "d1", "status": 4, "complete": true}`))

	err := s.provider.ZipDeploy(ctx, s.site, s.file)
	c.Assert(err, jc.ErrorIsNil)

	requests := s.sender.Requests()
	c.Assert(requests, gc.HasLen, 3)
	c.Check(requests[0].URL, gc.Equals, "https://shop.scm.azurewebsites.net/api/zipdeploy?isAsync=true")
	c.Check(requests[1].URL, gc.Equals, "https://shop.scm.azurewebsites.net/api/deployments/latest")
	c.Check(requests[2].Method, gc.Equals, http.MethodGet)
}

func (s *kuduSuite) TestZipDeployFailed(c *gc.C) {
	s.sender.AppendResponse(azuretesting.NewResponseWithStatus(http.StatusAccepted))
	s.sender.AppendResponse(azuretesting.NewResponseWithContent(`{"id": "d1", "status": 3, "status_text": "startup failed", "complete": true}`))

	err := s.provider.ZipDeploy(ctx, s.site, s.file)
	c.Check(err, gc.ErrorMatches, `deployment d1 to shop failed: startup failed`)
}

func (s *kuduSuite) TestZipDeploySynchronous(c *gc.C) {
	s.sender.AppendResponse(azuretesting.NewResponseWithStatus(http.StatusOK))
	err := s.provider.ZipDeploy(ctx, s.site, s.file)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(s.sender.Requests(), gc.HasLen, 1)
}

func (s *kuduSuite) TestZipDeployMissingFile(c *gc.C) {
	err := s.provider.ZipDeploy(ctx, s.site, filepath.Join(c.MkDir(), "missing.zip"))
	c.Check(err, gc.ErrorMatches, `opening deployment package: .*`)
	c.Check(s.sender.Requests(), gc.HasLen, 0)
}

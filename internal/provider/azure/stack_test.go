// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azure_test

import (
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/webappdeploy/core/webapp"
	"github.com/juju/webappdeploy/internal/provider/azure"
)

type stackSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&stackSuite{})

var tomcat9 = webapp.WebContainer{Name: webapp.ContainerTomcat, Version: "9.0"}

func (s *stackSuite) TestLinuxFxVersion(c *gc.C) {
	for _, test := range []struct {
		runtime webapp.Runtime
		fx      string
	}{{
		runtime: webapp.Runtime{OS: webapp.Linux, JavaVersion: "11", WebContainer: tomcat9},
		fx:      "TOMCAT|9.0-java11",
	}, {
		runtime: webapp.Runtime{OS: webapp.Linux, JavaVersion: "17", WebContainer: webapp.JavaSE},
		fx:      "JAVA|17-java17",
	}, {
		runtime: webapp.Runtime{OS: webapp.Linux, JavaVersion: "8", WebContainer: tomcat9},
		fx:      "TOMCAT|9.0-jre8",
	}, {
		runtime: webapp.Runtime{OS: webapp.Linux, JavaVersion: "11", WebContainer: webapp.JBossEAP7},
		fx:      "JBOSSEAP|7-java11",
	}, {
		runtime: webapp.Runtime{OS: webapp.Docker, Image: "nginx:latest"},
		fx:      "DOCKER|nginx:latest",
	}} {
		c.Check(azure.LinuxFxVersion(test.runtime), gc.Equals, test.fx)
		c.Check(azure.ParseLinuxFxVersion(test.fx), jc.DeepEquals, test.runtime, gc.Commentf("%s", test.fx))
	}
}

func (s *stackSuite) TestScmHostName(c *gc.C) {
	c.Check(azure.ScmHostName("shop-staging.azurewebsites.net"), gc.Equals, "shop-staging.scm.azurewebsites.net")
	c.Check(azure.ScmHostName(""), gc.Equals, "")
}

func (s *stackSuite) TestCanonicalLocation(c *gc.C) {
	c.Check(azure.CanonicalLocation("West Europe"), gc.Equals, "westeurope")
}

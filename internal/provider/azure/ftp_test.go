// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azure_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/webappdeploy/core/webapp"
	"github.com/juju/webappdeploy/internal/provider/azure"
)

const publishProfileXML = `<publishData>
  <publishProfile profileName="shop - Web Deploy" publishMethod="MSDeploy" publishUrl="shop.scm.azurewebsites.net:443" userName="$shop" userPWD="pw" />
  <publishProfile profileName="shop - FTP" publishMethod="FTP" publishUrl="ftps://waws-prod-am2-001.ftp.azurewebsites.windows.net/site/wwwroot" userName="shop\$shop" userPWD="pw" />
</publishData>`

type fakeFTPConn struct {
	*testing.Stub
	stored map[string]string
}

func (f *fakeFTPConn) Login(user, password string) error {
	f.MethodCall(f, "Login", user, password)
	return f.NextErr()
}

func (f *fakeFTPConn) MakeDir(path string) error {
	f.MethodCall(f, "MakeDir", path)
	return f.NextErr()
}

func (f *fakeFTPConn) Stor(path string, r io.Reader) error {
	f.MethodCall(f, "Stor", path)
	content, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.stored[path] = string(content)
	return f.NextErr()
}

func (f *fakeFTPConn) Quit() error {
	f.MethodCall(f, "Quit")
	return f.NextErr()
}

type ftpSuite struct {
	baseSuite

	stub     *testing.Stub
	conn     *fakeFTPConn
	transfer *azure.FTPTransfer
	dialed   []string
	site     webapp.Site
	dir      string
}

var _ = gc.Suite(&ftpSuite{})

func (s *ftpSuite) SetUpTest(c *gc.C) {
	s.baseSuite.SetUpTest(c)
	s.stub = &testing.Stub{}
	s.conn = &fakeFTPConn{Stub: s.stub, stored: make(map[string]string)}
	s.dialed = nil

	cfg := s.config()
	cfg.DialFTP = func(_ context.Context, addr, serverName string) (azure.FTPConn, error) {
		s.dialed = append(s.dialed, addr, serverName)
		return s.conn, nil
	}
	provider, err := azure.NewProvider(cfg)
	c.Assert(err, jc.ErrorIsNil)
	s.transfer = provider.FileTransfer()
	s.site = webapp.Site{Name: "shop", ResourceGroup: "rg"}

	s.dir = c.MkDir()
	for _, name := range []string{"index.html", "css/site.css", "notes.txt"} {
		path := filepath.Join(s.dir, filepath.FromSlash(name))
		c.Assert(os.MkdirAll(filepath.Dir(path), 0755), jc.ErrorIsNil)
		c.Assert(os.WriteFile(path, []byte("content of "+name), 0644), jc.ErrorIsNil)
	}
}

func (s *ftpSuite) TestUpload(c *gc.C) {
	s.appendJSON(publishProfileXML)
	err := s.transfer.Upload(ctx, s.site, []webapp.Resource{{
		Directory:  s.dir,
		TargetPath: "static",
		Includes:   []string{"**/*.html", "**/*.css"},
		Type:       webapp.ResourceTypeExternal,
	}})
	c.Assert(err, jc.ErrorIsNil)

	c.Check(s.dialed, jc.DeepEquals, []string{
		"waws-prod-am2-001.ftp.azurewebsites.windows.net:21",
		"waws-prod-am2-001.ftp.azurewebsites.windows.net",
	})
	s.stub.CheckCallNames(c, "Login", "MakeDir", "MakeDir", "MakeDir", "MakeDir", "Stor", "Stor", "Quit")
	s.stub.CheckCall(c, 0, "Login", `shop\$shop`, "pw")
	c.Check(s.conn.stored, jc.DeepEquals, map[string]string{
		"/site/wwwroot/static/css/site.css": "content of css/site.css",
		"/site/wwwroot/static/index.html":   "content of index.html",
	})
	c.Check(strings.Contains(s.lastRequest(c).URL, "/sites/shop/publishxml"), jc.IsTrue)
}

func (s *ftpSuite) TestUploadLoginFailure(c *gc.C) {
	s.appendJSON(publishProfileXML)
	s.stub.SetErrors(errors.New("530 not logged in"))
	err := s.transfer.Upload(ctx, s.site, []webapp.Resource{{Directory: s.dir}})
	c.Check(err, gc.ErrorMatches, `signing in to waws-prod-am2-001.ftp.azurewebsites.windows.net: 530 not logged in`)
	s.stub.CheckCallNames(c, "Login", "Quit")
}

func (s *ftpSuite) TestUploadWithoutFTPProfile(c *gc.C) {
	s.appendJSON(`<publishData></publishData>`)
	err := s.transfer.Upload(ctx, s.site, nil)
	c.Check(errors.Is(err, errors.NotFound), jc.IsTrue)
	c.Check(s.dialed, gc.HasLen, 0)
}

// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azure

import (
	"context"
	"crypto/tls"
	"encoding/xml"
	"io"
	"net"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/appservice/armappservice/v2"
	"github.com/jlaffaye/ftp"
	"github.com/juju/errors"

	"github.com/juju/webappdeploy/core/webapp"
)

const defaultFTPPort = "21"

// FTPConn is the part of an FTP session used to upload files.
type FTPConn interface {
	Login(user, password string) error
	MakeDir(path string) error
	Stor(path string, r io.Reader) error
	Quit() error
}

// FTPDialer opens an FTP session to addr. serverName is the host the
// TLS certificate is checked against.
type FTPDialer func(ctx context.Context, addr, serverName string) (FTPConn, error)

// DialFTPS opens an FTP session upgraded with explicit TLS.
func DialFTPS(ctx context.Context, addr, serverName string) (FTPConn, error) {
	conn, err := ftp.Dial(addr,
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(defaultFTPTimeout),
		ftp.DialWithExplicitTLS(&tls.Config{
			ServerName: serverName,
			MinVersion: tls.VersionTLS12,
		}),
	)
	if err != nil {
		return nil, errors.Annotatef(err, "connecting to %s", addr)
	}
	return conn, nil
}

// publishProfile is one entry of a web app publishing profile.
type publishProfile struct {
	Method   string `xml:"publishMethod,attr"`
	URL      string `xml:"publishUrl,attr"`
	UserName string `xml:"userName,attr"`
	Password string `xml:"userPWD,attr"`
}

type publishData struct {
	Profiles []publishProfile `xml:"publishProfile"`
}

type profileSource interface {
	ftpProfile(ctx context.Context, site webapp.Site) (publishProfile, error)
}

// ftpProfile returns the FTP entry of the site's publishing profile.
func (p *Provider) ftpProfile(ctx context.Context, site webapp.Site) (publishProfile, error) {
	opts := armappservice.CsmPublishingProfileOptions{
		Format: to.Ptr(armappservice.PublishingProfileFormatFtp),
	}
	var body io.ReadCloser
	if site.IsSlot() {
		resp, err := p.webApps.ListPublishingProfileXMLWithSecretsSlot(ctx, site.ResourceGroup, site.Name, site.Slot, opts, nil)
		if err != nil {
			return publishProfile{}, errors.Annotatef(err, "getting publishing profile of %s", site.DisplayName())
		}
		body = resp.Body
	} else {
		resp, err := p.webApps.ListPublishingProfileXMLWithSecrets(ctx, site.ResourceGroup, site.Name, opts, nil)
		if err != nil {
			return publishProfile{}, errors.Annotatef(err, "getting publishing profile of %s", site.DisplayName())
		}
		body = resp.Body
	}
	defer body.Close()
	return parsePublishProfile(body)
}

func parsePublishProfile(r io.Reader) (publishProfile, error) {
	var data publishData
	if err := xml.NewDecoder(r).Decode(&data); err != nil {
		return publishProfile{}, errors.Annotate(err, "parsing publishing profile")
	}
	for _, profile := range data.Profiles {
		if strings.EqualFold(profile.Method, "FTP") {
			return profile, nil
		}
	}
	return publishProfile{}, errors.NotFoundf("FTP publishing profile")
}

// FTPTransfer uploads resources to a web app's file system over FTPS,
// with the credentials of the site's publishing profile.
type FTPTransfer struct {
	profiles profileSource
	dial     FTPDialer
}

// Upload copies the files selected by each resource below the site
// root, at the resource's target path.
func (t *FTPTransfer) Upload(ctx context.Context, site webapp.Site, resources []webapp.Resource) error {
	profile, err := t.profiles.ftpProfile(ctx, site)
	if err != nil {
		return errors.Trace(err)
	}
	target, err := url.Parse(profile.URL)
	if err != nil {
		return errors.Annotatef(err, "parsing FTP address %q", profile.URL)
	}
	port := target.Port()
	if port == "" {
		port = defaultFTPPort
	}
	conn, err := t.dial(ctx, net.JoinHostPort(target.Hostname(), port), target.Hostname())
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		if err := conn.Quit(); err != nil {
			logger.Debugf("closing FTP session: %v", err)
		}
	}()
	if err := conn.Login(profile.UserName, profile.Password); err != nil {
		return errors.Annotatef(err, "signing in to %s", target.Hostname())
	}

	session := &ftpSession{conn: conn, dirs: make(map[string]bool)}
	root := target.Path
	if root == "" {
		root = "/"
	}
	for _, resource := range resources {
		if err := session.uploadResource(path.Join(root, resource.TargetPath), resource); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

type ftpSession struct {
	conn FTPConn
	// dirs holds the remote directories known to exist.
	dirs map[string]bool
}

func (s *ftpSession) uploadResource(base string, resource webapp.Resource) error {
	files, err := resource.Files()
	if err != nil {
		return errors.Trace(err)
	}
	logger.Infof("Uploading %d files from %s to %s", len(files), resource.Directory, base)
	for _, rel := range files {
		remote := path.Join(base, rel)
		if err := s.makeDirs(path.Dir(remote)); err != nil {
			return errors.Trace(err)
		}
		if err := s.upload(filepath.Join(resource.Directory, filepath.FromSlash(rel)), remote); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (s *ftpSession) upload(local, remote string) error {
	f, err := os.Open(local)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()
	logger.Debugf("uploading %s to %s", local, remote)
	return errors.Annotatef(s.conn.Stor(remote, f), "uploading %s", remote)
}

// makeDirs creates the remote directory and its parents. Failures are
// ignored because the directories usually exist already; a missing
// directory surfaces when the file is stored.
func (s *ftpSession) makeDirs(dir string) error {
	if dir == "/" || dir == "." || s.dirs[dir] {
		return nil
	}
	if err := s.makeDirs(path.Dir(dir)); err != nil {
		return errors.Trace(err)
	}
	if err := s.conn.MakeDir(dir); err != nil {
		logger.Tracef("creating %s: %v", dir, err)
	}
	s.dirs[dir] = true
	return nil
}

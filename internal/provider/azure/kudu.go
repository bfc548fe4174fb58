// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azure

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/retry"

	"github.com/juju/webappdeploy/core/webapp"
	"github.com/juju/webappdeploy/version"
)

const (
	// Deployment status codes reported by the deployment endpoint.
	deploymentStatusFailed  = 3
	deploymentStatusSuccess = 4

	errDeploymentInProgress = errors.ConstError("deployment in progress")
)

// kuduClient talks to the deployment (Kudu) endpoint of a web app,
// authenticating with a resource manager token.
type kuduClient struct {
	pipeline  runtime.Pipeline
	clock     clock.Clock
	pollDelay time.Duration
	timeout   time.Duration
}

func newKuduClient(cfg Config) *kuduClient {
	opts := cfg.coreOptions()
	pipeline := runtime.NewPipeline("webappdeploy", version.Current.String(), runtime.PipelineOptions{
		PerRetry: []policy.Policy{
			runtime.NewBearerTokenPolicy(cfg.Credential, []string{cfg.managementScope()}, nil),
		},
	}, &opts)
	return &kuduClient{
		pipeline:  pipeline,
		clock:     cfg.Clock,
		pollDelay: cfg.PollDelay,
		timeout:   cfg.DeploymentTimeout,
	}
}

// deploymentStatus is the body of /api/deployments/latest.
type deploymentStatus struct {
	ID         string `json:"id"`
	Status     int    `json:"status"`
	StatusText string `json:"status_text"`
	Message    string `json:"message"`
	Complete   bool   `json:"complete"`
}

func scmURL(site webapp.Site, path string, query url.Values) (string, error) {
	if site.SCMHostName == "" {
		return "", errors.NotValidf("%s without a deployment endpoint", site.DisplayName())
	}
	u := url.URL{
		Scheme:   "https",
		Host:     site.SCMHostName,
		Path:     path,
		RawQuery: query.Encode(),
	}
	return u.String(), nil
}

// Deploy pushes a single artifact through the one deploy API.
func (p *Provider) Deploy(ctx context.Context, site webapp.Site, artifact webapp.Artifact) error {
	return errors.Trace(p.kudu.publish(ctx, site, artifact))
}

// ZipDeploy replaces the application content with the archive and
// waits for the deployment to finish.
func (p *Provider) ZipDeploy(ctx context.Context, site webapp.Site, zipFile string) error {
	return errors.Trace(p.kudu.zipDeploy(ctx, site, zipFile))
}

func (k *kuduClient) publish(ctx context.Context, site webapp.Site, artifact webapp.Artifact) error {
	deployType := artifact.Type
	if deployType == "" {
		deployType = webapp.DeployTypeForFile(artifact.File)
	}
	query := url.Values{"type": {string(deployType)}}
	if target := strings.Trim(artifact.Path, "/"); target != "" {
		query.Set("path", target)
	}
	endpoint, err := scmURL(site, "/api/publish", query)
	if err != nil {
		return errors.Trace(err)
	}
	logger.Debugf("publishing %s to %s", filepath.Base(artifact.File), endpoint)
	resp, err := k.post(ctx, endpoint, artifact.File)
	if err != nil {
		return errors.Trace(err)
	}
	defer resp.Body.Close()
	if !runtime.HasStatusCode(resp, http.StatusOK, http.StatusAccepted) {
		return runtime.NewResponseError(resp)
	}
	return nil
}

func (k *kuduClient) zipDeploy(ctx context.Context, site webapp.Site, zipFile string) error {
	endpoint, err := scmURL(site, "/api/zipdeploy", url.Values{"isAsync": {"true"}})
	if err != nil {
		return errors.Trace(err)
	}
	logger.Debugf("uploading %s to %s", filepath.Base(zipFile), endpoint)
	resp, err := k.post(ctx, endpoint, zipFile)
	if err != nil {
		return errors.Trace(err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusAccepted:
		return errors.Trace(k.waitForDeployment(ctx, site))
	}
	return runtime.NewResponseError(resp)
}

func (k *kuduClient) post(ctx context.Context, endpoint, file string) (*http.Response, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Annotate(err, "opening deployment package")
	}
	defer f.Close()

	req, err := runtime.NewRequest(ctx, http.MethodPost, endpoint)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := req.SetBody(f, "application/octet-stream"); err != nil {
		return nil, errors.Trace(err)
	}
	resp, err := k.pipeline.Do(req)
	return resp, errors.Trace(err)
}

// waitForDeployment polls the latest deployment until it completes,
// fails, or the deployment timeout passes.
func (k *kuduClient) waitForDeployment(ctx context.Context, site webapp.Site) error {
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			status, err := k.latestDeployment(ctx, site)
			if err != nil {
				return errors.Trace(err)
			}
			switch {
			case status.Status == deploymentStatusSuccess:
				return nil
			case status.Status == deploymentStatusFailed:
				return errors.Errorf("deployment %s to %s failed: %s", status.ID, site.DisplayName(), status.failureText())
			case status.Complete:
				return errors.Errorf("deployment %s to %s ended with status %d", status.ID, site.DisplayName(), status.Status)
			}
			return errDeploymentInProgress
		},
		IsFatalError: func(err error) bool {
			return !errors.Is(err, errDeploymentInProgress)
		},
		NotifyFunc: func(_ error, attempt int) {
			logger.Debugf("deployment to %s in progress (check %d)", site.DisplayName(), attempt)
		},
		Delay:       k.pollDelay,
		MaxDuration: k.timeout,
		Clock:       k.clock,
		Stop:        ctx.Done(),
	})
	switch {
	case err == nil:
		return nil
	case retry.IsDurationExceeded(err):
		return errors.Errorf("deployment to %s did not complete within %s", site.DisplayName(), k.timeout)
	case retry.IsRetryStopped(err):
		return errors.Annotatef(ctx.Err(), "waiting for deployment to %s", site.DisplayName())
	}
	return errors.Trace(err)
}

func (k *kuduClient) latestDeployment(ctx context.Context, site webapp.Site) (deploymentStatus, error) {
	endpoint, err := scmURL(site, "/api/deployments/latest", nil)
	if err != nil {
		return deploymentStatus{}, errors.Trace(err)
	}
	req, err := runtime.NewRequest(ctx, http.MethodGet, endpoint)
	if err != nil {
		return deploymentStatus{}, errors.Trace(err)
	}
	resp, err := k.pipeline.Do(req)
	if err != nil {
		return deploymentStatus{}, errors.Trace(err)
	}
	if !runtime.HasStatusCode(resp, http.StatusOK, http.StatusAccepted) {
		return deploymentStatus{}, runtime.NewResponseError(resp)
	}
	var status deploymentStatus
	if err := runtime.UnmarshalAsJSON(resp, &status); err != nil {
		return deploymentStatus{}, errors.Annotate(err, "decoding deployment status")
	}
	return status, nil
}

func (s deploymentStatus) failureText() string {
	if s.StatusText != "" {
		return s.StatusText
	}
	return s.Message
}

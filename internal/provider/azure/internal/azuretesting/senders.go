// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azuretesting

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/juju/errors"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("webappdeploy.provider.azure.internal.azuretesting")

// RecordedRequest is a request seen by a MockSender, with its body
// read into memory.
type RecordedRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// JSON decodes the recorded body into v.
func (r RecordedRequest) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

type mockResponse struct {
	resp *http.Response
	err  error
}

// MockSender is a policy.Transporter that returns canned responses in
// order and records every request it sees.
type MockSender struct {
	// PathPattern, if set, must match the path of every request.
	PathPattern string

	mu        sync.Mutex
	responses []mockResponse
	requests  []RecordedRequest
}

// AppendResponse queues a response.
func (s *MockSender) AppendResponse(resp *http.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, mockResponse{resp: resp})
}

// AppendAndRepeatResponse queues the same response n times.
func (s *MockSender) AppendAndRepeatResponse(resp *http.Response, n int) {
	for i := 0; i < n; i++ {
		s.AppendResponse(cloneResponse(resp))
	}
}

// SetError queues a transport error.
func (s *MockSender) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, mockResponse{err: err})
}

// Requests returns the requests seen so far.
func (s *MockSender) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Do is part of the policy.Transporter interface.
func (s *MockSender) Do(req *http.Request) (*http.Response, error) {
	recorded := RecordedRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
	}
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, errors.Trace(err)
		}
		recorded.Body = body
	}
	logger.Debugf("%s %s", req.Method, req.URL)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, recorded)

	if s.PathPattern != "" {
		matched, err := regexp.MatchString(s.PathPattern, req.URL.Path)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if !matched {
			return nil, errors.Errorf("request path %q did not match pattern %q", req.URL.Path, s.PathPattern)
		}
	}
	if len(s.responses) == 0 {
		return nil, errors.Errorf("no response queued for %s %s", req.Method, req.URL)
	}
	next := s.responses[0]
	s.responses = s.responses[1:]
	if next.err != nil {
		return nil, next.err
	}
	next.resp.Request = req
	return next.resp, nil
}

// Senders is a policy.Transporter that passes each request to the next
// sender in the list. Each sender handles exactly one request.
type Senders []policy.Transporter

// Do is part of the policy.Transporter interface.
func (s *Senders) Do(req *http.Request) (*http.Response, error) {
	if len(*s) == 0 {
		return nil, errors.Errorf("no sender for %s %s", req.Method, req.URL)
	}
	sender := (*s)[0]
	*s = (*s)[1:]
	return sender.Do(req)
}

// NewBody returns a request or response body with the given content.
func NewBody(content string) io.ReadCloser {
	return io.NopCloser(bytes.NewBufferString(content))
}

// NewResponseWithBodyAndStatus returns a response with the given body
// and status code.
func NewResponseWithBodyAndStatus(body io.ReadCloser, status int, statusText string) *http.Response {
	if statusText == "" {
		statusText = http.StatusText(status)
	}
	return &http.Response{
		Status:     statusText,
		StatusCode: status,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       body,
	}
}

// NewResponseWithContent returns a 200 response with the given body.
func NewResponseWithContent(content string) *http.Response {
	return NewResponseWithBodyAndStatus(NewBody(content), http.StatusOK, "")
}

// NewResponseWithStatus returns an empty response with the given
// status code.
func NewResponseWithStatus(status int) *http.Response {
	return NewResponseWithBodyAndStatus(NewBody(""), status, "")
}

// NewNotFoundResponse returns a 404 response in the shape returned by
// Azure Resource Manager.
func NewNotFoundResponse(code string) *http.Response {
	body := NewBody(`{"error":{"code":"` + code + `","message":"not found"}}`)
	return NewResponseWithBodyAndStatus(body, http.StatusNotFound, "")
}

// NewSenderWithValue returns a sender that responds once with v encoded
// as JSON.
func NewSenderWithValue(v any) *MockSender {
	sender := &MockSender{}
	sender.AppendResponse(NewResponseWithValue(v))
	return sender
}

// NewResponseWithValue returns a 200 response with v encoded as JSON.
func NewResponseWithValue(v any) *http.Response {
	content, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return NewResponseWithContent(string(content))
}

func cloneResponse(resp *http.Response) *http.Response {
	clone := *resp
	if resp.Body != nil {
		content, _ := io.ReadAll(resp.Body)
		resp.Body = io.NopCloser(bytes.NewReader(content))
		clone.Body = io.NopCloser(bytes.NewReader(content))
	}
	clone.Header = resp.Header.Clone()
	return &clone
}

// FakeCredential is an azcore.TokenCredential that always returns the
// same token.
type FakeCredential struct {
	// Token defaults to "fake-token".
	Token string
	// Err, if set, is returned by GetToken.
	Err error
}

// GetToken is part of the azcore.TokenCredential interface.
func (c *FakeCredential) GetToken(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	if c.Err != nil {
		return azcore.AccessToken{}, c.Err
	}
	token := c.Token
	if token == "" {
		token = "fake-token"
	}
	return azcore.AccessToken{Token: token, ExpiresOn: time.Now().Add(time.Hour)}, nil
}

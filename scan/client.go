// Copyright 2026 The Witness Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/in-toto/go-dast/log"
	"github.com/in-toto/go-dast/signer"
)

const (
	CommercialHost = "api.veracode.com"
	EUHost         = "api.veracode.eu"

	CorePrefix          = "/dae/api/core-api/webhook"
	ConfigurationPrefix = "/dae/api/tcs-api/api/v1"

	maxErrorMessageLen = 512
)

// StartEndpoint selects which spelling of the scan start endpoint to call.
type StartEndpoint string

const (
	// StartEndpointScan posts to {core}/<webhook>/scan.
	StartEndpointScan StartEndpoint = "scan"
	// StartEndpointWebhook posts to {core}/<webhook>.
	StartEndpointWebhook StartEndpoint = "webhook"
)

func ParseStartEndpoint(s string) (StartEndpoint, error) {
	switch StartEndpoint(strings.ToLower(strings.TrimSpace(s))) {
	case "", StartEndpointScan:
		return StartEndpointScan, nil
	case StartEndpointWebhook:
		return StartEndpointWebhook, nil
	default:
		return "", ConfigurationError{Reason: fmt.Sprintf("unknown start endpoint %q, expected scan or webhook", s)}
	}
}

// HostForRegion maps a region name onto one of the two supported API hosts.
func HostForRegion(region string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(region)) {
	case "", "us", "com", "commercial":
		return CommercialHost, nil
	case "eu":
		return EUHost, nil
	default:
		return "", ConfigurationError{Reason: fmt.Sprintf("unsupported region %q, expected commercial or eu", region)}
	}
}

// Doer sends a single HTTP request.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client sends signed requests to the scan and configuration APIs. It never retries.
type Client struct {
	signer        *signer.Signer
	doer          Doer
	region        string
	baseURL       string
	scheme        string
	host          string
	extraHeader   SystemAccount
	startEndpoint StartEndpoint
	signerOpts    []signer.Option
}

type ClientOption func(*Client)

func WithHTTPClient(d Doer) ClientOption {
	return func(c *Client) {
		if d != nil {
			c.doer = d
		}
	}
}

func WithRegion(region string) ClientOption {
	return func(c *Client) {
		c.region = region
	}
}

// WithBaseURL sends requests to the scheme and host of u instead of the region's host. The
// signature covers the overridden host. A base URL carrying a path is rejected by NewClient.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithExtraHeader adds a header to every signed request.
func WithExtraHeader(name, value string) ClientOption {
	return func(c *Client) {
		c.extraHeader = SystemAccount{Name: name, Value: value}
	}
}

func WithStartEndpoint(e StartEndpoint) ClientOption {
	return func(c *Client) {
		if e != "" {
			c.startEndpoint = e
		}
	}
}

func WithSignerOptions(opts ...signer.Option) ClientOption {
	return func(c *Client) {
		c.signerOpts = append(c.signerOpts, opts...)
	}
}

// NewClient validates the identity and endpoint settings. Every failure is a ConfigurationError.
func NewClient(identity signer.Identity, opts ...ClientOption) (*Client, error) {
	c := &Client{
		doer:          cleanhttp.DefaultPooledClient(),
		scheme:        "https",
		startEndpoint: StartEndpointScan,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(c)
	}

	s, err := signer.New(identity, c.signerOpts...)
	if err != nil {
		return nil, ConfigurationError{Reason: "could not create request signer", Err: err}
	}

	c.signer = s
	if c.baseURL != "" {
		u, err := url.Parse(c.baseURL)
		if err != nil {
			return nil, ConfigurationError{Reason: "invalid base url", Err: err}
		}

		if u.Scheme == "" || u.Host == "" {
			return nil, ConfigurationError{Reason: fmt.Sprintf("base url %q must include a scheme and host", c.baseURL)}
		}

		if strings.Trim(u.Path, "/") != "" || u.RawQuery != "" || u.Fragment != "" {
			return nil, ConfigurationError{Reason: fmt.Sprintf("base url %q must not include a path, query or fragment", c.baseURL)}
		}

		c.scheme = u.Scheme
		c.host = u.Host
	} else {
		host, err := HostForRegion(c.region)
		if err != nil {
			return nil, err
		}

		c.host = host
	}

	if _, err := ParseStartEndpoint(string(c.startEndpoint)); err != nil {
		return nil, err
	}

	if (c.extraHeader.Name == "") != (c.extraHeader.Value == "") {
		return nil, ConfigurationError{Reason: "extra header needs both a name and a value"}
	}

	return c, nil
}

// Host is the API host every request is signed for.
func (c *Client) Host() string {
	return c.host
}

// AnalysisProfileID returns the id of the first analysis profile attached to targetID.
func (c *Client) AnalysisProfileID(ctx context.Context, targetID string) (string, error) {
	const op = "get analysis profile"
	path := fmt.Sprintf("%s/analysis_profiles?target_id=%s", ConfigurationPrefix, url.QueryEscape(targetID))
	body, err := c.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}

	resp := analysisProfilesResponse{}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", ProtocolError{Op: op, Field: "_embedded.analysis_profiles", Err: err}
	}

	if resp.Embedded == nil || len(resp.Embedded.AnalysisProfiles) == 0 {
		return "", ProtocolError{Op: op, Field: "_embedded.analysis_profiles[0]"}
	}

	id := resp.Embedded.AnalysisProfiles[0].AnalysisProfileID
	if id == nil || *id == "" {
		return "", ProtocolError{Op: op, Field: "_embedded.analysis_profiles[0].analysis_profile_id"}
	}

	return *id, nil
}

// SetParameterAuthentications replaces the analysis profile's header authentications.
func (c *Client) SetParameterAuthentications(ctx context.Context, params AnalysisProfileParameters) error {
	const op = "set parameter authentications"
	if params.ProfileID == "" {
		return ConfigurationError{Reason: "analysis profile id is required"}
	}

	payload, err := json.Marshal(params.wireFormat())
	if err != nil {
		return fmt.Errorf("could not marshal parameter authentications: %w", err)
	}

	path := fmt.Sprintf("%s/analysis_profiles/%s/parameter_authentications", ConfigurationPrefix, url.PathEscape(params.ProfileID))
	_, err = c.do(ctx, op, http.MethodPut, path, payload)
	return err
}

// StartScan triggers the webhook and returns the new scan's id.
func (c *Client) StartScan(ctx context.Context, webhookID string) (string, error) {
	const op = "start scan"
	path := c.startPath(webhookID)
	body, err := c.do(ctx, op, http.MethodPost, path, []byte{})
	if err != nil {
		return "", err
	}

	resp := startScanResponse{}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", ProtocolError{Op: op, Field: "data.scanId", Err: err}
	}

	if resp.Data == nil || resp.Data.ScanID == nil || *resp.Data.ScanID == "" {
		return "", ProtocolError{Op: op, Field: "data.scanId"}
	}

	return *resp.Data.ScanID, nil
}

// Status returns the scan's current status code.
func (c *Client) Status(ctx context.Context, webhookID, scanID string) (int, error) {
	const op = "get scan status"
	path := fmt.Sprintf("%s/%s/scans/%s/status", CorePrefix, url.PathEscape(webhookID), url.PathEscape(scanID))
	body, err := c.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}

	resp := statusResponse{}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, ProtocolError{Op: op, Field: "data.status.status_code", Err: err}
	}

	if resp.Data == nil || resp.Data.Status == nil || resp.Data.Status.StatusCode == nil {
		return 0, ProtocolError{Op: op, Field: "data.status.status_code"}
	}

	return *resp.Data.Status.StatusCode, nil
}

// Report downloads the JUnit report. The body is returned untouched.
func (c *Client) Report(ctx context.Context, webhookID, scanID string) ([]byte, error) {
	path := fmt.Sprintf("%s/%s/scans/%s/report/junit", CorePrefix, url.PathEscape(webhookID), url.PathEscape(scanID))
	return c.do(ctx, "download report", http.MethodGet, path, nil)
}

func (c *Client) startPath(webhookID string) string {
	if c.startEndpoint == StartEndpointWebhook {
		return fmt.Sprintf("%s/%s", CorePrefix, url.PathEscape(webhookID))
	}

	return fmt.Sprintf("%s/%s/scan", CorePrefix, url.PathEscape(webhookID))
}

// do signs and sends one request. A nil body sends no body at all.
func (c *Client) do(ctx context.Context, op, method, path string, body []byte) ([]byte, error) {
	auth, err := c.signer.Authorization(method, c.host, path)
	if err != nil {
		return nil, fmt.Errorf("could not sign %v request: %w", op, err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s://%s%s", c.scheme, c.host, path), reader)
	if err != nil {
		return nil, fmt.Errorf("could not create %v request: %w", op, err)
	}

	req.Header.Set("Authorization", auth)
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.extraHeader.Name != "" {
		req.Header.Set(c.extraHeader.Name, c.extraHeader.Value)
	}

	log.Debugf("%v: %v %v", op, method, path)
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, TransportError{Op: op, Err: err}
	}

	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, TransportError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, TransportError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	return respBody, nil
}

// errorMessage prefers the API's message field and falls back to the raw body.
func errorMessage(body []byte) string {
	apiErr := apiErrorResponse{}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorMessageLen {
		msg = msg[:maxErrorMessageLen] + "..."
	}

	return msg
}

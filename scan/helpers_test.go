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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/in-toto/go-dast/signer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testID        = "3ddaeeb10ca690df3fee5e3bd1c329fa"
	testKey       = "e26c37b5e2c2e1ab5a8bdc8b3a0f9e1d4c7b6a5f4e3d2c1b0a99887766554433221100ffeeddccbbaa99887766554433221100ffeeddccbbaa9988776655443322"
	testWebhookID = "wh-123"
	testScanID    = "scan-9"
)

type recordedRequest struct {
	Method  string
	Path    string
	Query   string
	Header  http.Header
	Body    []byte
	Authz   string
	IsValid bool
}

// fakeAPI plays both the scan API and the configuration API.
type fakeAPI struct {
	t *testing.T

	mu              sync.Mutex
	requests        []recordedRequest
	statuses        []int
	startResponse   string
	startStatusCode int
	statusCode      int
	statusBody      string
	profileResponse string
	report          string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	api := &fakeAPI{
		t:               t,
		startResponse:   fmt.Sprintf(`{"data":{"scanId":%q}}`, testScanID),
		startStatusCode: http.StatusOK,
		statusCode:      http.StatusOK,
		profileResponse: `{"_embedded":{"analysis_profiles":[{"analysis_profile_id":"profile-1"}]}}`,
		report:          `<?xml version="1.0"?><testsuites></testsuites>`,
	}

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, srv
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	require.NoError(f.t, err)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.RawQuery,
		Header:  r.Header.Clone(),
		Body:    body,
		Authz:   r.Header.Get("Authorization"),
		IsValid: validAuthorization(r),
	})

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/analysis_profiles"):
		_, _ = w.Write([]byte(f.profileResponse))
	case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/parameter_authentications"):
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPost:
		w.WriteHeader(f.startStatusCode)
		_, _ = w.Write([]byte(f.startResponse))
	case strings.HasSuffix(r.URL.Path, "/status"):
		if f.statusBody != "" {
			w.WriteHeader(f.statusCode)
			_, _ = w.Write([]byte(f.statusBody))
			return
		}

		status := StatusRunning
		if len(f.statuses) > 0 {
			status = f.statuses[0]
			f.statuses = f.statuses[1:]
		}

		_, _ = fmt.Fprintf(w, `{"data":{"status":{"status_code":%d}}}`, status)
	case strings.HasSuffix(r.URL.Path, "/report/junit"):
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(f.report))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such endpoint"}`))
	}
}

func (f *fakeAPI) calls(suffix string) []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []recordedRequest{}
	for _, r := range f.requests {
		if strings.HasSuffix(r.Path, suffix) {
			out = append(out, r)
		}
	}

	return out
}

func (f *fakeAPI) all() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest{}, f.requests...)
}

// validAuthorization recomputes the signature the way the remote verifier does.
func validAuthorization(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	prefix := signer.AuthorizationScheme + " "
	if !strings.HasPrefix(header, prefix) {
		return false
	}

	fields := map[string]string{}
	for _, part := range strings.Split(strings.TrimPrefix(header, prefix), ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return false
		}

		fields[kv[0]] = kv[1]
	}

	if fields["id"] != testID {
		return false
	}

	key, err := hex.DecodeString(testKey)
	if err != nil {
		return false
	}

	nonce, err := hex.DecodeString(fields["nonce"])
	if err != nil || len(nonce) != signer.NonceSize {
		return false
	}

	data := signer.CanonicalData(testID, r.Host, r.URL.RequestURI(), r.Method)
	return hex.EncodeToString(signer.Signature(key, nonce, fields["ts"], data)) == fields["sig"]
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...ClientOption) *Client {
	t.Helper()
	opts = append([]ClientOption{WithBaseURL(srv.URL), WithHTTPClient(srv.Client())}, opts...)
	c, err := NewClient(signer.Identity{ID: testID, Key: testKey}, opts...)
	require.NoError(t, err)
	return c
}

func decodeParameters(t *testing.T, body []byte) []map[string]string {
	t.Helper()
	out := []map[string]string{}
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func assertAllSigned(t *testing.T, api *fakeAPI) {
	t.Helper()
	for _, r := range api.all() {
		assert.Truef(t, r.IsValid, "request %v %v was not validly signed: %v", r.Method, r.Path, r.Authz)
	}
}

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

package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "e26c37b5c3f2a1d0e9f8c7b6a5d4c3b2e1f0a9b8c7d6e5f4a3b2c1d0e9f8a7b6"

type fakeScanAPI struct {
	mu      sync.Mutex
	paths   []string
	polls   int
	headers []http.Header
}

func (f *fakeScanAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)
	f.headers = append(f.headers, r.Header.Clone())

	switch {
	case r.Method == http.MethodPost:
		_, _ = w.Write([]byte(`{"data":{"scanId":"scan-9"}}`))
	case strings.HasSuffix(r.URL.Path, "/status"):
		f.polls++
		code := 101
		if f.polls >= 2 {
			code = 200
		}

		_, _ = fmt.Fprintf(w, `{"data":{"status":{"status_code":%d}}}`, code)
	case strings.HasSuffix(r.URL.Path, "/report/junit"):
		_, _ = w.Write([]byte("<testsuites/>"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func baseArgs(srvURL string) []string {
	return []string{
		"--veracode-webhook", "wh-123",
		"--veracode-secret-id", "id",
		"--veracode-secret-id-key", testKey,
		"--base-url", srvURL,
		"--poll-interval", "1ms",
		"--log-level", "debug",
	}
}

func TestRun(t *testing.T) {
	api := &fakeScanAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	reportPath := filepath.Join(t.TempDir(), "report.xml")
	out := &bytes.Buffer{}
	args := append(baseArgs(srv.URL), "--report-path", reportPath, "--extra-header-name", "X-Account", "--extra-header-value", "acct")
	require.Equal(t, exitOK, run(context.Background(), args, out))

	got, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Equal(t, "<testsuites/>", string(got))
	assert.Equal(t, []string{
		"POST /dae/api/core-api/webhook/wh-123/scan",
		"GET /dae/api/core-api/webhook/wh-123/scans/scan-9/status",
		"GET /dae/api/core-api/webhook/wh-123/scans/scan-9/status",
		"GET /dae/api/core-api/webhook/wh-123/scans/scan-9/report/junit",
	}, api.paths)

	for _, h := range api.headers {
		assert.True(t, strings.HasPrefix(h.Get("Authorization"), "VERACODE-HMAC-SHA-256 id=id,"))
		assert.Equal(t, "acct", h.Get("X-Account"))
	}

	assert.NotContains(t, out.String(), testKey)
	assert.NotContains(t, out.String(), `"acct"`)
	assert.Contains(t, out.String(), "Scan ID is scan-9")
}

func TestRunSkipReport(t *testing.T) {
	api := &fakeScanAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	reportPath := filepath.Join(t.TempDir(), "report.xml")
	args := append(baseArgs(srv.URL), "--report-path", reportPath, "--pull-report=false")
	require.Equal(t, exitOK, run(context.Background(), args, &bytes.Buffer{}))

	assert.Equal(t, []string{"POST /dae/api/core-api/webhook/wh-123/scan"}, api.paths)
	assert.NoFileExists(t, reportPath)
}

func TestRunMissingInputs(t *testing.T) {
	api := &fakeScanAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	out := &bytes.Buffer{}
	args := []string{"--base-url", srv.URL, "--veracode-webhook", "wh-123"}
	assert.Equal(t, exitFailed, run(context.Background(), args, out))
	assert.Empty(t, api.paths)
	assert.Contains(t, out.String(), "veracode-secret-id")
}

func TestRunClientCredentialsGating(t *testing.T) {
	api := &fakeScanAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	out := &bytes.Buffer{}
	args := append(baseArgs(srv.URL), "--auth-type", "CLIENT_CREDENTIALS", "--client-id", "client")
	assert.Equal(t, exitFailed, run(context.Background(), args, out))
	assert.Empty(t, api.paths)
	assert.Contains(t, out.String(), "client secret")
}

func TestRunStartFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"bad signature"}`))
	}))
	defer srv.Close()

	out := &bytes.Buffer{}
	assert.Equal(t, exitFailed, run(context.Background(), baseArgs(srv.URL), out))
	assert.Contains(t, out.String(), "bad signature")
}

func TestRunReportNotWritten(t *testing.T) {
	api := &fakeScanAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	args := append(baseArgs(srv.URL), "--report-path", t.TempDir())
	assert.Equal(t, exitReportNotWritten, run(context.Background(), args, &bytes.Buffer{}))
}

func TestRunInvalidLogLevel(t *testing.T) {
	assert.Equal(t, exitFailed, run(context.Background(), []string{"--log-level", "loud"}, &bytes.Buffer{}))
}

func TestNewLoggerFormatter(t *testing.T) {
	out := &bytes.Buffer{}
	l, err := newLogger(out, "info")
	require.NoError(t, err)
	l.Info("hello")
	assert.True(t, strings.HasPrefix(out.String(), "{"))
	assert.False(t, isTerminal(out))
}

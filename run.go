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

package dast

import (
	"context"
	"fmt"

	"github.com/in-toto/go-dast/report"
	"github.com/in-toto/go-dast/scan"
	"github.com/in-toto/go-dast/signer"
)

type runOptions struct {
	webhookID        string
	identity         signer.Identity
	clientOpts       []scan.ClientOption
	orchestratorOpts []scan.Option
	authenticator    scan.Authenticator
	skipReport       bool
	reportPath       string
}

type RunOption func(ro *runOptions)

func RunWithClientOptions(opts ...scan.ClientOption) RunOption {
	return func(ro *runOptions) {
		ro.clientOpts = append(ro.clientOpts, opts...)
	}
}

func RunWithOrchestratorOptions(opts ...scan.Option) RunOption {
	return func(ro *runOptions) {
		ro.orchestratorOpts = append(ro.orchestratorOpts, opts...)
	}
}

// RunWithAuthenticator configures the analysis profile before the scan starts.
func RunWithAuthenticator(a scan.Authenticator) RunOption {
	return func(ro *runOptions) {
		ro.authenticator = a
	}
}

// RunWithSkipReport returns as soon as the scan has started.
func RunWithSkipReport(skip bool) RunOption {
	return func(ro *runOptions) {
		ro.skipReport = skip
	}
}

// RunWithReportPath writes the downloaded report to path.
func RunWithReportPath(path string) RunOption {
	return func(ro *runOptions) {
		ro.reportPath = path
	}
}

type RunResult struct {
	scan.Result
	// ReportPath is set when the report was written to disk.
	ReportPath string
}

// Run starts the webhook's scan and, unless skipped, waits for it and collects the report.
// When the report cannot be written the returned error is a scan.IOError and the result still
// carries the finished job.
func Run(ctx context.Context, webhookID string, identity signer.Identity, opts ...RunOption) (RunResult, error) {
	ro := runOptions{
		webhookID: webhookID,
		identity:  identity,
	}

	for _, opt := range opts {
		opt(&ro)
	}

	if err := validateRunOpts(ro); err != nil {
		return RunResult{}, err
	}

	client, err := scan.NewClient(ro.identity, ro.clientOpts...)
	if err != nil {
		return RunResult{}, err
	}

	res, err := scan.New(client, ro.orchestratorOpts...).Run(ctx, scan.RunOptions{
		WebhookID:     ro.webhookID,
		SkipReport:    ro.skipReport,
		Authenticator: ro.authenticator,
	})

	result := RunResult{Result: res}
	if err != nil {
		return result, fmt.Errorf("failed to run scan: %w", err)
	}

	if res.Skipped || ro.reportPath == "" {
		return result, nil
	}

	if err := report.Write(ro.reportPath, res.Report); err != nil {
		return result, err
	}

	result.ReportPath = ro.reportPath
	return result, nil
}

func validateRunOpts(ro runOptions) error {
	missing := []string{}
	if ro.webhookID == "" {
		missing = append(missing, "webhook id")
	}

	if ro.identity.ID == "" {
		missing = append(missing, "api id")
	}

	if ro.identity.Key == "" {
		missing = append(missing, "api key")
	}

	if len(missing) > 0 {
		return scan.MissingInputs("a scan run", missing...)
	}

	return nil
}

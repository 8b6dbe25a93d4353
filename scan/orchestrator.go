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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/in-toto/go-dast/log"
)

const DefaultPollInterval = 60 * time.Second

// Authenticator prepares the remote side before a scan starts.
type Authenticator interface {
	Name() string
	// Validate must fail when required inputs are missing. It runs before any request.
	Validate() error
	Authenticate(ctx context.Context, o *Orchestrator) error
}

// Orchestrator drives one scan from start to report.
type Orchestrator struct {
	client       *Client
	pollInterval time.Duration
	maxPolls     int
	timeout      time.Duration
	now          func() time.Time
}

type Option func(*Orchestrator)

// WithPollInterval sets the wait before every status check.
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithMaxPolls caps the number of status checks. Zero means no cap.
func WithMaxPolls(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.maxPolls = n
		}
	}
}

// WithTimeout caps the total time spent polling. Zero means no cap.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.timeout = d
		}
	}
}

func New(client *Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:       client,
		pollInterval: DefaultPollInterval,
		now:          time.Now,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(o)
	}

	return o
}

func (o *Orchestrator) Client() *Client {
	return o.client
}

// ConfigureAuthentication pushes the bearer token and system account header to the analysis
// profile. Any failure is fatal to the run.
func (o *Orchestrator) ConfigureAuthentication(ctx context.Context, profileID, token string, account SystemAccount) error {
	if token == "" {
		return ConfigurationError{Reason: "bearer token is required to configure authentication"}
	}

	if account.Name == "" || account.Value == "" {
		return MissingInputs("configuring authentication", "system account header name", "system account header value")
	}

	params := NewAnalysisProfileParameters(profileID, token, account)
	if err := o.client.SetParameterAuthentications(ctx, params); err != nil {
		return fmt.Errorf("could not set parameter authentications: %w", err)
	}

	log.Infof("Configured %d header authentications on analysis profile %v", len(params.HeaderAuthorizations), profileID)
	return nil
}

// StartScan triggers the webhook and returns a queued Job.
func (o *Orchestrator) StartScan(ctx context.Context, webhookID string) (*Job, error) {
	if webhookID == "" {
		return nil, MissingInputs("starting a scan", "webhook id")
	}

	log.Infof("Sending webhook to %v%v for %v", o.client.Host(), CorePrefix, webhookID)
	scanID, err := o.client.StartScan(ctx, webhookID)
	if err != nil {
		return nil, fmt.Errorf("could not start scan for webhook %v: %w", webhookID, err)
	}

	log.Infof("Started scan for webhook %v. Scan ID is %v.", webhookID, scanID)
	return NewJob(webhookID, scanID), nil
}

// PollUntilTerminal waits and polls until the job's status is terminal. The first check
// always happens since jobs start out queued.
func (o *Orchestrator) PollUntilTerminal(ctx context.Context, job *Job) error {
	parent := ctx
	start := o.now()
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	timedOut := func() error {
		return TimeoutError{
			ScanID:     job.ScanID,
			Polls:      job.Polls,
			Elapsed:    o.now().Sub(start),
			LastStatus: job.Status,
		}
	}

	for !IsTerminal(job.Status) {
		if o.maxPolls > 0 && job.Polls >= o.maxPolls {
			return timedOut()
		}

		log.Infof("Scan status currently is %d (101 = running)", job.Status)
		if err := wait(ctx, o.pollInterval); err != nil {
			if parent.Err() == nil {
				return timedOut()
			}

			return fmt.Errorf("stopped waiting for scan %v: %w", job.ScanID, err)
		}

		status, err := o.client.Status(ctx, job.WebhookID, job.ScanID)
		if err != nil {
			if parent.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return timedOut()
			}

			return fmt.Errorf("retrieving scan status failed for webhook %v: %w", job.WebhookID, err)
		}

		job.Polls++
		job.Status = status
	}

	log.Infof("Scan finished with status %d.", job.Status)
	return nil
}

// FetchReport downloads the job's JUnit report.
func (o *Orchestrator) FetchReport(ctx context.Context, job *Job) ([]byte, error) {
	report, err := o.client.Report(ctx, job.WebhookID, job.ScanID)
	if err != nil {
		return nil, fmt.Errorf("downloading report failed for webhook %v: %w", job.WebhookID, err)
	}

	return report, nil
}

type RunOptions struct {
	WebhookID string
	// SkipReport ends the run once the scan has started.
	SkipReport    bool
	Authenticator Authenticator
}

type Result struct {
	Job     *Job
	Report  []byte
	Skipped bool
}

// Run validates everything it can up front, then authenticates, starts the scan and, unless
// told otherwise, waits for it and downloads the report.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (Result, error) {
	if opts.WebhookID == "" {
		return Result{}, MissingInputs("a scan run", "webhook id")
	}

	if opts.Authenticator != nil {
		if err := opts.Authenticator.Validate(); err != nil {
			return Result{}, err
		}

		log.Debugf("authenticating with %v", opts.Authenticator.Name())
		if err := opts.Authenticator.Authenticate(ctx, o); err != nil {
			return Result{}, err
		}
	}

	job, err := o.StartScan(ctx, opts.WebhookID)
	if err != nil {
		return Result{}, err
	}

	result := Result{Job: job}
	if opts.SkipReport {
		log.Infof("Skipping the download of the scan report")
		result.Skipped = true
		return result, nil
	}

	if err := o.PollUntilTerminal(ctx, job); err != nil {
		return result, err
	}

	report, err := o.FetchReport(ctx, job)
	if err != nil {
		return result, err
	}

	result.Report = report
	return result, nil
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

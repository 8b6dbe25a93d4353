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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	dast "github.com/in-toto/go-dast"
	"github.com/in-toto/go-dast/config"
	"github.com/in-toto/go-dast/environment"
	"github.com/in-toto/go-dast/log"
	"github.com/in-toto/go-dast/scan"
	"github.com/spf13/pflag"
)

const (
	exitOK = iota
	exitFailed
	exitReportNotWritten
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	cancel()
	os.Exit(code)
}

// run returns the process exit code.
func run(ctx context.Context, args []string, out io.Writer) int {
	fs := pflag.NewFlagSet("dast-scan", pflag.ContinueOnError)
	fs.SetOutput(out)
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}

		return exitFailed
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintln(out, err)
		return exitFailed
	}

	logger, err := newLogger(out, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(out, "invalid log level %q: %v\n", cfg.LogLevel, err)
		return exitFailed
	}

	log.SetLogger(logger)
	defer log.SetLogger(nil)

	if dump, err := cfg.Dump(); err == nil {
		log.Debugf("configuration:\n%s", dump)
	}

	inputs := config.EnvironmentInputs()
	for _, k := range environment.SortedKeys(inputs) {
		log.Debugf("environment input %v=%v", k, inputs[k])
	}

	if err := cfg.Validate(); err != nil {
		log.Errorf("%w", err)
		return exitFailed
	}

	clientOpts, err := cfg.ClientOptions()
	if err != nil {
		log.Errorf("%w", err)
		return exitFailed
	}

	runOpts, err := cfg.RunOptions()
	if err != nil {
		log.Errorf("%w", err)
		return exitFailed
	}

	_, err = dast.Run(ctx, runOpts.WebhookID, cfg.Identity(),
		dast.RunWithClientOptions(clientOpts...),
		dast.RunWithOrchestratorOptions(cfg.OrchestratorOptions()...),
		dast.RunWithAuthenticator(runOpts.Authenticator),
		dast.RunWithSkipReport(runOpts.SkipReport),
		dast.RunWithReportPath(cfg.ReportPath),
	)

	ioErr := scan.IOError{}
	switch {
	case errors.As(err, &ioErr):
		log.Errorf("%w", err)
		return exitReportNotWritten
	case err != nil:
		log.Errorf("scan failed: %w", err)
		return exitFailed
	}

	return exitOK
}

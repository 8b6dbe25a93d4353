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

package config

import (
	"fmt"
	"time"

	"github.com/in-toto/go-dast/authmode"
	"github.com/in-toto/go-dast/environment"
	"github.com/in-toto/go-dast/scan"
	"github.com/in-toto/go-dast/signer"
	"go.yaml.in/yaml/v3"
)

// Validate checks everything that can be checked without touching the network. Every failure
// is a scan.ConfigurationError.
func (c *Config) Validate() error {
	missing := []string{}
	for _, f := range []struct {
		key   string
		value string
	}{
		{KeyWebhook, c.WebhookID},
		{KeySecretID, c.SecretID},
		{KeySecretKey, c.SecretKey},
	} {
		if f.value == "" {
			missing = append(missing, f.key)
		}
	}

	if len(missing) > 0 {
		return scan.MissingInputs("a scan", missing...)
	}

	if err := c.Identity().Validate(); err != nil {
		return scan.ConfigurationError{Reason: "invalid API credentials", Err: err}
	}

	if c.BaseURL == "" {
		if _, err := scan.HostForRegion(c.Region); err != nil {
			return err
		}
	}

	if _, err := scan.ParseStartEndpoint(c.StartEndpoint); err != nil {
		return err
	}

	if (c.ExtraHeaderName == "") != (c.ExtraHeaderValue == "") {
		return scan.MissingInputs("an extra header", KeyExtraHeaderName, KeyExtraHeaderValue)
	}

	if c.PollInterval < 0 || c.Timeout < 0 || c.MaxPolls < 0 {
		return scan.ConfigurationError{Reason: fmt.Sprintf("%v, %v and %v must not be negative", KeyPollInterval, KeyMaxPolls, KeyTimeout)}
	}

	a, err := c.Authenticator()
	if err != nil {
		return err
	}

	return a.Validate()
}

func (c *Config) Identity() signer.Identity {
	return signer.Identity{ID: c.SecretID, Key: c.SecretKey}
}

// ClientOptions translates the endpoint settings for scan.NewClient.
func (c *Config) ClientOptions() ([]scan.ClientOption, error) {
	endpoint, err := scan.ParseStartEndpoint(c.StartEndpoint)
	if err != nil {
		return nil, err
	}

	opts := []scan.ClientOption{
		scan.WithRegion(c.Region),
		scan.WithStartEndpoint(endpoint),
	}

	if c.BaseURL != "" {
		opts = append(opts, scan.WithBaseURL(c.BaseURL))
	}

	if c.ExtraHeaderName != "" {
		opts = append(opts, scan.WithExtraHeader(c.ExtraHeaderName, c.ExtraHeaderValue))
	}

	return opts, nil
}

func (c *Config) OrchestratorOptions() []scan.Option {
	opts := []scan.Option{scan.WithMaxPolls(c.MaxPolls), scan.WithTimeout(c.Timeout)}
	if c.PollInterval > 0 {
		opts = append(opts, scan.WithPollInterval(c.PollInterval))
	}

	return opts
}

// Authenticator builds the configured auth mode from AuthOptions.
func (c *Config) Authenticator() (scan.Authenticator, error) {
	return authmode.New(c.AuthType, c.AuthOptions)
}

func (c *Config) RunOptions() (scan.RunOptions, error) {
	a, err := c.Authenticator()
	if err != nil {
		return scan.RunOptions{}, err
	}

	return scan.RunOptions{
		WebhookID:     c.WebhookID,
		SkipReport:    !c.PullReport,
		Authenticator: a,
	}, nil
}

// Settings flattens the configuration into key/value pairs. Secrets are included; pass the
// result through an environment.Redactor before showing it to anyone.
func (c *Config) Settings() map[string]any {
	settings := map[string]any{
		KeyWebhook:          c.WebhookID,
		KeySecretID:         c.SecretID,
		KeySecretKey:        c.SecretKey,
		KeyRegion:           c.Region,
		KeyPullReport:       c.PullReport,
		KeyAuthType:         c.AuthType,
		KeyStartEndpoint:    c.StartEndpoint,
		KeyExtraHeaderName:  c.ExtraHeaderName,
		KeyExtraHeaderValue: c.ExtraHeaderValue,
		KeyBaseURL:          c.BaseURL,
		KeyPollInterval:     c.PollInterval.String(),
		KeyMaxPolls:         c.MaxPolls,
		KeyTimeout:          c.Timeout.String(),
		KeyReportPath:       c.ReportPath,
		KeyLogLevel:         c.LogLevel,
	}

	for k, v := range c.AuthOptions {
		if d, ok := v.(time.Duration); ok {
			v = d.String()
		}

		settings[k] = v
	}

	return settings
}

// Redactor masks the default sensitive keys, the extra header value and every auth option
// registered as sensitive.
func Redactor() *environment.Redactor {
	keys := []string{KeyExtraHeaderValue}
	for _, opt := range authOptions() {
		if opt.Sensitive() {
			keys = append(keys, opt.Name())
		}
	}

	return environment.New(
		environment.WithAdditionalKeys(keys),
		environment.WithEnvPrefixes(ActionInputPrefix+"_", EnvPrefix+"_"),
	)
}

// Dump renders the redacted configuration as YAML.
func (c *Config) Dump() (string, error) {
	out, err := yaml.Marshal(Redactor().Redact(c.Settings()))
	if err != nil {
		return "", fmt.Errorf("could not marshal config: %w", err)
	}

	return string(out), nil
}

// EnvironmentInputs returns the redacted INPUT_ and DAST_ variables present in the environment.
func EnvironmentInputs() map[string]string {
	return Redactor().RedactEnvironment(Environ(), ActionInputPrefix+"_", EnvPrefix+"_")
}

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
	"os"
	"strings"
	"time"

	"github.com/in-toto/go-dast/authmode"
	"github.com/in-toto/go-dast/log"
	"github.com/in-toto/go-dast/registry"
	"github.com/in-toto/go-dast/scan"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	KeyWebhook          = "veracode-webhook"
	KeySecretID         = "veracode-secret-id"
	KeySecretKey        = "veracode-secret-id-key"
	KeyRegion           = "region"
	KeyPullReport       = "pull-report"
	KeyAuthType         = "auth-type"
	KeyStartEndpoint    = "start-endpoint"
	KeyExtraHeaderName  = "extra-header-name"
	KeyExtraHeaderValue = "extra-header-value"
	KeyBaseURL          = "base-url"
	KeyPollInterval     = "poll-interval"
	KeyMaxPolls         = "max-polls"
	KeyTimeout          = "timeout"
	KeyReportPath       = "report-path"
	KeyLogLevel         = "log-level"
	KeyConfig           = "config"

	DefaultReportPath = "report.xml"
	DefaultLogLevel   = "info"

	// EnvPrefix is used for variables set outside of GitHub Actions.
	EnvPrefix = "DAST"
	// ActionInputPrefix is how the Actions runner exposes `with:` inputs.
	ActionInputPrefix = "INPUT"
)

// Config holds every input for one run. It is built once by Load and never mutated by the
// packages that consume it.
type Config struct {
	WebhookID        string        `yaml:"veracode-webhook" json:"veracode-webhook" jsonschema:"title=Webhook,description=Id of the webhook that starts the scan"`
	SecretID         string        `yaml:"veracode-secret-id" json:"veracode-secret-id" jsonschema:"title=API id,description=Veracode API credential id"`
	SecretKey        string        `yaml:"veracode-secret-id-key" json:"veracode-secret-id-key" jsonschema:"title=API key,description=Hex encoded Veracode API credential key"`
	Region           string        `yaml:"region" json:"region,omitempty" jsonschema:"title=Region,enum=commercial,enum=us,enum=eu"`
	PullReport       bool          `yaml:"pull-report" json:"pull-report" jsonschema:"title=Pull report,description=Wait for the scan and download its JUnit report,default=true"`
	AuthType         string        `yaml:"auth-type" json:"auth-type,omitempty" jsonschema:"title=Auth type,enum=none,enum=client-credentials,enum=CLIENT_CREDENTIALS"`
	StartEndpoint    string        `yaml:"start-endpoint" json:"start-endpoint,omitempty" jsonschema:"title=Start endpoint,enum=scan,enum=webhook"`
	ExtraHeaderName  string        `yaml:"extra-header-name,omitempty" json:"extra-header-name,omitempty" jsonschema:"title=Extra header name,description=Header added to every API request"`
	ExtraHeaderValue string        `yaml:"extra-header-value,omitempty" json:"extra-header-value,omitempty" jsonschema:"title=Extra header value"`
	BaseURL          string        `yaml:"base-url,omitempty" json:"base-url,omitempty" jsonschema:"title=Base URL,description=Overrides the region's API address"`
	PollInterval     time.Duration `yaml:"poll-interval" json:"poll-interval" jsonschema:"title=Poll interval,type=string,description=Wait before each status check"`
	MaxPolls         int           `yaml:"max-polls" json:"max-polls" jsonschema:"title=Max polls,description=Maximum number of status checks. 0 means unlimited"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout" jsonschema:"title=Timeout,type=string,description=Maximum time spent polling. 0 means unlimited"`
	ReportPath       string        `yaml:"report-path" json:"report-path" jsonschema:"title=Report path,default=report.xml"`
	LogLevel         string        `yaml:"log-level" json:"log-level" jsonschema:"title=Log level,enum=debug,enum=info,enum=warn,enum=error"`

	// AuthOptions holds the values of the selected auth mode's options, keyed by option name.
	AuthOptions map[string]any `yaml:"-" json:"-"`
}

// RegisterFlags adds every configuration key, including the options of all registered auth
// modes, to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyConfig, "", "Path to a YAML config file")
	fs.String(KeyWebhook, "", "Id of the webhook that starts the scan")
	fs.String(KeySecretID, "", "Veracode API credential id")
	fs.String(KeySecretKey, "", "Hex encoded Veracode API credential key")
	fs.String(KeyRegion, "", "API region, commercial or eu")
	fs.Bool(KeyPullReport, true, "Wait for the scan to finish and download the JUnit report")
	fs.String(KeyAuthType, authmode.NoneName, "How the scanner authenticates to the target application")
	fs.String(KeyStartEndpoint, string(scan.StartEndpointScan), "Scan start endpoint, scan or webhook")
	fs.String(KeyExtraHeaderName, "", "Name of a header added to every API request")
	fs.String(KeyExtraHeaderValue, "", "Value of the header added to every API request")
	fs.String(KeyBaseURL, "", "Send API requests to this scheme and host instead of the region's host")
	fs.Duration(KeyPollInterval, scan.DefaultPollInterval, "Wait before each status check")
	fs.Int(KeyMaxPolls, 0, "Maximum number of status checks, 0 for unlimited")
	fs.Duration(KeyTimeout, 0, "Maximum time spent polling, 0 for unlimited")
	fs.String(KeyReportPath, DefaultReportPath, "Where the JUnit report is written")
	fs.String(KeyLogLevel, DefaultLogLevel, "Log level: debug, info, warn or error")

	for _, opt := range authOptions() {
		if fs.Lookup(opt.Name()) != nil {
			continue
		}

		switch o := opt.(type) {
		case *registry.ConfigOption[scan.Authenticator, string]:
			fs.String(o.Name(), o.DefaultVal(), o.Description())
		case *registry.ConfigOption[scan.Authenticator, time.Duration]:
			fs.Duration(o.Name(), o.DefaultVal(), o.Description())
		default:
			log.Debugf("unsupported option type for flag %v: %T", opt.Name(), opt)
		}
	}
}

// Keys lists every configuration key in flag order.
func Keys() []string {
	keys := []string{
		KeyConfig, KeyWebhook, KeySecretID, KeySecretKey, KeyRegion, KeyPullReport, KeyAuthType,
		KeyStartEndpoint, KeyExtraHeaderName, KeyExtraHeaderValue, KeyBaseURL, KeyPollInterval,
		KeyMaxPolls, KeyTimeout, KeyReportPath, KeyLogLevel,
	}

	seen := map[string]struct{}{}
	for _, k := range keys {
		seen[k] = struct{}{}
	}

	for _, opt := range authOptions() {
		if _, ok := seen[opt.Name()]; ok {
			continue
		}

		seen[opt.Name()] = struct{}{}
		keys = append(keys, opt.Name())
	}

	return keys
}

// EnvNames returns the environment variables read for key, highest precedence first.
// The Actions runner keeps hyphens in input names, so both spellings are accepted.
func EnvNames(key string) []string {
	upper := strings.ToUpper(key)
	underscored := strings.ReplaceAll(upper, "-", "_")
	names := []string{ActionInputPrefix + "_" + underscored}
	if underscored != upper {
		names = append(names, ActionInputPrefix+"_"+upper)
	}

	return append(names, EnvPrefix+"_"+underscored)
}

// Load resolves the configuration from flags, environment and an optional config file, in
// that order of precedence. fs must have been populated by RegisterFlags and parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for _, key := range Keys() {
		if err := v.BindEnv(append([]string{key}, EnvNames(key)...)...); err != nil {
			return nil, scan.ConfigurationError{Reason: fmt.Sprintf("could not bind environment for %v", key), Err: err}
		}
	}

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, scan.ConfigurationError{Reason: "could not bind flags", Err: err}
		}
	}

	setDefaults(v)
	if path := v.GetString(KeyConfig); path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, scan.ConfigurationError{Reason: fmt.Sprintf("could not expand config path %v", path), Err: err}
		}

		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			return nil, scan.ConfigurationError{Reason: fmt.Sprintf("could not read config file %v", expanded), Err: err}
		}

		log.Debugf("loaded config file %v", v.ConfigFileUsed())
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPullReport, true)
	v.SetDefault(KeyAuthType, authmode.NoneName)
	v.SetDefault(KeyStartEndpoint, string(scan.StartEndpointScan))
	v.SetDefault(KeyPollInterval, scan.DefaultPollInterval)
	v.SetDefault(KeyReportPath, DefaultReportPath)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
}

func fromViper(v *viper.Viper) (*Config, error) {
	c := &Config{
		WebhookID:        strings.TrimSpace(v.GetString(KeyWebhook)),
		SecretID:         strings.TrimSpace(v.GetString(KeySecretID)),
		SecretKey:        strings.TrimSpace(v.GetString(KeySecretKey)),
		Region:           strings.TrimSpace(v.GetString(KeyRegion)),
		PullReport:       parsePullReport(v.GetString(KeyPullReport)),
		AuthType:         authmode.Normalize(v.GetString(KeyAuthType)),
		StartEndpoint:    v.GetString(KeyStartEndpoint),
		ExtraHeaderName:  v.GetString(KeyExtraHeaderName),
		ExtraHeaderValue: v.GetString(KeyExtraHeaderValue),
		BaseURL:          v.GetString(KeyBaseURL),
		PollInterval:     v.GetDuration(KeyPollInterval),
		MaxPolls:         v.GetInt(KeyMaxPolls),
		Timeout:          v.GetDuration(KeyTimeout),
		LogLevel:         strings.ToLower(v.GetString(KeyLogLevel)),
		AuthOptions:      map[string]any{},
	}

	reportPath, err := homedir.Expand(v.GetString(KeyReportPath))
	if err != nil {
		return nil, scan.ConfigurationError{Reason: "could not expand report path", Err: err}
	}

	c.ReportPath = reportPath
	if entry, ok := authmode.Entry(c.AuthType); ok {
		for _, opt := range entry.Options {
			switch opt.(type) {
			case *registry.ConfigOption[scan.Authenticator, time.Duration]:
				c.AuthOptions[opt.Name()] = v.GetDuration(opt.Name())
			default:
				c.AuthOptions[opt.Name()] = strings.TrimSpace(v.GetString(opt.Name()))
			}
		}
	}

	return c, nil
}

// parsePullReport only turns the download off for an explicit false, so a blank input keeps
// the default behaviour.
func parsePullReport(s string) bool {
	return !strings.EqualFold(strings.TrimSpace(s), "false")
}

func authOptions() []registry.Configurer {
	opts := []registry.Configurer{}
	for _, entry := range authmode.RegistryEntries() {
		opts = append(opts, entry.Options...)
	}

	return opts
}

// Environ is swapped in tests.
var Environ = os.Environ

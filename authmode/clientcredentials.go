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

package authmode

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/in-toto/go-dast/log"
	"github.com/in-toto/go-dast/oauth"
	"github.com/in-toto/go-dast/registry"
	"github.com/in-toto/go-dast/scan"
)

const (
	ClientCredentialsName = "client-credentials"
	// DefaultTokenTimeout bounds the token exchange.
	DefaultTokenTimeout = 30 * time.Second
)

func init() {
	Register(ClientCredentialsName, func() scan.Authenticator { return NewClientCredentials() },
		registry.StringConfigOption(
			"client-id",
			"OAuth client id used to obtain the bearer token for the target application",
			"",
			func(a scan.Authenticator, v string) (scan.Authenticator, error) {
				cc, err := asClientCredentials(a)
				if err != nil {
					return a, err
				}

				WithClientID(v)(cc)
				return cc, nil
			},
		),
		registry.SensitiveStringConfigOption(
			"client-secret",
			"OAuth client secret",
			func(a scan.Authenticator, v string) (scan.Authenticator, error) {
				cc, err := asClientCredentials(a)
				if err != nil {
					return a, err
				}

				WithClientSecret(v)(cc)
				return cc, nil
			},
		),
		registry.StringConfigOption(
			"auth-url",
			"Authorization server address; the token endpoint is <auth-url>/token",
			"",
			func(a scan.Authenticator, v string) (scan.Authenticator, error) {
				cc, err := asClientCredentials(a)
				if err != nil {
					return a, err
				}

				WithAuthURL(v)(cc)
				return cc, nil
			},
		),
		registry.StringConfigOption(
			"auth-scope",
			"Scope requested in the token exchange",
			"",
			func(a scan.Authenticator, v string) (scan.Authenticator, error) {
				cc, err := asClientCredentials(a)
				if err != nil {
					return a, err
				}

				WithScope(v)(cc)
				return cc, nil
			},
		),
		registry.StringConfigOption(
			"veracode-target-id",
			"Target whose first analysis profile receives the header authentications",
			"",
			func(a scan.Authenticator, v string) (scan.Authenticator, error) {
				cc, err := asClientCredentials(a)
				if err != nil {
					return a, err
				}

				WithTargetID(v)(cc)
				return cc, nil
			},
		),
		registry.StringConfigOption(
			"system-account-name",
			"Header name identifying the scanning system account",
			"",
			func(a scan.Authenticator, v string) (scan.Authenticator, error) {
				cc, err := asClientCredentials(a)
				if err != nil {
					return a, err
				}

				cc.SystemAccount.Name = v
				return cc, nil
			},
		),
		registry.SensitiveStringConfigOption(
			"system-account",
			"Header value identifying the scanning system account",
			func(a scan.Authenticator, v string) (scan.Authenticator, error) {
				cc, err := asClientCredentials(a)
				if err != nil {
					return a, err
				}

				cc.SystemAccount.Value = v
				return cc, nil
			},
		),
		registry.DurationConfigOption(
			"token-timeout",
			"Maximum time to wait for the token endpoint. 0 waits as long as the run allows",
			DefaultTokenTimeout,
			func(a scan.Authenticator, v time.Duration) (scan.Authenticator, error) {
				cc, err := asClientCredentials(a)
				if err != nil {
					return a, err
				}

				if v < 0 {
					return a, fmt.Errorf("token-timeout must not be negative")
				}

				WithTokenTimeout(v)(cc)
				return cc, nil
			},
		),
	)
}

// ClientCredentials looks up the target's analysis profile, exchanges client credentials for
// a bearer token and pushes the token with the system account header to that profile.
type ClientCredentials struct {
	ClientID      string
	ClientSecret  string
	AuthURL       string
	Scope         string
	TargetID      string
	SystemAccount scan.SystemAccount
	TokenTimeout  time.Duration

	tokenHTTPClient *http.Client
}

type Option func(*ClientCredentials)

func WithClientID(id string) Option {
	return func(cc *ClientCredentials) {
		cc.ClientID = id
	}
}

func WithClientSecret(secret string) Option {
	return func(cc *ClientCredentials) {
		cc.ClientSecret = secret
	}
}

func WithAuthURL(u string) Option {
	return func(cc *ClientCredentials) {
		cc.AuthURL = u
	}
}

func WithScope(scope string) Option {
	return func(cc *ClientCredentials) {
		cc.Scope = scope
	}
}

func WithTargetID(id string) Option {
	return func(cc *ClientCredentials) {
		cc.TargetID = id
	}
}

func WithTokenTimeout(d time.Duration) Option {
	return func(cc *ClientCredentials) {
		cc.TokenTimeout = d
	}
}

// WithTokenHTTPClient sets the client used for the token exchange.
func WithTokenHTTPClient(c *http.Client) Option {
	return func(cc *ClientCredentials) {
		cc.tokenHTTPClient = c
	}
}

func NewClientCredentials(opts ...Option) *ClientCredentials {
	cc := &ClientCredentials{}
	for _, opt := range opts {
		opt(cc)
	}

	return cc
}

func (cc *ClientCredentials) Name() string {
	return ClientCredentialsName
}

// Validate reports every missing input at once.
func (cc *ClientCredentials) Validate() error {
	missing := []string{}
	for _, f := range []struct {
		name  string
		value string
	}{
		{"client id", cc.ClientID},
		{"client secret", cc.ClientSecret},
		{"auth url", cc.AuthURL},
		{"auth scope", cc.Scope},
		{"target id", cc.TargetID},
		{"system account name", cc.SystemAccount.Name},
		{"system account", cc.SystemAccount.Value},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}

	if len(missing) > 0 {
		return scan.MissingInputs("the client credentials auth type", missing...)
	}

	return nil
}

func (cc *ClientCredentials) Authenticate(ctx context.Context, o *scan.Orchestrator) error {
	profileID, err := o.Client().AnalysisProfileID(ctx, cc.TargetID)
	if err != nil {
		return fmt.Errorf("could not get analysis profile: %w", err)
	}

	log.Debugf("found analysis profile %v for target %v", profileID, cc.TargetID)
	exchanger := oauth.New(cc.ClientID, cc.ClientSecret, cc.AuthURL, cc.Scope, oauth.WithHTTPClient(cc.tokenHTTPClient))
	tokenCtx := ctx
	if cc.TokenTimeout > 0 {
		var cancel context.CancelFunc
		tokenCtx, cancel = context.WithTimeout(ctx, cc.TokenTimeout)
		defer cancel()
	}

	token, err := exchanger.Token(tokenCtx)
	if err != nil {
		return scan.TransportError{Op: "get token", Err: err}
	}

	return o.ConfigureAuthentication(ctx, profileID, token, cc.SystemAccount)
}

func asClientCredentials(a scan.Authenticator) (*ClientCredentials, error) {
	cc, ok := a.(*ClientCredentials)
	if !ok {
		return nil, fmt.Errorf("provided auth mode is not a client credentials auth mode")
	}

	return cc, nil
}

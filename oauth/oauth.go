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

package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/in-toto/go-dast/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Exchanger trades a client id and secret for a bearer token using the client credentials grant.
type Exchanger struct {
	ClientID     string
	ClientSecret string
	// AuthURL is the authorization server's base address. "/token" is appended to it and
	// https is assumed when no scheme is given.
	AuthURL    string
	Scope      string
	httpClient *http.Client
}

type Option func(*Exchanger)

// WithHTTPClient sets the client used to reach the token endpoint.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Exchanger) {
		e.httpClient = c
	}
}

func New(clientID, clientSecret, authURL, scope string, opts ...Option) *Exchanger {
	e := &Exchanger{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AuthURL:      authURL,
		Scope:        scope,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(e)
	}

	return e
}

// TokenURL returns the token endpoint derived from AuthURL.
func (e *Exchanger) TokenURL() string {
	base := strings.TrimSuffix(e.AuthURL, "/")
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}

	return base + "/token"
}

// Token performs the exchange and returns the raw access token.
func (e *Exchanger) Token(ctx context.Context) (string, error) {
	if e.ClientID == "" || e.ClientSecret == "" || e.AuthURL == "" {
		return "", fmt.Errorf("client id, client secret and auth url are required for a token exchange")
	}

	cfg := clientcredentials.Config{
		ClientID:     e.ClientID,
		ClientSecret: e.ClientSecret,
		TokenURL:     e.TokenURL(),
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	if e.Scope != "" {
		cfg.Scopes = []string{e.Scope}
	}

	if e.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	}

	log.Debugf("requesting access token from %v", cfg.TokenURL)
	tok, err := cfg.Token(ctx)
	if err != nil {
		retrieveErr := &oauth2.RetrieveError{}
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return "", fmt.Errorf("token endpoint returned %v: %w", retrieveErr.Response.Status, err)
		}

		return "", fmt.Errorf("could not get token: %w", err)
	}

	if tok.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned an empty access token")
	}

	return tok.AccessToken, nil
}

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

package signer

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"time"
)

const (
	// AuthorizationScheme prefixes every Authorization header value.
	AuthorizationScheme = "VERACODE-HMAC-SHA-256"
	NonceSize           = 16
)

type ErrInvalidIdentity struct {
	Reason string
}

func (e ErrInvalidIdentity) Error() string {
	return fmt.Sprintf("invalid api identity: %v", e.Reason)
}

// Identity is the long lived API credential pair. Key is the hex encoded secret.
type Identity struct {
	ID  string
	Key string
}

// Validate checks that both halves of the identity are present and that the key decodes.
func (i Identity) Validate() error {
	if i.ID == "" {
		return ErrInvalidIdentity{Reason: "api id is required"}
	}

	if i.Key == "" {
		return ErrInvalidIdentity{Reason: "api key is required"}
	}

	if _, err := hex.DecodeString(i.Key); err != nil {
		return ErrInvalidIdentity{Reason: "api key is not valid hex"}
	}

	return nil
}

// String never renders the key.
func (i Identity) String() string {
	return fmt.Sprintf("Identity{ID: %s, Key: ******}", i.ID)
}

func (i Identity) GoString() string {
	return i.String()
}

// SignedRequest holds everything that went into one Authorization header. A SignedRequest
// must only be sent once.
type SignedRequest struct {
	Method    string
	Host      string
	Path      string
	Timestamp int64
	Nonce     [NonceSize]byte
	Signature [32]byte
}

// Authorization renders the header value for the request.
func (r SignedRequest) Authorization(id string) string {
	return fmt.Sprintf("%s id=%s,ts=%s,nonce=%s,sig=%s",
		AuthorizationScheme,
		id,
		strconv.FormatInt(r.Timestamp, 10),
		hex.EncodeToString(r.Nonce[:]),
		hex.EncodeToString(r.Signature[:]),
	)
}

type Signer struct {
	identity Identity
	key      []byte
	now      func() time.Time
	random   io.Reader
}

type Option func(*Signer)

// WithClock replaces the source of request timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRandom replaces the source of request nonces.
func WithRandom(r io.Reader) Option {
	return func(s *Signer) {
		if r != nil {
			s.random = r
		}
	}
}

// New validates identity and returns a Signer for it.
func New(identity Identity, opts ...Option) (*Signer, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	key, err := hex.DecodeString(identity.Key)
	if err != nil {
		return nil, ErrInvalidIdentity{Reason: "api key is not valid hex"}
	}

	s := &Signer{
		identity: identity,
		key:      key,
		now:      time.Now,
		random:   rand.Reader,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(s)
	}

	return s, nil
}

// ID returns the identity's public half.
func (s *Signer) ID() string {
	return s.identity.ID
}

// Sign produces a fresh SignedRequest with a new timestamp and nonce.
func (s *Signer) Sign(method, host, path string) (SignedRequest, error) {
	req := SignedRequest{
		Method:    method,
		Host:      host,
		Path:      path,
		Timestamp: s.now().UnixMilli(),
	}

	if _, err := io.ReadFull(s.random, req.Nonce[:]); err != nil {
		return SignedRequest{}, fmt.Errorf("could not generate request nonce: %w", err)
	}

	data := CanonicalData(s.identity.ID, host, path, method)
	sig := Signature(s.key, req.Nonce[:], strconv.FormatInt(req.Timestamp, 10), data)
	copy(req.Signature[:], sig)
	return req, nil
}

// Authorization signs the request and renders its header value in one step.
func (s *Signer) Authorization(method, host, path string) (string, error) {
	req, err := s.Sign(method, host, path)
	if err != nil {
		return "", err
	}

	return req.Authorization(s.identity.ID), nil
}

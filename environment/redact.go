// Copyright 2024 The Witness Contributors
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

package environment

import (
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/in-toto/go-dast/log"
)

const Mask = "******"

// DefaultSensitiveKeys lists the inputs that are always masked. Entries containing * are globs.
// Matching is case insensitive and treats _ and - alike.
func DefaultSensitiveKeys() map[string]struct{} {
	return map[string]struct{}{
		"veracode-secret-id-key": {},
		"client-secret":          {},
		"system-account":         {},
		"*secret*":               {},
		"*password*":             {},
		"*token*":                {},
		"*-key":                  {},
	}
}

type Redactor struct {
	sensitive map[string]struct{}
	exclude   map[string]struct{}
	prefixes  []string
	globs     []glob.Glob
}

type Option func(*Redactor)

// WithAdditionalKeys adds names or globs to the sensitive list.
func WithAdditionalKeys(keys []string) Option {
	return func(r *Redactor) {
		for _, k := range keys {
			r.sensitive[normalizeKey(k)] = struct{}{}
		}
	}
}

// WithExcludeKeys keeps the named keys visible even when they match a sensitive pattern.
func WithExcludeKeys(keys []string) Option {
	return func(r *Redactor) {
		for _, k := range keys {
			r.exclude[normalizeKey(k)] = struct{}{}
		}
	}
}

// WithEnvPrefixes strips prefixes such as INPUT_ from variable names before they are compared
// with the sensitive and excluded keys.
func WithEnvPrefixes(prefixes ...string) Option {
	return func(r *Redactor) {
		for _, p := range prefixes {
			r.prefixes = append(r.prefixes, normalizeKey(p))
		}
	}
}

func New(opts ...Option) *Redactor {
	r := &Redactor{
		sensitive: DefaultSensitiveKeys(),
		exclude:   map[string]struct{}{},
	}

	for _, opt := range opts {
		opt(r)
	}

	for k := range r.sensitive {
		if !strings.Contains(k, "*") {
			continue
		}

		g, err := glob.Compile(k)
		if err != nil {
			log.Errorf("sensitive key pattern %v could not be interpreted: %w", k, err)
			continue
		}

		r.globs = append(r.globs, g)
	}

	return r
}

// IsSensitive reports whether values stored under key must be masked.
func (r *Redactor) IsSensitive(key string) bool {
	k := r.trimPrefix(normalizeKey(key))
	if _, ok := r.exclude[k]; ok {
		return false
	}

	if _, ok := r.sensitive[k]; ok {
		return true
	}

	for _, g := range r.globs {
		if g.Match(k) {
			return true
		}
	}

	return false
}

// Redact returns a copy of values with every sensitive, non empty value masked.
func (r *Redactor) Redact(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		if r.IsSensitive(k) && !isEmpty(v) {
			out[k] = Mask
			continue
		}

		out[k] = v
	}

	return out
}

// RedactEnvironment takes KEY=VALUE pairs and returns those whose key starts with one of the
// prefixes, masked. Keys are returned as given.
func (r *Redactor) RedactEnvironment(env []string, prefixes ...string) map[string]string {
	out := map[string]string{}
	for _, v := range env {
		key, val := splitVariable(v)
		if !hasAnyPrefix(key, prefixes) {
			continue
		}

		if r.IsSensitive(key) && val != "" {
			val = Mask
		}

		out[key] = val
	}

	return out
}

// SortedKeys is a helper for stable log output.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)
	return keys
}

func (r *Redactor) trimPrefix(k string) string {
	for _, p := range r.prefixes {
		if p != "" && strings.HasPrefix(k, p) {
			return strings.TrimPrefix(k, p)
		}
	}

	return k
}

func normalizeKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(k)), "_", "-")
}

func hasAnyPrefix(key string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}

	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}

	return false
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}

	s, ok := v.(string)
	return ok && s == ""
}

// splitVariable splits "KEY=VAL" into its key and value.
func splitVariable(v string) (key, val string) {
	parts := strings.SplitN(v, "=", 2)
	key = parts[0]
	if len(parts) > 1 {
		val = parts[1]
	}

	return
}

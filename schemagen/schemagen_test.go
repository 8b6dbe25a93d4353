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

package schemagen

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/in-toto/go-dast/authmode"
	"github.com/in-toto/go-dast/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func TestConfigSchema(t *testing.T) {
	s := ConfigSchema()
	for _, key := range []string{config.KeyWebhook, config.KeySecretKey, config.KeyPullReport, config.KeyPollInterval} {
		_, ok := s.Properties.Get(key)
		assert.True(t, ok, key)
	}

	_, ok := s.Properties.Get("AuthOptions")
	assert.False(t, ok)

	poll, _ := s.Properties.Get(config.KeyPollInterval)
	assert.Equal(t, "string", poll.Type)
}

func TestParameterAuthenticationsSchema(t *testing.T) {
	s := ParameterAuthenticationsSchema()
	assert.Equal(t, "array", s.Type)
	require.NotNil(t, s.Items)
	for _, key := range []string{"title", "key", "value", "type"} {
		_, ok := s.Items.Properties.Get(key)
		assert.True(t, ok, key)
	}

	typ, _ := s.Items.Properties.Get("type")
	assert.Equal(t, "HTTP_HEADER", typ.Const)
	assert.Contains(t, s.Items.Required, "type")

	raw, err := s.MarshalJSON()
	require.NoError(t, err)
	doc := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "array", doc["type"])
	assert.Equal(t, "analysis profile parameter authentications", doc["title"])
}

func TestAuthModeSchema(t *testing.T) {
	entry, ok := authmode.Entry(authmode.ClientCredentialsName)
	require.True(t, ok)

	s := AuthModeSchema(entry)
	secret, ok := s.Properties.Get("client-secret")
	require.True(t, ok)
	assert.True(t, secret.WriteOnly)
	assert.Equal(t, "string", secret.Type)

	id, ok := s.Properties.Get("client-id")
	require.True(t, ok)
	assert.False(t, id.WriteOnly)
	assert.Contains(t, s.Required, "system-account-name")

	timeout, ok := s.Properties.Get("token-timeout")
	require.True(t, ok)
	assert.Equal(t, "string", timeout.Type)
	assert.Equal(t, authmode.DefaultTokenTimeout.String(), timeout.Default)
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	paths, err := WriteAll(dir, FormatJSON)
	require.NoError(t, err)
	assert.Len(t, paths, len(Documents()))
	assert.FileExists(t, filepath.Join(dir, "config.json"))
	assert.FileExists(t, filepath.Join(dir, "auth-mode-client-credentials.json"))
	assert.FileExists(t, filepath.Join(dir, "auth-mode-none.json"))
	assert.FileExists(t, filepath.Join(dir, "parameter-authentications.json"))

	raw, err := os.ReadFile(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	doc := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "dast-scan configuration", doc["title"])
}

func TestRenderYAML(t *testing.T) {
	out, err := Render(ParameterAuthenticationsSchema(), FormatYAML)
	require.NoError(t, err)

	doc := map[string]any{}
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, "array", doc["type"])
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := Render(ConfigSchema(), "toml")
	require.Error(t, err)
}

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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/in-toto/go-dast/authmode"
	"github.com/in-toto/go-dast/config"
	"github.com/in-toto/go-dast/registry"
	"github.com/in-toto/go-dast/scan"
	"github.com/invopop/jsonschema"
	"go.yaml.in/yaml/v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Document is one generated schema and the file name it is written under, without extension.
type Document struct {
	Name   string
	Schema *jsonschema.Schema
}

func reflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
}

// ConfigSchema describes the config file and the keys shared by flags and environment.
func ConfigSchema() *jsonschema.Schema {
	s := reflector().Reflect(&config.Config{})
	s.ID = "https://github.com/in-toto/go-dast/config"
	s.Title = "dast-scan configuration"
	s.Description = "Inputs accepted from flags, environment variables and the config file"
	return s
}

// ParameterAuthenticationsSchema describes the header authentications pushed to an analysis
// profile. ExpandedStruct only applies to structs, so the array is built around the reflected item.
func ParameterAuthenticationsSchema() *jsonschema.Schema {
	item := reflector().Reflect(&scan.HeaderAuthorization{})
	item.Version = ""
	item.ID = ""
	item.Definitions = nil
	item.Properties.Set("type", &jsonschema.Schema{
		Type:  "string",
		Const: "HTTP_HEADER",
	})
	item.Required = append(item.Required, "type")

	return &jsonschema.Schema{
		Version: jsonschema.Version,
		ID:      "https://github.com/in-toto/go-dast/parameter-authentications",
		Title:   "analysis profile parameter authentications",
		Type:    "array",
		Items:   item,
	}
}

// AuthModeSchema builds a schema from the options an auth mode registered.
func AuthModeSchema(entry registry.Entry[scan.Authenticator]) *jsonschema.Schema {
	s := &jsonschema.Schema{
		ID:                   jsonschema.ID("https://github.com/in-toto/go-dast/auth-mode/" + entry.Name),
		Title:                entry.Name + " auth mode",
		Type:                 "object",
		Properties:           jsonschema.NewProperties(),
		AdditionalProperties: jsonschema.FalseSchema,
	}

	for _, opt := range entry.Options {
		prop := &jsonschema.Schema{
			Description: opt.Description(),
			WriteOnly:   opt.Sensitive(),
		}

		switch o := opt.(type) {
		case *registry.ConfigOption[scan.Authenticator, string]:
			prop.Type = "string"
			if o.DefaultVal() != "" {
				prop.Default = o.DefaultVal()
			}
		case *registry.ConfigOption[scan.Authenticator, time.Duration]:
			prop.Type = "string"
			prop.Default = o.DefaultVal().String()
		}

		s.Properties.Set(opt.Name(), prop)
		s.Required = append(s.Required, opt.Name())
	}

	return s
}

// Documents returns every schema this module publishes.
func Documents() []Document {
	docs := []Document{
		{Name: "config", Schema: ConfigSchema()},
		{Name: "parameter-authentications", Schema: ParameterAuthenticationsSchema()},
	}

	for _, entry := range authmode.RegistryEntries() {
		docs = append(docs, Document{Name: "auth-mode-" + entry.Name, Schema: AuthModeSchema(entry)})
	}

	return docs
}

// Render encodes a schema as indented JSON or as YAML.
func Render(s *jsonschema.Schema, format string) ([]byte, error) {
	raw, err := s.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("could not marshal schema: %w", err)
	}

	switch format {
	case FormatJSON, "":
		var indented bytes.Buffer
		if err := json.Indent(&indented, raw, "", "  "); err != nil {
			return nil, fmt.Errorf("could not indent schema: %w", err)
		}

		indented.WriteByte('\n')
		return indented.Bytes(), nil
	case FormatYAML:
		var node yaml.Node
		if err := yaml.Unmarshal(raw, &node); err != nil {
			return nil, fmt.Errorf("could not convert schema to yaml: %w", err)
		}

		return yaml.Marshal(&node)
	default:
		return nil, fmt.Errorf("unknown schema format %q", format)
	}
}

// WriteAll renders every document into dir and returns the paths written.
func WriteAll(dir, format string) ([]string, error) {
	if format == "" {
		format = FormatJSON
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create schema directory: %w", err)
	}

	paths := []string{}
	for _, doc := range Documents() {
		out, err := Render(doc.Schema, format)
		if err != nil {
			return paths, fmt.Errorf("could not render %v: %w", doc.Name, err)
		}

		path := filepath.Join(dir, doc.Name+"."+format)
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return paths, fmt.Errorf("could not write %v: %w", path, err)
		}

		paths = append(paths, path)
	}

	return paths, nil
}

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
	"fmt"
	"strings"

	"github.com/in-toto/go-dast/registry"
	"github.com/in-toto/go-dast/scan"
)

var authModeRegistry = registry.New[scan.Authenticator]()

// Register makes an auth mode available by name along with the options it accepts.
func Register(name string, factory registry.FactoryFunc[scan.Authenticator], opts ...registry.Configurer) {
	authModeRegistry.Register(name, factory, opts...)
}

func RegistryEntries() []registry.Entry[scan.Authenticator] {
	return authModeRegistry.AllEntries()
}

func Entry(name string) (registry.Entry[scan.Authenticator], bool) {
	return authModeRegistry.Entry(Normalize(name))
}

// Normalize accepts the action's spelling (CLIENT_CREDENTIALS) as well as the flag spelling
// (client-credentials). An empty name selects None.
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "_", "-")
	if n == "" {
		return NoneName
	}

	return n
}

// New builds the named auth mode from configMap. Unknown names are a configuration error.
func New(name string, configMap map[string]any) (scan.Authenticator, error) {
	n := Normalize(name)
	if _, ok := authModeRegistry.Entry(n); !ok {
		return nil, scan.ConfigurationError{Reason: fmt.Sprintf("unknown auth type %q", name)}
	}

	a, err := authModeRegistry.NewEntityFromConfigMap(n, configMap)
	if err != nil {
		return nil, scan.ConfigurationError{Reason: fmt.Sprintf("could not configure auth type %v", n), Err: err}
	}

	return a, nil
}

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

package registry

import "time"

type Option interface {
	string | time.Duration
}

// Configurer is implemented by every ConfigOption regardless of its value type.
type Configurer interface {
	Name() string
	Description() string
	// Sensitive options must never be logged or echoed back.
	Sensitive() bool
}

type ConfigOption[T any, TOption Option] struct {
	name        string
	description string
	defaultVal  TOption
	sensitive   bool
	setter      func(T, TOption) (T, error)
}

func (co ConfigOption[T, TOption]) Name() string {
	return co.name
}

func (co ConfigOption[T, TOption]) Description() string {
	return co.description
}

func (co ConfigOption[T, TOption]) DefaultVal() TOption {
	return co.defaultVal
}

func (co ConfigOption[T, TOption]) Sensitive() bool {
	return co.sensitive
}

func (co ConfigOption[T, TOption]) Setter() func(T, TOption) (T, error) {
	return co.setter
}

func StringConfigOption[T any](name, description string, defaultVal string, setter func(T, string) (T, error)) *ConfigOption[T, string] {
	return &ConfigOption[T, string]{
		name:        name,
		description: description,
		defaultVal:  defaultVal,
		setter:      setter,
	}
}

// SensitiveStringConfigOption is a StringConfigOption whose value is a secret.
func SensitiveStringConfigOption[T any](name, description string, setter func(T, string) (T, error)) *ConfigOption[T, string] {
	return &ConfigOption[T, string]{
		name:        name,
		description: description,
		sensitive:   true,
		setter:      setter,
	}
}

func DurationConfigOption[T any](name, description string, defaultVal time.Duration, setter func(T, time.Duration) (T, error)) *ConfigOption[T, time.Duration] {
	return &ConfigOption[T, time.Duration]{
		name:        name,
		description: description,
		defaultVal:  defaultVal,
		setter:      setter,
	}
}

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

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	label string
	wait  time.Duration
}

func newWidgetRegistry() Registry[*widget] {
	reg := New[*widget]()
	reg.Register("widget", func() *widget { return &widget{} },
		StringConfigOption("label", "label to use", "default-label", func(w *widget, v string) (*widget, error) {
			w.label = v
			return w, nil
		}),
		DurationConfigOption("wait", "time to wait", time.Second, func(w *widget, v time.Duration) (*widget, error) {
			if v < 0 {
				return w, errors.New("wait must not be negative")
			}
			w.wait = v
			return w, nil
		}),
	)

	return reg
}

func TestNewEntityDefaults(t *testing.T) {
	reg := newWidgetRegistry()
	w, err := reg.NewEntityFromConfigMap("widget", nil)
	require.NoError(t, err)
	assert.Equal(t, &widget{label: "default-label", wait: time.Second}, w)

	_, err = reg.NewEntityFromConfigMap("gadget", nil)
	assert.Error(t, err)
}

func TestNewEntityFromConfigMap(t *testing.T) {
	reg := newWidgetRegistry()
	w, err := reg.NewEntityFromConfigMap("widget", map[string]any{
		"label":   "custom",
		"wait":    2 * time.Minute,
		"unknown": "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, &widget{label: "custom", wait: 2 * time.Minute}, w)
}

func TestNewEntityFromConfigMapErrors(t *testing.T) {
	reg := newWidgetRegistry()
	_, err := reg.NewEntityFromConfigMap("widget", map[string]any{"wait": "5s"})
	assert.ErrorContains(t, err, "to be a duration")

	_, err = reg.NewEntityFromConfigMap("widget", map[string]any{"label": 5})
	assert.ErrorContains(t, err, "to be a string")

	_, err = reg.NewEntityFromConfigMap("widget", map[string]any{"wait": -time.Second})
	assert.ErrorContains(t, err, "must not be negative")
}

func TestAllEntriesSorted(t *testing.T) {
	reg := New[*widget]()
	reg.Register("b", func() *widget { return &widget{} })
	reg.Register("a", func() *widget { return &widget{} })

	entries := reg.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Name)
	assert.Equal(t, "b", entries[1].Name)
}

func TestSensitiveOption(t *testing.T) {
	opt := SensitiveStringConfigOption("secret", "a secret", func(w *widget, v string) (*widget, error) { return w, nil })
	assert.True(t, opt.Sensitive())
	assert.Equal(t, "", opt.DefaultVal())
}

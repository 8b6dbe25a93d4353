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

package scan

import (
	"fmt"
	"strings"
	"time"
)

// ConfigurationError means a required input was missing or malformed. It is always
// returned before any request is sent.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %v: %v", e.Reason, e.Err)
	}

	return fmt.Sprintf("configuration error: %v", e.Reason)
}

func (e ConfigurationError) Unwrap() error {
	return e.Err
}

// MissingInputs builds a ConfigurationError naming every absent input.
func MissingInputs(context string, names ...string) ConfigurationError {
	return ConfigurationError{
		Reason: fmt.Sprintf("%v requires %v", context, strings.Join(names, ", ")),
	}
}

// TransportError covers network failures and non 2xx responses.
type TransportError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%v failed: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%v failed with status %d: %v", e.Op, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%v failed with status %d", e.Op, e.StatusCode)
	}
}

func (e TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError is a well formed response that lacks a field the run depends on.
type ProtocolError struct {
	Op    string
	Field string
	Err   error
}

func (e ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: could not read %v from response: %v", e.Op, e.Field, e.Err)
	}

	return fmt.Sprintf("%v: response did not contain %v", e.Op, e.Field)
}

func (e ProtocolError) Unwrap() error {
	return e.Err
}

// IOError is a failure persisting the report. The scan outcome is already decided when
// one of these is returned.
type IOError struct {
	Path string
	Err  error
}

func (e IOError) Error() string {
	return fmt.Sprintf("could not write report to %v: %v", e.Path, e.Err)
}

func (e IOError) Unwrap() error {
	return e.Err
}

// TimeoutError is returned when polling hits the configured poll or time ceiling while the
// scan is still queued or running.
type TimeoutError struct {
	ScanID     string
	Polls      int
	Elapsed    time.Duration
	LastStatus int
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("scan %v still had status %d after %d polls (%v)", e.ScanID, e.LastStatus, e.Polls, e.Elapsed.Round(time.Second))
}

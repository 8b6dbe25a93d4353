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

	"github.com/in-toto/go-dast/scan"
)

const NoneName = "none"

func init() {
	Register(NoneName, func() scan.Authenticator { return None{} })
}

// None leaves the analysis profile untouched.
type None struct{}

func (None) Name() string {
	return NoneName
}

func (None) Validate() error {
	return nil
}

func (None) Authenticate(context.Context, *scan.Orchestrator) error {
	return nil
}

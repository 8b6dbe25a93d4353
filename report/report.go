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

package report

import (
	"os"
	"path/filepath"

	"github.com/in-toto/go-dast/log"
	"github.com/in-toto/go-dast/scan"
)

// Write stores the report bytes at path exactly as received, creating parent directories.
// Failures are returned as scan.IOError.
func Write(path string, report []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return scan.IOError{Path: path, Err: err}
		}
	}

	if err := os.WriteFile(path, report, 0o644); err != nil {
		return scan.IOError{Path: path, Err: err}
	}

	log.Infof("The scan report was written to %v", path)
	return nil
}

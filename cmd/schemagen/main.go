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

package main

import (
	"flag"
	"log"

	"github.com/in-toto/go-dast/schemagen"
)

var (
	directory string
	format    string
)

func init() {
	flag.StringVar(&directory, "dir", "schemas", "Directory to store the generated schemas")
	flag.StringVar(&format, "format", schemagen.FormatJSON, "Output format, json or yaml")
	flag.Parse()
}

func main() {
	paths, err := schemagen.WriteAll(directory, format)
	if err != nil {
		log.Fatal(err)
	}

	for _, p := range paths {
		log.Printf("Wrote schema %s", p)
	}
}

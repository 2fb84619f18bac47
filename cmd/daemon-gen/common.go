// Copyright 2015 Google Inc. All rights reserved
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
	"fmt"
	"os"
	"path/filepath"

	"github.com/daemoncli/daemon-gen/internal/diag"
	"github.com/daemoncli/daemon-gen/internal/pipeline"
	"github.com/daemoncli/daemon-gen/internal/profile"
)

// loadProfile reads and parses the profile file at path. This and
// readSources below read the CLI's inputs; generate.go writes (and, with
// --diff, re-reads) the output files. The core pipeline never touches a
// filesystem: it is pure data-in/data-out (spec §5, §6).
func loadProfile(path string) (profile.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("daemon-gen: %w", err)
	}
	prof, err := profile.Parse(data)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("daemon-gen: %w", err)
	}
	return prof, nil
}

// readSources reads every source file a profile lists, resolved
// relative to the profile file's own directory, and returns them as
// pipeline.Source values.
func readSources(profilePath string, relPaths []string) ([]pipeline.Source, error) {
	base := filepath.Dir(profilePath)
	sources := make([]pipeline.Source, 0, len(relPaths))
	for _, rel := range relPaths {
		full := filepath.Join(base, rel)
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("daemon-gen: reading source %s: %w", full, err)
		}
		sources = append(sources, pipeline.Source{Path: rel, Text: string(data)})
	}
	return sources, nil
}

// reportDiagnostics prints every accumulated diagnostic to stderr, one
// per line, in the order they were recorded.
func reportDiagnostics(diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.Error())
	}
}

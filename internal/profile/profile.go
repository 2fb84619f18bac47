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

// Package profile loads the collaborator-supplied profile descriptor
// (spec §6): device identity, source file list, and output directory.
// This is ambient tooling around the core, not part of the pipeline
// itself — the core never opens files (spec §6), so Profile is only
// ever consumed by the CLI driver.
package profile

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Profile is one buildable device image: a device identity plus the
// set of source files that make it up (GLOSSARY: Profile).
type Profile struct {
	Device struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
		NodeID  string `yaml:"node_id"`
	} `yaml:"device"`
	Sources   []string `yaml:"sources"`
	OutputDir string   `yaml:"output_dir"`
}

// Parse decodes a profile document. Validation is intentionally
// minimal: the pipeline's own diagnostics catch anything that matters
// about the sources themselves.
func Parse(data []byte) (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("profile: %w", err)
	}
	if p.Device.Name == "" {
		return Profile{}, fmt.Errorf("profile: device.name is required")
	}
	if len(p.Sources) == 0 {
		return Profile{}, fmt.Errorf("profile: at least one source file is required")
	}
	if p.OutputDir == "" {
		p.OutputDir = "generated"
	}
	return p, nil
}

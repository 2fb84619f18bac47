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

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/daemoncli/daemon-gen/internal/diag"
	"github.com/daemoncli/daemon-gen/internal/manifest"
	"github.com/daemoncli/daemon-gen/internal/pipeline"
)

func newGenerateCmd() *cobra.Command {
	var profilePath string
	var showDiff bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the full pipeline and write the emitted dispatch and runtime files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(profilePath, showDiff)
		},
	}
	cmd.Flags().StringVar(&profilePath, "profile", "", "path to the profile YAML file")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "show a diff against existing generated files instead of only overwriting")
	cmd.MarkFlagRequired("profile")
	return cmd
}

func runGenerate(profilePath string, showDiff bool) error {
	prof, err := loadProfile(profilePath)
	if err != nil {
		return err
	}
	sources, err := readSources(profilePath, prof.Sources)
	if err != nil {
		return err
	}

	device := manifest.Device{
		Name:    prof.Device.Name,
		Version: prof.Device.Version,
		NodeID:  prof.Device.NodeID,
	}
	result := pipeline.Run(prof.Device.Name, device, sources)
	reportDiagnostics(result.Diagnostics)
	if result.HasErrors() {
		return fmt.Errorf("daemon-gen: generation aborted: %d error(s)", countErrors(result.Diagnostics))
	}

	outDir := filepath.Join(filepath.Dir(profilePath), prof.OutputDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("daemon-gen: %w", err)
	}

	for _, f := range result.Files {
		path := filepath.Join(outDir, f.Name)
		if showDiff {
			if err := printDiff(path, f.Bytes); err != nil {
				return err
			}
		}
		if err := os.WriteFile(path, f.Bytes, 0o644); err != nil {
			return fmt.Errorf("daemon-gen: writing %s: %w", path, err)
		}
		logAlways("wrote %s", path)
	}
	return nil
}

// printDiff shows what would change in an existing generated file,
// using go-diff. It prints nothing when the file does not exist yet or
// is unchanged; the caller writes the new content afterwards either way.
func printDiff(path string, newContent []byte) error {
	old, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("daemon-gen: reading %s: %w", path, err)
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(old), string(newContent), false)
	if len(diffs) == 1 && diffs[0].Type == diffmatchpatch.DiffEqual {
		return nil
	}
	logAlways("%s would change:", path)
	fmt.Println(dmp.DiffPrettyText(diffs))
	return nil
}

func countErrors(diags []diag.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == diag.SeverityError {
			n++
		}
	}
	return n
}

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

	"github.com/spf13/cobra"

	"github.com/daemoncli/daemon-gen/internal/manifest"
	"github.com/daemoncli/daemon-gen/internal/pipeline"
)

// newLintCmd runs the full pipeline in memory and reports diagnostics
// without writing any file, for iterating on annotations without
// regenerating C files. It does not stop after the Catalog Builder: the
// manifest and C text are still produced in memory and then discarded.
func newLintCmd() *cobra.Command {
	var profilePath string
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Validate annotations and the catalog without emitting files",
		RunE: func(cmd *cobra.Command, args []string) error {
			prof, err := loadProfile(profilePath)
			if err != nil {
				return err
			}
			sources, err := readSources(profilePath, prof.Sources)
			if err != nil {
				return err
			}
			device := manifest.Device{Name: prof.Device.Name, Version: prof.Device.Version, NodeID: prof.Device.NodeID}
			result := pipeline.Run(prof.Device.Name, device, sources)
			reportDiagnostics(result.Diagnostics)
			if result.HasErrors() {
				return fmt.Errorf("daemon-gen: lint found %d error(s)", countErrors(result.Diagnostics))
			}
			logAlways("%d command(s) validated", len(result.Catalog.Commands))
			return nil
		},
	}
	cmd.Flags().StringVar(&profilePath, "profile", "", "path to the profile YAML file")
	cmd.MarkFlagRequired("profile")
	return cmd
}

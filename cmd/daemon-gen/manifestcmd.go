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

	daemonmanifest "github.com/daemoncli/daemon-gen/internal/manifest"
	"github.com/daemoncli/daemon-gen/internal/pipeline"
)

// newManifestCmd runs the full pipeline and prints the synthesized
// manifest JSON to stdout without writing any C files, for inspecting
// what READ_MANIFEST will return.
func newManifestCmd() *cobra.Command {
	var profilePath string
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Print the synthesized device manifest as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			prof, err := loadProfile(profilePath)
			if err != nil {
				return err
			}
			sources, err := readSources(profilePath, prof.Sources)
			if err != nil {
				return err
			}
			device := daemonmanifest.Device{Name: prof.Device.Name, Version: prof.Device.Version, NodeID: prof.Device.NodeID}
			result := pipeline.Run(prof.Device.Name, device, sources)
			reportDiagnostics(result.Diagnostics)
			if result.HasErrors() {
				return fmt.Errorf("daemon-gen: manifest not produced: %d error(s)", countErrors(result.Diagnostics))
			}
			if err := daemonmanifest.ValidateJSON(result.ManifestJSON); err != nil {
				return fmt.Errorf("daemon-gen: %w", err)
			}
			fmt.Println(string(result.ManifestJSON))
			return nil
		},
	}
	cmd.Flags().StringVar(&profilePath, "profile", "", "path to the profile YAML file")
	cmd.MarkFlagRequired("profile")
	return cmd
}

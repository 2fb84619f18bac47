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

// Command daemon-gen is the host-side CLI collaborator sketched in
// spec §6: it reads a profile, feeds its source files through the
// core pipeline, and writes out the emitted dispatch and runtime
// files. The core itself never touches a filesystem.
package main

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "daemon-gen",
	Short: "Annotation-driven command daemon generator for embedded firmware",
	Long: `daemon-gen scans annotated C firmware sources, builds a device
command catalog, and emits a matching dispatch entry and runtime that
implement the daemon's line-oriented command protocol.`,
}

func init() {
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newLintCmd())
	rootCmd.AddCommand(newManifestCmd())
}

func main() {
	defer glog.Flush()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

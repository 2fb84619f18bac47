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

import "fmt"

// logAlways prints an always-on progress line, independent of -v
// verbosity. Diagnostic-level tracing inside the pipeline uses glog.V
// instead; this is only for the handful of top-level "what did the CLI
// just do" lines.
func logAlways(f string, a ...interface{}) {
	fmt.Printf("*daemon-gen*: "+f+"\n", a...)
}

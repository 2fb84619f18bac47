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

package profile

import "testing"

func TestParseOK(t *testing.T) {
	doc := []byte(`
device:
  name: rover
  version: "1.0"
  node_id: n1
sources:
  - rover.c
output_dir: out
`)
	p, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Device.Name != "rover" || len(p.Sources) != 1 || p.OutputDir != "out" {
		t.Errorf("profile = %+v", p)
	}
}

func TestParseDefaultsOutputDir(t *testing.T) {
	doc := []byte(`
device:
  name: rover
sources:
  - rover.c
`)
	p, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.OutputDir != "generated" {
		t.Errorf("OutputDir = %q, want default %q", p.OutputDir, "generated")
	}
}

func TestParseMissingDeviceName(t *testing.T) {
	doc := []byte(`
sources:
  - rover.c
`)
	if _, err := Parse(doc); err == nil {
		t.Fatalf("expected error: missing device.name")
	}
}

func TestParseMissingSources(t *testing.T) {
	doc := []byte(`
device:
  name: rover
`)
	if _, err := Parse(doc); err == nil {
		t.Fatalf("expected error: no sources")
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("not: [valid")); err == nil {
		t.Fatalf("expected YAML parse error")
	}
}

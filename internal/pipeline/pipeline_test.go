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

package pipeline

import (
	"os"
	"strings"
	"testing"

	"github.com/daemoncli/daemon-gen/internal/codegen"
	"github.com/daemoncli/daemon-gen/internal/diag"
	"github.com/daemoncli/daemon-gen/internal/manifest"
)

func TestRunForwardFloatRangeEndToEnd(t *testing.T) {
	src := Source{
		Path: "rover.c",
		Text: `// @daemon:export token=FWD desc="Move forward" args="speed:float[0..1]" safety="rate_hz=20,watchdog_ms=1200,clamp=true"
void move_forward(float speed) {}
`,
	}
	res := Run("rover-1", manifest.Device{Name: "rover", Version: "1.0", NodeID: "n1"}, []Source{src})
	if res.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.Diagnostics)
	}
	if len(res.Catalog.Commands) != 2 { // FWD + implicit STOP
		t.Fatalf("commands = %+v", res.Catalog.Commands)
	}
	if len(res.Files) != 3 {
		t.Fatalf("got %d emitted files, want 3 (dispatch, header, runtime source)", len(res.Files))
	}
	dispatch := findFile(res.Files, "daemon_entry.c")
	if dispatch == nil {
		t.Fatalf("missing daemon_entry.c")
	}
	if !strings.Contains(string(dispatch.Bytes), "if (arg_0 < 0.0) return DAEMON_ERR_RANGE;") {
		t.Errorf("dispatch.c missing float range check, got:\n%s", dispatch.Bytes)
	}
}

func TestRunDuplicateTokenAbortsBeforeEmission(t *testing.T) {
	src := Source{
		Path: "rover.c",
		Text: `// @daemon:export token=FWD desc="a" args="" safety="rate_hz=1,watchdog_ms=1,clamp=true"
void fn_a(void) {}

// @daemon:export token=FWD desc="b" args="" safety="rate_hz=1,watchdog_ms=1,clamp=true"
void fn_b(void) {}
`,
	}
	res := Run("rover-1", manifest.Device{}, []Source{src})
	if !res.HasErrors() {
		t.Fatalf("expected DUPLICATE_TOKEN error")
	}
	if len(res.Files) != 0 {
		t.Fatalf("no files must be emitted when errors accumulate, got %d", len(res.Files))
	}
	found := false
	for _, d := range res.Diagnostics {
		if d.Kind == diag.DuplicateToken {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics = %v, want a DUPLICATE_TOKEN", res.Diagnostics)
	}
}

func TestRunStringArgHasNoRangeCheck(t *testing.T) {
	src := Source{
		Path: "gripper.c",
		Text: `// @daemon:export token=GRIP desc="Set grip state" args="state:string[open..close]" safety="rate_hz=5,watchdog_ms=1000,clamp=true"
void set_grip(const char *state) {}
`,
	}
	res := Run("gripper-1", manifest.Device{}, []Source{src})
	if res.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.Diagnostics)
	}
	dispatch := findFile(res.Files, "daemon_entry.c")
	out := string(dispatch.Bytes)
	if strings.Contains(out, "DAEMON_ERR_RANGE") {
		t.Errorf("string-kind argument must never emit a range check, got:\n%s", out)
	}
	if !strings.Contains(out, "const char *arg_0 = argv[0];") {
		t.Errorf("missing string arg decode, got:\n%s", out)
	}
}

func TestRunRateLimitAndWatchdogDerivation(t *testing.T) {
	src := Source{
		Path: "rover.c",
		Text: `// @daemon:export token=FWD desc="a" args="" safety="rate_hz=30,watchdog_ms=600,clamp=true"
void fn_a(void) {}
`,
	}
	res := Run("rover-1", manifest.Device{}, []Source{src})
	if res.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.Diagnostics)
	}
	runtimeSrc := findFile(res.Files, "daemon_runtime.c")
	out := string(runtimeSrc.Bytes)
	if !strings.Contains(out, "static const uint32_t g_watchdog_ms = 600;") {
		t.Errorf("watchdog_ms not derived correctly, got:\n%s", out)
	}
	if !strings.Contains(out, "static const uint32_t g_min_cmd_interval_ms = 34;") {
		t.Errorf("min_cmd_interval_ms not derived correctly, got:\n%s", out)
	}
}

func TestRunFunctionNameMismatch(t *testing.T) {
	src := Source{
		Path: "rover.c",
		Text: `// @daemon:export token=FWD desc="a" args="" safety="rate_hz=1,watchdog_ms=1,clamp=true" function=other_name
void move_forward(void) {}
`,
	}
	res := Run("rover-1", manifest.Device{}, []Source{src})
	if !res.HasErrors() {
		t.Fatalf("expected FUNCTION_NAME_MISMATCH error")
	}
	found := false
	for _, d := range res.Diagnostics {
		if d.Kind == diag.FunctionNameMismatch {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics = %v, want FUNCTION_NAME_MISMATCH", res.Diagnostics)
	}
}

func TestRunDeterministicAcrossSources(t *testing.T) {
	src := Source{
		Path: "rover.c",
		Text: `// @daemon:export token=FWD desc="a" args="speed:int[0..100]" safety="rate_hz=10,watchdog_ms=200,clamp=true"
void fn_a(int speed) {}
`,
	}
	res1 := Run("rover-1", manifest.Device{Name: "rover"}, []Source{src})
	res2 := Run("rover-1", manifest.Device{Name: "rover"}, []Source{src})
	if string(res1.ManifestJSON) != string(res2.ManifestJSON) {
		t.Errorf("manifest JSON diverged across identical runs")
	}
	for i := range res1.Files {
		if string(res1.Files[i].Bytes) != string(res2.Files[i].Bytes) {
			t.Errorf("emitted file %q diverged across identical runs", res1.Files[i].Name)
		}
	}
}

func TestRunSkylightDroneFixtureUserStopShadowed(t *testing.T) {
	text, err := os.ReadFile("../../testdata/skylift_drone/main.c")
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	res := Run("skylift-drone", manifest.Device{Name: "skylift_drone", Version: "1.0", NodeID: "n1"},
		[]Source{{Path: "main.c", Text: string(text)}})
	if res.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.Diagnostics)
	}
	if len(res.Catalog.Commands) != 3 {
		t.Fatalf("commands = %+v, want THROTTLE, YAW, user-declared STOP (no injection)", res.Catalog.Commands)
	}
	stop := res.Catalog.Commands[2]
	if stop.Token != "STOP" || stop.Implicit {
		t.Errorf("stop = %+v, want user-declared (Implicit=false)", stop)
	}
	found := false
	for _, d := range res.Diagnostics {
		if d.Kind == diag.ShadowedStop {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics = %v, want SHADOWED_STOP", res.Diagnostics)
	}
}

func TestRunGripworksGripperFixtureStringAndFloatArgs(t *testing.T) {
	text, err := os.ReadFile("../../testdata/gripworks_gripper/main.c")
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	res := Run("gripworks-gripper", manifest.Device{Name: "gripworks_gripper"},
		[]Source{{Path: "main.c", Text: string(text)}})
	if res.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.Diagnostics)
	}
	if len(res.Catalog.Commands) != 3 { // GRIP, GRIP_FORCE, implicit STOP
		t.Fatalf("commands = %+v", res.Catalog.Commands)
	}
	if res.Catalog.Commands[0].Token != "GRIP" || res.Catalog.Commands[1].Token != "GRIP_FORCE" {
		t.Errorf("commands = %+v", res.Catalog.Commands)
	}
}

func TestRunLinetraceSensorFixtureIntRange(t *testing.T) {
	text, err := os.ReadFile("../../testdata/linetrace_sensor/main.c")
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	res := Run("linetrace-sensor", manifest.Device{Name: "linetrace_sensor"},
		[]Source{{Path: "main.c", Text: string(text)}})
	if res.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.Diagnostics)
	}
	dispatch := findFile(res.Files, "daemon_entry.c")
	out := string(dispatch.Bytes)
	if !strings.Contains(out, "if (arg_0 < 0.0) return DAEMON_ERR_RANGE;") ||
		!strings.Contains(out, "if (arg_0 > 3.0) return DAEMON_ERR_RANGE;") {
		t.Errorf("missing expected int-range checks with decimal points, got:\n%s", out)
	}
}

func findFile(files []codegen.EmittedFile, name string) *codegen.EmittedFile {
	for i := range files {
		if files[i].Name == name {
			return &files[i]
		}
	}
	return nil
}

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

package catalog

import (
	"testing"

	"github.com/daemoncli/daemon-gen/internal/annotate"
	"github.com/daemoncli/daemon-gen/internal/diag"
	"github.com/daemoncli/daemon-gen/internal/sig"
)

func okSafety() annotate.Safety {
	return annotate.Safety{RateHz: 10, WatchdogMs: 200, Clamp: true}
}

func TestBuilderInsertsImplicitStop(t *testing.T) {
	b := NewBuilder("rover-1")
	sink := &diag.Sink{}
	b.Insert(Command{Token: "FWD", Safety: okSafety()}, diag.Pos{}, sink)
	cat := b.Finalize(sink)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Diagnostics())
	}
	if len(cat.Commands) != 2 {
		t.Fatalf("got %d commands, want 2 (FWD + implicit STOP)", len(cat.Commands))
	}
	stop := cat.Commands[1]
	if stop.Token != StopToken || !stop.Implicit {
		t.Errorf("stop = %+v", stop)
	}
}

func TestBuilderUserStopShadowsImplicit(t *testing.T) {
	b := NewBuilder("rover-1")
	sink := &diag.Sink{}
	b.Insert(Command{Token: "STOP", Safety: okSafety()}, diag.Pos{}, sink)
	cat := b.Finalize(sink)
	if len(cat.Commands) != 1 {
		t.Fatalf("got %d commands, want 1 (user STOP only, no injection)", len(cat.Commands))
	}
	if cat.Commands[0].Implicit {
		t.Errorf("user-declared STOP must not be marked Implicit")
	}
	found := false
	for _, d := range sink.Diagnostics() {
		if d.Kind == diag.ShadowedStop {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics = %v, want a SHADOWED_STOP warning", sink.Diagnostics())
	}
}

func TestBuilderDuplicateToken(t *testing.T) {
	b := NewBuilder("rover-1")
	sink := &diag.Sink{}
	b.Insert(Command{Token: "FWD", Safety: okSafety()}, diag.Pos{File: "a.c"}, sink)
	b.Insert(Command{Token: "FWD", Safety: okSafety()}, diag.Pos{File: "b.c"}, sink)
	if len(b.commands) != 1 {
		t.Fatalf("got %d commands, want 1 (second insert rejected)", len(b.commands))
	}
	diags := sink.Diagnostics()
	if len(diags) != 1 || diags[0].Kind != diag.DuplicateToken {
		t.Fatalf("diagnostics = %v, want one DUPLICATE_TOKEN", diags)
	}
}

func TestBuilderRejectsLowercaseToken(t *testing.T) {
	b := NewBuilder("rover-1")
	sink := &diag.Sink{}
	b.Insert(Command{Token: "fwd", Safety: okSafety()}, diag.Pos{}, sink)
	if len(b.commands) != 0 {
		t.Fatalf("lowercase token must be rejected")
	}
}

func TestBuilderRejectsInvertedRange(t *testing.T) {
	b := NewBuilder("rover-1")
	sink := &diag.Sink{}
	b.Insert(Command{
		Token:  "FWD",
		Safety: okSafety(),
		Args:   []annotate.ArgSpec{{Name: "speed", Kind: annotate.KindInt, HasRange: true, Lo: 100, Hi: 0}},
		Sig:    sig.Signature{Name: "fwd", Params: []sig.Param{{Type: sig.CInt, Name: "speed"}}},
	}, diag.Pos{}, sink)
	if len(b.commands) != 0 {
		t.Fatalf("inverted range must be rejected")
	}
	if len(sink.Diagnostics()) != 1 || sink.Diagnostics()[0].Kind != diag.RangeInverted {
		t.Fatalf("diagnostics = %v", sink.Diagnostics())
	}
}

func TestBuilderRejectsArityMismatchAtInsert(t *testing.T) {
	b := NewBuilder("rover-1")
	sink := &diag.Sink{}
	b.Insert(Command{
		Token:  "FWD",
		Safety: okSafety(),
		Args:   []annotate.ArgSpec{{Name: "speed", Kind: annotate.KindInt}},
	}, diag.Pos{}, sink)
	if len(b.commands) != 0 {
		t.Fatalf("arity mismatch must be rejected")
	}
}

func TestBuilderRejectsInvalidSafety(t *testing.T) {
	b := NewBuilder("rover-1")
	sink := &diag.Sink{}
	b.Insert(Command{Token: "FWD", Safety: annotate.Safety{RateHz: 0, WatchdogMs: 0}}, diag.Pos{}, sink)
	if len(b.commands) != 0 {
		t.Fatalf("non-positive rate_hz/watchdog_ms must be rejected")
	}
	if len(sink.Diagnostics()) != 2 {
		t.Fatalf("diagnostics = %v, want 2 INVALID_SAFETY", sink.Diagnostics())
	}
}

func TestBuilderPreservesInsertionOrder(t *testing.T) {
	b := NewBuilder("rover-1")
	sink := &diag.Sink{}
	for _, tok := range []string{"FWD", "REV", "LEFT", "RIGHT"} {
		b.Insert(Command{Token: tok, Safety: okSafety()}, diag.Pos{}, sink)
	}
	cat := b.Finalize(sink)
	want := []string{"FWD", "REV", "LEFT", "RIGHT", "STOP"}
	if len(cat.Commands) != len(want) {
		t.Fatalf("got %d commands, want %d", len(cat.Commands), len(want))
	}
	for i, tok := range want {
		if cat.Commands[i].Token != tok {
			t.Errorf("commands[%d] = %q, want %q", i, cat.Commands[i].Token, tok)
		}
	}
}

func TestDefaultTelemetryFixedKeys(t *testing.T) {
	tel := DefaultTelemetry()
	if len(tel) != 2 || tel[0].Name != "uptime_ms" || tel[1].Name != "last_token" {
		t.Errorf("telemetry = %+v", tel)
	}
}

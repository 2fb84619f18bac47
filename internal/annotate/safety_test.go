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

package annotate

import (
	"testing"

	"github.com/daemoncli/daemon-gen/internal/diag"
)

func TestParseSafetyOK(t *testing.T) {
	sink := &diag.Sink{}
	s, ok := ParseSafety("rate_hz=20,watchdog_ms=1200,clamp=true", diag.Pos{}, sink)
	if !ok {
		t.Fatalf("ParseSafety failed: %v", sink.Diagnostics())
	}
	if s.RateHz != 20 || s.WatchdogMs != 1200 || !s.Clamp {
		t.Errorf("safety = %+v", s)
	}
}

func TestParseSafetyMissingKey(t *testing.T) {
	sink := &diag.Sink{}
	_, ok := ParseSafety("rate_hz=20,clamp=true", diag.Pos{}, sink)
	if ok {
		t.Fatalf("expected failure: missing watchdog_ms")
	}
}

func TestParseSafetyNonPositiveRate(t *testing.T) {
	sink := &diag.Sink{}
	_, ok := ParseSafety("rate_hz=0,watchdog_ms=100,clamp=true", diag.Pos{}, sink)
	if ok {
		t.Fatalf("expected failure: rate_hz must be >= 1")
	}
}

func TestParseSafetyStrictBoolean(t *testing.T) {
	sink := &diag.Sink{}
	_, ok := ParseSafety("rate_hz=1,watchdog_ms=1,clamp=yes", diag.Pos{}, sink)
	if ok {
		t.Fatalf("expected failure: clamp must be literally true/false")
	}
}

func TestParseSafetyUnknownKey(t *testing.T) {
	sink := &diag.Sink{}
	_, ok := ParseSafety("rate_hz=1,watchdog_ms=1,clamp=true,extra=1", diag.Pos{}, sink)
	if ok {
		t.Fatalf("expected failure: unknown safety key")
	}
}

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

// Package catalog implements the Catalog Builder (spec §4.D): it
// aggregates validated Commands in source order, rejects duplicate
// tokens, and finalizes the immutable per-profile Catalog, injecting
// the implicit STOP command when the user did not declare one.
package catalog

import (
	"math"

	"github.com/golang/glog"

	"github.com/daemoncli/daemon-gen/internal/annotate"
	"github.com/daemoncli/daemon-gen/internal/diag"
	"github.com/daemoncli/daemon-gen/internal/sig"
)

// StopToken is the built-in token the runtime always understands,
// injected by Builder.Finalize when the user does not declare it
// (spec §4.D).
const StopToken = "STOP"

// TokenMaxLen is the maximum length of a token (spec §3).
const TokenMaxLen = 32

// Command is the validated join of an annotation, its argument schema,
// and its resolved C signature (spec §3).
type Command struct {
	Token    string
	Desc     string
	Args     []annotate.ArgSpec
	Safety   annotate.Safety
	Sig      sig.Signature
	Implicit bool // true only for the injected default STOP
}

// TelemetryKey is one entry in the catalog's fixed telemetry key list
// (spec §3).
type TelemetryKey struct {
	Name string
	Type string // "int" or "string"
	Unit string // "" when not applicable
}

// DefaultTelemetry is the currently-fixed telemetry key list (spec §3).
func DefaultTelemetry() []TelemetryKey {
	return []TelemetryKey{
		{Name: "uptime_ms", Type: "int", Unit: "ms"},
		{Name: "last_token", Type: "string"},
	}
}

// Transport is the sole transport descriptor this system emits
// (spec §3).
const Transport = "serial-line-v1"

// Catalog is the immutable, ordered, per-profile command catalog
// (spec §3). Insertion order is the sole ordering used downstream.
type Catalog struct {
	DeviceID  string
	Commands  []Command
	Telemetry []TelemetryKey
	Transport string
}

// Builder aggregates Commands in source order and enforces the
// invariants in spec §3/§4.D.
type Builder struct {
	deviceID string
	commands []Command
	tokens   map[string]diag.Pos
}

// NewBuilder starts a Builder for one device profile.
func NewBuilder(deviceID string) *Builder {
	return &Builder{deviceID: deviceID, tokens: make(map[string]diag.Pos)}
}

// Insert validates cmd's per-command invariants and appends it,
// reporting DUPLICATE_TOKEN if cmd.Token was already inserted.
// Per spec §7, the builder keeps going after a bad command so later
// diagnostics are still surfaced; the caller checks HasErrors before
// relying on the result.
func (b *Builder) Insert(cmd Command, pos diag.Pos, sink *diag.Sink) {
	if len(cmd.Token) == 0 || len(cmd.Token) > TokenMaxLen {
		sink.Add(diag.New(pos, diag.AnnotationSyntax, "token %q must be 1-%d chars", cmd.Token, TokenMaxLen))
		return
	}
	if !isUpperToken(cmd.Token) {
		sink.Add(diag.New(pos, diag.AnnotationSyntax, "token %q must be uppercase alphanumeric/underscore", cmd.Token))
		return
	}
	if prev, dup := b.tokens[cmd.Token]; dup {
		sink.Add(diag.New(pos, diag.DuplicateToken, "token %q already declared at %s", cmd.Token, prev))
		return
	}
	if len(cmd.Args) != len(cmd.Sig.Params) {
		sink.Add(diag.New(pos, diag.ArityMismatch, "token %q: %d args vs %d C parameters", cmd.Token, len(cmd.Args), len(cmd.Sig.Params)))
		return
	}
	ok := true
	for _, a := range cmd.Args {
		if !a.HasRange || a.Kind == annotate.KindString {
			continue
		}
		if math.IsInf(a.Lo, 0) || math.IsInf(a.Hi, 0) || math.IsNaN(a.Lo) || math.IsNaN(a.Hi) {
			sink.Add(diag.New(pos, diag.RangeInverted, "token %q arg %q: range bounds must be finite", cmd.Token, a.Name))
			ok = false
			continue
		}
		if a.Lo > a.Hi {
			sink.Add(diag.New(pos, diag.RangeInverted, "token %q arg %q: range [%v..%v] has lo > hi", cmd.Token, a.Name, a.Lo, a.Hi))
			ok = false
		}
	}
	if cmd.Safety.RateHz < 1 {
		sink.Add(diag.New(pos, diag.InvalidSafety, "token %q: rate_hz must be >= 1", cmd.Token))
		ok = false
	}
	if cmd.Safety.WatchdogMs < 1 {
		sink.Add(diag.New(pos, diag.InvalidSafety, "token %q: watchdog_ms must be >= 1", cmd.Token))
		ok = false
	}
	if !ok {
		return
	}

	b.tokens[cmd.Token] = pos
	b.commands = append(b.commands, cmd)
	glog.V(2).Infof("catalog[%s]: inserted %q (%d args)", b.deviceID, cmd.Token, len(cmd.Args))
}

// Finalize returns the immutable Catalog, injecting the implicit STOP
// command if the user did not declare one (spec §4.D). A user-declared
// STOP always wins: no duplicate is injected, matching the observed
// emitter behavior documented as SHADOWED_STOP in spec §9.
func (b *Builder) Finalize(sink *diag.Sink) Catalog {
	commands := b.commands
	if _, userStop := b.tokens[StopToken]; !userStop {
		commands = append(commands, Command{
			Token: StopToken,
			Desc:  "Stop the command daemon",
			Safety: annotate.Safety{
				RateHz:     10,
				WatchdogMs: 300,
				Clamp:      true,
			},
			Implicit: true,
		})
	} else {
		sink.Add(diag.New(diag.Pos{File: b.deviceID}, diag.ShadowedStop,
			"user-declared STOP is unreachable: the built-in STOP branch is emitted first"))
	}
	return Catalog{
		DeviceID:  b.deviceID,
		Commands:  commands,
		Telemetry: DefaultTelemetry(),
		Transport: Transport,
	}
}

func isUpperToken(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}

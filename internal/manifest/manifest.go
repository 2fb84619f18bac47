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

// Package manifest implements the Manifest Synthesizer (spec §4.E): it
// projects a Catalog into the canonical, serializable Manifest record
// and its deterministic JSON form.
package manifest

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/daemoncli/daemon-gen/internal/annotate"
	"github.com/daemoncli/daemon-gen/internal/catalog"
)

// DaemonVersion is the constant manifest format version (spec §4.E).
const DaemonVersion = "0.1"

// Device identifies the target board; supplied by the invoking
// collaborator, never derived by the core (spec §4.E).
type Device struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	NodeID  string `json:"node_id"`
}

// Arg is one command argument in manifest form. Min/Max are raw JSON
// literals (either a shortest-round-trip number or the literal "null")
// so a string-typed or rangeless argument serializes as null instead of
// an invalid empty number (spec §4.E).
type Arg struct {
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Min      json.RawMessage `json:"min"`
	Max      json.RawMessage `json:"max"`
	Required bool            `json:"required"`
}

var jsonNull = json.RawMessage("null")

// Safety is one command's manifest-form safety envelope.
type Safety struct {
	RateLimitHz int  `json:"rate_limit_hz"`
	WatchdogMs  int  `json:"watchdog_ms"`
	Clamp       bool `json:"clamp"`
}

// NLP carries the deterministically derived synonym/example hints
// (spec §4.E).
type NLP struct {
	Synonyms []string `json:"synonyms"`
	Examples []string `json:"examples"`
}

// Command is one manifest command entry.
type Command struct {
	Token       string  `json:"token"`
	Description string  `json:"description"`
	Args        []Arg   `json:"args"`
	Safety      Safety  `json:"safety"`
	NLP         NLP     `json:"nlp"`
}

// TelemetryKey is one manifest telemetry entry. Unit is omitted when
// empty, matching the fixed key list's shape (spec §3: uptime_ms has a
// unit, last_token does not).
type TelemetryKey struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Unit string `json:"unit,omitempty"`
}

// Telemetry wraps the telemetry key list under its manifest key.
type Telemetry struct {
	Keys []TelemetryKey `json:"keys"`
}

// Transport is the manifest's transport descriptor.
type Transport struct {
	Type string `json:"type"`
}

// Manifest is the canonical serializable projection of a Catalog
// (spec §3, §4.E). Field order matches the fixed JSON key order:
// daemon_version, device, commands, telemetry, transport — struct
// field order is also JSON field order for encoding/json, so no custom
// MarshalJSON is needed to pin it.
type Manifest struct {
	DaemonVersion string    `json:"daemon_version"`
	Device        Device    `json:"device"`
	Commands      []Command `json:"commands"`
	Telemetry     Telemetry `json:"telemetry"`
	Transport     Transport `json:"transport"`
}

// Synthesize projects a Catalog plus device identity into a Manifest.
// The implicit STOP command (injected by catalog.Builder.Finalize when
// the user declared no STOP of their own) is never projected: the
// dispatch emitter already hardcodes an unconditional STOP branch ahead
// of the per-command cascade, so a manifest entry for it would describe a
// command absent from the annotated source and would not round-trip back
// to the catalog that produced it (spec §8 property 7).
func Synthesize(c catalog.Catalog, device Device) Manifest {
	m := Manifest{
		DaemonVersion: DaemonVersion,
		Device:        device,
		Commands:      []Command{},
		Transport:     Transport{Type: c.Transport},
	}
	for _, cmd := range c.Commands {
		if cmd.Implicit {
			continue
		}
		m.Commands = append(m.Commands, synthesizeCommand(cmd))
	}
	for _, k := range c.Telemetry {
		m.Telemetry.Keys = append(m.Telemetry.Keys, TelemetryKey{Name: k.Name, Type: k.Type, Unit: k.Unit})
	}
	return m
}

func synthesizeCommand(cmd catalog.Command) Command {
	out := Command{
		Token:       cmd.Token,
		Description: cmd.Desc,
		Args:        []Arg{},
		Safety: Safety{
			RateLimitHz: cmd.Safety.RateHz,
			WatchdogMs:  cmd.Safety.WatchdogMs,
			Clamp:       cmd.Safety.Clamp,
		},
		NLP: NLP{
			Synonyms: []string{strings.ToLower(cmd.Token), strings.ToLower(cmd.Desc)},
			Examples: []string{cmd.Desc},
		},
	}
	for _, a := range cmd.Args {
		out.Args = append(out.Args, synthesizeArg(a))
	}
	return out
}

func synthesizeArg(a annotate.ArgSpec) Arg {
	arg := Arg{Name: a.Name, Type: a.Kind.String(), Required: true, Min: jsonNull, Max: jsonNull}
	if a.Kind == annotate.KindString || !a.HasRange {
		return arg
	}
	arg.Min = shortestDecimal(a.Lo)
	arg.Max = shortestDecimal(a.Hi)
	return arg
}

// shortestDecimal renders v as a raw JSON number literal using the
// shortest round-trip decimal representation (spec §4.E).
func shortestDecimal(v float64) json.RawMessage {
	return json.RawMessage(strconv.FormatFloat(v, 'g', -1, 64))
}

// MarshalCanonical serializes m to its canonical wire form: UTF-8, no
// trailing newline, fixed key order (guaranteed by field declaration
// order above), arrays in catalog order, min/max null for string args.
func MarshalCanonical(m Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	// json.Encoder.Encode always appends a trailing '\n'; the canonical
	// form has none.
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

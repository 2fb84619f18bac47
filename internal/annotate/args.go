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
	"fmt"
	"strconv"
	"strings"

	"github.com/daemoncli/daemon-gen/internal/diag"
)

// Kind is an argument's declared type, one leg of the small tagged
// variant {Int(lo,hi?), Float(lo,hi?), Str} described in spec §9. It is
// never modeled with an open-ended interface hierarchy.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "string"
	}
}

// ArgSpec is one parsed argument: name, kind, and an optional numeric
// range. StringTag carries the advisory "[open..close]" enumeration tag
// for string args; it is never enforced or emitted in manifest min/max
// (spec §9).
type ArgSpec struct {
	Name      string
	Kind      Kind
	HasRange  bool
	Lo, Hi    float64
	StringTag [2]string
}

// ParseArgs parses one annotation's "args=" value into an ordered
// ArgSpec list, per the mini-grammar in spec §4.B.
func ParseArgs(value string, pos diag.Pos, sink *diag.Sink) ([]ArgSpec, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, true
	}
	var specs []ArgSpec
	ok := true
	for _, raw := range splitTopLevelCommas(value) {
		spec, perr := parseOneArg(strings.TrimSpace(raw))
		if perr != "" {
			sink.Add(diag.New(pos, diag.AnnotationSyntax, "args: %s", perr))
			ok = false
			continue
		}
		specs = append(specs, spec)
	}
	if !ok {
		return nil, false
	}
	return specs, true
}

// splitTopLevelCommas splits on commas that are not inside a "[...]"
// range, since a numeric range never itself contains a comma in this
// grammar but a future range kind might.
func splitTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func parseOneArg(s string) (ArgSpec, string) {
	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return ArgSpec{}, fmt.Sprintf("expected name:type, got %q", s)
	}
	name := s[:colon]
	if !isLowerIdent(name) {
		return ArgSpec{}, fmt.Sprintf("invalid arg name %q (must be lowercase identifier)", name)
	}
	rest := s[colon+1:]

	typeName := rest
	var rangeText string
	if br := strings.IndexByte(rest, '['); br >= 0 {
		if !strings.HasSuffix(rest, "]") {
			return ArgSpec{}, fmt.Sprintf("unterminated range in %q", s)
		}
		typeName = rest[:br]
		rangeText = rest[br+1 : len(rest)-1]
	}

	spec := ArgSpec{Name: name}
	switch typeName {
	case "int":
		spec.Kind = KindInt
	case "float":
		spec.Kind = KindFloat
	case "string":
		spec.Kind = KindString
	default:
		return ArgSpec{}, fmt.Sprintf("unknown arg type %q", typeName)
	}

	if rangeText == "" {
		return spec, ""
	}
	lo, hi, found := strings.Cut(rangeText, "..")
	if !found {
		return ArgSpec{}, fmt.Sprintf("invalid range %q (expected lo..hi)", rangeText)
	}
	switch spec.Kind {
	case KindString:
		spec.StringTag = [2]string{lo, hi}
	default:
		loVal, err := strconv.ParseFloat(lo, 64)
		if err != nil {
			return ArgSpec{}, fmt.Sprintf("invalid range bound %q: %v", lo, err)
		}
		hiVal, err := strconv.ParseFloat(hi, 64)
		if err != nil {
			return ArgSpec{}, fmt.Sprintf("invalid range bound %q: %v", hi, err)
		}
		if spec.Kind == KindInt {
			if loVal != float64(int64(loVal)) || hiVal != float64(int64(hiVal)) {
				return ArgSpec{}, fmt.Sprintf("int range %q must use integer bounds", rangeText)
			}
		}
		spec.HasRange = true
		spec.Lo, spec.Hi = loVal, hiVal
	}
	return spec, ""
}

func isLowerIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

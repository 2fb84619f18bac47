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

// Package annotate implements the Annotation Parser (spec §4.B): the
// key/value grammar inside one export annotation, plus its two
// sub-grammars for "args=" and "safety=".
package annotate

import (
	"fmt"
	"strings"

	"github.com/daemoncli/daemon-gen/internal/diag"
)

const marker = "@daemon:export"

// Recognized keys. UNKNOWN_KEY fires for anything else (spec §3).
const (
	KeyToken    = "token"
	KeyDesc     = "desc"
	KeyArgs     = "args"
	KeySafety   = "safety"
	KeyFunction = "function"
)

var recognizedKeys = map[string]bool{
	KeyToken:    true,
	KeyDesc:     true,
	KeyArgs:     true,
	KeySafety:   true,
	KeyFunction: true,
}

var requiredKeys = []string{KeyToken, KeyDesc, KeyArgs, KeySafety}

// Raw is the ordered key/value mapping parsed straight out of one
// annotation comment, before any semantic validation.
type Raw struct {
	// Order preserves the order keys appeared in, for diagnostics and
	// for reproducing the source intent; lookups are by Values.
	Order  []string
	Values map[string]string
}

// Parse parses the body of one "@daemon:export ..." annotation string
// (the logical, already-joined text produced by the scanner) into a
// Raw mapping, per the grammar in spec §4.B. pos is used to anchor
// diagnostics at the annotation's location.
func Parse(text string, pos diag.Pos, sink *diag.Sink) (*Raw, bool) {
	rest := strings.TrimSpace(text)
	if !strings.HasPrefix(rest, marker) {
		sink.Add(diag.New(pos, diag.AnnotationSyntax, "annotation does not begin with %q", marker))
		return nil, false
	}
	rest = rest[len(marker):]

	raw := &Raw{Values: make(map[string]string)}
	ok := true
	for {
		rest = strings.TrimLeft(rest, " \t")
		offset := len(text) - len(rest)
		if rest == "" {
			break
		}
		key, value, consumed, perr := parsePair(rest)
		if perr != "" {
			sink.Add(diag.New(bytePos(pos, offset), diag.AnnotationSyntax, "%s", perr))
			return nil, false
		}
		if !recognizedKeys[key] {
			sink.Add(diag.New(bytePos(pos, offset), diag.UnknownKey, "unknown annotation key %q", key))
			ok = false
		}
		if _, dup := raw.Values[key]; dup {
			sink.Add(diag.New(bytePos(pos, offset), diag.AnnotationSyntax, "duplicate key %q", key))
			ok = false
		} else {
			raw.Order = append(raw.Order, key)
		}
		raw.Values[key] = value
		rest = rest[consumed:]
	}

	for _, k := range requiredKeys {
		if _, present := raw.Values[k]; !present {
			sink.Add(diag.New(pos, diag.MissingKey, "missing required key %q", k))
			ok = false
		}
	}
	if !ok {
		return nil, false
	}
	return raw, true
}

func bytePos(base diag.Pos, offsetInAnnotation int) diag.Pos {
	return diag.Pos{File: base.File, Start: base.Start + offsetInAnnotation, End: base.Start + offsetInAnnotation}
}

// parsePair parses one "key=value" pair from the front of s and
// reports how many bytes of s it consumed (including any trailing
// whitespace up to, but not including, the next pair).
func parsePair(s string) (key, value string, consumed int, errMsg string) {
	eq := strings.IndexByte(s, '=')
	if eq < 0 {
		return "", "", 0, fmt.Sprintf("expected key=value, got %q", firstWord(s))
	}
	key = s[:eq]
	if !isIdent(key) {
		return "", "", 0, fmt.Sprintf("invalid key %q", key)
	}
	rest := s[eq+1:]
	if strings.HasPrefix(rest, `"`) {
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			return "", "", 0, fmt.Sprintf("unterminated quoted value for key %q", key)
		}
		value = rest[1 : 1+end]
		consumed = eq + 1 + 1 + end + 1
		return key, value, consumed, ""
	}
	end := strings.IndexAny(rest, " \t")
	if end < 0 {
		end = len(rest)
	}
	value = rest[:end]
	if value == "" {
		return "", "", 0, fmt.Sprintf("empty value for key %q", key)
	}
	if !isBareword(value) {
		return "", "", 0, fmt.Sprintf("value %q for key %q must be quoted (contains spaces or commas)", value, key)
	}
	consumed = eq + 1 + end
	return key, value, consumed, ""
}

func firstWord(s string) string {
	end := strings.IndexAny(s, " \t")
	if end < 0 {
		return s
	}
	return s[:end]
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

func isBareword(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '_' || r == '.' || r == '-' || r == '+':
		default:
			return false
		}
	}
	return true
}

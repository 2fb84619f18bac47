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

// Package sig implements the Signature Resolver (spec §4.C): just
// enough C parsing to pull a function name, return type, and parameter
// list out of the restricted declaration subset the daemon dialect
// allows, then reconcile it against an annotation's argument schema.
package sig

import (
	"strings"

	"github.com/golang/glog"

	"github.com/daemoncli/daemon-gen/internal/annotate"
	"github.com/daemoncli/daemon-gen/internal/diag"
)

// CType is one of the four C parameter types this dialect accepts
// (spec §3).
type CType int

const (
	CInt CType = iota
	CInt16
	CFloat
	CConstCharPtr
)

func (t CType) String() string {
	switch t {
	case CInt:
		return "int"
	case CInt16:
		return "int16_t"
	case CFloat:
		return "float"
	case CConstCharPtr:
		return "const char *"
	default:
		return "?"
	}
}

// Param is one resolved C parameter.
type Param struct {
	Type CType
	Name string
}

// MaxParams is the hard cap on parameter count (spec §4.C).
const MaxParams = 8

// Signature is a resolved C function declaration.
type Signature struct {
	ReturnsInt bool // false means void; spec allows only void or int
	Name       string
	Params     []Param
}

// Resolve parses declText (the raw text captured by the scanner,
// ending in ')' or ';') into a Signature. Unsupported return types or
// parameter types produce UNSUPPORTED_C_TYPE; declarations with more
// than MaxParams parameters do too, since this dialect has no
// variadics.
func Resolve(declText string, pos diag.Pos, sink *diag.Sink) (Signature, bool) {
	text := strings.TrimSpace(declText)
	text = strings.TrimSuffix(text, ";")
	text = strings.TrimSpace(text)

	open := strings.IndexByte(text, '(')
	if open < 0 {
		sink.Add(diag.New(pos, diag.UnsupportedCType, "declaration has no parameter list: %q", declText))
		return Signature{}, false
	}
	if !strings.HasSuffix(text, ")") {
		sink.Add(diag.New(pos, diag.UnsupportedCType, "declaration does not end with ')': %q", declText))
		return Signature{}, false
	}
	head := strings.TrimSpace(text[:open])
	paramsText := strings.TrimSpace(text[open+1 : len(text)-1])

	retType, name, ok := splitReturnAndName(head)
	if !ok {
		sink.Add(diag.New(pos, diag.UnsupportedCType, "cannot parse return type / name from %q", head))
		return Signature{}, false
	}

	var returnsInt bool
	switch retType {
	case "void":
		returnsInt = false
	case "int":
		returnsInt = true
	default:
		sink.Add(diag.New(pos, diag.UnsupportedCType, "unsupported return type %q (only void or int)", retType))
		return Signature{}, false
	}

	var params []Param
	if paramsText != "" && paramsText != "void" {
		for _, p := range splitTopLevelCommas(paramsText) {
			param, perr := parseParam(strings.TrimSpace(p))
			if perr != "" {
				sink.Add(diag.New(pos, diag.UnsupportedCType, "%s", perr))
				return Signature{}, false
			}
			params = append(params, param)
		}
	}
	if len(params) > MaxParams {
		sink.Add(diag.New(pos, diag.UnsupportedCType, "declaration has %d parameters, max %d", len(params), MaxParams))
		return Signature{}, false
	}

	glog.V(3).Infof("resolved signature %s(%d params) returnsInt=%v", name, len(params), returnsInt)
	return Signature{ReturnsInt: returnsInt, Name: name, Params: params}, true
}

func splitReturnAndName(head string) (retType, name string, ok bool) {
	fields := strings.Fields(head)
	if len(fields) < 2 {
		return "", "", false
	}
	name = fields[len(fields)-1]
	name = strings.TrimPrefix(name, "*")
	retType = strings.Join(fields[:len(fields)-1], " ")
	if !isIdent(name) {
		return "", "", false
	}
	return retType, name, true
}

func parseParam(s string) (Param, string) {
	if s == "" {
		return Param{}, "empty parameter"
	}
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return Param{}, "cannot parse parameter " + s
	}
	name := fields[len(fields)-1]
	name = strings.TrimPrefix(name, "*")
	typeFields := fields[:len(fields)-1]
	typeText := strings.Join(typeFields, " ")

	// "const char *" is written with the '*' possibly glued to the
	// name (e.g. "const char *state"); typeText above would then be
	// "const char" with the '*' still attached to the name token.
	if strings.Contains(s, "*") && !strings.Contains(typeText, "*") {
		typeText += " *"
	}

	switch normalizeType(typeText) {
	case "int":
		return Param{Type: CInt, Name: name}, ""
	case "int16_t":
		return Param{Type: CInt16, Name: name}, ""
	case "float":
		return Param{Type: CFloat, Name: name}, ""
	case "const char *":
		return Param{Type: CConstCharPtr, Name: name}, ""
	default:
		return Param{}, "unsupported parameter type " + typeText
	}
}

func normalizeType(t string) string {
	fields := strings.Fields(strings.ReplaceAll(t, "*", " * "))
	return strings.Join(fields, " ")
}

func splitTopLevelCommas(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// kindMatches reports whether an annotation arg kind is compatible
// with a resolved C parameter type, per the table in spec §3:
// int<->{int,int16_t}, float<->float, string<->const char *.
func kindMatches(k annotate.Kind, t CType) bool {
	switch k {
	case annotate.KindInt:
		return t == CInt || t == CInt16
	case annotate.KindFloat:
		return t == CFloat
	case annotate.KindString:
		return t == CConstCharPtr
	}
	return false
}

// Reconcile checks an ArgSpec list against a resolved Signature,
// per spec §4.C: arity, then per-position kind/type compatibility.
// Parameter-name mismatches are informational only (PARAM_NAME_MISMATCH,
// a warning).
func Reconcile(args []annotate.ArgSpec, s Signature, pos diag.Pos, sink *diag.Sink) bool {
	if len(args) != len(s.Params) {
		sink.Add(diag.New(pos, diag.ArityMismatch,
			"annotation declares %d argument(s), C signature has %d parameter(s)", len(args), len(s.Params)))
		return false
	}
	ok := true
	for i, a := range args {
		p := s.Params[i]
		if !kindMatches(a.Kind, p.Type) {
			sink.Add(diag.New(pos, diag.TypeMismatch,
				"argument %d (%s): annotation kind %s is not compatible with C type %s", i, a.Name, a.Kind, p.Type))
			ok = false
			continue
		}
		if a.Name != p.Name {
			sink.Add(diag.New(pos, diag.ParamNameMismatch,
				"argument %d: annotation name %q does not match C parameter name %q", i, a.Name, p.Name))
		}
	}
	return ok
}

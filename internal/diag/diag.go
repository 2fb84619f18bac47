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

// Package diag carries positioned diagnostics through the annotation
// pipeline. The core never panics or returns bare errors for malformed
// input; every failure is attached to a source position and a stable
// kind identifier so host tooling can present it, or tests can assert
// on it, without string matching.
package diag

import "fmt"

// Kind is a stable diagnostic identifier (see spec §7). Tests and host
// tooling key off these strings, so they must never be renamed once
// shipped.
type Kind string

const (
	AnnotationSyntax      Kind = "ANNOTATION_SYNTAX"
	DanglingAnnotation    Kind = "DANGLING_ANNOTATION"
	DoubleAnnotation      Kind = "DOUBLE_ANNOTATION"
	UnknownKey            Kind = "UNKNOWN_KEY"
	MissingKey            Kind = "MISSING_KEY"
	UnsupportedCType      Kind = "UNSUPPORTED_C_TYPE"
	ArityMismatch         Kind = "ARITY_MISMATCH"
	TypeMismatch          Kind = "TYPE_MISMATCH"
	FunctionNameMismatch  Kind = "FUNCTION_NAME_MISMATCH"
	DuplicateToken        Kind = "DUPLICATE_TOKEN"
	InvalidSafety         Kind = "INVALID_SAFETY"
	RangeInverted         Kind = "RANGE_INVERTED"
	ShadowedStop          Kind = "SHADOWED_STOP"
	ParamNameMismatch     Kind = "PARAM_NAME_MISMATCH"
)

// Severity distinguishes hard failures (which abort stages D–G, per
// spec §7) from advisory warnings that are reported but never block
// generation.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// severityOf is the fixed severity table from spec §7: every listed
// kind is an error except the documented quirks, which are warnings.
var severityOf = map[Kind]Severity{
	ShadowedStop:      SeverityWarning,
	ParamNameMismatch: SeverityWarning,
}

// Pos is a byte-offset source position: a file, an offset where the
// offending text begins, and an offset where it ends. Mirrors the
// teacher's srcpos, generalized from line numbers to byte ranges
// because annotations and declarations span many lines.
type Pos struct {
	File  string
	Start int
	End   int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d-%d", p.File, p.Start, p.End)
}

// Diagnostic is one positioned failure or warning.
type Diagnostic struct {
	Pos      Pos
	Kind     Kind
	Severity Severity
	Message  string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s: %s", d.Pos, d.Severity, d.Kind, d.Message)
}

// New builds a Diagnostic, looking up its severity in the fixed table
// and defaulting to SeverityError (every kind not explicitly listed as
// a warning is an error, per spec §7).
func New(pos Pos, kind Kind, format string, args ...interface{}) Diagnostic {
	sev, ok := severityOf[kind]
	if !ok {
		sev = SeverityError
	}
	return Diagnostic{
		Pos:      pos,
		Kind:     kind,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Sink is an append-only diagnostic accumulator. Per spec §5 it is
// owned by the top-level driver; each pipeline stage only ever holds a
// borrow for the duration of its call, so a *Sink is passed down, never
// stored across calls.
type Sink struct {
	diags []Diagnostic
}

// Add appends a diagnostic to the sink.
func (s *Sink) Add(d Diagnostic) {
	s.diags = append(s.diags, d)
}

// Diagnostics returns all diagnostics recorded so far, in emission
// order.
func (s *Sink) Diagnostics() []Diagnostic {
	return s.diags
}

// HasErrors reports whether any accumulated diagnostic is
// SeverityError. Stages D–G (Catalog Builder onward) run only when this
// is false, per spec §7.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

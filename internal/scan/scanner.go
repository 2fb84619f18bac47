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

// Package scan implements the Source Scanner (spec §4.A): a single
// byte-oriented pass over a C translation unit that finds
// "@daemon:export" comment annotations and the declaration each one
// attaches to.
package scan

import (
	"strings"

	"github.com/golang/glog"

	"github.com/daemoncli/daemon-gen/internal/diag"
)

// exportMarker is the case-sensitive prefix that promotes a comment
// block to an export annotation (spec §4.A).
const exportMarker = "@daemon:export"

// SourceUnit is one C translation unit: a path, its full text, and a
// precomputed line index. Read once and never mutated, mirroring the
// teacher's immutable makefile/srcpos pairing in parser.go.
type SourceUnit struct {
	Path string
	Text string

	lineStarts []int
}

// NewSourceUnit builds a SourceUnit and its line index.
func NewSourceUnit(path, text string) *SourceUnit {
	u := &SourceUnit{Path: path, Text: text}
	u.lineStarts = []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			u.lineStarts = append(u.lineStarts, i+1)
		}
	}
	return u
}

// AnnotationBlock is a byte range pointing at one export annotation
// comment plus the declaration text that follows it (spec §3).
type AnnotationBlock struct {
	Unit *SourceUnit

	// AnnotationText is the joined logical annotation string, comment
	// markers and surrounding whitespace stripped (spec §4.A).
	AnnotationText string
	AnnotationPos  diag.Pos

	// DeclText is the raw declaration text captured after the
	// annotation: from the first non-whitespace, non-comment byte up
	// to and including the closing ')' or ';' that ends the signature.
	DeclText string
	DeclPos  diag.Pos
}

// Scan walks u once and returns every AnnotationBlock found, plus any
// DANGLING_ANNOTATION / DOUBLE_ANNOTATION diagnostics. Scanning never
// aborts early: a bad annotation is reported and skipped so later
// annotations in the same file are still found (spec §7: stages A–C
// are best-effort).
func Scan(u *SourceUnit, sink *diag.Sink) []AnnotationBlock {
	var blocks []AnnotationBlock
	text := u.Text
	i := 0

	for i < len(text) {
		c := text[i]
		switch {
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			start := i
			body, end := scanLineCommentRun(text, i)
			i = end
			if isExportComment(body) {
				ann, annEnd := joinLineComment(text, start, end)
				blocks = append(blocks, finishBlock(u, sink, ann, start, annEnd))
			}
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			start := i
			body, end, ok := scanBlockComment(text, i)
			if !ok {
				glog.V(2).Infof("%s: unterminated block comment at %d", u.Path, start)
				i = len(text)
				continue
			}
			i = end
			if isExportComment(body) {
				ann := joinBlockComment(body)
				blocks = append(blocks, finishBlock(u, sink, ann, start, end))
			}
		case c == '"':
			i = skipStringLiteral(text, i)
		case c == '\'':
			i = skipCharLiteral(text, i)
		default:
			i++
		}
	}
	return dedupeDoubleAnnotations(blocks, sink)
}

// dedupeDoubleAnnotations finds two annotation blocks that resolved to
// the same declaration (spec §4.A: "multiple annotations on the same
// declaration → error DOUBLE_ANNOTATION") and keeps only the first,
// reporting the rest.
func dedupeDoubleAnnotations(blocks []AnnotationBlock, sink *diag.Sink) []AnnotationBlock {
	seen := make(map[int]bool)
	out := blocks[:0:0]
	for _, b := range blocks {
		if b.DeclText == "" {
			out = append(out, b)
			continue
		}
		if seen[b.DeclPos.Start] {
			sink.Add(diag.New(b.AnnotationPos, diag.DoubleAnnotation,
				"multiple export annotations attached to the same declaration at %s:%d",
				b.Unit.Path, b.DeclPos.Start))
			continue
		}
		seen[b.DeclPos.Start] = true
		out = append(out, b)
	}
	return out
}

// finishBlock locates the declaration following an annotation that
// starts at [start,end) and records a DANGLING_ANNOTATION diagnostic
// if none can be found.
func finishBlock(u *SourceUnit, sink *diag.Sink, annotationText string, start, end int) AnnotationBlock {
	declStart, ok := skipToDecl(u.Text, end)
	if !ok {
		sink.Add(diag.New(diag.Pos{File: u.Path, Start: start, End: end}, diag.DanglingAnnotation,
			"annotation not followed by a parseable declaration"))
		return AnnotationBlock{
			Unit:           u,
			AnnotationText: annotationText,
			AnnotationPos:  diag.Pos{File: u.Path, Start: start, End: end},
		}
	}
	declEnd, ok := captureDecl(u.Text, declStart)
	if !ok {
		sink.Add(diag.New(diag.Pos{File: u.Path, Start: start, End: end}, diag.DanglingAnnotation,
			"annotation not followed by a parseable declaration"))
		return AnnotationBlock{
			Unit:           u,
			AnnotationText: annotationText,
			AnnotationPos:  diag.Pos{File: u.Path, Start: start, End: end},
		}
	}
	glog.V(3).Infof("%s: annotation %q -> decl %q", u.Path, annotationText, u.Text[declStart:declEnd])
	return AnnotationBlock{
		Unit:           u,
		AnnotationText: annotationText,
		AnnotationPos:  diag.Pos{File: u.Path, Start: start, End: end},
		DeclText:       u.Text[declStart:declEnd],
		DeclPos:        diag.Pos{File: u.Path, Start: declStart, End: declEnd},
	}
}

// isExportComment reports whether a raw comment body's first
// non-whitespace content is the export marker, case-sensitive.
func isExportComment(body string) bool {
	trimmed := strings.TrimLeft(body, " \t\r\n/*")
	return strings.HasPrefix(trimmed, exportMarker)
}

// scanLineCommentRun consumes one "//" comment to end of line and
// returns its raw body (without the leading "//").
func scanLineCommentRun(text string, i int) (body string, end int) {
	j := i + 2
	for j < len(text) && text[j] != '\n' {
		j++
	}
	return text[i+2 : j], j
}

// joinLineComment joins consecutive "//" lines that form one logical
// annotation, per spec §4.A: all consecutive lines prefixed with "//"
// (skipping only whitespace between them) are concatenated with single
// spaces, markers and indentation stripped.
func joinLineComment(text string, start, firstEnd int) (joined string, end int) {
	parts := []string{strings.TrimSpace(text[start+2 : firstEnd])}
	end = firstEnd

	for {
		// Only a bare newline (optionally trailing \r) may separate two
		// lines of the same logical annotation; anything else (a blank
		// line, a non-comment statement) ends the run.
		j := end
		if j < len(text) && text[j] == '\r' {
			j++
		}
		if j >= len(text) || text[j] != '\n' {
			break
		}
		j++

		k := j
		for k < len(text) && (text[k] == ' ' || text[k] == '\t') {
			k++
		}
		if k+1 >= len(text) || text[k] != '/' || text[k+1] != '/' {
			break
		}
		body, lineEnd := scanLineCommentRun(text, k)
		parts = append(parts, strings.TrimSpace(body))
		end = lineEnd
	}
	return strings.Join(parts, " "), end
}

// scanBlockComment consumes a "/* ... */" comment and returns the text
// between the delimiters.
func scanBlockComment(text string, i int) (body string, end int, ok bool) {
	j := strings.Index(text[i+2:], "*/")
	if j < 0 {
		return "", len(text), false
	}
	return text[i+2 : i+2+j], i + 2 + j + 2, true
}

// joinBlockComment collapses a block comment's interior into a single
// logical annotation string: each line has leading whitespace and an
// optional leading "*" stripped, then all lines are joined with single
// spaces (spec §4.A, §9's block-comment open question).
func joinBlockComment(body string) string {
	lines := strings.Split(body, "\n")
	var parts []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "*")
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		parts = append(parts, l)
	}
	return strings.Join(parts, " ")
}

// skipToDecl advances past whitespace, blank lines, preprocessor
// directives, and other (non-export) comments to find the start of the
// next declaration. Returns false if end of file is reached first.
func skipToDecl(text string, i int) (int, bool) {
	for i < len(text) {
		switch {
		case text[i] == ' ' || text[i] == '\t' || text[i] == '\r' || text[i] == '\n':
			i++
		case text[i] == '#':
			for i < len(text) && text[i] != '\n' {
				if text[i] == '\\' && i+1 < len(text) && (text[i+1] == '\n' || (text[i+1] == '\r' && i+2 < len(text) && text[i+2] == '\n')) {
					i++
				}
				i++
			}
		case text[i] == '/' && i+1 < len(text) && text[i+1] == '/':
			_, end := scanLineCommentRun(text, i)
			i = end
		case text[i] == '/' && i+1 < len(text) && text[i+1] == '*':
			_, end, ok := scanBlockComment(text, i)
			if !ok {
				return 0, false
			}
			i = end
		default:
			return i, true
		}
	}
	return 0, false
}

// captureDecl captures a declaration starting at i, up to and including
// the first top-level ')' that closes the parameter list, or a ';' for
// a forward declaration, whichever ends the signature first (spec
// §4.A). Parens are depth-tracked so nested parens in default
// arguments (not part of this C dialect, but tolerated) don't end the
// capture early; braces are not tracked.
func captureDecl(text string, i int) (int, bool) {
	depth := 0
	seenOpenParen := false
	for j := i; j < len(text); j++ {
		switch text[j] {
		case '(':
			depth++
			seenOpenParen = true
		case ')':
			depth--
			if seenOpenParen && depth == 0 {
				return j + 1, true
			}
		case ';':
			if !seenOpenParen || depth == 0 {
				return j + 1, true
			}
		case '{':
			// A function body opens where a forward declaration would
			// have had a ';'; the declaration itself ends at the ')'
			// already captured above, so reaching '{' with depth 0
			// after a closed paren list is unreachable here. Guard
			// against malformed input by bailing out.
			if depth == 0 && seenOpenParen {
				return j, true
			}
		}
	}
	return 0, false
}

// skipStringLiteral advances past a "..." string literal, honoring
// backslash escapes, so annotation-like text inside a string is never
// mistaken for a comment.
func skipStringLiteral(text string, i int) int {
	j := i + 1
	for j < len(text) {
		if text[j] == '\\' {
			j += 2
			continue
		}
		if text[j] == '"' {
			return j + 1
		}
		j++
	}
	return j
}

// skipCharLiteral advances past a '...' character literal.
func skipCharLiteral(text string, i int) int {
	j := i + 1
	for j < len(text) {
		if text[j] == '\\' {
			j += 2
			continue
		}
		if text[j] == '\'' {
			return j + 1
		}
		j++
	}
	return j
}

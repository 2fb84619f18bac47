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

// Package codegen implements the Dispatch Emitter and Runtime Emitter
// (spec §4.F, §4.G): deterministic, template-free C text generation
// from a finalized Catalog.
package codegen

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/daemoncli/daemon-gen/internal/annotate"
	"github.com/daemoncli/daemon-gen/internal/catalog"
	"github.com/daemoncli/daemon-gen/internal/sig"
)

// EmittedFile is a generated translation unit: a logical name, its
// UTF-8 bytes, and the headers it declares a dependency on (spec §3).
type EmittedFile struct {
	Name    string
	Bytes   []byte
	Depends []string
}

// EmitDispatch produces daemon_entry.c for c, per spec §4.F. Output is
// byte-identical for identical catalogs: two spaces of indentation, LF
// line endings, no timestamps or absolute paths.
func EmitDispatch(c catalog.Catalog) EmittedFile {
	var b bytes.Buffer
	b.WriteString("#include \"daemon_runtime.h\"\n\n")
	b.WriteString("#include <stdbool.h>\n")
	b.WriteString("#include <stdio.h>\n")
	b.WriteString("#include <stdlib.h>\n")
	b.WriteString("#include <string.h>\n\n")

	for _, cmd := range c.Commands {
		if cmd.Implicit {
			continue
		}
		b.WriteString(forwardDecl(cmd))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("int daemon_entry_dispatch(const char *token, int argc, const char **argv) {\n")
	b.WriteString("  if (token == NULL) return DAEMON_ERR_BAD_TOKEN;\n")
	b.WriteString("  if (strcmp(token, \"" + catalog.StopToken + "\") == 0) {\n")
	b.WriteString("    daemon_runtime_stop();\n")
	b.WriteString("    return DAEMON_OK;\n")
	b.WriteString("  }\n\n")

	for _, cmd := range c.Commands {
		if cmd.Implicit {
			continue
		}
		writeBranch(&b, cmd)
		b.WriteString("\n")
	}

	b.WriteString("  return DAEMON_ERR_BAD_TOKEN;\n")
	b.WriteString("}\n")

	return EmittedFile{
		Name:    "daemon_entry.c",
		Bytes:   b.Bytes(),
		Depends: []string{"daemon_runtime.h"},
	}
}

func forwardDecl(cmd catalog.Command) string {
	return fmt.Sprintf("%s %s(%s);\n", returnTypeOf(cmd.Sig), funcName(cmd), paramList(cmd.Sig))
}

func returnTypeOf(s sig.Signature) string {
	if s.ReturnsInt {
		return "int"
	}
	return "void"
}

func funcName(cmd catalog.Command) string {
	return cmd.Sig.Name
}

func paramList(s sig.Signature) string {
	if len(s.Params) == 0 {
		return "void"
	}
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = p.Type.String() + " " + p.Name
	}
	return strings.Join(parts, ", ")
}

// writeBranch emits one command's strcmp branch: arity check, per-
// argument decode + range check, then the typed call-through (spec
// §4.F, §8 scenarios 1 and 3).
func writeBranch(b *bytes.Buffer, cmd catalog.Command) {
	fmt.Fprintf(b, "  if (strcmp(token, %q) == 0) {\n", cmd.Token)
	fmt.Fprintf(b, "    if (argc != %d) return DAEMON_ERR_BAD_ARGS;\n", len(cmd.Args))

	callArgs := make([]string, len(cmd.Args))
	for i, a := range cmd.Args {
		argVar := fmt.Sprintf("arg_%d", i)
		callArgs[i] = argVar
		switch a.Kind {
		case annotate.KindString:
			fmt.Fprintf(b, "    const char *%s = argv[%d];\n", argVar, i)
		case annotate.KindInt:
			fmt.Fprintf(b, "    int %s = 0;\n", argVar)
			fmt.Fprintf(b, "    if (!daemon_parse_int(argv[%d], &%s)) return DAEMON_ERR_BAD_ARGS;\n", i, argVar)
			writeRangeChecks(b, argVar, a)
		case annotate.KindFloat:
			fmt.Fprintf(b, "    float %s = 0.0f;\n", argVar)
			fmt.Fprintf(b, "    if (!daemon_parse_float(argv[%d], &%s)) return DAEMON_ERR_BAD_ARGS;\n", i, argVar)
			writeRangeChecks(b, argVar, a)
		}
	}

	fmt.Fprintf(b, "    %s(%s);\n", funcName(cmd), strings.Join(callArgs, ", "))
	b.WriteString("    return DAEMON_OK;\n")
	b.WriteString("  }\n")
}

func writeRangeChecks(b *bytes.Buffer, argVar string, a annotate.ArgSpec) {
	if !a.HasRange {
		return
	}
	fmt.Fprintf(b, "    if (%s < %s) return DAEMON_ERR_RANGE;\n", argVar, cNumber(a.Lo))
	fmt.Fprintf(b, "    if (%s > %s) return DAEMON_ERR_RANGE;\n", argVar, cNumber(a.Hi))
}

// cNumber renders a range bound as a C floating-point literal: the
// shortest decimal representation, always with a decimal point (spec
// §8 scenario 1: "0.0", "1.0"; observed generator output always carries
// a decimal point, even for int-kind bounds).
func cNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

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

// Package pipeline wires the seven lettered components (spec §2) into
// the straight-line batch pipeline: Scanner → Annotation Parser →
// Signature Resolver → Catalog Builder → Manifest Synthesizer →
// {Dispatch Emitter, Runtime Emitter}. No stage here performs I/O; the
// collaborator supplies (path, bytes) pairs and receives (path, bytes)
// pairs back (spec §6).
package pipeline

import (
	"github.com/golang/glog"

	"github.com/daemoncli/daemon-gen/internal/annotate"
	"github.com/daemoncli/daemon-gen/internal/catalog"
	"github.com/daemoncli/daemon-gen/internal/codegen"
	"github.com/daemoncli/daemon-gen/internal/diag"
	"github.com/daemoncli/daemon-gen/internal/manifest"
	"github.com/daemoncli/daemon-gen/internal/scan"
	"github.com/daemoncli/daemon-gen/internal/sig"
)

// Source is one (path, bytes) pair supplied by the collaborator.
type Source struct {
	Path string
	Text string
}

// Result is everything the pipeline produces for one profile: the
// finalized catalog, the synthesized manifest, its canonical JSON, the
// emitted files (empty if diagnostics contain an error), and every
// diagnostic accumulated along the way.
type Result struct {
	Catalog      catalog.Catalog
	Manifest     manifest.Manifest
	ManifestJSON []byte
	Files        []codegen.EmittedFile
	Diagnostics  []diag.Diagnostic
}

// HasErrors reports whether any diagnostic in the result is an error.
func (r Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diag.SeverityError {
			return true
		}
	}
	return false
}

// Run executes stages A through G over sources for one device profile.
// Stages A–C are best-effort and keep going after a bad command (spec
// §7); stages D–G run only when zero errors have accumulated by the
// time C finishes.
func Run(deviceID string, device manifest.Device, sources []Source) Result {
	sink := &diag.Sink{}
	builder := catalog.NewBuilder(deviceID)

	for _, src := range sources {
		unit := scan.NewSourceUnit(src.Path, src.Text)
		blocks := scan.Scan(unit, sink)
		glog.V(1).Infof("%s: found %d export annotation(s)", src.Path, len(blocks))

		for _, blk := range blocks {
			if blk.DeclText == "" {
				continue // DANGLING_ANNOTATION already reported by the scanner
			}
			cmd, ok := resolveCommand(blk, sink)
			if !ok {
				continue
			}
			builder.Insert(cmd, blk.AnnotationPos, sink)
		}
	}

	if sink.HasErrors() {
		return Result{Diagnostics: sink.Diagnostics()}
	}

	cat := builder.Finalize(sink)
	man := manifest.Synthesize(cat, device)
	manJSON, err := manifest.MarshalCanonical(man)
	if err != nil {
		sink.Add(diag.New(diag.Pos{File: deviceID}, diag.AnnotationSyntax, "manifest serialization failed: %v", err))
		return Result{Diagnostics: sink.Diagnostics()}
	}

	if sink.HasErrors() {
		return Result{Catalog: cat, Manifest: man, ManifestJSON: manJSON, Diagnostics: sink.Diagnostics()}
	}

	params := codegen.DeriveRuntimeParams(cat)
	files := []codegen.EmittedFile{
		codegen.EmitDispatch(cat),
		codegen.EmitRuntimeHeader(),
		codegen.EmitRuntimeSource(params, manJSON),
	}

	return Result{
		Catalog:      cat,
		Manifest:     man,
		ManifestJSON: manJSON,
		Files:        files,
		Diagnostics:  sink.Diagnostics(),
	}
}

// resolveCommand runs stages B and C over one AnnotationBlock: parse
// the annotation's key/value grammar, parse its args/safety
// sub-grammars, resolve the C declaration, and reconcile the two.
func resolveCommand(blk scan.AnnotationBlock, sink *diag.Sink) (catalog.Command, bool) {
	raw, ok := annotate.Parse(blk.AnnotationText, blk.AnnotationPos, sink)
	if !ok {
		return catalog.Command{}, false
	}

	args, ok := annotate.ParseArgs(raw.Values[annotate.KeyArgs], blk.AnnotationPos, sink)
	if !ok {
		return catalog.Command{}, false
	}
	safety, ok := annotate.ParseSafety(raw.Values[annotate.KeySafety], blk.AnnotationPos, sink)
	if !ok {
		return catalog.Command{}, false
	}

	resolved, ok := sig.Resolve(blk.DeclText, blk.DeclPos, sink)
	if !ok {
		return catalog.Command{}, false
	}

	if fn, present := raw.Values[annotate.KeyFunction]; present && fn != resolved.Name {
		sink.Add(diag.New(blk.AnnotationPos, diag.FunctionNameMismatch,
			"annotation function=%q does not match declared function %q", fn, resolved.Name))
		return catalog.Command{}, false
	}

	if !sig.Reconcile(args, resolved, blk.DeclPos, sink) {
		return catalog.Command{}, false
	}

	return catalog.Command{
		Token:  raw.Values[annotate.KeyToken],
		Desc:   raw.Values[annotate.KeyDesc],
		Args:   args,
		Safety: safety,
		Sig:    resolved,
	}, true
}

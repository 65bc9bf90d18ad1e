// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/vkglsl/ir"
)

// Profile selects the target GLSL dialect.
type Profile uint8

const (
	// ProfileES2 targets the legacy mobile feature level. Vulkan still
	// requires at least GLSL ES 3.10 source, so the profile controls
	// feature gating, not the #version line.
	ProfileES2 Profile = iota

	// ProfileES31 targets the mobile feature level with compute and
	// storage resources.
	ProfileES31

	// ProfileSM4 targets the desktop feature level without
	// tessellation.
	ProfileSM4

	// ProfileSM5 targets the full desktop feature level.
	ProfileSM5
)

// String returns the profile name.
func (p Profile) String() string {
	switch p {
	case ProfileES2:
		return "ES2"
	case ProfileES31:
		return "ES3_1"
	case ProfileSM4:
		return "SM4"
	case ProfileSM5:
		return "SM5"
	default:
		return "unknown"
	}
}

// IsES reports whether the profile is an OpenGL ES feature level.
// ES profiles carry precision qualifiers on every declaration.
func (p Profile) IsES() bool {
	return p == ProfileES2 || p == ProfileES31
}

// versionDirective returns the #version line value for the profile.
func (p Profile) versionDirective() string {
	if p.IsES() {
		return "310 es"
	}
	if p == ProfileSM4 {
		return "430"
	}
	return "450"
}

// Options controls dialect selection and code generation. Platform
// differences are per-invocation options; there is no process-global
// configuration.
type Options struct {
	// TargetProfile selects the feature level.
	TargetProfile Profile

	// EntryPoint names the function to wrap in the synthesized main.
	EntryPoint string

	// AllowCombinedSamplers permits fusing a texture with its single
	// sampler state into one combined binding. Textures reached by raw
	// fetches or size queries are always fused.
	AllowCombinedSamplers bool

	// GenerateLayoutLocations emits explicit layout(location=N) on
	// stage inputs and outputs.
	GenerateLayoutLocations bool

	// GroupFlattenedUBs keeps flattened constant-buffer members in
	// per-buffer packed arrays instead of merging them into the global
	// ones.
	GroupFlattenedUBs bool

	// DefaultPrecisionIsReduced places unannotated floats in the
	// medium-precision packed class.
	DefaultPrecisionIsReduced bool
}

// DefaultOptions returns the default generation options.
func DefaultOptions() Options {
	return Options{
		TargetProfile:           ProfileSM5,
		EntryPoint:              "main",
		AllowCombinedSamplers:   true,
		GenerateLayoutLocations: true,
	}
}

// Generate compiles the shader to Vulkan-dialect GLSL text and the
// descriptor binding table. The shader tree is mutated by the rewrite
// passes and must not be reused afterwards. The returned binding table
// is sorted.
func Generate(shader *ir.Shader, state *ir.ParseState, stage ir.ShaderStage, opts Options) (string, *BindingTable, error) {
	if state.Diags == nil {
		state.Diags = &ir.DiagSink{}
	}
	w := newWriter(shader, state, stage, &opts)

	synthesizeMain(w)
	if state.Diags.HasErrors() {
		return "", nil, fmt.Errorf("entry point synthesis: %w", state.Diags.Err())
	}

	breakPrecisionChanges(w)
	decomposeMatrixOps(w)

	gatherSamplerFacts(w)
	w.mapping = w.gather.consolidate(opts.AllowCombinedSamplers)

	w.closure = buildTypeClosure(shader, state)

	if err := w.writeDecls(); err != nil {
		return "", nil, fmt.Errorf("emit: %w", err)
	}
	if state.Diags.HasErrors() {
		return "", nil, fmt.Errorf("emit: %w", state.Diags.Err())
	}

	w.bindings.Sort()
	return w.assemble(), w.bindings, nil
}

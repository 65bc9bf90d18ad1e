// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package vkglsl cross-compiles a typed shader IR into Vulkan-dialect
// GLSL text plus a descriptor binding table. The glsl subpackage holds
// the backend; this package is the high-level entry point and the
// interface to an external SPIR-V assembler.
package vkglsl

import (
	"fmt"

	"github.com/gogpu/vkglsl/glsl"
	"github.com/gogpu/vkglsl/ir"
)

// Options re-exports the backend dialect options.
type Options = glsl.Options

// DefaultOptions returns the default generation options.
func DefaultOptions() Options {
	return glsl.DefaultOptions()
}

// Result is the outcome of one successful generation.
type Result struct {
	// GLSL is the emitted source text, reflection header included.
	GLSL string

	// Bindings is the sorted descriptor binding table.
	Bindings *glsl.BindingTable

	// Diagnostics holds the warnings accumulated during generation.
	Diagnostics []ir.Diagnostic
}

// Generate compiles one shader. The IR tree is consumed: rewrite passes
// mutate it and it must not be generated twice.
func Generate(shader *ir.Shader, state *ir.ParseState, stage ir.ShaderStage, opts Options) (*Result, error) {
	if state == nil {
		state = ir.NewParseState()
	}
	text, table, err := glsl.Generate(shader, state, stage, opts)
	if err != nil {
		return nil, err
	}
	return &Result{
		GLSL:        text,
		Bindings:    table,
		Diagnostics: state.Diags.Diagnostics,
	}, nil
}

// NameBinding is one entry of the assembler's reflection list: a
// resource name resolved to its final descriptor binding.
type NameBinding struct {
	Name    string
	Binding int32
}

// Assembler turns emitted GLSL text into SPIR-V words. Implementations
// wrap an external assembler toolchain; the backend itself never
// encodes SPIR-V.
type Assembler interface {
	Assemble(source string, stage ir.ShaderStage) (words []uint32, reflection []NameBinding, err error)
}

// CompiledShader pairs the assembled words with the generation result.
type CompiledShader struct {
	Result
	Words      []uint32
	Reflection []NameBinding
}

// Compile generates GLSL and hands it to the assembler.
func Compile(shader *ir.Shader, state *ir.ParseState, stage ir.ShaderStage, opts Options, asm Assembler) (*CompiledShader, error) {
	res, err := Generate(shader, state, stage, opts)
	if err != nil {
		return nil, err
	}
	words, reflection, err := asm.Assemble(res.GLSL, stage)
	if err != nil {
		return nil, fmt.Errorf("assemble %s shader: %w", stage, err)
	}
	return &CompiledShader{
		Result:     *res,
		Words:      words,
		Reflection: reflection,
	}, nil
}

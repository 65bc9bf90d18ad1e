// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vkglsl

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/vkglsl/ir"
)

func passthroughShader() *ir.Shader {
	shader := &ir.Shader{}
	vec4 := shader.EnsureType("", ir.VectorType{Kind: ir.ScalarFloat, Size: 4})
	pos := &ir.DeclVariable{Name: "position", Type: vec4, Semantic: "ATTRIBUTE0"}
	sig := &ir.FunctionSignature{
		Name:           "vsmain",
		ReturnType:     vec4,
		ReturnSemantic: "SV_Position",
		Parameters:     []*ir.DeclVariable{pos},
		ParameterModes: []ir.VariableMode{ir.ModeIn},
		IsDefined:      true,
		Body:           ir.Block{&ir.Return{Value: &ir.DerefVariable{Var: pos}}},
	}
	shader.Decls = append(shader.Decls, &ir.Function{Name: "vsmain", Signatures: []*ir.FunctionSignature{sig}})
	return shader
}

func TestGenerateNilState(t *testing.T) {
	opts := DefaultOptions()
	opts.EntryPoint = "vsmain"
	res, err := Generate(passthroughShader(), nil, ir.StageVertex, opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(res.GLSL, "#version 450") {
		t.Errorf("unexpected output:\n%s", res.GLSL)
	}
	if res.Bindings == nil {
		t.Error("binding table missing from result")
	}
}

type fakeAssembler struct {
	words []uint32
	err   error

	gotSource string
	gotStage  ir.ShaderStage
}

func (f *fakeAssembler) Assemble(source string, stage ir.ShaderStage) ([]uint32, []NameBinding, error) {
	f.gotSource = source
	f.gotStage = stage
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.words, []NameBinding{{Name: "pu_h", Binding: 0}}, nil
}

func TestCompile(t *testing.T) {
	opts := DefaultOptions()
	opts.EntryPoint = "vsmain"
	asm := &fakeAssembler{words: []uint32{0x07230203}}

	cs, err := Compile(passthroughShader(), ir.NewParseState(), ir.StageVertex, opts, asm)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(cs.Words) != 1 || cs.Words[0] != 0x07230203 {
		t.Errorf("Words = %v", cs.Words)
	}
	if asm.gotStage != ir.StageVertex {
		t.Errorf("assembler saw stage %v", asm.gotStage)
	}
	if asm.gotSource != cs.GLSL {
		t.Error("assembler input differs from the generated text")
	}
	if len(cs.Reflection) != 1 || cs.Reflection[0].Name != "pu_h" {
		t.Errorf("Reflection = %v", cs.Reflection)
	}
}

func TestCompileAssemblerError(t *testing.T) {
	opts := DefaultOptions()
	opts.EntryPoint = "vsmain"
	asm := &fakeAssembler{err: errors.New("validator rejected module")}

	_, err := Compile(passthroughShader(), ir.NewParseState(), ir.StageVertex, opts, asm)
	if err == nil {
		t.Fatal("expected assembler failure to propagate")
	}
	if !strings.Contains(err.Error(), "vertex") {
		t.Errorf("err = %v, want stage name in message", err)
	}
}

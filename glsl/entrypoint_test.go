// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"
	"testing"

	"github.com/gogpu/vkglsl/ir"
)

func TestGenerateEntryPointNotFound(t *testing.T) {
	shader, state := texturedPixelShader()
	opts := DefaultOptions()
	opts.EntryPoint = "missing"

	out, _, err := Generate(shader, state, ir.StagePixel, opts)
	if err == nil {
		t.Fatal("expected an error for a missing entry point")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v, want mention of the missing entry", err)
	}
	if out != "" {
		t.Errorf("no output expected on failure, got:\n%s", out)
	}
}

func TestGenerateParameterWithoutSemantic(t *testing.T) {
	shader := &ir.Shader{}
	vec4 := shader.EnsureType("", ir.VectorType{Kind: ir.ScalarFloat, Size: 4})
	uv := &ir.DeclVariable{Name: "uv", Type: vec4}
	sig := &ir.FunctionSignature{
		Name:           "psmain",
		ReturnType:     vec4,
		ReturnSemantic: "SV_Target0",
		Parameters:     []*ir.DeclVariable{uv},
		ParameterModes: []ir.VariableMode{ir.ModeIn},
		IsDefined:      true,
		Body:           ir.Block{&ir.Return{Value: &ir.DerefVariable{Var: uv}}},
	}
	shader.Decls = append(shader.Decls, &ir.Function{Name: "psmain", Signatures: []*ir.FunctionSignature{sig}})

	_, _, err := Generate(shader, ir.NewParseState(), ir.StagePixel, pixelOptions())
	if err == nil {
		t.Fatal("expected an error for a semantic-less leaf parameter")
	}
	if !strings.Contains(err.Error(), "no semantic") {
		t.Errorf("err = %v", err)
	}
}

func TestGenerateStructParameterFlattening(t *testing.T) {
	shader := &ir.Shader{}
	vec2 := shader.EnsureType("", ir.VectorType{Kind: ir.ScalarFloat, Size: 2})
	vec4 := shader.EnsureType("", ir.VectorType{Kind: ir.ScalarFloat, Size: 4})
	input := shader.AddType(ir.Type{Name: "PixelInput", Inner: ir.StructType{
		Members: []ir.StructMember{
			{Name: "uv", Type: vec2, Semantic: "TEXCOORD0"},
			{Name: "color", Type: vec4, Semantic: "COLOR0"},
		},
	}})

	arg := &ir.DeclVariable{Name: "input", Type: input}
	ret := &ir.Return{Value: &ir.DerefRecord{Record: &ir.DerefVariable{Var: arg}, Field: "color"}}
	sig := &ir.FunctionSignature{
		Name:           "psmain",
		ReturnType:     vec4,
		ReturnSemantic: "SV_Target0",
		Parameters:     []*ir.DeclVariable{arg},
		ParameterModes: []ir.VariableMode{ir.ModeIn},
		IsDefined:      true,
		Body:           ir.Block{ret},
	}
	shader.Decls = append(shader.Decls, &ir.Function{Name: "psmain", Signatures: []*ir.FunctionSignature{sig}})

	out, _, err := Generate(shader, ir.NewParseState(), ir.StagePixel, pixelOptions())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, want := range []string{
		"layout(location=0) in vec2 in_TEXCOORD0;\n",
		"layout(location=1) in vec4 in_COLOR0;\n",
		"param_input.uv = in_TEXCOORD0;",
		"param_input.color = in_COLOR0;",
		"struct PixelInput",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateArrayParameterIndexedSemantics(t *testing.T) {
	shader := &ir.Shader{}
	vec4 := shader.EnsureType("", ir.VectorType{Kind: ir.ScalarFloat, Size: 4})
	arr := shader.AddType(ir.Type{Inner: ir.ArrayType{Base: vec4, Size: 2}})

	coords := &ir.DeclVariable{Name: "coords", Type: arr, Semantic: "TEXCOORD0"}
	first := &ir.DerefArray{
		Array: &ir.DerefVariable{Var: coords},
		Index: &ir.Constant{Type: shader.EnsureType("", ir.ScalarType{Kind: ir.ScalarInt}), Values: []ir.ScalarValue{ir.IntValue(0)}},
	}
	sig := &ir.FunctionSignature{
		Name:           "psmain",
		ReturnType:     vec4,
		ReturnSemantic: "SV_Target0",
		Parameters:     []*ir.DeclVariable{coords},
		ParameterModes: []ir.VariableMode{ir.ModeIn},
		IsDefined:      true,
		Body:           ir.Block{&ir.Return{Value: first}},
	}
	shader.Decls = append(shader.Decls, &ir.Function{Name: "psmain", Signatures: []*ir.FunctionSignature{sig}})

	out, _, err := Generate(shader, ir.NewParseState(), ir.StagePixel, pixelOptions())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, want := range []string{
		"in vec4 in_TEXCOORD0;",
		"in vec4 in_TEXCOORD1;",
		"param_coords[0] = in_TEXCOORD0;",
		"param_coords[1] = in_TEXCOORD1;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSemanticIndexed(t *testing.T) {
	tests := []struct {
		semantic string
		index    uint32
		want     string
	}{
		{"TEXCOORD0", 0, "TEXCOORD0"},
		{"TEXCOORD0", 3, "TEXCOORD3"},
		{"TEXCOORD2", 1, "TEXCOORD3"},
		{"COLOR", 1, "COLOR1"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := semanticIndexed(tt.semantic, tt.index); got != tt.want {
			t.Errorf("semanticIndexed(%q, %d) = %q, want %q", tt.semantic, tt.index, got, tt.want)
		}
	}
}

func TestGenerateGeometryEpilogue(t *testing.T) {
	shader := &ir.Shader{}
	vec4 := shader.EnsureType("", ir.VectorType{Kind: ir.ScalarFloat, Size: 4})
	inArr := shader.AddType(ir.Type{Inner: ir.ArrayType{Base: vec4, Size: 3}})

	positions := &ir.DeclVariable{Name: "positions", Type: inArr, Semantic: "SV_Position"}
	sig := &ir.FunctionSignature{
		Name:            "gsmain",
		ReturnType:      vec4,
		ReturnSemantic:  "SV_Position",
		Parameters:      []*ir.DeclVariable{positions},
		ParameterModes:  []ir.VariableMode{ir.ModeIn},
		IsDefined:       true,
		InputPrimitive:  "triangles",
		OutputPrimitive: "triangle_strip",
		MaxVertexCount:  3,
		Body: ir.Block{&ir.Return{Value: &ir.DerefArray{
			Array: &ir.DerefVariable{Var: positions},
			Index: &ir.Constant{Type: shader.EnsureType("", ir.ScalarType{Kind: ir.ScalarInt}), Values: []ir.ScalarValue{ir.IntValue(0)}},
		}}},
	}
	shader.Decls = append(shader.Decls, &ir.Function{Name: "gsmain", Signatures: []*ir.FunctionSignature{sig}})

	opts := DefaultOptions()
	opts.EntryPoint = "gsmain"
	out, _, err := Generate(shader, ir.NewParseState(), ir.StageGeometry, opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, want := range []string{
		"layout(triangles) in;\n",
		"layout(triangle_strip, max_vertices=3) out;\n",
		"param_positions[0] = gl_in[0].gl_Position;",
		"param_positions[2] = gl_in[2].gl_Position;",
		"EmitVertex();",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateHullEpilogue(t *testing.T) {
	shader := &ir.Shader{}
	float := shader.EnsureType("", ir.ScalarType{Kind: ir.ScalarFloat})
	vec4 := shader.EnsureType("", ir.VectorType{Kind: ir.ScalarFloat, Size: 4})
	inPatch := shader.AddType(ir.Type{Inner: ir.PatchType{Inner: vec4, Length: 3}})
	outArr := shader.AddType(ir.Type{Inner: ir.ArrayType{Base: float, Size: 3}})

	points := &ir.DeclVariable{Name: "points", Type: inPatch, Semantic: "POSITION0"}
	hsSig := &ir.FunctionSignature{
		Name:                "hsmain",
		ReturnType:          vec4,
		ReturnSemantic:      "POSITION0",
		Parameters:          []*ir.DeclVariable{points},
		ParameterModes:      []ir.VariableMode{ir.ModeIn},
		IsDefined:           true,
		OutputControlPoints: 3,
		PatchConstantFunc:   "patchfn",
		Body: ir.Block{&ir.Return{Value: &ir.DerefArray{
			Array: &ir.DerefVariable{Var: points},
			Index: &ir.Constant{Type: shader.EnsureType("", ir.ScalarType{Kind: ir.ScalarInt}), Values: []ir.ScalarValue{ir.IntValue(0)}},
		}}},
	}
	shader.Decls = append(shader.Decls, &ir.Function{Name: "hsmain", Signatures: []*ir.FunctionSignature{hsSig}})

	edges := &ir.DeclVariable{Name: "edges", Type: outArr, Semantic: "SV_TessFactor0"}
	pcfSig := &ir.FunctionSignature{
		Name:           "patchfn",
		ReturnType:     ir.InvalidType,
		Parameters:     []*ir.DeclVariable{edges},
		ParameterModes: []ir.VariableMode{ir.ModeOut},
		IsDefined:      true,
	}
	shader.Decls = append(shader.Decls, &ir.Function{Name: "patchfn", Signatures: []*ir.FunctionSignature{pcfSig}})

	opts := DefaultOptions()
	opts.EntryPoint = "hsmain"
	out, _, err := Generate(shader, ir.NewParseState(), ir.StageHull, opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, want := range []string{
		"layout(vertices=3) out;\n",
		"barrier();",
		"if ((gl_InvocationID == 0))",
		"patchfn(patch_edges);",
		"patch out float out_SV_TessFactor0;",
		"out_SV_TessFactor0 = patch_edges[0];",
		"out_POSITION0[gl_InvocationID] = ret_hsmain;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

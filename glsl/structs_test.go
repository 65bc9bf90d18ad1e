// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"testing"

	"github.com/gogpu/vkglsl/ir"
)

// buildNestedShader declares Outer { Inner inner; } with Outer used by
// a uniform block member, so the closure must pull Inner in through
// Outer.
func buildNestedShader() (*ir.Shader, *ir.ParseState, ir.TypeHandle, ir.TypeHandle) {
	shader := &ir.Shader{}
	float := shader.EnsureType("", ir.ScalarType{Kind: ir.ScalarFloat})

	inner := shader.AddType(ir.Type{Name: "InnerData", Inner: ir.StructType{
		Members: []ir.StructMember{{Name: "value", Type: float}},
	}})
	outer := shader.AddType(ir.Type{Name: "OuterData", Inner: ir.StructType{
		Members: []ir.StructMember{{Name: "inner", Type: inner}},
	}})

	state := ir.NewParseState()
	member := &ir.DeclVariable{Name: "data", Type: outer, Mode: ir.ModeUniform}
	state.UniformBlocks = []ir.UniformBlock{{Name: "Params", Vars: []*ir.DeclVariable{member}}}
	state.UsedUniformBlocks["Params"] = true
	return shader, state, inner, outer
}

func TestClosureGrowsThroughMembers(t *testing.T) {
	shader, state, inner, outer := buildNestedShader()
	c := buildTypeClosure(shader, state)

	if !c.contains(outer) {
		t.Error("closure missing the uniform block member type")
	}
	if !c.contains(inner) {
		t.Error("closure missing the nested member type")
	}
}

func TestClosureSkipsUnusedBlocks(t *testing.T) {
	shader, state, inner, outer := buildNestedShader()
	state.UsedUniformBlocks["Params"] = false
	c := buildTypeClosure(shader, state)

	if c.contains(outer) || c.contains(inner) {
		t.Error("closure must not include types of unused uniform blocks")
	}
}

func TestClosureIsFixedPoint(t *testing.T) {
	shader, state, _, _ := buildNestedShader()
	first := buildTypeClosure(shader, state)
	second := buildTypeClosure(shader, state)

	if len(first.used) != len(second.used) {
		t.Fatalf("closure not stable: %d vs %d types", len(first.used), len(second.used))
	}
	for h := range first.used {
		if !second.used[h] {
			t.Errorf("type %d missing from the recomputed closure", h)
		}
	}
}

func TestClosureThroughArrayOfStructs(t *testing.T) {
	shader := &ir.Shader{}
	float := shader.EnsureType("", ir.ScalarType{Kind: ir.ScalarFloat})
	elem := shader.AddType(ir.Type{Name: "LightData", Inner: ir.StructType{
		Members: []ir.StructMember{{Name: "intensity", Type: float}},
	}})
	arr := shader.AddType(ir.Type{Inner: ir.ArrayType{Base: elem, Size: 8}})

	state := ir.NewParseState()
	member := &ir.DeclVariable{Name: "lights", Type: arr, Mode: ir.ModeUniform}
	state.UniformBlocks = []ir.UniformBlock{{Name: "Lights", Vars: []*ir.DeclVariable{member}}}
	state.UsedUniformBlocks["Lights"] = true

	c := buildTypeClosure(shader, state)
	if !c.contains(elem) {
		t.Error("closure missing struct reached through an array")
	}
}

func TestMultiDimensionalArrayWrapper(t *testing.T) {
	shader := &ir.Shader{}
	float := shader.EnsureType("", ir.ScalarType{Kind: ir.ScalarFloat})
	innerArr := shader.AddType(ir.Type{Inner: ir.ArrayType{Base: float, Size: 4}})
	outerArr := shader.AddType(ir.Type{Inner: ir.ArrayType{Base: innerArr, Size: 2}})

	state := ir.NewParseState()
	member := &ir.DeclVariable{Name: "grid", Type: outerArr, Mode: ir.ModeUniform}
	state.UniformBlocks = []ir.UniformBlock{{Name: "Grid", Vars: []*ir.DeclVariable{member}}}
	state.UsedUniformBlocks["Grid"] = true

	c := buildTypeClosure(shader, state)
	if len(c.wrappers) != 1 {
		t.Fatalf("expected 1 wrapper struct, got %d", len(c.wrappers))
	}
	w := c.wrappers[0]
	if w.size != 4 {
		t.Errorf("wrapper size = %d, want inner dimension 4", w.size)
	}
	if w.elem != float {
		t.Errorf("wrapper element = %d, want float handle %d", w.elem, float)
	}
	if c.wrapperFor(shader, innerArr) == nil {
		t.Error("wrapperFor failed to resolve the inner array handle")
	}
}

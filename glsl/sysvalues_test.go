// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"testing"

	"github.com/gogpu/vkglsl/ir"
)

func TestFindSystemValue(t *testing.T) {
	tests := []struct {
		name     string
		stage    ir.ShaderStage
		semantic string
		mode     ir.VariableMode
		want     string
	}{
		{"vertex id", ir.StageVertex, "SV_VertexID", ir.ModeIn, "gl_VertexIndex"},
		{"instance id", ir.StageVertex, "SV_InstanceID", ir.ModeIn, "gl_InstanceIndex"},
		{"vertex position out", ir.StageVertex, "SV_Position", ir.ModeOut, "gl_Position"},
		{"case insensitive", ir.StageVertex, "sv_position", ir.ModeOut, "gl_Position"},
		{"frag coord", ir.StagePixel, "SV_Position", ir.ModeIn, "gl_FragCoord"},
		{"frag depth", ir.StagePixel, "SV_Depth", ir.ModeOut, "gl_FragDepth"},
		{"front face", ir.StagePixel, "SV_IsFrontFace", ir.ModeIn, "gl_FrontFacing"},
		{"tess coord", ir.StageDomain, "SV_DomainLocation", ir.ModeIn, "gl_TessCoord"},
		{"control point id", ir.StageHull, "SV_OutputControlPointID", ir.ModeIn, "gl_InvocationID"},
		{"dispatch thread", ir.StageCompute, "SV_DispatchThreadID", ir.ModeIn, "gl_GlobalInvocationID"},
		{"group index", ir.StageCompute, "SV_GroupIndex", ir.ModeIn, "gl_LocalInvocationIndex"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sv := findSystemValue(tt.stage, tt.semantic, tt.mode, false)
			if sv == nil {
				t.Fatalf("findSystemValue(%v, %q, %v) = nil", tt.stage, tt.semantic, tt.mode)
			}
			if sv.glslName != tt.want {
				t.Errorf("glslName = %q, want %q", sv.glslName, tt.want)
			}
		})
	}
}

func TestFindSystemValueMisses(t *testing.T) {
	tests := []struct {
		name     string
		stage    ir.ShaderStage
		semantic string
		mode     ir.VariableMode
	}{
		{"user semantic", ir.StageVertex, "TEXCOORD0", ir.ModeIn},
		{"wrong direction", ir.StageVertex, "SV_VertexID", ir.ModeOut},
		{"wrong stage", ir.StageVertex, "SV_DomainLocation", ir.ModeIn},
		{"empty semantic", ir.StagePixel, "", ir.ModeIn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if sv := findSystemValue(tt.stage, tt.semantic, tt.mode, false); sv != nil {
				t.Errorf("expected miss, got %q", sv.glslName)
			}
		})
	}
}

func TestPositionAdjustFlags(t *testing.T) {
	out := findSystemValue(ir.StageVertex, "SV_Position", ir.ModeOut, false)
	if out == nil || !out.applyClipSpaceAdjust {
		t.Error("vertex position output should carry the clip-space adjust flag")
	}
	in := findSystemValue(ir.StagePixel, "SV_Position", ir.ModeIn, false)
	if in == nil || !in.originUpperLeft {
		t.Error("gl_FragCoord should carry the origin-upper-left flag")
	}
}

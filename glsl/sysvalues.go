// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"

	"github.com/gogpu/vkglsl/ir"
)

// systemValue maps a source-language semantic to a GLSL builtin for one
// stage and direction.
type systemValue struct {
	semantic string
	typeName string
	glslName string
	mode     ir.VariableMode

	// originUpperLeft marks builtins whose window origin differs from
	// the source convention (gl_FragCoord).
	originUpperLeft bool

	// arrayVariable marks builtins declared as arrays (sample masks,
	// per-vertex tessellation outputs).
	arrayVariable bool

	// applyClipSpaceAdjust marks position outputs that need the
	// clip-space Y flip for the target.
	applyClipSpaceAdjust bool

	// esOnly restricts the entry to ES profiles.
	esOnly bool
}

var vertexSystemValues = []systemValue{
	{semantic: "SV_VertexID", typeName: "int", glslName: "gl_VertexIndex", mode: ir.ModeIn},
	{semantic: "SV_InstanceID", typeName: "int", glslName: "gl_InstanceIndex", mode: ir.ModeIn},
	{semantic: "SV_ViewID", typeName: "int", glslName: "gl_ViewIndex", mode: ir.ModeIn},
	{semantic: "SV_Position", typeName: "vec4", glslName: "gl_Position", mode: ir.ModeOut, applyClipSpaceAdjust: true},
	{semantic: "SV_RenderTargetArrayIndex", typeName: "int", glslName: "gl_Layer", mode: ir.ModeOut},
}

var pixelSystemValues = []systemValue{
	{semantic: "SV_Position", typeName: "vec4", glslName: "gl_FragCoord", mode: ir.ModeIn, originUpperLeft: true},
	{semantic: "SV_IsFrontFace", typeName: "bool", glslName: "gl_FrontFacing", mode: ir.ModeIn},
	{semantic: "SV_PrimitiveID", typeName: "int", glslName: "gl_PrimitiveID", mode: ir.ModeIn},
	{semantic: "SV_RenderTargetArrayIndex", typeName: "int", glslName: "gl_Layer", mode: ir.ModeIn},
	{semantic: "SV_Coverage", typeName: "int", glslName: "gl_SampleMaskIn", mode: ir.ModeIn, arrayVariable: true},
	{semantic: "SV_SampleIndex", typeName: "int", glslName: "gl_SampleID", mode: ir.ModeIn},
	{semantic: "SV_ViewID", typeName: "int", glslName: "gl_ViewIndex", mode: ir.ModeIn},
	{semantic: "SV_Depth", typeName: "float", glslName: "gl_FragDepth", mode: ir.ModeOut},
	{semantic: "SV_Coverage", typeName: "int", glslName: "gl_SampleMask", mode: ir.ModeOut, arrayVariable: true},
}

var geometrySystemValues = []systemValue{
	{semantic: "SV_PrimitiveID", typeName: "int", glslName: "gl_PrimitiveIDIn", mode: ir.ModeIn},
	{semantic: "SV_Position", typeName: "vec4", glslName: "gl_Position", mode: ir.ModeIn, arrayVariable: true},
	{semantic: "SV_Position", typeName: "vec4", glslName: "gl_Position", mode: ir.ModeOut, applyClipSpaceAdjust: true},
	{semantic: "SV_PrimitiveID", typeName: "int", glslName: "gl_PrimitiveID", mode: ir.ModeOut},
	{semantic: "SV_RenderTargetArrayIndex", typeName: "int", glslName: "gl_Layer", mode: ir.ModeOut},
}

var hullSystemValues = []systemValue{
	{semantic: "SV_OutputControlPointID", typeName: "int", glslName: "gl_InvocationID", mode: ir.ModeIn},
	{semantic: "SV_PrimitiveID", typeName: "int", glslName: "gl_PrimitiveID", mode: ir.ModeIn},
	{semantic: "SV_Position", typeName: "vec4", glslName: "gl_Position", mode: ir.ModeIn, arrayVariable: true},
	{semantic: "SV_Position", typeName: "vec4", glslName: "gl_Position", mode: ir.ModeOut, arrayVariable: true},
}

var domainSystemValues = []systemValue{
	{semantic: "SV_DomainLocation", typeName: "vec3", glslName: "gl_TessCoord", mode: ir.ModeIn},
	{semantic: "SV_PrimitiveID", typeName: "int", glslName: "gl_PrimitiveID", mode: ir.ModeIn},
	{semantic: "SV_Position", typeName: "vec4", glslName: "gl_Position", mode: ir.ModeIn, arrayVariable: true},
	{semantic: "SV_Position", typeName: "vec4", glslName: "gl_Position", mode: ir.ModeOut, applyClipSpaceAdjust: true},
}

var computeSystemValues = []systemValue{
	{semantic: "SV_DispatchThreadID", typeName: "uvec3", glslName: "gl_GlobalInvocationID", mode: ir.ModeIn},
	{semantic: "SV_GroupID", typeName: "uvec3", glslName: "gl_WorkGroupID", mode: ir.ModeIn},
	{semantic: "SV_GroupIndex", typeName: "uint", glslName: "gl_LocalInvocationIndex", mode: ir.ModeIn},
	{semantic: "SV_GroupThreadID", typeName: "uvec3", glslName: "gl_LocalInvocationID", mode: ir.ModeIn},
}

var stageSystemValues = [ir.StageCount][]systemValue{
	ir.StageVertex:   vertexSystemValues,
	ir.StagePixel:    pixelSystemValues,
	ir.StageGeometry: geometrySystemValues,
	ir.StageHull:     hullSystemValues,
	ir.StageDomain:   domainSystemValues,
	ir.StageCompute:  computeSystemValues,
}

// findSystemValue looks up a semantic for one stage and direction.
// Matching is case-insensitive; a miss returns nil and the caller falls
// through to user varying generation.
func findSystemValue(stage ir.ShaderStage, semantic string, mode ir.VariableMode, esProfile bool) *systemValue {
	if stage >= ir.StageCount || semantic == "" {
		return nil
	}
	table := stageSystemValues[stage]
	for i := range table {
		sv := &table[i]
		if sv.mode != mode {
			continue
		}
		if sv.esOnly && !esProfile {
			continue
		}
		if strings.EqualFold(sv.semantic, semantic) {
			return sv
		}
	}
	return nil
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

// glslKeywords contains GLSL reserved words and builtin type names that
// user identifiers must not collide with.
var glslKeywords = map[string]struct{}{
	// Basic types
	"void": {}, "bool": {}, "int": {}, "uint": {}, "float": {}, "double": {},

	// Vector types
	"vec2": {}, "vec3": {}, "vec4": {},
	"ivec2": {}, "ivec3": {}, "ivec4": {},
	"uvec2": {}, "uvec3": {}, "uvec4": {},
	"bvec2": {}, "bvec3": {}, "bvec4": {},

	// Matrix types
	"mat2": {}, "mat3": {}, "mat4": {},
	"mat2x2": {}, "mat2x3": {}, "mat2x4": {},
	"mat3x2": {}, "mat3x3": {}, "mat3x4": {},
	"mat4x2": {}, "mat4x3": {}, "mat4x4": {},

	// Sampler and texture types
	"sampler": {}, "sampler2D": {}, "sampler3D": {}, "samplerCube": {},
	"sampler2DShadow": {}, "samplerCubeShadow": {},
	"sampler2DArray": {}, "sampler2DArrayShadow": {},
	"samplerCubeArray": {}, "samplerCubeArrayShadow": {},
	"samplerBuffer": {}, "sampler2DMS": {}, "sampler2DMSArray": {},
	"texture2D": {}, "texture3D": {}, "textureCube": {},
	"texture2DArray": {}, "textureCubeArray": {},
	"textureBuffer": {}, "texture2DMS": {}, "texture2DMSArray": {},
	"isampler2D": {}, "isampler3D": {}, "isamplerCube": {},
	"isampler2DArray": {}, "isamplerBuffer": {},
	"usampler2D": {}, "usampler3D": {}, "usamplerCube": {},
	"usampler2DArray": {}, "usamplerBuffer": {},
	"image2D": {}, "image3D": {}, "imageCube": {}, "image2DArray": {},
	"imageBuffer": {},
	"iimage2D":    {}, "iimage3D": {}, "iimageBuffer": {},
	"uimage2D": {}, "uimage3D": {}, "uimageBuffer": {},
	"subpassInput": {}, "subpassInputMS": {},

	// Storage and parameter qualifiers
	"attribute": {}, "varying": {}, "uniform": {}, "buffer": {},
	"shared": {}, "coherent": {}, "volatile": {}, "restrict": {},
	"readonly": {}, "writeonly": {}, "layout": {},
	"centroid": {}, "flat": {}, "smooth": {}, "noperspective": {},
	"patch": {}, "sample": {}, "invariant": {}, "precise": {},
	"in": {}, "out": {}, "inout": {},
	"lowp": {}, "mediump": {}, "highp": {}, "precision": {},

	// Control flow
	"if": {}, "else": {}, "switch": {}, "case": {}, "default": {},
	"for": {}, "while": {}, "do": {},
	"break": {}, "continue": {}, "return": {}, "discard": {},

	// Literals and reserved
	"true": {}, "false": {}, "struct": {}, "const": {},
	"common": {}, "partition": {}, "active": {}, "asm": {},
	"class": {}, "union": {}, "enum": {}, "typedef": {},
	"template": {}, "this": {}, "goto": {}, "inline": {},
	"noinline": {}, "public": {}, "static": {}, "extern": {},
	"external": {}, "interface": {}, "long": {}, "short": {},
	"half": {}, "fixed": {}, "unsigned": {}, "superp": {},
	"input": {}, "output": {}, "filter": {}, "sizeof": {},
	"cast": {}, "namespace": {}, "using": {},
	"main": {},
}

// escapeKeyword appends an underscore to identifiers that collide with
// a reserved word or with the gl_ builtin prefix.
func escapeKeyword(name string) string {
	if _, reserved := glslKeywords[name]; reserved {
		return name + "_"
	}
	if len(name) >= 3 && name[:3] == "gl_" {
		return name + "_"
	}
	return name
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/vkglsl/ir"
)

// scalarTypeName returns the GLSL scalar type. Reduced precision is a
// qualifier in GLSL, not a distinct type, so half maps to float.
func scalarTypeName(k ir.ScalarKind) string {
	switch k {
	case ir.ScalarBool:
		return "bool"
	case ir.ScalarInt:
		return "int"
	case ir.ScalarUint:
		return "uint"
	default:
		return "float"
	}
}

// vectorTypeName returns the GLSL vector type for a kind and size.
func vectorTypeName(k ir.ScalarKind, size uint8) string {
	prefix := ""
	switch k {
	case ir.ScalarBool:
		prefix = "b"
	case ir.ScalarInt:
		prefix = "i"
	case ir.ScalarUint:
		prefix = "u"
	}
	return fmt.Sprintf("%svec%d", prefix, size)
}

// glslTypeName returns the base GLSL type for a handle. Array suffixes
// are emitted at the declaration site, not here; asking for an array's
// name returns the element name.
func glslTypeName(shader *ir.Shader, h ir.TypeHandle) (string, error) {
	if h == ir.InvalidType {
		return "void", nil
	}
	t := shader.TypeAt(h)
	switch inner := t.Inner.(type) {
	case ir.ScalarType:
		return scalarTypeName(inner.Kind), nil
	case ir.VectorType:
		return vectorTypeName(inner.Kind, inner.Size), nil
	case ir.MatrixType:
		if inner.Columns == inner.Rows {
			return fmt.Sprintf("mat%d", inner.Columns), nil
		}
		return fmt.Sprintf("mat%dx%d", inner.Columns, inner.Rows), nil
	case ir.ArrayType:
		return glslTypeName(shader, inner.Base)
	case ir.StructType:
		if t.Name == "" {
			return "", fmt.Errorf("unnamed struct type %d", h)
		}
		return t.Name, nil
	case ir.SamplerStateType:
		if inner.Comparison {
			return "samplerShadow", nil
		}
		return "sampler", nil
	case ir.ImageType:
		if inner.Class == ir.ImageClassStorage {
			return storageImageTypeName(inner), nil
		}
		return textureTypeName(inner), nil
	case ir.PatchType:
		return glslTypeName(shader, inner.Inner)
	default:
		return "", fmt.Errorf("unrepresentable type %d", h)
	}
}

// arraySuffix returns the bracketed dimension suffix for array handles,
// empty otherwise. Multi-dimensional arrays keep only the outer
// dimension; the inner ones live in wrapper structs.
func arraySuffix(shader *ir.Shader, h ir.TypeHandle) string {
	if a, ok := shader.Inner(h).(ir.ArrayType); ok {
		return fmt.Sprintf("[%d]", a.Size)
	}
	return ""
}

// samplerKindPrefix is the i/u prefix shared by sampler, texture and
// image type names.
func samplerKindPrefix(k ir.ScalarKind) string {
	switch k {
	case ir.ScalarInt:
		return "i"
	case ir.ScalarUint:
		return "u"
	default:
		return ""
	}
}

func imageDimSuffix(img ir.ImageType) string {
	var dim string
	switch img.Dim {
	case ir.Dim1D:
		// 1D textures are not portable to ES targets; treat as 2D.
		dim = "2D"
	case ir.Dim2D:
		dim = "2D"
	case ir.Dim3D:
		dim = "3D"
	case ir.DimCube:
		dim = "Cube"
	case ir.DimBuffer:
		return "Buffer"
	}
	if img.Multisampled {
		dim += "MS"
	}
	if img.Arrayed {
		dim += "Array"
	}
	return dim
}

// textureTypeName returns the separated texture type (Vulkan dialect).
func textureTypeName(img ir.ImageType) string {
	return samplerKindPrefix(img.Scalar) + "texture" + imageDimSuffix(img)
}

// combinedSamplerTypeName returns the combined sampler type for a
// texture, including the shadow suffix.
func combinedSamplerTypeName(img ir.ImageType) string {
	name := samplerKindPrefix(img.Scalar) + "sampler" + imageDimSuffix(img)
	if img.Shadow {
		name += "Shadow"
	}
	return name
}

func storageImageTypeName(img ir.ImageType) string {
	return samplerKindPrefix(img.Scalar) + "image" + imageDimSuffix(img)
}

// storageImageFormat returns the layout format qualifier for a storage
// image element kind.
func storageImageFormat(k ir.ScalarKind) string {
	switch k {
	case ir.ScalarInt:
		return "r32i"
	case ir.ScalarUint:
		return "r32ui"
	default:
		return "r32f"
	}
}

// precisionQualifier returns the leading precision qualifier for ES
// profiles, including the trailing space, and "" for desktop profiles.
func (w *Writer) precisionQualifier(h ir.TypeHandle) string {
	if !w.opts.TargetProfile.IsES() {
		return ""
	}
	switch inner := w.shader.Inner(h).(type) {
	case ir.ScalarType:
		return scalarPrecision(inner.Kind, w.opts.DefaultPrecisionIsReduced)
	case ir.VectorType:
		return scalarPrecision(inner.Kind, w.opts.DefaultPrecisionIsReduced)
	case ir.MatrixType:
		return scalarPrecision(inner.Kind, w.opts.DefaultPrecisionIsReduced)
	case ir.ArrayType:
		return w.precisionQualifier(inner.Base)
	case ir.ImageType, ir.SamplerStateType:
		return "highp "
	default:
		return ""
	}
}

func scalarPrecision(k ir.ScalarKind, reducedDefault bool) string {
	switch k {
	case ir.ScalarHalf:
		return "mediump "
	case ir.ScalarBool:
		return ""
	case ir.ScalarFloat:
		if reducedDefault {
			return "mediump "
		}
		return "highp "
	default:
		return "highp "
	}
}

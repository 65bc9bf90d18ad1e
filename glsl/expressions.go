// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/vkglsl/ir"
)

// opFragments is the emission template for one operator: prefix, then
// the first operand, infix, second operand, suffix. Unary operators use
// only prefix and suffix.
type opFragments struct {
	prefix string
	infix  string
	suffix string
}

var opTable = map[ir.Op]opFragments{
	ir.OpNeg:      {"(-", "", ")"},
	ir.OpLogicNot: {"(!", "", ")"},
	ir.OpBitNot:   {"(~", "", ")"},
	ir.OpRcp:      {"(1.0 / ", "", ")"},
	ir.OpSaturate: {"clamp(", "", ", 0.0, 1.0)"},
	ir.OpDdx:      {"dFdx(", "", ")"},
	ir.OpDdy:      {"dFdy(", "", ")"},

	ir.OpAdd:          {"(", " + ", ")"},
	ir.OpSub:          {"(", " - ", ")"},
	ir.OpMul:          {"(", " * ", ")"},
	ir.OpDiv:          {"(", " / ", ")"},
	ir.OpMod:          {"(", " % ", ")"},
	ir.OpLess:         {"(", " < ", ")"},
	ir.OpLessEqual:    {"(", " <= ", ")"},
	ir.OpGreater:      {"(", " > ", ")"},
	ir.OpGreaterEqual: {"(", " >= ", ")"},
	ir.OpEqual:        {"(", " == ", ")"},
	ir.OpNotEqual:     {"(", " != ", ")"},
	ir.OpBitAnd:       {"(", " & ", ")"},
	ir.OpBitOr:        {"(", " | ", ")"},
	ir.OpBitXor:       {"(", " ^ ", ")"},
	ir.OpShiftLeft:    {"(", " << ", ")"},
	ir.OpShiftRight:   {"(", " >> ", ")"},
	ir.OpLogicAnd:     {"(", " && ", ")"},
	ir.OpLogicOr:      {"(", " || ", ")"},
	ir.OpMin:          {"min(", ", ", ")"},
	ir.OpMax:          {"max(", ", ", ")"},
	ir.OpPow:          {"pow(", ", ", ")"},
	ir.OpDot:          {"dot(", ", ", ")"},
}

// vectorCompareFuncs replaces infix comparisons for vector operands,
// which GLSL only supports through builtins.
var vectorCompareFuncs = map[ir.Op]string{
	ir.OpLess:         "lessThan",
	ir.OpLessEqual:    "lessThanEqual",
	ir.OpGreater:      "greaterThan",
	ir.OpGreaterEqual: "greaterThanEqual",
	ir.OpEqual:        "equal",
	ir.OpNotEqual:     "notEqual",
}

var swizzleLetters = [4]byte{'x', 'y', 'z', 'w'}

// writeExpr renders one expression subtree to text. Statement nodes
// reaching this base case are an internal error.
func (w *Writer) writeExpr(n ir.Node) (string, error) {
	switch e := n.(type) {
	case *ir.Constant:
		return w.writeConstant(e)
	case *ir.DerefVariable:
		return w.nameOf(e.Var), nil
	case *ir.DerefRecord:
		base, err := w.writeExpr(e.Record)
		if err != nil {
			return "", err
		}
		return base + "." + e.Field, nil
	case *ir.DerefArray:
		return w.writeArrayDeref(e)
	case *ir.DerefImage:
		img, err := w.writeExpr(e.Image)
		if err != nil {
			return "", err
		}
		idx, err := w.writeExpr(e.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("imageLoad(%s, %s)", img, idx), nil
	case *ir.Swizzle:
		base, err := w.writeExpr(e.Vec)
		if err != nil {
			return "", err
		}
		var sw strings.Builder
		for _, c := range e.Components {
			if c > 3 {
				panic(fmt.Sprintf("internal error: swizzle component %d", c))
			}
			sw.WriteByte(swizzleLetters[c])
		}
		return base + "." + sw.String(), nil
	case *ir.TextureOp:
		return w.writeTextureOp(e)
	case *ir.Expr:
		return w.writeOperator(e)
	default:
		panic(fmt.Sprintf("internal error: %T is not an expression node", n))
	}
}

func (w *Writer) writeConstant(c *ir.Constant) (string, error) {
	if len(c.Values) == 1 {
		if _, ok := w.shader.Inner(c.Type).(ir.VectorType); !ok {
			return c.Values[0].Literal(), nil
		}
	}
	typeName, err := glslTypeName(w.shader, c.Type)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(c.Values))
	for i, v := range c.Values {
		parts[i] = v.Literal()
	}
	return fmt.Sprintf("%s(%s)", typeName, strings.Join(parts, ", ")), nil
}

// writeArrayDeref emits indexing, inserting the wrapper member access
// for inner dimensions of multi-dimensional arrays.
func (w *Writer) writeArrayDeref(e *ir.DerefArray) (string, error) {
	base, err := w.writeExpr(e.Array)
	if err != nil {
		return "", err
	}
	if _, inner := e.Array.(*ir.DerefArray); inner {
		if _, isArray := w.shader.Inner(w.shader.NodeType(e.Array)).(ir.ArrayType); isArray {
			base += ".Inner"
		}
	}
	idx, err := w.writeExpr(e.Index)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s[%s]", base, idx), nil
}

func (w *Writer) writeOperator(e *ir.Expr) (string, error) {
	if e.Op.IsConversion() {
		return w.writeConversion(e)
	}
	if e.Op == ir.OpDdx || e.Op == ir.OpDdy {
		w.usesDerivatives = true
	}

	a, err := w.writeExpr(e.Operands[0])
	if err != nil {
		return "", err
	}
	if e.Op.OperandCount() == 1 {
		frag, ok := opTable[e.Op]
		if !ok {
			panic(fmt.Sprintf("internal error: no emission rule for operator %d", e.Op))
		}
		return frag.prefix + a + frag.suffix, nil
	}

	b, err := w.writeExpr(e.Operands[1])
	if err != nil {
		return "", err
	}

	if e.Op == ir.OpSelect {
		c, err := w.writeExpr(e.Operands[2])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s ? %s : %s)", a, b, c), nil
	}

	aType := w.shader.NodeType(e.Operands[0])
	vec, isVector := w.shader.Inner(aType).(ir.VectorType)

	// Vector comparisons and boolean-vector logic have no infix form.
	if isVector {
		if fn, ok := vectorCompareFuncs[e.Op]; ok {
			return fmt.Sprintf("%s(%s, %s)", fn, a, b), nil
		}
		if e.Op == ir.OpLogicAnd || e.Op == ir.OpLogicOr {
			return w.writeBoolVectorLogic(e.Op, a, b, vec.Size), nil
		}
	}

	// Float modulo is a builtin, not the % operator.
	if e.Op == ir.OpMod && w.shader.ScalarKindOf(aType).IsFloat() {
		return fmt.Sprintf("mod(%s, %s)", a, b), nil
	}

	frag, ok := opTable[e.Op]
	if !ok {
		panic(fmt.Sprintf("internal error: no emission rule for operator %d", e.Op))
	}
	return frag.prefix + a + frag.infix + b + frag.suffix, nil
}

// writeConversion emits a scalar-kind conversion through the result
// type's constructor. Conversions between the two float precisions are
// representation changes only and are elided.
func (w *Writer) writeConversion(e *ir.Expr) (string, error) {
	operand := e.Operands[0]
	text, err := w.writeExpr(operand)
	if err != nil {
		return "", err
	}
	if e.Op == ir.OpToFloat || e.Op == ir.OpToHalf {
		if w.shader.ScalarKindOf(w.shader.NodeType(operand)).IsFloat() {
			return text, nil
		}
	}
	typeName, err := glslTypeName(w.shader, e.Type)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s)", typeName, text), nil
}

// writeBoolVectorLogic emulates && and || on boolean vectors through
// integer arithmetic: the target dialect has no vector boolean
// operators.
func (w *Writer) writeBoolVectorLogic(op ir.Op, a, b string, size uint8) string {
	ivec := fmt.Sprintf("ivec%d", size)
	combine := "*"
	if op == ir.OpLogicOr {
		combine = "+"
	}
	return fmt.Sprintf("notEqual((%s(%s) %s %s(%s)), %s(0))", ivec, a, combine, ivec, b, ivec)
}

// baseVariableName walks dereferences down to the root variable name.
func baseVariableName(n ir.Node) string {
	for {
		switch e := n.(type) {
		case *ir.DerefVariable:
			return e.Var.Name
		case *ir.DerefArray:
			n = e.Array
		case *ir.DerefRecord:
			n = e.Record
		case *ir.DerefImage:
			n = e.Image
		default:
			return ""
		}
	}
}

func (w *Writer) writeTextureOp(op *ir.TextureOp) (string, error) {
	texText, err := w.writeExpr(op.Texture)
	if err != nil {
		return "", err
	}
	texName := baseVariableName(op.Texture)
	img, ok := w.shader.Inner(w.shader.NodeType(op.Texture)).(ir.ImageType)
	if !ok {
		panic(fmt.Sprintf("internal error: texture operation on non-image %q", texName))
	}

	// Raw fetches and size queries force combination, so the texture
	// text is usable directly. Sampled ops on a standalone texture
	// construct the combined sampler at the call site.
	sampler := texText
	if op.SamplerState != "" && !w.mapping.combined(texName) {
		sampler = fmt.Sprintf("%s(%s, %s)", combinedSamplerTypeName(img), texText, op.SamplerState)
	}

	switch op.Kind {
	case ir.TexQuerySize:
		if img.Multisampled || img.Dim == ir.DimBuffer {
			return fmt.Sprintf("textureSize(%s)", sampler), nil
		}
		lod := "0"
		if op.Lod != nil {
			if lod, err = w.writeExpr(op.Lod); err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("textureSize(%s, %s)", sampler, lod), nil

	case ir.TexFetch:
		coord, err := w.writeExpr(op.Coord)
		if err != nil {
			return "", err
		}
		if img.Dim == ir.DimBuffer {
			return fmt.Sprintf("texelFetch(%s, %s)", sampler, coord), nil
		}
		extra := "0"
		if img.Multisampled && op.SampleIndex != nil {
			if extra, err = w.writeExpr(op.SampleIndex); err != nil {
				return "", err
			}
		} else if op.Lod != nil {
			if extra, err = w.writeExpr(op.Lod); err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("texelFetch(%s, %s, %s)", sampler, coord, extra), nil
	}

	return w.writeSampleOp(op, img, sampler)
}

// writeSampleOp emits the filtered sampling family. The function name
// and argument list both vary with the operation kind and the image
// shape; each optional argument is appended only when the kind calls
// for it.
func (w *Writer) writeSampleOp(op *ir.TextureOp, img ir.ImageType, sampler string) (string, error) {
	coord, err := w.writeExpr(op.Coord)
	if err != nil {
		return "", err
	}

	fn := "texture"
	switch op.Kind {
	case ir.TexSampleLevel:
		fn = "textureLod"
	case ir.TexSampleGrad:
		fn = "textureGrad"
	case ir.TexGather:
		fn = "textureGather"
	}
	if op.Offset != nil {
		fn += "Offset"
	}

	args := []string{sampler}
	var trailingCompare string

	if op.Kind == ir.TexSampleCmp {
		// Shadow comparison widens the coordinate with the reference
		// value; once the vector is full the reference becomes its own
		// argument (cube arrays).
		cmp, err := w.writeExpr(op.Compare)
		if err != nil {
			return "", err
		}
		coordSize := w.shader.Components(w.shader.NodeType(op.Coord))
		if coordSize < 4 {
			coord = fmt.Sprintf("vec%d(%s, %s)", coordSize+1, coord, cmp)
		} else {
			trailingCompare = cmp
		}
	}
	args = append(args, coord)
	if trailingCompare != "" {
		args = append(args, trailingCompare)
	}

	switch op.Kind {
	case ir.TexSampleBias, ir.TexSampleLevel:
		if op.Lod != nil {
			lod, err := w.writeExpr(op.Lod)
			if err != nil {
				return "", err
			}
			args = append(args, lod)
		}
	case ir.TexSampleGrad:
		ddx, err := w.writeExpr(op.Ddx)
		if err != nil {
			return "", err
		}
		ddy, err := w.writeExpr(op.Ddy)
		if err != nil {
			return "", err
		}
		args = append(args, ddx, ddy)
	}

	if op.Offset != nil {
		off, err := w.writeExpr(op.Offset)
		if err != nil {
			return "", err
		}
		args = append(args, off)
	}
	if op.Kind == ir.TexGather && op.GatherChannel > 0 {
		args = append(args, fmt.Sprintf("%d", op.GatherChannel))
	}

	return fmt.Sprintf("%s(%s)", fn, strings.Join(args, ", ")), nil
}

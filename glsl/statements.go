// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/vkglsl/ir"
)

// writeBlock emits every node of an instruction list at the current
// indentation.
func (w *Writer) writeBlock(b ir.Block) error {
	for _, n := range b {
		if err := w.writeNode(n); err != nil {
			return err
		}
	}
	return nil
}

// writeNode emits one statement. Expression nodes cannot appear here;
// they are reached through their owning statement.
func (w *Writer) writeNode(n ir.Node) error {
	switch s := n.(type) {
	case *ir.DeclVariable:
		return w.writeLocalDecl(s)
	case *ir.Assign:
		return w.writeAssign(s)
	case *ir.If:
		return w.writeIf(s)
	case *ir.Loop:
		w.writeLine("while (true)")
		w.writeLine("{")
		w.pushIndent()
		w.depth++
		err := w.writeBlock(s.Body)
		w.depth--
		w.popIndent()
		w.writeLine("}")
		return err
	case *ir.LoopJump:
		if s.Kind == ir.JumpContinue {
			w.writeLine("continue;")
		} else {
			w.writeLine("break;")
		}
		return nil
	case *ir.Return:
		if s.Value == nil {
			w.writeLine("return;")
			return nil
		}
		text, err := w.writeExpr(s.Value)
		if err != nil {
			return err
		}
		w.writeLine("return %s;", text)
		return nil
	case *ir.Discard:
		w.hasDiscard = true
		if s.Cond == nil {
			w.writeLine("discard;")
			return nil
		}
		cond, err := w.writeExpr(s.Cond)
		if err != nil {
			return err
		}
		w.writeLine("if (%s)", cond)
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("discard;")
		w.popIndent()
		w.writeLine("}")
		return nil
	case *ir.Call:
		return w.writeCall(s)
	case *ir.AtomicOp:
		return w.writeAtomicOp(s)
	default:
		panic(fmt.Sprintf("internal error: %T is not a statement node", n))
	}
}

// zeroValue returns the zero literal for scalar and the zero
// constructor for vector/matrix types.
func (w *Writer) zeroValue(h ir.TypeHandle) string {
	switch t := w.shader.Inner(h).(type) {
	case ir.ScalarType:
		switch t.Kind {
		case ir.ScalarBool:
			return "false"
		case ir.ScalarInt:
			return "0"
		case ir.ScalarUint:
			return "0u"
		default:
			return "0.0"
		}
	case ir.VectorType:
		return fmt.Sprintf("%s(%s)", vectorTypeName(t.Kind, t.Size), w.zeroValue(w.shader.EnsureType("", ir.ScalarType{Kind: t.Kind})))
	case ir.MatrixType:
		name, _ := glslTypeName(w.shader, h)
		return name + "(0.0)"
	default:
		return ""
	}
}

// writeLocalDecl declares a temporary. Plain locals without an
// initializer are zero-initialized unless they are const, struct,
// array or shared.
func (w *Writer) writeLocalDecl(d *ir.DeclVariable) error {
	typeName, err := w.memberTypeName(d.Type)
	if err != nil {
		return err
	}
	qualifier := ""
	if d.ReadOnly {
		qualifier = "const "
	}
	suffix := arraySuffix(w.shader, d.Type)

	init := ""
	switch {
	case d.Init != nil:
		text, err := w.writeExpr(d.Init)
		if err != nil {
			return err
		}
		init = " = " + text
	case !d.ReadOnly && suffix == "" && !w.shader.IsAggregate(d.Type):
		if zero := w.zeroValue(d.Type); zero != "" {
			init = " = " + zero
		}
	}

	w.writeLine("%s%s%s %s%s%s;", qualifier, w.precisionQualifier(d.Type), typeName, w.nameOf(d), suffix, init)
	return nil
}

// maskSuffix renders a write mask as a swizzle suffix; a zero mask is a
// full write.
func maskSuffix(mask uint8) string {
	if mask == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteByte('.')
	for i := 0; i < 4; i++ {
		if mask&(1<<i) != 0 {
			sb.WriteByte(swizzleLetters[i])
		}
	}
	return sb.String()
}

func (w *Writer) writeAssign(s *ir.Assign) error {
	// Stores into storage images go through imageStore, not assignment.
	if img, ok := s.LHS.(*ir.DerefImage); ok {
		imgText, err := w.writeExpr(img.Image)
		if err != nil {
			return err
		}
		idx, err := w.writeExpr(img.Index)
		if err != nil {
			return err
		}
		rhs, err := w.writeExpr(s.RHS)
		if err != nil {
			return err
		}
		w.writeLine("imageStore(%s, %s, %s);", imgText, idx, rhs)
		return nil
	}

	lhs, err := w.writeExpr(s.LHS)
	if err != nil {
		return err
	}
	rhs, err := w.writeExpr(s.RHS)
	if err != nil {
		return err
	}
	w.writeLine("%s%s = %s;", lhs, maskSuffix(s.WriteMask), rhs)
	return nil
}

// singleAssign returns the block's only node when it is a plain (non
// image) assignment.
func singleAssign(b ir.Block) *ir.Assign {
	if len(b) != 1 {
		return nil
	}
	a, ok := b[0].(*ir.Assign)
	if !ok {
		return nil
	}
	if _, isImage := a.LHS.(*ir.DerefImage); isImage {
		return nil
	}
	return a
}

func (w *Writer) writeIf(s *ir.If) error {
	// Twin single assignments to the same destination collapse into a
	// ternary.
	if t, e := singleAssign(s.Then), singleAssign(s.Else); t != nil && e != nil && t.WriteMask == e.WriteMask {
		tl, err := w.writeExpr(t.LHS)
		if err != nil {
			return err
		}
		el, err := w.writeExpr(e.LHS)
		if err != nil {
			return err
		}
		if tl == el {
			cond, err := w.writeExpr(s.Cond)
			if err != nil {
				return err
			}
			tr, err := w.writeExpr(t.RHS)
			if err != nil {
				return err
			}
			er, err := w.writeExpr(e.RHS)
			if err != nil {
				return err
			}
			w.writeLine("%s%s = (%s) ? (%s) : (%s);", tl, maskSuffix(t.WriteMask), cond, tr, er)
			return nil
		}
	}

	cond, err := w.writeExpr(s.Cond)
	if err != nil {
		return err
	}
	w.writeLine("if (%s)", cond)
	w.writeLine("{")
	w.pushIndent()
	w.depth++
	err = w.writeBlock(s.Then)
	w.depth--
	w.popIndent()
	w.writeLine("}")
	if err != nil {
		return err
	}
	if len(s.Else) > 0 {
		w.writeLine("else")
		w.writeLine("{")
		w.pushIndent()
		w.depth++
		err = w.writeBlock(s.Else)
		w.depth--
		w.popIndent()
		w.writeLine("}")
	}
	return err
}

func (w *Writer) writeCall(s *ir.Call) error {
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		text, err := w.writeExpr(a)
		if err != nil {
			return err
		}
		args[i] = text
	}
	callee := escapeKeyword(s.Callee.Name)
	if s.Dest == nil {
		w.writeLine("%s(%s);", callee, strings.Join(args, ", "))
		return nil
	}
	dest, err := w.writeExpr(s.Dest)
	if err != nil {
		return err
	}
	w.writeLine("%s = %s(%s);", dest, callee, strings.Join(args, ", "))
	return nil
}

var atomicFuncs = map[ir.AtomicKind]string{
	ir.AtomicAdd:      "atomicAdd",
	ir.AtomicAnd:      "atomicAnd",
	ir.AtomicOr:       "atomicOr",
	ir.AtomicXor:      "atomicXor",
	ir.AtomicMin:      "atomicMin",
	ir.AtomicMax:      "atomicMax",
	ir.AtomicExchange: "atomicExchange",
	ir.AtomicCompSwap: "atomicCompSwap",
}

var imageAtomicFuncs = map[ir.AtomicKind]string{
	ir.AtomicAdd:      "imageAtomicAdd",
	ir.AtomicAnd:      "imageAtomicAnd",
	ir.AtomicOr:       "imageAtomicOr",
	ir.AtomicXor:      "imageAtomicXor",
	ir.AtomicMin:      "imageAtomicMin",
	ir.AtomicMax:      "imageAtomicMax",
	ir.AtomicExchange: "imageAtomicExchange",
	ir.AtomicCompSwap: "imageAtomicCompSwap",
}

func (w *Writer) writeAtomicOp(s *ir.AtomicOp) error {
	value, err := w.writeExpr(s.Value)
	if err != nil {
		return err
	}

	var call string
	if img, ok := s.Pointer.(*ir.DerefImage); ok {
		w.usesImageAtomics = true
		imgText, err := w.writeExpr(img.Image)
		if err != nil {
			return err
		}
		idx, err := w.writeExpr(img.Index)
		if err != nil {
			return err
		}
		args := []string{imgText, idx}
		if s.Kind == ir.AtomicCompSwap {
			cmp, err := w.writeExpr(s.Compare)
			if err != nil {
				return err
			}
			args = append(args, cmp)
		}
		args = append(args, value)
		call = fmt.Sprintf("%s(%s)", imageAtomicFuncs[s.Kind], strings.Join(args, ", "))
	} else {
		ptr, err := w.writeExpr(s.Pointer)
		if err != nil {
			return err
		}
		args := []string{ptr}
		if s.Kind == ir.AtomicCompSwap {
			cmp, err := w.writeExpr(s.Compare)
			if err != nil {
				return err
			}
			args = append(args, cmp)
		}
		args = append(args, value)
		call = fmt.Sprintf("%s(%s)", atomicFuncs[s.Kind], strings.Join(args, ", "))
	}

	if s.Dest == nil {
		w.writeLine("%s;", call)
		return nil
	}
	dest, err := w.writeExpr(s.Dest)
	if err != nil {
		return err
	}
	w.writeLine("%s = %s;", dest, call)
	return nil
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"github.com/gogpu/vkglsl/ir"
)

// scopeInserter collects nodes to splice in front of the statement
// being rewritten. The block walker applies the pending list before the
// visited node, so passes never mutate a list they are iterating.
type scopeInserter struct {
	pending []ir.Node
}

func (ins *scopeInserter) insert(n ir.Node) {
	ins.pending = append(ins.pending, n)
}

// rewriteBlock rebuilds a block, recursing into nested scopes first,
// then letting fn inspect each statement and queue insertions ahead of
// it.
func rewriteBlock(b ir.Block, fn func(ins *scopeInserter, n ir.Node)) ir.Block {
	out := make(ir.Block, 0, len(b))
	for _, n := range b {
		switch s := n.(type) {
		case *ir.If:
			s.Then = rewriteBlock(s.Then, fn)
			s.Else = rewriteBlock(s.Else, fn)
		case *ir.Loop:
			s.Body = rewriteBlock(s.Body, fn)
		}
		ins := &scopeInserter{}
		fn(ins, n)
		out = append(out, ins.pending...)
		out = append(out, n)
	}
	return out
}

// forEachBody applies a block transform to every defined function body.
func forEachBody(shader *ir.Shader, fn func(ir.Block) ir.Block) {
	for _, n := range shader.Decls {
		f, ok := n.(*ir.Function)
		if !ok {
			continue
		}
		for _, sig := range f.Signatures {
			if sig.IsDefined {
				sig.Body = fn(sig.Body)
			}
		}
	}
}

// visitExprPtrs walks an expression tree post-order through pointers to
// each slot, so fn can replace the node it is handed.
func visitExprPtrs(p *ir.Node, fn func(p *ir.Node)) {
	if *p == nil {
		return
	}
	switch e := (*p).(type) {
	case *ir.Expr:
		for i := 0; i < e.Op.OperandCount(); i++ {
			visitExprPtrs(&e.Operands[i], fn)
		}
	case *ir.Swizzle:
		visitExprPtrs(&e.Vec, fn)
	case *ir.DerefArray:
		visitExprPtrs(&e.Array, fn)
		visitExprPtrs(&e.Index, fn)
	case *ir.DerefRecord:
		visitExprPtrs(&e.Record, fn)
	case *ir.DerefImage:
		visitExprPtrs(&e.Image, fn)
		visitExprPtrs(&e.Index, fn)
	case *ir.TextureOp:
		visitExprPtrs(&e.Texture, fn)
		visitExprPtrs(&e.Coord, fn)
		visitExprPtrs(&e.Lod, fn)
		visitExprPtrs(&e.Ddx, fn)
		visitExprPtrs(&e.Ddy, fn)
		visitExprPtrs(&e.Offset, fn)
		visitExprPtrs(&e.Compare, fn)
		visitExprPtrs(&e.SampleIndex, fn)
	}
	fn(p)
}

// statementExprPtrs hands fn a pointer to every expression slot of one
// statement, descending into sub-expressions.
func statementExprPtrs(n ir.Node, fn func(p *ir.Node)) {
	visit := func(p *ir.Node) {
		if *p != nil {
			visitExprPtrs(p, fn)
		}
	}
	switch s := n.(type) {
	case *ir.DeclVariable:
		visit(&s.Init)
	case *ir.Assign:
		visit(&s.LHS)
		visit(&s.RHS)
	case *ir.If:
		visit(&s.Cond)
	case *ir.Return:
		visit(&s.Value)
	case *ir.Discard:
		visit(&s.Cond)
	case *ir.Call:
		for i := range s.Args {
			visit(&s.Args[i])
		}
		visit(&s.Dest)
	case *ir.AtomicOp:
		visit(&s.Pointer)
		visit(&s.Value)
		visit(&s.Compare)
	}
}

// breakPrecisionChanges hoists the operand of every float precision
// conversion into its own temporary when the operand is a compound
// expression. The boundary then falls between two statements, which
// keeps the reduced-precision evaluation from leaking into the wider
// expression.
func breakPrecisionChanges(w *Writer) {
	forEachBody(w.shader, func(body ir.Block) ir.Block {
		return rewriteBlock(body, func(ins *scopeInserter, n ir.Node) {
			statementExprPtrs(n, func(p *ir.Node) {
				e, ok := (*p).(*ir.Expr)
				if !ok || (e.Op != ir.OpToHalf && e.Op != ir.OpToFloat) {
					return
				}
				operand := e.Operands[0]
				switch operand.(type) {
				case *ir.Constant, *ir.DerefVariable, *ir.DerefRecord, *ir.DerefArray, *ir.Swizzle:
					return
				}
				t := w.shader.NodeType(operand)
				if t == ir.InvalidType {
					return
				}
				name := w.namer.call("ph")
				tmp := &ir.DeclVariable{Name: name, Type: t, Init: operand}
				w.varNames[tmp] = name
				ins.insert(tmp)
				e.Operands[0] = &ir.DerefVariable{Var: tmp}
			})
		})
	})
}

// decomposeMatrixOps rewrites componentwise matrix multiply and add
// (both operands matrices) into per-column vector operations through an
// inserted temporary. The target's * on matrices is the linear-algebra
// product, so the componentwise form cannot be emitted directly.
func decomposeMatrixOps(w *Writer) {
	intType := w.shader.EnsureType("", ir.ScalarType{Kind: ir.ScalarInt})

	forEachBody(w.shader, func(body ir.Block) ir.Block {
		return rewriteBlock(body, func(ins *scopeInserter, n ir.Node) {
			assign, ok := n.(*ir.Assign)
			if !ok {
				return
			}
			e, ok := assign.RHS.(*ir.Expr)
			if !ok || (e.Op != ir.OpMul && e.Op != ir.OpAdd) {
				return
			}
			mat, aOK := w.shader.Inner(w.shader.NodeType(e.Operands[0])).(ir.MatrixType)
			_, bOK := w.shader.Inner(w.shader.NodeType(e.Operands[1])).(ir.MatrixType)
			if !aOK || !bOK {
				return
			}

			colType := w.shader.EnsureType("", ir.VectorType{Kind: mat.Kind, Size: mat.Rows})
			name := w.namer.call("mc")
			tmp := &ir.DeclVariable{Name: name, Type: e.Type}
			w.varNames[tmp] = name
			ins.insert(tmp)
			for c := uint8(0); c < mat.Columns; c++ {
				col := &ir.Constant{Type: intType, Values: []ir.ScalarValue{ir.IntValue(int64(c))}}
				ins.insert(&ir.Assign{
					LHS: &ir.DerefArray{Array: &ir.DerefVariable{Var: tmp}, Index: col},
					RHS: &ir.Expr{
						Op:   e.Op,
						Type: colType,
						Operands: [3]ir.Node{
							&ir.DerefArray{Array: e.Operands[0], Index: col},
							&ir.DerefArray{Array: e.Operands[1], Index: col},
						},
					},
				})
			}
			assign.RHS = &ir.DerefVariable{Var: tmp}
		})
	})
}

// gatherSamplerFacts walks the whole tree once before emission,
// recording texture/sampler pairings for consolidation plus the feature
// flags that gate extension directives and early fragment tests.
func gatherSamplerFacts(w *Writer) {
	for _, n := range w.shader.Decls {
		f, ok := n.(*ir.Function)
		if !ok {
			continue
		}
		for _, sig := range f.Signatures {
			if sig.IsDefined {
				w.gatherBlock(sig.Body)
			}
		}
	}
}

func (w *Writer) gatherBlock(b ir.Block) {
	for _, n := range b {
		switch s := n.(type) {
		case *ir.If:
			w.gatherBlock(s.Then)
			w.gatherBlock(s.Else)
		case *ir.Loop:
			w.gatherBlock(s.Body)
		case *ir.Discard:
			w.hasDiscard = true
		case *ir.AtomicOp:
			if _, ok := s.Pointer.(*ir.DerefImage); ok {
				w.usesImageAtomics = true
			}
		}
		statementExprPtrs(n, func(p *ir.Node) {
			switch e := (*p).(type) {
			case *ir.TextureOp:
				tex := baseVariableName(e.Texture)
				if tex == "" {
					return
				}
				if e.Kind == ir.TexFetch || e.Kind == ir.TexQuerySize {
					w.gather.recordLoadOrDim(tex)
				} else if e.SamplerState != "" {
					w.gather.recordSample(tex, e.SamplerState)
				}
			case *ir.Expr:
				if e.Op == ir.OpDdx || e.Op == ir.OpDdy {
					w.usesDerivatives = true
				}
			}
		})
	}
}

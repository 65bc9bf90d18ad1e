// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strconv"

	"github.com/gogpu/vkglsl/ir"
)

// synthesizeMain wraps the designated entry function in a generated
// main that marshals stage inputs into the entry's parameters, calls
// it, and marshals parameter outputs and the return value into stage
// outputs. Failures are reported through the sink; no main is appended
// in that case.
func synthesizeMain(w *Writer) {
	fn := w.shader.FindFunction(w.opts.EntryPoint)
	var sig *ir.FunctionSignature
	if fn != nil {
		for _, s := range fn.Signatures {
			if s.IsDefined {
				sig = s
				break
			}
		}
	}
	if sig == nil {
		w.state.Diags.Errorf("entry point %q not found", w.opts.EntryPoint)
		return
	}
	w.entry = sig

	m := &marshaler{w: w}
	main := &ir.FunctionSignature{
		Name:       "main",
		ReturnType: ir.InvalidType,
		IsDefined:  true,
		IsMain:     true,
	}

	call := &ir.Call{Callee: sig}
	for i, p := range sig.Parameters {
		mode := ir.ModeIn
		if i < len(sig.ParameterModes) {
			mode = sig.ParameterModes[i]
		}
		tmp := &ir.DeclVariable{Name: "param_" + p.Name, Type: p.Type}
		main.Body = append(main.Body, tmp)
		call.Args = append(call.Args, &ir.DerefVariable{Var: tmp})

		target := ir.Node(&ir.DerefVariable{Var: tmp})
		if mode == ir.ModeIn {
			m.marshalIn(target, p.Type, p.Semantic, p.Name, nil)
		} else {
			m.marshalOut(target, p.Type, p.Semantic, p.Name, nil)
		}
	}
	if sig.ReturnType != ir.InvalidType {
		ret := &ir.DeclVariable{Name: "ret_" + sig.Name, Type: sig.ReturnType}
		main.Body = append(main.Body, ret)
		call.Dest = &ir.DerefVariable{Var: ret}
		m.marshalOut(&ir.DerefVariable{Var: ret}, sig.ReturnType, sig.ReturnSemantic, sig.Name, nil)
	}
	if w.state.Diags.HasErrors() {
		return
	}

	main.Body = append(main.Body, m.pre...)
	main.Body = append(main.Body, call)
	main.Body = append(main.Body, m.post...)
	main.Body = append(main.Body, w.stageEpilogue(sig)...)

	w.shader.Decls = append(w.shader.Decls, &ir.Function{
		Name:       "main",
		Signatures: []*ir.FunctionSignature{main},
	})
}

// stageEpilogue builds the trailing statements of the synthesized main:
// the vertex emit for geometry shaders, and the barrier plus
// invocation-zero patch-constant call for tessellation control.
func (w *Writer) stageEpilogue(sig *ir.FunctionSignature) ir.Block {
	switch w.stage {
	case ir.StageGeometry:
		return ir.Block{&ir.Call{Callee: &ir.FunctionSignature{Name: "EmitVertex"}}}
	case ir.StageHull:
		if sig.PatchConstantFunc == "" {
			return nil
		}
		pcf := w.shader.FindFunction(sig.PatchConstantFunc)
		var pcfSig *ir.FunctionSignature
		if pcf != nil {
			for _, s := range pcf.Signatures {
				if s.IsDefined {
					pcfSig = s
					break
				}
			}
		}
		if pcfSig == nil {
			w.state.Diags.Errorf("patch constant function %q not found", sig.PatchConstantFunc)
			return nil
		}

		m := &marshaler{w: w, patchConstant: true}
		pcfCall := &ir.Call{Callee: pcfSig}
		var decls ir.Block
		for i, p := range pcfSig.Parameters {
			mode := ir.ModeIn
			if i < len(pcfSig.ParameterModes) {
				mode = pcfSig.ParameterModes[i]
			}
			tmp := &ir.DeclVariable{Name: "patch_" + p.Name, Type: p.Type}
			decls = append(decls, tmp)
			pcfCall.Args = append(pcfCall.Args, &ir.DerefVariable{Var: tmp})
			target := ir.Node(&ir.DerefVariable{Var: tmp})
			if mode == ir.ModeIn {
				m.marshalIn(target, p.Type, p.Semantic, p.Name, nil)
			} else {
				m.marshalOut(target, p.Type, p.Semantic, p.Name, nil)
			}
		}
		if pcfSig.ReturnType != ir.InvalidType {
			ret := &ir.DeclVariable{Name: "patch_ret", Type: pcfSig.ReturnType}
			decls = append(decls, ret)
			pcfCall.Dest = &ir.DerefVariable{Var: ret}
			m.marshalOut(&ir.DerefVariable{Var: ret}, pcfSig.ReturnType, pcfSig.ReturnSemantic, pcfSig.Name, nil)
		}

		guarded := ir.Block{}
		guarded = append(guarded, decls...)
		guarded = append(guarded, m.pre...)
		guarded = append(guarded, pcfCall)
		guarded = append(guarded, m.post...)

		invocation := w.builtinVar("gl_InvocationID", w.intType())
		zero := &ir.Constant{Type: w.intType(), Values: []ir.ScalarValue{ir.IntValue(0)}}
		return ir.Block{
			&ir.Call{Callee: &ir.FunctionSignature{Name: "barrier"}},
			&ir.If{
				Cond: &ir.Expr{
					Op:       ir.OpEqual,
					Type:     w.boolType(),
					Operands: [3]ir.Node{&ir.DerefVariable{Var: invocation}, zero},
				},
				Then: guarded,
			},
		}
	default:
		return nil
	}
}

func (w *Writer) intType() ir.TypeHandle {
	return w.shader.EnsureType("", ir.ScalarType{Kind: ir.ScalarInt})
}

func (w *Writer) boolType() ir.TypeHandle {
	return w.shader.EnsureType("", ir.ScalarType{Kind: ir.ScalarBool})
}

// builtinVar returns the shared declaration node for a gl_ builtin.
// Builtins are never redeclared at global scope; sharing the node keeps
// reference identity across marshal sequences.
func (w *Writer) builtinVar(name string, t ir.TypeHandle) *ir.DeclVariable {
	if v, ok := w.builtinVars[name]; ok {
		return v
	}
	v := &ir.DeclVariable{Name: name, Type: t}
	w.builtinVars[name] = v
	return v
}

// marshaler accumulates the marshal-in and marshal-out statement lists
// for one synthesized call.
type marshaler struct {
	w             *Writer
	pre           ir.Block
	post          ir.Block
	patchConstant bool
}

// semanticIndexed bumps the numeric tail of a semantic by index, so an
// array flattens to SEMANTIC0, SEMANTIC1, ...
func semanticIndexed(semantic string, index uint32) string {
	if semantic == "" {
		return ""
	}
	i := len(semantic)
	for i > 0 && semantic[i-1] >= '0' && semantic[i-1] <= '9' {
		i--
	}
	base := uint64(0)
	if i < len(semantic) {
		base, _ = strconv.ParseUint(semantic[i:], 10, 32)
	}
	return semantic[:i] + strconv.FormatUint(base+uint64(index), 10)
}

// perVertexShape reports whether the parameter type is a per-vertex
// aggregate for the current stage: geometry and tessellation inputs and
// tessellation-control outputs arrive as one element per vertex.
func (m *marshaler) perVertexShape(t ir.TypeHandle, mode ir.VariableMode) (ir.TypeHandle, uint32, bool) {
	if m.patchConstant {
		return ir.InvalidType, 0, false
	}
	switch inner := m.w.shader.Inner(t).(type) {
	case ir.PatchType:
		return inner.Inner, inner.Length, true
	case ir.ArrayType:
		switch m.w.stage {
		case ir.StageGeometry, ir.StageDomain:
			if mode == ir.ModeIn {
				return inner.Base, inner.Size, true
			}
		case ir.StageHull:
			return inner.Base, inner.Size, true
		}
	}
	return ir.InvalidType, 0, false
}

// marshalIn generates the assignments copying stage inputs into the
// parameter temporary, recursively flattening aggregates. vertex is the
// per-vertex index for arrayed interface variables, nil otherwise.
func (m *marshaler) marshalIn(target ir.Node, t ir.TypeHandle, semantic, name string, vertex ir.Node) {
	if elem, count, ok := m.perVertexShape(t, ir.ModeIn); ok && vertex == nil {
		for v := uint32(0); v < count; v++ {
			idx := m.intConst(int64(v))
			m.marshalIn(&ir.DerefArray{Array: target, Index: idx}, elem, semantic, name, idx)
		}
		return
	}

	switch inner := m.w.shader.Inner(t).(type) {
	case ir.StructType:
		for _, member := range inner.Members {
			sem := member.Semantic
			if sem == "" {
				sem = semantic
			}
			m.marshalIn(&ir.DerefRecord{Record: target, Field: member.Name}, member.Type, sem, name+"_"+member.Name, vertex)
		}
		return
	case ir.ArrayType:
		for i := uint32(0); i < inner.Size; i++ {
			m.marshalIn(&ir.DerefArray{Array: target, Index: m.intConst(int64(i))},
				inner.Base, semanticIndexed(semantic, i), name, vertex)
		}
		return
	}

	src := m.leafSource(t, semantic, name, vertex, ir.ModeIn)
	if src == nil {
		return
	}
	m.pre = append(m.pre, &ir.Assign{LHS: target, RHS: src})
}

// marshalOut generates the assignments copying the parameter temporary
// (or return value) into stage outputs after the call.
func (m *marshaler) marshalOut(source ir.Node, t ir.TypeHandle, semantic, name string, vertex ir.Node) {
	if elem, count, ok := m.perVertexShape(t, ir.ModeOut); ok && vertex == nil {
		if m.w.stage == ir.StageHull {
			// Tessellation control writes only its own control point.
			idx := ir.Node(&ir.DerefVariable{Var: m.w.builtinVar("gl_InvocationID", m.w.intType())})
			m.marshalOut(&ir.DerefArray{Array: source, Index: idx}, elem, semantic, name, idx)
			return
		}
		for v := uint32(0); v < count; v++ {
			idx := m.intConst(int64(v))
			m.marshalOut(&ir.DerefArray{Array: source, Index: idx}, elem, semantic, name, idx)
		}
		return
	}

	switch inner := m.w.shader.Inner(t).(type) {
	case ir.StructType:
		for _, member := range inner.Members {
			sem := member.Semantic
			if sem == "" {
				sem = semantic
			}
			m.marshalOut(&ir.DerefRecord{Record: source, Field: member.Name}, member.Type, sem, name+"_"+member.Name, vertex)
		}
		return
	case ir.ArrayType:
		for i := uint32(0); i < inner.Size; i++ {
			m.marshalOut(&ir.DerefArray{Array: source, Index: m.intConst(int64(i))},
				inner.Base, semanticIndexed(semantic, i), name, vertex)
		}
		return
	}

	// Tessellation control leaf outputs are per control point even when
	// the source type is not arrayed.
	if m.w.stage == ir.StageHull && !m.patchConstant && vertex == nil {
		vertex = &ir.DerefVariable{Var: m.w.builtinVar("gl_InvocationID", m.w.intType())}
	}
	dst := m.leafSource(t, semantic, name, vertex, ir.ModeOut)
	if dst == nil {
		return
	}
	m.post = append(m.post, &ir.Assign{LHS: dst, RHS: source})

	if sv := findSystemValue(m.w.stage, semantic, ir.ModeOut, m.w.opts.TargetProfile.IsES()); sv != nil && sv.applyClipSpaceAdjust {
		m.appendClipSpaceAdjust(sv, t)
	}
}

// leafSource resolves a leaf semantic to either a stage builtin or a
// user interface variable, returning the node that reads (mode in) or
// receives (mode out) the value.
func (m *marshaler) leafSource(t ir.TypeHandle, semantic, name string, vertex ir.Node, mode ir.VariableMode) ir.Node {
	w := m.w
	if semantic == "" {
		w.state.Diags.Errorf("parameter %q has no semantic", name)
		return nil
	}

	if sv := findSystemValue(w.stage, semantic, mode, w.opts.TargetProfile.IsES()); sv != nil {
		if sv.glslName == "gl_ViewIndex" {
			w.usesMultiview = true
		}
		v := w.builtinVar(sv.glslName, t)
		var node ir.Node = &ir.DerefVariable{Var: v}
		if vertex != nil && sv.glslName == "gl_Position" {
			// Per-vertex builtins live in the gl_in block.
			if mode == ir.ModeIn {
				glIn := w.builtinVar("gl_in", t)
				node = &ir.DerefRecord{
					Record: &ir.DerefArray{Array: &ir.DerefVariable{Var: glIn}, Index: vertex},
					Field:  "gl_Position",
				}
			} else {
				glOut := w.builtinVar("gl_out", t)
				node = &ir.DerefRecord{
					Record: &ir.DerefArray{Array: &ir.DerefVariable{Var: glOut}, Index: vertex},
					Field:  "gl_Position",
				}
			}
		} else if sv.arrayVariable {
			node = &ir.DerefArray{Array: node, Index: m.intConst(0)}
		}
		return m.convertBetween(node, t, mode)
	}

	prefix := "in_"
	if mode == ir.ModeOut {
		prefix = "out_"
	}
	v := m.findOrAddInterfaceVar(prefix+semantic, t, mode)
	var node ir.Node = &ir.DerefVariable{Var: v}
	if vertex != nil {
		node = &ir.DerefArray{Array: node, Index: vertex}
	}
	return node
}

// convertBetween inserts a scalar-kind conversion when the builtin's
// declared kind differs from the parameter's. Only meaningful for
// inputs; outputs assign into the builtin directly.
func (m *marshaler) convertBetween(node ir.Node, want ir.TypeHandle, mode ir.VariableMode) ir.Node {
	if mode != ir.ModeIn {
		return node
	}
	kind := m.w.shader.ScalarKindOf(want)
	var op ir.Op
	switch kind {
	case ir.ScalarUint:
		op = ir.OpToUint
	default:
		return node
	}
	return &ir.Expr{Op: op, Type: want, Operands: [3]ir.Node{node}}
}

func (m *marshaler) findOrAddInterfaceVar(name string, t ir.TypeHandle, mode ir.VariableMode) *ir.DeclVariable {
	w := m.w
	list := &w.inputVars
	if mode == ir.ModeOut {
		list = &w.outputVars
	}
	for _, v := range *list {
		if v.Name == name {
			return v
		}
	}
	kind := w.shader.ScalarKindOf(t)
	v := &ir.DeclVariable{
		Name:          name,
		Type:          t,
		Mode:          mode,
		Flat:          w.stage == ir.StagePixel && mode == ir.ModeIn && (kind == ir.ScalarInt || kind == ir.ScalarUint),
		PatchConstant: m.patchConstant,
	}
	*list = append(*list, v)
	return v
}

func (m *marshaler) intConst(v int64) ir.Node {
	return &ir.Constant{Type: m.w.intType(), Values: []ir.ScalarValue{ir.IntValue(v)}}
}

// appendClipSpaceAdjust flips the clip-space Y of the position output,
// matching the target's inverted viewport convention.
func (m *marshaler) appendClipSpaceAdjust(sv *systemValue, t ir.TypeHandle) {
	pos := &ir.DerefVariable{Var: m.w.builtinVar(sv.glslName, t)}
	y := []uint8{1}
	m.post = append(m.post, &ir.Assign{
		LHS: &ir.Swizzle{Vec: pos, Components: y},
		RHS: &ir.Expr{
			Op:       ir.OpNeg,
			Type:     m.w.shader.EnsureType("", ir.ScalarType{Kind: ir.ScalarFloat}),
			Operands: [3]ir.Node{&ir.Swizzle{Vec: pos, Components: y}},
		},
	})
}

// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"sort"

	"github.com/gogpu/vkglsl/ir"
)

// mdArrayWrapper is a synthetic struct wrapping one inner dimension of
// a multi-dimensional array. GLSL arrays of arrays are avoided by
// declaring `struct <name> { <elem> Inner[<size>]; }` per nesting
// level, innermost first.
type mdArrayWrapper struct {
	name string
	elem ir.TypeHandle // inner element handle (may be another wrapper level's elem)
	size uint32
	// depth counts nesting from the innermost dimension; wrappers are
	// declared in increasing depth order.
	depth int
}

// typeClosure is the set of aggregate types that must be declared in
// the emitted text, plus the auxiliary wrapper set for
// multi-dimensional arrays.
type typeClosure struct {
	used     map[ir.TypeHandle]bool
	wrappers []mdArrayWrapper
}

// contains reports whether the struct handle is in the closure.
func (c *typeClosure) contains(h ir.TypeHandle) bool {
	return c.used[h]
}

// buildTypeClosure computes the fixed point of declaration necessity:
// every aggregate reachable from a used uniform block's members,
// growing through struct members, arrays of structs and patch
// wrappers, until a full pass adds nothing.
func buildTypeClosure(shader *ir.Shader, state *ir.ParseState) *typeClosure {
	c := &typeClosure{used: make(map[ir.TypeHandle]bool)}

	for _, block := range state.UniformBlocks {
		if !state.UsedUniformBlocks[block.Name] {
			continue
		}
		for _, v := range block.Vars {
			c.add(shader, v.Type)
		}
	}

	// Globals and function signatures also pull aggregates in.
	for _, n := range shader.Decls {
		switch d := n.(type) {
		case *ir.DeclVariable:
			c.add(shader, d.Type)
		case *ir.Function:
			for _, sig := range d.Signatures {
				if !sig.IsDefined {
					continue
				}
				c.add(shader, sig.ReturnType)
				for _, p := range sig.Parameters {
					c.add(shader, p.Type)
				}
				c.addFromBlock(shader, sig.Body)
			}
		}
	}

	for {
		before := len(c.used)
		for h := range c.used {
			st, ok := shader.Inner(h).(ir.StructType)
			if !ok {
				continue
			}
			for _, m := range st.Members {
				c.add(shader, m.Type)
			}
		}
		if len(c.used) == before {
			break
		}
	}

	sort.Slice(c.wrappers, func(i, j int) bool {
		if c.wrappers[i].depth != c.wrappers[j].depth {
			return c.wrappers[i].depth < c.wrappers[j].depth
		}
		return c.wrappers[i].name < c.wrappers[j].name
	})
	return c
}

// add unwraps arrays and patch wrappers down to the element type and
// records aggregates. Each inner dimension of a multi-dimensional
// array generates one wrapper struct.
func (c *typeClosure) add(shader *ir.Shader, h ir.TypeHandle) {
	for h != ir.InvalidType {
		switch t := shader.Inner(h).(type) {
		case ir.ArrayType:
			if inner, ok := shader.Inner(t.Base).(ir.ArrayType); ok {
				c.addWrapper(shader, t.Base, inner)
			}
			h = t.Base
		case ir.PatchType:
			h = t.Inner
		case ir.StructType:
			c.used[h] = true
			return
		default:
			return
		}
	}
}

func (c *typeClosure) addWrapper(shader *ir.Shader, arrayHandle ir.TypeHandle, inner ir.ArrayType) {
	name := wrapperName(shader, arrayHandle)
	for _, w := range c.wrappers {
		if w.name == name {
			return
		}
	}
	depth := 0
	for h := inner.Base; ; {
		a, ok := shader.Inner(h).(ir.ArrayType)
		if !ok {
			break
		}
		depth++
		h = a.Base
	}
	c.wrappers = append(c.wrappers, mdArrayWrapper{
		name:  name,
		elem:  inner.Base,
		size:  inner.Size,
		depth: depth,
	})
}

// wrapperName builds a stable name from the element type and the
// dimension sizes below this level.
func wrapperName(shader *ir.Shader, arrayHandle ir.TypeHandle) string {
	sizes := ""
	h := arrayHandle
	for {
		a, ok := shader.Inner(h).(ir.ArrayType)
		if !ok {
			break
		}
		sizes = fmt.Sprintf("%s_%d", sizes, a.Size)
		h = a.Base
	}
	base, err := glslTypeName(shader, h)
	if err != nil {
		base = "invalid"
	}
	return "_wrap_" + base + sizes
}

// wrapperFor returns the wrapper declared for the given inner-array
// handle, or nil.
func (c *typeClosure) wrapperFor(shader *ir.Shader, arrayHandle ir.TypeHandle) *mdArrayWrapper {
	name := wrapperName(shader, arrayHandle)
	for i := range c.wrappers {
		if c.wrappers[i].name == name {
			return &c.wrappers[i]
		}
	}
	return nil
}

func (c *typeClosure) addFromBlock(shader *ir.Shader, b ir.Block) {
	for _, n := range b {
		switch s := n.(type) {
		case *ir.DeclVariable:
			c.add(shader, s.Type)
		case *ir.If:
			c.addFromBlock(shader, s.Then)
			c.addFromBlock(shader, s.Else)
		case *ir.Loop:
			c.addFromBlock(shader, s.Body)
		}
	}
}

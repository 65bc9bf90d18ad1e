// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/vkglsl/ir"
)

// packedClassOrder fixes the class iteration order everywhere a packed
// array set is walked; Go map order must never leak into the output.
var packedClassOrder = []ir.PrecisionClass{
	ir.PrecisionHigh, ir.PrecisionMedium, ir.PrecisionLow, ir.PrecisionInt, ir.PrecisionUint,
}

// typeSpec encodes a leaf type for the @Inputs/@Outputs lines: a kind
// character followed by the dimensions.
func typeSpec(shader *ir.Shader, h ir.TypeHandle) string {
	kindChar := func(k ir.ScalarKind) byte {
		switch k {
		case ir.ScalarBool:
			return 'b'
		case ir.ScalarInt:
			return 'i'
		case ir.ScalarUint:
			return 'u'
		case ir.ScalarHalf:
			return 'h'
		default:
			return 'f'
		}
	}
	switch t := shader.Inner(h).(type) {
	case ir.ScalarType:
		return fmt.Sprintf("%c1", kindChar(t.Kind))
	case ir.VectorType:
		return fmt.Sprintf("%c%d", kindChar(t.Kind), t.Size)
	case ir.MatrixType:
		return fmt.Sprintf("%c%d%d", kindChar(t.Kind), t.Columns, t.Rows)
	case ir.ArrayType:
		return typeSpec(shader, t.Base)
	default:
		return "f4"
	}
}

// writeReflectionHeader emits the line-oriented header consumed by the
// downstream driver. Line order is fixed; empty sections are omitted.
func (w *Writer) writeReflectionHeader(sb *strings.Builder) {
	w.writeIOLine(sb, "// @Inputs: ", w.inputVars)
	w.writeIOLine(sb, "// @Outputs: ", w.outputVars)

	if !w.state.FlattenUniformBuffers {
		var entries []string
		idx := 0
		for _, block := range w.state.UniformBlocks {
			if !w.state.UsedUniformBlocks[block.Name] {
				continue
			}
			entries = append(entries, fmt.Sprintf("%s(%d)", block.Name, idx))
			idx++
		}
		if len(entries) > 0 {
			fmt.Fprintf(sb, "// @UniformBlocks: %s\n", strings.Join(entries, ","))
		}
	}

	var globals []string
	for _, class := range packedClassOrder {
		for _, u := range w.state.GlobalPackedArrays[class] {
			globals = append(globals, fmt.Sprintf("%s(%c:%d,%d)", u.Name, class, u.DestOffset, u.NumComponents))
		}
	}
	if len(globals) > 0 {
		fmt.Fprintf(sb, "// @PackedGlobals: %s\n", strings.Join(globals, ","))
	}

	for cbIndex, block := range w.state.UniformBlocks {
		byClass := w.state.CBPackedArrays[block.Name]
		if byClass == nil {
			continue
		}
		var members []string
		for _, class := range packedClassOrder {
			for _, u := range byClass[class] {
				members = append(members, fmt.Sprintf("%s(%d,%d)", u.Name, u.SourceOffset, u.NumComponents))
			}
		}
		if len(members) > 0 {
			fmt.Fprintf(sb, "// @PackedUB: %s(%d): %s\n", block.Name, cbIndex, strings.Join(members, ","))
		}
	}

	if ranges := w.ranges.sorted(); len(ranges) > 0 {
		marker := "// @PackedUBGlobalCopies: "
		if w.opts.GroupFlattenedUBs {
			marker = "// @PackedUBCopies: "
		}
		entries := make([]string, len(ranges))
		for i, r := range ranges {
			entries[i] = fmt.Sprintf("%d:%d-%d:%c:%d:%d",
				r.SourceCB, r.SourceOffset, r.DestCBIndex, r.DestPrecision, r.DestOffset, r.Size)
		}
		sb.WriteString(marker)
		sb.WriteString(strings.Join(entries, ";"))
		sb.WriteByte('\n')
	}

	if len(w.samplerEntries) > 0 {
		entries := make([]string, len(w.samplerEntries))
		for i, s := range w.samplerEntries {
			states := ""
			if len(s.states) > 0 {
				states = "[" + strings.Join(s.states, ",") + "]"
			}
			entries[i] = fmt.Sprintf("%s(%d:%d%s)", s.name, s.offset, s.count, states)
		}
		fmt.Fprintf(sb, "// @Samplers: %s\n", strings.Join(entries, ","))
	}

	if len(w.uavEntries) > 0 {
		entries := make([]string, len(w.uavEntries))
		for i, u := range w.uavEntries {
			entries[i] = fmt.Sprintf("%s(%d:%d)", u.name, u.offset, u.count)
		}
		fmt.Fprintf(sb, "// @UAVs: %s\n", strings.Join(entries, ","))
	}

	if len(w.samplerStates) > 0 {
		entries := make([]string, len(w.samplerStates))
		for i, ss := range w.samplerStates {
			entries[i] = fmt.Sprintf("%d:%s", i, ss)
		}
		fmt.Fprintf(sb, "// @SamplerStates: %s\n", strings.Join(entries, ","))
	}

	if len(w.state.ExternalTextures) > 0 {
		fmt.Fprintf(sb, "// @ExternalTextures: %s\n", strings.Join(w.state.ExternalTextures, ","))
	}
}

func (w *Writer) writeIOLine(sb *strings.Builder, marker string, vars []*ir.DeclVariable) {
	if len(vars) == 0 {
		return
	}
	entries := make([]string, len(vars))
	for i, v := range vars {
		entries[i] = fmt.Sprintf("%s;%d:%s", typeSpec(w.shader, v.Type), v.Location, w.nameOf(v))
	}
	sb.WriteString(marker)
	sb.WriteString(strings.Join(entries, ","))
	sb.WriteByte('\n')
}

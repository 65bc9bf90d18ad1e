// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/vkglsl/ir"
)

// BindingKind groups descriptor bindings by resource kind. The order
// of the constants is the final descriptor order: sorting the table
// produces contiguous kind-runs for fixed-function pool sizing.
type BindingKind uint8

const (
	BindSampler BindingKind = iota
	BindCombinedImageSampler
	BindImage
	BindUniformBuffer
	BindPackedUniformBuffer
	BindStorageBuffer
	BindStorageImage
	BindUniformTexelBuffer
	BindStorageTexelBuffer
	BindInputAttachment

	bindKindCount
)

// String returns the kind name used in the binding-define comments.
func (k BindingKind) String() string {
	switch k {
	case BindSampler:
		return "Sampler"
	case BindCombinedImageSampler:
		return "CombinedImageSampler"
	case BindImage:
		return "Image"
	case BindUniformBuffer:
		return "UniformBuffer"
	case BindPackedUniformBuffer:
		return "PackedUniformBuffer"
	case BindStorageBuffer:
		return "StorageBuffer"
	case BindStorageImage:
		return "StorageImage"
	case BindUniformTexelBuffer:
		return "UniformTexelBuffer"
	case BindStorageTexelBuffer:
		return "StorageTexelBuffer"
	case BindInputAttachment:
		return "InputAttachment"
	default:
		return "unknown"
	}
}

// NoBinding is returned for registrations that do not produce a
// descriptor binding.
const NoBinding int32 = -1

// Binding is one descriptor table entry. VirtualIndex is the
// registration order; the final index is the entry's position after
// Sort.
type Binding struct {
	Name         string
	VirtualIndex int32
	Kind         BindingKind
	SubType      byte
}

// BindingTable assigns each distinct named resource a virtual index at
// registration time and a final kind-grouped index at Sort time.
type BindingTable struct {
	bindings         []Binding
	inputAttachments []string
	sorted           bool
}

// NewBindingTable returns an empty table.
func NewBindingTable() *BindingTable {
	return &BindingTable{}
}

// Register returns the virtual index for name, appending a new entry on
// first sight. Registration is idempotent by name; an empty name
// returns NoBinding without registering. blockName's trailing character
// is recorded as the entry subtype and validated per kind.
func (t *BindingTable) Register(name, blockName string, kind BindingKind) int32 {
	if name == "" {
		return NoBinding
	}
	if t.sorted {
		panic("internal error: binding registered after sort")
	}
	for i := range t.bindings {
		if t.bindings[i].Name == name {
			return t.bindings[i].VirtualIndex
		}
	}

	var subType byte
	if blockName != "" {
		subType = blockName[len(blockName)-1]
	}
	switch kind {
	case BindCombinedImageSampler, BindUniformTexelBuffer:
		if subType != 's' {
			panic(fmt.Sprintf("internal error: binding %q: subtype %q invalid for %s", name, subType, kind))
		}
	case BindPackedUniformBuffer:
		if !ir.PrecisionClass(subType).ValidForUniforms() {
			panic(fmt.Sprintf("internal error: binding %q: %q is not a packed precision class", name, subType))
		}
	}

	idx := int32(len(t.bindings)) //nolint:gosec // G115: binding counts are tiny
	t.bindings = append(t.bindings, Binding{
		Name:         name,
		VirtualIndex: idx,
		Kind:         kind,
		SubType:      subType,
	})
	if kind == BindInputAttachment {
		t.inputAttachments = append(t.inputAttachments, name)
	}
	return idx
}

// Sort orders the table by (kind, virtual index). Callable once;
// final-index queries are valid only afterwards.
func (t *BindingTable) Sort() {
	if t.sorted {
		panic("internal error: binding table sorted twice")
	}
	sort.SliceStable(t.bindings, func(i, j int) bool {
		if t.bindings[i].Kind != t.bindings[j].Kind {
			return t.bindings[i].Kind < t.bindings[j].Kind
		}
		return t.bindings[i].VirtualIndex < t.bindings[j].VirtualIndex
	})
	t.sorted = true
}

// FinalIndexOf returns the sorted position of the entry registered with
// the given virtual index, or NoBinding.
func (t *BindingTable) FinalIndexOf(virtual int32) int32 {
	if !t.sorted {
		panic("internal error: final index queried before sort")
	}
	for i := range t.bindings {
		if t.bindings[i].VirtualIndex == virtual {
			return int32(i) //nolint:gosec // G115: binding counts are tiny
		}
	}
	return NoBinding
}

// Bindings returns the entries in current order.
func (t *BindingTable) Bindings() []Binding {
	return t.bindings
}

// InputAttachments returns the input-attachment names in registration
// order.
func (t *BindingTable) InputAttachments() []string {
	return t.inputAttachments
}

// writeDefines emits the BINDING_<virtual> macro block, grouped by
// kind with a kind-name comment per group. Emitted layouts reference
// the virtual index; the defines map it to the final sorted index.
func (t *BindingTable) writeDefines(sb *strings.Builder) {
	if !t.sorted {
		panic("internal error: binding defines before sort")
	}
	lastKind := bindKindCount
	for i := range t.bindings {
		b := &t.bindings[i]
		if b.Kind != lastKind {
			fmt.Fprintf(sb, "// %s\n", b.Kind)
			lastKind = b.Kind
		}
		fmt.Fprintf(sb, "#define BINDING_%d %d\n", b.VirtualIndex, i)
	}
}

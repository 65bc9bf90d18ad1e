// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"sort"

	"github.com/gogpu/vkglsl/ir"
)

// copyRange describes one run of scalar components copied from a source
// constant buffer into a packed destination array. Offsets and sizes
// are in components.
type copyRange struct {
	SourceCB     uint16
	SourceOffset uint32
	Size         uint32

	DestCBIndex   uint16
	DestPrecision ir.PrecisionClass
	DestOffset    uint32
}

// mergeKey packs the (source buffer, dest buffer, dest precision)
// triple into one map key.
func (r copyRange) mergeKey() uint32 {
	if r.SourceCB >= 1<<12 {
		panic(fmt.Sprintf("internal error: source buffer index %d out of range", r.SourceCB))
	}
	if r.DestCBIndex >= 1<<12 {
		panic(fmt.Sprintf("internal error: dest buffer index %d out of range", r.DestCBIndex))
	}
	return uint32(r.SourceCB)<<20 | uint32(r.DestCBIndex)<<8 | uint32(r.DestPrecision)
}

// rangeMap holds merged copy ranges per (source, dest, precision) key.
// Each key's list stays sorted by source offset and fully merged:
// inserting re-runs the merge loop to fixed point, so adjacent ranges
// contiguous in both source and destination never survive.
type rangeMap map[uint32][]copyRange

// insert places the range by source offset and merges until no
// adjacent pair in the key's list is contiguous in both source and
// destination.
func (m rangeMap) insert(r copyRange) {
	key := r.mergeKey()
	list := m[key]

	at := sort.Search(len(list), func(i int) bool {
		return list[i].SourceOffset >= r.SourceOffset
	})
	list = append(list, copyRange{})
	copy(list[at+1:], list[at:])
	list[at] = r

	for {
		merged := false
		for i := 0; i+1 < len(list); i++ {
			a, b := list[i], list[i+1]
			if a.SourceOffset+a.Size == b.SourceOffset && a.DestOffset+a.Size == b.DestOffset {
				list[i].Size += b.Size
				list = append(list[:i+1], list[i+2:]...)
				merged = true
				break
			}
		}
		if !merged {
			break
		}
	}
	m[key] = list
}

// sorted flattens all keys into one list ordered by (source buffer,
// source offset).
func (m rangeMap) sorted() []copyRange {
	var out []copyRange
	for _, list := range m {
		out = append(out, list...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SourceCB != out[j].SourceCB {
			return out[i].SourceCB < out[j].SourceCB
		}
		return out[i].SourceOffset < out[j].SourceOffset
	})
	return out
}

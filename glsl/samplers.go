// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"sort"
)

// textureFacts records how one texture is used: whether any raw fetch
// or size query touched it, and which sampler states it was paired
// with.
type textureFacts struct {
	usedLoadOrDim bool
	samplerStates map[string]bool
}

// samplerGather accumulates texture/sampler pairing facts while the
// tree is walked.
type samplerGather struct {
	textures          map[string]*textureFacts
	samplerToTextures map[string]map[string]bool
	consolidated      bool
}

func newSamplerGather() *samplerGather {
	return &samplerGather{
		textures:          make(map[string]*textureFacts),
		samplerToTextures: make(map[string]map[string]bool),
	}
}

func (g *samplerGather) factsFor(texture string) *textureFacts {
	f := g.textures[texture]
	if f == nil {
		f = &textureFacts{samplerStates: make(map[string]bool)}
		g.textures[texture] = f
	}
	return f
}

// recordSample notes a filtered sample of texture through samplerState.
func (g *samplerGather) recordSample(texture, samplerState string) {
	g.factsFor(texture).samplerStates[samplerState] = true
	texs := g.samplerToTextures[samplerState]
	if texs == nil {
		texs = make(map[string]bool)
		g.samplerToTextures[samplerState] = texs
	}
	texs[texture] = true
}

// recordLoadOrDim notes a raw element fetch or size query of texture.
func (g *samplerGather) recordLoadOrDim(texture string) {
	g.factsFor(texture).usedLoadOrDim = true
}

// samplerMapping is the consolidation result. The three sets are
// disjoint views over the gathered names: a texture is either combined
// with its sampler state or standalone, and a sampler state survives
// only while a standalone texture still references it.
type samplerMapping struct {
	combinedSamplers        map[string]bool
	StandaloneTextures      []string
	StandaloneSamplerStates []string
}

// consolidate classifies every gathered texture and sampler state.
// Callable once; map iteration is ordered by sorted key so the result
// is deterministic for any gather order.
func (g *samplerGather) consolidate(allowCombined bool) *samplerMapping {
	if g.consolidated {
		panic("internal error: sampler facts consolidated twice")
	}
	g.consolidated = true

	m := &samplerMapping{combinedSamplers: make(map[string]bool)}

	// Raw fetch and size query must not depend on a sampler object, so
	// those textures always fuse their sampler state.
	textureNames := sortedKeys(g.textures)
	for _, tex := range textureNames {
		if g.textures[tex].usedLoadOrDim {
			m.combinedSamplers[tex] = true
		}
	}

	samplerNames := sortedKeys(g.samplerToTextures)
	combinable := make(map[string]bool)
	if allowCombined {
		for _, ss := range samplerNames {
			remaining := 0
			for tex := range g.samplerToTextures[ss] {
				if !m.combinedSamplers[tex] {
					remaining++
				}
			}
			if remaining <= 1 {
				combinable[ss] = true
			}
		}
		for _, tex := range textureNames {
			f := g.textures[tex]
			if m.combinedSamplers[tex] || len(f.samplerStates) != 1 {
				// A texture paired with two distinct sampler states can
				// never be fused.
				continue
			}
			for ss := range f.samplerStates {
				if combinable[ss] {
					m.combinedSamplers[tex] = true
				}
			}
		}
	}

	for _, tex := range textureNames {
		if !m.combinedSamplers[tex] {
			m.StandaloneTextures = append(m.StandaloneTextures, tex)
		}
	}
	for _, ss := range samplerNames {
		texs := g.samplerToTextures[ss]
		if len(texs) == 0 {
			panic(fmt.Sprintf("internal error: sampler state %q has no texture pairings", ss))
		}
		standalone := 0
		for tex := range texs {
			if !m.combinedSamplers[tex] {
				standalone++
			}
		}
		if standalone == 0 {
			continue
		}
		if allowCombined && !combinable[ss] && standalone < 2 {
			panic(fmt.Sprintf("internal error: shared sampler state %q kept only %d standalone texture", ss, standalone))
		}
		m.StandaloneSamplerStates = append(m.StandaloneSamplerStates, ss)
	}
	return m
}

// combined reports whether the texture was fused with its sampler
// state. Only valid after consolidation.
func (m *samplerMapping) combined(texture string) bool {
	if m == nil {
		panic("internal error: sampler query before consolidation")
	}
	return m.combinedSamplers[texture]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

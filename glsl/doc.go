// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl generates Vulkan-dialect GLSL source text from the
// shader IR, together with the descriptor binding table the runtime
// binds resources through.
//
// Generation is a fixed pipeline per shader: the entry point is wrapped
// in a synthesized main, two rewrite passes split precision boundaries
// and decompose componentwise matrix arithmetic, texture/sampler usage
// facts are gathered and consolidated, the aggregate type closure is
// computed, and a single depth-first traversal emits the text while
// registering bindings and feeding flattened-uniform copy descriptors
// into the range merger. The emitted text starts with a line-oriented
// reflection header and a BINDING_n define block mapping registration
// order to the final kind-grouped descriptor indices.
//
// A compilation is single-threaded and all state is private to one
// Generate call; distinct shaders may be compiled concurrently.
package glsl

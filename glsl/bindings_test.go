// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"
	"testing"
)

func TestRegisterIdempotent(t *testing.T) {
	table := NewBindingTable()
	first := table.Register("SceneTexture", "s", BindCombinedImageSampler)
	second := table.Register("SceneTexture", "s", BindCombinedImageSampler)
	if first != second {
		t.Errorf("re-registering the same name: got %d then %d", first, second)
	}
	if len(table.Bindings()) != 1 {
		t.Errorf("expected 1 entry, got %d", len(table.Bindings()))
	}
}

func TestRegisterEmptyName(t *testing.T) {
	table := NewBindingTable()
	if idx := table.Register("", "s", BindSampler); idx != NoBinding {
		t.Errorf("empty name should return NoBinding, got %d", idx)
	}
	if len(table.Bindings()) != 0 {
		t.Error("empty name must not register an entry")
	}
}

func TestSortGroupsByKind(t *testing.T) {
	table := NewBindingTable()
	table.Register("tex", "tex", BindImage)
	table.Register("ub", "ub", BindUniformBuffer)
	table.Register("ss", "s", BindSampler)
	table.Register("tex2", "tex2", BindImage)
	table.Sort()

	bindings := table.Bindings()
	for i := 1; i < len(bindings); i++ {
		prev, cur := bindings[i-1], bindings[i]
		if prev.Kind > cur.Kind {
			t.Errorf("kinds not grouped at %d: %v after %v", i, cur.Kind, prev.Kind)
		}
		if prev.Kind == cur.Kind && prev.VirtualIndex > cur.VirtualIndex {
			t.Errorf("virtual order lost within kind at %d", i)
		}
	}
	if bindings[0].Name != "ss" {
		t.Errorf("sampler should sort first, got %q", bindings[0].Name)
	}
}

func TestFinalIndexOf(t *testing.T) {
	table := NewBindingTable()
	texVirtual := table.Register("tex", "tex", BindImage)
	ssVirtual := table.Register("ss", "s", BindSampler)
	table.Sort()

	if got := table.FinalIndexOf(ssVirtual); got != 0 {
		t.Errorf("sampler final index = %d, want 0", got)
	}
	if got := table.FinalIndexOf(texVirtual); got != 1 {
		t.Errorf("image final index = %d, want 1", got)
	}
	if got := table.FinalIndexOf(99); got != NoBinding {
		t.Errorf("unknown virtual index = %d, want NoBinding", got)
	}
}

func TestSortTwicePanics(t *testing.T) {
	table := NewBindingTable()
	table.Register("tex", "tex", BindImage)
	table.Sort()

	defer func() {
		if recover() == nil {
			t.Error("second Sort should panic")
		}
	}()
	table.Sort()
}

func TestRegisterSubTypeValidation(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("combined image sampler without 's' subtype should panic")
		}
	}()
	NewBindingTable().Register("tex", "tex", BindCombinedImageSampler)
}

func TestRegisterPackedPrecisionValidation(t *testing.T) {
	table := NewBindingTable()
	// Valid precision classes pass.
	if idx := table.Register("pu_h", "pu_h", BindPackedUniformBuffer); idx != 0 {
		t.Errorf("valid packed registration returned %d", idx)
	}
	defer func() {
		if recover() == nil {
			t.Error("invalid packed precision class should panic")
		}
	}()
	table.Register("pu_x", "pu_x", BindPackedUniformBuffer)
}

func TestWriteDefines(t *testing.T) {
	table := NewBindingTable()
	table.Register("tex", "tex", BindImage)
	table.Register("ss", "s", BindSampler)
	table.Sort()

	var sb strings.Builder
	table.writeDefines(&sb)
	out := sb.String()

	for _, want := range []string{
		"// Sampler\n",
		"#define BINDING_1 0\n",
		"// Image\n",
		"#define BINDING_0 1\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("defines missing %q:\n%s", want, out)
		}
	}
}

func TestInputAttachmentsRecorded(t *testing.T) {
	table := NewBindingTable()
	table.Register("scene_color", "scene_colors", BindInputAttachment)
	table.Register("scene_depth", "scene_depths", BindInputAttachment)

	got := table.InputAttachments()
	if len(got) != 2 || got[0] != "scene_color" || got[1] != "scene_depth" {
		t.Errorf("InputAttachments = %v", got)
	}
}

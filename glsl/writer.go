// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/vkglsl/ir"
)

// samplerReflect is one @Samplers reflection entry: a texture with its
// assigned unit range and the sampler states seen with it.
type samplerReflect struct {
	name   string
	offset uint32
	count  uint32
	states []string
}

// uavReflect is one @UAVs reflection entry.
type uavReflect struct {
	name   string
	offset uint32
	count  uint32
}

// Writer holds all per-compilation emission state. A Writer is private
// to one Generate call.
type Writer struct {
	shader *ir.Shader
	state  *ir.ParseState
	stage  ir.ShaderStage
	opts   *Options

	// Output buffer for declarations and function bodies; the header
	// sections are assembled around it at the end.
	out    strings.Builder
	indent int

	// depth is the scope nesting level; 0 is global scope, where
	// builtin variables are never redeclared.
	depth int

	bindings *BindingTable
	gather   *samplerGather
	mapping  *samplerMapping
	closure  *typeClosure
	ranges   rangeMap

	namer       *namer
	varNames    map[*ir.DeclVariable]string
	builtinVars map[string]*ir.DeclVariable

	entry *ir.FunctionSignature

	// Stage interface variables, in declaration order.
	inputVars  []*ir.DeclVariable
	outputVars []*ir.DeclVariable

	samplerEntries []samplerReflect
	uavEntries     []uavReflect
	samplerStates  []string
	samplerOffset  uint32
	uavOffset      uint32
	attachmentIdx  uint32

	// Feature usage discovered during fact gathering and emission.
	usesDerivatives  bool
	usesImageAtomics bool
	usesMultiview    bool
	usesTexBuffer    bool
	usesCubeArray    bool
	hasDiscard       bool
}

// namer allocates unique identifiers.
type namer struct {
	used    map[string]struct{}
	counter uint32
}

func newNamer() *namer {
	return &namer{used: make(map[string]struct{})}
}

// call returns a unique name based on base, escaping reserved words and
// appending a numeric suffix on collision.
func (n *namer) call(base string) string {
	escaped := escapeKeyword(base)
	if _, taken := n.used[escaped]; !taken {
		n.used[escaped] = struct{}{}
		return escaped
	}
	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", escaped, n.counter)
		if _, taken := n.used[candidate]; !taken {
			n.used[candidate] = struct{}{}
			return candidate
		}
	}
}

func newWriter(shader *ir.Shader, state *ir.ParseState, stage ir.ShaderStage, opts *Options) *Writer {
	return &Writer{
		shader:      shader,
		state:       state,
		stage:       stage,
		opts:        opts,
		bindings:    NewBindingTable(),
		gather:      newSamplerGather(),
		ranges:      make(rangeMap),
		namer:       newNamer(),
		varNames:    make(map[*ir.DeclVariable]string),
		builtinVars: make(map[string]*ir.DeclVariable),
	}
}

// nameOf returns the emitted name for a variable. Builtin gl_ names
// pass through untouched; everything else is allocated through the
// namer on first use.
func (w *Writer) nameOf(v *ir.DeclVariable) string {
	if strings.HasPrefix(v.Name, "gl_") {
		return v.Name
	}
	if name, ok := w.varNames[v]; ok {
		return name
	}
	name := w.namer.call(v.Name)
	w.varNames[v] = name
	return name
}

func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteByte('\t')
	}
}

func (w *Writer) writeLine(format string, args ...any) {
	w.writeIndent()
	fmt.Fprintf(&w.out, format, args...)
	w.out.WriteByte('\n')
}

func (w *Writer) pushIndent() { w.indent++ }
func (w *Writer) popIndent()  { w.indent-- }

// writeDecls emits the whole declaration/body section: struct
// declarations, packed uniform arrays, uniform blocks, resource and
// interface globals, stage layout lines, then functions with the
// synthesized main last.
func (w *Writer) writeDecls() error {
	w.writeStructDecls()
	w.writePackedUniformArrays()
	if err := w.writeUniformBlocks(); err != nil {
		return err
	}

	for _, n := range w.shader.Decls {
		d, ok := n.(*ir.DeclVariable)
		if !ok {
			continue
		}
		if err := w.writeGlobalDecl(d); err != nil {
			return err
		}
	}
	if err := w.writeInterfaceDecls(); err != nil {
		return err
	}
	w.writeStageLayouts()

	for _, n := range w.shader.Decls {
		fn, ok := n.(*ir.Function)
		if !ok {
			continue
		}
		for _, sig := range fn.Signatures {
			if !sig.IsDefined {
				continue
			}
			if err := w.writeFunction(sig); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeStructDecls declares multi-dimensional array wrappers innermost
// first, then closure structs in arena order.
func (w *Writer) writeStructDecls() {
	for i := range w.closure.wrappers {
		wr := &w.closure.wrappers[i]
		elem, err := glslTypeName(w.shader, wr.elem)
		if err != nil {
			elem = "float"
		}
		w.writeLine("struct %s", wr.name)
		w.writeLine("{")
		w.pushIndent()
		w.writeLine("%s Inner[%d];", elem, wr.size)
		w.popIndent()
		w.writeLine("};")
	}

	for h := range w.shader.Types {
		handle := ir.TypeHandle(h) //nolint:gosec // G115: handle is valid arena index
		if !w.closure.contains(handle) {
			continue
		}
		st, ok := w.shader.Inner(handle).(ir.StructType)
		if !ok {
			continue
		}
		w.writeLine("struct %s", w.shader.TypeAt(handle).Name)
		w.writeLine("{")
		w.pushIndent()
		if len(st.Members) == 0 {
			w.writeLine("float glsl_doesnt_like_empty_structs;")
		}
		for _, m := range st.Members {
			name, err := w.memberTypeName(m.Type)
			if err != nil {
				continue
			}
			w.writeLine("%s %s%s;", name, m.Name, arraySuffix(w.shader, m.Type))
		}
		w.popIndent()
		w.writeLine("};")
	}
}

// memberTypeName resolves a member type, substituting the wrapper name
// for inner-array members.
func (w *Writer) memberTypeName(h ir.TypeHandle) (string, error) {
	if a, ok := w.shader.Inner(h).(ir.ArrayType); ok {
		if wr := w.closure.wrapperFor(w.shader, a.Base); wr != nil {
			return wr.name, nil
		}
	}
	return glslTypeName(w.shader, h)
}

// packedArrayName names a packed uniform array: the global ones are
// pu_<class>, the per-buffer ones pc<index>_<class>.
func packedArrayName(cbIndex int, class ir.PrecisionClass) string {
	if cbIndex < 0 {
		return fmt.Sprintf("pu_%c", class)
	}
	return fmt.Sprintf("pc%d_%c", cbIndex, class)
}

func packedElemType(class ir.PrecisionClass) string {
	switch class {
	case ir.PrecisionInt:
		return "ivec4"
	case ir.PrecisionUint:
		return "uvec4"
	default:
		return "vec4"
	}
}

func packedElemPrecision(class ir.PrecisionClass) string {
	switch class {
	case ir.PrecisionMedium:
		return "mediump "
	case ir.PrecisionLow:
		return "lowp "
	default:
		return "highp "
	}
}

// writePackedUniformArrays declares the packed global arrays and the
// flattened constant-buffer arrays, registers their bindings and feeds
// the flattening copy descriptors into the range merger.
func (w *Writer) writePackedUniformArrays() {
	for _, class := range packedClassOrder {
		arr := w.state.GlobalPackedArrays[class]
		if len(arr) > 0 {
			w.declarePackedArray(-1, class, arr)
		}
	}

	for cbIndex, block := range w.state.UniformBlocks {
		byClass := w.state.CBPackedArrays[block.Name]
		if byClass == nil {
			continue
		}
		for _, class := range packedClassOrder {
			arr := byClass[class]
			if len(arr) == 0 {
				continue
			}
			if w.opts.GroupFlattenedUBs {
				w.declarePackedArray(cbIndex, class, arr)
			}
			for _, u := range arr {
				destCB := uint16(0)
				if w.opts.GroupFlattenedUBs {
					destCB = uint16(cbIndex) //nolint:gosec // G115: buffer counts are tiny
				}
				w.ranges.insert(copyRange{
					SourceCB:      uint16(cbIndex), //nolint:gosec // G115: buffer counts are tiny
					SourceOffset:  u.SourceOffset,
					Size:          u.NumComponents,
					DestCBIndex:   destCB,
					DestPrecision: class,
					DestOffset:    u.DestOffset,
				})
			}
		}
	}
}

func (w *Writer) declarePackedArray(cbIndex int, class ir.PrecisionClass, arr []ir.PackedUniform) {
	name := packedArrayName(cbIndex, class)
	last := arr[len(arr)-1]
	elems := (last.DestOffset + last.NumComponents + 3) / 4
	idx := w.bindings.Register(name, name, BindPackedUniformBuffer)
	precision := ""
	if w.opts.TargetProfile.IsES() {
		precision = packedElemPrecision(class)
	}
	w.writeLine("layout(set=0, binding=BINDING_%d) uniform %s%s_block", idx, precision, name)
	w.writeLine("{")
	w.pushIndent()
	w.writeLine("%s%s %s[%d];", precision, packedElemType(class), name, elems)
	w.popIndent()
	w.writeLine("};")
}

// writeUniformBlocks declares the used, non-flattened uniform blocks.
func (w *Writer) writeUniformBlocks() error {
	if w.state.FlattenUniformBuffers {
		return nil
	}
	for _, block := range w.state.UniformBlocks {
		if !w.state.UsedUniformBlocks[block.Name] {
			continue
		}
		idx := w.bindings.Register(block.Name, block.Name, BindUniformBuffer)
		w.writeLine("layout(set=0, binding=BINDING_%d) uniform %s", idx, block.Name)
		w.writeLine("{")
		w.pushIndent()
		for _, v := range block.Vars {
			name, err := w.memberTypeName(v.Type)
			if err != nil {
				return err
			}
			w.writeLine("%s%s %s%s;", w.precisionQualifier(v.Type), name, w.nameOf(v), arraySuffix(w.shader, v.Type))
		}
		w.popIndent()
		w.writeLine("};")
	}
	return nil
}

// writeGlobalDecl routes a global variable declaration by its mode and
// type: resources register bindings, interface variables are deferred
// to writeInterfaceDecls, plain globals and shared memory print
// directly.
func (w *Writer) writeGlobalDecl(d *ir.DeclVariable) error {
	switch d.Mode {
	case ir.ModeIn:
		w.inputVars = append(w.inputVars, d)
		return nil
	case ir.ModeOut:
		w.outputVars = append(w.outputVars, d)
		return nil
	case ir.ModeShared:
		name, err := glslTypeName(w.shader, d.Type)
		if err != nil {
			return err
		}
		w.writeLine("shared %s %s%s;", name, w.nameOf(d), arraySuffix(w.shader, d.Type))
		return nil
	case ir.ModeUniform:
		return w.writeUniformDecl(d)
	default:
		// Plain global temporary.
		return w.writeLocalDecl(d)
	}
}

func (w *Writer) writeUniformDecl(d *ir.DeclVariable) error {
	switch inner := w.shader.Inner(d.Type).(type) {
	case ir.ImageType:
		return w.writeImageUniform(d, inner)
	case ir.SamplerStateType:
		// Standalone sampler states are declared from the consolidated
		// mapping, not from their declaration node.
		return nil
	default:
		name, err := glslTypeName(w.shader, d.Type)
		if err != nil {
			return err
		}
		w.writeLine("uniform %s%s %s%s;", w.precisionQualifier(d.Type), name, w.nameOf(d), arraySuffix(w.shader, d.Type))
		return nil
	}
}

func (w *Writer) writeImageUniform(d *ir.DeclVariable, img ir.ImageType) error {
	name := w.nameOf(d)
	count := uint32(1)
	if a, ok := w.shader.Inner(d.Type).(ir.ArrayType); ok {
		count = a.Size
	}
	if img.Dim == ir.DimBuffer {
		w.usesTexBuffer = true
	}
	if img.Dim == ir.DimCube && img.Arrayed {
		w.usesCubeArray = true
	}

	if strings.EqualFold(d.Semantic, "VULKAN_SUBPASS_FETCH") {
		idx := w.bindings.Register(name, name+"s", BindInputAttachment)
		w.writeLine("layout(input_attachment_index=%d, set=0, binding=BINDING_%d) uniform %ssubpassInput %s;",
			w.attachmentIdx, idx, w.precisionQualifier(d.Type), name)
		w.attachmentIdx++
		return nil
	}

	if img.Class == ir.ImageClassStorage {
		kind := BindStorageImage
		if img.Dim == ir.DimBuffer {
			kind = BindStorageTexelBuffer
		}
		idx := w.bindings.Register(name, name+"s", kind)
		w.writeLine("layout(set=0, binding=BINDING_%d, %s) uniform %s%s %s;",
			idx, storageImageFormat(img.Scalar), w.precisionQualifier(d.Type), storageImageTypeName(img), name)
		w.uavEntries = append(w.uavEntries, uavReflect{name: name, offset: w.uavOffset, count: count})
		w.uavOffset += count
		return nil
	}

	states := sortedKeys(w.gather.factsFor(d.Name).samplerStates)
	if w.mapping.combined(d.Name) {
		kind := BindCombinedImageSampler
		if img.Dim == ir.DimBuffer {
			kind = BindUniformTexelBuffer
		}
		idx := w.bindings.Register(name, name+"s", kind)
		w.writeLine("layout(set=0, binding=BINDING_%d) uniform %s%s %s;",
			idx, w.precisionQualifier(d.Type), combinedSamplerTypeName(img), name)
	} else {
		idx := w.bindings.Register(name, name, BindImage)
		w.writeLine("layout(set=0, binding=BINDING_%d) uniform %s%s %s;",
			idx, w.precisionQualifier(d.Type), textureTypeName(img), name)
	}
	w.samplerEntries = append(w.samplerEntries, samplerReflect{
		name:   name,
		offset: w.samplerOffset,
		count:  count,
		states: states,
	})
	w.samplerOffset += count
	return nil
}

// writeInterfaceDecls declares standalone sampler states and the stage
// input/output variables collected during entry synthesis.
func (w *Writer) writeInterfaceDecls() error {
	for _, ss := range w.mapping.StandaloneSamplerStates {
		idx := w.bindings.Register(ss, ss+"s", BindSampler)
		precision := ""
		if w.opts.TargetProfile.IsES() {
			precision = "highp "
		}
		w.writeLine("layout(set=0, binding=BINDING_%d) uniform %ssampler %s;", idx, precision, ss)
		w.samplerStates = append(w.samplerStates, ss)
	}

	location := uint32(0)
	for _, v := range w.inputVars {
		if err := w.writeInterfaceVar(v, "in", &location); err != nil {
			return err
		}
	}
	location = 0
	for _, v := range w.outputVars {
		if err := w.writeInterfaceVar(v, "out", &location); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeInterfaceVar(v *ir.DeclVariable, dir string, location *uint32) error {
	name, err := glslTypeName(w.shader, v.Type)
	if err != nil {
		return err
	}
	qualifiers := ""
	if v.Flat {
		qualifiers = "flat "
	}
	if v.PatchConstant {
		qualifiers = "patch " + qualifiers
	}
	suffix := arraySuffix(w.shader, v.Type)
	if perVertexArrayed(w.stage, v, dir) && suffix == "" {
		suffix = "[]"
	}
	if w.opts.GenerateLayoutLocations || v.ExplicitLocation {
		loc := *location
		if v.ExplicitLocation {
			loc = v.Location
		}
		v.Location = loc
		v.ExplicitLocation = true
		w.writeLine("layout(location=%d) %s%s %s%s %s%s;",
			loc, qualifiers, dir, w.precisionQualifier(v.Type), name, w.nameOf(v), suffix)
	} else {
		w.writeLine("%s%s %s%s %s%s;", qualifiers, dir, w.precisionQualifier(v.Type), name, w.nameOf(v), suffix)
	}
	*location += locationSlots(w.shader, v.Type)
	return nil
}

// perVertexArrayed reports whether the interface variable is implicitly
// an array: geometry/tessellation per-vertex inputs and tessellation
// control per-vertex outputs.
func perVertexArrayed(stage ir.ShaderStage, v *ir.DeclVariable, dir string) bool {
	if v.PatchConstant {
		return false
	}
	switch stage {
	case ir.StageGeometry, ir.StageDomain:
		return dir == "in"
	case ir.StageHull:
		return true
	default:
		return false
	}
}

// locationSlots returns the number of location slots a type consumes.
func locationSlots(shader *ir.Shader, h ir.TypeHandle) uint32 {
	switch t := shader.Inner(h).(type) {
	case ir.MatrixType:
		return uint32(t.Columns)
	case ir.ArrayType:
		return t.Size * locationSlots(shader, t.Base)
	default:
		return 1
	}
}

// writeStageLayouts emits the stage-wide layout lines: early fragment
// tests, compute work-group size, geometry primitives, tessellation
// control points and domain modes.
func (w *Writer) writeStageLayouts() {
	if w.entry == nil {
		return
	}
	switch w.stage {
	case ir.StagePixel:
		if w.state.EarlyDepthStencil && !w.hasDiscard {
			w.writeLine("layout(early_fragment_tests) in;")
		}
	case ir.StageCompute:
		size := w.entry.WorkGroupSize
		if size == [3]uint32{} {
			size = [3]uint32{1, 1, 1}
		}
		w.writeLine("layout(local_size_x=%d, local_size_y=%d, local_size_z=%d) in;", size[0], size[1], size[2])
	case ir.StageGeometry:
		if w.entry.InputPrimitive != "" {
			w.writeLine("layout(%s) in;", w.entry.InputPrimitive)
		}
		if w.entry.OutputPrimitive != "" {
			w.writeLine("layout(%s, max_vertices=%d) out;", w.entry.OutputPrimitive, w.entry.MaxVertexCount)
		}
	case ir.StageHull:
		if w.entry.OutputControlPoints > 0 {
			w.writeLine("layout(vertices=%d) out;", w.entry.OutputControlPoints)
		}
	case ir.StageDomain:
		modes := make([]string, 0, 3)
		if w.entry.Domain != "" {
			modes = append(modes, w.entry.Domain)
		}
		if w.entry.Partitioning != "" {
			modes = append(modes, w.entry.Partitioning)
		}
		if w.entry.OutputTopology != "" {
			modes = append(modes, w.entry.OutputTopology)
		}
		if len(modes) > 0 {
			w.writeLine("layout(%s) in;", strings.Join(modes, ", "))
		}
	}
}

// writeFunction emits one defined function.
func (w *Writer) writeFunction(sig *ir.FunctionSignature) error {
	retName, err := glslTypeName(w.shader, sig.ReturnType)
	if err != nil {
		return err
	}

	var params strings.Builder
	for i, p := range sig.Parameters {
		if i > 0 {
			params.WriteString(", ")
		}
		if i < len(sig.ParameterModes) && sig.ParameterModes[i] == ir.ModeOut {
			params.WriteString("out ")
		}
		typeName, err := glslTypeName(w.shader, p.Type)
		if err != nil {
			return err
		}
		fmt.Fprintf(&params, "%s%s %s%s", w.precisionQualifier(p.Type), typeName, w.nameOf(p), arraySuffix(w.shader, p.Type))
	}

	name := sig.Name
	if sig.IsMain {
		name = "main"
	} else {
		name = escapeKeyword(name)
	}
	w.writeLine("%s %s(%s)", retName, name, params.String())
	w.writeLine("{")
	w.pushIndent()
	w.depth++
	err = w.writeBlock(sig.Body)
	w.depth--
	w.popIndent()
	w.writeLine("}")
	return err
}

// assemble stitches the final text: reflection header, version and
// extension directives, default precision, binding defines, then the
// declaration/body buffer.
func (w *Writer) assemble() string {
	var sb strings.Builder
	w.writeReflectionHeader(&sb)

	fmt.Fprintf(&sb, "#version %s\n", w.opts.TargetProfile.versionDirective())
	sb.WriteString("#extension GL_ARB_separate_shader_objects : enable\n")
	sb.WriteString("#extension GL_ARB_shading_language_420pack : enable\n")
	es := w.opts.TargetProfile.IsES()
	if w.usesDerivatives && w.opts.TargetProfile == ProfileES2 {
		sb.WriteString("#extension GL_OES_standard_derivatives : enable\n")
	}
	if w.usesImageAtomics && es {
		sb.WriteString("#extension GL_OES_shader_image_atomic : enable\n")
	}
	if w.usesMultiview {
		sb.WriteString("#extension GL_EXT_multiview : enable\n")
	}
	if es {
		switch w.stage {
		case ir.StageGeometry:
			sb.WriteString("#extension GL_EXT_geometry_shader : enable\n")
		case ir.StageHull, ir.StageDomain:
			sb.WriteString("#extension GL_EXT_tessellation_shader : enable\n")
		}
		if w.usesTexBuffer {
			sb.WriteString("#extension GL_EXT_texture_buffer : enable\n")
		}
		if w.usesCubeArray {
			sb.WriteString("#extension GL_EXT_texture_cube_map_array : enable\n")
		}
		if w.stage != ir.StageCompute {
			sb.WriteString("#extension GL_EXT_shader_io_blocks : enable\n")
		}
	}
	if es {
		sb.WriteString("precision highp float;\n")
		sb.WriteString("precision highp int;\n")
	}

	w.bindings.writeDefines(&sb)
	sb.WriteString(w.out.String())
	return sb.String()
}

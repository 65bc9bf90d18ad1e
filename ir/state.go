package ir

// PrecisionClass tags a packed global array by component precision.
// The values are the single characters the reflection header and
// binding table use.
type PrecisionClass byte

const (
	PrecisionHigh   PrecisionClass = 'h'
	PrecisionMedium PrecisionClass = 'm'
	PrecisionLow    PrecisionClass = 'l'
	PrecisionInt    PrecisionClass = 'i'
	PrecisionUint   PrecisionClass = 'u'

	// PackedSampler and PackedImage are not uniform precisions; they
	// tag sampler and image entries in contexts that reuse the same
	// one-byte classification.
	PackedSampler PrecisionClass = 's'
	PackedImage   PrecisionClass = 'g'
)

// ValidForUniforms reports whether the class may tag a packed uniform
// array.
func (p PrecisionClass) ValidForUniforms() bool {
	switch p {
	case PrecisionHigh, PrecisionMedium, PrecisionLow, PrecisionInt, PrecisionUint:
		return true
	default:
		return false
	}
}

// PrecisionFor returns the packed-array class for a scalar kind.
// DefaultPrecisionIsReduced decides which class plain floats land in.
func PrecisionFor(k ScalarKind, reducedDefault bool) PrecisionClass {
	switch k {
	case ScalarInt:
		return PrecisionInt
	case ScalarUint:
		return PrecisionUint
	case ScalarHalf:
		return PrecisionMedium
	default:
		if reducedDefault {
			return PrecisionMedium
		}
		return PrecisionHigh
	}
}

// PackedUniform describes one flattened uniform: where it lives in the
// packed global array and, for members lifted out of a source constant
// buffer, where it came from.
type PackedUniform struct {
	Name          string
	DestOffset    uint32 // component offset in the packed array
	NumComponents uint32

	// SourceCB and SourceOffset identify the originating constant
	// buffer member for emulated-UB copies; SourceCB is empty for true
	// packed globals.
	SourceCB     string
	SourceOffset uint32
}

// UniformBlock is one source constant buffer and its member variables.
type UniformBlock struct {
	Name string
	Vars []*DeclVariable
}

// ParseState carries front-end results that the backend consumes but
// that do not live in the IR tree itself.
type ParseState struct {
	// UniformBlocks lists source constant buffers in declaration order.
	UniformBlocks []UniformBlock

	// UsedUniformBlocks marks blocks actually referenced by the entry
	// point's call graph. Unreferenced blocks are not declared.
	UsedUniformBlocks map[string]bool

	// FlattenUniformBuffers selects the emulated-UB path: constant
	// buffer members are copied into packed global arrays at bind time
	// instead of being declared as uniform blocks.
	FlattenUniformBuffers bool

	// GlobalPackedArrays holds true packed globals, per precision class.
	GlobalPackedArrays map[PrecisionClass][]PackedUniform

	// CBPackedArrays holds flattened constant-buffer members, keyed by
	// source block name then precision class.
	CBPackedArrays map[string]map[PrecisionClass][]PackedUniform

	// ExternalTextures lists samplers bound to external (OES) textures.
	ExternalTextures []string

	// EarlyDepthStencil is set when the entry point carries the
	// attribute forcing early fragment tests.
	EarlyDepthStencil bool

	// Diags accumulates warnings and errors across all phases.
	Diags *DiagSink
}

// NewParseState returns an empty state with initialized maps.
func NewParseState() *ParseState {
	return &ParseState{
		UsedUniformBlocks:  make(map[string]bool),
		GlobalPackedArrays: make(map[PrecisionClass][]PackedUniform),
		CBPackedArrays:     make(map[string]map[PrecisionClass][]PackedUniform),
		Diags:              &DiagSink{},
	}
}

// AddGlobalPacked appends a packed global to the class array and
// returns its component offset.
func (ps *ParseState) AddGlobalPacked(class PrecisionClass, name string, numComponents uint32) uint32 {
	arr := ps.GlobalPackedArrays[class]
	offset := uint32(0)
	if n := len(arr); n > 0 {
		offset = arr[n-1].DestOffset + arr[n-1].NumComponents
	}
	ps.GlobalPackedArrays[class] = append(arr, PackedUniform{
		Name:          name,
		DestOffset:    offset,
		NumComponents: numComponents,
	})
	return offset
}

// AddCBPacked appends a flattened constant-buffer member to the block's
// class array and returns its component offset in the packed array.
func (ps *ParseState) AddCBPacked(block string, class PrecisionClass, u PackedUniform) uint32 {
	byClass := ps.CBPackedArrays[block]
	if byClass == nil {
		byClass = make(map[PrecisionClass][]PackedUniform)
		ps.CBPackedArrays[block] = byClass
	}
	arr := byClass[class]
	offset := uint32(0)
	if n := len(arr); n > 0 {
		offset = arr[n-1].DestOffset + arr[n-1].NumComponents
	}
	u.DestOffset = offset
	byClass[class] = append(arr, u)
	return offset
}

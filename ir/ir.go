package ir

// Shader is one compilation unit: the type arena plus the ordered list
// of global declarations and functions produced by the front end.
// A Shader is private to one compilation and is mutated by the backend's
// rewrite passes; distinct Shaders are independent.
type Shader struct {
	// Types holds all type definitions, in front-end declaration order.
	Types []Type

	// Decls holds global variable declarations and functions, in order.
	Decls Block
}

// ShaderStage identifies the pipeline stage being compiled.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StagePixel
	StageGeometry
	StageHull
	StageDomain
	StageCompute

	StageCount
)

// String returns the lower-case stage name.
func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StagePixel:
		return "pixel"
	case StageGeometry:
		return "geometry"
	case StageHull:
		return "hull"
	case StageDomain:
		return "domain"
	case StageCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// TypeHandle references a type in the Shader's type arena.
type TypeHandle uint32

// InvalidType marks an absent type reference (e.g. a void return).
const InvalidType TypeHandle = ^TypeHandle(0)

// Type represents a type in the IR.
type Type struct {
	Name  string
	Inner TypeInner
}

// TypeInner represents the inner type kind.
type TypeInner interface {
	typeInner()
}

// ScalarKind represents scalar type kinds. Half is the reduced-precision
// float representation; Float and Half are distinct kinds so precision
// boundaries are visible in the tree.
type ScalarKind uint8

const (
	ScalarBool ScalarKind = iota
	ScalarInt
	ScalarUint
	ScalarFloat
	ScalarHalf
)

// IsFloat reports whether the kind is a floating-point kind of any precision.
func (k ScalarKind) IsFloat() bool {
	return k == ScalarFloat || k == ScalarHalf
}

// ScalarType represents scalar types.
type ScalarType struct {
	Kind ScalarKind
}

func (ScalarType) typeInner() {}

// VectorType represents vector types. Size is 2, 3 or 4.
type VectorType struct {
	Kind ScalarKind
	Size uint8
}

func (VectorType) typeInner() {}

// MatrixType represents matrix types.
type MatrixType struct {
	Kind    ScalarKind
	Columns uint8
	Rows    uint8
}

func (MatrixType) typeInner() {}

// ArrayType represents fixed-size array types. Multi-dimensional arrays
// nest: the Base of the outer array is itself an array type.
type ArrayType struct {
	Base TypeHandle
	Size uint32
}

func (ArrayType) typeInner() {}

// StructType represents record types.
type StructType struct {
	Members []StructMember
}

func (StructType) typeInner() {}

// StructMember represents a struct member. Semantic is the source-language
// semantic annotation, empty when absent.
type StructMember struct {
	Name     string
	Type     TypeHandle
	Semantic string
}

// SamplerStateType represents a standalone sampler-state object.
type SamplerStateType struct {
	Comparison bool
}

func (SamplerStateType) typeInner() {}

// ImageDim represents texture/image dimensionality.
type ImageDim uint8

const (
	Dim1D ImageDim = iota
	Dim2D
	Dim3D
	DimCube
	DimBuffer
)

// ImageClass separates sampled textures from storage images.
type ImageClass uint8

const (
	ImageClassSampled ImageClass = iota
	ImageClassStorage
)

// ImageType represents texture and storage image types.
type ImageType struct {
	Dim          ImageDim
	Class        ImageClass
	Scalar       ScalarKind // sampled/stored component kind
	Arrayed      bool
	Multisampled bool
	Shadow       bool
}

func (ImageType) typeInner() {}

// PatchKind distinguishes tessellation patch wrappers.
type PatchKind uint8

const (
	PatchInput PatchKind = iota
	PatchOutput
)

// PatchType wraps a per-vertex aggregate for tessellation stages.
type PatchType struct {
	Kind   PatchKind
	Inner  TypeHandle
	Length uint32
}

func (PatchType) typeInner() {}

// AddType appends a type to the arena and returns its handle.
func (s *Shader) AddType(t Type) TypeHandle {
	s.Types = append(s.Types, t)
	return TypeHandle(len(s.Types) - 1)
}

// TypeAt returns the arena entry for a handle.
func (s *Shader) TypeAt(h TypeHandle) *Type {
	return &s.Types[h]
}

// Inner returns the inner kind for a handle, or nil for InvalidType.
func (s *Shader) Inner(h TypeHandle) TypeInner {
	if h == InvalidType {
		return nil
	}
	return s.Types[h].Inner
}

// EnsureType returns a handle for the given inner kind, reusing an
// existing arena entry when one matches. Structs are never coalesced;
// each struct declaration keeps its own identity.
func (s *Shader) EnsureType(name string, inner TypeInner) TypeHandle {
	if _, ok := inner.(StructType); !ok {
		for h, t := range s.Types {
			if t.Inner == nil {
				continue
			}
			if innerEqual(t.Inner, inner) {
				return TypeHandle(h) //nolint:gosec // G115: handle is valid slice index
			}
		}
	}
	return s.AddType(Type{Name: name, Inner: inner})
}

// innerEqual compares non-struct inner kinds. All non-struct kinds are
// comparable value types.
func innerEqual(a, b TypeInner) bool {
	if _, ok := a.(StructType); ok {
		return false
	}
	if _, ok := b.(StructType); ok {
		return false
	}
	return a == b
}

// IsAggregate reports whether a handle names a struct type.
func (s *Shader) IsAggregate(h TypeHandle) bool {
	if h == InvalidType {
		return false
	}
	_, ok := s.Types[h].Inner.(StructType)
	return ok
}

// Components returns the scalar component count of a scalar, vector or
// matrix handle, and 0 for anything else.
func (s *Shader) Components(h TypeHandle) uint32 {
	switch t := s.Inner(h).(type) {
	case ScalarType:
		return 1
	case VectorType:
		return uint32(t.Size)
	case MatrixType:
		return uint32(t.Columns) * uint32(t.Rows)
	default:
		return 0
	}
}

// ScalarKindOf returns the component kind of a scalar, vector or matrix
// handle. Returns ScalarFloat for other kinds.
func (s *Shader) ScalarKindOf(h TypeHandle) ScalarKind {
	switch t := s.Inner(h).(type) {
	case ScalarType:
		return t.Kind
	case VectorType:
		return t.Kind
	case MatrixType:
		return t.Kind
	default:
		return ScalarFloat
	}
}

// FindFunction returns the function with the given name, or nil.
func (s *Shader) FindFunction(name string) *Function {
	for _, n := range s.Decls {
		if fn, ok := n.(*Function); ok && fn.Name == name {
			return fn
		}
	}
	return nil
}

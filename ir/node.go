package ir

// Node is implemented by every IR tree node.
type Node interface {
	node()
}

// Block is an ordered, mutable instruction list. Rewrite passes insert
// synthesized declarations ahead of the node being visited; see
// InsertBefore.
type Block []Node

// InsertBefore returns a copy of the block with nodes spliced in ahead
// of index i.
func (b Block) InsertBefore(i int, nodes ...Node) Block {
	if len(nodes) == 0 {
		return b
	}
	out := make(Block, 0, len(b)+len(nodes))
	out = append(out, b[:i]...)
	out = append(out, nodes...)
	out = append(out, b[i:]...)
	return out
}

// VariableMode classifies a variable declaration.
type VariableMode uint8

const (
	ModeTemp VariableMode = iota
	ModeIn
	ModeOut
	ModeUniform
	ModeShared
)

// DeclVariable declares a variable. The same node doubles as the
// reference target: dereferences point at the declaration by pointer.
type DeclVariable struct {
	Name     string
	Type     TypeHandle
	Mode     VariableMode
	Semantic string

	// Location is an explicit layout location; valid only when
	// ExplicitLocation is set.
	Location         uint32
	ExplicitLocation bool

	// Flat requests flat interpolation on an in/out variable.
	Flat bool

	// PatchConstant marks tessellation patch-constant in/outs.
	PatchConstant bool

	// ReadOnly marks a const-qualified variable.
	ReadOnly bool

	// InterfaceBlock wraps an aggregate uniform in an explicit block
	// declaration instead of a plain uniform.
	InterfaceBlock bool

	// Init is an optional initializer expression.
	Init Node
}

func (*DeclVariable) node() {}

// ScalarValue is the bit representation of one scalar constant.
type ScalarValue struct {
	Kind ScalarKind
	Bits uint64
}

// Constant is a literal of scalar or vector type; Values holds one
// entry per component.
type Constant struct {
	Type   TypeHandle
	Values []ScalarValue
}

func (*Constant) node() {}

// Op enumerates expression operators. Unary operators come first, then
// conversions, then binary, then ternary; OperandCount reports arity.
type Op uint8

const (
	OpNeg Op = iota
	OpLogicNot
	OpBitNot
	OpRcp
	OpSaturate
	OpDdx
	OpDdy

	// Conversions. Half/Float conversions mark precision boundaries.
	OpToFloat
	OpToHalf
	OpToInt
	OpToUint
	OpToBool

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpEqual
	OpNotEqual
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShiftLeft
	OpShiftRight
	OpLogicAnd
	OpLogicOr
	OpMin
	OpMax
	OpPow
	OpDot

	OpSelect

	opCount
)

// OperandCount returns the operator's arity.
func (o Op) OperandCount() int {
	switch {
	case o <= OpToBool:
		return 1
	case o < OpSelect:
		return 2
	default:
		return 3
	}
}

// IsConversion reports whether the operator is a scalar-kind conversion.
func (o Op) IsConversion() bool {
	return o >= OpToFloat && o <= OpToBool
}

// Expr is an operator expression with up to three operands.
type Expr struct {
	Op       Op
	Type     TypeHandle
	Operands [3]Node
}

func (*Expr) node() {}

// Swizzle reorders or replicates vector components. Component values
// are 0..3 for x..w.
type Swizzle struct {
	Vec        Node
	Components []uint8
}

func (*Swizzle) node() {}

// DerefVariable references a declared variable.
type DerefVariable struct {
	Var *DeclVariable
}

func (*DerefVariable) node() {}

// DerefArray indexes an array, vector or matrix.
type DerefArray struct {
	Array Node
	Index Node
}

func (*DerefArray) node() {}

// DerefRecord accesses a struct member by name.
type DerefRecord struct {
	Record Node
	Field  string
}

func (*DerefRecord) node() {}

// DerefImage accesses one element of a storage image or buffer. As an
// assignment destination it becomes an image store; as a source, an
// image load.
type DerefImage struct {
	Image    Node
	Index    Node
	ElemType TypeHandle
}

func (*DerefImage) node() {}

// TextureOpKind enumerates texture operations.
type TextureOpKind uint8

const (
	TexSample TextureOpKind = iota
	TexSampleBias
	TexSampleLevel
	TexSampleGrad
	TexSampleCmp
	TexFetch
	TexGather
	TexQuerySize
)

// TextureOp samples, fetches or queries a texture. SamplerState names
// the sampler-state object paired with the texture; it is empty for
// raw fetches and size queries, which must not depend on a sampler.
type TextureOp struct {
	Kind    TextureOpKind
	Type    TypeHandle
	Texture Node

	SamplerState string
	Coord        Node

	// Lod is the explicit level for TexSampleLevel/TexFetch and the
	// bias for TexSampleBias; nil otherwise.
	Lod Node

	// Ddx/Ddy are the explicit gradients for TexSampleGrad.
	Ddx Node
	Ddy Node

	// Offset is an optional constant texel offset.
	Offset Node

	// Compare is the comparison value for shadow sampling.
	Compare Node

	// GatherChannel selects the gathered component (0..3).
	GatherChannel uint8

	// SampleIndex selects the sample for multisampled fetches.
	SampleIndex Node
}

func (*TextureOp) node() {}

// Function groups the signatures sharing one name.
type Function struct {
	Name       string
	Signatures []*FunctionSignature
}

func (*Function) node() {}

// FunctionSignature is one concrete signature with its body and, for
// entry-point candidates, the stage attributes the front end parsed.
type FunctionSignature struct {
	Name           string
	ReturnType     TypeHandle // InvalidType for void
	ReturnSemantic string
	Parameters     []*DeclVariable
	ParameterModes []VariableMode // parallel to Parameters: ModeIn/ModeOut
	Body           Block
	IsDefined      bool
	IsMain         bool

	// Geometry-stage attributes.
	MaxVertexCount  uint32
	InputPrimitive  string
	OutputPrimitive string

	// Tessellation attributes.
	OutputControlPoints uint32
	PatchConstantFunc   string
	Domain              string
	Partitioning        string
	OutputTopology      string

	// Compute attributes.
	WorkGroupSize [3]uint32
}

func (*FunctionSignature) node() {}

// Call invokes a function. Dest, when non-nil, is the dereference that
// receives the return value.
type Call struct {
	Callee *FunctionSignature
	Args   []Node
	Dest   Node
}

func (*Call) node() {}

// Assign stores RHS into LHS. WriteMask selects destination components
// (bit 0 = x); zero means a full write.
type Assign struct {
	LHS       Node
	RHS       Node
	WriteMask uint8
}

func (*Assign) node() {}

// If is a two-way conditional.
type If struct {
	Cond Node
	Then Block
	Else Block
}

func (*If) node() {}

// Loop is an infinite loop exited by LoopJump or Return.
type Loop struct {
	Body Block
}

func (*Loop) node() {}

// JumpKind enumerates loop jumps.
type JumpKind uint8

const (
	JumpBreak JumpKind = iota
	JumpContinue
)

// LoopJump is a break or continue.
type LoopJump struct {
	Kind JumpKind
}

func (*LoopJump) node() {}

// Return exits the enclosing function; Value may be nil.
type Return struct {
	Value Node
}

func (*Return) node() {}

// Discard aborts the fragment; Cond, when non-nil, guards it.
type Discard struct {
	Cond Node
}

func (*Discard) node() {}

// AtomicKind enumerates atomic operations.
type AtomicKind uint8

const (
	AtomicAdd AtomicKind = iota
	AtomicAnd
	AtomicOr
	AtomicXor
	AtomicMin
	AtomicMax
	AtomicExchange
	AtomicCompSwap
)

// AtomicOp performs an atomic read-modify-write. Dest, when non-nil,
// receives the previous value.
type AtomicOp struct {
	Kind    AtomicKind
	Dest    Node
	Pointer Node
	Value   Node
	Compare Node // AtomicCompSwap only
}

func (*AtomicOp) node() {}

// Constant construction helpers.

// FloatValue builds a float scalar value.
func FloatValue(f float64) ScalarValue {
	return ScalarValue{Kind: ScalarFloat, Bits: floatBits(f)}
}

// HalfValue builds a reduced-precision float scalar value.
func HalfValue(f float64) ScalarValue {
	return ScalarValue{Kind: ScalarHalf, Bits: floatBits(f)}
}

// IntValue builds a signed integer scalar value.
func IntValue(i int64) ScalarValue {
	return ScalarValue{Kind: ScalarInt, Bits: uint64(i)}
}

// UintValue builds an unsigned integer scalar value.
func UintValue(u uint64) ScalarValue {
	return ScalarValue{Kind: ScalarUint, Bits: u}
}

// BoolValue builds a boolean scalar value.
func BoolValue(b bool) ScalarValue {
	if b {
		return ScalarValue{Kind: ScalarBool, Bits: 1}
	}
	return ScalarValue{Kind: ScalarBool}
}

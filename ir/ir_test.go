package ir

import (
	"strings"
	"testing"
)

func TestEnsureTypeCoalescesNonStructs(t *testing.T) {
	s := &Shader{}
	a := s.EnsureType("", VectorType{Kind: ScalarFloat, Size: 4})
	b := s.EnsureType("", VectorType{Kind: ScalarFloat, Size: 4})
	if a != b {
		t.Errorf("identical vector types got distinct handles %d and %d", a, b)
	}
	c := s.EnsureType("", VectorType{Kind: ScalarFloat, Size: 3})
	if c == a {
		t.Error("different vector sizes must not share a handle")
	}
}

func TestEnsureTypeKeepsStructIdentity(t *testing.T) {
	s := &Shader{}
	float := s.EnsureType("", ScalarType{Kind: ScalarFloat})
	members := []StructMember{{Name: "x", Type: float}}
	a := s.EnsureType("A", StructType{Members: members})
	b := s.EnsureType("A", StructType{Members: members})
	if a == b {
		t.Error("struct declarations must keep distinct identities")
	}
}

func TestComponents(t *testing.T) {
	s := &Shader{}
	tests := []struct {
		name  string
		inner TypeInner
		want  uint32
	}{
		{"scalar", ScalarType{Kind: ScalarFloat}, 1},
		{"vec3", VectorType{Kind: ScalarFloat, Size: 3}, 3},
		{"mat3x4", MatrixType{Kind: ScalarFloat, Columns: 3, Rows: 4}, 12},
		{"sampler", SamplerStateType{}, 0},
	}
	for _, tt := range tests {
		h := s.AddType(Type{Inner: tt.inner})
		if got := s.Components(h); got != tt.want {
			t.Errorf("%s: Components = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestScalarKindOf(t *testing.T) {
	s := &Shader{}
	ivec := s.EnsureType("", VectorType{Kind: ScalarInt, Size: 2})
	if got := s.ScalarKindOf(ivec); got != ScalarInt {
		t.Errorf("ScalarKindOf(ivec2) = %v", got)
	}
	mat := s.EnsureType("", MatrixType{Kind: ScalarHalf, Columns: 2, Rows: 2})
	if got := s.ScalarKindOf(mat); got != ScalarHalf {
		t.Errorf("ScalarKindOf(half mat2) = %v", got)
	}
}

func TestFindFunction(t *testing.T) {
	s := &Shader{}
	s.Decls = append(s.Decls, &Function{Name: "helper"}, &Function{Name: "main"})
	if fn := s.FindFunction("main"); fn == nil || fn.Name != "main" {
		t.Errorf("FindFunction(main) = %v", fn)
	}
	if fn := s.FindFunction("absent"); fn != nil {
		t.Errorf("FindFunction(absent) = %v, want nil", fn)
	}
}

func TestBlockInsertBefore(t *testing.T) {
	a := &Return{}
	b := &Discard{}
	c := &Return{}
	block := Block{a, c}

	out := block.InsertBefore(1, b)
	if len(out) != 3 || out[0] != Node(a) || out[1] != Node(b) || out[2] != Node(c) {
		t.Errorf("InsertBefore produced %v", out)
	}
	if same := block.InsertBefore(0); len(same) != 2 {
		t.Errorf("empty insertion changed length to %d", len(same))
	}
}

func TestNodeTypeResolution(t *testing.T) {
	s := &Shader{}
	float := s.EnsureType("", ScalarType{Kind: ScalarFloat})
	vec4 := s.EnsureType("", VectorType{Kind: ScalarFloat, Size: 4})
	mat4 := s.EnsureType("", MatrixType{Kind: ScalarFloat, Columns: 4, Rows: 4})
	arr := s.AddType(Type{Inner: ArrayType{Base: vec4, Size: 3}})
	st := s.AddType(Type{Name: "Light", Inner: StructType{
		Members: []StructMember{{Name: "dir", Type: vec4}},
	}})

	v := &DeclVariable{Name: "v", Type: vec4}
	if got := s.NodeType(&DerefVariable{Var: v}); got != vec4 {
		t.Errorf("variable deref type = %d, want %d", got, vec4)
	}

	zero := &Constant{Type: float, Values: []ScalarValue{IntValue(0)}}
	av := &DeclVariable{Name: "a", Type: arr}
	if got := s.NodeType(&DerefArray{Array: &DerefVariable{Var: av}, Index: zero}); got != vec4 {
		t.Errorf("array deref type = %d, want element %d", got, vec4)
	}

	mv := &DeclVariable{Name: "m", Type: mat4}
	col := s.NodeType(&DerefArray{Array: &DerefVariable{Var: mv}, Index: zero})
	if vt, ok := s.Inner(col).(VectorType); !ok || vt.Size != 4 {
		t.Errorf("matrix column type = %v", s.Inner(col))
	}

	sv := &DeclVariable{Name: "l", Type: st}
	if got := s.NodeType(&DerefRecord{Record: &DerefVariable{Var: sv}, Field: "dir"}); got != vec4 {
		t.Errorf("record deref type = %d, want member %d", got, vec4)
	}
	if got := s.NodeType(&DerefRecord{Record: &DerefVariable{Var: sv}, Field: "nope"}); got != InvalidType {
		t.Errorf("missing member resolved to %d", got)
	}

	single := &Swizzle{Vec: &DerefVariable{Var: v}, Components: []uint8{0}}
	if _, ok := s.Inner(s.NodeType(single)).(ScalarType); !ok {
		t.Error("single-component swizzle should resolve to a scalar")
	}
	pair := &Swizzle{Vec: &DerefVariable{Var: v}, Components: []uint8{0, 1}}
	if vt, ok := s.Inner(s.NodeType(pair)).(VectorType); !ok || vt.Size != 2 {
		t.Error("two-component swizzle should resolve to a vec2")
	}
}

func TestScalarValueLiteral(t *testing.T) {
	tests := []struct {
		name string
		v    ScalarValue
		want string
	}{
		{"float whole", FloatValue(1), "1.0"},
		{"float fraction", FloatValue(0.5), "0.5"},
		{"float negative", FloatValue(-2), "-2.0"},
		{"half", HalfValue(3), "3.0"},
		{"int", IntValue(-7), "-7"},
		{"uint", UintValue(7), "7u"},
		{"bool true", BoolValue(true), "true"},
		{"bool false", BoolValue(false), "false"},
	}
	for _, tt := range tests {
		if got := tt.v.Literal(); got != tt.want {
			t.Errorf("%s: Literal() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestOpOperandCount(t *testing.T) {
	if got := OpNeg.OperandCount(); got != 1 {
		t.Errorf("OpNeg arity = %d", got)
	}
	if got := OpToBool.OperandCount(); got != 1 {
		t.Errorf("OpToBool arity = %d", got)
	}
	if got := OpAdd.OperandCount(); got != 2 {
		t.Errorf("OpAdd arity = %d", got)
	}
	if got := OpSelect.OperandCount(); got != 3 {
		t.Errorf("OpSelect arity = %d", got)
	}
	if OpDdx.IsConversion() || !OpToUint.IsConversion() {
		t.Error("conversion classification wrong")
	}
}

func TestDiagSink(t *testing.T) {
	d := &DiagSink{}
	if d.HasErrors() {
		t.Error("fresh sink reports errors")
	}
	if d.Err() != nil {
		t.Error("fresh sink returns a non-nil error")
	}

	d.Warningf("suspicious %s", "swizzle")
	if d.HasErrors() {
		t.Error("warnings must not count as errors")
	}

	d.Errorf("bad %s", "semantic")
	d.Errorf("missing %s", "entry")
	if !d.HasErrors() {
		t.Error("errors not recorded")
	}
	err := d.Err()
	if err == nil {
		t.Fatal("Err() = nil with recorded errors")
	}
	msg := err.Error()
	if !strings.Contains(msg, "bad semantic") || !strings.Contains(msg, "missing entry") {
		t.Errorf("Err() = %q, want both messages", msg)
	}
	if strings.Contains(msg, "suspicious") {
		t.Errorf("Err() = %q, warnings must be excluded", msg)
	}

	if got := (Diagnostic{Severity: SeverityError, Message: "x"}).String(); got != "error: x" {
		t.Errorf("Diagnostic.String() = %q", got)
	}
	if got := (Diagnostic{Severity: SeverityWarning, Message: "y"}).String(); got != "warning: y" {
		t.Errorf("Diagnostic.String() = %q", got)
	}
}

func TestPrecisionFor(t *testing.T) {
	tests := []struct {
		kind    ScalarKind
		reduced bool
		want    PrecisionClass
	}{
		{ScalarFloat, false, PrecisionHigh},
		{ScalarFloat, true, PrecisionMedium},
		{ScalarHalf, false, PrecisionMedium},
		{ScalarInt, false, PrecisionInt},
		{ScalarUint, true, PrecisionUint},
	}
	for _, tt := range tests {
		if got := PrecisionFor(tt.kind, tt.reduced); got != tt.want {
			t.Errorf("PrecisionFor(%v, %v) = %c, want %c", tt.kind, tt.reduced, got, tt.want)
		}
	}
}

func TestAddPackedOffsets(t *testing.T) {
	ps := NewParseState()
	if off := ps.AddGlobalPacked(PrecisionHigh, "a", 4); off != 0 {
		t.Errorf("first global offset = %d", off)
	}
	if off := ps.AddGlobalPacked(PrecisionHigh, "b", 3); off != 4 {
		t.Errorf("second global offset = %d", off)
	}
	// Classes pack independently.
	if off := ps.AddGlobalPacked(PrecisionInt, "c", 2); off != 0 {
		t.Errorf("first int-class offset = %d", off)
	}

	if off := ps.AddCBPacked("CB", PrecisionHigh, PackedUniform{Name: "m0", NumComponents: 4}); off != 0 {
		t.Errorf("first member offset = %d", off)
	}
	if off := ps.AddCBPacked("CB", PrecisionHigh, PackedUniform{Name: "m1", NumComponents: 8}); off != 4 {
		t.Errorf("second member offset = %d", off)
	}
	if got := ps.CBPackedArrays["CB"][PrecisionHigh][1].DestOffset; got != 4 {
		t.Errorf("stored DestOffset = %d", got)
	}
}

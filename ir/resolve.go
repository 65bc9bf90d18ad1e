package ir

// NodeType resolves the result type of an expression node. It returns
// InvalidType for statement nodes and for references it cannot follow.
func (s *Shader) NodeType(n Node) TypeHandle {
	switch e := n.(type) {
	case *Constant:
		return e.Type
	case *Expr:
		return e.Type
	case *TextureOp:
		return e.Type
	case *DerefVariable:
		return e.Var.Type
	case *DerefImage:
		return e.ElemType
	case *DerefRecord:
		rec := s.NodeType(e.Record)
		inner := s.Inner(rec)
		if p, ok := inner.(PatchType); ok {
			inner = s.Inner(p.Inner)
		}
		if st, ok := inner.(StructType); ok {
			for _, m := range st.Members {
				if m.Name == e.Field {
					return m.Type
				}
			}
		}
		return InvalidType
	case *DerefArray:
		switch t := s.Inner(s.NodeType(e.Array)).(type) {
		case ArrayType:
			return t.Base
		case VectorType:
			return s.EnsureType("", ScalarType{Kind: t.Kind})
		case MatrixType:
			return s.EnsureType("", VectorType{Kind: t.Kind, Size: t.Rows})
		case PatchType:
			return t.Inner
		default:
			return InvalidType
		}
	case *Swizzle:
		kind := s.ScalarKindOf(s.NodeType(e.Vec))
		if len(e.Components) == 1 {
			return s.EnsureType("", ScalarType{Kind: kind})
		}
		return s.EnsureType("", VectorType{Kind: kind, Size: uint8(len(e.Components))}) //nolint:gosec // G115: component count is 1..4
	default:
		return InvalidType
	}
}

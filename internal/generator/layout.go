package generator

import "github.com/dekarrin/zkcircuit/internal/types"

// typeSize reports how many flat scalars (stack data slots, or contract
// storage leaves) a value of type t occupies. A composite literal lowers
// to exactly this many OpPush-family values on the evaluation stack, in
// field/element order, so every other layout computation in this package
// has to agree with it.
func typeSize(t types.ITyped) int {
	switch tt := t.(type) {
	case types.Array:
		return tt.Size * typeSize(tt.Element)
	case types.Tuple:
		n := 0
		for _, m := range tt.Members {
			n += typeSize(m)
		}
		return n
	case *types.Struct:
		n := 0
		for _, f := range tt.Fields {
			n += typeSize(f.Type)
		}
		return n
	case *types.Contract:
		n := 0
		for _, f := range tt.Fields {
			n += typeSize(f.Type)
		}
		return n
	case types.Map:
		// A map field lives in its own Merkle tree, not the flat data-stack/
		// storage-field layout every other field type occupies.
		return 0
	default:
		return 1
	}
}

func fieldsOfType(t types.ITyped) ([]types.FieldDecl, bool) {
	switch tt := t.(type) {
	case *types.Struct:
		return tt.Fields, true
	case *types.Contract:
		return tt.Fields, true
	default:
		return nil, false
	}
}

// fieldOffsetOf returns the flat scalar offset of field name within a value
// of type t, counting every preceding field's own typeSize.
func fieldOffsetOf(t types.ITyped, name string) (int, bool) {
	fields, ok := fieldsOfType(t)
	if !ok {
		return 0, false
	}
	off := 0
	for _, f := range fields {
		if f.Name == name {
			return off, true
		}
		off += typeSize(f.Type)
	}
	return 0, false
}

func elementTypeOf(t types.ITyped) types.ITyped {
	if a, ok := t.(types.Array); ok {
		return a.Element
	}
	return types.Unit{}
}

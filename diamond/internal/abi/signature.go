package abi

import "strings"

// Signature identifies an interface member: kind, name and the canonical input types.
// Parameter names and outputs do not take part in it.
type Signature string

// SignatureOf builds "kind:name(type1,type2)". Unnamed kinds use the kind itself as the name.
func SignatureOf(e Entry) Signature {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	sb.WriteByte(':')
	sb.WriteString(MemberSignature(e))
	return Signature(sb.String())
}

// MemberSignature is the human-facing "name(type1,type2)" form with tuples spelled as tuple(...).
func MemberSignature(e Entry) string {
	return e.DisplayName() + "(" + joinTypes(e.Inputs, CanonicalType) + ")"
}

// CanonicalType expands tuples recursively to tuple(<component types>) and keeps
// array suffixes exactly as declared.
func CanonicalType(p Param) string {
	if suffix, ok := strings.CutPrefix(p.Type, "tuple"); ok {
		return "tuple(" + joinTypes(p.Components, CanonicalType) + ")" + suffix
	}
	return p.Type
}

// selectorType spells tuples as (...) the way keccak selectors are computed.
func selectorType(p Param) string {
	if suffix, ok := strings.CutPrefix(p.Type, "tuple"); ok {
		return "(" + joinTypes(p.Components, selectorType) + ")" + suffix
	}
	return p.Type
}

// OutputTypes lists the canonical output types.
func OutputTypes(e Entry) []string {
	res := make([]string, len(e.Outputs))
	for i, p := range e.Outputs {
		res[i] = CanonicalType(p)
	}
	return res
}

// IndexedFlags lists the indexed flag of every input.
func IndexedFlags(e Entry) []bool {
	res := make([]bool, len(e.Inputs))
	for i, p := range e.Inputs {
		res[i] = p.Indexed
	}
	return res
}

func joinTypes(params []Param, typeOf func(Param) string) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = typeOf(p)
	}
	return strings.Join(parts, ",")
}

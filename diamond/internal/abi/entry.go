// Package abi holds the typed view of contract ABI entries used by the merger.
//
// Entries are decoded strictly from compiler output: every entry carries a known
// kind tag and every parameter type is validated, so the rest of the tool never
// touches untyped JSON.
package abi

type Kind string

const (
	KindFunction    Kind = "function"
	KindEvent       Kind = "event"
	KindError       Kind = "error"
	KindConstructor Kind = "constructor"
	KindFallback    Kind = "fallback"
	KindReceive     Kind = "receive"
)

// Named reports whether entries of this kind carry a name.
func (k Kind) Named() bool {
	switch k {
	case KindFunction, KindEvent, KindError:
		return true
	default:
		return false
	}
}

func (k Kind) valid() bool {
	switch k {
	case KindFunction, KindEvent, KindError, KindConstructor, KindFallback, KindReceive:
		return true
	default:
		return false
	}
}

type Mutability string

const (
	MutabilityPure       Mutability = "pure"
	MutabilityView       Mutability = "view"
	MutabilityNonPayable Mutability = "nonpayable"
	MutabilityPayable    Mutability = "payable"
)

func (m Mutability) valid() bool {
	switch m {
	case MutabilityPure, MutabilityView, MutabilityNonPayable, MutabilityPayable:
		return true
	default:
		return false
	}
}

// Param is a single typed parameter. Type is the declared type string
// ("uint256", "tuple[]", "bytes32[4]"); tuples list their fields in Components.
type Param struct {
	Name         string
	Type         string
	InternalType string
	Components   []Param
	// Indexed is meaningful for event inputs only.
	Indexed bool
}

// Entry is one member of a contract ABI.
type Entry struct {
	Kind Kind
	// Name is empty for constructor, fallback and receive.
	Name    string
	Inputs  []Param
	Outputs []Param
	// StateMutability is empty for events and errors.
	StateMutability Mutability
	Anonymous       bool
}

// DisplayName is the entry name, or the kind for unnamed entries.
func (e Entry) DisplayName() string {
	if e.Kind.Named() {
		return e.Name
	}
	return string(e.Kind)
}

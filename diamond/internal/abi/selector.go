package abi

import (
	"encoding/hex"

	"github.com/ethereum/go-ethereum/crypto"
)

// SelectorSignature is the string hashed into selectors and event topics.
func SelectorSignature(e Entry) string {
	return e.Name + "(" + joinTypes(e.Inputs, selectorType) + ")"
}

// Selector returns the 4-byte selector of a function or error, the 32-byte topic of
// an event, and nil for the unnamed kinds.
func Selector(e Entry) []byte {
	if !e.Kind.Named() {
		return nil
	}
	hash := crypto.Keccak256([]byte(SelectorSignature(e)))
	if e.Kind == KindEvent {
		return hash
	}
	return hash[:4]
}

// SelectorHex is Selector hex-encoded without a 0x prefix, as in methodIdentifiers.
func SelectorHex(e Entry) string {
	return hex.EncodeToString(Selector(e))
}

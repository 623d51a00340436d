package abi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

type paramJSON struct {
	Components   []paramJSON `json:"components,omitempty"`
	Indexed      *bool       `json:"indexed,omitempty"`
	InternalType string      `json:"internalType,omitempty"`
	Name         string      `json:"name"`
	Type         string      `json:"type"`
}

type entryJSON struct {
	Anonymous       *bool       `json:"anonymous,omitempty"`
	Constant        *bool       `json:"constant,omitempty"`
	Inputs          []paramJSON `json:"inputs,omitempty"`
	Name            *string     `json:"name,omitempty"`
	Outputs         []paramJSON `json:"outputs,omitempty"`
	Payable         *bool       `json:"payable,omitempty"`
	StateMutability string      `json:"stateMutability,omitempty"`
	Type            string      `json:"type"`
}

// ParseJSON decodes a JSON ABI array.
func ParseJSON(data []byte) ([]Entry, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("abi is not a JSON array: %w", err)
	}

	entries := make([]Entry, len(raw))
	for i, r := range raw {
		if err := entries[i].UnmarshalJSON(r); err != nil {
			return nil, fmt.Errorf("abi entry %d: %w", i, err)
		}
	}
	return entries, nil
}

// MarshalEntries encodes entries as a JSON ABI array. A nil slice encodes as [].
func MarshalEntries(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(entries)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	kind := Kind(raw.Type)
	if kind == "" {
		kind = KindFunction
	}
	if !kind.valid() {
		return fmt.Errorf("unknown entry type %q", raw.Type)
	}

	res := Entry{Kind: kind}
	if raw.Name != nil {
		res.Name = *raw.Name
	}
	if kind.Named() && res.Name == "" {
		return fmt.Errorf("%s without a name", kind)
	}
	if !kind.Named() && res.Name != "" {
		return fmt.Errorf("%s must not have a name, got %q", kind, res.Name)
	}

	if kind != KindFunction && len(raw.Outputs) > 0 {
		return fmt.Errorf("%s %s must not have outputs", kind, res.DisplayName())
	}
	if (kind == KindFallback || kind == KindReceive) && len(raw.Inputs) > 0 {
		return fmt.Errorf("%s must not have inputs", kind)
	}
	if kind != KindEvent && raw.Anonymous != nil && *raw.Anonymous {
		return fmt.Errorf("%s %s cannot be anonymous", kind, res.DisplayName())
	}

	var err error
	if res.Inputs, err = decodeParams(raw.Inputs, kind == KindEvent); err != nil {
		return fmt.Errorf("%s %s inputs: %w", kind, res.DisplayName(), err)
	}
	if res.Outputs, err = decodeParams(raw.Outputs, false); err != nil {
		return fmt.Errorf("%s %s outputs: %w", kind, res.DisplayName(), err)
	}

	switch kind {
	case KindEvent:
		res.Anonymous = raw.Anonymous != nil && *raw.Anonymous
		fallthrough
	case KindError:
		if raw.StateMutability != "" {
			return fmt.Errorf("%s %s must not have stateMutability", kind, res.Name)
		}
	default:
		if res.StateMutability, err = decodeMutability(kind, raw); err != nil {
			return fmt.Errorf("%s %s: %w", kind, res.DisplayName(), err)
		}
	}

	*e = res
	return nil
}

func decodeMutability(kind Kind, raw entryJSON) (Mutability, error) {
	if raw.StateMutability != "" {
		m := Mutability(raw.StateMutability)
		if !m.valid() {
			return "", fmt.Errorf("unknown stateMutability %q", raw.StateMutability)
		}
		if kind == KindReceive && m != MutabilityPayable {
			return "", errors.New("receive must be payable")
		}
		return m, nil
	}

	// Pre-0.5 compilers emit constant/payable flags instead.
	switch {
	case kind == KindReceive:
		return MutabilityPayable, nil
	case raw.Payable != nil && *raw.Payable:
		return MutabilityPayable, nil
	case kind == KindFunction && raw.Constant != nil && *raw.Constant:
		return MutabilityView, nil
	default:
		return MutabilityNonPayable, nil
	}
}

func decodeParams(raw []paramJSON, event bool) ([]Param, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	params := make([]Param, len(raw))
	for i, r := range raw {
		p := decodeParam(r)
		if event && r.Indexed != nil {
			p.Indexed = *r.Indexed
		}
		if err := validateParam(p); err != nil {
			return nil, fmt.Errorf("parameter %d (%s %s): %w", i, p.Type, p.Name, err)
		}
		if _, err := gethabi.NewType(p.Type, p.InternalType, validationComponents(p.Components)); err != nil {
			return nil, fmt.Errorf("parameter %d (%s %s): %w", i, p.Type, p.Name, err)
		}
		params[i] = p
	}
	return params, nil
}

func validateParam(p Param) error {
	isTuple := strings.HasPrefix(p.Type, "tuple")
	switch {
	case isTuple && len(p.Components) == 0:
		return errors.New("tuple without components")
	case !isTuple && len(p.Components) > 0:
		return errors.New("components on a non-tuple type")
	}
	for _, c := range p.Components {
		if err := validateParam(c); err != nil {
			return fmt.Errorf("component %s: %w", c.Name, err)
		}
	}
	return nil
}

func decodeParam(r paramJSON) Param {
	p := Param{
		Name:         r.Name,
		Type:         strings.TrimSpace(r.Type),
		InternalType: r.InternalType,
	}
	if len(r.Components) > 0 {
		p.Components = make([]Param, len(r.Components))
		for i, c := range r.Components {
			p.Components[i] = decodeParam(c)
		}
	}
	return p
}

// validationComponents renames tuple fields since go-ethereum insists on
// identifier-like field names while the ABI treats names as cosmetic.
func validationComponents(params []Param) []gethabi.ArgumentMarshaling {
	if len(params) == 0 {
		return nil
	}
	res := make([]gethabi.ArgumentMarshaling, len(params))
	for i, p := range params {
		res[i] = gethabi.ArgumentMarshaling{
			Name:       fmt.Sprintf("F%d", i),
			Type:       p.Type,
			Components: validationComponents(p.Components),
		}
	}
	return res
}

func encodeParams(params []Param, event bool) []paramJSON {
	res := make([]paramJSON, len(params))
	for i, p := range params {
		res[i] = paramJSON{
			Components:   encodeParams(p.Components, false),
			InternalType: p.InternalType,
			Name:         p.Name,
			Type:         p.Type,
		}
		if event {
			res[i].Indexed = &params[i].Indexed
		}
	}
	return res
}

// MarshalJSON emits the key set solc emits for the entry kind, keys in alphabetical order.
func (e Entry) MarshalJSON() ([]byte, error) {
	inputs := encodeParams(e.Inputs, e.Kind == KindEvent)

	switch e.Kind {
	case KindFunction:
		return json.Marshal(struct {
			Inputs          []paramJSON `json:"inputs"`
			Name            string      `json:"name"`
			Outputs         []paramJSON `json:"outputs"`
			StateMutability Mutability  `json:"stateMutability"`
			Type            Kind        `json:"type"`
		}{inputs, e.Name, encodeParams(e.Outputs, false), e.StateMutability, e.Kind})
	case KindEvent:
		return json.Marshal(struct {
			Anonymous bool        `json:"anonymous"`
			Inputs    []paramJSON `json:"inputs"`
			Name      string      `json:"name"`
			Type      Kind        `json:"type"`
		}{e.Anonymous, inputs, e.Name, e.Kind})
	case KindError:
		return json.Marshal(struct {
			Inputs []paramJSON `json:"inputs"`
			Name   string      `json:"name"`
			Type   Kind        `json:"type"`
		}{inputs, e.Name, e.Kind})
	case KindConstructor:
		return json.Marshal(struct {
			Inputs          []paramJSON `json:"inputs"`
			StateMutability Mutability  `json:"stateMutability"`
			Type            Kind        `json:"type"`
		}{inputs, e.StateMutability, e.Kind})
	case KindFallback, KindReceive:
		return json.Marshal(struct {
			StateMutability Mutability `json:"stateMutability"`
			Type            Kind       `json:"type"`
		}{e.StateMutability, e.Kind})
	}
	return nil, fmt.Errorf("unknown entry type %q", e.Kind)
}

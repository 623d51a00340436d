package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NilFoundation/diamond/diamond/internal/abi"
	"github.com/NilFoundation/diamond/diamond/internal/types"
)

type PatternKind int

const (
	// PatternName is a bare identifier. It addresses a facet when some facet has that
	// name, and a member otherwise.
	PatternName PatternKind = iota
	// PatternContract is a fully qualified "source:Contract" name.
	PatternContract
	// PatternSignature is a full "name(types)" member signature.
	PatternSignature
)

func (k PatternKind) String() string {
	switch k {
	case PatternName:
		return "name"
	case PatternContract:
		return "contract"
	case PatternSignature:
		return "signature"
	}
	return fmt.Sprintf("PatternKind(%d)", int(k))
}

// Pattern is one include/exclude filter item.
type Pattern struct {
	raw  string
	kind PatternKind
	// memberKind restricts the pattern to one ABI entry kind ("event:Transfer").
	memberKind abi.Kind
	name       string
	// signature is the canonical "name(types)" form for PatternSignature.
	signature string
}

var memberKinds = []abi.Kind{
	abi.KindFunction, abi.KindEvent, abi.KindError,
	abi.KindConstructor, abi.KindFallback, abi.KindReceive,
}

func ParsePattern(s string) (Pattern, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Pattern{}, errors.New("empty pattern")
	}

	p := Pattern{raw: raw}
	body := raw
	for _, k := range memberKinds {
		if rest, ok := strings.CutPrefix(raw, string(k)+":"); ok {
			p.memberKind = k
			body = strings.TrimSpace(rest)
			break
		}
	}

	switch {
	case strings.ContainsAny(body, "()"):
		name, inputs, err := abi.ParseSignature(body)
		if err != nil {
			return Pattern{}, err
		}
		p.kind = PatternSignature
		p.name = name
		p.signature = name + "(" + strings.Join(inputs, ",") + ")"
	case p.memberKind == "" && strings.Contains(body, ":"):
		idx := strings.LastIndexByte(body, ':')
		if idx == 0 || !abi.IsIdentifier(body[idx+1:]) {
			return Pattern{}, fmt.Errorf("invalid fully qualified contract name %q", body)
		}
		p.kind = PatternContract
		p.name = body[idx+1:]
	case abi.IsIdentifier(body):
		p.kind = PatternName
		p.name = body
	default:
		return Pattern{}, fmt.Errorf("invalid pattern %q", raw)
	}
	return p, nil
}

func MustParsePattern(s string) Pattern {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Pattern) String() string {
	return p.raw
}

func (p Pattern) Kind() PatternKind {
	return p.kind
}

// MatchesContract reports whether the pattern names the facet. Only bare names without
// a kind prefix and fully qualified names can address a facet.
func (p Pattern) MatchesContract(f *types.FacetContract) bool {
	switch p.kind {
	case PatternName:
		return p.memberKind == "" && f.Name == p.name
	case PatternContract:
		return f.FullyQualifiedName() == p.raw
	default:
		return false
	}
}

// MatchesEntry reports whether the pattern names the ABI entry, either by bare name or
// by full signature.
func (p Pattern) MatchesEntry(e abi.Entry) bool {
	if p.memberKind != "" && p.memberKind != e.Kind {
		return false
	}
	switch p.kind {
	case PatternName:
		return e.DisplayName() == p.name
	case PatternSignature:
		return abi.MemberSignature(e) == p.signature
	default:
		return false
	}
}

// ParsePatterns parses a pattern list; errors are ConfigErrors naming the offending item.
func ParsePatterns(field string, items []string) ([]Pattern, error) {
	res := make([]Pattern, 0, len(items))
	for i, item := range items {
		p, err := ParsePattern(item)
		if err != nil {
			return nil, types.NewConfigError(fmt.Sprintf("%s[%d]", field, i), item, err)
		}
		res = append(res, p)
	}
	return res, nil
}

// SplitList splits comma separated pattern lists, keeping the commas inside
// parentheses: "getA,f(uint256,bool)" yields "getA" and "f(uint256,bool)".
func SplitList(items []string) []string {
	var res []string
	for _, item := range items {
		depth, start := 0, 0
		for i, r := range item {
			switch r {
			case '(':
				depth++
			case ')':
				depth--
			case ',':
				if depth == 0 {
					res = appendTrimmed(res, item[start:i])
					start = i + 1
				}
			}
		}
		res = appendTrimmed(res, item[start:])
	}
	return res
}

func appendTrimmed(res []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		res = append(res, s)
	}
	return res
}

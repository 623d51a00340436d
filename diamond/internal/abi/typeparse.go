package abi

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

var (
	identifierRegex  = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
	arraySuffixRegex = regexp.MustCompile(`^(\[[0-9]*\])*`)
	aliasRegex       = regexp.MustCompile(`^(uint|int|byte)((?:\[[0-9]*\])*)$`)

	typeAliases = map[string]string{
		"uint": "uint256",
		"int":  "int256",
		"byte": "bytes1",
	}
)

// canonicalAlias expands the Solidity shorthands uint, int and byte, keeping any
// array suffix: "uint[2]" becomes "uint256[2]".
func canonicalAlias(t string) string {
	m := aliasRegex.FindStringSubmatch(t)
	if m == nil {
		return t
	}
	return typeAliases[m[1]] + m[2]
}

// IsIdentifier reports whether s is a valid Solidity identifier.
func IsIdentifier(s string) bool {
	return identifierRegex.MatchString(s)
}

// ParseSignature parses a human written "name(type1,type2)" string, tolerating spaces,
// parameter names and the "(a,b)" tuple shorthand. It returns the member name and the
// canonical input types so the result compares equal to CanonicalType.
func ParseSignature(s string) (string, []string, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return "", nil, fmt.Errorf("signature %q: missing '('", s)
	}
	if !strings.HasSuffix(s, ")") {
		return "", nil, fmt.Errorf("signature %q: missing closing ')'", s)
	}

	name := strings.TrimSpace(s[:open])
	if !IsIdentifier(name) {
		return "", nil, fmt.Errorf("signature %q: invalid name %q", s, name)
	}

	types, err := parseTypeList(s[open+1 : len(s)-1])
	if err != nil {
		return "", nil, fmt.Errorf("signature %q: %w", s, err)
	}
	return name, types, nil
}

func parseTypeList(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var (
		res   []string
		depth int
		start int
	)
	for i, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, errors.New("unbalanced ')'")
			}
		case ',':
			if depth == 0 {
				t, err := parseType(s[start:i])
				if err != nil {
					return nil, err
				}
				res = append(res, t)
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, errors.New("unbalanced '('")
	}

	t, err := parseType(s[start:])
	if err != nil {
		return nil, err
	}
	return append(res, t), nil
}

func parseType(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("empty type")
	}

	if body, ok := strings.CutPrefix(s, "tuple"); ok && strings.HasPrefix(body, "(") {
		s = body
	}
	if !strings.HasPrefix(s, "(") {
		fields := strings.Fields(s)
		if err := checkTrailingWords(fields[1:]); err != nil {
			return "", err
		}
		if fields[0] == "tuple" || strings.HasPrefix(fields[0], "tuple[") {
			return "", fmt.Errorf("tuple %q without components", fields[0])
		}
		t := canonicalAlias(fields[0])
		if _, err := gethabi.NewType(t, "", nil); err != nil {
			return "", err
		}
		return t, nil
	}

	depth := 0
	closing := -1
	for i, c := range s {
		if c == '(' {
			depth++
		} else if c == ')' {
			depth--
			if depth == 0 {
				closing = i
				break
			}
		}
	}
	if closing < 0 {
		return "", fmt.Errorf("unbalanced tuple %q", s)
	}

	components, err := parseTypeList(s[1:closing])
	if err != nil {
		return "", err
	}
	if len(components) == 0 {
		return "", errors.New("tuple without components")
	}

	rest := s[closing+1:]
	suffix := arraySuffixRegex.FindString(rest)
	if err := checkTrailingWords(strings.Fields(rest[len(suffix):])); err != nil {
		return "", err
	}
	return "tuple(" + strings.Join(components, ",") + ")" + suffix, nil
}

// Anything after a type must be a parameter name or a location/indexed keyword.
func checkTrailingWords(words []string) error {
	for _, w := range words {
		if !IsIdentifier(w) {
			return fmt.Errorf("unexpected %q", w)
		}
	}
	return nil
}

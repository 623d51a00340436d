// Package solidity renders a merged ABI as a Solidity interface.
package solidity

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/NilFoundation/diamond/diamond/internal/abi"
)

const (
	DefaultPragma  = "^0.8.0"
	DefaultLicense = "MIT"
)

func InterfaceName(contractName string) string {
	return "I" + contractName
}

type structDecl struct {
	Name   string
	Fields []string
}

func (s structDecl) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "struct %s {\n", s.Name)
	for _, f := range s.Fields {
		fmt.Fprintf(&b, "        %s;\n", f)
	}
	b.WriteString("    }")
	return b.String()
}

type interfaceData struct {
	License string
	Pragma  string
	Name    string
	// Sections are separated by a blank line.
	Sections [][]string
}

var interfaceTemplate = template.Must(template.New("interface").Parse(`// SPDX-License-Identifier: {{.License}}
pragma solidity {{.Pragma}};

interface {{.Name}} {
{{- range $i, $section := .Sections}}
{{- if $i}}
{{end}}
{{- range $section}}
    {{.}}
{{- end}}
{{- end}}
}
`))

// GenerateInterface renders entries as `interface I<contractName>`. Tuple parameters
// become struct declarations named after their internalType. Constructors are
// skipped since interfaces cannot declare them.
func GenerateInterface(entries []abi.Entry, contractName, pragma string) (string, error) {
	name := InterfaceName(contractName)
	if !abi.IsIdentifier(name) {
		return "", fmt.Errorf("invalid interface name %q", name)
	}
	if pragma == "" {
		pragma = DefaultPragma
	}

	g := &generator{structIndex: make(map[string]string), structNames: make(map[string]struct{})}
	var events, errs, functions, special []string

	for _, e := range entries {
		switch e.Kind {
		case abi.KindEvent:
			decl := fmt.Sprintf("event %s(%s)", e.Name, g.params(e.Inputs, paramEvent))
			if e.Anonymous {
				decl += " anonymous"
			}
			events = append(events, decl+";")
		case abi.KindError:
			errs = append(errs, fmt.Sprintf("error %s(%s);", e.Name, g.params(e.Inputs, paramPlain)))
		case abi.KindFunction:
			functions = append(functions, g.function(e)+";")
		case abi.KindFallback:
			special = append(special, "fallback() external"+mutability(e.StateMutability)+";")
		case abi.KindReceive:
			special = append(special, "receive() external payable;")
		}
	}

	data := interfaceData{License: DefaultLicense, Pragma: pragma, Name: name}
	for _, s := range g.structs {
		data.Sections = append(data.Sections, []string{s.String()})
	}
	for _, section := range [][]string{events, errs, functions, special} {
		if len(section) > 0 {
			data.Sections = append(data.Sections, section)
		}
	}

	var buf bytes.Buffer
	if err := interfaceTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type paramContext int

const (
	paramPlain paramContext = iota
	paramEvent
	paramInput
	paramOutput
)

type generator struct {
	structs []structDecl
	// structIndex maps a canonical tuple type to its struct name.
	structIndex map[string]string
	structNames map[string]struct{}
}

func (g *generator) function(e abi.Entry) string {
	decl := fmt.Sprintf("function %s(%s) external%s", e.Name, g.params(e.Inputs, paramInput), mutability(e.StateMutability))
	if len(e.Outputs) > 0 {
		decl += fmt.Sprintf(" returns (%s)", g.params(e.Outputs, paramOutput))
	}
	return decl
}

func mutability(m abi.Mutability) string {
	if m == "" || m == abi.MutabilityNonPayable {
		return ""
	}
	return " " + string(m)
}

func (g *generator) params(params []abi.Param, ctx paramContext) string {
	parts := make([]string, len(params))
	for i, p := range params {
		words := []string{g.typeName(p)}
		switch ctx {
		case paramEvent:
			if p.Indexed {
				words = append(words, "indexed")
			}
		case paramInput:
			if dynamic(p) {
				words = append(words, "calldata")
			}
		case paramOutput:
			if dynamic(p) {
				words = append(words, "memory")
			}
		}
		if abi.IsIdentifier(p.Name) {
			words = append(words, p.Name)
		}
		parts[i] = strings.Join(words, " ")
	}
	return strings.Join(parts, ", ")
}

// dynamic reports whether the type needs a data location in a function signature.
func dynamic(p abi.Param) bool {
	return p.Type == "string" || p.Type == "bytes" ||
		strings.HasSuffix(p.Type, "]") || strings.HasPrefix(p.Type, "tuple")
}

func arraySuffix(typ string) string {
	if i := strings.IndexByte(typ, '['); i >= 0 {
		return typ[i:]
	}
	return ""
}

func (g *generator) typeName(p abi.Param) string {
	if !strings.HasPrefix(p.Type, "tuple") {
		return p.Type
	}
	return g.declareStruct(p) + arraySuffix(p.Type)
}

// declareStruct registers the struct behind a tuple parameter, components first, and
// returns its name. Equal tuples share one declaration.
func (g *generator) declareStruct(p abi.Param) string {
	element := p
	element.Type = "tuple"
	key := abi.CanonicalType(element)
	if name, ok := g.structIndex[key]; ok {
		return name
	}

	decl := structDecl{Fields: make([]string, len(p.Components))}
	for i, c := range p.Components {
		field := c.Name
		if !abi.IsIdentifier(field) {
			field = fmt.Sprintf("field%d", i)
		}
		decl.Fields[i] = g.typeName(c) + " " + field
	}

	decl.Name = g.uniqueName(structName(p.InternalType))
	g.structIndex[key] = decl.Name
	g.structs = append(g.structs, decl)
	return decl.Name
}

// structName extracts Y from an internalType such as "struct X.Y[]".
func structName(internalType string) string {
	name, ok := strings.CutPrefix(internalType, "struct ")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if !abi.IsIdentifier(name) {
		return ""
	}
	return name
}

func (g *generator) uniqueName(name string) string {
	if name == "" {
		name = fmt.Sprintf("Tuple%d", len(g.structs))
	}
	candidate := name
	for i := 2; ; i++ {
		if _, taken := g.structNames[candidate]; !taken {
			break
		}
		candidate = fmt.Sprintf("%s%d", name, i)
	}
	g.structNames[candidate] = struct{}{}
	return candidate
}

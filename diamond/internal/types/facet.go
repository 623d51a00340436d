package types

import "github.com/NilFoundation/diamond/diamond/internal/abi"

// FacetContract is one compiled contract contributing to the diamond interface.
// Values are produced by the artifact reader and never mutated afterwards.
type FacetContract struct {
	Name       string
	SourcePath string
	Entries    []abi.Entry
}

// FullyQualifiedName returns "source:Name" as Hardhat prints it, or the bare name
// when the source is unknown.
func (f *FacetContract) FullyQualifiedName() string {
	if f.SourcePath == "" {
		return f.Name
	}
	return f.SourcePath + ":" + f.Name
}

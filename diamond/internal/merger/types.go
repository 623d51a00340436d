package merger

import (
	"fmt"
	"strings"

	"github.com/NilFoundation/diamond/diamond/internal/abi"
	"github.com/NilFoundation/diamond/diamond/internal/types"
)

const DefaultContractName = "DiamondProxy"

// Member is a surviving ABI entry together with the facets declaring it.
type Member struct {
	Signature abi.Signature
	Entry     abi.Entry
	// Facets lists the declaring facets in discovery order; the first one won.
	Facets []string
}

// MergedArtifact is the combined interface of the selected facets.
type MergedArtifact struct {
	ContractName string
	// Members are ordered by first appearance: facet order, then entry order within a facet.
	Members []Member
}

func (m *MergedArtifact) Entries() []abi.Entry {
	res := make([]abi.Entry, len(m.Members))
	for i, member := range m.Members {
		res[i] = member.Entry
	}
	return res
}

func (m *MergedArtifact) Provenance() map[abi.Signature][]string {
	res := make(map[abi.Signature][]string, len(m.Members))
	for _, member := range m.Members {
		res[member.Signature] = member.Facets
	}
	return res
}

// MergeConflict is an equal signature declared with different mutability, outputs,
// indexed flags or anonymity by two facets.
type MergeConflict struct {
	Signature abi.Signature
	// First is the facet whose declaration was kept.
	First   string
	Other   string
	Reasons []string
}

func (c MergeConflict) String() string {
	return fmt.Sprintf("%s is declared by %s and %s with different %s",
		c.Signature, c.First, c.Other, strings.Join(c.Reasons, ", "))
}

type WarningKind string

const (
	WarningEmptySelection    WarningKind = "empty-selection"
	WarningEmptyMerge        WarningKind = "empty-merge"
	WarningConflict          WarningKind = "conflict"
	WarningSelectorCollision WarningKind = "selector-collision"
)

type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string {
	return string(w.Kind) + ": " + w.Message
}

// Result is the outcome of a successful merge.
type Result struct {
	Artifact *MergedArtifact
	// Facets names the selected facets in merge order.
	Facets    []string
	Conflicts []MergeConflict
	Warnings  []Warning
}

// ConflictError aborts a strict merge.
type ConflictError struct {
	Conflict MergeConflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", types.ErrConflict, e.Conflict)
}

func (e *ConflictError) Unwrap() error {
	return types.ErrConflict
}

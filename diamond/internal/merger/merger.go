// Package merger unions the ABIs of diamond facets into one interface.
//
// Entries are keyed by abi.Signature in first-seen order. A re-declaration with the same
// mutability, outputs and indexed flags only extends the provenance. A differing one is
// a MergeConflict: fatal in strict mode, otherwise the first declaration is kept and
// the conflict is reported as a warning. Constructors belong to the facets' own
// deployments and are never part of the diamond interface.
package merger

import (
	"fmt"
	"slices"

	"github.com/NilFoundation/diamond/diamond/internal/abi"
	"github.com/NilFoundation/diamond/diamond/internal/filter"
	"github.com/NilFoundation/diamond/diamond/internal/types"
)

type mergeOptions struct {
	contractName string
}

type Option func(*mergeOptions)

func WithContractName(name string) Option {
	return func(o *mergeOptions) {
		if name != "" {
			o.contractName = name
		}
	}
}

// Merge selects facets with f and merges their entries. It never performs I/O and
// keeps no state between calls.
func Merge(facets []*types.FacetContract, f *filter.Filter, options ...Option) (*Result, error) {
	opts := mergeOptions{contractName: DefaultContractName}
	for _, o := range options {
		o(&opts)
	}

	scope := f.Bind(facets)
	selected := scope.SelectFacets(facets)
	labels := facetLabels(selected)

	res := &Result{
		Artifact: &MergedArtifact{ContractName: opts.contractName},
		Facets:   make([]string, len(selected)),
	}
	for i, facet := range selected {
		res.Facets[i] = labels[facet]
	}
	index := make(map[abi.Signature]int)

	for _, facet := range selected {
		label := labels[facet]
		for _, entry := range facet.Entries {
			if entry.Kind == abi.KindConstructor {
				continue
			}
			if scope.ExcludesMember(entry) || !scope.IncludesMember(entry) {
				continue
			}

			sig := abi.SignatureOf(entry)
			pos, seen := index[sig]
			if !seen {
				index[sig] = len(res.Artifact.Members)
				res.Artifact.Members = append(res.Artifact.Members, Member{
					Signature: sig,
					Entry:     entry,
					Facets:    []string{label},
				})
				continue
			}

			member := &res.Artifact.Members[pos]
			if reasons := differences(member.Entry, entry); len(reasons) > 0 {
				conflict := MergeConflict{
					Signature: sig,
					First:     member.Facets[0],
					Other:     label,
					Reasons:   reasons,
				}
				if f.Strict() {
					return nil, &ConflictError{Conflict: conflict}
				}
				res.Conflicts = append(res.Conflicts, conflict)
				res.Warnings = append(res.Warnings, Warning{Kind: WarningConflict, Message: conflict.String()})
				continue
			}
			if member.Facets[len(member.Facets)-1] != label {
				member.Facets = append(member.Facets, label)
			}
		}
	}

	res.Warnings = append(res.Warnings, selectorCollisions(res.Artifact.Members)...)

	switch {
	case len(selected) == 0:
		res.Warnings = append(res.Warnings, Warning{
			Kind:    WarningEmptySelection,
			Message: fmt.Sprintf("no facets selected out of %d discovered", len(facets)),
		})
	case len(res.Artifact.Members) == 0:
		res.Warnings = append(res.Warnings, Warning{
			Kind:    WarningEmptyMerge,
			Message: fmt.Sprintf("no entries survived member filtering of %d facets", len(selected)),
		})
	}
	return res, nil
}

// facetLabels names facets by contract name, falling back to the fully qualified
// name for contract names shared by several selected facets.
func facetLabels(facets []*types.FacetContract) map[*types.FacetContract]string {
	counts := make(map[string]int, len(facets))
	for _, f := range facets {
		counts[f.Name]++
	}
	labels := make(map[*types.FacetContract]string, len(facets))
	for _, f := range facets {
		if counts[f.Name] > 1 {
			labels[f] = f.FullyQualifiedName()
		} else {
			labels[f] = f.Name
		}
	}
	return labels
}

func differences(kept, other abi.Entry) []string {
	var reasons []string
	if kept.StateMutability != other.StateMutability {
		reasons = append(reasons, fmt.Sprintf("stateMutability (%s vs %s)", kept.StateMutability, other.StateMutability))
	}
	if a, b := abi.OutputTypes(kept), abi.OutputTypes(other); !slices.Equal(a, b) {
		reasons = append(reasons, fmt.Sprintf("outputs (%v vs %v)", a, b))
	}
	if a, b := abi.IndexedFlags(kept), abi.IndexedFlags(other); kept.Kind == abi.KindEvent && !slices.Equal(a, b) {
		reasons = append(reasons, fmt.Sprintf("indexed flags (%v vs %v)", a, b))
	}
	if kept.Anonymous != other.Anonymous {
		reasons = append(reasons, fmt.Sprintf("anonymous (%t vs %t)", kept.Anonymous, other.Anonymous))
	}
	return reasons
}

// selectorCollisions finds distinct function (or error) signatures sharing a 4-byte
// selector. A diamond cannot route both of them.
func selectorCollisions(members []Member) []Warning {
	var warnings []Warning
	owners := make(map[string]Member)
	for _, m := range members {
		if m.Entry.Kind != abi.KindFunction && m.Entry.Kind != abi.KindError {
			continue
		}
		selector := abi.SelectorHex(m.Entry)
		key := string(m.Entry.Kind) + ":" + selector
		if first, ok := owners[key]; ok {
			warnings = append(warnings, Warning{
				Kind: WarningSelectorCollision,
				Message: fmt.Sprintf("%s (%v) and %s (%v) share selector 0x%s",
					first.Signature, first.Facets, m.Signature, m.Facets, selector),
			})
			continue
		}
		owners[key] = m
	}
	return warnings
}

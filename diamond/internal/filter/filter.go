// Package filter decides which facets and which of their members take part in a merge.
package filter

import (
	"slices"

	"github.com/NilFoundation/diamond/diamond/internal/abi"
	"github.com/NilFoundation/diamond/diamond/internal/types"
)

// Config holds the raw include/exclude patterns.
type Config struct {
	Include []string
	Exclude []string
	// Strict makes a signature conflict between facets fatal.
	Strict bool
}

// Filter is a validated Config.
type Filter struct {
	include []Pattern
	exclude []Pattern
	strict  bool
}

func New(cfg Config) (*Filter, error) {
	include, err := ParsePatterns("filter.include", cfg.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := ParsePatterns("filter.exclude", cfg.Exclude)
	if err != nil {
		return nil, err
	}
	return &Filter{include: include, exclude: exclude, strict: cfg.Strict}, nil
}

func (f *Filter) Strict() bool {
	return f != nil && f.strict
}

// Scope is a filter resolved against the discovered facets: every pattern is
// classified as facet-level or member-level.
type Scope struct {
	contractInclude []Pattern
	contractExclude []Pattern
	memberInclude   []Pattern
	memberExclude   []Pattern
}

// Bind classifies the patterns. A bare name is facet-level iff some facet has that name.
func (f *Filter) Bind(facets []*types.FacetContract) *Scope {
	s := &Scope{}
	if f == nil {
		return s
	}
	s.contractInclude, s.memberInclude = split(f.include, facets)
	s.contractExclude, s.memberExclude = split(f.exclude, facets)
	return s
}

func split(patterns []Pattern, facets []*types.FacetContract) (contracts, members []Pattern) {
	for _, p := range patterns {
		isContract := slices.ContainsFunc(facets, p.MatchesContract)
		if p.kind == PatternContract || isContract {
			contracts = append(contracts, p)
		} else {
			members = append(members, p)
		}
	}
	return contracts, members
}

// SelectFacets keeps facets in discovery order, dropping facets named by an exclude
// pattern and, when facet-level include patterns exist, facets none of them name.
func (s *Scope) SelectFacets(facets []*types.FacetContract) []*types.FacetContract {
	res := make([]*types.FacetContract, 0, len(facets))
	for _, f := range facets {
		names := func(p Pattern) bool { return p.MatchesContract(f) }
		if slices.ContainsFunc(s.contractExclude, names) {
			continue
		}
		if len(s.contractInclude) > 0 && !slices.ContainsFunc(s.contractInclude, names) {
			continue
		}
		res = append(res, f)
	}
	return res
}

// ExcludesMember reports whether a member-level exclude pattern names the entry.
func (s *Scope) ExcludesMember(e abi.Entry) bool {
	return slices.ContainsFunc(s.memberExclude, func(p Pattern) bool { return p.MatchesEntry(e) })
}

// IncludesMember is false only when member-level include patterns exist and none names the entry.
func (s *Scope) IncludesMember(e abi.Entry) bool {
	return len(s.memberInclude) == 0 ||
		slices.ContainsFunc(s.memberInclude, func(p Pattern) bool { return p.MatchesEntry(e) })
}

// Select returns the facets taking part in the merge, in discovery order.
func Select(facets []*types.FacetContract, f *Filter) []*types.FacetContract {
	return f.Bind(facets).SelectFacets(facets)
}

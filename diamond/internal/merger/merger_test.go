package merger

import (
	"errors"
	"fmt"
	"testing"

	"github.com/NilFoundation/diamond/diamond/internal/abi"
	"github.com/NilFoundation/diamond/diamond/internal/filter"
	"github.com/NilFoundation/diamond/diamond/internal/types"
	"github.com/stretchr/testify/require"
)

func getter(name string, mutability abi.Mutability) abi.Entry {
	return abi.Entry{
		Kind:            abi.KindFunction,
		Name:            name,
		Outputs:         []abi.Param{{Type: "uint256"}},
		StateMutability: mutability,
	}
}

func scenario() []*types.FacetContract {
	return []*types.FacetContract{
		{
			Name:       "FacetA",
			SourcePath: "contracts/FacetA.sol",
			Entries:    []abi.Entry{getter("getA", abi.MutabilityView), getter("getB", abi.MutabilityView)},
		},
		{
			Name:       "FacetB",
			SourcePath: "contracts/FacetB.sol",
			Entries:    []abi.Entry{getter("getB", abi.MutabilityView), getter("getC", abi.MutabilityView)},
		},
	}
}

func newFilter(t *testing.T, cfg filter.Config) *filter.Filter {
	t.Helper()
	f, err := filter.New(cfg)
	require.NoError(t, err)
	return f
}

func memberNames(m *MergedArtifact) []string {
	res := make([]string, len(m.Members))
	for i, member := range m.Members {
		res[i] = member.Entry.Name
	}
	return res
}

func TestMergeDropsConstructors(t *testing.T) {
	t.Parallel()

	facets := scenario()
	facets[0].Entries = append(facets[0].Entries, abi.Entry{
		Kind:            abi.KindConstructor,
		Inputs:          []abi.Param{{Name: "owner", Type: "address"}},
		StateMutability: abi.MutabilityNonPayable,
	})
	facets[1].Entries = append([]abi.Entry{{
		Kind:            abi.KindConstructor,
		StateMutability: abi.MutabilityPayable,
	}}, facets[1].Entries...)

	res, err := Merge(facets, newFilter(t, filter.Config{Strict: true}))
	require.NoError(t, err)
	require.Equal(t, []string{"getA", "getB", "getC"}, memberNames(res.Artifact))
	require.Empty(t, res.Conflicts)
	for _, e := range res.Artifact.Entries() {
		require.NotEqual(t, abi.KindConstructor, e.Kind)
	}

	// Even an explicit include does not bring a constructor into the interface.
	res, err = Merge(facets, newFilter(t, filter.Config{Include: []string{"constructor"}}))
	require.NoError(t, err)
	require.Empty(t, res.Artifact.Members)
	require.Equal(t, WarningEmptyMerge, res.Warnings[0].Kind)
}

func TestMergeWithoutFilter(t *testing.T) {
	t.Parallel()

	res, err := Merge(scenario(), nil)
	require.NoError(t, err)
	require.Equal(t, DefaultContractName, res.Artifact.ContractName)
	require.Equal(t, []string{"FacetA", "FacetB"}, res.Facets)
	require.Equal(t, []string{"getA", "getB", "getC"}, memberNames(res.Artifact))
	require.Empty(t, res.Conflicts)
	require.Empty(t, res.Warnings)

	provenance := res.Artifact.Provenance()
	require.Equal(t, []string{"FacetA"}, provenance["function:getA()"])
	require.Equal(t, []string{"FacetA", "FacetB"}, provenance["function:getB()"])
	require.Equal(t, []string{"FacetB"}, provenance["function:getC()"])
}

func TestMergeIncludeMember(t *testing.T) {
	t.Parallel()

	res, err := Merge(scenario(), newFilter(t, filter.Config{Include: []string{"getB"}}))
	require.NoError(t, err)
	require.Len(t, res.Artifact.Members, 1)

	member := res.Artifact.Members[0]
	require.Equal(t, getter("getB", abi.MutabilityView), member.Entry)
	require.Equal(t, []string{"FacetA", "FacetB"}, member.Facets)
	require.Empty(t, res.Conflicts)
}

func TestMergeExcludedFacetWinsOverMemberInclude(t *testing.T) {
	t.Parallel()

	res, err := Merge(scenario(), newFilter(t, filter.Config{
		Include: []string{"getA", "getC"},
		Exclude: []string{"FacetB"},
	}))
	require.NoError(t, err)
	require.Equal(t, []string{"getA"}, memberNames(res.Artifact))
	require.Equal(t, []string{"FacetA"}, res.Artifact.Members[0].Facets)
}

func TestMergeExcludeSignature(t *testing.T) {
	t.Parallel()

	res, err := Merge(scenario(), newFilter(t, filter.Config{Exclude: []string{"function:getB()"}}))
	require.NoError(t, err)
	require.Equal(t, []string{"getA", "getC"}, memberNames(res.Artifact))
}

func conflicting() []*types.FacetContract {
	facets := scenario()
	facets[1].Entries[0] = getter("getB", abi.MutabilityNonPayable)
	return facets
}

func TestMergeConflict(t *testing.T) {
	t.Parallel()

	t.Run("NonStrict", func(t *testing.T) {
		t.Parallel()

		res, err := Merge(conflicting(), nil)
		require.NoError(t, err)
		require.Len(t, res.Conflicts, 1)

		conflict := res.Conflicts[0]
		require.Equal(t, abi.Signature("function:getB()"), conflict.Signature)
		require.Equal(t, "FacetA", conflict.First)
		require.Equal(t, "FacetB", conflict.Other)
		require.Len(t, conflict.Reasons, 1)

		require.Len(t, res.Warnings, 1)
		require.Equal(t, WarningConflict, res.Warnings[0].Kind)

		require.Equal(t, []string{"getA", "getB", "getC"}, memberNames(res.Artifact))
		getB := res.Artifact.Members[1]
		require.Equal(t, abi.MutabilityView, getB.Entry.StateMutability)
		require.Equal(t, []string{"FacetA"}, getB.Facets)
	})

	t.Run("Strict", func(t *testing.T) {
		t.Parallel()

		res, err := Merge(conflicting(), newFilter(t, filter.Config{Strict: true}))
		require.Nil(t, res)
		require.ErrorIs(t, err, types.ErrConflict)

		var conflictErr *ConflictError
		require.True(t, errors.As(err, &conflictErr))
		require.Equal(t, "FacetA", conflictErr.Conflict.First)
		require.Equal(t, "FacetB", conflictErr.Conflict.Other)
		require.Contains(t, err.Error(), "function:getB()")
		require.Contains(t, err.Error(), "FacetA")
		require.Contains(t, err.Error(), "FacetB")
	})
}

func TestConflictReasons(t *testing.T) {
	t.Parallel()

	event := abi.Entry{
		Kind:   abi.KindEvent,
		Name:   "Moved",
		Inputs: []abi.Param{{Type: "address", Indexed: true}, {Type: "uint256"}},
	}
	reindexed := event
	reindexed.Inputs = []abi.Param{{Type: "address"}, {Type: "uint256", Indexed: true}}
	anonymous := event
	anonymous.Anonymous = true

	returnsAddress := getter("owner", abi.MutabilityView)
	returnsAddress.Outputs = []abi.Param{{Type: "address"}}
	payable := returnsAddress
	payable.StateMutability = abi.MutabilityPayable
	errorA := abi.Entry{Kind: abi.KindError, Name: "E", Inputs: []abi.Param{{Name: "a", Type: "bool"}}}
	errorB := abi.Entry{Kind: abi.KindError, Name: "E", Inputs: []abi.Param{{Name: "b", Type: "bool"}}}

	cases := map[string]struct {
		first, other abi.Entry
		reasons      int
	}{
		"Identical":  {event, event, 0},
		"Indexed":    {event, reindexed, 1},
		"Anonymous":  {event, anonymous, 1},
		"Outputs":    {getter("owner", abi.MutabilityView), returnsAddress, 1},
		"Mutability": {getter("owner", abi.MutabilityView), getter("owner", abi.MutabilityPure), 1},
		"Both":       {getter("owner", abi.MutabilityView), payable, 2},
		"ParamNames": {errorA, errorB, 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			facets := []*types.FacetContract{
				{Name: "First", Entries: []abi.Entry{tc.first}},
				{Name: "Other", Entries: []abi.Entry{tc.other}},
			}
			res, err := Merge(facets, nil)
			require.NoError(t, err)
			require.Len(t, res.Artifact.Members, 1)
			if tc.reasons == 0 {
				require.Empty(t, res.Conflicts)
				require.Equal(t, []string{"First", "Other"}, res.Artifact.Members[0].Facets)
				return
			}
			require.Len(t, res.Conflicts, 1)
			require.Len(t, res.Conflicts[0].Reasons, tc.reasons)
		})
	}
}

func TestMergeDuplicateWithinFacet(t *testing.T) {
	t.Parallel()

	facets := []*types.FacetContract{{
		Name:    "Shared",
		Entries: []abi.Entry{getter("getA", abi.MutabilityView), getter("getA", abi.MutabilityView)},
	}}
	res, err := Merge(facets, nil)
	require.NoError(t, err)
	require.Len(t, res.Artifact.Members, 1)
	require.Equal(t, []string{"Shared"}, res.Artifact.Members[0].Facets)
}

func TestMergeSameNameDifferentSources(t *testing.T) {
	t.Parallel()

	facets := []*types.FacetContract{
		{Name: "Facet", SourcePath: "a/Facet.sol", Entries: []abi.Entry{getter("getA", abi.MutabilityView)}},
		{Name: "Facet", SourcePath: "b/Facet.sol", Entries: []abi.Entry{getter("getA", abi.MutabilityView)}},
	}
	res, err := Merge(facets, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"a/Facet.sol:Facet", "b/Facet.sol:Facet"}, res.Artifact.Members[0].Facets)
}

func TestMergeWarnings(t *testing.T) {
	t.Parallel()

	res, err := Merge(scenario(), newFilter(t, filter.Config{Exclude: []string{"FacetA", "FacetB"}}))
	require.NoError(t, err)
	require.Empty(t, res.Artifact.Members)
	require.Equal(t, []WarningKind{WarningEmptySelection}, warningKinds(res.Warnings))

	res, err = Merge(scenario(), newFilter(t, filter.Config{Include: []string{"missing()"}}))
	require.NoError(t, err)
	require.Empty(t, res.Artifact.Members)
	require.Equal(t, []WarningKind{WarningEmptyMerge}, warningKinds(res.Warnings))

	res, err = Merge(nil, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Artifact)
	require.Equal(t, []WarningKind{WarningEmptySelection}, warningKinds(res.Warnings))
}

func TestMergeSelectorCollision(t *testing.T) {
	t.Parallel()

	burn := abi.Entry{Kind: abi.KindFunction, Name: "burn", Inputs: []abi.Param{{Type: "uint256"}}}
	clash := abi.Entry{Kind: abi.KindFunction, Name: "collate_propagate_storage", Inputs: []abi.Param{{Type: "bytes16"}}}
	require.Equal(t, abi.SelectorHex(burn), abi.SelectorHex(clash))

	facets := []*types.FacetContract{
		{Name: "Token", Entries: []abi.Entry{burn}},
		{Name: "Storage", Entries: []abi.Entry{clash}},
	}
	res, err := Merge(facets, newFilter(t, filter.Config{Strict: true}))
	require.NoError(t, err)
	require.Len(t, res.Artifact.Members, 2)
	require.Empty(t, res.Conflicts)
	require.Equal(t, []WarningKind{WarningSelectorCollision}, warningKinds(res.Warnings))
	require.Contains(t, res.Warnings[0].Message, "0x42966c68")
}

func TestMergeContractName(t *testing.T) {
	t.Parallel()

	res, err := Merge(scenario(), nil, WithContractName("Diamond"))
	require.NoError(t, err)
	require.Equal(t, "Diamond", res.Artifact.ContractName)

	res, err = Merge(scenario(), nil, WithContractName(""))
	require.NoError(t, err)
	require.Equal(t, DefaultContractName, res.Artifact.ContractName)
}

func warningKinds(warnings []Warning) []WarningKind {
	res := make([]WarningKind, len(warnings))
	for i, w := range warnings {
		res[i] = w.Kind
	}
	return res
}

func BenchmarkMerge(b *testing.B) {
	facets := make([]*types.FacetContract, 32)
	for i := range facets {
		entries := make([]abi.Entry, 64)
		for j := range entries {
			entries[j] = getter(fmt.Sprintf("get%d", (i*16+j)%512), abi.MutabilityView)
		}
		facets[i] = &types.FacetContract{Name: fmt.Sprintf("Facet%d", i), Entries: entries}
	}

	b.ResetTimer()
	for range b.N {
		if _, err := Merge(facets, nil); err != nil {
			b.Fatal(err)
		}
	}
}

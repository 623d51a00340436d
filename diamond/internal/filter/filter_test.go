package filter

import (
	"testing"

	"github.com/NilFoundation/diamond/diamond/internal/abi"
	"github.com/NilFoundation/diamond/diamond/internal/types"
	"github.com/stretchr/testify/require"
)

func view(name string, inputs ...string) abi.Entry {
	e := abi.Entry{
		Kind:            abi.KindFunction,
		Name:            name,
		Outputs:         []abi.Param{{Type: "uint256"}},
		StateMutability: abi.MutabilityView,
	}
	for _, in := range inputs {
		e.Inputs = append(e.Inputs, abi.Param{Type: in})
	}
	return e
}

func facets() []*types.FacetContract {
	return []*types.FacetContract{
		{Name: "FacetA", SourcePath: "contracts/FacetA.sol", Entries: []abi.Entry{view("getA"), view("getB")}},
		{Name: "FacetB", SourcePath: "contracts/FacetB.sol", Entries: []abi.Entry{view("getB"), view("getC")}},
		{Name: "Ownership", SourcePath: "contracts/Ownership.sol", Entries: []abi.Entry{view("owner")}},
	}
}

func names(fs []*types.FacetContract) []string {
	res := make([]string, len(fs))
	for i, f := range fs {
		res[i] = f.Name
	}
	return res
}

func TestParsePattern(t *testing.T) {
	t.Parallel()

	p, err := ParsePattern(" getB ")
	require.NoError(t, err)
	require.Equal(t, PatternName, p.Kind())
	require.Equal(t, "getB", p.String())

	p, err = ParsePattern("contracts/FacetA.sol:FacetA")
	require.NoError(t, err)
	require.Equal(t, PatternContract, p.Kind())

	p, err = ParsePattern("getB(uint256 id)")
	require.NoError(t, err)
	require.Equal(t, PatternSignature, p.Kind())

	p, err = ParsePattern("event:Transfer")
	require.NoError(t, err)
	require.Equal(t, PatternName, p.Kind())
	require.False(t, p.MatchesEntry(view("Transfer")))
	require.True(t, p.MatchesEntry(abi.Entry{Kind: abi.KindEvent, Name: "Transfer"}))

	for _, bad := range []string{"", "  ", "get-b", "getB(", ":FacetA", "src.sol:", "function:(x)"} {
		_, err := ParsePattern(bad)
		require.Error(t, err, bad)
	}
}

func TestPatternMatchesEntry(t *testing.T) {
	t.Parallel()

	getB := view("getB", "uint256")

	require.True(t, MustParsePattern("getB").MatchesEntry(getB))
	require.True(t, MustParsePattern("getB(uint256)").MatchesEntry(getB))
	require.True(t, MustParsePattern("function:getB(uint256 x)").MatchesEntry(getB))
	require.True(t, MustParsePattern("getB(uint)").MatchesEntry(getB))
	require.False(t, MustParsePattern("getB()").MatchesEntry(getB))
	require.False(t, MustParsePattern("event:getB(uint256)").MatchesEntry(getB))
	require.False(t, MustParsePattern("getBB").MatchesEntry(getB))

	ctor := abi.Entry{Kind: abi.KindConstructor, Inputs: []abi.Param{{Type: "address"}}}
	require.True(t, MustParsePattern("constructor").MatchesEntry(ctor))
	require.True(t, MustParsePattern("constructor(address)").MatchesEntry(ctor))

	cut := abi.Entry{Kind: abi.KindFunction, Name: "cut", Inputs: []abi.Param{{
		Type:       "tuple[]",
		Components: []abi.Param{{Type: "address"}, {Type: "bytes4[]"}},
	}}}
	require.True(t, MustParsePattern("cut((address,bytes4[])[])").MatchesEntry(cut))
	require.True(t, MustParsePattern("cut(tuple(address,bytes4[])[] cuts)").MatchesEntry(cut))
}

func TestNewReportsConfigError(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Include: []string{"getA", "getB("}})
	require.ErrorIs(t, err, types.ErrConfig)
	require.ErrorContains(t, err, `filter.include[1] "getB("`)

	_, err = New(Config{Exclude: []string{"bad pattern"}})
	require.ErrorIs(t, err, types.ErrConfig)
	require.ErrorContains(t, err, "filter.exclude[0]")

	f, err := New(Config{Strict: true})
	require.NoError(t, err)
	require.True(t, f.Strict())

	var nilFilter *Filter
	require.False(t, nilFilter.Strict())
}

func TestSelect(t *testing.T) {
	t.Parallel()

	all := facets()

	for name, tc := range map[string]struct {
		cfg      Config
		expected []string
	}{
		"NoFilter":            {Config{}, []string{"FacetA", "FacetB", "Ownership"}},
		"MemberIncludeOnly":   {Config{Include: []string{"getB"}}, []string{"FacetA", "FacetB", "Ownership"}},
		"ExcludeContract":     {Config{Exclude: []string{"FacetA"}}, []string{"FacetB", "Ownership"}},
		"IncludeContract":     {Config{Include: []string{"FacetB", "getC"}}, []string{"FacetB"}},
		"QualifiedName":       {Config{Include: []string{"contracts/Ownership.sol:Ownership"}}, []string{"Ownership"}},
		"ExcludeBeatsInclude": {Config{Include: []string{"FacetA"}, Exclude: []string{"FacetA"}}, []string{}},
		"UnknownQualified":    {Config{Include: []string{"other/FacetA.sol:FacetA"}}, []string{}},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f, err := New(tc.cfg)
			require.NoError(t, err)
			require.Equal(t, tc.expected, names(Select(all, f)))
		})
	}

	require.Len(t, Select(all, nil), 3)
}

func TestScopeMembers(t *testing.T) {
	t.Parallel()

	all := facets()
	f, err := New(Config{
		Include: []string{"FacetA", "getA", "getB"},
		Exclude: []string{"getB(uint256)", "getA()"},
	})
	require.NoError(t, err)

	s := f.Bind(all)
	require.Equal(t, []string{"FacetA"}, names(s.SelectFacets(all)))

	require.True(t, s.IncludesMember(view("getA")))
	require.True(t, s.IncludesMember(view("getB", "uint256")))
	require.False(t, s.IncludesMember(view("getC")))

	require.True(t, s.ExcludesMember(view("getA")))
	require.True(t, s.ExcludesMember(view("getB", "uint256")))
	require.False(t, s.ExcludesMember(view("getB")))

	// A facet-level include does not restrict members on its own.
	f, err = New(Config{Include: []string{"FacetA"}})
	require.NoError(t, err)
	require.True(t, f.Bind(all).IncludesMember(view("anything")))
}

func TestSplitList(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		[]string{"getA", "transfer(address,uint256)", "FacetB", "f((uint8,bool)[],bytes)"},
		SplitList([]string{"getA, transfer(address,uint256)", "FacetB,", " f((uint8,bool)[],bytes) "}))
	require.Empty(t, SplitList([]string{"", " , "}))
	require.Empty(t, SplitList(nil))
}

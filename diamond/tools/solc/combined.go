package solc

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/NilFoundation/diamond/diamond/internal/abi"
	"github.com/ethereum/go-ethereum/common/compiler"
)

// Contract is one entry of a `solc --combined-json` output.
type Contract struct {
	Name       string
	SourcePath string
	*compiler.Contract
}

// ParseCombinedJSON decodes `solc --combined-json abi,...` output. Contracts are sorted
// by their "source:Name" key.
func ParseCombinedJSON(json []byte) ([]Contract, error) {
	// Provide empty strings for the additional required arguments
	contracts, err := compiler.ParseCombinedJSON(
		json,
		"", /* source */
		"", /* langVersion */
		"", /* compilerVersion */
		"" /* compilerOpts */)
	if err != nil {
		return nil, fmt.Errorf("failed to parse solc output: %w", err)
	}

	keys := make([]string, 0, len(contracts))
	for key := range contracts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	res := make([]Contract, 0, len(keys))
	for _, key := range keys {
		c := Contract{Name: key, Contract: contracts[key]}
		if i := strings.LastIndex(key, ":"); i >= 0 {
			c.SourcePath, c.Name = key[:i], key[i+1:]
		}
		res = append(res, c)
	}
	return res, nil
}

func ExtractABI(c Contract) ([]abi.Entry, error) {
	if c.Info.AbiDefinition == nil {
		return nil, nil
	}
	data, err := json.Marshal(c.Info.AbiDefinition)
	if err != nil {
		return nil, fmt.Errorf("failed to extract abi of %s: %w", c.Name, err)
	}
	entries, err := abi.ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract abi of %s: %w", c.Name, err)
	}
	return entries, nil
}

package artifacts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/NilFoundation/diamond/diamond/internal/abi"
	"github.com/NilFoundation/diamond/diamond/internal/types"
	"github.com/NilFoundation/diamond/diamond/tools/solc"
)

var ErrUnrecognized = errors.New("unrecognized artifact layout")

// artifactJSON covers the keys of Hardhat, Foundry and solc outputs that name a contract.
type artifactJSON struct {
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
	Metadata     json.RawMessage `json:"metadata"`
	Contracts    json.RawMessage `json:"contracts"`
}

type metadataJSON struct {
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
	} `json:"settings"`
}

// Decode turns one artifact file into facets. Supported layouts are a bare ABI array,
// a Hardhat or Foundry artifact object and `solc --combined-json` output.
func Decode(path string, data []byte) ([]*types.FacetContract, error) {
	data = bytes.TrimSpace(data)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch {
	case len(data) == 0:
		return nil, fmt.Errorf("%w: empty file", ErrUnrecognized)
	case data[0] == '[':
		entries, err := abi.ParseJSON(data)
		if err != nil {
			return nil, err
		}
		return []*types.FacetContract{{Name: stem, Entries: entries}}, nil
	case data[0] != '{':
		return nil, fmt.Errorf("%w: expected a JSON array or object", ErrUnrecognized)
	}

	var raw artifactJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	switch {
	case raw.ABI != nil:
		entries, err := abi.ParseJSON(raw.ABI)
		if err != nil {
			return nil, err
		}
		facet := &types.FacetContract{Name: raw.ContractName, SourcePath: raw.SourceName, Entries: entries}
		if facet.Name == "" {
			facet.SourcePath, facet.Name = compilationTarget(raw.Metadata)
		}
		if facet.Name == "" {
			facet.Name = stem
			if dir := filepath.Base(filepath.Dir(path)); strings.HasSuffix(dir, ".sol") {
				facet.SourcePath = dir
			}
		}
		return []*types.FacetContract{facet}, nil
	case raw.Contracts != nil:
		return decodeCombined(data)
	default:
		return nil, fmt.Errorf("%w: object has neither \"abi\" nor \"contracts\"", ErrUnrecognized)
	}
}

// compilationTarget reads forge's metadata, which is sometimes encoded as a JSON string.
func compilationTarget(raw json.RawMessage) (source, name string) {
	if len(raw) == 0 {
		return "", ""
	}
	var encoded string
	if json.Unmarshal(raw, &encoded) == nil {
		raw = json.RawMessage(encoded)
	}
	var meta metadataJSON
	if json.Unmarshal(raw, &meta) != nil {
		return "", ""
	}
	if len(meta.Settings.CompilationTarget) != 1 {
		return "", ""
	}
	for s, n := range meta.Settings.CompilationTarget {
		return s, n
	}
	return "", ""
}

func decodeCombined(data []byte) ([]*types.FacetContract, error) {
	contracts, err := solc.ParseCombinedJSON(data)
	if err != nil {
		return nil, err
	}
	res := make([]*types.FacetContract, 0, len(contracts))
	for _, c := range contracts {
		entries, err := solc.ExtractABI(c)
		if err != nil {
			return nil, err
		}
		res = append(res, &types.FacetContract{Name: c.Name, SourcePath: c.SourcePath, Entries: entries})
	}
	return res, nil
}

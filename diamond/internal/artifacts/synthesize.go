// Package artifacts reads compiled facet artifacts and writes the synthesized diamond artifact.
package artifacts

import (
	"encoding/json"
	"fmt"

	"github.com/NilFoundation/diamond/diamond/internal/abi"
	"github.com/NilFoundation/diamond/diamond/internal/merger"
)

const (
	HardhatFormatVersion = "hh-sol-artifact-1"

	emptyBytecode = "0x"
)

type linkReferences = map[string]map[string][]struct{}

// HardhatArtifact mirrors the Hardhat artifact schema. Every field is always encoded.
type HardhatArtifact struct {
	Format                 string         `json:"_format"`
	ContractName           string         `json:"contractName"`
	SourceName             string         `json:"sourceName"`
	ABI                    []abi.Entry    `json:"abi"`
	Bytecode               string         `json:"bytecode"`
	DeployedBytecode       string         `json:"deployedBytecode"`
	LinkReferences         linkReferences `json:"linkReferences"`
	DeployedLinkReferences linkReferences `json:"deployedLinkReferences"`
}

type FoundryBytecode struct {
	Object         string         `json:"object"`
	SourceMap      string         `json:"sourceMap"`
	LinkReferences linkReferences `json:"linkReferences"`
}

type FoundryMetadata struct {
	Language string `json:"language"`
	Output   struct {
		ABI []abi.Entry `json:"abi"`
	} `json:"output"`
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
	} `json:"settings"`
	Version int `json:"version"`
}

// FoundryArtifact mirrors the subset of forge's out/ artifact schema consumers check.
type FoundryArtifact struct {
	ABI               []abi.Entry       `json:"abi"`
	Bytecode          FoundryBytecode   `json:"bytecode"`
	DeployedBytecode  FoundryBytecode   `json:"deployedBytecode"`
	MethodIdentifiers map[string]string `json:"methodIdentifiers"`
	Metadata          FoundryMetadata   `json:"metadata"`
}

// SourceName is the virtual source file the synthesized contract is attributed to.
func SourceName(contractName string) string {
	return "diamond/" + contractName + ".sol"
}

func emptyBytecodeObject() FoundryBytecode {
	return FoundryBytecode{Object: emptyBytecode, LinkReferences: linkReferences{}}
}

// Synthesize wraps the merged ABI into an artifact of the given format. An empty
// contractName falls back to the merged artifact's name.
func Synthesize(merged *merger.MergedArtifact, contractName string, format Format) (any, error) {
	if contractName == "" {
		contractName = merged.ContractName
	}
	if contractName == "" {
		contractName = merger.DefaultContractName
	}
	entries := merged.Entries()

	switch format {
	case FormatHardhat, "":
		return &HardhatArtifact{
			Format:                 HardhatFormatVersion,
			ContractName:           contractName,
			SourceName:             SourceName(contractName),
			ABI:                    entries,
			Bytecode:               emptyBytecode,
			DeployedBytecode:       emptyBytecode,
			LinkReferences:         linkReferences{},
			DeployedLinkReferences: linkReferences{},
		}, nil
	case FormatFoundry:
		res := &FoundryArtifact{
			ABI:               entries,
			Bytecode:          emptyBytecodeObject(),
			DeployedBytecode:  emptyBytecodeObject(),
			MethodIdentifiers: make(map[string]string),
		}
		for _, e := range entries {
			if e.Kind == abi.KindFunction {
				res.MethodIdentifiers[abi.SelectorSignature(e)] = abi.SelectorHex(e)
			}
		}
		res.Metadata.Language = "Solidity"
		res.Metadata.Output.ABI = entries
		res.Metadata.Settings.CompilationTarget = map[string]string{SourceName(contractName): contractName}
		res.Metadata.Version = 1
		return res, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Encode renders an artifact deterministically: two-space indent, trailing newline.
func Encode(artifact any) ([]byte, error) {
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

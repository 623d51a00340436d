package artifacts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/NilFoundation/diamond/diamond/common/logging"
	"github.com/NilFoundation/diamond/diamond/internal/abi"
	"github.com/NilFoundation/diamond/diamond/internal/merger"
	"github.com/NilFoundation/diamond/diamond/internal/solidity"
)

const (
	DefaultOutDir = "artifacts/diamond"

	dirMode  = 0o755
	fileMode = 0o644
)

type WriterConfig struct {
	OutDir       string
	ContractName string
	Format       Format

	CreateInterface bool
	InterfacePragma string
	Provenance      bool
}

// Writer persists a merge result. Every file is replaced atomically, so readers never
// observe a partially written artifact.
type Writer struct {
	cfg    WriterConfig
	logger logging.Logger
}

func NewWriter(cfg WriterConfig, logger logging.Logger) *Writer {
	if cfg.OutDir == "" {
		cfg.OutDir = DefaultOutDir
	}
	if cfg.ContractName == "" {
		cfg.ContractName = merger.DefaultContractName
	}
	if cfg.Format == "" {
		cfg.Format = DefaultFormat
	}
	return &Writer{cfg: cfg, logger: logger}
}

func (w *Writer) OutDir() string {
	return w.cfg.OutDir
}

func (w *Writer) ArtifactPath() string {
	return filepath.Join(w.cfg.OutDir, w.cfg.ContractName+".json")
}

func (w *Writer) InterfacePath() string {
	return filepath.Join(w.cfg.OutDir, solidity.InterfaceName(w.cfg.ContractName)+".sol")
}

func (w *Writer) ProvenancePath() string {
	return filepath.Join(w.cfg.OutDir, w.cfg.ContractName+".provenance.json")
}

// Outputs lists every file the writer may produce.
func (w *Writer) Outputs() []string {
	return []string{w.ArtifactPath(), w.InterfacePath(), w.ProvenancePath()}
}

// Write synthesizes and stores the artifact and the optional companion files.
// It returns the paths written.
func (w *Writer) Write(merged *merger.MergedArtifact) ([]string, error) {
	artifact, err := Synthesize(merged, w.cfg.ContractName, w.cfg.Format)
	if err != nil {
		return nil, err
	}
	data, err := Encode(artifact)
	if err != nil {
		return nil, fmt.Errorf("failed to encode artifact: %w", err)
	}

	if err := os.MkdirAll(w.cfg.OutDir, dirMode); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	files := []outputFile{{w.ArtifactPath(), data}}

	if w.cfg.CreateInterface {
		source, err := solidity.GenerateInterface(merged.Entries(), w.cfg.ContractName, w.cfg.InterfacePragma)
		if err != nil {
			return nil, fmt.Errorf("failed to generate interface: %w", err)
		}
		files = append(files, outputFile{w.InterfacePath(), []byte(source)})
	}

	if w.cfg.Provenance {
		data, err := encodeProvenance(merged)
		if err != nil {
			return nil, fmt.Errorf("failed to encode provenance: %w", err)
		}
		files = append(files, outputFile{w.ProvenancePath(), data})
	}

	// Every file is staged before any is renamed, so a failed write leaves the
	// previous generation in place.
	staged := make([]string, 0, len(files))
	defer func() {
		for _, tmp := range staged {
			os.Remove(tmp) //nolint:errcheck
		}
	}()
	for _, f := range files {
		tmp, err := stageFile(f.path, f.data)
		if err != nil {
			return nil, err
		}
		staged = append(staged, tmp)
	}

	written := make([]string, 0, len(files))
	for i, f := range files {
		if err := os.Rename(staged[i], f.path); err != nil {
			return written, fmt.Errorf("failed to replace %s: %w", f.path, err)
		}
		written = append(written, f.path)
		w.logger.Debug().Str(logging.FieldPath, f.path).Msg("File written")
	}
	return written, nil
}

type outputFile struct {
	path string
	data []byte
}

type provenanceEntry struct {
	Signature abi.Signature `json:"signature"`
	Selector  string        `json:"selector,omitempty"`
	Facets    []string      `json:"facets"`
}

func encodeProvenance(merged *merger.MergedArtifact) ([]byte, error) {
	entries := make([]provenanceEntry, len(merged.Members))
	for i, m := range merged.Members {
		entries[i] = provenanceEntry{Signature: m.Signature, Facets: m.Facets}
		if selector := abi.SelectorHex(m.Entry); selector != "" {
			entries[i].Selector = "0x" + selector
		}
	}
	return Encode(entries)
}

// stageFile writes data to a temporary file next to path and returns its name.
func stageFile(path string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Chmod(fileMode)
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return tmp.Name(), nil
}

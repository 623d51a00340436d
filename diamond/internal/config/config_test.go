package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/NilFoundation/diamond/diamond/internal/artifacts"
	"github.com/NilFoundation/diamond/diamond/internal/types"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(Options{SearchDir: t.TempDir()})
	require.NoError(t, err)
	require.Equal(t, "artifacts", cfg.ArtifactsDir)
	require.Equal(t, "artifacts/diamond", cfg.OutDir)
	require.Equal(t, "DiamondProxy", cfg.OutContractName)
	require.Equal(t, artifacts.FormatHardhat, cfg.Format)
	require.Equal(t, []string{"json"}, cfg.Extensions)
	require.Equal(t, "^0.8.0", cfg.InterfacePragma)
	require.False(t, cfg.Strict)
	require.Empty(t, cfg.Filter.Include)
	require.Empty(t, cfg.File)

	f, err := cfg.NewFilter()
	require.NoError(t, err)
	require.False(t, f.Strict())
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "diamond.yaml", `
artifactsDir: build/artifacts
outDir: build/diamond
outContractName: Diamond
strict: true
format: foundry
createInterface: true
filter:
  include: [FacetA, "getB()"]
  exclude: [Ownership]
`)
	cfg, err := Load(Options{File: path})
	require.NoError(t, err)
	require.Equal(t, path, cfg.File)
	require.Equal(t, "build/artifacts", cfg.ArtifactsDir)
	require.Equal(t, "Diamond", cfg.OutContractName)
	require.Equal(t, artifacts.FormatFoundry, cfg.Format)
	require.True(t, cfg.CreateInterface)
	require.Equal(t, []string{"FacetA", "getB()"}, cfg.Filter.Include)
	require.Equal(t, []string{"Ownership"}, cfg.Filter.Exclude)

	filterCfg := cfg.FilterConfig()
	require.True(t, filterCfg.Strict)

	w := cfg.WriterConfig()
	require.Equal(t, "build/diamond", w.OutDir)
	require.Equal(t, artifacts.FormatFoundry, w.Format)

	r := cfg.ReaderConfig()
	require.Equal(t, "build/artifacts", r.Dir)
	require.Contains(t, r.Skip, filepath.Join("build", "diamond", "Diamond.json"))
	require.Equal(t, []string{"build/diamond"}, r.SkipDirs)
}

func TestLoadSearchDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "diamond.json"), []byte(`{"outContractName": "Found"}`), 0o644))

	cfg, err := Load(Options{SearchDir: dir})
	require.NoError(t, err)
	require.Equal(t, "Found", cfg.OutContractName)
	require.Equal(t, filepath.Join(dir, "diamond.json"), cfg.File)
}

func TestLoadFlags(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "diamond.yaml", "outDir: from-file\noutContractName: FromFile\n")

	flags := pflag.NewFlagSet("merge", pflag.ContinueOnError)
	flags.String("out-dir", "", "")
	flags.String("contract-name", "", "")
	flags.StringArray("include", nil, "")
	flags.Bool("strict", false, "")
	require.NoError(t, flags.Parse([]string{"--out-dir", "from-flag", "--include", "getA,getB", "--include", "f(uint256,bool)", "--strict"}))

	cfg, err := Load(Options{File: path, Flags: flags, Overrides: map[string]any{ArtifactsDirKey: "positional"}})
	require.NoError(t, err)
	require.Equal(t, "from-flag", cfg.OutDir)
	// Unchanged flags do not shadow the file.
	require.Equal(t, "FromFile", cfg.OutContractName)
	require.Equal(t, []string{"getA", "getB", "f(uint256,bool)"}, cfg.Filter.Include)
	require.True(t, cfg.Strict)
	require.Equal(t, "positional", cfg.ArtifactsDir)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("DIAMOND_OUTDIR", "from-env")
	t.Setenv("DIAMOND_FILTER_EXCLUDE", "FacetA,transfer(address,uint256)")
	t.Setenv("DIAMOND_FORMAT", "foundry")

	cfg, err := Load(Options{SearchDir: t.TempDir()})
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.OutDir)
	require.Equal(t, []string{"FacetA", "transfer(address,uint256)"}, cfg.Filter.Exclude)
	require.Equal(t, artifacts.FormatFoundry, cfg.Format)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]Options{
		"MissingFile":   {File: filepath.Join(t.TempDir(), "missing.yaml")},
		"Malformed":     {File: writeConfig(t, "bad.yaml", "filter: [\n")},
		"BadPattern":    {File: writeConfig(t, "pattern.yaml", "filter:\n  include: [\"getB(\"]\n")},
		"BadFormat":     {File: writeConfig(t, "format.yaml", "format: truffle\n")},
		"BadName":       {File: writeConfig(t, "name.yaml", "outContractName: \"Diamond Proxy\"\n")},
		"EmptyOutDir":   {File: writeConfig(t, "out.yaml", "outDir: \"\"\n")},
		"BadOverride":   {SearchDir: t.TempDir(), Overrides: map[string]any{FormatKey: "truffle"}},
		"NoExtensions":  {SearchDir: t.TempDir(), Overrides: map[string]any{ExtensionsKey: []string{}}},
		"BadExclusions": {SearchDir: t.TempDir(), Overrides: map[string]any{ExcludeKey: []string{"event:"}}},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(opts)
			require.ErrorIs(t, err, types.ErrConfig)
		})
	}
}

func TestYAML(t *testing.T) {
	t.Parallel()

	cfg, err := Load(Options{SearchDir: t.TempDir(), Overrides: map[string]any{IncludeKey: []string{"getB"}}})
	require.NoError(t, err)

	out, err := cfg.YAML()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	require.Equal(t, "artifacts/diamond", decoded["outDir"])
	require.Equal(t, "hardhat", decoded["format"])
	filterSection, ok := decoded["filter"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, []any{"getB"}, filterSection["include"])
	require.NotContains(t, decoded, "File")
}

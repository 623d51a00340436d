// Package config loads the merge configuration from defaults, a config file,
// DIAMOND_* environment variables and command line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/NilFoundation/diamond/diamond/common/logging"
	"github.com/NilFoundation/diamond/diamond/internal/abi"
	"github.com/NilFoundation/diamond/diamond/internal/artifacts"
	"github.com/NilFoundation/diamond/diamond/internal/filter"
	"github.com/NilFoundation/diamond/diamond/internal/merger"
	"github.com/NilFoundation/diamond/diamond/internal/solidity"
	"github.com/NilFoundation/diamond/diamond/internal/types"
	"github.com/go-viper/encoding/ini"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix         = "DIAMOND"
	DefaultConfigName = "diamond"
)

const (
	ArtifactsDirKey    = "artifactsDir"
	OutDirKey          = "outDir"
	OutContractNameKey = "outContractName"
	IncludeKey         = "filter.include"
	ExcludeKey         = "filter.exclude"
	StrictKey          = "strict"
	FormatKey          = "format"
	CreateInterfaceKey = "createInterface"
	InterfacePragmaKey = "interfacePragma"
	ProvenanceKey      = "provenance"
	ExtensionsKey      = "extensions"
	FollowSymlinksKey  = "followSymlinks"
)

type FilterConfig struct {
	Include []string `mapstructure:"include" yaml:"include"`
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
}

type Config struct {
	ArtifactsDir    string           `mapstructure:"artifactsDir" yaml:"artifactsDir"`
	OutDir          string           `mapstructure:"outDir" yaml:"outDir"`
	OutContractName string           `mapstructure:"outContractName" yaml:"outContractName"`
	Filter          FilterConfig     `mapstructure:"filter" yaml:"filter"`
	Strict          bool             `mapstructure:"strict" yaml:"strict"`
	Format          artifacts.Format `mapstructure:"format" yaml:"format"`
	CreateInterface bool             `mapstructure:"createInterface" yaml:"createInterface"`
	InterfacePragma string           `mapstructure:"interfacePragma" yaml:"interfacePragma"`
	Provenance      bool             `mapstructure:"provenance" yaml:"provenance"`
	Extensions      []string         `mapstructure:"extensions" yaml:"extensions"`
	FollowSymlinks  bool             `mapstructure:"followSymlinks" yaml:"followSymlinks"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" yaml:"-"`
}

func defaults() map[string]any {
	return map[string]any{
		ArtifactsDirKey:    artifacts.DefaultDir,
		OutDirKey:          artifacts.DefaultOutDir,
		OutContractNameKey: merger.DefaultContractName,
		IncludeKey:         []string{},
		ExcludeKey:         []string{},
		StrictKey:          false,
		FormatKey:          string(artifacts.DefaultFormat),
		CreateInterfaceKey: false,
		InterfacePragmaKey: solidity.DefaultPragma,
		ProvenanceKey:      false,
		ExtensionsKey:      artifacts.DefaultExtensions,
		FollowSymlinksKey:  false,
	}
}

// FlagKeys maps command line flag names to configuration keys.
var FlagKeys = map[string]string{
	"out-dir":          OutDirKey,
	"contract-name":    OutContractNameKey,
	"include":          IncludeKey,
	"exclude":          ExcludeKey,
	"strict":           StrictKey,
	"format":           FormatKey,
	"create-interface": CreateInterfaceKey,
	"interface-pragma": InterfacePragmaKey,
	"provenance":       ProvenanceKey,
	"extensions":       ExtensionsKey,
	"follow-symlinks":  FollowSymlinksKey,
}

type Options struct {
	// File is an explicitly requested config file; it must exist.
	File string
	// SearchDir is where the default diamond.{yaml,json,toml,ini} is looked up. A missing
	// default file is not an error.
	SearchDir string
	Flags     *pflag.FlagSet
	// Overrides take precedence over every other source.
	Overrides map[string]any
}

func newViper() *viper.Viper {
	codecs := viper.NewCodecRegistry()
	if err := codecs.RegisterCodec("ini", ini.Codec{}); err != nil {
		panic(err)
	}
	return viper.NewWithOptions(viper.WithCodecRegistry(codecs))
}

// Load resolves and validates the configuration. Every failure is a *types.ConfigError.
func Load(opts Options) (*Config, error) {
	v := newViper()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range FlagKeys {
			if flag := opts.Flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, types.NewConfigError(key, name, err)
				}
			}
		}
	}
	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(DefaultConfigName)
		if opts.SearchDir != "" {
			v.AddConfigPath(opts.SearchDir)
		} else {
			v.AddConfigPath(".")
		}
	}
	if err := v.ReadInConfig(); err != nil {
		if opts.File != "" || !errors.As(err, new(viper.ConfigFileNotFoundError)) {
			return nil, types.NewConfigError("config", opts.File, err)
		}
	}

	cfg := &Config{File: v.ConfigFileUsed()}
	if err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		decodeList,
		decodeFormat,
	))); err != nil {
		return nil, types.NewConfigError("config", cfg.File, err)
	}
	cfg.Filter.Include = filter.SplitList(cfg.Filter.Include)
	cfg.Filter.Exclude = filter.SplitList(cfg.Filter.Exclude)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeList splits env values such as DIAMOND_FILTER_INCLUDE=getA,f(uint256,bool).
func decodeList(f reflect.Type, t reflect.Type, data any) (any, error) {
	if f.Kind() == reflect.String && t == reflect.TypeOf([]string{}) {
		s, _ := data.(string)
		return filter.SplitList([]string{s}), nil
	}
	return data, nil
}

func decodeFormat(f reflect.Type, t reflect.Type, data any) (any, error) {
	if f.Kind() == reflect.String && t == reflect.TypeOf(artifacts.Format("")) {
		s, _ := data.(string)
		return artifacts.ParseFormat(s)
	}
	return data, nil
}

// Validate checks the values no decoder can reject, including the filter patterns.
func (c *Config) Validate() error {
	if c.ArtifactsDir == "" {
		return types.NewConfigError(ArtifactsDirKey, "", errors.New("must not be empty"))
	}
	if c.OutDir == "" {
		return types.NewConfigError(OutDirKey, "", errors.New("must not be empty"))
	}
	if !abi.IsIdentifier(c.OutContractName) {
		return types.NewConfigError(OutContractNameKey, c.OutContractName, errors.New("not a valid contract name"))
	}
	if _, err := artifacts.ParseFormat(string(c.Format)); err != nil {
		return types.NewConfigError(FormatKey, string(c.Format), err)
	}
	if len(c.Extensions) == 0 {
		return types.NewConfigError(ExtensionsKey, "", errors.New("at least one extension is required"))
	}
	_, err := c.NewFilter()
	return err
}

func (c *Config) FilterConfig() filter.Config {
	return filter.Config{Include: c.Filter.Include, Exclude: c.Filter.Exclude, Strict: c.Strict}
}

func (c *Config) NewFilter() (*filter.Filter, error) {
	return filter.New(c.FilterConfig())
}

func (c *Config) WriterConfig() artifacts.WriterConfig {
	return artifacts.WriterConfig{
		OutDir:          c.OutDir,
		ContractName:    c.OutContractName,
		Format:          c.Format,
		CreateInterface: c.CreateInterface,
		InterfacePragma: c.InterfacePragma,
		Provenance:      c.Provenance,
	}
}

// ReaderConfig never reads the files the writer produces, nor anything else in the
// output directory when it lies below the artifacts directory.
func (c *Config) ReaderConfig() artifacts.ReaderConfig {
	w := artifacts.NewWriter(c.WriterConfig(), logging.Nop())
	return artifacts.ReaderConfig{
		Dir:            c.ArtifactsDir,
		Extensions:     c.Extensions,
		FollowSymlinks: c.FollowSymlinks,
		Skip:           w.Outputs(),
		SkipDirs:       []string{w.OutDir()},
	}
}

// YAML renders the effective configuration.
func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}
	return string(data), nil
}

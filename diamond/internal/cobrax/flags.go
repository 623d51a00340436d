package cobrax

import (
	"github.com/spf13/pflag"
)

// AddConfigFlag adds a flag to the flag set to specify a config file.
func AddConfigFlag(fset *pflag.FlagSet, dst *string) {
	fset.StringVarP(dst, "config", "c", *dst, "config file (default: ./diamond.{yaml,json,toml,ini} if present)")
}

func AddLogLevelFlag(fset *pflag.FlagSet, dst *string) {
	AddCustomLogLevelFlag(fset, "log-level", "l", dst)
}

func AddCustomLogLevelFlag(fset *pflag.FlagSet, name, short string, dst *string) {
	if *dst == "" {
		*dst = "info"
	}
	fset.StringVarP(dst, name, short, *dst, "log level: trace|debug|info|warn|error")
}

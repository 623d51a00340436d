package common

import (
	"github.com/NilFoundation/diamond/diamond/internal/config"
	"github.com/spf13/cobra"
)

// Options are the persistent flags shared by all commands.
type Options struct {
	ConfigFile string
	Quiet      bool
}

// LoadConfig resolves the configuration for cmd. The optional positional argument
// overrides artifactsDir.
func (o *Options) LoadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	opts := config.Options{File: o.ConfigFile, Flags: cmd.Flags()}
	if len(args) > 0 {
		opts.Overrides = map[string]any{config.ArtifactsDirKey: args[0]}
	}
	return config.Load(opts)
}

// AddReaderFlags registers the artifact discovery flags.
func AddReaderFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("extensions", nil, "artifact file extensions to read (default json)")
	cmd.Flags().Bool("follow-symlinks", false, "follow symbolic links while searching for artifacts")
}

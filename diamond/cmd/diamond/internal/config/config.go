package config

import (
	"fmt"

	"github.com/NilFoundation/diamond/diamond/cmd/diamond/internal/common"
	"github.com/spf13/cobra"
)

func GetCommand(opts *common.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "config",
		Short:        "Inspect the configuration",
		SilenceUsage: true,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.LoadConfig(cmd, args)
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			if cfg.File != "" && !opts.Quiet {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", cfg.File)
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
		SilenceUsage: true,
	})
	return cmd
}

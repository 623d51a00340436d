package names

import (
	"fmt"

	"github.com/NilFoundation/diamond/diamond/cmd/diamond/internal/common"
	"github.com/NilFoundation/diamond/diamond/common/logging"
	"github.com/NilFoundation/diamond/diamond/internal/artifacts"
	"github.com/spf13/cobra"
)

func GetCommand(opts *common.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "names [artifactsDir]",
		Short: "List the fully qualified names of the discovered contracts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.LoadConfig(cmd, args)
			if err != nil {
				return err
			}
			reader, err := artifacts.NewReader(cfg.ReaderConfig(), logging.NewLogger("reader"))
			if err != nil {
				return err
			}
			names, err := reader.Names(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
		SilenceUsage: true,
	}
	common.AddReaderFlags(cmd)
	return cmd
}

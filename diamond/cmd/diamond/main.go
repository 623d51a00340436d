package main

import (
	"fmt"
	"os"

	"github.com/NilFoundation/diamond/diamond/cmd/diamond/internal/common"
	"github.com/NilFoundation/diamond/diamond/cmd/diamond/internal/config"
	"github.com/NilFoundation/diamond/diamond/cmd/diamond/internal/merge"
	"github.com/NilFoundation/diamond/diamond/cmd/diamond/internal/names"
	"github.com/NilFoundation/diamond/diamond/common/check"
	"github.com/NilFoundation/diamond/diamond/common/logging"
	"github.com/NilFoundation/diamond/diamond/internal/cobrax"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const appTitle = "=nil; diamond"

var logger = logging.NewLogger("root")

type RootCommand struct {
	baseCmd  *cobra.Command
	opts     common.Options
	logLevel string
	verbose  bool
}

func main() {
	newRootCommand().Execute()
}

func newRootCommand() *RootCommand {
	var rootCmd *RootCommand

	rootCmd = &RootCommand{
		baseCmd: &cobra.Command{
			Use:   "diamond",
			Short: "Synthesize one artifact with the combined ABI of EIP-2535 diamond facets",
			PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
				switch {
				case rootCmd.opts.Quiet:
					zerolog.SetGlobalLevel(zerolog.Disabled)
				case !rootCmd.verbose:
					// Warnings are surfaced even without -v.
					zerolog.SetGlobalLevel(zerolog.WarnLevel)
				default:
					if err := logging.TrySetupGlobalLevel(rootCmd.logLevel); err != nil {
						return err
					}
				}
				logging.ApplyComponentsFilterEnv()
				return nil
			},
			SilenceUsage:  true,
			SilenceErrors: true,
		},
	}

	flags := rootCmd.baseCmd.PersistentFlags()
	cobrax.AddConfigFlag(flags, &rootCmd.opts.ConfigFile)
	cobrax.AddLogLevelFlag(flags, &rootCmd.logLevel)
	flags.BoolVarP(&rootCmd.opts.Quiet, "quiet", "q", false, "Quiet mode (print only the written paths)")
	flags.BoolVarP(&rootCmd.verbose, "verbose", "v", false, "Verbose mode (print logs up to --log-level)")
	check.LogAndPanicIfErrf(
		rootCmd.baseCmd.MarkPersistentFlagFilename("config", "yaml", "yml", "json", "toml", "ini"),
		logger, "failed to register completion for --config")

	rootCmd.registerSubCommands()
	return rootCmd
}

// registerSubCommands adds all subcommands to the root command
func (rc *RootCommand) registerSubCommands() {
	rc.baseCmd.AddCommand(
		merge.GetCommand(&rc.opts),
		names.GetCommand(&rc.opts),
		config.GetCommand(&rc.opts),
		cobrax.VersionCmd(appTitle),
	)
}

// Execute runs the root command and handles any errors
func (rc *RootCommand) Execute() {
	if err := rc.baseCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		os.Exit(1)
	}
}

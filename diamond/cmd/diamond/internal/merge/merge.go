package merge

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/NilFoundation/diamond/diamond/cmd/diamond/internal/common"
	"github.com/NilFoundation/diamond/diamond/common/check"
	"github.com/NilFoundation/diamond/diamond/common/logging"
	"github.com/NilFoundation/diamond/diamond/internal/artifacts"
	"github.com/NilFoundation/diamond/diamond/internal/config"
	"github.com/NilFoundation/diamond/diamond/internal/merger"
	"github.com/NilFoundation/diamond/diamond/internal/watch"
	"github.com/spf13/cobra"
)

var logger = logging.NewLogger("merge")

func GetCommand(opts *common.Options) *cobra.Command {
	var format artifacts.Format
	var watchMode bool

	cmd := &cobra.Command{
		Use:   "merge [artifactsDir]",
		Short: "Merge the ABIs of the compiled facets into one diamond artifact",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.LoadConfig(cmd, args)
			if err != nil {
				return err
			}
			return run(cmd, cfg, watchMode, opts.Quiet)
		},
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.StringP("out-dir", "o", artifacts.DefaultOutDir, "output directory")
	flags.String("contract-name", merger.DefaultContractName, "name of the synthesized contract")
	flags.StringArrayP("include", "i", nil, "facets or members to include: name, source:Contract or [kind:]name(types); repeatable, comma separated")
	flags.StringArrayP("exclude", "e", nil, "facets or members to exclude, wins over --include; repeatable, comma separated")
	flags.Bool("strict", false, "fail on conflicting declarations instead of keeping the first one")
	flags.Var(&format, "format", "artifact format: hardhat|foundry (default hardhat)")
	flags.Bool("create-interface", false, "also write a Solidity interface I<contract-name>.sol")
	flags.String("interface-pragma", "", "pragma of the generated interface (default ^0.8.0)")
	flags.Bool("provenance", false, "also write <contract-name>.provenance.json")
	flags.BoolVarP(&watchMode, "watch", "w", false, "merge again whenever the artifacts change")
	common.AddReaderFlags(cmd)

	check.PanicIfErr(cmd.MarkFlagDirname("out-dir"))

	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config, watchMode, quiet bool) error {
	f, err := cfg.NewFilter()
	if err != nil {
		return err
	}
	reader, err := artifacts.NewReader(cfg.ReaderConfig(), logging.NewLogger("reader"))
	if err != nil {
		return err
	}
	writer := artifacts.NewWriter(cfg.WriterConfig(), logging.NewLogger("writer"))

	build := func(ctx context.Context) error {
		facets, err := reader.Read(ctx)
		if err != nil {
			return err
		}
		res, err := merger.Merge(facets, f, merger.WithContractName(cfg.OutContractName))
		if err != nil {
			return err
		}
		for _, c := range res.Conflicts {
			logger.Warn().
				Str(logging.FieldSignature, string(c.Signature)).
				Str(logging.FieldFacet, c.Other).
				Strs(logging.FieldReasons, c.Reasons).
				Msgf("Declaration differs from %s, keeping the first one", c.First)
		}
		for _, w := range res.Warnings {
			if w.Kind == merger.WarningConflict {
				continue
			}
			logger.Warn().Str(logging.FieldEvent, string(w.Kind)).Msg(w.Message)
		}

		written, err := writer.Write(res.Artifact)
		if err != nil {
			return err
		}
		logger.Info().
			Str(logging.FieldContract, res.Artifact.ContractName).
			Str(logging.FieldFormat, cfg.Format.String()).
			Str(logging.FieldOutDir, writer.OutDir()).
			Int(logging.FieldFacets, len(res.Facets)).
			Int(logging.FieldEntries, len(res.Artifact.Members)).
			Int(logging.FieldConflicts, len(res.Conflicts)).
			Int(logging.FieldWarnings, len(res.Warnings)).
			Msg("Diamond artifact written")

		common.PrintReport(cmd.OutOrStdout(), res, written, quiet)
		return nil
	}

	if !watchMode {
		return build(cmd.Context())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// In watch mode a broken build is reported and fixed by the next change.
	if err := build(ctx); err != nil {
		logger.Error().Err(err).Msg("Initial merge failed")
	}
	return watch.Run(ctx, watch.Config{
		Dir:    reader.Dir(),
		Ignore: append(writer.Outputs(), writer.OutDir()),
	}, build, logging.NewLogger("watch"))
}

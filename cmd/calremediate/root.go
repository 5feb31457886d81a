package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/corbaltcode/calendar-remediation/core"
	"github.com/corbaltcode/calendar-remediation/logging"
)

type globalFlags struct {
	configFile string
	provider   string
	logLevel   string
	pageSize   int
}

func addQueryFlags(cmd *cobra.Command, q *core.Query) {
	cmd.Flags().StringVarP(&q.Mailbox, "mailbox", "m", "", "Mailbox to remediate (user@domain.com)")
	cmd.Flags().StringVar(&q.Start, "start", "", "First day of the range (yyyy-mm-dd)")
	cmd.Flags().StringVar(&q.End, "end", "", "Last day of the range, inclusive (yyyy-mm-dd)")
	cmd.Flags().StringVar(&q.Organizer, "organizer", "", "Only events organized by this address")
	cmd.Flags().StringVar(&q.SubjectContains, "subject", "", "Only events whose subject contains this text (case-insensitive)")
}

// setup loads configuration, applies flag overrides and builds the provider.
func (g *globalFlags) setup(cmd *cobra.Command) (core.Provider, *slog.Logger, error) {
	var opts []core.ConfigOption
	if g.configFile != "" {
		opts = append(opts, core.WithConfigFile(g.configFile))
	}
	cfg, err := core.NewConfigLoader(opts...).Load()
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Provider = g.provider
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if flags.Changed("page-size") {
		cfg.PageSize = g.pageSize
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	p, err := core.NewProvider(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("configuration: %w", err)
	}
	return p, logger, nil
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	var q core.Query

	cmd := &cobra.Command{
		Use:   "calremediate",
		Short: "Find and delete unwanted calendar invites in a mailbox",
		Long: `calremediate lists the calendar events of a mailbox between two dates,
optionally filtered by organizer and subject, and deletes the one you pick
after confirmation. Picking an occurrence of a recurring meeting deletes
the whole series.

Values not given as flags are prompted for.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, logger, err := g.setup(cmd)
			if err != nil {
				return err
			}
			s := core.NewSession(p, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
			_, err = s.Run(cmd.Context(), q)
			return err
		},
	}
	cmd.SetVersionTemplate(`{{printf "calremediate version %s\n" .Version}}`)

	pf := cmd.PersistentFlags()
	pf.StringVarP(&g.configFile, "config", "c", "", "YAML config file (default ./config.yaml if present)")
	pf.StringVar(&g.provider, "provider", core.ProviderGraph, "Calendar provider: graph or google")
	pf.StringVar(&g.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	pf.IntVar(&g.pageSize, "page-size", core.DefaultPageSize, "Events requested in the single list call")

	addQueryFlags(cmd, &q)

	cmd.AddCommand(newListCmd(g))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

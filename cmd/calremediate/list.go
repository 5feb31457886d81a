package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corbaltcode/calendar-remediation/core"
)

func newListCmd(g *globalFlags) *cobra.Command {
	var q core.Query
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List matching calendar events without deleting anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			if q.Mailbox == "" || q.Start == "" || q.End == "" {
				return fmt.Errorf("--mailbox, --start and --end are required")
			}
			p, logger, err := g.setup(cmd)
			if err != nil {
				return err
			}
			meetings, err := core.Fetch(cmd.Context(), p, q, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				pretty, err := core.PrettyJSON(meetings)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, pretty)
				return nil
			}
			if len(meetings) == 0 {
				fmt.Fprintln(out, "No calendar events found matching your criteria.")
				return nil
			}
			core.PrintMeetings(out, meetings)
			return nil
		},
	}

	addQueryFlags(cmd, &q)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the listing as JSON")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "calremediate version %s\n", version)
		},
	}
}

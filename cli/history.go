package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ipso-client-coap/history"
	"ipso-client-coap/lwm2m"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <object/instance/resource>",
		Short: "List recorded values of a resource",
		Long:  `Read the most recent values of a resource from the SQLite history at history.path.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := lwm2m.ParsePath(args[0])
			if err != nil {
				return err
			}
			if limit < 1 {
				return fmt.Errorf("limit must be at least 1, got %d", limit)
			}
			cfg, logger, err := rootOpts.load()
			if err != nil {
				return err
			}

			store, err := history.Open(cfg.History.Path, logger.Named("history"))
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), path, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tINSTANCE\tTYPE\tVALUE")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", e.Time.UTC().Format(time.RFC3339Nano), e.ResourceInstance, e.Value.Type(), e.Value)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of values to list")

	return cmd
}

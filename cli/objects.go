package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ipso-client-coap/ipso"
	"ipso-client-coap/lwm2m"
)

// NewObjectsCommand creates the objects command.
func NewObjectsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "objects",
		Short: "Print the descriptor tables of the configured objects",
		Long: `Build and register the configured object catalogue against an
in-process runtime and print each object's resource table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := rootOpts.load()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // stderr sync fails on some platforms

			cat, err := ipso.NewCatalog(cfg.Objects, nil, logger.Named("catalog"))
			if err != nil {
				return err
			}
			client := lwm2m.NewClient(lwm2m.ClientOptions{
				MaxObjects:  cfg.Runtime.MaxObjects,
				NotifyQueue: cfg.Runtime.NotifyQueue,
				Logger:      logger.Named("runtime"),
			})
			if err := cat.Register(client); err != nil {
				return err
			}
			return printObjects(cmd.OutOrStdout(), cat.Objects(), client)
		},
	}

	return cmd
}

func printObjects(out io.Writer, objects []*lwm2m.Object, client *lwm2m.Client) error {
	for i, obj := range objects {
		def := obj.Definition()
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%d %s (instances %d..%d, created %s)\n",
			def.ID, def.Name, def.MinInstances, def.MaxInstances, instanceList(client.Instances(def.ID)))

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  ID\tNAME\tTYPE\tACCESS\tINSTANCES\tBINDING\tDEFAULT")
		for _, r := range def.Resources {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%d..%d\t%s\t%s\n",
				r.ID, r.Name, r.Type, r.Access, r.MinInstances, r.MaxInstances, r.Binding, r.Default)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func instanceList(ids []lwm2m.InstanceID) string {
	if len(ids) == 0 {
		return "none"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ",")
}

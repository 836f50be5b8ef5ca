package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func schemaCmd(c *cli) *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create the events and snapshots tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(ctx context.Context, a *app) error {
				schema, ok := a.store.(createsSchema)
				if !ok {
					return fmt.Errorf("%w: %s", ErrSchemaNotSupported, a.cfg.Driver)
				}

				if printOnly {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), schema.Schema())
					return err
				}

				if err := schema.CreateSchema(ctx); err != nil {
					return err
				}

				_, err := fmt.Fprintf(cmd.OutOrStdout(), "schema created: %s, %s\n", a.cfg.TableName, a.cfg.SnapshotTableName)

				return err
			})
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "print the DDL instead of executing it")

	return cmd
}

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/fmodel-go/eventstore"
	numbers "github.com/AntonStoeckl/fmodel-go/example/numbers/shell"
	fmodel "github.com/AntonStoeckl/fmodel-go/shell"
)

func exportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "export <number-id>",
		Short: "Print the events of a number as CloudEvents, one JSON document per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, a *app) error {
				ctx = eventstore.WithEventualConsistency(ctx)

				storableEvents, _, err := a.store.Query(ctx, numbers.BuildEventFilter(args[0]))
				if err != nil {
					return err
				}

				for _, storableEvent := range storableEvents {
					event, err := fmodel.ToCloudEvent(storableEvent, a.cfg.CloudEventsSource)
					if err != nil {
						return err
					}

					out, err := event.MarshalJSON()
					if err != nil {
						return err
					}

					if _, err = fmt.Fprintln(cmd.OutOrStdout(), string(out)); err != nil {
						return err
					}
				}

				return nil
			})
		},
	}
}

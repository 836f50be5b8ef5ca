package commands

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/fmodel-go/eventstore"
	"github.com/AntonStoeckl/fmodel-go/example/numbers/core"
)

type numberReport struct {
	NumberID       string                           `json:"number_id"`
	Value          int                              `json:"value"`
	Odd            int                              `json:"odd"`
	Even           int                              `json:"even"`
	SequenceNumber eventstore.MaxSequenceNumberUint `json:"sequence_number"`
	FromSnapshot   bool                             `json:"from_snapshot"`
}

func showCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <number-id>",
		Short: "Print a number with its odd and even totals as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, a *app) error {
				projection, err := a.service.Show(ctx, args[0])
				if err != nil {
					return err
				}

				report := numberReport{
					NumberID:       args[0],
					Value:          projection.State.First.OrElse(core.NumberState{}).Value,
					Odd:            projection.State.Second.First.OddState,
					Even:           projection.State.Second.Second.EvenState,
					SequenceNumber: projection.SequenceNumber,
					FromSnapshot:   projection.FromSnapshot,
				}

				out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))

				return err
			})
		},
	}
}

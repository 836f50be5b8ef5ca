package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/fmodel-go/example/numbers/core"
)

const (
	KindNumber = "number"
	KindOdd    = "odd"
	KindEven   = "even"
)

var (
	ErrUnknownKind  = errors.New("unknown kind")
	ErrInvalidValue = errors.New("value must be an integer")
)

type buildCommand func(numberID string, value int, kind string, a *app) (core.NumberCommand, error)

func addCmd(c *cli) *cobra.Command {
	return handleCmd(c, "add <number-id> <value>", "Add a value to a number", buildAdd)
}

func multiplyCmd(c *cli) *cobra.Command {
	return handleCmd(c, "multiply <number-id> <multiplier>", "Multiply a number", buildMultiply)
}

func handleCmd(c *cli, use string, short string, build buildCommand) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Join(ErrInvalidValue, err)
			}

			return c.run(cmd, func(ctx context.Context, a *app) error {
				command, err := build(args[0], value, kind, a)
				if err != nil {
					return err
				}

				result, err := a.service.Handle(ctx, command)
				if err != nil {
					return err
				}

				if result.Idempotent {
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: nothing to append\n", args[0])
					return err
				}

				for _, event := range result.Events {
					if _, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], event.EventType()); err != nil {
						return err
					}
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", KindNumber, "number, odd or even")

	return cmd
}

func buildAdd(numberID string, value int, kind string, a *app) (core.NumberCommand, error) {
	occurredAt := a.now()

	switch kind {
	case KindNumber:
		return core.AddNumber{NumberID: numberID, Number: value, OccurredAt: occurredAt}, nil
	case KindOdd:
		return core.AddOddNumber{NumberID: numberID, Value: value, OccurredAt: occurredAt}, nil
	case KindEven:
		return core.AddEvenNumber{NumberID: numberID, Value: value, OccurredAt: occurredAt}, nil
	default:
		return nil, errors.Join(ErrUnknownKind, fmt.Errorf("%q", kind))
	}
}

func buildMultiply(numberID string, multiplier int, kind string, a *app) (core.NumberCommand, error) {
	occurredAt := a.now()

	switch kind {
	case KindNumber:
		return core.MultiplyNumber{NumberID: numberID, Multiplier: multiplier, OccurredAt: occurredAt}, nil
	case KindOdd:
		return core.MultiplyOddNumber{NumberID: numberID, Multiplier: multiplier, OccurredAt: occurredAt}, nil
	case KindEven:
		return core.MultiplyEvenNumber{NumberID: numberID, Multiplier: multiplier, OccurredAt: occurredAt}, nil
	default:
		return nil, errors.Join(ErrUnknownKind, fmt.Errorf("%q", kind))
	}
}

package shell

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/fmodel-go/domain"
	"github.com/AntonStoeckl/fmodel-go/example/numbers/core"
	fmodel "github.com/AntonStoeckl/fmodel-go/shell"
)

// ProjectionTypeNumbers is the snapshot key of the numbers view.
const ProjectionTypeNumbers = "numbers_view_v1"

var (
	ErrEmptyNumberID = errors.New("number id must not be empty")
	ErrNilCommand    = errors.New("command must not be nil")
)

type (
	AllNumbersAggregate = fmodel.EventSourcedAggregate[core.NumberCommand, domain.Option[core.AllNumbersState], core.NumberEvent]
	NumbersView         = fmodel.MaterializedView[core.NumbersViewState, core.NumberEvent]
)

// Service handles number commands and projects numbers on one event store.
type Service struct {
	aggregate *AllNumbersAggregate
	view      *NumbersView
}

// NewService wires AllNumbersDecider and NumbersView to eventStore.
func NewService(
	eventStore fmodel.QueriesAndAppendsEvents,
	aggregateOptions []fmodel.AggregateOption,
	viewOptions []fmodel.ViewOption,
) (*Service, error) {

	codec := NewEventCodec()

	aggregate, err := fmodel.NewEventSourcedAggregate[core.NumberCommand, domain.Option[core.AllNumbersState], core.NumberEvent](
		core.AllNumbersDecider(),
		eventStore,
		codec,
		FilterForCommand,
		aggregateOptions...,
	)
	if err != nil {
		return nil, err
	}

	view, err := fmodel.NewMaterializedView[core.NumbersViewState, core.NumberEvent](
		core.NumbersView(),
		eventStore,
		codec,
		ProjectionTypeNumbers,
		viewOptions...,
	)
	if err != nil {
		return nil, err
	}

	return &Service{aggregate: aggregate, view: view}, nil
}

// Handle decides command on the stream of its number and appends the result.
func (s *Service) Handle(ctx context.Context, command core.NumberCommand) (fmodel.HandlerResult[core.NumberEvent], error) {
	if command == nil {
		return fmodel.HandlerResult[core.NumberEvent]{}, ErrNilCommand
	}

	if command.StreamID() == "" {
		return fmodel.HandlerResult[core.NumberEvent]{}, ErrEmptyNumberID
	}

	return s.aggregate.Handle(ctx, command)
}

// Show projects NumbersView over every event of numberID.
func (s *Service) Show(ctx context.Context, numberID string) (fmodel.Projection[core.NumbersViewState], error) {
	if numberID == "" {
		return fmodel.Projection[core.NumbersViewState]{}, ErrEmptyNumberID
	}

	return s.view.Project(ctx, BuildEventFilter(numberID))
}

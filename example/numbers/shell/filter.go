package shell

import (
	"github.com/AntonStoeckl/fmodel-go/eventstore"
	"github.com/AntonStoeckl/fmodel-go/example/numbers/core"
)

// PredicateKeyNumberID is the payload field all number events carry.
const PredicateKeyNumberID = "NumberID"

// BuildEventFilter selects every event of one number.
func BuildEventFilter(numberID string) eventstore.Filter {
	eventTypes := core.NumberEventTypes()

	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(eventTypes[0], eventTypes[1:]...).
		AndAnyPredicateOf(eventstore.P(PredicateKeyNumberID, numberID)).
		Finalize()
}

// FilterForCommand is the dynamic stream a command is decided on.
func FilterForCommand(command core.NumberCommand) eventstore.Filter {
	return BuildEventFilter(command.StreamID())
}

package shell

import (
	"github.com/AntonStoeckl/fmodel-go/example/numbers/core"
	fmodel "github.com/AntonStoeckl/fmodel-go/shell"
)

// NewEventCodec returns a codec that knows every event of the numbers domain.
func NewEventCodec() *fmodel.EventCodec[core.NumberEvent] {
	codec := fmodel.NewEventCodec[core.NumberEvent]()

	fmodel.MustRegister[core.NumberEvent, core.NumberAdded](codec)
	fmodel.MustRegister[core.NumberEvent, core.NumberMultiplied](codec)
	fmodel.MustRegister[core.NumberEvent, core.OddNumberAdded](codec)
	fmodel.MustRegister[core.NumberEvent, core.OddNumberMultiplied](codec)
	fmodel.MustRegister[core.NumberEvent, core.EvenNumberAdded](codec)
	fmodel.MustRegister[core.NumberEvent, core.EvenNumberMultiplied](codec)

	return codec
}

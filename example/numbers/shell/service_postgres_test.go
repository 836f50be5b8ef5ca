package shell_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/fmodel-go/domain"
	"github.com/AntonStoeckl/fmodel-go/example/numbers/core"
	"github.com/AntonStoeckl/fmodel-go/example/numbers/shell"
	"github.com/AntonStoeckl/fmodel-go/testutil/pgtest"
)

func Test_Integration_Service_On_Postgres(t *testing.T) {
	// arrange
	service, err := shell.NewService(pgtest.NewEventStore(t), nil, nil)
	require.NoError(t, err)
	handleAll(t, service,
		core.AddNumber{NumberID: "n-1", Number: 4, OccurredAt: occurredAt},
		core.AddEvenNumber{NumberID: "n-1", Value: 2, OccurredAt: occurredAt},
	)

	// act
	first, firstErr := service.Show(context.Background(), "n-1")
	handleAll(t, service, core.MultiplyNumber{NumberID: "n-1", Multiplier: 3, OccurredAt: occurredAt})
	second, secondErr := service.Show(context.Background(), "n-1")

	// assert
	require.NoError(t, firstErr)
	require.NoError(t, secondErr)
	assert.False(t, first.FromSnapshot)
	assert.True(t, second.FromSnapshot)
	assert.Equal(t, domain.Some(core.NumberState{Value: 12}), second.State.First)
	assert.Equal(t, core.EvenViewState{EvenState: 2}, second.State.Second.Second)
}

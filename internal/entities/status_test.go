package entities_test

import (
	"testing"

	"github.com/shubham-1706-g/Class2Canteen/internal/entities"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	all := []entities.Status{
		entities.StatusPending,
		entities.StatusReady,
		entities.StatusRejected,
		entities.StatusCompleted,
	}

	allowed := map[[2]entities.Status]bool{
		{entities.StatusPending, entities.StatusReady}:    true,
		{entities.StatusPending, entities.StatusRejected}: true,
		{entities.StatusReady, entities.StatusCompleted}:  true,
	}

	for _, from := range all {
		for _, to := range all {
			got := entities.CanTransition(from, to)
			assert.Equal(t, allowed[[2]entities.Status{from, to}], got, "%s -> %s", from, to)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, entities.StatusPending.Terminal())
	assert.False(t, entities.StatusReady.Terminal())
	assert.True(t, entities.StatusRejected.Terminal())
	assert.True(t, entities.StatusCompleted.Terminal())
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		want  entities.Status
		err   error
	}{
		{name: "ready", input: "Ready", want: entities.StatusReady},
		{name: "rejected", input: "Rejected", want: entities.StatusRejected},
		{name: "completed", input: "Completed", want: entities.StatusCompleted},
		{name: "pending is never a target", input: "Pending", err: entities.ErrInvalidStatus},
		{name: "case sensitive", input: "ready", err: entities.ErrInvalidStatus},
		{name: "unknown", input: "Shipped", err: entities.ErrInvalidStatus},
		{name: "empty", input: "", err: entities.ErrInvalidStatus},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := entities.ParseStatus(tc.input)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

package appointment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusConfirmed, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusCompleted, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tc := range cases {
		a := &Appointment{Status: tc.from}
		assert.Equal(t, tc.allowed, a.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestConfirm(t *testing.T) {
	a := &Appointment{Status: StatusPending}

	require.NoError(t, a.Confirm())
	assert.Equal(t, StatusConfirmed, a.Status)
	require.NotNil(t, a.ConfirmedAt)

	// Confirming twice is an invalid transition.
	assert.ErrorIs(t, a.Confirm(), ErrInvalidStatusTransition)
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	a := &Appointment{Status: StatusPending}
	assert.ErrorIs(t, a.Complete(), ErrInvalidStatusTransition)

	require.NoError(t, a.Confirm())
	require.NoError(t, a.Complete())
	assert.Equal(t, StatusCompleted, a.Status)
	assert.NotNil(t, a.CompletedAt)
}

func TestCancelFromPendingAndConfirmed(t *testing.T) {
	by := uuid.New()

	pending := &Appointment{Status: StatusPending}
	require.NoError(t, pending.Cancel("patient request", by))
	assert.Equal(t, StatusCancelled, pending.Status)
	assert.Equal(t, "patient request", pending.CancellationReason)
	require.NotNil(t, pending.CancelledBy)
	assert.Equal(t, by, *pending.CancelledBy)
	assert.NotNil(t, pending.CancelledAt)

	confirmed := &Appointment{Status: StatusConfirmed}
	require.NoError(t, confirmed.Cancel("doctor unavailable", by))
	assert.Equal(t, StatusCancelled, confirmed.Status)
}

func TestTerminalStatesRejectAllTransitions(t *testing.T) {
	for _, status := range []Status{StatusCompleted, StatusCancelled} {
		a := &Appointment{Status: status}

		assert.ErrorIs(t, a.Confirm(), ErrInvalidStatusTransition)
		assert.ErrorIs(t, a.Complete(), ErrInvalidStatusTransition)
		assert.ErrorIs(t, a.Cancel("too late", uuid.New()), ErrInvalidStatusTransition)

		// The record is untouched after a rejected transition.
		assert.Equal(t, status, a.Status)
		assert.Nil(t, a.CancelledAt)
		assert.Empty(t, a.CancellationReason)
	}
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())

	assert.True(t, StatusPending.IsValid())
	assert.False(t, Status("NO_SHOW").IsValid())
}

func TestVideoRoomID(t *testing.T) {
	id := uuid.New()
	a := &Appointment{ID: id}
	assert.Equal(t, "consult-"+id.String(), a.VideoRoomID())
}

func TestSlotDateNormalization(t *testing.T) {
	a := &Appointment{
		Date: time.Date(2026, time.April, 7, 18, 45, 0, 0, time.UTC),
	}
	assert.Equal(t, time.Date(2026, time.April, 7, 0, 0, 0, 0, time.UTC), a.SlotDate())
	assert.Equal(t, "2026-04-07", a.DateKey())
}

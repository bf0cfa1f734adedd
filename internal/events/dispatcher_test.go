package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	failure := errors.New("handler failed")

	var calls []string
	d.Subscribe(EventSubscriptionCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "first")
		return failure
	})
	d.Subscribe(EventSubscriptionCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventCredentialIssued, func(_ context.Context, e Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), New(EventSubscriptionCreated, "123", nil))
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestNewStampsEvent(t *testing.T) {
	e := New(EventCredentialRejected, "", CredentialRejectedPayload{Reason: "origin_mismatch"})
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, EventCredentialRejected, e.Type)
}

package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	ev, err := NewEvent(SaleRecorded, map[string]interface{}{"productId": "p1", "quantity": 3})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, SaleRecorded, ev.EventType)
	assert.False(t, ev.Timestamp.IsZero())

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, "p1", payload["productId"])
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Publish(context.Background(), OrderCreated, "o1", map[string]string{"id": "o1"})
	r.Publish(context.Background(), OrderReceived, "o1", map[string]string{"id": "o1"})

	assert.Equal(t, []string{OrderCreated, OrderReceived}, r.Types())
	assert.Len(t, r.Events(), 2)

	NewNop().Publish(context.Background(), LoanCreated, "l1", nil)
}

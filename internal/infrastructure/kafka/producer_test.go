package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/apparel-storefront/internal/events"
)

func TestEncodeEvent(t *testing.T) {
	value, err := EncodeEvent("instance-a", events.ProductUpdated, "p-1", map[string]string{"id": "p-1"})
	require.NoError(t, err)

	var evt events.Event
	require.NoError(t, json.Unmarshal(value, &evt))

	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, events.ProductUpdated, evt.Type)
	assert.Equal(t, "instance-a", evt.Source)
	assert.Equal(t, "p-1", evt.Key)
	assert.JSONEq(t, `{"id":"p-1"}`, string(evt.Data))
	assert.False(t, evt.OccurredAt.IsZero())
}

func TestEncodeEvent_UnencodableData(t *testing.T) {
	_, err := EncodeEvent("a", events.ProductCreated, "k", make(chan int))
	assert.Error(t, err)
}

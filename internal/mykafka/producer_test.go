package mykafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	t.Parallel()

	msg, err := encode(TopicOrderEvents, "order-1", map[string]any{"type": "order_created", "total": "250"})
	require.NoError(t, err)

	assert.Equal(t, "order_events", msg.Topic)
	assert.Equal(t, []byte("order-1"), msg.Key)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "order_created", got["type"])
}

func TestEncode_Unmarshalable(t *testing.T) {
	t.Parallel()

	_, err := encode(TopicUserEvents, "k", map[string]any{"bad": func() {}})
	assert.Error(t, err)
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	t.Parallel()

	_, err := NewProducer(nil)
	assert.Error(t, err)

	p, err := NewProducer([]string{"localhost:9092"})
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestNop(t *testing.T) {
	t.Parallel()

	var p Publisher = Nop{}
	assert.NoError(t, p.PublishEvent(context.Background(), TopicProductEvents, "k", nil))
}

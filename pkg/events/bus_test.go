package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/require"
)

func TestBus_SingleHandlerPreservesPublishOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus, err := NewInMemoryBus()
	require.NoError(t, err)

	var mu sync.Mutex
	var got []string
	bus.AddHandler("order", "test.topic", func(msg *message.Message) error {
		defer msg.Ack()
		var env Envelope
		require.NoError(t, json.Unmarshal(msg.Payload, &env))
		var line string
		require.NoError(t, json.Unmarshal(env.Payload, &line))
		mu.Lock()
		got = append(got, line)
		mu.Unlock()
		return nil
	})

	go func() { _ = bus.Run(ctx) }()
	select {
	case <-bus.Router.Running():
	case <-time.After(2 * time.Second):
		t.Fatal("router never started")
	}

	var want []string
	for i := 0; i < 100; i++ {
		line := fmt.Sprintf("line-%03d", i)
		want = append(want, line)
		require.NoError(t, bus.Publish("test.topic", "test.line", line))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == len(want)
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, want, got)
}

func TestEnvelope_RequiresType(t *testing.T) {
	_, err := NewEnvelope("", nil)
	require.Error(t, err)
}

func TestEnvelope_RoundTrip(t *testing.T) {
	env, err := NewEnvelope("session.snapshot", SessionSnapshotEvent{Status: "running", BuildID: "b1", Lines: []string{"x"}})
	require.NoError(t, err)

	b, err := env.MarshalJSONBytes()
	require.NoError(t, err)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Equal(t, "session.snapshot", decoded.Type)

	var snap SessionSnapshotEvent
	require.NoError(t, json.Unmarshal(decoded.Payload, &snap))
	require.Equal(t, "b1", snap.BuildID)
	require.Equal(t, []string{"x"}, snap.Lines)
}

package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freelance-hub/internal/pkg/logger"
)

func TestHub_BroadcastReachesRegisteredClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(logger.NewTestLogger(t))
	go hub.Run(ctx)

	a := &Client{hub: hub, send: make(chan []byte, 4)}
	b := &Client{hub: hub, send: make(chan []byte, 4)}
	hub.Register(a)
	hub.Register(b)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	NewNotifier(hub).ProfileAdded("abc")

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			var evt Event
			require.NoError(t, json.Unmarshal(msg, &evt))
			assert.Equal(t, EventProfileAdded, evt.Type)
			assert.Equal(t, "abc", evt.ID)
			assert.NotEmpty(t, evt.Timestamp)
		case <-time.After(time.Second):
			t.Fatal("no message delivered")
		}
	}

	hub.Unregister(a)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	_, open := <-a.send
	assert.False(t, open)
}

func TestHub_CancelClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(c)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_RegisterAndUnregisterAfterShutdownDoNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	held := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(held)
	cancel()
	<-done

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			hub.Unregister(held)
		}
		late := &Client{hub: hub, send: make(chan []byte, 1)}
		hub.Register(late)
		_, open := <-late.send
		assert.False(t, open, "a client registered after shutdown is closed at once")
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Register or Unregister blocked after shutdown")
	}
}

func TestNotifier_NilSafe(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() { n.TaxonomyReloaded(3) })
	assert.NotPanics(t, func() { NewNotifier(nil).TaxonomyUpdated("update", "industry", "tech", "", 1) })
}

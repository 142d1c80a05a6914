package ws

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForRecent(t *testing.T, h *Hub, n int) []DropEvent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if recent := h.Recent(); len(recent) >= n {
			return recent
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("hub never recorded %d events", n)
	return nil
}

func TestBroadcastDropEntersReplayBuffer(t *testing.T) {
	h := NewHub()
	go h.Run()

	h.BroadcastDrop(1, "alice", "Chroma", "AK-47 | Redline", "classified", 1200)

	recent := waitForRecent(t, h, 1)
	ev := recent[0]
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "alice", ev.Username)
	assert.Equal(t, "AK-47 | Redline", ev.SkinName)
	assert.Equal(t, int64(1200), ev.Value)
}

func TestReplayBufferCapped(t *testing.T) {
	h := NewHub()
	go h.Run()

	total := backlogSize + 15
	for i := 0; i < total; i++ {
		h.BroadcastDrop(1, "bob", "Chroma", fmt.Sprintf("skin-%d", i), "mil-spec", 10)
	}

	last := fmt.Sprintf("skin-%d", total-1)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		recent := h.Recent()
		if len(recent) == backlogSize && recent[len(recent)-1].SkinName == last {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	recent := h.Recent()
	require.Len(t, recent, backlogSize)
	assert.Equal(t, last, recent[len(recent)-1].SkinName)
}

func TestRegisteredClientReceivesBroadcast(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := &Client{hub: h, send: make(chan []byte, 8)}
	h.register <- c
	h.BroadcastDrop(2, "carol", "Spectrum", "Karambit | Fade", "gold", 90000)

	select {
	case frame := <-c.send:
		var msg Message
		require.NoError(t, json.Unmarshal(frame, &msg))
		assert.Equal(t, MsgDrop, msg.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("client never received the drop frame")
	}
}

func TestNewClientGetsBacklog(t *testing.T) {
	h := NewHub()
	go h.Run()

	h.BroadcastDrop(3, "dave", "Gamma", "M4A4 | Howl", "contraband", 400000)
	waitForRecent(t, h, 1)

	c := &Client{hub: h, send: make(chan []byte, 8)}
	h.register <- c

	select {
	case frame := <-c.send:
		var msg Message
		require.NoError(t, json.Unmarshal(frame, &msg))
		assert.Equal(t, MsgBacklog, msg.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("client never received the backlog frame")
	}
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := &Client{hub: h, send: make(chan []byte, 8)}
	h.register <- c
	h.unregister <- c

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("client was never unregistered")
}

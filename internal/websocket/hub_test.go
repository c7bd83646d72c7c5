// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package websocket

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/tomtom215/worldsense/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "disabled",
		Format: "json",
		Output: io.Discard,
	})
}

// startHub runs a hub until the test ends.
func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.RunWithContext(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-errCh
	})
	return hub
}

// createTestClient creates a client without a connection.
func createTestClient(hub *Hub, topic string) *Client {
	return &Client{id: clientIDCounter.Add(1), topic: topic, hub: hub, send: make(chan Message, 256)}
}

func waitForCount(t *testing.T, hub *Hub, want int) {
	t.Helper()
	for i := 0; i < 50; i++ {
		if hub.GetClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", hub.GetClientCount(), want)
}

func receive(t *testing.T, c *Client) (Message, bool) {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		return msg, ok
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return Message{}, false
	}
}

func TestHub_PublishRoutesByTopic(t *testing.T) {
	hub := startHub(t)
	a1 := createTestClient(hub, "session-a")
	a2 := createTestClient(hub, "session-a")
	b := createTestClient(hub, "session-b")
	for _, c := range []*Client{a1, a2, b} {
		hub.Register <- c
	}
	waitForCount(t, hub, 3)

	if n := hub.TopicClientCount("session-a"); n != 2 {
		t.Errorf("TopicClientCount(session-a) = %d, want 2", n)
	}

	hub.Publish("session-a", MessageTypeState, map[string]string{"q": "theme:HEALTH"})

	for _, c := range []*Client{a1, a2} {
		msg, ok := receive(t, c)
		if !ok || msg.Type != MessageTypeState || msg.Topic != "session-a" {
			t.Errorf("client %d got %+v (open=%v)", c.ID(), msg, ok)
		}
	}
	select {
	case msg := <-b.send:
		t.Errorf("session-b client received %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_CloseTopic(t *testing.T) {
	hub := startHub(t)
	a := createTestClient(hub, "session-a")
	b := createTestClient(hub, "session-b")
	hub.Register <- a
	hub.Register <- b
	waitForCount(t, hub, 2)

	hub.CloseTopic("session-a")

	msg, ok := receive(t, a)
	if !ok || msg.Type != MessageTypeSessionClosed {
		t.Errorf("first message = %+v (open=%v), want session.closed", msg, ok)
	}
	if _, ok := receive(t, a); ok {
		t.Error("send channel should be closed after session.closed")
	}
	waitForCount(t, hub, 1)
	if hub.TopicClientCount("session-b") != 1 {
		t.Error("other topics must stay connected")
	}
}

func TestHub_UnregisterNonExistentClient(t *testing.T) {
	hub := startHub(t)
	hub.Unregister <- createTestClient(hub, "x")
	waitForCount(t, hub, 0)
}

func TestHub_BroadcastToFullClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{id: clientIDCounter.Add(1), topic: "s", hub: hub, send: make(chan Message)}
	hub.clients[slow] = true

	hub.broadcastToClients(Message{Type: MessageTypePanel, Topic: "s"})

	if hub.GetClientCount() != 0 {
		t.Errorf("slow client should be dropped, have %d clients", hub.GetClientCount())
	}
	if _, ok := <-slow.send; ok {
		t.Error("slow client's channel should be closed")
	}
}

func TestHub_PublishDropsWhenQueueFull(t *testing.T) {
	hub := NewHub()
	for i := 0; i < cap(hub.broadcast)+10; i++ {
		hub.Publish("s", MessageTypePanel, i)
	}
	if len(hub.broadcast) != cap(hub.broadcast) {
		t.Errorf("queue length = %d, want %d", len(hub.broadcast), cap(hub.broadcast))
	}
}

func TestHub_RunWithContext(t *testing.T) {
	t.Run("closes all clients on cancel", func(t *testing.T) {
		hub := NewHub()
		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- hub.RunWithContext(ctx) }()

		clients := []*Client{createTestClient(hub, "a"), createTestClient(hub, "b")}
		for _, c := range clients {
			hub.Register <- c
		}
		waitForCount(t, hub, 2)

		cancel()
		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("RunWithContext did not return after cancellation")
		}
		if hub.GetClientCount() != 0 {
			t.Errorf("expected 0 clients after shutdown, got %d", hub.GetClientCount())
		}
		for _, c := range clients {
			if _, ok := <-c.send; ok {
				t.Error("client channel should be closed")
			}
		}
	})

	t.Run("deadline", func(t *testing.T) {
		hub := NewHub()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		if err := hub.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded, got %v", err)
		}
	})
}

func TestGetShutdownReason(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if got := getShutdownReason(canceled); got != ShutdownReasonContextCanceled {
		t.Errorf("canceled: got %q", got)
	}

	expired, cancel2 := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel2()
	if got := getShutdownReason(expired); got != ShutdownReasonContextDeadline {
		t.Errorf("deadline: got %q", got)
	}
}

func TestMarshalMessageOmitsTopic(t *testing.T) {
	data, err := MarshalMessage(Message{Type: MessageTypeViewportFit, Data: map[string]float64{"west": 1}, Topic: "secret-session"})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"type":"viewport.fit","data":{"west":1}}`
	if string(data) != want {
		t.Errorf("MarshalMessage() = %s, want %s", data, want)
	}
}

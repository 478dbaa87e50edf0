// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package websocket

import (
	"context"
	"testing"
	"time"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()

	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = h.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h, cancel
}

// testClient registers a bare client without a network connection; the
// pumps are not started so the send channel can be inspected directly.
func testClient(h *Hub) *Client {
	c := &Client{
		id:   clientIDCounter.Add(1),
		hub:  h,
		send: make(chan Message, 64),
	}
	h.register <- c
	return c
}

func waitForClients(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if h.ClientCount() == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("ClientCount = %d, want %d", h.ClientCount(), want)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	t.Parallel()

	h, _ := startHub(t)

	c := testClient(h)
	waitForClients(t, h, 1)

	h.unregister <- c
	waitForClients(t, h, 0)

	// The hub closes the send channel on unregister.
	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected closed send channel")
		}
	case <-time.After(time.Second):
		t.Error("send channel not closed")
	}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	t.Parallel()

	h, _ := startHub(t)

	c1 := testClient(h)
	c2 := testClient(h)
	waitForClients(t, h, 2)

	h.BroadcastVerdict(map[string]int{"confidence_score": 85})

	for _, c := range []*Client{c1, c2} {
		select {
		case msg := <-c.send:
			if msg.Type != MessageTypeVerdict {
				t.Errorf("message type = %q, want verdict", msg.Type)
			}
		case <-time.After(time.Second):
			t.Fatal("client did not receive broadcast")
		}
	}
}

func TestHubDisconnectsSlowClient(t *testing.T) {
	t.Parallel()

	h, _ := startHub(t)

	slow := &Client{
		id:   clientIDCounter.Add(1),
		hub:  h,
		send: make(chan Message), // unbuffered, nothing draining it
	}
	h.register <- slow
	waitForClients(t, h, 1)

	h.BroadcastVerdict("v")
	waitForClients(t, h, 0)
}

func TestHubShutdownClosesClients(t *testing.T) {
	t.Parallel()

	h, cancel := startHub(t)

	c := testClient(h)
	waitForClients(t, h, 1)

	cancel()

	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected closed send channel after shutdown")
		}
	case <-time.After(2 * time.Second):
		t.Error("send channel not closed after shutdown")
	}
}

func TestHubBroadcastNeverBlocks(t *testing.T) {
	t.Parallel()

	h := NewHub() // not served: broadcast queue fills up

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			h.BroadcastVerdict(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("BroadcastVerdict blocked")
	}
}

package live

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h
}

func newTestClient(h *Hub, shareID string, buffer int) *Client {
	return &Client{shareID: shareID, hub: h, send: make(chan []byte, buffer)}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	return nil
}

func TestHub_PublishReachesOnlyThatShare(t *testing.T) {
	h := startHub(t)

	a1 := newTestClient(h, "share-a", 4)
	a2 := newTestClient(h, "share-a", 4)
	b := newTestClient(h, "share-b", 4)
	for _, c := range []*Client{a1, a2, b} {
		if !h.attach(c) {
			t.Fatal("attach failed")
		}
	}

	h.Publish("share-a", map[string]float64{"latitude": 19.076})

	for _, c := range []*Client{a1, a2} {
		got := receive(t, c)
		if string(got) != `{"latitude":19.076}` {
			t.Errorf("unexpected payload %s", got)
		}
	}

	select {
	case msg := <-b.send:
		t.Errorf("share-b should not receive, got %s", msg)
	case <-time.After(50 * time.Millisecond):
	}

	if n := h.ViewerCount("share-a"); n != 2 {
		t.Errorf("expected 2 viewers, got %d", n)
	}
}

func TestHub_SlowViewerIsDropped(t *testing.T) {
	h := startHub(t)

	slow := newTestClient(h, "share-a", 1)
	if !h.attach(slow) {
		t.Fatal("attach failed")
	}
	slow.send <- []byte("pending")

	h.Publish("share-a", "update")

	deadline := time.Now().Add(time.Second)
	for h.ViewerCount("share-a") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("slow viewer was not disconnected")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if msg := <-slow.send; string(msg) != "pending" {
		t.Errorf("expected the queued message first, got %s", msg)
	}
	if _, ok := <-slow.send; ok {
		t.Fatal("expected closed channel")
	}
}

func TestHub_Detach(t *testing.T) {
	h := startHub(t)

	c := newTestClient(h, "share-a", 1)
	h.attach(c)
	h.detach(c)
	// second detach is a no-op
	h.detach(c)

	if _, ok := <-c.send; ok {
		t.Fatal("expected closed channel")
	}
	if n := h.ViewerCount("share-a"); n != 0 {
		t.Errorf("expected 0 viewers, got %d", n)
	}
}

func TestHub_StopClosesViewers(t *testing.T) {
	h := NewHub(discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	c := newTestClient(h, "share-a", 1)
	h.attach(c)
	cancel()
	<-stopped

	if _, ok := <-c.send; ok {
		t.Fatal("expected closed channel")
	}
	if h.attach(newTestClient(h, "share-a", 1)) {
		t.Error("attach should fail after the hub stopped")
	}
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	h := NewHub(discardLogger())

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer+10; i++ {
			h.Publish("share-a", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked without a running hub")
	}
}

func TestServeWS_StreamsUpdates(t *testing.T) {
	h := startHub(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.ServeWS(w, r, "share-a", time.Now().Add(time.Minute)); err != nil {
			t.Errorf("ServeWS: %v", err)
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for h.ViewerCount("share-a") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("viewer never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	h.Publish("share-a", map[string]string{"user_id": "user-1"})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["user_id"] != "user-1" {
		t.Errorf("unexpected message %s", msg)
	}
}

func TestServeWS_ClosesOnExpiry(t *testing.T) {
	h := startHub(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, r, "share-a", time.Now().Add(50*time.Millisecond))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}

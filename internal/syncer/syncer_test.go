package syncer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	mu       sync.Mutex
	requests []capturedRequest
}

type capturedRequest struct {
	Path string
	Body map[string]any
}

func (c *capture) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		c.mu.Lock()
		c.requests = append(c.requests, capturedRequest{Path: r.URL.Path, Body: body})
		c.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
}

func (c *capture) wait(t *testing.T, n int) []capturedRequest {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		if len(c.requests) >= n {
			got := append([]capturedRequest(nil), c.requests...)
			c.mu.Unlock()
			return got
		}
		c.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d requests, timed out", n)
	return nil
}

func TestWorkerPostsBalanceAndStatus(t *testing.T) {
	rec := &capture{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	w := New(srv.URL)
	w.Start()
	defer w.Stop()

	w.SyncBalance("u1", 42.5)
	w.SyncRoomStatus("room1", "playing")

	got := rec.wait(t, 2)
	require.Len(t, got, 2)

	assert.Equal(t, "/api/v1/wallet/update-balance", got[0].Path)
	assert.Equal(t, "u1", got[0].Body["userId"])
	assert.Equal(t, 42.5, got[0].Body["balance"])

	assert.Equal(t, "/api/v1/lobby/rooms/update-status", got[1].Path)
	assert.Equal(t, "room1", got[1].Body["roomId"])
	assert.Equal(t, "playing", got[1].Body["status"])
}

func TestWorkerRetriesOnServerError(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := New(srv.URL)
	w.Start()
	defer w.Stop()

	w.SyncBalance("u1", 7)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := attempts
		mu.Unlock()
		if n >= 3 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("worker did not retry to success")
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	// No Start: nothing drains the queue, so overflow exercises the
	// non-blocking drop path. Must return promptly.
	w := New("http://127.0.0.1:0")
	done := make(chan struct{})
	go func() {
		for i := 0; i < queueSize+10; i++ {
			w.SyncBalance("u1", float64(i))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}
	assert.Len(t, w.queue, queueSize)
}

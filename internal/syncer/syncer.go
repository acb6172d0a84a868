// Package syncer decouples simulation ticks from network calls to the
// session service. Balance and room-status changes are queued and
// drained by a single worker with bounded retry, so a slow or dead
// collaborator never blocks a tick.
package syncer

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

const (
	queueSize   = 256
	maxAttempts = 3
	baseBackoff = 250 * time.Millisecond
)

type task struct {
	url     string
	payload any
	desc    string
}

type Worker struct {
	walletURL string
	lobbyURL  string
	client    *http.Client
	queue     chan task
	done      chan struct{}
}

func New(sessionBaseURL string) *Worker {
	return &Worker{
		walletURL: sessionBaseURL + "/api/v1/wallet/update-balance",
		lobbyURL:  sessionBaseURL + "/api/v1/lobby/rooms/update-status",
		client:    &http.Client{Timeout: 5 * time.Second},
		queue:     make(chan task, queueSize),
		done:      make(chan struct{}),
	}
}

func (w *Worker) Start() {
	go w.run()
}

// Stop drains nothing: queued tasks are best-effort by contract.
func (w *Worker) Stop() {
	close(w.done)
}

func (w *Worker) SyncBalance(userID string, balance float64) {
	w.enqueue(task{
		url:     w.walletURL,
		payload: map[string]any{"userId": userID, "balance": balance},
		desc:    "balance sync for user " + userID,
	})
}

func (w *Worker) SyncRoomStatus(roomID, status string) {
	w.enqueue(task{
		url:     w.lobbyURL,
		payload: map[string]any{"roomId": roomID, "status": status},
		desc:    "room status sync for room " + roomID,
	})
}

// enqueue never blocks; when the queue is full the update is dropped
// and logged, matching the fire-and-forget contract.
func (w *Worker) enqueue(t task) {
	select {
	case w.queue <- t:
	default:
		log.Printf("Sync queue full, dropping %s", t.desc)
	}
}

func (w *Worker) run() {
	for {
		select {
		case <-w.done:
			return
		case t := <-w.queue:
			w.post(t)
		}
	}
}

func (w *Worker) post(t task) {
	body, err := json.Marshal(t.payload)
	if err != nil {
		log.Printf("Failed to encode %s: %v", t.desc, err)
		return
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := w.client.Post(t.url, "application/json", bytes.NewReader(body))
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode < 300 {
				return
			}
			err = &statusError{code: resp.StatusCode}
		}
		if attempt < maxAttempts {
			time.Sleep(baseBackoff * time.Duration(attempt))
			continue
		}
		log.Printf("Failed %s after %d attempts: %v", t.desc, maxAttempts, err)
	}
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return "unexpected status " + http.StatusText(e.code)
}

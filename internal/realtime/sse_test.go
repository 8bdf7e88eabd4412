package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// streamRecorder captures SSE writes and any write deadlines set through
// http.ResponseController.
type streamRecorder struct {
	mu        sync.Mutex
	header    http.Header
	body      strings.Builder
	deadlines []time.Time
}

func (r *streamRecorder) Header() http.Header {
	if r.header == nil {
		r.header = http.Header{}
	}
	return r.header
}

func (r *streamRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Write(p)
}

func (r *streamRecorder) WriteHeader(status int) {}

func (r *streamRecorder) Flush() {}

func (r *streamRecorder) SetWriteDeadline(t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deadlines = append(r.deadlines, t)
	return nil
}

func (r *streamRecorder) snapshot() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.String()
}

func waitForStream(t *testing.T, rec *streamRecorder, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(rec.snapshot(), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("stream never contained %q, got %q", want, rec.snapshot())
}

func TestServeSSEClearsWriteDeadline(t *testing.T) {
	b, _ := setupBroker(t)
	rec := &streamRecorder{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/subscribe", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		ServeSSE(rec, req, b, "u_1", []string{"prj_1"})
		close(done)
	}()

	waitForStream(t, rec, ": connected")

	if err := b.Publish(context.Background(), Event{Topic: "chat", Action: "created", RoomID: "prj_1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	waitForStream(t, rec, "event: chat")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ServeSSE did not return after context cancellation")
	}

	rec.mu.Lock()
	deadlines := append([]time.Time(nil), rec.deadlines...)
	rec.mu.Unlock()
	if len(deadlines) == 0 {
		t.Fatal("expected the write deadline to be cleared before streaming")
	}
	if !deadlines[0].IsZero() {
		t.Errorf("expected a zero write deadline, got %v", deadlines[0])
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream content type, got %q", ct)
	}
}

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sseHandler(t *testing.T, write func(w http.ResponseWriter, flush func())) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/build/b1/stream", r.URL.Path)
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		w.Header().Set("Content-Type", "text/event-stream")
		write(w, flusher.Flush)
	})
}

func collect(t *testing.T, events <-chan LogEvent) []LogEvent {
	t.Helper()
	var out []LogEvent
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-deadline:
			t.Fatal("stream never terminated")
		}
	}
}

func TestFollowLogs_LinesThenDone(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, func(w http.ResponseWriter, flush func()) {
		fmt.Fprintf(w, "data: %q\n\n", "compiling")
		fmt.Fprintf(w, "data: %q\n\n", "linking")
		fmt.Fprint(w, ": keepalive\n\n")
		fmt.Fprint(w, "event: done\ndata: {}\n\n")
		flush()
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	events, err := c.FollowLogs(context.Background(), "b1")
	require.NoError(t, err)

	got := collect(t, events)
	require.Equal(t, []LogEvent{
		{Kind: EventLine, Line: "compiling"},
		{Kind: EventLine, Line: "linking"},
		{Kind: EventDone},
	}, got)
}

func TestFollowLogs_ConnectionDropIsStreamError(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, func(w http.ResponseWriter, flush func()) {
		fmt.Fprintf(w, "data: %q\n\n", "step1")
		flush()
		// handler returns: connection closes without a done event
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	events, err := c.FollowLogs(context.Background(), "b1")
	require.NoError(t, err)

	got := collect(t, events)
	require.Len(t, got, 2)
	require.Equal(t, LogEvent{Kind: EventLine, Line: "step1"}, got[0])
	require.Equal(t, EventFailed, got[1].Kind)
	var streamErr *StreamError
	require.ErrorAs(t, got[1].Err, &streamErr)
	require.Equal(t, "b1", streamErr.BuildID)
}

func TestFollowLogs_UndecodablePayloadIsIsolated(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, func(w http.ResponseWriter, flush func()) {
		fmt.Fprintf(w, "data: %q\n\n", "before")
		fmt.Fprint(w, "data: not-a-json-string\n\n")
		fmt.Fprintf(w, "data: %q\n\n", "after")
		fmt.Fprint(w, "event: done\ndata: {}\n\n")
		flush()
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	events, err := c.FollowLogs(context.Background(), "b1")
	require.NoError(t, err)

	got := collect(t, events)
	require.Len(t, got, 4)
	require.Equal(t, LogEvent{Kind: EventLine, Line: "before"}, got[0])

	// the bad event stays in sequence as a visible error line
	require.Equal(t, EventLine, got[1].Kind)
	var decodeErr *DecodeError
	require.ErrorAs(t, got[1].Err, &decodeErr)
	require.Equal(t, "not-a-json-string", decodeErr.Payload)

	require.Equal(t, LogEvent{Kind: EventLine, Line: "after"}, got[2])
	require.Equal(t, EventDone, got[3].Kind)
}

func TestFollowLogs_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.FollowLogs(context.Background(), "b1")
	var streamErr *StreamError
	require.ErrorAs(t, err, &streamErr)
}

func TestFollowLogs_IgnoresUnknownNamedEvents(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, func(w http.ResponseWriter, flush func()) {
		fmt.Fprint(w, "event: connected\ndata: {\"app\":\"x\"}\n\n")
		fmt.Fprintf(w, "data: %q\n\n", "line")
		fmt.Fprint(w, "event: done\ndata: {}\n\n")
		flush()
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	events, err := c.FollowLogs(context.Background(), "b1")
	require.NoError(t, err)

	got := collect(t, events)
	require.Equal(t, []LogEvent{
		{Kind: EventLine, Line: "line"},
		{Kind: EventDone},
	}, got)
}

func TestFollowLogs_CancelTearsDownSubscription(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: %q\n\n", "step1")
		flusher.Flush()
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := c.FollowLogs(ctx, "b1")
	require.NoError(t, err)

	first := <-events
	require.Equal(t, LogEvent{Kind: EventLine, Line: "step1"}, first)

	<-started
	cancel()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return // closed after cancellation
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}

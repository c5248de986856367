package buildsrv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rsadaphule/buildwatch/pkg/client"
)

func fastDelays() Delays {
	return Delays{MinStep: time.Microsecond, MaxStep: 2 * time.Microsecond,
		MinDetail: time.Microsecond, MaxDetail: 2 * time.Microsecond}
}

func TestServer_StartAndStreamToCompletion(t *testing.T) {
	srv := New(context.Background(), Options{Delays: fastDelays()})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	c, err := client.New(client.Options{BaseURL: ts.URL})
	require.NoError(t, err)

	buildID, err := c.StartBuild(context.Background())
	require.NoError(t, err)
	require.Len(t, buildID, 8)

	events, err := c.FollowLogs(context.Background(), buildID)
	require.NoError(t, err)

	var lines []string
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				require.NotEmpty(t, lines)
				require.Contains(t, lines[len(lines)-1], "completed successfully")
				require.Contains(t, lines[len(lines)-1], buildID)
				return
			}
			switch ev.Kind {
			case client.EventLine:
				lines = append(lines, ev.Line)
			case client.EventFailed:
				t.Fatalf("stream failed: %v", ev.Err)
			}
		case <-deadline:
			t.Fatal("build never completed")
		}
	}
}

func TestServer_UnknownBuildIs404(t *testing.T) {
	srv := New(context.Background(), Options{Delays: fastDelays()})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/build/nope/stream")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBuild_LateSubscriberReplaysBacklog(t *testing.T) {
	reg := NewRegistry()
	b := reg.Create()
	b.run(context.Background(), fastDelays())

	backlog, live, finished := b.Subscribe()
	require.True(t, finished)
	require.Nil(t, live)
	require.NotEmpty(t, backlog)
	require.Contains(t, backlog[len(backlog)-1], "completed successfully")
}

func TestBuild_LiveSubscriberSeesLinesInOrder(t *testing.T) {
	b := newBuild()
	_, live, finished := b.Subscribe()
	require.False(t, finished)

	go b.run(context.Background(), fastDelays())

	var lines []string
	for line := range live {
		lines = append(lines, line)
	}
	require.NotEmpty(t, lines)

	// live delivery matches the retained backlog exactly, in order
	backlog, _, finished := b.Subscribe()
	require.True(t, finished)
	require.Equal(t, backlog, lines)
}

func TestBuild_CanceledRunStillFinishes(t *testing.T) {
	b := newBuild()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b.run(ctx, Delays{MinStep: time.Hour, MaxStep: time.Hour})

	_, _, finished := b.Subscribe()
	require.True(t, finished)
}

func TestServer_StartResponseShape(t *testing.T) {
	srv := New(context.Background(), Options{Delays: fastDelays()})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/build/start", "application/json", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json"))
}

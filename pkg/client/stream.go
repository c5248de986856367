package client

import (
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/rsadaphule/buildwatch/pkg/buildapi"
)

type EventKind string

const (
	// EventLine carries one decoded log line.
	EventLine EventKind = "line"
	// EventDone signals normal completion; no further events follow.
	EventDone EventKind = "done"
	// EventFailed signals an abnormally closed stream; Err carries the cause.
	EventFailed EventKind = "failed"
)

// LogEvent is one event consumed from a build's log stream. The channel
// returned by FollowLogs delivers events strictly in arrival order and is
// closed immediately after the terminal EventDone or EventFailed.
type LogEvent struct {
	Kind EventKind
	Line string
	Err  error
}

// FollowLogs opens the per-build log stream and decodes it into LogEvents.
// Connection failures before any event flows are returned synchronously as a
// *StreamError; later failures arrive as a final EventFailed on the channel.
// Canceling ctx tears the subscription down and surfaces EventFailed.
func (c *Client) FollowLogs(ctx context.Context, buildID string) (<-chan LogEvent, error) {
	if buildID == "" {
		return nil, &StreamError{BuildID: buildID, Err: errors.New("missing build id")}
	}
	url := c.baseURL + buildapi.StreamPath(buildID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &StreamError{BuildID: buildID, Err: err}
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &StreamError{BuildID: buildID, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &StreamError{BuildID: buildID, Err: errors.Errorf("status %d", resp.StatusCode)}
	}

	events := make(chan LogEvent)
	go c.readStream(ctx, buildID, resp.Body, events)
	return events, nil
}

func (c *Client) readStream(ctx context.Context, buildID string, body io.ReadCloser, events chan<- LogEvent) {
	defer close(events)
	defer func() { _ = body.Close() }()

	reader := newSSEReader(body)
	for {
		ev, err := reader.next()
		if err != nil {
			// EOF without a done event is an abnormal close; so is any
			// read error, including one induced by ctx cancellation.
			cause := err
			if ctxErr := ctx.Err(); ctxErr != nil {
				cause = ctxErr
			}
			c.emit(ctx, events, LogEvent{Kind: EventFailed, Err: &StreamError{BuildID: buildID, Err: cause}})
			return
		}

		switch ev.name {
		case buildapi.EventDone:
			c.emit(ctx, events, LogEvent{Kind: EventDone})
			return
		case "", "message":
			line, err := decodeLine(ev.data)
			if err != nil {
				// Fatal to this event only: keep the stream alive and keep
				// ordering intact by emitting the failure as a visible line.
				log.Warn().Str("build_id", buildID).Err(err).Msg("dropping undecodable log payload")
				if !c.emit(ctx, events, LogEvent{Kind: EventLine, Line: "[" + err.Error() + "]", Err: err}) {
					return
				}
				continue
			}
			if !c.emit(ctx, events, LogEvent{Kind: EventLine, Line: line}) {
				return
			}
		default:
			// unrecognized named events are ignored
		}
	}
}

// emit delivers one event unless the subscription context is already gone.
func (c *Client) emit(ctx context.Context, events chan<- LogEvent, ev LogEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

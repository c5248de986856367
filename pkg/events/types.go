package events

import "time"

// StartBuildRequest is the one operator command: trigger a new build.
type StartBuildRequest struct {
	At time.Time `json:"at"`
}

// StreamLine is one decoded log line from an open subscription. Run is the
// subscription sequence number; events from a released subscription are
// stale and must not be applied.
type StreamLine struct {
	Run     uint64    `json:"run"`
	BuildID string    `json:"build_id"`
	Line    string    `json:"line"`
	At      time.Time `json:"at"`
}

// StreamDone is the terminal event of a subscription.
type StreamDone struct {
	Run     uint64    `json:"run"`
	BuildID string    `json:"build_id"`
	At      time.Time `json:"at"`
}

// StreamFailed reports an abnormally closed subscription.
type StreamFailed struct {
	Run     uint64    `json:"run"`
	BuildID string    `json:"build_id"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}

// SessionSnapshotEvent is published after every session mutation so
// observers can re-render from authoritative state: the three observable
// values of the session, nothing more.
type SessionSnapshotEvent struct {
	Status  string    `json:"status"`
	BuildID string    `json:"build_id,omitempty"`
	Lines   []string  `json:"lines,omitempty"`
	At      time.Time `json:"at"`
}

// SessionStarted announces a successfully triggered build.
type SessionStarted struct {
	BuildID string    `json:"build_id"`
	At      time.Time `json:"at"`
}

// SessionEnded announces that a run left the running state: Ok for a
// terminal done event, otherwise the failure text (trigger or stream).
type SessionEnded struct {
	BuildID string    `json:"build_id,omitempty"`
	Ok      bool      `json:"ok"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}

// ActionLog is a human-readable note about command handling.
type ActionLog struct {
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

// EventLogEntry is a presentation-layer line for the TUI activity log.
type EventLogEntry struct {
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

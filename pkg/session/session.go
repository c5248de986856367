package session

import "github.com/pkg/errors"

type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
)

// Session is the single record of the current (or most recent) build run:
// its status, assigned build id, and the append-only log buffer in arrival
// order. It is a plain value with validated transitions; exactly one owner
// mutates it and everyone else sees read-only snapshots.
type Session struct {
	status  Status
	buildID string
	lines   []string
}

// Snapshot is a read-only copy handed to observers. Lines is owned by the
// snapshot and safe to retain.
type Snapshot struct {
	Status  Status   `json:"status"`
	BuildID string   `json:"build_id,omitempty"`
	Lines   []string `json:"lines,omitempty"`
}

func New() *Session {
	return &Session{status: StatusIdle}
}

// Reset accepts a new start command: the buffer and the prior build id are
// cleared and the session returns to idle. Valid from every state so a fresh
// start can follow done, idle, or an interrupted run.
func (s *Session) Reset() {
	s.status = StatusIdle
	s.buildID = ""
	s.lines = nil
}

// Run enters the running state with the id the trigger returned. The id is
// assigned exactly once per run; a second Run without a Reset is a bug.
func (s *Session) Run(buildID string) error {
	if buildID == "" {
		return errors.New("empty build id")
	}
	if s.status == StatusRunning {
		return errors.New("build already running")
	}
	if s.buildID != "" {
		return errors.Errorf("build id already assigned: %s", s.buildID)
	}
	s.status = StatusRunning
	s.buildID = buildID
	return nil
}

// Append records one log line in arrival order. Only legal while running.
func (s *Session) Append(line string) error {
	if s.status != StatusRunning {
		return errors.Errorf("append in state %s", s.status)
	}
	s.lines = append(s.lines, line)
	return nil
}

// Finish applies the terminal event: running becomes done and the buffer is
// frozen until the next start.
func (s *Session) Finish() error {
	if s.status != StatusRunning {
		return errors.Errorf("finish in state %s", s.status)
	}
	s.status = StatusDone
	return nil
}

// Interrupt applies a stream failure: back to idle, deliberately retaining
// the build id and the partial buffer as a best-effort artifact.
func (s *Session) Interrupt() error {
	if s.status != StatusRunning {
		return errors.Errorf("interrupt in state %s", s.status)
	}
	s.status = StatusIdle
	return nil
}

func (s *Session) Status() Status { return s.status }

func (s *Session) Snapshot() Snapshot {
	lines := make([]string, len(s.lines))
	copy(lines, s.lines)
	return Snapshot{Status: s.status, BuildID: s.buildID, Lines: lines}
}

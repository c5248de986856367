package tui

import "github.com/rsadaphule/buildwatch/pkg/events"

type SessionSnapshotMsg struct {
	Snapshot events.SessionSnapshotEvent
}

type EventLogAppendMsg struct {
	Entry events.EventLogEntry
}

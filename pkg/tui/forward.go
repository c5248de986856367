package tui

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/rsadaphule/buildwatch/pkg/events"
)

// RegisterUIForwarder moves presentation-ready bus messages into the
// bubbletea program.
func RegisterUIForwarder(bus *events.Bus, p *tea.Program) {
	bus.AddHandler("buildwatch-ui-forward", events.TopicUIMessages, func(msg *message.Message) error {
		defer msg.Ack()

		var env events.Envelope
		if err := json.Unmarshal(msg.Payload, &env); err != nil {
			return errors.Wrap(err, "unmarshal ui envelope")
		}

		switch env.Type {
		case events.UITypeSessionSnapshot:
			var snap events.SessionSnapshotEvent
			if err := json.Unmarshal(env.Payload, &snap); err != nil {
				return errors.Wrap(err, "unmarshal snapshot payload")
			}
			p.Send(SessionSnapshotMsg{Snapshot: snap})
		case events.UITypeEventAppend:
			var entry events.EventLogEntry
			if err := json.Unmarshal(env.Payload, &entry); err != nil {
				return errors.Wrap(err, "unmarshal event payload")
			}
			p.Send(EventLogAppendMsg{Entry: entry})
		}
		return nil
	})
}

package tui

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pkg/errors"

	"github.com/rsadaphule/buildwatch/pkg/events"
)

// RegisterDomainToUITransformer rewrites authoritative session facts into
// presentation messages: snapshots pass through, lifecycle events become
// activity-log lines.
func RegisterDomainToUITransformer(bus *events.Bus) {
	bus.AddHandler("buildwatch-domain-to-ui", events.TopicDomainEvents, func(msg *message.Message) error {
		defer msg.Ack()

		var env events.Envelope
		if err := json.Unmarshal(msg.Payload, &env); err != nil {
			return errors.Wrap(err, "unmarshal domain envelope")
		}

		publishUI := func(uiType string, payload any) error {
			return events.Publish(bus.Publisher, events.TopicUIMessages, uiType, payload)
		}
		publishEventText := func(at time.Time, text string) error {
			return publishUI(events.UITypeEventAppend, events.EventLogEntry{At: at, Text: text})
		}

		switch env.Type {
		case events.DomainTypeSessionSnapshot:
			var snap events.SessionSnapshotEvent
			if err := json.Unmarshal(env.Payload, &snap); err != nil {
				return errors.Wrap(err, "unmarshal session snapshot")
			}
			return publishUI(events.UITypeSessionSnapshot, snap)

		case events.DomainTypeSessionStarted:
			var ev events.SessionStarted
			if err := json.Unmarshal(env.Payload, &ev); err != nil {
				return errors.Wrap(err, "unmarshal session started")
			}
			return publishEventText(ev.At, fmt.Sprintf("build started: %s", ev.BuildID))

		case events.DomainTypeSessionEnded:
			var ev events.SessionEnded
			if err := json.Unmarshal(env.Payload, &ev); err != nil {
				return errors.Wrap(err, "unmarshal session ended")
			}
			if ev.Ok {
				return publishEventText(ev.At, fmt.Sprintf("build done: %s", ev.BuildID))
			}
			text := "build failed"
			if ev.BuildID != "" {
				text = fmt.Sprintf("build failed: %s", ev.BuildID)
			}
			if ev.Error != "" {
				text = fmt.Sprintf("%s: %s", text, ev.Error)
			}
			return publishEventText(ev.At, text)

		case events.DomainTypeActionLog:
			var logEv events.ActionLog
			if err := json.Unmarshal(env.Payload, &logEv); err != nil {
				return errors.Wrap(err, "unmarshal action log")
			}
			return publishEventText(logEv.At, logEv.Text)

		default:
			return nil
		}
	})
}

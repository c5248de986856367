package events

const (
	// TopicStreamEvents carries raw per-build stream events into the session
	// owner. Single consumer; arrival order is the display order.
	TopicStreamEvents = "buildwatch.stream.events"
	// TopicDomainEvents carries authoritative session facts outward.
	TopicDomainEvents = "buildwatch.domain.events"
	// TopicUIMessages carries presentation-ready messages for the TUI.
	TopicUIMessages = "buildwatch.ui.msgs"
	// TopicUIActions carries operator commands into the session owner.
	TopicUIActions = "buildwatch.ui.actions"
)

const (
	StreamTypeLine   = "stream.line"
	StreamTypeDone   = "stream.done"
	StreamTypeFailed = "stream.failed"
)

const (
	DomainTypeSessionSnapshot = "session.snapshot"
	DomainTypeSessionStarted  = "session.started"
	DomainTypeSessionEnded    = "session.ended"
	DomainTypeActionLog       = "action.log"
)

const (
	UITypeSessionSnapshot = "tui.session.snapshot"
	UITypeEventAppend     = "tui.event.append"
	UITypeStartRequest    = "tui.build.start"
)

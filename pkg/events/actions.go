package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

// PublishStartBuild issues the start-build command onto the actions topic.
// The view calls this; whether the command is accepted is decided by the
// session owner alone.
func PublishStartBuild(pub message.Publisher, req StartBuildRequest) error {
	if req.At.IsZero() {
		req.At = time.Now()
	}
	return Publish(pub, TopicUIActions, UITypeStartRequest, req)
}

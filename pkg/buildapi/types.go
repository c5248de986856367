package buildapi

import "github.com/pkg/errors"

// StartPath is the build-start endpoint. A POST with no body triggers a new
// build and returns a StartResponse.
const StartPath = "/build/start"

// EventDone is the named SSE event that terminates a log stream. Its payload
// is ignored; receipt is the sole completion signal.
const EventDone = "done"

// StartResponse is the acknowledgement body of a successful start request.
type StartResponse struct {
	BuildID string `json:"build_id"`
}

func (r StartResponse) Validate() error {
	if r.BuildID == "" {
		return errors.New("missing build_id")
	}
	return nil
}

// StreamPath returns the per-build SSE endpoint for the given build id.
func StreamPath(buildID string) string {
	return "/build/" + buildID + "/stream"
}

package client

import "fmt"

// TriggerError reports a failed build-start request: transport failure,
// non-success status, or an acknowledgement body that did not carry a build
// id. The session owner treats it as a clean failure with no partial state.
type TriggerError struct {
	URL    string
	Status int
	Err    error
}

func (e *TriggerError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("build trigger failed: %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("build trigger failed: %s: %v", e.URL, e.Err)
}

func (e *TriggerError) Unwrap() error { return e.Err }

// StreamError reports an abnormally closed log stream. Lines accumulated
// before the failure remain valid as a partial artifact.
type StreamError struct {
	BuildID string
	Err     error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("log stream failed: build %s: %v", e.BuildID, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// DecodeError reports a default event whose payload was not a JSON-encoded
// string. It is fatal to that event only, never to the stream.
type DecodeError struct {
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("undecodable log event payload %q: %v", e.Payload, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

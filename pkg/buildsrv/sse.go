package buildsrv

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rsadaphule/buildwatch/pkg/buildapi"
)

// writeLineEvent emits one log line as a default SSE event. Lines are
// JSON-string encoded so newlines and control characters survive the wire.
func writeLineEvent(w io.Writer, line string) error {
	payload, err := json.Marshal(line)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}

func writeDoneEvent(w io.Writer) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: {}\n\n", buildapi.EventDone)
	return err
}

func writeComment(w io.Writer, text string) error {
	_, err := fmt.Fprintf(w, ": %s\n\n", text)
	return err
}

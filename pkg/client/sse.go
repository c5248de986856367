package client

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// sseEvent is one dispatched server-sent event: the event name ("" for the
// default event) and the joined data payload.
type sseEvent struct {
	name string
	data string
}

// sseReader incrementally parses a text/event-stream body. It handles the
// subset of the format the build server emits: "event:" and "data:" fields,
// comment lines starting with ':', and blank-line dispatch. Multiple data
// lines of one event are joined with '\n'.
type sseReader struct {
	scanner *bufio.Scanner

	name string
	data []string
}

func newSSEReader(r io.Reader) *sseReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &sseReader{scanner: sc}
}

// next returns the next complete event, or an error when the underlying
// stream ends or fails. io.EOF is returned on clean connection close.
func (r *sseReader) next() (sseEvent, error) {
	for r.scanner.Scan() {
		line := r.scanner.Text()

		if line == "" {
			if len(r.data) == 0 && r.name == "" {
				continue
			}
			ev := sseEvent{name: r.name, data: strings.Join(r.data, "\n")}
			r.name = ""
			r.data = nil
			return ev, nil
		}

		if strings.HasPrefix(line, ":") {
			// comment / keepalive
			continue
		}

		field, value := splitField(line)
		switch field {
		case "event":
			r.name = value
		case "data":
			r.data = append(r.data, value)
		default:
			// "id", "retry" and unknown fields are irrelevant here
		}
	}

	if err := r.scanner.Err(); err != nil {
		return sseEvent{}, err
	}
	return sseEvent{}, io.EOF
}

func splitField(line string) (string, string) {
	field, value, ok := strings.Cut(line, ":")
	if !ok {
		return line, ""
	}
	// the format allows exactly one optional space after the colon
	value = strings.TrimPrefix(value, " ")
	return field, value
}

// decodeLine decodes a default-event payload into one displayable log line.
// The server encodes each line as a JSON string.
func decodeLine(payload string) (string, error) {
	var line string
	if err := json.Unmarshal([]byte(payload), &line); err != nil {
		return "", &DecodeError{Payload: payload, Err: err}
	}
	return line, nil
}

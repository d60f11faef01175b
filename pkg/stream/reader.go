package stream

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Reader decodes a server-sent-event stream frame by frame.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r, typically an http.Response body.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{scanner: scanner}
}

// Next returns the next event. It returns io.EOF when the stream ends
// cleanly between frames.
func (r *Reader) Next() (Event, error) {
	var (
		eventType string
		data      bytes.Buffer
		sawField  bool
	)

	for r.scanner.Scan() {
		line := r.scanner.Text()

		if line == "" {
			if sawField {
				break
			}
			continue
		}
		// Comment lines keep the connection alive, skip them.
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			eventType = value
			sawField = true
		case "data":
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(value)
			sawField = true
		}
	}

	if err := r.scanner.Err(); err != nil {
		return Event{}, fmt.Errorf("failed to read event stream: %w", err)
	}
	if !sawField {
		return Event{}, io.EOF
	}
	if eventType == "" {
		// Bare data lines are treated as text deltas.
		eventType = EventDelta
	}
	return Event{Type: eventType, Data: data.Bytes()}, nil
}

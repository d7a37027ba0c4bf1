// Package streamcodec implements the raw wire framing of spec §4.4: it
// turns bytes read off an HTTP response body into discrete JSON payloads,
// one per upstream event, without parsing or transforming the payloads
// themselves. Semantic transformation of each payload is the transform
// façade's job; this package only knows about delimiters.
//
// Ported from streaming.rs's RawSseStream/split_event/
// extract_json_bytes_from_sse and RawBedrockEventStream.
package streamcodec

import "bytes"

// Event is one decoded frame from a raw provider stream.
type Event struct {
	// Payload is the JSON bytes for this event, unparsed. Empty for a
	// keep-alive (blank SSE event).
	Payload []byte
	// Done reports the stream's own termination sentinel (SSE's
	// "data: [DONE]"). Once Done is seen, no further events follow and
	// the decoder stops accepting input.
	Done bool
}

// SSEDecoder incrementally decodes Server-Sent Events. Feed bytes as they
// arrive off the wire; each call returns zero or more newly completed
// events. Call Flush once the underlying stream has closed to recover any
// trailing event that wasn't terminated by a blank line.
type SSEDecoder struct {
	buf      []byte
	finished bool
}

// NewSSEDecoder returns a decoder ready to accept bytes via Feed.
func NewSSEDecoder() *SSEDecoder {
	return &SSEDecoder{}
}

// Feed appends newly read bytes and returns any events that are now
// complete, in arrival order. Once a [DONE] sentinel is seen, Feed is a
// no-op on every subsequent call.
func (d *SSEDecoder) Feed(chunk []byte) ([]Event, error) {
	if d.finished {
		return nil, nil
	}
	d.buf = append(d.buf, chunk...)

	var events []Event
	for {
		event, rest, ok := splitEvent(d.buf)
		if !ok {
			break
		}
		d.buf = rest

		payload, done, err := extractJSONBytesFromSSE(event)
		if err != nil {
			return events, err
		}
		if done {
			d.finished = true
			events = append(events, Event{Done: true})
			return events, nil
		}
		events = append(events, Event{Payload: payload})
	}
	return events, nil
}

// Flush signals that the underlying stream has ended. If bytes remain in
// the buffer without a terminating blank line, they are extracted as one
// final event, matching streaming.rs's poll_next end-of-stream handling.
func (d *SSEDecoder) Flush() ([]Event, error) {
	if d.finished || len(d.buf) == 0 {
		d.finished = true
		return nil, nil
	}
	remaining := d.buf
	d.buf = nil
	d.finished = true

	payload, done, err := extractJSONBytesFromSSE(remaining)
	if err != nil {
		return nil, err
	}
	if done {
		return []Event{{Done: true}}, nil
	}
	return []Event{{Payload: payload}}, nil
}

// splitEvent looks for the first complete SSE event in buf, preferring
// the standard \r\n\r\n delimiter and falling back to a bare \n\n. It
// returns the event (including its trailing delimiter), the remaining
// buffer, and whether a delimiter was found at all.
func splitEvent(buf []byte) (event []byte, rest []byte, ok bool) {
	if idx := bytes.Index(buf, []byte("\r\n\r\n")); idx >= 0 {
		splitAt := idx + 4
		return buf[:splitAt], buf[splitAt:], true
	}
	if idx := bytes.Index(buf, []byte("\n\n")); idx >= 0 {
		splitAt := idx + 2
		return buf[:splitAt], buf[splitAt:], true
	}
	return nil, buf, false
}

// extractJSONBytesFromSSE pulls the concatenated "data:" payload out of a
// single SSE event without parsing it as JSON. done is true for the
// "[DONE]" sentinel. An empty, non-done payload signals a keep-alive.
func extractJSONBytesFromSSE(event []byte) (payload []byte, done bool, err error) {
	var data []byte
	for _, line := range bytes.Split(event, []byte("\n")) {
		line = bytes.TrimSuffix(line, []byte("\r"))
		rest, ok := cutPrefix(line, []byte("data:"))
		if !ok {
			continue
		}
		rest = bytes.TrimLeft(rest, " \t")
		if string(rest) == "[DONE]" {
			return nil, true, nil
		}
		if len(data) > 0 {
			data = append(data, '\n')
		}
		data = append(data, rest...)
	}
	if len(data) == 0 {
		return []byte{}, false, nil
	}
	return data, false, nil
}

func cutPrefix(s, prefix []byte) ([]byte, bool) {
	if !bytes.HasPrefix(s, prefix) {
		return nil, false
	}
	return s[len(prefix):], true
}

package streamcodec

import (
	"bytes"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws/protocol/eventstream"
)

// AWSEventDecoder incrementally decodes the AWS binary event-stream
// framing Bedrock uses for streaming Converse/InvokeModelWithResponseStream
// responses. Each frame's payload is re-wrapped as {"<event-type>":
// <payload>} without reparsing the payload, matching streaming.rs's
// RawBedrockEventStream and the wrap convention it documents.
//
// Grounded in the envoyproxy-ai-gateway Bedrock translator's
// extractAmazonEventStreamEvents, which drives the same decoder by
// feeding a bytes.Reader and recovering unread bytes on a short read.
type AWSEventDecoder struct {
	buf []byte
}

// NewAWSEventDecoder returns a decoder ready to accept bytes via Feed.
func NewAWSEventDecoder() *AWSEventDecoder {
	return &AWSEventDecoder{}
}

// Feed appends newly read bytes and returns any complete frames decoded
// so far, each re-wrapped as a JSON object keyed by its :event-type
// header. Partial frames are retained for the next Feed call.
func (d *AWSEventDecoder) Feed(chunk []byte) ([]Event, error) {
	d.buf = append(d.buf, chunk...)

	r := bytes.NewReader(d.buf)
	dec := eventstream.NewDecoder()

	var events []Event
	var lastRead int64
	for {
		msg, err := dec.Decode(r, nil)
		if err != nil {
			// Incomplete frame: wait for more bytes. The decoder has no
			// way to distinguish "need more data" from a hard framing
			// error, so, like the envoy translator, we treat any
			// decode failure as "not enough buffered yet" and resume
			// from the last fully-decoded frame boundary.
			break
		}
		lastRead = int64(len(d.buf)) - int64(r.Len())

		if len(msg.Payload) == 0 {
			continue
		}

		eventType := headerEventType(msg.Headers)
		if eventType == "" {
			events = append(events, Event{Payload: append([]byte(nil), msg.Payload...)})
			continue
		}
		wrapped := fmt.Sprintf(`{%q: %s}`, eventType, msg.Payload)
		events = append(events, Event{Payload: []byte(wrapped)})
	}

	d.buf = append([]byte(nil), d.buf[lastRead:]...)
	return events, nil
}

func headerEventType(headers eventstream.Headers) string {
	for _, h := range headers {
		if h.Name != ":event-type" {
			continue
		}
		if sv, ok := h.Value.(eventstream.StringValue); ok {
			return string(sv)
		}
		return fmt.Sprint(h.Value.Get())
	}
	return ""
}

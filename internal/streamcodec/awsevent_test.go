package streamcodec

import (
	"bytes"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws/protocol/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeFrame(t *testing.T, eventType string, payload []byte) []byte {
	t.Helper()
	msg := eventstream.Message{
		Headers: eventstream.Headers{
			{Name: ":event-type", Value: eventstream.StringValue(eventType)},
		},
		Payload: payload,
	}
	var buf bytes.Buffer
	require.NoError(t, eventstream.NewEncoder().Encode(&buf, msg))
	return buf.Bytes()
}

func TestAWSEventDecoderWrapsPayloadByEventType(t *testing.T) {
	frame := encodeFrame(t, "contentBlockDelta", []byte(`{"delta":{"text":"hi"}}`))

	d := NewAWSEventDecoder()
	events, err := d.Feed(frame)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.JSONEq(t, `{"contentBlockDelta": {"delta":{"text":"hi"}}}`, string(events[0].Payload))
}

func TestAWSEventDecoderBuffersPartialFrame(t *testing.T) {
	frame := encodeFrame(t, "messageStop", []byte(`{"stopReason":"end_turn"}`))

	d := NewAWSEventDecoder()
	events, err := d.Feed(frame[:len(frame)/2])
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = d.Feed(frame[len(frame)/2:])
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.JSONEq(t, `{"messageStop": {"stopReason":"end_turn"}}`, string(events[0].Payload))
}

func TestAWSEventDecoderHandlesMultipleFramesInOneFeed(t *testing.T) {
	f1 := encodeFrame(t, "a", []byte(`{"n":1}`))
	f2 := encodeFrame(t, "b", []byte(`{"n":2}`))

	d := NewAWSEventDecoder()
	events, err := d.Feed(append(f1, f2...))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.JSONEq(t, `{"a": {"n":1}}`, string(events[0].Payload))
	assert.JSONEq(t, `{"b": {"n":2}}`, string(events[1].Payload))
}

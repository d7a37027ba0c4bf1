package streamcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONBytesFromSSEExtractsData(t *testing.T) {
	payload, done, err := extractJSONBytesFromSSE([]byte("data: {\"test\": 1}\n\n"))
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, []byte(`{"test": 1}`), payload)
}

func TestExtractJSONBytesReturnsDoneForDoneSentinel(t *testing.T) {
	_, done, err := extractJSONBytesFromSSE([]byte("data: [DONE]\n\n"))
	require.NoError(t, err)
	assert.True(t, done)
}

func TestExtractJSONBytesKeepAliveIsEmptyNotDone(t *testing.T) {
	payload, done, err := extractJSONBytesFromSSE([]byte("\n\n"))
	require.NoError(t, err)
	assert.False(t, done)
	assert.Empty(t, payload)
}

func TestSplitEventHandlesLFDelimiter(t *testing.T) {
	buf := []byte("data: {\"test\": 1}\n\ndata: {\"test\": 2}\n\n")
	event, rest, ok := splitEvent(buf)
	require.True(t, ok)
	assert.Contains(t, string(event), "test")
	assert.NotEmpty(t, rest)
}

func TestSplitEventPrefersCRLFDelimiter(t *testing.T) {
	buf := []byte("data: a\r\n\r\ndata: b\n\n")
	event, rest, ok := splitEvent(buf)
	require.True(t, ok)
	assert.Equal(t, "data: a\r\n\r\n", string(event))
	assert.Equal(t, "data: b\n\n", string(rest))
}

func TestSSEDecoderFeedAcrossChunkBoundary(t *testing.T) {
	d := NewSSEDecoder()

	events, err := d.Feed([]byte("data: {\"a\":1}\n"))
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = d.Feed([]byte("\ndata: [DONE]\n\n"))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, []byte(`{"a":1}`), events[0].Payload)
	assert.True(t, events[1].Done)

	events, err = d.Feed([]byte("data: {\"late\":1}\n\n"))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSSEDecoderFlushRecoversTrailingEvent(t *testing.T) {
	d := NewSSEDecoder()

	events, err := d.Feed([]byte("data: {\"a\":1}"))
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = d.Flush()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, []byte(`{"a":1}`), events[0].Payload)
}

func TestSSEDecoderMultiLineDataConcatenatesWithNewline(t *testing.T) {
	payload, done, err := extractJSONBytesFromSSE([]byte("data: {\"a\":\ndata: 1}\n\n"))
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, []byte("{\"a\":\n1}"), payload)
}

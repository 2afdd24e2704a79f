package httpio

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkedReaderDecodesSingleChunk(t *testing.T) {
	body := strings.NewReader("b;chunk-signature=deadbeef\r\nhello world\r\n0;chunk-signature=deadbeef\r\n\r\n")

	got, err := io.ReadAll(NewChunkedReader(body))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}

func TestChunkedReaderDecodesMultipleChunks(t *testing.T) {
	body := strings.NewReader(
		"4;chunk-signature=aaaa\r\nabcd\r\n" +
			"3;chunk-signature=bbbb\r\nefg\r\n" +
			"0;chunk-signature=cccc\r\n\r\n",
	)

	got, err := io.ReadAll(NewChunkedReader(body))
	require.NoError(t, err)
	assert.Equal(t, "abcdefg", string(got))
}

func TestChunkedReaderEmptyBody(t *testing.T) {
	body := strings.NewReader("0;chunk-signature=deadbeef\r\n\r\n")

	got, err := io.ReadAll(NewChunkedReader(body))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestChunkedReaderTruncatedBodyIsError(t *testing.T) {
	body := strings.NewReader("4;chunk-signature=aaaa\r\nab")

	_, err := io.ReadAll(NewChunkedReader(body))
	assert.Error(t, err)
}

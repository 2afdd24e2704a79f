package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultipartUploadLifecycle(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateBucket("bucket"))

	uploadID, err := store.InitiateMultipartUpload("bucket", "big.bin")
	require.NoError(t, err)
	assert.True(t, store.UploadExists(uploadID))

	_, err = store.UploadPart(uploadID, 2, strings.NewReader("BBBB"))
	require.NoError(t, err)
	_, err = store.UploadPart(uploadID, 1, strings.NewReader("AAAA"))
	require.NoError(t, err)

	bucket, key, etag, err := store.CompleteMultipartUpload(uploadID)
	require.NoError(t, err)
	assert.Equal(t, "bucket", bucket)
	assert.Equal(t, "big.bin", key)
	assert.Contains(t, etag, "-2")
	assert.False(t, store.UploadExists(uploadID))

	info, err := store.Stat("bucket", "big.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(8), info.Size)

	f, err := store.Open("bucket", "big.bin")
	require.NoError(t, err)
	defer f.Close()
	buf := make([]byte, 8)
	n, err := f.Read(buf)
	require.NoError(t, err)
	// Parts assemble in numeric order regardless of upload order.
	assert.Equal(t, "AAAABBBB", string(buf[:n]))
}

func TestUploadPartRejectsUnknownUpload(t *testing.T) {
	store := newTestStore(t)
	_, err := store.UploadPart("nosuchupload", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNoSuchUpload)
}

func TestUploadPartRejectsOutOfRangePartNumber(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateBucket("bucket"))
	uploadID, err := store.InitiateMultipartUpload("bucket", "key")
	require.NoError(t, err)

	_, err = store.UploadPart(uploadID, 0, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = store.UploadPart(uploadID, MaxPartNumber+1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAbortMultipartUploadRemovesStagingDirectory(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateBucket("bucket"))
	uploadID, err := store.InitiateMultipartUpload("bucket", "key")
	require.NoError(t, err)

	require.NoError(t, store.AbortMultipartUpload(uploadID))
	assert.False(t, store.UploadExists(uploadID))

	err = store.AbortMultipartUpload(uploadID)
	assert.ErrorIs(t, err, ErrNoSuchUpload)
}

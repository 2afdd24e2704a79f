package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestCreateBucketIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.CreateBucket("mybucket"))
	require.NoError(t, store.CreateBucket("mybucket"))

	exists, err := store.BucketExists("mybucket")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateBucketRejectsInvalidName(t *testing.T) {
	store := newTestStore(t)
	err := store.CreateBucket("AB")
	assert.ErrorIs(t, err, ErrInvalidBucketName)
}

func TestDeleteBucketRequiresEmpty(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateBucket("mybucket"))
	_, err := store.PutObject("mybucket", "key.txt", strings.NewReader("data"))
	require.NoError(t, err)

	err = store.DeleteBucket("mybucket")
	assert.ErrorIs(t, err, ErrBucketNotEmpty)

	require.NoError(t, store.DeleteObject("mybucket", "key.txt"))
	assert.NoError(t, store.DeleteBucket("mybucket"))
}

func TestDeleteBucketMissingIsNoSuchBucket(t *testing.T) {
	store := newTestStore(t)
	err := store.DeleteBucket("doesnotexist")
	assert.ErrorIs(t, err, ErrNoSuchBucket)
}

func TestListBucketsExcludesUploadsDirAndSorts(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateBucket("zeta"))
	require.NoError(t, store.CreateBucket("alpha"))
	_, err := store.InitiateMultipartUpload("alpha", "obj")
	require.NoError(t, err)

	buckets, err := store.ListBuckets()
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, "alpha", buckets[0].Name)
	assert.Equal(t, "zeta", buckets[1].Name)
}

func TestListBucketsEmpty(t *testing.T) {
	store := newTestStore(t)
	buckets, err := store.ListBuckets()
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

package minio

import (
	"context"
	"io"
	"testing"

	"github.com/hupe1980/kdnn/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	store, err := Dial("localhost:9000", "minioadmin", "minioadmin", false, "test-kdnn", "test-prefix/")
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	if _, err := store.client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := store.client.BucketExists(ctx, store.bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, store.client.MakeBucket(ctx, store.bucket, minio.MakeBucketOptions{}))
	}

	data := []byte("p1,p2,label\n1,2,minio\n")
	require.NoError(t, store.Put(ctx, "points.csv", data))

	blob, err := store.Open(ctx, "points.csv")
	require.NoError(t, err)
	defer blob.Close()
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, len(data))
	n, err := blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, data, buf)

	rc, err := blob.ReadRange(ctx, 16, 5)
	require.NoError(t, err)
	part, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(part))
	require.NoError(t, rc.Close())

	r, err := blobstore.NewReader(ctx, blob)
	require.NoError(t, err)
	all, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, all)

	_, err = store.Open(ctx, "missing.csv")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	_ = store.client.RemoveObject(ctx, store.bucket, store.key("points.csv"), minio.RemoveObjectOptions{})
}

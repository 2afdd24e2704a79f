// Command cratedemo exercises a running crate server end to end using
// minio-go, the way the teacher's cmd/example demonstrates its own
// server. It is a smoke-test client, never imported by server-side code.
package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

const (
	bucketName    = "demo-bucket"
	objectName    = "demo.txt"
	objectContent = "Hello from the crate demo client!\n"
)

func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %q: %w", bucket, err)
		}
	}
	return nil
}

func uploadFile(ctx context.Context, client *minio.Client, bucket, object string, content []byte) error {
	reader := bytes.NewReader(content)
	_, err := client.PutObject(ctx, bucket, object, reader, int64(len(content)), minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	if err != nil {
		return fmt.Errorf("upload object %q to bucket %q: %w", object, bucket, err)
	}
	slog.Info("uploaded object", "object", object, "bucket", bucket)
	return nil
}

func listBucketObjects(ctx context.Context, client *minio.Client, bucket string) error {
	slog.Info("listing objects", "bucket", bucket)
	for info := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
		if info.Err != nil {
			return fmt.Errorf("list objects in bucket %q: %w", bucket, info.Err)
		}
		slog.Info("object", "key", info.Key, "size", info.Size)
	}
	return nil
}

func downloadFile(ctx context.Context, client *minio.Client, bucket, object, path string) error {
	if err := client.FGetObject(ctx, bucket, object, path, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("download object %q from bucket %q: %w", object, bucket, err)
	}
	slog.Info("downloaded object", "path", path)
	return nil
}

// multipartUploadExample demonstrates the low-level Core client's
// multipart API against the running server, mirroring the teacher's own
// MultipartUploadExample.
func multipartUploadExample(ctx context.Context, client *minio.Client) error {
	const (
		bucket = "demo-multipart-bucket"
		object = "demo-multipart-object.bin"
	)

	creds, err := client.GetCreds()
	if err != nil {
		return fmt.Errorf("get client credentials: %w", err)
	}

	coreClient, err := minio.NewCore(client.EndpointURL().Host, &minio.Options{
		Creds:        credentials.NewStaticV4(creds.AccessKeyID, creds.SecretAccessKey, ""),
		Secure:       false,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return fmt.Errorf("create core client: %w", err)
	}

	if err := coreClient.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: "us-east-1"}); err != nil {
		return fmt.Errorf("create bucket %q: %w", bucket, err)
	}

	uploadID, err := coreClient.NewMultipartUpload(ctx, bucket, object, minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return fmt.Errorf("initiate multipart upload: %w", err)
	}

	log := slog.With("bucket", bucket, "object", object, "upload_id", uploadID)
	log.Info("started multipart upload")

	partData := [][]byte{
		bytes.Repeat([]byte("AAAA"), 256*1024),
		bytes.Repeat([]byte("BBBB"), 256*1024),
		bytes.Repeat([]byte("CCCC"), 128*1024),
	}

	var parts []minio.CompletePart
	totalLength := 0
	for i, data := range partData {
		partNumber := i + 1
		part, err := coreClient.PutObjectPart(ctx, bucket, object, uploadID, partNumber, bytes.NewReader(data), int64(len(data)), minio.PutObjectPartOptions{})
		if err != nil {
			return fmt.Errorf("upload part %d: %w", partNumber, err)
		}
		parts = append(parts, minio.CompletePart{PartNumber: partNumber, ETag: part.ETag})
		totalLength += len(data)
	}

	if _, err := coreClient.CompleteMultipartUpload(ctx, bucket, object, uploadID, parts, minio.PutObjectOptions{ContentType: "application/octet-stream"}); err != nil {
		return fmt.Errorf("complete multipart upload: %w", err)
	}

	log.Info("completed multipart upload", "total_size", totalLength)
	return nil
}

func run(ctx context.Context, client *minio.Client) error {
	if err := ensureBucket(ctx, client, bucketName); err != nil {
		return err
	}
	if err := uploadFile(ctx, client, bucketName, objectName, []byte(objectContent)); err != nil {
		return err
	}
	if err := listBucketObjects(ctx, client, bucketName); err != nil {
		return err
	}

	downloadPath := filepath.Join(".", "downloaded_"+objectName)
	if err := downloadFile(ctx, client, bucketName, objectName, downloadPath); err != nil {
		return err
	}

	if err := multipartUploadExample(ctx, client); err != nil {
		return err
	}

	return nil
}

func main() {
	endpoint := getenv("CRATE_ENDPOINT", "localhost:9000")
	accessKey := getenv("CRATE_ACCESS_KEY", "minioadmin")
	secretKey := getenv("CRATE_SECRET_KEY", "minioadmin")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		slog.Error("failed to create minio client", "error", err)
		os.Exit(1)
	}

	if err := run(context.Background(), client); err != nil {
		slog.Error("demo run failed", "error", err)
		os.Exit(1)
	}
}

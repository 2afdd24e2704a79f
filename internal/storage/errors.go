// Package storage implements C5: bucket/key validation and path mapping,
// object reads/writes (including ranged reads), prefix/delimiter listing
// with continuation-token pagination, and the multipart upload state
// machine. It is grounded on the teacher's internal/silo/local_file_storage.go
// and internal/silo/filesystem.go, but abandons their SQLite-indexed,
// SHA-256 content-addressed layout: §3's invariant that "no sidecar
// metadata file exists" rules that design out, so objects are instead
// stored literally at <data_dir>/<bucket>/<key>, exactly as §3 specifies.
package storage

import "errors"

// Sentinel errors the server (internal/server) maps to the §7 taxonomy via
// errors.Is. Keeping them here, rather than importing internal/apierr,
// lets the storage layer stay ignorant of HTTP status codes entirely.
var (
	ErrInvalidBucketName = errors.New("storage: invalid bucket name")
	ErrInvalidKey        = errors.New("storage: invalid key")
	ErrInvalidArgument   = errors.New("storage: invalid argument")
	ErrNoSuchBucket      = errors.New("storage: no such bucket")
	ErrNoSuchKey         = errors.New("storage: no such key")
	ErrNoSuchUpload      = errors.New("storage: no such upload")
	ErrBucketNotEmpty    = errors.New("storage: bucket not empty")
)

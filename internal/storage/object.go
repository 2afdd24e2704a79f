package storage

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
)

// ObjectInfo describes a stored object's size and modification time,
// returned by Stat and used to compute ETags and Content-Length/Range
// responses without a sidecar metadata file.
type ObjectInfo struct {
	Size    int64
	ModTime int64 // unix seconds
}

// PutObject validates (bucket, key), then writes data to
// <data_dir>/<bucket>/<key> atomically (temp file + rename, via
// github.com/natefinch/atomic — the teacher's own write-then-rename idiom,
// promoted here from a hand-rolled os.WriteFile/os.Rename pair to the
// library it already carried as an indirect dependency). It returns the
// resulting ETag: the lowercase hex MD5 of the stored bytes.
func (s *Store) PutObject(bucket, key string, data io.Reader) (string, error) {
	if !IsValidBucketName(bucket) {
		return "", ErrInvalidBucketName
	}
	if !IsValidObjectKey(key) {
		return "", ErrInvalidKey
	}
	if exists, err := s.BucketExists(bucket); err != nil {
		return "", err
	} else if !exists {
		return "", ErrNoSuchBucket
	}

	path, err := s.objectPath(bucket, key)
	if err != nil {
		return "", err
	}
	if err := ensureParentDir(path); err != nil {
		return "", fmt.Errorf("storage: create object directories: %w", err)
	}

	h := md5.New()
	tee := io.TeeReader(data, h)
	if err := atomic.WriteFile(path, tee); err != nil {
		return "", fmt.Errorf("storage: write object: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Stat returns size and modification time for (bucket, key), or
// ErrNoSuchKey if it does not exist.
func (s *Store) Stat(bucket, key string) (ObjectInfo, error) {
	path, err := s.objectPath(bucket, key)
	if err != nil {
		return ObjectInfo{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ObjectInfo{}, ErrNoSuchKey
		}
		return ObjectInfo{}, err
	}
	if info.IsDir() {
		return ObjectInfo{}, ErrNoSuchKey
	}
	return ObjectInfo{Size: info.Size(), ModTime: info.ModTime().Unix()}, nil
}

// ETag recomputes the lowercase hex MD5 of the object's stored bytes, on
// demand, per §3 ("no sidecar metadata file exists").
func (s *Store) ETag(bucket, key string) (string, error) {
	path, err := s.objectPath(bucket, key)
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoSuchKey
		}
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Open returns a ReadSeekCloser over the object's full stored bytes.
// Callers needing a byte range seek and limit it themselves (see ByteRange).
func (s *Store) Open(bucket, key string) (*os.File, error) {
	path, err := s.objectPath(bucket, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSuchKey
		}
		return nil, err
	}
	return f, nil
}

// DeleteObject unlinks (bucket, key). A missing file is treated as
// success, per §4.5's idempotence requirement; empty parent directories
// left behind are not pruned.
func (s *Store) DeleteObject(bucket, key string) error {
	if !IsValidBucketName(bucket) {
		return ErrInvalidBucketName
	}
	if !IsValidObjectKey(key) {
		return ErrInvalidKey
	}
	path, err := s.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete object: %w", err)
	}
	return nil
}

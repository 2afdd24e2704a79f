package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Store is the filesystem-backed object store rooted at a single data
// directory. All bucket and object state lives under that root; there is
// no index, database, or cache — the filesystem is the sole source of
// truth, per §3.
type Store struct {
	dataDir string
}

// NewStore creates dataDir if missing and returns a Store rooted at it.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data directory: %w", err)
	}
	return &Store{dataDir: dataDir}, nil
}

// DataDir returns the root directory this store is rooted at.
func (s *Store) DataDir() string {
	return s.dataDir
}

// BucketInfo describes one entry of a ListBuckets response.
type BucketInfo struct {
	Name         string
	CreationTime int64 // unix seconds, taken from the directory's mtime
}

// BucketExists reports whether bucket has a directory under the data root.
func (s *Store) BucketExists(bucket string) (bool, error) {
	info, err := os.Stat(s.bucketPath(bucket))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// CreateBucket creates bucket's directory. Re-creating an existing bucket
// is idempotent success, per §4.5 and the supplemented behaviour in §12.
func (s *Store) CreateBucket(bucket string) error {
	if !IsValidBucketName(bucket) {
		return ErrInvalidBucketName
	}
	if err := os.MkdirAll(s.bucketPath(bucket), 0o755); err != nil {
		return fmt.Errorf("storage: create bucket: %w", err)
	}
	return nil
}

// DeleteBucket removes bucket's directory. It fails with ErrBucketNotEmpty
// if the directory has any entries, and ErrNoSuchBucket if it does not
// exist at all.
func (s *Store) DeleteBucket(bucket string) error {
	if !IsValidBucketName(bucket) {
		return ErrInvalidBucketName
	}
	path := s.bucketPath(bucket)
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNoSuchBucket
		}
		return fmt.Errorf("storage: read bucket: %w", err)
	}
	if len(entries) > 0 {
		return ErrBucketNotEmpty
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("storage: delete bucket: %w", err)
	}
	return nil
}

// ListBuckets enumerates immediate children of the data root, excluding
// the reserved .uploads subtree, sorted by name.
func (s *Store) ListBuckets() ([]BucketInfo, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("storage: list buckets: %w", err)
	}

	buckets := make([]BucketInfo, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || e.Name() == uploadsDirName {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		buckets = append(buckets, BucketInfo{
			Name:         e.Name(),
			CreationTime: info.ModTime().Unix(),
		})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Name < buckets[j].Name })
	return buckets, nil
}

// dirExists reports whether path is an existing directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ensureParentDir creates every intermediate directory above path.
func ensureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

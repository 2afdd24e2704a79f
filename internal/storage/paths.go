package storage

import (
	"path/filepath"
	"strings"
)

// bucketPath returns the on-disk directory for bucket.
func (s *Store) bucketPath(bucket string) string {
	return filepath.Join(s.dataDir, bucket)
}

// objectPath returns the on-disk file path for (bucket, key), after
// rejecting any ".." path segment or absolute-path prefix per §3's
// invariant that path mapping never touches the filesystem on a
// suspicious key.
func (s *Store) objectPath(bucket, key string) (string, error) {
	if err := validatePathSegments(key); err != nil {
		return "", err
	}
	return filepath.Join(s.bucketPath(bucket), key), nil
}

func validatePathSegments(key string) error {
	if strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}

// uploadDirPath returns the on-disk staging directory for uploadID.
func (s *Store) uploadDirPath(uploadID string) string {
	return filepath.Join(s.dataDir, uploadsDirName, uploadID)
}

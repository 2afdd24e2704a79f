package storage

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
)

// MaxPartNumber is the upper bound §4.5 places on part numbers.
const MaxPartNumber = 10000

const metaFileName = ".meta"

// InitiateMultipartUpload creates a new upload staging directory under
// <data_dir>/.uploads/<upload_id>/ and records the target bucket/key in
// its .meta file, per §3 and §4.5.
func (s *Store) InitiateMultipartUpload(bucket, key string) (string, error) {
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

	uploadID, err := newUploadID()
	if err != nil {
		return "", fmt.Errorf("storage: generate upload id: %w", err)
	}

	dir := s.uploadDirPath(uploadID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: create upload directory: %w", err)
	}

	meta := bucket + "\n" + key + "\n"
	if err := atomic.WriteFile(filepath.Join(dir, metaFileName), strings.NewReader(meta)); err != nil {
		return "", fmt.Errorf("storage: write upload metadata: %w", err)
	}

	return uploadID, nil
}

func newUploadID() (string, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw[:]), nil
}

// uploadMeta reads the bucket/key recorded by InitiateMultipartUpload.
func (s *Store) uploadMeta(uploadID string) (bucket, key string, err error) {
	data, err := os.ReadFile(filepath.Join(s.uploadDirPath(uploadID), metaFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", ErrNoSuchUpload
		}
		return "", "", err
	}
	lines := strings.SplitN(string(data), "\n", 3)
	if len(lines) < 2 {
		return "", "", ErrNoSuchUpload
	}
	return lines[0], lines[1], nil
}

// UploadExists reports whether uploadID has a live staging directory.
func (s *Store) UploadExists(uploadID string) bool {
	return dirExists(s.uploadDirPath(uploadID))
}

// UploadPart validates partNumber and writes data to
// <upload_id>/<partNumber> atomically, returning the part's ETag (hex
// MD5), per §4.5.
func (s *Store) UploadPart(uploadID string, partNumber int, data io.Reader) (string, error) {
	if !s.UploadExists(uploadID) {
		return "", ErrNoSuchUpload
	}
	if partNumber < 1 || partNumber > MaxPartNumber {
		return "", ErrInvalidArgument
	}

	path := filepath.Join(s.uploadDirPath(uploadID), strconv.Itoa(partNumber))
	h := md5.New()
	tee := io.TeeReader(data, h)
	if err := atomic.WriteFile(path, tee); err != nil {
		return "", fmt.Errorf("storage: write part: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// CompleteMultipartUpload concatenates every numbered part file under
// uploadID's staging directory, in ascending numeric order, into the
// target object named by the upload's recorded bucket/key — honouring
// on-disk order rather than any client-supplied part list, per §9 — then
// removes the staging directory. It returns the assembled object's ETag
// using the reference convention of §9: "<hex md5 of concatenated
// bytes>-<part count>".
func (s *Store) CompleteMultipartUpload(uploadID string) (bucket, key, etag string, err error) {
	if !s.UploadExists(uploadID) {
		return "", "", "", ErrNoSuchUpload
	}
	bucket, key, err = s.uploadMeta(uploadID)
	if err != nil {
		return "", "", "", err
	}

	parts, err := s.orderedPartFiles(uploadID)
	if err != nil {
		return "", "", "", err
	}

	destPath, err := s.objectPath(bucket, key)
	if err != nil {
		return "", "", "", err
	}
	if err := ensureParentDir(destPath); err != nil {
		return "", "", "", fmt.Errorf("storage: create object directories: %w", err)
	}

	pr, pw := io.Pipe()
	h := md5.New()
	go func() {
		var werr error
		defer func() { _ = pw.CloseWithError(werr) }()
		for _, partPath := range parts {
			f, oerr := os.Open(partPath)
			if oerr != nil {
				werr = oerr
				return
			}
			_, werr = io.Copy(pw, f)
			f.Close()
			if werr != nil {
				return
			}
		}
	}()

	tee := io.TeeReader(pr, h)
	if err := atomic.WriteFile(destPath, tee); err != nil {
		return "", "", "", fmt.Errorf("storage: assemble multipart object: %w", err)
	}

	if err := os.RemoveAll(s.uploadDirPath(uploadID)); err != nil {
		return "", "", "", fmt.Errorf("storage: clean up upload directory: %w", err)
	}

	etag = fmt.Sprintf("%s-%d", hex.EncodeToString(h.Sum(nil)), len(parts))
	return bucket, key, etag, nil
}

// AbortMultipartUpload removes uploadID's staging directory recursively.
func (s *Store) AbortMultipartUpload(uploadID string) error {
	if !s.UploadExists(uploadID) {
		return ErrNoSuchUpload
	}
	if err := os.RemoveAll(s.uploadDirPath(uploadID)); err != nil {
		return fmt.Errorf("storage: abort upload: %w", err)
	}
	return nil
}

// orderedPartFiles lists the numerically-named part files under uploadID's
// staging directory, sorted ascending by part number. Gaps are permitted
// and simply contribute no bytes, per §3.
func (s *Store) orderedPartFiles(uploadID string) ([]string, error) {
	dir := s.uploadDirPath(uploadID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: read upload directory: %w", err)
	}

	type numbered struct {
		n    int
		path string
	}
	var parts []numbered
	for _, e := range entries {
		if e.IsDir() || e.Name() == metaFileName {
			continue
		}
		n, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		parts = append(parts, numbered{n: n, path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].n < parts[j].n })

	paths := make([]string, len(parts))
	for i, p := range parts {
		paths[i] = p.path
	}
	return paths, nil
}

package storage

import (
	"encoding/base64"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ListedObject is one Contents entry of a ListObjectsV2 result.
type ListedObject struct {
	Key     string
	Size    int64
	ModTime int64
}

// ListResult is the decoded form of a ListObjectsV2 response, before XML
// rendering.
type ListResult struct {
	Contents              []ListedObject
	CommonPrefixes        []string
	IsTruncated           bool
	NextContinuationToken string
}

// ListObjectsV2Options mirrors the query parameters §4.5 defines for
// ListObjectsV2.
type ListObjectsV2Options struct {
	Prefix            string
	Delimiter         string
	MaxKeys           int
	ContinuationToken string
}

// EncodeContinuationToken renders key as the opaque, URL-safe continuation
// token §9 specifies: base64 of the raw next key to visit.
func EncodeContinuationToken(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

// decodeContinuationToken reverses EncodeContinuationToken. An invalid
// token is treated as "no token" rather than an error, matching how a
// malformed Range header degrades to InvalidArgument only when the field
// is load-bearing.
func decodeContinuationToken(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// ListObjectsV2 performs the depth-first traversal of §4.5: it walks
// <bucket>/ in lexicographic order, grouping any key that contains the
// delimiter (at or after the prefix) into a CommonPrefix, and stops after
// MaxKeys combined emissions.
func (s *Store) ListObjectsV2(bucket string, opts ListObjectsV2Options) (ListResult, error) {
	if !IsValidBucketName(bucket) {
		return ListResult{}, ErrInvalidBucketName
	}
	if exists, err := s.BucketExists(bucket); err != nil {
		return ListResult{}, err
	} else if !exists {
		return ListResult{}, ErrNoSuchBucket
	}

	maxKeys := opts.MaxKeys
	if maxKeys <= 0 || maxKeys > 1000 {
		maxKeys = 1000
	}

	continuationKey, hasContinuation := decodeContinuationToken(opts.ContinuationToken)

	keys, err := s.sortedKeys(bucket)
	if err != nil {
		return ListResult{}, err
	}

	result := ListResult{}
	seenPrefixes := make(map[string]bool)

	for _, k := range keys {
		if hasContinuation && k.key < continuationKey {
			continue
		}
		if opts.Prefix != "" && !strings.HasPrefix(k.key, opts.Prefix) {
			continue
		}

		emitted := k.key
		isPrefix := false
		if opts.Delimiter != "" {
			searchFrom := len(opts.Prefix)
			if idx := strings.Index(k.key[searchFrom:], opts.Delimiter); idx != -1 {
				cut := searchFrom + idx + len(opts.Delimiter)
				emitted = k.key[:cut]
				isPrefix = true
			}
		}

		if isPrefix {
			if seenPrefixes[emitted] {
				continue
			}
		}

		if len(result.Contents)+len(result.CommonPrefixes) >= maxKeys {
			result.IsTruncated = true
			result.NextContinuationToken = EncodeContinuationToken(k.key)
			break
		}

		if isPrefix {
			seenPrefixes[emitted] = true
			result.CommonPrefixes = append(result.CommonPrefixes, emitted)
		} else {
			result.Contents = append(result.Contents, ListedObject{
				Key:     k.key,
				Size:    k.size,
				ModTime: k.modTime,
			})
		}
	}

	sort.Strings(result.CommonPrefixes)
	return result, nil
}

type bucketKey struct {
	key     string
	size    int64
	modTime int64
}

// sortedKeys walks bucket's directory tree and returns every regular
// file's path relative to the bucket root, in lexicographic order.
func (s *Store) sortedKeys(bucket string) ([]bucketKey, error) {
	root := s.bucketPath(bucket)
	var keys []bucketKey

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		keys = append(keys, bucketKey{key: rel, size: info.Size(), modTime: info.ModTime().Unix()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].key < keys[j].key })
	return keys, nil
}

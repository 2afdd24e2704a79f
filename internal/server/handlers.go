package server

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"crate/internal/apierr"
	"crate/internal/httpio"
	"crate/internal/primitives"
	"crate/internal/s3xml"
	"crate/internal/storage"
)

// requestBody returns r's body, transparently decoding the aws-chunked
// envelope when the client signals STREAMING-AWS4-HMAC-SHA256-PAYLOAD, and
// bounding it to httpio.MaxBodySize either way (§4.3).
func requestBody(r *http.Request) io.Reader {
	body := io.Reader(r.Body)
	if r.Header.Get("X-Amz-Content-Sha256") == httpio.StreamingPayloadHint {
		body = httpio.NewChunkedReader(body)
	}
	return http.MaxBytesReader(nil, io.NopCloser(body), httpio.MaxBodySize)
}

// handleListBuckets implements ListBuckets: GET /.
func (s *Server) handleListBuckets(w http.ResponseWriter, r *http.Request) {
	buckets, err := s.store.ListBuckets()
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	result := s3xml.ListAllMyBucketsResult{
		XMLNS: s3xml.Namespace,
		Owner: s3xml.Owner{ID: s.cfg.Credential.AccessKeyID, DisplayName: s.cfg.Credential.AccessKeyID},
	}
	for _, b := range buckets {
		result.Buckets = append(result.Buckets, s3xml.Bucket{
			Name:         b.Name,
			CreationDate: primitives.FormatISO8601(b.CreationTime),
		})
	}
	writeXML(w, http.StatusOK, result)
}

// handleBucketGet dispatches GET /{bucket} to ListObjectsV2 when the
// list-type=2 query marker is present; any other query shape at this path
// has no defined operation in §4.6.
func (s *Server) handleBucketGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("list-type") != "2" {
		writeError(w, r, apierr.ErrMethodNotAllowed)
		return
	}

	bucket := chi.URLParam(r, "bucket")
	maxKeys := 1000
	if v := q.Get("max-keys"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			maxKeys = n
		}
	}

	result, err := s.store.ListObjectsV2(bucket, storage.ListObjectsV2Options{
		Prefix:            q.Get("prefix"),
		Delimiter:         q.Get("delimiter"),
		MaxKeys:           maxKeys,
		ContinuationToken: q.Get("continuation-token"),
	})
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	out := s3xml.ListBucketResult{
		XMLNS:                 s3xml.Namespace,
		Name:                  bucket,
		Prefix:                q.Get("prefix"),
		Delimiter:             q.Get("delimiter"),
		MaxKeys:               maxKeys,
		KeyCount:              len(result.Contents) + len(result.CommonPrefixes),
		IsTruncated:           result.IsTruncated,
		ContinuationToken:     q.Get("continuation-token"),
		NextContinuationToken: result.NextContinuationToken,
	}
	for _, obj := range result.Contents {
		etag, _ := s.store.ETag(bucket, obj.Key)
		out.Contents = append(out.Contents, s3xml.ObjectSummary{
			Key:          obj.Key,
			LastModified: primitives.FormatISO8601(obj.ModTime),
			ETag:         `"` + etag + `"`,
			Size:         obj.Size,
			StorageClass: "STANDARD",
		})
	}
	for _, p := range result.CommonPrefixes {
		out.CommonPrefixes = append(out.CommonPrefixes, s3xml.CommonPrefix{Prefix: p})
	}
	writeXML(w, http.StatusOK, out)
}

// handleCreateBucket implements CreateBucket: PUT /{bucket}.
func (s *Server) handleCreateBucket(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	if err := s.store.CreateBucket(bucket); err != nil {
		writeStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleDeleteBucket implements DeleteBucket: DELETE /{bucket}.
func (s *Server) handleDeleteBucket(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	if err := s.store.DeleteBucket(bucket); err != nil {
		writeStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleObjectPut dispatches PUT /{bucket}/{key} to UploadPart when both
// uploadId and partNumber are present, or PutObject otherwise.
func (s *Server) handleObjectPut(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := chi.URLParam(r, "*")
	q := r.URL.Query()

	if q.Has("uploadId") && q.Has("partNumber") {
		s.handleUploadPart(w, r, q.Get("uploadId"), q.Get("partNumber"))
		return
	}

	etag, err := s.store.PutObject(bucket, key, requestBody(r))
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	slog.Info("put object", "bucket", bucket, "key", key, "size", humanize.Bytes(uint64(max(r.ContentLength, 0))), "request_id", requestIDFrom(r))
	w.Header().Set("ETag", `"`+etag+`"`)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleUploadPart(w http.ResponseWriter, r *http.Request, uploadID, partNumberStr string) {
	partNumber, err := strconv.Atoi(partNumberStr)
	if err != nil {
		writeError(w, r, apierr.ErrInvalidArgument)
		return
	}
	etag, err := s.store.UploadPart(uploadID, partNumber, requestBody(r))
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	slog.Info("upload part", "upload_id", uploadID, "part_number", partNumber, "size", humanize.Bytes(uint64(max(r.ContentLength, 0))), "request_id", requestIDFrom(r))
	w.Header().Set("ETag", `"`+etag+`"`)
	w.WriteHeader(http.StatusOK)
}

// handleObjectPost dispatches POST /{bucket}/{key} to InitiateMultipart
// (bare "uploads" marker) or CompleteMultipart (uploadId present).
func (s *Server) handleObjectPost(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := chi.URLParam(r, "*")
	q := r.URL.Query()

	switch {
	case q.Has("uploads"):
		s.handleInitiateMultipart(w, r, bucket, key)
	case q.Has("uploadId"):
		s.handleCompleteMultipart(w, r, q.Get("uploadId"))
	default:
		writeError(w, r, apierr.ErrMethodNotAllowed)
	}
}

func (s *Server) handleInitiateMultipart(w http.ResponseWriter, r *http.Request, bucket, key string) {
	uploadID, err := s.store.InitiateMultipartUpload(bucket, key)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeXML(w, http.StatusOK, s3xml.InitiateMultipartUploadResult{
		XMLNS:    s3xml.Namespace,
		Bucket:   bucket,
		Key:      key,
		UploadID: uploadID,
	})
}

func (s *Server) handleCompleteMultipart(w http.ResponseWriter, r *http.Request, uploadID string) {
	// The client-supplied part list is parsed only for well-formedness;
	// assembly order follows on-disk part numbers, per §9.
	var parts s3xml.CompleteMultipartUpload
	body, err := io.ReadAll(io.LimitReader(r.Body, httpio.MaxBodySize))
	if err != nil {
		writeError(w, r, apierr.ErrInvalidArgument)
		return
	}
	if len(body) > 0 {
		if err := xml.Unmarshal(body, &parts); err != nil {
			writeError(w, r, apierr.ErrInvalidArgument)
			return
		}
	}

	bucket, key, etag, err := s.store.CompleteMultipartUpload(uploadID)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	writeXML(w, http.StatusOK, s3xml.CompleteMultipartUploadResult{
		XMLNS:    s3xml.Namespace,
		Location: fmt.Sprintf("/%s/%s", bucket, key),
		Bucket:   bucket,
		Key:      key,
		ETag:     `"` + etag + `"`,
	})
}

// handleObjectDelete dispatches DELETE /{bucket}/{key} to AbortMultipart
// when uploadId is present, or DeleteObject otherwise.
func (s *Server) handleObjectDelete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if uploadID := q.Get("uploadId"); uploadID != "" {
		if err := s.store.AbortMultipartUpload(uploadID); err != nil {
			writeStorageError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	bucket := chi.URLParam(r, "bucket")
	key := chi.URLParam(r, "*")
	if err := s.store.DeleteObject(bucket, key); err != nil {
		writeStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetObject implements GetObject: GET /{bucket}/{key}, honouring an
// optional Range header per §4.5.
func (s *Server) handleGetObject(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := chi.URLParam(r, "*")
	s.serveObject(w, r, bucket, key, true)
}

// handleHeadObject implements HeadObject: identical to GetObject but
// never writes a body.
func (s *Server) handleHeadObject(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := chi.URLParam(r, "*")
	s.serveObject(w, r, bucket, key, false)
}

func (s *Server) serveObject(w http.ResponseWriter, r *http.Request, bucket, key string, withBody bool) {
	info, err := s.store.Stat(bucket, key)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	etag, err := s.store.ETag(bucket, key)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	w.Header().Set("ETag", `"`+etag+`"`)
	w.Header().Set("Last-Modified", primitives.FormatHTTPDate(info.ModTime))
	w.Header().Set("Accept-Ranges", "bytes")

	rangeHeader := r.Header.Get("Range")
	if rangeHeader != "" {
		byteRange, ok := storage.ParseRange(rangeHeader, info.Size)
		if !ok {
			writeError(w, r, apierr.ErrInvalidArgument)
			return
		}
		w.Header().Set("Content-Range", byteRange.ContentRange(info.Size))
		w.Header().Set("Content-Length", strconv.FormatInt(byteRange.Len(), 10))
		w.WriteHeader(http.StatusPartialContent)
		if withBody {
			s.streamRange(w, r, bucket, key, byteRange)
		}
		return
	}

	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.WriteHeader(http.StatusOK)
	if withBody {
		f, err := s.store.Open(bucket, key)
		if err != nil {
			logInternalError(r, err)
			return
		}
		defer f.Close()
		_, _ = io.Copy(w, f)
	}
}

func (s *Server) streamRange(w http.ResponseWriter, r *http.Request, bucket, key string, byteRange storage.ByteRange) {
	f, err := s.store.Open(bucket, key)
	if err != nil {
		logInternalError(r, err)
		return
	}
	defer f.Close()

	if _, err := f.Seek(byteRange.Start, io.SeekStart); err != nil {
		logInternalError(r, err)
		return
	}
	_, _ = io.CopyN(w, f, byteRange.Len())
}

// writeXML renders v as an XML document with the UTF-8 application/xml
// content type §6 requires.
func writeXML(w http.ResponseWriter, status int, v any) {
	payload, err := xml.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(payload)
}

package server

import (
	"errors"
	"net/http"

	"crate/internal/apierr"
	"crate/internal/storage"
)

// ErrAccessDenied exposes apierr's AccessDenied to the auth middleware
// without it needing its own import of apierr's full var set.
func ErrAccessDenied() *apierr.APIError { return apierr.ErrAccessDenied }

// mapStorageError translates a storage-layer sentinel error into the §7
// API error taxonomy.
func mapStorageError(err error) *apierr.APIError {
	switch {
	case errors.Is(err, storage.ErrInvalidBucketName):
		return apierr.ErrInvalidBucketName
	case errors.Is(err, storage.ErrInvalidKey):
		return apierr.ErrInvalidKey
	case errors.Is(err, storage.ErrInvalidArgument):
		return apierr.ErrInvalidArgument
	case errors.Is(err, storage.ErrNoSuchBucket):
		return apierr.ErrNoSuchBucket
	case errors.Is(err, storage.ErrNoSuchKey):
		return apierr.ErrNoSuchKey
	case errors.Is(err, storage.ErrNoSuchUpload):
		return apierr.ErrNoSuchUpload
	case errors.Is(err, storage.ErrBucketNotEmpty):
		return apierr.ErrBucketNotEmpty
	default:
		return apierr.ErrInternalError
	}
}

// writeError renders apiErr as the XML error envelope. It does not log;
// writeStorageError logs the unexpected failures it maps to InternalError.
func writeError(w http.ResponseWriter, r *http.Request, apiErr *apierr.APIError) {
	apierr.Write(w, apiErr, r.URL.Path, requestIDFrom(r))
}

// writeStorageError maps and writes a storage-layer error in one step,
// logging unexpected (non-taxonomy) failures.
func writeStorageError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := mapStorageError(err)
	if apiErr == apierr.ErrInternalError {
		logInternalError(r, err)
	}
	writeError(w, r, apiErr)
}

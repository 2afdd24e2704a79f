package sigv4

import (
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"crate/internal/hashmac"
)

// Credential is the single (access_key, secret_key) pair this server
// recognises. §3 scopes this to exactly one credential; there is no
// multi-tenant lookup.
type Credential struct {
	AccessKeyID     string
	SecretAccessKey string
}

// Engine authenticates inbound HTTP requests against a single Credential
// using AWS Signature Version 4. It is the sole producer of AccessDenied
// failures in the server (§7): handlers never fabricate that outcome.
type Engine struct {
	Credential Credential
}

// NewEngine constructs an Engine bound to the given credential.
func NewEngine(cred Credential) *Engine {
	return &Engine{Credential: cred}
}

// Authenticate verifies r's Authorization header against e's credential.
// On success it returns the parsed header (callers may want the region or
// date for logging); on failure it returns a non-nil error identifying why.
func (e *Engine) Authenticate(r *http.Request) (*AuthHeader, error) {
	value := r.Header.Get("Authorization")
	header, err := ParseAuthorizationHeader(value)
	if err != nil {
		return nil, err
	}

	if header.AccessKeyID != e.Credential.AccessKeyID {
		return nil, ErrSignatureMismatch
	}

	amzDate := r.Header.Get("X-Amz-Date")
	if amzDate == "" {
		return nil, ErrMissingAmzDate
	}

	payloadHash := r.Header.Get("X-Amz-Content-Sha256")
	if payloadHash == "" {
		return nil, ErrMissingPayloadHash
	}

	canonicalRequest := BuildCanonicalRequest(r, header.SignedHeaders, payloadHash)
	canonicalRequestHashHex := hashmac.SHA256Hex([]byte(canonicalRequest))

	stringToSign := BuildStringToSign(amzDate, header.CredentialScope(), canonicalRequestHashHex)

	signingKey := SigningKey(e.Credential.SecretAccessKey, header.DateStamp, header.Region, header.Service)
	computed := hashmac.HMACSHA256(signingKey, []byte(stringToSign))

	presented, err := hex.DecodeString(header.Signature)
	if err != nil {
		return nil, ErrSignatureMismatch
	}

	if subtle.ConstantTimeCompare(computed, presented) != 1 {
		return nil, ErrSignatureMismatch
	}

	return header, nil
}

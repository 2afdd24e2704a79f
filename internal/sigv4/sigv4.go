// Package sigv4 implements the AWS Signature Version 4 request
// authentication scheme: parsing the Authorization header, building the
// canonical request and string-to-sign, deriving the per-request signing
// key, and comparing signatures in constant time. It is grounded on the
// teacher's internal/auth/aws_hmac.go, generalised into its own package and
// reusing internal/primitives and internal/hashmac instead of re-deriving
// URI-encoding and HMAC helpers locally.
package sigv4

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"crate/internal/hashmac"
	"crate/internal/primitives"
)

const (
	// AuthPrefix is the literal the Authorization header must begin with.
	AuthPrefix = "AWS4-HMAC-SHA256 "

	// Terminator is the fixed final segment of the credential scope.
	Terminator = "aws4_request"

	// Service is the only service this engine signs for.
	Service = "s3"

	// AmzDateLayout is the reference layout for the X-Amz-Date header.
	AmzDateLayout = "20060102T150405Z"
)

// ErrMalformedHeader is returned when the Authorization header is absent,
// does not start with AuthPrefix, or is missing one of the three required
// fields (Credential, SignedHeaders, Signature).
var ErrMalformedHeader = errors.New("sigv4: malformed authorization header")

// ErrMissingAmzDate is returned when the X-Amz-Date header is absent.
var ErrMissingAmzDate = errors.New("sigv4: missing x-amz-date header")

// ErrMissingPayloadHash is returned when the X-Amz-Content-Sha256 header is
// absent.
var ErrMissingPayloadHash = errors.New("sigv4: missing x-amz-content-sha256 header")

// ErrSignatureMismatch is returned when the computed signature does not
// match the one presented by the client.
var ErrSignatureMismatch = errors.New("sigv4: signature mismatch")

// AuthHeader is the parsed form of an "AWS4-HMAC-SHA256 ..." Authorization
// header value.
type AuthHeader struct {
	AccessKeyID   string
	DateStamp     string // YYYYMMDD
	Region        string
	Service       string
	SignedHeaders []string // lowercase, in header order (already sorted by the client)
	Signature     string   // lowercase hex
}

// CredentialScope renders the "<date>/<region>/<service>/aws4_request"
// scope string for this header.
func (h *AuthHeader) CredentialScope() string {
	return strings.Join([]string{h.DateStamp, h.Region, h.Service, Terminator}, "/")
}

// ParseAuthorizationHeader parses the value of an Authorization header into
// its Credential, SignedHeaders, and Signature fields. It rejects anything
// not beginning with AuthPrefix or missing a required field.
func ParseAuthorizationHeader(value string) (*AuthHeader, error) {
	if !strings.HasPrefix(value, AuthPrefix) {
		return nil, ErrMalformedHeader
	}
	rest := strings.TrimSpace(strings.TrimPrefix(value, AuthPrefix))

	fields := make(map[string]string, 3)
	for _, part := range strings.Split(rest, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	credential, okCred := fields["Credential"]
	signedHeadersStr, okSigned := fields["SignedHeaders"]
	signature, okSig := fields["Signature"]
	if !okCred || !okSigned || !okSig {
		return nil, ErrMalformedHeader
	}

	credParts := strings.Split(credential, "/")
	if len(credParts) != 5 || credParts[4] != Terminator {
		return nil, ErrMalformedHeader
	}

	return &AuthHeader{
		AccessKeyID:   credParts[0],
		DateStamp:     credParts[1],
		Region:        credParts[2],
		Service:       credParts[3],
		SignedHeaders: strings.Split(signedHeadersStr, ";"),
		Signature:     strings.ToLower(signature),
	}, nil
}

// BuildCanonicalRequest builds the six-line canonical request described in
// §4.4: method, canonical URI, canonical query string, canonical headers,
// signed-header list, and payload hash.
func BuildCanonicalRequest(r *http.Request, signedHeaders []string, payloadHash string) string {
	canonicalURI := primitives.URIEncode(escapedPathOrRoot(r.URL), false)
	canonicalQuery := canonicalQueryString(r.URL)

	lowerNames := make([]string, len(signedHeaders))
	for i, h := range signedHeaders {
		lowerNames[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var headerBuf strings.Builder
	for _, name := range lowerNames {
		if name == "" {
			continue
		}
		headerBuf.WriteString(name)
		headerBuf.WriteByte(':')
		headerBuf.WriteString(canonicalHeaderValue(headerValue(r, name)))
		headerBuf.WriteByte('\n')
	}

	var b strings.Builder
	b.WriteString(r.Method)
	b.WriteByte('\n')
	b.WriteString(canonicalURI)
	b.WriteByte('\n')
	b.WriteString(canonicalQuery)
	b.WriteByte('\n')
	b.WriteString(headerBuf.String())
	b.WriteByte('\n')
	b.WriteString(strings.Join(lowerNames, ";"))
	b.WriteByte('\n')
	b.WriteString(payloadHash)
	return b.String()
}

func escapedPathOrRoot(u *url.URL) string {
	if u.EscapedPath() == "" {
		return "/"
	}
	return u.EscapedPath()
}

func headerValue(r *http.Request, lowerName string) string {
	if lowerName == "host" {
		if r.Host != "" {
			return r.Host
		}
		return r.URL.Host
	}
	return r.Header.Get(lowerName)
}

func canonicalHeaderValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	return strings.Join(strings.Fields(v), " ")
}

// canonicalQueryString decodes, re-encodes with slash-encoding enabled, and
// sorts every query parameter of u, per §4.4 step 3.
func canonicalQueryString(u *url.URL) string {
	if u.RawQuery == "" {
		return ""
	}

	values := u.Query()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(values))
	for _, k := range keys {
		vs := append([]string(nil), values[k]...)
		sort.Strings(vs)
		encodedKey := primitives.URIEncode(k, true)
		for _, v := range vs {
			parts = append(parts, encodedKey+"="+primitives.URIEncode(v, true))
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, "&")
}

// BuildStringToSign assembles the four-line string-to-sign from the amz
// date, credential scope, and canonical request hash.
func BuildStringToSign(amzDate, credentialScope, canonicalRequestHashHex string) string {
	var b strings.Builder
	b.WriteString("AWS4-HMAC-SHA256\n")
	b.WriteString(amzDate)
	b.WriteByte('\n')
	b.WriteString(credentialScope)
	b.WriteByte('\n')
	b.WriteString(canonicalRequestHashHex)
	return b.String()
}

// SigningKey derives the per-request signing key through the four-stage
// HMAC chain: date -> region -> service -> aws4_request.
func SigningKey(secretKey, dateStamp, region, service string) []byte {
	kDate := hashmac.HMACSHA256([]byte("AWS4"+secretKey), []byte(dateStamp))
	kRegion := hashmac.HMACSHA256(kDate, []byte(region))
	kService := hashmac.HMACSHA256(kRegion, []byte(service))
	return hashmac.HMACSHA256(kService, []byte(Terminator))
}

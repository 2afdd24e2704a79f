package server

import (
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crate/internal/config"
	"crate/internal/hashmac"
	"crate/internal/sigv4"
)

const (
	testAccessKey = "testkey"
	testSecretKey = "testsecret"
	testRegion    = "us-east-1"
)

// signRequest computes and attaches a full SigV4 Authorization header to r,
// signing Host, X-Amz-Content-Sha256 and X-Amz-Date only; any other header
// already set (such as Range) is sent unsigned.
func signRequest(t *testing.T, r *http.Request, body []byte) {
	t.Helper()

	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	amzDate := now.Format("20060102T150405Z")
	dateStamp := now.Format("20060102")

	payloadHash := hashmac.SHA256Hex(body)
	r.Header.Set("X-Amz-Date", amzDate)
	r.Header.Set("X-Amz-Content-Sha256", payloadHash)
	if r.Host == "" {
		r.Host = r.URL.Host
	}

	signedHeaders := []string{"host", "x-amz-content-sha256", "x-amz-date"}
	canonicalRequest := sigv4.BuildCanonicalRequest(r, signedHeaders, payloadHash)
	canonicalRequestHashHex := hashmac.SHA256Hex([]byte(canonicalRequest))

	credentialScope := strings.Join([]string{dateStamp, testRegion, sigv4.Service, sigv4.Terminator}, "/")
	stringToSign := sigv4.BuildStringToSign(amzDate, credentialScope, canonicalRequestHashHex)

	signingKey := sigv4.SigningKey(testSecretKey, dateStamp, testRegion, sigv4.Service)
	signature := hex.EncodeToString(hashmac.HMACSHA256(signingKey, []byte(stringToSign)))

	auth := sigv4.AuthPrefix +
		"Credential=" + testAccessKey + "/" + credentialScope + "," +
		"SignedHeaders=" + strings.Join(signedHeaders, ";") + "," +
		"Signature=" + signature
	r.Header.Set("Authorization", auth)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.New(
		config.WithDataDir(t.TempDir()),
		config.WithRegion(testRegion),
		config.WithCredential(sigv4.Credential{AccessKeyID: testAccessKey, SecretAccessKey: testSecretKey}),
	)
	srv, err := New(cfg)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doSigned(t *testing.T, ts *httptest.Server, method, path string, body []byte) *http.Response {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		bodyReader = strings.NewReader(string(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, bodyReader)
	require.NoError(t, err)
	signRequest(t, req, body)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func TestUnauthenticatedRequestIsDenied(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCreateBucketThenListBuckets(t *testing.T) {
	ts := newTestServer(t)

	resp := doSigned(t, ts, http.MethodPut, "/mybucket", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2 := doSigned(t, ts, http.MethodGet, "/", nil)
	defer resp2.Body.Close()
	body, err := io.ReadAll(resp2.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "mybucket")
}

func TestPutGetObjectRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	resp := doSigned(t, ts, http.MethodPut, "/mybucket", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	content := []byte("hello")
	putResp := doSigned(t, ts, http.MethodPut, "/mybucket/hello.txt", content)
	defer putResp.Body.Close()
	require.Equal(t, http.StatusOK, putResp.StatusCode)
	assert.Equal(t, `"5d41402abc4b2a76b9719d911017c592"`, putResp.Header.Get("ETag"))

	getResp := doSigned(t, ts, http.MethodGet, "/mybucket/hello.txt", nil)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	got, err := io.ReadAll(getResp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestRangeGet(t *testing.T) {
	ts := newTestServer(t)
	doSigned(t, ts, http.MethodPut, "/mybucket", nil).Body.Close()
	doSigned(t, ts, http.MethodPut, "/mybucket/data.txt", []byte("0123456789")).Body.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/mybucket/data.txt", nil)
	require.NoError(t, err)
	req.Header.Set("Range", "bytes=0-3")
	signRequest(t, req, nil)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusPartialContent, resp.StatusCode)
	assert.Equal(t, "bytes 0-3/10", resp.Header.Get("Content-Range"))

	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(got))
}

func TestDeleteNonEmptyBucketConflicts(t *testing.T) {
	ts := newTestServer(t)
	doSigned(t, ts, http.MethodPut, "/mybucket", nil).Body.Close()
	doSigned(t, ts, http.MethodPut, "/mybucket/key", []byte("x")).Body.Close()

	resp := doSigned(t, ts, http.MethodDelete, "/mybucket", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestDeleteMissingObjectIsIdempotent(t *testing.T) {
	ts := newTestServer(t)
	doSigned(t, ts, http.MethodPut, "/mybucket", nil).Body.Close()

	resp := doSigned(t, ts, http.MethodDelete, "/mybucket/missing.txt", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHeadMissingKeyReturnsNoSuchKey(t *testing.T) {
	ts := newTestServer(t)
	doSigned(t, ts, http.MethodPut, "/mybucket", nil).Body.Close()

	resp := doSigned(t, ts, http.MethodHead, "/mybucket/missing.txt", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMultipartUploadLifecycle(t *testing.T) {
	ts := newTestServer(t)
	doSigned(t, ts, http.MethodPut, "/mybucket", nil).Body.Close()

	initResp := doSigned(t, ts, http.MethodPost, "/mybucket/big.bin?uploads", nil)
	defer initResp.Body.Close()
	require.Equal(t, http.StatusOK, initResp.StatusCode)
	initBody, err := io.ReadAll(initResp.Body)
	require.NoError(t, err)

	uploadID := extractBetween(string(initBody), "<UploadId>", "</UploadId>")
	require.NotEmpty(t, uploadID)

	part1 := doSigned(t, ts, http.MethodPut, "/mybucket/big.bin?uploadId="+uploadID+"&partNumber=1", []byte("AAAA"))
	part1.Body.Close()
	require.Equal(t, http.StatusOK, part1.StatusCode)

	part2 := doSigned(t, ts, http.MethodPut, "/mybucket/big.bin?uploadId="+uploadID+"&partNumber=2", []byte("BBBB"))
	part2.Body.Close()
	require.Equal(t, http.StatusOK, part2.StatusCode)

	completeBody := []byte(`<CompleteMultipartUpload><Part><PartNumber>1</PartNumber></Part><Part><PartNumber>2</PartNumber></Part></CompleteMultipartUpload>`)
	completeResp := doSigned(t, ts, http.MethodPost, "/mybucket/big.bin?uploadId="+uploadID, completeBody)
	defer completeResp.Body.Close()
	require.Equal(t, http.StatusOK, completeResp.StatusCode)

	getResp := doSigned(t, ts, http.MethodGet, "/mybucket/big.bin", nil)
	defer getResp.Body.Close()
	got, err := io.ReadAll(getResp.Body)
	require.NoError(t, err)
	assert.Equal(t, "AAAABBBB", string(got))
}

func extractBetween(s, start, end string) string {
	i := strings.Index(s, start)
	if i == -1 {
		return ""
	}
	i += len(start)
	j := strings.Index(s[i:], end)
	if j == -1 {
		return ""
	}
	return s[i : i+j]
}

package httpio

// The compile-time bounds of §6: header size, body size, and the bucket/key
// length limits validation relies on. net/http enforces MaxHeaderSize via
// http.Server.MaxHeaderBytes and body size via http.MaxBytesReader at the
// call site (cmd/cratesrv and internal/server wire both), rather than this
// package re-parsing the request line and header block by hand — §4.3's
// bounded reader is satisfied by net/http's own request parser operating
// under these limits, matching every repo in the retrieval pack that builds
// on net/http rather than a hand-rolled socket parser.
const (
	MaxHeaderSize   = 8 * 1024
	MaxBodySize     = 5 * 1024 * 1024 * 1024
	MaxKeyLength    = 1024
	MaxBucketLength = 63
	MinBucketLength = 3
)

// Package config defines the immutable configuration record §6 calls for:
// a data directory, a single credential, a region, and a listen address.
// It is deliberately inert — no flag parsing, no environment lookups, no
// file format — so that loading configuration stays an external concern
// (cmd/cratesrv owns that), per §1's "out of scope" list. The functional
// options shape is grounded on the teacher's internal/core/config.go.
package config

import "crate/internal/sigv4"

// Config is the immutable record handed to the server constructor.
type Config struct {
	DataDir    string
	ListenAddr string
	// Region is the operator's declared signing region. It is accepted for
	// completeness but never consulted during verification: sigv4.Engine
	// derives the signing key from the region present in the client's own
	// Authorization header (§4.4), not from this field, so any region a
	// client signs for is implicitly accepted.
	Region string

	Credential sigv4.Credential
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithDataDir sets the filesystem root objects and buckets are stored
// under.
func WithDataDir(dir string) Option {
	return func(c *Config) { c.DataDir = dir }
}

// WithListenAddr sets the address the HTTP server binds to.
func WithListenAddr(addr string) Option {
	return func(c *Config) { c.ListenAddr = addr }
}

// WithRegion sets the SigV4 region this server claims to be in. See
// Config.Region: the value is record-keeping only and plays no part in
// request verification.
func WithRegion(region string) Option {
	return func(c *Config) { c.Region = region }
}

// WithCredential sets the single recognised (access_key, secret_key) pair.
func WithCredential(cred sigv4.Credential) Option {
	return func(c *Config) { c.Credential = cred }
}

// defaultRegion matches the teacher's own default and the value most
// client SDKs fall back to absent explicit configuration.
const defaultRegion = "us-east-1"

// New builds a Config from opts, applied in order over a set of
// reasonable defaults.
func New(opts ...Option) Config {
	cfg := Config{
		DataDir:    "./data",
		ListenAddr: ":9000",
		Region:     defaultRegion,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

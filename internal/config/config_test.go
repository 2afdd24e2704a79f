package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crate/internal/sigv4"
)

func TestNewAppliesDefaults(t *testing.T) {
	cfg := New()
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "us-east-1", cfg.Region)
}

func TestNewAppliesOptionsOverDefaults(t *testing.T) {
	cfg := New(
		WithDataDir("/tmp/data"),
		WithListenAddr(":8080"),
		WithRegion("eu-west-1"),
		WithCredential(sigv4.Credential{AccessKeyID: "k", SecretAccessKey: "s"}),
	)
	assert.Equal(t, "/tmp/data", cfg.DataDir)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "k", cfg.Credential.AccessKeyID)
}

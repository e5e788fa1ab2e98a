package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCORSOriginsFallBackToLocalhost(t *testing.T) {
	req := require.New(t)
	cfg := &Config{Port: "8080"}

	// cors.New panics on an empty origin list, so the zero value must
	// still yield something bootable
	origins := cfg.CORSOrigins()
	req.NotEmpty(origins)
	req.Contains(origins, "http://localhost:8080")
}

func TestCORSOriginsParseCSV(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: "https://a.example.com, https://b.example.com ,"}
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins())
}

func TestWSOriginsEmptyMeansSameOriginOnly(t *testing.T) {
	cfg := &Config{}
	require.Empty(t, cfg.WSOrigins())
}

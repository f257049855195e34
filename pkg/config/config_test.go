package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadServerDefaults(t *testing.T) {
	c, err := LoadServer(nil, env(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultServer(), c)
}

func TestLoadServerPrecedence(t *testing.T) {
	lookup := env(map[string]string{
		EnvAddr:          ":9000",
		EnvGraph:         "monroe.txt",
		EnvMaxSnapMiles:  "0.25",
		EnvMaxConcurrent: "3",
		EnvCORSOrigin:    "https://a.example",
	})

	c, err := LoadServer([]string{"-addr", ":9100", "-largest-component", "-signed-lon"}, lookup)
	require.NoError(t, err)
	assert.Equal(t, ":9100", c.Addr, "flag beats env")
	assert.Equal(t, "monroe.txt", c.Graph)
	assert.Equal(t, 0.25, c.MaxSnapMiles)
	assert.Equal(t, 3, c.MaxConcurrent)
	assert.Equal(t, "https://a.example", c.CORSOrigin)
	assert.True(t, c.LargestComponent)
	assert.True(t, c.SignedLongitude)
}

func TestDatabaseURL(t *testing.T) {
	c, err := LoadServer(nil, env(map[string]string{EnvDatabaseURL: "postgres://db/map"}))
	require.NoError(t, err)
	assert.Equal(t, "postgres://db/map", c.Graph)

	c, err = LoadServer(nil, env(map[string]string{
		EnvDatabaseURL: "postgres://db/map",
		EnvGraph:       "graph.bin",
	}))
	require.NoError(t, err)
	assert.Equal(t, "graph.bin", c.Graph, "explicit graph wins over DATABASE_URL")
}

func TestLoadServerInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"bad snap", map[string]string{EnvMaxSnapMiles: "far"}, nil},
		{"negative snap", map[string]string{EnvMaxSnapMiles: "-1"}, nil},
		{"bad concurrency", map[string]string{EnvMaxConcurrent: "0"}, nil},
		{"zero concurrency flag", nil, []string{"-max-concurrent", "0"}},
		{"unknown flag", nil, []string{"-nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadServer(tt.args, env(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(EnvAddr, "")
	require.NoError(t, os.Unsetenv(EnvAddr))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(EnvAddr+"=:7070\n"), 0o644))

	LoadEnv(path)
	assert.Equal(t, ":7070", os.Getenv(EnvAddr))

	c, err := LoadServer(nil, os.LookupEnv)
	require.NoError(t, err)
	assert.Equal(t, ":7070", c.Addr)
}

func TestLoadEnvMissingFile(t *testing.T) {
	LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
}

// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(LoaderOptions{ConfigDir: dir, Environment: "test"})
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, ":8443", cfg.Gateway.ListenAddr)
}

func TestLoadPrefersEnvironmentSpecificFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "staging.yaml"), []byte(`
gateway:
  listen_addr: ":7000"
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.yaml"), []byte(`
gateway:
  listen_addr: ":9000"
`), 0644))

	cfg, err := Load(LoaderOptions{ConfigDir: dir, Environment: "staging"})
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Gateway.ListenAddr)
}

func TestLoadFailsValidation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.yaml"), []byte(`
witness:
  endpoints: ["https://a.example.com"]
  quorum: 5
`), 0644))

	_, err := Load(LoaderOptions{ConfigDir: dir, Environment: "default"})
	assert.Error(t, err)
}

func TestLoadSkipValidation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.yaml"), []byte(`
witness:
  endpoints: ["https://a.example.com"]
  quorum: 5
`), 0644))

	cfg, err := Load(LoaderOptions{ConfigDir: dir, Environment: "default", SkipValidation: true})
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Witness.Quorum)
}

func TestMustLoadPanicsOnInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.yaml"), []byte(`
rate_limit:
  capacity_tokens: -1
`), 0644))

	assert.Panics(t, func() {
		MustLoad(LoaderOptions{ConfigDir: dir, Environment: "default"})
	})
}

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shedtool/shed/pkg/platform"
)

const stableCatalog = `version = 1
channel = "stable"

[packages.openssl]
name = "openssl"
description = "TLS and crypto library"

[packages.openssl.platforms.x86_64-linux]
store_hash = "q3c9l0fpzw8r2h5m"
name_version = "openssl-3.0.13"
outputs = ["out", "dev"]

[packages.glib]
name = "glib"

[packages.glib.platforms.x86_64-linux]
store_hash = "b7kd21xnpa4s9j3v"
name_version = "glib-2.78.4"
outputs = ["out"]
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stable.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndResolve(t *testing.T) {
	c, err := Load(writeCatalog(t, stableCatalog))
	require.NoError(t, err)
	assert.Equal(t, "stable", c.Channel)
	assert.ElementsMatch(t, []string{"openssl", "glib"}, c.Names())

	artifact, err := c.Resolve("openssl", platform.X8664Linux)
	require.NoError(t, err)
	assert.Equal(t, "q3c9l0fpzw8r2h5m", artifact.StoreHash)
	assert.Equal(t, "openssl-3.0.13", artifact.NameVersion)
	assert.Equal(t, []string{"out", "dev"}, artifact.Outputs)
}

func TestResolve_PackageNotFound(t *testing.T) {
	c, err := Load(writeCatalog(t, stableCatalog))
	require.NoError(t, err)

	_, err = c.Resolve("gstreamer", platform.X8664Linux)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestResolve_PlatformNotSupported(t *testing.T) {
	c, err := Load(writeCatalog(t, stableCatalog))
	require.NoError(t, err)

	_, err = c.Resolve("openssl", platform.Aarch64Darwin)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPlatformNotSupported)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run sync first")
}

func TestLoad_BadVersion(t *testing.T) {
	_, err := Load(writeCatalog(t, `version = 9`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported catalog version")
}

func TestSync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stable.toml", r.URL.Path)
		w.Write([]byte(stableCatalog))
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	path, err := Sync(context.Background(), srv.Client(), srv.URL, "stable", cacheDir)
	require.NoError(t, err)
	assert.Equal(t, Path(cacheDir, "stable"), path)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "stable", c.Channel)
}

func TestSync_RejectsCorruptCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("version = \"not a number"))
	}))
	defer srv.Close()

	_, err := Sync(context.Background(), srv.Client(), srv.URL, "stable", t.TempDir())
	require.Error(t, err)
}

func TestSync_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := Sync(context.Background(), srv.Client(), srv.URL, "stable", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

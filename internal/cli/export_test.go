package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shedtool/shed/pkg/platform"
)

// runCommand executes the root command from dir and returns captured stdout.
func runCommand(t *testing.T, dir string, args ...string) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdout }()

	rootCmd.SetArgs(args)
	execErr := rootCmd.Execute()

	w.Close()
	var buf bytes.Buffer
	_, readErr := buf.ReadFrom(r)
	require.NoError(t, readErr)
	require.NoError(t, execErr)
	return buf.String()
}

func TestExportCommand(t *testing.T) {
	p, err := platform.Detect()
	require.NoError(t, err)

	root := t.TempDir()
	storeDir := filepath.Join(root, "store")
	cacheDir := filepath.Join(root, "cache")

	// Channel catalog covering the host platform.
	catalog := fmt.Sprintf(`version = 1
channel = "stable"

[packages.openssl]
name = "openssl"

[packages.openssl.platforms.%s]
store_hash = "q3c9l0fp"
name_version = "openssl-3.0.13"
`, p)
	catalogPath := filepath.Join(cacheDir, "channels", "stable.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(catalogPath), 0o755))
	require.NoError(t, os.WriteFile(catalogPath, []byte(catalog), 0o644))

	// Already-realized store entry, so export needs no cache access.
	entry := filepath.Join(storeDir, "q3c9l0fp-openssl-3.0.13")
	require.NoError(t, os.MkdirAll(filepath.Join(entry, "bin"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(entry, "lib"), 0o755))

	cfgPath := filepath.Join(root, "config.yaml")
	cfgYAML := fmt.Sprintf("store_root: %s\ncache_dir: %s\nchannel: stable\n", storeDir, cacheDir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))

	projectDir := filepath.Join(root, "project")
	require.NoError(t, os.MkdirAll(projectDir, 0o755))
	manifestYAML := "channel: stable\npackages:\n  - openssl\nenv:\n  OPENSSL_LIB_DIR: ${pkg:openssl}/lib\n"
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "shell.yaml"), []byte(manifestYAML), 0o644))

	out := runCommand(t, projectDir, "--config", cfgPath, "export")

	assert.Contains(t, out, "export PATH=")
	assert.Contains(t, out, filepath.Join(entry, "bin"))
	assert.Contains(t, out, "export "+p.LibraryPathVariable()+"=")
	assert.Contains(t, out, filepath.Join(entry, "lib"))
	assert.Contains(t, out, "export OPENSSL_LIB_DIR="+filepath.Join(entry, "lib"))

	// No pkgconfig dirs were seeded, so the variable is omitted entirely.
	assert.NotContains(t, out, "PKG_CONFIG_PATH")
}

func TestShellCommand_RefusesToNest(t *testing.T) {
	t.Setenv("SHED_SHELL", "1")

	err := runShell(shellCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already inside")
}

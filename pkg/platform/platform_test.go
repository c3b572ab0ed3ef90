package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	p, err := Detect()
	require.NoError(t, err, "Detect should succeed on supported test platforms")
	assert.True(t, p.IsValid())
}

func TestIsValid(t *testing.T) {
	assert.True(t, X8664Linux.IsValid())
	assert.True(t, Aarch64Darwin.IsValid())
	assert.False(t, Platform("riscv64-plan9").IsValid())
	assert.False(t, Platform("").IsValid())
}

func TestLibraryPathVariable(t *testing.T) {
	assert.Equal(t, "LD_LIBRARY_PATH", X8664Linux.LibraryPathVariable())
	assert.Equal(t, "LD_LIBRARY_PATH", Aarch64Linux.LibraryPathVariable())
	assert.Equal(t, "DYLD_LIBRARY_PATH", X8664Darwin.LibraryPathVariable())
	assert.Equal(t, "DYLD_LIBRARY_PATH", Aarch64Darwin.LibraryPathVariable())
}

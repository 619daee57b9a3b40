package environment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onuc/src/errs"
)

func TestNativeWriteThenReadFileRoundTrips(t *testing.T) {
	env := New()
	path := filepath.Join(t.TempDir(), "sample.onu")

	require.NoError(t, env.WriteFile(path, "discourse sample"))
	got, err := env.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "discourse sample", got)
}

func TestNativeReadMissingFileIsResourceViolation(t *testing.T) {
	env := New()
	_, err := env.ReadFile(filepath.Join(t.TempDir(), "missing.onu"))
	require.Error(t, err)

	var ce *errs.CompilerError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errs.ResourceViolation, ce.Kind)
}

func TestNativeWriteBinaryIsExecutable(t *testing.T) {
	env := New()
	path := filepath.Join(t.TempDir(), "out_bin")
	require.NoError(t, env.WriteBinary(path, []byte{0x7f, 'E', 'L', 'F'}))

	got, err := env.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\x7fELF", got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o100, "owner execute bit must be set")
}

package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	return path
}

func TestLoadConfig(t *testing.T) {
	oldFormat, oldAll := *format, *all
	defer func() { *format, *all = oldFormat, oldAll }()

	path := writeConfig(t, "format = \"csv\"\nall = true\nbogus = 1\n")

	require.NoError(t, loadConfig(path))
	require.Equal(t, "csv", *format)
	require.True(t, *all)
}

func TestLoadConfigPrecedence(t *testing.T) {
	oldRepeat := *repeat
	defer func() { *repeat = oldRepeat }()

	// An explicit command line flag outranks the file.
	require.NoError(t, flag.Set("repeat", "77"))

	path := writeConfig(t, "repeat = 33\n")

	require.NoError(t, loadConfig(path))
	require.Equal(t, uint(77), *repeat)
}

func TestLoadConfigPartial(t *testing.T) {
	oldEmit, oldUnique := *emit, *unique
	defer func() { *emit, *unique = oldEmit, oldUnique }()

	path := writeConfig(t, "emit = \"b0\"\n")

	require.NoError(t, loadConfig(path))
	require.Equal(t, "b0", *emit)
	require.False(t, *unique)
}

func TestLoadConfigMissing(t *testing.T) {
	require.Error(t, loadConfig(filepath.Join(t.TempDir(), "absent.toml")))
}

func TestLoadConfigBadValue(t *testing.T) {
	path := writeConfig(t, "filterbuckets = \"four\"\n")

	require.Error(t, loadConfig(path))
}

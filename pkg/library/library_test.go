package library_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/errors"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeLibraryConfig creates an install root whose libraryfolders.vdf lists
// the given library paths.
func writeLibraryConfig(t *testing.T, content string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "steamapps")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "libraryfolders.vdf"), []byte(content), 0644))
	return root
}

func TestDiscoverReturnsEntriesInOrder(t *testing.T) {
	libA := t.TempDir()
	libB := t.TempDir()
	config := fmt.Sprintf(`"libraryfolders"
{
	"contentstatsid"	"12345"
	"0"
	{
		"path"		%q
	}
	"1"
	{
		"path"		%q
	}
}`, libA, libB)
	root := writeLibraryConfig(t, config)

	roots, err := library.Discover(root)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, libA, roots[0].Path)
	assert.Equal(t, libB, roots[1].Path)
}

func TestDiscoverSkipsMissingPaths(t *testing.T) {
	libA := t.TempDir()
	config := fmt.Sprintf(`"libraryfolders"
{
	"0"
	{
		"path"		%q
	}
	"1"
	{
		"path"		"/does/not/exist/anymore"
	}
}`, libA)
	root := writeLibraryConfig(t, config)

	roots, err := library.Discover(root)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, libA, roots[0].Path)
}

func TestDiscoverMissingConfigIsFatal(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "steamapps"), 0755))

	_, err := library.Discover(root)
	require.Error(t, err)
	assert.Equal(t, errors.ErrLibraryConfig, errors.GetErrorCode(err))
}

func TestDiscoverMalformedConfigIsFatal(t *testing.T) {
	root := writeLibraryConfig(t, `"libraryfolders" { "0" { "path" "x"`)

	_, err := library.Discover(root)
	require.Error(t, err)
	assert.Equal(t, errors.ErrLibraryConfig, errors.GetErrorCode(err))
}

func TestDiscoverWrongRootNodeIsFatal(t *testing.T) {
	root := writeLibraryConfig(t, `"somethingelse" { }`)

	_, err := library.Discover(root)
	require.Error(t, err)
	assert.Equal(t, errors.ErrLibraryConfig, errors.GetErrorCode(err))
}

func TestDiscoverEntryWithoutPathIsSkipped(t *testing.T) {
	libA := t.TempDir()
	config := fmt.Sprintf(`"libraryfolders"
{
	"0"
	{
		"label"		"broken entry"
	}
	"1"
	{
		"path"		%q
	}
}`, libA)
	root := writeLibraryConfig(t, config)

	roots, err := library.Discover(root)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, libA, roots[0].Path)
}

// Package library discovers Steam library roots from the install's
// libraryfolders.vdf. The set is rebuilt on every run; nothing is cached.
package library

import (
	"os"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/errors"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/logging"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/paths"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/vdf"
)

// RootNodeName is the required name of the top-level node of the
// library configuration document.
const RootNodeName = "libraryfolders"

// Root is one installation library on disk.
type Root struct {
	Path string
}

// Discover reads <installRoot>/steamapps/libraryfolders.vdf and returns the
// library roots it lists, in file order. A missing or malformed document is
// fatal to the run; individual entries whose path no longer exists on disk
// are skipped with a warning.
func Discover(installRoot string) ([]Root, error) {
	logger := logging.GetLogger("library")

	configPath := paths.LibraryConfigPath(installRoot)
	f, err := os.Open(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLibraryConfig, "opening %s", configPath)
	}
	defer func() { _ = f.Close() }()

	doc, err := vdf.Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLibraryConfig, "parsing %s", configPath)
	}
	if doc.Name != RootNodeName {
		return nil, errors.Newf(errors.ErrLibraryConfig,
			"%s: top-level node is %q, expected %q", configPath, doc.Name, RootNodeName)
	}

	var roots []Root
	for _, entry := range doc.Children {
		if entry.HasValue {
			// Scalar metadata keys (e.g. contentstatsid) live next to
			// the numbered library blocks.
			continue
		}
		path, ok := entry.String("path")
		if !ok || path == "" {
			logger.Warn().Str("entry", entry.Name).Msg("Library entry has no path, skipping")
			continue
		}
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			logger.Warn().Str("path", path).Msg("Library path does not exist, skipping")
			continue
		}
		roots = append(roots, Root{Path: path})
	}

	logger.Debug().Int("count", len(roots)).Msg("Discovered library roots")
	return roots, nil
}

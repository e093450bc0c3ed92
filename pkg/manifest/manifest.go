// Package manifest reads per-game appmanifest_*.acf files from library
// roots and turns them into game records for the icon pipeline.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/errors"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/library"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/logging"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/paths"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/vdf"
)

// Game is one installed game as recorded by its manifest. Records are
// read-only after creation and live for a single run.
type Game struct {
	ID   uint32
	Name string
	Path string
}

// Scan reads manifests from every library root, preserving library order
// and, within a library, the lexical order of the manifest files.
// Unreadable or malformed manifests are skipped with a warning. Games
// installed in more than one library are not deduplicated.
func Scan(roots []library.Root) []Game {
	logger := logging.GetLogger("manifest")

	var games []Game
	for _, root := range roots {
		pattern := filepath.Join(paths.SteamAppsDir(root.Path), paths.ManifestGlob)
		matches, err := filepath.Glob(pattern)
		if err != nil {
			// Only possible with a malformed pattern; ManifestGlob is fixed.
			logger.Warn().Err(err).Str("pattern", pattern).Msg("Manifest glob failed")
			continue
		}
		for _, path := range matches {
			game, err := Read(path)
			if err != nil {
				logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable manifest")
				continue
			}
			games = append(games, game)
		}
	}

	logger.Debug().Int("count", len(games)).Msg("Scanned game manifests")
	return games
}

// Read parses a single manifest file. The appid field is required; a
// missing name falls back to a placeholder derived from the id.
func Read(path string) (Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return Game{}, errors.Wrapf(err, errors.ErrManifestParse, "opening %s", path)
	}
	defer func() { _ = f.Close() }()

	doc, err := vdf.Parse(f)
	if err != nil {
		return Game{}, errors.Wrapf(err, errors.ErrManifestParse, "parsing %s", path)
	}

	appidText, ok := doc.String("appid")
	if !ok {
		return Game{}, errors.Newf(errors.ErrManifestInvalid, "%s has no appid", path)
	}
	appid, err := strconv.ParseUint(appidText, 10, 32)
	if err != nil {
		return Game{}, errors.Wrapf(err, errors.ErrManifestInvalid, "%s has invalid appid %q", path, appidText)
	}

	name, ok := doc.String("name")
	if !ok || name == "" {
		name = fmt.Sprintf("Unknown Game (%d)", appid)
	}

	return Game{
		ID:   uint32(appid),
		Name: name,
		Path: path,
	}, nil
}

// Package paths provides centralized path handling for steam-icon-restorer.
// It implements XDG Base Directory compliance for the tool's own files and
// knows the fixed layout of a Steam installation.
package paths

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/errors"
)

// Environment variable names
const (
	// EnvInstallPath overrides the Steam install root
	EnvInstallPath = "SIR_STEAM_PATH"

	// EnvConfigDir overrides the XDG config directory for the tool
	EnvConfigDir = "SIR_CONFIG_DIR"
)

// Fixed pieces of the Steam installation layout. These are Steam's own
// conventions and are not user-configurable.
const (
	// AppName is the directory name used for the tool's own XDG files
	AppName = "steam-icon-restorer"

	// SteamAppsDirName is the subdirectory of a library holding manifests
	SteamAppsDirName = "steamapps"

	// LibraryConfigFile is the root library configuration document
	LibraryConfigFile = "libraryfolders.vdf"

	// ManifestGlob matches per-game manifest files inside steamapps
	ManifestGlob = "appmanifest_*.acf"

	// IconDirName is where Steam keeps downloaded client icons,
	// relative to the install root
	IconDirName = "steam/games"
)

// InstallRoot resolves the Steam install root: explicit argument first,
// then the environment override, then per-OS default locations. The
// returned path is validated to contain a steamapps directory.
func InstallRoot(explicit string) (string, error) {
	if explicit != "" {
		return validateInstallRoot(explicit)
	}
	if env := os.Getenv(EnvInstallPath); env != "" {
		return validateInstallRoot(env)
	}
	for _, candidate := range defaultInstallPaths() {
		if root, err := validateInstallRoot(candidate); err == nil {
			return root, nil
		}
	}
	return "", errors.New(errors.ErrInstallPath,
		"could not locate a Steam installation; pass --path or set "+EnvInstallPath)
}

func validateInstallRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInstallPath, "resolving install path %q", path)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", errors.Newf(errors.ErrInstallPath, "install path %q is not a directory", abs)
	}
	if info, err := os.Stat(filepath.Join(abs, SteamAppsDirName)); err != nil || !info.IsDir() {
		return "", errors.Newf(errors.ErrInstallPath, "%q does not look like a Steam install (no steamapps directory)", abs)
	}
	return abs, nil
}

func defaultInstallPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\Program Files (x86)\Steam`,
			`C:\Program Files\Steam`,
		}
	case "darwin":
		return []string{filepath.Join(home, "Library", "Application Support", "Steam")}
	default:
		return []string{
			filepath.Join(home, ".local", "share", "Steam"),
			filepath.Join(home, ".steam", "steam"),
		}
	}
}

// LibraryConfigPath is the root library configuration document under the
// install root. Its absence is fatal to a run.
func LibraryConfigPath(installRoot string) string {
	return filepath.Join(installRoot, SteamAppsDirName, LibraryConfigFile)
}

// SteamAppsDir is the manifest directory of a library root.
func SteamAppsDir(libraryRoot string) string {
	return filepath.Join(libraryRoot, SteamAppsDirName)
}

// IconDir is the destination directory for downloaded icons.
func IconDir(installRoot string) string {
	return filepath.Join(installRoot, filepath.FromSlash(IconDirName))
}

// IconPath is the deterministic destination file for an icon token.
func IconPath(installRoot, token string) string {
	return filepath.Join(IconDir(installRoot), token+".ico")
}

// ConfigDir returns the tool's configuration directory.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.ConfigHome, AppName)
}

// StateDir returns the tool's state directory (log files).
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

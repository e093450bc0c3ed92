//go:build windows

package restore

import (
	"context"
	"os/exec"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/logging"
)

// refreshIconCache restarts explorer so the shell rereads icon files.
// taskkill does not respawn explorer, so start it again explicitly.
func refreshIconCache(ctx context.Context) error {
	logger := logging.GetLogger("restore")
	logger.Info().Msg("Restarting explorer to refresh the icon cache")

	if err := exec.CommandContext(ctx, "taskkill", "/f", "/im", "explorer.exe").Run(); err != nil {
		return err
	}
	return exec.CommandContext(ctx, "explorer.exe").Start()
}

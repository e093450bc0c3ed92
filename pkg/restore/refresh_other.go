//go:build !windows

package restore

import "context"

// refreshIconCache is a no-op off Windows; shells there pick up new
// icon files without a restart.
func refreshIconCache(context.Context) error {
	return nil
}

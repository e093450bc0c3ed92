// Package restore ties the whole run together: find the install, scan
// the libraries, sign in, resolve and download every icon, sign out.
package restore

import (
	"context"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/auth"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/icons"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/library"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/logging"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/manifest"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/paths"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/session"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/steam"
)

// Options configures a restore run. Exactly one auth path is taken:
// device-link when UseQR is set, account credentials otherwise.
type Options struct {
	// InstallPath overrides install detection. Empty means probe the
	// platform defaults.
	InstallPath string

	// Account and Password feed the credentials flow. Ignored when
	// UseQR is set.
	Account  string
	Password string

	// UseQR selects the device-link flow instead of credentials.
	UseQR bool

	// Renderer shows the device-link challenge. Required when UseQR is
	// set.
	Renderer auth.ChallengeRenderer

	// Authenticator answers Steam Guard prompts for the credentials
	// flow.
	Authenticator steam.Authenticator

	// Observer sees each game's outcome as it happens. May be nil.
	Observer icons.Observer

	// Dial overrides the registered connector. Nil means use the one
	// registered via steam.SetDial.
	Dial steam.DialFunc

	// IconBaseURL overrides the icon CDN endpoint. Empty means the
	// public CDN.
	IconBaseURL string
}

// Run performs a full restore and reports per-game outcomes. The error
// return covers run-level failures (no install, no games scanned is not
// one, auth denied, session setup); per-game download and resolve
// problems land in the report instead.
func Run(ctx context.Context, opts Options) (*icons.Report, error) {
	logger := logging.GetLogger("restore")

	installRoot, err := paths.InstallRoot(opts.InstallPath)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("installRoot", installRoot).Msg("Steam installation located")

	roots, err := library.Discover(installRoot)
	if err != nil {
		return nil, err
	}
	games := manifest.Scan(roots)
	logger.Info().Int("libraries", len(roots)).Int("games", len(games)).Msg("Library scan complete")

	if len(games) == 0 {
		logger.Warn().Msg("No installed games found, nothing to restore")
		return &icons.Report{}, nil
	}

	dial := opts.Dial
	if dial == nil {
		dial, err = steam.Dial()
		if err != nil {
			return nil, err
		}
	}
	sess, err := dial(ctx)
	if err != nil {
		return nil, err
	}

	flow, err := buildFlow(sess, opts)
	if err != nil {
		return nil, err
	}

	orch := session.New(sess, flow)
	defer orch.Close()

	if err := orch.Start(ctx); err != nil {
		return nil, err
	}
	if err := orch.AwaitLogin(ctx); err != nil {
		return nil, err
	}

	downloader := icons.NewDownloader()
	if opts.IconBaseURL != "" {
		downloader = icons.NewDownloaderWithBaseURL(opts.IconBaseURL)
	}

	pipeline := icons.NewPipeline(orch, downloader, installRoot, opts.Observer)
	report := pipeline.Run(ctx, games)

	orch.Logoff(ctx)

	if report.Succeeded > 0 {
		if err := refreshIconCache(ctx); err != nil {
			logger.Warn().Err(err).Msg("Icon cache refresh failed, icons appear after the next shell restart")
		}
	}

	logger.Info().
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Bool("aborted", report.Aborted).
		Msg("Restore run finished")
	return report, nil
}

func buildFlow(sess steam.Session, opts Options) (session.CredentialProducer, error) {
	if opts.UseQR {
		return auth.NewDeviceLinkFlow(sess, opts.Renderer), nil
	}
	flow := auth.NewCredentialsFlow(sess, opts.Account, opts.Password, opts.Authenticator)
	if err := flow.Validate(); err != nil {
		return nil, err
	}
	return flow, nil
}

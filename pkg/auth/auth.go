// Package auth implements the two credential flows that feed the session
// orchestrator's login: device-linked (QR) approval and username/password
// with second-factor challenges. Both satisfy session.CredentialProducer,
// so the orchestrator never knows which one ran.
package auth

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/errors"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/logging"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/steam"
)

// ChallengeRenderer shows a device-link challenge URL to the user, both
// scannable and printable. Implemented by pkg/ui.
type ChallengeRenderer interface {
	RenderChallenge(url string)
}

// DeviceLinkFlow authenticates by having a second device scan a
// challenge. No local input and no local timeout: cancellation comes
// only from the context or a session failure.
type DeviceLinkFlow struct {
	sess     steam.Session
	renderer ChallengeRenderer
	logger   zerolog.Logger
}

// NewDeviceLinkFlow wires a device-link flow to a session and a renderer.
func NewDeviceLinkFlow(sess steam.Session, renderer ChallengeRenderer) *DeviceLinkFlow {
	return &DeviceLinkFlow{
		sess:     sess,
		renderer: renderer,
		logger:   logging.GetLogger("auth.device"),
	}
}

// ProduceCredentials renders the challenge, re-renders whenever the
// remote side rotates it, and polls until the second device confirms.
func (f *DeviceLinkFlow) ProduceCredentials(ctx context.Context) (steam.Credentials, error) {
	authSess, err := f.sess.BeginDeviceAuth(ctx)
	if err != nil {
		return steam.Credentials{}, errors.Wrap(err, errors.ErrAuthFlow, "starting device-link auth")
	}

	f.renderer.RenderChallenge(authSess.ChallengeURL())

	// Rotations arrive while Poll blocks; watch them without stalling
	// the poll itself.
	go func() {
		for {
			select {
			case url, ok := <-authSess.ChallengeRotated():
				if !ok {
					return
				}
				f.logger.Info().Msg("Challenge rotated, rendering new code")
				f.renderer.RenderChallenge(url)
			case <-ctx.Done():
				return
			}
		}
	}()

	creds, err := authSess.Poll(ctx)
	if err != nil {
		return steam.Credentials{}, errors.Wrap(err, errors.ErrAuthFlow, "waiting for device confirmation")
	}
	f.logger.Info().Str("account", creds.AccountName).Msg("Device confirmed the session")
	return creds, nil
}

// CredentialsFlow authenticates with username and password, delegating
// second-factor challenges to an interactive Authenticator.
type CredentialsFlow struct {
	sess          steam.Session
	account       string
	password      string
	authenticator steam.Authenticator
	logger        zerolog.Logger
}

// NewCredentialsFlow wires a username/password flow.
func NewCredentialsFlow(sess steam.Session, account, password string, authenticator steam.Authenticator) *CredentialsFlow {
	return &CredentialsFlow{
		sess:          sess,
		account:       account,
		password:      password,
		authenticator: authenticator,
		logger:        logging.GetLogger("auth.credentials"),
	}
}

// Validate checks the inputs this flow cannot run without. Callers run
// it before any network work: a missing account or password is a
// configuration error, not an authentication failure.
func (f *CredentialsFlow) Validate() error {
	if f.account == "" {
		return errors.New(errors.ErrMissingAccount, "username is required for password login")
	}
	if f.password == "" {
		return errors.New(errors.ErrMissingPassword, "password is required for password login")
	}
	return nil
}

// ProduceCredentials runs the password login, answering second-factor
// challenges through the authenticator. Guard data the service returns
// stays in memory for the rest of the run.
func (f *CredentialsFlow) ProduceCredentials(ctx context.Context) (steam.Credentials, error) {
	if err := f.Validate(); err != nil {
		return steam.Credentials{}, err
	}

	authSess, err := f.sess.BeginCredentialsAuth(ctx, f.account, f.password, f.authenticator)
	if err != nil {
		return steam.Credentials{}, errors.Wrap(err, errors.ErrAuthFlow, "starting credentials auth")
	}

	creds, err := authSess.Poll(ctx)
	if err != nil {
		return steam.Credentials{}, errors.Wrap(err, errors.ErrAuthFlow, "credentials auth rejected")
	}
	if creds.GuardData != "" {
		f.logger.Debug().Msg("Received guard data; keeping it for this run only")
	}
	return creds, nil
}

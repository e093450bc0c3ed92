package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/auth"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/errors"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/steam"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/steam/steamtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRenderer struct {
	mu   sync.Mutex
	urls []string
}

func (r *recordingRenderer) RenderChallenge(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
}

func (r *recordingRenderer) rendered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.urls))
	copy(out, r.urls)
	return out
}

type recordingAuthenticator struct {
	mu    sync.Mutex
	calls []string
}

func (a *recordingAuthenticator) DeviceCode(previousWasWrong bool) (string, error) {
	a.record("device")
	return "12345", nil
}

func (a *recordingAuthenticator) EmailCode(address string, previousWasWrong bool) (string, error) {
	a.record("email:" + address)
	return "ABCDE", nil
}

func (a *recordingAuthenticator) ConfirmDevice() (bool, error) {
	a.record("confirm")
	return true, nil
}

func (a *recordingAuthenticator) record(call string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, call)
}

func TestDeviceLinkFlowRendersAndPolls(t *testing.T) {
	sess := steamtest.New()
	device := steamtest.NewDeviceAuth("https://s.team/q/1/AAA")
	device.Creds = steam.Credentials{AccountName: "scanner", RefreshToken: "qr-token"}
	sess.Device = device

	renderer := &recordingRenderer{}
	flow := auth.NewDeviceLinkFlow(sess, renderer)

	done := make(chan struct{})
	var creds steam.Credentials
	var err error
	go func() {
		defer close(done)
		creds, err = flow.ProduceCredentials(context.Background())
	}()

	// The remote rotates the challenge once before the user scans it.
	time.Sleep(20 * time.Millisecond)
	device.Rotate("https://s.team/q/1/BBB")
	time.Sleep(20 * time.Millisecond)
	device.Confirm()
	<-done

	require.NoError(t, err)
	assert.Equal(t, "qr-token", creds.RefreshToken)
	assert.Equal(t, []string{"https://s.team/q/1/AAA", "https://s.team/q/1/BBB"}, renderer.rendered())
}

func TestDeviceLinkFlowCancelled(t *testing.T) {
	sess := steamtest.New()
	sess.Device = steamtest.NewDeviceAuth("https://s.team/q/1/AAA")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	flow := auth.NewDeviceLinkFlow(sess, &recordingRenderer{})
	_, err := flow.ProduceCredentials(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.ErrAuthFlow, errors.GetErrorCode(err))
}

func TestCredentialsFlowHappyPath(t *testing.T) {
	sess := steamtest.New()
	sess.CredAuth = &steamtest.CredentialsAuth{
		Creds: steam.Credentials{AccountName: "tester", RefreshToken: "pw-token", GuardData: "guard-blob"},
		Challenges: []steamtest.Challenge{
			{Kind: steamtest.ChallengeDeviceCode},
		},
	}

	authenticator := &recordingAuthenticator{}
	flow := auth.NewCredentialsFlow(sess, "tester", "hunter2", authenticator)

	creds, err := flow.ProduceCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pw-token", creds.RefreshToken)
	assert.Equal(t, "guard-blob", creds.GuardData)
	assert.Equal(t, "tester", sess.AccountSeen())
	assert.Equal(t, []string{"device"}, authenticator.calls)
}

func TestCredentialsFlowEmailChallenge(t *testing.T) {
	sess := steamtest.New()
	sess.CredAuth = &steamtest.CredentialsAuth{
		Creds: steam.Credentials{AccountName: "tester", RefreshToken: "tok"},
		Challenges: []steamtest.Challenge{
			{Kind: steamtest.ChallengeEmailCode, EmailAddress: "t***@example.com"},
			{Kind: steamtest.ChallengeConfirm},
		},
	}

	authenticator := &recordingAuthenticator{}
	flow := auth.NewCredentialsFlow(sess, "tester", "hunter2", authenticator)

	_, err := flow.ProduceCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"email:t***@example.com", "confirm"}, authenticator.calls)
}

func TestCredentialsFlowRejected(t *testing.T) {
	sess := steamtest.New()
	sess.CredAuth = &steamtest.CredentialsAuth{
		Err: errors.New(errors.ErrLoginDenied, "wrong password"),
	}

	flow := auth.NewCredentialsFlow(sess, "tester", "wrong", &recordingAuthenticator{})
	_, err := flow.ProduceCredentials(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrAuthFlow, errors.GetErrorCode(err))
}

func TestCredentialsFlowValidation(t *testing.T) {
	tests := []struct {
		name     string
		account  string
		password string
		wantCode errors.ErrorCode
	}{
		{"missing account", "", "pw", errors.ErrMissingAccount},
		{"missing password", "user", "", errors.ErrMissingPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow := auth.NewCredentialsFlow(steamtest.New(), tt.account, tt.password, &recordingAuthenticator{})

			err := flow.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetErrorCode(err))

			// The flow itself refuses to run, too.
			_, err = flow.ProduceCredentials(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetErrorCode(err))
		})
	}
}

// Package steamtest provides an in-memory, scriptable implementation of
// the steam.Session boundary for tests. It mirrors the delivery contract
// of a real connector: events arrive on a channel after Connect, and the
// channel closes on teardown.
package steamtest

import (
	"context"
	"sync"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/steam"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/vdf"
)

// Session is a scripted steam.Session. The zero value of the knobs gives
// a session that connects, logs on successfully and answers no product
// info requests; tests adjust fields before handing it to the code under
// test.
type Session struct {
	// ConnectErr, when set, fails Connect synchronously.
	ConnectErr error

	// LoginErr, when set, fails Login synchronously.
	LoginErr error

	// LoginResult is the result code delivered in the LoggedOnEvent.
	// The zero value is treated as ResultOK.
	LoginResult steam.Result

	// LoginExtended is the extended result delivered alongside a
	// non-OK LoginResult.
	LoginExtended steam.Result

	// SteamID is delivered in a successful LoggedOnEvent.
	SteamID uint64

	// ProductInfo maps app ids to their metadata blob. A nil entry (or
	// a missing id with Silent not set) answers with Info == nil.
	ProductInfo map[uint32]*vdf.Node

	// Silent lists app ids whose requests are never answered, for
	// timeout behavior.
	Silent map[uint32]bool

	// Device is returned by BeginDeviceAuth when set.
	Device *DeviceAuth

	// CredAuth is returned by BeginCredentialsAuth when set.
	CredAuth *CredentialsAuth

	mu        sync.Mutex
	events    chan steam.Event
	closed    bool
	loginSeen *steam.Credentials
	requested []uint32
	account   string
	password  string
}

// New returns a session ready for Connect.
func New() *Session {
	return &Session{events: make(chan steam.Event, 64)}
}

func (s *Session) Connect(ctx context.Context) error {
	if s.ConnectErr != nil {
		return s.ConnectErr
	}
	s.Emit(steam.ConnectedEvent{})
	return nil
}

func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.events <- steam.DisconnectedEvent{Initiated: true}
	close(s.events)
}

// Drop simulates an unsolicited disconnect from the remote side.
func (s *Session) Drop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.events <- steam.DisconnectedEvent{Initiated: false}
	close(s.events)
}

func (s *Session) Events() <-chan steam.Event {
	return s.events
}

func (s *Session) Login(creds steam.Credentials) error {
	if s.LoginErr != nil {
		return s.LoginErr
	}
	s.mu.Lock()
	s.loginSeen = &creds
	s.mu.Unlock()

	result := s.LoginResult
	if result == steam.ResultInvalid {
		result = steam.ResultOK
	}
	s.Emit(steam.LoggedOnEvent{
		Result:         result,
		ExtendedResult: s.LoginExtended,
		SteamID:        s.SteamID,
	})
	return nil
}

func (s *Session) RequestProductInfo(appID uint32) error {
	s.mu.Lock()
	s.requested = append(s.requested, appID)
	silent := s.Silent[appID]
	info := s.ProductInfo[appID]
	s.mu.Unlock()

	if silent {
		return nil
	}
	s.Emit(steam.ProductInfoEvent{AppID: appID, Info: info})
	return nil
}

func (s *Session) BeginDeviceAuth(ctx context.Context) (steam.DeviceAuthSession, error) {
	if s.Device == nil {
		s.Device = NewDeviceAuth("https://s.team/q/1/0000000000000000")
	}
	return s.Device, nil
}

func (s *Session) BeginCredentialsAuth(ctx context.Context, account, password string, auth steam.Authenticator) (steam.CredentialsAuthSession, error) {
	s.mu.Lock()
	s.account = account
	s.password = password
	s.mu.Unlock()
	if s.CredAuth == nil {
		s.CredAuth = &CredentialsAuth{
			Creds: steam.Credentials{AccountName: account, RefreshToken: "test-refresh-token"},
		}
	}
	s.CredAuth.authenticator = auth
	return s.CredAuth, nil
}

// Emit delivers an event unless the session is already closed. Safe to
// call from test goroutines.
func (s *Session) Emit(ev steam.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.events <- ev
}

// LoginCredentials reports the credentials Login was called with, or nil.
func (s *Session) LoginCredentials() *steam.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginSeen
}

// Requested reports the app ids passed to RequestProductInfo, in order.
func (s *Session) Requested() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint32, len(s.requested))
	copy(out, s.requested)
	return out
}

// AccountSeen reports the account name passed to BeginCredentialsAuth.
func (s *Session) AccountSeen() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

// DeviceAuth is a scripted device-link auth session.
type DeviceAuth struct {
	Creds steam.Credentials
	Err   error

	url       string
	rotations chan string
	confirmed chan struct{}
	once      sync.Once
}

// NewDeviceAuth returns a device auth session presenting the given
// challenge URL.
func NewDeviceAuth(url string) *DeviceAuth {
	return &DeviceAuth{
		url:       url,
		rotations: make(chan string, 4),
		confirmed: make(chan struct{}),
	}
}

func (d *DeviceAuth) ChallengeURL() string {
	return d.url
}

func (d *DeviceAuth) ChallengeRotated() <-chan string {
	return d.rotations
}

// Rotate delivers a replacement challenge URL, as the remote side does
// when a challenge expires unscanned.
func (d *DeviceAuth) Rotate(url string) {
	d.rotations <- url
}

// Confirm completes the device-link handshake, unblocking Poll.
func (d *DeviceAuth) Confirm() {
	d.once.Do(func() { close(d.confirmed) })
}

func (d *DeviceAuth) Poll(ctx context.Context) (steam.Credentials, error) {
	select {
	case <-ctx.Done():
		return steam.Credentials{}, ctx.Err()
	case <-d.confirmed:
		close(d.rotations)
		if d.Err != nil {
			return steam.Credentials{}, d.Err
		}
		return d.Creds, nil
	}
}

// CredentialsAuth is a scripted username/password auth session. The
// Challenges script is replayed against the authenticator in order
// before Poll resolves.
type CredentialsAuth struct {
	Creds      steam.Credentials
	Err        error
	Challenges []Challenge

	authenticator steam.Authenticator
}

// Challenge is one scripted second-factor exchange.
type Challenge struct {
	Kind         ChallengeKind
	EmailAddress string
	WasWrong     bool
}

// ChallengeKind selects which Authenticator operation a Challenge drives.
type ChallengeKind int

const (
	ChallengeDeviceCode ChallengeKind = iota
	ChallengeEmailCode
	ChallengeConfirm
)

func (c *CredentialsAuth) Poll(ctx context.Context) (steam.Credentials, error) {
	for _, ch := range c.Challenges {
		if err := ctx.Err(); err != nil {
			return steam.Credentials{}, err
		}
		var err error
		switch ch.Kind {
		case ChallengeDeviceCode:
			_, err = c.authenticator.DeviceCode(ch.WasWrong)
		case ChallengeEmailCode:
			_, err = c.authenticator.EmailCode(ch.EmailAddress, ch.WasWrong)
		case ChallengeConfirm:
			_, err = c.authenticator.ConfirmDevice()
		}
		if err != nil {
			return steam.Credentials{}, err
		}
	}
	if c.Err != nil {
		return steam.Credentials{}, c.Err
	}
	return c.Creds, nil
}

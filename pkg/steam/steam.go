package steam

import (
	"context"
	"sync"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/errors"
)

// Session is one connection to the Steam account service. Connect starts
// delivery on the Events channel; the channel is closed when the session
// is torn down. Exactly one goroutine may consume Events.
type Session interface {
	// Connect establishes the connection. Delivery of a ConnectedEvent,
	// not the return of Connect, marks the session usable.
	Connect(ctx context.Context) error

	// Disconnect tears the connection down. A DisconnectedEvent with
	// Initiated=true follows, after which Events is closed.
	Disconnect()

	// Events delivers session events. The channel is owned by the
	// session and closed on teardown.
	Events() <-chan Event

	// Login authenticates the connected session with previously produced
	// credentials. The outcome arrives as a LoggedOnEvent.
	Login(creds Credentials) error

	// RequestProductInfo asks for the product metadata of one app. The
	// response, if any, arrives as a ProductInfoEvent for that id.
	RequestProductInfo(appID uint32) error

	// BeginDeviceAuth starts a device-link (QR) auth session.
	BeginDeviceAuth(ctx context.Context) (DeviceAuthSession, error)

	// BeginCredentialsAuth starts a username/password auth session.
	// Second-factor challenges are delegated to the authenticator.
	BeginCredentialsAuth(ctx context.Context, account, password string, auth Authenticator) (CredentialsAuthSession, error)
}

// DeviceAuthSession is an in-progress device-link authentication. The
// remote side may rotate the challenge URL while the user has not yet
// scanned it; rotations are delivered on ChallengeRotated.
type DeviceAuthSession interface {
	// ChallengeURL is the current challenge to render for scanning.
	ChallengeURL() string

	// ChallengeRotated delivers replacement challenge URLs. Closed when
	// polling finishes.
	ChallengeRotated() <-chan string

	// Poll blocks until the remote device confirms the session, the
	// context is cancelled, or the remote side fails the attempt.
	Poll(ctx context.Context) (Credentials, error)
}

// CredentialsAuthSession is an in-progress username/password
// authentication.
type CredentialsAuthSession interface {
	// Poll blocks until authentication completes. Second-factor
	// challenges raised during polling go through the Authenticator
	// given to BeginCredentialsAuth.
	Poll(ctx context.Context) (Credentials, error)
}

// Authenticator answers second-factor challenges during a credentials
// login. Implementations typically prompt an interactive user.
type Authenticator interface {
	// DeviceCode asks for a code from the mobile authenticator app.
	// previousWasWrong is set when a prior attempt was rejected.
	DeviceCode(previousWasWrong bool) (string, error)

	// EmailCode asks for the code sent to the account's email address.
	EmailCode(address string, previousWasWrong bool) (string, error)

	// ConfirmDevice asks the user to approve the login from another
	// device instead of entering a code.
	ConfirmDevice() (bool, error)
}

// Credentials is the material a completed auth flow hands to Login.
// Held in memory for the remainder of the run, never persisted.
type Credentials struct {
	AccountName  string
	RefreshToken string

	// GuardData is opaque continuation data some flows return. Keeping
	// it between runs would skip future second factors, but persistence
	// is deliberately not implemented.
	GuardData string
}

// DialFunc produces a ready-to-connect session.
type DialFunc func(ctx context.Context) (Session, error)

var (
	dialMu      sync.RWMutex
	defaultDial DialFunc
)

// SetDial registers the connector used to reach the account service.
// A production connector calls this from its init; tests register fakes.
func SetDial(d DialFunc) {
	dialMu.Lock()
	defer dialMu.Unlock()
	defaultDial = d
}

// Dial returns the registered connector, or a configuration error when no
// connector is linked into the build.
func Dial() (DialFunc, error) {
	dialMu.RLock()
	defer dialMu.RUnlock()
	if defaultDial == nil {
		return nil, errors.New(errors.ErrNoConnector,
			"no Steam connector is registered; link a connector build or see pkg/steam docs")
	}
	return defaultDial, nil
}

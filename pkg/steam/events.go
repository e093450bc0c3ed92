package steam

import (
	"fmt"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/vdf"
)

// Event is a notification delivered on a session's event channel. The set
// of events is closed; consumers switch on the concrete types below.
type Event interface {
	event()
}

// ConnectedEvent signals that the transport handshake completed.
type ConnectedEvent struct{}

// DisconnectedEvent signals loss of the connection. Initiated is true when
// the disconnect was requested locally via Disconnect.
type DisconnectedEvent struct {
	Initiated bool
}

// LoggedOnEvent carries the outcome of a Login call.
type LoggedOnEvent struct {
	Result         Result
	ExtendedResult Result
	SteamID        uint64
}

// LoggedOffEvent signals that the service ended the logged-on state.
type LoggedOffEvent struct {
	Result Result
}

// ProductInfoEvent carries the metadata response for one app. Info is the
// app's key-value blob; it may be nil when the service knows no such app.
type ProductInfoEvent struct {
	AppID uint32
	Info  *vdf.Node
}

func (ConnectedEvent) event()    {}
func (DisconnectedEvent) event() {}
func (LoggedOnEvent) event()     {}
func (LoggedOffEvent) event()    {}
func (ProductInfoEvent) event()  {}

// Result is the subset of account-service result codes the restorer
// inspects.
type Result int32

const (
	ResultInvalid                    Result = 0
	ResultOK                         Result = 1
	ResultFail                       Result = 2
	ResultInvalidPassword            Result = 5
	ResultAccessDenied               Result = 15
	ResultServiceUnavailable         Result = 20
	ResultTryAnotherCM               Result = 48
	ResultAccountLoginDeniedThrottle Result = 87
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "OK"
	case ResultFail:
		return "Fail"
	case ResultInvalidPassword:
		return "InvalidPassword"
	case ResultAccessDenied:
		return "AccessDenied"
	case ResultServiceUnavailable:
		return "ServiceUnavailable"
	case ResultTryAnotherCM:
		return "TryAnotherCM"
	case ResultAccountLoginDeniedThrottle:
		return "AccountLoginDeniedThrottle"
	default:
		return fmt.Sprintf("Result(%d)", int32(r))
	}
}

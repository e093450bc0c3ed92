package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/errors"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/logging"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/steam"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/vdf"
)

// State is the orchestrator's view of the session lifecycle. Exactly one
// instance exists per run; only event handlers mutate it.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateAuthenticating
	StateLoggedOn
	StateLoggingOff
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateAuthenticating:
		return "Authenticating"
	case StateLoggedOn:
		return "LoggedOn"
	case StateLoggingOff:
		return "LoggingOff"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// CredentialProducer is the contract both auth flows satisfy. The
// orchestrator is agnostic to which flow runs.
type CredentialProducer interface {
	ProduceCredentials(ctx context.Context) (steam.Credentials, error)
}

// disconnectGrace bounds how long Logoff waits for the service to
// confirm the disconnect before giving up on the pump.
const disconnectGrace = 3 * time.Second

// Orchestrator owns the session handle and its event stream. Start spins
// up the pump, AwaitLogin blocks until the authenticate-and-login round
// settles, ProductInfo bridges one-shot metadata waits, and Logoff tears
// the session down.
type Orchestrator struct {
	sess   steam.Session
	flow   CredentialProducer
	logger zerolog.Logger

	state    atomic.Int32
	login    *completion
	dispatch *dispatcher
	pumpDone chan struct{}

	mu      sync.Mutex
	failure error

	closeOnce sync.Once
}

// New wires an orchestrator to a session and the chosen auth flow.
func New(sess steam.Session, flow CredentialProducer) *Orchestrator {
	return &Orchestrator{
		sess:     sess,
		flow:     flow,
		logger:   logging.GetLogger("session"),
		login:    newCompletion(),
		dispatch: newDispatcher(),
		pumpDone: make(chan struct{}),
	}
}

// State reports the current lifecycle state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

func (o *Orchestrator) setState(s State) {
	old := State(o.state.Swap(int32(s)))
	if old != s {
		o.logger.Debug().Stringer("from", old).Stringer("to", s).Msg("Session state changed")
	}
}

// Start connects the session and starts the event pump. The pump runs
// until the event stream closes or ctx is cancelled; it is the only
// consumer of session events.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.setState(StateConnecting)
	if err := o.sess.Connect(ctx); err != nil {
		werr := errors.Wrap(err, errors.ErrSessionConnect, "connecting to account service")
		o.fail(werr)
		close(o.pumpDone)
		return werr
	}
	go o.pump(ctx)
	return nil
}

func (o *Orchestrator) pump(ctx context.Context) {
	defer close(o.pumpDone)
	for {
		select {
		case <-ctx.Done():
			o.fail(errors.Wrap(ctx.Err(), errors.ErrSessionLost, "run cancelled"))
			o.dispatch.closeAll()
			return
		case ev, ok := <-o.sess.Events():
			if !ok {
				o.handleStreamClosed()
				return
			}
			o.handle(ctx, ev)
		}
	}
}

// handle runs on the pump goroutine and must not block. Long-running
// work (the auth flow) is pushed onto its own goroutine.
func (o *Orchestrator) handle(ctx context.Context, ev steam.Event) {
	switch ev := ev.(type) {
	case steam.ConnectedEvent:
		o.setState(StateConnected)
		o.setState(StateAuthenticating)
		go o.authenticate(ctx)

	case steam.LoggedOnEvent:
		if ev.Result == steam.ResultOK {
			o.logger.Info().Uint64("steamID", ev.SteamID).Msg("Logged on")
			o.setState(StateLoggedOn)
			o.login.resolve(true)
		} else {
			o.fail(errors.Newf(errors.ErrLoginDenied,
				"login denied: %s (extended: %s)", ev.Result, ev.ExtendedResult))
		}

	case steam.LoggedOffEvent:
		o.logger.Warn().Stringer("result", ev.Result).Msg("Service logged the session off")

	case steam.DisconnectedEvent:
		if ev.Initiated || o.State() == StateLoggingOff {
			o.setState(StateDisconnected)
		} else {
			o.fail(errors.New(errors.ErrSessionLost, "connection lost unexpectedly"))
		}
		o.dispatch.closeAll()

	case steam.ProductInfoEvent:
		o.dispatch.deliver(ev.AppID, ev.Info)
	}
}

func (o *Orchestrator) authenticate(ctx context.Context) {
	creds, err := o.flow.ProduceCredentials(ctx)
	if err != nil {
		o.fail(errors.Wrap(err, errors.ErrAuthFlow, "authentication flow failed"))
		return
	}
	if err := o.sess.Login(creds); err != nil {
		o.fail(errors.Wrap(err, errors.ErrAuthFlow, "login call failed"))
	}
}

// fail records the first failure, moves to Failed and resolves the login
// signal negatively. Racing callers are harmless; the first error wins.
func (o *Orchestrator) fail(err error) {
	o.mu.Lock()
	if o.failure == nil {
		o.failure = err
	}
	o.mu.Unlock()

	o.setState(StateFailed)
	o.login.resolve(false)
	o.logger.Debug().Err(err).Msg("Session failure recorded")
}

// FailureErr returns the first recorded failure, or nil.
func (o *Orchestrator) FailureErr() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.failure
}

func (o *Orchestrator) handleStreamClosed() {
	st := o.State()
	if st != StateDisconnected && st != StateFailed {
		o.fail(errors.New(errors.ErrSessionLost, "event stream closed unexpectedly"))
	}
	o.dispatch.closeAll()
}

// AwaitLogin blocks until the authenticate-and-login round completes.
// It returns nil once the session is logged on, or the recorded failure.
func (o *Orchestrator) AwaitLogin(ctx context.Context) error {
	ok, err := o.login.wait(ctx)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if ferr := o.FailureErr(); ferr != nil {
		return ferr
	}
	return errors.New(errors.ErrAuthFlow, "authentication failed")
}

// ProductInfo requests metadata for one app and waits for its response,
// bounded by timeout. The one-shot subscription is disposed on every
// path; a late response after an abandoned wait is simply dropped. A nil
// node with nil error means the service knows no such app.
func (o *Orchestrator) ProductInfo(ctx context.Context, appID uint32, timeout time.Duration) (*vdf.Node, error) {
	if o.State() != StateLoggedOn {
		return nil, errors.Newf(errors.ErrSessionLost, "session is %s, not logged on", o.State())
	}

	sub, dispose := o.dispatch.subscribe(appID)
	defer dispose()

	if err := o.sess.RequestProductInfo(appID); err != nil {
		return nil, errors.Wrapf(err, errors.ErrResolveFailed, "requesting product info for app %d", appID)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case info, ok := <-sub.ch:
		if !ok {
			return nil, errors.New(errors.ErrSessionLost, "session lost while waiting for product info")
		}
		return info, nil
	case <-timer.C:
		return nil, errors.Newf(errors.ErrResolveTimeout, "no product info for app %d within %s", appID, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Logoff requests disconnection and waits, within a bounded grace
// period, for the pump to observe the confirming event and stop.
func (o *Orchestrator) Logoff(ctx context.Context) {
	if o.State() == StateLoggedOn {
		o.setState(StateLoggingOff)
	}
	o.sess.Disconnect()

	select {
	case <-o.pumpDone:
	case <-time.After(disconnectGrace):
		o.logger.Warn().Msg("Service did not confirm disconnect in time")
	case <-ctx.Done():
	}
}

// Close releases the session unconditionally. Safe to call more than
// once and after Logoff.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.sess.Disconnect()
		o.dispatch.closeAll()
	})
}

// PendingSubscriptions reports live one-shot subscriptions. Exposed for
// leak assertions in tests.
func (o *Orchestrator) PendingSubscriptions() int {
	return o.dispatch.pending()
}

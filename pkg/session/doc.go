// Package session owns the lifecycle of a Steam account-service session.
//
// An Orchestrator drives connect, authentication, login, work and logoff
// over the session's event stream. One dedicated goroutine (the pump) is
// the only consumer of that stream; everything the rest of the program
// needs to wait for is bridged through single-fire completion signals and
// one-shot subscriptions that the pump resolves. Handlers never block the
// pump; the auth flow runs on its own goroutine.
package session

// Package steam defines the boundary to the Steam account-service session.
//
// The wire protocol, transport and cryptographic handshake live in an
// external connector that implements Session and registers its dialer via
// SetDial at program initialization (the database/sql driver pattern).
// This package only specifies the calls and events the restorer depends
// on; steamtest provides an in-memory implementation for tests.
package steam

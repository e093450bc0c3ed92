package main

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort = "Restore missing Steam game icons"
	MsgRootLong = `steam-icon-restorer signs in to your Steam account, scans the installed
games in every library folder and re-downloads each game's client icon so
desktop shortcuts stop showing blank tiles.

Sign in with your account credentials or, with --qr, by scanning a code
with the Steam mobile app. Nothing is persisted between runs.`
	MsgVersionShort = "Print version information"
	MsgTopicsShort  = "Display available documentation topics"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig  = "Config file (default is the first of config.toml/.yaml/.yml in the user config dir)"
	MsgFlagPath    = "Steam install path (default: auto-detect)"
	MsgFlagUser    = "Steam account name"
	MsgFlagQR      = "Sign in by scanning a QR code with the Steam mobile app"
	MsgFlagPlain   = "Disable styled terminal output"
)

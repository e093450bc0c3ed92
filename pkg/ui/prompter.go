package ui

import (
	"fmt"

	"github.com/pterm/pterm"
)

// TerminalPrompter collects Steam Guard input interactively. It satisfies
// the session authenticator contract used by the credentials flow.
type TerminalPrompter struct{}

// DeviceCode asks for the code shown in the Steam mobile app.
func (TerminalPrompter) DeviceCode(previousWasWrong bool) (string, error) {
	if previousWasWrong {
		pterm.Warning.Println("That code was not accepted, try again")
	}
	return pterm.DefaultInteractiveTextInput.Show("Steam Guard code from the mobile app")
}

// EmailCode asks for the code Steam mailed to the account address.
func (TerminalPrompter) EmailCode(address string, previousWasWrong bool) (string, error) {
	if previousWasWrong {
		pterm.Warning.Println("That code was not accepted, try again")
	}
	prompt := "Steam Guard code from your email"
	if address != "" {
		prompt = fmt.Sprintf("Steam Guard code sent to %s", address)
	}
	return pterm.DefaultInteractiveTextInput.Show(prompt)
}

// ConfirmDevice waits for the user to approve the login on their device.
func (TerminalPrompter) ConfirmDevice() (bool, error) {
	pterm.Info.Println("Approve this sign-in in the Steam mobile app")
	return pterm.DefaultInteractiveConfirm.
		WithDefaultValue(true).
		Show("Approved it on your device?")
}

// PromptPassword reads the account password with masked input.
func PromptPassword(account string) (string, error) {
	return pterm.DefaultInteractiveTextInput.
		WithMask("*").
		Show(fmt.Sprintf("Password for %s", account))
}

// Package ui renders run output and handles the interactive prompts the
// auth flows delegate to. A Renderer is either rich (pterm/lipgloss) or
// plain, chosen by the CLI based on TTY detection.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mdp/qrterminal/v3"
	"github.com/pterm/pterm"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/icons"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/manifest"
)

// Renderer writes run output for the user. It doubles as the pipeline
// observer and the auth flow's challenge renderer.
type Renderer interface {
	RenderGameResult(game manifest.Game, outcome icons.Outcome)
	RenderSummary(report *icons.Report)
	RenderChallenge(url string)
	RenderError(err error)
}

// ObserverAdapter implements icons.Observer on top of any Renderer.
type ObserverAdapter struct {
	Renderer Renderer
}

func (a ObserverAdapter) GameProcessed(game manifest.Game, outcome icons.Outcome) {
	a.Renderer.RenderGameResult(game, outcome)
}

// TerminalRenderer implements Renderer with rich terminal output.
type TerminalRenderer struct {
	out io.Writer
}

// NewTerminalRenderer creates a renderer writing to stdout.
func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{out: os.Stdout}
}

func (r *TerminalRenderer) RenderGameResult(game manifest.Game, outcome icons.Outcome) {
	if outcome.Success {
		pterm.Success.WithWriter(r.out).Printfln("%s (%d)", game.Name, game.ID)
		return
	}
	pterm.Warning.WithWriter(r.out).Printfln("%s (%d): %s", game.Name, game.ID, outcome.Diagnostic)
}

var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true)
	summaryOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	summaryFailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func (r *TerminalRenderer) RenderSummary(report *icons.Report) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, summaryTitleStyle.Render("Icon restore finished"))
	fmt.Fprintf(r.out, "  %s  %s\n",
		summaryOKStyle.Render(fmt.Sprintf("%d restored", report.Succeeded)),
		summaryFailStyle.Render(fmt.Sprintf("%d skipped or failed", report.Failed)))
	if report.Aborted {
		pterm.Warning.WithWriter(r.out).Println("The session was lost before all games were processed")
	}
}

func (r *TerminalRenderer) RenderChallenge(url string) {
	pterm.Info.WithWriter(r.out).Println("Scan this code with the Steam mobile app to sign in:")
	qrterminal.GenerateHalfBlock(url, qrterminal.L, r.out)
	fmt.Fprintf(r.out, "Or open: %s\n", url)
}

func (r *TerminalRenderer) RenderError(err error) {
	pterm.Error.WithWriter(r.out).Println(err.Error())
}

// PlainRenderer implements Renderer without styling, for pipes and dumb
// terminals.
type PlainRenderer struct {
	out io.Writer
}

// NewPlainRenderer creates a plain renderer writing to w.
func NewPlainRenderer(w io.Writer) *PlainRenderer {
	return &PlainRenderer{out: w}
}

func (r *PlainRenderer) RenderGameResult(game manifest.Game, outcome icons.Outcome) {
	if outcome.Success {
		fmt.Fprintf(r.out, "ok   %s (%d)\n", game.Name, game.ID)
		return
	}
	fmt.Fprintf(r.out, "skip %s (%d): %s\n", game.Name, game.ID, outcome.Diagnostic)
}

func (r *PlainRenderer) RenderSummary(report *icons.Report) {
	fmt.Fprintf(r.out, "restored %d of %d icons (%d skipped or failed)\n",
		report.Succeeded, report.Total(), report.Failed)
	if report.Aborted {
		fmt.Fprintln(r.out, "warning: session lost before all games were processed")
	}
}

func (r *PlainRenderer) RenderChallenge(url string) {
	fmt.Fprintln(r.out, "Scan this code with the Steam mobile app to sign in:")
	qrterminal.Generate(url, qrterminal.L, r.out)
	fmt.Fprintf(r.out, "Or open: %s\n", url)
}

func (r *PlainRenderer) RenderError(err error) {
	fmt.Fprintf(r.out, "error: %s\n", err.Error())
}

package ui_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/icons"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/manifest"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/ui"
)

func TestPlainRendererGameResult(t *testing.T) {
	var buf bytes.Buffer
	r := ui.NewPlainRenderer(&buf)

	r.RenderGameResult(
		manifest.Game{ID: 440, Name: "Team Fortress 2"},
		icons.Outcome{AppID: 440, Success: true},
	)
	r.RenderGameResult(
		manifest.Game{ID: 570, Name: "Dota 2"},
		icons.Outcome{AppID: 570, Success: false, Diagnostic: "no icon published"},
	)

	out := buf.String()
	assert.Contains(t, out, "ok   Team Fortress 2 (440)")
	assert.Contains(t, out, "skip Dota 2 (570): no icon published")
}

func TestPlainRendererSummary(t *testing.T) {
	var buf bytes.Buffer
	r := ui.NewPlainRenderer(&buf)

	r.RenderSummary(&icons.Report{Succeeded: 3, Failed: 1})

	assert.Contains(t, buf.String(), "restored 3 of 4 icons (1 skipped or failed)")
	assert.NotContains(t, buf.String(), "session lost")
}

func TestPlainRendererSummaryAborted(t *testing.T) {
	var buf bytes.Buffer
	r := ui.NewPlainRenderer(&buf)

	r.RenderSummary(&icons.Report{Succeeded: 1, Failed: 2, Aborted: true})

	assert.Contains(t, buf.String(), "session lost before all games were processed")
}

func TestPlainRendererChallengeIncludesURL(t *testing.T) {
	var buf bytes.Buffer
	r := ui.NewPlainRenderer(&buf)

	r.RenderChallenge("https://s.team/q/1/123")

	out := buf.String()
	assert.Contains(t, out, "https://s.team/q/1/123")
	// The scannable block comes along with the printable link.
	assert.Greater(t, len(out), 200)
}

type recordedResult struct {
	game    manifest.Game
	outcome icons.Outcome
}

type recordingRenderer struct {
	ui.PlainRenderer
	results []recordedResult
}

func (r *recordingRenderer) RenderGameResult(game manifest.Game, outcome icons.Outcome) {
	r.results = append(r.results, recordedResult{game: game, outcome: outcome})
}

func TestObserverAdapterForwardsResults(t *testing.T) {
	rec := &recordingRenderer{}
	adapter := ui.ObserverAdapter{Renderer: rec}

	adapter.GameProcessed(
		manifest.Game{ID: 730, Name: "Counter-Strike 2"},
		icons.Outcome{AppID: 730, Success: true},
	)

	assert.Len(t, rec.results, 1)
	assert.Equal(t, uint32(730), rec.results[0].game.ID)
	assert.True(t, rec.results[0].outcome.Success)
}

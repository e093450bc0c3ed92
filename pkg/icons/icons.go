// Package icons resolves each game's client-icon token from product
// metadata and downloads the icon asset to its deterministic path. One
// game's failure never stops the batch.
package icons

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/errors"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/logging"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/manifest"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/paths"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/vdf"
)

// ResolveTimeout bounds the wait for one product-info response. The
// remote request is not cancelled on timeout; its late answer, if any,
// is dropped because the one-shot subscription is already gone.
const ResolveTimeout = 10 * time.Second

// ProductInfoSource is the slice of the session orchestrator the
// pipeline needs.
type ProductInfoSource interface {
	ProductInfo(ctx context.Context, appID uint32, timeout time.Duration) (*vdf.Node, error)
}

// Outcome records what happened to one game.
type Outcome struct {
	AppID      uint32
	Name       string
	Success    bool
	Diagnostic string
}

// Report aggregates a pipeline run. Succeeded+Failed always equals the
// number of games actually processed; Aborted marks a run cut short by a
// lost session.
type Report struct {
	Succeeded int
	Failed    int
	Outcomes  []Outcome
	Aborted   bool
}

// Total is the number of games processed.
func (r *Report) Total() int {
	return r.Succeeded + r.Failed
}

// Observer is notified after each game, in processing order. Implemented
// by the UI; a nil observer is fine.
type Observer interface {
	GameProcessed(game manifest.Game, outcome Outcome)
}

// Pipeline processes games sequentially in discovery order. Its async
// points (metadata wait, HTTP fetch) never overlap across games.
type Pipeline struct {
	source      ProductInfoSource
	downloader  *Downloader
	installRoot string
	observer    Observer
	logger      zerolog.Logger
}

// NewPipeline wires a pipeline. observer may be nil.
func NewPipeline(source ProductInfoSource, downloader *Downloader, installRoot string, observer Observer) *Pipeline {
	return &Pipeline{
		source:      source,
		downloader:  downloader,
		installRoot: installRoot,
		observer:    observer,
		logger:      logging.GetLogger("icons"),
	}
}

// Run processes every game and aggregates the outcomes. Per-item
// failures are absorbed; only a lost session ends the batch early.
func (p *Pipeline) Run(ctx context.Context, games []manifest.Game) *Report {
	report := &Report{}
	for _, game := range games {
		outcome, abort := p.processOne(ctx, game)

		if outcome.Success {
			report.Succeeded++
		} else {
			report.Failed++
		}
		report.Outcomes = append(report.Outcomes, outcome)
		if p.observer != nil {
			p.observer.GameProcessed(game, outcome)
		}

		if abort {
			p.logger.Warn().Uint32("appid", game.ID).Msg("Session lost, ending batch early")
			report.Aborted = true
			break
		}
	}
	return report
}

func (p *Pipeline) processOne(ctx context.Context, game manifest.Game) (Outcome, bool) {
	outcome := Outcome{AppID: game.ID, Name: game.Name}

	info, err := p.source.ProductInfo(ctx, game.ID, ResolveTimeout)
	if err != nil {
		switch {
		case errors.IsErrorCode(err, errors.ErrResolveTimeout):
			outcome.Diagnostic = "metadata request timed out"
			return outcome, false
		case errors.IsErrorCode(err, errors.ErrSessionLost), ctx.Err() != nil:
			outcome.Diagnostic = "session lost"
			return outcome, true
		default:
			outcome.Diagnostic = err.Error()
			return outcome, false
		}
	}

	token := ExtractToken(info)
	if token == "" {
		outcome.Diagnostic = "no icon published"
		return outcome, false
	}

	dest := paths.IconPath(p.installRoot, token)
	if err := p.downloader.Fetch(ctx, game.ID, token, dest); err != nil {
		outcome.Diagnostic = err.Error()
		return outcome, false
	}

	p.logger.Debug().Uint32("appid", game.ID).Str("token", token).Msg("Icon restored")
	outcome.Success = true
	return outcome, false
}

// ExtractToken pulls the client-icon token out of an app's metadata
// blob. A nil blob, a missing common section or an empty token all mean
// "no icon published" and come back as the empty string.
func ExtractToken(info *vdf.Node) string {
	common := info.Child("common")
	if common == nil {
		return ""
	}
	token, _ := common.String("clienticon")
	return token
}

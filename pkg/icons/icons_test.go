package icons_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/errors"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/icons"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/manifest"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/vdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sourceFunc func(ctx context.Context, appID uint32, timeout time.Duration) (*vdf.Node, error)

func (f sourceFunc) ProductInfo(ctx context.Context, appID uint32, timeout time.Duration) (*vdf.Node, error) {
	return f(ctx, appID, timeout)
}

// mapSource answers from a fixed table: a node, a scripted error, or
// nil for unknown apps.
func mapSource(nodes map[uint32]*vdf.Node, errs map[uint32]error) sourceFunc {
	return func(ctx context.Context, appID uint32, timeout time.Duration) (*vdf.Node, error) {
		if err, ok := errs[appID]; ok {
			return nil, err
		}
		return nodes[appID], nil
	}
}

func appInfo(t *testing.T, token string) *vdf.Node {
	t.Helper()
	node, err := vdf.ParseString(`"appinfo" { "common" { "clienticon" "` + token + `" } }`)
	require.NoError(t, err)
	return node
}

// iconServer serves <appid>/<token>.ico for the given tokens and 404s
// everything else.
func iconServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if filepath.Ext(r.URL.Path) != ".ico" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type orderObserver struct {
	order []uint32
}

func (o *orderObserver) GameProcessed(game manifest.Game, outcome icons.Outcome) {
	o.order = append(o.order, game.ID)
}

func TestExtractToken(t *testing.T) {
	noCommon, err := vdf.ParseString(`"appinfo" { "extended" { } }`)
	require.NoError(t, err)
	emptyToken, err := vdf.ParseString(`"appinfo" { "common" { "clienticon" "" } }`)
	require.NoError(t, err)

	tests := []struct {
		name string
		info *vdf.Node
		want string
	}{
		{"nil blob", nil, ""},
		{"no common section", noCommon, ""},
		{"empty token", emptyToken, ""},
		{"token present", appInfo(t, "abc123"), "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, icons.ExtractToken(tt.info))
		})
	}
}

func TestPipelineDownloadsResolvedIcons(t *testing.T) {
	srv := iconServer(t, []byte("icon-bytes"))
	install := t.TempDir()

	source := mapSource(map[uint32]*vdf.Node{10: appInfo(t, "abc123")}, nil)
	pipeline := icons.NewPipeline(source, icons.NewDownloaderWithBaseURL(srv.URL), install, nil)

	report := pipeline.Run(context.Background(), []manifest.Game{{ID: 10, Name: "Alpha"}})

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 0, report.Failed)

	data, err := os.ReadFile(filepath.Join(install, "steam", "games", "abc123.ico"))
	require.NoError(t, err)
	assert.Equal(t, []byte("icon-bytes"), data)
}

func TestPipelineSkipsGamesWithoutIcon(t *testing.T) {
	noCommon, err := vdf.ParseString(`"appinfo" { "depots" { } }`)
	require.NoError(t, err)

	install := t.TempDir()
	source := mapSource(map[uint32]*vdf.Node{10: noCommon}, nil)
	pipeline := icons.NewPipeline(source, icons.NewDownloaderWithBaseURL("http://127.0.0.1:0"), install, nil)

	report := pipeline.Run(context.Background(), []manifest.Game{{ID: 10, Name: "Alpha"}})

	assert.Equal(t, 0, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, "no icon published", report.Outcomes[0].Diagnostic)

	// No HTTP request happened, so nothing may exist on disk.
	_, err = os.Stat(filepath.Join(install, "steam", "games"))
	assert.True(t, os.IsNotExist(err))
}

func TestPipelineTimeoutDoesNotBlockNextGame(t *testing.T) {
	srv := iconServer(t, []byte("x"))
	install := t.TempDir()

	source := mapSource(
		map[uint32]*vdf.Node{20: appInfo(t, "late")},
		map[uint32]error{10: errors.New(errors.ErrResolveTimeout, "no answer")},
	)
	pipeline := icons.NewPipeline(source, icons.NewDownloaderWithBaseURL(srv.URL), install, nil)

	report := pipeline.Run(context.Background(), []manifest.Game{
		{ID: 10, Name: "Slow"},
		{ID: 20, Name: "Fast"},
	})

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "metadata request timed out", report.Outcomes[0].Diagnostic)
	assert.True(t, report.Outcomes[1].Success)
}

func TestPipelineIsolatesDownloadFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if filepath.Base(r.URL.Path) == "broken.ico" {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)
	install := t.TempDir()

	source := mapSource(map[uint32]*vdf.Node{
		10: appInfo(t, "broken"),
		20: appInfo(t, "fine"),
	}, nil)
	observer := &orderObserver{}
	pipeline := icons.NewPipeline(source, icons.NewDownloaderWithBaseURL(srv.URL), install, observer)

	report := pipeline.Run(context.Background(), []manifest.Game{
		{ID: 10, Name: "Broken"},
		{ID: 20, Name: "Fine"},
	})

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 2, report.Total())
	assert.Equal(t, []uint32{10, 20}, observer.order)

	// The failed icon must not leave a file behind.
	_, err := os.Stat(filepath.Join(install, "steam", "games", "broken.ico"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(install, "steam", "games", "fine.ico"))
	assert.NoError(t, err)
}

func TestPipelineCountConservation(t *testing.T) {
	srv := iconServer(t, []byte("x"))
	install := t.TempDir()

	nodes := map[uint32]*vdf.Node{
		1: appInfo(t, "one"),
		3: appInfo(t, "three"),
	}
	errs := map[uint32]error{
		2: errors.New(errors.ErrResolveTimeout, "slow"),
	}
	games := []manifest.Game{
		{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, // 4 resolves to no metadata
	}

	pipeline := icons.NewPipeline(mapSource(nodes, errs), icons.NewDownloaderWithBaseURL(srv.URL), install, nil)
	report := pipeline.Run(context.Background(), games)

	assert.Equal(t, len(games), report.Succeeded+report.Failed)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	assert.False(t, report.Aborted)
}

func TestPipelineAbortsWhenSessionLost(t *testing.T) {
	install := t.TempDir()
	source := mapSource(nil, map[uint32]error{
		10: errors.New(errors.ErrSessionLost, "dropped"),
	})
	pipeline := icons.NewPipeline(source, icons.NewDownloaderWithBaseURL("http://127.0.0.1:0"), install, nil)

	report := pipeline.Run(context.Background(), []manifest.Game{
		{ID: 10}, {ID: 20}, {ID: 30},
	})

	assert.True(t, report.Aborted)
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, report.Outcomes, 1, "games after the lost session are not processed")
}

func TestDownloaderURL(t *testing.T) {
	d := icons.NewDownloader()
	assert.Equal(t,
		"https://cdn.cloudflare.steamstatic.com/steamcommunity/public/images/apps/440/abc123.ico",
		d.URL(440, "abc123"))
}

func TestDownloaderHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	dest := filepath.Join(t.TempDir(), "out.ico")
	err := icons.NewDownloaderWithBaseURL(srv.URL).Fetch(context.Background(), 10, "tok", dest)
	require.Error(t, err)
	assert.Equal(t, errors.ErrDownload, errors.GetErrorCode(err))

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

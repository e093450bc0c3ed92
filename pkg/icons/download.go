package icons

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/errors"
)

// DefaultBaseURL is the CDN prefix icons are served from. The asset URL
// is <base>/<appid>/<token>.ico, two positional substitutions.
const DefaultBaseURL = "https://cdn.cloudflare.steamstatic.com/steamcommunity/public/images/apps"

// DownloadTimeout bounds one icon fetch end to end.
const DownloadTimeout = 30 * time.Second

// Downloader fetches icon assets over HTTP and writes them to disk.
type Downloader struct {
	client  *http.Client
	baseURL string
}

// NewDownloader builds a downloader against the Steam CDN.
func NewDownloader() *Downloader {
	return NewDownloaderWithBaseURL(DefaultBaseURL)
}

// NewDownloaderWithBaseURL points the downloader at an alternate host.
// Tests use it with httptest servers.
func NewDownloaderWithBaseURL(baseURL string) *Downloader {
	return &Downloader{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: DownloadTimeout,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 15 * time.Second,
			},
		},
	}
}

// URL is the deterministic asset URL for one icon.
func (d *Downloader) URL(appID uint32, token string) string {
	return fmt.Sprintf("%s/%d/%s.ico", d.baseURL, appID, token)
}

// Fetch downloads one icon to dest, creating directories as needed. Any
// network or filesystem error is returned for per-item accounting; the
// destination file is not written on failure.
func (d *Downloader) Fetch(ctx context.Context, appID uint32, token, dest string) error {
	url := d.URL(appID, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrapf(err, errors.ErrDownload, "building request for %s", url)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, errors.ErrDownload, "fetching %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf(errors.ErrDownload, "fetching %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, errors.ErrDownload, "reading body of %s", url)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "creating %s", filepath.Dir(dest))
	}
	if err := os.WriteFile(dest, body, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "writing %s", dest)
	}
	return nil
}

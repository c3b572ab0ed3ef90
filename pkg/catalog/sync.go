// sync.go
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

// Sync downloads a channel's catalog from channelURL and installs it into
// the local cache. The file is written atomically so a concurrent reader
// never observes a partial catalog.
func Sync(ctx context.Context, client *http.Client, channelURL, channel, cacheDir string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	url := fmt.Sprintf("%s/%s.toml", strings.TrimSuffix(channelURL, "/"), channel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating catalog request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching channel %s: %w", channel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching channel %s: unexpected status %d from %s", channel, resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading channel %s: %w", channel, err)
	}

	// Parse before installing so a corrupt upstream file never replaces a
	// working local catalog.
	var c Catalog
	if err := decode(data, &c); err != nil {
		return "", fmt.Errorf("channel %s: %w", channel, err)
	}

	dest := Path(cacheDir, channel)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("creating channel cache directory: %w", err)
	}
	if err := renameio.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("installing catalog: %w", err)
	}
	return dest, nil
}

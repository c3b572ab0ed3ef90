// Package cache fetches package artifacts from a binary cache: narinfo
// metadata lookup, NAR download with hash verification, and unpacking into
// a store entry directory.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// ErrHashMismatch indicates a downloaded archive failed hash verification.
var ErrHashMismatch = errors.New("hash mismatch")

const defaultUserAgent = "shed/1.0"

// Client talks to one binary cache.
type Client struct {
	httpClient *http.Client
	cacheURL   string
	userAgent  string
	log        zerolog.Logger
}

// Options configures a Client.
type Options struct {
	Timeout time.Duration // per-request timeout, default 30s
	Retries int           // retry budget for transient failures, default 4
	Logger  zerolog.Logger
}

// NewClient returns a client for the cache at cacheURL. Transient network
// and 5xx failures are retried with backoff.
func NewClient(cacheURL string, opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Retries == 0 {
		opts.Retries = 4
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.Retries
	rc.HTTPClient.Timeout = opts.Timeout
	rc.Logger = nil

	return &Client{
		httpClient: rc.StandardClient(),
		cacheURL:   strings.TrimSuffix(cacheURL, "/"),
		userAgent:  defaultUserAgent,
		log:        opts.Logger,
	}
}

// HTTPClient exposes the underlying retrying client for other HTTP work
// that wants the same resilience, such as channel catalog sync.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// NARInfo fetches and parses the metadata record for a store hash.
func (c *Client) NARInfo(ctx context.Context, storeHash string) (*NARInfo, error) {
	url := fmt.Sprintf("%s/%s.narinfo", c.cacheURL, storeHash)
	c.log.Debug().Str("url", url).Msg("fetching narinfo")

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching narinfo for %s: %w", storeHash, err)
	}
	defer body.Close()

	content, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading narinfo for %s: %w", storeHash, err)
	}

	info, err := ParseNARInfo(string(content))
	if err != nil {
		return nil, fmt.Errorf("narinfo for %s: %w", storeHash, err)
	}
	return info, nil
}

// download streams the NAR archive named by info to w.
func (c *Client) download(ctx context.Context, info *NARInfo, w io.Writer) error {
	url := fmt.Sprintf("%s/%s", c.cacheURL, info.URL)
	c.log.Debug().Str("url", url).Int64("size", info.FileSize).Msg("downloading nar")

	body, err := c.get(ctx, url)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", info.URL, err)
	}
	defer body.Close()

	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("downloading %s: %w", info.URL, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

package catalog

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultUserAgent = "spigell/scheme-navigator"
	acceptEncoding   = "gzip"
)

// Fetcher downloads a catalog published over HTTP.
type Fetcher struct {
	HTTPClient *http.Client
	UserAgent  string

	token  string
	logger *zap.Logger
}

// NewFetcher returns a fetcher. An empty token sends no Authorization header.
func NewFetcher(logger *zap.Logger, token string) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: defaultUserAgent,
		token:     token,
		logger:    logger,
	}
}

// IsRemote reports whether location is an http(s) URL rather than a file path.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Fetch downloads and validates the catalog at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]*Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	f.setHeaders(req)

	f.logger.Debug("make request", zap.String("url", url))
	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog %q: bad status: %s", url, resp.Status)
	}

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("fetch catalog %q: %w", url, err)
		}
		defer gz.Close()
		body = gz
	}

	entries, err := Load(body)
	if err != nil {
		return nil, fmt.Errorf("load catalog %q: %w", url, err)
	}

	f.logger.Info("catalog loaded", zap.String("url", url), zap.Int("count", len(entries)))
	return entries, nil
}

func (f *Fetcher) setHeaders(req *http.Request) {
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", acceptEncoding)
}

package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// FallbackUserAgents are tried in order when downloading documents. Some NHS
// trust sites sit behind WAFs that reject non-browser agents.
var FallbackUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
}

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	Timeout    time.Duration
	MinBytes   int
	UserAgents []string
	RatePerSec float64
	RateBurst  int
}

// HTTPFetcher implements Fetcher using net/http with a cookie jar and a
// politeness rate limiter.
type HTTPFetcher struct {
	client  *http.Client
	opts    HTTPOptions
	limiter *rate.Limiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.MinBytes == 0 {
		opts.MinBytes = 10000
	}
	if len(opts.UserAgents) == 0 {
		opts.UserAgents = FallbackUserAgents
	}
	if opts.RatePerSec == 0 {
		opts.RatePerSec = 2
	}
	if opts.RateBurst == 0 {
		opts.RateBurst = 4
	}

	// cookiejar.New never fails with a nil PublicSuffixList.
	jar, _ := cookiejar.New(nil)
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			Jar:       jar,
		},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.RateBurst),
	}
}

// FetchPage fetches an HTML page with browser-profile headers. Cookies set by
// the response are kept in the jar for subsequent document downloads.
func (f *HTTPFetcher) FetchPage(ctx context.Context, rawURL string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetcher: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgents[0])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: fetch page")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("fetcher: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: read page body")
	}
	return body, nil
}

// FetchDocument downloads a document URL, trying each fallback User-Agent in
// turn. An attempt counts as a success only when the server returns 200 and
// the body exceeds MinBytes; short bodies are usually cookie-wall or error
// interstitials served with a 200.
func (f *HTTPFetcher) FetchDocument(ctx context.Context, rawURL, referer string) ([]byte, error) {
	for i, ua := range f.opts.UserAgents {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetcher: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: create request")
		}
		req.Header.Set("User-Agent", ua)
		req.Header.Set("Accept", "application/pdf,application/zip,application/octet-stream,*/*")
		if referer != "" {
			req.Header.Set("Referer", referer)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			zap.L().Warn("download attempt failed",
				zap.String("url", rawURL),
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			zap.L().Warn("download attempt failed",
				zap.String("url", rawURL),
				zap.Int("attempt", i+1),
				zap.Error(readErr),
			)
			continue
		}

		if resp.StatusCode == http.StatusOK && len(body) > f.opts.MinBytes {
			zap.L().Info("downloaded document",
				zap.String("url", rawURL),
				zap.Int("bytes", len(body)),
			)
			return body, nil
		}

		zap.L().Warn("download attempt rejected",
			zap.String("url", rawURL),
			zap.Int("attempt", i+1),
			zap.Int("status", resp.StatusCode),
			zap.Int("bytes", len(body)),
		)
	}

	return nil, eris.Errorf("fetcher: all user agents exhausted for %s", rawURL)
}

package fetcher

import "context"

// Fetcher defines the interface for retrieving remote pages and documents.
type Fetcher interface {
	// FetchPage fetches an HTML page and returns the response body. The
	// request carries browser-profile headers and primes session cookies
	// for later document downloads.
	FetchPage(ctx context.Context, url string) ([]byte, error)

	// FetchDocument downloads a document, trying each fallback User-Agent
	// in turn until one yields a plausible payload.
	FetchDocument(ctx context.Context, url, referer string) ([]byte, error)
}

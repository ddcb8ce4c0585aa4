// Package fragments fetches shared page fragments (nav, footer) and other
// site resources from an ordered list of candidate URLs, accepting the
// first usable response. Order encodes preference, so candidates are tried
// strictly sequentially.
package fragments

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultMinLength is the minimum trimmed body length accepted for an HTML
// fragment. Anything shorter is almost certainly an error page stub or an
// empty include.
const DefaultMinLength = 20

// Fragment is a successfully fetched resource plus the candidate that
// produced it.
type Fragment struct {
	URL         string
	Body        []byte
	ContentType string
}

// Loader tries candidate URLs in order with caching disabled and stops at
// the first acceptable response.
type Loader struct {
	Client *http.Client
	// MinLength overrides DefaultMinLength for HTML fragments when > 0.
	MinLength int
}

// NewLoader returns a Loader with a sane request timeout.
func NewLoader() *Loader {
	return &Loader{
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchHTML fetches an HTML fragment. Besides the usual status and
// non-empty checks, the body must meet the minimum length and parse into
// at least one HTML element.
func (l *Loader) FetchHTML(ctx context.Context, candidates []string) (*Fragment, error) {
	return l.fetch(ctx, candidates, true)
}

// FetchRaw fetches a text or JSON resource; only an HTTP-successful,
// non-empty body is required.
func (l *Loader) FetchRaw(ctx context.Context, candidates []string) (*Fragment, error) {
	return l.fetch(ctx, candidates, false)
}

func (l *Loader) fetch(ctx context.Context, candidates []string, html bool) (*Fragment, error) {
	if len(candidates) == 0 {
		return nil, errors.New("no candidate URLs")
	}

	var failures []error
	for _, url := range candidates {
		frag, err := l.attempt(ctx, url, html)
		if err != nil {
			// A failing candidate is a skip, never an abort.
			slog.Warn("Skipping candidate", "url", url, "err", err)
			failures = append(failures, fmt.Errorf("%s: %w", url, err))
			continue
		}
		slog.Debug("Fetched fragment", "url", url, "bytes", len(frag.Body), "content_type", frag.ContentType)
		return frag, nil
	}

	return nil, fmt.Errorf("all %d candidates failed: %w", len(candidates), errors.Join(failures...))
}

func (l *Loader) attempt(ctx context.Context, url string, html bool) (*Fragment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(body) == 0 {
		return nil, errors.New("empty response")
	}

	if html {
		if err := l.checkHTML(body); err != nil {
			return nil, err
		}
	}

	return &Fragment{
		URL:         url,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func (l *Loader) checkHTML(body []byte) error {
	minLen := l.MinLength
	if minLen <= 0 {
		minLen = DefaultMinLength
	}
	if len(strings.TrimSpace(string(body))) < minLen {
		return fmt.Errorf("response too short (%d bytes)", len(body))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}
	if doc.Find("body *").Length() == 0 {
		return errors.New("no HTML elements in response")
	}
	return nil
}

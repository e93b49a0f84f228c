// Package httpsource fetches the served document over HTTP.
package httpsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
)

// CacheBustParam is the query parameter carrying the per-fetch token.
const CacheBustParam = "cacheBust"

// DefaultMaxBytes bounds a single document download.
const DefaultMaxBytes = 256 << 20

// ErrStatus is wrapped when the server answers with a non-2xx status.
var ErrStatus = errors.New("unexpected status")

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// Source is a DocumentSource that GETs a fixed URL, adding a fresh
// cache-busting token to every request.
type Source struct {
	url      *url.URL
	client   *http.Client
	limiter  *rate.Limiter
	maxBytes int64
	token    func() string
}

// Option configures a Source.
type Option func(*Source)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) { s.client = c }
}

// WithRate caps fetches per second. Zero or less disables throttling.
func WithRate(perSecond float64) Option {
	return func(s *Source) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithMaxBytes bounds the response size.
func WithMaxBytes(n int64) Option {
	return func(s *Source) { s.maxBytes = n }
}

// New creates a source for rawURL.
func New(rawURL string, opts ...Option) (*Source, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: document url %q: %v", domain.ErrInvalidInput, rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: document url %q must be http(s)", domain.ErrInvalidInput, rawURL)
	}

	s := &Source{
		url:      u,
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(domain.DefaultFetchRate), 1),
		maxBytes: DefaultMaxBytes,
		token:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// URL returns the document URL without a cache-bust token.
func (s *Source) URL() string {
	return s.url.String()
}

// Fetch downloads the document once.
func (s *Source) Fetch(ctx context.Context) ([]byte, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.bustedURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", domain.ErrInvalidContent, s.maxBytes)
	}
	return data, nil
}

func (s *Source) bustedURL() string {
	u := *s.url
	q := u.Query()
	q.Set(CacheBustParam, s.token())
	u.RawQuery = q.Encode()
	return u.String()
}

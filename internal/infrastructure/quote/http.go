package quote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pricestick/internal/domain"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 1 << 20
	errBodySnippet = 200
)

// httpSource is the GET-and-classify plumbing shared by both quote APIs.
type httpSource struct {
	name     string // human label used in error text, e.g. "Stock API"
	endpoint string
	client   *http.Client
}

func newHTTPSource(name, endpoint string, timeout time.Duration) httpSource {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return httpSource{
		name:     name,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (s httpSource) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s connection failed: %v", domain.ErrTransport, s.name, redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s read body: %v", domain.ErrTransport, s.name, err)
	}

	if err := classifyStatus(s.name, resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

// classifyStatus maps an HTTP status to the fetch error taxonomy.
func classifyStatus(name string, code int, body []byte) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s Key invalid or expired", domain.ErrAuth, name)
	case code == http.StatusForbidden:
		return fmt.Errorf("%w: %s access forbidden - check your plan", domain.ErrAuth, name)
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s rate limit exceeded", domain.ErrRateLimited, name)
	default:
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > errBodySnippet {
			snippet = snippet[:errBodySnippet]
		}
		return fmt.Errorf("%w: HTTP error %d: %s", domain.ErrTransport, code, snippet)
	}
}

// redact drops the request URL from client errors, it carries the API key.
func redact(err error) error {
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok && u.Unwrap() != nil {
		return u.Unwrap()
	}
	return err
}

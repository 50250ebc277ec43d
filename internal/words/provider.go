// Package words fetches random Czech seed words from the external word
// generator used by the drawing and word-chain rounds.
package words

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Provider is the HTTP client for the random-word service. The service
// answers a plain-text body of words delimited by " | ".
type Provider struct {
	BaseURL string
	Client  *http.Client
}

func NewProvider(baseURL string) *Provider {
	return &Provider{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch requests n words. It is called only during game start; a failure
// aborts the start. Nothing is cached.
func (p *Provider) Fetch(ctx context.Context, n int) ([]string, error) {
	url := fmt.Sprintf("%s?number=%d", p.BaseURL, n)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("word provider request: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("word provider fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("word provider status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("word provider body: %w", err)
	}

	parts := strings.Split(string(body), " | ")
	words := make([]string, 0, len(parts))
	for _, part := range parts {
		if w := strings.TrimSpace(part); w != "" {
			words = append(words, w)
		}
	}
	if len(words) < n {
		return nil, fmt.Errorf("word provider returned %d words, want %d", len(words), n)
	}
	return words[:n], nil
}

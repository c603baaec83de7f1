package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DuckDuckGoURL        = "https://api.duckduckgo.com/"
	DefaultSearchTimeout = 5 * time.Second

	maxSummary = 200
)

type instantAnswer struct {
	AbstractText string `json:"AbstractText"`
	Results      []struct {
		Text string `json:"Text"`
	} `json:"Results"`
	RelatedTopics []struct {
		Text string `json:"Text"`
	} `json:"RelatedTopics"`
}

// Searcher summarizes a query with the DuckDuckGo Instant Answer API.
type Searcher struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

func NewSearcher(client *http.Client, baseURL string) *Searcher {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DuckDuckGoURL
	}
	return &Searcher{client: client, baseURL: baseURL, timeout: DefaultSearchTimeout}
}

func (s *Searcher) Search(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("search url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("no_redirect", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search: unexpected status %s", resp.Status)
	}

	var ia instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&ia); err != nil {
		return "", fmt.Errorf("decode search: %w", err)
	}

	var text string
	switch {
	case ia.AbstractText != "":
		text = ia.AbstractText
	case len(ia.Results) > 0 && ia.Results[0].Text != "":
		text = ia.Results[0].Text
	case len(ia.RelatedTopics) > 0 && ia.RelatedTopics[0].Text != "":
		text = ia.RelatedTopics[0].Text
	default:
		return "No results found", nil
	}
	return summarize(text, maxSummary), nil
}

// summarize cuts s to at most n runes on a word boundary.
func summarize(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	cut := string(r[:n])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

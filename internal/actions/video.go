package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os/exec"
	"time"

	"github.com/pkg/browser"
)

const DefaultVideoTimeout = 10 * time.Second

// Video opens the top YouTube result for a query, or the results page when
// the lookup fails.
type Video struct {
	lookup  func(ctx context.Context, query string) (string, error)
	open    func(url string) error
	timeout time.Duration
}

func NewVideo() *Video {
	return &Video{lookup: ytdlpTopID, open: browser.OpenURL, timeout: DefaultVideoTimeout}
}

// Watch returns the URL it opened.
func (v *Video) Watch(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	target := "https://www.youtube.com/results?search_query=" + url.QueryEscape(query)
	if id, err := v.lookup(ctx, query); err == nil && id != "" {
		target = "https://www.youtube.com/watch?v=" + url.QueryEscape(id)
	}

	if err := v.open(target); err != nil {
		return "", fmt.Errorf("open browser: %w", err)
	}
	return target, nil
}

func ytdlpTopID(ctx context.Context, query string) (string, error) {
	out, err := exec.CommandContext(ctx, "yt-dlp", "--dump-single-json", "--no-warnings", "ytsearch1:"+query).Output()
	if err != nil {
		return "", fmt.Errorf("yt-dlp: %w", err)
	}
	var res struct {
		ID      string `json:"id"`
		Entries []struct {
			ID string `json:"id"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(out, &res); err != nil {
		return "", fmt.Errorf("yt-dlp output: %w", err)
	}
	if len(res.Entries) > 0 {
		return res.Entries[0].ID, nil
	}
	return "", nil
}

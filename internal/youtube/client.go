// Package youtube is the external search/download provider for the music bot.
// Search goes through YouTube's InnerTube JSON API with a plain HTTP client;
// audio download shells out to yt-dlp. The package knows nothing about
// Telegram or the database.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	searchEndpoint = "https://www.youtube.com/youtubei/v1/search"
	webVersion     = "2.20250101.01.00"

	// InnerTube responses for a single query page stay well under this.
	maxResponseBytes = 8 << 20
)

// Video is one search hit.
type Video struct {
	ID       string
	Title    string
	Channel  string
	Duration string
}

// URL returns the watch URL for the video.
func (v Video) URL() string { return "https://www.youtube.com/watch?v=" + v.ID }

// Client searches YouTube and downloads audio. The zero value is not usable;
// construct with NewClient.
type Client struct {
	// HTTPClient performs InnerTube requests.
	HTTPClient *http.Client
	// Endpoint is the InnerTube search URL; overridable for tests.
	Endpoint string
	// YtDlpPath is the yt-dlp binary used for audio downloads.
	YtDlpPath string
}

// NewClient returns a Client with a bounded-timeout HTTP client.
func NewClient(ytdlpPath string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Endpoint:   searchEndpoint,
		YtDlpPath:  ytdlpPath,
	}
}

// Search returns up to limit videos matching query, in YouTube's ranking
// order. Live streams are skipped; hits without an id, title, or duration are
// discarded.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Video, error) {
	payload := map[string]any{
		"context": map[string]any{
			"client": map[string]any{
				"clientName":    "WEB",
				"clientVersion": webVersion,
				"hl":            "en",
			},
		},
		"query": query,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"?prettyPrint=false", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Origin", "https://www.youtube.com")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("youtube search failed: status=%d body=%q", resp.StatusCode, snippet)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	return parseSearch(raw, limit)
}

// parseSearch extracts video hits from a raw InnerTube search response.
func parseSearch(raw []byte, limit int) ([]Video, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	root := dig(
		data,
		"contents",
		"twoColumnSearchResultsRenderer",
		"primaryContents",
		"sectionListRenderer",
		"contents",
	)

	var out []Video
	collectVideos(root, &out, limit)
	return out, nil
}

// collectVideos walks the renderer tree appending videoRenderer hits to out
// until limit is reached.
func collectVideos(node any, out *[]Video, limit int) {
	if len(*out) >= limit {
		return
	}

	switch v := node.(type) {
	case []any:
		for _, item := range v {
			collectVideos(item, out, limit)
			if len(*out) >= limit {
				return
			}
		}

	case map[string]any:
		vr, ok := dig(v, "videoRenderer").(map[string]any)
		if !ok {
			for _, child := range v {
				collectVideos(child, out, limit)
				if len(*out) >= limit {
					return
				}
			}
			return
		}

		// Live streams have no finite duration to download.
		if badges, ok := vr["badges"].([]any); ok {
			for _, badge := range badges {
				if meta, ok := dig(badge, "metadataBadgeRenderer").(map[string]any); ok {
					if asString(meta["style"]) == "BADGE_STYLE_TYPE_LIVE_NOW" {
						return
					}
				}
			}
		}

		id := asString(vr["videoId"])
		title := asString(dig(vr, "title", "runs", 0, "text"))
		duration := asString(dig(vr, "lengthText", "simpleText"))
		channel := asString(dig(vr, "ownerText", "runs", 0, "text"))
		if id == "" || title == "" || duration == "" {
			return
		}
		*out = append(*out, Video{
			ID:       id,
			Title:    title,
			Channel:  channel,
			Duration: duration,
		})
	}
}

// Download fetches the best audio of v into dir via yt-dlp and returns the
// file path. The output name is a fresh UUID so concurrent downloads never
// collide. On failure any partial file is removed before returning.
func (c *Client) Download(ctx context.Context, v Video, dir string) (string, error) {
	out := filepath.Join(dir, uuid.NewString()+".m4a")

	cmd := exec.CommandContext(ctx, c.YtDlpPath,
		"--no-playlist",
		"--quiet",
		"-f", "bestaudio[ext=m4a]/bestaudio",
		"-o", out,
		v.URL(),
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		_ = os.Remove(out)
		return "", fmt.Errorf("yt-dlp %s: %w: %s", v.ID, err, truncate(output, 512))
	}
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("yt-dlp %s: no output file: %w", v.ID, err)
	}
	return out, nil
}

// dig walks nested maps and slices by string keys and integer indexes,
// returning nil as soon as the path breaks.
func dig(node any, path ...any) any {
	cur := node
	for _, p := range path {
		switch key := p.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur = m[key]
		case int:
			s, ok := cur.([]any)
			if !ok || key < 0 || key >= len(s) {
				return nil
			}
			cur = s[key]
		default:
			return nil
		}
	}
	return cur
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "…"
}

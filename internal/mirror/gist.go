package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	gistAPIURL = "https://api.github.com/gists"
	timeout    = 15 * time.Second

	// DefaultGistFilename is the file the feed is written to inside the gist.
	DefaultGistFilename = "events.json"
)

// Gist errors.
var (
	ErrNoGistID    = errors.New("gist ID is required")
	ErrNoGistToken = errors.New("GitHub token is required")
)

// Gist mirrors the feed into one file of an existing GitHub Gist.
type Gist struct {
	gistID      string
	filename    string
	githubToken string
	baseURL     string
	httpClient  *http.Client
}

// NewGist creates a gist mirror. An empty filename takes DefaultGistFilename.
func NewGist(gistID, filename, githubToken string) (*Gist, error) {
	if gistID == "" {
		return nil, ErrNoGistID
	}
	if githubToken == "" {
		return nil, ErrNoGistToken
	}
	if filename == "" {
		filename = DefaultGistFilename
	}
	return &Gist{
		gistID:      gistID,
		filename:    filename,
		githubToken: githubToken,
		baseURL:     gistAPIURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Name returns the gist and file being written.
func (g *Gist) Name() string {
	return fmt.Sprintf("gist:%s/%s", g.gistID, g.filename)
}

// Publish replaces the gist file's content with data.
func (g *Gist) Publish(ctx context.Context, data []byte) error {
	payload := map[string]interface{}{
		"files": map[string]interface{}{
			g.filename: map[string]string{
				"content": string(data),
			},
		},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s", g.baseURL, g.gistID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(payloadBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("token %s", g.githubToken))
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("updating gist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Only the status is reported, never the body
		return fmt.Errorf("GitHub API error (status %d)", resp.StatusCode)
	}

	return nil
}

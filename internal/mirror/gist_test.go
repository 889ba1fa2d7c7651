package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewGist(t *testing.T) {
	tests := []struct {
		name        string
		gistID      string
		githubToken string
		wantErr     error
	}{
		{"valid parameters", "abc123", "ghp_token", nil},
		{"empty gist ID", "", "ghp_token", ErrNoGistID},
		{"empty github token", "abc123", "", ErrNoGistToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGist(tt.gistID, "", tt.githubToken)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewGist() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if g != nil {
					t.Error("NewGist() should return nil on error")
				}
				return
			}
			if g.filename != DefaultGistFilename {
				t.Errorf("filename = %q, want %q", g.filename, DefaultGistFilename)
			}
		})
	}
}

func TestGist_Publish(t *testing.T) {
	var got struct {
		Files map[string]struct {
			Content string `json:"content"`
		} `json:"files"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		if r.URL.Path != "/abc123" {
			t.Errorf("path = %s, want /abc123", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "token ghp_token" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	g, err := NewGist("abc123", "feed.json", "ghp_token")
	if err != nil {
		t.Fatalf("NewGist() unexpected error: %v", err)
	}
	g.baseURL = server.URL

	if err := g.Publish(context.Background(), []byte(`{"events":[]}`)); err != nil {
		t.Fatalf("Publish() unexpected error: %v", err)
	}
	if got.Files["feed.json"].Content != `{"events":[]}` {
		t.Errorf("uploaded files = %+v", got.Files)
	}
	if g.Name() != "gist:abc123/feed.json" {
		t.Errorf("Name() = %q", g.Name())
	}
}

func TestGist_PublishError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Bad credentials"}`))
	}))
	defer server.Close()

	g, _ := NewGist("abc123", "", "ghp_bad")
	g.baseURL = server.URL

	err := g.Publish(context.Background(), []byte("{}"))
	if err == nil {
		t.Fatal("Publish() expected error, got nil")
	}
	if err.Error() != "GitHub API error (status 401)" {
		t.Errorf("error = %q", err)
	}
}

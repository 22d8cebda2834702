package tunnel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/vaibhavk10/YT-API/internal/media"
)

func TestRequestTunnelShapes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"direct url field", 200, `{"status":"redirect","url":"https://cdn.example/a.mp3"}`, "https://cdn.example/a.mp3"},
		{"nested result url", 200, `{"result":{"url":"https://cdn.example/b.mp3"}}`, "https://cdn.example/b.mp3"},
		{"nested download_url", 200, `{"result":{"download_url":"https://cdn.example/c.mp3"}}`, "https://cdn.example/c.mp3"},
		{"missing url", 200, `{"status":"error"}`, ""},
		{"server error", 500, `{"url":"https://cdn.example/d.mp3"}`, ""},
		{"garbage body", 200, `not json`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("want POST, got %s", r.Method)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, zap.NewNop())
			got := c.RequestTunnel(context.Background(), "https://youtu.be/abc", media.Audio)
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestTunnelUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", zap.NewNop())
	if got := c.RequestTunnel(context.Background(), "https://youtu.be/abc", media.Video); got != "" {
		t.Fatalf("unreachable endpoint must be treated as unavailable, got %q", got)
	}
}

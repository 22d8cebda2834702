package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vaibhavk10/YT-API/internal/media"
	"github.com/vaibhavk10/YT-API/internal/store"
)

type fakeResolver struct {
	md    *media.VideoMetadata
	err   error
	calls int
}

func (f *fakeResolver) Resolve(ctx context.Context, locator string) (*media.VideoMetadata, error) {
	f.calls++
	return f.md, f.err
}

type fakeChain struct {
	err          error
	writePartial bool
	calls        int
}

func (f *fakeChain) Download(ctx context.Context, locator string, kind media.Kind, outPath string) error {
	f.calls++
	if f.err != nil {
		if f.writePartial {
			os.WriteFile(outPath, []byte("partial"), 0o644) //nolint:errcheck
		}
		return f.err
	}
	return os.WriteFile(outPath, []byte("media-bytes"), 0o644)
}

type fakeSearch struct {
	results []media.SearchResult
	err     error
	calls   int
}

func (f *fakeSearch) Query(ctx context.Context, query string, limit int) ([]media.SearchResult, error) {
	f.calls++
	return f.results, f.err
}

type fakeTunnel struct {
	url   string
	calls int
}

func (f *fakeTunnel) RequestTunnel(ctx context.Context, locator string, kind media.Kind) string {
	f.calls++
	return f.url
}

type testEnv struct {
	server   *Server
	resolver *fakeResolver
	chain    *fakeChain
	search   *fakeSearch
	tunnel   *fakeTunnel
}

func newTestEnv(t *testing.T, apiKey string) *testEnv {
	t.Helper()
	files, err := store.New(t.TempDir(), time.Minute, 0, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	env := &testEnv{
		resolver: &fakeResolver{md: &media.VideoMetadata{Title: "Test Video", DurationSeconds: 125, ThumbnailURL: "https://img.example/t.jpg"}},
		chain:    &fakeChain{},
		search:   &fakeSearch{},
		tunnel:   &fakeTunnel{},
	}
	env.server = NewServer(Params{
		Resolver: env.resolver,
		Chain:    env.chain,
		Files:    files,
		Search:   env.search,
		Tunnel:   env.tunnel,
		Logger:   zap.NewNop(),
		Creator:  "Tester",
		APIKey:   apiKey,
		BaseURL:  "http://api.test",
	})
	return env
}

func do(t *testing.T, env *testEnv, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	env.server.Router().ServeHTTP(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("non-JSON body %q: %v", rec.Body.String(), err)
	}
	return rec, body
}

func TestInvalidLocatorRejectedBeforeAnyTool(t *testing.T) {
	targets := []string{
		"/api/downloader/ytmp3?url=https://vimeo.com/1",
		"/api/downloader/ytmp4?url=nonsense",
		"/api/downloader/ytmp3",
	}
	for _, target := range targets {
		env := newTestEnv(t, "")
		rec, body := do(t, env, target)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: want 400, got %d", target, rec.Code)
		}
		if body["status"] != false {
			t.Fatalf("%s: want status false, got %v", target, body["status"])
		}
		if env.resolver.calls != 0 || env.chain.calls != 0 {
			t.Fatalf("%s: no external tool may run for invalid locators", target)
		}
	}
}

func TestFlatAudioSuccess(t *testing.T) {
	env := newTestEnv(t, "")
	rec, body := do(t, env, "/api/downloader/ytmp3?url=https://youtu.be/dQw4w9WgXcQ")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %v", rec.Code, body)
	}
	if body["status"] != true || body["title"] != "Test Video" || body["format"] != "mp3" {
		t.Fatalf("unexpected body %v", body)
	}
	dl, _ := body["dl"].(string)
	if !strings.HasPrefix(dl, "http://api.test/download/audio_") || !strings.HasSuffix(dl, ".mp3") {
		t.Fatalf("unexpected dl %q", dl)
	}
	if body["size"].(float64) <= 0 {
		t.Fatalf("want positive size, got %v", body["size"])
	}
	if body["duration"].(float64) != 125 {
		t.Fatalf("want duration 125, got %v", body["duration"])
	}
}

func TestFlatVideoUsesMP4(t *testing.T) {
	env := newTestEnv(t, "")
	rec, body := do(t, env, "/api/downloader/ytmp4?url=https://youtu.be/dQw4w9WgXcQ")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if body["format"] != "mp4" {
		t.Fatalf("want mp4, got %v", body["format"])
	}
}

func TestDownloadRouteServesThen404s(t *testing.T) {
	env := newTestEnv(t, "")
	_, body := do(t, env, "/api/downloader/ytmp3?url=https://youtu.be/dQw4w9WgXcQ")
	dl := body["dl"].(string)
	path := dl[strings.Index(dl, "/download/"):]

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	env.server.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Fatalf("want audio/mpeg, got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment") {
		t.Fatalf("want attachment disposition, got %q", cd)
	}

	rec2, body2 := do(t, env, "/download/audio_0.mp3")
	if rec2.Code != http.StatusNotFound || body2["status"] != false {
		t.Fatalf("missing file must 404 with flat error, got %d %v", rec2.Code, body2)
	}
}

func TestNestedShapeAPIKeyGate(t *testing.T) {
	env := newTestEnv(t, "secret")

	rec, body := do(t, env, "/api/download/ytmp3?apikey=wrong&url=https://youtu.be/dQw4w9WgXcQ")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
	if body["success"] != false || body["status"].(float64) != 401 {
		t.Fatalf("unexpected body %v", body)
	}
	if env.resolver.calls != 0 {
		t.Fatal("resolver must not run on key mismatch")
	}

	rec, body = do(t, env, "/api/download/ytmp3?apikey=secret&url=https://youtu.be/dQw4w9WgXcQ")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %v", rec.Code, body)
	}
	result := body["result"].(map[string]any)
	if result["title"] != "Test Video" || result["duration"] != "2:05" {
		t.Fatalf("unexpected result %v", result)
	}
}

func TestNestedShapePrefersTunnel(t *testing.T) {
	env := newTestEnv(t, "")
	env.tunnel.url = "https://cdn.example/direct.mp3"

	rec, body := do(t, env, "/api/download/ytmp3?url=https://youtu.be/dQw4w9WgXcQ")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	result := body["result"].(map[string]any)
	if result["download_url"] != env.tunnel.url {
		t.Fatalf("want tunnel URL, got %v", result["download_url"])
	}
	if env.chain.calls != 0 {
		t.Fatal("tunnel hit must skip the local download")
	}
}

func TestTunnelUnavailableFallsBackToLocal(t *testing.T) {
	env := newTestEnv(t, "")
	env.tunnel.url = ""

	rec, body := do(t, env, "/api/download/ytmp3?url=https://youtu.be/dQw4w9WgXcQ")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if env.tunnel.calls != 1 || env.chain.calls != 1 {
		t.Fatalf("want tunnel tried then local download, got tunnel=%d chain=%d", env.tunnel.calls, env.chain.calls)
	}
	result := body["result"].(map[string]any)
	if !strings.Contains(result["download_url"].(string), "/download/audio_") {
		t.Fatalf("want local URL, got %v", result["download_url"])
	}
}

func TestDownloadErrorsMapToJSON(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantSubstr string
	}{
		{"auth", media.ErrAuthRequired, 500, "sign-in"},
		{"resolution", media.ErrResolutionFailed, 500, "resolve"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "")
			env.resolver.err = tt.err
			rec, body := do(t, env, "/api/downloader/ytmp3?url=https://youtu.be/dQw4w9WgXcQ")
			if rec.Code != tt.wantStatus {
				t.Fatalf("want %d, got %d", tt.wantStatus, rec.Code)
			}
			if msg, _ := body["error"].(string); !strings.Contains(strings.ToLower(msg), tt.wantSubstr) {
				t.Fatalf("error %q missing %q", msg, tt.wantSubstr)
			}
		})
	}
}

func TestFailedDownloadCleansUpPartialArtifact(t *testing.T) {
	files, err := store.New(t.TempDir(), 50*time.Millisecond, 0, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	chain := &fakeChain{err: media.ErrDownloadFailed, writePartial: true}
	srv := NewServer(Params{
		Resolver: &fakeResolver{md: &media.VideoMetadata{Title: "Test Video"}},
		Chain:    chain,
		Files:    files,
		Search:   &fakeSearch{},
		Logger:   zap.NewNop(),
		Creator:  "Tester",
		BaseURL:  "http://api.test",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/downloader/ytmp3?url=https://youtu.be/dQw4w9WgXcQ", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", rec.Code)
	}

	// The cleanup timer owns the file from staging onward; the partial
	// artifact must disappear once the TTL elapses even though the
	// download failed and no sweep is running.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		entries, err := os.ReadDir(files.Dir())
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("partial artifact still present after TTL")
}

func TestSearchRequiresQuery(t *testing.T) {
	for _, target := range []string{"/api/search", "/api/search?q=", "/api/search?q=%20"} {
		env := newTestEnv(t, "")
		rec, body := do(t, env, target)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: want 400, got %d", target, rec.Code)
		}
		if body["error"] != `Query parameter "q" is required` {
			t.Fatalf("%s: unexpected error %v", target, body["error"])
		}
		if env.search.calls != 0 {
			t.Fatal("search tool must not run without a query")
		}
	}
}

func TestSearchResponseShape(t *testing.T) {
	env := newTestEnv(t, "")
	env.search.results = []media.SearchResult{
		{VideoID: "abc", Title: "One", URL: "https://youtu.be/abc", Thumbnail: "https://img/1.jpg", DurationSeconds: 3725, Views: 42, AuthorName: "Chan", AuthorURL: "https://yt/chan"},
		{VideoID: "def", Title: "Live", URL: "https://youtu.be/def", DurationSeconds: -1},
	}

	rec, body := do(t, env, "/api/search?q=test")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if body["count"].(float64) != 2 || body["query"] != "test" {
		t.Fatalf("unexpected body %v", body)
	}

	results := body["results"].([]any)
	first := results[0].(map[string]any)
	dur := first["duration"].(map[string]any)
	if dur["seconds"].(float64) != 3725 || dur["timestamp"] != "1:02:05" {
		t.Fatalf("unexpected duration %v", dur)
	}
	author := first["author"].(map[string]any)
	if author["name"] != "Chan" {
		t.Fatalf("unexpected author %v", author)
	}

	second := results[1].(map[string]any)
	if second["duration"] != nil || second["author"] != nil {
		t.Fatalf("unknown duration/author must render null, got %v", second)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, "")
	rec, body := do(t, env, "/health")
	if rec.Code != http.StatusOK || body["status"] != true || body["creator"] != "Tester" {
		t.Fatalf("unexpected health response %d %v", rec.Code, body)
	}
}

func TestIndexListsEndpoints(t *testing.T) {
	env := newTestEnv(t, "")
	env.server.serverless = true

	rec, body := do(t, env, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if _, ok := body["endpoints"].([]any); !ok {
		t.Fatalf("want endpoint directory, got %v", body)
	}
}

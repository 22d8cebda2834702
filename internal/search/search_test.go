package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/vaibhavk10/YT-API/internal/media"
)

type fakeSearcher struct {
	results []media.SearchResult
	err     error
}

func (f *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]media.SearchResult, error) {
	return f.results, f.err
}

func TestByIDRequiresExactMatch(t *testing.T) {
	c := NewClient(&fakeSearcher{results: []media.SearchResult{
		{VideoID: "lookalike123", Title: "wrong"},
		{VideoID: "dQw4w9WgXcQ", Title: "right", DurationSeconds: 212},
	}}, zap.NewNop())

	md, ok := c.ByID(context.Background(), "dQw4w9WgXcQ")
	if !ok || md.Title != "right" || md.DurationSeconds != 212 {
		t.Fatalf("got %+v, %v", md, ok)
	}

	if _, ok := c.ByID(context.Background(), "missing_____"); ok {
		t.Fatal("no exact match must mean zero results")
	}
}

func TestByQueryTakesFirstResult(t *testing.T) {
	c := NewClient(&fakeSearcher{results: []media.SearchResult{
		{VideoID: "a", Title: "first"},
		{VideoID: "b", Title: "second"},
	}}, zap.NewNop())

	md, ok := c.ByQuery(context.Background(), "anything")
	if !ok || md.Title != "first" {
		t.Fatalf("got %+v, %v", md, ok)
	}
}

func TestLookupErrorsCountAsZeroResults(t *testing.T) {
	c := NewClient(&fakeSearcher{err: errors.New("network down")}, zap.NewNop())

	if _, ok := c.ByID(context.Background(), "dQw4w9WgXcQ"); ok {
		t.Fatal("errors must not surface as hits")
	}
	if _, ok := c.ByQuery(context.Background(), "q"); ok {
		t.Fatal("errors must not surface as hits")
	}
}

func TestUnknownDurationNormalizedToZero(t *testing.T) {
	c := NewClient(&fakeSearcher{results: []media.SearchResult{
		{VideoID: "a", Title: "live", DurationSeconds: -1},
	}}, zap.NewNop())

	md, ok := c.ByQuery(context.Background(), "live stream")
	if !ok || md.DurationSeconds != 0 {
		t.Fatalf("got %+v, %v", md, ok)
	}
}

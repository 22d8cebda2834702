package resolver

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/vaibhavk10/YT-API/internal/media"
)

type fakeLookup struct {
	byID      map[string]*media.VideoMetadata
	byQuery   map[string]*media.VideoMetadata
	idCalls   int
	queryCall int
}

func (f *fakeLookup) ByID(ctx context.Context, id string) (*media.VideoMetadata, bool) {
	f.idCalls++
	md, ok := f.byID[id]
	return md, ok
}

func (f *fakeLookup) ByQuery(ctx context.Context, query string) (*media.VideoMetadata, bool) {
	f.queryCall++
	md, ok := f.byQuery[query]
	return md, ok
}

type fakeProber struct {
	md    *media.VideoMetadata
	err   error
	calls int
}

func (f *fakeProber) Probe(ctx context.Context, locator string) (*media.VideoMetadata, error) {
	f.calls++
	return f.md, f.err
}

const testLocator = "https://youtu.be/dQw4w9WgXcQ"

func TestResolveInvalidLocator(t *testing.T) {
	lookup := &fakeLookup{}
	probe := &fakeProber{}
	r := New(lookup, probe, zap.NewNop())

	_, err := r.Resolve(context.Background(), "https://youtube.com/watch")
	if !errors.Is(err, media.ErrInvalidLocator) {
		t.Fatalf("want ErrInvalidLocator, got %v", err)
	}
	if lookup.idCalls != 0 || probe.calls != 0 {
		t.Fatal("no lookup may run for an invalid locator")
	}
}

func TestResolveByIDHit(t *testing.T) {
	want := &media.VideoMetadata{Title: "hit"}
	lookup := &fakeLookup{byID: map[string]*media.VideoMetadata{"dQw4w9WgXcQ": want}}
	probe := &fakeProber{}
	r := New(lookup, probe, zap.NewNop())

	md, err := r.Resolve(context.Background(), testLocator)
	if err != nil || md.Title != "hit" {
		t.Fatalf("got %v, %v", md, err)
	}
	if probe.calls != 0 {
		t.Fatal("probe must not run when the fast lookup hits")
	}
}

func TestResolveFallsBackToQueryLookup(t *testing.T) {
	want := &media.VideoMetadata{Title: "by query"}
	lookup := &fakeLookup{byQuery: map[string]*media.VideoMetadata{testLocator: want}}
	probe := &fakeProber{}
	r := New(lookup, probe, zap.NewNop())

	md, err := r.Resolve(context.Background(), testLocator)
	if err != nil || md.Title != "by query" {
		t.Fatalf("got %v, %v", md, err)
	}
	if lookup.idCalls != 1 || lookup.queryCall != 1 {
		t.Fatalf("expected both sub-attempts, got id=%d query=%d", lookup.idCalls, lookup.queryCall)
	}
}

func TestResolveProbeFallback(t *testing.T) {
	lookup := &fakeLookup{}
	probe := &fakeProber{md: &media.VideoMetadata{Title: "probed"}}
	r := New(lookup, probe, zap.NewNop())

	md, err := r.Resolve(context.Background(), testLocator)
	if err != nil || md.Title != "probed" {
		t.Fatalf("got %v, %v", md, err)
	}
}

func TestResolveFormatErrorRetriesLookup(t *testing.T) {
	lookup := &fakeLookup{}
	probe := &fakeProber{err: errors.New("ERROR: Requested format is not available")}
	r := New(lookup, probe, zap.NewNop())

	_, err := r.Resolve(context.Background(), testLocator)
	if !errors.Is(err, media.ErrResolutionFailed) {
		t.Fatalf("want ErrResolutionFailed, got %v", err)
	}
	// Both sub-variants once before the probe and once after.
	if lookup.idCalls != 2 || lookup.queryCall != 2 {
		t.Fatalf("expected lookup retried after format error, got id=%d query=%d", lookup.idCalls, lookup.queryCall)
	}
}

func TestResolveAuthError(t *testing.T) {
	lookup := &fakeLookup{}
	probe := &fakeProber{err: errors.New("ERROR: Sign in to confirm you're not a bot")}
	r := New(lookup, probe, zap.NewNop())

	_, err := r.Resolve(context.Background(), testLocator)
	if !errors.Is(err, media.ErrAuthRequired) {
		t.Fatalf("want ErrAuthRequired, got %v", err)
	}
}

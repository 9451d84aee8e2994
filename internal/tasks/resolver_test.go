package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/lrcx/internal/matcher"
	"github.com/desertthunder/lrcx/internal/models"
	"github.com/desertthunder/lrcx/internal/shared"
	tu "github.com/desertthunder/lrcx/internal/testing"
)

func flowerCandidates() []models.Candidate {
	return []models.Candidate{
		{ID: 1, Title: "那些花儿 (Live)", Artist: "朴树"},
		{ID: 2, Title: "那些花儿", Artist: "范玮琪"},
		{ID: 186016, Title: "那些花儿", Artist: "朴树"},
		{ID: 4, Title: "那些花儿", Artist: "朴树 & 合唱团"},
	}
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("track id uses detail and never searches", func(t *testing.T) {
		mock := tu.NewMockCatalog()
		mock.Details[208902] = models.Candidate{ID: 208902, Title: "平凡之路", Artist: "朴树"}
		resolver := NewResolver(mock, nil, 10, nil)

		track, err := resolver.Resolve(ctx, models.Reference{Kind: models.TrackID, ID: 208902})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if track.ID != 208902 || track.Title != "平凡之路" || track.Artist != "朴树" || track.Source != models.SourceID {
			t.Errorf("unexpected track %+v", track)
		}
		if n := mock.CountCalls("search"); n != 0 {
			t.Errorf("expected no search calls, got %d", n)
		}
		if n := mock.CountCalls("detail"); n != 1 {
			t.Errorf("expected one detail call, got %d", n)
		}
	})

	t.Run("track id falls back to placeholders", func(t *testing.T) {
		mock := tu.NewMockCatalog()
		mock.DetailErr = errors.New("timeout")
		resolver := NewResolver(mock, nil, 10, nil)

		track, err := resolver.Resolve(ctx, models.Reference{Kind: models.TrackID, ID: 42})
		if err != nil {
			t.Fatalf("track id resolution must not fail, got %v", err)
		}
		if track != models.PlaceholderTrack(42) {
			t.Errorf("expected placeholder, got %+v", track)
		}
		if n := mock.CountCalls("search"); n != 0 {
			t.Errorf("expected no search calls, got %d", n)
		}
	})

	t.Run("track id with partial metadata", func(t *testing.T) {
		mock := tu.NewMockCatalog()
		mock.Details[7] = models.Candidate{ID: 7, Title: "Untitled"}
		track, _ := NewResolver(mock, nil, 10, nil).Resolve(ctx, models.Reference{Kind: models.TrackID, ID: 7})
		if track.Title != "Untitled" || track.Artist != "unknown" {
			t.Errorf("unexpected track %+v", track)
		}
	})

	t.Run("free text selects exact title and artist", func(t *testing.T) {
		mock := tu.NewMockCatalog()
		mock.Results["那些花儿 朴树"] = flowerCandidates()
		resolver := NewResolver(mock, matcher.NewScorer(matcher.DefaultWeights(), true), 10, nil)

		track, err := resolver.Resolve(ctx, models.Reference{Kind: models.FreeText, Title: "那些花儿", Artist: "朴树"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if track.ID != 186016 || track.Source != models.SourceSearch {
			t.Errorf("expected 186016 via search, got %+v", track)
		}
		if track.Score != 120 {
			t.Errorf("expected score 120, got %v", track.Score)
		}

		calls := mock.Calls()
		if len(calls) != 1 || calls[0].Method != "search" || calls[0].Limit != 10 {
			t.Errorf("expected exactly one search with limit 10, got %+v", calls)
		}
	})

	t.Run("free text below threshold is unresolved", func(t *testing.T) {
		mock := tu.NewMockCatalog()
		mock.Results["未知歌曲名12345xyz"] = []models.Candidate{
			{ID: 9, Title: "未知", Artist: "某人"},
		}
		resolver := NewResolver(mock, nil, 10, nil)

		_, err := resolver.Resolve(ctx, models.Reference{Kind: models.FreeText, Title: "未知歌曲名12345xyz"})
		if !errors.Is(err, shared.ErrResolutionFailed) {
			t.Errorf("expected ErrResolutionFailed, got %v", err)
		}
	})

	t.Run("free text with no results is unresolved", func(t *testing.T) {
		resolver := NewResolver(tu.NewMockCatalog(), nil, 10, nil)
		_, err := resolver.Resolve(ctx, models.Reference{Kind: models.FreeText, Title: "未知歌曲名12345xyz"})
		if !errors.Is(err, shared.ErrResolutionFailed) {
			t.Errorf("expected ErrResolutionFailed, got %v", err)
		}
	})

	t.Run("search failure is unresolved", func(t *testing.T) {
		mock := tu.NewMockCatalog()
		mock.SearchErr = errors.New("connection reset")
		_, err := NewResolver(mock, nil, 10, nil).Resolve(ctx, models.Reference{Kind: models.FreeText, Title: "x"})
		if !errors.Is(err, shared.ErrResolutionFailed) || !errors.Is(err, shared.ErrSearchFailed) {
			t.Errorf("expected resolution and search failure, got %v", err)
		}
	})

	t.Run("threshold is honoured", func(t *testing.T) {
		mock := tu.NewMockCatalog()
		mock.Results["abcd"] = []models.Candidate{{ID: 5, Title: "abxd"}}

		w := matcher.DefaultWeights()
		w.Threshold = 80
		if _, err := NewResolver(mock, matcher.NewScorer(w, true), 10, nil).Resolve(ctx, models.Reference{Kind: models.FreeText, Title: "abcd"}); err == nil {
			t.Error("expected a 75 score to be rejected at threshold 80")
		}

		w.Threshold = 70
		track, err := NewResolver(mock, matcher.NewScorer(w, true), 10, nil).Resolve(ctx, models.Reference{Kind: models.FreeText, Title: "abcd"})
		if err != nil || track.ID != 5 {
			t.Errorf("expected acceptance at threshold 70, got %+v, %v", track, err)
		}
	})
}

func TestResolver_Rank(t *testing.T) {
	mock := tu.NewMockCatalog()
	mock.Results["那些花儿 朴树"] = flowerCandidates()

	matches, err := NewResolver(mock, nil, 2, nil).Rank(context.Background(), models.Reference{Kind: models.FreeText, Title: "那些花儿", Artist: "朴树"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected search limit to cap candidates at 2, got %d", len(matches))
	}
	for i, m := range matches {
		if m.Position != i {
			t.Errorf("match %d has position %d", i, m.Position)
		}
	}
}

package watchlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"releaseradar/models"
	"releaseradar/services/catalog"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeMovieTV struct {
	detail func(category models.Category, id int64) (*catalog.TitleDetail, error)
}

func (f *fakeMovieTV) Detail(_ context.Context, category models.Category, id int64) (*catalog.TitleDetail, error) {
	return f.detail(category, id)
}

type fakeAnime struct {
	detail func(id int64) (*catalog.TitleDetail, error)
}

func (f *fakeAnime) Detail(_ context.Context, id int64) (*catalog.TitleDetail, error) {
	return f.detail(id)
}

func titleDetail(id int64, category models.Category, date time.Time) *catalog.TitleDetail {
	return &catalog.TitleDetail{Item: models.CatalogItem{
		ID:          id,
		Category:    category,
		Title:       "title",
		PrimaryDate: date,
	}}
}

func newTestService(movies *fakeMovieTV, anime *fakeAnime) *Service {
	svc := NewService(movies, anime)
	svc.now = func() time.Time { return testNow }
	return svc
}

func bookmark(id int64, category models.Category) models.BookmarkEntry {
	return models.BookmarkEntry{ID: id, Category: category, CreatedAt: testNow.Add(-time.Hour)}
}

func TestMaterializeClassifiesByReleaseDate(t *testing.T) {
	movies := &fakeMovieTV{detail: func(category models.Category, id int64) (*catalog.TitleDetail, error) {
		switch id {
		case 1:
			return titleDetail(id, category, testNow.AddDate(0, 0, 30)), nil
		case 2:
			return titleDetail(id, category, testNow.AddDate(0, -1, 0)), nil
		default:
			return titleDetail(id, category, time.Time{}), nil
		}
	}}
	anime := &fakeAnime{detail: func(id int64) (*catalog.TitleDetail, error) {
		return titleDetail(id, models.CategoryAnime, testNow.AddDate(0, 1, 0)), nil
	}}

	svc := newTestService(movies, anime)
	buckets := svc.Materialize(context.Background(), []models.BookmarkEntry{
		bookmark(1, models.CategoryMovies),
		bookmark(2, models.CategoryMovies),
		bookmark(3, models.CategorySeries),
		bookmark(4, models.CategoryAnime),
	})

	if len(buckets.Upcoming) != 2 {
		t.Fatalf("expected 2 upcoming cards, got %d", len(buckets.Upcoming))
	}
	if len(buckets.Available) != 1 || buckets.Available[0].ID != 2 {
		t.Fatalf("expected movie 2 in available, got %+v", buckets.Available)
	}
	if len(buckets.Unknown) != 1 || buckets.Unknown[0].ID != 3 {
		t.Fatalf("expected series 3 in unknown, got %+v", buckets.Unknown)
	}
	if buckets.Total() != 4 {
		t.Fatalf("buckets should cover every entry, got %d", buckets.Total())
	}
}

func TestMaterializeFailedFetchYieldsPlaceholder(t *testing.T) {
	movies := &fakeMovieTV{detail: func(category models.Category, id int64) (*catalog.TitleDetail, error) {
		if id == 2 {
			return nil, errors.New("upstream error")
		}
		return titleDetail(id, category, testNow.AddDate(0, 0, 5)), nil
	}}
	anime := &fakeAnime{detail: func(id int64) (*catalog.TitleDetail, error) {
		return titleDetail(id, models.CategoryAnime, testNow.AddDate(0, 0, 5)), nil
	}}

	svc := newTestService(movies, anime)
	buckets := svc.Materialize(context.Background(), []models.BookmarkEntry{
		bookmark(1, models.CategoryMovies),
		bookmark(2, models.CategoryMovies),
		bookmark(3, models.CategoryAnime),
	})

	if len(buckets.Unknown) != 1 {
		t.Fatalf("expected 1 placeholder card, got %d", len(buckets.Unknown))
	}
	placeholder := buckets.Unknown[0]
	if !placeholder.LoadFailed || placeholder.ID != 2 {
		t.Fatalf("expected load-failed placeholder for movie 2, got %+v", placeholder)
	}
	if len(buckets.Upcoming) != 2 {
		t.Fatalf("other entries should still resolve, got %d upcoming", len(buckets.Upcoming))
	}
}

func TestMaterializeNextEpisodeDateWins(t *testing.T) {
	movies := &fakeMovieTV{detail: func(category models.Category, id int64) (*catalog.TitleDetail, error) {
		detail := titleDetail(id, category, testNow.AddDate(-1, 0, 0))
		detail.Item.NextEpisodeDate = testNow.AddDate(0, 0, 3)
		return detail, nil
	}}
	anime := &fakeAnime{detail: func(id int64) (*catalog.TitleDetail, error) {
		return nil, errors.New("unused")
	}}

	svc := newTestService(movies, anime)
	buckets := svc.Materialize(context.Background(), []models.BookmarkEntry{
		bookmark(9, models.CategorySeries),
	})

	if len(buckets.Upcoming) != 1 {
		t.Fatalf("ongoing show with a future episode should be upcoming, got %+v", buckets)
	}
}

func TestMaterializeEmptyInput(t *testing.T) {
	svc := newTestService(
		&fakeMovieTV{detail: func(models.Category, int64) (*catalog.TitleDetail, error) {
			return nil, errors.New("unused")
		}},
		&fakeAnime{detail: func(int64) (*catalog.TitleDetail, error) {
			return nil, errors.New("unused")
		}},
	)

	buckets := svc.Materialize(context.Background(), nil)
	if buckets.Total() != 0 {
		t.Fatalf("expected empty buckets, got %d cards", buckets.Total())
	}
	if buckets.Upcoming == nil || buckets.Available == nil || buckets.Unknown == nil {
		t.Fatal("buckets should serialize as empty arrays, not null")
	}
}

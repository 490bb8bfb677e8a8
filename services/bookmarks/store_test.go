package bookmarks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"releaseradar/models"
)

func entry(id int64, category models.Category) models.BookmarkEntry {
	return models.BookmarkEntry{
		ID:        id,
		Category:  category,
		CreatedAt: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestStoreAddIsIdempotent(t *testing.T) {
	store := NewStore()

	assert.True(t, store.Add(entry(100, models.CategoryMovies)))
	assert.False(t, store.Add(entry(100, models.CategoryMovies)))
	assert.Equal(t, 1, store.Len())
}

func TestStoreSameIDDifferentCategoryAreDistinct(t *testing.T) {
	store := NewStore()

	store.Add(entry(100, models.CategoryMovies))
	store.Add(entry(100, models.CategoryAnime))

	assert.Equal(t, 2, store.Len())
	assert.True(t, store.Has(models.ItemKey{ID: 100, Category: models.CategoryMovies}))
	assert.True(t, store.Has(models.ItemKey{ID: 100, Category: models.CategoryAnime}))
}

func TestStoreRemoveAbsentIsNoOp(t *testing.T) {
	store := NewStore()
	store.Add(entry(1, models.CategorySeries))

	assert.False(t, store.Remove(entry(2, models.CategorySeries)))
	assert.Equal(t, 1, store.Len())
}

func TestStoreSnapshotPreservesInsertionOrder(t *testing.T) {
	store := NewStore()
	store.Add(entry(3, models.CategoryMovies))
	store.Add(entry(1, models.CategoryAnime))
	store.Add(entry(2, models.CategorySeries))
	store.Remove(entry(1, models.CategoryAnime))

	snapshot := store.Snapshot()
	assert.Len(t, snapshot, 2)
	assert.Equal(t, int64(3), snapshot[0].ID)
	assert.Equal(t, int64(2), snapshot[1].ID)
}

func TestStoreListenerFiresOnMutationsOnly(t *testing.T) {
	store := NewStore()

	var ops []ChangeOp
	store.SetListener(func(op ChangeOp, _ models.BookmarkEntry) {
		ops = append(ops, op)
	})

	store.Add(entry(1, models.CategoryMovies))
	store.Add(entry(1, models.CategoryMovies)) // duplicate, no event
	store.Remove(entry(1, models.CategoryMovies))
	store.Remove(entry(1, models.CategoryMovies)) // absent, no event
	store.ReplaceAll([]models.BookmarkEntry{entry(5, models.CategoryAnime)})

	assert.Equal(t, []ChangeOp{OpAdded, OpRemoved}, ops)
	assert.Equal(t, 1, store.Len())
}

func TestStoreReplaceAllDropsDuplicateKeys(t *testing.T) {
	store := NewStore()
	store.ReplaceAll([]models.BookmarkEntry{
		entry(1, models.CategoryMovies),
		entry(1, models.CategoryMovies),
		entry(2, models.CategoryMovies),
	})

	assert.Equal(t, 2, store.Len())
}

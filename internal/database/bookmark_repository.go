package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"releaseradar/models"
)

var (
	ErrUserIDRequired = errors.New("user id is required")
	ErrInvalidEntry   = errors.New("bookmark id and category are required")
)

// BookmarkRepository is the remote per-user bookmark store: one record per
// bookmark keyed by (userID, item id, category) with a server-assigned
// creation timestamp.
type BookmarkRepository struct {
	db *sql.DB
}

func NewBookmarkRepository(db *sql.DB) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

func validate(userID string, key models.ItemKey) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUserIDRequired
	}
	if key.ID == 0 || !key.Category.Valid() {
		return ErrInvalidEntry
	}
	return nil
}

// ListByUser returns the user's bookmarks oldest-first. The remote creation
// timestamp is authoritative for ordering.
func (r *BookmarkRepository) ListByUser(userID string) ([]models.BookmarkRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserIDRequired
	}

	rows, err := r.db.Query(
		`SELECT record_id, user_id, item_id, category, created_at
		 FROM bookmarks WHERE user_id = ? ORDER BY created_at, record_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	records := make([]models.BookmarkRecord, 0)
	for rows.Next() {
		var rec models.BookmarkRecord
		var category string
		if err := rows.Scan(&rec.RecordID, &rec.UserID, &rec.ItemID, &category, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		rec.Category = models.Category(category)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Exists reports whether the user already has a record for the key. The
// migration path checks this before every write so re-running it never
// creates duplicates.
func (r *BookmarkRepository) Exists(userID string, key models.ItemKey) (bool, error) {
	if err := validate(userID, key); err != nil {
		return false, err
	}

	var one int
	err := r.db.QueryRow(
		`SELECT 1 FROM bookmarks WHERE user_id = ? AND item_id = ? AND category = ?`,
		userID, key.ID, string(key.Category),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check bookmark: %w", err)
	}
	return true, nil
}

// Create inserts a record with a fresh record id and a server-assigned
// creation timestamp. Inserting an already-present key is a no-op, keeping
// the unique constraint authoritative under concurrent writers.
func (r *BookmarkRepository) Create(userID string, entry models.BookmarkEntry) (models.BookmarkRecord, error) {
	if err := validate(userID, entry.Key()); err != nil {
		return models.BookmarkRecord{}, err
	}

	rec := models.BookmarkRecord{
		RecordID:  uuid.NewString(),
		UserID:    userID,
		ItemID:    entry.ID,
		Category:  entry.Category,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.db.Exec(
		`INSERT INTO bookmarks (record_id, user_id, item_id, category, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, item_id, category) DO NOTHING`,
		rec.RecordID, rec.UserID, rec.ItemID, string(rec.Category), rec.CreatedAt,
	)
	if err != nil {
		return models.BookmarkRecord{}, fmt.Errorf("create bookmark: %w", err)
	}
	return rec, nil
}

// DeleteByKey removes every record matching the key (delete-by-query
// semantics). Deleting an absent key is a no-op.
func (r *BookmarkRepository) DeleteByKey(userID string, key models.ItemKey) error {
	if err := validate(userID, key); err != nil {
		return err
	}

	_, err := r.db.Exec(
		`DELETE FROM bookmarks WHERE user_id = ? AND item_id = ? AND category = ?`,
		userID, key.ID, string(key.Category),
	)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

// CountByUser returns the number of distinct records held for the user.
func (r *BookmarkRepository) CountByUser(userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, ErrUserIDRequired
	}

	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM bookmarks WHERE user_id = ?`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count bookmarks: %w", err)
	}
	return count, nil
}

// ClearUser removes all of the user's records.
func (r *BookmarkRepository) ClearUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUserIDRequired
	}

	if _, err := r.db.Exec(`DELETE FROM bookmarks WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear bookmarks: %w", err)
	}
	return nil
}

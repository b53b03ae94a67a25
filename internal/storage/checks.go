package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/exocheck/exocheck/internal/locker"
)

// Check is one recorded locker check.
type Check struct {
	ID             string    `json:"-"`
	UserID         string    `json:"user_id"`
	AccountID      string    `json:"account_id"`
	DisplayName    string    `json:"display_name"`
	ItemCount      int       `json:"-"`
	ExclusiveCount int       `json:"-"`
	LastMatch      string    `json:"-"`
	CheckedAt      time.Time `json:"last_checked"`
}

// CheckRepository records locker check history and writes the per-user JSON
// sidecar next to the rendered images.
type CheckRepository struct {
	db *DB
}

// NewCheckRepository creates a check repository.
func NewCheckRepository(db *DB) *CheckRepository {
	return &CheckRepository{db: db}
}

// Record stores one completed check derived from the snapshot and returns
// it with a fresh ID.
func (r *CheckRepository) Record(ctx context.Context, userID, accountID, displayName string, snapshot *locker.Snapshot) (*Check, error) {
	check := &Check{
		ID:             uuid.NewString(),
		UserID:         userID,
		AccountID:      accountID,
		DisplayName:    displayName,
		ItemCount:      snapshot.TotalItems(),
		ExclusiveCount: len(snapshot.Categories[locker.CategoryExclusive]),
		LastMatch:      snapshot.LastMatch,
		CheckedAt:      time.Now().UTC(),
	}

	query := `
		INSERT INTO checks (id, user_id, account_id, display_name, item_count, exclusive_count, last_match, checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.conn.ExecContext(ctx, query,
		check.ID, check.UserID, check.AccountID, check.DisplayName,
		check.ItemCount, check.ExclusiveCount, check.LastMatch, check.CheckedAt); err != nil {
		return nil, fmt.Errorf("failed to record check: %w", err)
	}

	return check, nil
}

// History returns a user's checks, newest first, up to limit.
func (r *CheckRepository) History(ctx context.Context, userID string, limit int) ([]Check, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, user_id, account_id, display_name, item_count, exclusive_count, last_match, checked_at
		FROM checks
		WHERE user_id = ?
		ORDER BY checked_at DESC
		LIMIT ?
	`
	rows, err := r.db.conn.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query check history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var checks []Check
	for rows.Next() {
		var check Check
		if err := rows.Scan(&check.ID, &check.UserID, &check.AccountID, &check.DisplayName,
			&check.ItemCount, &check.ExclusiveCount, &check.LastMatch, &check.CheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		checks = append(checks, check)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checks: %w", err)
	}

	return checks, nil
}

// WriteSidecar writes the small JSON artifact describing the check into the
// per-user output directory, next to the rendered images.
func (r *CheckRepository) WriteSidecar(dir string, check *Check) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(check, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal sidecar: %w", err)
	}

	path := filepath.Join(dir, check.AccountID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write sidecar: %w", err)
	}

	return nil
}

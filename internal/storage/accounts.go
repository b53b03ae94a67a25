package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/exocheck/exocheck/internal/epic"
)

// SavedAccount is one stored Epic account login belonging to a user.
type SavedAccount struct {
	UserID      string
	AccountID   string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AccountRepository stores saved accounts with their device auths encrypted
// at rest.
type AccountRepository struct {
	db         *DB
	passphrase string
}

// NewAccountRepository creates an account repository. The passphrase keys
// the device-auth encryption.
func NewAccountRepository(db *DB, passphrase string) *AccountRepository {
	return &AccountRepository{db: db, passphrase: passphrase}
}

// Save inserts or updates a saved account with its device auth.
func (r *AccountRepository) Save(ctx context.Context, userID string, auth *epic.DeviceAuth, displayName string) error {
	plaintext, err := json.Marshal(auth)
	if err != nil {
		return fmt.Errorf("failed to marshal device auth: %w", err)
	}

	encrypted, err := EncryptSecret(plaintext, r.passphrase)
	if err != nil {
		return fmt.Errorf("failed to encrypt device auth: %w", err)
	}

	query := `
		INSERT INTO saved_accounts (user_id, account_id, display_name, device_auth, created_at, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, account_id) DO UPDATE SET
			display_name = excluded.display_name,
			device_auth = excluded.device_auth,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.conn.ExecContext(ctx, query, userID, auth.AccountID, displayName, encrypted); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	return nil
}

// List returns the user's saved accounts, most recently updated first.
func (r *AccountRepository) List(ctx context.Context, userID string) ([]SavedAccount, error) {
	query := `
		SELECT user_id, account_id, display_name, created_at, updated_at
		FROM saved_accounts
		WHERE user_id = ?
		ORDER BY updated_at DESC
	`
	rows, err := r.db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []SavedAccount
	for rows.Next() {
		var account SavedAccount
		if err := rows.Scan(&account.UserID, &account.AccountID, &account.DisplayName,
			&account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

// DeviceAuth decrypts and returns the stored device auth for one account.
func (r *AccountRepository) DeviceAuth(ctx context.Context, userID, accountID string) (*epic.DeviceAuth, error) {
	query := `SELECT device_auth FROM saved_accounts WHERE user_id = ? AND account_id = ?`

	var encrypted []byte
	err := r.db.conn.QueryRowContext(ctx, query, userID, accountID).Scan(&encrypted)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no saved account %s for user %s", accountID, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	plaintext, err := DecryptSecret(encrypted, r.passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt device auth: %w", err)
	}

	var auth epic.DeviceAuth
	if err := json.Unmarshal(plaintext, &auth); err != nil {
		return nil, fmt.Errorf("failed to unmarshal device auth: %w", err)
	}

	return &auth, nil
}

// Delete removes a saved account. Returns true if a row was deleted.
func (r *AccountRepository) Delete(ctx context.Context, userID, accountID string) (bool, error) {
	result, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM saved_accounts WHERE user_id = ? AND account_id = ?`, userID, accountID)
	if err != nil {
		return false, fmt.Errorf("failed to delete account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected > 0, nil
}

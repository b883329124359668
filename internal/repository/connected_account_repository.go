package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/creatorhub/internal/models"
)

type ConnectedAccountRepository interface {
	Create(ctx context.Context, tx *sql.Tx, ca *models.ConnectedAccount) (int64, error)
	Connect(ctx context.Context, ca *models.ConnectedAccount) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ConnectedAccount, error)
	ListActiveByUserID(ctx context.Context, userID int64) ([]*models.ConnectedAccount, error)
	ListInfoByUserID(ctx context.Context, userID int64) ([]*models.ConnectedAccount, error)
	ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.ConnectedAccount, error)
	CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error)
	SetToken(ctx context.Context, userID int64, oldAccessToken string, ca *models.ConnectedAccount) error
	Deactivate(ctx context.Context, id int64) error
}

type connectedAccountRepository struct {
	db *sql.DB
}

func NewConnectedAccountRepository(db *sql.DB) ConnectedAccountRepository {
	return &connectedAccountRepository{db: db}
}

func (r *connectedAccountRepository) Create(ctx context.Context, tx *sql.Tx, ca *models.ConnectedAccount) (int64, error) {
	var err error
	var id int64

	var insertQuery = `
			INSERT INTO connected_accounts(
				user_id,
				platform,
				account_id,
				account_name,
				account_username,
				profile_picture_url,
				access_token,
				refresh_token,
				token_expires_at,
				account_metadata,
				is_active
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE)
			RETURNING id
		`

	if tx != nil {
		err = tx.QueryRowContext(ctx, insertQuery,
			ca.UserID,
			ca.Platform,
			ca.AccountID,
			ca.AccountName,
			ca.AccountUsername,
			ca.ProfilePicture,
			ca.AccessToken,
			ca.RefreshToken,
			ca.TokenExpiresAt,
			ca.AccountMetadata,
		).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, insertQuery,
			ca.UserID,
			ca.Platform,
			ca.AccountID,
			ca.AccountName,
			ca.AccountUsername,
			ca.ProfilePicture,
			ca.AccessToken,
			ca.RefreshToken,
			ca.TokenExpiresAt,
			ca.AccountMetadata,
		).Scan(&id)
	}

	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

// Connect stores a freshly linked account. Any previously active account of
// the same platform is deactivated in the same transaction, so at most one
// active row exists per (user_id, platform).
func (r *connectedAccountRepository) Connect(ctx context.Context, ca *models.ConnectedAccount) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	defer tx.Rollback()

	deactivateQuery := `
		UPDATE connected_accounts
		SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND platform = $2 AND is_active = TRUE
	`
	if _, err = tx.ExecContext(ctx, deactivateQuery, ca.UserID, ca.Platform); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	id, err := r.Create(ctx, tx, ca)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *connectedAccountRepository) GetByID(ctx context.Context, id int64) (*models.ConnectedAccount, error) {
	query := `
		SELECT id, user_id, platform, account_id, account_name, account_username,
			profile_picture_url, access_token, refresh_token, token_expires_at,
			account_metadata, is_active, created_at, updated_at
		FROM connected_accounts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var ca models.ConnectedAccount
	err := row.Scan(&ca.ID, &ca.UserID, &ca.Platform, &ca.AccountID, &ca.AccountName,
		&ca.AccountUsername, &ca.ProfilePicture, &ca.AccessToken, &ca.RefreshToken,
		&ca.TokenExpiresAt, &ca.AccountMetadata, &ca.IsActive, &ca.CreatedAt, &ca.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &ca, nil
}

func (r *connectedAccountRepository) ListActiveByUserID(ctx context.Context, userID int64) ([]*models.ConnectedAccount, error) {
	query := `
		SELECT id, user_id, platform, account_id, account_username,
			access_token, refresh_token, token_expires_at
		FROM connected_accounts
		WHERE user_id = $1 AND is_active = TRUE`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.ConnectedAccount
	for rows.Next() {
		var ca models.ConnectedAccount
		err := rows.Scan(&ca.ID, &ca.UserID, &ca.Platform, &ca.AccountID,
			&ca.AccountUsername, &ca.AccessToken, &ca.RefreshToken, &ca.TokenExpiresAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &ca)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return accounts, nil
}

func (r *connectedAccountRepository) ListInfoByUserID(ctx context.Context, userID int64) ([]*models.ConnectedAccount, error) {
	query := `
		SELECT id, account_name, account_username, profile_picture_url, platform
		FROM connected_accounts
		WHERE user_id = $1 AND is_active = TRUE`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.ConnectedAccount
	for rows.Next() {
		var ca models.ConnectedAccount
		err := rows.Scan(&ca.ID, &ca.AccountName, &ca.AccountUsername, &ca.ProfilePicture, &ca.Platform)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &ca)
	}
	return accounts, nil
}

func (r *connectedAccountRepository) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.ConnectedAccount, error) {
	query := `SELECT
			user_id,
			platform,
			access_token,
			refresh_token,
			token_expires_at
			FROM connected_accounts
			WHERE is_active = TRUE
			AND ((token_expires_at BETWEEN $1 AND $2) OR (token_expires_at < $1))`
	rows, err := r.db.QueryContext(ctx, query, initialTime, finalTime)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.ConnectedAccount
	for rows.Next() {
		var ca models.ConnectedAccount
		err := rows.Scan(&ca.UserID, &ca.Platform, &ca.AccessToken, &ca.RefreshToken, &ca.TokenExpiresAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &ca)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return accounts, nil
}

func (r *connectedAccountRepository) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	query := "SELECT 1 FROM connected_accounts WHERE id = $1 AND user_id = $2 AND is_active = TRUE"

	var result int
	err := r.db.QueryRowContext(ctx, query, accountID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *connectedAccountRepository) SetToken(ctx context.Context, userID int64, oldAccessToken string, ca *models.ConnectedAccount) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer tx.Rollback()

	updateTokenQuery := `
		UPDATE connected_accounts
		SET
			access_token = COALESCE(NULLIF($3, ''), access_token),
			refresh_token = COALESCE(NULLIF($4, ''), refresh_token),
			token_expires_at = COALESCE($5, token_expires_at),
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND access_token = $2;
	`
	result, err := tx.ExecContext(ctx, updateTokenQuery, userID, oldAccessToken, ca.AccessToken, ca.RefreshToken, ca.TokenExpiresAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		slog.Info("no rows affected; user_id may not exist")
		return errors.New("no rows affected; user_id may not exist")
	}

	if err = tx.Commit(); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// Deactivate soft-deletes the account. Rows are kept for audit; nothing
// hard-deletes from connected_accounts.
func (r *connectedAccountRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE connected_accounts SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"sealshare/internal/models"
)

// shareColumns is the standard column list for share queries.
const shareColumns = `id, urn_id, share_token, custom_slug, title,
	encrypted_content, file_path, content_type, original_name, password_hash,
	crypto_params, created_at, expires_at, access_count, max_access_count, deleted_at`

// scanShare scans a row into a Share struct.
func scanShare(row pgx.Row) (*models.Share, error) {
	var share models.Share
	err := row.Scan(
		&share.ID,
		&share.UrnID,
		&share.ShareToken,
		&share.CustomSlug,
		&share.Title,
		&share.EncryptedContent,
		&share.FilePath,
		&share.ContentType,
		&share.OriginalName,
		&share.PasswordHash,
		&share.CryptoParams,
		&share.CreatedAt,
		&share.ExpiresAt,
		&share.AccessCount,
		&share.MaxAccessCount,
		&share.DeletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrShareNotFound
	}
	if err != nil {
		return nil, err
	}
	return &share, nil
}

// CreateShare inserts a new share record. The custom slug collides only with
// live records; the share token is globally unique.
func (d *DB) CreateShare(ctx context.Context, share *models.Share) error {
	query := `
		INSERT INTO shares (urn_id, share_token, custom_slug, title,
			encrypted_content, file_path, content_type, original_name,
			password_hash, crypto_params, expires_at, max_access_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, access_count, created_at
	`

	err := d.Pool.QueryRow(ctx, query,
		share.UrnID,
		share.ShareToken,
		share.CustomSlug,
		share.Title,
		share.EncryptedContent,
		share.FilePath,
		share.ContentType,
		share.OriginalName,
		share.PasswordHash,
		share.CryptoParams,
		share.ExpiresAt,
		share.MaxAccessCount,
	).Scan(&share.ID, &share.AccessCount, &share.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "shares_share_token_key":
				return ErrDuplicateToken
			default:
				return ErrDuplicateSlug
			}
		}
		return err
	}

	return nil
}

// GetShareByIdentifier resolves a share by token or custom slug in a single
// lookup. Soft-deleted records are invisible here; expiry and quota are
// separate checks evaluated by the caller against the returned state.
func (d *DB) GetShareByIdentifier(ctx context.Context, identifier string) (*models.Share, error) {
	query := `
		SELECT ` + shareColumns + `
		FROM shares
		WHERE (share_token = $1 OR custom_slug = $1) AND deleted_at IS NULL
		LIMIT 1
	`
	return scanShare(d.Pool.QueryRow(ctx, query, identifier))
}

// IncrementAccessCount bumps the access counter with a single conditional
// UPDATE so two racing retrievals never overshoot the quota at the storage
// layer. Returns the new count, ErrQuotaExhausted when the quota guard
// rejects the increment, or ErrShareNotFound when the row was purged or
// tombstoned since the caller resolved it.
func (d *DB) IncrementAccessCount(ctx context.Context, id uuid.UUID) (int64, error) {
	query := `
		UPDATE shares
		SET access_count = access_count + 1
		WHERE id = $1
			AND deleted_at IS NULL
			AND (max_access_count IS NULL OR access_count < max_access_count)
		RETURNING access_count
	`
	var count int64
	err := d.Pool.QueryRow(ctx, query, id).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		// Zero rows means either the quota guard failed or the row vanished
		// under a concurrent delete. The caller treats these differently.
		var live bool
		checkQuery := `SELECT EXISTS (SELECT 1 FROM shares WHERE id = $1 AND deleted_at IS NULL)`
		if checkErr := d.Pool.QueryRow(ctx, checkQuery, id).Scan(&live); checkErr != nil {
			return 0, checkErr
		}
		if !live {
			return 0, ErrShareNotFound
		}
		return 0, ErrQuotaExhausted
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SoftDeleteShare tombstones a share. Idempotent: repeated calls keep the
// original deleted_at.
func (d *DB) SoftDeleteShare(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE shares SET deleted_at = COALESCE(deleted_at, NOW()) WHERE id = $1`
	result, err := d.Pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrShareNotFound
	}
	return nil
}

// SoftDeleteShareByOwner tombstones a share identified by token, but only for
// the URN that created it.
func (d *DB) SoftDeleteShareByOwner(ctx context.Context, shareToken string, urnID uuid.UUID) error {
	query := `
		UPDATE shares
		SET deleted_at = COALESCE(deleted_at, NOW())
		WHERE share_token = $1 AND urn_id = $2
	`
	result, err := d.Pool.Exec(ctx, query, shareToken, urnID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrShareNotFound
	}
	return nil
}

// GetSharesByUrn lists all shares created by a URN, newest first, tombstones
// included.
func (d *DB) GetSharesByUrn(ctx context.Context, urnID uuid.UUID) ([]models.Share, error) {
	query := `
		SELECT ` + shareColumns + `
		FROM shares
		WHERE urn_id = $1
		ORDER BY created_at DESC
	`
	rows, err := d.Pool.Query(ctx, query, urnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []models.Share
	for rows.Next() {
		var share models.Share
		if err := rows.Scan(
			&share.ID,
			&share.UrnID,
			&share.ShareToken,
			&share.CustomSlug,
			&share.Title,
			&share.EncryptedContent,
			&share.FilePath,
			&share.ContentType,
			&share.OriginalName,
			&share.PasswordHash,
			&share.CryptoParams,
			&share.CreatedAt,
			&share.ExpiresAt,
			&share.AccessCount,
			&share.MaxAccessCount,
			&share.DeletedAt,
		); err != nil {
			return nil, err
		}
		shares = append(shares, share)
	}

	return shares, rows.Err()
}

// GetReapableShares returns shares that expired or were tombstoned before the
// cutoff. Used by the housekeeping reaper; retrieval-time enforcement never
// depends on it.
func (d *DB) GetReapableShares(ctx context.Context, cutoff time.Time, limit int) ([]models.Share, error) {
	query := `
		SELECT ` + shareColumns + `
		FROM shares
		WHERE expires_at < $1 OR deleted_at < $1
		ORDER BY expires_at ASC
		LIMIT $2
	`
	rows, err := d.Pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []models.Share
	for rows.Next() {
		var share models.Share
		if err := rows.Scan(
			&share.ID,
			&share.UrnID,
			&share.ShareToken,
			&share.CustomSlug,
			&share.Title,
			&share.EncryptedContent,
			&share.FilePath,
			&share.ContentType,
			&share.OriginalName,
			&share.PasswordHash,
			&share.CryptoParams,
			&share.CreatedAt,
			&share.ExpiresAt,
			&share.AccessCount,
			&share.MaxAccessCount,
			&share.DeletedAt,
		); err != nil {
			return nil, err
		}
		shares = append(shares, share)
	}

	return shares, rows.Err()
}

// PurgeShare physically removes a reaped record after its blob is gone.
func (d *DB) PurgeShare(ctx context.Context, id uuid.UUID) error {
	_, err := d.Pool.Exec(ctx, `DELETE FROM shares WHERE id = $1`, id)
	return err
}

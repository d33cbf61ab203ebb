package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"sealshare/internal/models"
)

// CreateUrn registers a new pseudo-identity.
func (d *DB) CreateUrn(ctx context.Context, urn *models.Urn) error {
	query := `
		INSERT INTO urns (urn, email, is_anonymous)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, last_seen_at
	`
	return d.Pool.QueryRow(ctx, query, urn.Urn, urn.Email, urn.IsAnonymous).
		Scan(&urn.ID, &urn.CreatedAt, &urn.LastSeenAt)
}

// GetUrnByValue looks up a pseudo-identity by its opaque value.
func (d *DB) GetUrnByValue(ctx context.Context, value string) (*models.Urn, error) {
	query := `
		SELECT id, urn, email, is_anonymous, created_at, last_seen_at
		FROM urns
		WHERE urn = $1
	`
	var urn models.Urn
	err := d.Pool.QueryRow(ctx, query, value).Scan(
		&urn.ID,
		&urn.Urn,
		&urn.Email,
		&urn.IsAnonymous,
		&urn.CreatedAt,
		&urn.LastSeenAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUrnNotFound
	}
	if err != nil {
		return nil, err
	}
	return &urn, nil
}

// TouchUrn updates the last-seen timestamp for a pseudo-identity.
func (d *DB) TouchUrn(ctx context.Context, value string) error {
	_, err := d.Pool.Exec(ctx, `UPDATE urns SET last_seen_at = NOW() WHERE urn = $1`, value)
	return err
}

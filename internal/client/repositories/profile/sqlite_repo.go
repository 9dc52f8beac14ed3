// Package profile stores the singleton user profile record.
package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dverbitsky/chronokeeper/internal/client/models"
	"github.com/dverbitsky/chronokeeper/internal/common"
)

// profileRowID pins the table to a single row.
const profileRowID = 1

// Repository persists the singleton profile.
type Repository interface {
	// Get returns the profile, or common.ErrNoProfile when setup has not run.
	Get(ctx context.Context) (*models.Profile, error)

	// Save inserts or replaces the singleton row.
	Save(ctx context.Context, p *models.Profile) error

	// Update merges the patch into the stored profile and refreshes updatedAt.
	Update(ctx context.Context, patch *models.ProfilePatch) (*models.Profile, error)

	// Delete removes the profile row. Part of the full data wipe.
	Delete(ctx context.Context) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context) (*models.Profile, error) {
	var (
		p                           models.Profile
		birthDate, created, updated int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT name, birth_date, pin_salt, pin_hash, locale, theme, created_at, updated_at
		FROM user_profile WHERE id = ?`, profileRowID).
		Scan(&p.Name, &birthDate, &p.PINSalt, &p.PINHash, &p.Locale, &p.Theme, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNoProfile
		}
		return nil, fmt.Errorf("failed to select profile: %w", err)
	}

	if birthDate != 0 {
		p.BirthDate = time.Unix(birthDate, 0).UTC()
	}
	p.CreatedAt = time.Unix(created, 0).UTC()
	p.UpdatedAt = time.Unix(updated, 0).UTC()
	return &p, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, p *models.Profile) error {
	now := time.Now().UTC().Truncate(time.Second)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	var birthDate int64
	if !p.BirthDate.IsZero() {
		birthDate = p.BirthDate.Unix()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_profile (id, name, birth_date, pin_salt, pin_hash, locale, theme, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			birth_date = excluded.birth_date,
			pin_salt = excluded.pin_salt,
			pin_hash = excluded.pin_hash,
			locale = excluded.locale,
			theme = excluded.theme,
			updated_at = excluded.updated_at`,
		profileRowID, p.Name, birthDate, p.PINSalt, p.PINHash, p.Locale, p.Theme,
		p.CreatedAt.Unix(), p.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, patch *models.ProfilePatch) (*models.Profile, error) {
	current, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}

	patch.Apply(current)
	if err := r.Save(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_profile`); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

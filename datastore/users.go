package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/growsocial/orbit/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT email, display_name, password_hash, data_consent, created_at
		FROM users
		WHERE email = $1
	`
	var user models.User
	row := r.db.QueryRowContext(ctx, query, email)
	err := row.Scan(&user.Email, &user.DisplayName, &user.PasswordHash, &user.DataConsent, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// SetDataConsent flips the tracking-consent flag for a user.
func (r *UserRepository) SetDataConsent(ctx context.Context, email string, consent bool) error {
	query := `UPDATE users SET data_consent = $2 WHERE email = $1`
	result, err := r.db.ExecContext(ctx, query, email, consent)
	if err != nil {
		return fmt.Errorf("failed to update data consent for %s: %w", email, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read consent update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user not found for consent update: %w", sql.ErrNoRows)
	}
	return nil
}

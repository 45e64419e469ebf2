package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/growsocial/orbit/models"
)

// ErrUnknownChannel is returned when no posting exists for the requested
// YouTube channel id.
var ErrUnknownChannel = errors.New("unknown channel")

// ErrAlreadyRewarded is returned when a reward for the (user, channel) pair
// already exists. Callers should treat this as success-equivalent: the
// at-most-once invariant already holds.
var ErrAlreadyRewarded = errors.New("already rewarded")

type RewardRepository struct {
	db *sql.DB
}

func NewRewardRepository(db *sql.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

// CreateReward records exactly one reward for (userEmail, channel) and
// increments the channel's subscriber count and incurred amount. Amount and
// currency are always re-derived from the channel row; nothing monetary is
// trusted from the request. The insert relies on the unique index on
// (user_email, channel_id): two concurrent attempts for the same pair cannot
// both succeed, and the loser sees ErrAlreadyRewarded.
func (r *RewardRepository) CreateReward(ctx context.Context, userEmail, youtubeChannelID, url string, method models.RewardMethod) (*models.Reward, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin reward transaction: %w", err)
	}
	defer tx.Rollback()

	channelQuery := `
		SELECT id, email, rate, currency
		FROM channels
		WHERE youtube_channel_id = $1
		FOR UPDATE
	`
	reward := models.Reward{
		ID:        uuid.NewString(),
		UserEmail: userEmail,
		URL:       url,
		Method:    method,
		CreatedAt: time.Now().UTC(),
	}
	row := tx.QueryRowContext(ctx, channelQuery, youtubeChannelID)
	if err := row.Scan(&reward.ChannelID, &reward.PosterEmail, &reward.Amount, &reward.Currency); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnknownChannel
		}
		return nil, fmt.Errorf("failed to load channel %s: %w", youtubeChannelID, err)
	}

	insertQuery := `
		INSERT INTO rewards (id, channel_id, user_email, poster_email, amount, currency, url, method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_email, channel_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, insertQuery,
		reward.ID, reward.ChannelID, reward.UserEmail, reward.PosterEmail,
		reward.Amount, reward.Currency, reward.URL, string(reward.Method), reward.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert reward: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read reward insert result: %w", err)
	}
	if inserted == 0 {
		return nil, ErrAlreadyRewarded
	}

	updateQuery := `
		UPDATE channels
		SET subscriptions = subscriptions + 1,
		    amount_incurred = amount_incurred + $2
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, updateQuery, reward.ChannelID, reward.Amount); err != nil {
		return nil, fmt.Errorf("failed to update channel counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reward transaction: %w", err)
	}
	return &reward, nil
}

// GetRewardsByUser returns the user's earned rewards, newest first.
func (r *RewardRepository) GetRewardsByUser(ctx context.Context, userEmail string) ([]models.RewardSummary, error) {
	query := `
		SELECT rw.amount, rw.currency, ch.channel_name, rw.created_at
		FROM rewards rw
		JOIN channels ch ON rw.channel_id = ch.id
		WHERE rw.user_email = $1
		ORDER BY rw.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to get rewards for %s: %w", userEmail, err)
	}
	defer rows.Close()

	var rewards []models.RewardSummary
	for rows.Next() {
		var rs models.RewardSummary
		if err := rows.Scan(&rs.Amount, &rs.Currency, &rs.ChannelName, &rs.EarnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reward row: %w", err)
		}
		rewards = append(rewards, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reward rows: %w", err)
	}

	return rewards, nil
}

package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/growsocial/orbit/models"
)

type ChannelRepository struct {
	db *sql.DB
}

func NewChannelRepository(db *sql.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// BrowseChannels returns catalog postings the viewer can act on: not their
// own, not already rewarded to them, and not yet fully funded. Category and
// search are optional filters; a category of "All" means no filter.
func (r *ChannelRepository) BrowseChannels(ctx context.Context, viewerEmail, category, search string) ([]models.Channel, error) {
	query := `
		SELECT id, email, channel_name, youtube_channel_id, channel_url,
		       channel_description, channel_category, rate, currency,
		       subscriptions, subscription_needed, amount_incurred, upload_date
		FROM channels
		WHERE email != $1
		  AND subscriptions < subscription_needed
		  AND id NOT IN (SELECT channel_id FROM rewards WHERE user_email = $1)
	`
	args := []any{viewerEmail}

	if search != "" {
		pattern := "%" + search + "%"
		args = append(args, pattern)
		placeholder := fmt.Sprintf("$%d", len(args))
		query += fmt.Sprintf(` AND (
			channel_name ILIKE %[1]s OR
			channel_description ILIKE %[1]s OR
			email ILIKE %[1]s OR
			currency ILIKE %[1]s OR
			channel_category ILIKE %[1]s OR
			channel_url ILIKE %[1]s
		)`, placeholder)
	}

	if category != "" && category != "All" {
		args = append(args, category)
		query += fmt.Sprintf(" AND channel_category = $%d", len(args))
	}

	query += " ORDER BY random()"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to browse channels: %w", err)
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var c models.Channel
		err := rows.Scan(
			&c.ID, &c.PosterEmail, &c.Name, &c.YouTubeChannelID, &c.URL,
			&c.Description, &c.Category, &c.Rate, &c.Currency,
			&c.SubscriberCount, &c.SubscriberTarget, &c.AmountIncurred, &c.UploadDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel row: %w", err)
		}
		channels = append(channels, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate channel rows: %w", err)
	}

	return channels, nil
}

// GetEligibleChannels returns the postings the user can still earn a reward
// for. This is the reconciler's catalog input: a subscription qualifies only
// if its channel id appears in this set.
func (r *ChannelRepository) GetEligibleChannels(ctx context.Context, userEmail string) ([]models.EligibleChannel, error) {
	query := `
		SELECT id, youtube_channel_id, channel_name, channel_url,
		       rate, currency, channel_description, channel_category
		FROM channels
		WHERE email != $1
		  AND subscriptions < subscription_needed
		  AND id NOT IN (SELECT channel_id FROM rewards WHERE user_email = $1)
		ORDER BY upload_date DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to get eligible channels: %w", err)
	}
	defer rows.Close()

	var channels []models.EligibleChannel
	for rows.Next() {
		var c models.EligibleChannel
		err := rows.Scan(
			&c.ID, &c.YouTubeChannelID, &c.Name, &c.URL,
			&c.Rate, &c.Currency, &c.Description, &c.Category,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan eligible channel row: %w", err)
		}
		channels = append(channels, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate eligible channel rows: %w", err)
	}

	return channels, nil
}

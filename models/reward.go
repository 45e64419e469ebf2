package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RewardMethod records how a subscription was detected.
type RewardMethod string

const (
	RewardMethodAPI   RewardMethod = "api"
	RewardMethodClick RewardMethod = "click"
)

// Reward is a single ledger entry: one payment for one (user, channel)
// pair. At most one reward ever exists per pair; the datastore enforces
// this with a unique index, not application-level checks.
type Reward struct {
	ID          string          `json:"id"`
	ChannelID   int64           `json:"channel_id"`
	UserEmail   string          `json:"user_email"`
	PosterEmail string          `json:"poster_email"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	URL         string          `json:"url"`
	Method      RewardMethod    `json:"method"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RewardSummary is the user-facing view of an earned reward.
type RewardSummary struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	ChannelName string          `json:"channel_name"`
	EarnedAt    time.Time       `json:"earned_at"`
}

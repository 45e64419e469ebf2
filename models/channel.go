package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Channel is a promoted channel posting in the catalog. PosterEmail
// identifies the user paying for subscriptions; YouTubeChannelID is the
// channel being promoted (the id subscriptions are matched on).
type Channel struct {
	ID               int64           `json:"id"`
	PosterEmail      string          `json:"email"`
	Name             string          `json:"channelName"`
	YouTubeChannelID string          `json:"channelId"`
	URL              string          `json:"channelUrl"`
	Description      string          `json:"description"`
	Category         string          `json:"category"`
	Rate             decimal.Decimal `json:"rate"`
	Currency         string          `json:"currency"`
	SubscriberCount  int             `json:"subscriptions"`
	SubscriberTarget int             `json:"subscriptionNeeded"`
	AmountIncurred   decimal.Decimal `json:"amountIncurred"`
	UploadDate       time.Time       `json:"uploadDate"`
}

// EligibleChannel is the projection returned by the eligible-channels
// endpoint: a posting the requesting user can still earn a reward for.
type EligibleChannel struct {
	ID               int64           `json:"id"`
	YouTubeChannelID string          `json:"channelId"`
	Name             string          `json:"channelName"`
	URL              string          `json:"channelUrl"`
	Rate             decimal.Decimal `json:"rate"`
	Currency         string          `json:"currency"`
	Description      string          `json:"description"`
	Category         string          `json:"category"`
}

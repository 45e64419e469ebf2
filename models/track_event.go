package models

import "github.com/shopspring/decimal"

// TrackEventType is the event discriminator on the track-subscription wire.
type TrackEventType string

const (
	TrackEventSubscribed TrackEventType = "subscribed"
)

// TrackSubscriptionRequest is the reward-issuance request body. Rate and
// Currency may be supplied by older clients for audit parity; the server
// re-derives both from the channel record and ignores these fields.
type TrackSubscriptionRequest struct {
	UserEmail string          `json:"user_email"`
	Event     TrackEventType  `json:"event"`
	Timestamp string          `json:"timestamp"`
	URL       string          `json:"url"`
	ChannelID string          `json:"channel_id"`
	Method    string          `json:"method,omitempty"`
	Rate      decimal.Decimal `json:"rate,omitempty"`
	Currency  string          `json:"currency,omitempty"`
}

// TrackSubscriptionResponse reports the outcome of a reward issuance.
type TrackSubscriptionResponse struct {
	Status   string          `json:"status"`
	Amount   decimal.Decimal `json:"amount,omitempty"`
	Currency string          `json:"currency,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// Track-subscription status values. StatusAlreadyRewarded is
// success-equivalent for callers: the uniqueness invariant already holds.
const (
	StatusSuccess         = "success"
	StatusAlreadyRewarded = "already-rewarded"
	StatusEmpty           = "empty"
	StatusError           = "error"
)

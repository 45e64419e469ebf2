package models

import "time"

// Subscription is one entry from the user's YouTube subscription list.
type Subscription struct {
	ChannelID    string    `json:"channelId"`
	ChannelTitle string    `json:"channelTitle"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

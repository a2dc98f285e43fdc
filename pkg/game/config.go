package game

import "time"

type configuration struct {
	PlayerName             string
	DealDelay              time.Duration
	DealerDrawInterval     time.Duration
	CommentaryTimeout      time.Duration
	SubscriptionBufferSize int
}

var defaultConfig = configuration{
	PlayerName:             "",
	DealDelay:              1500 * time.Millisecond,
	DealerDrawInterval:     1 * time.Second,
	CommentaryTimeout:      5 * time.Second,
	SubscriptionBufferSize: 10,
}

package model

import "time"

// OutboxMessage is a pending publication persisted in the same transaction
// as the state change it describes. The dispatcher forwards unsent rows to
// the bus and marks them sent.
type OutboxMessage struct {
	ID        int64      `json:"id"`
	Stream    string     `json:"stream"`
	Payload   []byte     `json:"payload"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at"`
}

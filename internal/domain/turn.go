package domain

import "time"

// Turn is one answered chat exchange recorded in the audit log. It is never
// read back to answer a request.
type Turn struct {
	ConversationID   string
	CorrelationID    string
	UserMessage      string
	Reply            string
	Model            string
	TransactionCount int
	CreatedAt        time.Time
}

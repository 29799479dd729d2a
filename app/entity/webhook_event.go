package entity

import "time"

const (
	EventDispositionProcessed = "processed"
	EventDispositionRejected  = "rejected"
	EventDispositionOrphaned  = "orphaned"
	EventDispositionIgnored   = "ignored"
	EventDispositionStale     = "stale"
	EventDispositionErrored   = "errored"
)

// WebhookEvent is the audit row written for every inbound delivery,
// regardless of how it was handled. Rejected and errored rows are the
// operator's dead-letter queue.
type WebhookEvent struct {
	ID string

	Provider       string
	TransactionRef string

	Signature   string
	PayloadJSON string

	RawStatus string
	Outcome   string
	Amount    string

	Disposition string
	Error       *string

	CreatedAt time.Time
}

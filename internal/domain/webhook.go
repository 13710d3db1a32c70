package domain

import "time"

// Webhook is one registered subscriber endpoint. Event is an exact-match
// filter against the dispatched event type (e.g. "case.status_changed").
// RetryCount is advisory bookkeeping for operators; the dispatcher never
// schedules re-delivery on its own.
type Webhook struct {
	ID              string
	URL             string
	Event           string
	Secret          string
	Active          bool
	RetryCount      int
	LastTriggeredAt *time.Time
	CreatedAt       time.Time
}

// WebhookDelivery records the outcome of one dispatch attempt to one
// subscription. Append-only.
type WebhookDelivery struct {
	ID         string
	WebhookID  string
	Event      string
	StatusCode *int // nil when the attempt never completed
	Payload    []byte
	Response   string
	Error      string
	Success    bool
	CreatedAt  time.Time
}

package models

import "time"

// ActionRecord is the persisted form of one applied store action.
type ActionRecord struct {
	ID           string            `json:"id"`
	CheckoutID   string            `json:"checkout_id"`
	Sequence     int64             `json:"sequence"`
	Type         string            `json:"type"`
	Payload      []byte            `json:"payload,omitempty"`
	ErrorKind    string            `json:"error_kind,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Meta         map[string]string `json:"meta,omitempty"`
	AppliedAt    time.Time         `json:"applied_at"`
}

// CheckoutEvent is published by the order service when a checkout ends.
type CheckoutEvent struct {
	CheckoutID string    `json:"checkout_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

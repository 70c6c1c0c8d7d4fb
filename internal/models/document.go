package models

import "time"

// Job statuses written to Firestore as a request moves through the pipeline.
const (
	StatusReceived    = "RECEIVED"
	StatusRecognizing = "RECOGNIZING"
	StatusDelivered   = "DELIVERED"
	StatusEmpty       = "EMPTY"
	StatusFailed      = "FAILED"
)

// Job represents the Firestore record for one recognition request.
// It tracks lifecycle and progress only; recognized text is never stored here.
type Job struct {
	ChatID           string    `firestore:"chatId,omitempty"`
	OriginalFilename string    `firestore:"originalFilename,omitempty"`
	Kind             string    `firestore:"kind,omitempty"`
	Status           string    `firestore:"status,omitempty"`
	ErrorDetails     string    `firestore:"errorDetails,omitempty"`
	PageCount        int       `firestore:"pageCount,omitempty"`
	PagesDone        int       `firestore:"pagesDone,omitempty"`
	Progress         string    `firestore:"progress,omitempty"`
	Delivery         string    `firestore:"delivery,omitempty"`
	CreatedAt        time.Time `firestore:"createdAt,omitempty"`
	UpdatedAt        time.Time `firestore:"updatedAt,omitempty"`
}

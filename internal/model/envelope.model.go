package model

import "github.com/google/uuid"

// ReportRequest is the envelope carried on the report-requests stream.
// RequestID doubles as the idempotency key: redelivery of the same envelope
// must not create a second report.
type ReportRequest struct {
	RequestID uuid.UUID `json:"requestId"`
	Location  string    `json:"location"`
}

// ReportResult is the envelope carried on the report-results stream.
type ReportResult struct {
	ReportID         uuid.UUID `json:"reportId"`
	Location         string    `json:"location"`
	PersonCount      int       `json:"personCount"`
	PhoneNumberCount int       `json:"phoneNumberCount"`
}

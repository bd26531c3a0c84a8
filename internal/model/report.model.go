package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReportStatus is the lifecycle state of a report. It only moves forward:
// Preparing -> Completed or Preparing -> Failed. Completed and Failed are
// terminal.
type ReportStatus string

const (
	ReportStatusPreparing ReportStatus = "preparing"
	ReportStatusCompleted ReportStatus = "completed"
	ReportStatusFailed    ReportStatus = "failed"
)

func (s ReportStatus) Terminal() bool {
	return s == ReportStatusCompleted || s == ReportStatusFailed
}

type Report struct {
	ID          uuid.UUID       `json:"id"`
	RequestKey  string          `json:"request_key,omitempty"`
	Location    string          `json:"location"`
	Status      ReportStatus    `json:"status"`
	RequestedAt time.Time       `json:"requested_at"`
	DeadlineAt  time.Time       `json:"deadline_at"`
	Details     []*ReportDetail `json:"details"`
}

type ReportDetail struct {
	ID               uuid.UUID `json:"id"`
	ReportID         uuid.UUID `json:"report_id"`
	Location         string    `json:"location"`
	PersonCount      int       `json:"person_count"`
	PhoneNumberCount int       `json:"phone_number_count"`
}

var ErrBlankLocation = errors.New("location must not be blank")

// ReportSubmitRequest is the input of the submission surface. The caller
// only learns that the request was accepted, not that a report exists.
type ReportSubmitRequest struct {
	Location string
}

func (r ReportSubmitRequest) Validate() error {
	if strings.TrimSpace(r.Location) == "" {
		return ErrBlankLocation
	}
	return nil
}

// ReportFilter controls List queries.
type ReportFilter struct {
	Statuses []ReportStatus // IN (...)
	Limit    int            // default 50
	Offset   int
}

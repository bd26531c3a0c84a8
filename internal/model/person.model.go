package model

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ContactKind classifies a contact entry.
type ContactKind string

const (
	KindPhoneNumber  ContactKind = "phone_number"
	KindEmailAddress ContactKind = "email_address"
	KindLocation     ContactKind = "location"
)

// ParseContactKind maps a free-text value onto a contact kind,
// case-insensitively. Inputs that name no kind fall back to KindLocation
// instead of failing, so a location query string can be passed through
// unchanged.
func ParseContactKind(s string) ContactKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "phone_number", "phonenumber":
		return KindPhoneNumber
	case "email_address", "emailaddress":
		return KindEmailAddress
	default:
		return KindLocation
	}
}

type Person struct {
	ID           uuid.UUID      `json:"id"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	Company      *string        `json:"company,omitempty"`
	ContactInfos []*ContactInfo `json:"contact_infos"`
}

type ContactInfo struct {
	ID       uuid.UUID   `json:"id"`
	PersonID uuid.UUID   `json:"person_id"`
	Kind     ContactKind `json:"kind"`
	Content  string      `json:"content"`
}

// LocationStats is the aggregate the stats endpoint returns for a location.
type LocationStats struct {
	Location         string `json:"location"`
	PersonCount      int    `json:"personCount"`
	PhoneNumberCount int    `json:"phoneNumberCount"`
}

type PersonCreateRequest struct {
	FirstName    string
	LastName     string
	Company      *string
	ContactInfos []ContactInfoCreateRequest
}

func (p PersonCreateRequest) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" {
		return errors.New("first_name is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		return errors.New("last_name is required")
	}
	for _, ci := range p.ContactInfos {
		if err := ci.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type ContactInfoCreateRequest struct {
	Kind    string
	Content string
}

func (c ContactInfoCreateRequest) Validate() error {
	if strings.TrimSpace(c.Content) == "" {
		return errors.New("content is required")
	}
	return nil
}

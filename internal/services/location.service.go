package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/phonedir/contact-reports/internal/model"
)

type ContactInfoStatsRepository interface {
	DistinctPersonIDs(ctx context.Context, kind model.ContactKind, content string) ([]uuid.UUID, error)
	CountByPersonsAndKind(ctx context.Context, personIDs []uuid.UUID, kind model.ContactKind) (int64, error)
}

// LocationService answers the aggregation behind the stats endpoint.
type LocationService struct {
	contactInfoRepo ContactInfoStatsRepository
}

func NewLocationService(contactInfoRepo ContactInfoStatsRepository) *LocationService {
	return &LocationService{
		contactInfoRepo: contactInfoRepo,
	}
}

// GetStats counts distinct persons holding a contact info that matches the
// input exactly, and the phone number entries those persons hold. Blank
// input yields zero counts, not an error; an input that happens to name a
// contact kind is counted under that kind instead of location.
func (s *LocationService) GetStats(ctx context.Context, location string) (*model.LocationStats, error) {
	stats := &model.LocationStats{
		Location: location,
	}

	if strings.TrimSpace(location) == "" {
		return stats, nil
	}

	kind := model.ParseContactKind(location)

	personIDs, err := s.contactInfoRepo.DistinctPersonIDs(ctx, kind, location)
	if err != nil {
		return nil, err
	}
	stats.PersonCount = len(personIDs)

	phoneCount, err := s.contactInfoRepo.CountByPersonsAndKind(ctx, personIDs, model.KindPhoneNumber)
	if err != nil {
		return nil, err
	}
	stats.PhoneNumberCount = int(phoneCount)

	return stats, nil
}

package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/phonedir/contact-reports/internal/model"
	"github.com/phonedir/contact-reports/internal/repository"
	"github.com/phonedir/contact-reports/pkg/logger"
	"github.com/phonedir/contact-reports/pkg/prom"
)

var (
	ErrPersonNotFound      = errors.New("person not found")
	ErrContactInfoNotFound = errors.New("contact info not found")
	ErrNoLocationInfo      = errors.New("person has no location contact info")
)

type PersonRepository interface {
	Create(ctx context.Context, p *model.Person) (*model.Person, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Person, error)
	List(ctx context.Context, limit, offset int) ([]*model.Person, int64, error) // results, totalCount
	Delete(ctx context.Context, id uuid.UUID) error
}

type ContactInfoRepository interface {
	Add(ctx context.Context, personID uuid.UUID, ci *model.ContactInfo) (*model.ContactInfo, error)
	Get(ctx context.Context, personID, id uuid.UUID) (*model.ContactInfo, error)
	Delete(ctx context.Context, personID, id uuid.UUID) error
}

type PersonService struct {
	personRepo  PersonRepository
	contactRepo ContactInfoRepository
	requests    Publisher
}

func NewPersonService(personRepo PersonRepository, contactRepo ContactInfoRepository, requests Publisher) *PersonService {
	return &PersonService{
		personRepo:  personRepo,
		contactRepo: contactRepo,
		requests:    requests,
	}
}

func (s *PersonService) Create(ctx context.Context, p model.PersonCreateRequest) (*model.Person, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	person := &model.Person{
		FirstName: strings.TrimSpace(p.FirstName),
		LastName:  strings.TrimSpace(p.LastName),
		Company:   p.Company,
	}
	for _, ci := range p.ContactInfos {
		person.ContactInfos = append(person.ContactInfos, &model.ContactInfo{
			Kind:    model.ParseContactKind(ci.Kind),
			Content: strings.TrimSpace(ci.Content),
		})
	}

	return s.personRepo.Create(ctx, person)
}

func (s *PersonService) Get(ctx context.Context, id uuid.UUID) (*model.Person, error) {
	person, err := s.personRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPersonNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	return person, nil
}

func (s *PersonService) List(ctx context.Context, limit, offset int) ([]*model.Person, int64, error) {
	return s.personRepo.List(ctx, limit, offset)
}

func (s *PersonService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.personRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrPersonNotFound) {
		return ErrPersonNotFound
	}
	return err
}

func (s *PersonService) AddContactInfo(ctx context.Context, personID uuid.UUID, req model.ContactInfoCreateRequest) (*model.ContactInfo, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ci := &model.ContactInfo{
		Kind:    model.ParseContactKind(req.Kind),
		Content: strings.TrimSpace(req.Content),
	}

	created, err := s.contactRepo.Add(ctx, personID, ci)
	if err != nil {
		if errors.Is(err, repository.ErrPersonNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	return created, nil
}

func (s *PersonService) RemoveContactInfo(ctx context.Context, personID, id uuid.UUID) error {
	err := s.contactRepo.Delete(ctx, personID, id)
	if errors.Is(err, repository.ErrContactInfoNotFound) {
		return ErrContactInfoNotFound
	}
	return err
}

// RequestReport publishes a report request for the location recorded on the
// person. A person without a location contact info cannot anchor a report.
func (s *PersonService) RequestReport(ctx context.Context, personID uuid.UUID) (uuid.UUID, error) {
	person, err := s.Get(ctx, personID)
	if err != nil {
		return uuid.Nil, err
	}

	var location string
	for _, ci := range person.ContactInfos {
		if ci.Kind == model.KindLocation && strings.TrimSpace(ci.Content) != "" {
			location = ci.Content
			break
		}
	}
	if location == "" {
		return uuid.Nil, ErrNoLocationInfo
	}

	req := &model.ReportRequest{
		RequestID: uuid.New(),
		Location:  location,
	}

	_, err = s.requests.PublishJSON(ctx, req, map[string]string{"type": "report-request"})
	if err != nil {
		return uuid.Nil, err
	}

	prom.IncReportRequestsPublished()
	logger.Info("Report request published for person", "request_id", req.RequestID.String(), "person_id", personID.String(), "location", location)

	return req.RequestID, nil
}

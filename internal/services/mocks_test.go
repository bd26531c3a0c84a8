package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/phonedir/contact-reports/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportRepository) List(ctx context.Context, f model.ReportFilter) ([]*model.Report, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Report), args.Get(1).(int64), args.Error(2)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error) {
	args := m.Called(ctx, data, metadata)
	return args.String(0), args.Error(1)
}

type MockPersonRepository struct {
	mock.Mock
}

func (m *MockPersonRepository) Create(ctx context.Context, p *model.Person) (*model.Person, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Person), args.Error(1)
}

func (m *MockPersonRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Person, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Person), args.Error(1)
}

func (m *MockPersonRepository) List(ctx context.Context, limit, offset int) ([]*model.Person, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Person), args.Get(1).(int64), args.Error(2)
}

func (m *MockPersonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockContactInfoRepository struct {
	mock.Mock
}

func (m *MockContactInfoRepository) Add(ctx context.Context, personID uuid.UUID, ci *model.ContactInfo) (*model.ContactInfo, error) {
	args := m.Called(ctx, personID, ci)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContactInfo), args.Error(1)
}

func (m *MockContactInfoRepository) Get(ctx context.Context, personID, id uuid.UUID) (*model.ContactInfo, error) {
	args := m.Called(ctx, personID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContactInfo), args.Error(1)
}

func (m *MockContactInfoRepository) Delete(ctx context.Context, personID, id uuid.UUID) error {
	args := m.Called(ctx, personID, id)
	return args.Error(0)
}

type MockContactInfoStatsRepository struct {
	mock.Mock
}

func (m *MockContactInfoStatsRepository) DistinctPersonIDs(ctx context.Context, kind model.ContactKind, content string) ([]uuid.UUID, error) {
	args := m.Called(ctx, kind, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockContactInfoStatsRepository) CountByPersonsAndKind(ctx context.Context, personIDs []uuid.UUID, kind model.ContactKind) (int64, error) {
	args := m.Called(ctx, personIDs, kind)
	return args.Get(0).(int64), args.Error(1)
}

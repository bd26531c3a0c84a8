package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phonedir/contact-reports/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockReportWriter struct {
	mock.Mock
}

func (m *MockReportWriter) Create(ctx context.Context, report *model.Report) (*model.Report, bool, error) {
	args := m.Called(ctx, report)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.Report), args.Bool(1), args.Error(2)
}

type MockOutboxWriter struct {
	mock.Mock
}

func (m *MockOutboxWriter) Create(ctx context.Context, msg *model.OutboxMessage) (*model.OutboxMessage, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OutboxMessage), args.Error(1)
}

type MockStatsProvider struct {
	mock.Mock
}

func (m *MockStatsProvider) GetLocationStats(ctx context.Context, location string) (*model.LocationStats, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LocationStats), args.Error(1)
}

type MockReportCompleter struct {
	mock.Mock
}

func (m *MockReportCompleter) Complete(ctx context.Context, reportID uuid.UUID, detail *model.ReportDetail) error {
	args := m.Called(ctx, reportID, detail)
	return args.Error(0)
}

type MockOutboxReader struct {
	mock.Mock
}

func (m *MockOutboxReader) ListUnsent(ctx context.Context, limit int) ([]*model.OutboxMessage, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.OutboxMessage), args.Error(1)
}

func (m *MockOutboxReader) MarkSent(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockStreamPublisher struct {
	mock.Mock
	name string
}

func (m *MockStreamPublisher) Publish(ctx context.Context, data []byte, metadata map[string]string) (string, error) {
	args := m.Called(ctx, data, metadata)
	return args.String(0), args.Error(1)
}

func (m *MockStreamPublisher) Name() string {
	return m.name
}

type MockOverdueSweeper struct {
	mock.Mock
}

func (m *MockOverdueSweeper) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

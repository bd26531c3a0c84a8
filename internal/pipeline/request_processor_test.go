package pipeline

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phonedir/contact-reports/internal/model"
	"github.com/phonedir/contact-reports/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func requestMessage(t *testing.T, req *model.ReportRequest) *queue.Message {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return &queue.Message{ID: "1-0", Stream: "report-requests", Data: data}
}

func TestRequestProcessor_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("creates preparing report and stages result", func(t *testing.T) {
		reports := new(MockReportWriter)
		outbox := new(MockOutboxWriter)
		stats := new(MockStatsProvider)
		p := NewRequestProcessor(reports, outbox, stats, "report-results", 10*time.Minute)

		requestID := uuid.New()
		reportID := uuid.New()

		reports.On("Create", ctx, mock.MatchedBy(func(r *model.Report) bool {
			return r.Location == "Ankara" &&
				r.Status == model.ReportStatusPreparing &&
				r.RequestKey == requestID.String() &&
				r.DeadlineAt.After(r.RequestedAt)
		})).Return(&model.Report{ID: reportID, Location: "Ankara", Status: model.ReportStatusPreparing}, true, nil)

		stats.On("GetLocationStats", ctx, "Ankara").Return(&model.LocationStats{
			Location:         "Ankara",
			PersonCount:      4,
			PhoneNumberCount: 6,
		}, nil)

		outbox.On("Create", ctx, mock.MatchedBy(func(m *model.OutboxMessage) bool {
			var result model.ReportResult
			if m.Stream != "report-results" || json.Unmarshal(m.Payload, &result) != nil {
				return false
			}
			return result.ReportID == reportID && result.PersonCount == 4 && result.PhoneNumberCount == 6
		})).Return(&model.OutboxMessage{ID: 1}, nil)

		err := p.Process(ctx, requestMessage(t, &model.ReportRequest{RequestID: requestID, Location: "Ankara"}))
		assert.NoError(t, err)
		reports.AssertExpectations(t)
		stats.AssertExpectations(t)
		outbox.AssertExpectations(t)
	})

	t.Run("malformed envelope is discarded", func(t *testing.T) {
		reports := new(MockReportWriter)
		p := NewRequestProcessor(reports, new(MockOutboxWriter), new(MockStatsProvider), "report-results", time.Minute)

		err := p.Process(ctx, &queue.Message{ID: "1-0", Data: []byte("{not json")})
		assert.NoError(t, err)
		reports.AssertNotCalled(t, "Create")
	})

	t.Run("blank location is discarded", func(t *testing.T) {
		reports := new(MockReportWriter)
		p := NewRequestProcessor(reports, new(MockOutboxWriter), new(MockStatsProvider), "report-results", time.Minute)

		err := p.Process(ctx, requestMessage(t, &model.ReportRequest{RequestID: uuid.New(), Location: "   "}))
		assert.NoError(t, err)
		reports.AssertNotCalled(t, "Create")
	})

	t.Run("duplicate request is acked without stats fetch", func(t *testing.T) {
		reports := new(MockReportWriter)
		stats := new(MockStatsProvider)
		p := NewRequestProcessor(reports, new(MockOutboxWriter), stats, "report-results", time.Minute)

		reports.On("Create", ctx, mock.Anything).Return(&model.Report{ID: uuid.New()}, false, nil)

		err := p.Process(ctx, requestMessage(t, &model.ReportRequest{RequestID: uuid.New(), Location: "Ankara"}))
		assert.NoError(t, err)
		stats.AssertNotCalled(t, "GetLocationStats", mock.Anything, mock.Anything)
	})

	t.Run("stats failure leaves report preparing", func(t *testing.T) {
		reports := new(MockReportWriter)
		outbox := new(MockOutboxWriter)
		stats := new(MockStatsProvider)
		p := NewRequestProcessor(reports, outbox, stats, "report-results", time.Minute)

		reports.On("Create", ctx, mock.Anything).Return(&model.Report{ID: uuid.New()}, true, nil)
		stats.On("GetLocationStats", ctx, "Ankara").Return(nil, assert.AnError)

		err := p.Process(ctx, requestMessage(t, &model.ReportRequest{RequestID: uuid.New(), Location: "Ankara"}))
		assert.NoError(t, err)
		outbox.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("store failure is retried", func(t *testing.T) {
		reports := new(MockReportWriter)
		p := NewRequestProcessor(reports, new(MockOutboxWriter), new(MockStatsProvider), "report-results", time.Minute)

		reports.On("Create", ctx, mock.Anything).Return(nil, false, assert.AnError)

		err := p.Process(ctx, requestMessage(t, &model.ReportRequest{RequestID: uuid.New(), Location: "Ankara"}))
		assert.Error(t, err)
	})
}

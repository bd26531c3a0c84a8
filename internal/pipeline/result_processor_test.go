package pipeline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/phonedir/contact-reports/internal/model"
	"github.com/phonedir/contact-reports/internal/queue"
	"github.com/phonedir/contact-reports/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func resultMessage(t *testing.T, result *model.ReportResult) *queue.Message {
	t.Helper()
	data, err := json.Marshal(result)
	require.NoError(t, err)
	return &queue.Message{ID: "1-0", Stream: "report-results", Data: data}
}

func TestResultProcessor_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("completes the report with one detail", func(t *testing.T) {
		reports := new(MockReportCompleter)
		p := NewResultProcessor(reports)

		reportID := uuid.New()
		reports.On("Complete", ctx, reportID, mock.MatchedBy(func(d *model.ReportDetail) bool {
			return d.Location == "Ankara" && d.PersonCount == 4 && d.PhoneNumberCount == 6
		})).Return(nil)

		err := p.Process(ctx, resultMessage(t, &model.ReportResult{
			ReportID:         reportID,
			Location:         "Ankara",
			PersonCount:      4,
			PhoneNumberCount: 6,
		}))
		assert.NoError(t, err)
		reports.AssertExpectations(t)
	})

	t.Run("malformed envelope is discarded", func(t *testing.T) {
		reports := new(MockReportCompleter)
		p := NewResultProcessor(reports)

		err := p.Process(ctx, &queue.Message{ID: "1-0", Data: []byte("{not json")})
		assert.NoError(t, err)
		reports.AssertNotCalled(t, "Complete")
	})

	t.Run("missing report id is discarded", func(t *testing.T) {
		reports := new(MockReportCompleter)
		p := NewResultProcessor(reports)

		err := p.Process(ctx, resultMessage(t, &model.ReportResult{Location: "Ankara"}))
		assert.NoError(t, err)
		reports.AssertNotCalled(t, "Complete")
	})

	t.Run("unknown report id is non-fatal", func(t *testing.T) {
		reports := new(MockReportCompleter)
		p := NewResultProcessor(reports)

		reportID := uuid.New()
		reports.On("Complete", ctx, reportID, mock.Anything).Return(repository.ErrNotFound)

		err := p.Process(ctx, resultMessage(t, &model.ReportResult{ReportID: reportID, Location: "Ankara"}))
		assert.NoError(t, err)
	})

	t.Run("terminal report drops the result", func(t *testing.T) {
		reports := new(MockReportCompleter)
		p := NewResultProcessor(reports)

		reportID := uuid.New()
		reports.On("Complete", ctx, reportID, mock.Anything).Return(repository.ErrAlreadyTerminal)

		err := p.Process(ctx, resultMessage(t, &model.ReportResult{ReportID: reportID, Location: "Ankara"}))
		assert.NoError(t, err)
	})

	t.Run("store failure is retried", func(t *testing.T) {
		reports := new(MockReportCompleter)
		p := NewResultProcessor(reports)

		reportID := uuid.New()
		reports.On("Complete", ctx, reportID, mock.Anything).Return(assert.AnError)

		err := p.Process(ctx, resultMessage(t, &model.ReportResult{ReportID: reportID, Location: "Ankara"}))
		assert.Error(t, err)
	})
}

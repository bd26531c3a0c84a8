package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phonedir/contact-reports/internal/model"
	"github.com/phonedir/contact-reports/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReportService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes request envelope", func(t *testing.T) {
		repo := new(MockReportRepository)
		pub := new(MockPublisher)
		svc := NewReportService(repo, pub)

		pub.On("PublishJSON", ctx, mock.MatchedBy(func(data interface{}) bool {
			req, ok := data.(*model.ReportRequest)
			return ok && req.Location == "Ankara" && req.RequestID != uuid.Nil
		}), mock.Anything).Return("1-0", nil)

		requestID, err := svc.Submit(ctx, model.ReportSubmitRequest{Location: "Ankara"})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, requestID)
		pub.AssertExpectations(t)
	})

	t.Run("trims location before publishing", func(t *testing.T) {
		repo := new(MockReportRepository)
		pub := new(MockPublisher)
		svc := NewReportService(repo, pub)

		pub.On("PublishJSON", ctx, mock.MatchedBy(func(data interface{}) bool {
			return data.(*model.ReportRequest).Location == "Izmir"
		}), mock.Anything).Return("1-0", nil)

		_, err := svc.Submit(ctx, model.ReportSubmitRequest{Location: "  Izmir  "})
		require.NoError(t, err)
		pub.AssertExpectations(t)
	})

	t.Run("blank location publishes nothing", func(t *testing.T) {
		repo := new(MockReportRepository)
		pub := new(MockPublisher)
		svc := NewReportService(repo, pub)

		_, err := svc.Submit(ctx, model.ReportSubmitRequest{Location: "   "})
		assert.ErrorIs(t, err, model.ErrBlankLocation)
		pub.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("distinct submissions get distinct request ids", func(t *testing.T) {
		repo := new(MockReportRepository)
		pub := new(MockPublisher)
		svc := NewReportService(repo, pub)

		pub.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything).Return("1-0", nil)

		first, err := svc.Submit(ctx, model.ReportSubmitRequest{Location: "Ankara"})
		require.NoError(t, err)
		second, err := svc.Submit(ctx, model.ReportSubmitRequest{Location: "Ankara"})
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("publish failure surfaces", func(t *testing.T) {
		repo := new(MockReportRepository)
		pub := new(MockPublisher)
		svc := NewReportService(repo, pub)

		pub.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything).Return("", assert.AnError)

		_, err := svc.Submit(ctx, model.ReportSubmitRequest{Location: "Ankara"})
		assert.Error(t, err)
	})
}

func TestReportService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo := new(MockReportRepository)
		svc := NewReportService(repo, new(MockPublisher))

		id := uuid.New()
		repo.On("GetByID", ctx, id).Return(&model.Report{ID: id, Status: model.ReportStatusCompleted}, nil)

		report, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, report.ID)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockReportRepository)
		svc := NewReportService(repo, new(MockPublisher))

		id := uuid.New()
		repo.On("GetByID", ctx, id).Return(nil, repository.ErrNotFound)

		_, err := svc.Get(ctx, id)
		assert.ErrorIs(t, err, ErrReportNotFound)
	})
}

func TestReportService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockReportRepository)
	svc := NewReportService(repo, new(MockPublisher))

	f := model.ReportFilter{Limit: 10}
	repo.On("List", ctx, f).Return([]*model.Report{{Location: "Ankara"}}, int64(1), nil)

	reports, total, err := svc.List(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, reports, 1)
}

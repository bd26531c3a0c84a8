package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phonedir/contact-reports/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPreparingReport(location, requestKey string) *model.Report {
	now := time.Now().UTC()
	return &model.Report{
		RequestKey:  requestKey,
		Location:    location,
		Status:      model.ReportStatusPreparing,
		RequestedAt: now,
		DeadlineAt:  now.Add(10 * time.Minute),
	}
}

func TestReportRepository_Create(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewReportRepository(db)
	ctx := context.Background()

	t.Run("creates a preparing report", func(t *testing.T) {
		report, created, err := repo.Create(ctx, newPreparingReport("Ankara", "req-1"))
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, uuid.Nil, report.ID)
		assert.Equal(t, model.ReportStatusPreparing, report.Status)
	})

	t.Run("same request key is a no-op", func(t *testing.T) {
		first, created, err := repo.Create(ctx, newPreparingReport("Izmir", "req-2"))
		require.NoError(t, err)
		require.True(t, created)

		second, created, err := repo.Create(ctx, newPreparingReport("Izmir", "req-2"))
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("distinct request keys create distinct reports", func(t *testing.T) {
		first, created, err := repo.Create(ctx, newPreparingReport("Bursa", "req-3"))
		require.NoError(t, err)
		require.True(t, created)

		second, created, err := repo.Create(ctx, newPreparingReport("Bursa", "req-4"))
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("empty request keys never collide", func(t *testing.T) {
		_, created, err := repo.Create(ctx, newPreparingReport("Adana", ""))
		require.NoError(t, err)
		require.True(t, created)

		_, created, err = repo.Create(ctx, newPreparingReport("Adana", ""))
		require.NoError(t, err)
		assert.True(t, created)
	})
}

func TestReportRepository_GetByID(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewReportRepository(db)
	ctx := context.Background()

	t.Run("returns report with details", func(t *testing.T) {
		report, _, err := repo.Create(ctx, newPreparingReport("Ankara", "req-1"))
		require.NoError(t, err)

		err = repo.Complete(ctx, report.ID, &model.ReportDetail{
			Location:         "Ankara",
			PersonCount:      3,
			PhoneNumberCount: 5,
		})
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, report.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ReportStatusCompleted, got.Status)
		require.Len(t, got.Details, 1)
		assert.Equal(t, 3, got.Details[0].PersonCount)
		assert.Equal(t, 5, got.Details[0].PhoneNumberCount)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestReportRepository_List(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewReportRepository(db)
	ctx := context.Background()

	completedID := uuid.Nil
	for i, loc := range []string{"Ankara", "Izmir", "Bursa"} {
		report, _, err := repo.Create(ctx, &model.Report{
			Location:    loc,
			Status:      model.ReportStatusPreparing,
			RequestedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
			DeadlineAt:  time.Now().UTC().Add(10 * time.Minute),
		})
		require.NoError(t, err)
		if i == 0 {
			completedID = report.ID
		}
	}
	require.NoError(t, repo.Complete(ctx, completedID, &model.ReportDetail{Location: "Ankara"}))

	t.Run("unfiltered, newest first", func(t *testing.T) {
		reports, total, err := repo.List(ctx, model.ReportFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, reports, 3)
		assert.Equal(t, "Bursa", reports[0].Location)
		assert.Equal(t, "Ankara", reports[2].Location)
	})

	t.Run("filter by status", func(t *testing.T) {
		reports, total, err := repo.List(ctx, model.ReportFilter{
			Statuses: []model.ReportStatus{model.ReportStatusCompleted},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, reports, 1)
		assert.Equal(t, completedID, reports[0].ID)
	})

	t.Run("limit and offset", func(t *testing.T) {
		reports, total, err := repo.List(ctx, model.ReportFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, reports, 1)
	})
}

func TestReportRepository_Complete(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewReportRepository(db)
	ctx := context.Background()

	t.Run("marks report completed and stores detail", func(t *testing.T) {
		report, _, err := repo.Create(ctx, newPreparingReport("Ankara", "req-1"))
		require.NoError(t, err)

		err = repo.Complete(ctx, report.ID, &model.ReportDetail{
			Location:         "Ankara",
			PersonCount:      2,
			PhoneNumberCount: 4,
		})
		assert.NoError(t, err)

		got, err := repo.GetByID(ctx, report.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ReportStatusCompleted, got.Status)
		require.Len(t, got.Details, 1)
	})

	t.Run("completed report stays completed", func(t *testing.T) {
		report, _, err := repo.Create(ctx, newPreparingReport("Izmir", "req-2"))
		require.NoError(t, err)

		require.NoError(t, repo.Complete(ctx, report.ID, &model.ReportDetail{Location: "Izmir", PersonCount: 1}))

		err = repo.Complete(ctx, report.ID, &model.ReportDetail{Location: "Izmir", PersonCount: 99})
		assert.ErrorIs(t, err, ErrAlreadyTerminal)

		got, err := repo.GetByID(ctx, report.ID)
		require.NoError(t, err)
		require.Len(t, got.Details, 1)
		assert.Equal(t, 1, got.Details[0].PersonCount)
	})

	t.Run("failed report stays failed", func(t *testing.T) {
		report, _, err := repo.Create(ctx, &model.Report{
			Location:    "Bursa",
			Status:      model.ReportStatusPreparing,
			RequestedAt: time.Now().UTC().Add(-time.Hour),
			DeadlineAt:  time.Now().UTC().Add(-30 * time.Minute),
		})
		require.NoError(t, err)

		swept, err := repo.SweepOverdue(ctx, time.Now().UTC())
		require.NoError(t, err)
		require.Equal(t, int64(1), swept)

		err = repo.Complete(ctx, report.ID, &model.ReportDetail{Location: "Bursa"})
		assert.ErrorIs(t, err, ErrAlreadyTerminal)
	})

	t.Run("unknown report", func(t *testing.T) {
		err := repo.Complete(ctx, uuid.New(), &model.ReportDetail{Location: "Nowhere"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestReportRepository_SweepOverdue(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewReportRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()

	overdue, _, err := repo.Create(ctx, &model.Report{
		Location:    "Ankara",
		Status:      model.ReportStatusPreparing,
		RequestedAt: now.Add(-time.Hour),
		DeadlineAt:  now.Add(-time.Minute),
	})
	require.NoError(t, err)

	fresh, _, err := repo.Create(ctx, &model.Report{
		Location:    "Izmir",
		Status:      model.ReportStatusPreparing,
		RequestedAt: now,
		DeadlineAt:  now.Add(10 * time.Minute),
	})
	require.NoError(t, err)

	swept, err := repo.SweepOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	got, err := repo.GetByID(ctx, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReportStatusFailed, got.Status)

	got, err = repo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReportStatusPreparing, got.Status)

	swept, err = repo.SweepOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), swept)
}

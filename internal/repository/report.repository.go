package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phonedir/contact-reports/internal/model"
	"github.com/phonedir/contact-reports/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when a report does not exist.
	ErrNotFound = errors.New("report not found")
	// ErrAlreadyTerminal is returned when a completed or failed report is
	// asked to change state again.
	ErrAlreadyTerminal = errors.New("report is in a terminal status")
)

type ReportRepository struct {
	*pg.DB
}

func NewReportRepository(db *pg.DB) *ReportRepository {
	return &ReportRepository{
		db,
	}
}

// Create inserts a new Preparing report. When the report carries a request
// key and a row with the same key already exists, the insert is a no-op and
// created is false: redelivery of a request envelope must not produce a
// second report.
func (r *ReportRepository) Create(ctx context.Context, report *model.Report) (*model.Report, bool, error) {
	entity := toReportEntity(report)
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}

	tx := r.Write(ctx).WithContext(ctx)
	if entity.RequestKey != nil {
		tx = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "request_key"}},
			DoNothing: true,
		})
	}

	res := tx.Create(entity)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		existing, err := r.getByRequestKey(ctx, *entity.RequestKey)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	return toReportModel(entity), true, nil
}

func (r *ReportRepository) getByRequestKey(ctx context.Context, key string) (*model.Report, error) {
	var entity ReportEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Details").
		Where("request_key = ?", key).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toReportModel(&entity), nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	var entity ReportEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Details").
		Where("id = ?", id).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toReportModel(&entity), nil
}

// List returns reports newest first with their details preloaded.
func (r *ReportRepository) List(ctx context.Context, f model.ReportFilter) ([]*model.Report, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&ReportEntity{})

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where("status IN ?", statuses)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*ReportEntity
	err := q.Preload("Details").
		Order("requested_at DESC").
		Limit(limit).Offset(offset).
		Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}

	return toReportModels(entities), total, nil
}

// Complete attaches the aggregation snapshot and moves the report to
// Completed in a single transaction. The status update is guarded on the
// current status so that a terminal report is never mutated again, no
// matter how often the matching result is redelivered.
func (r *ReportRepository) Complete(ctx context.Context, reportID uuid.UUID, detail *model.ReportDetail) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		res := r.Write(ctx).WithContext(ctx).
			Model(&ReportEntity{}).
			Where("id = ? AND status = ?", reportID, string(model.ReportStatusPreparing)).
			Update("status", string(model.ReportStatusCompleted))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := r.Read(ctx).WithContext(ctx).
				Model(&ReportEntity{}).
				Where("id = ?", reportID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrAlreadyTerminal
		}

		entity := toReportDetailEntity(detail)
		if entity.ID == uuid.Nil {
			entity.ID = uuid.New()
		}
		entity.ReportID = reportID
		return r.Write(ctx).WithContext(ctx).Create(entity).Error
	})
}

// SweepOverdue fails every Preparing report whose deadline has passed and
// returns how many rows changed.
func (r *ReportRepository) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.Write(ctx).WithContext(ctx).
		Model(&ReportEntity{}).
		Where("status = ? AND deadline_at < ?", string(model.ReportStatusPreparing), now).
		Update("status", string(model.ReportStatusFailed))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

package repository

import (
	"context"
	"time"

	"github.com/phonedir/contact-reports/internal/model"
	"github.com/phonedir/contact-reports/pkg/pg"
)

type OutboxRepository struct {
	*pg.DB
}

func NewOutboxRepository(db *pg.DB) *OutboxRepository {
	return &OutboxRepository{
		db,
	}
}

// Create persists a pending publication. Callers run it inside
// WithinTransaction together with the state change the payload describes.
func (r *OutboxRepository) Create(ctx context.Context, m *model.OutboxMessage) (*model.OutboxMessage, error) {
	entity := toOutboxEntity(m)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toOutboxModel(entity), nil
}

// ListUnsent returns undispatched rows oldest first.
func (r *OutboxRepository) ListUnsent(ctx context.Context, limit int) ([]*model.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var entities []*OutboxEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("sent_at IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}

	return toOutboxModels(entities), nil
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	return r.Write(ctx).WithContext(ctx).
		Model(&OutboxEntity{}).
		Where("id = ?", id).
		Update("sent_at", at).Error
}

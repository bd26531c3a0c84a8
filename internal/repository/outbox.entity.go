package repository

import (
	"time"

	"github.com/phonedir/contact-reports/internal/model"
)

type OutboxEntity struct {
	ID        int64      `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	Stream    string     `db:"stream"     gorm:"column:stream;not null"`
	Payload   []byte     `db:"payload"    gorm:"column:payload;not null"`
	CreatedAt time.Time  `db:"created_at" gorm:"column:created_at;autoCreateTime"`
	SentAt    *time.Time `db:"sent_at"    gorm:"column:sent_at;index"`
}

func (OutboxEntity) TableName() string {
	return "report_outbox"
}

func toOutboxEntity(m *model.OutboxMessage) *OutboxEntity {
	if m == nil {
		return nil
	}
	return &OutboxEntity{
		ID:        m.ID,
		Stream:    m.Stream,
		Payload:   m.Payload,
		CreatedAt: m.CreatedAt,
		SentAt:    m.SentAt,
	}
}

func toOutboxModel(e *OutboxEntity) *model.OutboxMessage {
	if e == nil {
		return nil
	}
	return &model.OutboxMessage{
		ID:        e.ID,
		Stream:    e.Stream,
		Payload:   e.Payload,
		CreatedAt: e.CreatedAt,
		SentAt:    e.SentAt,
	}
}

func toOutboxModels(entities []*OutboxEntity) []*model.OutboxMessage {
	if entities == nil {
		return nil
	}
	models := make([]*model.OutboxMessage, len(entities))
	for i, e := range entities {
		models[i] = toOutboxModel(e)
	}
	return models
}

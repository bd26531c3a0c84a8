package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/phonedir/contact-reports/internal/model"
)

type ReportEntity struct {
	ID          uuid.UUID             `db:"id"           gorm:"primaryKey;type:uuid;column:id"`
	RequestKey  *string               `db:"request_key"  gorm:"column:request_key;uniqueIndex"`
	Location    string                `db:"location"     gorm:"column:location;not null"`
	Status      string                `db:"status"       gorm:"column:status;not null;index"`
	RequestedAt time.Time             `db:"requested_at" gorm:"column:requested_at;not null;index"`
	DeadlineAt  time.Time             `db:"deadline_at"  gorm:"column:deadline_at"`
	Details     []*ReportDetailEntity `gorm:"foreignKey:ReportID"`
}

func (ReportEntity) TableName() string {
	return "reports"
}

type ReportDetailEntity struct {
	ID               uuid.UUID `db:"id"                 gorm:"primaryKey;type:uuid;column:id"`
	ReportID         uuid.UUID `db:"report_id"          gorm:"column:report_id;type:uuid;not null;index"`
	Location         string    `db:"location"           gorm:"column:location;not null"`
	PersonCount      int       `db:"person_count"       gorm:"column:person_count;not null"`
	PhoneNumberCount int       `db:"phone_number_count" gorm:"column:phone_number_count;not null"`
}

func (ReportDetailEntity) TableName() string {
	return "report_details"
}

func toReportEntity(m *model.Report) *ReportEntity {
	if m == nil {
		return nil
	}
	var key *string
	if m.RequestKey != "" {
		k := m.RequestKey
		key = &k
	}
	return &ReportEntity{
		ID:          m.ID,
		RequestKey:  key,
		Location:    m.Location,
		Status:      string(m.Status),
		RequestedAt: m.RequestedAt,
		DeadlineAt:  m.DeadlineAt,
	}
}

func toReportModel(e *ReportEntity) *model.Report {
	if e == nil {
		return nil
	}
	key := ""
	if e.RequestKey != nil {
		key = *e.RequestKey
	}
	return &model.Report{
		ID:          e.ID,
		RequestKey:  key,
		Location:    e.Location,
		Status:      model.ReportStatus(e.Status),
		RequestedAt: e.RequestedAt,
		DeadlineAt:  e.DeadlineAt,
		Details:     toReportDetailModels(e.Details),
	}
}

func toReportModels(entities []*ReportEntity) []*model.Report {
	if entities == nil {
		return nil
	}
	models := make([]*model.Report, len(entities))
	for i, e := range entities {
		models[i] = toReportModel(e)
	}
	return models
}

func toReportDetailEntity(m *model.ReportDetail) *ReportDetailEntity {
	if m == nil {
		return nil
	}
	return &ReportDetailEntity{
		ID:               m.ID,
		ReportID:         m.ReportID,
		Location:         m.Location,
		PersonCount:      m.PersonCount,
		PhoneNumberCount: m.PhoneNumberCount,
	}
}

func toReportDetailModel(e *ReportDetailEntity) *model.ReportDetail {
	if e == nil {
		return nil
	}
	return &model.ReportDetail{
		ID:               e.ID,
		ReportID:         e.ReportID,
		Location:         e.Location,
		PersonCount:      e.PersonCount,
		PhoneNumberCount: e.PhoneNumberCount,
	}
}

func toReportDetailModels(entities []*ReportDetailEntity) []*model.ReportDetail {
	if entities == nil {
		return nil
	}
	models := make([]*model.ReportDetail, len(entities))
	for i, e := range entities {
		models[i] = toReportDetailModel(e)
	}
	return models
}

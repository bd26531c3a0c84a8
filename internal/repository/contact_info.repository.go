package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/phonedir/contact-reports/internal/model"
	"github.com/phonedir/contact-reports/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrContactInfoNotFound = errors.New("contact info not found")
)

type ContactInfoRepository struct {
	*pg.DB
}

func NewContactInfoRepository(db *pg.DB) *ContactInfoRepository {
	return &ContactInfoRepository{
		db,
	}
}

// Add attaches a contact info to an existing person.
func (r *ContactInfoRepository) Add(ctx context.Context, personID uuid.UUID, ci *model.ContactInfo) (*model.ContactInfo, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).Model(&PersonEntity{}).
		Where("id = ?", personID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrPersonNotFound
	}

	entity := toContactInfoEntity(ci)
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	entity.PersonID = personID

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toContactInfoModel(entity), nil
}

func (r *ContactInfoRepository) Get(ctx context.Context, personID, id uuid.UUID) (*model.ContactInfo, error) {
	var entity ContactInfoEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ? AND person_id = ?", id, personID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactInfoNotFound
		}
		return nil, err
	}
	return toContactInfoModel(&entity), nil
}

func (r *ContactInfoRepository) Delete(ctx context.Context, personID, id uuid.UUID) error {
	res := r.Write(ctx).WithContext(ctx).
		Where("id = ? AND person_id = ?", id, personID).
		Delete(&ContactInfoEntity{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrContactInfoNotFound
	}
	return nil
}

// DistinctPersonIDs returns the ids of persons holding at least one contact
// info of the given kind whose content matches exactly.
func (r *ContactInfoRepository) DistinctPersonIDs(ctx context.Context, kind model.ContactKind, content string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.Read(ctx).WithContext(ctx).Model(&ContactInfoEntity{}).
		Distinct("person_id").
		Where("kind = ? AND content = ?", kind, content).
		Pluck("person_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CountByPersonsAndKind counts contact info rows of the given kind across the
// given persons. Duplicate entries are counted individually.
func (r *ContactInfoRepository) CountByPersonsAndKind(ctx context.Context, personIDs []uuid.UUID, kind model.ContactKind) (int64, error) {
	if len(personIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.Read(ctx).WithContext(ctx).Model(&ContactInfoEntity{}).
		Where("person_id IN ? AND kind = ?", personIDs, kind).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

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
	ErrPersonNotFound = errors.New("person not found")
)

type PersonRepository struct {
	*pg.DB
}

func NewPersonRepository(db *pg.DB) *PersonRepository {
	return &PersonRepository{
		db,
	}
}

// Create inserts a person together with any nested contact infos.
func (r *PersonRepository) Create(ctx context.Context, p *model.Person) (*model.Person, error) {
	entity := toPersonEntity(p)
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	for _, ci := range entity.ContactInfos {
		if ci.ID == uuid.Nil {
			ci.ID = uuid.New()
		}
		ci.PersonID = entity.ID
	}

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toPersonModel(entity), nil
}

func (r *PersonRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Person, error) {
	var entity PersonEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("ContactInfos").
		Where("id = ?", id).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	return toPersonModel(&entity), nil
}

func (r *PersonRepository) List(ctx context.Context, limit, offset int) ([]*model.Person, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&PersonEntity{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var entities []*PersonEntity
	err := q.Preload("ContactInfos").
		Order("last_name ASC, first_name ASC").
		Limit(limit).Offset(offset).
		Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}

	return toPersonModels(entities), total, nil
}

// Delete removes a person and its contact infos atomically.
func (r *PersonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		res := r.Write(ctx).WithContext(ctx).
			Where("id = ?", id).
			Delete(&PersonEntity{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPersonNotFound
		}
		return r.Write(ctx).WithContext(ctx).
			Where("person_id = ?", id).
			Delete(&ContactInfoEntity{}).Error
	})
}

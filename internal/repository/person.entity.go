package repository

import (
	"github.com/google/uuid"
	"github.com/phonedir/contact-reports/internal/model"
)

type PersonEntity struct {
	ID           uuid.UUID            `db:"id"         gorm:"primaryKey;type:uuid;column:id"`
	FirstName    string               `db:"first_name" gorm:"column:first_name;not null"`
	LastName     string               `db:"last_name"  gorm:"column:last_name;not null"`
	Company      *string              `db:"company"    gorm:"column:company"`
	ContactInfos []*ContactInfoEntity `gorm:"foreignKey:PersonID"`
}

func (PersonEntity) TableName() string {
	return "persons"
}

type ContactInfoEntity struct {
	ID       uuid.UUID `db:"id"        gorm:"primaryKey;type:uuid;column:id"`
	PersonID uuid.UUID `db:"person_id" gorm:"column:person_id;type:uuid;not null;index"`
	Kind     string    `db:"kind"      gorm:"column:kind;not null;index"`
	Content  string    `db:"content"   gorm:"column:content;not null;index"`
}

func (ContactInfoEntity) TableName() string {
	return "contact_infos"
}

func toPersonEntity(m *model.Person) *PersonEntity {
	if m == nil {
		return nil
	}
	entity := &PersonEntity{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Company:   m.Company,
	}
	for _, ci := range m.ContactInfos {
		entity.ContactInfos = append(entity.ContactInfos, toContactInfoEntity(ci))
	}
	return entity
}

func toPersonModel(e *PersonEntity) *model.Person {
	if e == nil {
		return nil
	}
	m := &model.Person{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Company:   e.Company,
	}
	for _, ci := range e.ContactInfos {
		m.ContactInfos = append(m.ContactInfos, toContactInfoModel(ci))
	}
	return m
}

func toPersonModels(entities []*PersonEntity) []*model.Person {
	if entities == nil {
		return nil
	}
	models := make([]*model.Person, len(entities))
	for i, e := range entities {
		models[i] = toPersonModel(e)
	}
	return models
}

func toContactInfoEntity(m *model.ContactInfo) *ContactInfoEntity {
	if m == nil {
		return nil
	}
	return &ContactInfoEntity{
		ID:       m.ID,
		PersonID: m.PersonID,
		Kind:     string(m.Kind),
		Content:  m.Content,
	}
}

func toContactInfoModel(e *ContactInfoEntity) *model.ContactInfo {
	if e == nil {
		return nil
	}
	return &model.ContactInfo{
		ID:       e.ID,
		PersonID: e.PersonID,
		Kind:     model.ContactKind(e.Kind),
		Content:  e.Content,
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/phonedir/contact-reports/internal/model"
	"github.com/phonedir/contact-reports/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPersonService struct {
	mock.Mock
}

func (m *MockPersonService) Create(ctx context.Context, p model.PersonCreateRequest) (*model.Person, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Person), args.Error(1)
}

func (m *MockPersonService) Get(ctx context.Context, id uuid.UUID) (*model.Person, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Person), args.Error(1)
}

func (m *MockPersonService) List(ctx context.Context, limit, offset int) ([]*model.Person, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Person), args.Get(1).(int64), args.Error(2)
}

func (m *MockPersonService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPersonService) AddContactInfo(ctx context.Context, personID uuid.UUID, req model.ContactInfoCreateRequest) (*model.ContactInfo, error) {
	args := m.Called(ctx, personID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContactInfo), args.Error(1)
}

func (m *MockPersonService) RemoveContactInfo(ctx context.Context, personID, id uuid.UUID) error {
	args := m.Called(ctx, personID, id)
	return args.Error(0)
}

func (m *MockPersonService) RequestReport(ctx context.Context, personID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, personID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type MockLocationService struct {
	mock.Mock
}

func (m *MockLocationService) GetStats(ctx context.Context, location string) (*model.LocationStats, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LocationStats), args.Error(1)
}

func newContactHandler(persons *MockPersonService, locations *MockLocationService) *ContactHandler {
	return NewContactHandler(persons, locations)
}

func TestContactHandler_CreatePerson(t *testing.T) {
	t.Run("created with nested infos", func(t *testing.T) {
		persons := new(MockPersonService)
		handler := newContactHandler(persons, new(MockLocationService))

		created := &model.Person{ID: uuid.New(), FirstName: "Ada", LastName: "Lovelace"}
		persons.On("Create", mock.Anything, mock.MatchedBy(func(p model.PersonCreateRequest) bool {
			return p.FirstName == "Ada" && len(p.ContactInfos) == 1
		})).Return(created, nil)

		body := []byte(`{"first_name":"Ada","last_name":"Lovelace","contact_infos":[{"kind":"location","content":"Ankara"}]}`)
		ctx := setupTestContext("POST", "/api/v1/persons", body)
		handler.CreatePerson(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())

		var response model.Person
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, created.ID, response.ID)
		persons.AssertExpectations(t)
	})

	t.Run("validation error", func(t *testing.T) {
		persons := new(MockPersonService)
		handler := newContactHandler(persons, new(MockLocationService))

		persons.On("Create", mock.Anything, mock.Anything).Return(nil, assert.AnError)

		ctx := setupTestContext("POST", "/api/v1/persons", []byte(`{"first_name":""}`))
		handler.CreatePerson(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestContactHandler_GetAndDeletePerson(t *testing.T) {
	t.Run("get not found", func(t *testing.T) {
		persons := new(MockPersonService)
		handler := newContactHandler(persons, new(MockLocationService))

		id := uuid.New()
		persons.On("Get", mock.Anything, id).Return(nil, services.ErrPersonNotFound)

		ctx := setupTestContext("GET", "/api/v1/persons/"+id.String(), nil)
		ctx.SetUserValue("id", id.String())
		handler.GetPerson(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
	})

	t.Run("delete returns 204", func(t *testing.T) {
		persons := new(MockPersonService)
		handler := newContactHandler(persons, new(MockLocationService))

		id := uuid.New()
		persons.On("Delete", mock.Anything, id).Return(nil)

		ctx := setupTestContext("DELETE", "/api/v1/persons/"+id.String(), nil)
		ctx.SetUserValue("id", id.String())
		handler.DeletePerson(ctx)

		assert.Equal(t, 204, ctx.Response.StatusCode())
	})
}

func TestContactHandler_RequestReport(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		persons := new(MockPersonService)
		handler := newContactHandler(persons, new(MockLocationService))

		personID := uuid.New()
		requestID := uuid.New()
		persons.On("RequestReport", mock.Anything, personID).Return(requestID, nil)

		ctx := setupTestContext("POST", "/api/v1/persons/"+personID.String()+"/request-report", nil)
		ctx.SetUserValue("id", personID.String())
		handler.RequestReport(ctx)

		assert.Equal(t, 202, ctx.Response.StatusCode())

		var response submitReportResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, requestID.String(), response.RequestID)
	})

	t.Run("no location info", func(t *testing.T) {
		persons := new(MockPersonService)
		handler := newContactHandler(persons, new(MockLocationService))

		personID := uuid.New()
		persons.On("RequestReport", mock.Anything, personID).Return(uuid.Nil, services.ErrNoLocationInfo)

		ctx := setupTestContext("POST", "/api/v1/persons/"+personID.String()+"/request-report", nil)
		ctx.SetUserValue("id", personID.String())
		handler.RequestReport(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("unknown person", func(t *testing.T) {
		persons := new(MockPersonService)
		handler := newContactHandler(persons, new(MockLocationService))

		personID := uuid.New()
		persons.On("RequestReport", mock.Anything, personID).Return(uuid.Nil, services.ErrPersonNotFound)

		ctx := setupTestContext("POST", "/api/v1/persons/"+personID.String()+"/request-report", nil)
		ctx.SetUserValue("id", personID.String())
		handler.RequestReport(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
	})
}

func TestContactHandler_GetLocationStats(t *testing.T) {
	t.Run("returns stats", func(t *testing.T) {
		locations := new(MockLocationService)
		handler := newContactHandler(new(MockPersonService), locations)

		locations.On("GetStats", mock.Anything, "Ankara").Return(&model.LocationStats{
			Location:         "Ankara",
			PersonCount:      2,
			PhoneNumberCount: 3,
		}, nil)

		ctx := setupTestContext("GET", "/api/v1/locations/stats?location=Ankara", nil)
		handler.GetLocationStats(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var response model.LocationStats
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, 2, response.PersonCount)
		assert.Equal(t, 3, response.PhoneNumberCount)
	})

	t.Run("empty location still answers", func(t *testing.T) {
		locations := new(MockLocationService)
		handler := newContactHandler(new(MockPersonService), locations)

		locations.On("GetStats", mock.Anything, "").Return(&model.LocationStats{}, nil)

		ctx := setupTestContext("GET", "/api/v1/locations/stats", nil)
		handler.GetLocationStats(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
	})
}

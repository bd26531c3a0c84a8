package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/phonedir/contact-reports/internal/model"
	"github.com/phonedir/contact-reports/internal/services"
	xhttp "github.com/phonedir/contact-reports/pkg/http"
)

type PersonService interface {
	Create(ctx context.Context, p model.PersonCreateRequest) (*model.Person, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Person, error)
	List(ctx context.Context, limit, offset int) ([]*model.Person, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddContactInfo(ctx context.Context, personID uuid.UUID, req model.ContactInfoCreateRequest) (*model.ContactInfo, error)
	RemoveContactInfo(ctx context.Context, personID, id uuid.UUID) error
	RequestReport(ctx context.Context, personID uuid.UUID) (uuid.UUID, error)
}

type LocationService interface {
	GetStats(ctx context.Context, location string) (*model.LocationStats, error)
}

type ContactHandler struct {
	persons   PersonService
	locations LocationService
}

func RegisterContactRoutes(e *router.Group, h *ContactHandler) {
	e.POST("/persons", h.CreatePerson)
	e.GET("/persons", h.ListPersons)
	e.GET("/persons/{id}", h.GetPerson)
	e.DELETE("/persons/{id}", h.DeletePerson)
	e.POST("/persons/{id}/contact-infos", h.AddContactInfo)
	e.DELETE("/persons/{id}/contact-infos/{infoId}", h.RemoveContactInfo)
	e.POST("/persons/{id}/request-report", h.RequestReport)
	e.GET("/locations/stats", h.GetLocationStats)
}

func NewContactHandler(persons PersonService, locations LocationService) *ContactHandler {
	return &ContactHandler{
		persons:   persons,
		locations: locations,
	}
}

type createPersonRequest struct {
	FirstName    string                     `json:"first_name"`
	LastName     string                     `json:"last_name"`
	Company      *string                    `json:"company,omitempty"`
	ContactInfos []createContactInfoRequest `json:"contact_infos,omitempty"`
}

type createContactInfoRequest struct {
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

type personListResponse struct {
	Items []*model.Person `json:"items"`
	Total int64           `json:"total"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *ContactHandler) CreatePerson(ctx *xhttp.RequestCtx) {
	var req createPersonRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	p := model.PersonCreateRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Company:   req.Company,
	}
	for _, ci := range req.ContactInfos {
		p.ContactInfos = append(p.ContactInfos, model.ContactInfoCreateRequest{
			Kind:    ci.Kind,
			Content: ci.Content,
		})
	}

	person, err := h.persons.Create(ctx, p)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, person)
}

func (h *ContactHandler) ListPersons(ctx *xhttp.RequestCtx) {
	var limit, offset int
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			offset = n
		}
	}

	items, total, err := h.persons.List(ctx, limit, offset)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, personListResponse{Items: items, Total: total})
}

func (h *ContactHandler) GetPerson(ctx *xhttp.RequestCtx) {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid person id")
		return
	}

	person, err := h.persons.Get(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrPersonNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, person)
}

func (h *ContactHandler) DeletePerson(ctx *xhttp.RequestCtx) {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid person id")
		return
	}

	if err := h.persons.Delete(ctx, id); err != nil {
		if errors.Is(err, services.ErrPersonNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}
	ctx.Response.SetStatusCode(204)
}

func (h *ContactHandler) AddContactInfo(ctx *xhttp.RequestCtx) {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid person id")
		return
	}

	var req createContactInfoRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	ci, err := h.persons.AddContactInfo(ctx, id, model.ContactInfoCreateRequest{
		Kind:    req.Kind,
		Content: req.Content,
	})
	if err != nil {
		if errors.Is(err, services.ErrPersonNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, ci)
}

func (h *ContactHandler) RemoveContactInfo(ctx *xhttp.RequestCtx) {
	personID, err := paramUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid person id")
		return
	}
	infoID, err := paramUUID(ctx, "infoId")
	if err != nil {
		writeError(ctx, 400, "invalid contact info id")
		return
	}

	if err := h.persons.RemoveContactInfo(ctx, personID, infoID); err != nil {
		if errors.Is(err, services.ErrContactInfoNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}
	ctx.Response.SetStatusCode(204)
}

func (h *ContactHandler) RequestReport(ctx *xhttp.RequestCtx) {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid person id")
		return
	}

	requestID, err := h.persons.RequestReport(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrPersonNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		if errors.Is(err, services.ErrNoLocationInfo) {
			writeError(ctx, 400, err.Error())
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 202, submitReportResponse{RequestID: requestID.String()})
}

func (h *ContactHandler) GetLocationStats(ctx *xhttp.RequestCtx) {
	location := query(ctx, "location")

	stats, err := h.locations.GetStats(ctx, location)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, stats)
}

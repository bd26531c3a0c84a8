package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/phonedir/contact-reports/internal/model"
	"github.com/phonedir/contact-reports/internal/services"
	xhttp "github.com/phonedir/contact-reports/pkg/http"
)

type ReportService interface {
	Submit(ctx context.Context, p model.ReportSubmitRequest) (uuid.UUID, error)
	List(ctx context.Context, f model.ReportFilter) ([]*model.Report, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Report, error)
}

type ReportHandler struct {
	svc ReportService
}

func RegisterReportRoutes(e *router.Group, h *ReportHandler) {
	e.POST("/reports", h.SubmitReport)
	e.GET("/reports", h.ListReports)
	e.GET("/reports/{id}", h.GetReport)
}

func NewReportHandler(reportService ReportService) *ReportHandler {
	return &ReportHandler{
		svc: reportService,
	}
}

type submitReportRequest struct {
	Location string `json:"location"`
}

type submitReportResponse struct {
	RequestID string `json:"requestId"`
}

type reportListResponse struct {
	Items []*model.Report `json:"items"`
	Total int64           `json:"total"`
}

/* --------------------------------- Routes ----------------------------------- */

// SubmitReport accepts a report request. The response only acknowledges the
// request; the report itself is created by the pipeline.
func (h *ReportHandler) SubmitReport(ctx *xhttp.RequestCtx) {
	var req submitReportRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	requestID, err := h.svc.Submit(ctx, model.ReportSubmitRequest{Location: req.Location})
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}

	writeJSON(ctx, 202, submitReportResponse{RequestID: requestID.String()})
}

func (h *ReportHandler) ListReports(ctx *xhttp.RequestCtx) {
	var f model.ReportFilter

	if v := query(ctx, "status"); v != "" {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
			if parts[i] != "" {
				f.Statuses = append(f.Statuses, model.ReportStatus(parts[i]))
			}
		}
	}
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Offset = n
		}
	}

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, reportListResponse{Items: items, Total: total})
}

func (h *ReportHandler) GetReport(ctx *xhttp.RequestCtx) {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid report id")
		return
	}

	report, err := h.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, report)
}

/* -------------------------------- Helpers ----------------------------------- */

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func paramUUID(ctx *xhttp.RequestCtx, name string) (uuid.UUID, error) {
	v, _ := ctx.UserValue(name).(string)
	return uuid.Parse(v)
}

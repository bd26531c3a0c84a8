package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/phonedir/contact-reports/internal/model"
	"github.com/phonedir/contact-reports/internal/repository"
	"github.com/phonedir/contact-reports/pkg/logger"
	"github.com/phonedir/contact-reports/pkg/prom"
)

var (
	ErrReportNotFound = errors.New("report not found")
)

type ReportRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Report, error)
	List(ctx context.Context, f model.ReportFilter) ([]*model.Report, int64, error) // results, totalCount
}

// Publisher puts an envelope on a stream. Satisfied by *queue.Queue.
type Publisher interface {
	PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error)
}

type ReportService struct {
	reportRepo ReportRepository
	requests   Publisher
}

func NewReportService(reportRepo ReportRepository, requests Publisher) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		requests:   requests,
	}
}

// Submit validates and publishes a report request. It returns the request
// id the caller can correlate with later; no report row exists yet when it
// returns, the pipeline creates one asynchronously.
func (s *ReportService) Submit(ctx context.Context, p model.ReportSubmitRequest) (uuid.UUID, error) {
	if err := p.Validate(); err != nil {
		return uuid.Nil, err
	}

	req := &model.ReportRequest{
		RequestID: uuid.New(),
		Location:  strings.TrimSpace(p.Location),
	}

	_, err := s.requests.PublishJSON(ctx, req, map[string]string{"type": "report-request"})
	if err != nil {
		return uuid.Nil, err
	}

	prom.IncReportRequestsPublished()
	logger.Info("Report request published", "request_id", req.RequestID.String(), "location", req.Location)

	return req.RequestID, nil
}

func (s *ReportService) List(ctx context.Context, f model.ReportFilter) ([]*model.Report, int64, error) {
	return s.reportRepo.List(ctx, f)
}

func (s *ReportService) Get(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return report, nil
}

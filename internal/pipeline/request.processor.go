package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	gateway "github.com/phonedir/contact-reports/internal/gateways"
	"github.com/phonedir/contact-reports/internal/model"
	"github.com/phonedir/contact-reports/internal/queue"
	"github.com/phonedir/contact-reports/pkg/logger"
	"github.com/phonedir/contact-reports/pkg/prom"
)

type ReportWriter interface {
	Create(ctx context.Context, report *model.Report) (*model.Report, bool, error) // report, created
}

type OutboxWriter interface {
	Create(ctx context.Context, m *model.OutboxMessage) (*model.OutboxMessage, error)
}

// RequestProcessor consumes report request envelopes: it makes the request
// durable as a Preparing report, fetches the location stats, and stages the
// result envelope in the outbox.
type RequestProcessor struct {
	reports      ReportWriter
	outbox       OutboxWriter
	stats        gateway.StatsProvider
	resultStream string
	preparingTTL time.Duration
}

func NewRequestProcessor(reports ReportWriter, outbox OutboxWriter, stats gateway.StatsProvider, resultStream string, preparingTTL time.Duration) *RequestProcessor {
	return &RequestProcessor{
		reports:      reports,
		outbox:       outbox,
		stats:        stats,
		resultStream: resultStream,
		preparingTTL: preparingTTL,
	}
}

func (p *RequestProcessor) GetType() string {
	return "report-request"
}

// Process handles one request envelope. A nil return acks the message;
// only the stats fetch is worth retrying through redelivery, and even that
// is left to the sweeper so a duplicate delivery never does double work.
func (p *RequestProcessor) Process(ctx context.Context, queueMessage *queue.Message) error {
	var req model.ReportRequest
	if err := json.Unmarshal(queueMessage.Data, &req); err != nil {
		logger.Error("Malformed report request, discarding", "error", err, "message_id", queueMessage.ID)
		return nil
	}

	location := strings.TrimSpace(req.Location)
	if location == "" {
		logger.Warn("Report request without location, discarding", "message_id", queueMessage.ID)
		return nil
	}

	now := time.Now().UTC()
	report := &model.Report{
		ID:          uuid.New(),
		RequestKey:  req.RequestID.String(),
		Location:    location,
		Status:      model.ReportStatusPreparing,
		RequestedAt: now,
		DeadlineAt:  now.Add(p.preparingTTL),
	}
	if req.RequestID == uuid.Nil {
		report.RequestKey = ""
	}

	created, isNew, err := p.reports.Create(ctx, report)
	if err != nil {
		logger.Error("Failed to create report", "error", err, "location", location)
		return err
	}
	if !isNew {
		prom.IncReportDuplicatesSkipped()
		logger.Info("Duplicate report request, skipping", "request_id", req.RequestID.String(), "report_id", created.ID.String())
		return nil
	}

	prom.IncReportsCreated()
	logger.Info("Report created", "report_id", created.ID.String(), "location", location)

	stats, err := p.stats.GetLocationStats(ctx, location)
	if err != nil {
		// The report stays Preparing; the sweeper fails it at its deadline.
		logger.Error("Stats fetch failed, report stays preparing", "error", err, "report_id", created.ID.String(), "location", location)
		return nil
	}

	result := &model.ReportResult{
		ReportID:         created.ID,
		Location:         location,
		PersonCount:      stats.PersonCount,
		PhoneNumberCount: stats.PhoneNumberCount,
	}

	payload, err := json.Marshal(result)
	if err != nil {
		logger.Error("Failed to marshal report result", "error", err, "report_id", created.ID.String())
		return nil
	}

	if _, err := p.outbox.Create(ctx, &model.OutboxMessage{
		Stream:  p.resultStream,
		Payload: payload,
	}); err != nil {
		logger.Error("Failed to stage report result", "error", err, "report_id", created.ID.String())
		return err
	}

	logger.Info("Report result staged", "report_id", created.ID.String(), "person_count", stats.PersonCount, "phone_number_count", stats.PhoneNumberCount)
	return nil
}

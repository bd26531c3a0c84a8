package pipeline

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/phonedir/contact-reports/internal/model"
	"github.com/phonedir/contact-reports/internal/queue"
	"github.com/phonedir/contact-reports/internal/repository"
	"github.com/phonedir/contact-reports/pkg/logger"
	"github.com/phonedir/contact-reports/pkg/prom"
)

type ReportCompleter interface {
	Complete(ctx context.Context, reportID uuid.UUID, detail *model.ReportDetail) error
}

// ResultProcessor consumes report result envelopes and finalizes the
// matching report. Results that match nothing, or match a report that is
// already terminal, are dropped without touching the store.
type ResultProcessor struct {
	reports ReportCompleter
}

func NewResultProcessor(reports ReportCompleter) *ResultProcessor {
	return &ResultProcessor{
		reports: reports,
	}
}

func (p *ResultProcessor) GetType() string {
	return "report-result"
}

func (p *ResultProcessor) Process(ctx context.Context, queueMessage *queue.Message) error {
	var result model.ReportResult
	if err := json.Unmarshal(queueMessage.Data, &result); err != nil {
		logger.Error("Malformed report result, discarding", "error", err, "message_id", queueMessage.ID)
		return nil
	}

	if result.ReportID == uuid.Nil {
		logger.Warn("Report result without report id, discarding", "message_id", queueMessage.ID)
		return nil
	}

	detail := &model.ReportDetail{
		Location:         result.Location,
		PersonCount:      result.PersonCount,
		PhoneNumberCount: result.PhoneNumberCount,
	}

	err := p.reports.Complete(ctx, result.ReportID, detail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Report result matches no report, discarding", "report_id", result.ReportID.String())
			return nil
		}
		if errors.Is(err, repository.ErrAlreadyTerminal) {
			logger.Info("Report already terminal, discarding result", "report_id", result.ReportID.String())
			return nil
		}
		logger.Error("Failed to complete report", "error", err, "report_id", result.ReportID.String())
		return err
	}

	prom.IncReportsCompleted()
	logger.Info("Report completed", "report_id", result.ReportID.String(), "person_count", result.PersonCount, "phone_number_count", result.PhoneNumberCount)
	return nil
}

package fixtures

import (
	"time"

	"github.com/google/uuid"
	"github.com/phonedir/contact-reports/internal/model"
)

func NewTestPersonCreateRequest(firstName, lastName string, infos ...model.ContactInfoCreateRequest) model.PersonCreateRequest {
	return model.PersonCreateRequest{
		FirstName:    firstName,
		LastName:     lastName,
		ContactInfos: infos,
	}
}

func LocationInfo(content string) model.ContactInfoCreateRequest {
	return model.ContactInfoCreateRequest{Kind: string(model.KindLocation), Content: content}
}

func PhoneInfo(content string) model.ContactInfoCreateRequest {
	return model.ContactInfoCreateRequest{Kind: string(model.KindPhoneNumber), Content: content}
}

func EmailInfo(content string) model.ContactInfoCreateRequest {
	return model.ContactInfoCreateRequest{Kind: string(model.KindEmailAddress), Content: content}
}

func NewTestReport(location string, status model.ReportStatus) *model.Report {
	return &model.Report{
		ID:          uuid.New(),
		Location:    location,
		Status:      status,
		RequestedAt: time.Now().UTC(),
		DeadlineAt:  time.Now().UTC().Add(10 * time.Minute),
	}
}

func NewTestReportRequest(location string) model.ReportRequest {
	return model.ReportRequest{
		RequestID: uuid.New(),
		Location:  location,
	}
}

var (
	ValidLocations = []string{
		"Ankara",
		"Izmir",
		"New York",
		"istanbul",
	}

	BlankLocations = []string{
		"",
		"   ",
		"\n\t",
	}
)

func ReportFilterByStatus(status model.ReportStatus) model.ReportFilter {
	return model.ReportFilter{
		Statuses: []model.ReportStatus{status},
		Limit:    50,
		Offset:   0,
	}
}

func ReportFilterWithPagination(limit, offset int) model.ReportFilter {
	return model.ReportFilter{
		Limit:  limit,
		Offset: offset,
	}
}

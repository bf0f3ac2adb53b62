// Package template provides chat reply rendering.
//
// 지원하는 변수 형식:
//
//	{{incident.id}}, {{incident.category}}, {{incident.description}},
//	{{incident.status}}, {{incident.assigned_to}}, {{incident.reported_at}}
package template

import (
	"strings"
	"time"

	"github.com/kube-rca/incident-chat/internal/model"
)

// ReportedAtLayout - 사건 카드에 표시되는 접수 시각 형식 (dd-mm-yyyy hh:mm)
const ReportedAtLayout = "02-01-2006 15:04"

// IncidentData - 템플릿 렌더링에 사용할 Incident 데이터
type IncidentData struct {
	ID          string
	Category    string
	Description string
	Status      string
	AssignedTo  string
	ReportedAt  time.Time
}

// IncidentDataFromRecord - IncidentRecord에서 IncidentData 생성
func IncidentDataFromRecord(rec model.IncidentRecord) IncidentData {
	return IncidentData{
		ID:          rec.IncidentID,
		Category:    rec.Category,
		Description: rec.Description,
		Status:      string(rec.Status),
		AssignedTo:  rec.AssignedTo,
		ReportedAt:  rec.ReportedAt,
	}
}

// RenderBody - 템플릿의 변수를 실제 값으로 치환
//
// incident가 nil이면 모든 변수는 빈 문자열로 치환됩니다.
func RenderBody(body string, incident *IncidentData) string {
	if incident == nil {
		return strings.NewReplacer(
			"{{incident.id}}", "",
			"{{incident.category}}", "",
			"{{incident.description}}", "",
			"{{incident.status}}", "",
			"{{incident.assigned_to}}", "",
			"{{incident.reported_at}}", "",
		).Replace(body)
	}

	reportedAt := ""
	if !incident.ReportedAt.IsZero() {
		reportedAt = incident.ReportedAt.Format(ReportedAtLayout)
	}
	return strings.NewReplacer(
		"{{incident.id}}", incident.ID,
		"{{incident.category}}", incident.Category,
		"{{incident.description}}", incident.Description,
		"{{incident.status}}", incident.Status,
		"{{incident.assigned_to}}", incident.AssignedTo,
		"{{incident.reported_at}}", reportedAt,
	).Replace(body)
}

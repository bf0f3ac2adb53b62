// Slack 사건 접수 알림 메시지 관련 메서드 정의

package client

import (
	"context"
	"fmt"

	"github.com/kube-rca/incident-chat/internal/model"
	tmpl "github.com/kube-rca/incident-chat/internal/template"
)

const (
	// 사건 접수 알림 본문 템플릿
	incidentNotificationTemplate = "{{incident.description}}"
	// 신규 사건은 항상 Reported 상태이므로 색상은 하나뿐이다.
	incidentNotificationColor = "#dc3545" // red
)

// NotifyIncident posts a summary of a newly reported incident to the team channel.
func (c *SlackClient) NotifyIncident(ctx context.Context, rec model.IncidentRecord) error {
	if !c.IsConfigured() {
		return fmt.Errorf("slack bot token or channel ID not configured")
	}

	data := tmpl.IncidentDataFromRecord(rec)
	fields := []SlackField{
		{Title: "Category", Value: rec.Category, Short: true},
		{Title: "Status", Value: string(rec.Status), Short: true},
		{Title: "Assigned", Value: rec.AssignedTo, Short: true},
		{Title: "Reported On", Value: tmpl.RenderBody("{{incident.reported_at}}", &data), Short: true},
	}

	msg := SlackMessage{
		Channel: c.channelID,
		Attachments: []SlackAttachment{
			{
				Color:  incidentNotificationColor,
				Title:  fmt.Sprintf("🆕 [%s] %s", rec.IncidentID, rec.Category),
				Text:   tmpl.RenderBody(incidentNotificationTemplate, &data),
				Fields: fields,
				Footer: "incident-chat",
				Ts:     rec.ReportedAt.Unix(),
			},
		},
	}

	_, err := c.send(ctx, msg)
	return err
}

package template

import (
	"strconv"
	"strings"

	"github.com/kube-rca/incident-chat/internal/model"
)

// Fixed reply fragments.
const (
	MainMenu = "🏠 **Main Menu**\n\n" +
		"1️⃣ Report Incident\n" +
		"2️⃣ View My Incidents\n" +
		"3️⃣ RCA Assistance\n" +
		"4️⃣ FAQs & Help\n\n" +
		"_Reply with a number OR ask any question_"

	CategoryPrompt    = "📂 **Enter Incident Category**"
	DescriptionPrompt = "📝 **Enter Incident Description**"
	ViewIDPrompt      = "🔍 **Enter Incident ID**"
	RCAPrompt         = "🧠 **Describe the incident for RCA**"

	AnswerHeader    = "ℹ️ **Here's what I found:**"
	RCAHeader       = "🤖 **AI RCA Suggestions**"
	RCASubmitted    = "✅ RCA submitted"
	IncidentMissing = "❌ Incident not found"
	FAQHeader       = "❓ **FAQs**"

	IncidentCreatedTemplate = "✅ **Incident Created Successfully**\n\n" +
		"🆔 Incident ID: `{{incident.id}}`"

	IncidentCardTemplate = "🧾 **Incident ID:** `{{incident.id}}`\n\n" +
		"• Category: {{incident.category}}\n" +
		"• Status: {{incident.status}}\n" +
		"• Assigned: {{incident.assigned_to}}\n" +
		"• Reported On: {{incident.reported_at}}"
)

var keycaps = []string{"0️⃣", "1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣", "🔟"}

// Keycap returns the emoji label for a menu index, falling back to "n." past ten.
func Keycap(n int) string {
	if n >= 0 && n < len(keycaps) {
		return keycaps[n]
	}
	return strconv.Itoa(n) + "."
}

// FAQList renders the numbered FAQ prompts, 1-based.
func FAQList(prompts []string) string {
	var sb strings.Builder
	sb.WriteString(FAQHeader)
	sb.WriteString("\n")
	for i, prompt := range prompts {
		sb.WriteString("\n")
		sb.WriteString(Keycap(i + 1))
		sb.WriteString(" ")
		sb.WriteString(prompt)
	}
	return sb.String()
}

// IncidentCard renders the detail card shown for a viewed incident.
func IncidentCard(rec model.IncidentRecord) string {
	data := IncidentDataFromRecord(rec)
	return RenderBody(IncidentCardTemplate, &data)
}

// IncidentCreated renders the confirmation shown after a report is filed.
func IncidentCreated(rec model.IncidentRecord) string {
	data := IncidentDataFromRecord(rec)
	return RenderBody(IncidentCreatedTemplate, &data)
}

// Join separates reply sections with a blank line, skipping empty ones.
func Join(sections ...string) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

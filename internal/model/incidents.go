package model

import "time"

// ============================================================================
// Incident 모델 (채팅으로 접수된 사건 단위)
// ============================================================================

// IncidentStatus - 사건 진행 상태
//
// 접수 시점에는 항상 Reported 이며 이후 전이는 구현되어 있지 않다.
// 나머지 값은 FAQ 안내 문구에서만 쓰인다.
type IncidentStatus string

const (
	IncidentStatusReported   IncidentStatus = "Reported"
	IncidentStatusInProgress IncidentStatus = "In Progress"
	IncidentStatusRCAPending IncidentStatus = "RCA Pending"
	IncidentStatusClosed     IncidentStatus = "Closed"
)

// DefaultAssignee - 신규 사건의 기본 담당 팀
const DefaultAssignee = "Safety Team"

// IncidentRecord - 보고 흐름이 끝나면 한 번 생성되고 이후 변경되지 않는 사건 기록
type IncidentRecord struct {
	IncidentID  string         `json:"incident_id"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Status      IncidentStatus `json:"status"`
	AssignedTo  string         `json:"assigned_to"`
	ReportedAt  time.Time      `json:"reported_at"`
}

// IncidentListEnvelope - 세션별 사건 목록 응답
type IncidentListEnvelope struct {
	Status string           `json:"status"`
	Data   []IncidentRecord `json:"data"`
}

package model

// Step - 대화 단계. 다음 입력을 어떻게 해석할지 결정한다.
type Step string

const (
	StepMainMenu            Step = "MAIN_MENU"
	StepAwaitingCategory    Step = "AWAITING_CATEGORY"
	StepAwaitingDescription Step = "AWAITING_DESCRIPTION"
	StepAwaitingViewID      Step = "AWAITING_VIEW_ID"
	StepAwaitingRCAInput    Step = "AWAITING_RCA_INPUT"
	StepFAQMenu             Step = "FAQ_MENU"
)

// Steps lists every step in declaration order.
var Steps = []Step{
	StepMainMenu,
	StepAwaitingCategory,
	StepAwaitingDescription,
	StepAwaitingViewID,
	StepAwaitingRCAInput,
	StepFAQMenu,
}

// Valid reports whether s is one of the enumerated steps.
func (s Step) Valid() bool {
	for _, step := range Steps {
		if s == step {
			return true
		}
	}
	return false
}

// Role - transcript 메시지 작성자
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// AskMode - 질의응답 서비스 호출 모드
type AskMode string

const (
	AskModeGeneral   AskMode = "general"
	AskModeRootCause AskMode = "root_cause_analysis"
)

type TranscriptEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type ChatMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

type ChatReplyResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
	Step      Step   `json:"step"`
	Reply     string `json:"reply"`
}

type ChatSessionResponse struct {
	Status     string            `json:"status"`
	SessionID  string            `json:"session_id"`
	Step       Step              `json:"step"`
	Transcript []TranscriptEntry `json:"transcript"`
}

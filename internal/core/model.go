package core

import (
	"time"
)

// ClassificationLabel is the primary category assigned to an email
type ClassificationLabel string

const (
	LabelSpam       ClassificationLabel = "spam"
	LabelAIPitch    ClassificationLabel = "ai_pitch"
	LabelHumanPitch ClassificationLabel = "human_pitch"
	LabelWarmIntro  ClassificationLabel = "warm_intro"
	LabelInternal   ClassificationLabel = "internal"
	LabelOther      ClassificationLabel = "other"
)

// ClassificationLabels lists every accepted label, in schema order
var ClassificationLabels = []ClassificationLabel{
	LabelSpam, LabelAIPitch, LabelHumanPitch, LabelWarmIntro, LabelInternal, LabelOther,
}

// Valid reports whether l is one of the known labels
func (l ClassificationLabel) Valid() bool {
	for _, known := range ClassificationLabels {
		if l == known {
			return true
		}
	}
	return false
}

// SuggestedAction is the next step recommended for an email
type SuggestedAction string

const (
	ActionDelete          SuggestedAction = "delete"
	ActionArchive         SuggestedAction = "archive"
	ActionLabelOnly       SuggestedAction = "label_only"
	ActionDraftResponse   SuggestedAction = "draft_response"
	ActionReviewManually  SuggestedAction = "review_manually"
	ActionForwardToAltbot SuggestedAction = "forward_to_altbot"
)

// SuggestedActions lists every accepted action, in schema order
var SuggestedActions = []SuggestedAction{
	ActionDelete, ActionArchive, ActionLabelOnly, ActionDraftResponse, ActionReviewManually, ActionForwardToAltbot,
}

// Valid reports whether a is one of the known actions
func (a SuggestedAction) Valid() bool {
	for _, known := range SuggestedActions {
		if a == known {
			return true
		}
	}
	return false
}

// EmailRequest is the inbound email to classify
type EmailRequest struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	Sender  string `json:"sender"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ClassificationResult is the decoded model verdict for one email
type ClassificationResult struct {
	ID                    string              `json:"id"`
	Classification        ClassificationLabel `json:"classification"`
	HumanProbabilityScore int                 `json:"real_human_probability_score"`
	Summary               string              `json:"summary"`
	Reasoning             string              `json:"reasoning"`
	SuggestedAction       SuggestedAction     `json:"suggested_action"`
}

// ClassificationResponse is the result returned to callers
type ClassificationResponse struct {
	ID                    string              `json:"id"`
	ClassificationLogID   *string             `json:"classificationLogId"`
	Classification        ClassificationLabel `json:"classification"`
	HumanProbabilityScore int                 `json:"real_human_probability_score"`
	Summary               string              `json:"summary"`
	Reasoning             string              `json:"reasoning"`
	SuggestedAction       SuggestedAction     `json:"suggested_action"`
}

// ClassificationRecord is one row of the email_classifications log
type ClassificationRecord struct {
	ID              string
	GmailMessageID  string
	UserID          string
	ReceivedAt      time.Time
	Classification  ClassificationLabel
	ConfidenceScore int
	LLMReasoning    string
	LLMSummary      string
	SuggestedAction SuggestedAction
	ActionTaken     SuggestedAction
}

// ToolRequest is a single forced tool call sent to a model provider
type ToolRequest struct {
	SystemPrompt string
	UserPrompt   string
	Tool         ToolSpec
}

// ToolSpec describes the function the model must call
type ToolSpec struct {
	Name        string
	Description string
	Fields      []ToolField
}

// ToolField is one property of a tool's argument object. All fields are required.
type ToolField struct {
	Name        string
	Type        string // "string" or "integer"
	Description string
	Enum        []string
}

// ToolCall is a function call returned by the model
type ToolCall struct {
	Name      string
	Arguments []byte
}

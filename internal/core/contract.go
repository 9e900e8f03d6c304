package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ClassificationToolName is the only function the model is allowed to call
const ClassificationToolName = "classify_email_details"

const systemPrompt = "You are an expert email classification system. Analyze the provided email details " +
	"(sender, subject, body excerpt) and classify it using the '" + ClassificationToolName + "' tool. " +
	"Your primary goals are to determine the email's category, estimate the probability it was written " +
	"by a human (0-100), provide a concise summary, explain your reasoning, and suggest the most " +
	"appropriate next action (e.g., delete, archive, draft_response)."

const userPromptFormat = "Please classify this email:\nSender: %s\nSubject: %s\nBody Excerpt (first %d chars):\n%s"

// argument field names as they appear in the tool schema
const (
	fieldClassification  = "classification"
	fieldScore           = "real_human_probability_score"
	fieldSummary         = "summary"
	fieldReasoning       = "reasoning"
	fieldSuggestedAction = "suggested_action"
)

// ClassificationTool returns the tool schema shared by every provider
func ClassificationTool() ToolSpec {
	labels := make([]string, len(ClassificationLabels))
	for i, l := range ClassificationLabels {
		labels[i] = string(l)
	}
	actions := make([]string, len(SuggestedActions))
	for i, a := range SuggestedActions {
		actions[i] = string(a)
	}

	return ToolSpec{
		Name: ClassificationToolName,
		Description: "Classify an email based on its sender, subject, and body content, assessing its nature, " +
			"human origin probability, and suggesting a next action.",
		Fields: []ToolField{
			{
				Name:        fieldClassification,
				Type:        "string",
				Description: "The primary category of the email.",
				Enum:        labels,
			},
			{
				Name:        fieldScore,
				Type:        "integer",
				Description: "An integer score (0-100) indicating the likelihood the email was written by a human, not AI or a template.",
			},
			{
				Name:        fieldSummary,
				Type:        "string",
				Description: "A concise one-sentence summary of the email's core message or purpose.",
			},
			{
				Name:        fieldReasoning,
				Type:        "string",
				Description: "Brief rationale for the classification and probability score.",
			},
			{
				Name:        fieldSuggestedAction,
				Type:        "string",
				Description: "The recommended next step for handling this email.",
				Enum:        actions,
			},
		},
	}
}

// JSONSchema renders the tool's arguments as a JSON Schema object
func (t ToolSpec) JSONSchema() map[string]interface{} {
	properties := make(map[string]interface{}, len(t.Fields))
	required := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		prop := map[string]interface{}{
			"type":        f.Type,
			"description": f.Description,
		}
		if len(f.Enum) > 0 {
			prop["enum"] = f.Enum
		}
		properties[f.Name] = prop
		required = append(required, f.Name)
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// BuildToolRequest assembles the prompt pair for one email
func BuildToolRequest(req *EmailRequest, excerpt string, maxChars int) *ToolRequest {
	return &ToolRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   fmt.Sprintf(userPromptFormat, req.Sender, req.Subject, maxChars, excerpt),
		Tool:         ClassificationTool(),
	}
}

// DecodeClassification validates raw tool arguments against the schema.
// Missing or invalid fields fail; nothing is defaulted or clamped.
func DecodeClassification(id string, args []byte) (*ClassificationResult, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(args, &obj); err != nil {
		return nil, &UpstreamDecodeError{Reason: "arguments are not valid JSON", Err: err}
	}
	if obj == nil {
		return nil, &UpstreamDecodeError{Reason: "arguments are not a JSON object"}
	}

	label, err := stringField(obj, fieldClassification)
	if err != nil {
		return nil, err
	}
	if !ClassificationLabel(label).Valid() {
		return nil, &UpstreamDecodeError{Field: fieldClassification, Reason: fmt.Sprintf("unknown label %q", label)}
	}

	score, err := scoreField(obj)
	if err != nil {
		return nil, err
	}

	summary, err := stringField(obj, fieldSummary)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(summary) == "" {
		return nil, &UpstreamDecodeError{Field: fieldSummary, Reason: "must not be empty"}
	}

	reasoning, err := stringField(obj, fieldReasoning)
	if err != nil {
		return nil, err
	}

	action, err := stringField(obj, fieldSuggestedAction)
	if err != nil {
		return nil, err
	}
	if !SuggestedAction(action).Valid() {
		return nil, &UpstreamDecodeError{Field: fieldSuggestedAction, Reason: fmt.Sprintf("unknown action %q", action)}
	}

	return &ClassificationResult{
		ID:                    id,
		Classification:        ClassificationLabel(label),
		HumanProbabilityScore: score,
		Summary:               summary,
		Reasoning:             reasoning,
		SuggestedAction:       SuggestedAction(action),
	}, nil
}

func stringField(obj map[string]json.RawMessage, name string) (string, error) {
	raw, ok := obj[name]
	if !ok {
		return "", &UpstreamDecodeError{Field: name, Reason: "missing"}
	}
	s, err := decodeString(raw)
	if err != nil {
		return "", &UpstreamDecodeError{Field: name, Reason: "must be a string", Err: err}
	}
	return s, nil
}

func scoreField(obj map[string]json.RawMessage) (int, error) {
	raw, ok := obj[fieldScore]
	if !ok {
		return 0, &UpstreamDecodeError{Field: fieldScore, Reason: "missing"}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return 0, &UpstreamDecodeError{Field: fieldScore, Reason: "malformed value", Err: err}
	}
	num, ok := v.(json.Number)
	if !ok {
		return 0, &UpstreamDecodeError{Field: fieldScore, Reason: "must be an integer"}
	}
	score, err := strconv.Atoi(num.String())
	if err != nil {
		return 0, &UpstreamDecodeError{Field: fieldScore, Reason: fmt.Sprintf("must be an integer, got %s", num), Err: err}
	}
	if score < 0 || score > 100 {
		return 0, &UpstreamDecodeError{Field: fieldScore, Reason: fmt.Sprintf("%d is outside 0-100", score)}
	}
	return score, nil
}

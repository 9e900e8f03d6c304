package core

import (
	"encoding/json"
	"errors"
	"strings"
)

var errNotString = errors.New("value is not a JSON string")

// requestFields are the mandatory string fields of an EmailRequest, in report order
var requestFields = []string{"id", "userId", "sender", "subject", "body"}

// legacy key names accepted for compatibility with older callers
var requestFieldAliases = map[string]string{
	"userId": "user_id",
}

// ParseEmailRequest decodes and validates a raw /classify payload.
// All five fields must be JSON strings; id and userId must also be non-blank.
func ParseEmailRequest(raw []byte) (*EmailRequest, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "body", Reason: "request body is not a JSON object"}}}
	}

	values := make(map[string]string, len(requestFields))
	var fieldErrs []FieldError
	for _, name := range requestFields {
		value, ok := obj[name]
		if !ok {
			if alias, hasAlias := requestFieldAliases[name]; hasAlias {
				value, ok = obj[alias]
			}
		}
		if !ok {
			fieldErrs = append(fieldErrs, FieldError{Field: name, Reason: "field required"})
			continue
		}

		s, err := decodeString(value)
		if err != nil {
			fieldErrs = append(fieldErrs, FieldError{Field: name, Reason: "must be a string"})
			continue
		}
		values[name] = s
	}

	for _, name := range []string{"id", "userId"} {
		if s, ok := values[name]; ok && strings.TrimSpace(s) == "" {
			fieldErrs = append(fieldErrs, FieldError{Field: name, Reason: "must not be empty"})
		}
	}

	if len(fieldErrs) > 0 {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	return &EmailRequest{
		ID:      values["id"],
		UserID:  values["userId"],
		Sender:  values["sender"],
		Subject: values["subject"],
		Body:    values["body"],
	}, nil
}

// decodeString accepts only a JSON string literal; null is rejected
func decodeString(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, `"`) {
		return "", errNotString
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

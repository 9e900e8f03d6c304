package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mikey/email-classifier/internal/core"
	"go.uber.org/zap"
)

// SupabaseStore writes classification records through the Supabase REST (PostgREST) API
type SupabaseStore struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// supabaseRow mirrors the email_classifications columns
type supabaseRow struct {
	ID              json.RawMessage `json:"id,omitempty"`
	GmailMessageID  string          `json:"gmail_message_id"`
	UserID          string          `json:"user_id"`
	ReceivedAt      string          `json:"received_at"`
	Classification  string          `json:"classification"`
	ConfidenceScore int             `json:"confidence_score"`
	LLMReasoning    string          `json:"llm_reasoning"`
	LLMSummary      string          `json:"llm_summary"`
	SuggestedAction string          `json:"suggested_action"`
	ActionTaken     string          `json:"action_taken"`
}

// NewSupabaseStore creates a store for the given project URL and service-role key
func NewSupabaseStore(projectURL, serviceRoleKey string, timeout time.Duration, logger *zap.Logger) (*SupabaseStore, error) {
	if projectURL == "" || serviceRoleKey == "" {
		return nil, fmt.Errorf("supabase URL and service role key are required")
	}
	if _, err := url.ParseRequestURI(projectURL); err != nil {
		return nil, fmt.Errorf("invalid supabase URL: %w", err)
	}

	return &SupabaseStore{
		baseURL:    strings.TrimRight(projectURL, "/") + "/rest/v1/" + TableName,
		apiKey:     serviceRoleKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Insert posts a new row and returns the id generated by the database
func (s *SupabaseStore) Insert(ctx context.Context, record *core.ClassificationRecord) (string, error) {
	row := supabaseRow{
		GmailMessageID:  record.GmailMessageID,
		UserID:          record.UserID,
		ReceivedAt:      record.ReceivedAt.UTC().Format(time.RFC3339Nano),
		Classification:  string(record.Classification),
		ConfidenceScore: record.ConfidenceScore,
		LLMReasoning:    record.LLMReasoning,
		LLMSummary:      record.LLMSummary,
		SuggestedAction: string(record.SuggestedAction),
		ActionTaken:     string(record.ActionTaken),
	}

	jsonData, err := json.Marshal(row)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"?select=id", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	var inserted supabaseRow
	if err := s.do(req, &inserted); err != nil {
		return "", err
	}

	id := rawID(inserted.ID)
	if id == "" {
		s.logger.Warn("Supabase insert succeeded without returning an id")
	}
	return id, nil
}

// Get fetches a row by id
func (s *SupabaseStore) Get(ctx context.Context, id string) (*core.ClassificationRecord, error) {
	query := url.Values{}
	query.Set("id", "eq."+id)
	query.Set("select", "*")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.setHeaders(req)

	var row supabaseRow
	if err := s.do(req, &row); err != nil {
		return nil, err
	}

	receivedAt, err := time.Parse(time.RFC3339Nano, row.ReceivedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse received_at: %w", err)
	}

	return &core.ClassificationRecord{
		ID:              rawID(row.ID),
		GmailMessageID:  row.GmailMessageID,
		UserID:          row.UserID,
		ReceivedAt:      receivedAt.UTC(),
		Classification:  core.ClassificationLabel(row.Classification),
		ConfidenceScore: row.ConfidenceScore,
		LLMReasoning:    row.LLMReasoning,
		LLMSummary:      row.LLMSummary,
		SuggestedAction: core.SuggestedAction(row.SuggestedAction),
		ActionTaken:     core.SuggestedAction(row.ActionTaken),
	}, nil
}

// Close releases idle connections
func (s *SupabaseStore) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

func (s *SupabaseStore) setHeaders(req *http.Request) {
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	// single-object responses instead of arrays
	req.Header.Set("Accept", "application/vnd.pgrst.object+json")
}

func (s *SupabaseStore) do(req *http.Request, out interface{}) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotAcceptable && req.Method == http.MethodGet {
		return core.ErrRecordNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("supabase request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// rawID accepts both string (uuid) and numeric (bigserial) primary keys
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/email-classifier/internal/core"
)

func TestParseEmailRequest(t *testing.T) {
	req, err := core.ParseEmailRequest([]byte(`{"id":"m1","userId":"u1","sender":"a@b.c","subject":"Hi","body":""}`))
	require.NoError(t, err)
	assert.Equal(t, &core.EmailRequest{ID: "m1", UserID: "u1", Sender: "a@b.c", Subject: "Hi", Body: ""}, req)
}

func TestParseEmailRequestAcceptsUserIDAlias(t *testing.T) {
	req, err := core.ParseEmailRequest([]byte(`{"id":"m1","user_id":"u1","sender":"","subject":"","body":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, "u1", req.UserID)
}

func TestParseEmailRequestRejects(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"not json", `nope`, []string{"body"}},
		{"json array", `[1,2]`, []string{"body"}},
		{"json null", `null`, []string{"body"}},
		{"missing fields", `{"id":"m1"}`, []string{"userId", "sender", "subject", "body"}},
		{"null field", `{"id":"m1","userId":"u1","sender":null,"subject":"","body":""}`, []string{"sender"}},
		{"number field", `{"id":7,"userId":"u1","sender":"","subject":"","body":""}`, []string{"id"}},
		{"blank ids", `{"id":" ","userId":"","sender":"","subject":"","body":""}`, []string{"id", "userId"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := core.ParseEmailRequest([]byte(tt.body))
			require.Error(t, err)

			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr))
			got := make([]string, 0, len(vErr.Fields))
			for _, f := range vErr.Fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

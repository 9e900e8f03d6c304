package mailparse

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
	"github.com/mikey/email-classifier/internal/core"
)

// Message is the subset of an RFC 5322 message needed for classification
type Message struct {
	MessageID string
	From      string
	To        []string
	Subject   string
	Body      string
}

// Parse reads a raw message and extracts its headers and text content.
// text/plain parts are preferred; text/html is used only when no plain part exists.
// Parts in unknown charsets are kept undecoded.
func Parse(r io.Reader) (*Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	defer mr.Close()

	msg := &Message{}
	h := mr.Header

	if id, err := h.MessageID(); err == nil {
		msg.MessageID = id
	}
	if subject, err := h.Subject(); err == nil {
		msg.Subject = subject
	} else {
		msg.Subject = h.Get("Subject")
	}
	if from, err := h.Text("From"); err == nil {
		msg.From = from
	} else {
		msg.From = h.Get("From")
	}
	if to, err := h.AddressList("To"); err == nil {
		for _, addr := range to {
			msg.To = append(msg.To, addr.Address)
		}
	}

	var plain, html bytes.Buffer
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			if plain.Len() > 0 || html.Len() > 0 {
				break
			}
			return nil, fmt.Errorf("failed to read message part: %w", err)
		}

		inline, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := inline.ContentType()

		var dst *bytes.Buffer
		switch contentType {
		case "text/plain", "":
			dst = &plain
		case "text/html":
			dst = &html
		default:
			continue
		}

		data, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		if dst.Len() > 0 {
			dst.WriteString("\n")
		}
		dst.Write(data)
	}

	switch {
	case plain.Len() > 0:
		msg.Body = plain.String()
	case html.Len() > 0:
		msg.Body = html.String()
	}
	msg.Body = strings.TrimSpace(msg.Body)

	return msg, nil
}

// Request builds a classification request for the message. A random id is
// used when the message has no Message-Id.
func (m *Message) Request(userID string) *core.EmailRequest {
	id := m.MessageID
	if id == "" {
		id = uuid.NewString()
	}
	return &core.EmailRequest{
		ID:      id,
		UserID:  userID,
		Sender:  m.From,
		Subject: m.Subject,
		Body:    m.Body,
	}
}

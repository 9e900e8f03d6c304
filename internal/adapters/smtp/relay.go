package smtp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/mailparse"
	"go.uber.org/zap"
)

const (
	HeaderClassification   = "X-Email-Classification"
	HeaderHumanProbability = "X-Human-Probability"
	HeaderSuggestedAction  = "X-Suggested-Action"
	HeaderError            = "X-Classification-Error"
)

// Relay is an SMTP content filter: it accepts mail, classifies it, adds
// classification headers and hands the message on to the next hop
type Relay struct {
	service         *core.ClassificationService
	logger          *zap.Logger
	listenAddr      string
	nextHopAddr     string
	defaultUserID   string
	classifyTimeout time.Duration
	server          *smtp.Server
	deliver         func(from string, recipients []string, data []byte) error
}

// NewRelay creates a new SMTP relay
func NewRelay(
	service *core.ClassificationService,
	logger *zap.Logger,
	listenAddr string,
	nextHopAddr string,
	defaultUserID string,
	classifyTimeout time.Duration,
) *Relay {
	r := &Relay{
		service:         service,
		logger:          logger,
		listenAddr:      listenAddr,
		nextHopAddr:     nextHopAddr,
		defaultUserID:   defaultUserID,
		classifyTimeout: classifyTimeout,
	}
	r.deliver = r.sendToNextHop
	return r
}

// Start starts the SMTP listener
func (r *Relay) Start() error {
	r.server = smtp.NewServer(&backend{relay: r})
	r.server.Addr = r.listenAddr
	r.server.Domain = "localhost"
	r.server.ReadTimeout = 30 * time.Second
	r.server.WriteTimeout = 30 * time.Second
	r.server.MaxMessageBytes = 30 * 1024 * 1024
	r.server.MaxRecipients = 50

	ln, err := net.Listen("tcp", r.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", r.listenAddr, err)
	}

	r.logger.Info("SMTP relay starting",
		zap.String("address", ln.Addr().String()),
		zap.String("next_hop", r.nextHopAddr))

	go func() {
		if err := r.server.Serve(ln); err != nil && err != smtp.ErrServerClosed {
			r.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the SMTP listener
func (r *Relay) Stop() error {
	if r.server != nil {
		return r.server.Close()
	}
	return nil
}

// process classifies one message and returns it with classification headers
// prepended. Classification problems are reported in a header and never fail
// delivery.
func (r *Relay) process(sender string, recipients []string, raw []byte) []byte {
	userID := r.defaultUserID
	if userID == "" && len(recipients) > 0 {
		userID = recipients[0]
	}

	msg, err := mailparse.Parse(bytes.NewReader(raw))
	if err != nil {
		r.logger.Warn("Failed to parse message", zap.Error(err), zap.String("sender", sender))
		return withHeaders(raw, errorHeaders(err))
	}
	if msg.From == "" {
		msg.From = sender
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.classifyTimeout)
	defer cancel()

	resp, err := r.service.Classify(ctx, msg.Request(userID))
	if err != nil {
		r.logger.Warn("Failed to classify relayed message",
			zap.Error(err),
			zap.String("sender", sender),
			zap.String("message_id", msg.MessageID))
		return withHeaders(raw, errorHeaders(err))
	}

	return withHeaders(raw, resultHeaders(resp))
}

func resultHeaders(resp *core.ClassificationResponse) [][2]string {
	return [][2]string{
		{HeaderClassification, string(resp.Classification)},
		{HeaderHumanProbability, strconv.Itoa(resp.HumanProbabilityScore)},
		{HeaderSuggestedAction, string(resp.SuggestedAction)},
	}
}

func errorHeaders(err error) [][2]string {
	return [][2]string{{HeaderError, err.Error()}}
}

// withHeaders prepends header fields to a raw message. Values are folded onto
// a single line.
func withHeaders(raw []byte, headers [][2]string) []byte {
	var buf bytes.Buffer
	for _, h := range headers {
		value := strings.Join(strings.Fields(h[1]), " ")
		fmt.Fprintf(&buf, "%s: %s\r\n", h[0], value)
	}
	buf.Write(raw)
	return buf.Bytes()
}

// sendToNextHop relays the message using go-smtp
func (r *Relay) sendToNextHop(from string, recipients []string, data []byte) error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", r.nextHopAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to next hop: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(from, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := 0
	for _, rcpt := range recipients {
		if err := c.Rcpt(rcpt, nil); err != nil {
			r.logger.Warn("RCPT TO failed for recipient", zap.String("recipient", rcpt), zap.Error(err))
			continue
		}
		accepted++
	}
	if accepted == 0 {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		r.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

type backend struct {
	relay *Relay
}

func (b *backend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &session{relay: b.relay}, nil
}

type session struct {
	relay      *Relay
	sender     string
	recipients []string
}

func (s *session) Reset() {
	s.sender = ""
	s.recipients = nil
}

func (s *session) Logout() error {
	return nil
}

func (s *session) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *session) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

func (s *session) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.relay.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	out := s.relay.process(s.sender, s.recipients, raw)
	if err := s.relay.deliver(s.sender, s.recipients, out); err != nil {
		s.relay.logger.Error("Failed to relay message", zap.Error(err), zap.String("sender", s.sender))
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 4, 0},
			Message:      "Temporary failure relaying message",
		}
	}
	return nil
}

package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/citewatch/citewatch/internal/domain"
)

// maxEmailPublications caps the gained-publications table in the email body.
const maxEmailPublications = 20

// EmailService sends citation-gain summaries over SMTP with an implicit-TLS
// connection (port 465 style).
type EmailService struct {
	log    zerolog.Logger
	config *domain.Config
}

// NewEmailService creates a new email notification service
func NewEmailService(log zerolog.Logger, config *domain.Config) *EmailService {
	return &EmailService{
		log:    log.With().Str("module", "notification").Str("type", "email").Logger(),
		config: config,
	}
}

// SendDelta renders and sends the notification email. Missing credentials
// skip the email with a warning rather than failing the run.
func (s *EmailService) SendDelta(ctx context.Context, delta domain.Delta, current *domain.Snapshot) error {
	if s.config.SenderEmail == "" || s.config.SenderPassword == "" {
		s.log.Warn().Msg("Email credentials not configured, skipping email notification")
		return nil
	}
	if s.config.RecipientEmail == "" {
		s.log.Warn().Msg("No recipient configured, skipping email notification")
		return nil
	}

	subject := buildSubject(delta, current)
	plain := s.buildPlainBody(delta, current)
	html, err := s.buildHTMLBody(delta, current)
	if err != nil {
		return errors.Wrap(err, "failed to render email body")
	}

	msg := buildMessage(s.config.SenderEmail, s.config.RecipientEmail, subject, plain, html)

	s.log.Info().Str("recipient", s.config.RecipientEmail).Msg("Sending email notification..")
	if err := s.send(ctx, msg); err != nil {
		return errors.Wrap(err, "failed to send email")
	}

	s.log.Info().Msg("Email sent successfully")
	return nil
}

func buildSubject(delta domain.Delta, current *domain.Snapshot) string {
	plural := "s"
	if delta.TotalDelta == 1 {
		plural = ""
	}
	return fmt.Sprintf("🎉 +%d New Citation%s — Now at %d Total!", delta.TotalDelta, plural, current.TotalCitations)
}

func (s *EmailService) buildPlainBody(delta domain.Delta, current *domain.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Congratulations, %s!\r\n\r\n", current.Name)
	fmt.Fprintf(&b, "Your Google Scholar profile has received +%d new citation(s).\r\n", delta.TotalDelta)
	fmt.Fprintf(&b, "Total citations: %d\r\n", current.TotalCitations)
	fmt.Fprintf(&b, "h-index: %d\r\n", current.HIndex)
	fmt.Fprintf(&b, "i10-index: %d\r\n\r\n", current.I10Index)

	if len(delta.Publications) > 0 {
		b.WriteString("Papers with new citations:\r\n")
		for i, p := range delta.Publications {
			if i == maxEmailPublications {
				break
			}
			fmt.Fprintf(&b, "  +%d  %s (%d -> %d)\r\n", p.Gained, p.Title, p.PreviousCount, p.CurrentCount)
		}
		b.WriteString("\r\n")
	}

	fmt.Fprintf(&b, "View your profile: %s\r\n", s.config.ScholarURL())
	return b.String()
}

// buildMessage assembles a multipart/alternative MIME message with plain and
// HTML parts.
func buildMessage(from, to, subject, plain, html string) []byte {
	const boundary = "citewatch-boundary-4f2a1c"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(plain)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

// send delivers the message over an implicit-TLS SMTP connection.
func (s *EmailService) send(ctx context.Context, msg []byte) error {
	addr := net.JoinHostPort(s.config.SMTPHost, strconv.Itoa(s.config.SMTPPort))

	dialer := &tls.Dialer{Config: &tls.Config{ServerName: s.config.SMTPHost}}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "failed to dial %s", addr)
	}

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "failed to create smtp client")
	}
	defer client.Close()

	auth := smtp.PlainAuth("", s.config.SenderEmail, s.config.SenderPassword, s.config.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return errors.Wrap(err, "smtp auth failed")
	}
	if err := client.Mail(s.config.SenderEmail); err != nil {
		return errors.Wrap(err, "smtp MAIL failed")
	}
	if err := client.Rcpt(s.config.RecipientEmail); err != nil {
		return errors.Wrap(err, "smtp RCPT failed")
	}

	w, err := client.Data()
	if err != nil {
		return errors.Wrap(err, "smtp DATA failed")
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return errors.Wrap(err, "failed to write message")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "failed to finish message")
	}

	return client.Quit()
}

package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"strings"
)

// SMTPConfig configures the lead notification mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	NotifyTo string
}

// EmailService mails back-office staff when a lead arrives.
type EmailService struct {
	cfg SMTPConfig
}

// NewEmailService returns nil unless credentials and a recipient are set.
func NewEmailService(cfg SMTPConfig) *EmailService {
	if cfg.Username == "" || cfg.Password == "" || cfg.NotifyTo == "" {
		return nil
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &EmailService{cfg: cfg}
}

func (e *EmailService) NotifyLead(ctx context.Context, event LeadEvent) error {
	if e == nil {
		return nil
	}
	subject := fmt.Sprintf("New %s from %s", event.Type, event.Name)
	return e.send(ctx, e.cfg.NotifyTo, subject, BuildLeadEmailBody(event))
}

// BuildLeadEmailBody renders the HTML summary of a lead.
func BuildLeadEmailBody(event LeadEvent) string {
	rows := [][2]string{
		{"Name", event.Name},
		{"Email", event.Email},
		{"Phone", event.Phone},
		{"City", event.City},
		{"Preferred university", event.PreferredUniversitySlug},
		{"Message", event.Message},
		{"Marksheet", event.MarksheetURL},
	}
	if event.Type == LeadTypeApplication {
		rows = append(rows, [2]string{"NEET qualified", fmt.Sprintf("%t", event.NEETQualified)})
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><body><h2>New lead</h2><table>")
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "<tr><th align=\"left\">%s</th><td>%s</td></tr>", r[0], html.EscapeString(r[1]))
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

func (e *EmailService) send(ctx context.Context, to, subject, htmlBody string) error {
	var message strings.Builder
	fmt.Fprintf(&message, "From: MATHWA <%s>\r\n", e.cfg.From)
	fmt.Fprintf(&message, "To: %s\r\n", to)
	fmt.Fprintf(&message, "Subject: %s\r\n", subject)
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	message.WriteString(htmlBody)

	done := make(chan error, 1)
	go func() {
		done <- e.deliver(to, message.String())
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *EmailService) deliver(to, message string) error {
	conn, err := smtp.Dial(fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err := conn.StartTLS(&tls.Config{ServerName: e.cfg.Host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if err := conn.Auth(smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := conn.Mail(e.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := conn.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return conn.Quit()
}

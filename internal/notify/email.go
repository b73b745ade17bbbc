package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// Email sends alert summaries over SMTP with STARTTLS-capable PLAIN auth.
// The dial and every subsequent read/write are bounded by the context
// deadline, so a black-holed server cannot stall the sampling loop.
type Email struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
	To       string
	Subject  string
}

func (e *Email) Name() string {
	return "email"
}

func (e *Email) Send(ctx context.Context, messages []string) error {
	if !strings.Contains(e.To, "@") {
		return fmt.Errorf("invalid recipient address: %s", e.To)
	}

	addr := fmt.Sprintf("%s:%d", e.Server, e.Port)
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("set smtp deadline: %w", err)
		}
	}

	c, err := smtp.NewClient(conn, e.Server)
	if err != nil {
		return fmt.Errorf("smtp handshake with %s: %w", addr, err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: e.Server}); err != nil {
			return fmt.Errorf("starttls with %s: %w", addr, err)
		}
	}
	if e.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", e.Username, e.Password, e.Server)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(e.From); err != nil {
		return fmt.Errorf("smtp mail from %s: %w", e.From, err)
	}
	if err := c.Rcpt(e.To); err != nil {
		return fmt.Errorf("smtp rcpt to %s: %w", e.To, err)
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	subject := e.Subject
	if subject == "" {
		subject = "Home-SOC Critical Alerts"
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		e.From, e.To, subject, formatAlertText(messages))
	if _, err := wc.Write([]byte(msg)); err != nil {
		wc.Close()
		return fmt.Errorf("write mail body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close mail body: %w", err)
	}
	return c.Quit()
}

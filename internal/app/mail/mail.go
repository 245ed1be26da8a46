package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"hostcompare/internal/app/config"

	"github.com/sirupsen/logrus"
)

type Message struct {
	To      []string
	Subject string
	Body    string
}

// Mailer отправляет письмо. Реализации: SMTPMailer и LogMailer.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

const defaultTimeout = 10 * time.Second

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

type SMTPMailer struct {
	cfg  config.SMTPConfig
	dial dialFunc
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &SMTPMailer{cfg: cfg, dial: (&net.Dialer{Timeout: cfg.Timeout}).DialContext}
}

// New выбирает SMTP, если он настроен, иначе письма только пишутся в лог.
func New(cfg config.SMTPConfig) Mailer {
	if cfg.Enabled() {
		return NewSMTPMailer(cfg)
	}
	logrus.Warn("SMTP is not configured, mails will be logged only")
	return LogMailer{}
}

// Send укладывается в cfg.Timeout и прерывается при отмене ctx.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	if err := m.deliver(ctx, msg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		return fmt.Errorf("send mail %q: %w", msg.Subject, err)
	}
	return nil
}

func (m *SMTPMailer) deliver(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	conn, err := m.dial(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return err
		}
	}
	// отмена ctx рвёт зависшее чтение или запись
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return err
		}
	}
	if m.cfg.User != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(m.cfg.From); err != nil {
		return err
	}
	for _, rcpt := range msg.To {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(buildMessage(m.cfg.From, msg, time.Now())); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func buildMessage(from string, msg Message, now time.Time) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return b.Bytes()
}

// LogMailer пишет письма в лог вместо отправки.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	logrus.WithFields(logrus.Fields{
		"to":      strings.Join(msg.To, ","),
		"subject": msg.Subject,
	}).Info("mail (not sent)")
	return nil
}

package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

type SMTPSender struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
	TTL      time.Duration
}

func (s *SMTPSender) SendVerificationCode(ctx context.Context, to, code string) error {
	msg, err := VerificationMessage(to, code, s.TTL, time.Now())
	if err != nil {
		return err
	}
	from := s.From
	if from == "" {
		from = s.User
	}
	raw := buildMIME(s.fromHeader(from), from, msg)

	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}

	errc := make(chan error, 1)
	go func() {
		if s.Port == 465 {
			errc <- s.sendImplicitTLS(addr, auth, from, to, raw)
			return
		}
		// SendMail upgrades with STARTTLS when the server offers it.
		errc <- smtp.SendMail(addr, auth, from, []string{to}, []byte(raw))
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("smtp: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SMTPSender) fromHeader(addr string) string {
	if s.FromName == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.FromName), addr)
}

func (s *SMTPSender) sendImplicitTLS(addr string, auth smtp.Auth, from, to, raw string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.Host})
	if err != nil {
		return err
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		return err
	}
	defer c.Close()

	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write([]byte(raw)); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func buildMIME(fromHeader, fromAddr string, msg Message) string {
	boundary := fmt.Sprintf("xuper-%d", time.Now().UnixNano())
	var sb strings.Builder
	sb.WriteString("From: " + fromHeader + "\r\n")
	sb.WriteString("Reply-To: " + fromAddr + "\r\n")
	sb.WriteString("To: " + msg.To + "\r\n")
	sb.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: multipart/alternative; boundary=" + boundary + "\r\n\r\n")

	sb.WriteString("--" + boundary + "\r\n")
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	sb.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	sb.WriteString(msg.Text + "\r\n")

	sb.WriteString("--" + boundary + "\r\n")
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	sb.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	sb.WriteString(msg.HTML + "\r\n")

	sb.WriteString("--" + boundary + "--\r\n")
	return sb.String()
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package notifier

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"replybot/internal/markdown"
)

// SMTPSender sends emails via SMTP. The body is sent as plain text with an
// HTML alternative rendered from it as Markdown.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates a new SMTP sender.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		sendMail: smtp.SendMail,
	}
}

func (s *SMTPSender) Name() string { return "smtp" }

// Send delivers msg to msg.To. A message without a recipient is skipped.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	if err := s.sendMail(addr, auth, s.from, []string{msg.To}, s.build(msg)); err != nil {
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}
	return nil
}

// build renders the RFC 5322 message. If the HTML rendering fails the
// message falls back to plain text only.
func (s *SMTPSender) build(msg Message) []byte {
	text := strings.ReplaceAll(msg.Body, "\n", "\r\n")

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")

	htmlBody, err := markdown.ToHTML(msg.Body)
	if err != nil {
		b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
		b.WriteString(text)
		return b.Bytes()
	}

	var parts bytes.Buffer
	mw := multipart.NewWriter(&parts)
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())
	writePart(mw, "text/plain", text)
	writePart(mw, "text/html", strings.ReplaceAll(htmlBody, "\n", "\r\n"))
	mw.Close()
	b.Write(parts.Bytes())
	return b.Bytes()
}

func writePart(mw *multipart.Writer, contentType, body string) {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType+"; charset=\"utf-8\"")
	w, err := mw.CreatePart(h)
	if err != nil {
		return
	}
	w.Write([]byte(body))
}

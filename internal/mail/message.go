// Package mail builds and delivers letter emails.
package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"time"
)

var (
	// ErrNoRecipient indicates a message without a To address.
	ErrNoRecipient = errors.New("message has no recipient")
	// ErrNoSender indicates a message without a From address.
	ErrNoSender = errors.New("message has no sender")
)

// lineLength is the RFC 2045 limit for base64 body lines.
const lineLength = 76

// Mailer delivers a message.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// Message is a plain text email with attachments.
type Message struct {
	From        string
	FromName    string
	To          string
	ToName      string
	Subject     string
	Text        string
	Date        time.Time
	Attachments []Attachment
}

// Attachment is a file attached to a message.
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Validate checks the addresses of the message.
func (m *Message) Validate() error {
	if m.From == "" {
		return ErrNoSender
	}
	if m.To == "" {
		return ErrNoRecipient
	}
	for _, addr := range []string{m.From, m.To} {
		parsed, err := mail.ParseAddress(addr)
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", addr, err)
		}
		if parsed.Address != addr {
			return fmt.Errorf("invalid address %q: names go in FromName and ToName", addr)
		}
	}
	return nil
}

// FromHeader returns the formatted From header value.
func (m *Message) FromHeader() string {
	return (&mail.Address{Name: m.FromName, Address: m.From}).String()
}

// ToHeader returns the formatted To header value.
func (m *Message) ToHeader() string {
	return (&mail.Address{Name: m.ToName, Address: m.To}).String()
}

// BuildMIME renders msg as a multipart/mixed message. An empty boundary
// is replaced by a random one.
func BuildMIME(msg *Message, boundary string) ([]byte, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if boundary != "" {
		if err := mw.SetBoundary(boundary); err != nil {
			return nil, fmt.Errorf("setting boundary: %w", err)
		}
	}

	if err := writeTextPart(mw, msg.Text); err != nil {
		return nil, err
	}
	for _, a := range msg.Attachments {
		if err := writeAttachment(mw, a); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart: %w", err)
	}

	date := msg.Date
	if date.IsZero() {
		date = time.Now()
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "From: %s\r\n", msg.FromHeader())
	fmt.Fprintf(&out, "To: %s\r\n", msg.ToHeader())
	fmt.Fprintf(&out, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&out, "Date: %s\r\n", date.Format(time.RFC1123Z))
	out.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&out, "Content-Type: multipart/mixed; boundary=%q\r\n", mw.Boundary())
	out.WriteString("\r\n")
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

func writeTextPart(mw *multipart.Writer, text string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	pw, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("creating text part: %w", err)
	}
	qw := quotedprintable.NewWriter(pw)
	if _, err := qw.Write([]byte(text)); err != nil {
		return fmt.Errorf("writing text part: %w", err)
	}
	return qw.Close()
}

func writeAttachment(mw *multipart.Writer, a Attachment) error {
	contentType := a.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := textproto.MIMEHeader{}
	h.Set("Content-Type", mime.FormatMediaType(contentType, map[string]string{"name": a.FileName}))
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.FileName}))
	h.Set("Content-Transfer-Encoding", "base64")
	pw, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("creating attachment part: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(a.Data)
	for len(encoded) > lineLength {
		if _, err := fmt.Fprintf(pw, "%s\r\n", encoded[:lineLength]); err != nil {
			return fmt.Errorf("writing attachment %s: %w", a.FileName, err)
		}
		encoded = encoded[lineLength:]
	}
	if _, err := fmt.Fprintf(pw, "%s\r\n", encoded); err != nil {
		return fmt.Errorf("writing attachment %s: %w", a.FileName, err)
	}
	return nil
}

package mail

import (
	"context"
	"encoding/base64"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/alnah/go-letterpdf/internal/auth"
)

const gmailUserID = "me"

// GmailMailer sends messages with the Gmail API on behalf of the
// authorized account.
type GmailMailer struct {
	newService func(ctx context.Context) (*gmail.Service, error)
	logger     *zap.Logger
}

// NewGmailMailer creates a mailer using tok for authorization.
func NewGmailMailer(tok *auth.Token, logger *zap.Logger) *GmailMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GmailMailer{
		newService: func(ctx context.Context) (*gmail.Service, error) {
			client, err := tok.HTTPClient(ctx)
			if err != nil {
				return nil, err
			}
			return gmail.NewService(ctx, option.WithHTTPClient(client))
		},
		logger: logger,
	}
}

// Send implements Mailer.
func (m *GmailMailer) Send(ctx context.Context, msg *Message) error {
	data, err := BuildMIME(msg, "")
	if err != nil {
		return err
	}

	svc, err := m.newService(ctx)
	if err != nil {
		return fmt.Errorf("creating gmail service: %w", err)
	}

	sent, err := svc.Users.Messages.Send(gmailUserID, &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(data),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("messages.send: %w", err)
	}

	m.logger.Info("mail sent",
		zap.String("transport", "gmail"),
		zap.String("to", msg.To),
		zap.String("message_id", sent.Id))
	return nil
}

package mail

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alnah/go-letterpdf/internal/fileutil"
)

// Outbox writes each message as an .eml file instead of sending it.
type Outbox struct {
	Dir    string
	Logger *zap.Logger
}

// Send implements Mailer.
func (o *Outbox) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := BuildMIME(msg, "")
	if err != nil {
		return err
	}

	path := filepath.Join(o.Dir, uuid.NewString()+".eml")
	if err := fileutil.WriteFileAtomic(path, data, 0o600); err != nil {
		return fmt.Errorf("outbox: %w", err)
	}

	if o.Logger != nil {
		o.Logger.Info("mail written to outbox", zap.String("path", path), zap.String("to", msg.To))
	}
	return nil
}

// Package notifier delivers a rendered digest to its addressee.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jobdigest/job-agent/internal/digest"
)

// ErrNotDelivered reports that the digest was shown somewhere other than the inbox.
var ErrNotDelivered = errors.New("digest was not delivered by email")

// Notifier sends msg to the address to. Any error means the digest did not reach the
// inbox and nothing may be marked as notified.
type Notifier interface {
	Send(ctx context.Context, to string, msg *digest.Message) error
}

// Console prints the plain text digest. Used when SMTP is not configured.
type Console struct {
	Out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{Out: out}
}

func (c *Console) Send(_ context.Context, _ string, msg *digest.Message) error {
	if msg == nil {
		return errors.New("empty digest")
	}
	if _, err := fmt.Fprintf(c.Out, "%s\n\n%s", msg.Subject, msg.Text); err != nil {
		return fmt.Errorf("printing digest: %w", err)
	}
	return ErrNotDelivered
}

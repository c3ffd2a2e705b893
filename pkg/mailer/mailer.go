package mailer

import (
	"context"
	"errors"
)

// Mailer validates messages and delivers them through a Sender.
type Mailer struct {
	sender Sender
	config Config
}

// New creates a Mailer.
func New(sender Sender, cfg Config) *Mailer {
	return &Mailer{sender: sender, config: cfg}
}

// Send fills in the configured sender when From is empty, validates the
// message and delivers it. Provider errors are wrapped with ErrSendFailed.
func (m *Mailer) Send(ctx context.Context, email *Email) error {
	if email.From == "" {
		email.From = m.config.From()
	}
	if err := Validate(email); err != nil {
		return err
	}

	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

// Validate checks the fields every provider requires.
func Validate(email *Email) error {
	var errs []error
	if email.From == "" {
		errs = append(errs, ErrNoSender)
	}
	if len(email.To) == 0 {
		errs = append(errs, ErrNoRecipient)
	}
	if email.Subject == "" {
		errs = append(errs, ErrNoSubject)
	}
	if email.HTML == "" {
		errs = append(errs, ErrNoContent)
	}
	return errors.Join(errs...)
}

var _ Sender = (*Mailer)(nil)

package mailer

import "errors"

var (
	ErrNoRecipient = errors.New("mailer: email must have at least one recipient")
	ErrNoSubject   = errors.New("mailer: email must have a subject")
	ErrNoContent   = errors.New("mailer: email must have HTML content")
	ErrNoSender    = errors.New("mailer: email must have a sender")
	ErrSendFailed  = errors.New("mailer: failed to send email")
)

package scheduler

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrEnqueueFailed = errors.New("scheduler: enqueue deliveries")
	ErrTemplateGone  = errors.New("scheduler: template no longer exists")
	ErrNoHTML        = errors.New("scheduler: no HTML to deliver")
)

// DeliveryError is returned to the queue when a delivery attempt fails.
type DeliveryError struct {
	Err        error
	Recipient  string
	TemplateID uuid.UUID
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("scheduler: deliver template %s to %s: %v", e.TemplateID, e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

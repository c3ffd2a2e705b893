package templates

import "errors"

var (
	ErrNotFound  = errors.New("templates: template not found")
	ErrForbidden = errors.New("templates: access denied")
)

package services

import "errors"

// Sentinel error kinds the handlers map onto status codes. Wrap them with
// fmt.Errorf("...: %w", Err...) so errors.Is keeps working through the stack.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("upload failed")
)

package errors

import sterrors "errors"

var (
	ErrServiceRequired             = sterrors.New("wireflow: event service is required")
	ErrHandlerRequired             = sterrors.New("wireflow: handler function is required")
	ErrConsumeQueueRequired        = sterrors.New("wireflow: consume queue is required")
	ErrHandlerNameRequired         = sterrors.New("wireflow: handler name is required")
	ErrConsumeMessageTypeRequired  = sterrors.New("wireflow: consume message type is required")
	ErrConsumeMessagePointerNeeded = sterrors.New("wireflow: consume message type must be a pointer")
	ErrPublisherRequired           = sterrors.New("wireflow: publisher is required")
	ErrTopicRequired               = sterrors.New("wireflow: topic is required")
	ErrConfigRequired              = sterrors.New("wireflow: configuration is required")
	ErrLoggerRequired              = sterrors.New("wireflow: logger is required")
	ErrEventPayloadRequired        = sterrors.New("wireflow: event payload is required")
)

// ConfigValidationError wraps a configuration validation failure.
type ConfigValidationError struct {
	Err error
}

func (e ConfigValidationError) Error() string {
	return "wireflow: invalid configuration: " + e.Err.Error()
}

func (e ConfigValidationError) Unwrap() error {
	return e.Err
}

// NewConfigValidationError wraps err in a ConfigValidationError, returning nil if err is nil.
func NewConfigValidationError(err error) error {
	if err == nil {
		return nil
	}
	return ConfigValidationError{Err: err}
}

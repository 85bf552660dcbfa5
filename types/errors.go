package types

import "fmt"

// ConfigError reports a missing or malformed SMTP configuration file. It is
// fatal to the run.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// FormatError reports a malformed message file or a recipient CSV whose
// header lacks a required column. It is fatal to the run.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// TemplateError reports a subject or body template that failed to parse or
// referenced an undefined field during rendering. It is fatal to the run.
type TemplateError struct {
	Field     string
	Recipient string
	Err       error
}

func (e *TemplateError) Error() string {
	if e.Recipient == "" {
		return fmt.Sprintf("template %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("template %s for %s: %v", e.Field, e.Recipient, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// ConnectionError reports an SMTP dial or authentication failure. It aborts
// the run before any message is sent.
type ConnectionError struct {
	Host string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("smtp %s: %v", e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// DeliveryError reports a single recipient's send failure. It is recorded and
// reported; the run continues with the remaining recipients.
type DeliveryError struct {
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s: %v", e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

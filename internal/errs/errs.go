// Package errs provides the tagged error values shared by the checkout packages.
package errs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Kind discriminates checkout errors.
type Kind string

const (
	// KindStandard is the base kind carried by uncategorized checkout errors.
	KindStandard Kind = "standard"
	// KindNotRegistrable indicates that no compatible factory exists for an identifier.
	KindNotRegistrable Kind = "not_registrable"
	// KindInvalidArgument indicates malformed caller-supplied options.
	KindInvalidArgument Kind = "invalid_argument"
	// KindRequest wraps a failed external call.
	KindRequest Kind = "request"
	// KindNotInitialized indicates an operation on a strategy that is not active.
	KindNotInitialized Kind = "not_initialized"
	// KindMissingData indicates that state required by an operation has not been loaded.
	KindMissingData Kind = "missing_data"
	// KindNotImplemented indicates an operation the strategy does not support.
	KindNotImplemented Kind = "not_implemented"
	// KindTimeout indicates an external call that did not answer in time.
	KindTimeout Kind = "timeout"
)

const defaultRequestMessage = "An unexpected error has occurred."

// Response is the transport-agnostic view of a failed external call.
type Response struct {
	Status     int               `json:"status"`
	StatusText string            `json:"status_text,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       map[string]any    `json:"body,omitempty"`
}

// E is the error envelope produced across the checkout stack.
type E struct {
	Kind     Kind
	Type     string
	Message  string
	Response *Response

	cause error
}

// Option configures an error envelope.
type Option func(*E)

// New constructs an error of the given kind.
func New(kind Kind, message string, opts ...Option) *E {
	e := &E{
		Kind:    kind,
		Type:    string(kind),
		Message: strings.TrimSpace(message),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithType overrides the machine-checkable type string.
func WithType(typ string) Option {
	trimmed := strings.TrimSpace(typ)
	return func(e *E) {
		if trimmed != "" {
			e.Type = trimmed
		}
	}
}

// WithMessage replaces the human-readable message.
func WithMessage(message string) Option {
	trimmed := strings.TrimSpace(message)
	return func(e *E) {
		if trimmed != "" {
			e.Message = trimmed
		}
	}
}

// WithCause sets the underlying cause error.
func WithCause(err error) Option {
	return func(e *E) {
		e.cause = err
	}
}

func (e *E) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *E) Unwrap() error { return e.cause }

type wireError struct {
	Kind     Kind      `json:"kind"`
	Type     string    `json:"type"`
	Message  string    `json:"message"`
	Response *Response `json:"response,omitempty"`
}

// MarshalJSON encodes the envelope without its cause.
func (e *E) MarshalJSON() ([]byte, error) {
	if e == nil {
		return []byte("null"), nil
	}
	return json.Marshal(wireError{Kind: e.Kind, Type: e.Type, Message: e.Message, Response: e.Response})
}

// NotRegistrable reports that name has no compatible factory in the given domain.
func NotRegistrable(domain, name string, opts ...Option) *E {
	base := []Option{WithType(domain + "_not_registrable")}
	return New(KindNotRegistrable, fmt.Sprintf("Failed to register %q as a strategy.", name), append(base, opts...)...)
}

// InvalidArgument reports malformed options supplied by the caller.
func InvalidArgument(message string, opts ...Option) *E {
	if strings.TrimSpace(message) == "" {
		message = "Invalid arguments have been provided."
	}
	return New(KindInvalidArgument, message, opts...)
}

// Request wraps a failed external call. The message is taken from the response
// body when it carries one.
func Request(resp *Response, opts ...Option) *E {
	e := New(KindRequest, requestMessage(resp), opts...)
	e.Response = resp
	if resp != nil {
		if typ, ok := resp.Body["type"].(string); ok && typ != "" && e.Type == string(KindRequest) {
			e.Type = typ
		}
	}
	return e
}

// NotInitialized reports an operation attempted before subject was initialized.
func NotInitialized(subject string, opts ...Option) *E {
	return New(KindNotInitialized, fmt.Sprintf("Unable to proceed because %s is not initialized.", subject), opts...)
}

// MissingData reports that required state has not been loaded.
func MissingData(subject string, opts ...Option) *E {
	return New(KindMissingData, fmt.Sprintf("Unable to proceed because the required %s is unavailable.", subject), opts...)
}

// NotImplemented reports an unsupported operation.
func NotImplemented(message string, opts ...Option) *E {
	return New(KindNotImplemented, message, opts...)
}

// Timeout reports an external call that did not answer in time.
func Timeout(cause error, opts ...Option) *E {
	base := []Option{WithCause(cause)}
	return New(KindTimeout, "The request has timed out.", append(base, opts...)...)
}

// KindOf returns the kind of the first checkout error in err's chain, or the
// empty kind if there is none.
func KindOf(err error) Kind {
	var e *E
	if errors.As(err, &e) && e != nil {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries a checkout error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func requestMessage(resp *Response) string {
	if resp == nil || len(resp.Body) == 0 {
		return defaultRequestMessage
	}
	if title, ok := resp.Body["title"].(string); ok && strings.TrimSpace(title) != "" {
		if detail, ok := resp.Body["detail"].(string); ok && strings.TrimSpace(detail) != "" {
			return strings.TrimSpace(title) + " " + strings.TrimSpace(detail)
		}
		return strings.TrimSpace(title)
	}
	if list, ok := resp.Body["errors"].([]any); ok && len(list) > 0 {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	return defaultRequestMessage
}

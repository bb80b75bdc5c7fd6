package checkout

import (
	"errors"
	"fmt"
)

// Kind classifies a checkout failure so the HTTP layer can pick a status
// code without string-matching messages.
type Kind int

const (
	// KindValidation is a malformed request: caller error, never retried.
	KindValidation Kind = iota + 1
	// KindProductNotFound means a requested product is missing or inactive.
	KindProductNotFound
	// KindInsufficientStock means a requested quantity exceeds live stock.
	KindInsufficientStock
	// KindConflict is lock contention or an isolation failure; retryable.
	KindConflict
	// KindNotFound is an order lookup miss, including cross-user access.
	KindNotFound
)

// Error is a classified business-rule failure with a human-readable message.
// Infrastructure failures stay plain errors and surface as HTTP 500.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// KindOf returns the classification of err, or 0 for infrastructure errors.
func KindOf(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return 0
}

func invalidf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func productNotFound(message string) error {
	return &Error{Kind: KindProductNotFound, Message: message}
}

func insufficientStock(name string) error {
	return &Error{Kind: KindInsufficientStock, Message: fmt.Sprintf("Insufficient stock for product: %s", name)}
}

func conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

func notFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

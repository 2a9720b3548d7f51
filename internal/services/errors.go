package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hshy1839/seongji-erp-server/internal/spreadsheet"
	"github.com/hshy1839/seongji-erp-server/internal/store"
)

// Kind is the stable discriminant callers map to a response shape.
type Kind string

const (
	KindStructural   Kind = "structural"
	KindValidation   Kind = "validation"
	KindInvalidID    Kind = "invalid_id"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal"
)

// Error is a classified failure of a service operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err with kind unless it already carries one.
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// classify wraps err with the kind inferred from it.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	return E(KindOf(err), op, err)
}

// KindOf returns the kind of err, defaulting to internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	var he *spreadsheet.HeaderError
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &he),
		errors.Is(err, spreadsheet.ErrNoSheets),
		errors.Is(err, spreadsheet.ErrEmptySheet),
		errors.Is(err, spreadsheet.ErrUnsupportedFormat):
		return KindStructural
	case errors.As(err, &ve):
		return KindValidation
	case errors.Is(err, store.ErrNotFound):
		return KindNotFound
	case errors.Is(err, store.ErrConflict):
		return KindConflict
	}
	return KindInternal
}

// ParseID parses a record id; a malformed id is an invalid_id error.
func ParseID(op, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &Error{Kind: KindInvalidID, Op: op, Err: fmt.Errorf("invalid id %q", raw)}
	}
	return id, nil
}

var validate = validator.New()

// Validate checks a request body's struct tags.
func Validate(op string, v any) error {
	if err := validate.Struct(v); err != nil {
		return &Error{Kind: KindValidation, Op: op, Err: err}
	}
	return nil
}

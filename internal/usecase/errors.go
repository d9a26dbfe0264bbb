package usecase

import (
	"errors"

	"freelance-hub/internal/domain/filter"
	"freelance-hub/internal/domain/preference"
	"freelance-hub/internal/domain/profile"
	"freelance-hub/internal/domain/taxonomy"
	"freelance-hub/internal/infrastructure/locale"
	"freelance-hub/internal/pkg/validation"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrProfileNotFound = errors.New("profile not found")
	ErrPartialWrite    = errors.New("partial write")
	ErrInternal        = errors.New("internal error")
)

// Error tags a lower-level failure with one of the sentinels above while
// keeping the original message for callers that show it.
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind, err error) error {
	return &Error{Kind: kind, Err: err}
}

// classify maps domain and storage errors onto the usecase sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		return err
	}
	switch {
	case errors.Is(err, taxonomy.ErrInvalidKey),
		errors.Is(err, taxonomy.ErrMissingTranslation),
		errors.Is(err, preference.ErrUnknownIndustry),
		errors.Is(err, preference.ErrUnknownWorkType),
		errors.Is(err, preference.ErrIncompleteRow),
		errors.Is(err, filter.ErrUnknownDimension),
		errors.Is(err, filter.ErrInvalidAvailability),
		errors.Is(err, profile.ErrInvalidID),
		errors.Is(err, profile.ErrInvalidProfile),
		errors.Is(err, validation.ErrInvalidDocument):
		return newError(ErrInvalidInput, err)
	case errors.Is(err, taxonomy.ErrNotFound),
		errors.Is(err, taxonomy.ErrIndustryNotFound):
		return newError(ErrNotFound, err)
	case errors.Is(err, taxonomy.ErrAlreadyExists):
		return newError(ErrConflict, err)
	case errors.Is(err, locale.ErrPartialWrite):
		return newError(ErrPartialWrite, err)
	default:
		return newError(ErrInternal, err)
	}
}

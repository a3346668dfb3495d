package render

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/Lllllllleong/inspectionrequest/internal/models"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrTemplateNotFound means the template resource could not be located.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrRenderFailure means the template or overlay could not be turned into a PDF.
	ErrRenderFailure = errors.New("render failure")
	// ErrFilesystem means a local file could not be read or written.
	ErrFilesystem = errors.New("filesystem error")
	// ErrInvalidInput means the submission did not validate.
	ErrInvalidInput = models.ErrInvalidSubmission
)

// Error is returned by every renderer operation.
type Error struct {
	// Kind is one of the Err* sentinels of this package.
	Kind error
	// Op names the failed step.
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func newError(kind error, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func failure(op string, format string, args ...any) error {
	return newError(ErrRenderFailure, op, fmt.Errorf(format, args...))
}

// classify picks the kind of a resource access error.
func classify(op string, err error) error {
	var re *Error
	switch {
	case errors.As(err, &re):
		return err
	case errors.Is(err, fs.ErrNotExist):
		return newError(ErrTemplateNotFound, op, err)
	case errors.Is(err, models.ErrInvalidSubmission):
		return newError(ErrInvalidInput, op, err)
	}
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return newError(ErrFilesystem, op, err)
	}
	return newError(ErrRenderFailure, op, err)
}

// KindOf returns the kind of err, or nil when err is not a render error.
func KindOf(err error) error {
	for _, kind := range []error{ErrInvalidInput, ErrTemplateNotFound, ErrFilesystem, ErrRenderFailure} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

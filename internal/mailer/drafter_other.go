//go:build !windows

package mailer

import "context"

type unsupportedDrafter struct{}

// NewDrafter returns the drafter of the current platform.
func NewDrafter() Drafter {
	return unsupportedDrafter{}
}

func (unsupportedDrafter) Draft(context.Context, Message) error {
	return ErrUnsupported
}

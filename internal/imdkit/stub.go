//go:build !imdkit

package imdkit

import (
	"context"

	"ximd/internal/xim"
)

// Display is unavailable in this build.
type Display struct{}

// OpenDisplay always fails with ErrUnavailable.
func OpenDisplay(string) (*Display, error) {
	return nil, ErrUnavailable
}

func (*Display) Screen() int           { return 0 }
func (*Display) Window() uint32        { return 0 }
func (*Display) NewEngine() xim.Engine { return nil }
func (*Display) Close() error          { return nil }
func (*Display) Err() error            { return ErrUnavailable }

// Run always fails with ErrUnavailable.
func (*Display) Run(context.Context, func(xim.RawEvent) bool) error {
	return ErrUnavailable
}

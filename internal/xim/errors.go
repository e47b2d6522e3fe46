package xim

import (
	"errors"
	"fmt"
)

var (
	// ErrDeadInputContext is returned by every ServerHandle request whose
	// target context is not in the registry. No engine call was made.
	ErrDeadInputContext = errors.New("xim: dead input context")

	// ErrScopeClosed is the panic value raised when a message is read after
	// its dispatch returned.
	ErrScopeClosed = errors.New("xim: message accessed outside its dispatch")

	// ErrCreate reports that the engine refused to construct a server.
	ErrCreate = errors.New("xim: engine failed to create server")

	// ErrOpen reports that the engine failed to open the input method.
	// The engine gives no detail and the failure is not retryable here.
	ErrOpen = errors.New("xim: engine failed to open input method")
)

// UnsupportedMessageError is raised in strict mode for opcodes outside the
// message table.
type UnsupportedMessageError struct {
	Major uint8
	Minor uint8
}

func (e *UnsupportedMessageError) Error() string {
	return fmt.Sprintf("xim: unsupported message (major %d, minor %d)", e.Major, e.Minor)
}

// ProtocolViolationError is raised in strict mode when a bitset or enum field
// carries a value outside its defined range.
type ProtocolViolationError struct {
	Field string
	Value uint32
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("xim: %s has out-of-range value 0x%x", e.Field, e.Value)
}

// ServerMismatchError is raised in strict mode when the engine dispatches an
// event for a server instance other than the receiver.
type ServerMismatchError struct {
	Want Handle
	Got  Handle
}

func (e *ServerMismatchError) Error() string {
	return fmt.Sprintf("xim: event for unexpected server %s (expected %s)", e.Got, e.Want)
}

func deadContext(op string, ic InputContext) error {
	return fmt.Errorf("%s: %s: %w", op, ic, ErrDeadInputContext)
}

// ErrEmptyCommit is returned for a zero Commit value and for a Chars or
// Both commit without text.
var ErrEmptyCommit = errors.New("xim: commit is missing its text or keysym")

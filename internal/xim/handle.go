package xim

import "fmt"

// Handle is the identity of a native object (server, client or input
// context). It compares and hashes by address only and never owns the object.
// The zero Handle means "absent".
type Handle uintptr

// IsZero reports whether h refers to no object.
func (h Handle) IsZero() bool {
	return h == 0
}

// String formats the handle as a hex address.
func (h Handle) String() string {
	return fmt.Sprintf("0x%x", uintptr(h))
}

// Client identifies one connected XIM client.
type Client struct {
	h Handle
}

// ClientOf wraps a raw handle. A zero handle yields ok == false.
func ClientOf(h Handle) (Client, bool) {
	if h.IsZero() {
		return Client{}, false
	}
	return Client{h: h}, true
}

// Handle returns the native identity of the client.
func (c Client) Handle() Handle { return c.h }

// Valid reports whether c identifies a client.
func (c Client) Valid() bool { return !c.h.IsZero() }

func (c Client) String() string { return "client " + c.h.String() }

// InputContext identifies one input session of a client window.
// Holding an InputContext says nothing about whether it is still alive;
// ask the ServerHandle.
type InputContext struct {
	h Handle
}

// InputContextOf wraps a raw handle. A zero handle yields ok == false.
func InputContextOf(h Handle) (InputContext, bool) {
	if h.IsZero() {
		return InputContext{}, false
	}
	return InputContext{h: h}, true
}

// Handle returns the native identity of the context.
func (ic InputContext) Handle() Handle { return ic.h }

// Valid reports whether ic identifies a context.
func (ic InputContext) Valid() bool { return !ic.h.IsZero() }

func (ic InputContext) String() string { return "ic " + ic.h.String() }

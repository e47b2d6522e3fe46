package xim

import "unsafe"

// RawCall is one invocation of the engine's callback, exactly as delivered.
// Frame and Arg point at engine-owned records valid only for the call.
type RawCall struct {
	Server Handle
	Client Handle
	IC     Handle
	Header PacketHeader
	Frame  unsafe.Pointer
	Arg    unsafe.Pointer
}

// Dispatcher receives raw calls from an engine. *Server implements it.
type Dispatcher interface {
	Dispatch(call *RawCall)
}

// CreateParams are the one-time construction parameters of an engine
// instance.
type CreateParams struct {
	Screen       int
	ServerWindow uint32
	ServerName   string
	Locale       string
	InputStyles  []InputStyle
	OnKeys       []TriggerKey
	OffKeys      []TriggerKey
	Encodings    []string
	EventMask    uint32
}

// RawEvent is an opaque display-server event handed to FilterEvent.
type RawEvent unsafe.Pointer

// Engine is the native XIM server engine. One Engine value backs exactly one
// server instance. Methods taking an ic handle assume the caller has already
// checked liveness; the engine dereferences it.
type Engine interface {
	// Create constructs the native server and remembers d as the callback
	// target. It returns the server's identity, or ok == false.
	Create(p CreateParams, d Dispatcher) (im Handle, ok bool)
	Open() bool
	Close()
	Destroy()
	FilterEvent(ev RawEvent) bool

	ForwardEvent(ic Handle, ev *KeyEvent)
	// CommitString sends committed text. chars == nil means a null pointer
	// with zero length.
	CommitString(ic Handle, flag LookupFlag, chars []byte, keysym uint32)
	GeometryCallback(ic Handle)
	PreeditStart(ic Handle)
	PreeditStartCallback(ic Handle)
	PreeditDrawCallback(ic Handle, f *PreeditDraw)
	PreeditCaretCallback(ic Handle, f *PreeditCaret)
	PreeditDoneCallback(ic Handle)
	PreeditEnd(ic Handle)
	StatusStartCallback(ic Handle)
	StatusDrawTextCallback(ic Handle, f *StatusDrawText)
	StatusDrawBitmapCallback(ic Handle, f *StatusDrawBitmap)
	StatusDoneCallback(ic Handle)
	SyncXlib(ic Handle)
	SupportExtension(major, minor uint16) bool

	InputStyle(ic Handle) uint32
	ClientWindow(ic Handle) uint32
	PreeditAttr(ic Handle) PreeditAttr
	StatusAttr(ic Handle) StatusAttr

	// AllocBytes copies b into memory the engine will free itself.
	AllocBytes(b []byte) unsafe.Pointer
}

// Package ximtest provides an in-memory xim.Engine that records every call
// and builders for raw callback records.
package ximtest

import (
	"unsafe"

	"ximd/internal/xim"
)

// DefaultIM is the server handle the fake reports unless IM is set.
const DefaultIM xim.Handle = 0x1000

// Call is one recorded engine call.
type Call struct {
	Name string
	IC   xim.Handle
	Args []any
}

// Engine is a call-counting xim.Engine. The zero value is ready to use.
type Engine struct {
	IM         xim.Handle
	FailCreate bool
	FailOpen   bool

	Params     xim.CreateParams
	Dispatcher xim.Dispatcher
	Calls      []Call
	Allocs     [][]byte

	Styles     map[xim.Handle]uint32
	Windows    map[xim.Handle]uint32
	Preedit    map[xim.Handle]xim.PreeditAttr
	Status     map[xim.Handle]xim.StatusAttr
	Extensions map[[2]uint16]bool
}

var _ xim.Engine = (*Engine)(nil)

func (e *Engine) record(name string, ic xim.Handle, args ...any) {
	e.Calls = append(e.Calls, Call{Name: name, IC: ic, Args: args})
}

// Count returns the number of recorded calls.
func (e *Engine) Count() int { return len(e.Calls) }

// CountOf returns the number of recorded calls with the given name.
func (e *Engine) CountOf(name string) int {
	n := 0
	for _, c := range e.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Last returns the most recent call, or the zero Call.
func (e *Engine) Last() Call {
	if len(e.Calls) == 0 {
		return Call{}
	}
	return e.Calls[len(e.Calls)-1]
}

// Reset forgets the recorded calls.
func (e *Engine) Reset() {
	e.Calls = nil
}

func (e *Engine) Create(p xim.CreateParams, d xim.Dispatcher) (xim.Handle, bool) {
	e.record("Create", 0, p)
	if e.FailCreate {
		return 0, false
	}
	if e.IM == 0 {
		e.IM = DefaultIM
	}
	e.Params = p
	e.Dispatcher = d
	return e.IM, true
}

func (e *Engine) Open() bool {
	e.record("Open", 0)
	return !e.FailOpen
}

func (e *Engine) Close()   { e.record("Close", 0) }
func (e *Engine) Destroy() { e.record("Destroy", 0) }

func (e *Engine) FilterEvent(ev xim.RawEvent) bool {
	e.record("FilterEvent", 0, ev)
	return false
}

func (e *Engine) ForwardEvent(ic xim.Handle, ev *xim.KeyEvent) {
	e.record("ForwardEvent", ic, *ev)
}

func (e *Engine) CommitString(ic xim.Handle, flag xim.LookupFlag, chars []byte, keysym uint32) {
	e.record("CommitString", ic, flag, chars, keysym)
}

func (e *Engine) GeometryCallback(ic xim.Handle)     { e.record("GeometryCallback", ic) }
func (e *Engine) PreeditStart(ic xim.Handle)         { e.record("PreeditStart", ic) }
func (e *Engine) PreeditStartCallback(ic xim.Handle) { e.record("PreeditStartCallback", ic) }

func (e *Engine) PreeditDrawCallback(ic xim.Handle, f *xim.PreeditDraw) {
	e.record("PreeditDrawCallback", ic, *f)
}

func (e *Engine) PreeditCaretCallback(ic xim.Handle, f *xim.PreeditCaret) {
	e.record("PreeditCaretCallback", ic, *f)
}

func (e *Engine) PreeditDoneCallback(ic xim.Handle) { e.record("PreeditDoneCallback", ic) }
func (e *Engine) PreeditEnd(ic xim.Handle)          { e.record("PreeditEnd", ic) }
func (e *Engine) StatusStartCallback(ic xim.Handle) { e.record("StatusStartCallback", ic) }

func (e *Engine) StatusDrawTextCallback(ic xim.Handle, f *xim.StatusDrawText) {
	e.record("StatusDrawTextCallback", ic, *f)
}

func (e *Engine) StatusDrawBitmapCallback(ic xim.Handle, f *xim.StatusDrawBitmap) {
	e.record("StatusDrawBitmapCallback", ic, *f)
}

func (e *Engine) StatusDoneCallback(ic xim.Handle) { e.record("StatusDoneCallback", ic) }
func (e *Engine) SyncXlib(ic xim.Handle)           { e.record("SyncXlib", ic) }

func (e *Engine) SupportExtension(major, minor uint16) bool {
	e.record("SupportExtension", 0, major, minor)
	return e.Extensions[[2]uint16{major, minor}]
}

func (e *Engine) InputStyle(ic xim.Handle) uint32 {
	e.record("InputStyle", ic)
	return e.Styles[ic]
}

func (e *Engine) ClientWindow(ic xim.Handle) uint32 {
	e.record("ClientWindow", ic)
	return e.Windows[ic]
}

func (e *Engine) PreeditAttr(ic xim.Handle) xim.PreeditAttr {
	e.record("PreeditAttr", ic)
	return e.Preedit[ic]
}

func (e *Engine) StatusAttr(ic xim.Handle) xim.StatusAttr {
	e.record("StatusAttr", ic)
	return e.Status[ic]
}

func (e *Engine) AllocBytes(b []byte) unsafe.Pointer {
	e.record("AllocBytes", 0, len(b))
	buf := append([]byte(nil), b...)
	e.Allocs = append(e.Allocs, buf)
	return unsafe.Pointer(&buf[0])
}

// Inject delivers call to the dispatcher registered by Create, filling in
// the server handle when it is zero.
func (e *Engine) Inject(call *xim.RawCall) {
	if call.Server == 0 {
		call.Server = e.IM
	}
	e.Dispatcher.Dispatch(call)
}

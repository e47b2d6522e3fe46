package xim

import "github.com/jezek/xgb/xproto"

// ServerHandle issues outbound requests. It does not own the server and may
// be copied, but every method must be called on the goroutine that runs the
// dispatch loop: the registry it consults is not locked. Every request aimed
// at an input context checks the registry first; a dead context gets an
// error wrapping ErrDeadInputContext and the engine is not called.
type ServerHandle struct {
	s *Server
}

// IsAlive reports whether ic can be addressed.
func (h ServerHandle) IsAlive(ic InputContext) bool {
	return h.s != nil && !h.s.destroyed && ic.Valid() && h.s.registry.Contains(ic.h)
}

func (h ServerHandle) gate(op string, ic InputContext) error {
	if h.IsAlive(ic) {
		return nil
	}
	if h.s != nil && h.s.opts.Observer != nil {
		h.s.opts.Observer.ObserveRejected(op, ic.h)
	}
	return deadContext(op, ic)
}

// ForwardEvent sends a key event back to the client unprocessed.
func (h ServerHandle) ForwardEvent(ic InputContext, ev KeyEvent) error {
	if err := h.gate("forward event", ic); err != nil {
		return err
	}
	h.s.engine.ForwardEvent(ic.h, &ev)
	return nil
}

// CommitString commits text and/or a keysym to the client.
func (h ServerHandle) CommitString(ic InputContext, c Commit) error {
	if c.empty() {
		return ErrEmptyCommit
	}
	if err := h.gate("commit string", ic); err != nil {
		return err
	}
	h.s.engine.CommitString(ic.h, c.Flag(), c.Chars(), c.KeySym())
	return nil
}

// GeometryCallback asks the client to renegotiate the preedit geometry.
func (h ServerHandle) GeometryCallback(ic InputContext) error {
	if err := h.gate("geometry callback", ic); err != nil {
		return err
	}
	h.s.engine.GeometryCallback(ic.h)
	return nil
}

// PreeditStart starts preediting in whatever mode the context's style uses.
func (h ServerHandle) PreeditStart(ic InputContext) error {
	if err := h.gate("preedit start", ic); err != nil {
		return err
	}
	h.s.engine.PreeditStart(ic.h)
	return nil
}

// PreeditStartCallback sends XIM_PREEDIT_START to an on-the-spot client.
func (h ServerHandle) PreeditStartCallback(ic InputContext) error {
	if err := h.gate("preedit start callback", ic); err != nil {
		return err
	}
	h.s.engine.PreeditStartCallback(ic.h)
	return nil
}

// PreeditDrawCallback asks the client to draw preedit text.
func (h ServerHandle) PreeditDrawCallback(ic InputContext, d PreeditDraw) error {
	if err := h.gate("preedit draw callback", ic); err != nil {
		return err
	}
	h.s.engine.PreeditDrawCallback(ic.h, &d)
	return nil
}

// PreeditCaretCallback moves the client's preedit caret.
func (h ServerHandle) PreeditCaretCallback(ic InputContext, c PreeditCaret) error {
	if err := h.gate("preedit caret callback", ic); err != nil {
		return err
	}
	h.s.engine.PreeditCaretCallback(ic.h, &c)
	return nil
}

func (h ServerHandle) PreeditDoneCallback(ic InputContext) error {
	if err := h.gate("preedit done callback", ic); err != nil {
		return err
	}
	h.s.engine.PreeditDoneCallback(ic.h)
	return nil
}

// PreeditEnd ends preediting started with PreeditStart.
func (h ServerHandle) PreeditEnd(ic InputContext) error {
	if err := h.gate("preedit end", ic); err != nil {
		return err
	}
	h.s.engine.PreeditEnd(ic.h)
	return nil
}

func (h ServerHandle) StatusStartCallback(ic InputContext) error {
	if err := h.gate("status start callback", ic); err != nil {
		return err
	}
	h.s.engine.StatusStartCallback(ic.h)
	return nil
}

func (h ServerHandle) StatusDrawTextCallback(ic InputContext, d StatusDrawText) error {
	if err := h.gate("status draw text callback", ic); err != nil {
		return err
	}
	h.s.engine.StatusDrawTextCallback(ic.h, &d)
	return nil
}

func (h ServerHandle) StatusDrawBitmapCallback(ic InputContext, d StatusDrawBitmap) error {
	if err := h.gate("status draw bitmap callback", ic); err != nil {
		return err
	}
	h.s.engine.StatusDrawBitmapCallback(ic.h, &d)
	return nil
}

func (h ServerHandle) StatusDoneCallback(ic InputContext) error {
	if err := h.gate("status done callback", ic); err != nil {
		return err
	}
	h.s.engine.StatusDoneCallback(ic.h)
	return nil
}

// SyncXlib lets an Xlib client resume after a synchronous forward.
func (h ServerHandle) SyncXlib(ic InputContext) error {
	if err := h.gate("sync xlib", ic); err != nil {
		return err
	}
	h.s.engine.SyncXlib(ic.h)
	return nil
}

// SupportExtension reports whether the client negotiated the given
// extension. It does not target a context.
func (h ServerHandle) SupportExtension(major, minor uint16) bool {
	if h.s == nil || h.s.destroyed {
		return false
	}
	return h.s.engine.SupportExtension(major, minor)
}

// InputStyle returns the style the client chose for ic.
func (h ServerHandle) InputStyle(ic InputContext) (InputStyle, error) {
	if err := h.gate("input style", ic); err != nil {
		return 0, err
	}
	return DecodeInputStyle(h.s.engine.InputStyle(ic.h), h.s.opts.Strictness), nil
}

// ClientWindow returns the client window of ic.
func (h ServerHandle) ClientWindow(ic InputContext) (xproto.Window, error) {
	if err := h.gate("client window", ic); err != nil {
		return 0, err
	}
	return xproto.Window(h.s.engine.ClientWindow(ic.h)), nil
}

// PreeditAttr returns a copy of the preedit attributes of ic.
func (h ServerHandle) PreeditAttr(ic InputContext) (PreeditAttr, error) {
	if err := h.gate("preedit attr", ic); err != nil {
		return PreeditAttr{}, err
	}
	return h.s.engine.PreeditAttr(ic.h), nil
}

// StatusAttr returns a copy of the status attributes of ic.
func (h ServerHandle) StatusAttr(ic InputContext) (StatusAttr, error) {
	if err := h.gate("status attr", ic); err != nil {
		return StatusAttr{}, err
	}
	return h.s.engine.StatusAttr(ic.h), nil
}

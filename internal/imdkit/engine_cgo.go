//go:build imdkit

package imdkit

/*
#cgo pkg-config: xcb-imdkit xcb
#include <stdint.h>
#include <stdlib.h>
#include <string.h>
#include <xcb/xcb.h>
#include <xcb-imdkit/imdkit.h>

extern void ximdCallback(xcb_im_t *im, xcb_im_client_t *client, xcb_im_input_context_t *ic,
	xcb_im_packet_header_fr_t *hdr, void *frame, void *arg, uintptr_t user_data);

static void ximd_trampoline(xcb_im_t *im, xcb_im_client_t *client, xcb_im_input_context_t *ic,
	const xcb_im_packet_header_fr_t *hdr, void *frame, void *arg, void *user_data) {
	ximdCallback(im, client, ic, (xcb_im_packet_header_fr_t *)hdr, frame, arg, (uintptr_t)user_data);
}

static inline xcb_im_input_context_t *ximd_ic(uintptr_t h) {
	return (xcb_im_input_context_t *)h;
}

static xcb_im_t *ximd_im_create(xcb_connection_t *conn, int screen, uint32_t window,
	const char *name, const char *locale,
	uint32_t *styles, uint32_t nstyles,
	xcb_im_ximtriggerkey_fr_t *on, uint16_t non,
	xcb_im_ximtriggerkey_fr_t *off, uint16_t noff,
	char **encodings, uint16_t nenc,
	uint32_t event_mask, uintptr_t user_data) {
	xcb_im_styles_t s = { .nStyles = nstyles, .styles = styles };
	xcb_im_trigger_keys_t onk = { .nKeys = non, .keys = on };
	xcb_im_trigger_keys_t offk = { .nKeys = noff, .keys = off };
	xcb_im_encodings_t e = { .nEncodings = nenc, .encodings = (xcb_im_encoding_t *)encodings };
	return xcb_im_create(conn, screen, window, name, locale, &s, &onk, &offk, &e,
		event_mask, ximd_trampoline, (void *)user_data);
}

static void ximd_forward_event(xcb_im_t *im, uintptr_t ic, void *ev) {
	xcb_im_forward_event(im, ximd_ic(ic), (xcb_key_press_event_t *)ev);
}

static void ximd_commit_string(xcb_im_t *im, uintptr_t ic, uint32_t flag,
	const char *str, uint32_t len, uint32_t keysym) {
	xcb_im_commit_string(im, ximd_ic(ic), flag, str, len, keysym);
}

static void ximd_preedit_draw(xcb_im_t *im, uintptr_t ic, int32_t caret, int32_t chg_first,
	int32_t chg_length, uint32_t status, uint8_t *str, uint16_t len, uint32_t *fb, uint32_t nfb) {
	xcb_im_preedit_draw_fr_t f;
	memset(&f, 0, sizeof f);
	f.caret = caret;
	f.chg_first = chg_first;
	f.chg_length = chg_length;
	f.status = status;
	f.length_of_preedit_string = len;
	f.preedit_string = str;
	f.feedback_array.size = nfb * sizeof(uint32_t);
	f.feedback_array.items = fb;
	xcb_im_preedit_draw_callback(im, ximd_ic(ic), &f);
}

static void ximd_preedit_caret(xcb_im_t *im, uintptr_t ic, int32_t position,
	uint32_t direction, uint32_t style) {
	xcb_im_preedit_caret_fr_t f;
	memset(&f, 0, sizeof f);
	f.position = position;
	f.direction = direction;
	f.style = style;
	xcb_im_preedit_caret_callback(im, ximd_ic(ic), &f);
}

static void ximd_status_draw_text(xcb_im_t *im, uintptr_t ic, uint32_t status,
	uint8_t *str, uint16_t len, uint32_t *fb, uint32_t nfb) {
	xcb_im_status_draw_text_fr_t f;
	memset(&f, 0, sizeof f);
	f.type = XCB_IM_TextType;
	f.status = status;
	f.length_of_status_string = len;
	f.status_string = str;
	f.feedback_array.size = nfb * sizeof(uint32_t);
	f.feedback_array.items = fb;
	xcb_im_status_draw_text_callback(im, ximd_ic(ic), &f);
}

static void ximd_status_draw_bitmap(xcb_im_t *im, uintptr_t ic, uint32_t pixmap) {
	xcb_im_status_draw_bitmap_fr_t f;
	memset(&f, 0, sizeof f);
	f.type = XCB_IM_BitmapType;
	f.pixmap_data = pixmap;
	xcb_im_status_draw_bitmap_callback(im, ximd_ic(ic), &f);
}
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/jezek/xgb/xproto"

	"ximd/internal/xim"
)

// Engine is the xcb-imdkit implementation of xim.Engine. It is bound to the
// connection of the Display that made it.
type Engine struct {
	conn   *C.xcb_connection_t
	im     *C.xcb_im_t
	handle cgo.Handle
	target xim.Dispatcher

	// C copies of the construction lists, freed on Destroy.
	owned []unsafe.Pointer

	// A panic raised by the dispatcher inside the C callback, re-raised once
	// control is back in Go.
	pending *callbackPanic
}

type callbackPanic struct {
	value any
}

var _ xim.Engine = (*Engine)(nil)

func handleOf(p unsafe.Pointer) xim.Handle {
	return xim.Handle(uintptr(p))
}

func (e *Engine) cAlloc(n int) unsafe.Pointer {
	if n == 0 {
		n = 1
	}
	p := C.calloc(1, C.size_t(n))
	e.owned = append(e.owned, p)
	return p
}

func (e *Engine) cString(s string) *C.char {
	p := C.CString(s)
	e.owned = append(e.owned, unsafe.Pointer(p))
	return p
}

func (e *Engine) freeOwned() {
	for _, p := range e.owned {
		C.free(p)
	}
	e.owned = nil
}

func (e *Engine) Create(p xim.CreateParams, d xim.Dispatcher) (xim.Handle, bool) {
	if e.im != nil || e.conn == nil {
		return 0, false
	}

	styles := (*C.uint32_t)(e.cAlloc(len(p.InputStyles) * 4))
	styleSlice := unsafe.Slice(styles, max(len(p.InputStyles), 1))
	for i, st := range p.InputStyles {
		styleSlice[i] = C.uint32_t(st)
	}
	on := e.triggerKeys(p.OnKeys)
	off := e.triggerKeys(p.OffKeys)

	encodings := (**C.char)(e.cAlloc(len(p.Encodings) * int(unsafe.Sizeof(uintptr(0)))))
	encSlice := unsafe.Slice(encodings, max(len(p.Encodings), 1))
	for i, enc := range p.Encodings {
		encSlice[i] = e.cString(enc)
	}

	e.target = d
	e.handle = cgo.NewHandle(e)
	im := C.ximd_im_create(e.conn, C.int(p.Screen), C.uint32_t(p.ServerWindow),
		e.cString(p.ServerName), e.cString(p.Locale),
		styles, C.uint32_t(len(p.InputStyles)),
		on, C.uint16_t(len(p.OnKeys)),
		off, C.uint16_t(len(p.OffKeys)),
		encodings, C.uint16_t(len(p.Encodings)),
		C.uint32_t(p.EventMask), C.uintptr_t(e.handle))
	if im == nil {
		e.handle.Delete()
		e.handle = 0
		e.target = nil
		e.freeOwned()
		return 0, false
	}
	e.im = im
	return handleOf(unsafe.Pointer(im)), true
}

func (e *Engine) triggerKeys(keys []xim.TriggerKey) *C.xcb_im_ximtriggerkey_fr_t {
	p := (*C.xcb_im_ximtriggerkey_fr_t)(e.cAlloc(len(keys) * int(C.sizeof_xcb_im_ximtriggerkey_fr_t)))
	out := unsafe.Slice(p, max(len(keys), 1))
	for i, k := range keys {
		out[i].keysym = C.uint32_t(k.Keysym)
		out[i].modifier = C.uint32_t(k.Modifier)
		out[i].modifier_mask = C.uint32_t(k.ModifierMask)
	}
	return p
}

func (e *Engine) Open() bool {
	if e.im == nil {
		return false
	}
	return bool(C.xcb_im_open_im(e.im))
}

func (e *Engine) Close() {
	if e.im != nil {
		C.xcb_im_close_im(e.im)
	}
}

func (e *Engine) Destroy() {
	if e.im == nil {
		return
	}
	C.xcb_im_destroy(e.im)
	e.im = nil
	e.handle.Delete()
	e.handle = 0
	e.target = nil
	e.freeOwned()
}

// FilterEvent runs the engine on one event. Dispatch happens inside; a panic
// from the dispatcher is re-raised here after the C frames have returned.
func (e *Engine) FilterEvent(ev xim.RawEvent) bool {
	if e.im == nil {
		return false
	}
	consumed := bool(C.xcb_im_filter_event(e.im, (*C.xcb_generic_event_t)(unsafe.Pointer(ev))))
	if p := e.pending; p != nil {
		e.pending = nil
		panic(p.value)
	}
	return consumed
}

func (e *Engine) dispatch(call *xim.RawCall) {
	defer func() {
		if r := recover(); r != nil && e.pending == nil {
			e.pending = &callbackPanic{value: r}
		}
	}()
	if e.target != nil && e.pending == nil {
		e.target.Dispatch(call)
	}
}

func ic(h xim.Handle) C.uintptr_t {
	return C.uintptr_t(h)
}

func (e *Engine) ForwardEvent(h xim.Handle, ev *xim.KeyEvent) {
	C.ximd_forward_event(e.im, ic(h), unsafe.Pointer(ev))
}

func (e *Engine) CommitString(h xim.Handle, flag xim.LookupFlag, chars []byte, keysym uint32) {
	var str *C.char
	if len(chars) > 0 {
		str = (*C.char)(unsafe.Pointer(&chars[0]))
	}
	C.ximd_commit_string(e.im, ic(h), C.uint32_t(flag), str, C.uint32_t(len(chars)), C.uint32_t(keysym))
}

func (e *Engine) GeometryCallback(h xim.Handle) {
	C.xcb_im_geometry_callback(e.im, C.ximd_ic(ic(h)))
}

func (e *Engine) PreeditStart(h xim.Handle) {
	C.xcb_im_preedit_start(e.im, C.ximd_ic(ic(h)))
}

func (e *Engine) PreeditStartCallback(h xim.Handle) {
	C.xcb_im_preedit_start_callback(e.im, C.ximd_ic(ic(h)))
}

func bytesPtr(b []byte) *C.uint8_t {
	if len(b) == 0 {
		return nil
	}
	return (*C.uint8_t)(unsafe.Pointer(&b[0]))
}

func feedbackPtr(f []xim.Feedback) *C.uint32_t {
	if len(f) == 0 {
		return nil
	}
	return (*C.uint32_t)(unsafe.Pointer(&f[0]))
}

func (e *Engine) PreeditDrawCallback(h xim.Handle, f *xim.PreeditDraw) {
	C.ximd_preedit_draw(e.im, ic(h), C.int32_t(f.Caret), C.int32_t(f.ChgFirst), C.int32_t(f.ChgLength),
		C.uint32_t(f.Status), bytesPtr(f.Text), C.uint16_t(len(f.Text)),
		feedbackPtr(f.Feedback), C.uint32_t(len(f.Feedback)))
}

func (e *Engine) PreeditCaretCallback(h xim.Handle, f *xim.PreeditCaret) {
	C.ximd_preedit_caret(e.im, ic(h), C.int32_t(f.Position), C.uint32_t(f.Direction), C.uint32_t(f.Style))
}

func (e *Engine) PreeditDoneCallback(h xim.Handle) {
	C.xcb_im_preedit_done_callback(e.im, C.ximd_ic(ic(h)))
}

func (e *Engine) PreeditEnd(h xim.Handle) {
	C.xcb_im_preedit_end(e.im, C.ximd_ic(ic(h)))
}

func (e *Engine) StatusStartCallback(h xim.Handle) {
	C.xcb_im_status_start_callback(e.im, C.ximd_ic(ic(h)))
}

func (e *Engine) StatusDrawTextCallback(h xim.Handle, f *xim.StatusDrawText) {
	C.ximd_status_draw_text(e.im, ic(h), C.uint32_t(f.Status), bytesPtr(f.Text), C.uint16_t(len(f.Text)),
		feedbackPtr(f.Feedback), C.uint32_t(len(f.Feedback)))
}

func (e *Engine) StatusDrawBitmapCallback(h xim.Handle, f *xim.StatusDrawBitmap) {
	C.ximd_status_draw_bitmap(e.im, ic(h), C.uint32_t(f.Pixmap))
}

func (e *Engine) StatusDoneCallback(h xim.Handle) {
	C.xcb_im_status_done_callback(e.im, C.ximd_ic(ic(h)))
}

func (e *Engine) SyncXlib(h xim.Handle) {
	C.xcb_im_sync_xlib(e.im, C.ximd_ic(ic(h)))
}

func (e *Engine) SupportExtension(major, minor uint16) bool {
	return bool(C.xcb_im_support_extension(e.im, C.uint16_t(major), C.uint16_t(minor)))
}

func (e *Engine) InputStyle(h xim.Handle) uint32 {
	return uint32(C.xcb_im_input_context_get_input_style(C.ximd_ic(ic(h))))
}

func (e *Engine) ClientWindow(h xim.Handle) uint32 {
	return uint32(C.xcb_im_input_context_get_client_window(C.ximd_ic(ic(h))))
}

func rect(r C.xcb_rectangle_t) xproto.Rectangle {
	return xproto.Rectangle{X: int16(r.x), Y: int16(r.y), Width: uint16(r.width), Height: uint16(r.height)}
}

func (e *Engine) PreeditAttr(h xim.Handle) xim.PreeditAttr {
	a := C.xcb_im_input_context_get_preedit_attr(C.ximd_ic(ic(h)))
	return xim.PreeditAttr{
		Area:         rect(a.area),
		AreaNeeded:   rect(a.area_needed),
		SpotLocation: xproto.Point{X: int16(a.spot_location.x), Y: int16(a.spot_location.y)},
		Colormap:     xproto.Colormap(a.colormap),
		Foreground:   uint32(a.foreground),
		Background:   uint32(a.background),
		BgPixmap:     xproto.Pixmap(a.bg_pixmap),
		LineSpace:    uint32(a.line_space),
		Cursor:       xproto.Cursor(a.cursor),
	}
}

func (e *Engine) StatusAttr(h xim.Handle) xim.StatusAttr {
	a := C.xcb_im_input_context_get_status_attr(C.ximd_ic(ic(h)))
	return xim.StatusAttr{
		Area:       rect(a.area),
		AreaNeeded: rect(a.area_needed),
		Colormap:   xproto.Colormap(a.colormap),
		Foreground: uint32(a.foreground),
		Background: uint32(a.background),
		BgPixmap:   xproto.Pixmap(a.bg_pixmap),
		LineSpace:  uint32(a.line_space),
		Cursor:     xproto.Cursor(a.cursor),
	}
}

// AllocBytes returns a malloc'd copy of b; the engine frees it after sending.
func (e *Engine) AllocBytes(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return C.CBytes(b)
}

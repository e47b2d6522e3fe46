//go:build imdkit

package imdkit

/*
#cgo pkg-config: xcb
#include <stdint.h>
#include <stdlib.h>
#include <xcb/xcb.h>

static uint32_t ximd_create_window(xcb_connection_t *conn, int screen_num) {
	xcb_screen_iterator_t it = xcb_setup_roots_iterator(xcb_get_setup(conn));
	for (; it.rem && screen_num > 0; screen_num--) {
		xcb_screen_next(&it);
	}
	if (!it.rem) {
		return 0;
	}
	xcb_screen_t *screen = it.data;
	xcb_window_t w = xcb_generate_id(conn);
	xcb_create_window(conn, XCB_COPY_FROM_PARENT, w, screen->root,
		0, 0, 1, 1, 1, XCB_WINDOW_CLASS_INPUT_OUTPUT, screen->root_visual, 0, NULL);
	xcb_flush(conn);
	return w;
}
*/
import "C"

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"

	"ximd/internal/xim"
)

// pollTimeout bounds how long Run waits before checking its context.
const pollTimeout = 200 // milliseconds

// Display is an XCB connection plus the 1x1 window the input method is
// registered on.
type Display struct {
	conn   *C.xcb_connection_t
	screen int
	window uint32
}

// OpenDisplay connects to the named X display ("" means $DISPLAY).
func OpenDisplay(name string) (*Display, error) {
	var cname *C.char
	if name != "" {
		cname = C.CString(name)
		defer C.free(unsafe.Pointer(cname))
	}

	var screen C.int
	conn := C.xcb_connect(cname, &screen)
	if conn == nil || C.xcb_connection_has_error(conn) != 0 {
		if conn != nil {
			C.xcb_disconnect(conn)
		}
		return nil, fmt.Errorf("connect %q: %w", name, ErrDisplay)
	}

	window := C.ximd_create_window(conn, screen)
	if window == 0 {
		C.xcb_disconnect(conn)
		return nil, fmt.Errorf("screen %d not found: %w", int(screen), ErrDisplay)
	}

	return &Display{conn: conn, screen: int(screen), window: uint32(window)}, nil
}

// Screen returns the default screen number of the connection.
func (d *Display) Screen() int { return d.screen }

// Window returns the server window.
func (d *Display) Window() uint32 { return d.window }

// NewEngine returns an engine bound to this connection.
func (d *Display) NewEngine() xim.Engine {
	return &Engine{conn: d.conn}
}

// Err reports a broken connection. It is safe to call from any goroutine.
func (d *Display) Err() error {
	if d.conn == nil {
		return fmt.Errorf("closed: %w", ErrDisplay)
	}
	if code := C.xcb_connection_has_error(d.conn); code != 0 {
		return fmt.Errorf("connection error %d: %w", int(code), ErrDisplay)
	}
	return nil
}

// Close disconnects from the X server. Engines made by d must be destroyed
// first.
func (d *Display) Close() error {
	if d.conn != nil {
		C.xcb_disconnect(d.conn)
		d.conn = nil
	}
	return nil
}

// Run feeds every X event to filter until ctx is cancelled or the
// connection breaks. It locks the calling goroutine to its OS thread so the
// engine's callbacks always run on the same thread.
func (d *Display) Run(ctx context.Context, filter func(xim.RawEvent) bool) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	fds := []unix.PollFd{{Fd: int32(C.xcb_get_file_descriptor(d.conn)), Events: unix.POLLIN}}
	for {
		for d.next(filter) {
		}
		C.xcb_flush(d.conn)
		if err := d.Err(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if _, err := unix.Poll(fds, pollTimeout); err != nil && !errors.Is(err, unix.EINTR) {
			return fmt.Errorf("poll: %w", err)
		}
	}
}

func (d *Display) next(filter func(xim.RawEvent) bool) bool {
	ev := C.xcb_poll_for_event(d.conn)
	if ev == nil {
		return false
	}
	defer C.free(unsafe.Pointer(ev))
	filter(xim.RawEvent(unsafe.Pointer(ev)))
	return true
}

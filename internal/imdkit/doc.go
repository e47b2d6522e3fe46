// Package imdkit implements xim.Engine over the xcb-imdkit C library and
// owns the XCB connection the engine runs on.
//
// The cgo implementation is only built with the imdkit build tag (it needs
// the xcb-imdkit and xcb development packages). Without the tag OpenDisplay
// returns ErrUnavailable.
package imdkit

import "errors"

// ErrUnavailable is returned when the binary was built without xcb-imdkit.
var ErrUnavailable = errors.New("imdkit: built without the imdkit tag")

// ErrDisplay is returned when the X connection cannot be established or
// breaks while running.
var ErrDisplay = errors.New("imdkit: display connection failed")

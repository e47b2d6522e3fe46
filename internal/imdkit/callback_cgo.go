//go:build imdkit

package imdkit

/*
#include <stdint.h>
#include <xcb-imdkit/imdkit.h>
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"ximd/internal/xim"
)

//export ximdCallback
func ximdCallback(im *C.xcb_im_t, client *C.xcb_im_client_t, ic *C.xcb_im_input_context_t,
	hdr *C.xcb_im_packet_header_fr_t, frame, arg unsafe.Pointer, userData C.uintptr_t) {
	if userData == 0 || hdr == nil {
		return
	}
	e, ok := cgo.Handle(userData).Value().(*Engine)
	if !ok {
		return
	}
	e.dispatch(&xim.RawCall{
		Server: handleOf(unsafe.Pointer(im)),
		Client: handleOf(unsafe.Pointer(client)),
		IC:     handleOf(unsafe.Pointer(ic)),
		Header: xim.PacketHeader{
			MajorOpcode: uint8(hdr.major_opcode),
			MinorOpcode: uint8(hdr.minor_opcode),
			Length:      uint16(hdr.length),
		},
		Frame: frame,
		Arg:   arg,
	})
}

package ximtest

import (
	"unsafe"

	"ximd/internal/xim"
)

func header(major, minor uint8) xim.PacketHeader {
	return xim.PacketHeader{MajorOpcode: major, MinorOpcode: minor}
}

func attributeList(attrs []xim.ICAttribute) xim.ListFrame {
	if len(attrs) == 0 {
		return xim.ListFrame{}
	}
	items := make([]xim.ICAttributeFrame, len(attrs))
	for i, a := range attrs {
		items[i].AttributeID = a.ID
		items[i].ValueLength = uint16(len(a.Value))
		if len(a.Value) > 0 {
			v := append([]byte(nil), a.Value...)
			items[i].Value = unsafe.Pointer(&v[0])
		}
	}
	return xim.ListFrame{Size: uint32(len(items)), Items: unsafe.Pointer(&items[0])}
}

func icCall(major uint8, client, ic xim.Handle) *xim.RawCall {
	return &xim.RawCall{
		Client: client,
		IC:     ic,
		Header: header(major, 0),
		Frame:  unsafe.Pointer(&xim.ICFrame{InputMethodID: 1, InputContextID: uint16(ic)}),
	}
}

// Raw builds a call with no frame, for arbitrary opcodes.
func Raw(major, minor uint8, client, ic xim.Handle) *xim.RawCall {
	return &xim.RawCall{Client: client, IC: ic, Header: header(major, minor)}
}

func Connect(client xim.Handle, major, minor uint16) *xim.RawCall {
	f := &xim.ConnectFrame{ByteOrder: 'l', ClientMajorProtocolVersion: major, ClientMinorProtocolVersion: minor}
	return &xim.RawCall{Client: client, Header: header(xim.OpConnect, 0), Frame: unsafe.Pointer(f)}
}

func Disconnect(client xim.Handle) *xim.RawCall {
	return &xim.RawCall{Client: client, Header: header(xim.OpDisconnect, 0)}
}

func Open(client xim.Handle, locale string) *xim.RawCall {
	f := &xim.OpenFrame{}
	if locale != "" {
		b := []byte(locale)
		f.Locale = xim.StrFrame{LengthOfString: uint8(len(b)), String: unsafe.Pointer(&b[0])}
	}
	return &xim.RawCall{Client: client, Header: header(xim.OpOpen, 0), Frame: unsafe.Pointer(f)}
}

func Close(client xim.Handle) *xim.RawCall {
	f := &xim.CloseFrame{InputMethodID: 1}
	return &xim.RawCall{Client: client, Header: header(xim.OpClose, 0), Frame: unsafe.Pointer(f)}
}

// CreateIC builds a CreateIC call and returns the reply slot the engine would
// send back.
func CreateIC(client, ic xim.Handle, attrs ...xim.ICAttribute) (*xim.RawCall, *xim.CreateICReplyFrame) {
	f := &xim.CreateICFrame{InputMethodID: 1, ICAttributes: attributeList(attrs)}
	reply := &xim.CreateICReplyFrame{InputMethodID: 1, InputContextID: uint16(ic)}
	return &xim.RawCall{
		Client: client,
		IC:     ic,
		Header: header(xim.OpCreateIC, 0),
		Frame:  unsafe.Pointer(f),
		Arg:    unsafe.Pointer(reply),
	}, reply
}

func DestroyIC(client, ic xim.Handle) *xim.RawCall    { return icCall(xim.OpDestroyIC, client, ic) }
func SetICFocus(client, ic xim.Handle) *xim.RawCall   { return icCall(xim.OpSetICFocus, client, ic) }
func UnsetICFocus(client, ic xim.Handle) *xim.RawCall { return icCall(xim.OpUnsetICFocus, client, ic) }
func SyncReply(client, ic xim.Handle) *xim.RawCall    { return icCall(xim.OpSyncReply, client, ic) }

func SetICValues(client, ic xim.Handle, attrs ...xim.ICAttribute) *xim.RawCall {
	f := &xim.SetICValuesFrame{InputMethodID: 1, InputContextID: uint16(ic), ICAttribute: attributeList(attrs)}
	return &xim.RawCall{Client: client, IC: ic, Header: header(xim.OpSetICValues, 0), Frame: unsafe.Pointer(f)}
}

func GetICValues(client, ic xim.Handle, ids ...uint16) *xim.RawCall {
	f := &xim.GetICValuesFrame{InputMethodID: 1, InputContextID: uint16(ic)}
	if len(ids) > 0 {
		list := append([]uint16(nil), ids...)
		f.ICAttribute = xim.ListFrame{Size: uint32(len(list)), Items: unsafe.Pointer(&list[0])}
	}
	return &xim.RawCall{Client: client, IC: ic, Header: header(xim.OpGetICValues, 0), Frame: unsafe.Pointer(f)}
}

// ResetIC builds a ResetIC call and returns its reply slot.
func ResetIC(client, ic xim.Handle) (*xim.RawCall, *xim.ResetICReplyFrame) {
	call := icCall(xim.OpResetIC, client, ic)
	reply := &xim.ResetICReplyFrame{InputMethodID: 1, InputContextID: uint16(ic)}
	call.Arg = unsafe.Pointer(reply)
	return call, reply
}

func ForwardEvent(client, ic xim.Handle, flag uint16, ev xim.KeyEvent) *xim.RawCall {
	f := &xim.ForwardEventFrame{InputMethodID: 1, InputContextID: uint16(ic), Flag: flag, SequenceNumber: ev.Sequence}
	return &xim.RawCall{
		Client: client,
		IC:     ic,
		Header: header(xim.OpForwardEvent, 0),
		Frame:  unsafe.Pointer(f),
		Arg:    unsafe.Pointer(&ev),
	}
}

func ExtForwardKeyEvent(client, ic xim.Handle, flag uint16, ev xim.KeyEvent) *xim.RawCall {
	f := &xim.ExtForwardKeyEventFrame{
		InputMethodID:  1,
		InputContextID: uint16(ic),
		Flag:           flag,
		SequenceNumber: ev.Sequence,
		XEventUUType:   ev.ResponseType,
		Keycode:        ev.Detail,
		State:          ev.State,
		Time:           ev.Time,
		Window:         ev.Event,
	}
	return &xim.RawCall{
		Client: client,
		IC:     ic,
		Header: header(xim.OpExtension, xim.ExtForwardKeyEvent),
		Frame:  unsafe.Pointer(f),
		Arg:    unsafe.Pointer(&ev),
	}
}

func TriggerNotify(client, ic xim.Handle, flag uint32) *xim.RawCall {
	f := &xim.TriggerNotifyFrame{InputMethodID: 1, InputContextID: uint16(ic), Flag: flag}
	return &xim.RawCall{Client: client, IC: ic, Header: header(xim.OpTriggerNotify, 0), Frame: unsafe.Pointer(f)}
}

func PreeditStartReply(client, ic xim.Handle, ret int32) *xim.RawCall {
	f := &xim.PreeditStartReplyFrame{InputMethodID: 1, InputContextID: uint16(ic), ReturnValue: ret}
	return &xim.RawCall{Client: client, IC: ic, Header: header(xim.OpPreeditStartReply, 0), Frame: unsafe.Pointer(f)}
}

func PreeditCaretReply(client, ic xim.Handle, pos uint32) *xim.RawCall {
	f := &xim.PreeditCaretReplyFrame{InputMethodID: 1, InputContextID: uint16(ic), Position: pos}
	return &xim.RawCall{Client: client, IC: ic, Header: header(xim.OpPreeditCaretReply, 0), Frame: unsafe.Pointer(f)}
}

// KeyPress builds a key press record for keycode with modifier state.
func KeyPress(keycode uint8, state uint16) xim.KeyEvent {
	return xim.KeyEvent{ResponseType: xim.KeyPress, Detail: keycode, State: state, SameScreen: 1}
}

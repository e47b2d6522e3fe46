package xim

import "unsafe"

// The records below mirror the frame structures the engine hands to its
// callback. Field order, widths and nesting must stay identical to the
// engine's ximproto definitions; record_test.go pins the offsets.

// PacketHeader mirrors xcb_im_packet_header_fr_t.
type PacketHeader struct {
	MajorOpcode uint8
	MinorOpcode uint8
	Length      uint16
}

// ListFrame is the generic {size, items} list of the generated frames.
type ListFrame struct {
	Size  uint32
	Items unsafe.Pointer
}

// StrFrame mirrors xcb_im_str_fr_t.
type StrFrame struct {
	LengthOfString uint8
	String         unsafe.Pointer
}

// ICAttributeFrame mirrors xcb_im_xicattribute_fr_t.
type ICAttributeFrame struct {
	AttributeID uint16
	ValueLength uint16
	Value       unsafe.Pointer
}

type ConnectFrame struct {
	ByteOrder                  uint8
	ClientMajorProtocolVersion uint16
	ClientMinorProtocolVersion uint16
	ClientAuthProtocolNames    ListFrame
}

type OpenFrame struct {
	Locale StrFrame
}

type CloseFrame struct {
	InputMethodID uint16
}

type CreateICFrame struct {
	InputMethodID uint16
	ICAttributes  ListFrame
}

type CreateICReplyFrame struct {
	InputMethodID  uint16
	InputContextID uint16
}

// ICFrame is the shape shared by DestroyIC, SetICFocus, UnsetICFocus,
// ResetIC and SyncReply.
type ICFrame struct {
	InputMethodID  uint16
	InputContextID uint16
}

type SetICValuesFrame struct {
	InputMethodID  uint16
	InputContextID uint16
	ICAttribute    ListFrame
}

// GetICValuesFrame carries a list of uint16 attribute ids.
type GetICValuesFrame struct {
	InputMethodID  uint16
	InputContextID uint16
	ICAttribute    ListFrame
}

type ResetICReplyFrame struct {
	InputMethodID               uint16
	InputContextID              uint16
	ByteLengthOfCommittedString uint16
	CommittedString             unsafe.Pointer
}

type ForwardEventFrame struct {
	InputMethodID  uint16
	InputContextID uint16
	Flag           uint16
	SequenceNumber uint16
}

type ExtForwardKeyEventFrame struct {
	InputMethodID  uint16
	InputContextID uint16
	Flag           uint16
	SequenceNumber uint16
	XEventUUType   uint8
	Keycode        uint8
	State          uint16
	Time           uint32
	Window         uint32
}

type TriggerNotifyFrame struct {
	InputMethodID         uint16
	InputContextID        uint16
	Flag                  uint32
	IndexOfKeysList       uint32
	ClientSelectEventMask uint32
}

type PreeditStartReplyFrame struct {
	InputMethodID  uint16
	InputContextID uint16
	ReturnValue    int32
}

type PreeditCaretReplyFrame struct {
	InputMethodID  uint16
	InputContextID uint16
	Position       uint32
}

func listItems[T any](l ListFrame) []T {
	if l.Size == 0 || l.Items == nil {
		return nil
	}
	return unsafe.Slice((*T)(l.Items), l.Size)
}

func copyBytes(p unsafe.Pointer, n int) []byte {
	if p == nil || n == 0 {
		return nil
	}
	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(p), n))
	return out
}

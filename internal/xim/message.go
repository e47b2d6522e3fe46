package xim

import "unsafe"

// Message is one inbound protocol event. The set of implementations is
// closed; switch on the concrete type or on Kind.
//
// A Message and everything it points at is only valid during the dispatch
// that produced it. Accessing it afterwards panics with ErrScopeClosed.
type Message interface {
	Kind() MessageKind
	Header() PacketHeader
	borrowed() *scope
}

type borrow struct {
	hdr PacketHeader
	sc  *scope
}

// Header returns the packet header of the message.
func (b borrow) Header() PacketHeader {
	b.sc.check()
	return b.hdr
}

func (b borrow) borrowed() *scope { return b.sc }

// ICAttribute is one (id, value) attribute pair. Value is a copy.
type ICAttribute struct {
	ID    uint16
	Value []byte
}

func copyAttributes(l ListFrame) []ICAttribute {
	items := listItems[ICAttributeFrame](l)
	if len(items) == 0 {
		return nil
	}
	out := make([]ICAttribute, len(items))
	for i, it := range items {
		out[i] = ICAttribute{
			ID:    it.AttributeID,
			Value: copyBytes(it.Value, int(it.ValueLength)),
		}
	}
	return out
}

// ConnectMessage is sent when a client connects.
type ConnectMessage struct {
	borrow
	frame *ConnectFrame
}

func (*ConnectMessage) Kind() MessageKind { return KindConnect }

// ByteOrder returns the client's byte order marker ('B' or 'l').
func (m *ConnectMessage) ByteOrder() uint8 {
	m.sc.check()
	return m.frame.ByteOrder
}

// ProtocolVersion returns the client's protocol version.
func (m *ConnectMessage) ProtocolVersion() (major, minor uint16) {
	m.sc.check()
	return m.frame.ClientMajorProtocolVersion, m.frame.ClientMinorProtocolVersion
}

// DisconnectMessage is sent when a client goes away.
type DisconnectMessage struct {
	borrow
}

func (*DisconnectMessage) Kind() MessageKind { return KindDisconnect }

// OpenMessage is sent when a client opens the input method.
type OpenMessage struct {
	borrow
	frame *OpenFrame
}

func (*OpenMessage) Kind() MessageKind { return KindOpen }

// Locale returns the locale the client asked for.
func (m *OpenMessage) Locale() string {
	m.sc.check()
	return string(copyBytes(m.frame.Locale.String, int(m.frame.Locale.LengthOfString)))
}

// CloseMessage is sent when a client closes the input method.
type CloseMessage struct {
	borrow
	frame *CloseFrame
}

func (*CloseMessage) Kind() MessageKind { return KindClose }

func (m *CloseMessage) InputMethodID() uint16 {
	m.sc.check()
	return m.frame.InputMethodID
}

// CreateICMessage is sent when a client creates an input context. The
// context is already alive when the handler sees this message.
type CreateICMessage struct {
	borrow
	frame *CreateICFrame
	reply *CreateICReplyFrame
}

func (*CreateICMessage) Kind() MessageKind { return KindCreateIC }

func (m *CreateICMessage) InputMethodID() uint16 {
	m.sc.check()
	return m.frame.InputMethodID
}

// Attributes returns copies of the requested ic attributes.
func (m *CreateICMessage) Attributes() []ICAttribute {
	m.sc.check()
	return copyAttributes(m.frame.ICAttributes)
}

// ReplyInputContextID returns the context id currently in the reply. The
// engine fills it before the callback runs.
func (m *CreateICMessage) ReplyInputContextID() uint16 {
	m.sc.check()
	if m.reply == nil {
		return 0
	}
	return m.reply.InputContextID
}

// SetReplyInputContextID overrides the context id sent back to the client.
// It reports false when the engine supplied no reply slot.
func (m *CreateICMessage) SetReplyInputContextID(id uint16) bool {
	m.sc.check()
	if m.reply == nil {
		return false
	}
	m.reply.InputContextID = id
	return true
}

// SetICValuesMessage carries attribute updates for a context.
type SetICValuesMessage struct {
	borrow
	frame *SetICValuesFrame
}

func (*SetICValuesMessage) Kind() MessageKind { return KindSetICValues }

func (m *SetICValuesMessage) InputContextID() uint16 {
	m.sc.check()
	return m.frame.InputContextID
}

// Attributes returns copies of the updated attributes.
func (m *SetICValuesMessage) Attributes() []ICAttribute {
	m.sc.check()
	return copyAttributes(m.frame.ICAttribute)
}

// GetICValuesMessage lists the attributes a client asked for. The engine
// answers it on its own.
type GetICValuesMessage struct {
	borrow
	frame *GetICValuesFrame
}

func (*GetICValuesMessage) Kind() MessageKind { return KindGetICValues }

func (m *GetICValuesMessage) InputContextID() uint16 {
	m.sc.check()
	return m.frame.InputContextID
}

// AttributeIDs returns a copy of the requested attribute ids.
func (m *GetICValuesMessage) AttributeIDs() []uint16 {
	m.sc.check()
	ids := listItems[uint16](m.frame.ICAttribute)
	if len(ids) == 0 {
		return nil
	}
	return append([]uint16(nil), ids...)
}

// icMessage is the layout shared by messages that carry only ids.
type icMessage struct {
	borrow
	frame *ICFrame
}

func (m *icMessage) InputMethodID() uint16 {
	m.sc.check()
	return m.frame.InputMethodID
}

func (m *icMessage) InputContextID() uint16 {
	m.sc.check()
	return m.frame.InputContextID
}

// SetICFocusMessage is sent when a context gains focus.
type SetICFocusMessage struct{ icMessage }

func (*SetICFocusMessage) Kind() MessageKind { return KindSetICFocus }

// UnsetICFocusMessage is sent when a context loses focus.
type UnsetICFocusMessage struct{ icMessage }

func (*UnsetICFocusMessage) Kind() MessageKind { return KindUnsetICFocus }

// DestroyICMessage is sent when a context is destroyed. The context stays
// alive until the handler returns.
type DestroyICMessage struct{ icMessage }

func (*DestroyICMessage) Kind() MessageKind { return KindDestroyIC }

// SyncReplyMessage acknowledges a synchronous forward.
type SyncReplyMessage struct{ icMessage }

func (*SyncReplyMessage) Kind() MessageKind { return KindSyncReply }

// ResetICMessage asks the server to reset a context. The handler returns the
// text to commit immediately.
type ResetICMessage struct {
	icMessage
	reply *ResetICReplyFrame
}

func (*ResetICMessage) Kind() MessageKind { return KindResetIC }

// ForwardEventMessage carries a key event forwarded by the client.
type ForwardEventMessage struct {
	borrow
	frame *ForwardEventFrame
	flag  ForwardEventFlag
	key   *KeyEvent
}

func (*ForwardEventMessage) Kind() MessageKind { return KindForwardEvent }

func (m *ForwardEventMessage) InputContextID() uint16 {
	m.sc.check()
	return m.frame.InputContextID
}

func (m *ForwardEventMessage) Flag() ForwardEventFlag {
	m.sc.check()
	return m.flag
}

func (m *ForwardEventMessage) SequenceNumber() uint16 {
	m.sc.check()
	return m.frame.SequenceNumber
}

// HasKeyEvent reports whether the engine supplied the key event record.
func (m *ForwardEventMessage) HasKeyEvent() bool {
	m.sc.check()
	return m.key != nil
}

// KeyEvent returns a copy of the forwarded key event, or the zero value
// when HasKeyEvent is false. The original record belongs to the engine.
func (m *ForwardEventMessage) KeyEvent() KeyEvent {
	m.sc.check()
	if m.key == nil {
		return KeyEvent{}
	}
	return *m.key
}

// ExtForwardKeyEventMessage is the extension form of a forwarded key event.
type ExtForwardKeyEventMessage struct {
	borrow
	frame *ExtForwardKeyEventFrame
	flag  ForwardEventFlag
	key   *KeyEvent
}

func (*ExtForwardKeyEventMessage) Kind() MessageKind { return KindExtForwardKeyEvent }

func (m *ExtForwardKeyEventMessage) InputContextID() uint16 {
	m.sc.check()
	return m.frame.InputContextID
}

func (m *ExtForwardKeyEventMessage) Flag() ForwardEventFlag {
	m.sc.check()
	return m.flag
}

func (m *ExtForwardKeyEventMessage) SequenceNumber() uint16 {
	m.sc.check()
	return m.frame.SequenceNumber
}

// KeyEvent returns a copy of the forwarded key event. When the engine did
// not synthesize a record, one is built from the frame fields.
func (m *ExtForwardKeyEventMessage) KeyEvent() KeyEvent {
	m.sc.check()
	if m.key != nil {
		return *m.key
	}
	return KeyEvent{
		ResponseType: m.frame.XEventUUType,
		Detail:       m.frame.Keycode,
		Sequence:     m.frame.SequenceNumber,
		Time:         m.frame.Time,
		Event:        m.frame.Window,
		State:        m.frame.State,
		SameScreen:   1,
	}
}

// TriggerNotifyMessage reports that a trigger key was pressed.
type TriggerNotifyMessage struct {
	borrow
	frame *TriggerNotifyFrame
	flag  TriggerNotifyFlag
}

func (*TriggerNotifyMessage) Kind() MessageKind { return KindTriggerNotify }

func (m *TriggerNotifyMessage) InputContextID() uint16 {
	m.sc.check()
	return m.frame.InputContextID
}

func (m *TriggerNotifyMessage) Flag() TriggerNotifyFlag {
	m.sc.check()
	return m.flag
}

func (m *TriggerNotifyMessage) IndexOfKeysList() uint32 {
	m.sc.check()
	return m.frame.IndexOfKeysList
}

func (m *TriggerNotifyMessage) ClientSelectEventMask() uint32 {
	m.sc.check()
	return m.frame.ClientSelectEventMask
}

// PreeditStartReplyMessage answers a preedit start callback.
type PreeditStartReplyMessage struct {
	borrow
	frame *PreeditStartReplyFrame
}

func (*PreeditStartReplyMessage) Kind() MessageKind { return KindPreeditStartReply }

// ReturnValue is the maximum preedit length, or -1 for no limit.
func (m *PreeditStartReplyMessage) ReturnValue() int32 {
	m.sc.check()
	return m.frame.ReturnValue
}

// PreeditCaretReplyMessage answers a preedit caret callback.
type PreeditCaretReplyMessage struct {
	borrow
	frame *PreeditCaretReplyFrame
}

func (*PreeditCaretReplyMessage) Kind() MessageKind { return KindPreeditCaretReply }

func (m *PreeditCaretReplyMessage) Position() uint32 {
	m.sc.check()
	return m.frame.Position
}

// UnsupportedMessage stands for any opcode outside the table. Only the header
// is known.
type UnsupportedMessage struct {
	borrow
}

func (*UnsupportedMessage) Kind() MessageKind { return KindUnsupported }

// frameAs is the single place raw frame pointers become typed records.
func frameAs[T any](p unsafe.Pointer) *T {
	return (*T)(p)
}

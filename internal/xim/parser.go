package xim

// Parser classifies raw calls into messages.
type Parser struct {
	Strictness Strictness
}

// Parse produces exactly one Message for call. Opcodes outside the table,
// and known opcodes whose frame is missing, yield *UnsupportedMessage. The
// message is bound to a fresh scope that the caller closes when the dispatch
// ends.
func (p Parser) Parse(call *RawCall) Message {
	b := borrow{hdr: call.Header, sc: &scope{}}
	kind := KindOf(call.Header.MajorOpcode, call.Header.MinorOpcode)

	if kind != KindUnsupported && kind != KindDisconnect && call.Frame == nil {
		p.Strictness.violation(kind.String()+".frame", 0)
		return &UnsupportedMessage{borrow: b}
	}

	switch kind {
	case KindConnect:
		return &ConnectMessage{borrow: b, frame: frameAs[ConnectFrame](call.Frame)}
	case KindDisconnect:
		return &DisconnectMessage{borrow: b}
	case KindOpen:
		return &OpenMessage{borrow: b, frame: frameAs[OpenFrame](call.Frame)}
	case KindClose:
		return &CloseMessage{borrow: b, frame: frameAs[CloseFrame](call.Frame)}
	case KindCreateIC:
		return &CreateICMessage{
			borrow: b,
			frame:  frameAs[CreateICFrame](call.Frame),
			reply:  frameAs[CreateICReplyFrame](call.Arg),
		}
	case KindSetICValues:
		return &SetICValuesMessage{borrow: b, frame: frameAs[SetICValuesFrame](call.Frame)}
	case KindGetICValues:
		return &GetICValuesMessage{borrow: b, frame: frameAs[GetICValuesFrame](call.Frame)}
	case KindSetICFocus:
		return &SetICFocusMessage{icMessage{borrow: b, frame: frameAs[ICFrame](call.Frame)}}
	case KindUnsetICFocus:
		return &UnsetICFocusMessage{icMessage{borrow: b, frame: frameAs[ICFrame](call.Frame)}}
	case KindDestroyIC:
		return &DestroyICMessage{icMessage{borrow: b, frame: frameAs[ICFrame](call.Frame)}}
	case KindSyncReply:
		return &SyncReplyMessage{icMessage{borrow: b, frame: frameAs[ICFrame](call.Frame)}}
	case KindResetIC:
		return &ResetICMessage{
			icMessage: icMessage{borrow: b, frame: frameAs[ICFrame](call.Frame)},
			reply:     frameAs[ResetICReplyFrame](call.Arg),
		}
	case KindForwardEvent:
		f := frameAs[ForwardEventFrame](call.Frame)
		if call.Arg == nil {
			p.Strictness.violation("forward_event.key", 0)
		}
		return &ForwardEventMessage{
			borrow: b,
			frame:  f,
			flag:   DecodeForwardEventFlag(f.Flag, p.Strictness),
			key:    frameAs[KeyEvent](call.Arg),
		}
	case KindExtForwardKeyEvent:
		f := frameAs[ExtForwardKeyEventFrame](call.Frame)
		return &ExtForwardKeyEventMessage{
			borrow: b,
			frame:  f,
			flag:   DecodeExtForwardEventFlag(f.Flag, p.Strictness),
			key:    frameAs[KeyEvent](call.Arg),
		}
	case KindTriggerNotify:
		f := frameAs[TriggerNotifyFrame](call.Frame)
		return &TriggerNotifyMessage{
			borrow: b,
			frame:  f,
			flag:   DecodeTriggerNotifyFlag(f.Flag, p.Strictness),
		}
	case KindPreeditStartReply:
		return &PreeditStartReplyMessage{borrow: b, frame: frameAs[PreeditStartReplyFrame](call.Frame)}
	case KindPreeditCaretReply:
		return &PreeditCaretReplyMessage{borrow: b, frame: frameAs[PreeditCaretReplyFrame](call.Frame)}
	default:
		return &UnsupportedMessage{borrow: b}
	}
}

package xim

// XIM major opcodes the engine reports to the callback.
const (
	OpConnect           uint8 = 1
	OpDisconnect        uint8 = 3
	OpOpen              uint8 = 30
	OpClose             uint8 = 32
	OpTriggerNotify     uint8 = 35
	OpCreateIC          uint8 = 50
	OpDestroyIC         uint8 = 52
	OpSetICValues       uint8 = 54
	OpGetICValues       uint8 = 56
	OpSetICFocus        uint8 = 58
	OpUnsetICFocus      uint8 = 59
	OpForwardEvent      uint8 = 60
	OpSyncReply         uint8 = 62
	OpResetIC           uint8 = 64
	OpPreeditStartReply uint8 = 74
	OpPreeditCaretReply uint8 = 77
	OpExtension         uint8 = 128
)

// Extension minor opcodes, dispatched under OpExtension.
const (
	ExtSetEventMask    uint8 = 0x30
	ExtForwardKeyEvent uint8 = 0x32
	ExtMove            uint8 = 0x33
)

// MessageKind names a message variant.
type MessageKind int

const (
	KindUnsupported MessageKind = iota
	KindConnect
	KindDisconnect
	KindOpen
	KindClose
	KindCreateIC
	KindSetICValues
	KindGetICValues
	KindSetICFocus
	KindUnsetICFocus
	KindDestroyIC
	KindResetIC
	KindForwardEvent
	KindExtForwardKeyEvent
	KindSyncReply
	KindTriggerNotify
	KindPreeditStartReply
	KindPreeditCaretReply
)

var kindNames = [...]string{
	KindUnsupported:        "unsupported",
	KindConnect:            "connect",
	KindDisconnect:         "disconnect",
	KindOpen:               "open",
	KindClose:              "close",
	KindCreateIC:           "create_ic",
	KindSetICValues:        "set_ic_values",
	KindGetICValues:        "get_ic_values",
	KindSetICFocus:         "set_ic_focus",
	KindUnsetICFocus:       "unset_ic_focus",
	KindDestroyIC:          "destroy_ic",
	KindResetIC:            "reset_ic",
	KindForwardEvent:       "forward_event",
	KindExtForwardKeyEvent: "ext_forward_keyevent",
	KindSyncReply:          "sync_reply",
	KindTriggerNotify:      "trigger_notify",
	KindPreeditStartReply:  "preedit_start_reply",
	KindPreeditCaretReply:  "preedit_caret_reply",
}

func (k MessageKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// KindOf classifies an opcode pair. Pairs outside the table are
// KindUnsupported.
func KindOf(major, minor uint8) MessageKind {
	switch major {
	case OpConnect:
		return KindConnect
	case OpDisconnect:
		return KindDisconnect
	case OpOpen:
		return KindOpen
	case OpClose:
		return KindClose
	case OpTriggerNotify:
		return KindTriggerNotify
	case OpCreateIC:
		return KindCreateIC
	case OpDestroyIC:
		return KindDestroyIC
	case OpSetICValues:
		return KindSetICValues
	case OpGetICValues:
		return KindGetICValues
	case OpSetICFocus:
		return KindSetICFocus
	case OpUnsetICFocus:
		return KindUnsetICFocus
	case OpForwardEvent:
		return KindForwardEvent
	case OpSyncReply:
		return KindSyncReply
	case OpResetIC:
		return KindResetIC
	case OpPreeditStartReply:
		return KindPreeditStartReply
	case OpPreeditCaretReply:
		return KindPreeditCaretReply
	case OpExtension:
		if minor == ExtForwardKeyEvent {
			return KindExtForwardKeyEvent
		}
	}
	return KindUnsupported
}

package xim

import "fmt"

// Strictness selects how protocol surprises are handled. Strict panics so
// that engine/version skew shows up immediately in tests; Tolerant keeps the
// raw value and carries on, which is what a running input method wants.
type Strictness int

const (
	Tolerant Strictness = iota
	Strict
)

func (s Strictness) String() string {
	if s == Strict {
		return "strict"
	}
	return "tolerant"
}

func (s Strictness) violation(field string, v uint32) {
	if s == Strict {
		panic(&ProtocolViolationError{Field: field, Value: v})
	}
}

// TriggerNotifyFlag says which trigger key list fired. Values other than
// OnKeysList and OffKeysList are kept as-is; Known reports false for them.
type TriggerNotifyFlag uint32

const (
	OnKeysList  TriggerNotifyFlag = 0
	OffKeysList TriggerNotifyFlag = 1
)

// Known reports whether f is OnKeysList or OffKeysList.
func (f TriggerNotifyFlag) Known() bool {
	return f == OnKeysList || f == OffKeysList
}

func (f TriggerNotifyFlag) String() string {
	switch f {
	case OnKeysList:
		return "on_keys_list"
	case OffKeysList:
		return "off_keys_list"
	default:
		return fmt.Sprintf("other(%d)", uint32(f))
	}
}

// DecodeTriggerNotifyFlag maps the raw trigger notify flag.
func DecodeTriggerNotifyFlag(v uint32, s Strictness) TriggerNotifyFlag {
	f := TriggerNotifyFlag(v)
	if !f.Known() {
		s.violation("trigger_notify.flag", v)
	}
	return f
}

// ForwardEventFlag is the flag bitset of forwarded key events.
type ForwardEventFlag uint16

const (
	Synchronous         ForwardEventFlag = 1
	RequestFiltering    ForwardEventFlag = 2
	RequestLookupString ForwardEventFlag = 4

	forwardEventMask    = Synchronous | RequestFiltering | RequestLookupString
	extForwardEventMask = Synchronous
)

// Has reports whether every bit of other is set in f.
func (f ForwardEventFlag) Has(other ForwardEventFlag) bool {
	return f&other == other
}

// Unknown returns the bits of f outside the full forward-event flag set.
func (f ForwardEventFlag) Unknown() ForwardEventFlag {
	return f &^ forwardEventMask
}

// DecodeForwardEventFlag checks v against the forward event flag set.
func DecodeForwardEventFlag(v uint16, s Strictness) ForwardEventFlag {
	f := ForwardEventFlag(v)
	if f&^forwardEventMask != 0 {
		s.violation("forward_event.flag", uint32(v))
	}
	return f
}

// DecodeExtForwardEventFlag checks v against the extension's flag set, which
// only defines Synchronous.
func DecodeExtForwardEventFlag(v uint16, s Strictness) ForwardEventFlag {
	f := ForwardEventFlag(v)
	if f&^extForwardEventMask != 0 {
		s.violation("ext_forward_keyevent.flag", uint32(v))
	}
	return f
}

// DecodeInputStyle checks a style reported by the engine.
func DecodeInputStyle(v uint32, s Strictness) InputStyle {
	style := InputStyle(v)
	if !style.Known() {
		s.violation("input_style", v)
	}
	return style
}

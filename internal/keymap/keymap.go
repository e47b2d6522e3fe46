package keymap

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Map is a snapshot of the server's keyboard mapping.
type Map struct {
	minKeycode xproto.Keycode
	perCode    int
	keysyms    []xproto.Keysym
}

// New builds a Map from a GetKeyboardMapping reply laid out as perCode
// keysyms for each keycode starting at first.
func New(first xproto.Keycode, perCode int, keysyms []xproto.Keysym) *Map {
	return &Map{minKeycode: first, perCode: perCode, keysyms: keysyms}
}

// Load fetches the keyboard mapping over conn.
func Load(conn *xgb.Conn) (*Map, error) {
	setup := xproto.Setup(conn)
	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)
	reply, err := xproto.GetKeyboardMapping(conn, setup.MinKeycode, count).Reply()
	if err != nil {
		return nil, fmt.Errorf("get keyboard mapping: %w", err)
	}
	return New(setup.MinKeycode, int(reply.KeysymsPerKeycode), reply.Keysyms), nil
}

// Lookup returns the keysym of keycode for the given modifier state. Only
// the shift level is considered; groups and lock are ignored.
func (m *Map) Lookup(keycode uint8, state uint16) uint32 {
	code := xproto.Keycode(keycode)
	if m == nil || m.perCode == 0 || code < m.minKeycode {
		return 0
	}
	base := int(code-m.minKeycode) * m.perCode
	if base >= len(m.keysyms) {
		return 0
	}
	col := 0
	if state&xproto.ModMaskShift != 0 && m.perCode > 1 && m.keysyms[base+1] != 0 {
		col = 1
	}
	sym := uint32(m.keysyms[base+col])
	if col == 0 && state&xproto.ModMaskShift != 0 && sym >= 'a' && sym <= 'z' {
		sym -= 'a' - 'A'
	}
	return sym
}

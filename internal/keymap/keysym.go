// Package keymap resolves keycodes to keysyms and keysym names to values.
package keymap

import (
	"fmt"
	"strconv"
	"strings"
)

// Keysyms used by the daemon and by trigger configuration.
const (
	XKSpace          uint32 = 0x0020
	XKBackSpace      uint32 = 0xff08
	XKTab            uint32 = 0xff09
	XKReturn         uint32 = 0xff0d
	XKEscape         uint32 = 0xff1b
	XKKanji          uint32 = 0xff21
	XKMuhenkan       uint32 = 0xff22
	XKHenkan         uint32 = 0xff23
	XKZenkakuHankaku uint32 = 0xff2a
	XKHangul         uint32 = 0xff31
	XKHangulHanja    uint32 = 0xff34
	XKF1             uint32 = 0xffbe
	XKShiftL         uint32 = 0xffe1
	XKShiftR         uint32 = 0xffe2
	XKControlL       uint32 = 0xffe3
	XKControlR       uint32 = 0xffe4
	XKAltL           uint32 = 0xffe9
	XKAltR           uint32 = 0xffea
	XKSuperL         uint32 = 0xffeb
	XKSuperR         uint32 = 0xffec
	XKDelete         uint32 = 0xffff
)

var keysymNames = map[string]uint32{
	"space":           XKSpace,
	"backspace":       XKBackSpace,
	"tab":             XKTab,
	"return":          XKReturn,
	"enter":           XKReturn,
	"escape":          XKEscape,
	"kanji":           XKKanji,
	"muhenkan":        XKMuhenkan,
	"henkan":          XKHenkan,
	"zenkaku_hankaku": XKZenkakuHankaku,
	"hangul":          XKHangul,
	"hangul_hanja":    XKHangulHanja,
	"shift_l":         XKShiftL,
	"shift_r":         XKShiftR,
	"control_l":       XKControlL,
	"control_r":       XKControlR,
	"alt_l":           XKAltL,
	"alt_r":           XKAltR,
	"super_l":         XKSuperL,
	"super_r":         XKSuperR,
	"delete":          XKDelete,
}

// ParseKeysym resolves a keysym name. It accepts the names above, "f1" to
// "f35", single printable Latin-1 characters and hex values like "0xff2a".
func ParseKeysym(name string) (uint32, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return 0, fmt.Errorf("empty keysym")
	}
	if v, ok := keysymNames[n]; ok {
		return v, nil
	}
	if strings.HasPrefix(n, "0x") {
		v, err := strconv.ParseUint(n[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("keysym %q: %w", name, err)
		}
		return uint32(v), nil
	}
	if len(n) > 1 && n[0] == 'f' {
		if i, err := strconv.Atoi(n[1:]); err == nil && i >= 1 && i <= 35 {
			return XKF1 + uint32(i-1), nil
		}
	}
	if r := []rune(n); len(r) == 1 && r[0] > 0x20 && r[0] <= 0xff && r[0] != 0x7f {
		return uint32(r[0]), nil
	}
	return 0, fmt.Errorf("unknown keysym %q", name)
}

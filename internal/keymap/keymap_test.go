package keymap

import (
	"testing"

	"github.com/jezek/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeysym(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"space", XKSpace},
		{"Zenkaku_Hankaku", XKZenkakuHankaku},
		{"f1", XKF1},
		{"F12", XKF1 + 11},
		{"t", 't'},
		{"0xff31", XKHangul},
	}
	for _, tt := range tests {
		got, err := ParseKeysym(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "f99", "nosuchkey", "0xzz"} {
		_, err := ParseKeysym(bad)
		assert.Error(t, err, bad)
	}
}

func TestLookup(t *testing.T) {
	// Keycodes 8 and 9, two levels each.
	m := New(8, 2, []xproto.Keysym{'t', 'T', '1', '!'})

	assert.Equal(t, uint32('t'), m.Lookup(8, 0))
	assert.Equal(t, uint32('T'), m.Lookup(8, xproto.ModMaskShift))
	assert.Equal(t, uint32('!'), m.Lookup(9, xproto.ModMaskShift))
	assert.Zero(t, m.Lookup(7, 0))
	assert.Zero(t, m.Lookup(200, 0))

	single := New(8, 1, []xproto.Keysym{'q'})
	assert.Equal(t, uint32('Q'), single.Lookup(8, xproto.ModMaskShift))

	var nilMap *Map
	assert.Zero(t, nilMap.Lookup(8, 0))
}

package xim_test

import (
	"testing"

	"github.com/jezek/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ximd/internal/xim"
)

func TestParseInputStyle(t *testing.T) {
	tests := []struct {
		in   string
		want xim.InputStyle
	}{
		{"on_the_spot", xim.PreeditCallbacks | xim.StatusNothing},
		{"over_the_spot", xim.PreeditPosition | xim.StatusNothing},
		{"off_the_spot", xim.PreeditArea | xim.StatusArea},
		{"root", xim.PreeditNothing | xim.StatusNothing},
		{"preedit_position|status_area", xim.PreeditPosition | xim.StatusArea},
		{" Preedit_None | status_none ", xim.PreeditNone | xim.StatusNone},
	}
	for _, tt := range tests {
		got, err := xim.ParseInputStyle(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := xim.ParseInputStyle("preedit_sideways")
	assert.Error(t, err)
}

func TestInputStyleString(t *testing.T) {
	assert.Equal(t, "preedit_position|status_nothing", xim.StyleOverTheSpot.String())
	assert.Equal(t, "none", xim.InputStyle(0).String())
	assert.Equal(t, "preedit_area|0x8000", (xim.PreeditArea | 0x8000).String())
	assert.False(t, xim.InputStyle(0x8000).Known())
	assert.True(t, xim.StyleRoot.Known())
}

func TestHandles(t *testing.T) {
	_, ok := xim.ClientOf(0)
	assert.False(t, ok)
	_, ok = xim.InputContextOf(0)
	assert.False(t, ok)

	ic, ok := xim.InputContextOf(0x2a)
	require.True(t, ok)
	assert.True(t, ic.Valid())
	assert.Equal(t, "ic 0x2a", ic.String())

	var zero xim.InputContext
	assert.False(t, zero.Valid())
}

func TestKeyEvent(t *testing.T) {
	ev := xim.KeyEvent{ResponseType: xim.KeyRelease | 0x80, Detail: 38, State: 4, SameScreen: 1, Event: 9}
	assert.True(t, ev.IsRelease())

	x := ev.XProto()
	assert.Equal(t, xproto.Keycode(38), x.Detail)
	assert.Equal(t, xproto.Window(9), x.Event)
	assert.True(t, x.SameScreen)
}

func TestRegistry(t *testing.T) {
	r := xim.NewRegistry()
	r.Insert(9, 1)
	r.Insert(3, 2)
	r.Insert(5, 1)

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []xim.Handle{3, 5, 9}, r.Handles())
	assert.Equal(t, []xim.Handle{5, 9}, r.OwnedBy(1))

	r.Remove(5)
	r.Remove(100)
	assert.False(t, r.Contains(5))
	assert.True(t, r.Contains(9))
}

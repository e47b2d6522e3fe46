package xim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ximd/internal/xim"
	"ximd/internal/xim/ximtest"
)

func TestNewServerFailure(t *testing.T) {
	engine := &ximtest.Engine{FailCreate: true}
	_, err := xim.NewServer(engine, nil, xim.Options{Params: xim.CreateParams{ServerName: "x"}})
	assert.ErrorIs(t, err, xim.ErrCreate)
}

func TestNewServerPassesParams(t *testing.T) {
	engine := &ximtest.Engine{}
	params := xim.CreateParams{
		ServerName:  "ximd",
		Locale:      xim.AllLocales,
		InputStyles: []xim.InputStyle{xim.StyleOverTheSpot},
		Encodings:   []string{"COMPOUND_TEXT"},
	}
	srv, err := xim.NewServer(engine, nil, xim.Options{Params: params})
	require.NoError(t, err)

	assert.Equal(t, ximtest.DefaultIM, srv.IM())
	assert.Equal(t, params, engine.Params)
	assert.Same(t, srv, engine.Dispatcher)
}

func TestOpenClose(t *testing.T) {
	srv, engine := newServer(t, nil, xim.Options{})

	srv.Close()
	assert.Zero(t, engine.CountOf("Close"))

	require.NoError(t, srv.Open())
	srv.Close()
	assert.Equal(t, 1, engine.CountOf("Close"))

	engine.FailOpen = true
	assert.ErrorIs(t, srv.Open(), xim.ErrOpen)
}

func TestDestroy(t *testing.T) {
	obs := &countingObserver{}
	srv, engine := newServer(t, &recorder{}, xim.Options{CloseOnDestroy: true, Observer: obs})
	require.NoError(t, srv.Open())

	create, _ := ximtest.CreateIC(testClient, testIC)
	engine.Inject(create)
	h := srv.Handle()
	require.True(t, h.IsAlive(mustIC(t, testIC)))

	require.Len(t, obs.dispatches, 1)
	assert.Equal(t, []xim.Handle{testIC}, obs.dispatches[0].Live)

	srv.Destroy()
	srv.Destroy()
	assert.Equal(t, 1, obs.destroyed)
	assert.Len(t, obs.dispatches, 1)
	assert.Equal(t, 1, engine.CountOf("Destroy"))
	assert.Equal(t, 1, engine.CountOf("Close"))
	assert.Zero(t, srv.Registry().Len())
	assert.False(t, h.IsAlive(mustIC(t, testIC)))
	assert.False(t, srv.FilterEvent(nil))
	assert.ErrorIs(t, srv.Open(), xim.ErrOpen)
}

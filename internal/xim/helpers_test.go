package xim_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ximd/internal/xim"
	"ximd/internal/xim/ximtest"
)

const (
	testClient xim.Handle = 0x20
	testIC     xim.Handle = 5
)

// recorder is a Handler that remembers message kinds and lets tests hook
// individual kinds.
type recorder struct {
	xim.NopHandler

	kinds []xim.MessageKind

	onCreate  func(srv xim.ServerHandle, ic xim.InputContext, m *xim.CreateICMessage)
	onDestroy func(srv xim.ServerHandle, ic xim.InputContext, m *xim.DestroyICMessage)
	onSet     func(srv xim.ServerHandle, ic xim.InputContext, m *xim.SetICValuesMessage)
	onForward func(srv xim.ServerHandle, ic xim.InputContext, m *xim.ForwardEventMessage)
	onTrigger func(m *xim.TriggerNotifyMessage)
	onReset   func(srv xim.ServerHandle, ic xim.InputContext) []byte
	onAny     func(m xim.Message)
}

func (r *recorder) saw(m xim.Message) {
	r.kinds = append(r.kinds, m.Kind())
	if r.onAny != nil {
		r.onAny(m)
	}
}

func (r *recorder) HandleConnect(_ xim.ServerHandle, _ xim.Client, m *xim.ConnectMessage) { r.saw(m) }
func (r *recorder) HandleDisconnect(_ xim.ServerHandle, _ xim.Client, m *xim.DisconnectMessage) {
	r.saw(m)
}
func (r *recorder) HandleOpen(_ xim.ServerHandle, _ xim.Client, m *xim.OpenMessage)   { r.saw(m) }
func (r *recorder) HandleClose(_ xim.ServerHandle, _ xim.Client, m *xim.CloseMessage) { r.saw(m) }

func (r *recorder) HandleCreateIC(srv xim.ServerHandle, _ xim.Client, ic xim.InputContext, m *xim.CreateICMessage) {
	r.saw(m)
	if r.onCreate != nil {
		r.onCreate(srv, ic, m)
	}
}

func (r *recorder) HandleSetICValues(srv xim.ServerHandle, _ xim.Client, ic xim.InputContext, m *xim.SetICValuesMessage) {
	r.saw(m)
	if r.onSet != nil {
		r.onSet(srv, ic, m)
	}
}

func (r *recorder) HandleGetICValues(_ xim.ServerHandle, _ xim.Client, _ xim.InputContext, m *xim.GetICValuesMessage) {
	r.saw(m)
}

func (r *recorder) HandleSetICFocus(_ xim.ServerHandle, _ xim.Client, _ xim.InputContext, m *xim.SetICFocusMessage) {
	r.saw(m)
}

func (r *recorder) HandleUnsetICFocus(_ xim.ServerHandle, _ xim.Client, _ xim.InputContext, m *xim.UnsetICFocusMessage) {
	r.saw(m)
}

func (r *recorder) HandleDestroyIC(srv xim.ServerHandle, _ xim.Client, ic xim.InputContext, m *xim.DestroyICMessage) {
	r.saw(m)
	if r.onDestroy != nil {
		r.onDestroy(srv, ic, m)
	}
}

func (r *recorder) HandleResetIC(srv xim.ServerHandle, _ xim.Client, ic xim.InputContext, m *xim.ResetICMessage) []byte {
	r.saw(m)
	if r.onReset != nil {
		return r.onReset(srv, ic)
	}
	return nil
}

func (r *recorder) HandleForwardEvent(srv xim.ServerHandle, _ xim.Client, ic xim.InputContext, m *xim.ForwardEventMessage) {
	r.saw(m)
	if r.onForward != nil {
		r.onForward(srv, ic, m)
	}
}

func (r *recorder) HandleExtForwardKeyEvent(_ xim.ServerHandle, _ xim.Client, _ xim.InputContext, m *xim.ExtForwardKeyEventMessage) {
	r.saw(m)
}

func (r *recorder) HandleSyncReply(_ xim.ServerHandle, _ xim.Client, _ xim.InputContext, m *xim.SyncReplyMessage) {
	r.saw(m)
}

func (r *recorder) HandleTriggerNotify(_ xim.ServerHandle, _ xim.Client, _ xim.InputContext, m *xim.TriggerNotifyMessage) {
	r.saw(m)
	if r.onTrigger != nil {
		r.onTrigger(m)
	}
}

func (r *recorder) HandlePreeditStartReply(_ xim.ServerHandle, _ xim.Client, _ xim.InputContext, m *xim.PreeditStartReplyMessage) {
	r.saw(m)
}

func (r *recorder) HandlePreeditCaretReply(_ xim.ServerHandle, _ xim.Client, _ xim.InputContext, m *xim.PreeditCaretReplyMessage) {
	r.saw(m)
}

func (r *recorder) HandleUnsupported(_ xim.ServerHandle, _ xim.Client, _ xim.InputContext, m *xim.UnsupportedMessage) {
	r.saw(m)
}

// countingObserver records observer callbacks.
type countingObserver struct {
	dispatches []xim.DispatchInfo
	rejected   []string
	destroyed  int
}

func (o *countingObserver) ObserveDispatch(info xim.DispatchInfo) {
	o.dispatches = append(o.dispatches, info)
}

func (o *countingObserver) ObserveRejected(op string, _ xim.Handle) {
	o.rejected = append(o.rejected, op)
}

func (o *countingObserver) ObserveDestroyed() {
	o.destroyed++
}

func newServer(t *testing.T, h xim.Handler, opts xim.Options) (*xim.Server, *ximtest.Engine) {
	t.Helper()
	engine := &ximtest.Engine{}
	if opts.Params.ServerName == "" {
		opts.Params.ServerName = "test"
	}
	srv, err := xim.NewServer(engine, h, opts)
	require.NoError(t, err)
	engine.Reset()
	return srv, engine
}

func mustIC(t *testing.T, h xim.Handle) xim.InputContext {
	t.Helper()
	ic, ok := xim.InputContextOf(h)
	require.True(t, ok)
	return ic
}

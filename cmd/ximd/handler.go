package main

import (
	"fmt"
	"log/slog"

	"ximd/internal/ctext"
	"ximd/internal/keymap"
	"ximd/internal/xim"
)

// demoText is committed when the user presses 't'.
const demoText = "hello world你好世界켐ㅇㄹ貴方元気？☺"

// keyLookup resolves a key event to a keysym. *keymap.Map implements it.
type keyLookup interface {
	Lookup(keycode uint8, state uint16) uint32
}

// echoHandler forwards every key back to the client, except 't' which
// commits demoText instead.
type echoHandler struct {
	xim.NopHandler

	keys    keyLookup
	trigger uint32
	text    []byte
	log     *slog.Logger
}

func newEchoHandler(keys keyLookup, logger *slog.Logger) (*echoHandler, error) {
	text, err := ctext.UTF8ToCompoundText([]byte(demoText))
	if err != nil {
		return nil, fmt.Errorf("encode demo text: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &echoHandler{
		keys:    keys,
		trigger: 't',
		text:    text,
		log:     logger,
	}, nil
}

func (h *echoHandler) HandleConnect(_ xim.ServerHandle, client xim.Client, m *xim.ConnectMessage) {
	major, minor := m.ProtocolVersion()
	h.log.Info("client connected", "client", client.Handle().String(), "major", major, "minor", minor)
}

func (h *echoHandler) HandleDisconnect(_ xim.ServerHandle, client xim.Client, _ *xim.DisconnectMessage) {
	h.log.Info("client disconnected", "client", client.Handle().String())
}

func (h *echoHandler) HandleCreateIC(srv xim.ServerHandle, client xim.Client, ic xim.InputContext, _ *xim.CreateICMessage) {
	style, err := srv.InputStyle(ic)
	if err != nil {
		h.log.Warn("input style", "ic", ic.Handle().String(), "error", err)
		return
	}
	h.log.Debug("input context created",
		"client", client.Handle().String(),
		"ic", ic.Handle().String(),
		"style", style.String())
}

func (h *echoHandler) HandleDestroyIC(_ xim.ServerHandle, _ xim.Client, ic xim.InputContext, _ *xim.DestroyICMessage) {
	h.log.Debug("input context destroyed", "ic", ic.Handle().String())
}

func (h *echoHandler) HandleForwardEvent(srv xim.ServerHandle, _ xim.Client, ic xim.InputContext, m *xim.ForwardEventMessage) {
	if !m.HasKeyEvent() {
		h.log.Warn("forward event without key record", "ic", ic.Handle().String())
		return
	}
	h.handleKey(srv, ic, m.KeyEvent())
}

func (h *echoHandler) HandleExtForwardKeyEvent(srv xim.ServerHandle, _ xim.Client, ic xim.InputContext, m *xim.ExtForwardKeyEventMessage) {
	h.handleKey(srv, ic, m.KeyEvent())
}

func (h *echoHandler) handleKey(srv xim.ServerHandle, ic xim.InputContext, ev xim.KeyEvent) {
	if !ev.IsRelease() && h.keys.Lookup(ev.Detail, ev.State) == h.trigger {
		if err := srv.CommitString(ic, xim.CommitChars(h.text)); err != nil {
			h.log.Warn("commit failed", "ic", ic.Handle().String(), "error", err)
		}
		return
	}
	if err := srv.ForwardEvent(ic, ev); err != nil {
		h.log.Warn("forward failed", "ic", ic.Handle().String(), "error", err)
	}
}

func (h *echoHandler) HandleTriggerNotify(_ xim.ServerHandle, _ xim.Client, ic xim.InputContext, m *xim.TriggerNotifyMessage) {
	h.log.Debug("trigger", "ic", ic.Handle().String(), "flag", m.Flag().String())
}

func (h *echoHandler) HandleUnsupported(_ xim.ServerHandle, _ xim.Client, _ xim.InputContext, m *xim.UnsupportedMessage) {
	hdr := m.Header()
	h.log.Debug("unsupported message", "major", hdr.MajorOpcode, "minor", hdr.MinorOpcode)
}

var _ keyLookup = (*keymap.Map)(nil)

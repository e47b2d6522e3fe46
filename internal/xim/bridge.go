package xim

import (
	"log/slog"
	"math"
	"time"
)

// Dispatch is the callback bridge. The engine calls it once per protocol
// event, sequentially.
func (s *Server) Dispatch(call *RawCall) {
	if call == nil {
		return
	}
	start := time.Now()

	if call.Server != s.im {
		if s.opts.Strictness == Strict {
			panic(&ServerMismatchError{Want: s.im, Got: call.Server})
		}
		s.log.Warn("dropping event for unexpected server", "got", call.Server.String())
		return
	}

	client, _ := ClientOf(call.Client)
	ic, _ := InputContextOf(call.IC)
	kind := KindOf(call.Header.MajorOpcode, call.Header.MinorOpcode)

	var pendingRemoval InputContext
	switch kind {
	case KindCreateIC:
		if ic.Valid() {
			s.registry.Insert(ic.h, client.h)
		}
	case KindDestroyIC:
		pendingRemoval = ic
	}

	msg := s.parser.Parse(call)
	if msg.Kind() == KindUnsupported && s.opts.Strictness == Strict {
		panic(&UnsupportedMessageError{Major: call.Header.MajorOpcode, Minor: call.Header.MinorOpcode})
	}

	s.deliver(client, ic, msg)

	if pendingRemoval.Valid() {
		s.registry.Remove(pendingRemoval.h)
	}
	if kind == KindDisconnect && client.Valid() {
		s.afterDisconnect(client)
	}

	if s.opts.Observer != nil {
		s.opts.Observer.ObserveDispatch(DispatchInfo{
			Kind:     msg.Kind(),
			Major:    call.Header.MajorOpcode,
			Minor:    call.Header.MinorOpcode,
			Client:   client.h,
			IC:       ic.h,
			Live:     s.registry.Handles(),
			Duration: time.Since(start),
		})
	}
}

// deliver runs the handler method for msg and closes the message scope when
// it returns, so nothing borrowed outlives the call.
func (s *Server) deliver(client Client, ic InputContext, msg Message) {
	defer msg.borrowed().close()

	srv := s.Handle()
	h := s.handler
	switch m := msg.(type) {
	case *ConnectMessage:
		h.HandleConnect(srv, client, m)
	case *DisconnectMessage:
		h.HandleDisconnect(srv, client, m)
	case *OpenMessage:
		h.HandleOpen(srv, client, m)
	case *CloseMessage:
		h.HandleClose(srv, client, m)
	case *CreateICMessage:
		h.HandleCreateIC(srv, client, ic, m)
	case *SetICValuesMessage:
		h.HandleSetICValues(srv, client, ic, m)
	case *GetICValuesMessage:
		h.HandleGetICValues(srv, client, ic, m)
	case *SetICFocusMessage:
		h.HandleSetICFocus(srv, client, ic, m)
	case *UnsetICFocusMessage:
		h.HandleUnsetICFocus(srv, client, ic, m)
	case *DestroyICMessage:
		h.HandleDestroyIC(srv, client, ic, m)
	case *ResetICMessage:
		s.writeResetReply(m, h.HandleResetIC(srv, client, ic, m))
	case *ForwardEventMessage:
		h.HandleForwardEvent(srv, client, ic, m)
	case *ExtForwardKeyEventMessage:
		h.HandleExtForwardKeyEvent(srv, client, ic, m)
	case *SyncReplyMessage:
		h.HandleSyncReply(srv, client, ic, m)
	case *TriggerNotifyMessage:
		h.HandleTriggerNotify(srv, client, ic, m)
	case *PreeditStartReplyMessage:
		h.HandlePreeditStartReply(srv, client, ic, m)
	case *PreeditCaretReplyMessage:
		h.HandlePreeditCaretReply(srv, client, ic, m)
	case *UnsupportedMessage:
		s.log.Debug("unsupported message",
			"major", m.hdr.MajorOpcode,
			"minor", m.hdr.MinorOpcode)
		h.HandleUnsupported(srv, client, ic, m)
	}
}

// writeResetReply moves text into an engine allocation referenced by the
// reply. Empty text leaves the reply untouched.
func (s *Server) writeResetReply(m *ResetICMessage, text []byte) {
	if len(text) == 0 || m.reply == nil {
		return
	}
	if len(text) > math.MaxUint16 {
		s.log.Warn("reset text too long, dropped", "bytes", len(text))
		return
	}
	m.reply.CommittedString = s.engine.AllocBytes(text)
	m.reply.ByteLengthOfCommittedString = uint16(len(text))
}

func (s *Server) afterDisconnect(client Client) {
	owned := s.registry.OwnedBy(client.h)
	if len(owned) == 0 {
		return
	}
	if !s.opts.ReapOnDisconnect {
		s.log.Debug("client disconnected with live contexts",
			slog.String("client", client.h.String()),
			slog.Int("contexts", len(owned)))
		return
	}
	for _, h := range owned {
		s.registry.Remove(h)
	}
	s.log.Debug("reaped contexts of disconnected client",
		slog.String("client", client.h.String()),
		slog.Int("contexts", len(owned)))
}

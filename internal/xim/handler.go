package xim

// Handler receives typed messages, one method per kind. Embed NopHandler and
// override only what you need.
//
// Messages must not be kept past the method's return. The ServerHandle,
// Client and InputContext values may be kept.
type Handler interface {
	HandleConnect(srv ServerHandle, client Client, m *ConnectMessage)
	HandleDisconnect(srv ServerHandle, client Client, m *DisconnectMessage)
	HandleOpen(srv ServerHandle, client Client, m *OpenMessage)
	HandleClose(srv ServerHandle, client Client, m *CloseMessage)
	HandleCreateIC(srv ServerHandle, client Client, ic InputContext, m *CreateICMessage)
	HandleSetICValues(srv ServerHandle, client Client, ic InputContext, m *SetICValuesMessage)
	HandleGetICValues(srv ServerHandle, client Client, ic InputContext, m *GetICValuesMessage)
	HandleSetICFocus(srv ServerHandle, client Client, ic InputContext, m *SetICFocusMessage)
	HandleUnsetICFocus(srv ServerHandle, client Client, ic InputContext, m *UnsetICFocusMessage)
	HandleDestroyIC(srv ServerHandle, client Client, ic InputContext, m *DestroyICMessage)
	// HandleResetIC returns the text to commit right away, or nil.
	HandleResetIC(srv ServerHandle, client Client, ic InputContext, m *ResetICMessage) []byte
	HandleForwardEvent(srv ServerHandle, client Client, ic InputContext, m *ForwardEventMessage)
	HandleExtForwardKeyEvent(srv ServerHandle, client Client, ic InputContext, m *ExtForwardKeyEventMessage)
	HandleSyncReply(srv ServerHandle, client Client, ic InputContext, m *SyncReplyMessage)
	HandleTriggerNotify(srv ServerHandle, client Client, ic InputContext, m *TriggerNotifyMessage)
	HandlePreeditStartReply(srv ServerHandle, client Client, ic InputContext, m *PreeditStartReplyMessage)
	HandlePreeditCaretReply(srv ServerHandle, client Client, ic InputContext, m *PreeditCaretReplyMessage)
	HandleUnsupported(srv ServerHandle, client Client, ic InputContext, m *UnsupportedMessage)
}

// NopHandler implements every Handler method as a no-op.
type NopHandler struct{}

var _ Handler = NopHandler{}

func (NopHandler) HandleConnect(ServerHandle, Client, *ConnectMessage)       {}
func (NopHandler) HandleDisconnect(ServerHandle, Client, *DisconnectMessage) {}
func (NopHandler) HandleOpen(ServerHandle, Client, *OpenMessage)             {}
func (NopHandler) HandleClose(ServerHandle, Client, *CloseMessage)           {}

func (NopHandler) HandleCreateIC(ServerHandle, Client, InputContext, *CreateICMessage)         {}
func (NopHandler) HandleSetICValues(ServerHandle, Client, InputContext, *SetICValuesMessage)   {}
func (NopHandler) HandleGetICValues(ServerHandle, Client, InputContext, *GetICValuesMessage)   {}
func (NopHandler) HandleSetICFocus(ServerHandle, Client, InputContext, *SetICFocusMessage)     {}
func (NopHandler) HandleUnsetICFocus(ServerHandle, Client, InputContext, *UnsetICFocusMessage) {}
func (NopHandler) HandleDestroyIC(ServerHandle, Client, InputContext, *DestroyICMessage)       {}

func (NopHandler) HandleResetIC(ServerHandle, Client, InputContext, *ResetICMessage) []byte {
	return nil
}

func (NopHandler) HandleForwardEvent(ServerHandle, Client, InputContext, *ForwardEventMessage) {}
func (NopHandler) HandleExtForwardKeyEvent(ServerHandle, Client, InputContext, *ExtForwardKeyEventMessage) {
}
func (NopHandler) HandleSyncReply(ServerHandle, Client, InputContext, *SyncReplyMessage)         {}
func (NopHandler) HandleTriggerNotify(ServerHandle, Client, InputContext, *TriggerNotifyMessage) {}
func (NopHandler) HandlePreeditStartReply(ServerHandle, Client, InputContext, *PreeditStartReplyMessage) {
}
func (NopHandler) HandlePreeditCaretReply(ServerHandle, Client, InputContext, *PreeditCaretReplyMessage) {
}
func (NopHandler) HandleUnsupported(ServerHandle, Client, InputContext, *UnsupportedMessage) {}

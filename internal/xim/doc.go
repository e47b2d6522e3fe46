// Package xim turns the single untyped callback of a native XIM server engine
// into typed messages and keeps track of which input contexts are still alive.
//
// # Architecture Overview
//
// The native engine (xcb-imdkit) owns the XIM wire protocol. For every
// protocol event it invokes one callback with raw opcodes and pointers to
// frame and reply records. This package sits between that callback and
// application code:
//
//	native engine
//	     ↓  RawCall
//	Server.Dispatch ──→ Parser ──→ Message
//	     │                            ↓
//	     │  Registry update      Handler method
//	     │                            ↓
//	     └────────────────────── ServerHandle ──→ native engine
//
// # Liveness
//
// A context handle may be used for outbound requests iff it is present in the
// Registry. CreateIC inserts it before the handler runs, DestroyIC removes it
// after the handler returns, so a handler always sees its own context alive.
// Requests against any other handle fail with ErrDeadInputContext and never
// reach the engine.
//
// # Borrowed data
//
// Messages read straight from the engine's records. The records are valid only
// while Dispatch runs, so every message is tied to a dispatch scope that is
// closed when the handler returns. Accessing a message after that panics with
// ErrScopeClosed. Byte slices handed out by accessors are copies and may be
// kept.
//
// # Threading
//
// Dispatch is strictly sequential: the engine calls it from one event loop, to
// completion, one event at a time. Nothing in this package locks.
package xim

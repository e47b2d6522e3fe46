package xim

import (
	"fmt"
	"log/slog"
)

// Options configures a Server.
type Options struct {
	Params CreateParams

	// Strictness decides whether protocol surprises panic.
	Strictness Strictness

	// ReapOnDisconnect removes every context of a disconnecting client from
	// the registry after the Disconnect handler returns. Leave it off for
	// engines that send DestroyIC for each context themselves.
	ReapOnDisconnect bool

	// CloseOnDestroy closes the input method before destroying it.
	CloseOnDestroy bool

	Logger   *slog.Logger
	Observer Observer
}

// Server owns one native engine instance, its callback bridge and the
// registry of live input contexts. It is driven from a single goroutine.
type Server struct {
	engine   Engine
	im       Handle
	handler  Handler
	registry *Registry
	parser   Parser
	opts     Options
	log      *slog.Logger

	opened    bool
	destroyed bool
}

// NewServer creates the native server. A nil handler is replaced with
// NopHandler.
func NewServer(engine Engine, handler Handler, opts Options) (*Server, error) {
	if handler == nil {
		handler = NopHandler{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		engine:   engine,
		handler:  handler,
		registry: NewRegistry(),
		parser:   Parser{Strictness: opts.Strictness},
		opts:     opts,
		log:      logger.With(slog.String("server", opts.Params.ServerName)),
	}

	im, ok := engine.Create(opts.Params, s)
	if !ok || im.IsZero() {
		return nil, fmt.Errorf("create %q: %w", opts.Params.ServerName, ErrCreate)
	}
	s.im = im

	s.log.Debug("server created",
		"im", im.String(),
		"locale_bytes", len(opts.Params.Locale),
		"styles", len(opts.Params.InputStyles),
		"strictness", opts.Strictness.String())
	return s, nil
}

// Open opens the input method so clients can find it.
func (s *Server) Open() error {
	if s.destroyed {
		return fmt.Errorf("open: server destroyed: %w", ErrOpen)
	}
	if !s.engine.Open() {
		return ErrOpen
	}
	s.opened = true
	s.log.Info("input method opened")
	return nil
}

// Close closes the input method. The server can be opened again.
func (s *Server) Close() {
	if s.destroyed || !s.opened {
		return
	}
	s.engine.Close()
	s.opened = false
	s.log.Info("input method closed")
}

// Destroy releases the native server. Every context becomes dead.
func (s *Server) Destroy() {
	if s.destroyed {
		return
	}
	if s.opts.CloseOnDestroy {
		s.Close()
	}
	s.engine.Destroy()
	s.destroyed = true
	s.registry = NewRegistry()
	if s.opts.Observer != nil {
		s.opts.Observer.ObserveDestroyed()
	}
	s.log.Debug("server destroyed")
}

// FilterEvent hands a display-server event to the engine. It reports whether
// the engine consumed it; protocol events are dispatched before it returns.
func (s *Server) FilterEvent(ev RawEvent) bool {
	if s.destroyed {
		return false
	}
	return s.engine.FilterEvent(ev)
}

// Handle returns a non-owning view for issuing requests.
func (s *Server) Handle() ServerHandle {
	return ServerHandle{s: s}
}

// Registry returns the live contexts.
func (s *Server) Registry() *Registry {
	return s.registry
}

// IM returns the native identity of the server.
func (s *Server) IM() Handle {
	return s.im
}

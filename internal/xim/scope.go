package xim

// scope bounds the validity of the records borrowed by one dispatch.
type scope struct {
	closed bool
}

func (s *scope) check() {
	if s == nil || s.closed {
		panic(ErrScopeClosed)
	}
}

func (s *scope) close() {
	s.closed = true
}

package ctext

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
)

const (
	esc = 0x1b
	stx = 0x02
	csi = 0x9b
)

// Designations emitted by the encoder.
var (
	seqLatin1Right = []byte{esc, '-', 'A'}
	seqUTF8Begin   = []byte{esc, '%', 'G'}
	seqUTF8End     = []byte{esc, '%', '@'}
)

func wideDesignation(final byte) []byte {
	return []byte{esc, '$', ')', final}
}

// grState is the set currently invoked into GR. grUnknown forces the next GR
// character to designate.
type grState int

const (
	grLatin1 grState = iota
	grWide0
	grWide1
	grWide2
	grUnknown
)

type encoder struct {
	out    bytes.Buffer
	gr     grState
	inUTF8 bool
	wide   []*encoding.Encoder
}

// UTF8ToCompoundText converts UTF-8 text to Compound Text. Every character
// is representable; characters outside the supported sets travel in UTF-8
// segments.
func UTF8ToCompoundText(s []byte) ([]byte, error) {
	Init()

	e := &encoder{gr: grLatin1}
	for _, w := range wideSets {
		e.wide = append(e.wide, w.enc.NewEncoder())
	}
	e.out.Grow(len(s))

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRune(s[i:])
		if r == utf8.RuneError && size <= 1 {
			end := min(i+1, len(s))
			return nil, &ConversionError{From: UTF8, To: CompoundText, Bytes: s[i:end], Err: ErrInvalidUTF8}
		}
		e.rune(r, s[i:i+size])
		i += size
	}
	e.leaveUTF8()
	return e.out.Bytes(), nil
}

func (e *encoder) rune(r rune, raw []byte) {
	switch {
	case r == '\t' || r == '\n' || (r >= 0x20 && r < 0x7f):
		e.leaveUTF8()
		e.out.WriteByte(byte(r))
		return
	case r >= 0xa0 && r <= 0xff:
		e.leaveUTF8()
		e.switchGR(grLatin1, seqLatin1Right)
		e.out.WriteByte(byte(r))
		return
	}

	for i := range e.wide {
		if b, ok := e.wideBytes(i, r, raw); ok {
			e.leaveUTF8()
			e.switchGR(grWide0+grState(i), wideDesignation(wideSets[i].final))
			e.out.Write(b)
			return
		}
	}

	if !e.inUTF8 {
		e.out.Write(seqUTF8Begin)
		e.inUTF8 = true
	}
	e.out.Write(raw)
}

// wideBytes encodes r in wide set i and keeps the result only when it is a
// GR pair of the standard set that decodes back to r.
func (e *encoder) wideBytes(i int, r rune, raw []byte) ([]byte, bool) {
	b, err := e.wide[i].Bytes(raw)
	if err != nil || len(b) != 2 || !isGR94(b[0]) || !isGR94(b[1]) || !wideSets[i].cells(b[0], b[1]) {
		return nil, false
	}
	back, err := wideSets[i].enc.NewDecoder().Bytes(b)
	if err != nil {
		return nil, false
	}
	got, _ := utf8.DecodeRune(back)
	if got != r || len(back) != len(raw) {
		return nil, false
	}
	return b, true
}

func (e *encoder) switchGR(want grState, seq []byte) {
	if e.gr == want {
		return
	}
	e.out.Write(seq)
	e.gr = want
}

func (e *encoder) leaveUTF8() {
	if !e.inUTF8 {
		return
	}
	e.out.Write(seqUTF8End)
	e.inUTF8 = false
	e.gr = grUnknown
}

func isGR94(b byte) bool {
	return b >= 0xa1 && b <= 0xfe
}

package ctext

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// half is what is invoked into GL or GR.
type half struct {
	single *charmap.Charmap  // 96-set, GR only
	wide   encoding.Encoding // 94x94 set
}

type decoder struct {
	in  []byte
	pos int
	out strings.Builder
	gl  half
	gr  half
}

// CompoundTextToUTF8 converts Compound Text to a UTF-8 string.
func CompoundTextToUTF8(ct []byte) (string, error) {
	Init()

	d := &decoder{in: ct, gr: half{single: charmap.ISO8859_1}}
	d.out.Grow(len(ct))
	if err := d.run(); err != nil {
		return "", err
	}
	return d.out.String(), nil
}

func (d *decoder) fail(err error, from, to int) error {
	to = min(to, len(d.in))
	return &ConversionError{From: CompoundText, To: UTF8, Bytes: d.in[from:to], Err: err}
}

func (d *decoder) run() error {
	for d.pos < len(d.in) {
		b := d.in[d.pos]
		switch {
		case b == esc:
			if err := d.escape(); err != nil {
				return err
			}
		case b == csi:
			if err := d.skipCSI(); err != nil {
				return err
			}
		case b <= 0x20 || b == 0x7f:
			d.out.WriteByte(b)
			d.pos++
		case b < 0x80:
			if err := d.graphic(d.gl, 0x80); err != nil {
				return err
			}
		case b < 0xa0:
			return d.fail(ErrInvalidByte, d.pos, d.pos+1)
		default:
			if err := d.graphic(d.gr, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// graphic decodes one character from h. shift lifts GL bytes to their GR
// form, which is what the EUC codecs expect.
func (d *decoder) graphic(h half, shift byte) error {
	start := d.pos
	switch {
	case h.wide != nil:
		if d.pos+2 > len(d.in) {
			return d.fail(ErrTruncated, start, len(d.in))
		}
		pair := []byte{d.in[d.pos] | shift, d.in[d.pos+1] | shift}
		if !isGR94(pair[0]) || !isGR94(pair[1]) {
			return d.fail(ErrInvalidByte, start, start+2)
		}
		s, err := h.wide.NewDecoder().String(string(pair))
		if err != nil || s == string(utf8.RuneError) {
			return d.fail(ErrInvalidByte, start, start+2)
		}
		d.out.WriteString(s)
		d.pos += 2
	case h.single != nil:
		r := h.single.DecodeByte(d.in[d.pos] | 0x80)
		if r == utf8.RuneError {
			return d.fail(ErrInvalidByte, start, start+1)
		}
		d.out.WriteRune(r)
		d.pos++
	default:
		// ASCII in GL.
		d.out.WriteByte(d.in[d.pos])
		d.pos++
	}
	return nil
}

func (d *decoder) escape() error {
	start := d.pos
	// Intermediate bytes 0x20-0x2f, then one final byte 0x30-0x7e.
	end := d.pos + 1
	for end < len(d.in) && d.in[end] >= 0x20 && d.in[end] <= 0x2f {
		end++
	}
	if end >= len(d.in) {
		return d.fail(ErrTruncated, start, len(d.in))
	}
	final := d.in[end]
	if final < 0x30 || final > 0x7e {
		return d.fail(ErrInvalidSequence, start, end+1)
	}
	inter := string(d.in[start+1 : end])
	d.pos = end + 1

	switch inter {
	case "(":
		// 94-set into GL. Only ASCII is meaningful here.
		if final != 'B' {
			return d.fail(ErrUnsupportedCharset, start, d.pos)
		}
		d.gl = half{}
	case "-":
		cm, ok := rightHalves[final]
		if !ok {
			return d.fail(ErrUnsupportedCharset, start, d.pos)
		}
		d.gr = half{single: cm}
	case "$(", "$)":
		enc, ok := wideByFinal[final]
		if !ok {
			return d.fail(ErrUnsupportedCharset, start, d.pos)
		}
		if inter == "$(" {
			d.gl = half{wide: enc}
		} else {
			d.gr = half{wide: enc}
		}
	case "%":
		switch final {
		case 'G':
			return d.utf8Segment()
		case '@':
			// Already in ISO 2022 state.
		default:
			return d.fail(ErrInvalidSequence, start, d.pos)
		}
	case "%/":
		return d.extendedSegment(start)
	default:
		return d.fail(ErrInvalidSequence, start, d.pos)
	}
	return nil
}

// utf8Segment copies bytes up to ESC % @ or the end of input.
func (d *decoder) utf8Segment() error {
	seg := d.in[d.pos:]
	n := len(seg)
	if i := bytes.Index(seg, seqUTF8End); i >= 0 {
		n = i
	}
	if err := d.writeUTF8(seg[:n], d.pos); err != nil {
		return err
	}
	d.pos += n
	if n < len(seg) {
		d.pos += len(seqUTF8End)
	}
	return nil
}

// extendedSegment handles ESC % / F M L name STX data, where M and L encode
// the length of name, STX and data.
func (d *decoder) extendedSegment(start int) error {
	if d.pos+2 > len(d.in) {
		return d.fail(ErrTruncated, start, len(d.in))
	}
	m, l := d.in[d.pos], d.in[d.pos+1]
	if m < 0x80 || l < 0x80 {
		return d.fail(ErrInvalidSequence, start, d.pos+2)
	}
	length := int(m-0x80)*0x80 + int(l-0x80)
	body := d.pos + 2
	if body+length > len(d.in) {
		return d.fail(ErrTruncated, start, len(d.in))
	}
	seg := d.in[body : body+length]
	sep := -1
	for i, b := range seg {
		if b == stx {
			sep = i
			break
		}
	}
	if sep < 0 {
		return d.fail(ErrInvalidSequence, start, body+length)
	}
	name := strings.ToLower(string(seg[:sep]))
	data := seg[sep+1:]
	d.pos = body + length

	if name == "utf-8" {
		return d.writeUTF8(data, body+sep+1)
	}
	enc, ok := namedSets[name]
	if !ok {
		return d.fail(ErrUnsupportedCharset, start, d.pos)
	}
	s, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return d.fail(err, body+sep+1, d.pos)
	}
	d.out.Write(s)
	return nil
}

func (d *decoder) writeUTF8(b []byte, at int) error {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return d.fail(ErrInvalidUTF8, at+i, at+i+1)
		}
		i += size
	}
	d.out.Write(b)
	return nil
}

// skipCSI drops a control sequence such as the direction markers
// CSI 1 ], CSI 2 ] and CSI ].
func (d *decoder) skipCSI() error {
	start := d.pos
	i := d.pos + 1
	for i < len(d.in) && d.in[i] >= 0x20 && d.in[i] <= 0x3f {
		i++
	}
	if i >= len(d.in) {
		return d.fail(ErrTruncated, start, len(d.in))
	}
	if d.in[i] < 0x40 || d.in[i] > 0x7e {
		return d.fail(ErrInvalidSequence, start, i+1)
	}
	d.pos = i + 1
	return nil
}

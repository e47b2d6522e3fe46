// Package ctext converts between UTF-8 and X11 Compound Text, the encoding
// XIM uses for committed and preedit strings.
//
// The encoder keeps ASCII in GL and Latin-1 in GR, switches GR to JIS X 0208,
// GB 2312 or KS C 5601 for characters those sets hold, and wraps anything
// else in a UTF-8 segment. The decoder also understands ISO 8859 right
// halves, named extended segments and direction sequences.
package ctext

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// Names used in ConversionError.
const (
	UTF8         = "UTF-8"
	CompoundText = "COMPOUND_TEXT"
)

var (
	ErrInvalidUTF8        = errors.New("invalid UTF-8")
	ErrInvalidSequence    = errors.New("invalid escape sequence")
	ErrUnsupportedCharset = errors.New("unsupported character set")
	ErrInvalidByte        = errors.New("byte not valid in current state")
	ErrTruncated          = errors.New("truncated input")
)

// ConversionError describes a failed conversion. Bytes holds the input
// bytes that could not be converted, when known.
type ConversionError struct {
	From  string
	To    string
	Bytes []byte
	Err   error
}

func (e *ConversionError) Error() string {
	if len(e.Bytes) > 0 {
		return fmt.Sprintf("ctext: %s to %s: %v (% x)", e.From, e.To, e.Err, e.Bytes)
	}
	return fmt.Sprintf("ctext: %s to %s: %v", e.From, e.To, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// wide is a 94x94 set reachable through an EUC encoding whose two-byte GR
// form equals the set's GR form. The codecs also cover vendor extensions,
// so cells restricts encoding to the pairs the standard set defines.
type wide struct {
	name  string
	final byte
	enc   encoding.Encoding
	cells func(hi, lo byte) bool
}

// jisX0208 accepts rows 1-84 less row 13, where EUC-JP codecs put the NEC
// extensions. The IBM extensions in rows 89-92 fall outside.
func jisX0208(hi, _ byte) bool {
	return hi <= 0xf4 && hi != 0xad
}

// gb2312Symbols holds the assigned trail-byte ranges of rows 1-9. GBK
// fills the gaps with vertical forms, pinyin and small roman numerals.
var gb2312Symbols = map[byte][][2]byte{
	0xa1: {{0xa1, 0xfe}},
	0xa2: {{0xb1, 0xe2}, {0xe5, 0xee}, {0xf1, 0xfc}},
	0xa3: {{0xa1, 0xfe}},
	0xa4: {{0xa1, 0xf3}},
	0xa5: {{0xa1, 0xf6}},
	0xa6: {{0xa1, 0xb8}, {0xc1, 0xd8}},
	0xa7: {{0xa1, 0xc1}, {0xd1, 0xf1}},
	0xa8: {{0xa1, 0xba}, {0xc5, 0xe9}},
	0xa9: {{0xa4, 0xef}},
}

// gb2312 accepts the symbol cells above and the hanzi rows 16-87. Rows
// 10-15 and 88-94 are user-defined in GBK.
func gb2312(hi, lo byte) bool {
	if hi >= 0xb0 && hi <= 0xf7 {
		return hi != 0xd7 || lo <= 0xf9
	}
	for _, r := range gb2312Symbols[hi] {
		if lo >= r[0] && lo <= r[1] {
			return true
		}
	}
	return false
}

// ksc5601 drops the user-defined rows 41 and 94 and the euro, registered
// and postal cells added after 1987.
func ksc5601(hi, lo byte) bool {
	if hi == 0xc9 || hi == 0xfe {
		return false
	}
	return hi != 0xa2 || lo < 0xe6 || lo > 0xe8
}

var (
	initOnce sync.Once

	// Tried in order when encoding.
	wideSets    []wide
	wideByFinal map[byte]encoding.Encoding

	// 96-character right halves by final byte.
	rightHalves map[byte]*charmap.Charmap
	// Named extended segments.
	namedSets map[string]encoding.Encoding
)

// Init prepares the charset tables. It is safe to call more than once, and
// both conversion functions call it.
func Init() {
	initOnce.Do(func() {
		wideSets = []wide{
			{name: "JISX0208.1983-0", final: 'B', enc: japanese.EUCJP, cells: jisX0208},
			{name: "GB2312.1980-0", final: 'A', enc: simplifiedchinese.GBK, cells: gb2312},
			{name: "KSC5601.1987-0", final: 'C', enc: korean.EUCKR, cells: ksc5601},
		}
		wideByFinal = make(map[byte]encoding.Encoding, len(wideSets))
		for _, w := range wideSets {
			wideByFinal[w.final] = w.enc
		}

		rightHalves = map[byte]*charmap.Charmap{
			'A': charmap.ISO8859_1,
			'B': charmap.ISO8859_2,
			'C': charmap.ISO8859_3,
			'D': charmap.ISO8859_4,
			'L': charmap.ISO8859_5,
			'G': charmap.ISO8859_6,
			'F': charmap.ISO8859_7,
			'H': charmap.ISO8859_8,
			'M': charmap.ISO8859_9,
			'V': charmap.ISO8859_10,
			'Y': charmap.ISO8859_13,
			'_': charmap.ISO8859_14,
			'b': charmap.ISO8859_15,
			'f': charmap.ISO8859_16,
		}

		namedSets = map[string]encoding.Encoding{
			"iso8859-14": charmap.ISO8859_14,
			"iso8859-15": charmap.ISO8859_15,
			"koi8-r":     charmap.KOI8R,
			"koi8-u":     charmap.KOI8U,
			"big5-0":     traditionalchinese.Big5,
		}
	})
}

package ctext

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	tests := []string{
		"",
		"hello world!",
		"hello world!你好世界켐ㅇㄹ貴方元気？☺",
		"–",
		"café naïve",
		"tab\tand\nnewline",
		"Ελληνικά и кириллица",
		"日本語のテキスト",
		"emoji 🙂 mixed ü 한국어",
	}

	for _, s := range tests {
		ct, err := UTF8ToCompoundText([]byte(s))
		require.NoError(t, err, s)

		back, err := CompoundTextToUTF8(ct)
		require.NoError(t, err, s)
		assert.Equal(t, s, back)
	}
}

func TestEncodeASCIIUnchanged(t *testing.T) {
	ct, err := UTF8ToCompoundText([]byte("plain ascii"))
	require.NoError(t, err)
	assert.Equal(t, []byte("plain ascii"), ct)
}

func TestEncodeLatin1InDefaultState(t *testing.T) {
	ct, err := UTF8ToCompoundText([]byte("é"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xe9}, ct)
}

func TestEncodeJIS(t *testing.T) {
	ct, err := UTF8ToCompoundText([]byte("日"))
	require.NoError(t, err)
	// 日 is JIS X 0208 row 38 cell 92.
	assert.Equal(t, []byte{esc, '$', ')', 'B', 0xc6, 0xfc}, ct)
}

func TestEncodeSkipsVendorExtensions(t *testing.T) {
	tests := []struct {
		in        string
		want      []byte // nil: only the forbidden pairs are checked
		forbidden [][]byte
	}{
		// NEC row 13 in EUC-JP, GB 2312 row 2 cell 57.
		{"①", []byte{esc, '$', ')', 'A', 0xa2, 0xd9}, [][]byte{{0xad, 0xa1}}},
		// IBM row 92 in EUC-JP, a GBK addition, KS C 5601 row 5.
		{"ⅰ", []byte{esc, '$', ')', 'C', 0xa5, 0xa1}, [][]byte{{0xfc, 0xf1}, {0xa2, 0xa1}}},
		// GBK pinyin addition.
		{"ɑ", nil, [][]byte{{0xa8, 0xbb}}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ct, err := UTF8ToCompoundText([]byte(tt.in))
			require.NoError(t, err)
			if tt.want != nil {
				assert.Equal(t, tt.want, ct)
			}
			for _, pair := range tt.forbidden {
				assert.False(t, bytes.Contains(ct, pair), "% x in % x", pair, ct)
			}

			back, err := CompoundTextToUTF8(ct)
			require.NoError(t, err)
			assert.Equal(t, tt.in, back)
		})
	}
}

type widePair struct {
	final  byte
	hi, lo byte
}

// widePairs lists the two-byte GR characters in encoder output.
func widePairs(t *testing.T, ct []byte) []widePair {
	t.Helper()
	var (
		pairs []widePair
		final byte // 0 while Latin-1 is in GR
	)
	for i := 0; i < len(ct); {
		switch {
		case bytes.HasPrefix(ct[i:], []byte{esc, '$', ')'}) && i+3 < len(ct):
			final = ct[i+3]
			i += 4
		case bytes.HasPrefix(ct[i:], []byte{esc, '-', 'A'}):
			final = 0
			i += 3
		case bytes.HasPrefix(ct[i:], []byte{esc, '%', 'G'}):
			end := bytes.Index(ct[i:], []byte{esc, '%', '@'})
			require.GreaterOrEqual(t, end, 0, "unterminated UTF-8 segment")
			i += end + 3
		case ct[i] >= 0xa0 && final != 0:
			require.Less(t, i+1, len(ct), "truncated pair")
			pairs = append(pairs, widePair{final: final, hi: ct[i], lo: ct[i+1]})
			i += 2
		default:
			i++
		}
	}
	return pairs
}

func inRange(b, lo, hi byte) bool { return b >= lo && b <= hi }

func TestEncodeEveryPairIsStandard(t *testing.T) {
	for r := rune(0x80); r <= 0xffff; r++ {
		if r >= 0xd800 && r <= 0xdfff {
			continue
		}
		ct, err := UTF8ToCompoundText([]byte(string(r)))
		require.NoError(t, err)

		for _, p := range widePairs(t, ct) {
			switch p.final {
			case 'B':
				assert.True(t, p.hi <= 0xf4 && p.hi != 0xad, "U+%04X: JIS X 0208 row of %02x%02x", r, p.hi, p.lo)
			case 'A':
				ok := inRange(p.hi, 0xa1, 0xa9) || inRange(p.hi, 0xb0, 0xf7)
				ok = ok && !(p.hi == 0xa2 && inRange(p.lo, 0xa1, 0xb0))
				ok = ok && !(p.hi == 0xa6 && inRange(p.lo, 0xe0, 0xf5))
				ok = ok && !(p.hi == 0xa8 && inRange(p.lo, 0xbb, 0xc0))
				assert.True(t, ok, "U+%04X: GB 2312 cell %02x%02x", r, p.hi, p.lo)
			case 'C':
				assert.True(t, p.hi != 0xc9 && p.hi != 0xfe, "U+%04X: KS C 5601 row of %02x%02x", r, p.hi, p.lo)
			default:
				t.Fatalf("U+%04X: unexpected final %q", r, p.final)
			}
		}
	}
}

func TestEncodeFallsBackToUTF8(t *testing.T) {
	ct, err := UTF8ToCompoundText([]byte("☺"))
	require.NoError(t, err)
	want := append(append([]byte{esc, '%', 'G'}, "☺"...), esc, '%', '@')
	assert.Equal(t, want, ct)
}

func TestEncodeInvalidUTF8(t *testing.T) {
	_, err := UTF8ToCompoundText([]byte{'a', 0xff, 'b'})
	var cerr *ConversionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, UTF8, cerr.From)
	assert.Equal(t, CompoundText, cerr.To)
	assert.Equal(t, []byte{0xff}, cerr.Bytes)
	assert.True(t, errors.Is(err, ErrInvalidUTF8))
}

func TestDecodeSequences(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"latin1 default", []byte{'a', 0xe9}, "aé"},
		{"greek right half", []byte{esc, '-', 'F', 0xe1}, "α"},
		{"cyrillic right half", []byte{esc, '-', 'L', 0xd0}, "а"},
		{"jis in GR", []byte{esc, '$', ')', 'B', 0xc6, 0xfc}, "日"},
		{"jis in GL", []byte{esc, '$', '(', 'B', 0x46, 0x7c, esc, '(', 'B', 'x'}, "日x"},
		{"direction markers", []byte{csi, '2', ']', 'a', csi, ']'}, "a"},
		{"utf8 segment", append(append([]byte{esc, '%', 'G'}, "☺"...), esc, '%', '@', 'z'), "☺z"},
		{"unterminated utf8 segment", append([]byte{esc, '%', 'G'}, "☺"...), "☺"},
		{"named utf-8 segment", extSeg("utf-8", []byte("☺")), "☺"},
		{"named latin-9 segment", extSeg("ISO8859-15", []byte{0xa4}), "€"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompoundTextToUTF8(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    []byte
		err   error
		bytes []byte
	}{
		{"bad utf8 in segment", []byte{esc, '%', 'G', 'a', 0xff, esc, '%', '@'}, ErrInvalidUTF8, []byte{0xff}},
		{"c1 byte", []byte{0x85}, ErrInvalidByte, []byte{0x85}},
		{"unknown final", []byte{esc, '$', ')', 'Z'}, ErrUnsupportedCharset, []byte{esc, '$', ')', 'Z'}},
		{"truncated escape", []byte{esc, '$'}, ErrTruncated, []byte{esc, '$'}},
		{"truncated wide", []byte{esc, '$', ')', 'B', 0xc6}, ErrTruncated, []byte{0xc6}},
		{"unknown named set", extSeg("x-nope", []byte("a")), ErrUnsupportedCharset, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompoundTextToUTF8(tt.in)
			var cerr *ConversionError
			require.ErrorAs(t, err, &cerr)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, CompoundText, cerr.From)
			if tt.bytes != nil {
				assert.Equal(t, tt.bytes, cerr.Bytes)
			}
		})
	}
}

func TestInitIdempotent(t *testing.T) {
	Init()
	first := wideSets
	Init()
	assert.Equal(t, len(first), len(wideSets))
	assert.Same(t, &first[0], &wideSets[0])
}

func extSeg(name string, data []byte) []byte {
	body := append(append([]byte(name), stx), data...)
	n := len(body)
	var b bytes.Buffer
	b.Write([]byte{esc, '%', '/', '1', byte(0x80 + n/0x80), byte(0x80 + n%0x80)})
	b.Write(body)
	return b.Bytes()
}

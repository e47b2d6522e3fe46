package xim

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jezek/xgb/xproto"
)

// AllLocales is the locale list that makes the engine accept every locale.
const AllLocales = "C,POSIX,af,af_ZA,am,am_ET,ar,ar_AE,ar_BH,ar_DZ,ar_EG,ar_IN,ar_IQ,ar_JO,ar_KW,ar_LB,ar_LY,ar_MA,ar_OM,ar_QA,ar_SA,ar_SD,ar_SY,ar_TN,ar_YE,as,as_IN,az,az_AZ,be,be_BY,bg,bg_BG,bn,bn_BD,bn_IN,bo,bo_CN,br,br_FR,bs,bs_BA,ca,ca_AD,ca_ES,ca_FR,ca_IT,cs,cs_CZ,cy,cy_GB,da,da_DK,de,de_AT,de_BE,de_CH,de_DE,de_LU,el,el_CY,el_GR,en,en_AU,en_BW,en_CA,en_DK,en_GB,en_HK,en_IE,en_IN,en_NZ,en_PH,en_SG,en_US,en_ZA,en_ZW,eo,eo_EO,es,es_AR,es_BO,es_CL,es_CO,es_CR,es_DO,es_EC,es_ES,es_GT,es_HN,es_MX,es_NI,es_PA,es_PE,es_PR,es_PY,es_SV,es_US,es_UY,es_VE,et,et_EE,eu,eu_ES,fa,fa_IR,fi,fi_FI,fo,fo_FO,fr,fr_BE,fr_CA,fr_CH,fr_FR,fr_LU,ga,ga_IE,gd,gd_GB,gl,gl_ES,gu,gu_IN,gv,gv_GB,he,he_IL,hi,hi_IN,hr,hr_HR,hu,hu_HU,hy,hy_AM,id,id_ID,is,is_IS,it,it_CH,it_IT,iw,iw_IL,ja,ja_JP,ka,ka_GE,kk,kk_KZ,kl,kl_GL,km,km_KH,kn,kn_IN,ko,ko_KR,ku,ku_TR,kw,kw_GB,ky,ky_KG,lo,lo_LA,lt,lt_LT,lv,lv_LV,mg,mg_MG,mi,mi_NZ,mk,mk_MK,ml,ml_IN,mn,mn_MN,mr,mr_IN,ms,ms_MY,mt,mt_MT,my,my_MM,nb,nb_NO,ne,ne_NP,nl,nl_BE,nl_NL,nn,nn_NO,no,no_NO,nr,nr_ZA,nso,nso_ZA,ny,ny_NO,oc,oc_FR,om,om_ET,om_KE,or,or_IN,pa,pa_IN,pa_PK,pd,pd_DE,pd_US,ph,ph_PH,pl,pl_PL,pp,pp_AN,pt,pt_BR,pt_PT,ro,ro_RO,ru,ru_RU,ru_UA,rw,rw_RW,sa,sa_IN,se,se_NO,si,si_LK,sk,sk_SK,sl,sl_SI,so,so_DJ,so_ET,so_KE,so_SO,sq,sq_AL,sr,sr_CS,sr_ME,sr_RS,ss,ss_ZA,st,st_ZA,sv,sv_FI,sv_SE,sw,sw_KE,sw_TZ,ta,ta_IN,te,te_IN,tg,tg_TJ,th,th_TH,ti,ti_ER,ti_ET,tl,tl_PH,tn,tn_ZA,tr,tr_TR,ts,ts_ZA,tt,tt_RU,uk,uk_UA,ur,ur_IN,ur_PK,uz,uz_UZ,ve,ve_ZA,vi,vi_VN,wa,wa_BE,xh,xh_ZA,yi,yi_US,zh,zh_CN,zh_HK,zh_SG,zh_TW,zu,zu_ZA"

// InputStyle is the XIM input style bitset.
type InputStyle uint32

const (
	PreeditArea      InputStyle = 0x0001
	PreeditCallbacks InputStyle = 0x0002
	PreeditPosition  InputStyle = 0x0004
	PreeditNothing   InputStyle = 0x0008
	PreeditNone      InputStyle = 0x0010
	StatusArea       InputStyle = 0x0100
	StatusCallbacks  InputStyle = 0x0200
	StatusNothing    InputStyle = 0x0400
	StatusNone       InputStyle = 0x0800

	inputStyleMask = PreeditArea | PreeditCallbacks | PreeditPosition | PreeditNothing | PreeditNone |
		StatusArea | StatusCallbacks | StatusNothing | StatusNone
)

var inputStyleNames = map[string]InputStyle{
	"preedit_area":      PreeditArea,
	"preedit_callbacks": PreeditCallbacks,
	"preedit_position":  PreeditPosition,
	"preedit_nothing":   PreeditNothing,
	"preedit_none":      PreeditNone,
	"status_area":       StatusArea,
	"status_callbacks":  StatusCallbacks,
	"status_nothing":    StatusNothing,
	"status_none":       StatusNone,
}

// Well-known combinations.
var (
	StyleOnTheSpot   = PreeditCallbacks | StatusNothing
	StyleOverTheSpot = PreeditPosition | StatusNothing
	StyleOffTheSpot  = PreeditArea | StatusArea
	StyleRoot        = PreeditNothing | StatusNothing
)

// ParseInputStyle parses names joined by "|", e.g.
// "preedit_position|status_area". The presets "on_the_spot", "over_the_spot",
// "off_the_spot" and "root" are accepted as single names.
func ParseInputStyle(s string) (InputStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on_the_spot":
		return StyleOnTheSpot, nil
	case "over_the_spot":
		return StyleOverTheSpot, nil
	case "off_the_spot":
		return StyleOffTheSpot, nil
	case "root":
		return StyleRoot, nil
	}

	var style InputStyle
	for _, part := range strings.Split(s, "|") {
		name := strings.ToLower(strings.TrimSpace(part))
		bit, ok := inputStyleNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown input style %q", part)
		}
		style |= bit
	}
	return style, nil
}

// Known reports whether every set bit is a defined style bit.
func (s InputStyle) Known() bool {
	return s&^inputStyleMask == 0
}

func (s InputStyle) String() string {
	if s == 0 {
		return "none"
	}
	var names []string
	for name, bit := range inputStyleNames {
		if s&bit != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if extra := s &^ inputStyleMask; extra != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(extra)))
	}
	return strings.Join(names, "|")
}

// TriggerKey is one on/off trigger chord. Layout matches
// xcb_im_ximtriggerkey_fr_t.
type TriggerKey struct {
	Keysym       uint32
	Modifier     uint32
	ModifierMask uint32
}

// LookupFlag selects which parts of a commit are present.
type LookupFlag uint32

const (
	LookupChars  LookupFlag = 2
	LookupKeySym LookupFlag = 4
	LookupBoth   LookupFlag = LookupChars | LookupKeySym
)

// Feedback is the per-glyph highlighting of preedit and status text.
type Feedback uint32

const (
	FeedbackReverse           Feedback = 1
	FeedbackUnderline         Feedback = 1 << 1
	FeedbackHighlight         Feedback = 1 << 2
	FeedbackPrimary           Feedback = 1 << 5
	FeedbackSecondary         Feedback = 1 << 6
	FeedbackTertiary          Feedback = 1 << 7
	FeedbackVisibleToForward  Feedback = 1 << 8
	FeedbackVisibleToBackward Feedback = 1 << 9
	FeedbackVisibleToCenter   Feedback = 1 << 10
)

// DrawStatus flags accompany preedit and status draw requests.
type DrawStatus uint32

const (
	DrawNoString   DrawStatus = 1
	DrawNoFeedback DrawStatus = 2
)

// CaretDirection is the motion requested by a preedit caret callback.
type CaretDirection uint32

const (
	CaretForwardChar CaretDirection = iota
	CaretBackwardChar
	CaretForwardWord
	CaretBackwardWord
	CaretUp
	CaretDown
	CaretNextLine
	CaretPreviousLine
	CaretLineStart
	CaretLineEnd
	CaretAbsolutePosition
	CaretDontChange
)

// CaretStyle is the look of the preedit caret.
type CaretStyle uint32

const (
	CaretInvisible CaretStyle = iota
	CaretPrimary
	CaretSecondary
)

// PreeditAttr is a copy of an input context's preedit attribute block.
type PreeditAttr struct {
	Area         xproto.Rectangle
	AreaNeeded   xproto.Rectangle
	SpotLocation xproto.Point
	Colormap     xproto.Colormap
	Foreground   uint32
	Background   uint32
	BgPixmap     xproto.Pixmap
	LineSpace    uint32
	Cursor       xproto.Cursor
}

// StatusAttr is a copy of an input context's status attribute block.
type StatusAttr struct {
	Area       xproto.Rectangle
	AreaNeeded xproto.Rectangle
	Colormap   xproto.Colormap
	Foreground uint32
	Background uint32
	BgPixmap   xproto.Pixmap
	LineSpace  uint32
	Cursor     xproto.Cursor
}

// KeyEvent mirrors xcb_key_press_event_t byte for byte.
type KeyEvent struct {
	ResponseType uint8
	Detail       uint8
	Sequence     uint16
	Time         uint32
	Root         uint32
	Event        uint32
	Child        uint32
	RootX        int16
	RootY        int16
	EventX       int16
	EventY       int16
	State        uint16
	SameScreen   uint8
	_            uint8
}

// X11 core event codes for key events.
const (
	KeyPress   = 2
	KeyRelease = 3
)

// IsRelease reports whether the event is a key release.
func (e *KeyEvent) IsRelease() bool {
	return e.ResponseType&0x7f == KeyRelease
}

// XProto converts the record to the xgb representation.
func (e *KeyEvent) XProto() xproto.KeyPressEvent {
	return xproto.KeyPressEvent{
		Sequence:   e.Sequence,
		Detail:     xproto.Keycode(e.Detail),
		Time:       xproto.Timestamp(e.Time),
		Root:       xproto.Window(e.Root),
		Event:      xproto.Window(e.Event),
		Child:      xproto.Window(e.Child),
		RootX:      e.RootX,
		RootY:      e.RootY,
		EventX:     e.EventX,
		EventY:     e.EventY,
		State:      e.State,
		SameScreen: e.SameScreen != 0,
	}
}

// PreeditDraw is the payload of a preedit draw callback.
type PreeditDraw struct {
	Caret     int32
	ChgFirst  int32
	ChgLength int32
	Status    DrawStatus
	// Text is compound text; see package ctext.
	Text     []byte
	Feedback []Feedback
}

// PreeditCaret is the payload of a preedit caret callback.
type PreeditCaret struct {
	Position  int32
	Direction CaretDirection
	Style     CaretStyle
}

// StatusDrawText is the payload of a status text draw callback.
type StatusDrawText struct {
	Status   DrawStatus
	Text     []byte
	Feedback []Feedback
}

// StatusDrawBitmap is the payload of a status bitmap draw callback.
type StatusDrawBitmap struct {
	Pixmap xproto.Pixmap
}

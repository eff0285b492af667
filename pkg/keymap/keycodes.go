// Package keymap translates text into Android key events.
//
// The table mirrors the platform's virtual keyboard character map for a US
// layout: every character resolves to a single key code, plus a shift meta
// state when the character sits on the upper half of its key.
package keymap

// Android key codes (android.view.KeyEvent).
const (
	KeyCodeHome         = 3
	KeyCodeBack         = 4
	KeyCode0            = 7
	KeyCode1            = 8
	KeyCode2            = 9
	KeyCode3            = 10
	KeyCode4            = 11
	KeyCode5            = 12
	KeyCode6            = 13
	KeyCode7            = 14
	KeyCode8            = 15
	KeyCode9            = 16
	KeyCodeStar         = 17
	KeyCodePound        = 18
	KeyCodeDpadUp       = 19
	KeyCodeDpadDown     = 20
	KeyCodeDpadLeft     = 21
	KeyCodeDpadRight    = 22
	KeyCodeDpadCenter   = 23
	KeyCodeVolumeUp     = 24
	KeyCodeVolumeDown   = 25
	KeyCodePower        = 26
	KeyCodeA            = 29
	KeyCodeZ            = 54
	KeyCodeComma        = 55
	KeyCodePeriod       = 56
	KeyCodeShiftLeft    = 59
	KeyCodeTab          = 61
	KeyCodeSpace        = 62
	KeyCodeEnter        = 66
	KeyCodeDel          = 67
	KeyCodeGrave        = 68
	KeyCodeMinus        = 69
	KeyCodeEquals       = 70
	KeyCodeLeftBracket  = 71
	KeyCodeRightBracket = 72
	KeyCodeBackslash    = 73
	KeyCodeSemicolon    = 74
	KeyCodeApostrophe   = 75
	KeyCodeSlash        = 76
	KeyCodeAt           = 77
	KeyCodePlus         = 81
	KeyCodeMenu         = 82
	KeyCodeSearch       = 84
	KeyCodeAppSwitch    = 187
	KeyCodeWakeup       = 224
)

// Meta state flags (android.view.KeyEvent).
const (
	MetaShiftOn     = 0x01
	MetaAltOn       = 0x02
	MetaShiftLeftOn = 0x40

	// MetaShift is the meta state the virtual keyboard reports while the
	// left shift key is held.
	MetaShift = MetaShiftOn | MetaShiftLeftOn
)

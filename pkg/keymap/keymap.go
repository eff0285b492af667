package keymap

import "fmt"

// Event is a single key press: the key code and the meta state held while
// the key goes down.
type Event struct {
	KeyCode   int
	MetaState int
}

// Shifted reports whether the event is typed with shift held.
func (e Event) Shifted() bool {
	return e.MetaState&MetaShiftOn != 0
}

func (e Event) String() string {
	if e.Shifted() {
		return fmt.Sprintf("key=%d meta=0x%x", e.KeyCode, e.MetaState)
	}
	return fmt.Sprintf("key=%d", e.KeyCode)
}

// keyPair describes one physical key: what it types plain and with shift.
type keyPair struct {
	code    int
	plain   rune
	shifted rune
}

// virtualKeyboard is the punctuation and digit rows of the virtual keyboard.
// Letters are generated in init.
var virtualKeyboard = []keyPair{
	{KeyCodeGrave, '`', '~'},
	{KeyCode1, '1', '!'},
	{KeyCode2, '2', '@'},
	{KeyCode3, '3', '#'},
	{KeyCode4, '4', '$'},
	{KeyCode5, '5', '%'},
	{KeyCode6, '6', '^'},
	{KeyCode7, '7', '&'},
	{KeyCode8, '8', '*'},
	{KeyCode9, '9', '('},
	{KeyCode0, '0', ')'},
	{KeyCodeMinus, '-', '_'},
	{KeyCodeEquals, '=', '+'},
	{KeyCodeLeftBracket, '[', '{'},
	{KeyCodeRightBracket, ']', '}'},
	{KeyCodeBackslash, '\\', '|'},
	{KeyCodeSemicolon, ';', ':'},
	{KeyCodeApostrophe, '\'', '"'},
	{KeyCodeComma, ',', '<'},
	{KeyCodePeriod, '.', '>'},
	{KeyCodeSlash, '/', '?'},
}

var charMap = map[rune]Event{}

func init() {
	for i := 0; i < 26; i++ {
		code := KeyCodeA + i
		charMap['a'+rune(i)] = Event{KeyCode: code}
		charMap['A'+rune(i)] = Event{KeyCode: code, MetaState: MetaShift}
	}
	for _, k := range virtualKeyboard {
		charMap[k.plain] = Event{KeyCode: k.code}
		charMap[k.shifted] = Event{KeyCode: k.code, MetaState: MetaShift}
	}
	charMap[' '] = Event{KeyCode: KeyCodeSpace}
	charMap['\t'] = Event{KeyCode: KeyCodeTab}
	charMap['\n'] = Event{KeyCode: KeyCodeEnter}
}

// Lookup returns the key event that types r.
func Lookup(r rune) (Event, bool) {
	ev, ok := charMap[r]
	return ev, ok
}

// Translate converts text into the key-down events a virtual keyboard would
// emit to type it, one per character. Characters the keyboard cannot type
// are skipped.
func Translate(text string) []Event {
	events := make([]Event, 0, len(text))
	for _, r := range text {
		if ev, ok := charMap[r]; ok {
			events = append(events, ev)
		}
	}
	return events
}

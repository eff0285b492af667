package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate_Symbols(t *testing.T) {
	events := Translate("`~!@#$%^&*()-_=+[]\\|;:'\",<.>/?")

	shift := MetaShiftLeftOn | MetaShiftOn
	want := []Event{
		{KeyCodeGrave, 0},
		{KeyCodeGrave, shift},
		{KeyCode1, shift},
		{KeyCode2, shift},
		{KeyCode3, shift},
		{KeyCode4, shift},
		{KeyCode5, shift},
		{KeyCode6, shift},
		{KeyCode7, shift},
		{KeyCode8, shift},
		{KeyCode9, shift},
		{KeyCode0, shift},
		{KeyCodeMinus, 0},
		{KeyCodeMinus, shift},
		{KeyCodeEquals, 0},
		{KeyCodeEquals, shift},
		{KeyCodeLeftBracket, 0},
		{KeyCodeRightBracket, 0},
		{KeyCodeBackslash, 0},
		{KeyCodeBackslash, shift},
		{KeyCodeSemicolon, 0},
		{KeyCodeSemicolon, shift},
		{KeyCodeApostrophe, 0},
		{KeyCodeApostrophe, shift},
		{KeyCodeComma, 0},
		{KeyCodeComma, shift},
		{KeyCodePeriod, 0},
		{KeyCodePeriod, shift},
		{KeyCodeSlash, 0},
		{KeyCodeSlash, shift},
	}
	assert.Equal(t, want, events)
}

func TestTranslate_Letters(t *testing.T) {
	events := Translate("aZ")

	require.Len(t, events, 2)
	assert.Equal(t, Event{KeyCode: KeyCodeA}, events[0])
	assert.Equal(t, Event{KeyCode: KeyCodeZ, MetaState: MetaShift}, events[1])
	assert.False(t, events[0].Shifted())
	assert.True(t, events[1].Shifted())
}

func TestTranslate_Whitespace(t *testing.T) {
	events := Translate("a b\tc\n")

	codes := make([]int, len(events))
	for i, ev := range events {
		codes[i] = ev.KeyCode
	}
	assert.Equal(t, []int{KeyCodeA, KeyCodeSpace, KeyCodeA + 1, KeyCodeTab, KeyCodeA + 2, KeyCodeEnter}, codes)
}

func TestTranslate_SkipsUnmappedCharacters(t *testing.T) {
	events := Translate("é1€\r")

	assert.Equal(t, []Event{{KeyCode: KeyCode1}}, events)
	assert.Empty(t, Translate(""))
}

func TestTranslate_OneEventPerPrintableASCII(t *testing.T) {
	for c := rune(0x20); c < 0x7f; c++ {
		events := Translate(string(c))
		require.Len(t, events, 1, "character %q", c)

		ev := events[0]
		if c >= 'A' && c <= 'Z' {
			assert.True(t, ev.Shifted(), "character %q should be shifted", c)
		}
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == ' ' {
			assert.False(t, ev.Shifted(), "character %q should not be shifted", c)
		}
	}
}

func TestLookup(t *testing.T) {
	ev, ok := Lookup('?')
	require.True(t, ok)
	assert.Equal(t, Event{KeyCode: KeyCodeSlash, MetaState: MetaShift}, ev)
	assert.Equal(t, "key=76 meta=0x41", ev.String())

	_, ok = Lookup('ß')
	assert.False(t, ok)
}

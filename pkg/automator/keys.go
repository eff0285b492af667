package automator

import (
	"github.com/devicelab-dev/deviceautomator/pkg/keymap"
)

const keyHome = keymap.KeyCodeHome

// TypeText types text one key at a time as the virtual keyboard would,
// pressing shift for shifted characters. Characters the keyboard cannot
// produce are skipped.
func (a *Automator) TypeText(text string) *Automator {
	a.t.Helper()

	for _, ev := range keymap.Translate(text) {
		if err := a.dev.PressKeyCode(ev.KeyCode, ev.MetaState); err != nil {
			a.fail("type "+ev.String(), deviceError(err))
			return a
		}
	}
	return a
}

func (a *Automator) press(name string, keyCode int) *Automator {
	a.t.Helper()

	if err := a.dev.PressKeyCode(keyCode, 0); err != nil {
		a.fail("press "+name, deviceError(err))
	}
	return a
}

// PressHome presses the home key.
func (a *Automator) PressHome() *Automator {
	a.t.Helper()
	return a.press("home", keymap.KeyCodeHome)
}

// PressBack presses the back key.
func (a *Automator) PressBack() *Automator {
	a.t.Helper()
	return a.press("back", keymap.KeyCodeBack)
}

// PressMenu presses the menu key.
func (a *Automator) PressMenu() *Automator {
	a.t.Helper()
	return a.press("menu", keymap.KeyCodeMenu)
}

// PressRecentApps opens the recent apps screen.
func (a *Automator) PressRecentApps() *Automator {
	a.t.Helper()
	return a.press("recent apps", keymap.KeyCodeAppSwitch)
}

// PressSearch presses the search key.
func (a *Automator) PressSearch() *Automator {
	a.t.Helper()
	return a.press("search", keymap.KeyCodeSearch)
}

// PressEnter presses enter.
func (a *Automator) PressEnter() *Automator {
	a.t.Helper()
	return a.press("enter", keymap.KeyCodeEnter)
}

// PressDelete presses delete (backspace).
func (a *Automator) PressDelete() *Automator {
	a.t.Helper()
	return a.press("delete", keymap.KeyCodeDel)
}

// PressTab types a tab character.
func (a *Automator) PressTab() *Automator {
	a.t.Helper()
	return a.TypeText("\t")
}

// PressDPadUp presses the directional pad up key.
func (a *Automator) PressDPadUp() *Automator {
	a.t.Helper()
	return a.press("dpad up", keymap.KeyCodeDpadUp)
}

// PressDPadDown presses the directional pad down key.
func (a *Automator) PressDPadDown() *Automator {
	a.t.Helper()
	return a.press("dpad down", keymap.KeyCodeDpadDown)
}

// PressDPadLeft presses the directional pad left key.
func (a *Automator) PressDPadLeft() *Automator {
	a.t.Helper()
	return a.press("dpad left", keymap.KeyCodeDpadLeft)
}

// PressDPadRight presses the directional pad right key.
func (a *Automator) PressDPadRight() *Automator {
	a.t.Helper()
	return a.press("dpad right", keymap.KeyCodeDpadRight)
}

// PressDPadCenter presses the directional pad center key, which
// activates the focused view.
func (a *Automator) PressDPadCenter() *Automator {
	a.t.Helper()
	return a.press("dpad center", keymap.KeyCodeDpadCenter)
}

// OpenNotification pulls down the notification shade.
func (a *Automator) OpenNotification() *Automator {
	a.t.Helper()

	if err := a.dev.OpenNotifications(); err != nil {
		a.fail("open notifications", deviceError(err))
	}
	return a
}

// OpenQuickSettings pulls down the quick settings panel.
func (a *Automator) OpenQuickSettings() *Automator {
	a.t.Helper()

	if err := a.sys.ExpandQuickSettings(); err != nil {
		a.fail("open quick settings", deviceError(err))
	}
	return a
}

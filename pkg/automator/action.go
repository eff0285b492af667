package automator

import (
	"fmt"

	"github.com/devicelab-dev/deviceautomator/pkg/core"
	"github.com/devicelab-dev/deviceautomator/pkg/uiautomator2"
)

// Each swipe step takes 5ms, as on the platform.
const swipeStepMillis = 5

// Action is a named operation performed on the view a chain is bound to.
type Action struct {
	name string
	run  func(tg *target) error
}

// String returns the action name.
func (a Action) String() string {
	return a.name
}

// Click taps the center of the view.
func Click() Action {
	return Action{name: "click", run: func(tg *target) error {
		el, err := tg.element()
		if err != nil {
			return err
		}
		return elementErr(tg, el.Click())
	}}
}

// SetText replaces the content of an editable view with text.
func SetText(text string) Action {
	return Action{name: fmt.Sprintf("set text %q", text), run: func(tg *target) error {
		el, err := tg.element()
		if err != nil {
			return err
		}
		if err := el.Clear(); err != nil {
			return elementErr(tg, err)
		}
		return elementErr(tg, el.SendKeys(text))
	}}
}

// ClearTextField empties an editable view.
func ClearTextField() Action {
	return Action{name: "clear text", run: func(tg *target) error {
		el, err := tg.element()
		if err != nil {
			return err
		}
		return elementErr(tg, el.Clear())
	}}
}

// SwipeRight swipes across the view from left to right in steps of 5ms each.
func SwipeRight(steps int) Action {
	return swipe("swipe right", uiautomator2.DirectionRight, steps)
}

// SwipeLeft swipes across the view from right to left.
func SwipeLeft(steps int) Action {
	return swipe("swipe left", uiautomator2.DirectionLeft, steps)
}

// SwipeUp swipes across the view from bottom to top.
func SwipeUp(steps int) Action {
	return swipe("swipe up", uiautomator2.DirectionUp, steps)
}

// SwipeDown swipes across the view from top to bottom.
func SwipeDown(steps int) Action {
	return swipe("swipe down", uiautomator2.DirectionDown, steps)
}

func swipe(name, direction string, steps int) Action {
	return Action{name: fmt.Sprintf("%s (%d steps)", name, steps), run: func(tg *target) error {
		if steps < 1 {
			return core.ErrInvalidConfig.WithMessagef("swipe needs at least one step, got %d", steps)
		}
		el, err := tg.element()
		if err != nil {
			return err
		}
		rect, err := el.Rect()
		if err != nil {
			return elementErr(tg, err)
		}
		if !rect.HasArea() {
			return core.ErrElementNotVisible
		}
		distance := rect.Width
		if direction == uiautomator2.DirectionUp || direction == uiautomator2.DirectionDown {
			distance = rect.Height
		}
		return elementErr(tg, tg.dev.Swipe(el.ID(), direction, 1.0, swipeSpeed(distance, steps)))
	}}
}

// swipeSpeed converts a distance covered in steps into pixels per second.
func swipeSpeed(distance, steps int) int {
	return distance * 1000 / (steps * swipeStepMillis)
}

// ScrollTextIntoView scrolls the scrollable container the chain is bound to
// until a view with text is on screen.
func ScrollTextIntoView(text string) Action {
	return Action{name: fmt.Sprintf("scroll %q into view", text), run: func(tg *target) error {
		err := tg.dev.ScrollTextIntoView(tg.sel, text)
		switch {
		case err == nil:
			return nil
		case goneFromScreen(err):
			return core.ErrElementNotFound.WithMessagef("text %q not found in %s", text, tg.sel).WithCause(err)
		default:
			return deviceError(err)
		}
	}}
}

// elementErr classifies an error from an operation on a resolved element. A
// view that went stale after lookup counts as not found.
func elementErr(tg *target, err error) error {
	if err == nil {
		return nil
	}
	return lookupError(tg.sel, err)
}

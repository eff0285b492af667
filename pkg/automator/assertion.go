package automator

import (
	"github.com/devicelab-dev/deviceautomator/pkg/core"
)

// Assertion is a named check against the view a chain is bound to.
type Assertion struct {
	name  string
	check func(tg *target) error
}

// String returns the assertion name.
func (a Assertion) String() string {
	return a.name
}

// Text asserts the view is visible and its text satisfies m.
func Text(m Matcher) Assertion {
	return Assertion{name: "text", check: func(tg *target) error {
		el, err := visibleElement(tg)
		if err != nil {
			return err
		}
		text, err := el.Text()
		if err != nil {
			return elementErr(tg, err)
		}
		return match(core.ErrTextMismatch, m, text)
	}}
}

// ContentDescription asserts the view is visible and its content
// description satisfies m.
func ContentDescription(m Matcher) Assertion {
	return Assertion{name: "content description", check: func(tg *target) error {
		el, err := visibleElement(tg)
		if err != nil {
			return err
		}
		desc, err := el.ContentDescription()
		if err != nil {
			return elementErr(tg, err)
		}
		return match(core.ErrTextMismatch, m, desc)
	}}
}

func match(base *core.ExecutionError, m Matcher, actual string) error {
	if ok, desc := m(actual); !ok {
		return base.WithMessage(mismatch(desc, actual))
	}
	return nil
}

// Visible asserts the view's visibility. A view is visible when its bounds
// have a positive width and height. When visible is false a view that does
// not exist passes.
func Visible(visible bool) Assertion {
	name := "visible"
	if !visible {
		name = "not visible"
	}
	return Assertion{name: name, check: func(tg *target) error {
		el, err := tg.element()
		if err != nil {
			if !visible && isNotFound(err) {
				return nil
			}
			return err
		}
		rect, err := el.Rect()
		if err != nil {
			err = elementErr(tg, err)
			if !visible && isNotFound(err) {
				return nil
			}
			return err
		}
		switch {
		case visible && !rect.HasArea():
			return core.ErrElementNotVisible
		case !visible && rect.HasArea():
			return core.ErrElementVisible
		}
		return nil
	}}
}

// Checked asserts the view's checked state.
func Checked(checked bool) Assertion {
	return stateAssertion("checked", checked, Element.IsChecked)
}

// Enabled asserts the view's enabled state.
func Enabled(enabled bool) Assertion {
	return stateAssertion("enabled", enabled, Element.IsEnabled)
}

func stateAssertion(state string, want bool, get func(Element) (bool, error)) Assertion {
	name := state
	if !want {
		name = "not " + state
	}
	return Assertion{name: name, check: func(tg *target) error {
		el, err := tg.element()
		if err != nil {
			return err
		}
		got, err := get(el)
		if err != nil {
			return elementErr(tg, err)
		}
		if got != want {
			return core.ErrStateMismatch.WithMessagef("Expected view to be %s but: was %s", name, describeState(state, got))
		}
		return nil
	}}
}

func describeState(state string, v bool) string {
	if v {
		return state
	}
	return "not " + state
}

// visibleElement resolves the target and fails unless it has visible bounds.
func visibleElement(tg *target) (Element, error) {
	el, err := tg.element()
	if err != nil {
		return nil, err
	}
	rect, err := el.Rect()
	if err != nil {
		return nil, elementErr(tg, err)
	}
	if !rect.HasArea() {
		return nil, core.ErrElementNotVisible
	}
	return el, nil
}

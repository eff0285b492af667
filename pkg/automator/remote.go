package automator

import (
	"github.com/devicelab-dev/deviceautomator/pkg/selector"
	"github.com/devicelab-dev/deviceautomator/pkg/uiautomator2"
)

// Remote adapts a UIAutomator2 client with an open session to Device.
type Remote struct {
	client *uiautomator2.Client
}

// NewRemote wraps client.
func NewRemote(client *uiautomator2.Client) *Remote {
	return &Remote{client: client}
}

// Client returns the wrapped client.
func (r *Remote) Client() *uiautomator2.Client {
	return r.client
}

// Find resolves sel with the UiSelector strategy.
func (r *Remote) Find(sel selector.Selector) (Element, error) {
	el, err := r.client.FindElement(uiautomator2.StrategyUIAutomator, sel.Expression())
	if err != nil {
		return nil, err
	}
	return el, nil
}

// ScrollTextIntoView scrolls the container matched by sel until text shows.
func (r *Remote) ScrollTextIntoView(container selector.Selector, text string) error {
	_, err := r.client.FindElement(uiautomator2.StrategyUIAutomator, container.ScrollTextIntoView(text))
	return err
}

// Swipe swipes inside the element by percent of its size, at speed pixels
// per second.
func (r *Remote) Swipe(elementID, direction string, percent float64, speed int) error {
	return r.client.Swipe(elementID, direction, percent, speed)
}

// PressKeyCode sends an Android key code with the given meta state.
func (r *Remote) PressKeyCode(keyCode, metaState int) error {
	return r.client.PressKeyCodeWithMeta(keyCode, metaState)
}

// OpenNotifications pulls down the notification shade.
func (r *Remote) OpenNotifications() error {
	return r.client.OpenNotifications()
}

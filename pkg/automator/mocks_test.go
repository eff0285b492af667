package automator

import (
	"fmt"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/devicelab-dev/deviceautomator/pkg/device"
	"github.com/devicelab-dev/deviceautomator/pkg/selector"
	"github.com/devicelab-dev/deviceautomator/pkg/uiautomator2"
)

// fakeT records failures instead of stopping the test.
type fakeT struct {
	failures []string
}

func (f *fakeT) Helper() {}

func (f *fakeT) Fatalf(format string, args ...interface{}) {
	f.failures = append(f.failures, fmt.Sprintf(format, args...))
}

func (f *fakeT) failed() bool {
	return len(f.failures) > 0
}

func (f *fakeT) last() string {
	if len(f.failures) == 0 {
		return ""
	}
	return f.failures[len(f.failures)-1]
}

func (f *fakeT) String() string {
	return strings.Join(f.failures, "\n")
}

type mockDevice struct {
	mock.Mock
}

func (m *mockDevice) Find(sel selector.Selector) (Element, error) {
	args := m.Called(sel)
	el, _ := args.Get(0).(Element)
	return el, args.Error(1)
}

func (m *mockDevice) ScrollTextIntoView(container selector.Selector, text string) error {
	return m.Called(container, text).Error(0)
}

func (m *mockDevice) Swipe(elementID, direction string, percent float64, speed int) error {
	return m.Called(elementID, direction, percent, speed).Error(0)
}

func (m *mockDevice) PressKeyCode(keyCode, metaState int) error {
	return m.Called(keyCode, metaState).Error(0)
}

func (m *mockDevice) OpenNotifications() error {
	return m.Called().Error(0)
}

// keyPresses returns the (code, meta) pairs passed to PressKeyCode in order.
func (m *mockDevice) keyPresses() [][2]int {
	var out [][2]int
	for _, c := range m.Calls {
		if c.Method == "PressKeyCode" {
			out = append(out, [2]int{c.Arguments.Int(0), c.Arguments.Int(1)})
		}
	}
	return out
}

type mockSystem struct {
	mock.Mock
}

func (m *mockSystem) LaunchApp(pkg string) error {
	return m.Called(pkg).Error(0)
}

func (m *mockSystem) StartIntent(intent device.Intent) error {
	return m.Called(intent).Error(0)
}

func (m *mockSystem) LauncherPackage() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockSystem) ForegroundPackage() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockSystem) IsScreenOn() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *mockSystem) SDKVersion() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *mockSystem) PermissionGranted(pkg, perm string) (bool, error) {
	args := m.Called(pkg, perm)
	return args.Bool(0), args.Error(1)
}

func (m *mockSystem) ExpandQuickSettings() error {
	return m.Called().Error(0)
}

type mockElement struct {
	mock.Mock
	id string
}

func (m *mockElement) ID() string {
	return m.id
}

func (m *mockElement) Click() error {
	return m.Called().Error(0)
}

func (m *mockElement) Clear() error {
	return m.Called().Error(0)
}

func (m *mockElement) SendKeys(text string) error {
	return m.Called(text).Error(0)
}

func (m *mockElement) Text() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockElement) ContentDescription() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockElement) Rect() (uiautomator2.ElementRect, error) {
	args := m.Called()
	return args.Get(0).(uiautomator2.ElementRect), args.Error(1)
}

func (m *mockElement) IsChecked() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *mockElement) IsEnabled() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func visibleRect() uiautomator2.ElementRect {
	return uiautomator2.ElementRect{X: 10, Y: 20, Width: 500, Height: 100}
}

func notFound() error {
	return fmt.Errorf("%w: %s", uiautomator2.ErrNoSuchElement, "An element could not be located")
}

func stale() error {
	return fmt.Errorf("%w: %s", uiautomator2.ErrStaleElement, "The element does not exist in DOM anymore")
}

// harness bundles an Automator with its mocks.
type harness struct {
	t   *fakeT
	dev *mockDevice
	sys *mockSystem
	a   *Automator
}

func newHarness(opts ...Option) *harness {
	h := &harness{t: &fakeT{}, dev: &mockDevice{}, sys: &mockSystem{}}
	opts = append([]Option{WithTimeout(50 * time.Millisecond), WithPollInterval(5 * time.Millisecond)}, opts...)
	h.a = OnDevice(h.t, h.dev, h.sys, opts...)
	return h
}

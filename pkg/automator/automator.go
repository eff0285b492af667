// Package automator is a fluent layer over UIAutomator2 for driving and
// asserting on an Android device from Go tests.
//
// A chain starts with OnDevice and is narrowed to a view with On:
//
//	a := automator.OnDevice(t, automator.NewRemote(client), dev)
//	a.LaunchApp("com.example")
//	a.On(selector.WithText("Sign in")).Perform(automator.Click())
//	a.On(selector.WithResourceID("com.example:id/title")).
//		Check(automator.Text(automator.EqualTo("Welcome")))
//
// Every lookup resolves the selector against the live UI tree. Failures are
// reported through TB.Fatalf, so a chain reads like a sequence of test
// steps with no error plumbing.
package automator

import (
	"context"
	"errors"
	"time"

	"github.com/devicelab-dev/deviceautomator/pkg/core"
	"github.com/devicelab-dev/deviceautomator/pkg/device"
	"github.com/devicelab-dev/deviceautomator/pkg/logger"
	"github.com/devicelab-dev/deviceautomator/pkg/selector"
	"github.com/devicelab-dev/deviceautomator/pkg/uiautomator2"
)

// Defaults for waits.
const (
	DefaultTimeout      = 5 * time.Second
	DefaultPollInterval = 250 * time.Millisecond
)

// Runtime permissions exist from Marshmallow on.
const minRuntimePermissionSDK = 23

// Permission dialog button indexes.
const (
	denyButtonIndex  = 0
	allowButtonIndex = 1
)

// TB is the part of testing.TB the automator reports failures through.
// Implementations must not return from Fatalf in real tests; the automator
// still returns after every failure so a recording TB sees one failure per
// step.
type TB interface {
	Helper()
	Fatalf(format string, args ...interface{})
}

// Device is the UIAutomator2 surface the automator drives. Lookups that
// match nothing must return an error wrapping uiautomator2.ErrNoSuchElement.
type Device interface {
	Find(sel selector.Selector) (Element, error)
	ScrollTextIntoView(container selector.Selector, text string) error
	Swipe(elementID, direction string, percent float64, speed int) error
	PressKeyCode(keyCode, metaState int) error
	OpenNotifications() error
}

// Element is a resolved view. *uiautomator2.Element implements it.
type Element interface {
	ID() string
	Click() error
	Clear() error
	SendKeys(text string) error
	Text() (string, error)
	ContentDescription() (string, error)
	Rect() (uiautomator2.ElementRect, error)
	IsChecked() (bool, error)
	IsEnabled() (bool, error)
}

// System is the adb surface for queries UIAutomator2 has no endpoint for.
// *device.AndroidDevice implements it.
type System interface {
	LaunchApp(pkg string) error
	StartIntent(intent device.Intent) error
	LauncherPackage() (string, error)
	ForegroundPackage() (string, error)
	IsScreenOn() (bool, error)
	SDKVersion() (int, error)
	PermissionGranted(pkg, perm string) (bool, error)
	ExpandQuickSettings() error
}

type options struct {
	ctx           context.Context
	timeout       time.Duration
	pollInterval  time.Duration
	targetPackage string
}

func defaultOptions() options {
	return options{
		ctx:          context.Background(),
		timeout:      DefaultTimeout,
		pollInterval: DefaultPollInterval,
	}
}

// Option configures an Automator created by OnDevice.
type Option func(*options)

// WithTimeout sets the default timeout of every wait.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithPollInterval sets how often waits re-query the device.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		o.pollInterval = d
	}
}

// WithContext bounds every wait by ctx.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// WithTargetPackage names the app under test, whose runtime permissions
// AcceptRuntimePermission and DenyRuntimePermission inspect. Launching an
// app sets it as well.
func WithTargetPackage(pkg string) Option {
	return func(o *options) {
		o.targetPackage = pkg
	}
}

// session is shared by every Automator derived from one OnDevice call.
type session struct {
	targetPackage string
}

// Automator is one step of a chain. Methods without a return value end the
// chain; the others return the receiver.
type Automator struct {
	t    TB
	dev  Device
	sys  System
	sel  selector.Selector
	opts options
	sess *session
}

// OnDevice starts a chain against dev and sys.
func OnDevice(t TB, dev Device, sys System, opts ...Option) *Automator {
	t.Helper()

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	a := &Automator{
		t:    t,
		dev:  dev,
		sys:  sys,
		opts: o,
		sess: &session{targetPackage: o.targetPackage},
	}
	if o.timeout < 0 {
		a.fail("configure", core.ErrInvalidConfig.WithMessagef("negative timeout: %v", o.timeout))
	}
	if o.pollInterval <= 0 {
		a.fail("configure", core.ErrInvalidConfig.WithMessagef("poll interval must be positive: %v", o.pollInterval))
	}
	return a
}

// On returns a copy of the chain bound to sel.
func (a *Automator) On(sel selector.Selector) *Automator {
	b := *a
	b.sel = sel
	return &b
}

// Selector returns the selector the chain is bound to.
func (a *Automator) Selector() selector.Selector {
	return a.sel
}

// TargetPackage returns the app under test, or "" if none is known yet.
func (a *Automator) TargetPackage() string {
	return a.sess.targetPackage
}

func (a *Automator) fail(op string, err error) {
	a.t.Helper()
	logger.Error("%s failed: %v", op, err)
	if a.sel.IsZero() {
		a.t.Fatalf("automator: %s: %v", op, err)
		return
	}
	a.t.Fatalf("automator: %s on %s: %v", op, a.sel, err)
}

func (a *Automator) requireSelector(op string) bool {
	a.t.Helper()
	if a.sel.IsZero() {
		a.fail(op, core.ErrMissingSelector.WithMessage("no selector: start the chain with On(selector)"))
		return false
	}
	return true
}

func (a *Automator) timeout(timeout []time.Duration) time.Duration {
	if len(timeout) > 0 {
		return timeout[0]
	}
	return a.opts.timeout
}

// poll calls cond until it reports true or timeout elapses. An error from
// cond ends the wait.
func (a *Automator) poll(timeout time.Duration, cond func() (bool, error)) (bool, error) {
	ctx, cancel := context.WithTimeout(a.opts.ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(a.opts.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := cond()
		if err != nil || ok {
			return ok, err
		}
		select {
		case <-ctx.Done():
			return false, nil
		case <-ticker.C:
		}
	}
}

// find resolves the bound selector.
func (a *Automator) find() (Element, error) {
	el, err := a.dev.Find(a.sel)
	if err != nil {
		return nil, lookupError(a.sel, err)
	}
	return el, nil
}

// lookupError classifies a Device error: no match or a stale view becomes
// ErrElementNotFound, anything else ErrDeviceCommand.
func lookupError(sel selector.Selector, err error) error {
	if goneFromScreen(err) {
		return core.ErrElementNotFound.WithMessagef("no view matches %s", sel).WithCause(err)
	}
	return deviceError(err)
}

func deviceError(err error) error {
	var ee *core.ExecutionError
	if errors.As(err, &ee) {
		return err
	}
	return core.ErrDeviceCommand.WithCause(err)
}

// goneFromScreen reports whether err means the view is not in the hierarchy,
// either unmatched or removed after it was found.
func goneFromScreen(err error) bool {
	return errors.Is(err, uiautomator2.ErrNoSuchElement) || errors.Is(err, uiautomator2.ErrStaleElement)
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrElementNotFound)
}

// OnHomeScreen presses HOME and waits up to timeout for the launcher to
// reach the foreground.
func (a *Automator) OnHomeScreen(timeout ...time.Duration) *Automator {
	a.t.Helper()

	if err := a.dev.PressKeyCode(keyHome, 0); err != nil {
		a.fail("press home", deviceError(err))
		return a
	}
	launcher, err := a.sys.LauncherPackage()
	if err != nil {
		a.fail("resolve launcher", deviceError(err))
		return a
	}
	if launcher == "" {
		a.fail("resolve launcher", core.ErrConditionNotMet.WithMessage("Expected a launcher package but: was none"))
		return a
	}
	a.waitForPackage(launcher, a.timeout(timeout))
	return a
}

// CheckForegroundAppIs waits up to timeout for pkg to reach the foreground
// and fails if it does not.
func (a *Automator) CheckForegroundAppIs(pkg string, timeout ...time.Duration) *Automator {
	a.t.Helper()

	current := ""
	ok, err := a.poll(a.timeout(timeout), func() (bool, error) {
		var err error
		current, err = a.sys.ForegroundPackage()
		return current == pkg, err
	})
	if err != nil {
		a.fail("check foreground app", deviceError(err))
		return a
	}
	if !ok {
		a.fail("check foreground app", foregroundTimeout(pkg, current))
	}
	return a
}

// foregroundTimeout is the failure of a foreground wait that expired with
// current still in front.
func foregroundTimeout(pkg, current string) error {
	return core.ErrWaitTimeout.WithMessagef("Expected foreground app %q but: was %q", pkg, current)
}

// LaunchApp starts the launcher activity of pkg in a cleared task and waits
// up to timeout for it to reach the foreground. pkg becomes the target
// package.
func (a *Automator) LaunchApp(pkg string, timeout ...time.Duration) *Automator {
	a.t.Helper()

	logger.Info("Launching %s", pkg)
	if err := a.sys.LaunchApp(pkg); err != nil {
		a.fail("launch "+pkg, core.ErrLaunchFailed.WithCause(err))
		return a
	}
	a.sess.targetPackage = pkg
	a.waitForPackage(pkg, a.timeout(timeout))
	return a
}

// LaunchIntent starts intent in a cleared task and waits up to timeout for
// its package to reach the foreground. Implicit intents are not waited on.
func (a *Automator) LaunchIntent(intent device.Intent, timeout ...time.Duration) *Automator {
	a.t.Helper()

	intent.Flags |= device.FlagActivityNewTask | device.FlagActivityClearTask
	if err := a.sys.StartIntent(intent); err != nil {
		a.fail("launch intent", core.ErrLaunchFailed.WithCause(err))
		return a
	}

	pkg := intent.TargetPackage()
	if pkg == "" {
		return a
	}
	a.sess.targetPackage = pkg
	a.waitForPackage(pkg, a.timeout(timeout))
	return a
}

// waitForPackage waits for pkg to hold focus. Expiry is logged, not failed;
// CheckForegroundAppIs is the assertion.
func (a *Automator) waitForPackage(pkg string, timeout time.Duration) {
	a.t.Helper()

	ok, err := a.poll(timeout, func() (bool, error) {
		current, err := a.sys.ForegroundPackage()
		return current == pkg, err
	})
	if err != nil {
		a.fail("wait for "+pkg, deviceError(err))
		return
	}
	if !ok {
		logger.Warn("%s not in foreground after %v", pkg, timeout)
	}
}

// WaitForExists waits up to timeout for the bound selector to match a view.
// Expiry is logged, not failed.
func (a *Automator) WaitForExists(timeout ...time.Duration) *Automator {
	a.t.Helper()
	if !a.requireSelector("wait for exists") {
		return a
	}

	d := a.timeout(timeout)
	ok, err := a.poll(d, func() (bool, error) {
		_, err := a.find()
		if isNotFound(err) {
			return false, nil
		}
		return err == nil, err
	})
	if err != nil {
		a.fail("wait for exists", err)
		return a
	}
	if !ok {
		logger.Warn("%s did not appear within %v", a.sel, d)
	}
	return a
}

// WaitForEnabled waits up to timeout for the bound view to exist and be
// enabled. Expiry is logged, not failed.
func (a *Automator) WaitForEnabled(timeout ...time.Duration) *Automator {
	a.t.Helper()
	if !a.requireSelector("wait for enabled") {
		return a
	}

	d := a.timeout(timeout)
	ok, err := a.poll(d, func() (bool, error) {
		el, err := a.find()
		if isNotFound(err) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		enabled, err := el.IsEnabled()
		if err != nil {
			err = lookupError(a.sel, err)
			if isNotFound(err) {
				return false, nil
			}
			return false, err
		}
		return enabled, nil
	})
	if err != nil {
		a.fail("wait for enabled", err)
		return a
	}
	if !ok {
		logger.Warn("%s not enabled within %v", a.sel, d)
	}
	return a
}

// Exists reports whether the bound selector currently matches a view. It is
// false for a chain with no selector.
func (a *Automator) Exists() bool {
	a.t.Helper()
	if a.sel.IsZero() {
		return false
	}

	_, err := a.find()
	switch {
	case err == nil:
		return true
	case isNotFound(err):
		return false
	default:
		a.fail("exists", err)
		return false
	}
}

// IsChecked reports the checked state of the bound view. A missing view is
// a failure.
func (a *Automator) IsChecked() bool {
	a.t.Helper()
	if !a.requireSelector("is checked") {
		return false
	}

	el, err := a.find()
	if err != nil {
		a.fail("is checked", err)
		return false
	}
	checked, err := el.IsChecked()
	if err != nil {
		a.fail("is checked", lookupError(a.sel, err))
		return false
	}
	return checked
}

// IsScreenOn reports whether the display is on.
func (a *Automator) IsScreenOn() bool {
	a.t.Helper()

	on, err := a.sys.IsScreenOn()
	if err != nil {
		a.fail("is screen on", deviceError(err))
		return false
	}
	return on
}

// Perform runs actions in order against the bound selector, resolving it
// anew for each one. The first failing action ends the chain.
func (a *Automator) Perform(actions ...Action) {
	a.t.Helper()
	if !a.requireSelector("perform") {
		return
	}

	for _, action := range actions {
		logger.Debug("perform %s on %s", action, a.sel)
		if err := action.run(a.target()); err != nil {
			a.fail(action.String(), err)
			return
		}
	}
}

// Check runs assertions in order against the bound selector, resolving it
// anew for each one. The first failing assertion ends the chain.
func (a *Automator) Check(assertions ...Assertion) {
	a.t.Helper()
	if !a.requireSelector("check") {
		return
	}

	for _, assertion := range assertions {
		logger.Debug("check %s on %s", assertion, a.sel)
		if err := assertion.check(a.target()); err != nil {
			a.fail("check "+assertion.String(), err)
			return
		}
	}
}

// AcceptRuntimePermission taps allow on the runtime permission dialog for
// perm. Nothing happens below Marshmallow, when the target package already
// holds perm, or when no dialog is showing.
func (a *Automator) AcceptRuntimePermission(perm string) *Automator {
	a.t.Helper()
	a.clickPermissionDialogButton("accept "+perm, perm, allowButtonIndex)
	return a
}

// DenyRuntimePermission taps deny on the runtime permission dialog for perm,
// under the same conditions as AcceptRuntimePermission.
func (a *Automator) DenyRuntimePermission(perm string) *Automator {
	a.t.Helper()
	a.clickPermissionDialogButton("deny "+perm, perm, denyButtonIndex)
	return a
}

func (a *Automator) clickPermissionDialogButton(op, perm string, index int) {
	a.t.Helper()

	sdk, err := a.sys.SDKVersion()
	if err != nil {
		a.fail(op, deviceError(err))
		return
	}
	if sdk < minRuntimePermissionSDK {
		return
	}

	pkg := a.sess.targetPackage
	if pkg == "" {
		a.fail(op, core.ErrInvalidConfig.WithMessage("no target package: launch an app or pass WithTargetPackage"))
		return
	}
	granted, err := a.sys.PermissionGranted(pkg, perm)
	if err != nil {
		a.fail(op, deviceError(err))
		return
	}
	if granted {
		return
	}

	button := a.On(selector.New().Clickable(true).Checkable(false).Index(index))
	el, err := button.find()
	if isNotFound(err) {
		logger.Debug("no permission dialog for %s", perm)
		return
	}
	if err != nil {
		button.fail(op, err)
		return
	}
	if err := el.Click(); err != nil && !goneFromScreen(err) {
		button.fail(op, deviceError(err))
	}
}

func (a *Automator) target() *target {
	return &target{dev: a.dev, sel: a.sel}
}

// target is the view an Action or Assertion runs against. It is resolved on
// first use, so actions that only need the selector never query the device.
type target struct {
	dev  Device
	sel  selector.Selector
	el   Element
	err  error
	done bool
}

func (tg *target) element() (Element, error) {
	if !tg.done {
		tg.done = true
		el, err := tg.dev.Find(tg.sel)
		if err != nil {
			tg.err = lookupError(tg.sel, err)
		} else {
			tg.el = el
		}
	}
	return tg.el, tg.err
}

package automator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/deviceautomator/pkg/core"
	"github.com/devicelab-dev/deviceautomator/pkg/device"
	"github.com/devicelab-dev/deviceautomator/pkg/keymap"
	"github.com/devicelab-dev/deviceautomator/pkg/selector"
)

func TestOnDevice_InvalidOptions(t *testing.T) {
	ft := &fakeT{}
	OnDevice(ft, &mockDevice{}, &mockSystem{}, WithTimeout(-time.Second), WithPollInterval(0))

	require.Len(t, ft.failures, 2)
	assert.Contains(t, ft.failures[0], "negative timeout")
	assert.Contains(t, ft.failures[1], "poll interval must be positive")
}

func TestOn_ReturnsBoundCopy(t *testing.T) {
	h := newHarness()
	sel := selector.WithText("OK")

	bound := h.a.On(sel)

	assert.True(t, h.a.Selector().IsZero())
	assert.Equal(t, sel, bound.Selector())
}

func TestTypeText_SupportsSymbols(t *testing.T) {
	h := newHarness()
	h.dev.On("PressKeyCode", mock.Anything, mock.Anything).Return(nil)

	text := "`~!@#$%^&*()-_=+[]\\|;:'\",<.>/?"
	h.a.TypeText(text)

	require.False(t, h.t.failed(), h.t.String())
	shift := keymap.MetaShiftLeftOn | keymap.MetaShiftOn
	presses := h.dev.keyPresses()
	require.Len(t, presses, len(text))
	assert.Equal(t, [2]int{keymap.KeyCodeGrave, 0}, presses[0])
	assert.Equal(t, [2]int{keymap.KeyCodeGrave, shift}, presses[1])
	assert.Equal(t, [2]int{keymap.KeyCode1, shift}, presses[2])
	assert.Equal(t, [2]int{keymap.KeyCodeSlash, shift}, presses[len(presses)-1])
}

func TestTypeText_SkipsUnmapped(t *testing.T) {
	h := newHarness()
	h.dev.On("PressKeyCode", mock.Anything, mock.Anything).Return(nil)

	h.a.TypeText("é")

	assert.Empty(t, h.dev.keyPresses())
	assert.False(t, h.t.failed())
}

func TestTypeText_StopsOnError(t *testing.T) {
	h := newHarness()
	h.dev.On("PressKeyCode", mock.Anything, mock.Anything).Return(errors.New("socket closed"))

	h.a.TypeText("abc")

	assert.Len(t, h.dev.keyPresses(), 1)
	require.Len(t, h.t.failures, 1)
	assert.Contains(t, h.t.last(), "automator: type key=29: device command failed: socket closed")
}

func TestPressKeys(t *testing.T) {
	tests := []struct {
		name  string
		press func(*Automator) *Automator
		code  int
	}{
		{"home", (*Automator).PressHome, keymap.KeyCodeHome},
		{"back", (*Automator).PressBack, keymap.KeyCodeBack},
		{"menu", (*Automator).PressMenu, keymap.KeyCodeMenu},
		{"recent apps", (*Automator).PressRecentApps, keymap.KeyCodeAppSwitch},
		{"search", (*Automator).PressSearch, keymap.KeyCodeSearch},
		{"enter", (*Automator).PressEnter, keymap.KeyCodeEnter},
		{"delete", (*Automator).PressDelete, keymap.KeyCodeDel},
		{"tab", (*Automator).PressTab, keymap.KeyCodeTab},
		{"dpad up", (*Automator).PressDPadUp, keymap.KeyCodeDpadUp},
		{"dpad down", (*Automator).PressDPadDown, keymap.KeyCodeDpadDown},
		{"dpad left", (*Automator).PressDPadLeft, keymap.KeyCodeDpadLeft},
		{"dpad right", (*Automator).PressDPadRight, keymap.KeyCodeDpadRight},
		{"dpad center", (*Automator).PressDPadCenter, keymap.KeyCodeDpadCenter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.dev.On("PressKeyCode", tt.code, 0).Return(nil).Once()

			assert.Same(t, h.a, tt.press(h.a))

			h.dev.AssertExpectations(t)
			assert.False(t, h.t.failed(), h.t.String())
		})
	}
}

func TestOpenNotificationAndQuickSettings(t *testing.T) {
	h := newHarness()
	h.dev.On("OpenNotifications").Return(nil).Once()
	h.sys.On("ExpandQuickSettings").Return(errors.New("cmd: not found")).Once()

	h.a.OpenNotification().OpenQuickSettings()

	h.dev.AssertExpectations(t)
	h.sys.AssertExpectations(t)
	require.Len(t, h.t.failures, 1)
	assert.Contains(t, h.t.last(), "open quick settings")
}

func TestExists(t *testing.T) {
	sel := selector.WithResourceID("app:id/ok")

	t.Run("no selector", func(t *testing.T) {
		h := newHarness()
		assert.False(t, h.a.Exists())
		h.dev.AssertNotCalled(t, "Find", mock.Anything)
	})

	t.Run("found", func(t *testing.T) {
		h := newHarness()
		h.dev.On("Find", sel).Return(&mockElement{id: "1"}, nil)
		assert.True(t, h.a.On(sel).Exists())
	})

	t.Run("not found", func(t *testing.T) {
		h := newHarness()
		h.dev.On("Find", sel).Return(nil, notFound())
		assert.False(t, h.a.On(sel).Exists())
		assert.False(t, h.t.failed())
	})

	t.Run("device error", func(t *testing.T) {
		h := newHarness()
		h.dev.On("Find", sel).Return(nil, errors.New("connection refused"))
		assert.False(t, h.a.On(sel).Exists())
		assert.Contains(t, h.t.last(), "connection refused")
	})
}

func TestIsChecked(t *testing.T) {
	sel := selector.WithClass(selector.ClassCheckBox)

	for _, want := range []bool{true, false} {
		h := newHarness()
		el := &mockElement{id: "cb"}
		el.On("IsChecked").Return(want, nil)
		h.dev.On("Find", sel).Return(el, nil)

		assert.Equal(t, want, h.a.On(sel).IsChecked())
		assert.False(t, h.t.failed())
	}

	h := newHarness()
	h.dev.On("Find", sel).Return(nil, notFound())
	assert.False(t, h.a.On(sel).IsChecked())
	assert.Contains(t, h.t.last(), "no view matches UiSelector[CLASS=android.widget.CheckBox]")
}

func TestIsScreenOn(t *testing.T) {
	h := newHarness()
	h.sys.On("IsScreenOn").Return(true, nil).Once()
	h.sys.On("IsScreenOn").Return(false, errors.New("dumpsys failed")).Once()

	assert.True(t, h.a.IsScreenOn())
	assert.False(t, h.a.IsScreenOn())
	assert.Contains(t, h.t.last(), "dumpsys failed")
}

func TestPerform_ResolvesSelectorPerAction(t *testing.T) {
	h := newHarness()
	sel := selector.WithText("Submit")
	el := &mockElement{id: "btn"}
	el.On("Click").Return(nil)
	h.dev.On("Find", sel).Return(el, nil)

	h.a.On(sel).Perform(Click(), Click())

	h.dev.AssertNumberOfCalls(t, "Find", 2)
	el.AssertNumberOfCalls(t, "Click", 2)
	assert.False(t, h.t.failed(), h.t.String())
}

func TestPerform_StopsAtFirstFailure(t *testing.T) {
	h := newHarness()
	sel := selector.WithText("Submit")
	h.dev.On("Find", sel).Return(nil, notFound())

	h.a.On(sel).Perform(Click(), ClearTextField())

	h.dev.AssertNumberOfCalls(t, "Find", 1)
	require.Len(t, h.t.failures, 1)
	assert.Contains(t, h.t.last(), "automator: click on UiSelector[TEXT_REGEX=(?i)\\QSubmit\\E]: no view matches")
}

func TestPerformAndCheck_RequireSelector(t *testing.T) {
	h := newHarness()

	h.a.Perform(Click())
	h.a.Check(Visible(true))

	require.Len(t, h.t.failures, 2)
	assert.Contains(t, h.t.failures[0], "automator: perform: no selector")
	assert.Contains(t, h.t.failures[1], "automator: check: no selector")
	h.dev.AssertNotCalled(t, "Find", mock.Anything)
}

func TestCheck_RunsAllAssertions(t *testing.T) {
	h := newHarness()
	sel := selector.WithResourceID("app:id/title")
	el := &mockElement{id: "title"}
	el.On("Rect").Return(visibleRect(), nil)
	el.On("Text").Return("Welcome back", nil)
	el.On("IsEnabled").Return(true, nil)
	h.dev.On("Find", sel).Return(el, nil)

	h.a.On(sel).Check(
		Visible(true),
		Text(StartsWith("Welcome")),
		Enabled(true),
	)

	assert.False(t, h.t.failed(), h.t.String())
	h.dev.AssertNumberOfCalls(t, "Find", 3)
}

func TestCheck_ReportsMismatch(t *testing.T) {
	h := newHarness()
	sel := selector.WithResourceID("app:id/title")
	el := &mockElement{id: "title"}
	el.On("Rect").Return(visibleRect(), nil)
	el.On("Text").Return("Hello", nil)
	h.dev.On("Find", sel).Return(el, nil)

	h.a.On(sel).Check(Text(EqualTo("Welcome")))

	assert.Equal(t,
		`automator: check text on UiSelector[RESOURCE_ID=app:id/title]: Expected "Welcome" but: was "Hello"`,
		h.t.last())
}

func TestWaitForExists(t *testing.T) {
	sel := selector.WithText("Loaded")

	t.Run("appears", func(t *testing.T) {
		h := newHarness()
		h.dev.On("Find", sel).Return(nil, notFound()).Twice()
		h.dev.On("Find", sel).Return(&mockElement{id: "1"}, nil).Once()

		h.a.On(sel).WaitForExists()

		h.dev.AssertNumberOfCalls(t, "Find", 3)
		assert.False(t, h.t.failed())
	})

	t.Run("timeout is not a failure", func(t *testing.T) {
		h := newHarness()
		h.dev.On("Find", sel).Return(nil, notFound())

		start := time.Now()
		h.a.On(sel).WaitForExists(20 * time.Millisecond)

		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
		assert.False(t, h.t.failed())
	})

	t.Run("device error fails", func(t *testing.T) {
		h := newHarness()
		h.dev.On("Find", sel).Return(nil, errors.New("broken pipe"))

		h.a.On(sel).WaitForExists()

		h.dev.AssertNumberOfCalls(t, "Find", 1)
		assert.Contains(t, h.t.last(), "broken pipe")
	})

	t.Run("no selector", func(t *testing.T) {
		h := newHarness()
		h.a.WaitForExists()
		assert.Contains(t, h.t.last(), "no selector")
	})
}

func TestWaitForExists_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := newHarness(WithContext(ctx), WithTimeout(time.Hour))
	sel := selector.WithText("Never")
	h.dev.On("Find", sel).Return(nil, notFound())

	done := make(chan struct{})
	go func() {
		h.a.On(sel).WaitForExists()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitForExists ignored the cancelled context")
	}
}

func TestWaitForEnabled(t *testing.T) {
	sel := selector.WithText("Next")
	el := &mockElement{id: "next"}
	el.On("IsEnabled").Return(false, nil).Once()
	el.On("IsEnabled").Return(true, nil).Once()

	h := newHarness()
	h.dev.On("Find", sel).Return(nil, notFound()).Once()
	h.dev.On("Find", sel).Return(el, nil)

	h.a.On(sel).WaitForEnabled()

	el.AssertExpectations(t)
	assert.False(t, h.t.failed(), h.t.String())
}

func TestCheckForegroundAppIs(t *testing.T) {
	t.Run("reaches foreground", func(t *testing.T) {
		h := newHarness()
		h.sys.On("ForegroundPackage").Return("com.android.launcher", nil).Once()
		h.sys.On("ForegroundPackage").Return("com.example", nil).Once()

		h.a.CheckForegroundAppIs("com.example")

		assert.False(t, h.t.failed())
		h.sys.AssertExpectations(t)
	})

	t.Run("times out", func(t *testing.T) {
		h := newHarness()
		h.sys.On("ForegroundPackage").Return("com.android.launcher", nil)

		h.a.CheckForegroundAppIs("com.example", 10*time.Millisecond)

		assert.Equal(t,
			`automator: check foreground app: Expected foreground app "com.example" but: was "com.android.launcher"`,
			h.t.last())
	})

	t.Run("reports a timeout", func(t *testing.T) {
		err := foregroundTimeout("com.example", "com.android.launcher")

		assert.True(t, errors.Is(err, core.ErrWaitTimeout))
		assert.False(t, errors.Is(err, core.ErrConditionNotMet))
		var ee *core.ExecutionError
		require.True(t, errors.As(err, &ee))
		assert.Equal(t, core.ErrCategoryTimeout, ee.Category)
	})
}

func TestOnHomeScreen(t *testing.T) {
	h := newHarness()
	h.dev.On("PressKeyCode", keymap.KeyCodeHome, 0).Return(nil).Once()
	h.sys.On("LauncherPackage").Return("com.android.launcher3", nil).Once()
	h.sys.On("ForegroundPackage").Return("com.android.launcher3", nil).Once()

	h.a.OnHomeScreen()

	h.dev.AssertExpectations(t)
	h.sys.AssertExpectations(t)
	assert.False(t, h.t.failed())
}

func TestOnHomeScreen_NoLauncher(t *testing.T) {
	h := newHarness()
	h.dev.On("PressKeyCode", keymap.KeyCodeHome, 0).Return(nil)
	h.sys.On("LauncherPackage").Return("", nil)

	h.a.OnHomeScreen()

	assert.Contains(t, h.t.last(), "Expected a launcher package but: was none")
	h.sys.AssertNotCalled(t, "ForegroundPackage")
}

func TestLaunchApp(t *testing.T) {
	h := newHarness()
	h.sys.On("LaunchApp", "com.example").Return(nil).Once()
	h.sys.On("ForegroundPackage").Return("com.example", nil)

	h.a.LaunchApp("com.example")

	assert.False(t, h.t.failed())
	assert.Equal(t, "com.example", h.a.TargetPackage())
	assert.Equal(t, "com.example", h.a.On(selector.WithText("x")).TargetPackage())
}

func TestLaunchApp_Failure(t *testing.T) {
	h := newHarness()
	h.sys.On("LaunchApp", "com.missing").Return(errors.New("no launcher activity for com.missing"))

	h.a.LaunchApp("com.missing")

	assert.Equal(t,
		"automator: launch com.missing: application could not be launched: no launcher activity for com.missing",
		h.t.last())
	assert.Empty(t, h.a.TargetPackage())
}

func TestLaunchIntent_AddsTaskFlags(t *testing.T) {
	h := newHarness()
	intent := device.Intent{Action: device.ActionView, Data: "https://example.com", Package: "com.android.chrome"}
	h.sys.On("StartIntent", mock.MatchedBy(func(i device.Intent) bool {
		return i.Flags == device.FlagActivityNewTask|device.FlagActivityClearTask && i.Data == intent.Data
	})).Return(nil).Once()
	h.sys.On("ForegroundPackage").Return("com.android.chrome", nil)

	h.a.LaunchIntent(intent)

	h.sys.AssertExpectations(t)
	assert.False(t, h.t.failed())
	assert.Equal(t, "com.android.chrome", h.a.TargetPackage())
}

func TestLaunchIntent_ImplicitSkipsWait(t *testing.T) {
	h := newHarness()
	h.sys.On("StartIntent", mock.Anything).Return(nil)

	h.a.LaunchIntent(device.Intent{Action: device.ActionView, Data: "geo:0,0"})

	h.sys.AssertNotCalled(t, "ForegroundPackage")
}

func TestRuntimePermission(t *testing.T) {
	const perm = "android.permission.CAMERA"

	tests := []struct {
		name    string
		accept  bool
		index   int
		sdk     int
		granted bool
		found   bool
		clicked bool
	}{
		{name: "accept", accept: true, index: 1, sdk: 33, found: true, clicked: true},
		{name: "deny", accept: false, index: 0, sdk: 33, found: true, clicked: true},
		{name: "pre-marshmallow", accept: true, index: 1, sdk: 22},
		{name: "already granted", accept: true, index: 1, sdk: 33, granted: true},
		{name: "no dialog", accept: true, index: 1, sdk: 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(WithTargetPackage("com.example"))
			h.sys.On("SDKVersion").Return(tt.sdk, nil)
			h.sys.On("PermissionGranted", "com.example", perm).Return(tt.granted, nil)

			button := &mockElement{id: "button"}
			button.On("Click").Return(nil)
			sel := selector.New().Clickable(true).Checkable(false).Index(tt.index)
			if tt.found {
				h.dev.On("Find", sel).Return(button, nil)
			} else {
				h.dev.On("Find", sel).Return(nil, notFound())
			}

			if tt.accept {
				h.a.AcceptRuntimePermission(perm)
			} else {
				h.a.DenyRuntimePermission(perm)
			}

			assert.False(t, h.t.failed(), h.t.String())
			if tt.clicked {
				button.AssertCalled(t, "Click")
			} else {
				button.AssertNotCalled(t, "Click")
			}
			if tt.sdk < 23 {
				h.sys.AssertNotCalled(t, "PermissionGranted", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestRuntimePermission_NoTargetPackage(t *testing.T) {
	h := newHarness()
	h.sys.On("SDKVersion").Return(33, nil)

	h.a.AcceptRuntimePermission("android.permission.CAMERA")

	assert.Contains(t, h.t.last(), "no target package")
}

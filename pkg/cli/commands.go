package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/deviceautomator/pkg/automator"
	"github.com/devicelab-dev/deviceautomator/pkg/device"
	"github.com/devicelab-dev/deviceautomator/pkg/selector"
)

var commands = []*cli.Command{
	typeCommand,
	tapCommand,
	setTextCommand,
	checkCommand,
	pressCommand,
	launchCommand,
	homeCommand,
	screenCommand,
	permissionCommand,
	devicesCommand,
	hierarchyCommand,
	screenshotCommand,
}

// selectorFlags locate the view a command works on.
var selectorFlags = []cli.Flag{
	&cli.StringFlag{Name: "text", Usage: "Exact text, ignoring case"},
	&cli.StringFlag{Name: "text-contains", Usage: "Text containing this substring"},
	&cli.StringFlag{Name: "text-starts-with", Usage: "Text starting with this prefix"},
	&cli.StringFlag{Name: "id", Usage: "Fully qualified resource id (pkg:id/name)"},
	&cli.StringFlag{Name: "desc", Usage: "Content description"},
	&cli.StringFlag{Name: "class", Usage: "Widget class name"},
	&cli.IntFlag{Name: "index", Usage: "Index among siblings"},
	&cli.IntFlag{Name: "instance", Usage: "Nth match of the selector"},
}

// buildSelector combines every selector flag that was set.
func buildSelector(c *cli.Context) (selector.Selector, error) {
	sel := selector.New()
	if c.IsSet("text") {
		sel = selector.WithText(c.String("text"))
	}
	if c.IsSet("text-contains") {
		sel = sel.TextContains(c.String("text-contains"))
	}
	if c.IsSet("text-starts-with") {
		sel = sel.TextStartsWith(c.String("text-starts-with"))
	}
	if c.IsSet("id") {
		sel = sel.ResourceID(c.String("id"))
	}
	if c.IsSet("desc") {
		sel = sel.Description(c.String("desc"))
	}
	if c.IsSet("class") {
		sel = sel.Class(c.String("class"))
	}
	if c.IsSet("index") {
		sel = sel.Index(c.Int("index"))
	}
	if c.IsSet("instance") {
		sel = sel.Instance(c.Int("instance"))
	}
	if sel.IsZero() {
		return sel, fmt.Errorf("a selector is required (--text, --id, --desc, ...)")
	}
	return sel, nil
}

var typeCommand = &cli.Command{
	Name:      "type",
	Usage:     "Type text with key events",
	ArgsUsage: "<text>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("type takes exactly one argument")
		}
		text := c.Args().First()
		return onDevices(c, func(a *automator.Automator, s *deviceSession) {
			a.TypeText(text)
			out.success(serialOf(s), fmt.Sprintf("Typed %q", text))
		})
	},
}

var tapCommand = &cli.Command{
	Name:  "tap",
	Usage: "Tap a view",
	Flags: append([]cli.Flag{
		&cli.BoolFlag{Name: "wait", Usage: "Wait for the view to exist first"},
	}, selectorFlags...),
	Action: func(c *cli.Context) error {
		sel, err := buildSelector(c)
		if err != nil {
			return err
		}
		wait := c.Bool("wait")
		return onDevices(c, func(a *automator.Automator, s *deviceSession) {
			v := a.On(sel)
			if wait {
				v.WaitForExists()
			}
			v.Perform(automator.Click())
			out.success(serialOf(s), "Tapped "+sel.String())
		})
	},
}

var setTextCommand = &cli.Command{
	Name:      "set-text",
	Usage:     "Replace the text of an editable view",
	ArgsUsage: "<text>",
	Flags:     selectorFlags,
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("set-text takes exactly one argument")
		}
		sel, err := buildSelector(c)
		if err != nil {
			return err
		}
		text := c.Args().First()
		return onDevices(c, func(a *automator.Automator, s *deviceSession) {
			a.On(sel).Perform(automator.SetText(text))
			out.success(serialOf(s), fmt.Sprintf("Set %s to %q", sel, text))
		})
	},
}

var checkCommand = &cli.Command{
	Name:  "check",
	Usage: "Assert on a view",
	Description: `Every assertion flag given must hold. Without any, check asserts the
view is visible.`,
	Flags: append([]cli.Flag{
		&cli.StringFlag{Name: "text-equals", Usage: "Text equals"},
		&cli.StringFlag{Name: "text-matches", Usage: "Text matches this regular expression in full"},
		&cli.StringFlag{Name: "desc-equals", Usage: "Content description equals"},
		&cli.BoolFlag{Name: "visible", Usage: "Visible (false: hidden or absent)"},
		&cli.BoolFlag{Name: "checked", Usage: "Checked state"},
		&cli.BoolFlag{Name: "enabled", Usage: "Enabled state"},
		&cli.BoolFlag{Name: "exists", Usage: "Only report whether the view exists"},
	}, selectorFlags...),
	Action: func(c *cli.Context) error {
		sel, err := buildSelector(c)
		if err != nil {
			return err
		}
		if c.Bool("exists") {
			return onDevices(c, func(a *automator.Automator, s *deviceSession) {
				out.value(serialOf(s), "exists", fmt.Sprint(a.On(sel).Exists()))
			})
		}
		assertions, err := buildAssertions(c)
		if err != nil {
			return err
		}
		return onDevices(c, func(a *automator.Automator, s *deviceSession) {
			a.On(sel).Check(assertions...)
			out.success(serialOf(s), fmt.Sprintf("%s passed %d check(s)", sel, len(assertions)))
		})
	},
}

// buildAssertions turns check flags into assertions.
func buildAssertions(c *cli.Context) (assertions []automator.Assertion, err error) {
	if c.IsSet("visible") {
		assertions = append(assertions, automator.Visible(c.Bool("visible")))
	}
	if c.IsSet("text-equals") {
		assertions = append(assertions, automator.Text(automator.EqualTo(c.String("text-equals"))))
	}
	if c.IsSet("text-matches") {
		m, err := safePattern(c.String("text-matches"))
		if err != nil {
			return nil, err
		}
		assertions = append(assertions, automator.Text(m))
	}
	if c.IsSet("desc-equals") {
		assertions = append(assertions, automator.ContentDescription(automator.EqualTo(c.String("desc-equals"))))
	}
	if c.IsSet("checked") {
		assertions = append(assertions, automator.Checked(c.Bool("checked")))
	}
	if c.IsSet("enabled") {
		assertions = append(assertions, automator.Enabled(c.Bool("enabled")))
	}
	if len(assertions) == 0 {
		assertions = append(assertions, automator.Visible(true))
	}
	return assertions, nil
}

// safePattern compiles a user pattern, reporting a bad one as an error.
func safePattern(pattern string) (m automator.Matcher, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid --text-matches pattern: %v", r)
		}
	}()
	return automator.MatchesPattern(pattern), nil
}

// keys are the names the press command accepts.
var keys = map[string]func(*automator.Automator) *automator.Automator{
	"home":           (*automator.Automator).PressHome,
	"back":           (*automator.Automator).PressBack,
	"menu":           (*automator.Automator).PressMenu,
	"recent-apps":    (*automator.Automator).PressRecentApps,
	"search":         (*automator.Automator).PressSearch,
	"enter":          (*automator.Automator).PressEnter,
	"delete":         (*automator.Automator).PressDelete,
	"tab":            (*automator.Automator).PressTab,
	"up":             (*automator.Automator).PressDPadUp,
	"down":           (*automator.Automator).PressDPadDown,
	"left":           (*automator.Automator).PressDPadLeft,
	"right":          (*automator.Automator).PressDPadRight,
	"center":         (*automator.Automator).PressDPadCenter,
	"notifications":  (*automator.Automator).OpenNotification,
	"quick-settings": (*automator.Automator).OpenQuickSettings,
}

func keyNames() []string {
	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var pressCommand = &cli.Command{
	Name:      "press",
	Usage:     "Press keys in order",
	ArgsUsage: "<key>...",
	Description: "Keys: " + strings.Join(keyNames(), ", "),
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return fmt.Errorf("press needs at least one key")
		}
		presses := make([]func(*automator.Automator) *automator.Automator, 0, c.NArg())
		for _, name := range c.Args().Slice() {
			press, ok := keys[strings.ToLower(name)]
			if !ok {
				return fmt.Errorf("unknown key %q (valid: %s)", name, strings.Join(keyNames(), ", "))
			}
			presses = append(presses, press)
		}
		names := strings.Join(c.Args().Slice(), " ")
		return onDevices(c, func(a *automator.Automator, s *deviceSession) {
			for _, press := range presses {
				press(a)
			}
			out.success(serialOf(s), "Pressed "+names)
		})
	},
}

var launchCommand = &cli.Command{
	Name:      "launch",
	Usage:     "Launch an app, or start an intent",
	ArgsUsage: "[package]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "action", Usage: "Intent action (e.g. android.intent.action.VIEW)"},
		&cli.StringFlag{Name: "data", Usage: "Intent data URI"},
		&cli.StringFlag{Name: "component", Usage: "Explicit component (pkg/.Activity)"},
		&cli.StringSliceFlag{Name: "category", Usage: "Intent category (repeatable)"},
		&cli.StringSliceFlag{Name: "extra", Usage: "String extra key=value (repeatable)"},
		&cli.BoolFlag{Name: "check", Usage: "Fail unless the app reaches the foreground"},
	},
	Action: func(c *cli.Context) error {
		rc := runConfig(c)
		timeout := rc.Config.LaunchTimeout.Std()
		check := c.Bool("check")

		if !c.IsSet("action") && !c.IsSet("data") && !c.IsSet("component") {
			if c.NArg() != 1 {
				return fmt.Errorf("launch takes a package, or intent flags")
			}
			pkg := c.Args().First()
			return onDevices(c, func(a *automator.Automator, s *deviceSession) {
				a.LaunchApp(pkg, timeout)
				if check {
					a.CheckForegroundAppIs(pkg, timeout)
				}
				out.success(serialOf(s), "Launched "+pkg)
			})
		}

		intent, err := buildIntent(c)
		if err != nil {
			return err
		}
		return onDevices(c, func(a *automator.Automator, s *deviceSession) {
			a.LaunchIntent(intent, timeout)
			if pkg := intent.TargetPackage(); check && pkg != "" {
				a.CheckForegroundAppIs(pkg, timeout)
			}
			out.success(serialOf(s), "Started "+strings.Join(intent.Args(), " "))
		})
	},
}

func buildIntent(c *cli.Context) (device.Intent, error) {
	intent := device.Intent{
		Action:     c.String("action"),
		Data:       c.String("data"),
		Component:  c.String("component"),
		Categories: c.StringSlice("category"),
		Package:    c.Args().First(),
	}
	for _, kv := range c.StringSlice("extra") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return intent, fmt.Errorf("invalid --extra %q, want key=value", kv)
		}
		if intent.Extras == nil {
			intent.Extras = map[string]string{}
		}
		intent.Extras[k] = v
	}
	return intent, nil
}

var homeCommand = &cli.Command{
	Name:  "home",
	Usage: "Go to the home screen",
	Action: func(c *cli.Context) error {
		return onDevices(c, func(a *automator.Automator, s *deviceSession) {
			a.OnHomeScreen()
			out.success(serialOf(s), "On home screen")
		})
	},
}

var screenCommand = &cli.Command{
	Name:  "screen",
	Usage: "Report whether the display is on and which app has focus",
	Action: func(c *cli.Context) error {
		return onDevices(c, func(a *automator.Automator, s *deviceSession) {
			state := "off"
			if a.IsScreenOn() {
				state = "on"
			}
			out.value(serialOf(s), "screen", state)
			if pkg, err := s.dev.ForegroundPackage(); err == nil {
				out.value(serialOf(s), "foreground", pkg)
			}
		})
	},
}

var permissionCommand = &cli.Command{
	Name:      "permission",
	Usage:     "Answer a runtime permission dialog",
	ArgsUsage: "accept|deny <permission>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "package", Aliases: []string{"p"}, Usage: "App requesting the permission", Required: true},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return fmt.Errorf("permission takes accept|deny and a permission name")
		}
		verb, perm := c.Args().Get(0), qualifyPermission(c.Args().Get(1))

		var answer func(*automator.Automator, string) *automator.Automator
		switch verb {
		case "accept", "allow", "grant":
			answer = (*automator.Automator).AcceptRuntimePermission
		case "deny":
			answer = (*automator.Automator).DenyRuntimePermission
		default:
			return fmt.Errorf("unknown answer %q, want accept or deny", verb)
		}

		pkg := c.String("package")
		return onDevices(c, func(a *automator.Automator, s *deviceSession) {
			answer(a, perm)
			out.success(serialOf(s), fmt.Sprintf("%s %s for %s", verb, perm, pkg))
		}, automator.WithTargetPackage(pkg))
	},
}

// qualifyPermission expands a short name like CAMERA to
// android.permission.CAMERA.
func qualifyPermission(perm string) string {
	if strings.Contains(perm, ".") {
		return perm
	}
	return "android.permission." + strings.ToUpper(perm)
}

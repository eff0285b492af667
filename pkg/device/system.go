package device

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Intent flags used when starting activities.
const (
	FlagActivityNewTask   = 0x10000000
	FlagActivityClearTask = 0x00008000
)

// Common intent actions and categories.
const (
	ActionMain       = "android.intent.action.MAIN"
	ActionView       = "android.intent.action.VIEW"
	CategoryLauncher = "android.intent.category.LAUNCHER"
	CategoryHome     = "android.intent.category.HOME"
)

// Intent describes an activity start request, rendered as `am start`
// arguments.
type Intent struct {
	Action     string
	Data       string
	MimeType   string
	Categories []string
	Package    string
	Component  string // pkg/.Activity
	Flags      int
	Extras     map[string]string
}

// TargetPackage returns the package the intent resolves to, taken from the
// explicit package or the component. Empty for implicit intents.
func (i Intent) TargetPackage() string {
	if i.Package != "" {
		return i.Package
	}
	if pkg, _, ok := strings.Cut(i.Component, "/"); ok {
		return pkg
	}
	return ""
}

// Args renders the intent as `am start` arguments.
func (i Intent) Args() []string {
	var args []string
	if i.Action != "" {
		args = append(args, "-a", i.Action)
	}
	if i.Data != "" {
		args = append(args, "-d", i.Data)
	}
	if i.MimeType != "" {
		args = append(args, "-t", i.MimeType)
	}
	for _, c := range i.Categories {
		args = append(args, "-c", c)
	}
	if i.Flags != 0 {
		args = append(args, "-f", fmt.Sprintf("0x%08x", i.Flags))
	}

	keys := make([]string, 0, len(i.Extras))
	for k := range i.Extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--es", k, i.Extras[k])
	}

	switch {
	case i.Component != "":
		args = append(args, "-n", i.Component)
	case i.Package != "":
		args = append(args, i.Package)
	}
	return args
}

// StartIntent starts an activity and waits for the launch to complete.
func (d *AndroidDevice) StartIntent(intent Intent) error {
	cmd := "am start -W " + shellJoin(intent.Args())
	out, err := d.Shell(cmd)
	if err != nil {
		return err
	}
	if msg, failed := startError(out); failed {
		return fmt.Errorf("am start: %s", msg)
	}
	return nil
}

// startError extracts the failure line from `am start` output, which exits
// zero even when the activity cannot be resolved.
func startError(out string) (string, bool) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Error") || strings.HasPrefix(line, "Exception") {
			return line, true
		}
	}
	return "", false
}

// LaunchActivity resolves the launcher activity of pkg as a component name.
func (d *AndroidDevice) LaunchActivity(pkg string) (string, error) {
	out, err := d.Shell("cmd package resolve-activity --brief -c " + CategoryLauncher + " " + shellQuote(pkg))
	if err != nil {
		return "", err
	}
	component := lastComponent(out)
	if component == "" {
		return "", fmt.Errorf("no launcher activity for %s", pkg)
	}
	return component, nil
}

// LaunchApp starts the launcher activity of pkg in a fresh task.
func (d *AndroidDevice) LaunchApp(pkg string) error {
	component, err := d.LaunchActivity(pkg)
	if err != nil {
		return err
	}
	return d.StartIntent(Intent{
		Action:     ActionMain,
		Categories: []string{CategoryLauncher},
		Component:  component,
		Flags:      FlagActivityNewTask | FlagActivityClearTask,
	})
}

// ForceStop stops every process of pkg.
func (d *AndroidDevice) ForceStop(pkg string) error {
	_, err := d.Shell("am force-stop " + shellQuote(pkg))
	return err
}

// LauncherPackage returns the package of the default home activity.
func (d *AndroidDevice) LauncherPackage() (string, error) {
	out, err := d.Shell("cmd package resolve-activity --brief -a " + ActionMain + " -c " + CategoryHome)
	if err != nil {
		return "", err
	}
	pkg, _, _ := strings.Cut(lastComponent(out), "/")
	return pkg, nil
}

// lastComponent returns the last pkg/activity line of resolve-activity
// output, or "" when nothing resolved.
func lastComponent(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.Contains(line, "/") && !strings.Contains(line, " ") {
			return line
		}
	}
	return ""
}

var focusPattern = regexp.MustCompile(`([a-zA-Z0-9_.]+\.[a-zA-Z0-9_.]+)/`)

// ForegroundPackage returns the package of the focused window. It returns ""
// when a system window without a package holds focus.
func (d *AndroidDevice) ForegroundPackage() (string, error) {
	out, err := d.Shell("dumpsys window")
	if err != nil {
		return "", err
	}
	return parseFocusedPackage(out), nil
}

func parseFocusedPackage(out string) string {
	for _, key := range []string{"mCurrentFocus", "mFocusedApp"} {
		for _, line := range strings.Split(out, "\n") {
			if !strings.Contains(line, key) {
				continue
			}
			if m := focusPattern.FindStringSubmatch(line); len(m) >= 2 {
				return m[1]
			}
		}
	}
	return ""
}

// IsScreenOn reports whether the display is on.
func (d *AndroidDevice) IsScreenOn() (bool, error) {
	out, err := d.Shell("dumpsys power")
	if err != nil {
		return false, err
	}
	return parseScreenOn(out), nil
}

func parseScreenOn(out string) bool {
	switch {
	case strings.Contains(out, "Display Power: state=ON"):
		return true
	case strings.Contains(out, "Display Power: state="):
		return false
	default:
		return strings.Contains(out, "mWakefulness=Awake") || strings.Contains(out, "mScreenOn=true")
	}
}

// SDKVersion returns ro.build.version.sdk.
func (d *AndroidDevice) SDKVersion() (int, error) {
	out, err := d.Shell("getprop ro.build.version.sdk")
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("parse sdk version %q: %w", strings.TrimSpace(out), err)
	}
	return v, nil
}

// PermissionGranted reports whether pkg holds the runtime permission perm,
// e.g. android.permission.CAMERA.
func (d *AndroidDevice) PermissionGranted(pkg, perm string) (bool, error) {
	out, err := d.Shell("dumpsys package " + shellQuote(pkg))
	if err != nil {
		return false, err
	}
	return parsePermissionGranted(out, perm), nil
}

func parsePermissionGranted(out, perm string) bool {
	prefix := perm + ": granted="
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, prefix); ok {
			granted, _, _ := strings.Cut(v, ",")
			if granted == "true" {
				return true
			}
		}
	}
	return false
}

// ExpandNotifications pulls down the notification shade.
func (d *AndroidDevice) ExpandNotifications() error {
	_, err := d.Shell("cmd statusbar expand-notifications")
	return err
}

// ExpandQuickSettings pulls down the quick settings panel.
func (d *AndroidDevice) ExpandQuickSettings() error {
	_, err := d.Shell("cmd statusbar expand-settings")
	return err
}

// shellJoin quotes args for the device shell.
func shellJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, needsQuote) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./:=,@%+", r)
}

package device

import (
	"fmt"
	"strings"
)

// DeviceEntry is one line of `adb devices -l`.
type DeviceEntry struct {
	Serial string
	State  string // device, offline, unauthorized
	Model  string
}

// NoDevicesError is returned when no usable device is attached.
type NoDevicesError struct {
	Message     string
	Unusable    []DeviceEntry // attached but offline or unauthorized
	Suggestions []string
}

func (e *NoDevicesError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, d := range e.Unusable {
		fmt.Fprintf(&b, "\n  %s (%s)", d.Serial, d.State)
	}
	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nOptions:")
		for i, s := range e.Suggestions {
			fmt.Fprintf(&b, "\n  %d. %s", i+1, s)
		}
	}
	return b.String()
}

func newNoDevicesError(unusable ...DeviceEntry) *NoDevicesError {
	err := &NoDevicesError{
		Message:  "No Android devices or emulators found",
		Unusable: unusable,
		Suggestions: []string{
			"Connect a physical device via USB and enable USB debugging",
			"Start an emulator: emulator -avd <name>",
		},
	}
	for _, d := range unusable {
		if d.State == "unauthorized" {
			err.Suggestions = append(err.Suggestions, "Accept the USB debugging prompt on "+d.Serial)
			break
		}
	}
	return err
}

// ListDevices returns every device adb knows about, usable or not.
func ListDevices() ([]DeviceEntry, error) {
	adbPath, err := findADB()
	if err != nil {
		return nil, err
	}
	return listDevices(execCommand, adbPath)
}

func listDevices(run runFunc, adbPath string) ([]DeviceEntry, error) {
	out, err := run(adbPath, "devices", "-l")
	if err != nil {
		return nil, fmt.Errorf("adb devices: %w", err)
	}
	return parseDevices(out), nil
}

func parseDevices(out string) []DeviceEntry {
	var devices []DeviceEntry
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of") || strings.HasPrefix(line, "*") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		entry := DeviceEntry{Serial: parts[0], State: parts[1]}
		for _, kv := range parts[2:] {
			if model, ok := strings.CutPrefix(kv, "model:"); ok {
				entry.Model = model
			}
		}
		devices = append(devices, entry)
	}
	return devices
}

// FirstAvailable connects to the first device in the "device" state.
func FirstAvailable() (*AndroidDevice, error) {
	devices, err := ListDevices()
	if err != nil {
		return nil, err
	}

	var unusable []DeviceEntry
	for _, d := range devices {
		if d.State == "device" {
			return New(d.Serial)
		}
		unusable = append(unusable, d)
	}
	return nil, newNoDevicesError(unusable...)
}

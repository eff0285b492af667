package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/deviceautomator/pkg/automator"
	"github.com/devicelab-dev/deviceautomator/pkg/device"
)

var devicesCommand = &cli.Command{
	Name:  "devices",
	Usage: "List connected Android devices",
	Action: func(c *cli.Context) error {
		entries, err := device.ListDevices()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			out.failure("", "No devices attached")
			return nil
		}
		for _, e := range entries {
			label := e.State
			if e.Model != "" {
				label += " " + e.Model
			}
			out.value(e.Serial, "state", label)
		}
		return nil
	},
}

var hierarchyCommand = &cli.Command{
	Name:  "hierarchy",
	Usage: "Print the view hierarchy of the connected device",
	Description: `Print out the view hierarchy of the connected device as XML.

Examples:
  deviceautomator hierarchy
  deviceautomator hierarchy --output ui.xml
  deviceautomator --device emulator-5554 hierarchy`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write to this file instead of stdout",
		},
	},
	Action: func(c *cli.Context) error {
		output := c.String("output")
		multi := len(runConfig(c).Devices) > 1
		return onDevices(c, func(a *automator.Automator, s *deviceSession) {
			xml, err := s.client.Source()
			if err != nil {
				s.t.Fatalf("hierarchy: %v", err)
				return
			}
			if output == "" {
				out.raw(xml)
				return
			}
			path := perDevicePath(output, serialOf(s), multi)
			if err := os.WriteFile(path, []byte(xml), 0o644); err != nil {
				s.t.Fatalf("hierarchy: %v", err)
				return
			}
			out.success(serialOf(s), "Hierarchy written to "+path)
		})
	},
}

var screenshotCommand = &cli.Command{
	Name:      "screenshot",
	Usage:     "Save a PNG screenshot",
	ArgsUsage: "<file.png>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("screenshot takes exactly one file name")
		}
		output := c.Args().First()
		multi := len(runConfig(c).Devices) > 1
		return onDevices(c, func(a *automator.Automator, s *deviceSession) {
			png, err := s.client.Screenshot()
			if err != nil {
				s.t.Fatalf("screenshot: %v", err)
				return
			}
			path := perDevicePath(output, serialOf(s), multi)
			if err := os.WriteFile(path, png, 0o644); err != nil {
				s.t.Fatalf("screenshot: %v", err)
				return
			}
			out.success(serialOf(s), "Screenshot written to "+path)
		})
	},
}

// perDevicePath inserts the serial before the extension when several
// devices write the same file name.
func perDevicePath(path, serial string, multi bool) string {
	if !multi || serial == "" {
		return path
	}
	ext := filepath.Ext(path)
	safe := strings.NewReplacer(":", "_", "/", "_").Replace(serial)
	return strings.TrimSuffix(path, ext) + "-" + safe + ext
}

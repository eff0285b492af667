// Package cli provides the command-line interface for deviceautomator.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "device",
		Aliases: []string{"serial", "s"},
		Usage:   "Device serial to run on (can be comma-separated)",
		EnvVars: []string{"ANDROID_SERIAL"},
	},
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Config file (deviceautomator.yaml or .toml); defaults to one in the working directory",
		EnvVars: []string{"DEVICEAUTOMATOR_CONFIG"},
	},
	&cli.DurationFlag{
		Name:    "timeout",
		Usage:   "Default timeout for waits",
		EnvVars: []string{"DEVICEAUTOMATOR_TIMEOUT"},
	},
	&cli.DurationFlag{
		Name:  "launch-timeout",
		Usage: "How long to wait for a launched app to reach the foreground",
	},
	&cli.IntFlag{
		Name:  "device-port",
		Usage: "UIAutomator2 server port on the device",
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Log file (default: <home>/logs/deviceautomator.log)",
		EnvVars: []string{"DEVICEAUTOMATOR_LOG"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Mirror the log to stderr",
		EnvVars: []string{"DEVICEAUTOMATOR_VERBOSE"},
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// NewApp builds the deviceautomator application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "deviceautomator",
		Usage:   "Drive and check Android devices through UIAutomator2",
		Version: Version,
		Description: `deviceautomator runs single automation steps against one or more
connected Android devices. Each device gets its own UIAutomator2 session.

Examples:
  deviceautomator launch com.android.settings
  deviceautomator tap --text "Network & internet"
  deviceautomator check --id com.android.settings:id/title --text-equals Wi-Fi
  deviceautomator --device emulator-5554,emulator-5556 press home`,
		Flags:    GlobalFlags,
		Before:   setup,
		After:    teardown,
		Commands: commands,
	}
}

// Execute runs the CLI.
func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

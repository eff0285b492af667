package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/devicelab-dev/deviceautomator/pkg/automator"
	"github.com/devicelab-dev/deviceautomator/pkg/config"
	"github.com/devicelab-dev/deviceautomator/pkg/device"
	"github.com/devicelab-dev/deviceautomator/pkg/logger"
)

const runConfigKey = "runConfig"

// RunConfig is the resolved configuration of one invocation: the config file
// with command-line flags applied on top.
type RunConfig struct {
	Devices []string
	Config  *config.Config
	Verbose bool
	NoANSI  bool
}

// buildRunConfig loads the config file and applies flag overrides.
func buildRunConfig(c *cli.Context) (*RunConfig, error) {
	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, err
	}

	if c.IsSet("timeout") {
		cfg.Timeout = config.Duration(c.Duration("timeout"))
	}
	if c.IsSet("launch-timeout") {
		cfg.LaunchTimeout = config.Duration(c.Duration("launch-timeout"))
	}
	if c.IsSet("device-port") {
		cfg.DevicePort = c.Int("device-port")
	}
	if c.IsSet("log-file") {
		cfg.LogPath = c.String("log-file")
	}

	devices := parseDevices(c.String("device"))
	if devices == nil {
		devices = parseDevices(cfg.Device)
	}

	return &RunConfig{
		Devices: devices,
		Config:  cfg,
		Verbose: c.Bool("verbose"),
		NoANSI:  c.Bool("no-ansi"),
	}, nil
}

// parseDevices parses the --device flag value into a slice of serials.
// Returns nil if no devices are specified (triggers auto-detection later).
func parseDevices(deviceFlag string) []string {
	var devices []string
	for _, d := range strings.Split(deviceFlag, ",") {
		if d = strings.TrimSpace(d); d != "" {
			devices = append(devices, d)
		}
	}
	return devices
}

// setup runs before every command: it resolves the configuration and
// starts the logger.
func setup(c *cli.Context) error {
	rc, err := buildRunConfig(c)
	if err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[runConfigKey] = rc
	out = newPrinter(os.Stdout, rc.NoANSI)

	if rc.Verbose {
		logger.InitWriter(os.Stderr)
		return nil
	}
	logPath := rc.Config.LogPath
	if logPath == "" {
		logPath = filepath.Join(config.GetLogDir(), "deviceautomator.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	return logger.Init(logPath)
}

func teardown(c *cli.Context) error {
	logger.Close()
	return nil
}

func runConfig(c *cli.Context) *RunConfig {
	if rc, ok := c.App.Metadata[runConfigKey].(*RunConfig); ok {
		return rc
	}
	return &RunConfig{Config: config.Default()}
}

// stepFailed is the error a chain ends with when a step fails.
type stepFailed struct {
	msg string
}

func (e *stepFailed) Error() string {
	return e.msg
}

// reporter is the automator.TB of a command. Like testing.T, Fatalf ends
// the goroutine running the chain.
type reporter struct {
	serial string
	err    error
}

func (r *reporter) Helper() {}

func (r *reporter) Fatalf(format string, args ...interface{}) {
	r.err = &stepFailed{msg: fmt.Sprintf(format, args...)}
	logger.WithFields(logger.Fields{"serial": r.serial}, "step failed: %s", r.err)
	runtime.Goexit()
}

// runChain runs fn on its own goroutine so a failing step can stop it, and
// returns the failure if there was one.
func runChain(r *reporter, fn func()) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	<-done
	return r.err
}

// chainFunc is one command's work against a connected device.
type chainFunc func(a *automator.Automator, s *deviceSession)

// onDevices connects to every requested device and runs fn against each
// one concurrently. With no --device the first available device is used.
// A failure on one device does not stop the others; the first error is
// returned once all are done.
func onDevices(c *cli.Context, fn chainFunc, opts ...automator.Option) error {
	rc := runConfig(c)
	serials := rc.Devices
	if len(serials) == 0 {
		serials = []string{""}
	}

	ctx := c.Context
	var g errgroup.Group
	for _, serial := range serials {
		serial := serial
		g.Go(func() error {
			return runOnDevice(ctx, rc, serial, fn, opts)
		})
	}
	return g.Wait()
}

func runOnDevice(ctx context.Context, rc *RunConfig, serial string, fn chainFunc, opts []automator.Option) error {
	s, cleanup, err := connect(ctx, rc.Config, serial, len(rc.Devices) > 1)
	if err != nil {
		out.failure(serial, err.Error())
		return err
	}
	defer cleanup()

	r := &reporter{serial: s.dev.Serial()}
	s.t = r
	err = runChain(r, func() {
		opts = append([]automator.Option{
			automator.WithContext(ctx),
			automator.WithTimeout(rc.Config.Timeout.Std()),
		}, opts...)
		a := automator.OnDevice(r, automator.NewRemote(s.client), s.dev, opts...)
		fn(a, s)
	})
	if err != nil {
		out.failure(s.dev.Serial(), err.Error())
		return fmt.Errorf("%s: %w", s.dev.Serial(), err)
	}
	return nil
}

// serialOf labels output lines for s.
func serialOf(s *deviceSession) string {
	if s == nil || s.dev == nil {
		return ""
	}
	return s.dev.Serial()
}

var _ automator.System = (*device.AndroidDevice)(nil)

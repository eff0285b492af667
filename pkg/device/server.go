package device

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/devicelab-dev/deviceautomator/pkg/logger"
	"github.com/devicelab-dev/deviceautomator/pkg/uiautomator2"
)

// Packages of the UIAutomator2 server APK pair.
const (
	ServerPackage     = "io.appium.uiautomator2.server"
	ServerTestPackage = "io.appium.uiautomator2.server.test"
)

// Host ports tried for the server forward where Unix sockets are unavailable.
const (
	portRangeStart = 6001
	portRangeEnd   = 7001
)

var (
	// readyPoll is how often StartServer asks the server for its status.
	readyPoll = 500 * time.Millisecond

	// stopSettle gives force-stopped server processes time to exit before
	// their forwards are removed.
	stopSettle = 300 * time.Millisecond
)

// ServerConfig controls how StartServer reaches the UIAutomator2 server.
type ServerConfig struct {
	SocketPath string        // host socket, default /tmp/uia2-<serial>.sock; ignored on Windows
	LocalPort  int           // host TCP port on Windows, default a free port in 6001-7001
	DevicePort int           // server port on the device, default 6790
	Timeout    time.Duration // how long to wait for the server, default 30s
}

// DefaultServerConfig returns the config StartServer falls back to for
// zero fields.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		DevicePort: 6790,
		Timeout:    30 * time.Second,
	}
}

// StartServer restarts the UIAutomator2 instrumentation, forwards a host
// endpoint to it and waits until it answers /status. The returned client
// talks to the server but has no session yet.
func (d *AndroidDevice) StartServer(ctx context.Context, cfg ServerConfig) (*uiautomator2.Client, error) {
	def := DefaultServerConfig()
	if cfg.DevicePort == 0 {
		cfg.DevicePort = def.DevicePort
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}

	for _, pkg := range []string{ServerPackage, ServerTestPackage} {
		if !d.IsInstalled(pkg) {
			return nil, fmt.Errorf("UIAutomator2 package not installed: %s", pkg)
		}
	}

	d.StopServer()
	d.devicePort = cfg.DevicePort

	var err error
	if runtime.GOOS == "windows" {
		err = d.forwardPort(cfg)
	} else {
		err = d.forwardSocket(cfg)
	}
	if err != nil {
		return nil, err
	}

	// am instrument -w blocks for the server's lifetime.
	instrument := fmt.Sprintf("nohup am instrument -w -e disableAnalytics true %s/androidx.test.runner.AndroidJUnitRunner > /dev/null 2>&1 &",
		ServerTestPackage)
	if _, err := d.Shell(instrument); err != nil {
		d.StopServer()
		return nil, fmt.Errorf("start instrumentation: %w", err)
	}

	client := d.serverClient()
	waitCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.WaitReady(waitCtx, readyPoll); err != nil {
		d.StopServer()
		return nil, fmt.Errorf("%s: %w", d.serial, err)
	}

	logger.WithFields(logger.Fields{"serial": d.serial, "socket": d.socketPath, "port": d.localPort},
		"UIAutomator2 server ready")
	return client, nil
}

// serverClient returns a client for the forward set up by StartServer.
func (d *AndroidDevice) serverClient() *uiautomator2.Client {
	if d.newClient != nil {
		return d.newClient(d.socketPath, d.localPort)
	}
	if d.socketPath != "" {
		return uiautomator2.NewClient(d.socketPath)
	}
	return uiautomator2.NewClientTCP(d.localPort)
}

func (d *AndroidDevice) forwardSocket(cfg ServerConfig) error {
	socketPath := cfg.SocketPath
	if socketPath == "" {
		socketPath = d.DefaultSocketPath()
	}
	os.Remove(socketPath)

	if err := d.ForwardSocket(socketPath, cfg.DevicePort); err != nil {
		return fmt.Errorf("socket forward failed: %w", err)
	}
	d.socketPath = socketPath
	return nil
}

func (d *AndroidDevice) forwardPort(cfg ServerConfig) error {
	localPort := cfg.LocalPort
	if localPort == 0 {
		port, err := findFreePort(portRangeStart, portRangeEnd)
		if err != nil {
			return err
		}
		localPort = port
	}

	if err := d.Forward(localPort, cfg.DevicePort); err != nil {
		return fmt.Errorf("port forward failed: %w", err)
	}
	d.localPort = localPort
	return nil
}

// findFreePort returns the first port in [start, end] that can be bound.
func findFreePort(start, end int) (int, error) {
	for port := start; port <= end; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			ln.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no free port found in range %d-%d", start, end)
}

// StopServer kills the server processes and removes every forward that
// could point at them, including ones left over from earlier runs.
// Failures are ignored: most of these usually do not exist.
func (d *AndroidDevice) StopServer() {
	d.ForceStop(ServerPackage)
	d.ForceStop(ServerTestPackage)
	time.Sleep(stopSettle)

	sockets := []string{d.DefaultSocketPath()}
	if d.socketPath != "" && d.socketPath != sockets[0] {
		sockets = append([]string{d.socketPath}, sockets...)
	}
	for _, s := range sockets {
		d.RemoveSocketForward(s)
		os.Remove(s)
	}
	d.socketPath = ""

	if d.localPort != 0 {
		d.RemoveForward(d.localPort)
		d.localPort = 0
	}

	port := d.devicePort
	if port == 0 {
		port = DefaultServerConfig().DevicePort
	}
	d.RemoveForward(port)
}

// InstallServer installs whichever server APKs are missing from apksDir.
func (d *AndroidDevice) InstallServer(apksDir string) error {
	apks := []struct {
		pkg     string
		pattern string
	}{
		{ServerPackage, "appium-uiautomator2-server-v*.apk"},
		{ServerTestPackage, "appium-uiautomator2-server-debug-androidTest.apk"},
	}

	for _, apk := range apks {
		if d.IsInstalled(apk.pkg) {
			continue
		}
		logger.Info("Installing %s from %s", apk.pkg, apksDir)
		apkPath, err := findAPK(apksDir, apk.pattern)
		if err != nil {
			return fmt.Errorf("failed to find APK for %s: %w", apk.pkg, err)
		}
		if err := d.Install(apkPath); err != nil {
			return fmt.Errorf("failed to install %s: %w", apk.pkg, err)
		}
	}
	return nil
}

func findAPK(dir, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no APK found matching %s", pattern)
	}
	return matches[0], nil
}

package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/devicelab-dev/deviceautomator/pkg/automator"
	"github.com/devicelab-dev/deviceautomator/pkg/config"
	"github.com/devicelab-dev/deviceautomator/pkg/device"
	"github.com/devicelab-dev/deviceautomator/pkg/logger"
	"github.com/devicelab-dev/deviceautomator/pkg/uiautomator2"
)

// deviceSession is a connected device with an open UIAutomator2 session.
type deviceSession struct {
	dev    *device.AndroidDevice
	info   device.DeviceInfo
	client *uiautomator2.Client

	// t reports step failures for work done on the client directly.
	t automator.TB
}

// connect opens a UIAutomator2 session on serial, or on the first available
// device when serial is empty. With multi set every device forwards to its
// own socket. The returned cleanup closes the session and stops the server.
func connect(ctx context.Context, cfg *config.Config, serial string, multi bool) (*deviceSession, func(), error) {
	// 1. Connect to device
	var dev *device.AndroidDevice
	var err error
	if serial != "" {
		out.step(serial, "Connecting...")
		logger.Info("Connecting to Android device: %s", serial)
		dev, err = device.New(serial)
	} else {
		out.step("", "Connecting to first available device...")
		logger.Info("Auto-detecting Android device...")
		dev, err = device.FirstAvailable()
	}
	if err != nil {
		logger.Error("Failed to connect to device: %v", err)
		return nil, nil, fmt.Errorf("connect to device: %w", err)
	}
	serial = dev.Serial()

	info, err := dev.Info()
	if err != nil {
		logger.Error("Failed to get device info: %v", err)
		return nil, nil, fmt.Errorf("get device info: %w", err)
	}
	logger.WithFields(logger.Fields{
		"serial":   info.Serial,
		"brand":    info.Brand,
		"model":    info.Model,
		"sdk":      info.SDK,
		"emulator": info.IsEmulator,
	}, "Device info")
	out.success(serial, fmt.Sprintf("Connected to %s %s (SDK %s)", info.Brand, info.Model, info.SDK))

	// 2. Fail fast if another process holds the device
	socketPath := serverSocketPath(cfg.SocketPath, serial, multi)
	if socketPath == "" {
		socketPath = dev.DefaultSocketPath()
	}
	if isSocketInUse(socketPath) {
		return nil, nil, fmt.Errorf("device %s is already in use\n"+
			"Another deviceautomator process may be using this device.\n"+
			"Socket: %s\n"+
			"Hint: Wait for it to finish or use a different device", serial, socketPath)
	}

	// 3. Check/install UIAutomator2 APKs
	if !dev.IsInstalled(device.ServerPackage) || !dev.IsInstalled(device.ServerTestPackage) {
		out.step(serial, "Installing UIAutomator2 APKs...")
		if err := dev.InstallServer(config.GetDriversDir("android")); err != nil {
			return nil, nil, fmt.Errorf("install UIAutomator2: %w", err)
		}
		out.success(serial, "UIAutomator2 installed")
	}

	// 4. Start UIAutomator2 server
	out.step(serial, "Starting UIAutomator2 server...")
	client, err := dev.StartServer(ctx, device.ServerConfig{
		SocketPath: socketPath,
		DevicePort: cfg.DevicePort,
		Timeout:    cfg.ServerTimeout.Std(),
	})
	if err != nil {
		logger.Error("Failed to start UIAutomator2: %v", err)
		return nil, nil, fmt.Errorf("start UIAutomator2: %w", err)
	}

	// 5. Create session
	caps := uiautomator2.Capabilities{
		PlatformName: "Android",
		DeviceName:   info.Model,
	}
	if err := client.CreateSession(caps); err != nil {
		logger.Error("Failed to create session: %v", err)
		dev.StopServer()
		return nil, nil, fmt.Errorf("create session: %w", err)
	}
	logger.Info("Session created: %s", client.SessionID())
	out.success(serial, "Session created")

	cleanup := func() {
		client.Close()
		dev.StopServer()
	}
	return &deviceSession{dev: dev, info: info, client: client}, cleanup, nil
}

// serverSocketPath is the host socket for serial's server forward. A
// configured path is shared by name only, so concurrent devices each get
// the path with their serial inserted.
func serverSocketPath(configured, serial string, multi bool) string {
	if configured == "" {
		return ""
	}
	return perDevicePath(configured, serial, multi)
}

// isSocketInUse checks if a Unix socket is in use by attempting to connect to it.
// A socket file nobody answers on is stale and is removed.
func isSocketInUse(socketPath string) bool {
	if socketPath == "" {
		return false
	}

	if _, err := os.Stat(socketPath); os.IsNotExist(err) {
		return false
	}

	conn, err := net.DialTimeout("unix", socketPath, 500*time.Millisecond)
	if err != nil {
		os.Remove(socketPath)
		return false
	}
	conn.Close()
	return true
}

package uiautomator2

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Back presses the back button.
func (c *Client) Back() error {
	_, err := c.request("POST", c.sessionPath("/back"), nil)
	return err
}

// PressKeyCode presses a key without modifiers.
func (c *Client) PressKeyCode(keyCode int) error {
	return c.PressKeyCodeWithMeta(keyCode, 0)
}

// PressKeyCodeWithMeta presses a key while the given meta state is held.
func (c *Client) PressKeyCodeWithMeta(keyCode, metaState int) error {
	req := KeyCodeRequest{KeyCode: keyCode, MetaState: metaState}
	_, err := c.request("POST", c.sessionPath("/appium/device/press_keycode"), req)
	return err
}

// LongPressKeyCode long-presses a key.
func (c *Client) LongPressKeyCode(keyCode int) error {
	req := KeyCodeRequest{KeyCode: keyCode}
	_, err := c.request("POST", c.sessionPath("/appium/device/long_press_keycode"), req)
	return err
}

// OpenNotifications pulls down the notification shade.
func (c *Client) OpenNotifications() error {
	_, err := c.request("POST", c.sessionPath("/appium/device/open_notifications"), nil)
	return err
}

// GetDeviceInfo returns device properties reported by the server.
func (c *Client) GetDeviceInfo() (*DeviceInfo, error) {
	data, err := c.request("GET", c.sessionPath("/appium/device/info"), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Value DeviceInfo `json:"value"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse device info: %w", err)
	}
	return &resp.Value, nil
}

// Source returns the UI hierarchy as XML.
func (c *Client) Source() (string, error) {
	data, err := c.request("GET", c.sessionPath("/source"), nil)
	if err != nil {
		return "", err
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", err
	}

	source, _ := resp.Value.(string)
	return source, nil
}

// Screenshot captures the screen as PNG.
func (c *Client) Screenshot() ([]byte, error) {
	data, err := c.request("GET", c.sessionPath("/screenshot"), nil)
	if err != nil {
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}

	b64, ok := resp.Value.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected screenshot response")
	}
	return base64.StdEncoding.DecodeString(b64)
}

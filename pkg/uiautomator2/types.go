// Package uiautomator2 provides HTTP client for UIAutomator2 server.
package uiautomator2

// Response is the standard UIAutomator2 response format.
type Response struct {
	SessionID string      `json:"sessionId"`
	Value     interface{} `json:"value"`
}

// ErrorValue represents an error from UIAutomator2.
type ErrorValue struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Capabilities for session creation.
type Capabilities struct {
	PlatformName string `json:"platformName,omitempty"`
	DeviceName   string `json:"deviceName,omitempty"`
}

// SessionRequest for creating a session.
type SessionRequest struct {
	Capabilities Capabilities `json:"capabilities"`
}

// ElementModel represents an element reference.
type ElementModel struct {
	ELEMENT string `json:"ELEMENT"`
}

// FindElementRequest for finding elements.
type FindElementRequest struct {
	Strategy string `json:"strategy"`
	Selector string `json:"selector"`
	Context  string `json:"context,omitempty"`
}

// InputTextRequest for typing text.
type InputTextRequest struct {
	Text string `json:"text"`
}

// KeyCodeRequest for pressing keys.
type KeyCodeRequest struct {
	KeyCode   int `json:"keycode"`
	MetaState int `json:"metastate,omitempty"`
}

// PointModel represents coordinates.
type PointModel struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ElementRect represents element bounds from /element/{id}/rect API.
// This uses x/y/width/height format returned by WebDriver element rect endpoint.
type ElementRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// HasArea reports whether the rectangle covers at least one pixel.
func (r ElementRect) HasArea() bool {
	return r.Width > 0 && r.Height > 0
}

// RectModel represents a rectangle for scroll/swipe area operations.
// UIAutomator2 gesture APIs expect left/top/width/height format.
type RectModel struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewRect creates a RectModel from x, y, width, height values.
func NewRect(x, y, width, height int) RectModel {
	return RectModel{
		Left:   x,
		Top:    y,
		Width:  width,
		Height: height,
	}
}

// ClickRequest for tap gestures.
type ClickRequest struct {
	Origin *ElementModel `json:"origin,omitempty"`
	Offset *PointModel   `json:"offset,omitempty"`
}

// SwipeRequest for swipe gestures.
type SwipeRequest struct {
	Origin    *ElementModel `json:"origin,omitempty"`
	Area      *RectModel    `json:"area,omitempty"`
	Direction string        `json:"direction"` // up, down, left, right
	Percent   float64       `json:"percent"`   // 0.0 - 1.0
	Speed     int           `json:"speed,omitempty"`
}

// ScrollRequest for scroll gestures.
type ScrollRequest struct {
	Origin    *ElementModel `json:"origin,omitempty"`
	Area      *RectModel    `json:"area,omitempty"`
	Direction string        `json:"direction"`
	Percent   float64       `json:"percent"`
	Speed     int           `json:"speed,omitempty"`
}

// DeviceInfo from device info endpoint.
type DeviceInfo struct {
	AndroidID       string `json:"androidId"`
	Manufacturer    string `json:"manufacturer"`
	Model           string `json:"model"`
	Brand           string `json:"brand"`
	APIVersion      string `json:"apiVersion"`
	PlatformVersion string `json:"platformVersion"`
	RealDisplaySize string `json:"realDisplaySize"`
	DisplayDensity  int    `json:"displayDensity"`
}

// Locator strategies.
const (
	StrategyID              = "id"
	StrategyAccessibilityID = "accessibility id"
	StrategyXPath           = "xpath"
	StrategyClassName       = "class name"
	StrategyUIAutomator     = "-android uiautomator"
)

// Swipe/scroll directions.
const (
	DirectionUp    = "up"
	DirectionDown  = "down"
	DirectionLeft  = "left"
	DirectionRight = "right"
)

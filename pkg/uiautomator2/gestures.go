package uiautomator2

// Click taps at screen coordinates.
func (c *Client) Click(x, y int) error {
	req := ClickRequest{Offset: &PointModel{X: x, Y: y}}
	_, err := c.request("POST", c.sessionPath("/appium/gestures/click"), req)
	return err
}

// ClickElement taps the center of an element.
func (c *Client) ClickElement(elementID string) error {
	req := ClickRequest{Origin: &ElementModel{ELEMENT: elementID}}
	_, err := c.request("POST", c.sessionPath("/appium/gestures/click"), req)
	return err
}

// Swipe swipes across an element. percent is the share of the element's
// size covered; speed is in pixels per second (0 = server default).
func (c *Client) Swipe(elementID, direction string, percent float64, speed int) error {
	req := SwipeRequest{
		Origin:    &ElementModel{ELEMENT: elementID},
		Direction: direction,
		Percent:   percent,
		Speed:     speed,
	}
	_, err := c.request("POST", c.sessionPath("/appium/gestures/swipe"), req)
	return err
}

// SwipeInArea swipes within a screen area.
func (c *Client) SwipeInArea(area RectModel, direction string, percent float64, speed int) error {
	req := SwipeRequest{
		Area:      &area,
		Direction: direction,
		Percent:   percent,
		Speed:     speed,
	}
	_, err := c.request("POST", c.sessionPath("/appium/gestures/swipe"), req)
	return err
}

// Scroll scrolls a scrollable element.
func (c *Client) Scroll(elementID, direction string, percent float64, speed int) error {
	req := ScrollRequest{
		Origin:    &ElementModel{ELEMENT: elementID},
		Direction: direction,
		Percent:   percent,
		Speed:     speed,
	}
	_, err := c.request("POST", c.sessionPath("/appium/gestures/scroll"), req)
	return err
}

// ScrollInArea scrolls within a screen area.
func (c *Client) ScrollInArea(area RectModel, direction string, percent float64, speed int) error {
	req := ScrollRequest{
		Area:      &area,
		Direction: direction,
		Percent:   percent,
		Speed:     speed,
	}
	_, err := c.request("POST", c.sessionPath("/appium/gestures/scroll"), req)
	return err
}

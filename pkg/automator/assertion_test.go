package automator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devicelab-dev/deviceautomator/pkg/selector"
	"github.com/devicelab-dev/deviceautomator/pkg/uiautomator2"
)

func TestVisible(t *testing.T) {
	sel := selector.WithResourceID("app:id/banner")
	zero := uiautomator2.ElementRect{X: 5, Y: 5, Width: 0, Height: 40}

	tests := []struct {
		name    string
		want    bool
		found   bool
		rect    uiautomator2.ElementRect
		failure string
	}{
		{name: "visible", want: true, found: true, rect: visibleRect()},
		{name: "zero area", want: true, found: true, rect: zero, failure: "Matched view was not visible"},
		{name: "missing", want: true, failure: "no view matches"},
		{name: "not visible missing", want: false},
		{name: "not visible zero area", want: false, found: true, rect: zero},
		{name: "not visible but shown", want: false, found: true, rect: visibleRect(), failure: "Matched view was visible"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			if tt.found {
				el := &mockElement{id: "banner"}
				el.On("Rect").Return(tt.rect, nil)
				h.dev.On("Find", sel).Return(el, nil)
			} else {
				h.dev.On("Find", sel).Return(nil, notFound())
			}

			h.a.On(sel).Check(Visible(tt.want))

			if tt.failure == "" {
				assert.False(t, h.t.failed(), h.t.String())
				return
			}
			assert.Contains(t, h.t.last(), tt.failure)
		})
	}
}

func TestVisible_FailureNames(t *testing.T) {
	assert.Equal(t, "visible", Visible(true).String())
	assert.Equal(t, "not visible", Visible(false).String())
	assert.Equal(t, "not checked", Checked(false).String())
	assert.Equal(t, "enabled", Enabled(true).String())
}

func TestText_NotVisible(t *testing.T) {
	h := newHarness()
	sel := selector.WithResourceID("app:id/title")
	el := &mockElement{id: "title"}
	el.On("Rect").Return(uiautomator2.ElementRect{}, nil)
	h.dev.On("Find", sel).Return(el, nil)

	h.a.On(sel).Check(Text(EqualTo("Welcome")))

	assert.Contains(t, h.t.last(), "Matched view was not visible")
	el.AssertNotCalled(t, "Text")
}

func TestContentDescription(t *testing.T) {
	sel := selector.WithClass(selector.ClassImageButton)
	el := &mockElement{id: "up"}
	el.On("Rect").Return(visibleRect(), nil)
	el.On("ContentDescription").Return("Navigate up", nil)

	h := newHarness()
	h.dev.On("Find", sel).Return(el, nil)
	h.a.On(sel).Check(ContentDescription(EqualToIgnoringCase("navigate UP")))
	assert.False(t, h.t.failed(), h.t.String())

	h = newHarness()
	h.dev.On("Find", sel).Return(el, nil)
	h.a.On(sel).Check(ContentDescription(ContainsString("Close")))
	assert.Equal(t,
		`automator: check content description on UiSelector[CLASS=android.widget.ImageButton]: Expected a string containing "Close" but: was "Navigate up"`,
		h.t.last())
}

func TestCheckedAndEnabled(t *testing.T) {
	sel := selector.WithClass(selector.ClassCheckBox)

	tests := []struct {
		name      string
		assertion Assertion
		checked   bool
		enabled   bool
		failure   string
	}{
		{name: "checked", assertion: Checked(true), checked: true},
		{name: "not checked", assertion: Checked(false)},
		{name: "expected checked", assertion: Checked(true), failure: "Expected view to be checked but: was not checked"},
		{name: "expected unchecked", assertion: Checked(false), checked: true, failure: "Expected view to be not checked but: was checked"},
		{name: "enabled", assertion: Enabled(true), enabled: true},
		{name: "expected disabled", assertion: Enabled(false), enabled: true, failure: "Expected view to be not enabled but: was enabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			el := &mockElement{id: "cb"}
			el.On("IsChecked").Return(tt.checked, nil)
			el.On("IsEnabled").Return(tt.enabled, nil)
			h.dev.On("Find", sel).Return(el, nil)

			h.a.On(sel).Check(tt.assertion)

			if tt.failure == "" {
				assert.False(t, h.t.failed(), h.t.String())
				return
			}
			assert.Contains(t, h.t.last(), tt.failure)
		})
	}
}

func TestChecked_Missing(t *testing.T) {
	h := newHarness()
	sel := selector.WithClass(selector.ClassCheckBox)
	h.dev.On("Find", sel).Return(nil, notFound())

	h.a.On(sel).Check(Checked(true))

	assert.Contains(t, h.t.last(), "automator: check checked on UiSelector[CLASS=android.widget.CheckBox]: no view matches")
}

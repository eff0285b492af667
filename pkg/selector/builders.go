package selector

// The text, description and resource id builders take an optional widget
// class that the element must also have, e.g.
// WithText("OK", ClassButton). When several are given the last one wins.

// WithText finds an element by its exact text. Matching is case-insensitive.
func WithText(text string, class ...string) Selector {
	return ofClass(New().TextMatches("(?i)"+Quote(text)), class)
}

// WithTextStartingWith finds an element whose text starts with prefix.
// Matching is case-insensitive.
func WithTextStartingWith(prefix string, class ...string) Selector {
	return ofClass(New().TextStartsWith(prefix), class)
}

// WithTextContaining finds an element whose text contains substr. Matching is
// case-sensitive.
func WithTextContaining(substr string, class ...string) Selector {
	return ofClass(New().TextContains(substr), class)
}

// WithContentDescription finds an element by its content description, the
// label the accessibility framework reads out for the widget. The
// description must match exactly, case-sensitively. On Lollipop and later it
// also matches nodes inside WebViews.
func WithContentDescription(desc string, class ...string) Selector {
	return ofClass(New().Description(desc), class)
}

// WithResourceID finds an element by its fully qualified resource id, e.g.
// com.android.browser:id/url.
func WithResourceID(id string, class ...string) Selector {
	return ofClass(New().ResourceID(id), class)
}

// WithClass finds an element by its widget class.
func WithClass(className string) Selector {
	return New().Class(className)
}

func ofClass(s Selector, class []string) Selector {
	for _, c := range class {
		s = s.Class(c)
	}
	return s
}

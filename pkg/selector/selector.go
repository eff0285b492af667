// Package selector builds composite UI element queries.
//
// A Selector is an immutable conjunction of predicates. Every builder method
// returns a new Selector, so a base selector can be shared and extended
// freely. Selectors are never resolved locally: they render to a UiSelector
// expression that the UIAutomator2 server evaluates against the live UI tree
// on every lookup.
package selector

import (
	"sort"
	"strconv"
	"strings"
)

// Common widget classes.
const (
	ClassTextView     = "android.widget.TextView"
	ClassEditText     = "android.widget.EditText"
	ClassButton       = "android.widget.Button"
	ClassImageButton  = "android.widget.ImageButton"
	ClassCheckBox     = "android.widget.CheckBox"
	ClassSwitch       = "android.widget.Switch"
	ClassRadioButton  = "android.widget.RadioButton"
	ClassListView     = "android.widget.ListView"
	ClassScrollView   = "android.widget.ScrollView"
	ClassRecyclerView = "androidx.recyclerview.widget.RecyclerView"
)

// kind identifies a predicate. Values follow the platform's UiSelector
// attribute ids, which fixes the rendering order regardless of the order
// predicates were added in.
type kind int

const (
	kindText         kind = 1
	kindStartText    kind = 2
	kindContainsText kind = 3
	kindClass        kind = 4
	kindDescription  kind = 5
	kindIndex        kind = 8
	kindInstance     kind = 9
	kindEnabled      kind = 10
	kindClickable    kind = 14
	kindChecked      kind = 15
	kindChild        kind = 18
	kindTextRegex    kind = 24
	kindPackageName  kind = 27
	kindResourceID   kind = 29
	kindCheckable    kind = 30
)

type predicate struct {
	kind  kind
	str   string
	num   int
	flag  bool
	child *Selector
}

// Selector is a composite query describing which on-screen element to match.
// The zero value matches nothing in particular and reports IsZero.
type Selector struct {
	preds []predicate
}

// New returns an empty selector.
func New() Selector {
	return Selector{}
}

// IsZero reports whether the selector has no predicates.
func (s Selector) IsZero() bool {
	return len(s.preds) == 0
}

// with returns a copy of s with p added. A predicate of the same kind is
// replaced.
func (s Selector) with(p predicate) Selector {
	preds := make([]predicate, 0, len(s.preds)+1)
	for _, q := range s.preds {
		if q.kind != p.kind {
			preds = append(preds, q)
		}
	}
	preds = append(preds, p)
	sort.SliceStable(preds, func(i, j int) bool { return preds[i].kind < preds[j].kind })
	return Selector{preds: preds}
}

func (s Selector) lookup(k kind) (predicate, bool) {
	for _, p := range s.preds {
		if p.kind == k {
			return p, true
		}
	}
	return predicate{}, false
}

// Text matches elements whose text equals text exactly.
func (s Selector) Text(text string) Selector {
	return s.with(predicate{kind: kindText, str: text})
}

// TextMatches matches elements whose whole text matches the Java regular
// expression pattern.
func (s Selector) TextMatches(pattern string) Selector {
	return s.with(predicate{kind: kindTextRegex, str: pattern})
}

// TextStartsWith matches elements whose text begins with prefix. The platform
// compares case-insensitively.
func (s Selector) TextStartsWith(prefix string) Selector {
	return s.with(predicate{kind: kindStartText, str: prefix})
}

// TextContains matches elements whose text contains substr, case-sensitively.
func (s Selector) TextContains(substr string) Selector {
	return s.with(predicate{kind: kindContainsText, str: substr})
}

// Class narrows matches to elements of the fully qualified widget class.
func (s Selector) Class(className string) Selector {
	return s.with(predicate{kind: kindClass, str: className})
}

// Description matches the content description exactly, case-sensitively.
func (s Selector) Description(desc string) Selector {
	return s.with(predicate{kind: kindDescription, str: desc})
}

// ResourceID matches the fully qualified resource id, e.g.
// com.android.browser:id/url.
func (s Selector) ResourceID(id string) Selector {
	return s.with(predicate{kind: kindResourceID, str: id})
}

// PackageName matches elements belonging to the given package.
func (s Selector) PackageName(pkg string) Selector {
	return s.with(predicate{kind: kindPackageName, str: pkg})
}

// Index matches the element at position n among its siblings.
func (s Selector) Index(n int) Selector {
	return s.with(predicate{kind: kindIndex, num: n})
}

// Instance selects the nth (0-based) match among otherwise equal candidates.
func (s Selector) Instance(n int) Selector {
	return s.with(predicate{kind: kindInstance, num: n})
}

// Enabled filters on the enabled state.
func (s Selector) Enabled(v bool) Selector {
	return s.with(predicate{kind: kindEnabled, flag: v})
}

// Clickable filters on the clickable property.
func (s Selector) Clickable(v bool) Selector {
	return s.with(predicate{kind: kindClickable, flag: v})
}

// Checked filters on the checked state.
func (s Selector) Checked(v bool) Selector {
	return s.with(predicate{kind: kindChecked, flag: v})
}

// Checkable filters on the checkable property.
func (s Selector) Checkable(v bool) Selector {
	return s.with(predicate{kind: kindCheckable, flag: v})
}

// Child nests child: the match is the descendant of s that satisfies child.
func (s Selector) Child(child Selector) Selector {
	c := child
	return s.with(predicate{kind: kindChild, child: &c})
}

// Expression renders the selector as a UiSelector expression for the
// "-android uiautomator" locator strategy.
func (s Selector) Expression() string {
	var b strings.Builder
	b.WriteString("new UiSelector()")
	for _, p := range s.preds {
		b.WriteByte('.')
		switch p.kind {
		case kindText:
			writeCall(&b, "text", javaString(p.str))
		case kindStartText:
			writeCall(&b, "textStartsWith", javaString(p.str))
		case kindContainsText:
			writeCall(&b, "textContains", javaString(p.str))
		case kindTextRegex:
			writeCall(&b, "textMatches", javaString(p.str))
		case kindClass:
			writeCall(&b, "className", javaString(p.str))
		case kindDescription:
			writeCall(&b, "description", javaString(p.str))
		case kindResourceID:
			writeCall(&b, "resourceId", javaString(p.str))
		case kindPackageName:
			writeCall(&b, "packageName", javaString(p.str))
		case kindIndex:
			writeCall(&b, "index", strconv.Itoa(p.num))
		case kindInstance:
			writeCall(&b, "instance", strconv.Itoa(p.num))
		case kindEnabled:
			writeCall(&b, "enabled", strconv.FormatBool(p.flag))
		case kindClickable:
			writeCall(&b, "clickable", strconv.FormatBool(p.flag))
		case kindChecked:
			writeCall(&b, "checked", strconv.FormatBool(p.flag))
		case kindCheckable:
			writeCall(&b, "checkable", strconv.FormatBool(p.flag))
		case kindChild:
			writeCall(&b, "childSelector", p.child.Expression())
		}
	}
	return b.String()
}

// ScrollTextIntoView renders a UiScrollable expression that scrolls the
// container matched by s until text is on screen.
func (s Selector) ScrollTextIntoView(text string) string {
	return "new UiScrollable(" + s.Expression() + ").scrollTextIntoView(" + javaString(text) + ")"
}

func writeCall(b *strings.Builder, method, arg string) {
	b.WriteString(method)
	b.WriteByte('(')
	b.WriteString(arg)
	b.WriteByte(')')
}

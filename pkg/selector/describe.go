package selector

import (
	"strconv"
	"strings"
)

// String describes the selector in the platform's UiSelector notation, e.g.
// UiSelector[CONTAINS_TEXT=test, CLASS=android.widget.TextView].
func (s Selector) String() string {
	parts := make([]string, 0, len(s.preds))
	for _, p := range s.preds {
		parts = append(parts, uiName(p.kind)+"="+p.value())
	}
	return "UiSelector[" + strings.Join(parts, ", ") + "]"
}

func (p predicate) value() string {
	switch p.kind {
	case kindIndex, kindInstance:
		return strconv.Itoa(p.num)
	case kindEnabled, kindClickable, kindChecked, kindCheckable:
		return strconv.FormatBool(p.flag)
	case kindChild:
		return p.child.String()
	default:
		return p.str
	}
}

func uiName(k kind) string {
	switch k {
	case kindText:
		return "TEXT"
	case kindStartText:
		return "START_TEXT"
	case kindContainsText:
		return "CONTAINS_TEXT"
	case kindClass:
		return "CLASS"
	case kindDescription:
		return "DESCRIPTION"
	case kindIndex:
		return "INDEX"
	case kindInstance:
		return "INSTANCE"
	case kindEnabled:
		return "ENABLED"
	case kindClickable:
		return "CLICKABLE"
	case kindChecked:
		return "CHECKED"
	case kindChild:
		return "CHILD"
	case kindTextRegex:
		return "TEXT_REGEX"
	case kindPackageName:
		return "PACKAGE_NAME"
	case kindResourceID:
		return "RESOURCE_ID"
	case kindCheckable:
		return "CHECKABLE"
	default:
		return "UNKNOWN"
	}
}

// byOrder is the field order of the platform's BySelector description.
var byOrder = []kind{
	kindClass,
	kindDescription,
	kindPackageName,
	kindResourceID,
	kindText,
	kindTextRegex,
	kindStartText,
	kindContainsText,
	kindCheckable,
	kindChecked,
	kindClickable,
	kindEnabled,
	kindChild,
}

// By describes the selector in BySelector notation, where every string
// criterion is a pattern, e.g.
// BySelector [CLASS='\Qandroid.widget.TextView\E', TEXT='^.*\Qtest\E.*$'].
// Index and instance have no BySelector form and are omitted.
func (s Selector) By() string {
	var parts []string
	for _, k := range byOrder {
		p, ok := s.lookup(k)
		if !ok {
			continue
		}
		switch k {
		case kindClass:
			parts = append(parts, "CLASS='"+Quote(p.str)+"'")
		case kindDescription:
			parts = append(parts, "DESC='"+Quote(p.str)+"'")
		case kindPackageName:
			parts = append(parts, "PKG='"+Quote(p.str)+"'")
		case kindResourceID:
			parts = append(parts, "RES='"+Quote(p.str)+"'")
		case kindText:
			parts = append(parts, "TEXT='"+Quote(p.str)+"'")
		case kindTextRegex:
			parts = append(parts, "TEXT='"+p.str+"'")
		case kindStartText:
			parts = append(parts, "TEXT='^"+Quote(p.str)+".*$'")
		case kindContainsText:
			parts = append(parts, "TEXT='^.*"+Quote(p.str)+".*$'")
		case kindChild:
			parts = append(parts, "CHILD='"+p.child.By()+"'")
		default:
			parts = append(parts, uiName(k)+"='"+strconv.FormatBool(p.flag)+"'")
		}
	}
	return "BySelector [" + strings.Join(parts, ", ") + "]"
}

// Quote returns a Java regular expression literal matching s verbatim, the
// same form java.util.regex.Pattern.quote produces.
func Quote(s string) string {
	var b strings.Builder
	b.WriteString(`\Q`)
	for {
		i := strings.Index(s, `\E`)
		if i < 0 {
			break
		}
		b.WriteString(s[:i])
		b.WriteString(`\E\\E\Q`)
		s = s[i+2:]
	}
	b.WriteString(s)
	b.WriteString(`\E`)
	return b.String()
}

// javaString renders s as a double-quoted Java string literal.
func javaString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, c := range s {
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

package automator

import (
	"fmt"
	"regexp"
	"strings"
)

// A Matcher reports whether a string satisfies a condition. The description
// completes the sentence "Expected ..." in failure messages.
type Matcher func(actual string) (ok bool, description string)

// mismatch renders the failure message for a value a matcher rejected.
func mismatch(description, actual string) string {
	return fmt.Sprintf("Expected %s but: was %q", description, actual)
}

// EqualTo matches s exactly.
func EqualTo(s string) Matcher {
	return func(actual string) (bool, string) {
		return actual == s, fmt.Sprintf("%q", s)
	}
}

// EqualToIgnoringCase matches s under Unicode case folding.
func EqualToIgnoringCase(s string) Matcher {
	return func(actual string) (bool, string) {
		return strings.EqualFold(actual, s), fmt.Sprintf("%q ignoring case", s)
	}
}

// StartsWith matches strings with the given prefix.
func StartsWith(prefix string) Matcher {
	return func(actual string) (bool, string) {
		return strings.HasPrefix(actual, prefix), fmt.Sprintf("a string starting with %q", prefix)
	}
}

// EndsWith matches strings with the given suffix.
func EndsWith(suffix string) Matcher {
	return func(actual string) (bool, string) {
		return strings.HasSuffix(actual, suffix), fmt.Sprintf("a string ending with %q", suffix)
	}
}

// ContainsString matches strings containing substr.
func ContainsString(substr string) Matcher {
	return func(actual string) (bool, string) {
		return strings.Contains(actual, substr), fmt.Sprintf("a string containing %q", substr)
	}
}

// MatchesPattern matches strings the regular expression matches in full.
// The pattern is compiled once; an invalid pattern causes a panic.
func MatchesPattern(pattern string) Matcher {
	re := regexp.MustCompile(`^(?:` + pattern + `)$`)
	return func(actual string) (bool, string) {
		return re.MatchString(actual), fmt.Sprintf("a string matching the pattern %q", pattern)
	}
}

// IsEmpty matches the empty string.
func IsEmpty() Matcher {
	return func(actual string) (bool, string) {
		return actual == "", "an empty string"
	}
}

// Not inverts a matcher.
func Not(m Matcher) Matcher {
	return func(actual string) (bool, string) {
		ok, desc := m(actual)
		return !ok, "not " + desc
	}
}

// AllOf matches when every matcher matches.
func AllOf(matchers ...Matcher) Matcher {
	return func(actual string) (bool, string) {
		descs := make([]string, 0, len(matchers))
		ok := true
		for _, m := range matchers {
			matched, desc := m(actual)
			descs = append(descs, desc)
			ok = ok && matched
		}
		return ok, "(" + strings.Join(descs, " and ") + ")"
	}
}

// AnyOf matches when at least one matcher matches.
func AnyOf(matchers ...Matcher) Matcher {
	return func(actual string) (bool, string) {
		descs := make([]string, 0, len(matchers))
		ok := false
		for _, m := range matchers {
			matched, desc := m(actual)
			descs = append(descs, desc)
			ok = ok || matched
		}
		return ok, "(" + strings.Join(descs, " or ") + ")"
	}
}

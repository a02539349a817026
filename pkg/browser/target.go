package browser

import (
	"fmt"
	"regexp"
	"strings"
)

// TargetKind identifies how a Target locates its element.
type TargetKind string

const (
	KindRole  TargetKind = "role"
	KindText  TargetKind = "text"
	KindCSS   TargetKind = "css"
	KindXPath TargetKind = "xpath"
)

// Role is an ARIA role used by role-based targets.
type Role string

const (
	RoleButton   Role = "button"
	RoleLink     Role = "link"
	RoleTextbox  Role = "textbox"
	RoleMenuitem Role = "menuitem"
	RoleHeading  Role = "heading"
	RoleImg      Role = "img"
)

// Target describes how to find an element on a page. Targets are plain
// values: page objects declare them once and reuse them for every action.
type Target struct {
	Kind     TargetKind
	Role     Role
	Name     string         // accessible name or text to match
	Pattern  *regexp.Regexp // used instead of Name when set
	Selector string         // CSS or XPath expression
	Exact    bool
	HasText  string // narrows matches to elements containing this text
	First    bool   // use the first match only
	Parent   *Target
}

// ByRole targets an element by ARIA role and accessible name.
// An empty name matches any element with the role.
func ByRole(role Role, name string) Target {
	return Target{Kind: KindRole, Role: role, Name: name}
}

// ByRolePattern targets an element by ARIA role with a name matching pattern.
func ByRolePattern(role Role, pattern *regexp.Regexp) Target {
	return Target{Kind: KindRole, Role: role, Pattern: pattern}
}

// ByText targets an element by its text content.
func ByText(text string) Target {
	return Target{Kind: KindText, Name: text}
}

// ByTextPattern targets an element whose text matches pattern.
func ByTextPattern(pattern *regexp.Regexp) Target {
	return Target{Kind: KindText, Pattern: pattern}
}

// CSS targets an element by CSS selector (playwright pseudo-classes such
// as :has-text() are allowed).
func CSS(selector string) Target {
	return Target{Kind: KindCSS, Selector: selector}
}

// XPath targets an element by XPath expression.
func XPath(expr string) Target {
	return Target{Kind: KindXPath, Selector: expr}
}

// WithText returns a copy of t narrowed to matches containing text.
func (t Target) WithText(text string) Target {
	t.HasText = text
	return t
}

// FirstMatch returns a copy of t restricted to the first match.
func (t Target) FirstMatch() Target {
	t.First = true
	return t
}

// Exactly returns a copy of t requiring an exact name match.
func (t Target) Exactly() Target {
	t.Exact = true
	return t
}

// Within returns a copy of t resolved relative to parent.
func (t Target) Within(parent Target) Target {
	p := parent
	t.Parent = &p
	return t
}

// selectorString returns the playwright selector for CSS and XPath targets.
func (t Target) selectorString() string {
	switch t.Kind {
	case KindXPath:
		if strings.HasPrefix(t.Selector, "xpath=") {
			return t.Selector
		}
		return "xpath=" + t.Selector
	default:
		return t.Selector
	}
}

// String renders the target for logs and error messages.
func (t Target) String() string {
	var b strings.Builder
	if t.Parent != nil {
		b.WriteString(t.Parent.String())
		b.WriteString(" >> ")
	}

	match := fmt.Sprintf("%q", t.Name)
	if t.Pattern != nil {
		match = "/" + t.Pattern.String() + "/"
	}

	switch t.Kind {
	case KindRole:
		fmt.Fprintf(&b, "role=%s[name=%s]", t.Role, match)
	case KindText:
		fmt.Fprintf(&b, "text=%s", match)
	default:
		b.WriteString(t.selectorString())
	}

	if t.HasText != "" {
		fmt.Fprintf(&b, "[has-text=%q]", t.HasText)
	}
	if t.First {
		b.WriteString(".first")
	}
	return b.String()
}

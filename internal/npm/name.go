package npm

import (
	"fmt"
	"net/url"
	"strings"
)

const maxNameLength = 214

// ValidationError indicates a package name that is not safe to send to the
// registry. It is raised before any network call.
type ValidationError struct {
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("npm: invalid package name %q: %s", e.Name, e.Reason)
}

// shellMeta covers characters that would be significant to a shell or a URL
// if the name leaked into either unescaped.
const shellMeta = ";|&$<>`\"'\\!(){}[]*?#% \t\n"

// ValidateName checks a package name against npm naming rules plus the
// injection-safety rules this client enforces. Scoped names of the form
// @scope/name are legal; anything resembling path traversal or shell
// metacharacters is rejected.
func ValidateName(name string) error {
	if name == "" {
		return &ValidationError{Name: name, Reason: "empty"}
	}
	if len(name) > maxNameLength {
		return &ValidationError{Name: name, Reason: fmt.Sprintf("longer than %d characters", maxNameLength)}
	}
	if name != strings.ToLower(name) {
		return &ValidationError{Name: name, Reason: "uppercase characters"}
	}
	if strings.Contains(name, "..") {
		return &ValidationError{Name: name, Reason: "path traversal sequence"}
	}
	if strings.ContainsAny(name, shellMeta) {
		return &ValidationError{Name: name, Reason: "shell metacharacter"}
	}

	scope, bare := splitScope(name)
	if scope != "" {
		if !strings.HasPrefix(scope, "@") || len(scope) < 2 {
			return &ValidationError{Name: name, Reason: "malformed scope"}
		}
		if err := validatePart(name, strings.TrimPrefix(scope, "@")); err != nil {
			return err
		}
	} else if strings.HasPrefix(name, "@") {
		return &ValidationError{Name: name, Reason: "scope without package"}
	}
	return validatePart(name, bare)
}

func validatePart(full, part string) error {
	if part == "" {
		return &ValidationError{Name: full, Reason: "empty name segment"}
	}
	if strings.Contains(part, "/") {
		return &ValidationError{Name: full, Reason: "unexpected path separator"}
	}
	if strings.HasPrefix(part, ".") || strings.HasPrefix(part, "_") {
		return &ValidationError{Name: full, Reason: "segment starts with . or _"}
	}
	for _, r := range part {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return &ValidationError{Name: full, Reason: fmt.Sprintf("character %q not allowed", r)}
		}
	}
	return nil
}

// splitScope separates "@scope/name" into its scope and bare name.
// For unscoped names the scope is "".
func splitScope(name string) (scope, bare string) {
	if strings.HasPrefix(name, "@") {
		if i := strings.Index(name, "/"); i > 0 {
			return name[:i], name[i+1:]
		}
	}
	return "", name
}

// EscapeName encodes a package name for use in a registry URL path. The
// npm registry expects the scope separator encoded as %2F and the leading
// @ left as-is.
func EscapeName(name string) string {
	if scope, bare := splitScope(name); scope != "" {
		return scope + "%2F" + url.PathEscape(bare)
	}
	return url.PathEscape(name)
}

// Scope returns the scope portion of a scoped name without the leading @,
// or "" for unscoped names.
func Scope(name string) string {
	scope, _ := splitScope(name)
	return strings.TrimPrefix(scope, "@")
}

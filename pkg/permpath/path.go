// Package permpath implements the dotted-path conventions shared by the
// permission set, group and registry layers: splitting and joining path
// segments, recognising the trailing wildcard segment, rendering a segment
// list back to its save-string form, and parsing a single permission line.
package permpath

import (
	"fmt"
	"strings"
)

const wildcardSegment = "*"

// ParseError is returned for a malformed permission line. It keeps the
// offending line around so callers building richer load-time errors (see
// pkg/registry) can report which line in a save file failed.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("permpath: invalid permission line %q: %s", e.Line, e.Reason)
}

// Split splits a dotted path string into its segments. It never trims, so
// "" yields a single empty segment (the root path) and "a..b" yields three
// segments, the middle one empty.
func Split(path string) []string {
	return strings.Split(path, ".")
}

// Join renders path segments back into their dotted form.
func Join(segments []string) string {
	return strings.Join(segments, ".")
}

// IsWildcard reports whether the last segment is the literal "*".
func IsWildcard(segments []string) bool {
	return len(segments) > 0 && segments[len(segments)-1] == wildcardSegment
}

// WithoutWildcard returns a copy of segments with a trailing "*" removed, if
// present. It is a no-op copy otherwise.
func WithoutWildcard(segments []string) []string {
	if IsWildcard(segments) {
		segments = segments[:len(segments)-1]
	}
	out := make([]string, len(segments))
	copy(out, segments)
	return out
}

// Line is the parsed form of one permission line: an optional negation
// prefix, the path segments (with any trailing wildcard still present),
// and an optional argument.
type Line struct {
	Negate   bool
	Segments []string
	Wildcard bool
	Arg      *string
}

// ParseLine parses a single permission line of the form:
//
//	["-"] PATH [":" [" "] ARG]
//
// where PATH may end in a literal "*" segment (and only there), and ARG may
// either continue on the same line after ": " or begin on the line after a
// bare ":" and continue across newlines, each continuation line prefixed by
// four spaces.
//
// When deIndent is true (the set_while_de_indenting variant) those four
// leading spaces are stripped from every continuation line before the
// argument lines are rejoined with "\n". When false (the plain set variant)
// continuation lines are kept verbatim, including their leading spaces.
func ParseLine(raw string, deIndent bool) (Line, error) {
	s := raw
	negate := false
	if strings.HasPrefix(s, "-") {
		negate = true
		s = s[1:]
	}
	if strings.HasPrefix(s, "-") {
		return Line{}, &ParseError{Line: raw, Reason: "'-' is only permitted as a single leading prefix"}
	}
	pathPart := s
	var arg *string
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		pathPart = s[:idx]
		rest := s[idx+1:]
		arg = parseArg(rest, deIndent)
	}

	segments := Split(pathPart)
	if len(segments) == 0 {
		return Line{}, &ParseError{Line: raw, Reason: "empty path"}
	}

	wildcard := false
	for i, seg := range segments {
		if seg == wildcardSegment {
			if i != len(segments)-1 {
				return Line{}, &ParseError{Line: raw, Reason: "'*' is only permitted as the final path segment"}
			}
			wildcard = true
		}
	}

	return Line{
		Negate:   negate,
		Segments: segments,
		Wildcard: wildcard,
		Arg:      arg,
	}, nil
}

func parseArg(rest string, deIndent bool) *string {
	if strings.HasPrefix(rest, "\n") {
		lines := strings.Split(rest[1:], "\n")
		if deIndent {
			for i, line := range lines {
				lines[i] = strings.TrimPrefix(line, "    ")
			}
		}
		joined := strings.Join(lines, "\n")
		return &joined
	}
	rest = strings.TrimPrefix(rest, " ")
	return &rest
}

// ApplyToPath renders a permission back to its save-string form, including
// the "-" negation prefix and trailing argument.
func ApplyToPath(segments []string, negate bool, arg *string) string {
	base := applyPrefix(segments, negate)
	if arg == nil {
		return base
	}
	if strings.Contains(*arg, "\n") {
		var b strings.Builder
		b.WriteString(base)
		b.WriteByte(':')
		for _, line := range strings.Split(*arg, "\n") {
			// Eight spaces: this line's own four-space indent inside a
			// PermissionGroup body, nested under the body's own four-space
			// indent (see §6's line grammar).
			b.WriteString("\n        ")
			b.WriteString(line)
		}
		return b.String()
	}
	return base + ": " + *arg
}

// ApplyToPathWithoutArg renders a permission's path and negation prefix
// only, omitting any argument entirely.
func ApplyToPathWithoutArg(segments []string, negate bool) string {
	return applyPrefix(segments, negate)
}

func applyPrefix(segments []string, negate bool) string {
	base := Join(segments)
	if negate {
		base = "-" + base
	}
	return base
}

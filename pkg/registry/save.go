package registry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/halvarsson/permissions/pkg/permgroup"
)

// Save renders the whole registry to its textual form: three sections,
// each a sequence of blank-line-separated blocks in the §6 grammar, headed
// by a bare "# users" / "# groups" / "# default" marker line. A marker
// line is unambiguous against a block body line, which is always indented
// four spaces.
//
// This three-section layout is this package's own choice for combining
// many blocks into one registry-wide save string -- the per-block grammar
// itself is exactly what the core design specifies, and a save -> load ->
// save round trip of that per-block text is byte-identical.
func (r *Registry[U]) Save() string {
	defer func() {
		r.logger.Info("save", "users", len(r.users), "groups", len(r.groups))
	}()
	var b strings.Builder

	b.WriteString("# users\n")
	for i, uid := range r.GetUsers() {
		if i > 0 {
			b.WriteString("\n\n")
		} else {
			b.WriteString("\n")
		}
		g := r.users[uid]
		// Render under the user's string id without permanently renaming the
		// group: an empty Name is what keeps cycle-detection from tracking
		// user groups (only named groups can be referenced, hence cyclic).
		original := g.Name
		g.Name = r.idToStr(uid)
		b.WriteString(g.ToSaveString())
		g.Name = original
	}

	b.WriteString("\n\n# groups\n")
	for i, name := range r.GetGroupNames() {
		if i > 0 {
			b.WriteString("\n\n")
		} else {
			b.WriteString("\n")
		}
		b.WriteString(r.groups[name].ToSaveString())
	}

	b.WriteString("\n\n# default\n\n")
	b.WriteString(r.def.ToSaveString())

	return b.String()
}

// Load replaces the registry's entire contents with the blocks encoded in
// s, per the grammar Save produces. On any ParseError the registry is left
// untouched: blocks are parsed into a staging registry first, which only
// then replaces the receiver's state.
func (r *Registry[U]) Load(s string) error {
	staging := New(r.idToStr, r.strToID)

	section := ""
	for _, raw := range splitSections(s) {
		name := strings.TrimSpace(strings.TrimPrefix(raw.header, "#"))
		section = name
		for _, block := range splitBlocks(raw.body) {
			if strings.TrimSpace(block) == "" {
				continue
			}
			if err := staging.loadBlock(section, block); err != nil {
				r.logger.Info("load", "error", err.Error())
				return err
			}
		}
	}

	logger := r.logger
	*r = *staging
	r.logger = logger
	r.logger.Info("load", "users", len(r.users), "groups", len(r.groups))
	return nil
}

func (r *Registry[U]) loadBlock(section, block string) error {
	lines := strings.Split(block, "\n")
	header := lines[0]
	headerName, priority, compactRef, err := parseHeader(header)
	if err != nil {
		return &LoadError{Block: header, Line: 1, Err: err}
	}

	var target *permgroup.PermissionGroup
	switch section {
	case "default":
		target = r.def
	case "groups":
		target = r.GetGroupOrNew(headerName, priority)
	case "users":
		uid, err := r.strToID(headerName)
		if err != nil {
			return &LoadError{Block: header, Line: 1, Err: err}
		}
		target = r.GetUserGroupOrNew(uid)
	default:
		return &LoadError{Block: header, Line: 1, Err: fmt.Errorf("unknown section %q", section)}
	}
	target.Priority = priority

	if compactRef != "" {
		r.GetGroupOrNew(compactRef)
		target.AddReference(compactRef)
		r.resortAllRefs()
		return nil
	}

	body := lines[1:]
	for i := 0; i < len(body); i++ {
		line := stripBodyIndent(body[i])
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			refName := line[1:]
			r.GetGroupOrNew(refName)
			target.AddReference(refName)
			continue
		}
		full, consumed := joinContinuation(body, i, line)
		if err := target.Perms.SetWhileDeIndenting(full); err != nil {
			return &LoadError{Block: header, Line: i + 2, Err: err}
		}
		i += consumed
	}
	r.resortAllRefs()
	return nil
}

// joinContinuation absorbs any 8-space-indented continuation lines
// following first into a single logical line using the plain "\n    "
// continuation form set_while_de_indenting expects, whether first's own
// argument (if any) is already bare after its ":" or starts inline on the
// same line -- per §6, "arg continuation lines may be at 8-space indent...
// or start on the ':' line". It returns the joined line and how many extra
// lines beyond body[i] it consumed, for the caller to skip.
func joinContinuation(body []string, i int, first string) (string, int) {
	var cont []string
	j := i + 1
	for j < len(body) {
		line := body[j]
		trimmed := strings.TrimPrefix(line, "        ")
		if trimmed == line {
			// Not 8-space indented: not a continuation line.
			break
		}
		cont = append(cont, trimmed)
		j++
	}
	if len(cont) == 0 {
		return first, 0
	}

	idx := strings.IndexByte(first, ':')
	if idx < 0 {
		// No argument position to attach continuation lines to.
		return first, 0
	}
	inline := strings.TrimPrefix(first[idx+1:], " ")

	var b strings.Builder
	b.WriteString(first[:idx])
	b.WriteByte(':')
	if inline != "" {
		b.WriteString("\n    ")
		b.WriteString(inline)
	}
	for _, c := range cont {
		b.WriteString("\n    ")
		b.WriteString(c)
	}
	return b.String(), j - i - 1
}

func stripBodyIndent(line string) string {
	return strings.TrimPrefix(line, "    ")
}

// parseHeader parses a block's header line: NAME, "NAME: PRIORITY",
// "NAME #REF", or "NAME: PRIORITY #REF".
func parseHeader(header string) (name string, priority float64, compactRef string, err error) {
	rest := header
	if idx := strings.Index(rest, " #"); idx >= 0 {
		compactRef = rest[idx+2:]
		rest = rest[:idx]
	}
	if idx := strings.Index(rest, ": "); idx >= 0 {
		name = rest[:idx]
		priority, err = strconv.ParseFloat(rest[idx+2:], 64)
		if err != nil {
			return "", 0, "", fmt.Errorf("invalid priority: %w", err)
		}
		return name, priority, compactRef, nil
	}
	name = rest
	if name == "" {
		return "", 0, "", fmt.Errorf("empty block header")
	}
	return name, 0, compactRef, nil
}

type section struct {
	header string
	body   string
}

// splitSections splits Save's output on its "# marker" lines.
func splitSections(s string) []section {
	var out []section
	var cur *section
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, "# ") {
			if cur != nil {
				out = append(out, *cur)
			}
			cur = &section{header: line}
			continue
		}
		if cur != nil {
			cur.body += line + "\n"
		}
	}
	if cur != nil {
		out = append(out, *cur)
	}
	return out
}

// splitBlocks splits a section's body on blank lines into its blocks.
func splitBlocks(body string) []string {
	var out []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.Join(cur, "\n"))
			cur = nil
		}
	}
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return out
}

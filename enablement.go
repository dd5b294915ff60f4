package fleetctl

import (
	"bytes"
	"strings"
)

// Auto-start suppression directive. A configuration file disables its
// instance when it carries a quit directive whose value is anything other
// than the active sentinel.
const (
	quitDirective      = "quit"
	quitActiveSentinel = "0"
	quitDisabledValue  = "1"

	// DisableMarker is the exact line appended by disable
	DisableMarker = quitDirective + " = " + quitDisabledValue
)

// parseDirective splits a "key = value" line. Blank lines, comments and
// lines without '=' are not directives.
func parseDirective(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	k, v, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	if i := strings.IndexByte(v, '#'); i >= 0 {
		v = v[:i]
	}
	key = strings.TrimSpace(k)
	return key, strings.TrimSpace(v), key != ""
}

func suppressesAutoStart(line string) bool {
	key, value, ok := parseDirective(line)
	return ok && key == quitDirective && value != quitActiveSentinel
}

func isDisableMarker(line string) bool {
	key, value, ok := parseDirective(line)
	return ok && key == quitDirective && value == quitDisabledValue
}

// configEnabled derives the enabled flag from configuration contents
func configEnabled(content []byte) bool {
	for _, line := range strings.Split(string(content), "\n") {
		if suppressesAutoStart(line) {
			return false
		}
	}
	return true
}

// markDisabled appends DisableMarker unless it is already present.
// It reports whether the contents changed.
func markDisabled(content []byte) ([]byte, bool) {
	for _, line := range strings.Split(string(content), "\n") {
		if isDisableMarker(line) {
			return content, false
		}
	}
	out := make([]byte, 0, len(content)+len(DisableMarker)+2)
	out = append(out, content...)
	if len(out) > 0 && !bytes.HasSuffix(out, []byte("\n")) {
		out = append(out, '\n')
	}
	out = append(out, DisableMarker...)
	out = append(out, '\n')
	return out, true
}

// markEnabled removes every suppressing quit directive, not just the first.
// It reports whether the contents changed.
func markEnabled(content []byte) ([]byte, bool) {
	var b strings.Builder
	removed := false
	for _, line := range strings.SplitAfter(string(content), "\n") {
		if suppressesAutoStart(line) {
			removed = true
			continue
		}
		b.WriteString(line)
	}
	if !removed {
		return content, false
	}
	return []byte(b.String()), true
}

package inifile

import (
	"strings"
)

// literalMark is put in front of values that open with a backtick, which
// ini would otherwise read as a quoted value. fromFile strips it again.
const literalMark = "\x00"

// prepare rewrites the lines ini reads differently from configparser.
// Inside an indented continuation, blank lines are kept as part of the
// value and column zero comments are dropped instead of ending it.
func prepare(data []byte) []byte {
	var (
		out      []string
		pending  []int
		inValue  bool
		inQuotes bool
	)

	for _, line := range strings.SplitAfter(string(data), "\n") {
		trimmed := strings.TrimSpace(line)

		if inQuotes {
			out = append(out, line)
			inQuotes = !strings.Contains(line, `"""`)

			continue
		}

		if trimmed == "" || (inValue && !indented(line) && isComment(trimmed)) {
			if inValue {
				pending = append(pending, len(out))
			}

			out = append(out, line)

			continue
		}

		if inValue && indented(line) {
			for _, i := range pending {
				if isComment(strings.TrimSpace(out[i])) {
					out[i] = ""
				} else {
					out[i] = " " + out[i]
				}
			}

			pending = pending[:0]
			out = append(out, line)

			continue
		}

		pending = pending[:0]
		inValue = false

		if !isComment(trimmed) && trimmed[0] != '[' {
			line, inValue, inQuotes = markValue(line)
		}

		out = append(out, line)
	}

	return []byte(strings.Join(out, ""))
}

// markValue marks a backtick value literal and reports whether the value
// may continue on indented lines or opens a triple quoted block.
func markValue(line string) (string, bool, bool) {
	if trimmed := strings.TrimLeft(line, " \t"); strings.HasPrefix(trimmed, `"`) || strings.HasPrefix(trimmed, "`") {
		return line, true, false
	}

	i := strings.IndexAny(line, "=:")
	if i < 0 {
		return line, true, false
	}

	value := strings.TrimLeft(line[i+1:], " \t")

	switch {
	case strings.HasPrefix(value, `"""`):
		return line, false, !strings.Contains(value[3:], `"""`)
	case strings.HasPrefix(value, "`"):
		return line[:len(line)-len(value)] + literalMark + value, true, false
	}

	return line, true, false
}

func indented(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t' || line[0] == '\f')
}

func isComment(trimmed string) bool {
	return strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";")
}

package submitfile

import (
	"regexp"
	"strings"

	"al.essio.dev/pkg/shellescape"
)

var shellVar = regexp.MustCompile(`\$(?:\{[A-Za-z_][A-Za-z0-9_]*\}|[A-Za-z_][A-Za-z0-9_]*)`)

// shellWord quotes v as one bash word. $NAME and ${NAME} references are left
// outside the quotes so the batch shell expands them.
func shellWord(v string) string {
	if v == "" {
		return "''"
	}

	var b strings.Builder

	last := 0
	for _, loc := range shellVar.FindAllStringIndex(v, -1) {
		if loc[0] > last {
			b.WriteString(shellescape.Quote(v[last:loc[0]]))
		}

		b.WriteString(`"` + v[loc[0]:loc[1]] + `"`)
		last = loc[1]
	}

	if last < len(v) {
		b.WriteString(shellescape.Quote(v[last:]))
	}

	return b.String()
}

package classify

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// closingMessage is always written by Finalize, whatever was found.
const closingMessage = `
See docs/link-errors.md for more info.

Tip: run ` + "`linkaudit check --ignore-link-errors`" + ` to accept these errors and
keep the package anyway. The resulting package will not work on another
system unless that system also provides every library listed above.
`

var errorPrefix = color.New(color.FgRed, color.Bold)

func externalMessage(paths []string) string {
	return fmt.Sprintf(
		"error: external linkage detected to libraries living outside the build root:\n    %s\nEach path above needs its own recipe so the dependency can be declared.",
		strings.Join(paths, "\n    "))
}

func brokenMessage(names []string) string {
	return fmt.Sprintf(
		"error: broken linkage detected for the following libraries: %s\nThis is usually fixed via link flags or RPATH configuration.",
		strings.Join(names, ", "))
}

// paint colorizes the "error:" prefixes of a synthesized message block. The
// retained messages stay plain; color is applied only at write time.
func paint(text string, enabled bool) string {
	if !enabled {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if rest, ok := strings.CutPrefix(line, "error:"); ok {
			lines[i] = errorPrefix.Sprint("error:") + rest
		}
	}
	return strings.Join(lines, "\n")
}

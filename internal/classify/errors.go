package classify

import (
	"fmt"
	"strings"
)

// ConsistencyError reports a contract violation by the upstream scanner:
// a record of unknown kind, or a library classified as both broken and
// external. It is a programmer error, not a build problem, and must abort
// the pipeline before any user-facing message is written.
type ConsistencyError struct {
	Reason string
	Names  []string
}

func (e *ConsistencyError) Error() string {
	if len(e.Names) == 0 {
		return fmt.Sprintf("linkage classification inconsistency: %s", e.Reason)
	}
	return fmt.Sprintf("linkage classification inconsistency: %s: %s",
		e.Reason, strings.Join(e.Names, ", "))
}

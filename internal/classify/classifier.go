// Package classify buckets linkage errors reported by the scanner into
// actionable categories and synthesizes the diagnostic report.
package classify

// Classifier is the three-phase pipeline contract. Handle drives the phases
// in fixed order; concrete policies supply the categorization and message
// synthesis.
type Classifier interface {
	// CategorizeErrors partitions the raw records into the result sets.
	// A non-nil error means the scanner violated its contract; the
	// pipeline must abort before any message is written.
	CategorizeErrors() error
	// ProcessErrors synthesizes and writes the diagnostic messages.
	ProcessErrors() error
	// Finalize writes the fixed closing remediation message. It runs only
	// on the success path of the first two phases.
	Finalize()
	// TryAgain reports whether the policy wants the caller to retry the
	// build after remediation. Reserved for a future retry policy; no
	// current policy sets it and Handle does not read it.
	TryAgain() bool
	// AllowIgnore reports whether ignoreErrors may downgrade a failing
	// outcome to a passing one.
	AllowIgnore() bool
	// Result returns the classification state owned by this instance.
	Result() *Result
}

// Outcome is what Handle hands back to the caller. The core never exits the
// process; the CLI layer maps Fail to a non-zero exit status.
type Outcome struct {
	Result   *Result
	Messages []string
	// Fail is true when errors were classified and ignoring was not
	// requested (or not allowed by the policy).
	Fail bool
}

// Handle runs categorize, process, finalize in that order on c. A classifier
// instance is good for exactly one Handle call.
func Handle(c Classifier, ignoreErrors bool) (Outcome, error) {
	if err := c.CategorizeErrors(); err != nil {
		return Outcome{}, err
	}
	if err := c.ProcessErrors(); err != nil {
		return Outcome{}, err
	}
	c.Finalize()

	res := c.Result()
	fail := len(res.Names) > 0
	if ignoreErrors && c.AllowIgnore() {
		fail = false
	}
	return Outcome{Result: res, Messages: res.Messages, Fail: fail}, nil
}

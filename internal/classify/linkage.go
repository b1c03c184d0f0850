package classify

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"linkaudit/internal/linkerr"
)

// Options configures where and how a classifier writes its diagnostics.
type Options struct {
	// Out receives the diagnostic text; the CLI passes stderr. A nil Out
	// discards the text (the messages are still retained on the result).
	Out io.Writer
	// Color enables colored "error:" prefixes on the stream.
	Color bool
}

// base carries the pieces every classifier policy shares: the diagnostic
// stream and the default capability flags.
type base struct {
	out   io.Writer
	color bool
}

func newBase(opts Options) base {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return base{out: out, color: opts.Color}
}

// write performs one buffered write to the diagnostic stream.
func (b *base) write(text string) {
	_, _ = io.WriteString(b.out, paint(text, b.color))
}

// Finalize writes the fixed closing remediation message.
func (b *base) Finalize() { b.write(closingMessage) }

func (b *base) TryAgain() bool { return false }

func (b *base) AllowIgnore() bool { return true }

// LinkageClassifier is the concrete policy for shared-library linkage
// errors: broken linkage (unresolved) versus external linkage (resolved
// outside the build root).
type LinkageClassifier struct {
	base

	errs []linkerr.LinkError
	meta any // build metadata, passed through untouched for the caller
	res  *Result
}

// NewLinkageClassifier builds a classifier over the raw error records. meta
// is the opaque build-metadata reference; it is retained for the caller and
// never inspected here.
func NewLinkageClassifier(errs []linkerr.LinkError, meta any, opts Options) *LinkageClassifier {
	return &LinkageClassifier{
		base: newBase(opts),
		errs: errs,
		meta: meta,
		res:  newResult(),
	}
}

func (c *LinkageClassifier) Result() *Result { return c.res }

// Metadata returns the build-metadata reference unmodified.
func (c *LinkageClassifier) Metadata() any { return c.meta }

// CategorizeErrors partitions the records into broken and external sets and
// derives the recipes-needed list. The disjointness of the two sets is a
// scanner contract; a violation aborts the run.
func (c *LinkageClassifier) CategorizeErrors() error {
	for _, e := range c.errs {
		name := e.Library()
		c.res.Names[name] = struct{}{}
		// ExternalLinkage refines BrokenLinkage, so it must be tested
		// first or it would land in the broken bucket.
		switch e := e.(type) {
		case linkerr.ExternalLinkage:
			c.res.External.Set(name, e.ActualTarget)
		case linkerr.BrokenLinkage:
			c.res.Broken[name] = struct{}{}
		default:
			return &ConsistencyError{
				Reason: fmt.Sprintf("record %T is neither broken nor external linkage", e),
				Names:  []string{name},
			}
		}
	}

	var both []string
	for _, name := range c.res.External.Names() {
		if _, ok := c.res.Broken[name]; ok {
			both = append(both, name)
		}
	}
	if len(both) > 0 {
		return &ConsistencyError{
			Reason: "libraries classified as both broken and external",
			Names:  both,
		}
	}

	c.res.NewRecipesNeeded = append(c.res.NewRecipesNeeded, c.res.External.Paths()...)
	return nil
}

// ProcessErrors synthesizes one message per category and writes them,
// newline-joined, in a single write. Broken linkage is the more severe
// class (the binary will not load at all) but both messages are emitted.
func (c *LinkageClassifier) ProcessErrors() error {
	var msgs []string
	if len(c.res.NewRecipesNeeded) > 0 {
		msgs = append(msgs, externalMessage(c.res.NewRecipesNeeded))
	}
	if len(c.res.Broken) > 0 {
		names := make([]string, 0, len(c.res.Broken))
		for name := range c.res.Broken {
			names = append(names, name)
		}
		sort.Strings(names)
		msgs = append(msgs, brokenMessage(names))
	}
	if len(msgs) == 0 && len(c.res.Names) > 0 {
		return &ConsistencyError{Reason: "categorized errors produced no messages"}
	}

	c.res.Messages = msgs
	if len(msgs) > 0 {
		c.write(strings.Join(msgs, "\n") + "\n")
	}
	return nil
}

package classify

import (
	"bytes"
	"strings"
	"testing"

	"linkaudit/internal/linkerr"
)

func TestHandleFailsUnlessIgnored(t *testing.T) {
	errsIn := []linkerr.LinkError{broken("libfoo.so")}

	var out bytes.Buffer
	outcome, err := Handle(NewLinkageClassifier(errsIn, nil, Options{Out: &out}), false)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !outcome.Fail {
		t.Fatalf("Fail = false, want true for non-empty errors without ignore")
	}

	outcome, err = Handle(NewLinkageClassifier(errsIn, nil, Options{}), true)
	if err != nil {
		t.Fatalf("Handle (ignore): %v", err)
	}
	if outcome.Fail {
		t.Fatalf("Fail = true, want false when ignoring")
	}
	if len(outcome.Messages) == 0 {
		t.Fatalf("Messages empty; callers who ignore still need the raw strings")
	}
}

func TestHandleAlwaysWritesClosingMessage(t *testing.T) {
	for _, ignore := range []bool{false, true} {
		var out bytes.Buffer
		c := NewLinkageClassifier([]linkerr.LinkError{broken("libfoo.so")}, nil, Options{Out: &out})
		if _, err := Handle(c, ignore); err != nil {
			t.Fatalf("Handle(ignore=%v): %v", ignore, err)
		}
		text := out.String()
		if !strings.Contains(text, "docs/link-errors.md") {
			t.Fatalf("closing message missing from stream (ignore=%v):\n%s", ignore, text)
		}
		// error messages precede the closing paragraph
		if strings.Index(text, "libfoo.so") > strings.Index(text, "docs/link-errors.md") {
			t.Fatalf("closing message written before the error report:\n%s", text)
		}
	}
}

func TestHandleRetainsMetadata(t *testing.T) {
	type meta struct{ Name string }
	m := &meta{Name: "zlib"}
	c := NewLinkageClassifier([]linkerr.LinkError{broken("libz.so")}, m, Options{})
	if _, err := Handle(c, true); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if c.Metadata() != any(m) {
		t.Fatalf("Metadata() = %v, want the reference passed in", c.Metadata())
	}
}

func TestTryAgainReservedOff(t *testing.T) {
	c := NewLinkageClassifier(nil, nil, Options{})
	if c.TryAgain() {
		t.Fatalf("TryAgain() = true; the retry capability is reserved and unset")
	}
	if !c.AllowIgnore() {
		t.Fatalf("AllowIgnore() = false, want true for the linkage policy")
	}
}

func TestColorAppliesOnlyToStream(t *testing.T) {
	var out bytes.Buffer
	c := NewLinkageClassifier([]linkerr.LinkError{broken("libfoo.so")}, nil, Options{Out: &out, Color: false})
	outcome, err := Handle(c, true)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	for _, msg := range outcome.Messages {
		if strings.Contains(msg, "\x1b[") {
			t.Fatalf("retained message contains escape codes: %q", msg)
		}
	}
}

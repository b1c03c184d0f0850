package classify

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"linkaudit/internal/linkerr"
)

func broken(name string) linkerr.LinkError {
	return linkerr.BrokenLinkage{DependentLibrary: name}
}

func external(name, target string) linkerr.LinkError {
	return linkerr.ExternalLinkage{
		BrokenLinkage: linkerr.BrokenLinkage{DependentLibrary: name},
		ActualTarget:  target,
	}
}

func TestCategorizeSingleBroken(t *testing.T) {
	c := NewLinkageClassifier([]linkerr.LinkError{broken("libfoo.so")}, nil, Options{})
	if err := c.CategorizeErrors(); err != nil {
		t.Fatalf("CategorizeErrors: %v", err)
	}
	res := c.Result()
	if _, ok := res.Broken["libfoo.so"]; !ok || len(res.Broken) != 1 {
		t.Fatalf("Broken = %v, want {libfoo.so}", res.Broken)
	}
	if res.External.Len() != 0 {
		t.Fatalf("External.Len() = %d, want 0", res.External.Len())
	}
	if err := c.ProcessErrors(); err != nil {
		t.Fatalf("ProcessErrors: %v", err)
	}
	if len(res.Messages) != 1 || !strings.Contains(res.Messages[0], "libfoo.so") {
		t.Fatalf("Messages = %q, want one message mentioning libfoo.so", res.Messages)
	}
}

func TestCategorizeSingleExternal(t *testing.T) {
	c := NewLinkageClassifier([]linkerr.LinkError{external("libbar.so", "/opt/libs/libbar.so")}, nil, Options{})
	if err := c.CategorizeErrors(); err != nil {
		t.Fatalf("CategorizeErrors: %v", err)
	}
	res := c.Result()
	if len(res.Broken) != 0 {
		t.Fatalf("Broken = %v, want empty", res.Broken)
	}
	if path, ok := res.External.Get("libbar.so"); !ok || path != "/opt/libs/libbar.so" {
		t.Fatalf("External[libbar.so] = %q, %v", path, ok)
	}
	if len(res.NewRecipesNeeded) != 1 || res.NewRecipesNeeded[0] != "/opt/libs/libbar.so" {
		t.Fatalf("NewRecipesNeeded = %v", res.NewRecipesNeeded)
	}
}

func TestCategorizeMixed(t *testing.T) {
	errsIn := []linkerr.LinkError{
		broken("libfoo.so"),
		external("libbar.so", "/opt/libs/libbar.so"),
	}
	c := NewLinkageClassifier(errsIn, nil, Options{})
	if err := c.CategorizeErrors(); err != nil {
		t.Fatalf("CategorizeErrors: %v", err)
	}
	if err := c.ProcessErrors(); err != nil {
		t.Fatalf("ProcessErrors: %v", err)
	}
	res := c.Result()
	if len(res.Messages) != 2 {
		t.Fatalf("len(Messages) = %d, want 2", len(res.Messages))
	}
	// external recipe list first, broken second
	if !strings.Contains(res.Messages[0], "/opt/libs/libbar.so") {
		t.Fatalf("Messages[0] = %q, want external path list", res.Messages[0])
	}
	if !strings.Contains(res.Messages[1], "libfoo.so") {
		t.Fatalf("Messages[1] = %q, want broken names", res.Messages[1])
	}
}

func TestNamesIsUnionAndDisjoint(t *testing.T) {
	errsIn := []linkerr.LinkError{
		broken("liba.so"),
		broken("liba.so"), // duplicate name, still one entry
		external("libb.so", "/usr/local/lib/libb.so"),
		external("libc.so", "/opt/libc.so"),
	}
	c := NewLinkageClassifier(errsIn, nil, Options{})
	if err := c.CategorizeErrors(); err != nil {
		t.Fatalf("CategorizeErrors: %v", err)
	}
	res := c.Result()
	if len(res.Names) != 3 {
		t.Fatalf("len(Names) = %d, want 3", len(res.Names))
	}
	for name := range res.Broken {
		if _, ok := res.Names[name]; !ok {
			t.Fatalf("broken name %q missing from Names", name)
		}
		if _, ok := res.External.Get(name); ok {
			t.Fatalf("name %q present in both broken and external", name)
		}
	}
	for _, name := range res.External.Names() {
		if _, ok := res.Names[name]; !ok {
			t.Fatalf("external name %q missing from Names", name)
		}
	}
	if len(res.Broken)+res.External.Len() != len(res.Names) {
		t.Fatalf("broken(%d) + external(%d) != names(%d)",
			len(res.Broken), res.External.Len(), len(res.Names))
	}
}

func TestRecipesPreserveEncounterOrder(t *testing.T) {
	errsIn := []linkerr.LinkError{
		external("libz.so", "/opt/a/libz.so"),
		external("liba.so", "/opt/b/liba.so"),
		external("libm.so", "/opt/c/libm.so"),
	}
	c := NewLinkageClassifier(errsIn, nil, Options{})
	if err := c.CategorizeErrors(); err != nil {
		t.Fatalf("CategorizeErrors: %v", err)
	}
	want := []string{"/opt/a/libz.so", "/opt/b/liba.so", "/opt/c/libm.so"}
	got := c.Result().NewRecipesNeeded
	if len(got) != len(want) {
		t.Fatalf("NewRecipesNeeded = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("NewRecipesNeeded[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestConflictingClassificationAborts(t *testing.T) {
	var out bytes.Buffer
	errsIn := []linkerr.LinkError{
		broken("libdup.so"),
		external("libdup.so", "/opt/libdup.so"),
	}
	c := NewLinkageClassifier(errsIn, nil, Options{Out: &out})
	_, err := Handle(c, false)
	var cerr *ConsistencyError
	if !errors.As(err, &cerr) {
		t.Fatalf("Handle error = %v, want *ConsistencyError", err)
	}
	if len(cerr.Names) != 1 || cerr.Names[0] != "libdup.so" {
		t.Fatalf("ConsistencyError.Names = %v, want [libdup.so]", cerr.Names)
	}
	if out.Len() != 0 {
		t.Fatalf("diagnostic stream written before abort: %q", out.String())
	}
}

func TestUnknownRecordKindAborts(t *testing.T) {
	type weird struct{ linkerr.LinkError }
	c := NewLinkageClassifier([]linkerr.LinkError{weird{broken("libw.so")}}, nil, Options{})
	err := c.CategorizeErrors()
	var cerr *ConsistencyError
	if !errors.As(err, &cerr) {
		t.Fatalf("CategorizeErrors error = %v, want *ConsistencyError", err)
	}
}

func TestCategorizeIsPerInstance(t *testing.T) {
	errsIn := []linkerr.LinkError{broken("libfoo.so"), external("libbar.so", "/opt/libbar.so")}
	run := func() *Result {
		c := NewLinkageClassifier(errsIn, nil, Options{})
		if err := c.CategorizeErrors(); err != nil {
			t.Fatalf("CategorizeErrors: %v", err)
		}
		return c.Result()
	}
	first, second := run(), run()
	if len(first.Names) != len(second.Names) ||
		len(first.Broken) != len(second.Broken) ||
		first.External.Len() != second.External.Len() ||
		len(first.NewRecipesNeeded) != len(second.NewRecipesNeeded) {
		t.Fatalf("two runs over the same input diverged: %+v vs %+v", first, second)
	}
}

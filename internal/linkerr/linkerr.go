// Package linkerr defines the linkage-error records exchanged between the
// scanner and the classifier. It is deliberately dependency-free so both
// sides can import it without creating a cycle.
package linkerr

// LinkError is a single linkage problem detected for a built artifact.
// Concrete variants: BrokenLinkage, ExternalLinkage.
type LinkError interface {
	// Library returns the dependent library name the record is about.
	Library() string
}

// BrokenLinkage reports a dependency that could not be resolved at link or
// load time (e.g. ldd printed "not found").
type BrokenLinkage struct {
	DependentLibrary string
}

func (e BrokenLinkage) Library() string { return e.DependentLibrary }

// ExternalLinkage refines BrokenLinkage: the dependency did resolve, but to
// a path outside the build root. Classifiers must test for it before
// BrokenLinkage so refined records are not counted twice.
type ExternalLinkage struct {
	BrokenLinkage
	// ActualTarget is the resolved path outside the build root.
	ActualTarget string
}

// Package scan detects shared-library linkage problems in staged build
// artifacts and produces the error records the classifier consumes.
package scan

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"linkaudit/internal/linkerr"
)

// Options configures a scan.
type Options struct {
	// BuildRoot is the staged-artifact prefix; linkage resolved inside it
	// is fine.
	BuildRoot string
	// Allow lists path prefixes exempt from the external check (system
	// library locations).
	Allow []string
	// Artifacts, when non-empty, is the pre-collected file list; otherwise
	// BuildRoot is walked.
	Artifacts []string
	// Jobs caps concurrent ldd invocations (0 = NumCPU).
	Jobs int
	// Cache, when non-nil, skips ldd for artifacts already scanned.
	Cache *Cache
	// Progress, when non-nil, receives per-artifact events.
	Progress ProgressSink
}

// Report is the scan output.
type Report struct {
	Artifacts []string
	Errors    []linkerr.LinkError
}

// artifactDeps pairs an artifact with its resolved dependencies.
type artifactDeps struct {
	Path string
	Deps []Dependency
}

// Scan resolves the dynamic dependencies of every artifact and turns the
// findings into linkage-error records.
func Scan(ctx context.Context, opts Options) (*Report, error) {
	files := opts.Artifacts
	if len(files) == 0 {
		var err error
		files, err = CollectArtifacts(opts.BuildRoot)
		if err != nil {
			return nil, err
		}
	}
	for _, f := range files {
		emit(opts.Progress, Event{File: f, Stage: StageLdd, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	results := make([]artifactDeps, len(files))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			start := time.Now()
			emit(opts.Progress, Event{File: file, Stage: StageLdd, Status: StatusWorking})
			deps, err := resolveArtifact(gctx, file, opts.Cache)
			if err != nil {
				emit(opts.Progress, Event{File: file, Stage: StageLdd, Status: StatusError, Err: err})
				return err
			}
			mu.Lock()
			results[i] = artifactDeps{Path: file, Deps: deps}
			mu.Unlock()
			emit(opts.Progress, Event{File: file, Stage: StageLdd, Status: StatusDone, Elapsed: time.Since(start)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	emit(opts.Progress, Event{Stage: StageClassify, Status: StatusWorking})
	errs := buildErrors(results, opts.BuildRoot, opts.Allow)
	emit(opts.Progress, Event{Stage: StageClassify, Status: StatusDone})

	return &Report{Artifacts: files, Errors: errs}, nil
}

// resolveArtifact returns the cached dependencies for file, or runs ldd and
// caches the result.
func resolveArtifact(ctx context.Context, file string, cache *Cache) ([]Dependency, error) {
	if cache == nil {
		return runLdd(ctx, file)
	}
	key, size, err := fileDigest(file)
	if err != nil {
		return nil, err
	}
	var payload cachePayload
	if ok, err := cache.get(key, &payload); err == nil && ok {
		return payload.Deps, nil
	}
	deps, err := runLdd(ctx, file)
	if err != nil {
		return nil, err
	}
	_ = cache.put(key, &cachePayload{
		Schema: cacheSchemaVersion,
		Path:   file,
		Size:   size,
		Deps:   deps,
	})
	return deps, nil
}

// buildErrors dedupes dependencies across artifacts and emits one record
// per library name. External takes precedence over broken for the same
// name (the library does exist somewhere), keeping the two sets disjoint
// as the classifier requires.
func buildErrors(results []artifactDeps, buildRoot string, allow []string) []linkerr.LinkError {
	type finding struct {
		broken   bool
		external bool
		target   string
	}
	var order []string
	found := make(map[string]*finding)

	note := func(name string) *finding {
		f, ok := found[name]
		if !ok {
			f = &finding{}
			found[name] = f
			order = append(order, name)
		}
		return f
	}

	for _, res := range results {
		for _, dep := range res.Deps {
			switch {
			case !dep.Found:
				note(dep.Name).broken = true
			case insideRoot(buildRoot, dep.Target):
				// resolved within the staged build; nothing to report
			case hasAllowedPrefix(allow, dep.Target):
				// system library; expected to exist on the target host
			default:
				f := note(dep.Name)
				if !f.external {
					f.external = true
					f.target = dep.Target
				}
			}
		}
	}

	var errs []linkerr.LinkError
	for _, name := range order {
		f := found[name]
		switch {
		case f.external:
			errs = append(errs, linkerr.ExternalLinkage{
				BrokenLinkage: linkerr.BrokenLinkage{DependentLibrary: name},
				ActualTarget:  f.target,
			})
		case f.broken:
			errs = append(errs, linkerr.BrokenLinkage{DependentLibrary: name})
		}
	}
	return errs
}

func insideRoot(root, path string) bool {
	if root == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func hasAllowedPrefix(allow []string, path string) bool {
	for _, prefix := range allow {
		if path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"linkaudit/internal/classify"
	"linkaudit/internal/observ"
	"linkaudit/internal/recipe"
	"linkaudit/internal/scan"
)

const noRecipeMessage = "no recipe.toml found\nplease specify the build root explicitly, e.g.:\n  linkaudit check path/to/build"

var checkCmd = &cobra.Command{
	Use:   "check [flags] [path]",
	Short: "Classify linkage errors in a freshly built package",
	Long:  "Scan the staged build artifacts for broken or external shared-library linkage, print a diagnostic report, and fail the build unless the errors are ignored.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().Bool("ignore-link-errors", false, "report link errors but keep the package anyway")
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().Bool("no-cache", false, "disable the scan result cache")
	checkCmd.Flags().String("ui", "auto", "progress display (auto|on|off)")
}

// checkPayload is the machine-usable summary emitted by --format json.
type checkPayload struct {
	Package          string            `json:"package,omitempty"`
	Artifacts        int               `json:"artifacts"`
	Names            []string          `json:"names"`
	Broken           []string          `json:"broken"`
	External         map[string]string `json:"external"`
	NewRecipesNeeded []string          `json:"new_recipes_needed"`
	Messages         []string          `json:"messages"`
	Hints            []classify.Hint   `json:"hints"`
	Failed           bool              `json:"failed"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	ignoreErrors, err := cmd.Flags().GetBool("ignore-link-errors")
	if err != nil {
		return fmt.Errorf("failed to get ignore-link-errors flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}

	startDir := "."
	if len(args) > 0 {
		startDir = args[0]
	}
	target, err := resolveAuditTarget(startDir, len(args) > 0)
	if err != nil {
		return err
	}

	var cache *scan.Cache
	if !noCache {
		// best effort: a missing cache dir never blocks the audit
		cache, _ = scan.OpenCache("linkaudit")
	}

	timer := observ.NewTimer()
	collectPhase := timer.Begin("collect")
	files, err := scan.CollectArtifacts(target.buildRoot)
	if err != nil {
		return fmt.Errorf("failed to collect artifacts: %w", err)
	}
	timer.End(collectPhase, fmt.Sprintf("%d artifacts", len(files)))

	scanPhase := timer.Begin("scan")
	opts := scan.Options{
		BuildRoot: target.buildRoot,
		Allow:     target.allow,
		Artifacts: files,
		Jobs:      jobs,
		Cache:     cache,
	}
	var report *scan.Report
	if format == "pretty" && shouldUseTUI(uiModeValue) && len(files) > 0 {
		report, err = runScanWithUI(cmd.Context(), "linkaudit check "+target.label, files, opts)
	} else {
		report, err = scan.Scan(cmd.Context(), opts)
	}
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	timer.End(scanPhase, "")

	classifyPhase := timer.Begin("classify")
	classifier := classify.NewLinkageClassifier(report.Errors, target.meta, classify.Options{
		Out:   os.Stderr,
		Color: useColor(colorFlag, os.Stderr),
	})
	var outcome classify.Outcome
	if len(report.Errors) > 0 {
		outcome, err = classify.Handle(classifier, ignoreErrors)
		if err != nil {
			return fmt.Errorf("internal error: %w", err)
		}
	} else {
		outcome = classify.Outcome{Result: classifier.Result()}
	}
	timer.End(classifyPhase, fmt.Sprintf("%d errors", len(report.Errors)))

	if format == "json" {
		if err := writeCheckJSON(os.Stdout, target.label, len(report.Artifacts), outcome); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	} else if len(report.Errors) == 0 && !quiet {
		fmt.Fprintf(os.Stdout, "linkage ok: %d artifacts checked in %s\n", len(report.Artifacts), target.label)
	}
	if showTimings && !quiet {
		fmt.Fprint(os.Stdout, timer.Summary())
	}

	if outcome.Fail {
		// Suppress cobra usage output; the report already went to stderr
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errors.New("")
	}
	return nil
}

// auditTarget is the resolved build root plus its metadata context.
type auditTarget struct {
	buildRoot string
	allow     []string
	label     string
	meta      any // *recipe.Recipe when a recipe.toml was found
}

// resolveAuditTarget locates recipe.toml above startDir; with an explicit
// path argument a bare directory (no recipe) is acceptable and audited with
// default settings.
func resolveAuditTarget(startDir string, explicit bool) (*auditTarget, error) {
	rec, found, err := recipe.FindAndLoad(startDir)
	if err != nil {
		return nil, err
	}
	if found {
		root := rec.BuildRoot()
		if _, err := os.Stat(root); err != nil {
			return nil, fmt.Errorf("%s: build root does not exist (did the build run?): %w", rec.Path, err)
		}
		return &auditTarget{
			buildRoot: root,
			allow:     rec.Config.Linkage.Allow,
			label:     rec.Label(),
			meta:      rec,
		}, nil
	}
	if !explicit {
		return nil, errors.New(noRecipeMessage)
	}
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", startDir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %q: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", abs)
	}
	return &auditTarget{
		buildRoot: abs,
		allow:     recipe.DefaultAllow(),
		label:     filepath.Base(abs),
	}, nil
}

func writeCheckJSON(out *os.File, label string, artifacts int, outcome classify.Outcome) error {
	res := outcome.Result
	names := make([]string, 0, len(res.Names))
	for name := range res.Names {
		names = append(names, name)
	}
	sort.Strings(names)
	broken := make([]string, 0, len(res.Broken))
	for name := range res.Broken {
		broken = append(broken, name)
	}
	sort.Strings(broken)
	external := make(map[string]string, res.External.Len())
	for _, name := range res.External.Names() {
		path, _ := res.External.Get(name)
		external[name] = path
	}

	recipes := res.NewRecipesNeeded
	if recipes == nil {
		recipes = []string{}
	}
	messages := res.Messages
	if messages == nil {
		messages = []string{}
	}

	payload := checkPayload{
		Package:          label,
		Artifacts:        artifacts,
		Names:            names,
		Broken:           broken,
		External:         external,
		NewRecipesNeeded: recipes,
		Messages:         messages,
		Hints:            res.Hints(),
		Failed:           outcome.Fail,
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

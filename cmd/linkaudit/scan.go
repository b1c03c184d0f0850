package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"linkaudit/internal/linkerr"
	"linkaudit/internal/scan"
)

var scanCmd = &cobra.Command{
	Use:   "scan [flags] [path]",
	Short: "List raw linkage records without the pass/fail policy",
	Long:  "Scan the staged build artifacts and print every detected linkage record as-is. Useful for inspecting what check would classify.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	scanCmd.Flags().Bool("no-cache", false, "disable the scan result cache")
}

type scanRecord struct {
	Kind    string `json:"kind"` // "broken" or "external"
	Library string `json:"library"`
	Target  string `json:"target,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
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
		cache, _ = scan.OpenCache("linkaudit")
	}

	report, err := scan.Scan(cmd.Context(), scan.Options{
		BuildRoot: target.buildRoot,
		Allow:     target.allow,
		Jobs:      jobs,
		Cache:     cache,
	})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	records := make([]scanRecord, 0, len(report.Errors))
	for _, e := range report.Errors {
		switch e := e.(type) {
		case linkerr.ExternalLinkage:
			records = append(records, scanRecord{Kind: "external", Library: e.Library(), Target: e.ActualTarget})
		case linkerr.BrokenLinkage:
			records = append(records, scanRecord{Kind: "broken", Library: e.Library()})
		}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to encode records: %w", err)
		}
	case "pretty":
		for _, rec := range records {
			if rec.Kind == "external" {
				fmt.Fprintf(os.Stdout, "external %s => %s\n", rec.Library, rec.Target)
			} else {
				fmt.Fprintf(os.Stdout, "broken   %s\n", rec.Library)
			}
		}
		if len(records) == 0 {
			fmt.Fprintf(os.Stdout, "no linkage records in %d artifacts\n", len(report.Artifacts))
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}

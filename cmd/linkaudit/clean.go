package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"linkaudit/internal/scan"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the scan result cache",
	Long:  "Remove the on-disk cache of per-artifact scan results. The next check re-resolves every artifact from scratch.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func runClean(_ *cobra.Command, _ []string) error {
	cache, err := scan.OpenCache("linkaudit")
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to drop cache: %w", err)
	}
	_, _ = fmt.Fprintln(os.Stdout, "scan cache removed")
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cstrict/internal/report"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] dir",
	Short: "Audit C sources and rewrite the fixable findings",
	Args:  cobra.ExactArgs(1),
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().Bool("dry-run", false, "show what would change without writing files")
}

func runFix(cmd *cobra.Command, args []string) error {
	res, timer, err := runAudit(cmd, args[0], true)
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	written := 0
	for _, fr := range res.Files {
		if fr.Buffer == nil {
			continue
		}
		if dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "would fix %s\n", fr.Path)
			continue
		}
		mode := os.FileMode(0o644)
		if info, statErr := os.Stat(fr.Path); statErr == nil {
			mode = info.Mode()
		}
		if err := os.WriteFile(fr.Path, fr.Buffer, mode); err != nil {
			return fmt.Errorf("write %s: %w", fr.Path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "fixed %s\n", fr.Path)
		written++
	}
	if written == 0 && !dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing to fix")
	}

	report.Pretty(cmd.OutOrStdout(), res.Audit, report.PrettyOpts{
		Color: useColor(cmd, os.Stdout),
	})
	printTimings(cmd, timer)

	if !res.Audit.Pass {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errAuditFailed
	}
	return nil
}

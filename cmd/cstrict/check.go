package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cstrict/internal/driver"
	"cstrict/internal/observ"
	"cstrict/internal/report"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] dir",
	Short: "Audit C sources and print the checklist",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().Bool("findings", true, "list individual findings before the checklist")
	checkCmd.Flags().Int("max-findings", 0, "cap listed findings per file (0 = unlimited)")
}

var errAuditFailed = errors.New("audit failed")

func runCheck(cmd *cobra.Command, args []string) error {
	res, timer, err := runAudit(cmd, args[0], false)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		if err := report.WriteJSON(os.Stdout, res.Audit); err != nil {
			return err
		}
	case "pretty":
		showFindings, _ := cmd.Flags().GetBool("findings")
		maxFindings, _ := cmd.Flags().GetInt("max-findings")
		report.Pretty(os.Stdout, res.Audit, report.PrettyOpts{
			Color:        useColor(cmd, os.Stdout),
			ShowFindings: showFindings,
			MaxFindings:  maxFindings,
		})
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	printTimings(cmd, timer)

	if !res.Audit.Pass {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errAuditFailed
	}
	return nil
}

// runAudit wires the shared persistent flags into one driver run.
func runAudit(cmd *cobra.Command, dir string, applyFixes bool) (*driver.RunResult, *observ.Timer, error) {
	cfg, err := loadRunConfig(cmd, dir)
	if err != nil {
		return nil, nil, err
	}

	jobs, _ := cmd.Root().PersistentFlags().GetInt("jobs")
	wantTimings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	noCache, _ := cmd.Root().PersistentFlags().GetBool("no-cache")

	opts := driver.Options{Config: cfg, Jobs: jobs, Fix: applyFixes}
	if wantTimings {
		opts.Timer = observ.NewTimer()
	}
	if !noCache && !applyFixes {
		if cache, err := driver.OpenDiskCache("cstrict"); err == nil {
			opts.Cache = cache
		}
	}

	res, err := driver.Run(cmd.Context(), dir, opts)
	if err != nil {
		return nil, nil, err
	}
	return res, opts.Timer, nil
}

func loadRunConfig(cmd *cobra.Command, dir string) (*driver.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path == "" {
		path = driver.FindConfig(dir)
	}

	cfg := driver.DefaultConfig()
	if path != "" {
		loaded, err := driver.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if maxDiags, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics"); maxDiags > 0 {
		cfg.MaxDiagnostics = maxDiags
	}
	return cfg, nil
}

func printTimings(cmd *cobra.Command, timer *observ.Timer) {
	if timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
}

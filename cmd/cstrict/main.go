package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cstrict/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "cstrict",
	Short: "C coding-standard auditor",
	Long:  `cstrict audits C sources against the coding standard and can rewrite the fixable findings in place.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("config", "", "path to cstrict.toml (default: <dir>/cstrict.toml if present)")
	rootCmd.PersistentFlags().Int("jobs", 0, "number of parallel workers (0 = all CPUs)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 0, "cap findings per file (0 = config default)")
	rootCmd.PersistentFlags().Bool("timings", false, "show phase timing information")
	rootCmd.PersistentFlags().Bool("no-cache", false, "disable the on-disk result cache")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the --color mode against the destination stream.
func useColor(cmd *cobra.Command, f *os.File) bool {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(f)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cstrict/internal/diag"
	"cstrict/internal/lexer"
	"cstrict/internal/report"
	"cstrict/internal/source"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.c",
	Short: "Dump the token stream of one C source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func runTokenize(cmd *cobra.Command, args []string) error {
	fileSet := source.NewFileSet()
	id, err := fileSet.Load(args[0])
	if err != nil {
		return fmt.Errorf("load %s: %w", args[0], err)
	}
	file := fileSet.Get(id)

	bag := diag.NewBag(200)
	toks := lexer.Tokenize(file, diag.BagReporter{Bag: bag})

	out := cmd.OutOrStdout()
	for _, t := range toks {
		start, _ := fileSet.Resolve(t.Span)
		fmt.Fprintf(out, "%4d:%-3d %-14s %q\n", start.Line, start.Col, t.Kind, t.Text)
	}

	if bag.Len() > 0 {
		bag.Sort()
		fr := report.BuildFile(fileSet, id, bag, nil)
		report.Pretty(os.Stderr, report.Merge([]report.FileReport{fr}), report.PrettyOpts{
			Color:        useColor(cmd, os.Stderr),
			ShowFindings: true,
		})
	}
	return nil
}

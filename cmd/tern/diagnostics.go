package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tern/internal/diag"
	"tern/internal/matchfile"
	"tern/internal/source"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	infoColor  = color.New(color.FgCyan)
	pathColor  = color.New(color.Faint)
)

func printDiagnostics(out io.Writer, fs *source.FileSet, bag *diag.Bag) {
	bag.SortStable()
	for _, d := range bag.Items() {
		var label string
		switch d.Severity {
		case diag.SevError:
			label = errorColor.Sprint("error")
		case diag.SevWarning:
			label = warnColor.Sprint("warning")
		default:
			label = infoColor.Sprint("info")
		}
		loc := ""
		if f := fs.Get(d.Primary.File); f != nil {
			start, _ := fs.Resolve(d.Primary)
			loc = pathColor.Sprintf("%s:%d:%d: ", f.Path, start.Line, start.Col)
		}
		fmt.Fprintf(out, "%s%s[%s]: %s\n", loc, label, d.Code, d.Message)
		for _, n := range d.Notes {
			fmt.Fprintf(out, "  note: %s\n", n.Msg)
		}
	}
}

// loadMatchfile reads and resolves a matchfile, reporting diagnostics to the
// command's stderr. A document with errors aborts the command.
func loadMatchfile(cmd *cobra.Command, path string) (*matchfile.File, *source.FileSet, error) {
	maxDiags, _ := cmd.Flags().GetInt("max-diagnostics")
	if maxDiags <= 0 {
		maxDiags = 100
	}
	fs := source.NewFileSet()
	bag := diag.NewBag(maxDiags)
	f, err := matchfile.Load(fs, path, bag)
	if bag.Len() > 0 {
		printDiagnostics(cmd.ErrOrStderr(), fs, bag)
	}
	if err != nil {
		return nil, nil, err
	}
	if bag.HasErrors() {
		return nil, nil, fmt.Errorf("%s: %d problem(s) found", path, bag.Len())
	}
	return f, fs, nil
}

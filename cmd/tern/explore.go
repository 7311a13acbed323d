package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"tern/internal/driver"
	"tern/internal/ui"
)

var (
	exploreBackend   string
	exploreHeuristic string
)

func init() {
	exploreCmd.Flags().StringVar(&exploreBackend, "backend", "direct", "code generation backend (direct|shared)")
	exploreCmd.Flags().StringVar(&exploreHeuristic, "heuristic", "left", "column selection heuristic (left|prefix)")
}

var exploreCmd = &cobra.Command{
	Use:   "explore [flags] <matchfile>",
	Short: "Browse compiled decision trees interactively",
	Long:  "Compile a matchfile and open its decision trees in an interactive outline viewer.",
	Args:  cobra.ExactArgs(1),
	RunE:  exploreExecution,
}

func exploreExecution(cmd *cobra.Command, args []string) error {
	if !isTerminal(os.Stdout) {
		return fmt.Errorf("explore needs an interactive terminal; use build --emit-ir for plain output")
	}

	opts, err := batchOptions(exploreBackend, exploreHeuristic, 0)
	if err != nil {
		return err
	}

	f, _, err := loadMatchfile(cmd, args[0])
	if err != nil {
		return err
	}

	results, err := driver.CompileFile(cmd.Context(), f, opts)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("%s has no match blocks", args[0])
	}

	entries := make([]ui.Entry, len(results))
	for i, res := range results {
		entries[i] = ui.Entry{Name: fmt.Sprintf("%s (%s)", res.Name, res.Backend), Tree: res.Tree}
	}

	title := filepath.Base(args[0])
	p := tea.NewProgram(ui.NewExplorer(title, entries), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("explorer: %w", err)
	}
	return nil
}

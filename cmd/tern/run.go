package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tern/internal/diag"
	"tern/internal/driver"
	"tern/internal/ir"
	"tern/internal/matchfile"
	"tern/internal/source"
)

var (
	runBackend   string
	runHeuristic string
	runMatch     string
	runBinds     []string
)

func init() {
	runCmd.Flags().StringVar(&runBackend, "backend", "direct", "code generation backend (direct|shared)")
	runCmd.Flags().StringVar(&runHeuristic, "heuristic", "left", "column selection heuristic (left|prefix)")
	runCmd.Flags().StringVar(&runMatch, "match", "", "run only the named match block")
	runCmd.Flags().StringArrayVar(&runBinds, "bind", nil, "bind a local for evaluation, e.g. --bind xs='Cons(1, Nil)'")
}

var runCmd = &cobra.Command{
	Use:   "run [flags] <matchfile>",
	Short: "Compile a matchfile and evaluate its matches",
	Long:  "Compile the match blocks of a matchfile and evaluate each compiled tree under the given bindings.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExecution,
}

func runExecution(cmd *cobra.Command, args []string) error {
	opts, err := batchOptions(runBackend, runHeuristic, 0)
	if err != nil {
		return err
	}

	f, fs, err := loadMatchfile(cmd, args[0])
	if err != nil {
		return err
	}
	if runMatch != "" {
		kept := f.Matches[:0:0]
		for _, m := range f.Matches {
			if m.Name == runMatch {
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 {
			return fmt.Errorf("no match block named %q in %s", runMatch, args[0])
		}
		f.Matches = kept
	}

	env, err := bindEnv(cmd, f, fs, runBinds)
	if err != nil {
		return err
	}

	results, err := driver.CompileFile(cmd.Context(), f, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, res := range results {
		val, err := ir.Eval(res.Tree, env)
		if err != nil {
			var me *ir.MatchError
			if errors.As(err, &me) {
				fmt.Fprintf(out, "%s: no match: %s\n", res.Name, me.Msg)
				continue
			}
			return fmt.Errorf("evaluate %s: %w", res.Name, err)
		}
		fmt.Fprintf(out, "%s = %s\n", res.Name, val)
	}
	return nil
}

// bindEnv parses every --bind value as an expression against the document's
// constructor universe and evaluates it to a runtime value. Bind expressions
// are closed; they cannot refer to other binds.
func bindEnv(cmd *cobra.Command, f *matchfile.File, fs *source.FileSet, binds []string) (*ir.Env, error) {
	var env *ir.Env
	for _, b := range binds {
		name, text, ok := strings.Cut(b, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("bad --bind %q: want name=expression", b)
		}
		bag := diag.NewBag(16)
		e := f.ParseSnippet(fs, "bind:"+name, text, bag)
		if bag.Len() > 0 {
			printDiagnostics(cmd.ErrOrStderr(), fs, bag)
		}
		if e == nil || bag.HasErrors() {
			return nil, fmt.Errorf("bad --bind %s", name)
		}
		val, err := ir.Eval(e, nil)
		if err != nil {
			return nil, fmt.Errorf("evaluate --bind %s: %w", name, err)
		}
		env = env.Bind(name, val)
	}
	return env, nil
}

// Package main implements the tern CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tern/internal/driver"
	"tern/internal/ir"
	"tern/internal/matchc"
	"tern/internal/observ"
)

var (
	buildBackend   string
	buildHeuristic string
	buildJobs      int
	buildEmitIR    bool
	buildOutput    string
	buildTimings   bool
)

func init() {
	buildCmd.Flags().StringVar(&buildBackend, "backend", "direct", "code generation backend (direct|shared)")
	buildCmd.Flags().StringVar(&buildHeuristic, "heuristic", "left", "column selection heuristic (left|prefix)")
	buildCmd.Flags().IntVar(&buildJobs, "jobs", 0, "maximum concurrent compilations (0 = GOMAXPROCS)")
	buildCmd.Flags().BoolVar(&buildEmitIR, "emit-ir", false, "print the compiled IR of every match")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "write compiled artifacts to a bundle file")
	buildCmd.Flags().BoolVar(&buildTimings, "timings", false, "report per-phase compilation timings")
}

var buildCmd = &cobra.Command{
	Use:   "build [flags] <matchfile|dir>",
	Short: "Compile the match blocks of a matchfile",
	Long:  "Compile every match block of a matchfile (or of every .toml file in a directory) into decision-tree IR.",
	Args:  cobra.ExactArgs(1),
	RunE:  buildExecution,
}

func buildExecution(cmd *cobra.Command, args []string) error {
	opts, err := batchOptions(buildBackend, buildHeuristic, buildJobs)
	if err != nil {
		return err
	}

	paths, err := matchfilePaths(args[0])
	if err != nil {
		return err
	}

	timer := observ.NewTimer()
	out := cmd.OutOrStdout()
	var results []driver.Result

	for _, path := range paths {
		stopLoad := timer.Phase("load " + filepath.Base(path))
		f, _, err := loadMatchfile(cmd, path)
		if err != nil {
			return err
		}
		stopLoad(fmt.Sprintf("%d match block(s)", len(f.Matches)))

		stopCompile := timer.Phase("compile " + filepath.Base(path))
		fileResults, err := driver.CompileFile(cmd.Context(), f, opts)
		if err != nil {
			return err
		}
		stopCompile("")
		results = append(results, fileResults...)
	}

	for _, res := range results {
		fmt.Fprintf(out, "%s: mode=%s backend=%s nodes=%d\n",
			res.Name, res.Mode, res.Backend, ir.CountNodes(res.Tree))
		if buildEmitIR {
			fmt.Fprintln(out, ir.Print(res.Tree))
		}
	}

	if buildOutput != "" {
		stopEncode := timer.Phase("encode")
		specs := make([]ir.ArtifactSpec, len(results))
		for i, res := range results {
			specs[i] = ir.ArtifactSpec{Name: res.Name, Backend: res.Backend.String(), Expr: res.Tree}
		}
		data, err := ir.EncodeArtifacts(specs)
		if err != nil {
			return fmt.Errorf("encode artifacts: %w", err)
		}
		if err := os.WriteFile(buildOutput, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", buildOutput, err)
		}
		stopEncode(fmt.Sprintf("%d byte(s)", len(data)))
		fmt.Fprintf(out, "wrote %d artifact(s) to %s\n", len(specs), buildOutput)
	}

	if buildTimings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	return nil
}

// matchfilePaths expands a file-or-directory argument. Directories yield
// their .toml files in name order.
func matchfilePaths(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		paths = append(paths, filepath.Join(path, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s contains no .toml matchfiles", path)
	}
	return paths, nil
}

// batchOptions resolves backend/heuristic/jobs flag values into driver
// options. Build, run, and explore all accept the same trio.
func batchOptions(backendName, heuristicName string, jobs int) (driver.Options, error) {
	backend, err := matchc.ParseBackend(backendName)
	if err != nil {
		return driver.Options{}, err
	}
	heuristic, err := matchc.ParseHeuristic(heuristicName)
	if err != nil {
		return driver.Options{}, err
	}
	return driver.Options{Backend: backend, Heuristic: heuristic, Jobs: jobs}, nil
}

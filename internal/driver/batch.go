// Package driver turns matchfile documents into compiled IR artifacts. It
// owns the batch orchestration: every match block compiles as its own job
// with its own compilation context, so fresh-name counters never contend or
// collide across jobs.
package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"tern/internal/ir"
	"tern/internal/matchc"
	"tern/internal/matchfile"
)

// Options configures a batch compilation.
type Options struct {
	Backend   matchc.Backend
	Heuristic matchc.Heuristic
	// Jobs caps concurrent compilations; <= 0 means GOMAXPROCS.
	Jobs int
}

// Result is one compiled match block.
type Result struct {
	Name    string
	Mode    matchfile.Mode
	Backend matchc.Backend
	Tree    *ir.Expr
}

// CompileFile compiles every match block of a resolved matchfile. Results
// come back in document order regardless of scheduling. A block's own
// backend/heuristic settings override the batch options.
func CompileFile(ctx context.Context, f *matchfile.File, opts Options) ([]Result, error) {
	if len(f.Matches) == 0 {
		return nil, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(f.Matches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(f.Matches)))
	for i, m := range f.Matches {
		i, m := i, m
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := CompileMatch(m, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CompileMatch compiles one match block with a fresh context.
func CompileMatch(m *matchfile.Match, opts Options) (Result, error) {
	backend := opts.Backend
	if m.Backend != "" {
		b, err := matchc.ParseBackend(m.Backend)
		if err != nil {
			return Result{}, fmt.Errorf("driver: match %s: %w", m.Name, err)
		}
		backend = b
	}
	heuristic := opts.Heuristic
	if m.Heuristic != "" {
		h, err := matchc.ParseHeuristic(m.Heuristic)
		if err != nil {
			return Result{}, fmt.Errorf("driver: match %s: %w", m.Name, err)
		}
		heuristic = h
	}

	msg := m.Fail
	if msg == "" {
		msg = fmt.Sprintf("match %s: no clause matched", m.Name)
	}
	fail := func() *ir.Expr {
		return &ir.Expr{Kind: ir.ExprRaise, Data: ir.RaiseData{Msg: msg}}
	}

	cc := matchc.NewCtx(matchc.Options{Backend: backend, Heuristic: heuristic})
	var (
		tree *ir.Expr
		err  error
	)
	switch m.Mode {
	case matchfile.ModeSingle:
		tree, err = cc.Match(m.Args[0], m.Clauses, fail)
	case matchfile.ModeAll:
		tree, err = cc.MatchAll(m.Args, m.Clauses, fail)
	case matchfile.ModeFun:
		tree, err = cc.MatchFun(m.Params, m.Clauses, fail)
	default:
		err = fmt.Errorf("driver: match %s: unknown mode %v", m.Name, m.Mode)
	}
	if err != nil {
		return Result{}, fmt.Errorf("driver: match %s: %w", m.Name, err)
	}
	return Result{Name: m.Name, Mode: m.Mode, Backend: backend, Tree: tree}, nil
}

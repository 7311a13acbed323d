// Package matchc compiles prioritized structured-pattern clauses into
// decision procedures expressed in the target IR. The compiler factors
// shared tests across rows, eliminates structural sugar (aliases, variable
// bindings, or-patterns, partial records), and threads guard conditions and
// fallthrough through labeled static jumps so that first-matching-row-wins
// semantics are preserved exactly.
package matchc

import (
	"fmt"

	"fortio.org/safecast"

	"tern/internal/ir"
)

// Backend selects the output strategy.
type Backend uint8

const (
	// BackendDirect materializes IR immediately per leaf; identical
	// continuations may be duplicated across sibling branches.
	BackendDirect Backend = iota
	// BackendShared hash-conses structurally identical subtrees into a DAG
	// and emits each distinct subtree once.
	BackendShared
)

func (b Backend) String() string {
	if b == BackendShared {
		return "shared"
	}
	return "direct"
}

// ParseBackend parses a backend name from configuration.
func ParseBackend(s string) (Backend, error) {
	switch s {
	case "direct":
		return BackendDirect, nil
	case "shared":
		return BackendShared, nil
	default:
		return BackendDirect, fmt.Errorf("matchc: unknown backend %q (want direct or shared)", s)
	}
}

// Heuristic selects the next-column policy. Any choice is semantics
// preserving; it only influences generated code size and depth.
type Heuristic uint8

const (
	// HeurLeft always tests the leftmost refutable column.
	HeurLeft Heuristic = iota
	// HeurPrefix tests the column with the longest prefix of rows carrying a
	// refutable head, which tends to shrink the tree.
	HeurPrefix
)

func (h Heuristic) String() string {
	if h == HeurPrefix {
		return "prefix"
	}
	return "left"
}

// ParseHeuristic parses a heuristic name from configuration.
func ParseHeuristic(s string) (Heuristic, error) {
	switch s {
	case "left":
		return HeurLeft, nil
	case "prefix":
		return HeurPrefix, nil
	default:
		return HeurLeft, fmt.Errorf("matchc: unknown heuristic %q (want left or prefix)", s)
	}
}

// Options configures one compilation context.
type Options struct {
	Backend   Backend
	Heuristic Heuristic
}

// Ctx is an explicit compilation context: it owns the fresh-identifier and
// fresh-label counters for one compilation job. Contexts are not safe for
// concurrent use; concurrent jobs each get their own Ctx so identifiers
// never collide across jobs.
type Ctx struct {
	opts      Options
	nextLocal uint32
	nextLabel uint32
}

// NewCtx returns a fresh compilation context.
func NewCtx(opts Options) *Ctx {
	return &Ctx{opts: opts}
}

// Options returns the context configuration.
func (c *Ctx) Options() Options { return c.opts }

// freshLocal mints a local name that cannot collide with user bindings
// (user identifiers never contain '$').
func (c *Ctx) freshLocal(hint string) string {
	raw, err := safecast.Conv[int32](c.nextLocal)
	if err != nil {
		panic(fmt.Errorf("matchc: local counter overflow: %w", err))
	}
	c.nextLocal++
	return fmt.Sprintf("%s$%d", hint, raw)
}

// freshLabel mints a static jump label unique within this context.
func (c *Ctx) freshLabel() ir.LabelID {
	raw, err := safecast.Conv[int32](c.nextLabel + 1)
	if err != nil {
		panic(fmt.Errorf("matchc: label counter overflow: %w", err))
	}
	c.nextLabel++
	return ir.LabelID(raw)
}

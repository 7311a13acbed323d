// Package matchfile reads the TOML input format that drives the match
// compiler end to end: constructor universes, record shapes, and match
// blocks whose patterns, guards, and results are written in a small textual
// grammar. It is an input fixture format, not a language frontend.
package matchfile

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"tern/internal/diag"
	"tern/internal/ir"
	"tern/internal/pat"
	"tern/internal/source"
)

// Mode selects the compilation entry point for one match block.
type Mode uint8

const (
	// ModeSingle matches one scrutinee expression.
	ModeSingle Mode = iota
	// ModeAll matches several argument expressions simultaneously.
	ModeAll
	// ModeFun dispatches over already-bound function parameters.
	ModeFun
)

func (m Mode) String() string {
	switch m {
	case ModeAll:
		return "all"
	case ModeFun:
		return "fun"
	default:
		return "single"
	}
}

// ParseMode parses a mode name; the empty string defaults to single.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "single":
		return ModeSingle, nil
	case "all":
		return ModeAll, nil
	case "fun":
		return ModeFun, nil
	default:
		return ModeSingle, fmt.Errorf("matchfile: unknown mode %q (want single, all, or fun)", s)
	}
}

// Match is one resolved [[match]] block.
type Match struct {
	Name    string
	Mode    Mode
	Args    []*ir.Expr // argument expressions (single: exactly one; unused for fun)
	Params  []string   // formal parameter names (fun only)
	Clauses []pat.Clause

	// Backend, Heuristic, and Fail are raw configuration passed through to
	// the driver; empty means the driver default.
	Backend   string
	Heuristic string
	Fail      string
}

// File is one fully resolved matchfile document.
type File struct {
	ID      source.FileID
	TagSets []*pat.TagSet
	Shapes  []*pat.RecordShape
	Matches []*Match
}

type rawDoc struct {
	TagSets []rawTagSet `toml:"tagset"`
	Records []rawRecord `toml:"record"`
	Matches []rawMatch  `toml:"match"`
}

type rawTagSet struct {
	Name string   `toml:"name"`
	Open bool     `toml:"open"`
	Tags []rawTag `toml:"tag"`
}

type rawTag struct {
	Name  string `toml:"name"`
	Arity int    `toml:"arity"`
}

type rawRecord struct {
	Name   string   `toml:"name"`
	Fields []string `toml:"fields"`
}

type rawMatch struct {
	Name      string      `toml:"name"`
	Mode      string      `toml:"mode"`
	Args      []string    `toml:"args"`
	Backend   string      `toml:"backend"`
	Heuristic string      `toml:"heuristic"`
	Fail      string      `toml:"fail"`
	Clauses   []rawClause `toml:"clause"`
}

type rawClause struct {
	Pattern string `toml:"pattern"`
	Guard   string `toml:"guard"`
	Result  string `toml:"result"`
}

// Load reads and resolves a matchfile from disk. Semantic problems land in
// bag; the error return covers I/O and TOML-level failures only.
func Load(fs *source.FileSet, path string, bag *diag.Bag) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("matchfile: %w", err)
	}
	return Parse(fs, path, data, bag)
}

// Parse resolves an in-memory matchfile document.
func Parse(fs *source.FileSet, name string, data []byte, bag *diag.Bag) (*File, error) {
	id := fs.AddVirtual(name, data)
	docSpan := source.Span{File: id, Start: 0, End: uint32(len(data))}

	var raw rawDoc
	if _, err := toml.Decode(string(data), &raw); err != nil {
		bag.AddError(diag.FileBadSchema, docSpan, fmt.Sprintf("decode %s: %v", name, err))
		return nil, fmt.Errorf("matchfile: decode %s: %w", name, err)
	}

	out := &File{ID: id}
	tags := map[string]*pat.TagSet{}
	shapes := map[string]*pat.RecordShape{}

	for _, rs := range raw.TagSets {
		if rs.Name == "" || len(rs.Tags) == 0 {
			bag.AddError(diag.FileBadTagset, docSpan, fmt.Sprintf("tagset %q needs a name and at least one tag", rs.Name))
			continue
		}
		set := &pat.TagSet{Name: rs.Name, Open: rs.Open}
		for _, rt := range rs.Tags {
			if _, dup := tags[rt.Name]; dup {
				bag.AddError(diag.FileDuplicateTag, docSpan, fmt.Sprintf("constructor %q declared twice", rt.Name))
				continue
			}
			set.Tags = append(set.Tags, pat.TagDef{Name: rt.Name, Arity: rt.Arity})
			tags[rt.Name] = set
		}
		out.TagSets = append(out.TagSets, set)
	}

	for _, rr := range raw.Records {
		if rr.Name == "" || len(rr.Fields) == 0 {
			bag.AddError(diag.FileBadSchema, docSpan, fmt.Sprintf("record %q needs a name and fields", rr.Name))
			continue
		}
		if _, dup := shapes[rr.Name]; dup {
			bag.AddError(diag.FileBadSchema, docSpan, fmt.Sprintf("record shape %q declared twice", rr.Name))
			continue
		}
		shape := &pat.RecordShape{Name: rr.Name, Fields: rr.Fields}
		shapes[rr.Name] = shape
		out.Shapes = append(out.Shapes, shape)
	}

	for mi := range raw.Matches {
		if m := resolveMatch(fs, name, &raw.Matches[mi], mi, bag, tags, shapes, docSpan); m != nil {
			out.Matches = append(out.Matches, m)
		}
	}
	return out, nil
}

func resolveMatch(fs *source.FileSet, doc string, rm *rawMatch, index int, bag *diag.Bag,
	tags map[string]*pat.TagSet, shapes map[string]*pat.RecordShape, docSpan source.Span) *Match {

	label := rm.Name
	if label == "" {
		label = fmt.Sprintf("match#%d", index)
	}
	mode, err := ParseMode(rm.Mode)
	if err != nil {
		bag.AddError(diag.FileBadMode, docSpan, fmt.Sprintf("%s: %v", label, err))
		return nil
	}
	if len(rm.Clauses) == 0 {
		bag.AddError(diag.FileNoClauses, docSpan, fmt.Sprintf("%s: a match needs at least one clause", label))
		return nil
	}

	out := &Match{
		Name:      label,
		Mode:      mode,
		Backend:   rm.Backend,
		Heuristic: rm.Heuristic,
		Fail:      rm.Fail,
	}

	switch mode {
	case ModeSingle:
		if len(rm.Args) != 1 {
			bag.AddError(diag.SynArgCount, docSpan, fmt.Sprintf("%s: single-mode match takes exactly one argument, got %d", label, len(rm.Args)))
			return nil
		}
	case ModeAll:
		if len(rm.Args) == 0 {
			bag.AddError(diag.SynArgCount, docSpan, fmt.Sprintf("%s: all-mode match needs at least one argument", label))
			return nil
		}
	case ModeFun:
		if len(rm.Args) == 0 {
			bag.AddError(diag.SynArgCount, docSpan, fmt.Sprintf("%s: fun-mode match needs at least one parameter name", label))
			return nil
		}
	}

	for ai, text := range rm.Args {
		snippet := fmt.Sprintf("%s:%s.arg%d", doc, label, ai)
		if mode == ModeFun {
			p := newParser(fs, snippet, text, bag, tags, shapes)
			param := p.ident()
			if param == "" || isUpperIdent(param) {
				p.errorf(diag.SynUnexpectedToken, 0, "%s: parameter %d must be a lowercase identifier", label, ai)
				return nil
			}
			if !p.atEOF("parameter name") {
				return nil
			}
			out.Params = append(out.Params, param)
			continue
		}
		p := newParser(fs, snippet, text, bag, tags, shapes)
		arg := p.expr()
		if arg == nil || !p.atEOF("argument expression") {
			return nil
		}
		out.Args = append(out.Args, arg)
	}

	// Names in scope for every clause's guard and result beyond the
	// clause's own bindings: the formal parameters, or whatever locals the
	// argument expressions read (supplied by the caller's environment).
	outer := map[string]struct{}{}
	for _, param := range out.Params {
		outer[param] = struct{}{}
	}
	for _, arg := range out.Args {
		for _, name := range ir.FreeLocals(arg) {
			outer[name] = struct{}{}
		}
	}

	width := 1
	if mode == ModeFun {
		width = len(out.Params)
	}
	for ci, rc := range rm.Clauses {
		clause, ok := resolveClause(fs, doc, label, ci, width, &rc, bag, tags, shapes, outer)
		if !ok {
			return nil
		}
		out.Clauses = append(out.Clauses, clause)
	}
	return out
}

func resolveClause(fs *source.FileSet, doc, label string, index, width int, rc *rawClause,
	bag *diag.Bag, tags map[string]*pat.TagSet, shapes map[string]*pat.RecordShape,
	outer map[string]struct{}) (pat.Clause, bool) {

	prefix := fmt.Sprintf("%s:%s.clause%d", doc, label, index)
	var clause pat.Clause

	pp := newParser(fs, prefix+".pattern", rc.Pattern, bag, tags, shapes)
	head := pp.pattern()
	if head == nil || !pp.atEOF("pattern") {
		return clause, false
	}
	clause.Span = head.Span

	if width == 1 {
		clause.Pats = []*pat.Pattern{head}
	} else {
		// Fun-mode clauses write one tuple pattern per row; it supplies one
		// column pattern per parameter.
		if head.Kind != pat.Tuple || len(head.Elems) != width {
			bag.AddError(diag.SynArgCount, head.Span,
				fmt.Sprintf("%s clause %d: want a %d-ary tuple pattern, one component per parameter", label, index, width))
			return clause, false
		}
		clause.Pats = head.Elems
	}

	if seen := map[string]int{}; countDuplicateBindings(clause.Pats, seen) {
		bag.AddError(diag.SynDuplicateBinding, head.Span,
			fmt.Sprintf("%s clause %d: a pattern binds the same name twice", label, index))
		return clause, false
	}

	for _, p := range clause.Pats {
		if name, ok := orBindingsAgree(p); !ok {
			bag.AddError(diag.SynOrBindingSkew, head.Span,
				fmt.Sprintf("%s clause %d: or-alternatives must bind the same names, %q is bound by only one side", label, index, name))
			return clause, false
		}
	}

	scope := make(map[string]struct{}, len(outer))
	for name := range outer {
		scope[name] = struct{}{}
	}
	for _, name := range clause.BoundVars() {
		scope[name] = struct{}{}
	}

	if rc.Guard != "" {
		gp := newParser(fs, prefix+".guard", rc.Guard, bag, tags, shapes)
		clause.Guard = gp.expr()
		if clause.Guard == nil || !gp.atEOF("guard") {
			return clause, false
		}
		if name, ok := onlyKnownLocals(clause.Guard, scope); !ok {
			bag.AddError(diag.SynUnboundName, clause.Guard.Span,
				fmt.Sprintf("%s clause %d: guard reads %q, which this clause does not bind", label, index, name))
			return clause, false
		}
	}

	rp := newParser(fs, prefix+".result", rc.Result, bag, tags, shapes)
	clause.Body = rp.expr()
	if clause.Body == nil || !rp.atEOF("result") {
		return clause, false
	}
	if name, ok := onlyKnownLocals(clause.Body, scope); !ok {
		bag.AddError(diag.SynUnboundName, clause.Body.Span,
			fmt.Sprintf("%s clause %d: result reads %q, which this clause does not bind", label, index, name))
		return clause, false
	}
	return clause, true
}

// ParseSnippet parses one standalone expression against the document's tag
// universes and record shapes. The CLI uses it to read input values.
func (f *File) ParseSnippet(fs *source.FileSet, name, text string, bag *diag.Bag) *ir.Expr {
	tags := map[string]*pat.TagSet{}
	for _, set := range f.TagSets {
		for _, td := range set.Tags {
			tags[td.Name] = set
		}
	}
	shapes := map[string]*pat.RecordShape{}
	for _, shape := range f.Shapes {
		shapes[shape.Name] = shape
	}
	p := newParser(fs, name, text, bag, tags, shapes)
	e := p.expr()
	if e == nil || !p.atEOF("expression") {
		return nil
	}
	return e
}

// countDuplicateBindings reports whether any variable is bound twice within
// one row. Or-alternatives rebind the same names legitimately, so each
// alternative is checked on its own.
func countDuplicateBindings(pats []*pat.Pattern, seen map[string]int) bool {
	for _, p := range pats {
		if dupBindings(p, seen) {
			return true
		}
	}
	return false
}

// orBindingsAgree checks that every or-pattern in p binds the same name set
// on both sides. The compiler's exit wiring captures one alternative's
// bindings and relies on the other side supplying values for the same names;
// a skewed alternative would leave exit arguments unbound at runtime. The
// returned name is bound by exactly one side of the offending or-pattern.
func orBindingsAgree(p *pat.Pattern) (string, bool) {
	if p == nil {
		return "", true
	}
	switch p.Kind {
	case pat.Alias:
		return orBindingsAgree(p.Sub)
	case pat.Or:
		if name, ok := sameBindings(p.Left, p.Right); !ok {
			return name, false
		}
		if name, ok := orBindingsAgree(p.Left); !ok {
			return name, false
		}
		return orBindingsAgree(p.Right)
	case pat.Tuple, pat.Ctor:
		for _, el := range p.Elems {
			if name, ok := orBindingsAgree(el); !ok {
				return name, false
			}
		}
	case pat.Record:
		for _, f := range p.Fields {
			if name, ok := orBindingsAgree(f.Pat); !ok {
				return name, false
			}
		}
	}
	return "", true
}

func sameBindings(left, right *pat.Pattern) (string, bool) {
	lv, rv := left.BoundVars(), right.BoundVars()
	lset := make(map[string]struct{}, len(lv))
	for _, name := range lv {
		lset[name] = struct{}{}
	}
	rset := make(map[string]struct{}, len(rv))
	for _, name := range rv {
		rset[name] = struct{}{}
	}
	for _, name := range lv {
		if _, ok := rset[name]; !ok {
			return name, false
		}
	}
	for _, name := range rv {
		if _, ok := lset[name]; !ok {
			return name, false
		}
	}
	return "", true
}

// onlyKnownLocals checks that every local e reads is in scope; guards and
// results may reference only the clause's bindings plus the match's
// parameters or argument inputs.
func onlyKnownLocals(e *ir.Expr, scope map[string]struct{}) (string, bool) {
	for _, name := range ir.FreeLocals(e) {
		if _, ok := scope[name]; !ok {
			return name, false
		}
	}
	return "", true
}

func dupBindings(p *pat.Pattern, seen map[string]int) bool {
	if p == nil {
		return false
	}
	switch p.Kind {
	case pat.Var, pat.Alias:
		seen[p.Name]++
		if seen[p.Name] > 1 {
			return true
		}
		return dupBindings(p.Sub, seen)
	case pat.Or:
		// Each alternative gets a fresh view; the same name on both sides is
		// the point of an or-pattern.
		left := map[string]int{}
		for k, v := range seen {
			left[k] = v
		}
		if dupBindings(p.Left, left) {
			return true
		}
		return dupBindings(p.Right, seen)
	case pat.Tuple, pat.Ctor:
		for _, el := range p.Elems {
			if dupBindings(el, seen) {
				return true
			}
		}
	case pat.Record:
		for _, f := range p.Fields {
			if dupBindings(f.Pat, seen) {
				return true
			}
		}
	}
	return false
}

// Package pat defines the structured-pattern model consumed by the match
// compiler: patterns, constructor universes (tag sets), record shapes, and
// prioritized clauses.
package pat

import (
	"strings"

	"tern/internal/ir"
	"tern/internal/source"
)

// Kind enumerates pattern kinds.
type Kind uint8

const (
	// Wildcard matches anything and binds nothing.
	Wildcard Kind = iota
	// Var matches anything and binds the value to Name.
	Var
	// Alias binds the value to Name and keeps matching Sub.
	Alias
	// Or matches if either alternative matches. Both alternatives bind the
	// same set of variable names.
	Or
	// Tuple matches a tuple of exactly len(Elems) components.
	Tuple
	// Record matches a record of the given Shape; Fields may mention only a
	// subset of the shape's fields.
	Record
	// Ctor matches a tagged value carrying Tag from the universe Tags.
	Ctor
	// Const matches a value equal to Val.
	Const
)

func (k Kind) String() string {
	switch k {
	case Wildcard:
		return "Wildcard"
	case Var:
		return "Var"
	case Alias:
		return "Alias"
	case Or:
		return "Or"
	case Tuple:
		return "Tuple"
	case Record:
		return "Record"
	case Ctor:
		return "Ctor"
	case Const:
		return "Const"
	default:
		return "Unknown"
	}
}

// Pattern is one immutable pattern node.
type Pattern struct {
	Kind Kind
	Span source.Span

	Name        string       // Var, Alias
	Sub         *Pattern     // Alias
	Left, Right *Pattern     // Or
	Elems       []*Pattern   // Tuple elements, Ctor arguments
	Shape       *RecordShape // Record
	Fields      []FieldPat   // Record (possibly partial)
	Tags        *TagSet      // Ctor
	Tag         string       // Ctor
	Val         ir.ConstVal  // Const
}

// FieldPat is one mentioned field of a record pattern.
type FieldPat struct {
	Name string
	Pat  *Pattern
}

func Wild() *Pattern                 { return &Pattern{Kind: Wildcard} }
func VarPat(name string) *Pattern    { return &Pattern{Kind: Var, Name: name} }
func ConstPat(v ir.ConstVal) *Pattern { return &Pattern{Kind: Const, Val: v} }

func AliasPat(sub *Pattern, name string) *Pattern {
	return &Pattern{Kind: Alias, Sub: sub, Name: name}
}

func OrPat(left, right *Pattern) *Pattern {
	return &Pattern{Kind: Or, Left: left, Right: right}
}

func TuplePat(elems ...*Pattern) *Pattern {
	return &Pattern{Kind: Tuple, Elems: elems}
}

func RecordPat(shape *RecordShape, fields ...FieldPat) *Pattern {
	return &Pattern{Kind: Record, Shape: shape, Fields: fields}
}

func CtorPat(tags *TagSet, tag string, args ...*Pattern) *Pattern {
	return &Pattern{Kind: Ctor, Tags: tags, Tag: tag, Elems: args}
}

// BoundVars returns the variable names the pattern binds, in first-occurrence
// order, without duplicates. For or-patterns both alternatives bind the same
// logical set, so the left alternative's order is used.
func (p *Pattern) BoundVars() []string {
	var out []string
	seen := map[string]struct{}{}
	collectVars(p, &out, seen)
	return out
}

func collectVars(p *Pattern, out *[]string, seen map[string]struct{}) {
	if p == nil {
		return
	}
	switch p.Kind {
	case Var, Alias:
		if _, dup := seen[p.Name]; !dup {
			seen[p.Name] = struct{}{}
			*out = append(*out, p.Name)
		}
		collectVars(p.Sub, out, seen)
	case Or:
		collectVars(p.Left, out, seen)
	case Tuple, Ctor:
		for _, el := range p.Elems {
			collectVars(el, out, seen)
		}
	case Record:
		for _, f := range p.Fields {
			collectVars(f.Pat, out, seen)
		}
	}
}

func (p *Pattern) String() string {
	if p == nil {
		return "<nil>"
	}
	switch p.Kind {
	case Wildcard:
		return "_"
	case Var:
		return p.Name
	case Alias:
		return p.Sub.String() + " as " + p.Name
	case Or:
		return p.Left.String() + " | " + p.Right.String()
	case Tuple:
		return "(" + joinPats(p.Elems) + ")"
	case Record:
		parts := make([]string, len(p.Fields))
		for i, f := range p.Fields {
			parts[i] = f.Name + ": " + f.Pat.String()
		}
		name := ""
		if p.Shape != nil {
			name = p.Shape.Name
		}
		return name + "{" + strings.Join(parts, ", ") + "}"
	case Ctor:
		if len(p.Elems) == 0 {
			return p.Tag
		}
		return p.Tag + "(" + joinPats(p.Elems) + ")"
	case Const:
		return p.Val.String()
	default:
		return "?"
	}
}

func joinPats(pats []*Pattern) string {
	parts := make([]string, len(pats))
	for i, el := range pats {
		parts[i] = el.String()
	}
	return strings.Join(parts, ", ")
}

// Package ir defines the target intermediate representation emitted by the
// match compiler: an expression tree with no remaining pattern-matching
// constructs, only tests, bindings, labeled jumps, and field projections.
//
// The representation follows the Kind + payload convention used across the
// compiler: a uint8 kind discriminates the Data payload type.
package ir

import (
	"golang.org/x/text/unicode/norm"

	"tern/internal/source"
)

// LabelID identifies a static jump target within one compiled match.
type LabelID uint32

// NoLabelID is the invalid label sentinel.
const NoLabelID LabelID = 0

// IsValid returns true if the label is valid (non-zero).
func (id LabelID) IsValid() bool { return id != NoLabelID }

// ExprKind enumerates IR expression kinds.
type ExprKind uint8

const (
	// ExprConst represents a literal constant.
	ExprConst ExprKind = iota
	// ExprLocal represents a reference to a bound local.
	ExprLocal
	// ExprLet binds a local for the scope of a body expression.
	ExprLet
	// ExprField projects one component out of a tagged, tuple, or record value.
	ExprField
	// ExprTuple constructs a tuple value.
	ExprTuple
	// ExprTag constructs a tagged value.
	ExprTag
	// ExprIf represents a conditional expression.
	ExprIf
	// ExprBinary represents a binary operation (guard arithmetic/comparison).
	ExprBinary
	// ExprSwitch dispatches on the discriminator of a value.
	ExprSwitch
	// ExprCatch introduces a labeled handler for static jumps in its body.
	ExprCatch
	// ExprExit jumps to the innermost enclosing catch with a matching label.
	ExprExit
	// ExprRaise aborts evaluation with a match failure.
	ExprRaise
)

// String returns a human-readable name for the expression kind.
func (k ExprKind) String() string {
	switch k {
	case ExprConst:
		return "Const"
	case ExprLocal:
		return "Local"
	case ExprLet:
		return "Let"
	case ExprField:
		return "Field"
	case ExprTuple:
		return "Tuple"
	case ExprTag:
		return "Tag"
	case ExprIf:
		return "If"
	case ExprBinary:
		return "Binary"
	case ExprSwitch:
		return "Switch"
	case ExprCatch:
		return "Catch"
	case ExprExit:
		return "Exit"
	case ExprRaise:
		return "Raise"
	default:
		return "Unknown"
	}
}

// Expr represents one IR expression node.
type Expr struct {
	Kind ExprKind
	Span source.Span
	Data ExprData
}

// ExprData is the interface for expression-specific payloads.
type ExprData interface {
	exprData()
}

// ConstKind enumerates constant kinds.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstBool
	ConstString
)

// ConstVal is an immediate constant. String constants are NFC-normalized so
// that visually identical literals compare equal.
type ConstVal struct {
	Kind ConstKind

	Int  int64
	Bool bool
	Str  string
}

// IntConst builds an integer constant.
func IntConst(v int64) ConstVal { return ConstVal{Kind: ConstInt, Int: v} }

// BoolConst builds a boolean constant.
func BoolConst(v bool) ConstVal { return ConstVal{Kind: ConstBool, Bool: v} }

// StringConst builds an NFC-normalized string constant.
func StringConst(s string) ConstVal {
	return ConstVal{Kind: ConstString, Str: norm.NFC.String(s)}
}

// Equal reports constant equality.
func (c ConstVal) Equal(other ConstVal) bool {
	if c.Kind != other.Kind {
		return false
	}
	switch c.Kind {
	case ConstInt:
		return c.Int == other.Int
	case ConstBool:
		return c.Bool == other.Bool
	case ConstString:
		return c.Str == other.Str
	}
	return false
}

// ConstData holds data for ExprConst.
type ConstData struct {
	Val ConstVal
}

func (ConstData) exprData() {}

// LocalData holds data for ExprLocal.
type LocalData struct {
	Name string
}

func (LocalData) exprData() {}

// LetData holds data for ExprLet.
type LetData struct {
	Name  string
	Value *Expr
	Body  *Expr
}

func (LetData) exprData() {}

// FieldData holds data for ExprField. Tag is the discriminator the base value
// is known to carry ("" for tuples and records); Name selects a record field
// by name and takes precedence over Index when non-empty.
type FieldData struct {
	Base  *Expr
	Tag   string
	Index int
	Name  string
}

func (FieldData) exprData() {}

// TupleData holds data for ExprTuple.
type TupleData struct {
	Elems []*Expr
}

func (TupleData) exprData() {}

// TagData holds data for ExprTag.
type TagData struct {
	Tag  string
	Args []*Expr
}

func (TagData) exprData() {}

// IfData holds data for ExprIf.
type IfData struct {
	Cond *Expr
	Then *Expr
	Else *Expr
}

func (IfData) exprData() {}

// BinOp enumerates binary operators usable in guards and actions.
type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	default:
		return "?"
	}
}

// BinaryData holds data for ExprBinary.
type BinaryData struct {
	Op    BinOp
	Left  *Expr
	Right *Expr
}

func (BinaryData) exprData() {}

// CaseKind distinguishes switch case tests.
type CaseKind uint8

const (
	// CaseTag tests the constructor tag of a tagged value.
	CaseTag CaseKind = iota
	// CaseConst tests equality against a constant.
	CaseConst
	// CaseTuple tests tuple arity. A tuple has exactly one shape, so a
	// switch with a CaseTuple case needs no default.
	CaseTuple
	// CaseRecord tests the record shape.
	CaseRecord
)

// CaseTest is the head test of one switch case.
type CaseTest struct {
	Kind   CaseKind
	Tag    string
	Arity  int
	Const  ConstVal
	Fields []string
}

// SwitchCase pairs a head test with its branch body.
type SwitchCase struct {
	Test CaseTest
	Body *Expr
}

// SwitchData holds data for ExprSwitch. Default is nil when the cases cover
// every possible discriminator.
type SwitchData struct {
	Value   *Expr
	Cases   []SwitchCase
	Default *Expr
}

func (SwitchData) exprData() {}

// CatchData holds data for ExprCatch. Evaluating Body normally yields the
// catch's value; an ExprExit targeting Label inside Body transfers control to
// Handler with Params bound to the exit arguments.
type CatchData struct {
	Body    *Expr
	Label   LabelID
	Params  []string
	Handler *Expr
}

func (CatchData) exprData() {}

// ExitData holds data for ExprExit.
type ExitData struct {
	Label LabelID
	Args  []*Expr
}

func (ExitData) exprData() {}

// RaiseData holds data for ExprRaise.
type RaiseData struct {
	Msg string
}

func (RaiseData) exprData() {}

package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders an expression as stable, indented text. The output is
// deterministic and used by tests and the CLI --emit-ir flag.
func Print(e *Expr) string {
	var b strings.Builder
	printExpr(&b, e, 0)
	b.WriteByte('\n')
	return b.String()
}

// Fingerprint renders an expression as a compact canonical line. Two
// structurally identical expressions always produce the same fingerprint.
func Fingerprint(e *Expr) string {
	var b strings.Builder
	fingerprintExpr(&b, e)
	return b.String()
}

func (c ConstVal) String() string {
	switch c.Kind {
	case ConstInt:
		return strconv.FormatInt(c.Int, 10)
	case ConstBool:
		return strconv.FormatBool(c.Bool)
	default:
		return strconv.Quote(c.Str)
	}
}

func (t CaseTest) String() string {
	switch t.Kind {
	case CaseTag:
		return fmt.Sprintf("tag %s/%d", t.Tag, t.Arity)
	case CaseConst:
		return "const " + t.Const.String()
	case CaseTuple:
		return fmt.Sprintf("tuple/%d", t.Arity)
	case CaseRecord:
		return "record {" + strings.Join(t.Fields, ", ") + "}"
	default:
		return "?"
	}
}

func printExpr(b *strings.Builder, e *Expr, depth int) {
	ind := strings.Repeat("  ", depth)
	if e == nil {
		b.WriteString(ind + "<nil>")
		return
	}
	switch e.Kind {
	case ExprConst:
		b.WriteString(ind + e.Data.(ConstData).Val.String())
	case ExprLocal:
		b.WriteString(ind + e.Data.(LocalData).Name)
	case ExprLet:
		d := e.Data.(LetData)
		b.WriteString(ind + "let " + d.Name + " = " + inline(d.Value) + " in\n")
		printExpr(b, d.Body, depth)
	case ExprField:
		b.WriteString(ind + inline(e))
	case ExprTuple, ExprTag, ExprBinary, ExprExit:
		b.WriteString(ind + inline(e))
	case ExprIf:
		d := e.Data.(IfData)
		b.WriteString(ind + "if " + inline(d.Cond) + " then\n")
		printExpr(b, d.Then, depth+1)
		b.WriteString("\n" + ind + "else\n")
		printExpr(b, d.Else, depth+1)
	case ExprSwitch:
		d := e.Data.(SwitchData)
		b.WriteString(ind + "switch " + inline(d.Value) + " {\n")
		for i := range d.Cases {
			b.WriteString(ind + "  case " + d.Cases[i].Test.String() + ":\n")
			printExpr(b, d.Cases[i].Body, depth+2)
			b.WriteByte('\n')
		}
		if d.Default != nil {
			b.WriteString(ind + "  default:\n")
			printExpr(b, d.Default, depth+2)
			b.WriteByte('\n')
		}
		b.WriteString(ind + "}")
	case ExprCatch:
		d := e.Data.(CatchData)
		b.WriteString(ind + "catch\n")
		printExpr(b, d.Body, depth+1)
		b.WriteString(fmt.Sprintf("\n%swith L%d(%s):\n", ind, d.Label, strings.Join(d.Params, ", ")))
		printExpr(b, d.Handler, depth+1)
	case ExprRaise:
		b.WriteString(ind + "raise " + strconv.Quote(e.Data.(RaiseData).Msg))
	default:
		b.WriteString(ind + "<?" + e.Kind.String() + ">")
	}
}

// inline renders compact single-line forms for leaf-ish expressions embedded
// in larger lines.
func inline(e *Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ExprConst:
		return e.Data.(ConstData).Val.String()
	case ExprLocal:
		return e.Data.(LocalData).Name
	case ExprField:
		d := e.Data.(FieldData)
		sel := strconv.Itoa(d.Index)
		if d.Name != "" {
			sel = d.Name
		}
		if d.Tag != "" {
			return fmt.Sprintf("%s.%s[%s]", inline(d.Base), d.Tag, sel)
		}
		return fmt.Sprintf("%s[%s]", inline(d.Base), sel)
	case ExprTuple:
		d := e.Data.(TupleData)
		return "(" + inlineList(d.Elems) + ")"
	case ExprTag:
		d := e.Data.(TagData)
		if len(d.Args) == 0 {
			return d.Tag
		}
		return d.Tag + "(" + inlineList(d.Args) + ")"
	case ExprBinary:
		d := e.Data.(BinaryData)
		return "(" + inline(d.Left) + " " + d.Op.String() + " " + inline(d.Right) + ")"
	case ExprExit:
		d := e.Data.(ExitData)
		return fmt.Sprintf("exit L%d(%s)", d.Label, inlineList(d.Args))
	case ExprRaise:
		return "raise " + strconv.Quote(e.Data.(RaiseData).Msg)
	default:
		// Structured forms fall back to the compact canonical rendering.
		return Fingerprint(e)
	}
}

func inlineList(exprs []*Expr) string {
	parts := make([]string, len(exprs))
	for i, ex := range exprs {
		parts[i] = inline(ex)
	}
	return strings.Join(parts, ", ")
}

func fingerprintExpr(b *strings.Builder, e *Expr) {
	if e == nil {
		b.WriteString("·")
		return
	}
	switch e.Kind {
	case ExprConst:
		b.WriteString(e.Data.(ConstData).Val.String())
	case ExprLocal:
		b.WriteString(e.Data.(LocalData).Name)
	case ExprLet:
		d := e.Data.(LetData)
		b.WriteString("(let " + d.Name + " ")
		fingerprintExpr(b, d.Value)
		b.WriteByte(' ')
		fingerprintExpr(b, d.Body)
		b.WriteByte(')')
	case ExprField:
		d := e.Data.(FieldData)
		b.WriteString("(fld " + d.Tag + "/" + d.Name + "/" + strconv.Itoa(d.Index) + " ")
		fingerprintExpr(b, d.Base)
		b.WriteByte(')')
	case ExprTuple:
		d := e.Data.(TupleData)
		b.WriteString("(tup")
		for _, el := range d.Elems {
			b.WriteByte(' ')
			fingerprintExpr(b, el)
		}
		b.WriteByte(')')
	case ExprTag:
		d := e.Data.(TagData)
		b.WriteString("(mk " + d.Tag)
		for _, a := range d.Args {
			b.WriteByte(' ')
			fingerprintExpr(b, a)
		}
		b.WriteByte(')')
	case ExprIf:
		d := e.Data.(IfData)
		b.WriteString("(if ")
		fingerprintExpr(b, d.Cond)
		b.WriteByte(' ')
		fingerprintExpr(b, d.Then)
		b.WriteByte(' ')
		fingerprintExpr(b, d.Else)
		b.WriteByte(')')
	case ExprBinary:
		d := e.Data.(BinaryData)
		b.WriteString("(" + d.Op.String() + " ")
		fingerprintExpr(b, d.Left)
		b.WriteByte(' ')
		fingerprintExpr(b, d.Right)
		b.WriteByte(')')
	case ExprSwitch:
		d := e.Data.(SwitchData)
		b.WriteString("(sw ")
		fingerprintExpr(b, d.Value)
		for i := range d.Cases {
			b.WriteString(" [" + d.Cases[i].Test.String() + " ")
			fingerprintExpr(b, d.Cases[i].Body)
			b.WriteByte(']')
		}
		if d.Default != nil {
			b.WriteString(" [default ")
			fingerprintExpr(b, d.Default)
			b.WriteByte(']')
		}
		b.WriteByte(')')
	case ExprCatch:
		d := e.Data.(CatchData)
		b.WriteString("(catch L" + strconv.Itoa(int(d.Label)) + "(" + strings.Join(d.Params, ",") + ") ")
		fingerprintExpr(b, d.Body)
		b.WriteByte(' ')
		fingerprintExpr(b, d.Handler)
		b.WriteByte(')')
	case ExprExit:
		d := e.Data.(ExitData)
		b.WriteString("(exit L" + strconv.Itoa(int(d.Label)))
		for _, a := range d.Args {
			b.WriteByte(' ')
			fingerprintExpr(b, a)
		}
		b.WriteByte(')')
	case ExprRaise:
		b.WriteString("(raise " + strconv.Quote(e.Data.(RaiseData).Msg) + ")")
	default:
		b.WriteString("(?" + e.Kind.String() + ")")
	}
}

package matchfile

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"tern/internal/diag"
	"tern/internal/ir"
	"tern/internal/pat"
	"tern/internal/source"
)

// parser is a recursive-descent parser over one embedded pattern or
// expression string. Each string is registered as its own virtual file so
// diagnostics point into the exact snippet.
type parser struct {
	file   source.FileID
	src    string
	pos    int
	bag    *diag.Bag
	tags   map[string]*pat.TagSet
	shapes map[string]*pat.RecordShape
}

func newParser(fs *source.FileSet, name, text string, bag *diag.Bag, tags map[string]*pat.TagSet, shapes map[string]*pat.RecordShape) *parser {
	return &parser{
		file:   fs.AddVirtual(name, []byte(text)),
		src:    text,
		bag:    bag,
		tags:   tags,
		shapes: shapes,
	}
}

func (p *parser) span(start int) source.Span {
	return source.Span{File: p.file, Start: uint32(start), End: uint32(p.pos)}
}

func (p *parser) errorf(code diag.Code, start int, format string, args ...any) {
	p.bag.AddError(code, p.span(start), fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		if c := p.src[p.pos]; c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			p.pos++
			continue
		}
		return
	}
}

func (p *parser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

// eat consumes c if it is next, after whitespace.
func (p *parser) eat(c byte) bool {
	p.skipSpace()
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(c byte, what string) bool {
	if p.eat(c) {
		return true
	}
	p.errorf(diag.SynUnexpectedToken, p.pos, "expected %q in %s", string(c), what)
	return false
}

func isIdentStart(r rune) bool { return unicode.IsLetter(r) || r == '_' }
func isIdentPart(r rune) bool  { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' }

// ident scans an identifier, or returns "" without consuming anything.
func (p *parser) ident() string {
	p.skipSpace()
	start := p.pos
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	if size == 0 || !isIdentStart(r) {
		return ""
	}
	p.pos += size
	for {
		r, size = utf8.DecodeRuneInString(p.src[p.pos:])
		if size == 0 || !isIdentPart(r) {
			break
		}
		p.pos += size
	}
	return p.src[start:p.pos]
}

func isUpperIdent(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// number scans an integer literal; leading '-' belongs to the literal.
func (p *parser) number() (int64, bool) {
	p.skipSpace()
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	text := p.src[start:p.pos]
	if text == "" || text == "-" {
		p.pos = start
		return 0, false
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		p.errorf(diag.SynBadNumber, start, "integer literal %q out of range", text)
		return 0, false
	}
	return v, true
}

// stringLit scans a double-quoted literal with \" \\ \n \t escapes.
func (p *parser) stringLit() (string, bool) {
	start := p.pos
	if !p.eat('"') {
		return "", false
	}
	var out []byte
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		p.pos++
		switch c {
		case '"':
			return string(out), true
		case '\\':
			if p.pos >= len(p.src) {
				break
			}
			esc := p.src[p.pos]
			p.pos++
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case '"', '\\':
				out = append(out, esc)
			default:
				p.errorf(diag.SynUnexpectedToken, p.pos-2, "unknown escape \\%c", esc)
			}
		default:
			out = append(out, c)
		}
	}
	p.errorf(diag.SynUnterminatedStr, start, "unterminated string literal")
	return "", false
}

// atEOF reports whether only whitespace remains; anything else is diagnosed.
func (p *parser) atEOF(what string) bool {
	p.skipSpace()
	if p.pos < len(p.src) {
		p.errorf(diag.SynTrailingInput, p.pos, "trailing input after %s", what)
		return false
	}
	return true
}

// --- patterns ---------------------------------------------------------------

// pattern := alt ('|' alt)*
func (p *parser) pattern() *pat.Pattern {
	start := p.pos
	out := p.aliasPattern()
	for p.eat('|') {
		right := p.aliasPattern()
		if out == nil || right == nil {
			return nil
		}
		or := pat.OrPat(out, right)
		or.Span = p.span(start)
		out = or
	}
	return out
}

// alt := primary ('as' IDENT)*
func (p *parser) aliasPattern() *pat.Pattern {
	start := p.pos
	out := p.primaryPattern()
	for {
		save := p.pos
		if name := p.ident(); name == "as" {
			alias := p.ident()
			if alias == "" || isUpperIdent(alias) {
				p.errorf(diag.SynBadAliasName, p.pos, "alias name must be a lowercase identifier")
				return nil
			}
			if out == nil {
				return nil
			}
			out = pat.AliasPat(out, alias)
			out.Span = p.span(start)
			continue
		}
		p.pos = save
		return out
	}
}

func (p *parser) primaryPattern() *pat.Pattern {
	p.skipSpace()
	start := p.pos

	switch {
	case p.peek() == '(':
		return p.tuplePattern()
	case p.peek() == '"':
		s, ok := p.stringLit()
		if !ok {
			return nil
		}
		out := pat.ConstPat(ir.StringConst(s))
		out.Span = p.span(start)
		return out
	case p.peek() == '-' || (p.peek() >= '0' && p.peek() <= '9'):
		v, ok := p.number()
		if !ok {
			p.errorf(diag.SynBadNumber, start, "malformed integer literal")
			return nil
		}
		out := pat.ConstPat(ir.IntConst(v))
		out.Span = p.span(start)
		return out
	}

	name := p.ident()
	if name == "" {
		p.errorf(diag.SynUnexpectedToken, start, "expected a pattern")
		return nil
	}
	switch name {
	case "_":
		out := pat.Wild()
		out.Span = p.span(start)
		return out
	case "true", "false":
		out := pat.ConstPat(ir.BoolConst(name == "true"))
		out.Span = p.span(start)
		return out
	}
	if !isUpperIdent(name) {
		out := pat.VarPat(name)
		out.Span = p.span(start)
		return out
	}

	// Uppercase: a record shape when '{' follows, otherwise a constructor.
	p.skipSpace()
	if p.peek() == '{' {
		return p.recordPattern(name, start)
	}
	return p.ctorPattern(name, start)
}

// tuplePattern := '(' ')' | '(' pattern (',' pattern)* ')'
// A single parenthesized pattern with no comma is grouping, not a 1-tuple.
func (p *parser) tuplePattern() *pat.Pattern {
	start := p.pos
	p.eat('(')
	if p.eat(')') {
		out := pat.TuplePat()
		out.Span = p.span(start)
		return out
	}
	var elems []*pat.Pattern
	sawComma := false
	for {
		el := p.pattern()
		if el == nil {
			return nil
		}
		elems = append(elems, el)
		if p.eat(',') {
			sawComma = true
			continue
		}
		break
	}
	if !p.expect(')', "tuple pattern") {
		return nil
	}
	if len(elems) == 1 && !sawComma {
		return elems[0]
	}
	out := pat.TuplePat(elems...)
	out.Span = p.span(start)
	return out
}

func (p *parser) ctorPattern(tag string, start int) *pat.Pattern {
	set, ok := p.tags[tag]
	if !ok {
		p.errorf(diag.SynUnknownTag, start, "unknown constructor %q", tag)
		return nil
	}
	def, _ := set.Lookup(tag)

	var args []*pat.Pattern
	if p.eat('(') {
		if !p.eat(')') {
			for {
				a := p.pattern()
				if a == nil {
					return nil
				}
				args = append(args, a)
				if p.eat(',') {
					continue
				}
				break
			}
			if !p.expect(')', "constructor pattern") {
				return nil
			}
		}
	}
	if len(args) != def.Arity {
		p.errorf(diag.SynTagArity, start, "constructor %s takes %d arguments, got %d", tag, def.Arity, len(args))
		return nil
	}
	out := pat.CtorPat(set, tag, args...)
	out.Span = p.span(start)
	return out
}

// recordPattern := Shape '{' [field (',' field)*] '}', field := name ':' pattern
func (p *parser) recordPattern(name string, start int) *pat.Pattern {
	shape, ok := p.shapes[name]
	if !ok {
		p.errorf(diag.SynUnknownRecord, start, "unknown record shape %q", name)
		return nil
	}
	p.eat('{')
	var fields []pat.FieldPat
	seen := map[string]struct{}{}
	if !p.eat('}') {
		for {
			fstart := p.pos
			fname := p.ident()
			if fname == "" {
				p.errorf(diag.SynUnexpectedToken, fstart, "expected a field name in record %s", name)
				return nil
			}
			if !p.expect(':', "record field") {
				return nil
			}
			if shape.Index(fname) < 0 {
				p.errorf(diag.SynUnknownField, fstart, "record %s has no field %q", name, fname)
				return nil
			}
			if _, dup := seen[fname]; dup {
				p.errorf(diag.SynDuplicateField, fstart, "field %q mentioned twice", fname)
				return nil
			}
			seen[fname] = struct{}{}
			fp := p.pattern()
			if fp == nil {
				return nil
			}
			fields = append(fields, pat.FieldPat{Name: fname, Pat: fp})
			if p.eat(',') {
				continue
			}
			break
		}
		if !p.expect('}', "record pattern") {
			return nil
		}
	}
	out := pat.RecordPat(shape, fields...)
	out.Span = p.span(start)
	return out
}

// --- expressions ------------------------------------------------------------

var cmpOps = []struct {
	text string
	op   ir.BinOp
}{
	{"==", ir.OpEq}, {"!=", ir.OpNe},
	{"<=", ir.OpLe}, {">=", ir.OpGe},
	{"<", ir.OpLt}, {">", ir.OpGt},
}

func (p *parser) eatWord(w string) bool {
	p.skipSpace()
	if len(p.src)-p.pos < len(w) || p.src[p.pos:p.pos+len(w)] != w {
		return false
	}
	p.pos += len(w)
	return true
}

func (p *parser) binary(start int, op ir.BinOp, left, right *ir.Expr) *ir.Expr {
	if left == nil || right == nil {
		return nil
	}
	return &ir.Expr{Kind: ir.ExprBinary, Span: p.span(start), Data: ir.BinaryData{Op: op, Left: left, Right: right}}
}

// expr := andExpr ('||' andExpr)*
func (p *parser) expr() *ir.Expr {
	start := p.pos
	out := p.andExpr()
	for p.eatWord("||") {
		out = p.binary(start, ir.OpOr, out, p.andExpr())
	}
	return out
}

func (p *parser) andExpr() *ir.Expr {
	start := p.pos
	out := p.cmpExpr()
	for p.eatWord("&&") {
		out = p.binary(start, ir.OpAnd, out, p.cmpExpr())
	}
	return out
}

// cmpExpr := addExpr (cmpOp addExpr)?  Comparisons do not chain.
func (p *parser) cmpExpr() *ir.Expr {
	start := p.pos
	out := p.addExpr()
	p.skipSpace()
	for _, c := range cmpOps {
		if p.eatWord(c.text) {
			return p.binary(start, c.op, out, p.addExpr())
		}
	}
	return out
}

func (p *parser) addExpr() *ir.Expr {
	start := p.pos
	out := p.mulExpr()
	for {
		p.skipSpace()
		switch {
		case p.peek() == '+':
			p.pos++
			out = p.binary(start, ir.OpAdd, out, p.mulExpr())
		case p.peek() == '-':
			p.pos++
			out = p.binary(start, ir.OpSub, out, p.mulExpr())
		default:
			return out
		}
	}
}

func (p *parser) mulExpr() *ir.Expr {
	start := p.pos
	out := p.primaryExpr()
	for p.eat('*') {
		out = p.binary(start, ir.OpMul, out, p.primaryExpr())
	}
	return out
}

func (p *parser) primaryExpr() *ir.Expr {
	p.skipSpace()
	start := p.pos

	switch {
	case p.peek() == '(':
		return p.tupleExpr()
	case p.peek() == '"':
		s, ok := p.stringLit()
		if !ok {
			return nil
		}
		return p.constExpr(start, ir.StringConst(s))
	case p.peek() == '-' || (p.peek() >= '0' && p.peek() <= '9'):
		v, ok := p.number()
		if !ok {
			p.errorf(diag.SynBadNumber, start, "malformed integer literal")
			return nil
		}
		return p.constExpr(start, ir.IntConst(v))
	}

	name := p.ident()
	if name == "" {
		p.errorf(diag.SynUnexpectedToken, start, "expected an expression")
		return nil
	}
	switch name {
	case "true", "false":
		return p.constExpr(start, ir.BoolConst(name == "true"))
	}
	if !isUpperIdent(name) {
		return &ir.Expr{Kind: ir.ExprLocal, Span: p.span(start), Data: ir.LocalData{Name: name}}
	}
	return p.tagExpr(name, start)
}

func (p *parser) constExpr(start int, v ir.ConstVal) *ir.Expr {
	return &ir.Expr{Kind: ir.ExprConst, Span: p.span(start), Data: ir.ConstData{Val: v}}
}

func (p *parser) tupleExpr() *ir.Expr {
	start := p.pos
	p.eat('(')
	if p.eat(')') {
		return &ir.Expr{Kind: ir.ExprTuple, Span: p.span(start), Data: ir.TupleData{}}
	}
	var elems []*ir.Expr
	sawComma := false
	for {
		el := p.expr()
		if el == nil {
			return nil
		}
		elems = append(elems, el)
		if p.eat(',') {
			sawComma = true
			continue
		}
		break
	}
	if !p.expect(')', "tuple expression") {
		return nil
	}
	if len(elems) == 1 && !sawComma {
		return elems[0]
	}
	return &ir.Expr{Kind: ir.ExprTuple, Span: p.span(start), Data: ir.TupleData{Elems: elems}}
}

func (p *parser) tagExpr(tag string, start int) *ir.Expr {
	set, ok := p.tags[tag]
	if !ok {
		p.errorf(diag.SynUnknownTag, start, "unknown constructor %q", tag)
		return nil
	}
	def, _ := set.Lookup(tag)

	var args []*ir.Expr
	if p.eat('(') {
		if !p.eat(')') {
			for {
				a := p.expr()
				if a == nil {
					return nil
				}
				args = append(args, a)
				if p.eat(',') {
					continue
				}
				break
			}
			if !p.expect(')', "constructor expression") {
				return nil
			}
		}
	}
	if len(args) != def.Arity {
		p.errorf(diag.SynTagArity, start, "constructor %s takes %d arguments, got %d", tag, def.Arity, len(args))
		return nil
	}
	return &ir.Expr{Kind: ir.ExprTag, Span: p.span(start), Data: ir.TagData{Tag: tag, Args: args}}
}

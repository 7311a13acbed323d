package ir

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when the wire format changes.
const artifactSchemaVersion uint16 = 1

// Artifact is a compiled decision procedure ready for serialization.
type Artifact struct {
	Schema  uint16
	Name    string
	Backend string
	Expr    *wireExpr
}

// wireExpr is the flat, msgpack-friendly mirror of Expr. Child positions are
// fixed per kind (see toWire/fromWire).
type wireExpr struct {
	Kind   uint8
	Label  uint32
	Name   string
	Tag    string
	Index  int
	Op     uint8
	Params []string
	Msg    string

	ConstKind uint8
	Int       int64
	Bool      bool
	Str       string

	Kids  []*wireExpr
	Cases []wireCase
	Def   *wireExpr
}

type wireCase struct {
	Kind   uint8
	Tag    string
	Arity  int
	Fields []string

	ConstKind uint8
	Int       int64
	Bool      bool
	Str       string

	Body *wireExpr
}

// EncodeArtifact serializes a compiled match to msgpack.
func EncodeArtifact(name, backend string, e *Expr) ([]byte, error) {
	art := Artifact{
		Schema:  artifactSchemaVersion,
		Name:    name,
		Backend: backend,
		Expr:    toWire(e),
	}
	return msgpack.Marshal(&art)
}

// ArtifactSpec names one compiled match for bundle encoding.
type ArtifactSpec struct {
	Name    string
	Backend string
	Expr    *Expr
}

// EncodeArtifacts serializes several compiled matches into one msgpack
// stream, preserving order.
func EncodeArtifacts(items []ArtifactSpec) ([]byte, error) {
	arts := make([]Artifact, len(items))
	for i, it := range items {
		arts[i] = Artifact{
			Schema:  artifactSchemaVersion,
			Name:    it.Name,
			Backend: it.Backend,
			Expr:    toWire(it.Expr),
		}
	}
	return msgpack.Marshal(arts)
}

// DecodeArtifacts deserializes a bundle written by EncodeArtifacts.
func DecodeArtifacts(data []byte) ([]ArtifactSpec, error) {
	var arts []Artifact
	if err := msgpack.Unmarshal(data, &arts); err != nil {
		return nil, err
	}
	out := make([]ArtifactSpec, len(arts))
	for i := range arts {
		if arts[i].Schema != artifactSchemaVersion {
			return nil, fmt.Errorf("ir: artifact schema %d, want %d", arts[i].Schema, artifactSchemaVersion)
		}
		expr, err := fromWire(arts[i].Expr)
		if err != nil {
			return nil, err
		}
		out[i] = ArtifactSpec{Name: arts[i].Name, Backend: arts[i].Backend, Expr: expr}
	}
	return out, nil
}

// DecodeArtifact deserializes a compiled match, validating the schema version.
func DecodeArtifact(data []byte) (name string, e *Expr, err error) {
	var art Artifact
	if err := msgpack.Unmarshal(data, &art); err != nil {
		return "", nil, err
	}
	if art.Schema != artifactSchemaVersion {
		return "", nil, fmt.Errorf("ir: artifact schema %d, want %d", art.Schema, artifactSchemaVersion)
	}
	expr, err := fromWire(art.Expr)
	if err != nil {
		return "", nil, err
	}
	return art.Name, expr, nil
}

func toWire(e *Expr) *wireExpr {
	if e == nil {
		return nil
	}
	w := &wireExpr{Kind: uint8(e.Kind)}
	switch d := e.Data.(type) {
	case ConstData:
		w.setConst(d.Val)
	case LocalData:
		w.Name = d.Name
	case LetData:
		w.Name = d.Name
		w.Kids = []*wireExpr{toWire(d.Value), toWire(d.Body)}
	case FieldData:
		w.Tag = d.Tag
		w.Name = d.Name
		w.Index = d.Index
		w.Kids = []*wireExpr{toWire(d.Base)}
	case TupleData:
		w.Kids = wireAll(d.Elems)
	case TagData:
		w.Tag = d.Tag
		w.Kids = wireAll(d.Args)
	case IfData:
		w.Kids = []*wireExpr{toWire(d.Cond), toWire(d.Then), toWire(d.Else)}
	case BinaryData:
		w.Op = uint8(d.Op)
		w.Kids = []*wireExpr{toWire(d.Left), toWire(d.Right)}
	case SwitchData:
		w.Kids = []*wireExpr{toWire(d.Value)}
		w.Cases = make([]wireCase, len(d.Cases))
		for i, c := range d.Cases {
			wc := wireCase{
				Kind:   uint8(c.Test.Kind),
				Tag:    c.Test.Tag,
				Arity:  c.Test.Arity,
				Fields: c.Test.Fields,
				Body:   toWire(c.Body),
			}
			wc.ConstKind = uint8(c.Test.Const.Kind)
			wc.Int = c.Test.Const.Int
			wc.Bool = c.Test.Const.Bool
			wc.Str = c.Test.Const.Str
			w.Cases[i] = wc
		}
		w.Def = toWire(d.Default)
	case CatchData:
		w.Label = uint32(d.Label)
		w.Params = d.Params
		w.Kids = []*wireExpr{toWire(d.Body), toWire(d.Handler)}
	case ExitData:
		w.Label = uint32(d.Label)
		w.Kids = wireAll(d.Args)
	case RaiseData:
		w.Msg = d.Msg
	}
	return w
}

func (w *wireExpr) setConst(c ConstVal) {
	w.ConstKind = uint8(c.Kind)
	w.Int = c.Int
	w.Bool = c.Bool
	w.Str = c.Str
}

func wireAll(exprs []*Expr) []*wireExpr {
	out := make([]*wireExpr, len(exprs))
	for i, e := range exprs {
		out[i] = toWire(e)
	}
	return out
}

func fromWire(w *wireExpr) (*Expr, error) {
	if w == nil {
		return nil, nil
	}
	e := &Expr{Kind: ExprKind(w.Kind)}
	kids, err := exprAll(w.Kids)
	if err != nil {
		return nil, err
	}
	need := func(n int) error {
		if len(kids) != n {
			return fmt.Errorf("ir: %s node with %d children, want %d", e.Kind, len(kids), n)
		}
		return nil
	}
	switch e.Kind {
	case ExprConst:
		e.Data = ConstData{Val: w.constVal()}
	case ExprLocal:
		e.Data = LocalData{Name: w.Name}
	case ExprLet:
		if err := need(2); err != nil {
			return nil, err
		}
		e.Data = LetData{Name: w.Name, Value: kids[0], Body: kids[1]}
	case ExprField:
		if err := need(1); err != nil {
			return nil, err
		}
		e.Data = FieldData{Base: kids[0], Tag: w.Tag, Name: w.Name, Index: w.Index}
	case ExprTuple:
		e.Data = TupleData{Elems: kids}
	case ExprTag:
		e.Data = TagData{Tag: w.Tag, Args: kids}
	case ExprIf:
		if err := need(3); err != nil {
			return nil, err
		}
		e.Data = IfData{Cond: kids[0], Then: kids[1], Else: kids[2]}
	case ExprBinary:
		if err := need(2); err != nil {
			return nil, err
		}
		e.Data = BinaryData{Op: BinOp(w.Op), Left: kids[0], Right: kids[1]}
	case ExprSwitch:
		if err := need(1); err != nil {
			return nil, err
		}
		cases := make([]SwitchCase, len(w.Cases))
		for i, wc := range w.Cases {
			body, err := fromWire(wc.Body)
			if err != nil {
				return nil, err
			}
			cases[i] = SwitchCase{
				Test: CaseTest{
					Kind:   CaseKind(wc.Kind),
					Tag:    wc.Tag,
					Arity:  wc.Arity,
					Fields: wc.Fields,
					Const:  ConstVal{Kind: ConstKind(wc.ConstKind), Int: wc.Int, Bool: wc.Bool, Str: wc.Str},
				},
				Body: body,
			}
		}
		def, err := fromWire(w.Def)
		if err != nil {
			return nil, err
		}
		e.Data = SwitchData{Value: kids[0], Cases: cases, Default: def}
	case ExprCatch:
		if err := need(2); err != nil {
			return nil, err
		}
		e.Data = CatchData{Body: kids[0], Label: LabelID(w.Label), Params: w.Params, Handler: kids[1]}
	case ExprExit:
		e.Data = ExitData{Label: LabelID(w.Label), Args: kids}
	case ExprRaise:
		e.Data = RaiseData{Msg: w.Msg}
	default:
		return nil, fmt.Errorf("ir: unknown wire kind %d", w.Kind)
	}
	return e, nil
}

func (w *wireExpr) constVal() ConstVal {
	return ConstVal{Kind: ConstKind(w.ConstKind), Int: w.Int, Bool: w.Bool, Str: w.Str}
}

func exprAll(ws []*wireExpr) ([]*Expr, error) {
	out := make([]*Expr, len(ws))
	for i, w := range ws {
		e, err := fromWire(w)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

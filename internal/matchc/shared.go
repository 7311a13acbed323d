package matchc

import (
	"fmt"
	"sort"
	"strings"

	"tern/internal/ir"
)

// nodeID indexes the shared emitter's node arena.
type nodeID int

// sharedOut is a hash-consed fragment handle.
type sharedOut struct {
	id nodeID
}

func (sharedOut) isOut() {}

type nodeOp uint8

const (
	opExit nodeOp = iota
	opLet
	opIf
	opSwitch
)

// node is one hash-consed decision-tree fragment. Payload expressions
// (scrutinees, guard conditions, bound values, exit arguments) are compared
// by canonical fingerprint; child fragments by id. Structurally identical
// fragments therefore share one node no matter how many branches reach them.
type node struct {
	op     nodeOp
	label  ir.LabelID // opExit
	args   []*ir.Expr // opExit
	name   string     // opLet
	value  *ir.Expr   // opLet
	cond   *ir.Expr   // opIf
	scrut  *ir.Expr   // opSwitch
	tests  []ir.CaseTest
	hasDef bool
	kids   []nodeID

	height int
	size   int
}

// sharedEmitter builds a DAG of interned fragments and materializes each
// multi-use fragment once, as a labeled handler.
type sharedEmitter struct {
	ctx   *Ctx
	nodes []*node
	index map[string]nodeID
}

func newSharedEmitter(ctx *Ctx) *sharedEmitter {
	return &sharedEmitter{ctx: ctx, index: map[string]nodeID{}}
}

func (se *sharedEmitter) intern(key string, n *node) Out {
	if id, ok := se.index[key]; ok {
		return sharedOut{id: id}
	}
	n.height, n.size = se.measure(n)
	id := nodeID(len(se.nodes))
	se.nodes = append(se.nodes, n)
	se.index[key] = id
	return sharedOut{id: id}
}

func (se *sharedEmitter) measure(n *node) (height, size int) {
	size = 1
	switch n.op {
	case opExit:
		size += len(n.args)
	case opLet:
		size += ir.CountNodes(n.value)
	case opIf:
		size += ir.CountNodes(n.cond)
	case opSwitch:
		size += ir.CountNodes(n.scrut)
	}
	for _, k := range n.kids {
		kn := se.nodes[k]
		if kn.height+1 > height {
			height = kn.height + 1
		}
		size += kn.size
	}
	return height, size
}

func (se *sharedEmitter) Exit(label ir.LabelID, args []*ir.Expr) Out {
	var b strings.Builder
	fmt.Fprintf(&b, "x|%d", label)
	for _, a := range args {
		b.WriteByte('|')
		b.WriteString(ir.Fingerprint(a))
	}
	return se.intern(b.String(), &node{op: opExit, label: label, args: args})
}

func (se *sharedEmitter) Let(name string, value *ir.Expr, body Out) Out {
	kid := body.(sharedOut).id
	key := fmt.Sprintf("l|%s|%s|%d", name, ir.Fingerprint(value), kid)
	return se.intern(key, &node{op: opLet, name: name, value: value, kids: []nodeID{kid}})
}

func (se *sharedEmitter) If(cond *ir.Expr, then, els Out) Out {
	t, e := then.(sharedOut).id, els.(sharedOut).id
	key := fmt.Sprintf("i|%s|%d|%d", ir.Fingerprint(cond), t, e)
	return se.intern(key, &node{op: opIf, cond: cond, kids: []nodeID{t, e}})
}

func (se *sharedEmitter) Switch(scrut *ir.Expr, cases []OutCase, def Out) Out {
	n := &node{op: opSwitch, scrut: scrut, tests: make([]ir.CaseTest, len(cases))}
	var b strings.Builder
	b.WriteString("s|")
	b.WriteString(ir.Fingerprint(scrut))
	for i, c := range cases {
		n.tests[i] = c.Test
		kid := c.Body.(sharedOut).id
		n.kids = append(n.kids, kid)
		fmt.Fprintf(&b, "|[%s]%d", c.Test.String(), kid)
	}
	if def != nil {
		n.hasDef = true
		kid := def.(sharedOut).id
		n.kids = append(n.kids, kid)
		fmt.Fprintf(&b, "|d%d", kid)
	}
	return se.intern(b.String(), n)
}

// hoistMinSize is the smallest fragment worth lifting into a labeled
// handler; below it, duplicating the fragment is cheaper than the jump.
const hoistMinSize = 4

type hoistedNode struct {
	id     nodeID
	label  ir.LabelID
	params []string
	body   *ir.Expr
}

// ToIR materializes the fragment graph. Fragments referenced from several
// parents are emitted once as handlers; references become static jumps
// passing the fragment's free locals. Single-use and tiny fragments are
// expanded inline.
func (se *sharedEmitter) ToIR(o Out) *ir.Expr {
	root := o.(sharedOut).id

	uses := make([]int, len(se.nodes))
	seen := make([]bool, len(se.nodes))
	var visit func(nodeID)
	visit = func(id nodeID) {
		if seen[id] {
			return
		}
		seen[id] = true
		for _, k := range se.nodes[id].kids {
			uses[k]++
			visit(k)
		}
	}
	uses[root]++
	visit(root)

	var lift []*hoistedNode
	liftAt := map[nodeID]*hoistedNode{}
	for id, n := range se.nodes {
		if !seen[id] || uses[id] < 2 || n.op == opExit || n.size < hoistMinSize {
			continue
		}
		h := &hoistedNode{id: nodeID(id)}
		lift = append(lift, h)
		liftAt[nodeID(id)] = h
	}

	// Handler bodies are built bottom-up so jumps into already-resolved
	// fragments know their labels and parameter lists.
	sort.SliceStable(lift, func(i, j int) bool {
		return se.nodes[lift[i].id].height < se.nodes[lift[j].id].height
	})
	for _, h := range lift {
		h.label = se.ctx.freshLabel()
		h.body = se.build(h.id, liftAt)
		h.params = ir.FreeLocals(h.body)
	}

	tree := se.build(root, liftAt)

	// A handler jumps only into strictly shallower fragments, so deeper
	// fragments nest inside shallower ones.
	for i := len(lift) - 1; i >= 0; i-- {
		tree = catchExpr(tree, lift[i].label, lift[i].params, lift[i].body)
	}
	return tree
}

// build materializes one node, replacing hoisted children with jumps. Fresh
// structural nodes are allocated on every call so later in-place rewriting
// never observes aliased subtrees.
func (se *sharedEmitter) build(id nodeID, liftAt map[nodeID]*hoistedNode) *ir.Expr {
	n := se.nodes[id]
	kid := func(i int) *ir.Expr {
		k := n.kids[i]
		if h, ok := liftAt[k]; ok {
			args := make([]*ir.Expr, len(h.params))
			for j, p := range h.params {
				args[j] = localExpr(p)
			}
			return exitExpr(h.label, args)
		}
		return se.build(k, liftAt)
	}
	switch n.op {
	case opExit:
		return exitExpr(n.label, n.args)
	case opLet:
		return letExpr(n.name, n.value, kid(0))
	case opIf:
		return &ir.Expr{Kind: ir.ExprIf, Data: ir.IfData{Cond: n.cond, Then: kid(0), Else: kid(1)}}
	default:
		d := ir.SwitchData{Value: n.scrut, Cases: make([]ir.SwitchCase, len(n.tests))}
		for i := range n.tests {
			d.Cases[i] = ir.SwitchCase{Test: n.tests[i], Body: kid(i)}
		}
		if n.hasDef {
			d.Default = kid(len(n.tests))
		}
		return &ir.Expr{Kind: ir.ExprSwitch, Data: d}
	}
}

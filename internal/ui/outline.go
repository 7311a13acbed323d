package ui

import (
	"fmt"
	"strings"

	"tern/internal/ir"
)

// treeNode is one collapsible line of the explorer outline.
type treeNode struct {
	label    string
	children []*treeNode
	expanded bool
}

// outline renders an IR expression as a collapsible tree. Small leaf-ish
// expressions collapse to a single inline line; structural nodes get one
// child per branch so the decision tree's shape is visible.
func outline(e *ir.Expr) *treeNode {
	if e == nil {
		return &treeNode{label: "<nil>"}
	}
	switch e.Kind {
	case ir.ExprLet:
		d := e.Data.(ir.LetData)
		n := &treeNode{label: fmt.Sprintf("let %s = %s", d.Name, inlineLabel(d.Value)), expanded: true}
		n.children = append(n.children, outline(d.Body))
		return n

	case ir.ExprIf:
		d := e.Data.(ir.IfData)
		n := &treeNode{label: "if " + inlineLabel(d.Cond), expanded: true}
		n.children = append(n.children,
			labeled("then", outline(d.Then)),
			labeled("else", outline(d.Else)),
		)
		return n

	case ir.ExprSwitch:
		d := e.Data.(ir.SwitchData)
		n := &treeNode{label: "switch " + inlineLabel(d.Value), expanded: true}
		for i := range d.Cases {
			n.children = append(n.children, labeled("case "+d.Cases[i].Test.String(), outline(d.Cases[i].Body)))
		}
		if d.Default != nil {
			n.children = append(n.children, labeled("default", outline(d.Default)))
		}
		return n

	case ir.ExprCatch:
		d := e.Data.(ir.CatchData)
		n := &treeNode{
			label:    fmt.Sprintf("catch L%d(%s)", d.Label, strings.Join(d.Params, ", ")),
			expanded: true,
		}
		n.children = append(n.children,
			labeled("body", outline(d.Body)),
			labeled("handler", outline(d.Handler)),
		)
		return n

	default:
		return &treeNode{label: inlineLabel(e)}
	}
}

// labeled prefixes a subtree with a branch label, flattening single-line
// children into "label: leaf".
func labeled(prefix string, child *treeNode) *treeNode {
	if len(child.children) == 0 {
		return &treeNode{label: prefix + ": " + child.label}
	}
	return &treeNode{label: prefix, children: []*treeNode{child}, expanded: true}
}

func inlineLabel(e *ir.Expr) string {
	return ir.Fingerprint(e)
}

// visibleLine pairs a flattened outline row with its depth and node.
type visibleLine struct {
	node  *treeNode
	depth int
}

// flatten walks expanded nodes depth-first into display order.
func flatten(roots []*treeNode) []visibleLine {
	var out []visibleLine
	var walk func(n *treeNode, depth int)
	walk = func(n *treeNode, depth int) {
		out = append(out, visibleLine{node: n, depth: depth})
		if !n.expanded {
			return
		}
		for _, c := range n.children {
			walk(c, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
	return out
}

// setExpanded toggles a subtree recursively.
func setExpanded(n *treeNode, expanded bool) {
	n.expanded = expanded
	for _, c := range n.children {
		setExpanded(c, expanded)
	}
}

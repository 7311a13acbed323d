// Package ui renders compiled decision trees as an interactive outline so
// the effect of backend and heuristic choices can be inspected visually.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tern/internal/ir"
)

// Entry is one compiled match shown by the explorer.
type Entry struct {
	Name string
	Tree *ir.Expr
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	branchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type explorerModel struct {
	title  string
	roots  []*treeNode
	lines  []visibleLine
	cursor int
	vp     viewport.Model
	ready  bool
	width  int
}

// NewExplorer returns a Bubble Tea model browsing the given compiled trees.
func NewExplorer(title string, entries []Entry) tea.Model {
	roots := make([]*treeNode, 0, len(entries))
	for _, e := range entries {
		root := &treeNode{
			label:    e.Name,
			children: []*treeNode{outline(e.Tree)},
			expanded: true,
		}
		roots = append(roots, root)
	}
	m := &explorerModel{title: title, roots: roots, width: 80}
	m.lines = flatten(m.roots)
	return m
}

func (m *explorerModel) Init() tea.Cmd {
	return nil
}

func (m *explorerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		height := msg.Height - 3
		if height < 3 {
			height = 3
		}
		if !m.ready {
			m.vp = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = height
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.vp.Height)
		case "pgdown":
			m.move(m.vp.Height)
		case "left", "h":
			m.collapse()
		case "right", "l":
			m.expand()
		case "enter", " ":
			m.toggle()
		case "E":
			for _, r := range m.roots {
				setExpanded(r, true)
			}
			m.rebuild()
		case "C":
			for _, r := range m.roots {
				setExpanded(r, false)
				r.expanded = true
			}
			m.rebuild()
		}
		return m, nil
	}
	return m, nil
}

func (m *explorerModel) move(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.lines) {
		m.cursor = len(m.lines) - 1
	}
	m.refresh()
}

func (m *explorerModel) current() *treeNode {
	if m.cursor < 0 || m.cursor >= len(m.lines) {
		return nil
	}
	return m.lines[m.cursor].node
}

func (m *explorerModel) toggle() {
	if n := m.current(); n != nil && len(n.children) > 0 {
		n.expanded = !n.expanded
		m.rebuild()
	}
}

func (m *explorerModel) expand() {
	if n := m.current(); n != nil && len(n.children) > 0 && !n.expanded {
		n.expanded = true
		m.rebuild()
	}
}

func (m *explorerModel) collapse() {
	if n := m.current(); n != nil && n.expanded && len(n.children) > 0 {
		n.expanded = false
		m.rebuild()
	}
}

func (m *explorerModel) rebuild() {
	m.lines = flatten(m.roots)
	if m.cursor >= len(m.lines) {
		m.cursor = len(m.lines) - 1
	}
	m.refresh()
}

// refresh re-renders the viewport content and keeps the cursor in view.
func (m *explorerModel) refresh() {
	if !m.ready {
		return
	}
	var b strings.Builder
	for i, line := range m.lines {
		marker := "  "
		if len(line.node.children) > 0 {
			if line.node.expanded {
				marker = "▾ "
			} else {
				marker = "▸ "
			}
		}
		indent := strings.Repeat("  ", line.depth)
		text := runewidth.Truncate(indent+marker+line.node.label, m.width-2, "…")
		if i == m.cursor {
			b.WriteString(cursorStyle.Render(text))
		} else if len(line.node.children) > 0 {
			b.WriteString(branchStyle.Render(indent+marker) + line.node.label)
		} else {
			b.WriteString(text)
		}
		b.WriteByte('\n')
	}
	m.vp.SetContent(b.String())

	if m.cursor < m.vp.YOffset {
		m.vp.SetYOffset(m.cursor)
	}
	if m.cursor >= m.vp.YOffset+m.vp.Height {
		m.vp.SetYOffset(m.cursor - m.vp.Height + 1)
	}
}

func (m *explorerModel) View() string {
	if !m.ready {
		return "loading..."
	}
	header := titleStyle.Render(fmt.Sprintf("%s (%d nodes)", m.title, len(m.lines)))
	help := helpStyle.Render("↑/↓ move · enter toggle · E expand all · C collapse all · q quit")
	return header + "\n" + m.vp.View() + "\n" + help
}

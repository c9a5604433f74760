package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/drawkit/pkg/model"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// maxLabelWidth truncates labels in the cell table.
const maxLabelWidth = 32

// =============================================================================
// BrowseModel - Interactive page and cell explorer
// =============================================================================

// BrowseModel is the bubbletea model for exploring a document. It starts
// on the page list; enter opens the cell table of the selected page and
// esc returns to the list.
type BrowseModel struct {
	Pages []*model.Page

	PageCursor int
	Open       *model.Page // page whose cells are shown, nil on the list

	cells      []*model.Cell
	CellCursor int
	Offset     int
	Height     int
}

// NewBrowseModel creates a browse model over the pages of doc.
func NewBrowseModel(doc *model.Document) BrowseModel {
	return BrowseModel{Pages: doc.Pages, Height: 15}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Open != nil {
			return m.updateCells(msg)
		}
		return m.updatePages(msg)
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m BrowseModel) updatePages(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.PageCursor > 0 {
			m.PageCursor--
		}
	case "down", "j":
		if m.PageCursor < len(m.Pages)-1 {
			m.PageCursor++
		}
	case "enter":
		if len(m.Pages) == 0 {
			return m, nil
		}
		m.Open = m.Pages[m.PageCursor]
		m.cells = m.Open.Model.Cells()
		m.CellCursor, m.Offset = 0, 0
	}
	return m, nil
}

func (m BrowseModel) updateCells(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace", "left", "h":
		m.Open, m.cells = nil, nil
	case "up", "k":
		if m.CellCursor > 0 {
			m.CellCursor--
			if m.CellCursor < m.Offset {
				m.Offset = m.CellCursor
			}
		}
	case "down", "j":
		if m.CellCursor < len(m.cells)-1 {
			m.CellCursor++
			if m.CellCursor >= m.Offset+m.Height {
				m.Offset = m.CellCursor - m.Height + 1
			}
		}
	}
	return m, nil
}

func (m BrowseModel) View() string {
	if m.Open != nil {
		return m.cellsView()
	}
	return m.pagesView()
}

func (m BrowseModel) pagesView() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Page"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  q quit"))
	b.WriteString("\n\n")

	for i, p := range m.Pages {
		cursor := "  "
		if i == m.PageCursor {
			cursor = "▸ "
		}
		name := p.Name
		if name == "" {
			name = p.ID
		}
		counts := p.Model.CountByKind()
		meta := fmt.Sprintf("%s · %s", plural(counts[model.KindShape]+counts[model.KindGroup], "shape"), plural(counts[model.KindEdge], "edge"))
		if p.Compressed {
			meta += " · compressed"
		}

		line := fmt.Sprintf("%s%-24s  %s", cursor, name, listDimStyle.Render(meta))
		if i == m.PageCursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m BrowseModel) cellsView() string {
	var b strings.Builder

	title := m.Open.Name
	if title == "" {
		title = m.Open.ID
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  esc back  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.cells))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		c := m.cells[i]
		cursor := "  "
		if i == m.CellCursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, c.ID, c.Kind.String(), c.Parent, cellLabel(c), cellLinks(c)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Cell", "Kind", "Parent", "Label", "Links").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.cells) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 2 || col == 3 {
				base = base.Foreground(colorGray)
			}
			if m.cells[idx].Kind == model.KindOpaque {
				base = base.Foreground(colorDim)
			}
			if idx == m.CellCursor {
				return base.Foreground(colorGreen).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.CellCursor+1, len(m.cells))))
	if m.CellCursor < len(m.cells) {
		if st := m.cells[m.CellCursor].Style.String(); st != "" {
			b.WriteString("\n")
			b.WriteString(listDimStyle.Render("  style: " + st))
		}
	}

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func cellLabel(c *model.Cell) string {
	if c.Kind == model.KindOpaque && c.Opaque != nil {
		return "<" + c.Opaque.Tag + ">"
	}
	label := strings.Join(strings.Fields(c.Value), " ")
	if len([]rune(label)) > maxLabelWidth {
		label = string([]rune(label)[:maxLabelWidth-1]) + "…"
	}
	return label
}

func cellLinks(c *model.Cell) string {
	if !c.IsEdge() {
		if len(c.Tags) > 0 {
			return "#" + strings.Join(c.Tags, " #")
		}
		return ""
	}
	src, tgt := c.Source, c.Target
	if src == "" {
		src = "·"
	}
	if tgt == "" {
		tgt = "·"
	}
	return src + " " + iconArrow + " " + tgt
}

package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/blockpress/pkg/registry"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorText)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listCategoryStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// BlockPickerModel is the bubbletea model for interactive block type
// selection. Typing filters the list by type, label, category and
// keywords.
type BlockPickerModel struct {
	Defs     []*registry.Definition
	Filter   string
	Cursor   int
	Selected *registry.Definition
	Height   int
	Offset   int
}

// NewBlockPickerModel creates a picker over defs.
func NewBlockPickerModel(defs []*registry.Definition) BlockPickerModel {
	return BlockPickerModel{Defs: defs, Height: 15}
}

func (m BlockPickerModel) Init() tea.Cmd {
	return nil
}

// visible returns the definitions matching the filter.
func (m BlockPickerModel) visible() []*registry.Definition {
	if m.Filter == "" {
		return m.Defs
	}
	q := strings.ToLower(m.Filter)
	var out []*registry.Definition
	for _, d := range m.Defs {
		if matchesBlock(d, q) {
			out = append(out, d)
		}
	}
	return out
}

func matchesBlock(d *registry.Definition, q string) bool {
	fields := append([]string{d.Type, d.Label, d.Category}, d.Keywords...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func (m BlockPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		items := m.visible()
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case tea.KeyDown:
			if m.Cursor < len(items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case tea.KeyEnter:
			if len(items) == 0 {
				return m, nil
			}
			m.Selected = items[m.Cursor]
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.Filter != "" {
				r := []rune(m.Filter)
				m.Filter = string(r[:len(r)-1])
				m.Cursor, m.Offset = 0, 0
			}
		case tea.KeyRunes:
			m.Filter += string(msg.Runes)
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m BlockPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Insert Block"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to filter  ↑/↓ navigate  ⏎ select  esc quit"))
	b.WriteString("\n")
	b.WriteString(StyleHighlight.Render("› ") + m.Filter)
	b.WriteString("\n\n")

	items := m.visible()
	if len(items) == 0 {
		b.WriteString(listDimStyle.Render("  no matching block types"))
		b.WriteString("\n")
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(items) {
		end = len(items)
	}
	category := ""
	for i := m.Offset; i < end; i++ {
		d := items[i]
		if d.Category != category {
			category = d.Category
			b.WriteString(listCategoryStyle.Render(strings.ToUpper(category)))
			b.WriteString("\n")
		}
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-12s %s", cursor, d.Type, listDimStyle.Render(d.Description))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(items))))
	return b.String()
}

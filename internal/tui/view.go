package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	queryBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	paneBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	paneFocused   = paneBoxStyle.Copy().BorderForeground(lipgloss.Color("12"))
	starStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	hoverStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// View renders the query box, both result panes and the status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("SerieSearch")
	who := "anonymous (ratings disabled)"
	if m.signedIn {
		who = "signed in as " + m.opts.UserName
		if m.opts.UserName == "" {
			who = fmt.Sprintf("signed in as user %d", m.opts.UserID)
		}
	}
	top := header + "  " + dimStyle.Render(who)

	input := queryBoxStyle.Render(m.input.View())
	if m.loading() {
		input += " " + m.spin.View() + dimStyle.Render("fetching…")
	}

	search := m.renderPane(paneSearch, "Results", "No results yet.")
	recs := m.renderPane(paneRecs, "Recommendations", m.recsEmptyHint())

	status := m.renderFlash()
	help := dimStyle.Render("tab: focus · ↑/↓: select · ←/→: stars · enter: rate · x: clear · ctrl+c: quit")

	return top + "\n" + input + "\n" + search + "\n" + recs + "\n" + status + "\n" + help
}

func (m Model) recsEmptyHint() string {
	if !m.signedIn {
		return "Sign in to get recommendations."
	}
	return "No recommendations yet."
}

func (m Model) renderPane(id paneID, title, empty string) string {
	p := &m.panes[id]
	focused := (id == paneSearch && m.focus == focusSearch) || (id == paneRecs && m.focus == focusRecs)

	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	if len(p.cards) == 0 {
		b.WriteString(dimStyle.Render(empty))
	} else {
		for i := range p.cards {
			b.WriteString(m.renderCardRow(&p.cards[i], focused && i == p.cursor))
			b.WriteString("\n")
		}
		if c := p.selected(); c != nil {
			b.WriteString(m.renderCardDetail(c, p.metaSettled))
		}
	}

	style := paneBoxStyle
	if focused {
		style = paneFocused
	}
	if m.width > 4 {
		style = style.Copy().Width(m.width - 2)
	}
	return style.Render(b.String())
}

func (m Model) renderCardRow(c *card, selected bool) string {
	marker := "  "
	if selected {
		marker = "> "
	}
	row := fmt.Sprintf("%s%s %s %s", marker, c.title, dimStyle.Render(fmt.Sprintf("(%.2f)", c.score)), renderStars(c))
	if c.canClear {
		row += " " + dimStyle.Render("[x clear]")
	}
	return row
}

func (m Model) renderCardDetail(c *card, metaSettled bool) string {
	var b strings.Builder
	b.WriteString("\n")
	if c.enriched {
		if c.imageURL != "" {
			b.WriteString(dimStyle.Render("image: " + c.imageURL))
		} else {
			b.WriteString(dimStyle.Render("image: (none available)"))
		}
		b.WriteString("\n")
		if c.synopsis != "" {
			width := m.width - 6
			if width < 20 {
				width = 20
			}
			b.WriteString(lipgloss.NewStyle().Width(width).Render(c.synopsis))
		}
	} else if metaSettled {
		// this card set's enrichment round trip already settled without
		// producing details for this card
		b.WriteString(dimStyle.Render("no details available"))
	} else {
		b.WriteString(dimStyle.Render("fetching details…"))
	}
	return b.String()
}

// renderStars draws the five affordances: the hover preview when active,
// otherwise the committed score.
func renderStars(c *card) string {
	shown := c.rating
	style := starStyle
	if c.hover > 0 {
		shown = c.hover
		style = hoverStyle
	}
	return style.Render(strings.Repeat("★", shown) + strings.Repeat("☆", 5-shown))
}

func (m Model) renderFlash() string {
	switch m.flash.level {
	case flashSuccess:
		return successStyle.Render(m.flash.text)
	case flashError:
		return errorStyle.Render(m.flash.text)
	default:
		return infoStyle.Render(m.flash.text)
	}
}

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

const heroMarkdown = `# Transform your frontend with AI

Point **frontfrend** at a GitHub repository, pick what you want improved and
review every proposed change side by side before a pull request is opened.

- **UI cleanups**: visual hierarchy, spacing and modern design patterns
- **Responsive fixes**: layouts that work on mobile and tablet
- **Accessibility**: WCAG compliance and screen reader support
- **Performance**: faster loads and better Core Web Vitals
`

// renderMarkdown renders md for the terminal, falling back to the source.
func renderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width, 20)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func (a *App) wrapWidth() int {
	w := a.width - 6
	if a.cfg.UI.WordWrap > 0 {
		w = min(w, a.cfg.UI.WordWrap)
	}
	return max(w, 20)
}

func (a *App) updateHero(action string) (tea.Model, tea.Cmd) {
	if action != actStart {
		return a, nil
	}
	if err := a.session.GetStarted(); err != nil {
		return a, a.notify(err.Error(), true)
	}
	return a, tea.Batch(a.repoInput.Focus(), a.loadRecentCmd())
}

func (a *App) viewHero() string {
	if w := a.wrapWidth(); a.heroDoc == "" || a.heroWidth != w {
		a.heroDoc, a.heroWidth = renderMarkdown(heroMarkdown, w), w
	}
	return a.heroDoc + "\n\n" + focusStyle.Render("▸ Get Started") + mutedStyle.Render("  press enter")
}

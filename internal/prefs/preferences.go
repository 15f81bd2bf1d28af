package prefs

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Preferences is the user_preferences payload sent when a workflow starts.
type Preferences struct {
	Improvements      []string `json:"improvements"`
	Theme             string   `json:"theme"`
	Priority          string   `json:"priority"`
	AdditionalDetails string   `json:"additionalDetails"`
}

// Option is one selectable value in the preferences form.
type Option struct {
	ID          string
	Label       string
	Description string
}

var ImprovementOptions = []Option{
	{ID: "ui-cleanup", Label: "UI Cleanups", Description: "Improve visual hierarchy, spacing, and modern design patterns"},
	{ID: "responsive", Label: "Responsive Fixes", Description: "Optimize layouts for mobile and tablet devices"},
	{ID: "accessibility", Label: "Accessibility", Description: "Add WCAG compliance and screen reader support"},
	{ID: "performance", Label: "Performance", Description: "Optimize loading times and Core Web Vitals"},
}

var ThemeOptions = []Option{
	{ID: "light", Label: "Light", Description: "Clean and minimal light theme"},
	{ID: "dark", Label: "Dark", Description: "Modern dark theme with good contrast"},
	{ID: "neutral", Label: "Auto", Description: "Adapts to system preference"},
}

var PriorityOptions = []Option{
	{ID: "conservative", Label: "Conservative", Description: "Minimal changes, preserve existing design"},
	{ID: "balanced", Label: "Balanced", Description: "Good mix of improvements without major overhauls"},
	{ID: "aggressive", Label: "Aggressive", Description: "Maximum improvements, modern redesign"},
}

// Default returns the form's initial selection.
func Default() Preferences {
	return Preferences{
		Improvements: []string{"ui-cleanup"},
		Theme:        "neutral",
		Priority:     "balanced",
	}
}

// Has reports whether the improvement id is selected.
func (p Preferences) Has(id string) bool {
	return slices.Contains(p.Improvements, id)
}

// Toggle flips an improvement on or off. Selected ids stay in option order.
func (p Preferences) Toggle(id string) Preferences {
	selected := make(map[string]bool, len(p.Improvements))
	for _, cur := range p.Improvements {
		selected[cur] = true
	}
	selected[id] = !selected[id]

	out := p
	out.Improvements = make([]string, 0, len(ImprovementOptions))
	for _, opt := range ImprovementOptions {
		if selected[opt.ID] {
			out.Improvements = append(out.Improvements, opt.ID)
		}
	}
	return out
}

// Validate checks every id against the known options.
func (p Preferences) Validate() error {
	for _, id := range p.Improvements {
		if err := checkOption("improvement", id, ImprovementOptions); err != nil {
			return err
		}
	}
	if err := checkOption("theme", p.Theme, ThemeOptions); err != nil {
		return err
	}
	return checkOption("priority", p.Priority, PriorityOptions)
}

// ParseImprovements splits a comma-separated list of ids, normalizing case and spaces.
func ParseImprovements(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		id := strings.ToLower(strings.TrimSpace(part))
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// LabelFor returns the display label of id within opts, or id itself.
func LabelFor(opts []Option, id string) string {
	for _, o := range opts {
		if o.ID == id {
			return o.Label
		}
	}
	return id
}

func checkOption(kind, id string, opts []Option) error {
	for _, o := range opts {
		if o.ID == id {
			return nil
		}
	}
	if s := suggest(id, opts); s != "" {
		return fmt.Errorf("unknown %s %q (did you mean %q?)", kind, id, s)
	}
	return fmt.Errorf("unknown %s %q", kind, id)
}

// suggest returns the closest option id, if any is reasonably near.
func suggest(id string, opts []Option) string {
	best, bestDist := "", -1
	for _, o := range opts {
		d := levenshtein.ComputeDistance(strings.ToLower(id), o.ID)
		if bestDist < 0 || d < bestDist {
			best, bestDist = o.ID, d
		}
	}
	if bestDist < 0 || bestDist > len(best)/2 {
		return ""
	}
	return best
}

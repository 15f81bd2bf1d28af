package tui

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// KeyBinding maps keys to an action within scopes. An empty scope list or
// "*" matches every scope. Scopes are step names plus overlay names.
type KeyBinding struct {
	Keys        []string
	Action      string
	Description string
	Scopes      []string
	Hidden      bool
}

type KeyRegistry struct {
	bindings []KeyBinding
}

func NewKeyRegistry(bindings []KeyBinding) *KeyRegistry {
	return &KeyRegistry{bindings: slices.Clone(bindings)}
}

func (r *KeyRegistry) BindingsForScope(scope string) []KeyBinding {
	out := make([]KeyBinding, 0, len(r.bindings))
	for _, b := range r.bindings {
		if scopeMatch(scope, b.Scopes) {
			out = append(out, b)
		}
	}
	return out
}

// Action returns the action bound to msg in scope, or "".
func (r *KeyRegistry) Action(msg tea.KeyMsg, scope string) string {
	pressed := normalizeKey(msg.String())
	for _, b := range r.bindings {
		if !scopeMatch(scope, b.Scopes) {
			continue
		}
		for _, k := range b.Keys {
			if normalizeKey(k) == pressed {
				return b.Action
			}
		}
	}
	return ""
}

func normalizeKey(k string) string {
	if k == " " {
		return "space"
	}
	return strings.ToLower(strings.TrimSpace(k))
}

func scopeMatch(scope string, scopes []string) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		if s == "*" || s == scope {
			return true
		}
	}
	return false
}

const (
	scopeHero    = "hero"
	scopeRepo    = "repo-input"
	scopeToken   = "token"
	scopePrefs   = "preferences"
	scopeDetails = "preferences:details"
	scopeProc    = "processing"
	scopePreview = "preview"
	scopeCode    = "preview:code"
	scopeSuccess = "success"
)

const (
	actQuit       = "quit"
	actStart      = "get-started"
	actSubmit     = "submit"
	actBack       = "back"
	actToken      = "github-token"
	actCancel     = "cancel"
	actPrev       = "prev"
	actNext       = "next"
	actToggle     = "toggle"
	actTabNext    = "tab-next"
	actTabPrev    = "tab-prev"
	actDiffMode   = "diff-mode"
	actPageUp     = "page-up"
	actPageDown   = "page-down"
	actExport     = "export"
	actCreatePR   = "create-pr"
	actStartNew   = "start-new"
	actFieldNext  = "field-next"
	actFieldPrev  = "field-prev"
	actSubmitForm = "submit-form"
)

// DefaultKeyBindings lists the bindings in footer order. Earlier entries win
// when two bindings share a key in the same scope.
func DefaultKeyBindings() []KeyBinding {
	return []KeyBinding{
		{Keys: []string{"ctrl+c"}, Action: actQuit, Description: "quit", Scopes: []string{"*"}, Hidden: true},

		{Keys: []string{"enter"}, Action: actStart, Description: "get started", Scopes: []string{scopeHero}},

		{Keys: []string{"enter"}, Action: actSubmit, Description: "analyze", Scopes: []string{scopeRepo}},
		{Keys: []string{"up"}, Action: actPrev, Description: "recent", Scopes: []string{scopeRepo}},
		{Keys: []string{"down"}, Action: actNext, Description: "recent", Scopes: []string{scopeRepo}, Hidden: true},
		{Keys: []string{"ctrl+g"}, Action: actToken, Description: "connect github", Scopes: []string{scopeRepo}},

		{Keys: []string{"enter"}, Action: actSubmit, Description: "save token", Scopes: []string{scopeToken}},
		{Keys: []string{"esc"}, Action: actCancel, Description: "cancel", Scopes: []string{scopeToken}},

		{Keys: []string{"ctrl+s"}, Action: actSubmitForm, Description: "submit", Scopes: []string{scopePrefs, scopeDetails}},
		{Keys: []string{"enter"}, Action: actSubmitForm, Description: "submit", Scopes: []string{scopePrefs}, Hidden: true},
		{Keys: []string{"up", "k"}, Action: actPrev, Description: "up", Scopes: []string{scopePrefs}},
		{Keys: []string{"down", "j"}, Action: actNext, Description: "down", Scopes: []string{scopePrefs}},
		{Keys: []string{"space", "x"}, Action: actToggle, Description: "select", Scopes: []string{scopePrefs}},
		{Keys: []string{"tab"}, Action: actFieldNext, Description: "next field", Scopes: []string{scopePrefs, scopeDetails}},
		{Keys: []string{"shift+tab"}, Action: actFieldPrev, Description: "prev field", Scopes: []string{scopePrefs, scopeDetails}, Hidden: true},

		{Keys: []string{"tab", "right", "l"}, Action: actTabNext, Description: "next tab", Scopes: []string{scopePreview, scopeCode}},
		{Keys: []string{"shift+tab", "left", "h"}, Action: actTabPrev, Description: "prev tab", Scopes: []string{scopePreview, scopeCode}, Hidden: true},
		{Keys: []string{"down", "j"}, Action: actNext, Description: "next file", Scopes: []string{scopeCode}},
		{Keys: []string{"up", "k"}, Action: actPrev, Description: "prev file", Scopes: []string{scopeCode}, Hidden: true},
		{Keys: []string{"u"}, Action: actDiffMode, Description: "unified/split", Scopes: []string{scopeCode}},
		{Keys: []string{"pgdown", "ctrl+d"}, Action: actPageDown, Description: "scroll", Scopes: []string{scopePreview, scopeCode}},
		{Keys: []string{"pgup", "ctrl+u"}, Action: actPageUp, Description: "scroll up", Scopes: []string{scopePreview, scopeCode}, Hidden: true},
		{Keys: []string{"d"}, Action: actExport, Description: "download", Scopes: []string{scopePreview, scopeCode}},
		{Keys: []string{"p"}, Action: actCreatePR, Description: "create pr", Scopes: []string{scopePreview, scopeCode}},

		{Keys: []string{"n"}, Action: actStartNew, Description: "start new", Scopes: []string{scopeSuccess}},

		{Keys: []string{"esc"}, Action: actBack, Description: "back", Scopes: []string{scopeRepo, scopePrefs, scopeDetails, scopePreview, scopeCode}},
		{Keys: []string{"q"}, Action: actQuit, Description: "quit", Scopes: []string{scopeHero, scopeProc, scopePreview, scopeCode, scopeSuccess}},
	}
}

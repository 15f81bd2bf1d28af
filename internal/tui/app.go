// Package tui is the interactive terminal client. One bubbletea model walks
// the flow steps and renders the view for the current one.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jask/frontfrend/internal/config"
	"github.com/jask/frontfrend/internal/database/repository"
	"github.com/jask/frontfrend/internal/diff"
	"github.com/jask/frontfrend/internal/flow"
	"github.com/jask/frontfrend/internal/prefs"
	"github.com/jask/frontfrend/internal/secrets"
	"github.com/jask/frontfrend/internal/service"
	"github.com/jask/frontfrend/internal/workflow"
)

// Deps are the collaborators the client drives. Secrets and Prefs may be nil.
type Deps struct {
	Client  *workflow.Client
	Runs    *service.RunService
	Secrets *secrets.Store
	Prefs   *prefs.Store
	Log     *zap.Logger
}

// App ties together the step views.
type App struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      config.Config
	deps     Deps
	log      *zap.Logger
	keys     *KeyRegistry
	session  *flow.Session
	defaults prefs.Preferences

	width  int
	height int
	toast  toast

	// hero
	heroDoc   string
	heroWidth int

	// repo-input
	repoInput   textinput.Model
	analyzing   bool
	recent      []repository.Run
	recentIdx   int
	tokenPrompt bool
	tokenInput  textinput.Model
	hasToken    bool

	// preferences
	form prefsForm

	// processing
	spinner  spinner.Model
	bar      progress.Model
	phaseBar progress.Model
	messages []string
	pollGen  int
	runID    string

	// preview
	tab             previewTab
	diffs           []*diff.FileDiff
	fileIdx         int
	unified         bool
	view            viewport.Model
	improvementsDoc string
	livePreview     string
	previewErr      error
}

// New builds the client. initial seeds the preferences form.
func New(ctx context.Context, cfg config.Config, deps Deps, initial prefs.Preferences) *App {
	ctx, cancel := context.WithCancel(ctx)
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	if deps.Runs == nil {
		deps.Runs = &service.RunService{Starter: deps.Client, Log: log}
	}

	ri := textinput.New()
	ri.Placeholder = "https://github.com/username/repository"
	ri.Prompt = "⎇ "
	ri.CharLimit = 512

	ti := textinput.New()
	ti.Placeholder = "ghp_…"
	ti.Prompt = "token: "
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	a := &App{
		ctx:        ctx,
		cancel:     cancel,
		cfg:        cfg,
		deps:       deps,
		log:        log,
		keys:       NewKeyRegistry(DefaultKeyBindings()),
		session:    flow.New(),
		defaults:   initial,
		repoInput:  ri,
		tokenInput: ti,
		hasToken:   deps.Client != nil && deps.Client.Token != "",
		form:       newPrefsForm(initial),
		spinner:    sp,
		bar:        progress.New(progress.WithGradient(string(colorMauve), string(colorBlue))),
		phaseBar:   progress.New(progress.WithSolidFill(string(colorTeal)), progress.WithoutPercentage()),
		view:       viewport.New(80, 20),
	}
	a.resize(100, 0)
	return a
}

func (a *App) Init() tea.Cmd {
	return a.loadRecentCmd()
}

// Session exposes the current flow state.
func (a *App) Session() *flow.Session { return a.session }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(m.Width, m.Height)
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(m)
	case toastExpiredMsg:
		if m.id == a.toast.id {
			a.toast = toast{id: a.toast.id}
		}
		return a, nil
	case errMsg:
		a.log.Warn("ui error", zap.Error(m.error))
		return a, a.notify(m.Error(), true)
	case recentMsg:
		a.recent = []repository.Run(m)
		a.recentIdx = -1
		return a, nil
	case repoAcceptedMsg:
		return a.acceptRepo(m.url)
	case tokenSavedMsg:
		if a.deps.Client != nil {
			a.deps.Client.Token = m.token
		}
		a.hasToken = m.token != ""
		if a.hasToken {
			return a, a.notify("Connected with GitHub", false)
		}
		return a, a.notify("GitHub token removed", false)
	case startedMsg, pollTickMsg, statusMsg, resultsMsg, workflowErrMsg:
		return a.updateWorkflow(msg)
	case exportedMsg:
		return a, a.notify(exportSummary(m), false)
	case spinner.TickMsg:
		if a.session.Step == flow.StepProcessing || a.analyzing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(m)
			return a, cmd
		}
		return a, nil
	}
	return a, a.updateFocused(msg)
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := a.keys.Action(m, a.scope())
	if action == actQuit {
		a.cancel()
		return a, tea.Quit
	}
	switch a.session.Step {
	case flow.StepHero:
		return a.updateHero(action)
	case flow.StepRepoInput:
		return a.updateRepo(action, m)
	case flow.StepPreferences:
		return a.updatePrefs(action, m)
	case flow.StepPreview:
		return a.updatePreview(action)
	case flow.StepSuccess:
		return a.updateSuccess(action)
	}
	return a, nil
}

// updateFocused forwards non-key messages, such as cursor blinks, to the
// focused input.
func (a *App) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case a.session.Step == flow.StepRepoInput && a.tokenPrompt:
		a.tokenInput, cmd = a.tokenInput.Update(msg)
	case a.session.Step == flow.StepRepoInput:
		a.repoInput, cmd = a.repoInput.Update(msg)
	case a.session.Step == flow.StepPreferences && a.form.onDetails():
		a.form.details, cmd = a.form.details.Update(msg)
	}
	return cmd
}

func (a *App) scope() string {
	switch a.session.Step {
	case flow.StepRepoInput:
		if a.tokenPrompt {
			return scopeToken
		}
		return scopeRepo
	case flow.StepPreferences:
		if a.form.onDetails() {
			return scopeDetails
		}
		return scopePrefs
	case flow.StepPreview:
		if a.tab == tabCode {
			return scopeCode
		}
		return scopePreview
	}
	return string(a.session.Step)
}

func (a *App) notify(text string, isErr bool) tea.Cmd {
	a.toast = toast{id: a.toast.id + 1, text: text, isErr: isErr}
	id := a.toast.id
	ttl := a.cfg.UI.ToastTTL
	if ttl <= 0 {
		ttl = 4 * time.Second
	}
	return tea.Tick(ttl, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

const (
	chromeRows  = 4 // header, blank, status, footer
	fileListCol = 30
)

func (a *App) bodyHeight() int {
	if a.height <= 0 {
		return 0
	}
	return max(a.height-chromeRows, 1)
}

func (a *App) resize(w, h int) {
	if max(w, 20) != a.width {
		a.improvementsDoc = ""
	}
	a.width, a.height = max(w, 20), h
	inner := max(a.width-4, 10)

	a.repoInput.Width = min(inner-4, 72)
	a.tokenInput.Width = min(inner-8, 60)
	a.form.setWidth(min(inner, 90))
	a.bar.Width = min(inner, 60)
	a.phaseBar.Width = min(inner, 60)

	a.view.Width = inner
	if a.tab == tabCode {
		a.view.Width = max(inner-fileListCol-2, 10)
	}
	vh := 20
	if bh := a.bodyHeight(); bh > 0 {
		vh = max(bh-3, 3)
	}
	a.view.Height = vh
	if a.session.Step == flow.StepPreview {
		a.refreshView()
	}
}

func (a *App) View() string {
	var body string
	switch a.session.Step {
	case flow.StepHero:
		body = a.viewHero()
	case flow.StepRepoInput:
		body = a.viewRepo()
	case flow.StepPreferences:
		body = a.viewPrefs()
	case flow.StepProcessing:
		body = a.viewProcessing()
	case flow.StepPreview:
		body = a.viewPreview()
	case flow.StepSuccess:
		body = a.viewSuccess()
	}
	body = lipgloss.NewStyle().Padding(0, 2).Render(body)
	if bh := a.bodyHeight(); bh > 0 {
		body = lipgloss.NewStyle().Height(bh).Render(clipHeight(body, bh))
	}

	var b strings.Builder
	b.WriteString(a.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(renderStatusBar(a.toast, a.width))
	b.WriteString("\n")
	b.WriteString(renderFooter(a.keys.BindingsForScope(a.scope()), a.width))
	return b.String()
}

var stepTitles = []struct {
	step  flow.Step
	title string
}{
	{flow.StepHero, "Welcome"},
	{flow.StepRepoInput, "Repository"},
	{flow.StepPreferences, "Preferences"},
	{flow.StepProcessing, "Analysis"},
	{flow.StepPreview, "Review"},
	{flow.StepSuccess, "Pull Request"},
}

func (a *App) renderHeader() string {
	current := 0
	for i, s := range stepTitles {
		if s.step == a.session.Step {
			current = i
		}
	}
	parts := []string{stepOnStyle.Render(" frontfrend ")}
	sep := stepOffStyle.Render(" › ")
	for i, s := range stepTitles {
		style := stepOffStyle
		switch {
		case i == current:
			style = stepOnStyle
		case i < current:
			style = stepDoneStyle
		}
		if i > 0 {
			parts = append(parts, sep)
		} else {
			parts = append(parts, stepOffStyle.Render("  "))
		}
		parts = append(parts, style.Render(s.title))
	}
	return renderBar(headerBarStyle, a.width, strings.Join(parts, ""), colorMantle)
}

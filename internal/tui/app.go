// Package tui provides the interactive Bubble Tea dashboard for roomwise.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/roomwise/internal/config"
	"github.com/theirongolddev/roomwise/internal/model"
	"github.com/theirongolddev/roomwise/internal/planner"
	"github.com/theirongolddev/roomwise/internal/tui/components"
	"github.com/theirongolddev/roomwise/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Source is what the dashboard reads from.
type Source interface {
	Allocation(ctx context.Context, userID string, year int, budget decimal.Decimal) (planner.AllocationPlan, error)
	Dashboard(ctx context.Context, userID string, asOf time.Time, in planner.ProjectionInput, lookback time.Duration) (planner.Dashboard, error)
	ListAccounts(ctx context.Context, userID string) ([]model.Account, error)
}

// Options configures a new App.
type Options struct {
	UserID     string
	Currency   string
	Year       int
	Budget     decimal.Decimal
	Projection planner.ProjectionInput
	Lookback   time.Duration
	Now        func() time.Time
}

// DataLoadedMsg carries everything the tabs render.
type DataLoadedMsg struct {
	Plan      planner.AllocationPlan
	Dashboard planner.Dashboard
	Accounts  []model.Account
	LoadTime  time.Duration
	Err       error
}

// AllocationMsg is sent when a budget change has been re-allocated.
type AllocationMsg struct {
	Plan planner.AllocationPlan
	Err  error
}

const (
	tabAllocate = iota
	tabProject
	tabAccounts
	tabSettings
)

// App is the root Bubble Tea model.
type App struct {
	src  Source
	opts Options

	// Data
	plan     planner.AllocationPlan
	dash     planner.Dashboard
	accounts []model.Account
	loaded   bool
	loadErr  error
	loadTime time.Duration

	reloading bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Status bar message from the last action
	status    string
	statusErr bool

	// Per-tab state
	budgetIn      textinput.Model
	editingBudget bool
	accountCursor int
	settings      settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals setupValues
	needSetup bool

	spinner spinner.Model
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5
	loadTimeout      = 15 * time.Second
)

// loadConfigOrDefault loads config, falling back to defaults so the TUI
// can start even when the file is broken.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates the root model. The first-run form is shown when no
// config file exists yet.
func NewApp(src Source, opts Options) App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Year == 0 {
		opts.Year = opts.Now().Year()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		src:       src,
		opts:      opts,
		needSetup: !config.Exists(),
		budgetIn:  newBudgetInput(opts.Budget),
		settings:  settingsState{input: newSettingsInput()},
		spinner:   sp,
	}
}

func newBudgetInput(budget decimal.Decimal) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "monthly budget, e.g. 1500"
	ti.CharLimit = 16
	ti.Width = 20
	ti.SetValue(budget.StringFixed(2))
	return ti
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.src, a.opts),
		a.spinner.Tick,
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			a.moveCursor(1)
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.reloading = false
		a.loadTime = msg.LoadTime
		a.loadErr = msg.Err
		if msg.Err == nil {
			a.plan = msg.Plan
			a.dash = msg.Dashboard
			a.accounts = msg.Accounts
			a.clampAccountCursor()
		}

		if a.needSetup && a.setupForm == nil {
			a.setupVals = newSetupValues(loadConfigOrDefault())
			a.setupForm = newSetupForm(&a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case AllocationMsg:
		if msg.Err != nil {
			a.setStatus(msg.Err.Error(), true)
			return a, nil
		}
		a.plan = msg.Plan
		a.setStatus("Re-allocated "+formatMoney(msg.Plan.Request.MonthlyBudget, a.opts.Currency), false)
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.reloading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Cursor blinks and other internal messages for the setup form.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// The setup form owns the keyboard until it completes.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.activeTab == tabAllocate && a.editingBudget {
		return a.updateBudgetInput(msg)
	}
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if a.reloading {
			return a, nil
		}
		a.reloading = true
		return a, tea.Batch(loadDataCmd(a.src, a.opts), a.spinner.Tick)
	case "j", "down":
		a.moveCursor(1)
		return a, nil
	case "k", "up":
		a.moveCursor(-1)
		return a, nil
	case "left", "h":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "l":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "b", "enter":
		switch a.activeTab {
		case tabAllocate:
			a.editingBudget = true
			a.budgetIn.SetValue(a.opts.Budget.StringFixed(2))
			a.budgetIn.CursorEnd()
			cmd := a.budgetIn.Focus()
			return a, cmd
		case tabSettings:
			if key == "enter" {
				return a.settingsStartEdit()
			}
		}
		return a, nil
	case "[", "]":
		if a.activeTab == tabAllocate {
			return a.shiftYear(key)
		}
		return a, nil
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case tabAccounts:
		a.accountCursor += delta
		a.clampAccountCursor()
	case tabSettings:
		if a.settings.editing {
			return
		}
		a.settings.cursor = (a.settings.cursor + delta + settingsFieldCount) % settingsFieldCount
	}
}

func (a *App) clampAccountCursor() {
	if a.accountCursor >= len(a.accounts) {
		a.accountCursor = len(a.accounts) - 1
	}
	if a.accountCursor < 0 {
		a.accountCursor = 0
	}
}

func (a *App) setStatus(s string, isErr bool) {
	a.status = s
	a.statusErr = isErr
}

func (a App) updateBudgetInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.editingBudget = false
		a.budgetIn.Blur()
		budget, err := parseBudget(a.budgetIn.Value())
		if err != nil {
			a.setStatus(err.Error(), true)
			return a, nil
		}
		a.opts.Budget = budget
		return a, allocateCmd(a.src, a.opts)
	case "esc":
		a.editingBudget = false
		a.budgetIn.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.budgetIn, cmd = a.budgetIn.Update(msg)
	return a, cmd
}

// shiftYear moves the allocation year back or forward by one.
func (a App) shiftYear(key string) (tea.Model, tea.Cmd) {
	if key == "[" {
		a.opts.Year--
	} else {
		a.opts.Year++
	}
	return a, allocateCmd(a.src, a.opts)
}

func parseBudget(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimPrefix(s, "$")
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("budget %q is not a number", s)
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("budget must not be negative")
	}
	return v, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupForm = nil
		a.needSetup = false
		if err := a.saveSetupConfig(); err != nil {
			a.setStatus("Could not save config: "+err.Error(), true)
			return a, nil
		}
		a.setStatus("Saved "+config.Path(), false)
		a.reloading = true
		return a, tea.Batch(loadDataCmd(a.src, a.opts), a.spinner.Tick)
	case huh.StateAborted:
		a.setupForm = nil
		a.needSetup = false
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  roomwise needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ roomwise"))
	b.WriteString(subtitleStyle.Render(" · savings planner"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	b.WriteString(subtitleStyle.Render(fmt.Sprintf(" Loading plan for %s...", a.opts.UserID)))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Key).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"a p c x", "Jump to tab"},
			{"← →", "Previous / next tab"},
			{"j k", "Move in lists"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"b", "Edit monthly budget"},
			{"[ ]", "Previous / next year"},
			{"Enter", "Edit setting"},
			{"Esc", "Cancel edit"},
			{"r", "Reload"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar plus a context row
	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	ctxRow := pillStyle.Render(" user ") + accentStyle.Render(a.opts.UserID) +
		pillStyle.Render(" │ year ") + accentStyle.Render(fmt.Sprintf("%d", a.opts.Year)) +
		pillStyle.Render(" │ budget ") + accentStyle.Render(formatMoney(a.opts.Budget, a.opts.Currency)) +
		pillStyle.Render(" ")
	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(ctxRow)

	// 2. Status bar
	info := fmt.Sprintf("loaded in %dms", a.loadTime.Milliseconds())
	if a.reloading {
		info = a.spinner.View() + " reloading"
	}
	statusBar := components.RenderStatusBar(w, info, a.status, a.statusErr)

	// 3. Content height
	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	// 4. Tab content
	var content string
	switch {
	case a.loadErr != nil && a.activeTab != tabSettings:
		content = a.renderLoadError(cw)
	case a.activeTab == tabAllocate:
		content = a.renderAllocateTab(cw)
	case a.activeTab == tabProject:
		content = a.renderProjectTab(cw, contentH)
	case a.activeTab == tabAccounts:
		content = a.renderAccountsTab(cw)
	case a.activeTab == tabSettings:
		content = a.renderSettingsTab(cw)
	}

	// 5. Exactly contentH lines, each filled to the content width
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderLoadError(cw int) string {
	t := theme.Active
	errStyle := lipgloss.NewStyle().Foreground(t.Loss).Background(t.Surface)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	body := errStyle.Render(a.loadErr.Error()) + "\n\n" +
		hintStyle.Render("Check the database settings, then press r to retry.")
	return components.ContentCard("Could not load plan", body, cw)
}

// ─── Commands ───────────────────────────────────────────────────

// loadDataCmd loads the allocation, dashboard and accounts in one pass.
func loadDataCmd(src Source, opts Options) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		msg := DataLoadedMsg{}
		msg.Plan, msg.Err = src.Allocation(ctx, opts.UserID, opts.Year, opts.Budget)
		if msg.Err == nil {
			msg.Dashboard, msg.Err = src.Dashboard(ctx, opts.UserID, opts.Now(), opts.Projection, opts.Lookback)
		}
		if msg.Err == nil {
			msg.Accounts, msg.Err = src.ListAccounts(ctx, opts.UserID)
		}
		msg.LoadTime = time.Since(start)
		return msg
	}
}

func allocateCmd(src Source, opts Options) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		p, err := src.Allocation(ctx, opts.UserID, opts.Year, opts.Budget)
		return AllocationMsg{Plan: p, Err: err}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads every line to width w with bg so gaps
// between cards are painted.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX returns the tab under column x, or -1. Widths follow
// components.RenderTabBar: one separator column between tabs.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1
	}
	return -1
}

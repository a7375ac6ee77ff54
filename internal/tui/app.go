// Package tui renders an hnsearch session in the terminal with Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/letmevibethatforyou/hnsearch"
)

// sortKeys maps the number keys to sort columns.
var sortKeys = map[string]hnsearch.SortKey{
	"1": hnsearch.SortTitle,
	"2": hnsearch.SortAuthor,
	"3": hnsearch.SortComments,
	"4": hnsearch.SortScore,
}

// App is the root Bubble Tea model.
// The session is only touched from Update; fetches run in commands and come
// back as FetchDone messages.
type App struct {
	ctx     context.Context
	session *hnsearch.Session
	timeout time.Duration

	input   textinput.Model
	cursor  int
	history int // highlighted history entry, -1 for none
	err     error
	width   int
	height  int
}

// NewApp creates an App bound to session. Each fetch is limited to timeout
// when it is positive.
func NewApp(ctx context.Context, session *hnsearch.Session, timeout time.Duration) App {
	ti := textinput.New()
	ti.Prompt = "Search: "
	ti.Placeholder = "type a term and press enter"
	ti.CharLimit = 200
	ti.Width = 60
	ti.SetValue(session.SearchTerm())
	ti.Focus()

	return App{
		ctx:     ctx,
		session: session,
		timeout: timeout,
		input:   ti,
		history: -1,
	}
}

// Run starts the interactive program and blocks until it exits.
func Run(ctx context.Context, session *hnsearch.Session, timeout time.Duration) error {
	p := tea.NewProgram(NewApp(ctx, session, timeout), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init searches for the stored term, if any.
func (a App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.fetchCmd(a.session.SubmitSearch()))
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case FetchDone:
		if a.session.Settle(msg.Fetch, msg.Page, msg.Err) {
			a.err = msg.Err
			a.clampCursor()
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}
	if a.input.Focused() {
		return a.handleInputKey(msg)
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit

	case "/", "i":
		a.input.Focus()
		return a, textinput.Blink

	case "j", "down":
		if a.cursor < len(a.session.View().Items)-1 {
			a.cursor++
		}
		return a, nil

	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case "m":
		return a, a.fetchCmd(a.session.LoadMore())

	case "x", "delete":
		items := a.session.View().Items
		if a.cursor < len(items) {
			a.session.RemoveItem(items[a.cursor].ID)
			a.clampCursor()
		}
		return a, nil

	case "1", "2", "3", "4":
		a.session.SortBy(sortKeys[msg.String()])
		return a, nil

	case "tab":
		if n := len(a.session.History()); n > 0 {
			a.history = (a.history + 1) % n
		}
		return a, nil

	case "enter":
		history := a.session.History()
		if a.history < 0 || a.history >= len(history) {
			return a, nil
		}
		return a.selectHistory(history[a.history])
	}

	return a, nil
}

func (a App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		a.input.Blur()
		a.cursor = 0
		return a, a.fetchCmd(a.session.SubmitSearch())

	case tea.KeyEsc:
		a.input.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if value := a.input.Value(); value != a.session.SearchTerm() {
		if err := a.session.SetSearchTerm(a.ctx, value); err != nil {
			a.err = err
		}
	}
	a.clampCursor()
	return a, cmd
}

func (a App) selectHistory(term string) (tea.Model, tea.Cmd) {
	f, err := a.session.SelectHistory(a.ctx, term)
	a.err = err
	a.input.SetValue(term)
	a.history = -1
	a.cursor = 0
	return a, a.fetchCmd(f)
}

// fetchCmd runs f off the update loop.
func (a App) fetchCmd(f *hnsearch.Fetch) tea.Cmd {
	if f == nil {
		return nil
	}
	ctx, timeout := a.ctx, a.timeout
	return func() tea.Msg {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		page, err := f.Do(ctx)
		return FetchDone{Fetch: f, Page: page, Err: err}
	}
}

func (a *App) clampCursor() {
	n := len(a.session.View().Items)
	if a.cursor >= n {
		a.cursor = max(n-1, 0)
	}
}

// View renders the UI.
func (a App) View() string {
	view := a.session.View()
	width := a.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(Title.Render("Hacker News"))
	b.WriteString("\n")
	b.WriteString(a.input.View())
	b.WriteString("\n")

	if len(view.History) > 0 {
		b.WriteString(Meta.Render("Previous:"))
		for i, term := range view.History {
			style := HistoryEntry
			if i == a.history {
				style = HistorySelected
			}
			b.WriteString(style.Render(term))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(renderHeader(view.Sort, width))
	b.WriteString("\n")

	if view.IsError {
		msg := "Something went wrong ..."
		if view.Err != nil {
			msg = "Something went wrong: " + view.Err.Error()
		}
		b.WriteString(ErrorStyle.Render(msg))
		b.WriteString("\n")
	}
	for i, item := range view.Items {
		style := NormalItem
		if i == a.cursor && !a.input.Focused() {
			style = SelectedItem
		}
		b.WriteString(style.Render(renderRow(item, width)))
		b.WriteString("\n")
	}

	switch {
	case view.IsLoading:
		b.WriteString(Meta.Render("Loading ..."))
		b.WriteString("\n")
	case view.HasMore:
		b.WriteString(Meta.Render(fmt.Sprintf("page %d, press m for more", view.Page+1)))
		b.WriteString("\n")
	}

	if a.err != nil && !view.IsError {
		b.WriteString(ErrorStyle.Render("Error: " + a.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(StatusBar.Render(statusHints(a.input.Focused())))
	return b.String()
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Err returns the last error shown to the user (for testing).
func (a App) Err() error {
	return a.err
}

const (
	authorWidth = 14
	countWidth  = 10
)

func titleWidth(width int) int {
	return max(width-authorWidth-2*countWidth-3, 10)
}

func renderHeader(spec hnsearch.SortSpec, width int) string {
	columns := []struct {
		key   hnsearch.SortKey
		label string
		width int
		right bool
	}{
		{hnsearch.SortTitle, "1 Title", titleWidth(width), false},
		{hnsearch.SortAuthor, "2 Author", authorWidth, false},
		{hnsearch.SortComments, "3 Comments", countWidth, true},
		{hnsearch.SortScore, "4 Points", countWidth, true},
	}

	cells := make([]string, 0, len(columns))
	for _, col := range columns {
		label := col.label
		if spec.Key == col.key {
			if spec.Reversed {
				label += " v"
			} else {
				label += " ^"
			}
		}
		cell := pad(label, col.width, col.right)
		if spec.Key == col.key {
			cell = SortActive.Render(cell)
		} else {
			cell = Meta.Render(cell)
		}
		cells = append(cells, cell)
	}
	return strings.Join(cells, " ")
}

func renderRow(item hnsearch.Item, width int) string {
	return strings.Join([]string{
		pad(item.Title, titleWidth(width), false),
		pad(item.Author, authorWidth, false),
		pad(fmt.Sprint(item.CommentCount), countWidth, true),
		pad(fmt.Sprint(item.Score), countWidth, true),
	}, " ")
}

// pad truncates or pads s to exactly n runes.
func pad(s string, n int, right bool) string {
	r := []rune(s)
	if len(r) > n {
		if n <= 1 {
			return string(r[:n])
		}
		return string(r[:n-1]) + "…"
	}
	fill := strings.Repeat(" ", n-len(r))
	if right {
		return fill + s
	}
	return s + fill
}

func statusHints(editing bool) string {
	if editing {
		return "enter: search  esc: browse  ctrl+c: quit"
	}
	return "/: edit  j/k: move  m: more  x: remove  1-4: sort  tab/enter: history  q: quit"
}

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/custodia-labs/jarvis/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/jarvis/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/jarvis/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/jarvis/internal/core/domain"
)

// Slash commands typed into the input line.
const (
	cmdSearch = "/search"
	cmdNew    = "/new"
	cmdHelp   = "/help"
)

// Rows taken by everything except the transcript: title, input box, status.
const chromeHeight = 5

const helpText = `Ask a question about your documents and press enter.

  /search <query>  show the passages retrieval finds for a query
  /new             start a new conversation
  /help            show this help`

// entry is one block of the transcript.
type entry struct {
	role    domain.ChatRole
	text    string
	sources []string
	status  domain.AnswerStatus
	isError bool
}

// App is the chat TUI following the Elm architecture.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	newSessionID func() string
	sessionID    string
	transcript   []entry
	showSources  bool
	waiting      bool

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a chat app over the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	input := textinput.New()
	input.Placeholder = "Ask about your documents..."
	input.Prompt = "> "
	input.CharLimit = 2000
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	a := &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       styles.DefaultStyles(),
		keys:         keymap.DefaultKeyMap(),
		input:        input,
		viewport:     viewport.New(80, 20),
		spinner:      spin,
		newSessionID: uuid.NewString,
		showSources:  true,
	}
	a.sessionID = a.newSessionID()
	a.transcript = []entry{{role: domain.RoleAssistant, text: helpText}}
	a.refresh()
	return a, nil
}

// WithContext sets the context passed to the services.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// WithSessionID continues an existing conversation.
func (a *App) WithSessionID(id string) *App {
	if id != "" {
		a.sessionID = id
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.SetWindowTitle("jarvis"))
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.AnswerReceived:
		a.waiting = false
		if msg.Err != nil {
			a.append(entry{role: domain.RoleAssistant, text: msg.Err.Error(), isError: true})
			return a, nil
		}
		a.append(entry{
			role:    domain.RoleAssistant,
			text:    msg.Response.Response,
			sources: msg.Response.Sources,
			status:  msg.Response.Status,
		})
		return a, nil

	case messages.SearchCompleted:
		a.waiting = false
		a.append(searchEntry(msg))
		return a, nil

	case messages.SessionReset:
		a.sessionID = msg.SessionID
		a.transcript = nil
		a.append(entry{role: domain.RoleAssistant, text: "New conversation started."})
		return a, nil

	case spinner.TickMsg:
		if !a.waiting {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, a.keys.Quit):
		return a, tea.Quit

	case keymap.Matches(key, a.keys.Sources):
		a.showSources = !a.showSources
		a.refresh()
		return a, nil

	case keymap.Matches(key, a.keys.NewSession):
		return a, a.resetSession()

	case keymap.Matches(key, a.keys.ScrollUp), keymap.Matches(key, a.keys.ScrollDown):
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd

	case keymap.Matches(key, a.keys.Send):
		return a, a.submit()
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit handles the input line. Input is ignored while a request is in flight.
func (a *App) submit() tea.Cmd {
	line := strings.TrimSpace(a.input.Value())
	if line == "" || a.waiting {
		return nil
	}
	a.input.Reset()

	switch {
	case line == cmdHelp:
		a.append(entry{role: domain.RoleAssistant, text: helpText})
		return nil
	case line == cmdNew:
		return a.resetSession()
	case strings.HasPrefix(line, cmdSearch+" "):
		query := strings.TrimSpace(strings.TrimPrefix(line, cmdSearch))
		a.append(entry{role: domain.RoleUser, text: line})
		a.waiting = true
		return tea.Batch(a.search(query), a.spinner.Tick)
	}

	a.append(entry{role: domain.RoleUser, text: line})
	a.waiting = true
	return tea.Batch(a.ask(line), a.spinner.Tick)
}

func (a *App) ask(question string) tea.Cmd {
	ctx, chat, session := a.ctx, a.ports.Chat, a.sessionID
	return func() tea.Msg {
		resp, err := chat.Ask(ctx, domain.ChatRequest{Message: question, SessionID: session})
		return messages.AnswerReceived{Question: question, Response: resp, Err: err}
	}
}

func (a *App) search(query string) tea.Cmd {
	ctx, svc := a.ctx, a.ports.Search
	return func() tea.Msg {
		return messages.SearchCompleted{Query: query, Result: svc.Search(ctx, query, 0)}
	}
}

func (a *App) resetSession() tea.Cmd {
	id := a.newSessionID()
	return func() tea.Msg {
		return messages.SessionReset{SessionID: id}
	}
}

func searchEntry(msg messages.SearchCompleted) entry {
	if msg.Result.Err != nil {
		return entry{role: domain.RoleAssistant, text: "Search failed: " + msg.Result.Err.Error(), isError: true}
	}
	if len(msg.Result.Matches) == 0 {
		return entry{role: domain.RoleAssistant, text: fmt.Sprintf("No passages matched %q.", msg.Query)}
	}

	var b strings.Builder
	for i, m := range msg.Result.Matches {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s  %.3f\n%s", i+1, m.Source(), m.Score, preview(m.Metadata.Text, 240))
	}
	return entry{role: domain.RoleAssistant, text: b.String()}
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func (a *App) append(e entry) {
	a.transcript = append(a.transcript, e)
	a.refresh()
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (a *App) refresh() {
	a.viewport.SetContent(a.renderTranscript())
	a.viewport.GotoBottom()
}

func (a *App) renderTranscript() string {
	width := a.viewport.Width
	if width <= 0 {
		width = 80
	}
	body := lipgloss.NewStyle().Width(width)

	blocks := make([]string, 0, len(a.transcript))
	for _, e := range a.transcript {
		var b strings.Builder
		if e.role == domain.RoleUser {
			b.WriteString(a.styles.User.Render("You"))
		} else {
			b.WriteString(a.styles.Assistant.Render("Jarvis"))
			if e.status == domain.AnswerFallback {
				b.WriteString(a.styles.Warning.Render("  (model unavailable, extractive answer)"))
			}
		}
		b.WriteString("\n")

		text := a.styles.Normal.Render(body.Render(e.text))
		if e.isError {
			text = a.styles.Error.Render(body.Render(e.text))
		}
		b.WriteString(text)

		if a.showSources && len(e.sources) > 0 {
			b.WriteString("\n")
			b.WriteString(a.styles.Muted.Render(body.Render("Sources: " + strings.Join(e.sources, ", "))))
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	title := a.styles.Title.Render("jarvis") +
		a.styles.Muted.Render("  session "+shortID(a.sessionID))

	status := a.statusLine()
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		a.viewport.View(),
		a.styles.Input.Width(a.width-2).Render(a.input.View()),
		a.styles.StatusBar.Render(status),
	)
}

func (a *App) statusLine() string {
	if a.waiting {
		return a.spinner.View() + " thinking..."
	}
	parts := make([]string, 0, len(a.keys.ShortHelp()))
	for _, b := range a.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " | ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// SetDimensions resizes the layout.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	a.viewport.Width = width
	a.viewport.Height = max(height-chromeHeight, 1)
	a.input.Width = max(width-6, 10)
	a.refresh()
}

// SessionID returns the current conversation id.
func (a *App) SessionID() string {
	return a.sessionID
}

// Waiting reports whether a request is in flight.
func (a *App) Waiting() bool {
	return a.waiting
}

// Transcript returns the plain text of every transcript entry.
func (a *App) Transcript() []string {
	out := make([]string, len(a.transcript))
	for i, e := range a.transcript {
		out[i] = e.text
	}
	return out
}

// Run starts the TUI in the alternate screen.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx)).Run()
	return err
}

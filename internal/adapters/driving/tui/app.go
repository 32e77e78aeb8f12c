package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/keymap"
	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/messages"
	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/styles"
	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/views/chat"
	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/views/doccontent"
	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/views/documents"
	"github.com/merkuze-health/merkuze/internal/adapters/driving/tui/views/menu"
)

var _ tea.Model = (*App)(nil)

// App routes messages between the menu, chat and document screens. Only
// the active screen sees key presses; results of background work go to the
// screen that asked for them even after the user has moved on.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap
	help   help.Model

	menuView       *menu.View
	chatView       *chat.View
	documentsView  *documents.View
	docContentView *doccontent.View

	currentView messages.ViewType
	err         error

	width, height int
	ready         bool
}

type Option func(*options)

type options struct {
	theme *styles.Theme
}

// WithTheme draws every view with theme instead of the dark palette.
func WithTheme(theme *styles.Theme) Option {
	return func(o *options) { o.theme = theme }
}

func NewApp(ports *Ports, opts ...Option) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := styles.NewStyles(o.theme)
	keys := keymap.DefaultKeyMap()
	return &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		keys:           keys,
		help:           help.New(),
		menuView:       menu.NewView(s),
		chatView:       chat.NewView(s, keys, ports.Chat, ports.Index),
		documentsView:  documents.NewView(s, ports.Document),
		docContentView: doccontent.NewView(s, ports.Document),
		currentView:    messages.ViewMenu,
	}, nil
}

// WithContext cancels in-flight questions and document loads when ctx ends.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	a.docContentView.WithContext(ctx)
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("merkuze - Hospital Assistant"),
		a.chatView.LoadStats(),
	)
}

// forward hands msg to one screen and keeps the screen it returns.
func forward[V interface{ Update(tea.Msg) (V, tea.Cmd) }](v *V, msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	*v, cmd = (*v).Update(msg)
	return cmd
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keys.Quit) {
			return a, tea.Quit
		}

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.AnswerReceived:
		return a, forward(&a.chatView, msg)

	case messages.StatsLoaded:
		forward(&a.menuView, msg)
		return a, forward(&a.chatView, msg)

	case messages.DocumentsLoaded, messages.DocumentRemoved:
		cmd := forward(&a.documentsView, msg)
		a.err = a.documentsView.Err()
		return a, cmd

	case messages.DocumentSelected:
		doc := msg.Document
		a.currentView = messages.ViewDocContent
		return a, a.docContentView.SetDocument(&doc)

	case messages.DocumentContentLoaded:
		return a, forward(&a.docContentView, msg)

	case messages.ErrorOccurred:
		a.err = msg.Err

	case messages.Quit:
		return a, tea.Quit
	}
	return a, a.updateCurrent(msg)
}

func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.currentView = view
	switch view {
	case messages.ViewChat:
		return a.chatView.Init()
	case messages.ViewDocuments:
		return a.documentsView.Init()
	default:
		return nil
	}
}

func (a *App) updateCurrent(msg tea.Msg) tea.Cmd {
	switch a.currentView {
	case messages.ViewMenu:
		return forward(&a.menuView, msg)
	case messages.ViewChat:
		return forward(&a.chatView, msg)
	case messages.ViewDocuments:
		return forward(&a.documentsView, msg)
	case messages.ViewDocContent:
		return forward(&a.docContentView, msg)
	case messages.ViewHelp:
		if k, ok := msg.(tea.KeyMsg); ok && keymap.Matches(k.String(), a.keys.Back) {
			a.currentView = messages.ViewMenu
		}
	}
	return nil
}

func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewDocContent:
		return a.docContentView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

const groundingNote = "Answers come only from the ingested hospital knowledge base. When no\n" +
	"grounded answer is possible the assistant says so instead of guessing."

func (a *App) viewHelp() string {
	a.help.Width = a.width
	return a.styles.Title.Render("Help") + "\n\n" +
		a.help.FullHelpView(a.keys.FullHelp()) + "\n\n" +
		a.styles.Muted.Render(groundingNote) + "\n\n" +
		a.styles.Help.Render("[esc] back to menu")
}

// Run blocks until the user quits or the context passed to WithContext ends.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx)).Run()
	return err
}

func (a *App) CurrentView() messages.ViewType { return a.currentView }

func (a *App) Err() error { return a.err }

// Ready is false until the first window size arrives.
func (a *App) Ready() bool { return a.ready }

func (a *App) Chat() *chat.View { return a.chatView }

func (a *App) SetDimensions(width, height int) {
	a.width, a.height, a.ready = width, height, true
	for _, v := range []interface{ SetDimensions(int, int) }{
		a.menuView, a.chatView, a.documentsView, a.docContentView,
	} {
		v.SetDimensions(width, height)
	}
}

// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"log"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hanuai/hanu-tui/internal/admin"
	"github.com/hanuai/hanu-tui/internal/api"
	"github.com/hanuai/hanu-tui/internal/auth"
	"github.com/hanuai/hanu-tui/internal/config"
	"github.com/hanuai/hanu-tui/internal/objstore"
	"github.com/hanuai/hanu-tui/internal/session"
	"github.com/hanuai/hanu-tui/internal/store"
	"github.com/hanuai/hanu-tui/internal/task"
	"github.com/hanuai/hanu-tui/internal/ui/adminview"
	"github.com/hanuai/hanu-tui/internal/ui/chat"
	"github.com/hanuai/hanu-tui/internal/ui/resourcepanel"
	"github.com/hanuai/hanu-tui/internal/ui/sidebar"
	"github.com/hanuai/hanu-tui/internal/ui/styles"
	"github.com/hanuai/hanu-tui/internal/ui/taskpanel"
)

// focusArea is the component receiving keyboard input.
type focusArea int

const (
	focusSidebar focusArea = iota
	focusChat
	focusTasks
	focusResources
	focusAdmin
)

// sidePanel is the currently visible right-hand panel.
type sidePanel int

const (
	panelTasks sidePanel = iota
	panelResources
)

// KeyMap defines the global shell bindings.
type KeyMap struct {
	Quit           key.Binding
	FocusSidebar   key.Binding
	FocusChat      key.Binding
	FocusTasks     key.Binding
	FocusResources key.Binding
	AdminHome      key.Binding
}

// DefaultKeyMap returns the default shell bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q"),
			key.WithHelp("C-q", "quit"),
		),
		FocusSidebar: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("C-b", "conversations"),
		),
		FocusChat: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "chat"),
		),
		FocusTasks: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "tasks"),
		),
		FocusResources: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "resources"),
		),
		AdminHome: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "admin home"),
		),
	}
}

// Deps bundles the collaborators the shell needs.
type Deps struct {
	Config   *config.Config
	Store    *store.Store
	Auth     *auth.Authenticator
	Actor    *admin.Actor
	Client   *api.Client
	Uploader *objstore.Client
	Logger   *log.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	theme  *styles.Theme
	keys   KeyMap
	logger *log.Logger

	cfg      *config.Config
	store    *store.Store
	auth     *auth.Authenticator
	actor    *admin.Actor
	client   *api.Client
	uploader *objstore.Client

	session    *session.Session
	threadList *store.ThreadList
	editor     *task.Editor

	sidebarView  sidebar.Model
	chatView     chat.Model
	tasksView    taskpanel.Model
	resourceView resourcepanel.Model
	adminView    adminview.Model

	focus       focusArea
	panel       sidePanel
	width       int
	height      int
	statusErr   string
	savingTasks bool
}

// New builds the root model.
func New(deps Deps) *Model {
	theme := styles.NewTheme()
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}

	sess := session.New(deps.Client, deps.Store, deps.Config.UI.WelcomeText, logger)

	m := &Model{
		theme:        theme,
		keys:         DefaultKeyMap(),
		logger:       logger,
		cfg:          deps.Config,
		store:        deps.Store,
		auth:         deps.Auth,
		actor:        deps.Actor,
		client:       deps.Client,
		uploader:     deps.Uploader,
		session:      sess,
		threadList:   store.NewThreadList(),
		sidebarView:  sidebar.New(theme),
		chatView:     chat.New(theme),
		tasksView:    taskpanel.New(theme),
		resourceView: resourcepanel.New(theme),
		adminView:    adminview.New(theme),
		focus:        focusChat,
	}

	m.chatView.SetShowOfferings(true)
	m.chatView.SetMessages(sess.Messages())

	// A privileged user with no target lands on the activity screen.
	if m.actor.IsPrivileged() && !m.actor.Impersonating() {
		m.focus = focusAdmin
	}
	return m
}

// Init loads the initial data.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.chatView.Init(),
		m.loadThreadsCmd(),
		m.loadResourcesCmd(),
	}
	if m.focus == focusAdmin {
		cmds = append(cmds, m.loadActivityCmd())
	}
	return tea.Batch(cmds...)
}

// editable reports whether the current actor may edit tasks.
func (m *Model) editable() bool { return m.actor.IsPrivileged() }

// refreshTaskPanel pushes the session's task mapping into the panel,
// rebuilding the working copy for privileged users.
func (m *Model) refreshTaskPanel() {
	tasks := m.session.Tasks()
	if m.editable() && m.session.ThreadID() != "" {
		m.editor = task.NewEditor(m.session.ThreadID(), tasks)
		m.tasksView.SetEditor(m.editor)
	} else {
		m.editor = nil
		m.tasksView.SetTasks(tasks)
	}
	m.tasksView.SetEditable(m.editable())
}

// syncChat pushes session state into the chat view.
func (m *Model) syncChat() {
	m.chatView.SetMessages(m.session.Messages())
	m.chatView.SetSending(m.session.Sending())
	m.chatView.SetShowOfferings(m.session.ThreadID() == "" && m.session.Phase() == session.PhaseEmpty)
	if th, ok := m.threadList.Get(m.session.ThreadID()); ok {
		m.chatView.SetTitle(th.Title)
	} else if m.session.ThreadID() == "" {
		m.chatView.SetTitle("")
	}
}

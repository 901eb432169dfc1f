// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"

	"github.com/hanuai/hanu-tui/internal/store"
	"github.com/hanuai/hanu-tui/internal/ui/adminview"
	"github.com/hanuai/hanu-tui/internal/ui/chat"
	"github.com/hanuai/hanu-tui/internal/ui/resourcepanel"
	"github.com/hanuai/hanu-tui/internal/ui/sidebar"
	"github.com/hanuai/hanu-tui/internal/ui/styles"
	"github.com/hanuai/hanu-tui/internal/ui/taskpanel"
)

// Update routes messages to the focused component and applies background
// results to the session.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd

	// ------------------------------------------------------------------
	// Component intents
	// ------------------------------------------------------------------

	case sidebar.SelectThreadMsg:
		return m.openThread(msg.ThreadID)

	case sidebar.NewChatMsg:
		m.session.SelectNone()
		m.refreshTaskPanel()
		m.syncChat()
		m.focus = focusChat
		return m, nil

	case sidebar.SignOutMsg:
		m.auth.SignOut()
		return m, tea.Quit

	case chat.SubmitMsg:
		return m.submit(msg.Query)

	case chat.PickOfferingMsg:
		return m.submit(msg.Query)

	case chat.RenameMsg:
		if id := m.session.ThreadID(); id != "" {
			return m, m.renameCmd(id, msg.Title)
		}
		return m, nil

	case taskpanel.SaveTasksMsg:
		if m.editor != nil && !m.savingTasks {
			m.savingTasks = true
			m.tasksView.SetSaving(true)
			return m, m.saveTasksCmd()
		}
		return m, nil

	case taskpanel.UploadMediaMsg:
		if m.editor == nil {
			return m, nil
		}
		if !m.uploader.IsConfigured() {
			m.tasksView.SetStatus("uploads are not configured")
			return m, nil
		}
		return m, m.uploadMediaCmd(msg)

	case resourcepanel.AddLinkMsg:
		typ := store.ClassifyResourceURL(msg.URL, m.cfg.Upload.HostPattern)
		return m, m.addResourceCmd(msg.Title, msg.URL, typ)

	case resourcepanel.UploadFileMsg:
		if !m.uploader.IsConfigured() {
			m.resourceView.SetStatus("uploads are not configured")
			return m, nil
		}
		return m, m.uploadFileCmd(msg.Title, msg.Path)

	case resourcepanel.InsertResourceMsg:
		m.chatView.InsertText(msg.Resource.URL)
		m.focus = focusChat
		return m, m.touchResourceCmd(msg.Resource.ID)

	case adminview.ImpersonateMsg:
		return m.impersonate(msg.UserID)

	// ------------------------------------------------------------------
	// Background results
	// ------------------------------------------------------------------

	case ThreadsLoadedMsg:
		if msg.Err != nil {
			m.logger.Printf("shell: list threads: %v", msg.Err)
			m.statusErr = "could not load conversations"
			return m, nil
		}
		m.statusErr = ""
		m.threadList.Set(msg.Threads)
		m.sidebarView.SetThreads(m.threadList.All())
		return m, nil

	case StateLoadedMsg:
		if msg.Err != nil {
			m.session.ApplyLoadFailure(msg.Gen, msg.Err)
			m.statusErr = "could not load the conversation"
		} else if m.session.ApplyState(msg.Gen, msg.Resp) {
			m.statusErr = ""
			m.refreshTaskPanel()
		}
		m.syncChat()
		return m, nil

	case SendDoneMsg:
		// A stale outcome (the user moved on mid-send) is discarded by
		// the session; it must not touch status or the thread list
		// either.
		if msg.Err != nil {
			if m.session.ApplySendFailure(msg.Gen, msg.Err) {
				m.statusErr = "message failed to send"
			}
		} else if m.session.ApplyState(msg.Gen, msg.Resp) {
			m.statusErr = ""
			m.refreshTaskPanel()
			// The send bumped the originating thread's activity date.
			m.threadList.Update(msg.ThreadID, "", store.Now())
			m.sidebarView.SetThreads(m.threadList.All())
		}
		m.syncChat()
		return m, nil

	case NewThreadDoneMsg:
		if msg.Err != nil {
			m.session.ApplySendFailure(msg.Gen, msg.Err)
			m.statusErr = "could not start the conversation"
			m.syncChat()
			return m, nil
		}
		if m.session.ApplyNewThread(msg.Gen, msg.Thread, msg.Resp) {
			m.statusErr = ""
			m.threadList.Add(msg.Thread)
			m.sidebarView.SetThreads(m.threadList.All())
			m.sidebarView.SetActive(msg.Thread.ID)
			m.refreshTaskPanel()
		}
		m.syncChat()
		return m, nil

	case RenameDoneMsg:
		if msg.Err != nil {
			m.logger.Printf("shell: rename thread: %v", msg.Err)
			m.statusErr = "rename failed"
			return m, m.loadThreadsCmd()
		}
		m.threadList.Update(msg.ThreadID, msg.Title, store.Now())
		m.sidebarView.SetThreads(m.threadList.All())
		m.syncChat()
		return m, nil

	case TasksSavedMsg:
		m.savingTasks = false
		m.tasksView.SetSaving(false)
		if msg.Err != nil {
			m.logger.Printf("shell: save tasks: %v", msg.Err)
			m.statusErr = "task changes not saved"
			return m, nil
		}
		m.statusErr = ""
		if m.editor != nil && m.editor.ThreadID() == msg.ThreadID {
			m.editor.Replace(msg.Resp.Tasks)
			m.tasksView.SetEditor(m.editor)
		}
		return m, nil

	case MediaUploadedMsg:
		if msg.Err != nil {
			m.logger.Printf("shell: media upload: %v", msg.Err)
			m.tasksView.SetStatus("upload failed")
			return m, nil
		}
		if m.editor != nil {
			if err := m.editor.AddMediaURL(msg.TaskID, msg.ResultID, msg.Kind, msg.URL); err != nil {
				m.tasksView.SetStatus(err.Error())
				return m, nil
			}
			m.tasksView.SetEditor(m.editor)
			m.tasksView.SetStatus("")
		}
		return m, nil

	case ResourcesLoadedMsg:
		m.resourceView.SetResources(msg.Resources)
		return m, nil

	case ResourceSavedMsg:
		if msg.Err != nil {
			m.resourceView.SetStatus(msg.Err.Error())
			return m, nil
		}
		m.resourceView.SetStatus("")
		return m, m.loadResourcesCmd()

	case UploadDoneMsg:
		if msg.Err != nil {
			m.logger.Printf("shell: upload: %v", msg.Err)
			m.resourceView.SetStatus("upload failed")
			return m, nil
		}
		return m, m.addResourceCmd(msg.Title, msg.URL, store.ResourceFile)

	case ActivityLoadedMsg:
		if msg.Err != nil {
			m.logger.Printf("shell: user activity: %v", msg.Err)
			m.statusErr = "could not load user activity"
			return m, nil
		}
		m.adminView.SetActivity(msg.Rows)
		return m, nil

	case ConfigChangedMsg:
		m.cfg = msg.Config
		return m, nil
	}

	return m, nil
}

// =============================================================================
// KEY ROUTING
// =============================================================================

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.FocusSidebar):
		m.focus = focusSidebar
		return m, nil
	case key.Matches(msg, m.keys.FocusChat):
		if m.focus != focusAdmin {
			m.focus = focusChat
		}
		return m, nil
	case key.Matches(msg, m.keys.FocusTasks):
		if m.focus != focusAdmin {
			m.focus = focusTasks
			m.panel = panelTasks
		}
		return m, nil
	case key.Matches(msg, m.keys.FocusResources):
		if m.focus != focusAdmin {
			m.focus = focusResources
			m.panel = panelResources
		}
		return m, nil

	case key.Matches(msg, m.keys.AdminHome):
		if m.actor.IsPrivileged() {
			m.actor.ClearTarget()
			m.session.SelectNone()
			m.refreshTaskPanel()
			m.syncChat()
			m.focus = focusAdmin
			return m, m.loadActivityCmd()
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusSidebar:
		m.sidebarView, cmd = m.sidebarView.Update(msg)
	case focusChat:
		m.chatView, cmd = m.chatView.Update(msg)
	case focusTasks:
		m.tasksView, cmd = m.tasksView.Update(msg)
	case focusResources:
		m.resourceView, cmd = m.resourceView.Update(msg)
	case focusAdmin:
		m.adminView, cmd = m.adminView.Update(msg)
	}
	return m, cmd
}

// =============================================================================
// FLOWS
// =============================================================================

func (m *Model) openThread(threadID string) (tea.Model, tea.Cmd) {
	gen := m.session.SelectThread(threadID)
	m.sidebarView.SetActive(threadID)
	m.refreshTaskPanel()
	m.syncChat()
	m.focus = focusChat
	return m, m.loadStateCmd(gen, threadID)
}

func (m *Model) submit(query string) (tea.Model, tea.Cmd) {
	userID := m.actor.ActingUserID()
	if m.session.ThreadID() == "" {
		q, gen, err := m.session.BeginNewThread(query, userID)
		if err != nil {
			return m, nil
		}
		m.syncChat()
		return m, m.newThreadCmd(gen, q)
	}
	q, gen, err := m.session.BeginSend(query, userID)
	if err != nil {
		return m, nil
	}
	m.syncChat()
	return m, m.sendCmd(gen, m.session.ThreadID(), q)
}

func (m *Model) impersonate(userID string) (tea.Model, tea.Cmd) {
	m.actor.SelectTarget(userID)
	m.session.SelectNone()
	m.refreshTaskPanel()
	m.syncChat()
	m.focus = focusSidebar
	return m, tea.Batch(m.loadThreadsCmd(), m.loadResourcesCmd())
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	sidebarWidth := 0
	panelWidth := 0
	switch m.theme.GetLayoutMode() {
	case styles.LayoutMedium:
		sidebarWidth = 28
	case styles.LayoutWide:
		sidebarWidth = 28
		panelWidth = 40
	}

	contentHeight := height - 1 // status bar
	m.sidebarView.SetSize(sidebarWidth, contentHeight)
	m.chatView.SetSize(width-sidebarWidth-panelWidth, contentHeight)
	m.tasksView.SetSize(panelWidth, contentHeight)
	m.resourceView.SetSize(panelWidth, contentHeight)
	m.adminView.SetSize(width, contentHeight)
}

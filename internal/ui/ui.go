// Package ui implements the interactive terminal interface: a folder
// pane on the left and an email pane on the right, backed by the same
// service layer the CLI commands use.
package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/black-desk/gmail-tui/internal/imap"
	"github.com/black-desk/gmail-tui/internal/models"
)

const emailPageSize = 50

type pane int

const (
	folderPane pane = iota
	emailPane
)

var (
	activeBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))
	inactiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

type folderItem struct {
	name string
}

func (i folderItem) Title() string       { return i.name }
func (i folderItem) Description() string { return "" }
func (i folderItem) FilterValue() string { return i.name }

type emailItem struct {
	meta *models.EmailMetadata
}

func (i emailItem) Title() string {
	if i.meta.Subject == "" {
		return "(no subject)"
	}
	return i.meta.Subject
}

func (i emailItem) Description() string {
	desc := i.meta.FromAddr
	if !i.meta.InternalDate.IsZero() {
		desc = fmt.Sprintf("%s  %s", i.meta.InternalDate.Format("2006-01-02 15:04"), desc)
	}
	return desc
}

func (i emailItem) FilterValue() string {
	return i.meta.Subject + " " + i.meta.FromAddr
}

// foldersLoadedMsg carries a completed folder listing into the update
// loop.
type foldersLoadedMsg struct {
	names []string
}

// emailsLoadedMsg carries a completed email listing for one folder.
type emailsLoadedMsg struct {
	folder string
	emails []*models.EmailMetadata
}

// errMsg reports a failed background load. The UI stays alive and
// shows the error in the status line.
type errMsg struct {
	err error
}

// Model is the bubbletea model for the mail browser.
type Model struct {
	svc *imap.Service

	folders list.Model
	emails  list.Model

	focus   pane
	folder  string
	status  string
	lastErr error

	width  int
	height int
}

// NewModel creates the initial UI model.
func NewModel(svc *imap.Service) Model {
	folderDelegate := list.NewDefaultDelegate()
	folderDelegate.ShowDescription = false

	folders := list.New(nil, folderDelegate, 0, 0)
	folders.Title = "Folders"
	folders.SetShowHelp(false)

	emails := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	emails.Title = "Emails"
	emails.SetShowHelp(false)

	return Model{
		svc:     svc,
		folders: folders,
		emails:  emails,
		focus:   folderPane,
		status:  "loading folders...",
	}
}

// Init kicks off the first folder load.
func (m Model) Init() tea.Cmd {
	return m.loadFolders()
}

func (m Model) loadFolders() tea.Cmd {
	return func() tea.Msg {
		tree, err := m.svc.FolderTree()
		if err != nil {
			return errMsg{err: err}
		}
		return foldersLoadedMsg{names: tree.Names()}
	}
}

func (m Model) loadEmails(folder string) tea.Cmd {
	return func() tea.Msg {
		emails, err := m.svc.ListEmails(folder, emailPageSize)
		if err != nil {
			return errMsg{err: err}
		}
		return emailsLoadedMsg{folder: folder, emails: emails}
	}
}

// Update handles key presses and completed background loads.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case foldersLoadedMsg:
		items := make([]list.Item, 0, len(msg.names))
		for _, name := range msg.names {
			items = append(items, folderItem{name: name})
		}
		m.folders.SetItems(items)
		m.lastErr = nil
		m.status = fmt.Sprintf("%d folders", len(msg.names))
		return m, nil

	case emailsLoadedMsg:
		items := make([]list.Item, 0, len(msg.emails))
		for _, e := range msg.emails {
			items = append(items, emailItem{meta: e})
		}
		m.emails.SetItems(items)
		m.folder = msg.folder
		m.emails.Title = msg.folder
		m.lastErr = nil
		m.status = fmt.Sprintf("%s: %d emails", msg.folder, len(msg.emails))
		return m, nil

	case errMsg:
		m.lastErr = msg.err
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			if m.focus == folderPane {
				m.focus = emailPane
			} else {
				m.focus = folderPane
			}
			return m, nil
		case "r":
			if m.focus == emailPane && m.folder != "" {
				m.status = "refreshing " + m.folder + "..."
				return m, m.loadEmails(m.folder)
			}
			m.status = "refreshing folders..."
			return m, m.loadFolders()
		case "enter":
			if m.focus == folderPane {
				if item, ok := m.folders.SelectedItem().(folderItem); ok {
					m.status = "loading " + item.name + "..."
					return m, m.loadEmails(item.name)
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.focus == folderPane {
		m.folders, cmd = m.folders.Update(msg)
	} else {
		m.emails, cmd = m.emails.Update(msg)
	}
	return m, cmd
}

func (m *Model) resize() {
	statusHeight := 1
	paneHeight := m.height - statusHeight - 2
	if paneHeight < 3 {
		paneHeight = 3
	}
	folderWidth := m.width / 3
	emailWidth := m.width - folderWidth - 4
	if folderWidth < 10 {
		folderWidth = 10
	}
	if emailWidth < 10 {
		emailWidth = 10
	}
	m.folders.SetSize(folderWidth, paneHeight)
	m.emails.SetSize(emailWidth, paneHeight)
}

// View renders both panes and the status line.
func (m Model) View() string {
	folderStyle := inactiveBorder
	emailStyle := inactiveBorder
	if m.focus == folderPane {
		folderStyle = activeBorder
	} else {
		emailStyle = activeBorder
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		folderStyle.Render(m.folders.View()),
		emailStyle.Render(m.emails.View()),
	)

	status := statusStyle.Render(m.status)
	if m.lastErr != nil {
		status = errorStyle.Render("error: " + m.lastErr.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, panes, status)
}

// Run starts the interactive UI and blocks until the user quits.
func Run(svc *imap.Service) error {
	p := tea.NewProgram(NewModel(svc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run UI: %w", err)
	}
	return nil
}

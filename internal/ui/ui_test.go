package ui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/black-desk/gmail-tui/internal/models"
)

func TestNewModel(t *testing.T) {
	m := NewModel(nil)
	assert.Equal(t, folderPane, m.focus)
	assert.Equal(t, "Folders", m.folders.Title)
}

func TestUpdateFoldersLoaded(t *testing.T) {
	m := NewModel(nil)

	updated, _ := m.Update(foldersLoadedMsg{names: []string{"INBOX", "Work", "Work/Projects"}})
	m = updated.(Model)

	require.Len(t, m.folders.Items(), 3)
	assert.Equal(t, "3 folders", m.status)
	assert.NoError(t, m.lastErr)
}

func TestUpdateEmailsLoaded(t *testing.T) {
	m := NewModel(nil)

	emails := []*models.EmailMetadata{
		{UID: 1, Subject: "Hello", FromAddr: "<a@example.com>", InternalDate: time.Now()},
		{UID: 2},
	}
	updated, _ := m.Update(emailsLoadedMsg{folder: "INBOX", emails: emails})
	m = updated.(Model)

	require.Len(t, m.emails.Items(), 2)
	assert.Equal(t, "INBOX", m.folder)
	assert.Equal(t, "INBOX", m.emails.Title)
}

func TestUpdateErrorKeepsUIAlive(t *testing.T) {
	m := NewModel(nil)

	updated, cmd := m.Update(errMsg{err: errors.New("connection refused")})
	m = updated.(Model)

	assert.Nil(t, cmd)
	assert.EqualError(t, m.lastErr, "connection refused")
	assert.Contains(t, m.View(), "connection refused")
}

func TestUpdateTabSwitchesFocus(t *testing.T) {
	m := NewModel(nil)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	assert.Equal(t, emailPane, m.focus)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	assert.Equal(t, folderPane, m.focus)
}

func TestUpdateQuit(t *testing.T) {
	m := NewModel(nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestEmailItemTitles(t *testing.T) {
	assert.Equal(t, "(no subject)", emailItem{meta: &models.EmailMetadata{}}.Title())
	assert.Equal(t, "Hi", emailItem{meta: &models.EmailMetadata{Subject: "Hi"}}.Title())
}

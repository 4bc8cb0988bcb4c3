package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/zarlcorp/zprofile/internal/mailbox"
)

// listModel lists the mailboxes provisioned in this session.
type listModel struct {
	mailboxes []mailbox.Mailbox
	cached    map[string]int
	cursor    int
	flash     string
}

func newListModel(mbs []mailbox.Mailbox) listModel {
	return listModel{mailboxes: mbs}
}

func (m listModel) Init() tea.Cmd {
	return nil
}

func (m listModel) Update(msg tea.Msg) (listModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m listModel) handleKey(msg tea.KeyMsg) (listModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewMenu} }
	}

	if len(m.mailboxes) == 0 {
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(m.mailboxes)-1 {
			m.cursor++
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		id := m.mailboxes[m.cursor].ID
		return m, func() tea.Msg { return openInboxMsg{mailboxID: id} }
	}

	switch msg.String() {
	case "c":
		if err := copyToClipboard(m.mailboxes[m.cursor].Address); err != nil {
			m.flash = "copy: " + err.Error()
			return m, clearFlashAfter()
		}
		m.flash = "copied!"
		return m, clearFlashAfter()

	case "d":
		id := m.mailboxes[m.cursor].ID
		return m, func() tea.Msg { return burnStartMsg{mailboxID: id} }
	}

	return m, nil
}

func (m listModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	s := "\n"

	if len(m.mailboxes) == 0 {
		s += "  " + zstyle.MutedText.Render("no mailboxes yet; generate profiles with email") + "\n"
		s += "\n"
		// reserved flash line (empty for empty state)
		s += "\n"
		return s
	}

	for i, mb := range m.mailboxes {
		line := fmt.Sprintf("%-40s %s", truncate(mb.Address, 40),
			zstyle.MutedText.Render(mb.CreatedAt.Local().Format("15:04:05")))

		if n := m.cached[mb.ID]; n > 0 {
			line += "  " + zstyle.MutedText.Render(fmt.Sprintf("(%d)", n))
		}

		if i == m.cursor {
			s += "  " + accentStyle.Render("▸") + " " + line + "\n"
		} else {
			s += "    " + line + "\n"
		}
	}

	s += "\n"

	// always reserve a line for flash to prevent layout shift
	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}

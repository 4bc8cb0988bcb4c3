package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/zarlcorp/zprofile/internal/mailbox"
)

// inboxModel lists the messages of one mailbox. Refresh is manual.
type inboxModel struct {
	mailbox mailbox.Mailbox
	msgs    []mailbox.Summary
	cursor  int
	loading bool
	errMsg  string
	hint    string
	flash   string
	spinner spinner.Model
}

// refreshInboxMsg asks the root model to fetch a mailbox listing.
type refreshInboxMsg struct {
	mailboxID string
}

// inboxLoadedMsg carries a fetched listing.
type inboxLoadedMsg struct {
	mailboxID string
	msgs      []mailbox.Summary
	err       error
}

// readMessageMsg asks the root model to fetch one message.
type readMessageMsg struct {
	mailboxID string
	msgID     string
}

func newInboxModel(mb mailbox.Mailbox, cached []mailbox.Summary) inboxModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accent)
	return inboxModel{mailbox: mb, msgs: cached, spinner: sp}
}

func (m inboxModel) Init() tea.Cmd {
	return nil
}

// startLoading marks a refresh in flight and returns the spinner tick.
func (m inboxModel) startLoading() (inboxModel, tea.Cmd) {
	m.loading = true
	return m, m.spinner.Tick
}

func (m inboxModel) Update(msg tea.Msg) (inboxModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case inboxLoadedMsg:
		if msg.mailboxID != m.mailbox.ID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			// keep the previous listing visible
			m.errMsg = msg.err.Error()
			m.hint = mailbox.Hint(msg.err)
			return m, nil
		}
		m.errMsg, m.hint = "", ""
		m.msgs = msg.msgs
		if m.cursor >= len(m.msgs) {
			m.cursor = max(len(m.msgs)-1, 0)
		}
		return m, nil

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m inboxModel) handleKey(msg tea.KeyMsg) (inboxModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewMailboxes} }
	}

	id := m.mailbox.ID

	switch msg.String() {
	case "r":
		if m.loading {
			return m, nil
		}
		return m, func() tea.Msg { return refreshInboxMsg{mailboxID: id} }
	case "c":
		if err := copyToClipboard(m.mailbox.Address); err != nil {
			m.flash = "copy: " + err.Error()
			return m, clearFlashAfter()
		}
		m.flash = "copied address!"
		return m, clearFlashAfter()
	case "d":
		return m, func() tea.Msg { return burnStartMsg{mailboxID: id} }
	}

	if len(m.msgs) == 0 {
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(m.msgs)-1 {
			m.cursor++
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		msgID := m.msgs[m.cursor].ID
		return m, func() tea.Msg { return readMessageMsg{mailboxID: id, msgID: msgID} }
	}

	return m, nil
}

func (m inboxModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	s := "\n  " + zstyle.Subtitle.Render(m.mailbox.Address)
	if m.loading {
		s += "  " + m.spinner.View()
	}
	s += "\n\n"

	if len(m.msgs) == 0 {
		s += "  " + zstyle.MutedText.Render("inbox is empty  r to refresh") + "\n"
	}

	for i, sum := range m.msgs {
		date := "-"
		if !sum.Date.IsZero() {
			date = sum.Date.Local().Format("01-02 15:04")
		}
		line := fmt.Sprintf("%-11s %-26s %s", date, truncate(sum.From, 26), truncate(sum.Subject, 40))

		if i == m.cursor {
			s += "  " + accentStyle.Render("▸") + " " + line + "\n"
			if sum.Preview != "" {
				s += "      " + zstyle.MutedText.Render(truncate(sum.Preview, 70)) + "\n"
			}
		} else {
			s += "    " + line + "\n"
		}
	}

	s += "\n"

	switch {
	case m.errMsg != "":
		s += "  " + zstyle.StatusErr.Render(m.errMsg) + "\n"
		if m.hint != "" {
			s += "  " + zstyle.StatusWarn.Render(m.hint) + "\n"
		}
	case m.flash != "":
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	default:
		s += "\n"
	}

	return s
}

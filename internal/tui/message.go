package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/zarlcorp/zprofile/internal/codes"
	"github.com/zarlcorp/zprofile/internal/mailbox"
)

// messageLoadedMsg carries a fetched message.
type messageLoadedMsg struct {
	mailboxID string
	msg       mailbox.Message
	err       error
}

// messageModel shows one message as plain text with its likely verification code.
type messageModel struct {
	mailboxID string
	msg       mailbox.Message
	code      codes.Code
	hasCode   bool
	body      viewport.Model
	flash     string
}

func newMessageModel(mailboxID string, msg mailbox.Message, width, height int) messageModel {
	vp := viewport.New(max(width-4, 20), max(height-14, 5))
	vp.SetContent(mailbox.PlainText(msg.Body))

	m := messageModel{
		mailboxID: mailboxID,
		msg:       msg,
		body:      vp,
	}
	m.code, m.hasCode = codes.Best(msg)
	return m
}

func (m messageModel) Init() tea.Cmd {
	return nil
}

func (m messageModel) Update(msg tea.Msg) (messageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.body.Width = max(msg.Width-4, 20)
		m.body.Height = max(msg.Height-14, 5)
		return m, nil

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m messageModel) handleKey(msg tea.KeyMsg) (messageModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewInbox} }
	}

	switch msg.String() {
	case "c":
		if !m.hasCode {
			m.flash = "no code found"
			return m, clearFlashAfter()
		}
		if err := copyToClipboard(m.code.Value); err != nil {
			m.flash = "copy: " + err.Error()
			return m, clearFlashAfter()
		}
		m.flash = "copied code!"
		return m, clearFlashAfter()

	case "y":
		if err := copyToClipboard(mailbox.PlainText(m.msg.Body)); err != nil {
			m.flash = "copy: " + err.Error()
			return m, clearFlashAfter()
		}
		m.flash = "copied body!"
		return m, clearFlashAfter()
	}

	var cmd tea.Cmd
	m.body, cmd = m.body.Update(msg)
	return m, cmd
}

func (m messageModel) View() string {
	row := func(label, value string) string {
		return "    " + zstyle.MutedText.Render(fmt.Sprintf("%-8s", label)) + " " + value + "\n"
	}

	s := "\n  " + zstyle.Subtitle.Render(m.msg.Subject) + "\n\n"
	s += row("from", m.msg.From)
	if !m.msg.Date.IsZero() {
		s += row("date", m.msg.Date.Local().Format("2006-01-02 15:04"))
	}
	if m.hasCode {
		s += row("code", zstyle.StatusOK.Render(m.code.Value))
	}
	s += "\n" + m.body.View() + "\n\n"

	// always reserve a line for flash to prevent layout shift
	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}

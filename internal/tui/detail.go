package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/zarlcorp/zprofile/internal/profile"
)

// profileField is a labeled value for display and selection.
type profileField struct {
	label string
	value string
}

// openInboxMsg requests the inbox of a session mailbox.
type openInboxMsg struct {
	mailboxID string
}

// burnStartMsg tells the root model to show the burn confirmation for a mailbox.
type burnStartMsg struct {
	mailboxID string
}

// detailModel displays all fields of one profile.
type detailModel struct {
	profile profile.Profile
	fields  []profileField
	cursor  int
	flash   string
}

func newDetailModel(p profile.Profile) detailModel {
	return detailModel{
		profile: p,
		fields:  profileFields(p),
	}
}

func profileFields(p profile.Profile) []profileField {
	out := make([]profileField, 0, len(p.Values))
	for _, v := range p.Values {
		out = append(out, profileField{
			label: strings.ToLower(string(v.Field)),
			value: v.Value,
		})
	}
	return out
}

func (m detailModel) Init() tea.Cmd {
	return nil
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m detailModel) handleKey(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewResults} }
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		val := m.fields[m.cursor].value
		if err := copyToClipboard(val); err != nil {
			m.flash = "copy: " + err.Error()
			return m, clearFlashAfter()
		}
		m.flash = "copied!"
		return m, clearFlashAfter()
	}

	switch msg.String() {
	case "c":
		if err := copyToClipboard(m.allFieldsText()); err != nil {
			m.flash = "copy: " + err.Error()
			return m, clearFlashAfter()
		}
		m.flash = "copied all!"
		return m, clearFlashAfter()

	case "i":
		if id := m.profile.MailboxID; id != "" {
			return m, func() tea.Msg { return openInboxMsg{mailboxID: id} }
		}
		m.flash = "no mailbox for this profile"
		return m, clearFlashAfter()

	case "d":
		if id := m.profile.MailboxID; id != "" {
			return m, func() tea.Msg { return burnStartMsg{mailboxID: id} }
		}
	}

	return m, nil
}

func (m detailModel) allFieldsText() string {
	var b strings.Builder
	for _, f := range m.fields {
		fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
	}
	return b.String()
}

func (m detailModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	name, _ := m.profile.Get(profile.Name)
	surname, _ := m.profile.Get(profile.Surname)
	s := "\n  " + zstyle.Subtitle.Render(name+" "+surname) + "\n\n"

	for i, f := range m.fields {
		value := f.value
		if value == "" {
			value = zstyle.MutedText.Render("-")
		}
		label := zstyle.MutedText.Render(fmt.Sprintf("%-11s", f.label))
		if i == m.cursor {
			s += "  " + accentStyle.Render("▸") + " " + label + " " + value + "\n"
		} else {
			s += "    " + label + " " + value + "\n"
		}
	}

	s += "\n"

	if m.profile.MailboxID != "" {
		s += "  " + zstyle.MutedText.Render("i inbox  d burn mailbox") + "\n"
	} else {
		s += "  " + zstyle.MutedText.Render("no mailbox") + "\n"
	}

	// always reserve a line for flash to prevent layout shift
	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}

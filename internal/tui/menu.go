package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
)

type menuChoice int

const (
	menuGenerate menuChoice = iota
	menuResults
	menuMailboxes
	menuQuit
)

var menuItems = []string{
	"Generate profiles",
	"Last batch",
	"Mailboxes",
	"Quit",
}

// menuModel is the main menu view.
type menuModel struct {
	cursor   int
	version  string
	provider string
	profiles int
	inboxes  int
}

// navigateMsg tells the root model to switch views.
type navigateMsg struct {
	view viewID
}

func newMenuModel(version, provider string) menuModel {
	return menuModel{version: version, provider: provider}
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (menuModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, zstyle.KeyQuit) {
			return m, tea.Quit
		}

		if key.Matches(msg, zstyle.KeyUp) {
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		}

		if key.Matches(msg, zstyle.KeyDown) {
			if m.cursor < len(menuItems)-1 {
				m.cursor++
			}
			return m, nil
		}

		if key.Matches(msg, zstyle.KeyEnter) {
			return m, m.selectItem()
		}
	}

	return m, nil
}

func (m menuModel) selectItem() tea.Cmd {
	switch menuChoice(m.cursor) {
	case menuGenerate:
		return func() tea.Msg { return navigateMsg{view: viewForm} }
	case menuResults:
		return func() tea.Msg { return navigateMsg{view: viewResults} }
	case menuMailboxes:
		return func() tea.Msg { return navigateMsg{view: viewMailboxes} }
	case menuQuit:
		return tea.Quit
	}
	return nil
}

func (m menuModel) counter(item menuChoice) string {
	switch item {
	case menuResults:
		if m.profiles > 0 {
			return fmt.Sprintf(" (%d)", m.profiles)
		}
	case menuMailboxes:
		if m.inboxes > 0 {
			return fmt.Sprintf(" (%d)", m.inboxes)
		}
	}
	return ""
}

func (m menuModel) View() string {
	title := zstyle.Title.Render("zprofile")
	ver := zstyle.MutedText.Render(m.version)

	s := fmt.Sprintf("\n  %s %s\n", title, ver)
	if m.provider != "" {
		s += "  " + zstyle.MutedText.Render("mail backend: "+m.provider) + "\n"
	} else {
		s += "  " + zstyle.StatusWarn.Render("no mail backend, email disabled") + "\n"
	}
	s += "\n"

	for i, item := range menuItems {
		label := item + zstyle.MutedText.Render(m.counter(menuChoice(i)))
		if m.cursor == i {
			s += zstyle.Highlight.Render(fmt.Sprintf("  > %s", item)) + zstyle.MutedText.Render(m.counter(menuChoice(i))) + "\n"
		} else {
			s += fmt.Sprintf("    %s\n", label)
		}
	}

	s += "\n  " + zstyle.MutedText.Render("j/k navigate  enter select  q quit") + "\n\n"
	return s
}

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/zarlcorp/zprofile/internal/burn"
	"github.com/zarlcorp/zprofile/internal/mailbox"
)

type burnPhase int

const (
	burnConfirm burnPhase = iota
	burnRunning
	burnDone
)

// burnMailboxMsg requests the burn of a confirmed mailbox.
type burnMailboxMsg struct {
	mailboxID string
}

// burnResultMsg carries the result of a completed burn.
type burnResultMsg struct {
	result burn.Result
	err    error
}

// burnModel manages the burn confirmation dialog and result display.
type burnModel struct {
	mailbox mailbox.Mailbox
	plan    []string
	phase   burnPhase
	result  burn.Result
	err     error
	back    viewID
}

func newBurnModel(mb mailbox.Mailbox, plan []string, back viewID) burnModel {
	return burnModel{
		mailbox: mb,
		plan:    plan,
		phase:   burnConfirm,
		back:    back,
	}
}

func (m burnModel) Init() tea.Cmd {
	return nil
}

func (m burnModel) Update(msg tea.Msg) (burnModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case burnResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.phase = burnDone
		return m, returnAfter3s()
	}

	return m, nil
}

func (m burnModel) handleKey(msg tea.KeyMsg) (burnModel, tea.Cmd) {
	switch m.phase {
	case burnConfirm:
		return m.handleConfirmKey(msg)
	case burnDone:
		// any key returns to the mailbox list
		return m, func() tea.Msg { return navigateMsg{view: viewMailboxes} }
	}
	return m, nil
}

func (m burnModel) handleConfirmKey(msg tea.KeyMsg) (burnModel, tea.Cmd) {
	// quit always works
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	switch msg.String() {
	case "y":
		m.phase = burnRunning
		id := m.mailbox.ID
		return m, func() tea.Msg { return burnMailboxMsg{mailboxID: id} }
	default:
		// any other key cancels
		back := m.back
		return m, func() tea.Msg { return navigateMsg{view: back} }
	}
}

func (m burnModel) View() string {
	switch m.phase {
	case burnConfirm:
		return m.viewConfirm()
	case burnRunning:
		return m.viewRunning()
	case burnDone:
		return m.viewDone()
	}
	return ""
}

func (m burnModel) viewConfirm() string {
	s := "\n  " + zstyle.Subtitle.Render("burn "+m.mailbox.Address+"?") + "\n\n"

	s += "  " + zstyle.MutedText.Render("this will:") + "\n"
	for _, step := range m.plan {
		s += fmt.Sprintf("  %s %s\n", zstyle.StatusWarn.Render("-"), step)
	}

	s += "\n"
	s += "  " + zstyle.StatusWarn.Render("this cannot be undone.") + " (y/n)\n"

	return s
}

func (m burnModel) viewRunning() string {
	return "\n  " + zstyle.MutedText.Render("burning "+m.mailbox.Address+"...") + "\n"
}

func (m burnModel) viewDone() string {
	var b strings.Builder

	if m.err != nil {
		b.WriteString("\n  " + zstyle.StatusErr.Render("burn failed: "+m.err.Error()) + "\n\n")
		b.WriteString("  " + zstyle.MutedText.Render("press any key to continue") + "\n")
		return b.String()
	}

	lines := strings.Split(m.result.Summary(), "\n")

	// first line is the header
	if m.result.HasErrors() {
		b.WriteString("\n  " + zstyle.StatusWarn.Render(lines[0]) + "\n\n")
	} else {
		b.WriteString("\n  " + zstyle.StatusOK.Render(lines[0]) + "\n\n")
	}

	// remaining lines are step details
	for _, line := range lines[1:] {
		if strings.Contains(line, ":") && strings.Contains(line, "- ") {
			b.WriteString("  " + zstyle.StatusWarn.Render(line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString("  " + zstyle.MutedText.Render("press any key to continue") + "\n")
	return b.String()
}

// returnAfter3s returns to the mailbox list after 3 seconds.
func returnAfter3s() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return navigateMsg{view: viewMailboxes}
	})
}

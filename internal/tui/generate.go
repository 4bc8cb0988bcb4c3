package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/zarlcorp/zprofile/internal/profile"
)

// resultsModel shows a generated batch, or the progress of one in flight.
type resultsModel struct {
	batch   profile.Batch
	cursor  int
	flash   string
	flashAt time.Time

	running bool
	done    int
	total   int
	spinner spinner.Model
}

// progressMsg reports generation progress.
type progressMsg struct {
	done, total int
}

// generateDoneMsg carries a finished batch.
type generateDoneMsg struct {
	batch profile.Batch
	err   error
}

// viewProfileMsg requests the detail view for a profile.
type viewProfileMsg struct {
	profile profile.Profile
}

// exportMsg requests a CSV export of the current batch.
type exportMsg struct{}

// exportedMsg reports where the export went.
type exportedMsg struct {
	path string
	err  error
}

// flashMsg clears the flash after a timeout.
type flashMsg struct{}

func newResultsModel(b profile.Batch) resultsModel {
	return resultsModel{batch: b}
}

func newRunningModel(total int) resultsModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accent)
	return resultsModel{running: true, total: total, spinner: sp}
}

func (m resultsModel) Init() tea.Cmd {
	if m.running {
		return m.spinner.Tick
	}
	return nil
}

func (m resultsModel) Update(msg tea.Msg) (resultsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressMsg:
		m.done, m.total = msg.done, msg.total
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			return m.setFlash("export: " + msg.err.Error()), clearFlashAfter()
		}
		return m.setFlash("exported to " + msg.path), clearFlashAfter()

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m resultsModel) handleKey(msg tea.KeyMsg) (resultsModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	// generation runs to completion; navigation waits for it
	if m.running {
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewMenu} }
	}

	switch msg.String() {
	case "n":
		return m, func() tea.Msg { return navigateMsg{view: viewForm} }
	case "m":
		return m, func() tea.Msg { return navigateMsg{view: viewMailboxes} }
	}

	if len(m.batch.Profiles) == 0 {
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(m.batch.Profiles)-1 {
			m.cursor++
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		p := m.batch.Profiles[m.cursor]
		return m, func() tea.Msg { return viewProfileMsg{profile: p} }
	}

	switch msg.String() {
	case "e":
		return m, func() tea.Msg { return exportMsg{} }
	case "c":
		var b strings.Builder
		if err := profile.WriteCSV(&b, m.batch); err != nil {
			return m.setFlash("copy: " + err.Error()), clearFlashAfter()
		}
		if err := copyToClipboard(b.String()); err != nil {
			return m.setFlash("copy: " + err.Error()), clearFlashAfter()
		}
		return m.setFlash("copied csv!"), clearFlashAfter()
	}

	return m, nil
}

func (m resultsModel) setFlash(msg string) resultsModel {
	m.flash = msg
	m.flashAt = time.Now()
	return m
}

func clearFlashAfter() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return flashMsg{}
	})
}

func (m resultsModel) View() string {
	if m.running {
		return m.viewRunning()
	}

	if len(m.batch.Profiles) == 0 {
		s := "\n  " + zstyle.MutedText.Render("nothing generated yet  n to start") + "\n\n\n"
		return s
	}

	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)
	withEmail := slices.Contains(m.batch.Fields, profile.Email)

	sub := fmt.Sprintf("%d profiles  %s", len(m.batch.Profiles), m.batch.Country.Name())
	s := "\n  " + zstyle.Subtitle.Render(sub) + "\n\n"

	for i, p := range m.batch.Profiles {
		name, _ := p.Get(profile.Name)
		surname, _ := p.Get(profile.Surname)
		ibanVal, _ := p.Get(profile.IBAN)
		line := fmt.Sprintf("%-24s %-34s", truncate(name+" "+surname, 24), ibanVal)
		if withEmail {
			email, _ := p.Get(profile.Email)
			if email == "" {
				email = zstyle.StatusWarn.Render("no email")
			}
			line += " " + email
		}

		if i == m.cursor {
			s += "  " + accentStyle.Render("▸") + " " + line + "\n"
		} else {
			s += "    " + line + "\n"
		}
	}

	if len(m.batch.Notices) > 0 {
		s += "\n"
		for _, n := range m.batch.Notices {
			style := zstyle.StatusWarn
			if n.Forbidden {
				style = zstyle.StatusErr
			}
			s += "  " + style.Render(n.String()) + "\n"
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

func (m resultsModel) viewRunning() string {
	s := fmt.Sprintf("\n  %s generating %d/%d", m.spinner.View(), m.done, m.total)
	return s + "\n\n" + "  " + zstyle.MutedText.Render("mailboxes are provisioned one at a time") + "\n"
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

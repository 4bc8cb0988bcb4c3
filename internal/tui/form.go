package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/zarlcorp/zprofile/internal/country"
	"github.com/zarlcorp/zprofile/internal/profile"
)

const (
	rowCountry = iota
	rowCount
	rowExtras // first extra; one row per profile.Extras entry
)

// formModel collects generation options.
type formModel struct {
	countryIdx int
	count      textinput.Model
	extras     map[profile.Field]bool
	emailOK    bool
	focus      int
	errMsg     string
}

// generateMsg asks the root model to run a generation.
type generateMsg struct {
	opts profile.Options
}

func newFormModel(defaults profile.Options, emailOK bool) formModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 2
	ti.Width = 4
	ti.Placeholder = "1"
	if defaults.Count > 0 {
		ti.SetValue(strconv.Itoa(defaults.Count))
	}

	m := formModel{
		count:   ti,
		extras:  make(map[profile.Field]bool),
		emailOK: emailOK,
	}
	for i, c := range country.All {
		if c == defaults.Country {
			m.countryIdx = i
		}
	}
	for _, f := range defaults.Extras {
		m.extras[f] = true
	}
	return m
}

func (m formModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m formModel) rows() int {
	return rowExtras + len(profile.Extras)
}

func (m formModel) country() country.Code {
	return country.All[m.countryIdx]
}

// options reads the form. Count is validated by profile.Options.
func (m formModel) options() (profile.Options, error) {
	raw := strings.TrimSpace(m.count.Value())
	if raw == "" {
		raw = m.count.Placeholder
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return profile.Options{}, fmt.Errorf("count %q: %w", raw, profile.ErrInvalidCount)
	}

	opts := profile.Options{Country: m.country(), Count: n}
	for _, f := range profile.Extras {
		if m.extras[f] {
			opts.Extras = append(opts.Extras, f)
		}
	}
	return opts, opts.Validate()
}

func (m formModel) Update(msg tea.Msg) (formModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	if m.focus == rowCount {
		m.count, cmd = m.count.Update(msg)
	}
	return m, cmd
}

func (m formModel) handleKey(msg tea.KeyMsg) (formModel, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewMenu} }
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		opts, err := m.options()
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.errMsg = ""
		return m, func() tea.Msg { return generateMsg{opts: opts} }
	}

	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		return m.setFocus((m.focus + 1) % m.rows()), nil
	case tea.KeyShiftTab, tea.KeyUp:
		return m.setFocus((m.focus + m.rows() - 1) % m.rows()), nil
	}

	switch m.focus {
	case rowCountry:
		switch msg.String() {
		case "left", "h":
			m.countryIdx = (m.countryIdx + len(country.All) - 1) % len(country.All)
		case "right", "l", " ":
			m.countryIdx = (m.countryIdx + 1) % len(country.All)
		case "q":
			return m, tea.Quit
		}
		return m, nil

	case rowCount:
		// digits only
		if msg.Type == tea.KeyRunes {
			for _, r := range msg.Runes {
				if r < '0' || r > '9' {
					return m, nil
				}
			}
		}
		var cmd tea.Cmd
		m.count, cmd = m.count.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case " ", "x":
		f := profile.Extras[m.focus-rowExtras]
		if f == profile.Email && !m.emailOK {
			m.errMsg = "email needs a mail backend"
			return m, nil
		}
		m.extras[f] = !m.extras[f]
		m.errMsg = ""
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m formModel) setFocus(i int) formModel {
	m.focus = i
	if i == rowCount {
		m.count.Focus()
	} else {
		m.count.Blur()
	}
	return m
}

func (m formModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	row := func(i int, label, value string) string {
		l := zstyle.MutedText.Render(fmt.Sprintf("%-10s", label))
		if i == m.focus {
			return "  " + accentStyle.Render("▸") + " " + l + " " + value + "\n"
		}
		return "    " + l + " " + value + "\n"
	}

	s := "\n"
	c := m.country()
	s += row(rowCountry, "country", fmt.Sprintf("‹ %s %s ›", c, zstyle.MutedText.Render(c.Name())))
	s += row(rowCount, "count", m.count.View()+zstyle.MutedText.Render(fmt.Sprintf("  1-%d", profile.MaxCount)))
	s += "\n"

	for i, f := range profile.Extras {
		box := "[ ]"
		if m.extras[f] {
			box = zstyle.StatusOK.Render("[x]")
		}
		label := strings.ToLower(string(f))
		note := ""
		switch {
		case f == profile.Email && !m.emailOK:
			note = zstyle.MutedText.Render("  unavailable")
		case f == profile.TaxID && c != country.IT:
			note = zstyle.MutedText.Render("  " + profile.TaxIDUnavailable)
		}
		s += row(rowExtras+i, label, box+note)
	}

	s += "\n"

	// always reserve a line for errors to prevent layout shift
	if m.errMsg != "" {
		s += "  " + zstyle.StatusErr.Render(m.errMsg) + "\n"
	} else {
		s += "\n"
	}

	return s
}

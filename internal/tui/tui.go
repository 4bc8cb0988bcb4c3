// Package tui implements the root Bubble Tea model for zprofile.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/zarlcorp/zprofile/internal/profile"
	"github.com/zarlcorp/zprofile/internal/session"
)

type viewID int

const (
	viewMenu viewID = iota
	viewForm
	viewResults
	viewDetail
	viewMailboxes
	viewInbox
	viewMessage
	viewBurn
)

var accent = zstyle.ZburnAccent

// Config holds front-end settings.
type Config struct {
	Defaults  profile.Options
	ExportDir string
}

// Model is the root TUI model.
type Model struct {
	ctx     context.Context
	version string
	session *session.Session
	cfg     Config

	// last submitted options, used to pre-fill the form
	lastOpts profile.Options
	events   chan tea.Msg

	active  viewID
	menu    menuModel
	form    formModel
	results resultsModel
	detail  detailModel
	list    listModel
	inbox   inboxModel
	message messageModel
	burn    burnModel

	// terminal dimensions
	width  int
	height int
}

// New creates the root TUI model. Provider calls run under ctx.
func New(ctx context.Context, version string, s *session.Session, cfg Config) Model {
	return Model{
		ctx:      ctx,
		version:  version,
		session:  s,
		cfg:      cfg,
		lastOpts: cfg.Defaults,
		active:   viewMenu,
		menu:     newMenuModel(version, s.Provider()),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.active == viewMessage {
			m.message, _ = m.message.Update(msg)
		}
		return m, nil

	case navigateMsg:
		return m.navigate(msg.view)

	case generateMsg:
		return m.startGenerate(msg.opts)

	case progressMsg:
		if !m.results.running {
			return m, nil
		}
		m.results, _ = m.results.Update(msg)
		return m, waitFor(m.events)

	case generateDoneMsg:
		return m.handleGenerated(msg)

	case viewProfileMsg:
		m.detail = newDetailModel(msg.profile)
		m.active = viewDetail
		return m, nil

	case exportMsg:
		return m, m.exportCmd()

	case exportedMsg:
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd

	case openInboxMsg:
		return m.openInbox(msg.mailboxID)

	case refreshInboxMsg:
		return m.refreshInbox(msg.mailboxID)

	case inboxLoadedMsg:
		m.inbox, _ = m.inbox.Update(msg)
		return m, nil

	case readMessageMsg:
		return m, m.readCmd(msg.mailboxID, msg.msgID)

	case messageLoadedMsg:
		return m.handleMessage(msg)

	case burnStartMsg:
		return m.startBurn(msg.mailboxID)

	case burnMailboxMsg:
		return m, m.burnCmd(msg.mailboxID)

	case burnResultMsg:
		var cmd tea.Cmd
		m.burn, cmd = m.burn.Update(msg)
		return m, cmd
	}

	return m.updateActive(msg)
}

func (m Model) View() string {
	// the menu includes the logo and renders directly
	if m.active == viewMenu {
		return m.menu.View()
	}

	// all other views: header + separator + content + footer
	var content string
	switch m.active {
	case viewForm:
		content = m.form.View()
	case viewResults:
		content = m.results.View()
	case viewDetail:
		content = m.detail.View()
	case viewMailboxes:
		content = m.list.View()
	case viewInbox:
		content = m.inbox.View()
	case viewMessage:
		content = m.message.View()
	case viewBurn:
		content = m.burn.View()
	}

	header := zstyle.RenderHeader("zprofile", viewTitle(m.active), accent)
	sep := zstyle.RenderSeparator(m.width)
	footer := zstyle.RenderFooter(helpFor(m.active))

	return "\n" + header + "\n" + sep + "\n" + content + "\n" + footer + "\n"
}

// viewTitle returns the display title for each view.
func viewTitle(id viewID) string {
	switch id {
	case viewForm:
		return "Generate Profiles"
	case viewResults:
		return "Profiles"
	case viewDetail:
		return "Profile"
	case viewMailboxes:
		return "Mailboxes"
	case viewInbox:
		return "Inbox"
	case viewMessage:
		return "Message"
	case viewBurn:
		return "Burn"
	}
	return ""
}

// helpFor returns keybinding pairs for each view's footer.
func helpFor(id viewID) []zstyle.HelpPair {
	switch id {
	case viewForm:
		return []zstyle.HelpPair{
			{Key: "tab", Desc: "next"},
			{Key: "←/→", Desc: "country"},
			{Key: "space", Desc: "toggle"},
			{Key: "enter", Desc: "generate"},
			{Key: "esc", Desc: "back"},
		}
	case viewResults:
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "navigate"},
			{Key: "enter", Desc: "view"},
			{Key: "e", Desc: "export csv"},
			{Key: "c", Desc: "copy csv"},
			{Key: "m", Desc: "mailboxes"},
			{Key: "n", Desc: "new"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewDetail:
		return []zstyle.HelpPair{
			{Key: "enter", Desc: "copy field"},
			{Key: "c", Desc: "copy all"},
			{Key: "i", Desc: "inbox"},
			{Key: "d", Desc: "burn"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewMailboxes:
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "navigate"},
			{Key: "enter", Desc: "inbox"},
			{Key: "c", Desc: "copy"},
			{Key: "d", Desc: "burn"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewInbox:
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "navigate"},
			{Key: "enter", Desc: "read"},
			{Key: "r", Desc: "refresh"},
			{Key: "c", Desc: "copy address"},
			{Key: "d", Desc: "burn"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewMessage:
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "scroll"},
			{Key: "c", Desc: "copy code"},
			{Key: "y", Desc: "copy body"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewBurn:
		return []zstyle.HelpPair{
			{Key: "y", Desc: "confirm"},
			{Key: "n", Desc: "cancel"},
			{Key: "q", Desc: "quit"},
		}
	}
	return nil
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.active {
	case viewMenu:
		m.menu, cmd = m.menu.Update(msg)
	case viewForm:
		m.form, cmd = m.form.Update(msg)
	case viewResults:
		m.results, cmd = m.results.Update(msg)
	case viewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case viewMailboxes:
		m.list, cmd = m.list.Update(msg)
	case viewInbox:
		m.inbox, cmd = m.inbox.Update(msg)
	case viewMessage:
		m.message, cmd = m.message.Update(msg)
	case viewBurn:
		m.burn, cmd = m.burn.Update(msg)
	}

	return m, cmd
}

func (m Model) navigate(view viewID) (tea.Model, tea.Cmd) {
	switch view {
	case viewMenu:
		mm := newMenuModel(m.version, m.session.Provider())
		mm.cursor = m.menu.cursor
		mm.profiles = len(m.session.Last().Profiles)
		if mbs, err := m.session.Mailboxes(); err == nil {
			mm.inboxes = len(mbs)
		}
		m.menu = mm
		m.active = viewMenu
		return m, tea.ClearScreen

	case viewForm:
		m.form = newFormModel(m.lastOpts, m.session.Provider() != "")
		m.active = viewForm
		return m, tea.Batch(m.form.Init(), tea.ClearScreen)

	case viewResults:
		if !m.results.running {
			cursor := m.results.cursor
			m.results = newResultsModel(m.session.Last())
			if cursor < len(m.results.batch.Profiles) {
				m.results.cursor = cursor
			}
		}
		m.active = viewResults
		return m, tea.ClearScreen

	case viewMailboxes:
		return m.loadMailboxes()

	case viewInbox:
		m.active = viewInbox
		return m, tea.ClearScreen
	}

	return m, nil
}

func (m Model) loadMailboxes() (tea.Model, tea.Cmd) {
	mbs, err := m.session.Mailboxes()
	if err != nil {
		m.list = newListModel(nil)
		m.list.flash = "load: " + err.Error()
		m.active = viewMailboxes
		return m, clearFlashAfter()
	}

	cursor := m.list.cursor
	m.list = newListModel(mbs)
	if cursor < len(mbs) {
		m.list.cursor = cursor
	}
	m.list.cached = make(map[string]int, len(mbs))
	for _, mb := range mbs {
		m.list.cached[mb.ID] = m.session.Cached(mb.ID)
	}
	m.active = viewMailboxes
	return m, tea.ClearScreen
}

// startGenerate runs the batch in a command and streams progress through
// m.events until the command finishes.
func (m Model) startGenerate(opts profile.Options) (tea.Model, tea.Cmd) {
	if m.results.running {
		return m, nil
	}

	m.lastOpts = opts
	events := make(chan tea.Msg, profile.MaxCount)
	m.events = events
	m.results = newRunningModel(opts.Count)
	m.active = viewResults

	s, ctx := m.session, m.ctx
	run := func() tea.Msg {
		defer close(events)
		b, err := s.Generate(ctx, opts, func(done, total int) {
			select {
			case events <- progressMsg{done: done, total: total}:
			default:
			}
		})
		return generateDoneMsg{batch: b, err: err}
	}

	return m, tea.Batch(run, waitFor(events), m.results.Init(), tea.ClearScreen)
}

// waitFor returns the next message from ch, or nil once it is closed.
func waitFor(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m Model) handleGenerated(msg generateDoneMsg) (tea.Model, tea.Cmd) {
	m.results.running = false
	if msg.err != nil {
		m.form = newFormModel(m.lastOpts, m.session.Provider() != "")
		m.form.errMsg = msg.err.Error()
		m.active = viewForm
		return m, nil
	}

	m.results = newResultsModel(msg.batch)
	if m.active == viewResults {
		return m, tea.ClearScreen
	}
	return m, nil
}

func (m Model) exportCmd() tea.Cmd {
	b := m.session.Last()
	dir := m.cfg.ExportDir
	return func() tea.Msg {
		if len(b.Profiles) == 0 {
			return exportedMsg{err: fmt.Errorf("nothing to export")}
		}
		path := filepath.Join(dir, profile.ExportName(b.Country))
		return exportedMsg{path: path, err: writeExport(path, b)}
	}
}

func writeExport(path string, b profile.Batch) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	if err := profile.WriteCSV(f, b); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (m Model) openInbox(id string) (tea.Model, tea.Cmd) {
	mb, err := m.session.Mailbox(id)
	if err != nil {
		return m.flashActive("inbox: " + err.Error())
	}

	m.inbox = newInboxModel(mb, m.session.CachedInbox(id))
	m.active = viewInbox
	m2, cmd := m.refreshInbox(id)
	return m2, tea.Batch(cmd, tea.ClearScreen)
}

func (m Model) refreshInbox(id string) (tea.Model, tea.Cmd) {
	var tick tea.Cmd
	m.inbox, tick = m.inbox.startLoading()

	s, ctx := m.session, m.ctx
	fetch := func() tea.Msg {
		msgs, err := s.Inbox(ctx, id)
		return inboxLoadedMsg{mailboxID: id, msgs: msgs, err: err}
	}
	return m, tea.Batch(tick, fetch)
}

func (m Model) readCmd(mailboxID, msgID string) tea.Cmd {
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		msg, err := s.Read(ctx, mailboxID, msgID)
		return messageLoadedMsg{mailboxID: mailboxID, msg: msg, err: err}
	}
}

func (m Model) handleMessage(msg messageLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.inbox, _ = m.inbox.Update(inboxLoadedMsg{mailboxID: msg.mailboxID, msgs: m.inbox.msgs, err: msg.err})
		return m, nil
	}

	m.message = newMessageModel(msg.mailboxID, msg.msg, m.width, m.height)
	m.active = viewMessage
	return m, tea.ClearScreen
}

func (m Model) startBurn(id string) (tea.Model, tea.Cmd) {
	mb, err := m.session.Mailbox(id)
	if err != nil {
		return m.flashActive("burn: " + err.Error())
	}
	plan, err := m.session.BurnPlan(id)
	if err != nil {
		return m.flashActive("burn: " + err.Error())
	}

	back := m.active
	if back == viewBurn {
		back = viewMailboxes
	}
	m.burn = newBurnModel(mb, plan, back)
	m.active = viewBurn
	return m, tea.ClearScreen
}

func (m Model) burnCmd(id string) tea.Cmd {
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		res, err := s.Burn(ctx, id)
		return burnResultMsg{result: res, err: err}
	}
}

// flashActive shows msg in the current view when it has a flash line.
func (m Model) flashActive(msg string) (tea.Model, tea.Cmd) {
	switch m.active {
	case viewDetail:
		m.detail.flash = msg
	case viewMailboxes:
		m.list.flash = msg
	case viewInbox:
		m.inbox.errMsg = msg
		return m, nil
	case viewResults:
		m.results.flash = msg
	default:
		return m, nil
	}
	return m, clearFlashAfter()
}

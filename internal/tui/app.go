package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"crewdeck/internal/model"
	"crewdeck/internal/store"
)

type screen int

const (
	screenAuth screen = iota
	screenTasks
	screenTeams
	screenDashboard
)

// stateChangedMsg is sent whenever any store changed: from the Subscribe hooks
// via program.Send, and by async commands when their operation resolved.
// Handling it re-reads store snapshots; the message itself carries nothing.
type stateChangedMsg struct{}

type confirmState struct {
	title  string
	body   string
	focus  confirmFocus
	action tea.Cmd
}

type appModel struct {
	stores *store.Stores

	width  int
	height int
	screen screen
	seeded bool

	auth authModel

	taskList   list.Model
	taskSearch textinput.Model
	searching  bool

	teamList       list.Model
	memberIdx      int
	membersFocused bool

	overlay *overlayForm
	confirm *confirmState
}

func newAppModel(stores *store.Stores) appModel {
	search := textinput.New()
	search.Prompt = ""
	search.Placeholder = "search tasks"
	search.CharLimit = 120

	m := appModel{
		stores:     stores,
		auth:       newAuthModel(),
		taskList:   newTaskList(),
		taskSearch: search,
		teamList:   newTeamList(),
	}
	if stores.Session.State().IsAuthenticated {
		// Durable identity: show content optimistically while Probe settles.
		m.screen = screenTasks
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.cmdProbe()}
	if m.stores.Session.State().IsAuthenticated {
		cmds = append(cmds, m.seedCmds()...)
	}
	return tea.Batch(cmds...)
}

// seedCmds fires the initial collection loads once per authenticated session.
func (m appModel) seedCmds() []tea.Cmd {
	return []tea.Cmd{m.cmdLoadTasks(), m.cmdLoadTeams(), m.cmdLoadStats()}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case stateChangedMsg:
		return m.handleStateChanged()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m appModel) handleStateChanged() (tea.Model, tea.Cmd) {
	session := m.stores.Session.State()
	var cmds []tea.Cmd

	if !session.IsAuthenticated {
		if session.Status == store.SessionReady && m.screen != screenAuth {
			m.screen = screenAuth
			m.seeded = false
			m.overlay = nil
			m.confirm = nil
		}
	} else if m.screen == screenAuth && session.Status == store.SessionReady {
		m.screen = screenTasks
		m.auth.localErr = ""
	}
	if session.IsAuthenticated && !m.seeded {
		m.seeded = true
		cmds = append(cmds, m.seedCmds()...)
	}

	var cmd tea.Cmd
	m, cmd = m.syncTasks(m.stores.Tasks.State())
	cmds = append(cmds, cmd)
	m, cmd = m.syncTeams(m.stores.Teams.State())
	cmds = append(cmds, cmd)

	// The overlay slot is owned by the UI store; drop the form if something
	// (logout teardown, a successful submit) closed it underneath us.
	if m.overlay != nil && m.stores.UI.State().Overlay.Active == store.OverlayNone {
		m.overlay = nil
	}
	return m, tea.Batch(cmds...)
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.confirm != nil {
		return m.updateConfirm(msg)
	}
	if m.overlay != nil {
		return m.updateOverlay(msg)
	}

	if m.screen == screenAuth {
		return m.updateAuth(msg)
	}

	// Global keys for authenticated screens.
	switch msg.String() {
	case "q":
		if !m.searching {
			return m, tea.Quit
		}
	case "1":
		if !m.searching {
			m.screen = screenTasks
			return m, nil
		}
	case "2":
		if !m.searching {
			m.screen = screenTeams
			return m, nil
		}
	case "3":
		if !m.searching {
			m.screen = screenDashboard
			return m, m.cmdLoadStats()
		}
	case "ctrl+t":
		m.stores.UI.ToggleTheme()
		return m, nil
	case "L":
		return m, m.cmdLogout()
	}

	switch m.screen {
	case screenTasks:
		return m.updateTasks(msg)
	case screenTeams:
		return m.updateTeams(msg)
	case screenDashboard:
		if msg.String() == "r" {
			return m, m.cmdLoadStats()
		}
	}
	return m, nil
}

func (m appModel) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+r" {
		cmd := m.auth.toggleMode()
		m.stores.Session.ClearError()
		return m, cmd
	}
	if msg.String() == "enter" {
		if m.auth.mode == authRegister {
			reg := m.auth.registration()
			if err := store.ValidatePassword(reg.Password); err != nil {
				m.auth.localErr = err.Error()
				return m, nil
			}
			m.auth.localErr = ""
			return m, m.cmdRegister(reg)
		}
		m.auth.localErr = ""
		return m, m.cmdLogin(m.auth.credentials())
	}
	cmd := m.auth.handleKey(msg)
	return m, cmd
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.confirm
	switch msg.String() {
	case "esc", "ctrl+g", "n":
		m.confirm = nil
		return m, nil
	case "tab", "left", "right":
		if c.focus == confirmFocusConfirm {
			c.focus = confirmFocusCancel
		} else {
			c.focus = confirmFocusConfirm
		}
		return m, nil
	case "y":
		action := c.action
		m.confirm = nil
		return m, action
	case "enter":
		action := c.action
		m.confirm = nil
		if c.focus == confirmFocusConfirm {
			return m, action
		}
		return m, nil
	}
	return m, nil
}

func (m appModel) updateOverlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.overlay = nil
		m.stores.UI.Close()
		return m, nil
	case "enter":
		return m.submitOverlay()
	}
	cmd := m.overlay.handleKey(msg)
	return m, cmd
}

func (m appModel) submitOverlay() (tea.Model, tea.Cmd) {
	o := m.overlay
	switch o.kind {
	case store.OverlayTask:
		d, ok := o.taskDraft()
		if !ok {
			return m, nil
		}
		return m, m.cmdSubmitTask(o.editID, d)
	case store.OverlayTeam:
		d, ok := o.teamDraft()
		if !ok {
			return m, nil
		}
		return m, m.cmdSubmitTeam(o.editID, d)
	case store.OverlayMember:
		inv, ok := o.memberInvite()
		if !ok {
			return m, nil
		}
		return m, m.cmdInviteMember(inv)
	}
	return m, nil
}

func (m appModel) View() string {
	if m.width == 0 {
		return ""
	}

	session := m.stores.Session.State()
	if m.screen == screenAuth {
		base := m.auth.view(m.width, m.height, session.Error, session.Status == store.SessionChecking)
		return m.withNotifications(base)
	}

	header := m.viewHeader(session.User)
	footer := m.viewFooter()
	bodyH := m.height - lipgloss.Height(header) - lipgloss.Height(footer) - 1

	var body string
	switch m.screen {
	case screenTeams:
		body = m.viewTeams(bodyH)
	case screenDashboard:
		body = m.viewDashboard()
	default:
		body = m.viewTasks(bodyH)
	}
	body = normalizePane(body, m.width, bodyH)

	out := header + "\n" + body + "\n" + footer

	if m.confirm != nil {
		box := renderConfirmModal(m.width, m.confirm.title, m.confirm.body, "Confirm", "Cancel", m.confirm.focus)
		return m.withNotifications(placeCentered(m.width, m.height, box))
	}
	if m.overlay != nil {
		return m.withNotifications(placeCentered(m.width, m.height, m.overlay.view(m.width, m.overlayTitle())))
	}
	return m.withNotifications(out)
}

func (m appModel) overlayTitle() string {
	o := m.overlay
	switch o.kind {
	case store.OverlayTeam:
		if o.editID == "" {
			return "New team"
		}
		return "Edit team"
	case store.OverlayMember:
		return "Invite member"
	default:
		if o.editID == "" {
			return "New task"
		}
		return "Edit task"
	}
}

func (m appModel) viewHeader(user *model.UserProfile) string {
	tab := func(label string, active bool) string {
		st := styleMuted()
		if active {
			st = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
		}
		return st.Render(label)
	}
	left := lipgloss.NewStyle().Bold(true).Render("crewdeck") + "   " +
		tab("1 Tasks", m.screen == screenTasks) + "  " +
		tab("2 Teams", m.screen == screenTeams) + "  " +
		tab("3 Dashboard", m.screen == screenDashboard)

	right := ""
	if user != nil {
		right = styleMuted().Render(user.FullName())
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return truncateLine(left, m.width)
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m appModel) viewFooter() string {
	var help string
	switch m.screen {
	case screenTeams:
		help = "enter: select   n: new   e: edit   d: delete   v: leave   i: invite   L: logout   q: quit"
	case screenDashboard:
		help = "r: refresh   L: logout   q: quit"
	default:
		help = "n: new   enter: edit   d: delete   /: search   s/p/f: filters   m: mine   c: clear   b: detail   L: logout   q: quit"
	}
	return styleMuted().Render(truncateLine(help, m.width))
}

func (m appModel) viewDashboard() string {
	st := m.stores.Tasks.State()
	teams := m.stores.Teams.State().Teams

	title := lipgloss.NewStyle().Bold(true).Render("Dashboard")
	if st.Stats == nil {
		return title + "\n\n" + styleMuted().Render("loading stats…")
	}
	s := *st.Stats

	row := func(label string, n int) string {
		return fmt.Sprintf("%-18s %d", label, n)
	}
	lines := []string{
		title,
		"",
		row("total tasks", s.TotalTasks),
		row("completed", s.CompletedTasks),
		row("overdue", s.OverdueTasks),
		row("due soon", s.DueSoonTasks),
		row("teams", s.TeamCount),
	}
	if len(teams) > 0 {
		lines = append(lines, "", styleMuted().Render("teams"))
		for _, t := range teams {
			lines = append(lines, fmt.Sprintf("  %-24s %d members", truncateLine(t.Name, 24), t.MemberCount))
		}
	}
	return strings.Join(lines, "\n")
}

// withNotifications overlays the newest notifications on the bottom rows.
func (m appModel) withNotifications(base string) string {
	notes := m.stores.UI.State().Notifications
	if len(notes) == 0 {
		return base
	}
	if len(notes) > 3 {
		notes = notes[len(notes)-3:]
	}

	lines := strings.Split(base, "\n")
	for i, n := range notes {
		idx := len(lines) - len(notes) + i - 1
		if idx < 0 || idx >= len(lines) {
			continue
		}
		st := lipgloss.NewStyle().Foreground(severityColor(n.Severity)).Bold(true)
		lines[idx] = truncateLine(st.Render("• "+n.Message), m.width)
	}
	return strings.Join(lines, "\n")
}

// Async commands. Each blocks on a store operation in the command goroutine;
// the store's subscribers push stateChangedMsg through program.Send while the
// operation mutates state, and the final message re-syncs once more.

func (m appModel) cmdProbe() tea.Cmd {
	st := m.stores
	return func() tea.Msg {
		st.Session.Probe(context.Background())
		return stateChangedMsg{}
	}
}

func (m appModel) cmdLogin(creds model.Credentials) tea.Cmd {
	st := m.stores
	return func() tea.Msg {
		_ = st.Session.Login(context.Background(), creds)
		return stateChangedMsg{}
	}
}

func (m appModel) cmdRegister(reg model.Registration) tea.Cmd {
	st := m.stores
	return func() tea.Msg {
		_ = st.Session.Register(context.Background(), reg)
		return stateChangedMsg{}
	}
}

func (m appModel) cmdLogout() tea.Cmd {
	st := m.stores
	return func() tea.Msg {
		st.Logout(context.Background())
		return stateChangedMsg{}
	}
}

func (m appModel) cmdLoadTasks() tea.Cmd {
	st := m.stores
	return func() tea.Msg {
		st.Tasks.Load(context.Background())
		return stateChangedMsg{}
	}
}

func (m appModel) cmdLoadStats() tea.Cmd {
	st := m.stores
	return func() tea.Msg {
		st.Tasks.LoadStats(context.Background())
		return stateChangedMsg{}
	}
}

func (m appModel) cmdPatchFilter(p store.FilterPatch) tea.Cmd {
	st := m.stores
	return func() tea.Msg {
		st.Tasks.SetFilter(context.Background(), p)
		return stateChangedMsg{}
	}
}

func (m appModel) cmdResetFilter() tea.Cmd {
	st := m.stores
	return func() tea.Msg {
		st.Tasks.ResetFilter(context.Background())
		return stateChangedMsg{}
	}
}

func (m appModel) cmdSubmitTask(id string, d model.TaskDraft) tea.Cmd {
	st := m.stores
	return func() tea.Msg {
		var err error
		if id == "" {
			err = st.Tasks.Create(context.Background(), d)
		} else {
			err = st.Tasks.Update(context.Background(), id, d)
		}
		if err != nil {
			st.UI.Notify(err.Error(), store.SeverityError)
			return stateChangedMsg{}
		}
		st.UI.Notify("Task saved", store.SeveritySuccess)
		st.UI.Close()
		return stateChangedMsg{}
	}
}

func (m appModel) cmdDeleteTask(id string) tea.Cmd {
	st := m.stores
	return func() tea.Msg {
		if err := st.Tasks.Delete(context.Background(), id); err != nil {
			st.UI.Notify(err.Error(), store.SeverityError)
		} else {
			st.UI.Notify("Task deleted", store.SeveritySuccess)
		}
		return stateChangedMsg{}
	}
}

func (m appModel) cmdLoadTeams() tea.Cmd {
	st := m.stores
	return func() tea.Msg {
		st.Teams.Load(context.Background())
		return stateChangedMsg{}
	}
}

func (m appModel) cmdLoadMembers(teamID string) tea.Cmd {
	st := m.stores
	return func() tea.Msg {
		st.Teams.LoadMembers(context.Background(), teamID)
		return stateChangedMsg{}
	}
}

func (m appModel) cmdSubmitTeam(id string, d model.TeamDraft) tea.Cmd {
	st := m.stores
	return func() tea.Msg {
		var err error
		if id == "" {
			err = st.Teams.Create(context.Background(), d)
		} else {
			err = st.Teams.Update(context.Background(), id, d)
		}
		if err != nil {
			st.UI.Notify(err.Error(), store.SeverityError)
			return stateChangedMsg{}
		}
		st.UI.Notify("Team saved", store.SeveritySuccess)
		st.UI.Close()
		return stateChangedMsg{}
	}
}

func (m appModel) cmdDeleteTeam(id string) tea.Cmd {
	st := m.stores
	return func() tea.Msg {
		if err := st.Teams.Delete(context.Background(), id); err != nil {
			st.UI.Notify(err.Error(), store.SeverityError)
		} else {
			st.UI.Notify("Team deleted", store.SeveritySuccess)
		}
		return stateChangedMsg{}
	}
}

func (m appModel) cmdLeaveTeam(id string) tea.Cmd {
	st := m.stores
	return func() tea.Msg {
		if err := st.Teams.Leave(context.Background(), id); err != nil {
			st.UI.Notify(err.Error(), store.SeverityError)
		} else {
			st.UI.Notify("Left team", store.SeveritySuccess)
		}
		return stateChangedMsg{}
	}
}

func (m appModel) cmdInviteMember(inv model.MemberInvite) tea.Cmd {
	st := m.stores
	return func() tea.Msg {
		if err := st.Teams.AddMember(context.Background(), inv); err != nil {
			st.UI.Notify(err.Error(), store.SeverityError)
			return stateChangedMsg{}
		}
		st.UI.Notify("Invitation sent", store.SeveritySuccess)
		st.UI.Close()
		return stateChangedMsg{}
	}
}

func (m appModel) cmdUpdateRole(memberID string, role model.Role) tea.Cmd {
	st := m.stores
	return func() tea.Msg {
		if err := st.Teams.UpdateRole(context.Background(), memberID, role); err != nil {
			st.UI.Notify(err.Error(), store.SeverityError)
		}
		return stateChangedMsg{}
	}
}

func (m appModel) cmdRemoveMember(memberID string) tea.Cmd {
	st := m.stores
	return func() tea.Msg {
		if err := st.Teams.Remove(context.Background(), memberID); err != nil {
			st.UI.Notify(err.Error(), store.SeverityError)
		}
		return stateChangedMsg{}
	}
}

package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"crewdeck/internal/model"
	"crewdeck/internal/store"
)

type teamRow struct {
	team model.Team
}

func (i teamRow) FilterValue() string { return i.team.Name }

type teamDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	meta     lipgloss.Style
}

func newTeamDelegate() teamDelegate {
	return teamDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
		meta: styleMuted(),
	}
}

func (d teamDelegate) Height() int                             { return 1 }
func (d teamDelegate) Spacing() int                            { return 0 }
func (d teamDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d teamDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		fmt.Fprint(w, "")
		return
	}
	it, ok := item.(teamRow)
	if !ok {
		fmt.Fprint(w, "")
		return
	}

	meta := fmt.Sprintf("%d members  %d tasks", it.team.MemberCount, it.team.TaskCount)
	line := it.team.Name
	if gap := contentW - xansi.StringWidth(line) - xansi.StringWidth(meta) - 1; gap > 1 {
		line += strings.Repeat(" ", gap) + d.meta.Render(meta) + " "
	}
	line = truncateLine(line, contentW)
	if pad := contentW - xansi.StringWidth(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}

	style := d.normal
	if index == m.Index() {
		style = d.selected
	}
	fmt.Fprint(w, style.Render(line))
}

func newTeamList() list.Model {
	l := list.New(nil, newTeamDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	return l
}

func (m appModel) highlightedTeam() *model.Team {
	it, ok := m.teamList.SelectedItem().(teamRow)
	if !ok {
		return nil
	}
	t := it.team
	return &t
}

func (m appModel) syncTeams(st store.TeamState) (appModel, tea.Cmd) {
	items := make([]list.Item, 0, len(st.Teams))
	for _, t := range st.Teams {
		items = append(items, teamRow{team: t})
	}
	cmd := m.teamList.SetItems(items)
	if m.memberIdx >= len(st.Members) {
		m.memberIdx = len(st.Members) - 1
	}
	if m.memberIdx < 0 {
		m.memberIdx = 0
	}
	return m, cmd
}

func (m appModel) selectedMember() *model.Member {
	members := m.stores.Teams.State().Members
	if m.memberIdx < 0 || m.memberIdx >= len(members) {
		return nil
	}
	mem := members[m.memberIdx]
	return &mem
}

func (m appModel) updateTeams(msg tea.KeyMsg) (appModel, tea.Cmd) {
	st := m.stores.Teams.State()

	if m.membersFocused {
		return m.updateMembersPane(msg, st)
	}

	switch msg.String() {
	case "enter":
		if t := m.highlightedTeam(); t != nil {
			m.stores.Teams.Select(t)
			m.memberIdx = 0
			return m, m.cmdLoadMembers(t.ID)
		}
		return m, nil
	case "tab":
		if st.Selected != nil {
			m.membersFocused = true
		}
		return m, nil
	case "n":
		m.stores.UI.Open(store.OverlayTeam, nil)
		m.overlay = newTeamForm(nil)
		return m, nil
	case "e":
		if t := m.highlightedTeam(); t != nil {
			m.stores.UI.Open(store.OverlayTeam, *t)
			m.overlay = newTeamForm(t)
		}
		return m, nil
	case "d":
		if t := m.highlightedTeam(); t != nil {
			if t.Role != model.RoleOwner {
				m.stores.UI.Notify("only the team owner can delete a team", store.SeverityWarning)
				return m, nil
			}
			id := t.ID
			m.confirm = &confirmState{
				title:  "Delete team",
				body:   fmt.Sprintf("Delete %q and all of its tasks?", t.Name),
				action: m.cmdDeleteTeam(id),
			}
		}
		return m, nil
	case "v":
		if t := m.highlightedTeam(); t != nil {
			id := t.ID
			m.confirm = &confirmState{
				title:  "Leave team",
				body:   fmt.Sprintf("Leave %q?", t.Name),
				action: m.cmdLeaveTeam(id),
			}
		}
		return m, nil
	case "i":
		if st.Selected == nil {
			m.stores.UI.Notify("select a team first (enter)", store.SeverityWarning)
			return m, nil
		}
		m.stores.UI.Open(store.OverlayMember, nil)
		m.overlay = newMemberForm()
		return m, nil
	case "r":
		return m, m.cmdLoadTeams()
	}

	var cmd tea.Cmd
	m.teamList, cmd = m.teamList.Update(msg)
	return m, cmd
}

func (m appModel) updateMembersPane(msg tea.KeyMsg, st store.TeamState) (appModel, tea.Cmd) {
	switch msg.String() {
	case "tab", "esc":
		m.membersFocused = false
		return m, nil
	case "up", "k":
		if m.memberIdx > 0 {
			m.memberIdx--
		}
		return m, nil
	case "down", "j":
		if m.memberIdx < len(st.Members)-1 {
			m.memberIdx++
		}
		return m, nil
	case "R":
		// Flip the selected member between member and admin. The store rejects
		// anything the membership rules forbid before a request is made.
		if mem := m.selectedMember(); mem != nil {
			next := model.RoleAdmin
			if mem.Role == model.RoleAdmin {
				next = model.RoleMember
			}
			return m, m.cmdUpdateRole(mem.ID, next)
		}
		return m, nil
	case "x":
		if mem := m.selectedMember(); mem != nil {
			id := mem.ID
			body := fmt.Sprintf("Remove %s from the team?", mem.FullName())
			if self := m.stores.Session.CurrentUser(); self != nil && self.ID == mem.UserID {
				body = "Leave this team?"
			}
			m.confirm = &confirmState{
				title:  "Remove member",
				body:   body,
				action: m.cmdRemoveMember(id),
			}
		}
		return m, nil
	case "i":
		m.stores.UI.Open(store.OverlayMember, nil)
		m.overlay = newMemberForm()
		return m, nil
	}
	return m, nil
}

func (m appModel) viewTeams(bodyH int) string {
	st := m.stores.Teams.State()

	listW := m.width / 2
	paneW := m.width - listW - 1
	paneH := bodyH - 2

	header := "teams"
	if st.Loading {
		header += "  " + styleMuted().Render("loading…")
	}

	lst := m.teamList
	lst.SetSize(listW, paneH)
	left := lst.View()
	if len(st.Teams) == 0 && !st.Loading {
		left = styleMuted().Render("No teams. Press n to create one.")
	}

	right := m.viewMembersPane(st, paneW)

	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		normalizePane(left, listW, paneH),
		normalizePane(" ", 1, paneH),
		normalizePane(right, paneW, paneH),
	)
	return truncateLine(header, m.width) + "\n\n" + body
}

func (m appModel) viewMembersPane(st store.TeamState, width int) string {
	if st.Selected == nil {
		return styleMuted().Render("Select a team (enter) to see its members.")
	}

	title := lipgloss.NewStyle().Bold(true).Render(truncateLine(st.Selected.Name, width))
	out := title
	if st.Selected.Description != "" {
		out += "\n" + styleMuted().Render(truncateLine(st.Selected.Description, width))
	}
	out += "\n\n"

	selStyle := lipgloss.NewStyle().
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	for i, mem := range st.Members {
		line := fmt.Sprintf("%s  %s", mem.FullName(), styleMuted().Render(string(mem.Role)))
		line = truncateLine(line, width)
		if m.membersFocused && i == m.memberIdx {
			if pad := width - xansi.StringWidth(line); pad > 0 {
				line += strings.Repeat(" ", pad)
			}
			line = selStyle.Render(line)
		}
		out += line + "\n"
	}
	if len(st.Members) == 0 {
		out += styleMuted().Render("loading members…") + "\n"
	}

	help := "tab: focus members   i: invite"
	if m.membersFocused {
		help = "R: toggle admin   x: remove   i: invite   tab: back"
	}
	out += "\n" + styleMuted().Render(truncateLine(help, width))
	return out
}

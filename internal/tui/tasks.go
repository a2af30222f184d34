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

type taskItem struct {
	task model.Task
}

func (i taskItem) FilterValue() string { return i.task.Title }

func statusGlyph(s model.TaskStatus) string {
	switch s {
	case model.StatusInProgress:
		return "◐"
	case model.StatusReview:
		return "◎"
	case model.StatusCompleted:
		return "●"
	default:
		return "○"
	}
}

func priorityLabel(p model.TaskPriority) string {
	switch p {
	case model.PriorityUrgent:
		return "URGENT"
	case model.PriorityHigh:
		return "high"
	case model.PriorityLow:
		return "low"
	default:
		return ""
	}
}

type taskDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	meta     lipgloss.Style
}

func newTaskDelegate() taskDelegate {
	return taskDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
		meta: styleMuted(),
	}
}

func (d taskDelegate) Height() int                             { return 1 }
func (d taskDelegate) Spacing() int                            { return 0 }
func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		fmt.Fprint(w, "")
		return
	}
	it, ok := item.(taskItem)
	if !ok {
		fmt.Fprint(w, "")
		return
	}

	meta := priorityLabel(it.task.Priority)
	if it.task.DueDate != "" {
		if meta != "" {
			meta += "  "
		}
		meta += it.task.DueDate
	}

	line := statusGlyph(it.task.Status) + " " + it.task.Title
	if meta != "" {
		gap := contentW - xansi.StringWidth(line) - xansi.StringWidth(meta) - 1
		if gap > 1 {
			line += strings.Repeat(" ", gap) + d.meta.Render(meta) + " "
		}
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

func newTaskList() list.Model {
	l := list.New(nil, newTaskDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	return l
}

func (m appModel) selectedTask() *model.Task {
	it, ok := m.taskList.SelectedItem().(taskItem)
	if !ok {
		return nil
	}
	t := it.task
	return &t
}

func (m appModel) syncTasks(st store.TaskState) (appModel, tea.Cmd) {
	items := make([]list.Item, 0, len(st.Tasks))
	for _, t := range st.Tasks {
		items = append(items, taskItem{task: t})
	}
	cmd := m.taskList.SetItems(items)
	return m, cmd
}

var (
	statusFilterCycle = []model.TaskStatus{
		"", model.StatusTodo, model.StatusInProgress, model.StatusReview, model.StatusCompleted,
	}
	priorityFilterCycle = []model.TaskPriority{
		"", model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityUrgent,
	}
)

func nextStatusFilter(cur model.TaskStatus) model.TaskStatus {
	for i, s := range statusFilterCycle {
		if s == cur {
			return statusFilterCycle[(i+1)%len(statusFilterCycle)]
		}
	}
	return ""
}

func nextPriorityFilter(cur model.TaskPriority) model.TaskPriority {
	for i, p := range priorityFilterCycle {
		if p == cur {
			return priorityFilterCycle[(i+1)%len(priorityFilterCycle)]
		}
	}
	return ""
}

// nextTeamFilter cycles "" -> first team -> ... -> last team -> "".
func nextTeamFilter(cur string, teams []model.Team) string {
	if len(teams) == 0 {
		return ""
	}
	if cur == "" {
		return teams[0].ID
	}
	for i, t := range teams {
		if t.ID == cur {
			if i+1 < len(teams) {
				return teams[i+1].ID
			}
			return ""
		}
	}
	return ""
}

func (m appModel) updateTasks(msg tea.KeyMsg) (appModel, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "enter":
			m.searching = false
			m.taskSearch.Blur()
			q := strings.TrimSpace(m.taskSearch.Value())
			return m, m.cmdPatchFilter(store.FilterPatch{Search: &q})
		case "esc":
			m.searching = false
			m.taskSearch.Blur()
			m.taskSearch.SetValue("")
			empty := ""
			return m, m.cmdPatchFilter(store.FilterPatch{Search: &empty})
		}
		var cmd tea.Cmd
		m.taskSearch, cmd = m.taskSearch.Update(msg)
		return m, cmd
	}

	teamState := m.stores.Teams.State()
	filter := m.stores.Tasks.State().Filter

	switch msg.String() {
	case "/":
		m.searching = true
		m.taskSearch.SetValue(filter.Search)
		return m, m.taskSearch.Focus()
	case "n":
		m.stores.UI.Open(store.OverlayTask, nil)
		m.overlay = newTaskForm(nil, teamState.Teams, teamState.Members)
		return m, nil
	case "enter", "e":
		if t := m.selectedTask(); t != nil {
			m.stores.UI.Open(store.OverlayTask, *t)
			m.overlay = newTaskForm(t, teamState.Teams, teamState.Members)
		}
		return m, nil
	case "d":
		if t := m.selectedTask(); t != nil {
			id := t.ID
			m.confirm = &confirmState{
				title:  "Delete task",
				body:   fmt.Sprintf("Delete %q? This cannot be undone.", t.Title),
				action: m.cmdDeleteTask(id),
			}
		}
		return m, nil
	case "s":
		next := nextStatusFilter(filter.Status)
		return m, m.cmdPatchFilter(store.FilterPatch{Status: &next})
	case "p":
		next := nextPriorityFilter(filter.Priority)
		return m, m.cmdPatchFilter(store.FilterPatch{Priority: &next})
	case "f":
		next := nextTeamFilter(filter.TeamID, teamState.Teams)
		return m, m.cmdPatchFilter(store.FilterPatch{TeamID: &next})
	case "m":
		mine := !filter.AssignedToMe
		return m, m.cmdPatchFilter(store.FilterPatch{AssignedToMe: &mine})
	case "c":
		return m, m.cmdResetFilter()
	case "b":
		m.stores.UI.ToggleSidebar()
		return m, nil
	case "r":
		return m, tea.Batch(m.cmdLoadTasks(), m.cmdLoadStats())
	}

	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

func (m appModel) filterSummary(filter model.TaskFilter, teams []model.Team) string {
	var parts []string
	if filter.Search != "" {
		parts = append(parts, "search:"+filter.Search)
	}
	if filter.TeamID != "" {
		name := filter.TeamID
		for _, t := range teams {
			if t.ID == filter.TeamID {
				name = t.Name
				break
			}
		}
		parts = append(parts, "team:"+name)
	}
	if filter.Status != "" {
		parts = append(parts, "status:"+string(filter.Status))
	}
	if filter.Priority != "" {
		parts = append(parts, "priority:"+string(filter.Priority))
	}
	if filter.AssignedToMe {
		parts = append(parts, "mine")
	}
	if len(parts) == 0 {
		return "all tasks"
	}
	return strings.Join(parts, "   ")
}

func (m appModel) viewTasks(bodyH int) string {
	st := m.stores.Tasks.State()
	teams := m.stores.Teams.State().Teams

	// The detail pane is toggleable; with it hidden the list gets the full
	// width.
	detailOpen := m.stores.UI.State().SidebarOpen
	listW := m.width
	detailW := 0
	if detailOpen {
		listW = m.width / 2
		detailW = m.width - listW - 1
	}

	var filterLine string
	if m.searching {
		filterLine = "search: " + m.taskSearch.View()
	} else {
		filterLine = m.filterSummary(st.Filter, teams)
		if st.Loading {
			filterLine += "  " + styleMuted().Render("loading…")
		}
	}
	filterLine = truncateLine(filterLine, m.width)

	paneH := bodyH - 2
	lst := m.taskList
	lst.SetSize(listW, paneH)
	left := lst.View()
	if len(st.Tasks) == 0 && !st.Loading {
		left = styleMuted().Render("No tasks. Press n to create one.")
	}

	if !detailOpen {
		return filterLine + "\n\n" + normalizePane(left, listW, paneH)
	}

	right := ""
	if t := m.selectedTask(); t != nil {
		right = m.viewTaskDetail(*t, teams, detailW)
	}

	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		normalizePane(left, listW, paneH),
		normalizePane(" ", 1, paneH),
		normalizePane(right, detailW, paneH),
	)
	return filterLine + "\n\n" + body
}

func (m appModel) viewTaskDetail(t model.Task, teams []model.Team, width int) string {
	title := lipgloss.NewStyle().Bold(true).Render(truncateLine(t.Title, width))

	teamName := t.TeamID
	for _, tm := range teams {
		if tm.ID == t.TeamID {
			teamName = tm.Name
			break
		}
	}
	meta := []string{
		"status: " + string(t.Status),
		"priority: " + string(t.Priority),
		"team: " + teamName,
	}
	if t.DueDate != "" {
		meta = append(meta, "due: "+t.DueDate)
	}
	if t.AssignedTo != "" {
		assignee := t.AssignedTo
		for _, mem := range m.stores.Teams.State().Members {
			if mem.UserID == t.AssignedTo {
				assignee = mem.FullName()
				break
			}
		}
		meta = append(meta, "assignee: "+assignee)
	}

	out := title + "\n" + styleMuted().Render(truncateLine(strings.Join(meta, "   "), width))
	if t.Description != "" {
		out += "\n\n" + renderMarkdown(t.Description, width)
	}
	return out
}

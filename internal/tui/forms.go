package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"crewdeck/internal/model"
	"crewdeck/internal/store"
)

// Overlay forms. Each overlay kind maps to one form; the form holds the draft
// being edited while the UI store owns which overlay is open. Text fields use
// bubbles textinput; enum fields cycle through their options with left/right.

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldSelect
)

type formField struct {
	label string
	kind  fieldKind
	input textinput.Model

	// Select fields: options is what the user sees, values what is submitted.
	options []string
	values  []string
	idx     int
}

func newTextField(label, placeholder, value string) formField {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.SetValue(value)
	return formField{label: label, kind: fieldText, input: ti}
}

func newSelectField(label string, options, values []string, current string) formField {
	f := formField{label: label, kind: fieldSelect, options: options, values: values}
	for i, v := range values {
		if v == current {
			f.idx = i
			break
		}
	}
	return f
}

func (f formField) value() string {
	if f.kind == fieldSelect {
		if len(f.values) == 0 {
			return ""
		}
		return f.values[f.idx]
	}
	return strings.TrimSpace(f.input.Value())
}

func (f *formField) cycle(delta int) {
	if f.kind != fieldSelect || len(f.options) == 0 {
		return
	}
	f.idx = (f.idx + delta + len(f.options)) % len(f.options)
}

// overlayForm is the TUI-side state for the active overlay: which entity it
// edits (empty editID means create) and the field drafts.
type overlayForm struct {
	kind   store.OverlayKind
	editID string
	fields []formField
	focus  int
	err    string
}

func (o *overlayForm) focusField(i int) tea.Cmd {
	var cmd tea.Cmd
	for j := range o.fields {
		o.fields[j].input.Blur()
	}
	o.focus = i
	if o.fields[i].kind == fieldText {
		cmd = o.fields[i].input.Focus()
	}
	return cmd
}

func (o *overlayForm) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		return o.focusField((o.focus + 1) % len(o.fields))
	case "shift+tab", "up":
		return o.focusField((o.focus - 1 + len(o.fields)) % len(o.fields))
	case "left":
		if o.fields[o.focus].kind == fieldSelect {
			o.fields[o.focus].cycle(-1)
			return nil
		}
	case "right":
		if o.fields[o.focus].kind == fieldSelect {
			o.fields[o.focus].cycle(1)
			return nil
		}
	}
	if o.fields[o.focus].kind == fieldText {
		var cmd tea.Cmd
		o.fields[o.focus].input, cmd = o.fields[o.focus].input.Update(msg)
		return cmd
	}
	return nil
}

func (o *overlayForm) fieldValue(label string) string {
	for _, f := range o.fields {
		if f.label == label {
			return f.value()
		}
	}
	return ""
}

func (o *overlayForm) view(screenW int, title string) string {
	bodyW := modalBodyWidth(screenW)
	labelStyle := styleMuted()
	focusLabel := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	var b strings.Builder
	for i, f := range o.fields {
		st := labelStyle
		if i == o.focus {
			st = focusLabel
		}
		b.WriteString(st.Render(f.label))
		b.WriteString("\n")
		switch f.kind {
		case fieldSelect:
			opt := ""
			if len(f.options) > 0 {
				opt = f.options[f.idx]
			}
			marker := "  "
			if i == o.focus {
				marker = "‹ "
				opt += " ›"
			}
			b.WriteString(truncateLine(marker+opt, bodyW))
		default:
			b.WriteString(renderInputLine(bodyW, f.input.View()))
		}
		b.WriteString("\n")
	}
	if o.err != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(colorError).Width(bodyW).Render(o.err))
	}
	b.WriteString("\n")
	b.WriteString(styleMuted().Width(bodyW).Render("tab: next field   ←/→: change value   enter: save   esc: cancel"))
	return renderModalBox(screenW, title, b.String())
}

// Field labels shared by build and submit.
const (
	fieldTitle       = "Title"
	fieldDescription = "Description"
	fieldTeam        = "Team"
	fieldAssignee    = "Assignee"
	fieldStatus      = "Status"
	fieldPriority    = "Priority"
	fieldDueDate     = "Due date (YYYY-MM-DD)"
	fieldName        = "Name"
	fieldEmail       = "Email"
	fieldRole        = "Role"
)

var (
	statusOptions   = []string{"todo", "in progress", "review", "completed"}
	statusValues    = []string{"todo", "in_progress", "review", "completed"}
	priorityValues  = []string{"low", "medium", "high", "urgent"}
	roleValues      = []string{"member", "admin"}
	unassignedLabel = "(unassigned)"
)

func newTaskForm(task *model.Task, teams []model.Team, members []model.Member) *overlayForm {
	var t model.Task
	editID := ""
	if task != nil {
		t = *task
		editID = t.ID
	}
	if t.Status == "" {
		t.Status = model.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}

	teamOpts := make([]string, 0, len(teams))
	teamVals := make([]string, 0, len(teams))
	for _, tm := range teams {
		teamOpts = append(teamOpts, tm.Name)
		teamVals = append(teamVals, tm.ID)
	}

	// Assignees come from the members of the currently selected team; a task
	// form opened without a member list only offers "unassigned".
	memberOpts := []string{unassignedLabel}
	memberVals := []string{""}
	for _, m := range members {
		memberOpts = append(memberOpts, m.FullName())
		memberVals = append(memberVals, m.UserID)
	}

	f := &overlayForm{
		kind:   store.OverlayTask,
		editID: editID,
		fields: []formField{
			newTextField(fieldTitle, "What needs doing?", t.Title),
			newTextField(fieldDescription, "Optional details (markdown)", t.Description),
			newSelectField(fieldTeam, teamOpts, teamVals, t.TeamID),
			newSelectField(fieldAssignee, memberOpts, memberVals, t.AssignedTo),
			newSelectField(fieldStatus, statusOptions, statusValues, string(t.Status)),
			newSelectField(fieldPriority, priorityValues, priorityValues, string(t.Priority)),
			newTextField(fieldDueDate, "2026-01-31", t.DueDate),
		},
	}
	f.focusField(0)
	return f
}

func (o *overlayForm) taskDraft() (model.TaskDraft, bool) {
	d := model.TaskDraft{
		Title:       o.fieldValue(fieldTitle),
		Description: o.fieldValue(fieldDescription),
		TeamID:      o.fieldValue(fieldTeam),
		AssignedTo:  o.fieldValue(fieldAssignee),
		Status:      model.TaskStatus(o.fieldValue(fieldStatus)),
		Priority:    model.TaskPriority(o.fieldValue(fieldPriority)),
		DueDate:     o.fieldValue(fieldDueDate),
	}
	if d.Title == "" {
		o.err = "title is required"
		return d, false
	}
	if d.TeamID == "" {
		o.err = "pick a team first (create one under the Teams tab)"
		return d, false
	}
	o.err = ""
	return d, true
}

func newTeamForm(team *model.Team) *overlayForm {
	var t model.Team
	editID := ""
	if team != nil {
		t = *team
		editID = t.ID
	}
	f := &overlayForm{
		kind:   store.OverlayTeam,
		editID: editID,
		fields: []formField{
			newTextField(fieldName, "Team name", t.Name),
			newTextField(fieldDescription, "Optional description", t.Description),
		},
	}
	f.focusField(0)
	return f
}

func (o *overlayForm) teamDraft() (model.TeamDraft, bool) {
	d := model.TeamDraft{
		Name:        o.fieldValue(fieldName),
		Description: o.fieldValue(fieldDescription),
	}
	if d.Name == "" {
		o.err = "name is required"
		return d, false
	}
	o.err = ""
	return d, true
}

func newMemberForm() *overlayForm {
	f := &overlayForm{
		kind: store.OverlayMember,
		fields: []formField{
			newTextField(fieldEmail, "person@example.com", ""),
			newSelectField(fieldRole, roleValues, roleValues, "member"),
		},
	}
	f.focusField(0)
	return f
}

func (o *overlayForm) memberInvite() (model.MemberInvite, bool) {
	inv := model.MemberInvite{
		Email: o.fieldValue(fieldEmail),
		Role:  model.Role(o.fieldValue(fieldRole)),
	}
	if !strings.Contains(inv.Email, "@") {
		o.err = "enter a valid email address"
		return inv, false
	}
	o.err = ""
	return inv, true
}

package model

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "owner":
		return RoleOwner, nil
	case "admin":
		return RoleAdmin, nil
	case "member":
		return RoleMember, nil
	default:
		return "", fmt.Errorf("invalid role: %q (expected owner|admin|member)", s)
	}
}

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusReview     TaskStatus = "review"
	StatusCompleted  TaskStatus = "completed"
)

func ParseTaskStatus(s string) (TaskStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo":
		return StatusTodo, nil
	case "in_progress", "in-progress":
		return StatusInProgress, nil
	case "review":
		return StatusReview, nil
	case "completed", "done":
		return StatusCompleted, nil
	default:
		return "", fmt.Errorf("invalid status: %q (expected todo|in_progress|review|completed)", s)
	}
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func ParseTaskPriority(s string) (TaskPriority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	case "urgent":
		return PriorityUrgent, nil
	default:
		return "", fmt.Errorf("invalid priority: %q (expected low|medium|high|urgent)", s)
	}
}

type UserProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func (u UserProfile) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Team carries the viewing user's own role in that team, not a global
// property: the server resolves Role per requesting user, and it determines
// which mutating actions the client may attempt.
type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Role        Role   `json:"role"`
	MemberCount int    `json:"member_count"`
	TaskCount   int    `json:"task_count"`
}

// Member is a user's membership record in one team. Exactly one member per
// team has RoleOwner.
type Member struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

func (m Member) FullName() string {
	name := strings.TrimSpace(m.FirstName + " " + m.LastName)
	if name == "" {
		return m.Email
	}
	return name
}

type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	TeamID      string       `json:"team_id"`
	AssignedTo  string       `json:"assigned_to,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     string       `json:"due_date,omitempty"` // YYYY-MM-DD
}

// TaskFilter narrows the task collection. The zero value means "everything
// visible to the current user".
//
// Invariant: if TeamID is empty, AssignedTo must be empty (assignee ids are
// only meaningful within one team). The task store enforces this by resetting
// AssignedTo whenever TeamID changes.
type TaskFilter struct {
	Search       string       `json:"search,omitempty"`
	TeamID       string       `json:"team_id,omitempty"`
	Status       TaskStatus   `json:"status,omitempty"`
	Priority     TaskPriority `json:"priority,omitempty"`
	AssignedTo   string       `json:"assigned_to,omitempty"`
	AssignedToMe bool         `json:"assigned_to_me,omitempty"`
}

func (f TaskFilter) IsZero() bool {
	return f == TaskFilter{}
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type TaskDraft struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	TeamID      string       `json:"team_id"`
	AssignedTo  string       `json:"assigned_to,omitempty"`
	Status      TaskStatus   `json:"status,omitempty"`
	Priority    TaskPriority `json:"priority,omitempty"`
	DueDate     string       `json:"due_date,omitempty"`
}

type TeamDraft struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type MemberInvite struct {
	Email string `json:"email"`
	Role  Role   `json:"role,omitempty"`
}

// DashboardStats is the aggregate the dashboard view renders. The server
// computes it; the client only caches the latest snapshot.
type DashboardStats struct {
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
	OverdueTasks   int `json:"overdue_tasks"`
	DueSoonTasks   int `json:"due_soon_tasks"`
	TeamCount      int `json:"team_count"`
}

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"crewdeck/internal/model"
)

type tasksPayload struct {
	Tasks []model.Task `json:"tasks"`
}

type taskPayload struct {
	Task model.Task `json:"task"`
}

func filterQuery(f model.TaskFilter) url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.TeamID != "" {
		q.Set("team_id", f.TeamID)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	if f.AssignedTo != "" {
		q.Set("assigned_to", f.AssignedTo)
	}
	if f.AssignedToMe {
		q.Set("assigned_to_me", "true")
	}
	return q
}

func (c *Client) ListTasks(ctx context.Context, f model.TaskFilter) ([]model.Task, error) {
	var p tasksPayload
	if err := c.do(ctx, http.MethodGet, "/tasks", filterQuery(f), nil, &p); err != nil {
		return nil, err
	}
	if p.Tasks == nil {
		p.Tasks = []model.Task{}
	}
	return p.Tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (model.Task, error) {
	var p taskPayload
	if err := c.do(ctx, http.MethodGet, "/tasks/"+id, nil, nil, &p); err != nil {
		return model.Task{}, err
	}
	return p.Task, nil
}

func (c *Client) CreateTask(ctx context.Context, d model.TaskDraft) error {
	return c.do(ctx, http.MethodPost, "/tasks", nil, d, nil)
}

func (c *Client) UpdateTask(ctx context.Context, id string, d model.TaskDraft) error {
	return c.do(ctx, http.MethodPut, "/tasks/"+id, nil, d, nil)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, nil, nil)
}

// DueSoon lists tasks due within the next `days` days (server default: 3).
func (c *Client) DueSoon(ctx context.Context, days int) ([]model.Task, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	var p tasksPayload
	if err := c.do(ctx, http.MethodGet, "/tasks/due-soon", q, nil, &p); err != nil {
		return nil, err
	}
	return p.Tasks, nil
}

func (c *Client) Overdue(ctx context.Context) ([]model.Task, error) {
	var p tasksPayload
	if err := c.do(ctx, http.MethodGet, "/tasks/overdue", nil, nil, &p); err != nil {
		return nil, err
	}
	return p.Tasks, nil
}

func (c *Client) DashboardStats(ctx context.Context) (model.DashboardStats, error) {
	var p model.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/tasks/dashboard", nil, nil, &p); err != nil {
		return model.DashboardStats{}, err
	}
	return p, nil
}

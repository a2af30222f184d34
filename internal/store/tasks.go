package store

import (
	"context"
	"sync"

	"crewdeck/internal/model"
)

// TaskAPI is the slice of the API client the task store consumes.
type TaskAPI interface {
	ListTasks(ctx context.Context, f model.TaskFilter) ([]model.Task, error)
	CreateTask(ctx context.Context, d model.TaskDraft) error
	UpdateTask(ctx context.Context, id string, d model.TaskDraft) error
	DeleteTask(ctx context.Context, id string) error
	DashboardStats(ctx context.Context) (model.DashboardStats, error)
}

type TaskState struct {
	Tasks   []model.Task
	Filter  model.TaskFilter
	Stats   *model.DashboardStats
	Loading bool
	Error   string
}

// FilterPatch is a partial filter update; nil fields are left unchanged.
// Using explicit fields (not a string-keyed map) keeps filter updates
// typo-proof and exhaustively checkable.
type FilterPatch struct {
	Search       *string
	TeamID       *string
	Status       *model.TaskStatus
	Priority     *model.TaskPriority
	AssignedTo   *string
	AssignedToMe *bool
}

// TaskStore owns the server-backed task list plus the active filter.
//
// Loads wholesale-replace the cached slice; a failed load keeps the previous
// list visible (stale-but-visible, never wiped) and records the error.
// Concurrent loads are sequenced by loadSeq: a completion that is not the
// latest issued load is discarded, so a slow response can never overwrite the
// result of a newer filter.
type TaskStore struct {
	mu      sync.Mutex
	api     TaskAPI
	tasks   []model.Task
	filter  model.TaskFilter
	stats   *model.DashboardStats
	err     string
	loading int

	loadSeq  uint64
	statsSeq uint64

	signal broadcaster
}

func NewTaskStore(taskAPI TaskAPI) *TaskStore {
	return &TaskStore{api: taskAPI}
}

func (s *TaskStore) Subscribe(fn func()) func() { return s.signal.Subscribe(fn) }

func (s *TaskStore) State() TaskState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := TaskState{
		Tasks:   append([]model.Task(nil), s.tasks...),
		Filter:  s.filter,
		Loading: s.loading > 0,
		Error:   s.err,
	}
	if s.stats != nil {
		stats := *s.stats
		st.Stats = &stats
	}
	return st
}

// Load fetches the task list with the currently active filter. Errors are
// recorded in the state, not returned: loads fire from lifecycle hooks with
// no caller positioned to react.
func (s *TaskStore) Load(ctx context.Context) {
	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	filter := s.filter
	s.loading++
	s.mu.Unlock()
	s.signal.notify()

	tasks, err := s.api.ListTasks(ctx, filter)

	s.mu.Lock()
	s.loading--
	if seq != s.loadSeq {
		// Superseded by a newer load; let that one decide the outcome.
		s.mu.Unlock()
		s.signal.notify()
		return
	}
	if err != nil {
		s.err = errMessage(err)
		s.mu.Unlock()
		s.signal.notify()
		return
	}
	s.tasks = tasks
	s.err = ""
	s.mu.Unlock()
	s.signal.notify()
}

// LoadStats refreshes the dashboard aggregate. Same read semantics as Load.
func (s *TaskStore) LoadStats(ctx context.Context) {
	s.mu.Lock()
	s.statsSeq++
	seq := s.statsSeq
	s.mu.Unlock()

	stats, err := s.api.DashboardStats(ctx)

	s.mu.Lock()
	if seq != s.statsSeq {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.err = errMessage(err)
	} else {
		s.stats = &stats
		s.err = ""
	}
	s.mu.Unlock()
	s.signal.notify()
}

// Create adds a task and, only on success, resynchronizes with exactly one
// Load using the filter active once the mutation resolved. A failed mutation
// records the error, performs no reload, and returns the error to the caller
// (the form decides whether to stay open).
func (s *TaskStore) Create(ctx context.Context, d model.TaskDraft) error {
	if err := s.api.CreateTask(ctx, d); err != nil {
		s.recordError(err)
		return err
	}
	s.Load(ctx)
	return nil
}

func (s *TaskStore) Update(ctx context.Context, id string, d model.TaskDraft) error {
	if err := s.api.UpdateTask(ctx, id, d); err != nil {
		s.recordError(err)
		return err
	}
	s.Load(ctx)
	return nil
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteTask(ctx, id); err != nil {
		s.recordError(err)
		return err
	}
	s.Load(ctx)
	return nil
}

// SetFilter merges the patch into the active filter and reloads when anything
// changed. Whenever TeamID changes, AssignedTo is reset in the same update:
// assignee filtering is only valid within one team.
func (s *TaskStore) SetFilter(ctx context.Context, p FilterPatch) {
	s.mu.Lock()
	prev := s.filter
	next := prev
	if p.Search != nil {
		next.Search = *p.Search
	}
	if p.TeamID != nil {
		next.TeamID = *p.TeamID
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.Priority != nil {
		next.Priority = *p.Priority
	}
	if p.AssignedTo != nil {
		next.AssignedTo = *p.AssignedTo
	}
	if p.AssignedToMe != nil {
		next.AssignedToMe = *p.AssignedToMe
	}
	if next.TeamID != prev.TeamID || next.TeamID == "" {
		next.AssignedTo = ""
	}
	changed := next != prev
	s.filter = next
	s.mu.Unlock()

	if changed {
		s.Load(ctx)
	}
}

// ResetFilter clears every filter field and reloads.
func (s *TaskStore) ResetFilter(ctx context.Context) {
	s.mu.Lock()
	changed := !s.filter.IsZero()
	s.filter = model.TaskFilter{}
	s.mu.Unlock()
	if changed {
		s.Load(ctx)
	}
}

func (s *TaskStore) ClearError() {
	s.mu.Lock()
	changed := s.err != ""
	s.err = ""
	s.mu.Unlock()
	if changed {
		s.signal.notify()
	}
}

// Reset returns the store to its initial state (logout teardown).
func (s *TaskStore) Reset() {
	s.mu.Lock()
	s.loadSeq++ // orphan any in-flight load
	s.statsSeq++
	s.tasks = nil
	s.stats = nil
	s.filter = model.TaskFilter{}
	s.err = ""
	s.mu.Unlock()
	s.signal.notify()
}

func (s *TaskStore) recordError(err error) {
	s.mu.Lock()
	s.err = errMessage(err)
	s.mu.Unlock()
	s.signal.notify()
}

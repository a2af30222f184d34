package store

import (
	"context"
	"sync"

	"crewdeck/internal/model"
)

// The fakes below default every operation to success-with-zero-value; tests
// override the funcs they care about. Blocking behavior (for the staleness
// properties) is scripted with channels inside the overridden funcs.

type fakeAuthAPI struct {
	statusFn   func(ctx context.Context) (*model.UserProfile, error)
	loginFn    func(ctx context.Context, creds model.Credentials) (*model.UserProfile, error)
	registerFn func(ctx context.Context, reg model.Registration) (*model.UserProfile, error)
	logoutFn   func(ctx context.Context) error

	mu          sync.Mutex
	logoutCalls int
}

func (f *fakeAuthAPI) SessionStatus(ctx context.Context) (*model.UserProfile, error) {
	if f.statusFn != nil {
		return f.statusFn(ctx)
	}
	return nil, nil
}

func (f *fakeAuthAPI) Login(ctx context.Context, creds model.Credentials) (*model.UserProfile, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, creds)
	}
	return &model.UserProfile{ID: "u1", Email: creds.Email}, nil
}

func (f *fakeAuthAPI) Register(ctx context.Context, reg model.Registration) (*model.UserProfile, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, reg)
	}
	return &model.UserProfile{ID: "u1", Email: reg.Email}, nil
}

func (f *fakeAuthAPI) Logout(ctx context.Context) error {
	f.mu.Lock()
	f.logoutCalls++
	f.mu.Unlock()
	if f.logoutFn != nil {
		return f.logoutFn(ctx)
	}
	return nil
}

type fakeTaskAPI struct {
	listFn   func(ctx context.Context, f model.TaskFilter) ([]model.Task, error)
	createFn func(ctx context.Context, d model.TaskDraft) error
	updateFn func(ctx context.Context, id string, d model.TaskDraft) error
	deleteFn func(ctx context.Context, id string) error
	statsFn  func(ctx context.Context) (model.DashboardStats, error)

	mu          sync.Mutex
	listCalls   int
	listFilters []model.TaskFilter
}

func (f *fakeTaskAPI) ListTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	f.mu.Lock()
	f.listCalls++
	f.listFilters = append(f.listFilters, filter)
	f.mu.Unlock()
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return []model.Task{}, nil
}

func (f *fakeTaskAPI) CreateTask(ctx context.Context, d model.TaskDraft) error {
	if f.createFn != nil {
		return f.createFn(ctx, d)
	}
	return nil
}

func (f *fakeTaskAPI) UpdateTask(ctx context.Context, id string, d model.TaskDraft) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, d)
	}
	return nil
}

func (f *fakeTaskAPI) DeleteTask(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeTaskAPI) DashboardStats(ctx context.Context) (model.DashboardStats, error) {
	if f.statsFn != nil {
		return f.statsFn(ctx)
	}
	return model.DashboardStats{}, nil
}

func (f *fakeTaskAPI) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeTaskAPI) lastFilter() model.TaskFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.listFilters) == 0 {
		return model.TaskFilter{}
	}
	return f.listFilters[len(f.listFilters)-1]
}

type fakeTeamAPI struct {
	listFn       func(ctx context.Context) ([]model.Team, error)
	createFn     func(ctx context.Context, d model.TeamDraft) error
	updateFn     func(ctx context.Context, id string, d model.TeamDraft) error
	deleteFn     func(ctx context.Context, id string) error
	membersFn    func(ctx context.Context, teamID string) ([]model.Member, error)
	addMemberFn  func(ctx context.Context, teamID string, inv model.MemberInvite) error
	updateRoleFn func(ctx context.Context, teamID, memberID string, role model.Role) error
	removeFn     func(ctx context.Context, teamID, memberID string) error
	leaveFn      func(ctx context.Context, teamID string) error

	mu           sync.Mutex
	listCalls    int
	membersCalls int
	leaveCalls   int
	removeCalls  int
	roleCalls    int
}

func (f *fakeTeamAPI) ListTeams(ctx context.Context) ([]model.Team, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []model.Team{}, nil
}

func (f *fakeTeamAPI) CreateTeam(ctx context.Context, d model.TeamDraft) error {
	if f.createFn != nil {
		return f.createFn(ctx, d)
	}
	return nil
}

func (f *fakeTeamAPI) UpdateTeam(ctx context.Context, id string, d model.TeamDraft) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, d)
	}
	return nil
}

func (f *fakeTeamAPI) DeleteTeam(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeTeamAPI) TeamMembers(ctx context.Context, teamID string) ([]model.Member, error) {
	f.mu.Lock()
	f.membersCalls++
	f.mu.Unlock()
	if f.membersFn != nil {
		return f.membersFn(ctx, teamID)
	}
	return []model.Member{}, nil
}

func (f *fakeTeamAPI) AddMember(ctx context.Context, teamID string, inv model.MemberInvite) error {
	if f.addMemberFn != nil {
		return f.addMemberFn(ctx, teamID, inv)
	}
	return nil
}

func (f *fakeTeamAPI) UpdateMemberRole(ctx context.Context, teamID, memberID string, role model.Role) error {
	f.mu.Lock()
	f.roleCalls++
	f.mu.Unlock()
	if f.updateRoleFn != nil {
		return f.updateRoleFn(ctx, teamID, memberID, role)
	}
	return nil
}

func (f *fakeTeamAPI) RemoveMember(ctx context.Context, teamID, memberID string) error {
	f.mu.Lock()
	f.removeCalls++
	f.mu.Unlock()
	if f.removeFn != nil {
		return f.removeFn(ctx, teamID, memberID)
	}
	return nil
}

func (f *fakeTeamAPI) LeaveTeam(ctx context.Context, teamID string) error {
	f.mu.Lock()
	f.leaveCalls++
	f.mu.Unlock()
	if f.leaveFn != nil {
		return f.leaveFn(ctx, teamID)
	}
	return nil
}

type fakeIdentity struct {
	user *model.UserProfile
}

func (f fakeIdentity) CurrentUser() *model.UserProfile { return f.user }

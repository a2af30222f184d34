package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"crewdeck/internal/api"
	"crewdeck/internal/model"
)

func ownerIdentity() fakeIdentity {
	return fakeIdentity{user: &model.UserProfile{ID: "me", Email: "me@crew.dev"}}
}

func teamX() *model.Team {
	return &model.Team{ID: "X", Name: "Platform", Role: model.RoleOwner}
}

func TestSelect_NilClearsMembersImmediately(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	teamAPI := &fakeTeamAPI{
		membersFn: func(ctx context.Context, teamID string) ([]model.Member, error) {
			return []model.Member{{ID: "m1", UserID: "me", Role: model.RoleOwner}}, nil
		},
	}
	s := NewTeamStore(teamAPI, ownerIdentity())
	s.Select(teamX())
	s.LoadMembers(ctx, "X")
	if got := len(s.State().Members); got != 1 {
		t.Fatalf("expected 1 member, got %d", got)
	}

	s.Select(nil)
	st := s.State()
	if st.Selected != nil || len(st.Members) != 0 {
		t.Fatalf("nil selection must clear members immediately: %+v", st)
	}
}

// Scope staleness: a member response for team X must never land after the
// scope moved to team Y.
func TestLoadMembers_StaleScopeResponseDiscarded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	enteredX := make(chan struct{})
	gateX := make(chan struct{})
	teamAPI := &fakeTeamAPI{
		membersFn: func(ctx context.Context, teamID string) ([]model.Member, error) {
			if teamID == "X" {
				close(enteredX)
				<-gateX
				return []model.Member{{ID: "mx", FirstName: "From", LastName: "X"}}, nil
			}
			return []model.Member{{ID: "my", FirstName: "From", LastName: "Y"}}, nil
		},
	}
	s := NewTeamStore(teamAPI, ownerIdentity())
	s.Select(teamX())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.LoadMembers(ctx, "X") // blocked on gateX
	}()
	<-enteredX

	s.Select(&model.Team{ID: "Y", Name: "Design", Role: model.RoleMember})
	s.LoadMembers(ctx, "Y")

	close(gateX) // X's response lands late
	wg.Wait()

	st := s.State()
	if len(st.Members) != 1 || st.Members[0].ID != "my" {
		t.Fatalf("member list populated from a stale scope: %+v", st.Members)
	}
}

func TestUpdateRole_RejectedLocallyWithoutRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	members := []model.Member{
		{ID: "m-owner", UserID: "me", Role: model.RoleOwner},
		{ID: "m-other", UserID: "u2", Role: model.RoleMember},
	}

	cases := []struct {
		name     string
		selected *model.Team
		self     string
		target   string
		wantErr  error
	}{
		{"no scope", nil, "me", "m-other", ErrNoTeamSelected},
		{"not owner", &model.Team{ID: "X", Role: model.RoleAdmin}, "me", "m-other", ErrNotOwner},
		{"sole owner target", &model.Team{ID: "X", Role: model.RoleOwner}, "me", "m-owner", ErrSoleOwner},
		{"unknown member", &model.Team{ID: "X", Role: model.RoleOwner}, "me", "m-gone", ErrMemberNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			teamAPI := &fakeTeamAPI{
				membersFn: func(ctx context.Context, teamID string) ([]model.Member, error) {
					return members, nil
				},
			}
			s := NewTeamStore(teamAPI, fakeIdentity{user: &model.UserProfile{ID: tc.self}})
			if tc.selected != nil {
				s.Select(tc.selected)
				s.LoadMembers(ctx, tc.selected.ID)
			}

			err := s.UpdateRole(ctx, tc.target, model.RoleAdmin)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("UpdateRole = %v, want %v", err, tc.wantErr)
			}
			if teamAPI.roleCalls != 0 {
				t.Fatalf("local rejection must not reach the server (%d calls)", teamAPI.roleCalls)
			}
		})
	}
}

func TestUpdateRole_SelfTargetRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	teamAPI := &fakeTeamAPI{
		membersFn: func(ctx context.Context, teamID string) ([]model.Member, error) {
			return []model.Member{
				{ID: "m-owner", UserID: "owner", Role: model.RoleOwner},
				{ID: "m-me", UserID: "me", Role: model.RoleAdmin},
			}, nil
		},
	}
	// The acting user views the team as owner but their member record is not
	// the owner row (e.g. just transferred by a server-side admin tool).
	s := NewTeamStore(teamAPI, ownerIdentity())
	s.Select(teamX())
	s.LoadMembers(ctx, "X")

	if err := s.UpdateRole(ctx, "m-me", model.RoleMember); !errors.Is(err, ErrSelfRole) {
		t.Fatalf("UpdateRole(self) = %v, want ErrSelfRole", err)
	}
	if teamAPI.roleCalls != 0 {
		t.Fatalf("self-role change must not reach the server")
	}
}

func TestUpdateRole_SuccessReloadsMembersOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	teamAPI := &fakeTeamAPI{
		membersFn: func(ctx context.Context, teamID string) ([]model.Member, error) {
			return []model.Member{
				{ID: "m-owner", UserID: "me", Role: model.RoleOwner},
				{ID: "m-other", UserID: "u2", Role: model.RoleMember},
			}, nil
		},
	}
	s := NewTeamStore(teamAPI, ownerIdentity())
	s.Select(teamX())
	s.LoadMembers(ctx, "X")
	before := teamAPI.membersCalls

	if err := s.UpdateRole(ctx, "m-other", model.RoleAdmin); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if teamAPI.roleCalls != 1 {
		t.Fatalf("expected 1 role call, got %d", teamAPI.roleCalls)
	}
	if got := teamAPI.membersCalls - before; got != 1 {
		t.Fatalf("expected exactly 1 member reload, got %d", got)
	}
}

func TestRemove_SelfRoutesToLeaveAndInvalidatesTeams(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	teamAPI := &fakeTeamAPI{
		membersFn: func(ctx context.Context, teamID string) ([]model.Member, error) {
			return []model.Member{
				{ID: "m-me", UserID: "me", Role: model.RoleMember},
				{ID: "m-owner", UserID: "u1", Role: model.RoleOwner},
			}, nil
		},
	}
	s := NewTeamStore(teamAPI, ownerIdentity())
	s.Select(&model.Team{ID: "X", Role: model.RoleMember})
	s.LoadMembers(ctx, "X")

	if err := s.Remove(ctx, "m-me"); err != nil {
		t.Fatalf("Remove(self): %v", err)
	}
	if teamAPI.leaveCalls != 1 || teamAPI.removeCalls != 0 {
		t.Fatalf("self-removal must use the leave route (leave=%d remove=%d)",
			teamAPI.leaveCalls, teamAPI.removeCalls)
	}
	if teamAPI.listCalls != 1 {
		t.Fatalf("leaving must invalidate the team list (listCalls=%d)", teamAPI.listCalls)
	}
	st := s.State()
	if st.Selected != nil || len(st.Members) != 0 {
		t.Fatalf("leaving the selected team must clear the scope: %+v", st)
	}
}

func TestRemove_OtherMemberReloadsMembers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	teamAPI := &fakeTeamAPI{
		membersFn: func(ctx context.Context, teamID string) ([]model.Member, error) {
			return []model.Member{
				{ID: "m-me", UserID: "me", Role: model.RoleOwner},
				{ID: "m-other", UserID: "u2", Role: model.RoleMember},
			}, nil
		},
	}
	s := NewTeamStore(teamAPI, ownerIdentity())
	s.Select(teamX())
	s.LoadMembers(ctx, "X")
	before := teamAPI.membersCalls

	if err := s.Remove(ctx, "m-other"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if teamAPI.removeCalls != 1 || teamAPI.leaveCalls != 0 {
		t.Fatalf("expected remove route (remove=%d leave=%d)", teamAPI.removeCalls, teamAPI.leaveCalls)
	}
	if got := teamAPI.membersCalls - before; got != 1 {
		t.Fatalf("expected exactly 1 member reload, got %d", got)
	}
}

func TestDelete_SelectedTeamClearsScope(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	teamAPI := &fakeTeamAPI{
		membersFn: func(ctx context.Context, teamID string) ([]model.Member, error) {
			return []model.Member{{ID: "m1", UserID: "me", Role: model.RoleOwner}}, nil
		},
	}
	s := NewTeamStore(teamAPI, ownerIdentity())
	s.Select(teamX())
	s.LoadMembers(ctx, "X")

	if err := s.Delete(ctx, "X"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	st := s.State()
	if st.Selected != nil || len(st.Members) != 0 {
		t.Fatalf("deleting the selected team must clear the scope: %+v", st)
	}
}

func TestMutation_FailureSurfacesErrorWithoutReload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	teamAPI := &fakeTeamAPI{
		createFn: func(ctx context.Context, d model.TeamDraft) error {
			return &api.Error{Status: 400, Message: "name taken"}
		},
	}
	s := NewTeamStore(teamAPI, ownerIdentity())

	if err := s.Create(ctx, model.TeamDraft{Name: "dup"}); err == nil {
		t.Fatalf("expected create error")
	}
	if teamAPI.listCalls != 0 {
		t.Fatalf("failed mutation must not reload (listCalls=%d)", teamAPI.listCalls)
	}
	if got := s.State().Error; got != "name taken" {
		t.Fatalf("expected recorded error, got %q", got)
	}
}

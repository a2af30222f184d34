package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"crewdeck/internal/model"
)

// TeamAPI is the slice of the API client the team store consumes.
type TeamAPI interface {
	ListTeams(ctx context.Context) ([]model.Team, error)
	CreateTeam(ctx context.Context, d model.TeamDraft) error
	UpdateTeam(ctx context.Context, id string, d model.TeamDraft) error
	DeleteTeam(ctx context.Context, id string) error
	TeamMembers(ctx context.Context, teamID string) ([]model.Member, error)
	AddMember(ctx context.Context, teamID string, inv model.MemberInvite) error
	UpdateMemberRole(ctx context.Context, teamID, memberID string, role model.Role) error
	RemoveMember(ctx context.Context, teamID, memberID string) error
	LeaveTeam(ctx context.Context, teamID string) error
}

// identitySource is how the team store learns who is acting; satisfied by
// *SessionManager.
type identitySource interface {
	CurrentUser() *model.UserProfile
}

// Membership invariants rejected locally, without a round-trip.
var (
	ErrNoTeamSelected = errors.New("no team selected")
	ErrNotOwner       = errors.New("only the team owner can change roles")
	ErrSoleOwner      = errors.New("cannot change the role of the team's only owner")
	ErrSelfRole       = errors.New("cannot change your own role")
	ErrMemberNotFound = errors.New("member not found")
)

type TeamState struct {
	Teams    []model.Team
	Selected *model.Team
	Members  []model.Member
	Loading  bool
	Error    string
}

// TeamStore owns the team collection and the member list scoped to the
// selected team. The member list is a dependent collection: its validity is
// bounded by the selection, so every selection change bumps a scope token and
// member-load completions carrying a stale token are discarded. That guard is
// applied on every path; a superseded fetch can never put team X's members
// under team Y's heading.
type TeamStore struct {
	mu    sync.Mutex
	api   TeamAPI
	ident identitySource

	teams    []model.Team
	selected *model.Team
	members  []model.Member
	err      string
	loading  int

	loadSeq    uint64
	scopeSeq   uint64
	membersSeq uint64

	signal broadcaster
}

func NewTeamStore(teamAPI TeamAPI, ident identitySource) *TeamStore {
	return &TeamStore{api: teamAPI, ident: ident}
}

func (s *TeamStore) Subscribe(fn func()) func() { return s.signal.Subscribe(fn) }

func (s *TeamStore) State() TeamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := TeamState{
		Teams:   append([]model.Team(nil), s.teams...),
		Members: append([]model.Member(nil), s.members...),
		Loading: s.loading > 0,
		Error:   s.err,
	}
	if s.selected != nil {
		sel := *s.selected
		st.Selected = &sel
	}
	return st
}

// Load fetches the team list, wholesale-replacing the cache on success and
// leaving the previous list visible on failure.
func (s *TeamStore) Load(ctx context.Context) {
	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	s.loading++
	s.mu.Unlock()
	s.signal.notify()

	teams, err := s.api.ListTeams(ctx)

	s.mu.Lock()
	s.loading--
	if seq != s.loadSeq {
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
	s.teams = teams
	s.err = ""
	s.mu.Unlock()
	s.signal.notify()
}

func (s *TeamStore) Create(ctx context.Context, d model.TeamDraft) error {
	if err := s.api.CreateTeam(ctx, d); err != nil {
		s.recordError(err)
		return err
	}
	s.Load(ctx)
	return nil
}

func (s *TeamStore) Update(ctx context.Context, id string, d model.TeamDraft) error {
	if err := s.api.UpdateTeam(ctx, id, d); err != nil {
		s.recordError(err)
		return err
	}
	s.Load(ctx)
	return nil
}

// Delete removes a team and reloads the list; if the deleted team was the
// selected scope, the selection and its member list are cleared.
func (s *TeamStore) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteTeam(ctx, id); err != nil {
		s.recordError(err)
		return err
	}
	s.mu.Lock()
	if s.selected != nil && s.selected.ID == id {
		s.clearScopeLocked()
	}
	s.mu.Unlock()
	s.Load(ctx)
	return nil
}

// Select sets the team scope for the member list. Selecting nil clears the
// member list immediately rather than waiting for any network round-trip.
func (s *TeamStore) Select(team *model.Team) {
	s.mu.Lock()
	s.scopeSeq++
	if team == nil {
		s.selected = nil
		s.members = nil
	} else {
		t := *team
		s.selected = &t
	}
	s.mu.Unlock()
	s.signal.notify()
}

// LoadMembers fetches members for the given team. The completion is applied
// only if the scope is still the same team and no newer member load was
// issued; otherwise the response is discarded.
func (s *TeamStore) LoadMembers(ctx context.Context, teamID string) {
	s.mu.Lock()
	scope := s.scopeSeq
	s.membersSeq++
	seq := s.membersSeq
	s.loading++
	s.mu.Unlock()
	s.signal.notify()

	members, err := s.api.TeamMembers(ctx, teamID)

	s.mu.Lock()
	s.loading--
	stale := scope != s.scopeSeq || seq != s.membersSeq ||
		s.selected == nil || s.selected.ID != teamID
	if stale {
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
	s.members = members
	s.err = ""
	s.mu.Unlock()
	s.signal.notify()
}

// AddMember invites a user into the selected team and reloads the member list
// on success.
func (s *TeamStore) AddMember(ctx context.Context, inv model.MemberInvite) error {
	sel := s.State().Selected
	if sel == nil {
		s.recordError(ErrNoTeamSelected)
		return ErrNoTeamSelected
	}
	if err := s.api.AddMember(ctx, sel.ID, inv); err != nil {
		s.recordError(err)
		return err
	}
	s.LoadMembers(ctx, sel.ID)
	return nil
}

// UpdateRole changes a member's role in the selected team. It rejects
// locally, leaving all state unchanged, when the acting user is not the
// owner, when the target is the team's sole owner (ownership transfer is not
// supported), or when the target is the acting user.
func (s *TeamStore) UpdateRole(ctx context.Context, memberID string, role model.Role) error {
	s.mu.Lock()
	sel := s.selected
	if sel == nil {
		s.mu.Unlock()
		s.recordError(ErrNoTeamSelected)
		return ErrNoTeamSelected
	}
	if sel.Role != model.RoleOwner {
		s.mu.Unlock()
		s.recordError(ErrNotOwner)
		return ErrNotOwner
	}
	target, ok := findMember(s.members, memberID)
	if !ok {
		s.mu.Unlock()
		err := fmt.Errorf("%w: %s", ErrMemberNotFound, memberID)
		s.recordError(err)
		return err
	}
	if target.Role == model.RoleOwner {
		// Exactly one member per team holds owner, so an owner target is
		// always the sole owner.
		s.mu.Unlock()
		s.recordError(ErrSoleOwner)
		return ErrSoleOwner
	}
	if self := s.ident.CurrentUser(); self != nil && target.UserID == self.ID {
		s.mu.Unlock()
		s.recordError(ErrSelfRole)
		return ErrSelfRole
	}
	teamID := sel.ID
	s.mu.Unlock()

	if err := s.api.UpdateMemberRole(ctx, teamID, memberID, role); err != nil {
		s.recordError(err)
		return err
	}
	s.LoadMembers(ctx, teamID)
	return nil
}

// Remove takes a member out of the selected team. Removing yourself is a
// "leave", which goes through the dedicated route and additionally
// invalidates the team list (membership counts changed).
func (s *TeamStore) Remove(ctx context.Context, memberID string) error {
	s.mu.Lock()
	sel := s.selected
	if sel == nil {
		s.mu.Unlock()
		s.recordError(ErrNoTeamSelected)
		return ErrNoTeamSelected
	}
	target, ok := findMember(s.members, memberID)
	if !ok {
		s.mu.Unlock()
		err := fmt.Errorf("%w: %s", ErrMemberNotFound, memberID)
		s.recordError(err)
		return err
	}
	teamID := sel.ID
	s.mu.Unlock()

	if self := s.ident.CurrentUser(); self != nil && target.UserID == self.ID {
		return s.Leave(ctx, teamID)
	}

	if err := s.api.RemoveMember(ctx, teamID, memberID); err != nil {
		s.recordError(err)
		return err
	}
	s.LoadMembers(ctx, teamID)
	return nil
}

// Leave exits the given team, clears the scope if it pointed at that team,
// and reloads the team list.
func (s *TeamStore) Leave(ctx context.Context, teamID string) error {
	if err := s.api.LeaveTeam(ctx, teamID); err != nil {
		s.recordError(err)
		return err
	}
	s.mu.Lock()
	if s.selected != nil && s.selected.ID == teamID {
		s.clearScopeLocked()
	}
	s.mu.Unlock()
	s.Load(ctx)
	return nil
}

func (s *TeamStore) ClearError() {
	s.mu.Lock()
	changed := s.err != ""
	s.err = ""
	s.mu.Unlock()
	if changed {
		s.signal.notify()
	}
}

// Reset returns the store to its initial state (logout teardown).
func (s *TeamStore) Reset() {
	s.mu.Lock()
	s.loadSeq++
	s.membersSeq++
	s.scopeSeq++
	s.teams = nil
	s.selected = nil
	s.members = nil
	s.err = ""
	s.mu.Unlock()
	s.signal.notify()
}

// clearScopeLocked drops the selection and its dependent member list.
func (s *TeamStore) clearScopeLocked() {
	s.scopeSeq++
	s.selected = nil
	s.members = nil
}

func (s *TeamStore) recordError(err error) {
	s.mu.Lock()
	s.err = errMessage(err)
	s.mu.Unlock()
	s.signal.notify()
}

func findMember(members []model.Member, id string) (model.Member, bool) {
	for _, m := range members {
		if m.ID == id {
			return m, true
		}
	}
	return model.Member{}, false
}

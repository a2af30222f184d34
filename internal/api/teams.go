package api

import (
	"context"
	"net/http"

	"crewdeck/internal/model"
)

type teamsPayload struct {
	Teams []model.Team `json:"teams"`
}

type teamPayload struct {
	Team model.Team `json:"team"`
}

type membersPayload struct {
	Members []model.Member `json:"members"`
}

func (c *Client) ListTeams(ctx context.Context) ([]model.Team, error) {
	var p teamsPayload
	if err := c.do(ctx, http.MethodGet, "/teams", nil, nil, &p); err != nil {
		return nil, err
	}
	if p.Teams == nil {
		p.Teams = []model.Team{}
	}
	return p.Teams, nil
}

func (c *Client) GetTeam(ctx context.Context, id string) (model.Team, error) {
	var p teamPayload
	if err := c.do(ctx, http.MethodGet, "/teams/"+id, nil, nil, &p); err != nil {
		return model.Team{}, err
	}
	return p.Team, nil
}

func (c *Client) CreateTeam(ctx context.Context, d model.TeamDraft) error {
	return c.do(ctx, http.MethodPost, "/teams", nil, d, nil)
}

func (c *Client) UpdateTeam(ctx context.Context, id string, d model.TeamDraft) error {
	return c.do(ctx, http.MethodPut, "/teams/"+id, nil, d, nil)
}

func (c *Client) DeleteTeam(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/teams/"+id, nil, nil, nil)
}

func (c *Client) TeamMembers(ctx context.Context, teamID string) ([]model.Member, error) {
	var p membersPayload
	if err := c.do(ctx, http.MethodGet, "/teams/"+teamID+"/members", nil, nil, &p); err != nil {
		return nil, err
	}
	if p.Members == nil {
		p.Members = []model.Member{}
	}
	return p.Members, nil
}

func (c *Client) AddMember(ctx context.Context, teamID string, inv model.MemberInvite) error {
	return c.do(ctx, http.MethodPost, "/teams/"+teamID+"/members", nil, inv, nil)
}

func (c *Client) UpdateMemberRole(ctx context.Context, teamID, memberID string, role model.Role) error {
	body := struct {
		Role model.Role `json:"role"`
	}{Role: role}
	return c.do(ctx, http.MethodPut, "/teams/"+teamID+"/members/"+memberID, nil, body, nil)
}

func (c *Client) RemoveMember(ctx context.Context, teamID, memberID string) error {
	return c.do(ctx, http.MethodDelete, "/teams/"+teamID+"/members/"+memberID, nil, nil, nil)
}

// LeaveTeam is the self-removal route. The server distinguishes it from
// RemoveMember because leaving is allowed for any role while removal requires
// admin rights over the target.
func (c *Client) LeaveTeam(ctx context.Context, teamID string) error {
	return c.do(ctx, http.MethodPost, "/teams/"+teamID+"/members/leave", nil, nil, nil)
}

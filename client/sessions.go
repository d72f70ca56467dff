package client

import (
	"context"
	"net/url"
)

// SessionService handles live layout sessions.
type SessionService struct {
	c *Client
}

func sessionPath(id string) string {
	return "/api/v1/sessions/" + url.PathEscape(id)
}

// Create starts a session for req.Key.
func (s *SessionService) Create(ctx context.Context, req *CreateSessionRequest) (*Session, error) {
	var sess Session
	if err := s.c.post(ctx, "/api/v1/sessions", req, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

type listSessionsResponse struct {
	Sessions []SessionSummary `json:"sessions"`
	Count    int              `json:"count"`
}

// List returns every live session.
func (s *SessionService) List(ctx context.Context) ([]SessionSummary, error) {
	var resp listSessionsResponse
	if err := s.c.get(ctx, "/api/v1/sessions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

// Frame returns the latest frame of a session.
func (s *SessionService) Frame(ctx context.Context, id string) (*Frame, error) {
	var f Frame
	if err := s.c.get(ctx, sessionPath(id), nil, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Delete ends a session.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	return s.c.del(ctx, sessionPath(id))
}

// Send dispatches an interaction event to a session.
func (s *SessionService) Send(ctx context.Context, id string, ev *Event) (*EventResult, error) {
	var res EventResult
	if err := s.c.post(ctx, sessionPath(id)+"/events", ev, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Export returns the session's model with the latest node positions.
func (s *SessionService) Export(ctx context.Context, id string) (*Export, error) {
	var e Export
	if err := s.c.get(ctx, sessionPath(id)+"/export", nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

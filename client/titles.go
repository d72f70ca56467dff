package client

import (
	"context"
	"net/url"
	"strconv"
)

// TitleService handles catalog lookups.
type TitleService struct {
	c *Client
}

type searchResponse struct {
	Results     []TitleSummary `json:"results"`
	Count       int            `json:"count"`
	Suggestions []TitleSummary `json:"suggestions,omitempty"`
}

// Search returns titles matching query. A limit of zero uses the server default.
func (s *TitleService) Search(ctx context.Context, query string, limit int) ([]TitleSummary, error) {
	params := url.Values{"q": {query}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var resp searchResponse
	if err := s.c.get(ctx, "/api/v1/titles/search", params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Suggestions returns up to n random starter titles. Zero uses the server default.
func (s *TitleService) Suggestions(ctx context.Context, n int) ([]TitleSummary, error) {
	var params url.Values
	if n > 0 {
		params = url.Values{"n": {strconv.Itoa(n)}}
	}
	var resp searchResponse
	if err := s.c.get(ctx, "/api/v1/titles/suggestions", params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Get returns a title by key or id.
func (s *TitleService) Get(ctx context.Context, key string) (*Title, error) {
	var t Title
	if err := s.c.get(ctx, "/api/v1/titles/"+url.PathEscape(key), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Connections returns the connection graph for a title without starting a session.
func (s *TitleService) Connections(ctx context.Context, key string) (*Graph, error) {
	var g Graph
	if err := s.c.get(ctx, "/api/v1/titles/"+url.PathEscape(key)+"/connections", nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

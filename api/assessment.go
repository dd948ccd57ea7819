// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// GuestQuestions fetches the assessment question set for an origin
// and destination country pair without authentication. The question
// endpoint is public so visitors can take the assessment before
// creating an account.
func (c *Client) GuestQuestions(ctx context.Context, fromCountry, toCountry string) ([]Question, error) {
	query := url.Values{}
	query.Set("fromCountry", fromCountry)
	query.Set("toCountry", toCountry)

	body, err := c.do(ctx, http.MethodGet, "/assessment/questions", "", nil, query)
	if err != nil {
		return nil, fmt.Errorf("api: fetch questions for %s→%s failed: %w", fromCountry, toCountry, err)
	}
	return parseQuestions(body)
}

// Questions fetches the assessment question set for an origin and
// destination country pair. The set is immutable for a given pair;
// a fresh set is fetched each time the flow is entered.
func (s *Session) Questions(ctx context.Context, fromCountry, toCountry string) ([]Question, error) {
	query := url.Values{}
	query.Set("fromCountry", fromCountry)
	query.Set("toCountry", toCountry)

	body, err := s.do(ctx, http.MethodGet, "/assessment/questions", nil, query)
	if err != nil {
		return nil, fmt.Errorf("api: fetch questions for %s→%s failed: %w", fromCountry, toCountry, err)
	}
	return parseQuestions(body)
}

func parseQuestions(body []byte) ([]Question, error) {
	var response struct {
		Questions []Question `json:"questions"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("api: failed to parse questions response: %w", err)
	}
	return response.Questions, nil
}

// Submit sends one atomic assessment submission to the remote scorer.
// Returns the session ID under which the scored result is persisted
// (the server echoes the client-generated ID).
func (s *Session) Submit(ctx context.Context, submission Submission) (string, error) {
	body, err := s.do(ctx, http.MethodPost, "/assessment/submit", submission)
	if err != nil {
		return "", fmt.Errorf("api: assessment submission failed: %w", err)
	}

	var response struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("api: failed to parse submit response: %w", err)
	}
	if response.SessionID == "" {
		response.SessionID = submission.SessionID
	}
	return response.SessionID, nil
}

// Result fetches the scored assessment result for a session ID.
func (s *Session) Result(ctx context.Context, sessionID string) (*Result, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("api: session ID is required for result retrieval")
	}

	body, err := s.do(ctx, http.MethodGet, "/assessment/results/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, fmt.Errorf("api: fetch result %s failed: %w", sessionID, err)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("api: failed to parse result response: %w", err)
	}
	return &result, nil
}

// MyAssessment returns the current user's existing assessment result,
// or nil when none exists yet. Used to block duplicate submissions
// when resuming a pending assessment after login.
func (s *Session) MyAssessment(ctx context.Context) (*Result, error) {
	body, err := s.do(ctx, http.MethodGet, "/assessment/my-assessment", nil)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("api: fetch my assessment failed: %w", err)
	}

	if len(body) == 0 || string(body) == "null" {
		return nil, nil
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("api: failed to parse my-assessment response: %w", err)
	}
	if result.SessionID == "" {
		return nil, nil
	}
	return &result, nil
}

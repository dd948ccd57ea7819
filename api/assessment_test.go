// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

// newTestSession creates an authenticated session against a test
// server.
func newTestSession(t *testing.T, handler http.HandlerFunc) *Session {
	t.Helper()
	client := newTestClient(t, handler)
	return client.SessionFromCredentials(User{ID: "user-1"}, TokenPair{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
	})
}

func TestQuestions(t *testing.T) {
	t.Run("country pair travels as query parameters", func(t *testing.T) {
		session := newTestSession(t, func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Path != "/assessment/questions" {
				t.Errorf("unexpected path: %s", request.URL.Path)
			}
			query := request.URL.Query()
			if query.Get("fromCountry") != "IN" || query.Get("toCountry") != "CA" {
				t.Errorf("unexpected query: %s", request.URL.RawQuery)
			}
			writeEnvelope(t, writer, map[string]any{
				"questions": []map[string]any{
					{"_id": "q1", "question": "Do you have a job offer?", "category": "employment", "weight": 25, "order": 1},
					{"_id": "q2", "question": "Completed tertiary education?", "category": "education", "weight": 20, "order": 2},
				},
			})
		})

		questions, err := session.Questions(context.Background(), "IN", "CA")
		if err != nil {
			t.Fatalf("Questions failed: %v", err)
		}
		if len(questions) != 2 {
			t.Fatalf("len(questions) = %d", len(questions))
		}
		if questions[0].ID != "q1" || questions[0].Text != "Do you have a job offer?" {
			t.Errorf("unexpected first question: %+v", questions[0])
		}
		if questions[1].Weight != 20 {
			t.Errorf("weight = %v", questions[1].Weight)
		}
	})

	t.Run("guest fetch carries no bearer token", func(t *testing.T) {
		client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			if auth := request.Header.Get("Authorization"); auth != "" {
				t.Errorf("guest request carried Authorization header %q", auth)
			}
			writeEnvelope(t, writer, map[string]any{"questions": []any{}})
		})

		questions, err := client.GuestQuestions(context.Background(), "PH", "AU")
		if err != nil {
			t.Fatalf("GuestQuestions failed: %v", err)
		}
		if len(questions) != 0 {
			t.Errorf("len(questions) = %d, want 0", len(questions))
		}
	})
}

func TestSubmit(t *testing.T) {
	t.Run("server echo wins", func(t *testing.T) {
		session := newTestSession(t, func(writer http.ResponseWriter, request *http.Request) {
			var submission Submission
			if err := json.NewDecoder(request.Body).Decode(&submission); err != nil {
				t.Fatalf("decoding submission: %v", err)
			}
			if submission.FromCountry != "IN" || submission.ToCountry != "CA" {
				t.Errorf("unexpected countries: %+v", submission)
			}
			if len(submission.Responses) != 1 {
				t.Errorf("len(responses) = %d", len(submission.Responses))
			}
			writeEnvelope(t, writer, map[string]any{"sessionId": submission.SessionID})
		})

		sessionID, err := session.Submit(context.Background(), Submission{
			SessionID:   "session_abc",
			FromCountry: "IN",
			ToCountry:   "CA",
			Responses:   []Response{{QuestionID: "q1", Answer: true, Weight: 25}},
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if sessionID != "session_abc" {
			t.Errorf("sessionID = %q", sessionID)
		}
	})

	t.Run("missing echo falls back to the submitted ID", func(t *testing.T) {
		session := newTestSession(t, func(writer http.ResponseWriter, request *http.Request) {
			writeEnvelope(t, writer, map[string]any{})
		})

		sessionID, err := session.Submit(context.Background(), Submission{SessionID: "session_xyz"})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if sessionID != "session_xyz" {
			t.Errorf("sessionID = %q", sessionID)
		}
	})
}

func TestResult(t *testing.T) {
	t.Run("empty session ID never touches the network", func(t *testing.T) {
		session := newTestSession(t, func(http.ResponseWriter, *http.Request) {
			t.Error("request sent for empty session ID")
		})
		if _, err := session.Result(context.Background(), ""); err == nil {
			t.Fatal("expected error for empty session ID")
		}
	})

	t.Run("session ID is path-escaped", func(t *testing.T) {
		session := newTestSession(t, func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.EscapedPath() != "/assessment/results/session%2Fweird" {
				t.Errorf("unexpected path: %s", request.URL.EscapedPath())
			}
			writeEnvelope(t, writer, map[string]any{
				"sessionId":         "session/weird",
				"score":             72.5,
				"riskLevel":         "medium",
				"eligibilityStatus": "potentially_eligible",
			})
		})

		result, err := session.Result(context.Background(), "session/weird")
		if err != nil {
			t.Fatalf("Result failed: %v", err)
		}
		if result.Score != 72.5 || result.RiskLevel != RiskMedium {
			t.Errorf("unexpected result: %+v", result)
		}
	})
}

func TestMyAssessment(t *testing.T) {
	t.Run("404 means no assessment", func(t *testing.T) {
		session := newTestSession(t, func(writer http.ResponseWriter, request *http.Request) {
			writeError(writer, http.StatusNotFound, "No assessment found", nil)
		})
		result, err := session.MyAssessment(context.Background())
		if err != nil {
			t.Fatalf("MyAssessment failed: %v", err)
		}
		if result != nil {
			t.Errorf("result = %+v, want nil", result)
		}
	})

	t.Run("null payload means no assessment", func(t *testing.T) {
		session := newTestSession(t, func(writer http.ResponseWriter, request *http.Request) {
			writeEnvelope(t, writer, nil)
		})
		result, err := session.MyAssessment(context.Background())
		if err != nil {
			t.Fatalf("MyAssessment failed: %v", err)
		}
		if result != nil {
			t.Errorf("result = %+v, want nil", result)
		}
	})

	t.Run("existing assessment", func(t *testing.T) {
		session := newTestSession(t, func(writer http.ResponseWriter, request *http.Request) {
			writeEnvelope(t, writer, map[string]any{
				"sessionId":         "session_abc",
				"score":             88,
				"riskLevel":         "low",
				"eligibilityStatus": "eligible",
			})
		})
		result, err := session.MyAssessment(context.Background())
		if err != nil {
			t.Fatalf("MyAssessment failed: %v", err)
		}
		if result == nil || result.SessionID != "session_abc" {
			t.Fatalf("result = %+v", result)
		}
	})
}

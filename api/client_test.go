// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestClient creates a Client pointed at a test server. The server
// is shut down when the test completes.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

// writeEnvelope writes a success envelope with the given data payload.
func writeEnvelope(t *testing.T, writer http.ResponseWriter, data any) {
	t.Helper()
	writer.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(writer).Encode(map[string]any{
		"success": true,
		"message": "ok",
		"data":    data,
	}); err != nil {
		t.Fatalf("encoding envelope: %v", err)
	}
}

// writeError writes an error envelope with the given status and message.
func writeError(writer http.ResponseWriter, status int, message string, fields map[string]string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(map[string]any{
		"success": false,
		"message": message,
		"errors":  fields,
	})
}

func TestNewClient(t *testing.T) {
	t.Run("valid URL", func(t *testing.T) {
		client, err := NewClient(ClientConfig{BaseURL: "http://localhost:5555/api/v1"})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if client == nil {
			t.Fatal("NewClient returned nil")
		}
	})

	t.Run("empty URL", func(t *testing.T) {
		_, err := NewClient(ClientConfig{})
		if err == nil {
			t.Fatal("expected error for empty URL")
		}
	})

	t.Run("trailing slash is stripped", func(t *testing.T) {
		client, err := NewClient(ClientConfig{BaseURL: "http://localhost:5555/api/v1/"})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if got := client.BaseURL(); got != "http://localhost:5555/api/v1" {
			t.Errorf("BaseURL = %q, want trailing slash stripped", got)
		}
	})
}

func TestLogin(t *testing.T) {
	t.Run("successful login", func(t *testing.T) {
		client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			if request.Method != http.MethodPost || request.URL.Path != "/auth/login" {
				t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
			}
			if auth := request.Header.Get("Authorization"); auth != "" {
				t.Errorf("login request carried Authorization header %q", auth)
			}

			var body map[string]string
			if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
				t.Fatalf("decoding request body: %v", err)
			}
			if body["email"] != "maria@example.com" {
				t.Errorf("email = %q", body["email"])
			}
			if body["password"] != "hunter2" {
				t.Errorf("password = %q", body["password"])
			}

			writeEnvelope(t, writer, map[string]any{
				"user": map[string]any{
					"_id":       "user-1",
					"email":     "maria@example.com",
					"firstName": "Maria",
					"lastName":  "Santos",
					"role":      "applicant",
				},
				"accessToken":  "access-1",
				"refreshToken": "refresh-1",
			})
		})

		session, err := client.Login(context.Background(), "maria@example.com", "hunter2")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}

		identity := session.Identity()
		if identity.ID != "user-1" || identity.Email != "maria@example.com" {
			t.Errorf("unexpected identity: %+v", identity)
		}
		pair := session.Credentials()
		if pair.AccessToken != "access-1" || pair.RefreshToken != "refresh-1" {
			t.Errorf("unexpected credentials: %+v", pair)
		}
		if !session.Valid() {
			t.Error("fresh session reports invalid")
		}
	})

	t.Run("missing email", func(t *testing.T) {
		client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
			t.Error("request sent despite missing email")
		})
		if _, err := client.Login(context.Background(), "", "hunter2"); err == nil {
			t.Fatal("expected error for missing email")
		}
	})

	t.Run("wrong credentials", func(t *testing.T) {
		client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			writeError(writer, http.StatusUnauthorized, "Invalid email or password", nil)
		})

		_, err := client.Login(context.Background(), "maria@example.com", "wrong")
		if err == nil {
			t.Fatal("expected error")
		}
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("error is %T, want *Error", err)
		}
		if apiErr.StatusCode != http.StatusUnauthorized {
			t.Errorf("StatusCode = %d", apiErr.StatusCode)
		}
		if apiErr.Message != "Invalid email or password" {
			t.Errorf("Message = %q", apiErr.Message)
		}
	})

	t.Run("non-JSON error body keeps the status code", func(t *testing.T) {
		client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusBadGateway)
			writer.Write([]byte("<html>bad gateway</html>"))
		})

		_, err := client.Login(context.Background(), "maria@example.com", "hunter2")
		if err == nil {
			t.Fatal("expected error")
		}
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("non-JSON body did not produce a structured *Error: %v", err)
		}
		if apiErr.StatusCode != http.StatusBadGateway {
			t.Errorf("StatusCode = %d", apiErr.StatusCode)
		}
		if !strings.Contains(apiErr.Message, "bad gateway") {
			t.Errorf("Message = %q, want raw body text", apiErr.Message)
		}
	})

	t.Run("bodyless 401 is still a structured 401", func(t *testing.T) {
		client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusUnauthorized)
		})

		_, err := client.Login(context.Background(), "maria@example.com", "hunter2")
		if !IsUnauthorized(err) {
			t.Errorf("bodyless 401 = %v, want unauthorized API error", err)
		}
	})
}

func TestRegister(t *testing.T) {
	t.Run("validation failure carries field errors", func(t *testing.T) {
		client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			writeError(writer, http.StatusBadRequest, "Validation failed", map[string]string{
				"email": "already registered",
			})
		})

		_, err := client.Register(context.Background(), RegisterRequest{
			Email:     "maria@example.com",
			Password:  "hunter2",
			FirstName: "Maria",
			LastName:  "Santos",
		})
		if err == nil {
			t.Fatal("expected error")
		}
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("error is %T, want *Error", err)
		}
		if !apiErr.IsValidation() {
			t.Error("400 response not classified as validation")
		}
		if apiErr.Fields["email"] != "already registered" {
			t.Errorf("Fields = %v", apiErr.Fields)
		}
	})
}

func TestRefresh(t *testing.T) {
	t.Run("rotates both credentials", func(t *testing.T) {
		client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			var body map[string]string
			json.NewDecoder(request.Body).Decode(&body)
			if body["refreshToken"] != "refresh-1" {
				t.Errorf("refreshToken = %q", body["refreshToken"])
			}
			writeEnvelope(t, writer, map[string]any{
				"accessToken":  "access-2",
				"refreshToken": "refresh-2",
			})
		})

		pair, err := client.Refresh(context.Background(), "refresh-1")
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		if pair.AccessToken != "access-2" || pair.RefreshToken != "refresh-2" {
			t.Errorf("unexpected pair: %+v", pair)
		}
	})

	t.Run("incomplete response is an error", func(t *testing.T) {
		client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			writeEnvelope(t, writer, map[string]any{"accessToken": "access-2"})
		})
		if _, err := client.Refresh(context.Background(), "refresh-1"); err == nil {
			t.Fatal("expected error for response missing refreshToken")
		}
	})
}

func TestUserMessage(t *testing.T) {
	t.Run("server message wins", func(t *testing.T) {
		err := &Error{StatusCode: 409, Message: "Document already uploaded"}
		if got := UserMessage(err); got != "Document already uploaded" {
			t.Errorf("UserMessage = %q", got)
		}
	})

	t.Run("network failure", func(t *testing.T) {
		client, err := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1"})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		_, err = client.Login(context.Background(), "maria@example.com", "hunter2")
		if err == nil {
			t.Fatal("expected connection failure")
		}
		if got := UserMessage(err); got != "Network error. Please check your connection." {
			t.Errorf("UserMessage = %q", got)
		}
	})

	t.Run("nil error", func(t *testing.T) {
		if got := UserMessage(nil); got != "" {
			t.Errorf("UserMessage(nil) = %q", got)
		}
	})
}

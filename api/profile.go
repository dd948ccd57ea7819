// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// Profile fetches the applicant's profile with all sections.
func (s *Session) Profile(ctx context.Context) (*Profile, error) {
	body, err := s.do(ctx, http.MethodGet, "/profile", nil)
	if err != nil {
		return nil, fmt.Errorf("api: fetch profile failed: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("api: failed to parse profile response: %w", err)
	}
	return &profile, nil
}

// UpdateProfileSection replaces one named profile section (personal,
// contact, passport, education, employment, financial). Other sections
// are untouched.
func (s *Session) UpdateProfileSection(ctx context.Context, section string, data any) error {
	if section == "" {
		return fmt.Errorf("api: profile section name is required")
	}
	_, err := s.do(ctx, http.MethodPut, "/profile", map[string]any{
		"section": section,
		"data":    data,
	})
	if err != nil {
		return fmt.Errorf("api: update profile section %q failed: %w", section, err)
	}
	return nil
}

// Documents lists the applicant's uploaded documents with their review
// status.
func (s *Session) Documents(ctx context.Context) ([]Document, error) {
	body, err := s.do(ctx, http.MethodGet, "/profile/documents", nil)
	if err != nil {
		return nil, fmt.Errorf("api: fetch documents failed: %w", err)
	}

	var documents []Document
	if err := json.Unmarshal(body, &documents); err != nil {
		return nil, fmt.Errorf("api: failed to parse documents response: %w", err)
	}
	return documents, nil
}

// UploadDocument uploads a supporting document as multipart/form-data.
// documentType identifies the document kind (passport, bank_statement,
// ...); fileName is the original file name shown in review. The file
// content is buffered so the request can be replayed once if the first
// attempt hits an expired access credential.
func (s *Session) UploadDocument(ctx context.Context, documentType, fileName string, content io.Reader) (*Document, error) {
	if documentType == "" {
		return nil, fmt.Errorf("api: document type is required for upload")
	}
	if fileName == "" {
		return nil, fmt.Errorf("api: file name is required for upload")
	}

	fileBytes, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("api: reading document content: %w", err)
	}

	makeBody := func() (string, *bytes.Buffer, error) {
		buffer := &bytes.Buffer{}
		writer := multipart.NewWriter(buffer)
		if err := writer.WriteField("documentType", documentType); err != nil {
			return "", nil, fmt.Errorf("api: building upload form: %w", err)
		}
		part, err := writer.CreateFormFile("document", fileName)
		if err != nil {
			return "", nil, fmt.Errorf("api: building upload form: %w", err)
		}
		if _, err := part.Write(fileBytes); err != nil {
			return "", nil, fmt.Errorf("api: building upload form: %w", err)
		}
		if err := writer.Close(); err != nil {
			return "", nil, fmt.Errorf("api: building upload form: %w", err)
		}
		return writer.FormDataContentType(), buffer, nil
	}

	body, err := s.doMultipart(ctx, http.MethodPost, "/profile/documents", makeBody)
	if err != nil {
		return nil, fmt.Errorf("api: document upload failed: %w", err)
	}

	var document Document
	if err := json.Unmarshal(body, &document); err != nil {
		return nil, fmt.Errorf("api: failed to parse upload response: %w", err)
	}
	return &document, nil
}

// DeleteDocument removes an uploaded document.
func (s *Session) DeleteDocument(ctx context.Context, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("api: document ID is required")
	}
	_, err := s.do(ctx, http.MethodDelete, "/profile/documents/"+url.PathEscape(documentID), nil)
	if err != nil {
		return fmt.Errorf("api: delete document %s failed: %w", documentID, err)
	}
	return nil
}

// FamilyMembers lists the dependents attached to the profile.
func (s *Session) FamilyMembers(ctx context.Context) ([]FamilyMember, error) {
	body, err := s.do(ctx, http.MethodGet, "/profile/family-members", nil)
	if err != nil {
		return nil, fmt.Errorf("api: fetch family members failed: %w", err)
	}

	var members []FamilyMember
	if err := json.Unmarshal(body, &members); err != nil {
		return nil, fmt.Errorf("api: failed to parse family members response: %w", err)
	}
	return members, nil
}

// AddFamilyMember attaches a new dependent and returns it with its
// server-assigned ID.
func (s *Session) AddFamilyMember(ctx context.Context, member FamilyMember) (*FamilyMember, error) {
	body, err := s.do(ctx, http.MethodPost, "/profile/family-members", member)
	if err != nil {
		return nil, fmt.Errorf("api: add family member failed: %w", err)
	}

	var created FamilyMember
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("api: failed to parse family member response: %w", err)
	}
	return &created, nil
}

// UpdateFamilyMember replaces an existing dependent's details.
func (s *Session) UpdateFamilyMember(ctx context.Context, member FamilyMember) error {
	if member.ID == "" {
		return fmt.Errorf("api: family member ID is required for update")
	}
	_, err := s.do(ctx, http.MethodPut, "/profile/family-members/"+url.PathEscape(member.ID), member)
	if err != nil {
		return fmt.Errorf("api: update family member %s failed: %w", member.ID, err)
	}
	return nil
}

// RemoveFamilyMember detaches a dependent from the profile.
func (s *Session) RemoveFamilyMember(ctx context.Context, memberID string) error {
	if memberID == "" {
		return fmt.Errorf("api: family member ID is required")
	}
	_, err := s.do(ctx, http.MethodDelete, "/profile/family-members/"+url.PathEscape(memberID), nil)
	if err != nil {
		return fmt.Errorf("api: remove family member %s failed: %w", memberID, err)
	}
	return nil
}

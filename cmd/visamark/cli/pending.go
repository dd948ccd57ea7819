// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/visamark/visamark/api"
)

// PendingAssessment is a completed questionnaire saved locally because
// the user was not signed in when they finished it. "visamark login"
// and "visamark register" submit it automatically and then delete the
// file.
type PendingAssessment struct {
	Submission api.Submission `json:"submission"`
	SavedAt    time.Time      `json:"saved_at"`
}

// PendingAssessmentPath returns the path to the pending-assessment
// file, next to the session file.
func PendingAssessmentPath() string {
	return filepath.Join(filepath.Dir(SessionFilePath()), "pending-assessment.json")
}

// LoadPendingAssessment reads the pending assessment, returning
// (nil, nil) when none is saved.
func LoadPendingAssessment() (*PendingAssessment, error) {
	data, err := os.ReadFile(PendingAssessmentPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading pending assessment: %w", err)
	}
	var pending PendingAssessment
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, fmt.Errorf("parsing pending assessment: %w", err)
	}
	return &pending, nil
}

// SavePendingAssessment writes the pending assessment to disk.
func SavePendingAssessment(pending *PendingAssessment) error {
	data, err := json.MarshalIndent(pending, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling pending assessment: %w", err)
	}
	data = append(data, '\n')

	path := PendingAssessmentPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing pending assessment: %w", err)
	}
	return nil
}

// DeletePendingAssessment removes the pending-assessment file.
// Missing file is not an error.
func DeletePendingAssessment() error {
	err := os.Remove(PendingAssessmentPath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing pending assessment: %w", err)
	}
	return nil
}

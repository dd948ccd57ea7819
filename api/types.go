// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"time"
)

// envelope is the wrapper the platform puts around every JSON response.
// It is decoded immediately after the HTTP call so that no other
// component ever branches on response shape.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// User is the authenticated identity as returned by the platform.
type User struct {
	ID              string `json:"_id"`
	Email           string `json:"email"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Role            string `json:"role"`
	Phone           string `json:"phone,omitempty"`
	ProfileImage    string `json:"profileImage,omitempty"`
	IsEmailVerified bool   `json:"isEmailVerified"`
	IsActive        bool   `json:"isActive"`
}

// User roles.
const (
	RoleApplicant   = "applicant"
	RoleCaseManager = "case_manager"
	RoleAdmin       = "admin"
)

// TokenPair is an access/refresh credential pair issued by login,
// registration, or refresh. The access credential authorizes requests;
// the refresh credential renews the access credential when it expires.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// authData is the payload of login/register responses.
type authData struct {
	User User `json:"user"`
	TokenPair
}

// RegisterRequest holds the fields for account creation.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty"`
}

// Question is a single eligibility assessment question. Questions are
// immutable once fetched for a given country pair; a fresh set is
// retrieved per pair.
type Question struct {
	ID         string  `json:"_id"`
	Text       string  `json:"question"`
	Category   string  `json:"category"`
	Weight     float64 `json:"weight"`
	RiskFactor string  `json:"riskFactor"`
	HelpText   string  `json:"helpText,omitempty"`
	Order      int     `json:"order"`
}

// Question categories, as enumerated by the platform.
const (
	CategoryPersonal   = "personal"
	CategoryEmployment = "employment"
	CategoryFinancial  = "financial"
	CategoryTravel     = "travel"
	CategoryLegal      = "legal"
	CategoryHealth     = "health"
	CategoryOther      = "other"
)

// Response is one answer to an assessment question. The question text
// and weight are snapshotted so the submission is self-contained even
// if the question set changes server-side later.
type Response struct {
	QuestionID string  `json:"questionId"`
	Question   string  `json:"question"`
	Answer     bool    `json:"answer"`
	Weight     float64 `json:"weight"`
}

// Submission is one atomic assessment submission: a client-generated
// session ID, the country pair, and the full response list.
type Submission struct {
	SessionID   string     `json:"sessionId"`
	FromCountry string     `json:"fromCountry"`
	ToCountry   string     `json:"toCountry"`
	Responses   []Response `json:"responses"`
}

// Result is the scored outcome of an assessment, persisted server-side
// and keyed by session ID. Read-only from the client's perspective.
type Result struct {
	SessionID         string    `json:"sessionId"`
	Score             float64   `json:"score"`
	RiskLevel         string    `json:"riskLevel"`
	EligibilityStatus string    `json:"eligibilityStatus"`
	Recommendations   []string  `json:"recommendations"`
	NextSteps         []string  `json:"nextSteps"`
	FromCountry       string    `json:"fromCountry"`
	ToCountry         string    `json:"toCountry"`
	CompletedAt       time.Time `json:"completedAt"`
}

// Risk levels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Eligibility statuses.
const (
	StatusEligible            = "eligible"
	StatusPotentiallyEligible = "potentially_eligible"
	StatusNeedsReview         = "needs_review"
	StatusNotEligible         = "not_eligible"
)

// Document is an uploaded supporting document and its review status.
type Document struct {
	ID              string    `json:"_id"`
	DocumentType    string    `json:"documentType"`
	FileName        string    `json:"fileName"`
	FileSize        int64     `json:"fileSize"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejectionReason,omitempty"`
	UploadedAt      time.Time `json:"uploadedAt"`
}

// Document review statuses.
const (
	DocumentPending  = "pending"
	DocumentApproved = "approved"
	DocumentRejected = "rejected"
)

// FamilyMember is a dependent attached to the applicant's profile.
type FamilyMember struct {
	ID           string `json:"_id,omitempty"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Relationship string `json:"relationship"`
	DateOfBirth  string `json:"dateOfBirth,omitempty"`
	Nationality  string `json:"nationality,omitempty"`
}

// Application is a visa application and its processing status.
type Application struct {
	ID            string          `json:"_id"`
	VisaType      string          `json:"visaType"`
	ToCountry     string          `json:"toCountry"`
	Status        string          `json:"status"`
	SubmittedAt   time.Time       `json:"submittedAt,omitempty"`
	StatusHistory []StatusChange  `json:"statusHistory,omitempty"`
	Profile       json.RawMessage `json:"profile,omitempty"`
}

// StatusChange is one entry in an application's status history.
type StatusChange struct {
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
	Note      string    `json:"note,omitempty"`
}

// Application statuses.
const (
	ApplicationDraft       = "draft"
	ApplicationSubmitted   = "submitted"
	ApplicationUnderReview = "under_review"
	ApplicationApproved    = "approved"
	ApplicationRejected    = "rejected"
)

// Profile is the applicant's profile. Sections are kept as raw JSON:
// the platform defines their shapes and the client edits them
// section-by-section without interpreting every field.
type Profile struct {
	ID       string                     `json:"_id"`
	Sections map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON splits the profile document into its ID and the named
// sections (personal, contact, passport, education, employment,
// financial, ...), preserving each section's raw JSON.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Sections = make(map[string]json.RawMessage, len(raw))
	for key, value := range raw {
		if key == "_id" {
			var id string
			if err := json.Unmarshal(value, &id); err == nil {
				p.ID = id
			}
			continue
		}
		p.Sections[key] = value
	}
	return nil
}

// NotificationSettings controls which events generate notifications
// for the account.
type NotificationSettings struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	Push  bool `json:"push"`
}

// Preferences holds account-level display preferences.
type Preferences struct {
	Language string `json:"language,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/visamark/visamark/api"
)

// Theme defines the color palette for visamark's terminal UI. All
// colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row in pickers.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Risk levels.
	RiskLow    lipgloss.Color
	RiskMedium lipgloss.Color
	RiskHigh   lipgloss.Color

	// Eligibility statuses.
	StatusEligible            lipgloss.Color
	StatusPotentiallyEligible lipgloss.Color
	StatusNotEligible         lipgloss.Color

	// Yes/no answer accents.
	AnswerYes lipgloss.Color
	AnswerNo  lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
}

// RiskColor returns the color for a risk level, FaintText for unknown
// values.
func (theme Theme) RiskColor(riskLevel string) lipgloss.Color {
	switch riskLevel {
	case api.RiskLow:
		return theme.RiskLow
	case api.RiskMedium:
		return theme.RiskMedium
	case api.RiskHigh:
		return theme.RiskHigh
	}
	return theme.FaintText
}

// StatusColor returns the color for an eligibility status, FaintText
// for unknown values.
func (theme Theme) StatusColor(status string) lipgloss.Color {
	switch status {
	case api.StatusEligible:
		return theme.StatusEligible
	case api.StatusPotentiallyEligible:
		return theme.StatusPotentiallyEligible
	case api.StatusNotEligible:
		return theme.StatusNotEligible
	}
	return theme.FaintText
}

// DefaultTheme is the built-in dark-terminal color scheme. Designed
// for 256-color terminals with a dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	RiskLow:    lipgloss.Color("114"), // green
	RiskMedium: lipgloss.Color("220"), // amber
	RiskHigh:   lipgloss.Color("196"), // red

	StatusEligible:            lipgloss.Color("114"),
	StatusPotentiallyEligible: lipgloss.Color("220"),
	StatusNotEligible:         lipgloss.Color("196"),

	AnswerYes: lipgloss.Color("114"),
	AnswerNo:  lipgloss.Color("245"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
}

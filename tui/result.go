// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/visamark/visamark/api"
)

// RenderResult formats a scored assessment result for the terminal.
// Static output (no event loop) so commands can print it after the
// wizard exits or from "visamark results".
func RenderResult(result *api.Result) string {
	return renderResult(result, DefaultTheme)
}

func renderResult(result *api.Result, theme Theme) string {
	headerStyle := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(theme.FaintText)
	textStyle := lipgloss.NewStyle().Foreground(theme.NormalText)

	var builder strings.Builder
	builder.WriteString(headerStyle.Render("Assessment Result"))
	builder.WriteString("\n")
	builder.WriteString(labelStyle.Render(fmt.Sprintf("%s → %s · session %s",
		result.FromCountry, result.ToCountry, result.SessionID)))
	builder.WriteString("\n\n")

	statusStyle := lipgloss.NewStyle().Foreground(theme.StatusColor(result.EligibilityStatus)).Bold(true)
	riskStyle := lipgloss.NewStyle().Foreground(theme.RiskColor(result.RiskLevel))

	builder.WriteString(labelStyle.Render("Eligibility: "))
	builder.WriteString(statusStyle.Render(statusLabel(result.EligibilityStatus)))
	builder.WriteString("\n")
	builder.WriteString(labelStyle.Render("Score:       "))
	builder.WriteString(textStyle.Render(fmt.Sprintf("%.0f / 100", result.Score)))
	builder.WriteString("\n")
	builder.WriteString(labelStyle.Render("Risk level:  "))
	builder.WriteString(riskStyle.Render(result.RiskLevel))
	builder.WriteString("\n")
	if !result.CompletedAt.IsZero() {
		builder.WriteString(labelStyle.Render("Completed:   "))
		builder.WriteString(textStyle.Render(result.CompletedAt.Format("2 Jan 2006 15:04")))
		builder.WriteString("\n")
	}

	if len(result.Recommendations) > 0 {
		builder.WriteString("\n")
		builder.WriteString(headerStyle.Render("Recommendations"))
		builder.WriteString("\n")
		for _, recommendation := range result.Recommendations {
			builder.WriteString(textStyle.Render("  • " + recommendation))
			builder.WriteString("\n")
		}
	}
	if len(result.NextSteps) > 0 {
		builder.WriteString("\n")
		builder.WriteString(headerStyle.Render("Next steps"))
		builder.WriteString("\n")
		for index, step := range result.NextSteps {
			builder.WriteString(textStyle.Render(fmt.Sprintf("  %d. %s", index+1, step)))
			builder.WriteString("\n")
		}
	}
	return builder.String()
}

// statusLabel turns the wire-format eligibility status into a human
// label.
func statusLabel(status string) string {
	switch status {
	case api.StatusEligible:
		return "Eligible"
	case api.StatusPotentiallyEligible:
		return "Potentially eligible"
	case api.StatusNotEligible:
		return "Not eligible"
	case api.StatusNeedsReview:
		return "Needs review"
	}
	return status
}

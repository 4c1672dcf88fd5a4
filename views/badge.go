// ABOUTME: Badge color tables for statuses, stages and priorities
// ABOUTME: Unknown values fall back to a neutral gray badge instead of failing
package views

import "github.com/charmbracelet/lipgloss"

// BadgeFunc picks a style for a vocabulary value.
type BadgeFunc func(value string) lipgloss.Style

var badgeBase = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#ffffff"))

func badge(hex string) lipgloss.Style {
	return badgeBase.Background(lipgloss.Color(hex))
}

const defaultBadgeColor = "#9ca3af"

var (
	leadBadges = map[string]string{
		"New":         "#3b82f6",
		"Contacted":   "#ec4899",
		"Qualified":   "#eab308",
		"Proposal":    "#f97316",
		"Negotiation": "#0ea5e9",
		"Won":         "#84cc16",
	}

	taskStatusBadges = map[string]string{
		"Completed":   "#22c55e",
		"In Progress": "#3b82f6",
		"To Do":       "#eab308",
	}

	priorityBadges = map[string]string{
		"High":   "#ef4444",
		"Medium": "#f59e0b",
		"Low":    "#3b82f6",
	}

	stageBadges = map[string]string{
		"Lead In":       "#3498db",
		"Qualification": "#f1c40f",
		"Proposal":      "#e67e22",
		"Negotiation":   "#9b59b6",
		"Closed Won":    "#2ecc71",
	}
)

func fromTable(table map[string]string, fallback string) BadgeFunc {
	return func(value string) lipgloss.Style {
		if hex, ok := table[value]; ok {
			return badge(hex)
		}
		return badge(fallback)
	}
}

var (
	LeadBadge       = fromTable(leadBadges, defaultBadgeColor)
	TaskStatusBadge = fromTable(taskStatusBadges, defaultBadgeColor)
	PriorityBadge   = fromTable(priorityBadges, defaultBadgeColor)
	StageBadge      = fromTable(stageBadges, "#bdc3c7")
)

// DefaultBadge is used when a config has no badge function.
func DefaultBadge(string) lipgloss.Style {
	return badge(defaultBadgeColor)
}

// RenderBadge draws value with fn, or with DefaultBadge when fn is nil. Empty values render
// as an empty string.
func RenderBadge(fn BadgeFunc, value string) string {
	return RenderBadgeLabel(fn, value, value)
}

// RenderBadgeLabel picks the style from the vocabulary value and draws label with it. Callers
// pass a fitted or captioned label so padding never reaches the lookup.
func RenderBadgeLabel(fn BadgeFunc, value, label string) string {
	if value == "" || label == "" {
		return ""
	}
	if fn == nil {
		fn = DefaultBadge
	}
	return fn(value).Render(label)
}

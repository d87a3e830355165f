// Package cli renders classification results for the terminal using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/sortit/internal/model"
)

// binTheme pairs each category with the color and icon of its bin.
type binTheme struct {
	color lipgloss.Color
	icon  string
}

var bins = map[model.Category]binTheme{
	model.Recyclable: {color: "#3498DB", icon: "♻️"},
	model.Hazardous:  {color: "#E74C3C", icon: "☣️"},
	model.Food:       {color: "#8D6E63", icon: "🍎"},
	model.Reuse:      {color: "#9B59B6", icon: "🔁"},
	model.Deposit:    {color: "#F39C12", icon: "🥫"},
	model.Other:      {color: "#95A5A6", icon: "🗑️"},
}

// Accent is the theme color used for titles.
var Accent = lipgloss.Color("#2ECC71")

var (
	muted  = lipgloss.AdaptiveColor{Light: "#7F8C8D", Dark: "#6C7A89"}
	border = lipgloss.AdaptiveColor{Light: "#BDC3C7", Dark: "#34495E"}

	// TitleStyle renders section titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	// BoldStyle renders emphasized values such as totals.
	BoldStyle = lipgloss.NewStyle().Bold(true)
	// SubtleStyle renders field names and secondary details.
	SubtleStyle = lipgloss.NewStyle().Foreground(muted)

	// BoxStyle frames a single classification result.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1)

	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(Accent).PaddingRight(2)
	TableCellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

// ChartIcon prefixes count reports.
const ChartIcon = "📊"

type messageKind struct {
	icon  string
	style lipgloss.Style
}

var (
	successMsg = messageKind{"✓", lipgloss.NewStyle().Foreground(lipgloss.Color("#27AE60"))}
	errorMsg   = messageKind{"✗", lipgloss.NewStyle().Foreground(lipgloss.Color("#C0392B"))}
	warningMsg = messageKind{"⚠️", lipgloss.NewStyle().Foreground(lipgloss.Color("#F1C40F"))}
	infoMsg    = messageKind{"ℹ️", lipgloss.NewStyle().Foreground(muted)}
)

func (k messageKind) render(message string) string {
	return k.style.Render(k.icon + " " + message)
}

func binFor(c model.Category) binTheme {
	if b, ok := bins[c]; ok {
		return b
	}
	return bins[model.Other]
}

// CategoryStyle returns the bin color style for a category.
func CategoryStyle(c model.Category) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(binFor(c).color)
}

// CategoryIcon returns the icon shown next to a category.
func CategoryIcon(c model.Category) string {
	return binFor(c).icon
}

// FormatCategory renders a category name with its icon and color.
func FormatCategory(c model.Category) string {
	return CategoryStyle(c).Render(CategoryIcon(c) + " " + string(c))
}

// FormatSuccess formats a success message.
func FormatSuccess(message string) string { return successMsg.render(message) }

// FormatError formats an error message.
func FormatError(message string) string { return errorMsg.render(message) }

// FormatWarning formats a warning message.
func FormatWarning(message string) string { return warningMsg.render(message) }

// FormatInfo formats an informational message.
func FormatInfo(message string) string { return infoMsg.render(message) }

// FormatTitle formats a section title followed by a blank line.
func FormatTitle(title string) string {
	return TitleStyle.Render(title) + "\n"
}

// RenderBox frames content under a title.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render(title), "", content))
}

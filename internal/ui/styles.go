package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#3B82F6") // Blue
	Success   = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Secondary)

	KeyStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB"))
)

// Quiet suppresses progress output. Errors and warnings are still printed.
var Quiet bool

// Banner renders the resopt banner
func Banner() string {
	banner := `
 █▀▀█ █▀▀ █▀▀ █▀▀█ █▀▀█ ▀▀█▀▀
 █▄▄▀ █▀▀ ▀▀█ █  █ █▄▄█   █
 ▀ ▀▀ ▀▀▀ ▀▀▀ ▀▀▀▀ ▀      ▀`
	return TitleStyle.Render(banner)
}

// Header renders a section header
func Header(text string) string {
	return TitleStyle.Render("▸ " + text)
}

// PrintHeaderLine prints a section header
func PrintHeaderLine(text string) {
	if Quiet {
		return
	}
	fmt.Println(Header(text))
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	if Quiet {
		return
	}
	fmt.Println(SuccessStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	if Quiet {
		return
	}
	fmt.Println(InfoStyle.Render("• " + fmt.Sprintf(format, args...)))
}

// PrintError prints an error message to stderr
func PrintError(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message to stderr
func PrintWarning(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, WarningStyle.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// PrintKeyValue prints a key-value pair
func PrintKeyValue(key, value string) {
	if Quiet {
		return
	}
	fmt.Printf("  %s %s\n", KeyStyle.Render(key+":"), ValueStyle.Render(value))
}

// Divider renders a divider line
func Divider() string {
	return MutedStyle.Render("─────────────────────────────────────────")
}

// VersionLine renders the version
func VersionLine(version string) string {
	return ValueStyle.Render(" Version: " + version)
}

// PrintHeader prints the standard header
func PrintHeader(version string) {
	if Quiet {
		return
	}
	fmt.Println()
	fmt.Println(Divider())
	fmt.Println(Banner())
	fmt.Println(VersionLine(version))
	fmt.Println()
	fmt.Println(Divider())
	fmt.Println()
}

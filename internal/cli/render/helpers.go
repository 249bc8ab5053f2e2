package render

import (
	"strings"

	"github.com/fatih/color"
)

var (
	labelStyle   = color.New(color.Faint)
	addressStyle = color.New(color.FgCyan)
	hashStyle    = color.New(color.FgHiBlack)
	nameStyle    = color.New(color.FgYellow, color.Bold)
	headerStyle  = color.New(color.FgCyan, color.Bold)
)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	msg := message
	if len(msg) > 0 {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}

	return color.New(color.FgRed).Sprintf("❌ %s", msg)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

// field formats an indented "label: value" line
func field(label string, value string) string {
	return "  " + labelStyle.Sprintf("%-14s", label+":") + " " + value + "\n"
}

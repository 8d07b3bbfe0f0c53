package commands

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// every command prints through these so output stays uniform
// ═══════════════════════════════════════════════════════════

const placeholder = "—"

// PrintHeader prints a titled banner
func PrintHeader(title, subtitle string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	if subtitle != "" {
		fmt.Printf("  %s\n", subtitle)
	}
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintJSON writes v as indented JSON to stdout
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatMoney renders a nullable amount with a K/M/B/T suffix
func FormatMoney(v *float64) string {
	if v == nil {
		return placeholder
	}
	abs := math.Abs(*v)
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2fT", *v/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", *v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", *v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fK", *v/1e3)
	default:
		return fmt.Sprintf("%.2f", *v)
	}
}

// FormatRatio renders a nullable multiple
func FormatRatio(v *float64) string {
	if v == nil {
		return placeholder
	}
	return fmt.Sprintf("%.2f", *v)
}

// FormatPercent renders a nullable fraction as a percentage
func FormatPercent(v *float64) string {
	if v == nil {
		return placeholder
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

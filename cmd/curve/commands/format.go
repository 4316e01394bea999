package commands

import (
	"fmt"
	"sort"
	"strings"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// JobMetadata holds job execution metadata
type JobMetadata struct {
	JobType   string
	Tag       string
	Timestamp string
	Details   map[string]string // Optional, printed in key order
}

// PrintJobHeader prints a formatted job header
func PrintJobHeader(meta JobMetadata) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", meta.JobType)
	PrintSeparator()

	keys := make([]string, 0, len(meta.Details))
	for k := range meta.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-10s: %s\n", k, meta.Details[k])
	}

	if len(keys) > 0 {
		PrintSeparator()
	}
	fmt.Printf("[%s] Triggered at %s\n", meta.Tag, meta.Timestamp)
}

// PrintJobCompletion prints job completion message
func PrintJobCompletion(label string, duration float64) {
	fmt.Println()
	fmt.Printf("✅ %s completed in %.2fs\n", label, duration)
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
	fmt.Printf("⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

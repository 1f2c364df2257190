package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatFileSize converts a byte length into a human-readable lower-case unit string.
func FormatFileSize(bytes int64) string {
	if bytes < 0 {
		return "0b"
	}
	units := []string{"b", "kb", "mb", "gb", "tb", "pb"}
	value := float64(bytes)
	unitIndex := 0
	for value >= 1024 && unitIndex < len(units)-1 {
		value /= 1024
		unitIndex++
	}
	if unitIndex == 0 {
		return fmt.Sprintf("%db", bytes)
	}
	if value < 10 {
		formatted := fmt.Sprintf("%.1f", value)
		formatted = strings.TrimSuffix(formatted, ".0")
		return formatted + units[unitIndex]
	}
	return fmt.Sprintf("%.0f%s", value, units[unitIndex])
}

// ParseSize converts a size string such as "100K", "2M", or "1G" into bytes.
// A bare number is taken as bytes; an empty string yields zero.
func ParseSize(sizeText string) (int64, error) {
	trimmed := strings.TrimSpace(strings.ToUpper(sizeText))
	if trimmed == "" {
		return 0, nil
	}
	multiplier := int64(1)
	switch trimmed[len(trimmed)-1] {
	case 'K':
		multiplier = 1024
		trimmed = trimmed[:len(trimmed)-1]
	case 'M':
		multiplier = 1024 * 1024
		trimmed = trimmed[:len(trimmed)-1]
	case 'G':
		multiplier = 1024 * 1024 * 1024
		trimmed = trimmed[:len(trimmed)-1]
	}
	value, parseError := strconv.ParseFloat(trimmed, 64)
	if parseError != nil || value < 0 {
		return 0, fmt.Errorf("invalid size %q", sizeText)
	}
	return int64(value * float64(multiplier)), nil
}

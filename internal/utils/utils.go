// Package utils contains general helper functions used across the pack tool.
package utils

import "strings"

// Constants shared across the project.
const (
	// GitIgnoreFileName is the name of the Git ignore file read at the project root.
	GitIgnoreFileName = ".gitignore"
	// ConfigFileName is the name of the application configuration file.
	ConfigFileName = ".ctxpack.yaml"
	// GlobalConfigDirectoryName is the directory under the home directory holding global configuration.
	GlobalConfigDirectoryName = ".ctxpack"
	// HiddenPathPrefix marks hidden path segments.
	HiddenPathPrefix = "."
	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage reports a fatal application error.
	ApplicationExecutionFailedMessage = "application failed"
)

// DeduplicateStrings removes duplicate values from a slice while preserving order.
// The first occurrence of each unique value is kept.
func DeduplicateStrings(values []string) []string {
	encounteredValues := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if _, exists := encounteredValues[value]; !exists {
			encounteredValues[value] = struct{}{}
			result = append(result, value)
		}
	}
	return result
}

// NormalizeExtension lower-cases an extension and guarantees a leading dot.
// Empty input stays empty.
func NormalizeExtension(extension string) string {
	trimmed := strings.TrimSpace(strings.ToLower(extension))
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, ".") {
		return "." + trimmed
	}
	return trimmed
}

// IsHiddenPath reports whether any segment of a slash-separated relative path
// starts with the hidden marker.
func IsHiddenPath(relativePath string) bool {
	for _, segment := range strings.Split(relativePath, "/") {
		if segment == "." || segment == ".." {
			continue
		}
		if strings.HasPrefix(segment, HiddenPathPrefix) {
			return true
		}
	}
	return false
}

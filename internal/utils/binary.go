package utils

import (
	"bytes"
	"unicode/utf8"
)

// IsBinary reports whether the provided byte slice appears to contain binary data.
// Content is binary when it is not valid UTF-8 or contains a NUL byte.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return true
	}
	return bytes.IndexByte(data, 0) >= 0
}

// CountLines returns the number of lines in textual content.
// Empty content has zero lines; content without a trailing newline still counts its last line.
func CountLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	lineCount := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		lineCount++
	}
	return lineCount
}

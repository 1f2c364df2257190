// Package ignore implements gitignore-style pattern matching over root-relative paths.
//
// Patterns follow the conventional ignore-file rules: "*" matches within one path
// segment, "**" matches across segments, "?" matches a single character, and bracket
// classes match character sets. A backslash escapes the following character, so "\*"
// matches a literal star. A pattern without a separator matches the basename at any
// depth; a pattern containing a separator is anchored to the root. A trailing "/"
// restricts the pattern to directories (and everything beneath them). Matching is
// always case-sensitive.
package ignore

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrEmptyPattern indicates a pattern that is empty after normalization.
var ErrEmptyPattern = errors.New("empty pattern")

// Pattern is one compiled ignore rule.
type Pattern struct {
	// Raw preserves the pattern text as it appeared in the ignore file.
	Raw string
	// Negated marks re-include rules introduced with "!".
	Negated bool
	// Anchored marks rules matched against the full root-relative path.
	Anchored bool
	// DirOnly marks rules that match directories (and their subtrees) only.
	DirOnly bool

	exactExpression   *regexp.Regexp
	subtreeExpression *regexp.Regexp
}

// CompilePattern compiles one pattern. The text must already be stripped of the
// negation marker and escape sequences; negated records whether the rule re-includes.
// A malformed pattern yields an error so the caller can warn and drop it.
func CompilePattern(text string, negated bool) (Pattern, error) {
	normalized := strings.TrimSpace(text)
	compiled := Pattern{
		Raw:     text,
		Negated: negated,
		DirOnly: strings.HasSuffix(normalized, "/"),
	}

	normalized = strings.Trim(normalized, "/")
	if normalized == "" {
		return Pattern{}, fmt.Errorf("%w: %q", ErrEmptyPattern, text)
	}
	// A separator anywhere in the pattern anchors it to the root, matching
	// conventional ignore-file behavior.
	compiled.Anchored = strings.Contains(normalized, "/") || strings.HasPrefix(strings.TrimSpace(text), "/")

	expressionPrefix := `(?:^|.*/)`
	expressionBody := globToExpressionComponent(normalized)
	if compiled.Anchored {
		expressionPrefix = `^`
		expressionBody = globToExpressionPath(normalized)
	}

	exactExpression, exactCompileError := regexp.Compile(expressionPrefix + expressionBody + `$`)
	if exactCompileError != nil {
		return Pattern{}, fmt.Errorf("compile pattern %q: %w", text, exactCompileError)
	}
	compiled.exactExpression = exactExpression

	if compiled.DirOnly {
		subtreeExpression, subtreeCompileError := regexp.Compile(expressionPrefix + expressionBody + `/.*$`)
		if subtreeCompileError != nil {
			return Pattern{}, fmt.Errorf("compile pattern %q: %w", text, subtreeCompileError)
		}
		compiled.subtreeExpression = subtreeExpression
	}

	return compiled, nil
}

// Matches reports whether the pattern matches the slash-separated root-relative path.
func (pattern Pattern) Matches(relativePath string, isDir bool) bool {
	if pattern.exactExpression == nil {
		return false
	}
	candidate := normalizeRelativePath(relativePath)
	if candidate == "" {
		return false
	}
	if pattern.DirOnly {
		if pattern.subtreeExpression.MatchString(candidate) {
			return true
		}
		return isDir && pattern.exactExpression.MatchString(candidate)
	}
	return pattern.exactExpression.MatchString(candidate)
}

// normalizeRelativePath converts a candidate path to clean slash-separated relative form.
func normalizeRelativePath(relativePath string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(relativePath), `\`, "/")
	normalized = strings.TrimPrefix(normalized, "./")
	normalized = strings.TrimPrefix(normalized, "/")
	normalized = strings.TrimSuffix(normalized, "/")
	if normalized == "." {
		return ""
	}
	return normalized
}

// globToExpressionComponent converts a basename glob into a regular-expression body.
// "**" degenerates to "*" because a single component never spans separators.
func globToExpressionComponent(pattern string) string {
	var builder strings.Builder
	for index := 0; index < len(pattern); index++ {
		if next, handled := appendCharacterClass(pattern, index, &builder); handled {
			index = next
			continue
		}
		switch pattern[index] {
		case '\\':
			if index+1 < len(pattern) {
				builder.WriteString(escapeExpressionByte(pattern[index+1]))
				index++
				continue
			}
			builder.WriteString(`\\`)
		case '*':
			if index+1 < len(pattern) && pattern[index+1] == '*' {
				index++
			}
			builder.WriteString(`[^/]*`)
		case '?':
			builder.WriteString(`[^/]`)
		default:
			builder.WriteString(escapeExpressionByte(pattern[index]))
		}
	}
	return builder.String()
}

// globToExpressionPath converts a path glob into a regular-expression body.
func globToExpressionPath(pattern string) string {
	var builder strings.Builder
	for index := 0; index < len(pattern); index++ {
		// "**/" matches zero or more leading directories.
		if pattern[index] == '*' && index+2 < len(pattern) && pattern[index+1] == '*' && pattern[index+2] == '/' {
			builder.WriteString(`(?:.*/)?`)
			index += 2
			continue
		}
		if next, handled := appendCharacterClass(pattern, index, &builder); handled {
			index = next
			continue
		}
		switch pattern[index] {
		case '\\':
			if index+1 < len(pattern) {
				builder.WriteString(escapeExpressionByte(pattern[index+1]))
				index++
				continue
			}
			builder.WriteString(`\\`)
		case '*':
			if index+1 < len(pattern) && pattern[index+1] == '*' {
				builder.WriteString(`.*`)
				index++
				continue
			}
			builder.WriteString(`[^/]*`)
		case '?':
			builder.WriteString(`[^/]`)
		default:
			builder.WriteString(escapeExpressionByte(pattern[index]))
		}
	}
	return builder.String()
}

// appendCharacterClass translates a glob character class ("[...]", "[!...]") into a
// regular-expression class. It reports the index of the closing bracket when a class
// was consumed.
func appendCharacterClass(pattern string, start int, builder *strings.Builder) (int, bool) {
	if start >= len(pattern) || pattern[start] != '[' {
		return start, false
	}
	end := findCharacterClassEnd(pattern, start)
	if end < 0 {
		return start, false
	}

	builder.WriteByte('[')
	index := start + 1
	if index < end && pattern[index] == '!' {
		builder.WriteByte('^')
		index++
	} else if index < end && pattern[index] == '^' {
		builder.WriteString(`\^`)
		index++
	}
	if index < end && pattern[index] == ']' {
		builder.WriteByte(']')
		index++
	}
	for ; index < end; index++ {
		// A backslash escapes the next class member; only regexp-significant class
		// bytes need the backslash carried over.
		if pattern[index] == '\\' && index+1 < end {
			index++
			switch pattern[index] {
			case ']', '\\', '^', '-', '[':
				builder.WriteByte('\\')
				builder.WriteByte(pattern[index])
			default:
				builder.WriteByte(pattern[index])
			}
			continue
		}
		builder.WriteByte(pattern[index])
	}
	builder.WriteByte(']')
	return end, true
}

// findCharacterClassEnd locates the closing bracket of a glob character class.
func findCharacterClassEnd(pattern string, start int) int {
	index := start + 1
	if index < len(pattern) && (pattern[index] == '!' || pattern[index] == '^') {
		index++
	}
	if index < len(pattern) && pattern[index] == ']' {
		index++
	}
	for ; index < len(pattern); index++ {
		if pattern[index] == '\\' && index+1 < len(pattern) {
			index++
			continue
		}
		if pattern[index] == ']' {
			return index
		}
	}
	return -1
}

// escapeExpressionByte escapes one byte for inclusion in a regular expression.
func escapeExpressionByte(value byte) string {
	switch value {
	case '.', '+', '(', ')', '|', '{', '}', '[', ']', '^', '$', '\\', '*', '?':
		return `\` + string(value)
	default:
		return string(value)
	}
}

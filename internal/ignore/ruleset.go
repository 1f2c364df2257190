package ignore

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Verdict is the outcome of evaluating a path against an ordered rule set.
type Verdict struct {
	// Matched reports whether any rule matched the path.
	Matched bool
	// Negated reports whether the deciding (last matching) rule was a re-include.
	Negated bool
	// Index is the deciding rule's position in load order, -1 when nothing matched.
	Index int
}

// RuleSet is an ordered sequence of compiled ignore patterns.
// Evaluation scans every rule in order; the last matching rule wins.
type RuleSet struct {
	patterns []Pattern
}

// ParseRuleSet reads ignore-file syntax from reader. Blank lines and "#" comments are
// skipped; "\#" and "\!" escape the comment and negation markers; unescaped trailing
// spaces are stripped. A malformed pattern is reported through warn and dropped so one
// bad line never invalidates the rest of the file.
func ParseRuleSet(reader io.Reader, warn func(message string)) (*RuleSet, error) {
	scanner := bufio.NewScanner(reader)
	ruleSet := &RuleSet{}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		line = trimUnescapedTrailingSpaces(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, `\#`) {
			line = line[1:]
		}

		negated := false
		if strings.HasPrefix(line, "!") {
			negated = true
			line = line[1:]
		} else if strings.HasPrefix(line, `\!`) {
			line = line[1:]
		}
		if line == "" {
			continue
		}

		compiledPattern, compileError := CompilePattern(line, negated)
		if compileError != nil {
			if warn != nil {
				warn(fmt.Sprintf("skipping malformed ignore pattern %q: %v", line, compileError))
			}
			continue
		}
		ruleSet.patterns = append(ruleSet.patterns, compiledPattern)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf("scan ignore rules: %w", scanError)
	}
	return ruleSet, nil
}

// LoadRuleSet reads and parses the ignore file at path.
// An absent file yields a nil rule set without an error.
func LoadRuleSet(path string, warn func(message string)) (*RuleSet, error) {
	fileHandle, openError := os.Open(path)
	if openError != nil {
		if os.IsNotExist(openError) {
			return nil, nil
		}
		return nil, fmt.Errorf("open ignore file %s: %w", path, openError)
	}
	defer func() { _ = fileHandle.Close() }()

	ruleSet, parseError := ParseRuleSet(fileHandle, warn)
	if parseError != nil {
		return nil, fmt.Errorf("parse ignore file %s: %w", path, parseError)
	}
	return ruleSet, nil
}

// Match evaluates the path against every rule in load order and reports the verdict
// of the last matching rule. A nil rule set matches nothing.
func (ruleSet *RuleSet) Match(relativePath string, isDir bool) Verdict {
	verdict := Verdict{Index: -1}
	if ruleSet == nil {
		return verdict
	}
	for index, pattern := range ruleSet.patterns {
		if pattern.Matches(relativePath, isDir) {
			verdict.Matched = true
			verdict.Negated = pattern.Negated
			verdict.Index = index
		}
	}
	return verdict
}

// Len reports the number of loaded rules.
func (ruleSet *RuleSet) Len() int {
	if ruleSet == nil {
		return 0
	}
	return len(ruleSet.patterns)
}

// trimUnescapedTrailingSpaces removes trailing spaces unless escaped by a backslash.
func trimUnescapedTrailingSpaces(line string) string {
	for len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
		if len(line) >= 2 && line[len(line)-2] == '\\' {
			return line[:len(line)-2] + line[len(line)-1:]
		}
		line = line[:len(line)-1]
	}
	return line
}

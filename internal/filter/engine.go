// Package filter composes every exclusion source into one per-path decision.
package filter

import (
	"fmt"
	"path"
	"strings"

	"github.com/ctxpack/ctxpack/internal/ignore"
	"github.com/ctxpack/ctxpack/internal/utils"
)

// Exclusion reasons reported by Decide.
const (
	ReasonHidden     = "hidden"
	ReasonIgnoreRule = "ignore-rule"
	ReasonPreset     = "preset"
	ReasonManual     = "manual"
)

// Config is the immutable filtering configuration built once before the walk.
type Config struct {
	IncludeHidden bool
	UseIgnoreFile bool
	// PresetName selects a preset table; empty disables preset rules.
	PresetName          string
	ExcludedDirectories map[string]struct{}
	ExcludedFiles       map[string]struct{}
	ExcludedExtensions  map[string]struct{}
}

// Decision is the verdict for one path.
type Decision struct {
	Excluded bool
	// Reason names the exclusion source; empty for included paths.
	Reason string
}

// Engine answers is-excluded questions for root-relative paths. It is stateless across
// calls beyond its immutable configuration, so decisions for different paths are
// independent.
type Engine struct {
	config    Config
	preset    Preset
	hasPreset bool
	ruleSet   *ignore.RuleSet
}

// NewEngine validates the configuration and binds the loaded ignore rule set.
// The rule set may be nil when no ignore file exists or its use is disabled.
func NewEngine(config Config, ruleSet *ignore.RuleSet) (*Engine, error) {
	engine := &Engine{config: config, ruleSet: ruleSet}
	if config.PresetName != "" {
		preset, exists := LookupPreset(config.PresetName)
		if !exists {
			return nil, fmt.Errorf("unknown preset %q (available: %s)", config.PresetName, strings.Join(PresetNames(), ", "))
		}
		engine.preset = preset
		engine.hasPreset = true
	}
	return engine, nil
}

// PresetMaxFileSizeBytes reports the size cap suggested by the active preset, zero when
// no preset is active.
func (engine *Engine) PresetMaxFileSizeBytes() int64 {
	if !engine.hasPreset {
		return 0
	}
	return engine.preset.MaxFileSizeBytes
}

// Decide reports whether the root-relative path is excluded. Source precedence is
// fixed: a non-negated ignore rule excludes outright; a negated ignore rule is the
// only mechanism able to override the hidden-path rule; preset and manual exclusions
// can never be overridden. Directories excluded here must be pruned by the caller so
// nothing beneath them is evaluated.
func (engine *Engine) Decide(relativePath string, isDir bool) Decision {
	verdict := ignore.Verdict{Index: -1}
	if engine.config.UseIgnoreFile {
		verdict = engine.ruleSet.Match(relativePath, isDir)
	}
	reinstated := verdict.Matched && verdict.Negated

	if !engine.config.IncludeHidden && utils.IsHiddenPath(relativePath) && !reinstated {
		return Decision{Excluded: true, Reason: ReasonHidden}
	}
	if verdict.Matched && !verdict.Negated {
		return Decision{Excluded: true, Reason: ReasonIgnoreRule}
	}

	entryName := path.Base(relativePath)
	extension := strings.ToLower(path.Ext(entryName))

	if engine.hasPreset {
		if excluded := excludedByTables(engine.preset.ExcludedDirectories, engine.preset.ExcludedFiles, engine.preset.ExcludedExtensions, entryName, extension, isDir); excluded {
			return Decision{Excluded: true, Reason: ReasonPreset}
		}
	}
	if excluded := excludedByTables(engine.config.ExcludedDirectories, engine.config.ExcludedFiles, engine.config.ExcludedExtensions, entryName, extension, isDir); excluded {
		return Decision{Excluded: true, Reason: ReasonManual}
	}

	return Decision{}
}

// excludedByTables applies name and extension tables to one entry. Directory tables
// apply to directories, file and extension tables to files.
func excludedByTables(directories, files, extensions map[string]struct{}, entryName, extension string, isDir bool) bool {
	if isDir {
		_, excluded := directories[entryName]
		return excluded
	}
	if _, excluded := files[entryName]; excluded {
		return true
	}
	if extension == "" {
		return false
	}
	_, excluded := extensions[extension]
	return excluded
}

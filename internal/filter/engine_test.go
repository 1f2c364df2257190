package filter_test

import (
	"strings"
	"testing"

	"github.com/ctxpack/ctxpack/internal/filter"
	"github.com/ctxpack/ctxpack/internal/ignore"
)

func mustRuleSet(t *testing.T, rules ...string) *ignore.RuleSet {
	t.Helper()
	ruleSet, parseError := ignore.ParseRuleSet(strings.NewReader(strings.Join(rules, "\n")), nil)
	if parseError != nil {
		t.Fatalf("parse rules: %v", parseError)
	}
	return ruleSet
}

func TestEngineHiddenRule(t *testing.T) {
	engine, engineError := filter.NewEngine(filter.Config{}, nil)
	if engineError != nil {
		t.Fatalf("new engine: %v", engineError)
	}

	decision := engine.Decide(".git", true)
	if !decision.Excluded || decision.Reason != filter.ReasonHidden {
		t.Fatalf("hidden directory must be excluded, got %+v", decision)
	}
	if decision := engine.Decide("src/main.py", false); decision.Excluded {
		t.Fatalf("plain file must be included, got %+v", decision)
	}
}

func TestEngineIncludeHiddenFlag(t *testing.T) {
	engine, engineError := filter.NewEngine(filter.Config{IncludeHidden: true}, nil)
	if engineError != nil {
		t.Fatalf("new engine: %v", engineError)
	}
	if decision := engine.Decide(".env", false); decision.Excluded {
		t.Fatalf("hidden file must be included when hidden paths are enabled, got %+v", decision)
	}
}

func TestEngineIgnoreRules(t *testing.T) {
	ruleSet := mustRuleSet(t, "*.log", "!keep.log")
	engine, engineError := filter.NewEngine(filter.Config{UseIgnoreFile: true}, ruleSet)
	if engineError != nil {
		t.Fatalf("new engine: %v", engineError)
	}

	if decision := engine.Decide("debug.log", false); !decision.Excluded || decision.Reason != filter.ReasonIgnoreRule {
		t.Fatalf("ignore rule must exclude, got %+v", decision)
	}
	if decision := engine.Decide("keep.log", false); decision.Excluded {
		t.Fatalf("negated rule must re-include, got %+v", decision)
	}
}

func TestEngineNegationOverridesHiddenRule(t *testing.T) {
	ruleSet := mustRuleSet(t, "!.env")
	engine, engineError := filter.NewEngine(filter.Config{UseIgnoreFile: true}, ruleSet)
	if engineError != nil {
		t.Fatalf("new engine: %v", engineError)
	}
	if decision := engine.Decide(".env", false); decision.Excluded {
		t.Fatalf("negation must override the hidden-path rule, got %+v", decision)
	}
}

func TestEngineNegationNeverOverridesPresetOrManual(t *testing.T) {
	ruleSet := mustRuleSet(t, "!a.csv", "!node_modules/")
	engine, engineError := filter.NewEngine(filter.Config{
		UseIgnoreFile:      true,
		PresetName:         "web",
		ExcludedExtensions: map[string]struct{}{".csv": {}},
	}, ruleSet)
	if engineError != nil {
		t.Fatalf("new engine: %v", engineError)
	}

	if decision := engine.Decide("a.csv", false); !decision.Excluded || decision.Reason != filter.ReasonManual {
		t.Fatalf("manual exclusion must beat ignore-file negation, got %+v", decision)
	}
	if decision := engine.Decide("node_modules", true); !decision.Excluded || decision.Reason != filter.ReasonPreset {
		t.Fatalf("preset exclusion must beat ignore-file negation, got %+v", decision)
	}
}

func TestEnginePresetTables(t *testing.T) {
	engine, engineError := filter.NewEngine(filter.Config{PresetName: "python"}, nil)
	if engineError != nil {
		t.Fatalf("new engine: %v", engineError)
	}

	testCases := []struct {
		name           string
		path           string
		isDir          bool
		expectExcluded bool
		expectedReason string
	}{
		{name: "preset directory", path: "src/__pycache__", isDir: true, expectExcluded: true, expectedReason: filter.ReasonPreset},
		{name: "preset file", path: "poetry.lock", expectExcluded: true, expectedReason: filter.ReasonPreset},
		{name: "preset extension", path: "module.pyc", expectExcluded: true, expectedReason: filter.ReasonPreset},
		{name: "directory name only applies to directories", path: "build", isDir: false, expectExcluded: false},
		{name: "regular source file", path: "src/main.py", expectExcluded: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			decision := engine.Decide(testCase.path, testCase.isDir)
			if decision.Excluded != testCase.expectExcluded {
				t.Fatalf("path %q: expected excluded=%v, got %+v", testCase.path, testCase.expectExcluded, decision)
			}
			if decision.Excluded && decision.Reason != testCase.expectedReason {
				t.Fatalf("path %q: expected reason %s, got %s", testCase.path, testCase.expectedReason, decision.Reason)
			}
		})
	}
}

func TestEngineManualExclusions(t *testing.T) {
	engine, engineError := filter.NewEngine(filter.Config{
		ExcludedDirectories: map[string]struct{}{"vendor": {}},
		ExcludedFiles:       map[string]struct{}{"secrets.txt": {}},
		ExcludedExtensions:  map[string]struct{}{".csv": {}},
	}, nil)
	if engineError != nil {
		t.Fatalf("new engine: %v", engineError)
	}

	if decision := engine.Decide("vendor", true); !decision.Excluded || decision.Reason != filter.ReasonManual {
		t.Fatalf("manual directory exclusion failed, got %+v", decision)
	}
	if decision := engine.Decide("data/secrets.txt", false); !decision.Excluded || decision.Reason != filter.ReasonManual {
		t.Fatalf("manual file exclusion failed, got %+v", decision)
	}
	if decision := engine.Decide("report.CSV", false); !decision.Excluded {
		t.Fatalf("extension comparison must be case-insensitive, got %+v", decision)
	}
}

func TestEngineUnknownPreset(t *testing.T) {
	if _, engineError := filter.NewEngine(filter.Config{PresetName: "fortran"}, nil); engineError == nil {
		t.Fatalf("expected error for unknown preset name")
	}
}

func TestEngineIgnoreRuleBeatsPreset(t *testing.T) {
	// The ignore verdict is consulted before preset tables, so an excluding rule wins
	// even when the preset would also exclude.
	ruleSet := mustRuleSet(t, "dist/")
	engine, engineError := filter.NewEngine(filter.Config{UseIgnoreFile: true, PresetName: "web"}, ruleSet)
	if engineError != nil {
		t.Fatalf("new engine: %v", engineError)
	}
	if decision := engine.Decide("dist", true); !decision.Excluded || decision.Reason != filter.ReasonIgnoreRule {
		t.Fatalf("ignore rule must be reported as the exclusion source, got %+v", decision)
	}
}

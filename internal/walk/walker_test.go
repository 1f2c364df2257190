package walk_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ctxpack/ctxpack/internal/filter"
	"github.com/ctxpack/ctxpack/internal/walk"
)

// writeTree materializes relative path / content pairs beneath root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for relativePath, content := range files {
		absolutePath := filepath.Join(root, filepath.FromSlash(relativePath))
		if mkdirError := os.MkdirAll(filepath.Dir(absolutePath), 0o755); mkdirError != nil {
			t.Fatalf("mkdir for %s: %v", relativePath, mkdirError)
		}
		if writeError := os.WriteFile(absolutePath, []byte(content), 0o644); writeError != nil {
			t.Fatalf("write %s: %v", relativePath, writeError)
		}
	}
}

func newEngine(t *testing.T, config filter.Config) *filter.Engine {
	t.Helper()
	engine, engineError := filter.NewEngine(config, nil)
	if engineError != nil {
		t.Fatalf("new engine: %v", engineError)
	}
	return engine
}

func runWalk(t *testing.T, options walk.Options) walk.Plan {
	t.Helper()
	walker, walkerError := walk.NewWalker(options)
	if walkerError != nil {
		t.Fatalf("new walker: %v", walkerError)
	}
	plan, runError := walker.Run(context.Background())
	if runError != nil {
		t.Fatalf("run walk: %v", runError)
	}
	return plan
}

func relativeFilePaths(plan walk.Plan) []string {
	paths := make([]string, 0, len(plan.Files))
	for _, task := range plan.Files {
		paths = append(paths, task.RelativePath)
	}
	return paths
}

func TestWalkerPythonPresetScenario(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/main.py":  "print('hello')\n",
		".git/config":  "[core]\n",
		"build/out.o":  "\x00\x01",
		"src/notes.md": "notes\n",
	})

	plan := runWalk(t, walk.Options{
		Root:   root,
		Engine: newEngine(t, filter.Config{PresetName: "python"}),
	})

	expectedFiles := []string{"src/main.py", "src/notes.md"}
	if !reflect.DeepEqual(relativeFilePaths(plan), expectedFiles) {
		t.Fatalf("expected files %v, got %v", expectedFiles, relativeFilePaths(plan))
	}
	if plan.Stats.FilesScanned != 2 {
		t.Fatalf("pruned directories must not be scanned, got %d scanned files", plan.Stats.FilesScanned)
	}

	expectedEntries := []string{"src", "src/main.py", "src/notes.md"}
	entryPaths := make([]string, 0, len(plan.Entries))
	for _, entry := range plan.Entries {
		entryPaths = append(entryPaths, entry.RelativePath)
	}
	if !reflect.DeepEqual(entryPaths, expectedEntries) {
		t.Fatalf("expected entries %v, got %v", expectedEntries, entryPaths)
	}
}

func TestWalkerDeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"zebra.txt":    "z\n",
		"alpha.txt":    "a\n",
		"lib/b.go":     "package lib\n",
		"lib/a.go":     "package lib\n",
		"cmd/main.go":  "package main\n",
		"cmd/extra.go": "package main\n",
	})
	options := walk.Options{Root: root, Engine: newEngine(t, filter.Config{})}

	firstPlan := runWalk(t, options)
	secondPlan := runWalk(t, options)
	if !reflect.DeepEqual(firstPlan, secondPlan) {
		t.Fatalf("two walks over an unchanged tree must produce identical plans")
	}

	expectedFiles := []string{"cmd/extra.go", "cmd/main.go", "lib/a.go", "lib/b.go", "alpha.txt", "zebra.txt"}
	if !reflect.DeepEqual(relativeFilePaths(firstPlan), expectedFiles) {
		t.Fatalf("expected directory-first lexicographic order %v, got %v", expectedFiles, relativeFilePaths(firstPlan))
	}
}

func TestWalkerDropsDirectoriesWithoutIncludedFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"kept/file.txt":     "content\n",
		"empty/only.log":    "log\n",
		"nested/deep/x.log": "log\n",
	})

	plan := runWalk(t, walk.Options{
		Root:   root,
		Engine: newEngine(t, filter.Config{ExcludedExtensions: map[string]struct{}{".log": {}}}),
	})

	for _, entry := range plan.Entries {
		if entry.RelativePath == "empty" || entry.RelativePath == "nested" {
			t.Fatalf("directory %q holds no included files and must be dropped", entry.RelativePath)
		}
	}
	if !reflect.DeepEqual(relativeFilePaths(plan), []string{"kept/file.txt"}) {
		t.Fatalf("expected only kept/file.txt, got %v", relativeFilePaths(plan))
	}
}

func TestWalkerExcludesOutputFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":    "package main\n",
		"context.md": "previous run\n",
	})

	plan := runWalk(t, walk.Options{
		Root:       root,
		Engine:     newEngine(t, filter.Config{}),
		OutputPath: filepath.Join(root, "context.md"),
	})
	if !reflect.DeepEqual(relativeFilePaths(plan), []string{"main.go"}) {
		t.Fatalf("output file must not pack itself, got %v", relativeFilePaths(plan))
	}
}

func TestWalkerMaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"small.txt": "tiny\n",
		"large.txt": string(make([]byte, 2048)),
	})

	plan := runWalk(t, walk.Options{
		Root:             root,
		Engine:           newEngine(t, filter.Config{}),
		MaxFileSizeBytes: 1024,
	})
	if !reflect.DeepEqual(relativeFilePaths(plan), []string{"small.txt"}) {
		t.Fatalf("oversized file must be omitted, got %v", relativeFilePaths(plan))
	}
	if plan.Stats.FilesOmittedBySize != 1 {
		t.Fatalf("expected one size omission, got %d", plan.Stats.FilesOmittedBySize)
	}
}

func TestWalkerUnreadableDirectoryIsSkippedWithWarning(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"open/readable.txt":  "content\n",
		"locked/hidden.txt":  "content\n",
		"zz-after/later.txt": "content\n",
	})
	lockedPath := filepath.Join(root, "locked")
	if chmodError := os.Chmod(lockedPath, 0o000); chmodError != nil {
		t.Fatalf("chmod: %v", chmodError)
	}
	t.Cleanup(func() { _ = os.Chmod(lockedPath, 0o755) })

	var warnings []string
	plan := runWalk(t, walk.Options{
		Root:   root,
		Engine: newEngine(t, filter.Config{}),
		Warn:   func(message string) { warnings = append(warnings, message) },
	})

	if len(warnings) != 1 || !strings.Contains(warnings[0], "locked") {
		t.Fatalf("expected one warning naming the unreadable directory, got %v", warnings)
	}
	expectedFiles := []string{"open/readable.txt", "zz-after/later.txt"}
	if !reflect.DeepEqual(relativeFilePaths(plan), expectedFiles) {
		t.Fatalf("walk must continue past the unreadable directory, got %v", relativeFilePaths(plan))
	}
	for _, entry := range plan.Entries {
		if entry.RelativePath == "locked" {
			t.Fatalf("an unreadable directory contributes nothing and must not appear in the plan")
		}
	}
}

func TestWalkerHeaderOnlyPaths(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"vendor/include/api.h":  "#pragma once\n",
		"vendor/include/impl.c": "int main;\n",
		"src/app.c":             "int app;\n",
	})

	plan := runWalk(t, walk.Options{
		Root:             root,
		Engine:           newEngine(t, filter.Config{}),
		HeaderOnlyPaths:  []string{"vendor"},
		HeaderExtensions: map[string]struct{}{".h": {}},
	})

	expectedFiles := []string{"src/app.c", "vendor/include/api.h"}
	if !reflect.DeepEqual(relativeFilePaths(plan), expectedFiles) {
		t.Fatalf("expected %v, got %v", expectedFiles, relativeFilePaths(plan))
	}
	if plan.Stats.FilesOmittedByHeaders != 1 {
		t.Fatalf("expected one header omission, got %d", plan.Stats.FilesOmittedByHeaders)
	}
}

func TestWalkerHeaderExtensionsMatchAsSuffixes(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"types/api.d.ts": "export {}\n",
		"types/impl.ts":  "export {}\n",
	})

	plan := runWalk(t, walk.Options{
		Root:             root,
		Engine:           newEngine(t, filter.Config{}),
		HeaderOnlyPaths:  []string{"types"},
		HeaderExtensions: map[string]struct{}{".d.ts": {}},
	})

	if !reflect.DeepEqual(relativeFilePaths(plan), []string{"types/api.d.ts"}) {
		t.Fatalf("multi-dot header extensions must match by suffix, got %v", relativeFilePaths(plan))
	}
	if plan.Stats.FilesOmittedByHeaders != 1 {
		t.Fatalf("expected one header omission, got %d", plan.Stats.FilesOmittedByHeaders)
	}
}

// Package walk performs the filtered, deterministic traversal of a project tree.
package walk

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ctxpack/ctxpack/internal/filter"
	"github.com/ctxpack/ctxpack/internal/types"
)

// FileTask identifies one included file whose content still has to be loaded.
type FileTask struct {
	RelativePath string
	AbsolutePath string
	SizeBytes    int64
}

// Plan is the outcome of one traversal: the tree entries in render order, the files to
// load in the same order, and the scan counters accumulated along the way.
type Plan struct {
	Entries []types.WalkEntry
	Files   []FileTask
	Stats   types.PackStats
}

// Options configures a traversal.
type Options struct {
	// Root is the absolute path of the project directory.
	Root string
	// Engine decides inclusion for every encountered path.
	Engine *filter.Engine
	// OutputPath is the absolute path of the document being produced; the walker
	// excludes it so a rerun never packs its own previous output.
	OutputPath string
	// MaxFileSizeBytes omits larger files when positive.
	MaxFileSizeBytes int64
	// HeaderOnlyPaths lists root-relative directory prefixes under which only files
	// with a header extension are kept.
	HeaderOnlyPaths []string
	// HeaderExtensions is the set of lowercase dotted extensions treated as headers.
	HeaderExtensions map[string]struct{}
	// Warn receives recoverable traversal problems; nil discards them.
	Warn func(message string)
}

// Walker traverses one project tree according to its options.
type Walker struct {
	options         Options
	headerOnlyPaths []string
}

// NewWalker validates options and constructs a Walker.
func NewWalker(options Options) (*Walker, error) {
	if options.Root == "" {
		return nil, fmt.Errorf("walk: empty root path")
	}
	if options.Engine == nil {
		return nil, fmt.Errorf("walk: nil filter engine")
	}
	walker := &Walker{options: options}
	for _, headerPath := range options.HeaderOnlyPaths {
		normalized := strings.Trim(filepath.ToSlash(headerPath), "/")
		if normalized != "" && normalized != "." {
			walker.headerOnlyPaths = append(walker.headerOnlyPaths, normalized)
		}
	}
	return walker, nil
}

// Run walks the tree and returns the traversal plan. Entries and files appear in
// pre-order with directories before files and lexicographic order within each group,
// so two runs over the same tree always produce the same plan. Directories that end up
// containing no included files are dropped entirely.
func (walker *Walker) Run(ctx context.Context) (Plan, error) {
	plan := Plan{}
	if _, walkError := walker.walkDirectory(ctx, &plan, "", 0); walkError != nil {
		return Plan{}, walkError
	}
	return plan, nil
}

// walkDirectory processes one directory and reports whether it contributed at least
// one included file. Excluded directories are pruned before descent: nothing beneath
// them is read or evaluated.
func (walker *Walker) walkDirectory(ctx context.Context, plan *Plan, relativeDirectory string, depth int) (bool, error) {
	if contextError := ctx.Err(); contextError != nil {
		return false, contextError
	}

	absoluteDirectory := filepath.Join(walker.options.Root, filepath.FromSlash(relativeDirectory))
	directoryEntries, readError := os.ReadDir(absoluteDirectory)
	if readError != nil {
		walker.warn(fmt.Sprintf("skipping unreadable directory %s: %v", absoluteDirectory, readError))
		return false, nil
	}
	sortDirectoryEntries(directoryEntries)

	// A directory entry is appended tentatively and retracted when its subtree turns
	// out to hold no included files, so the rendered tree lists exactly the files in
	// the document plus their ancestors.
	contributed := false
	for _, directoryEntry := range directoryEntries {
		entryRelativePath := path.Join(relativeDirectory, directoryEntry.Name())

		if directoryEntry.IsDir() {
			decision := walker.options.Engine.Decide(entryRelativePath, true)
			if decision.Excluded {
				continue
			}
			markerIndex := len(plan.Entries)
			plan.Entries = append(plan.Entries, types.WalkEntry{
				RelativePath: entryRelativePath,
				Name:         directoryEntry.Name(),
				Depth:        depth,
				IsDir:        true,
			})
			childContributed, childError := walker.walkDirectory(ctx, plan, entryRelativePath, depth+1)
			if childError != nil {
				return false, childError
			}
			if !childContributed {
				plan.Entries = plan.Entries[:markerIndex]
				continue
			}
			contributed = true
			continue
		}
		if !directoryEntry.Type().IsRegular() {
			continue
		}

		plan.Stats.FilesScanned++
		decision := walker.options.Engine.Decide(entryRelativePath, false)
		if decision.Excluded {
			continue
		}
		absoluteEntryPath := filepath.Join(absoluteDirectory, directoryEntry.Name())
		if walker.isOutputFile(absoluteEntryPath) {
			continue
		}

		entryInfo, infoError := directoryEntry.Info()
		if infoError != nil {
			walker.warn(fmt.Sprintf("skipping unreadable file %s: %v", absoluteEntryPath, infoError))
			continue
		}
		if walker.options.MaxFileSizeBytes > 0 && entryInfo.Size() > walker.options.MaxFileSizeBytes {
			plan.Stats.FilesOmittedBySize++
			continue
		}
		if walker.omittedByHeaderRule(entryRelativePath) {
			plan.Stats.FilesOmittedByHeaders++
			continue
		}

		plan.Entries = append(plan.Entries, types.WalkEntry{
			RelativePath: entryRelativePath,
			Name:         directoryEntry.Name(),
			Depth:        depth,
			IsDir:        false,
			SizeBytes:    entryInfo.Size(),
		})
		plan.Files = append(plan.Files, FileTask{
			RelativePath: entryRelativePath,
			AbsolutePath: absoluteEntryPath,
			SizeBytes:    entryInfo.Size(),
		})
		plan.Stats.FilesIncluded++
		contributed = true
	}
	return contributed, nil
}

// isOutputFile reports whether the candidate is the document this run is producing.
func (walker *Walker) isOutputFile(absolutePath string) bool {
	if walker.options.OutputPath == "" {
		return false
	}
	return filepath.Clean(absolutePath) == filepath.Clean(walker.options.OutputPath)
}

// omittedByHeaderRule reports whether a file under a header-only prefix lacks a header
// extension. Extensions compare as file-name suffixes so multi-dot entries such as
// ".d.ts" match.
func (walker *Walker) omittedByHeaderRule(relativePath string) bool {
	if len(walker.headerOnlyPaths) == 0 {
		return false
	}
	underHeaderPath := false
	for _, headerPath := range walker.headerOnlyPaths {
		if relativePath == headerPath || strings.HasPrefix(relativePath, headerPath+"/") {
			underHeaderPath = true
			break
		}
	}
	if !underHeaderPath {
		return false
	}
	entryName := strings.ToLower(path.Base(relativePath))
	for headerExtension := range walker.options.HeaderExtensions {
		if strings.HasSuffix(entryName, headerExtension) {
			return false
		}
	}
	return true
}

func (walker *Walker) warn(message string) {
	if walker.options.Warn != nil {
		walker.options.Warn(message)
	}
}

// sortDirectoryEntries orders directories before files and each group lexicographically
// by name, which fixes the traversal order independent of filesystem enumeration.
func sortDirectoryEntries(entries []os.DirEntry) {
	sort.SliceStable(entries, func(left, right int) bool {
		if entries[left].IsDir() != entries[right].IsDir() {
			return entries[left].IsDir()
		}
		return entries[left].Name() < entries[right].Name()
	})
}

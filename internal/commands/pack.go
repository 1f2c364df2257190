// Package commands implements the pack operation behind the CLI surface.
package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ctxpack/ctxpack/internal/document"
	"github.com/ctxpack/ctxpack/internal/filter"
	"github.com/ctxpack/ctxpack/internal/ignore"
	"github.com/ctxpack/ctxpack/internal/tokenizer"
	"github.com/ctxpack/ctxpack/internal/types"
	"github.com/ctxpack/ctxpack/internal/utils"
	"github.com/ctxpack/ctxpack/internal/walk"
)

// DefaultHeaderExtensions lists the extensions treated as headers when header-only
// paths are configured without an explicit extension set. Matching is by file-name
// suffix, which is what lets multi-dot entries like ".d.ts" work.
var DefaultHeaderExtensions = []string{".h", ".hpp", ".hh", ".cuh", ".d.ts", ".pyi", ".java-interface"}

// PackOptions carries every setting of one pack run.
type PackOptions struct {
	ProjectRoot string
	OutputPath  string

	PresetName          string
	AddTree             bool
	AddMetadata         bool
	IncludeHidden       bool
	UseIgnoreFile       bool
	IgnoreFilePath      string
	ExcludedDirectories []string
	ExcludedFiles       []string
	ExcludedExtensions  []string

	// MaxFileSizeBytes caps packed file sizes; zero defers to the preset default.
	MaxFileSizeBytes int64
	HeaderOnlyPaths  []string
	HeaderExtensions []string

	CountTokens bool
	Model       string

	Logger *zap.Logger
}

// PackResult is the outcome of a successful pack run.
type PackResult struct {
	Document    string
	Stats       types.PackStats
	EncoderName string
	Duration    time.Duration
}

// Pack walks the project, assembles the Markdown document, and writes it atomically to
// the output path. Root validation happens before anything is written, so a bad root
// never clobbers an existing output file.
func Pack(ctx context.Context, options PackOptions) (PackResult, error) {
	startTime := time.Now()
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	warn := func(message string) { logger.Warn(message) }

	absoluteRoot, rootError := filepath.Abs(options.ProjectRoot)
	if rootError != nil {
		return PackResult{}, fmt.Errorf("resolve project path %s: %w", options.ProjectRoot, rootError)
	}
	rootInfo, statError := os.Stat(absoluteRoot)
	if statError != nil {
		return PackResult{}, fmt.Errorf("project path %s: %w", options.ProjectRoot, statError)
	}
	if !rootInfo.IsDir() {
		return PackResult{}, fmt.Errorf("project path %s is not a directory", options.ProjectRoot)
	}
	absoluteOutput, outputError := filepath.Abs(options.OutputPath)
	if outputError != nil {
		return PackResult{}, fmt.Errorf("resolve output path %s: %w", options.OutputPath, outputError)
	}

	engine, engineError := buildEngine(options, absoluteRoot, warn)
	if engineError != nil {
		return PackResult{}, engineError
	}

	maxFileSizeBytes := options.MaxFileSizeBytes
	if maxFileSizeBytes == 0 {
		maxFileSizeBytes = engine.PresetMaxFileSizeBytes()
	}

	headerExtensions := options.HeaderExtensions
	if len(options.HeaderOnlyPaths) > 0 && len(headerExtensions) == 0 {
		headerExtensions = DefaultHeaderExtensions
	}

	walker, walkerError := walk.NewWalker(walk.Options{
		Root:             absoluteRoot,
		Engine:           engine,
		OutputPath:       absoluteOutput,
		MaxFileSizeBytes: maxFileSizeBytes,
		HeaderOnlyPaths:  options.HeaderOnlyPaths,
		HeaderExtensions: extensionSet(headerExtensions),
		Warn:             warn,
	})
	if walkerError != nil {
		return PackResult{}, walkerError
	}
	plan, planError := walker.Run(ctx)
	if planError != nil {
		return PackResult{}, planError
	}

	var tokenCounter tokenizer.Counter
	encoderName := ""
	if options.CountTokens {
		counter, resolvedName, counterError := tokenizer.NewCounter(options.Model)
		if counterError != nil {
			return PackResult{}, counterError
		}
		tokenCounter = counter
		encoderName = resolvedName
	}

	records, loadError := loadRecords(ctx, plan.Files, tokenCounter, warn)
	if loadError != nil {
		return PackResult{}, loadError
	}

	stats := plan.Stats
	for _, record := range records {
		stats.LinesAdded += record.LineCount
		stats.TotalTokens += record.Tokens
	}

	tree := ""
	if options.AddTree {
		tree = document.RenderTree(filepath.Base(absoluteRoot), plan.Entries)
	}
	renderedDocument := document.Assemble(document.AssembleOptions{
		RootName:        filepath.Base(absoluteRoot),
		Tree:            tree,
		IncludeMetadata: options.AddMetadata,
		IncludeTokens:   options.CountTokens,
	}, records)

	if writeError := document.WriteAtomic(absoluteOutput, renderedDocument); writeError != nil {
		return PackResult{}, writeError
	}

	result := PackResult{
		Document:    renderedDocument,
		Stats:       stats,
		EncoderName: encoderName,
		Duration:    time.Since(startTime),
	}
	logger.Info("pack complete",
		zap.String("output", absoluteOutput),
		zap.Int("files_scanned", stats.FilesScanned),
		zap.Int("files_included", stats.FilesIncluded),
		zap.Int("files_omitted_by_size", stats.FilesOmittedBySize),
		zap.Int("files_omitted_by_headers", stats.FilesOmittedByHeaders),
		zap.Int("lines_added", stats.LinesAdded),
		zap.Int("total_tokens", stats.TotalTokens),
		zap.String("output_size", utils.FormatFileSize(int64(len(renderedDocument)))),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// buildEngine loads the ignore rule set and constructs the filter engine from the
// normalized manual exclusion lists.
func buildEngine(options PackOptions, absoluteRoot string, warn func(string)) (*filter.Engine, error) {
	var ruleSet *ignore.RuleSet
	if options.UseIgnoreFile {
		ignorePath := options.IgnoreFilePath
		explicitPath := ignorePath != ""
		if !explicitPath {
			ignorePath = filepath.Join(absoluteRoot, utils.GitIgnoreFileName)
		}
		loadedRuleSet, loadError := ignore.LoadRuleSet(ignorePath, warn)
		if loadError != nil {
			return nil, loadError
		}
		if loadedRuleSet == nil && explicitPath {
			warn(fmt.Sprintf("ignore file %s not found; continuing without ignore rules", ignorePath))
		}
		ruleSet = loadedRuleSet
	}

	engine, engineError := filter.NewEngine(filter.Config{
		IncludeHidden:       options.IncludeHidden,
		UseIgnoreFile:       options.UseIgnoreFile,
		PresetName:          options.PresetName,
		ExcludedDirectories: nameSet(options.ExcludedDirectories),
		ExcludedFiles:       nameSet(options.ExcludedFiles),
		ExcludedExtensions:  extensionSet(options.ExcludedExtensions),
	}, ruleSet)
	if engineError != nil {
		return nil, engineError
	}
	return engine, nil
}

// loadRecords streams the planned files through a producer/consumer pair: the producer
// feeds tasks in plan order and the consumer reads and classifies each file, so record
// order always matches entry order.
func loadRecords(ctx context.Context, tasks []walk.FileTask, tokenCounter tokenizer.Counter, warn func(string)) ([]types.FileRecord, error) {
	group, streamCtx := errgroup.WithContext(ctx)
	taskChannel := make(chan walk.FileTask)
	records := make([]types.FileRecord, 0, len(tasks))

	group.Go(func() error {
		defer close(taskChannel)
		for _, task := range tasks {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case taskChannel <- task:
			}
		}
		return nil
	})

	group.Go(func() error {
		for {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case task, open := <-taskChannel:
				if !open {
					return nil
				}
				record, recordError := loadRecord(task, tokenCounter)
				if recordError != nil {
					// The file vanished or became unreadable after the walk;
					// keep a placeholder section so the tree stays accurate.
					warn(fmt.Sprintf("reading %s failed after scan: %v", task.AbsolutePath, recordError))
					record = types.FileRecord{RelativePath: task.RelativePath, SizeBytes: task.SizeBytes, IsBinary: true}
				}
				records = append(records, record)
			}
		}
	})

	// Cancellation must surface too: a partial record slice would let the caller
	// write a document whose tree lists files that have no sections.
	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}
	return records, nil
}

// loadRecord reads one file and classifies it as text or binary.
func loadRecord(task walk.FileTask, tokenCounter tokenizer.Counter) (types.FileRecord, error) {
	data, readError := os.ReadFile(task.AbsolutePath)
	if readError != nil {
		return types.FileRecord{}, readError
	}
	record := types.FileRecord{
		RelativePath: task.RelativePath,
		SizeBytes:    int64(len(data)),
	}
	if utils.IsBinary(data) {
		record.IsBinary = true
		return record, nil
	}
	record.Content = string(data)
	record.LineCount = utils.CountLines(data)
	if tokenCounter != nil {
		countResult, countError := tokenizer.CountBytes(tokenCounter, data)
		if countError != nil {
			return types.FileRecord{}, countError
		}
		if countResult.Counted {
			record.Tokens = countResult.Tokens
		}
	}
	return record, nil
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range utils.DeduplicateStrings(names) {
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return set
}

func extensionSet(extensions []string) map[string]struct{} {
	set := make(map[string]struct{}, len(extensions))
	for _, extension := range utils.DeduplicateStrings(extensions) {
		if extension == "" {
			continue
		}
		set[utils.NormalizeExtension(extension)] = struct{}{}
	}
	return set
}

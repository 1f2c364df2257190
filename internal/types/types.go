// Package types defines every cross-package data structure used by the ctxpack CLI.
package types

// WalkEntry is one directory or file that survived filtering during the walk.
// Entries are produced in pre-order: a directory appears before everything beneath it.
type WalkEntry struct {
	RelativePath string
	Name         string
	Depth        int
	IsDir        bool
	SizeBytes    int64
}

// FileRecord holds the loaded content of one included file.
// IsBinary marks content that failed the text sniff; Content is empty in that case.
type FileRecord struct {
	RelativePath string
	SizeBytes    int64
	LineCount    int
	Content      string
	IsBinary     bool
	Tokens       int
}

// PackStats captures aggregate information about one pack run.
type PackStats struct {
	FilesScanned          int
	FilesIncluded         int
	FilesOmittedBySize    int
	FilesOmittedByHeaders int
	LinesAdded            int
	TotalTokens           int
}

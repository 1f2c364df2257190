// Package document renders walk results into a single Markdown context document.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctxpack/ctxpack/internal/types"
	"github.com/ctxpack/ctxpack/internal/utils"
)

const (
	documentTitleFormat    = "# Project Summary: %s\n\n"
	treeSectionHeading     = "## Project Structure\n\n"
	plainFenceTag          = "plaintext"
	fenceMarker            = "```"
	sectionSeparator       = "---\n\n"
	binaryContentOmitted   = "(binary content omitted)"
	fileHeaderFormat       = "File: %s"
	sizeMetadataFormat     = " | Size: %s | Lines: %d"
	tokensMetadataFormat   = " | Tokens: %d"
	temporaryOutputPattern = ".ctxpack-*.tmp"
)

// AssembleOptions controls what the assembled document contains.
type AssembleOptions struct {
	// RootName is the base name of the packed project directory.
	RootName string
	// Tree holds the rendered structure diagram; empty omits the section.
	Tree string
	// IncludeMetadata adds size and line counts to every file header.
	IncludeMetadata bool
	// IncludeTokens adds token counts to file headers when metadata is on.
	IncludeTokens bool
}

// Assemble renders the document. Given identical options and records the output is
// byte-identical, which makes rerun comparisons meaningful.
func Assemble(options AssembleOptions, records []types.FileRecord) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(documentTitleFormat, options.RootName))

	if options.Tree != "" {
		builder.WriteString(treeSectionHeading)
		writeFence(&builder, plainFenceTag, options.Tree)
		builder.WriteString("\n")
		builder.WriteString(sectionSeparator)
	}

	for _, record := range records {
		header := fmt.Sprintf(fileHeaderFormat, record.RelativePath)
		if options.IncludeMetadata {
			header += fmt.Sprintf(sizeMetadataFormat, utils.FormatFileSize(record.SizeBytes), record.LineCount)
			if options.IncludeTokens && !record.IsBinary {
				header += fmt.Sprintf(tokensMetadataFormat, record.Tokens)
			}
		}
		writeFence(&builder, plainFenceTag, header+"\n")
		builder.WriteString("\n")

		if record.IsBinary {
			writeFence(&builder, "", binaryContentOmitted+"\n")
		} else {
			writeFence(&builder, LanguageForPath(record.RelativePath), record.Content)
		}
		builder.WriteString("\n")
		builder.WriteString(sectionSeparator)
	}

	return strings.TrimSuffix(builder.String(), "\n")
}

// writeFence emits a fenced code block, guaranteeing the closing marker starts on its
// own line even when content lacks a trailing newline.
func writeFence(builder *strings.Builder, tag string, content string) {
	builder.WriteString(fenceMarker)
	builder.WriteString(tag)
	builder.WriteString("\n")
	builder.WriteString(content)
	if content != "" && !strings.HasSuffix(content, "\n") {
		builder.WriteString("\n")
	}
	builder.WriteString(fenceMarker)
	builder.WriteString("\n")
}

// WriteAtomic writes content to destinationPath through a temporary file in the same
// directory followed by a rename, so a failed run never leaves a partial document.
func WriteAtomic(destinationPath string, content string) error {
	destinationDirectory := filepath.Dir(destinationPath)
	temporaryFile, createError := os.CreateTemp(destinationDirectory, temporaryOutputPattern)
	if createError != nil {
		return fmt.Errorf("create temporary output in %s: %w", destinationDirectory, createError)
	}
	temporaryPath := temporaryFile.Name()

	if _, writeError := temporaryFile.WriteString(content); writeError != nil {
		_ = temporaryFile.Close()
		_ = os.Remove(temporaryPath)
		return fmt.Errorf("write output %s: %w", destinationPath, writeError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf("close output %s: %w", destinationPath, closeError)
	}
	if renameError := os.Rename(temporaryPath, destinationPath); renameError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf("replace output %s: %w", destinationPath, renameError)
	}
	return nil
}

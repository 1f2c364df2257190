package document

import (
	"path"
	"strings"
)

// languageByExtension maps lowercase file extensions to Markdown fence tags.
// Unknown extensions yield an empty tag so the fence stays untagged.
var languageByExtension = map[string]string{
	".py":    "python",
	".js":    "javascript",
	".jsx":   "jsx",
	".ts":    "typescript",
	".tsx":   "tsx",
	".html":  "html",
	".css":   "css",
	".scss":  "scss",
	".json":  "json",
	".md":    "markdown",
	".astro": "astro",
	".sql":   "sql",
	".sh":    "shell",
	".yml":   "yaml",
	".yaml":  "yaml",
	".toml":  "toml",
	".xml":   "xml",
	".java":  "java",
	".cs":    "csharp",
	".cpp":   "cpp",
	".hpp":   "cpp",
	".cc":    "cpp",
	".hh":    "cpp",
	".c":     "c",
	".h":     "c",
	".rs":    "rust",
	".go":    "go",
	".rb":    "ruby",
	".ino":   "cpp",
}

// LanguageForPath returns the fence tag for a file path, empty when unknown.
func LanguageForPath(relativePath string) string {
	extension := strings.ToLower(path.Ext(relativePath))
	return languageByExtension[extension]
}

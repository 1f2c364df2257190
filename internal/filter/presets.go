package filter

import "sort"

// Preset is a named static bundle of default exclusion rules for a common project type.
// Presets are pure data: the engine unions them with manual excludes and never lets one
// replace the other.
type Preset struct {
	ExcludedDirectories map[string]struct{}
	ExcludedFiles       map[string]struct{}
	ExcludedExtensions  map[string]struct{}
	// MaxFileSizeBytes is the default size cap a preset suggests; zero means no cap.
	MaxFileSizeBytes int64
}

const presetDefaultMaxFileSizeBytes = 250 * 1024

var (
	defaultExcludedDirectories = newStringSet(
		"node_modules", ".git", "dist", "build", "venv", ".venv", "__pycache__", ".astro",
	)
	defaultExcludedFiles      = newStringSet("package-lock.json", ".DS_Store")
	defaultExcludedExtensions = newStringSet(".svg", ".ico", ".lock", ".log")

	webExcludedDirectories = unionStringSets(defaultExcludedDirectories, newStringSet(
		"public", ".vscode", ".github",
	))

	// presetTable maps preset names to their process-wide read-only rule bundles.
	presetTable = map[string]Preset{
		"python": {
			ExcludedDirectories: unionStringSets(defaultExcludedDirectories, newStringSet(
				"env", ".pytest_cache", ".mypy_cache", ".ipynb_checkpoints", ".tox", "htmlcov", ".idea",
			)),
			ExcludedFiles: unionStringSets(defaultExcludedFiles, newStringSet(
				"poetry.lock", "Pipfile.lock", ".coverage",
			)),
			ExcludedExtensions: unionStringSets(defaultExcludedExtensions, newStringSet(
				".pyc", ".pyo", ".pyd", ".whl", ".pkl", ".so",
			)),
			MaxFileSizeBytes: presetDefaultMaxFileSizeBytes,
		},
		"web": {
			ExcludedDirectories: webExcludedDirectories,
			ExcludedFiles:       unionStringSets(defaultExcludedFiles, newStringSet("bun.lock")),
			ExcludedExtensions:  unionStringSets(defaultExcludedExtensions, newStringSet(".lockb")),
			MaxFileSizeBytes:    presetDefaultMaxFileSizeBytes,
		},
		"arduino": {
			ExcludedDirectories: webExcludedDirectories,
			ExcludedFiles: unionStringSets(defaultExcludedFiles, newStringSet(
				"bun.lock", "LICENSE", "Makefile", "README.md", "library.properties",
			)),
			ExcludedExtensions: unionStringSets(defaultExcludedExtensions, newStringSet(".lockb", ".md")),
			MaxFileSizeBytes:   presetDefaultMaxFileSizeBytes,
		},
		"stm32": {
			ExcludedDirectories: unionStringSets(webExcludedDirectories, newStringSet(
				"Drivers", "Middlewares", "USB_DEVICE", "USB_Device",
			)),
			ExcludedFiles: unionStringSets(defaultExcludedFiles, newStringSet(
				"LICENSE", "Makefile", "README.md", "library.properties", ".mxproject", ".gitignore", ".stm32env",
			)),
			ExcludedExtensions: unionStringSets(defaultExcludedExtensions, newStringSet(
				".cfg", ".s", ".ioc", ".lockb", ".md", ".ld", ".yaml", ".make",
			)),
			MaxFileSizeBytes: presetDefaultMaxFileSizeBytes,
		},
	}
)

// LookupPreset returns the preset registered under name.
func LookupPreset(name string) (Preset, bool) {
	preset, exists := presetTable[name]
	return preset, exists
}

// PresetNames returns the registered preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presetTable))
	for name := range presetTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newStringSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}

func unionStringSets(sets ...map[string]struct{}) map[string]struct{} {
	union := make(map[string]struct{})
	for _, set := range sets {
		for value := range set {
			union[value] = struct{}{}
		}
	}
	return union
}

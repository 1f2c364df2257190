// Package cli wires flags, configuration defaults, and the pack command together.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ctxpack/ctxpack/internal/commands"
	"github.com/ctxpack/ctxpack/internal/config"
	"github.com/ctxpack/ctxpack/internal/services/clipboard"
	"github.com/ctxpack/ctxpack/internal/utils"
)

const (
	rootUse              = "ctxpack <project-path> <output-file>"
	rootShortDescription = "ctxpack packs a project tree into one Markdown context document"
	rootLongDescription  = `ctxpack walks a project directory, filters entries through hidden-path,
gitignore, preset, and manual exclusion rules, and writes the survivors into a single
deterministic Markdown document suitable as LLM context.`
	rootUsageExample = `  # Pack a Python project with its preset, tree diagram, and metadata
  ctxpack -p python -t -m ./service context.md

  # Honor .gitignore and count tokens for gpt-4o
  ctxpack -g --tokens . context.md

  # Keep only header files beneath vendored sources
  ctxpack --header-only-paths vendor/include . context.md`

	presetFlagName           = "profile"
	treeFlagName             = "tree"
	metadataFlagName         = "metadata"
	hiddenFlagName           = "hidden"
	gitignoreFlagName        = "gitignore"
	gitignorePathFlagName    = "gitignore-path"
	excludeDirsFlagName      = "exclude-dirs"
	excludeFilesFlagName     = "exclude-files"
	excludeExtensionsFlag    = "exclude-extensions"
	maxFileSizeFlagName      = "max-file-size"
	headerOnlyPathsFlagName  = "header-only-paths"
	headerExtensionsFlagName = "header-extensions"
	tokensFlagName           = "tokens"
	modelFlagName            = "model"
	copyFlagName             = "copy"
	configFlagName           = "config"
	versionTemplate          = "ctxpack version: {{.Version}}\n"

	presetFlagDescription           = "exclusion preset to apply (python, web, arduino, stm32)"
	treeFlagDescription             = "include a project structure diagram"
	metadataFlagDescription         = "include size and line metadata per file"
	hiddenFlagDescription           = "include hidden files and directories"
	gitignoreFlagDescription        = "apply ignore rules from .gitignore"
	gitignorePathFlagDescription    = "read ignore rules from this file instead of .gitignore"
	excludeDirsFlagDescription      = "directory name to exclude"
	excludeFilesFlagDescription     = "file name to exclude"
	excludeExtensionsDescription    = "file extension to exclude"
	maxFileSizeFlagDescription      = "skip files larger than this size (e.g. 250K, 2M)"
	headerOnlyPathsFlagDescription  = "pack only header files beneath these paths"
	headerExtensionsFlagDescription = "extensions treated as headers for --header-only-paths"
	tokensFlagDescription           = "include token counts"
	modelFlagDescription            = "tokenizer model to use for token counting"
	copyFlagDescription             = "copy the resulting document to the clipboard"
	configFlagDescription           = "path to a configuration file"
	defaultTokenizerModelName       = "gpt-4o"
)

// packFlags stores every flag value of the pack invocation.
type packFlags struct {
	presetName         string
	addTree            bool
	addMetadata        bool
	includeHidden      bool
	useGitignore       bool
	gitignorePath      string
	excludedDirs       []string
	excludedFiles      []string
	excludedExtensions []string
	maxFileSize        string
	headerOnlyPaths    []string
	headerExtensions   []string
	countTokens        bool
	model              string
	copyToClipboard    bool
	configPath         string
}

// Execute runs the ctxpack application.
func Execute(logger *zap.Logger) error {
	rootCommand := createRootCommand(logger)
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command. The version flag is handled through
// cobra's Version field so it works without the two positional arguments.
func createRootCommand(logger *zap.Logger) *cobra.Command {
	var flags packFlags

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Version:      utils.GetApplicationVersion(),
		SilenceUsage: true,
		Args:         cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, arguments []string) error {
			return runPack(command, arguments[0], arguments[1], &flags, logger)
		},
	}
	rootCommand.SetVersionTemplate(versionTemplate)

	commandFlags := rootCommand.Flags()
	commandFlags.StringVarP(&flags.presetName, presetFlagName, "p", "", presetFlagDescription)
	commandFlags.BoolVarP(&flags.addTree, treeFlagName, "t", false, treeFlagDescription)
	commandFlags.BoolVarP(&flags.addMetadata, metadataFlagName, "m", false, metadataFlagDescription)
	commandFlags.BoolVarP(&flags.includeHidden, hiddenFlagName, "H", false, hiddenFlagDescription)
	commandFlags.BoolVarP(&flags.useGitignore, gitignoreFlagName, "g", false, gitignoreFlagDescription)
	commandFlags.StringVar(&flags.gitignorePath, gitignorePathFlagName, "", gitignorePathFlagDescription)
	commandFlags.StringArrayVar(&flags.excludedDirs, excludeDirsFlagName, nil, excludeDirsFlagDescription)
	commandFlags.StringArrayVar(&flags.excludedFiles, excludeFilesFlagName, nil, excludeFilesFlagDescription)
	commandFlags.StringArrayVar(&flags.excludedExtensions, excludeExtensionsFlag, nil, excludeExtensionsDescription)
	commandFlags.StringVarP(&flags.maxFileSize, maxFileSizeFlagName, "s", "", maxFileSizeFlagDescription)
	commandFlags.StringArrayVar(&flags.headerOnlyPaths, headerOnlyPathsFlagName, nil, headerOnlyPathsFlagDescription)
	commandFlags.StringArrayVar(&flags.headerExtensions, headerExtensionsFlagName, nil, headerExtensionsFlagDescription)
	commandFlags.BoolVar(&flags.countTokens, tokensFlagName, false, tokensFlagDescription)
	commandFlags.StringVar(&flags.model, modelFlagName, defaultTokenizerModelName, modelFlagDescription)
	commandFlags.BoolVar(&flags.copyToClipboard, copyFlagName, false, copyFlagDescription)
	commandFlags.StringVar(&flags.configPath, configFlagName, "", configFlagDescription)

	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// runPack resolves configuration-file defaults against explicit flags and executes the
// pack operation. A flag the user set always beats a configuration value.
func runPack(command *cobra.Command, projectPath, outputPath string, flags *packFlags, logger *zap.Logger) error {
	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		ExplicitFilePath: flags.configPath,
	})
	if configurationError != nil {
		return configurationError
	}
	packDefaults := applicationConfiguration.Pack

	options := commands.PackOptions{
		ProjectRoot:         projectPath,
		OutputPath:          outputPath,
		PresetName:          resolveString(command, presetFlagName, flags.presetName, packDefaults.Preset),
		AddTree:             resolveBool(command, treeFlagName, flags.addTree, packDefaults.Tree),
		AddMetadata:         resolveBool(command, metadataFlagName, flags.addMetadata, packDefaults.Metadata),
		IncludeHidden:       resolveBool(command, hiddenFlagName, flags.includeHidden, packDefaults.IncludeHidden),
		UseIgnoreFile:       resolveBool(command, gitignoreFlagName, flags.useGitignore, packDefaults.UseGitignore),
		IgnoreFilePath:      resolveString(command, gitignorePathFlagName, flags.gitignorePath, packDefaults.GitignorePath),
		ExcludedDirectories: resolveList(command, excludeDirsFlagName, flags.excludedDirs, packDefaults.Exclude.Directories),
		ExcludedFiles:       resolveList(command, excludeFilesFlagName, flags.excludedFiles, packDefaults.Exclude.Files),
		ExcludedExtensions:  resolveList(command, excludeExtensionsFlag, flags.excludedExtensions, packDefaults.Exclude.Extensions),
		HeaderOnlyPaths:     resolveList(command, headerOnlyPathsFlagName, flags.headerOnlyPaths, packDefaults.HeaderOnly.Paths),
		HeaderExtensions:    resolveList(command, headerExtensionsFlagName, flags.headerExtensions, packDefaults.HeaderOnly.Extensions),
		CountTokens:         resolveBool(command, tokensFlagName, flags.countTokens, packDefaults.Tokens.Enabled),
		Model:               resolveString(command, modelFlagName, flags.model, packDefaults.Tokens.Model),
		Logger:              logger,
	}

	maxFileSizeText := resolveString(command, maxFileSizeFlagName, flags.maxFileSize, packDefaults.MaxFileSize)
	maxFileSizeBytes, sizeError := utils.ParseSize(maxFileSizeText)
	if sizeError != nil {
		return fmt.Errorf("invalid --%s value %q: %w", maxFileSizeFlagName, maxFileSizeText, sizeError)
	}
	options.MaxFileSizeBytes = maxFileSizeBytes

	result, packError := commands.Pack(command.Context(), options)
	if packError != nil {
		return packError
	}

	if resolveBool(command, copyFlagName, flags.copyToClipboard, packDefaults.Clipboard) {
		if copyError := clipboard.NewService().Copy(result.Document); copyError != nil {
			logger.Warn("copying document to clipboard failed", zap.Error(copyError))
		}
	}
	return nil
}

func resolveString(command *cobra.Command, flagName, flagValue, configuredValue string) string {
	if command.Flags().Changed(flagName) || configuredValue == "" {
		return flagValue
	}
	return configuredValue
}

func resolveBool(command *cobra.Command, flagName string, flagValue bool, configuredValue *bool) bool {
	if command.Flags().Changed(flagName) || configuredValue == nil {
		return flagValue
	}
	return *configuredValue
}

func resolveList(command *cobra.Command, flagName string, flagValues, configuredValues []string) []string {
	if command.Flags().Changed(flagName) || len(configuredValues) == 0 {
		return flagValues
	}
	return configuredValues
}

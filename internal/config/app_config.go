// Package config loads .ctxpack.yaml defaults from the global and local scope.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/ctxpack/ctxpack/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds pack defaults read from configuration files. Boolean
// fields are pointers so an absent key never overrides a lower-precedence layer.
type ApplicationConfiguration struct {
	Pack PackConfiguration `mapstructure:"pack"`
}

// PackConfiguration defines defaults for the pack operation.
type PackConfiguration struct {
	Preset        string               `mapstructure:"preset"`
	Tree          *bool                `mapstructure:"tree"`
	Metadata      *bool                `mapstructure:"metadata"`
	IncludeHidden *bool                `mapstructure:"hidden"`
	UseGitignore  *bool                `mapstructure:"use_gitignore"`
	GitignorePath string               `mapstructure:"gitignore_path"`
	MaxFileSize   string               `mapstructure:"max_file_size"`
	Clipboard     *bool                `mapstructure:"clipboard"`
	Tokens        TokenConfiguration   `mapstructure:"tokens"`
	Exclude       ExcludeConfiguration `mapstructure:"exclude"`
	HeaderOnly    HeaderConfiguration  `mapstructure:"header_only"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// ExcludeConfiguration lists manual exclusions.
type ExcludeConfiguration struct {
	Directories []string `mapstructure:"directories"`
	Files       []string `mapstructure:"files"`
	Extensions  []string `mapstructure:"extensions"`
}

// HeaderConfiguration configures header-only packing.
type HeaderConfiguration struct {
	Paths      []string `mapstructure:"paths"`
	Extensions []string `mapstructure:"extensions"`
}

// LoadApplicationConfiguration loads configuration from the global file under the home
// directory and the local file in the working directory, local overriding global.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadError := loadConfigurationFromPath(globalPath)
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveError := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveError != nil {
		return ApplicationConfiguration{}, resolveError
	}
	if localPath != "" {
		localConfig, loadError := loadConfigurationFromPath(localPath)
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(localConfig)
	}

	merged.Pack.Exclude.Directories = utils.DeduplicateStrings(merged.Pack.Exclude.Directories)
	merged.Pack.Exclude.Files = utils.DeduplicateStrings(merged.Pack.Exclude.Files)
	merged.Pack.Exclude.Extensions = utils.DeduplicateStrings(merged.Pack.Exclude.Extensions)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statError := os.Stat(path)
	if statError != nil {
		if os.IsNotExist(statError) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statError)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readError := reader.ReadInConfig(); readError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readError)
	}
	var configuration ApplicationConfiguration
	if decodeError := reader.Unmarshal(&configuration); decodeError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeError)
	}
	return configuration, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (configuration ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := configuration
	result.Pack = result.Pack.merge(override.Pack)
	return result
}

func (configuration PackConfiguration) merge(override PackConfiguration) PackConfiguration {
	result := configuration
	if override.Preset != "" {
		result.Preset = override.Preset
	}
	if override.Tree != nil {
		result.Tree = cloneBool(override.Tree)
	}
	if override.Metadata != nil {
		result.Metadata = cloneBool(override.Metadata)
	}
	if override.IncludeHidden != nil {
		result.IncludeHidden = cloneBool(override.IncludeHidden)
	}
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	if override.GitignorePath != "" {
		result.GitignorePath = override.GitignorePath
	}
	if override.MaxFileSize != "" {
		result.MaxFileSize = override.MaxFileSize
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	result.Exclude = result.Exclude.merge(override.Exclude)
	result.HeaderOnly = result.HeaderOnly.merge(override.HeaderOnly)
	return result
}

func (configuration TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := configuration
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func (configuration ExcludeConfiguration) merge(override ExcludeConfiguration) ExcludeConfiguration {
	result := configuration
	if len(override.Directories) > 0 {
		result.Directories = append([]string{}, utils.DeduplicateStrings(override.Directories)...)
	}
	if len(override.Files) > 0 {
		result.Files = append([]string{}, utils.DeduplicateStrings(override.Files)...)
	}
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string{}, utils.DeduplicateStrings(override.Extensions)...)
	}
	return result
}

func (configuration HeaderConfiguration) merge(override HeaderConfiguration) HeaderConfiguration {
	result := configuration
	if len(override.Paths) > 0 {
		result.Paths = append([]string{}, utils.DeduplicateStrings(override.Paths)...)
	}
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string{}, utils.DeduplicateStrings(override.Extensions)...)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

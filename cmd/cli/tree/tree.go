// Package tree assembles the Cobra command rendering a project directory
// hierarchy as indented text.
package tree

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/cmdpilot/internal/projecttree"
	pathutils "github.com/temirov/cmdpilot/internal/utils/path"
)

const (
	commandUseConstant                 = "tree [path]"
	commandShortDescriptionConstant    = "Render a directory tree"
	commandLongDescriptionConstant     = "tree prints the directory hierarchy rooted at the given path, skipping ignored entries, in the format embedded into conversation prompts."
	commandExecutionErrorTemplate      = "tree rendering failed: %w"
	flagIgnoreNameConstant             = "ignore"
	flagIgnoreDescriptionConstant      = "Entry names to skip (repeatable)"
	defaultTreeRootConstant            = "."
	configurationIgnoredKeyConstant    = "ignored_entries"
	configurationKeySeparatorConstant  = "."
	defaultIgnoredNodeModulesConstant  = "node_modules"
	defaultIgnoredGitDirectoryConstant = ".git"
)

// CommandConfiguration captures configuration values for the tree command.
type CommandConfiguration struct {
	IgnoredEntries []string `mapstructure:"ignored_entries"`
}

// ConfigurationProvider supplies the tree command configuration.
type ConfigurationProvider func() CommandConfiguration

// DefaultCommandConfiguration provides baseline tree command settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		IgnoredEntries: []string{defaultIgnoredGitDirectoryConstant, defaultIgnoredNodeModulesConstant},
	}
}

// DefaultConfigurationValues produces Viper defaults for the tree command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationIgnoredKeyConstant: defaults.IgnoredEntries,
	}
}

// CommandBuilder assembles the tree command.
type CommandBuilder struct {
	ConfigurationProvider ConfigurationProvider
}

// Build constructs the tree command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}

	command.Flags().StringSlice(flagIgnoreNameConstant, nil, flagIgnoreDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	rootPath := defaultTreeRootConstant
	if len(arguments) > 0 && len(strings.TrimSpace(arguments[0])) > 0 {
		rootPath = pathutils.NewHomeExpander().Expand(strings.TrimSpace(arguments[0]))
	}

	ignoredEntries := builder.resolveConfiguration().IgnoredEntries
	if command.Flags().Changed(flagIgnoreNameConstant) {
		flaggedEntries, _ := command.Flags().GetStringSlice(flagIgnoreNameConstant)
		ignoredEntries = flaggedEntries
	}

	treeBuilder := projecttree.NewBuilder(projecttree.BuilderConfiguration{IgnoredEntryNames: ignoredEntries})
	renderedTree, buildError := treeBuilder.BuildTree(rootPath)
	if buildError != nil {
		return fmt.Errorf(commandExecutionErrorTemplate, buildError)
	}

	fmt.Fprint(command.OutOrStdout(), renderedTree)
	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}

// Package history assembles the Cobra commands inspecting and pruning the
// persisted command run history.
package history

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/cmdpilot/internal/history"
	pathutils "github.com/temirov/cmdpilot/internal/utils/path"
)

const (
	commandUseConstant                  = "history"
	commandShortDescriptionConstant     = "Inspect recorded command runs"
	commandLongDescriptionConstant      = "history lists and prunes the labeled command results recorded for replay."
	listCommandUseConstant              = "list"
	listCommandShortDescriptionConstant = "List the recorded runs of a project scope"
	clearCommandUseConstant             = "clear"
	clearCommandShortDescription        = "Remove the recorded runs of a project scope"
	historyStoreErrorTemplateConstant   = "unable to open command history: %w"
	historyListErrorTemplateConstant    = "unable to list command history: %w"
	historyClearErrorTemplateConstant   = "unable to clear command history: %w"
	flagProjectScopeNameConstant        = "project"
	flagProjectScopeDescriptionConstant = "Project scope to inspect"
	flagDatabasePathNameConstant        = "database"
	flagDatabasePathDescriptionConstant = "Path to the history database"
	listedRunTemplateConstant           = "%s  %s\n"
	listedRunTimestampLayoutConstant    = "2006-01-02 15:04:05"
	emptyHistoryMessageConstant         = "no recorded runs"
	clearedRunsTemplateConstant         = "removed %d recorded runs\n"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandConfiguration captures configuration values for history commands.
type CommandConfiguration struct {
	ProjectScope string `mapstructure:"project"`
	DatabasePath string `mapstructure:"database_path"`
}

// ConfigurationProvider supplies the history command configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the history command hierarchy.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	// Store overrides the SQLite store resolved from configuration, primarily for tests.
	Store history.CommandRunStore
}

// Build constructs the history command with its list and clear subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	historyCommand := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
	}

	listCommand := &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortDescriptionConstant,
		RunE:  builder.runList,
	}

	clearCommand := &cobra.Command{
		Use:   clearCommandUseConstant,
		Short: clearCommandShortDescription,
		RunE:  builder.runClear,
	}

	for _, subcommand := range []*cobra.Command{listCommand, clearCommand} {
		subcommand.Flags().String(flagProjectScopeNameConstant, "", flagProjectScopeDescriptionConstant)
		subcommand.Flags().String(flagDatabasePathNameConstant, "", flagDatabasePathDescriptionConstant)
	}

	historyCommand.AddCommand(listCommand, clearCommand)
	return historyCommand, nil
}

func (builder *CommandBuilder) runList(command *cobra.Command, _ []string) error {
	projectScope, runStore, closeStore, resolveError := builder.resolveCollaborators(command)
	if resolveError != nil {
		return resolveError
	}
	if closeStore != nil {
		defer closeStore()
	}

	storedRuns, listingError := runStore.ListRuns(command.Context(), projectScope)
	if listingError != nil {
		return fmt.Errorf(historyListErrorTemplateConstant, listingError)
	}

	if len(storedRuns) == 0 {
		fmt.Fprintln(command.OutOrStdout(), emptyHistoryMessageConstant)
		return nil
	}

	for _, storedRun := range storedRuns {
		fmt.Fprintf(
			command.OutOrStdout(),
			listedRunTemplateConstant,
			storedRun.RecordedAt.Format(listedRunTimestampLayoutConstant),
			storedRun.CommandText,
		)
	}

	return nil
}

func (builder *CommandBuilder) runClear(command *cobra.Command, _ []string) error {
	projectScope, runStore, closeStore, resolveError := builder.resolveCollaborators(command)
	if resolveError != nil {
		return resolveError
	}
	if closeStore != nil {
		defer closeStore()
	}

	removedRuns, removalError := runStore.RemoveRuns(command.Context(), projectScope)
	if removalError != nil {
		return fmt.Errorf(historyClearErrorTemplateConstant, removalError)
	}

	fmt.Fprintf(command.OutOrStdout(), clearedRunsTemplateConstant, removedRuns)
	return nil
}

func (builder *CommandBuilder) resolveCollaborators(command *cobra.Command) (string, history.CommandRunStore, func(), error) {
	configuration := builder.resolveConfiguration()

	projectScope := configuration.ProjectScope
	if command.Flags().Changed(flagProjectScopeNameConstant) {
		projectScopeValue, _ := command.Flags().GetString(flagProjectScopeNameConstant)
		projectScope = strings.TrimSpace(projectScopeValue)
	}

	if builder.Store != nil {
		return projectScope, builder.Store, nil, nil
	}

	databasePath := configuration.DatabasePath
	if command.Flags().Changed(flagDatabasePathNameConstant) {
		databasePathValue, _ := command.Flags().GetString(flagDatabasePathNameConstant)
		databasePath = strings.TrimSpace(databasePathValue)
	}
	databasePath = pathutils.NewHomeExpander().Expand(databasePath)

	runStore, storeError := history.NewSQLiteRunStore(command.Context(), databasePath, builder.resolveLogger())
	if storeError != nil {
		return "", nil, nil, fmt.Errorf(historyStoreErrorTemplateConstant, storeError)
	}

	return projectScope, runStore, func() {
		closeError := runStore.Close()
		_ = closeError
	}, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return CommandConfiguration{}
	}
	configuration := builder.ConfigurationProvider()
	configuration.ProjectScope = strings.TrimSpace(configuration.ProjectScope)
	configuration.DatabasePath = strings.TrimSpace(configuration.DatabasePath)
	return configuration
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

package history

const (
	configurationProjectScopeKeyConstant = "project"
	configurationDatabasePathKeyConstant = "database_path"
	configurationKeySeparatorConstant    = "."
	defaultHistoryDatabasePathConstant   = "~/.cmdpilot/history.db"
	defaultProjectScopeConstant          = "default"
)

// DefaultCommandConfiguration provides baseline history command settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		ProjectScope: defaultProjectScopeConstant,
		DatabasePath: defaultHistoryDatabasePathConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults for history commands.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationProjectScopeKeyConstant: defaults.ProjectScope,
		rootKey + configurationKeySeparatorConstant + configurationDatabasePathKeyConstant: defaults.DatabasePath,
	}
}

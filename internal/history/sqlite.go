package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	sqliteDriverNameConstant                = "sqlite"
	databaseDirectoryPermissionsConstant    = 0o755
	databasePathRequiredMessageConstant     = "database path is required"
	databaseDirectoryFailureTemplate        = "unable to create database directory: %w"
	databaseOpenFailureTemplateConstant     = "unable to open run database: %w"
	schemaCreationFailureTemplateConstant   = "unable to create run schema: %w"
	runLookupFailureTemplateConstant        = "unable to look up command run: %w"
	runPersistenceFailureTemplateConstant   = "unable to record command run: %w"
	runListingFailureTemplateConstant       = "unable to list command runs: %w"
	runRemovalFailureTemplateConstant       = "unable to remove command runs: %w"
	storeInitializedDebugMessageConstant    = "command run store initialized"
	logFieldDatabasePathConstant            = "database_path"
	sqliteConnectionSettingsSuffixConstant  = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	createRunsTableStatementConstant        = `
		CREATE TABLE IF NOT EXISTS command_runs (
			run_identifier TEXT PRIMARY KEY,
			project_scope TEXT NOT NULL,
			command_text TEXT NOT NULL,
			result_text TEXT NOT NULL,
			recorded_at INTEGER NOT NULL,
			UNIQUE (project_scope, command_text)
		)
	`
	lookupRunQueryConstant = `
		SELECT result_text
		FROM command_runs
		WHERE project_scope = ? AND command_text = ?
	`
	recordRunStatementConstant = `
		INSERT INTO command_runs (run_identifier, project_scope, command_text, result_text, recorded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (project_scope, command_text)
		DO UPDATE SET result_text = excluded.result_text, recorded_at = excluded.recorded_at
	`
	listRunsQueryConstant = `
		SELECT run_identifier, project_scope, command_text, result_text, recorded_at
		FROM command_runs
		WHERE project_scope = ?
		ORDER BY recorded_at DESC
	`
	removeRunsStatementConstant = `DELETE FROM command_runs WHERE project_scope = ?`
)

// SQLiteRunStore stores command runs in a local SQLite database.
type SQLiteRunStore struct {
	database *sql.DB
	logger   *zap.Logger
}

// NewSQLiteRunStore opens the database at the provided path, creating the
// parent directory and schema when absent.
func NewSQLiteRunStore(executionContext context.Context, databasePath string, logger *zap.Logger) (*SQLiteRunStore, error) {
	if len(databasePath) == 0 {
		return nil, errors.New(databasePathRequiredMessageConstant)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	databaseDirectory := filepath.Dir(databasePath)
	if directoryError := os.MkdirAll(databaseDirectory, databaseDirectoryPermissionsConstant); directoryError != nil {
		return nil, fmt.Errorf(databaseDirectoryFailureTemplate, directoryError)
	}

	database, openError := sql.Open(sqliteDriverNameConstant, databasePath+sqliteConnectionSettingsSuffixConstant)
	if openError != nil {
		return nil, fmt.Errorf(databaseOpenFailureTemplateConstant, openError)
	}

	if _, schemaError := database.ExecContext(executionContext, createRunsTableStatementConstant); schemaError != nil {
		closeError := database.Close()
		_ = closeError
		return nil, fmt.Errorf(schemaCreationFailureTemplateConstant, schemaError)
	}

	logger.Debug(storeInitializedDebugMessageConstant, zap.String(logFieldDatabasePathConstant, databasePath))

	return &SQLiteRunStore{database: database, logger: logger}, nil
}

// Close releases the underlying database connection.
func (store *SQLiteRunStore) Close() error {
	return store.database.Close()
}

// LookupRun returns the stored result text for the project scope and command
// text pair and whether such a run exists.
func (store *SQLiteRunStore) LookupRun(executionContext context.Context, projectScope string, commandText string) (string, bool, error) {
	row := store.database.QueryRowContext(executionContext, lookupRunQueryConstant, projectScope, commandText)

	var storedResultText string
	scanError := row.Scan(&storedResultText)
	if errors.Is(scanError, sql.ErrNoRows) {
		return "", false, nil
	}
	if scanError != nil {
		return "", false, fmt.Errorf(runLookupFailureTemplateConstant, scanError)
	}

	return storedResultText, true, nil
}

// RecordRun persists the result text, replacing any previously stored run for
// the same project scope and command text.
func (store *SQLiteRunStore) RecordRun(executionContext context.Context, projectScope string, commandText string, resultText string) error {
	_, executionError := store.database.ExecContext(
		executionContext,
		recordRunStatementConstant,
		uuid.NewString(),
		projectScope,
		commandText,
		resultText,
		time.Now().UTC().Unix(),
	)
	if executionError != nil {
		return fmt.Errorf(runPersistenceFailureTemplateConstant, executionError)
	}

	return nil
}

// ListRuns returns the stored runs of one project scope, most recent first.
func (store *SQLiteRunStore) ListRuns(executionContext context.Context, projectScope string) ([]CommandRun, error) {
	rows, queryError := store.database.QueryContext(executionContext, listRunsQueryConstant, projectScope)
	if queryError != nil {
		return nil, fmt.Errorf(runListingFailureTemplateConstant, queryError)
	}
	defer func() {
		closeError := rows.Close()
		_ = closeError
	}()

	var storedRuns []CommandRun
	for rows.Next() {
		var storedRun CommandRun
		var recordedAtUnix int64
		scanError := rows.Scan(
			&storedRun.RunIdentifier,
			&storedRun.ProjectScope,
			&storedRun.CommandText,
			&storedRun.ResultText,
			&recordedAtUnix,
		)
		if scanError != nil {
			return nil, fmt.Errorf(runListingFailureTemplateConstant, scanError)
		}
		storedRun.RecordedAt = time.Unix(recordedAtUnix, 0).UTC()
		storedRuns = append(storedRuns, storedRun)
	}
	if iterationError := rows.Err(); iterationError != nil {
		return nil, fmt.Errorf(runListingFailureTemplateConstant, iterationError)
	}

	return storedRuns, nil
}

// RemoveRuns deletes every stored run of the project scope and returns the
// number of removed runs.
func (store *SQLiteRunStore) RemoveRuns(executionContext context.Context, projectScope string) (int64, error) {
	result, executionError := store.database.ExecContext(executionContext, removeRunsStatementConstant, projectScope)
	if executionError != nil {
		return 0, fmt.Errorf(runRemovalFailureTemplateConstant, executionError)
	}

	removedRuns, affectedError := result.RowsAffected()
	if affectedError != nil {
		return 0, fmt.Errorf(runRemovalFailureTemplateConstant, affectedError)
	}

	return removedRuns, nil
}

package backend

import (
	"errors"
	"fmt"

	"payperless/internal/config"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	c := Config{
		Type:                     BackendType(appConfig.DataBackend),
		SQLiteDBPath:             appConfig.SQLiteDBPath,
		ExportType:               BackendType(appConfig.ExportBackend),
		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate validates the backend configuration.
func (c Config) Validate() error {
	if !c.Type.IsValidStore() {
		return fmt.Errorf("invalid store backend: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return errors.New("SQLite database path is required for sqlite backend")
	}

	if c.ExportType == "" {
		return nil
	}
	if !c.ExportType.IsValidExport() {
		return fmt.Errorf("invalid export backend: %s", c.ExportType)
	}
	if c.ExportType == SheetsBackend {
		if c.GoogleSpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets export")
		}
		if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
			return errors.New("service account file or JSON is required for sheets export")
		}
	}
	return nil
}

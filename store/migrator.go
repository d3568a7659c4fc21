package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
)

// The migration system keeps the schema versioned through system_setting.
//
// Flow:
// 1. If the database is not initialized, apply LATEST.sql for the driver.
// 2. Record the server version as the schema version.
//
// Migration Files:
// - Location: store/migration/{driver}/LATEST.sql
// - LATEST.sql holds the full schema for new installations.

//go:embed migration
var migrationFS embed.FS

// LatestSchemaFileName is the name of the latest schema file.
const LatestSchemaFileName = "LATEST.sql"

// Migrate initializes the database schema if needed and records the
// schema version.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}

	if !initialized {
		if err := s.applyLatestSchema(ctx); err != nil {
			return errors.Wrap(err, "failed to apply latest schema")
		}
		slog.Info("database initialized", "driver", s.profile.Driver)
	}

	if _, err := s.driver.UpsertSystemSetting(ctx, &SystemSetting{
		Name:  SystemSettingSchemaVersion,
		Value: s.profile.Version,
	}); err != nil {
		return errors.Wrap(err, "failed to record schema version")
	}

	return nil
}

// GetCurrentSchemaVersion returns the schema version recorded in
// system_setting, or empty when none has been recorded yet.
func (s *Store) GetCurrentSchemaVersion(ctx context.Context) (string, error) {
	setting, err := s.driver.GetSystemSetting(ctx, &FindSystemSetting{
		Name: SystemSettingSchemaVersion,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to get schema version setting")
	}
	if setting == nil {
		return "", nil
	}
	return setting.Value, nil
}

func (s *Store) applyLatestSchema(ctx context.Context) error {
	schemaPath := fmt.Sprintf("migration/%s/%s", s.profile.Driver, LatestSchemaFileName)
	buf, err := migrationFS.ReadFile(schemaPath)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema file %q", schemaPath)
	}

	stmt := string(buf)
	if _, err := s.driver.GetDB().ExecContext(ctx, stmt); err != nil {
		return errors.Wrapf(err, "failed to execute latest schema statement")
	}
	return nil
}

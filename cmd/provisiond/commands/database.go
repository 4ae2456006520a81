package commands

import (
	"database/sql"

	"github.com/meridianbank/provisiond/config"
	"github.com/meridianbank/provisiond/db"
	"github.com/meridianbank/provisiond/errors"
	"github.com/meridianbank/provisiond/logger"
)

// openDatabase opens and migrates the database at the configured path.
// If dbPath is empty, the path comes from configuration.
func openDatabase(cfg *config.Config, dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	if dbPath == "" {
		dbPath = "provisiond.db"
	}

	database, err := db.Open(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}

	if err := db.Migrate(database, logger.Logger); err != nil {
		database.Close()
		return nil, errors.Wrapf(err, "failed to run migrations on %s", dbPath)
	}

	return database, nil
}

package main

import (
	"database/sql"

	"traceper/internal/logger"
	"traceper/internal/repository"
	"traceper/internal/repository/db"
)

// openStorage opens the profile database. A database that cannot be opened is
// not fatal: the host runs on storage that refuses every call, so every tab
// stays logged out. The returned close func is always safe to call.
func openStorage(path, origin string, log *logger.Logger) (repository.KeyValue, func()) {
	log = logger.OrNop(log)

	sqlDB, err := db.InitDB(path)
	if err != nil {
		log.Warnw("storage_unavailable", "path", path, "err", err)
		return repository.Unavailable{}, func() {}
	}
	return repository.NewStorageSQLite(sqlDB, origin), func() { closeDB(sqlDB, log) }
}

func closeDB(sqlDB *sql.DB, log *logger.Logger) {
	if err := sqlDB.Close(); err != nil {
		log.Errorw("failed to close sqlite", "err", err)
	}
}

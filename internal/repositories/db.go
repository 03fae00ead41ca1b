package repositories

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rohits-web03/cloudvault/internal/models"
)

// sqlitePrefix selects the embedded SQLite driver, e.g. "sqlite://cloudvault.db".
const sqlitePrefix = "sqlite://"

// ConnectDatabase opens the database named by dsn and runs migrations.
func ConnectDatabase(dsn string, production bool) (*gorm.DB, error) {
	level := logger.Info
	if production {
		level = logger.Warn
	}
	return Open(dsn, level)
}

// Open connects with the given SQL log level. Postgres is the default; a
// sqlite:// DSN uses SQLite through a single connection.
func Open(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	isSQLite := strings.HasPrefix(dsn, sqlitePrefix)
	if isSQLite {
		dialector = sqlite.Open(sqliteDSN(strings.TrimPrefix(dsn, sqlitePrefix)))
	} else {
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if isSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		// SQLite allows one writer; a single connection keeps transactions serialised.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// sqliteDSN turns on foreign key enforcement, which SQLite leaves off per connection.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Folder{},
		&models.File{},
		&models.OrphanBlob{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Root folders have a NULL parent, which a plain unique index never treats as equal.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_folders_root_name
		ON folders (owner_id, name) WHERE parent_id IS NULL`).Error
	if err != nil {
		return fmt.Errorf("create root folder index: %w", err)
	}
	return nil
}

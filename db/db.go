package db

import (
	"fmt"
	stdlog "log"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"comlab_tool/config"
	"comlab_tool/models"
)

func gormLogger() logger.Interface {
	return logger.New(stdlog.New(log.Logger, "", 0), logger.Config{
		SlowThreshold:             300 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Open connects to the configured database and migrates it.
func Open(cfg config.Config) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dial = sqlite.Open(cfg.SQLitePath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	default:
		dial = postgres.Open(cfg.DSN())
	}
	db, err := gorm.Open(dial, &gorm.Config{Logger: gormLogger()})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
	}
	if cfg.DBDriver == "sqlite" {
		// a single writer avoids SQLITE_BUSY under concurrent requests
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("database connected")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Credential{},
		&models.Invite{},
		&models.CatalogItem{},
		&models.BorrowRequest{},
		&models.ReportRequest{},
		&models.Room{},
		&models.PC{},
		&models.PCRecord{},
		&models.FormText{},
		&models.StatusLog{},
	)
}

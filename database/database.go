package database

import (
	"errors"
	"fmt"
	"log"
	"time"

	"khedutbazaar/config"
	"khedutbazaar/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the process-wide connection, set by ConnectDatabase.
var DB *gorm.DB

// ErrNotFound is returned by Store lookups that match no row.
var ErrNotFound = errors.New("record not found")

// ConnectDatabase opens MySQL, creating the schema if needed, and migrates every table.
func ConnectDatabase(cfg config.DatabaseConfig) {
	if err := ensureDatabase(cfg); err != nil {
		log.Printf("❌ Could not ensure database %s exists: %v", cfg.Name, err)
	}

	var err error
	DB, err = gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("Failed to access connection pool:", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	fmt.Println("✅ Database connected successfully!")

	if err := Migrate(DB); err != nil {
		log.Fatalf("❌ Failed to migrate the database: %v\n", err)
	}
	fmt.Println("✅ Database migrated successfully!")
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

func ensureDatabase(cfg config.DatabaseConfig) error {
	server, err := gorm.Open(mysql.Open(cfg.ServerDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}
	sqlDB, err := server.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	stmt := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", cfg.Name)
	return server.Exec(stmt).Error
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

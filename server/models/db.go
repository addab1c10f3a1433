package models

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	sqliteEncrypt "github.com/Daskott/gorm-sqlite-cipher"
	"github.com/raksha-app/raksha/server/logger"
	"github.com/raksha-app/raksha/utils"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const DB_NAME = "raksha.db"

var logg = logger.NewLogger()
var db *gorm.DB

// AutoMigrate auto-migrates the db schema and inserts seed data
func AutoMigrate(passPhrase string, dbRootDir string) error {
	err := openDB(passPhrase, dbRootDir)
	if err != nil {
		return err
	}

	db.AutoMigrate(
		&JobStatus{}, &Job{},
		&User{}, &LocationReport{},
	)

	populateDBWithSeedData()

	return nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func openDB(passPhrase string, dbRootDir string) error {
	var err error
	var dbDSNVal string

	dbDSNVal, err = dbDSN(passPhrase, dbRootDir)
	if err != nil {
		return fmt.Errorf("failed to set sqlite DSN: %v", err)
	}

	db, err = gorm.Open(sqliteEncrypt.Open(dbDSNVal), &gorm.Config{
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				LogLevel:                  gormLogger.Silent,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return fmt.Errorf("failed to connect database: %v", err)
	}

	return nil
}

func populateDBWithSeedData() {
	if err := db.First(&JobStatus{}).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Info("Inserting seed data into 'JobStatus'")
		db.Create(&[]JobStatus{{Name: ENQUEUED_JOB}, {Name: IN_PROGRESS_JOB}, {Name: SUCCESSFUL_JOB}, {Name: DEAD_JOB}})
	}
}

func dbDSN(passPhrase string, dbRootDir string) (string, error) {
	dbDir, err := DbDirectory(dbRootDir)
	if err != nil {
		return "", err
	}

	dbFilePath := filepath.Join(dbDir, DB_NAME)
	dbName := fmt.Sprintf("file:%v", dbFilePath)

	return fmt.Sprintf(
		"%v?_pragma_key=%s&_pragma_cipher_page_size=4096&_journal_mode=WAL",
		dbName,
		passPhrase,
	), nil
}

// DbDirectory returns the directory holding the sqlite file, creating it
// if necessary.
func DbDirectory(dbRootDir string) (string, error) {
	dbDir := filepath.Join(dbRootDir, "db")

	err := utils.CreateDirIfNotExist(dbDir)
	if err != nil {
		return "", err
	}

	return dbDir, nil
}

// DbFilePath returns the full path of the sqlite file - used by the
// backup job to know what to upload.
func DbFilePath(dbRootDir string) (string, error) {
	dbDir, err := DbDirectory(dbRootDir)
	if err != nil {
		return "", err
	}

	return filepath.Join(dbDir, DB_NAME), nil
}

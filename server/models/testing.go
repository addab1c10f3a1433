package models

import (
	"os"
)

// InitializeTestDb points the package at a throwaway encrypted sqlite db.
// Each call gets a fresh temp directory, so tests don't see each other's
// records.
func InitializeTestDb() {
	dir, err := os.MkdirTemp("", "raksha-test-db")
	if err != nil {
		logg.Panic(err)
	}

	if err := AutoMigrate("test-passphrase", dir); err != nil {
		logg.Panic(err)
	}
}
